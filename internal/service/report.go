package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/as0628/expense-tracker-project/internal/apperr"
	"github.com/as0628/expense-tracker-project/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// Report holds totals in cents for one period window.
type Report struct {
	Period       string
	Start        time.Time
	End          time.Time
	TotalIncome  int64
	TotalExpense int64
	Balance      int64
}

// Window returns the [start, end) range of period around now, in now's location.
// Weeks follow ISO 8601 and start on Monday.
func Window(period string, now time.Time) (time.Time, time.Time, bool) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch period {
	case PeriodDaily:
		return today, today.AddDate(0, 0, 1), true
	case PeriodWeekly:
		offset := (int(now.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), true
	case PeriodMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), true
	case PeriodYearly:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// ReportEngine aggregates an owner's transactions over a period window. The
// set of accepted periods is fixed at construction so the basic and premium
// surfaces can expose different ones.
type ReportEngine struct {
	db      *gorm.DB
	log     *logrus.Logger
	now     func() time.Time
	periods map[string]bool
}

func NewReportEngine(db *gorm.DB, log *logrus.Logger, periods []string) *ReportEngine {
	allowed := make(map[string]bool, len(periods))
	for _, p := range periods {
		allowed[normalizePeriod(p)] = true
	}
	return &ReportEngine{db: db, log: log, now: time.Now, periods: allowed}
}

func normalizePeriod(period string) string {
	return strings.ToLower(strings.TrimSpace(period))
}

func (e *ReportEngine) supports(period string) bool {
	return e.periods[period]
}

func (e *ReportEngine) Compute(ctx context.Context, ownerID uint, period string) (*Report, error) {
	const op = "report.Compute"

	period = normalizePeriod(period)
	if !e.supports(period) {
		return nil, apperr.Validation(op, "Invalid period")
	}
	start, end, ok := Window(period, e.now())
	if !ok {
		return nil, apperr.Validation(op, "Invalid period")
	}

	var row struct {
		TotalIncome  int64
		TotalExpense int64
	}
	err := e.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select(
			"COALESCE(SUM(CASE WHEN type = ? THEN amount_cents ELSE 0 END), 0) AS total_income, "+
				"COALESCE(SUM(CASE WHEN type = ? THEN amount_cents ELSE 0 END), 0) AS total_expense",
			models.TypeIncome, models.TypeExpense,
		).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", ownerID, start.UTC(), end.UTC()).
		Scan(&row).Error
	if err != nil {
		return nil, failWith(e.log, op, ownerID, fmt.Errorf("sum transactions: %w", err))
	}

	return &Report{
		Period:       period,
		Start:        start,
		End:          end,
		TotalIncome:  row.TotalIncome,
		TotalExpense: row.TotalExpense,
		Balance:      row.TotalIncome - row.TotalExpense,
	}, nil
}

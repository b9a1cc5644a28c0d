package service

import (
	"context"
	"fmt"
	"time"

	"github.com/as0628/expense-tracker-project/internal/apperr"
	"github.com/as0628/expense-tracker-project/internal/models"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	SheetDetailed = "Detailed Expenses"
	SheetSummary  = "Yearly Summary"
	SheetNotes    = "Yearly Notes"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ObjectStore persists a blob and returns a time-limited retrieval URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Owner is the authenticated caller as seen by premium-gated operations.
type Owner struct {
	ID        uint
	IsPremium bool
}

// MonthSummary is one row of the monthly rollup.
type MonthSummary struct {
	Month   string
	Income  int64
	Expense int64
}

func (m MonthSummary) Savings() int64 {
	return m.Income - m.Expense
}

// NoteLine is one non-empty note with its date.
type NoteLine struct {
	Date time.Time
	Note string
}

type ExportPage struct {
	Records    []models.ExportRecord
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// ExportEngine builds the premium spreadsheet report.
type ExportEngine struct {
	db    *gorm.DB
	log   *logrus.Logger
	store ObjectStore
	now   func() time.Time
	loc   *time.Location
}

func NewExportEngine(db *gorm.DB, log *logrus.Logger, store ObjectStore) *ExportEngine {
	return &ExportEngine{db: db, log: log, store: store, now: time.Now, loc: time.Local}
}

// Generate renders the owner's full history to a workbook, uploads it and
// appends an export record. It returns the signed retrieval URL.
func (e *ExportEngine) Generate(ctx context.Context, owner Owner) (string, error) {
	const op = "export.Generate"

	if !owner.IsPremium {
		return "", apperr.Unauthorized(op, "Unauthorized - Premium users only")
	}

	var rows []models.Transaction
	if err := e.db.WithContext(ctx).
		Where("user_id = ?", owner.ID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return "", e.fail(op, owner.ID, fmt.Errorf("load transactions: %w", err))
	}

	f, err := BuildWorkbook(rows, e.loc)
	if err != nil {
		return "", e.fail(op, owner.ID, err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", e.fail(op, owner.ID, fmt.Errorf("serialize workbook: %w", err))
	}

	// same-millisecond exports must not share an object
	key := fmt.Sprintf("reports/user-%d-%d-%s.xlsx", owner.ID, e.now().UnixMilli(), uuid.NewString()[:8])
	url, err := e.store.Put(ctx, key, buf.Bytes(), XLSXContentType)
	if err != nil {
		return "", e.fail(op, owner.ID, fmt.Errorf("upload %s: %w", key, err))
	}

	record := models.ExportRecord{
		UserID:     owner.ID,
		StorageKey: key,
		URL:        url,
	}
	if err := e.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", e.fail(op, owner.ID, fmt.Errorf("insert export record: %w", err))
	}

	e.log.WithFields(logrus.Fields{
		"owner_id": owner.ID,
		"key":      key,
		"rows":     len(rows),
	}).Info("export generated")
	return url, nil
}

// History lists the owner's export records, newest first.
func (e *ExportEngine) History(ctx context.Context, ownerID uint, page, limit int) (*ExportPage, error) {
	const op = "export.History"

	p := util.Paginate(page, limit, 5, 3, 10)
	base := e.db.WithContext(ctx).Model(&models.ExportRecord{}).Where("user_id = ?", ownerID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, failWith(e.log, op, ownerID, fmt.Errorf("count export records: %w", err))
	}

	var records []models.ExportRecord
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&records).Error; err != nil {
		return nil, failWith(e.log, op, ownerID, fmt.Errorf("list export records: %w", err))
	}

	return &ExportPage{
		Records:    records,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: util.TotalPages(total, p.Limit),
	}, nil
}

func (e *ExportEngine) fail(op string, ownerID uint, err error) error {
	e.log.WithFields(logrus.Fields{
		"op":       op,
		"owner_id": ownerID,
	}).WithError(err).Error("export failed")
	return apperr.Export(op, err)
}

// MonthlyRollup groups rows by calendar month in loc, in order of each
// month's first occurrence. rows must be sorted by created_at ascending.
func MonthlyRollup(rows []models.Transaction, loc *time.Location) []MonthSummary {
	var out []MonthSummary
	index := make(map[string]int)
	for _, r := range rows {
		label := r.CreatedAt.In(loc).Format("January 2006")
		i, ok := index[label]
		if !ok {
			i = len(out)
			index[label] = i
			out = append(out, MonthSummary{Month: label})
		}
		switch r.Type {
		case models.TypeIncome:
			out[i].Income += r.AmountCents
		case models.TypeExpense:
			out[i].Expense += r.AmountCents
		}
	}
	return out
}

// Notes returns the non-empty notes of rows in their given order.
func Notes(rows []models.Transaction) []NoteLine {
	var out []NoteLine
	for _, r := range rows {
		if r.Note == "" {
			continue
		}
		out = append(out, NoteLine{Date: r.CreatedAt, Note: r.Note})
	}
	return out
}

// BuildWorkbook lays out the three report sheets.
func BuildWorkbook(rows []models.Transaction, loc *time.Location) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetDetailed); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetSummary, SheetNotes} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeDetailed(f, rows, loc); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, MonthlyRollup(rows, loc)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeNotes(f, Notes(rows), loc); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func writeDetailed(f *excelize.File, rows []models.Transaction, loc *time.Location) error {
	header := []interface{}{"Date", "Description", "Category", "Income", "Expense", "Savings", "Note"}
	if err := setRow(f, SheetDetailed, 1, header); err != nil {
		return err
	}

	var income, expense int64
	for i, r := range rows {
		var in, out interface{}
		switch r.Type {
		case models.TypeIncome:
			in = CentsToFloat(r.AmountCents)
			income += r.AmountCents
		case models.TypeExpense:
			out = CentsToFloat(r.AmountCents)
			expense += r.AmountCents
		}
		values := []interface{}{
			r.CreatedAt.In(loc).Format("2006-01-02"),
			r.Description,
			r.Category,
			in,
			out,
			nil, // savings only on the total row
			r.Note,
		}
		if err := setRow(f, SheetDetailed, i+2, values); err != nil {
			return err
		}
	}

	// one blank row, then totals
	total := []interface{}{
		nil,
		"TOTAL",
		nil,
		CentsToFloat(income),
		CentsToFloat(expense),
		CentsToFloat(income - expense),
	}
	if err := setRow(f, SheetDetailed, len(rows)+3, total); err != nil {
		return err
	}
	return setWidths(f, SheetDetailed, []float64{15, 25, 15, 15, 15, 15, 40})
}

func writeSummary(f *excelize.File, months []MonthSummary) error {
	if err := setRow(f, SheetSummary, 1, []interface{}{"Month", "Income", "Expense", "Savings"}); err != nil {
		return err
	}

	var income, expense int64
	for i, m := range months {
		values := []interface{}{
			m.Month,
			CentsToFloat(m.Income),
			CentsToFloat(m.Expense),
			CentsToFloat(m.Savings()),
		}
		if err := setRow(f, SheetSummary, i+2, values); err != nil {
			return err
		}
		income += m.Income
		expense += m.Expense
	}

	total := []interface{}{
		"TOTAL",
		CentsToFloat(income),
		CentsToFloat(expense),
		CentsToFloat(income - expense),
	}
	if err := setRow(f, SheetSummary, len(months)+3, total); err != nil {
		return err
	}
	return setWidths(f, SheetSummary, []float64{20, 15, 15, 15})
}

func writeNotes(f *excelize.File, notes []NoteLine, loc *time.Location) error {
	if err := setRow(f, SheetNotes, 1, []interface{}{"Date", "Note"}); err != nil {
		return err
	}

	if len(notes) == 0 {
		if err := setRow(f, SheetNotes, 2, []interface{}{"—", "No notes found"}); err != nil {
			return err
		}
	}
	for i, n := range notes {
		values := []interface{}{n.Date.In(loc).Format("2006-01-02"), n.Note}
		if err := setRow(f, SheetNotes, i+2, values); err != nil {
			return err
		}
	}
	return setWidths(f, SheetNotes, []float64{20, 50})
}

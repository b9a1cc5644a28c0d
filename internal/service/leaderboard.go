package service

import (
	"context"
	"fmt"

	"github.com/as0628/expense-tracker-project/internal/models"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LeaderboardEntry struct {
	ID           uint
	Name         string
	TotalExpense int64
}

type LeaderboardPage struct {
	Entries    []LeaderboardEntry
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// Leaderboard ranks premium accounts by total spend.
type Leaderboard struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewLeaderboard(db *gorm.DB, log *logrus.Logger) *Leaderboard {
	return &Leaderboard{db: db, log: log}
}

func (l *Leaderboard) Get(ctx context.Context, page, limit int) (*LeaderboardPage, error) {
	const op = "leaderboard.Get"

	p := util.Paginate(page, limit, 10, 1, 100)
	base := l.db.WithContext(ctx).Model(&models.Account{}).Where("is_premium = ?", true)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, failWith(l.log, op, 0, fmt.Errorf("count premium accounts: %w", err))
	}

	var entries []LeaderboardEntry
	if err := base.Session(&gorm.Session{}).
		Select("id, name, total_expense").
		Order("total_expense DESC, id ASC").
		Limit(p.Limit).
		Offset(p.Offset).
		Scan(&entries).Error; err != nil {
		return nil, failWith(l.log, op, 0, fmt.Errorf("list premium accounts: %w", err))
	}

	return &LeaderboardPage{
		Entries:    entries,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: util.TotalPages(total, p.Limit),
	}, nil
}

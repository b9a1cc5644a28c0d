package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/as0628/expense-tracker-project/internal/apperr"
	"github.com/as0628/expense-tracker-project/internal/models"
	"github.com/as0628/expense-tracker-project/internal/notify"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const msgInvalidReset = "Invalid or expired reset link"

// PasswordReset issues one-shot reset links, mails them to the account
// owner and consumes them.
type PasswordReset struct {
	db      *gorm.DB
	log     *logrus.Logger
	mailer  notify.Mailer
	baseURL string
	cost    int
}

func NewPasswordReset(db *gorm.DB, log *logrus.Logger, mailer notify.Mailer, baseURL string) *PasswordReset {
	return &PasswordReset{
		db:      db,
		log:     log,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		cost:    bcrypt.DefaultCost,
	}
}

// Forgot creates an active reset request for the account with email and
// mails the link to that address. The link is never returned to the caller,
// and an unknown email succeeds silently so the endpoint does not reveal
// which addresses have accounts.
func (s *PasswordReset) Forgot(ctx context.Context, email string) error {
	const op = "password.Forgot"

	email = normalizeEmail(email)
	if email == "" {
		return apperr.Validation(op, "Email is required")
	}

	var account models.Account
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WithField("op", op).Info("password reset requested for unknown email")
			return nil
		}
		return failWith(s.log, op, 0, fmt.Errorf("load account: %w", err))
	}

	req := models.PasswordResetRequest{
		ID:       uuid.NewString(),
		UserID:   account.ID,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&req).Error; err != nil {
		return failWith(s.log, op, account.ID, fmt.Errorf("insert reset request: %w", err))
	}

	subject, body := notify.PasswordResetEmail(account.Name, s.baseURL+"/password/reset/"+req.ID)
	if err := s.mailer.Send(ctx, account.Email, subject, body); err != nil {
		return failWith(s.log, op, account.ID, fmt.Errorf("send reset email: %w", err))
	}

	s.log.WithField("owner_id", account.ID).Info("password reset link sent")
	return nil
}

// Check reports whether id names an active reset request.
func (s *PasswordReset) Check(ctx context.Context, id string) error {
	const op = "password.Check"

	_, err := s.active(ctx, s.db.WithContext(ctx), op, id)
	return err
}

// Reset sets a new password and deactivates the request in one transaction.
func (s *PasswordReset) Reset(ctx context.Context, id, password string) error {
	const op = "password.Reset"

	if len(password) < 6 {
		return apperr.Validation(op, "Password must be at least 6 characters long")
	}
	if len(password) > 72 {
		return apperr.Validation(op, "Password must be at most 72 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return failWith(s.log, op, 0, fmt.Errorf("hash password: %w", err))
	}

	var ownerID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.active(ctx, tx, op, id)
		if err != nil {
			return err
		}
		ownerID = req.UserID

		res := tx.Model(&models.PasswordResetRequest{}).
			Where("id = ? AND is_active = ?", req.ID, true).
			Update("is_active", false)
		if res.Error != nil {
			return fmt.Errorf("deactivate reset request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Validation(op, msgInvalidReset)
		}

		if err := tx.Model(&models.Account{}).
			Where("id = ?", req.UserID).
			Update("password_hash", string(hash)).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
	if err != nil {
		return failWith(s.log, op, ownerID, err)
	}

	s.log.WithField("owner_id", ownerID).Info("password reset")
	return nil
}

func (s *PasswordReset) active(ctx context.Context, db *gorm.DB, op, id string) (*models.PasswordResetRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.Validation(op, msgInvalidReset)
	}

	var req models.PasswordResetRequest
	err := db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation(op, msgInvalidReset)
		}
		return nil, failWith(s.log, op, 0, fmt.Errorf("load reset request: %w", err))
	}
	return &req, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/as0628/expense-tracker-project/internal/apperr"
	"github.com/as0628/expense-tracker-project/internal/models"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountService handles signup, login and account lookup.
type AccountService struct {
	db       *gorm.DB
	log      *logrus.Logger
	secret   string
	issuer   string
	tokenTTL time.Duration
	cost     int
}

func NewAccountService(db *gorm.DB, log *logrus.Logger, secret, issuer string, ttlHours int) *AccountService {
	if ttlHours <= 0 {
		ttlHours = 1
	}
	return &AccountService{
		db:       db,
		log:      log,
		secret:   secret,
		issuer:   issuer,
		tokenTTL: time.Duration(ttlHours) * time.Hour,
		cost:     bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) Register(ctx context.Context, name, email, password string) (*models.Account, error) {
	const op = "account.Register"

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation(op, "All fields are required")
	}
	if err := util.ValidateEmail(email); err != nil {
		return nil, apperr.Validation(op, err.Error())
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, apperr.Validation(op, err.Error())
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return nil, failWith(s.log, op, 0, fmt.Errorf("check email: %w", err))
	}
	if count > 0 {
		return nil, apperr.Conflict(op, "User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, failWith(s.log, op, 0, fmt.Errorf("hash password: %w", err))
	}

	account := models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, apperr.Conflict(op, "User already exists")
		}
		return nil, failWith(s.log, op, 0, fmt.Errorf("create account: %w", err))
	}
	return &account, nil
}

// Login checks the credentials and issues a signed token.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *models.Account, error) {
	const op = "account.Login"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, apperr.Validation(op, "All fields are required")
	}

	var account models.Account
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.Unauthorized(op, "Invalid email or password")
		}
		return "", nil, failWith(s.log, op, 0, fmt.Errorf("load account: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.Unauthorized(op, "Invalid email or password")
	}

	token, err := util.GenerateToken(s.secret, s.issuer, account.ID, s.tokenTTL)
	if err != nil {
		return "", nil, failWith(s.log, op, account.ID, fmt.Errorf("sign token: %w", err))
	}
	return token, &account, nil
}

// Get loads an account by id.
func (s *AccountService) Get(ctx context.Context, id uint) (*models.Account, error) {
	const op = "account.Get"

	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(op, "account not found")
		}
		return nil, failWith(s.log, op, id, fmt.Errorf("load account: %w", err))
	}
	return &account, nil
}

// UpdateName changes the display name of the account.
func (s *AccountService) UpdateName(ctx context.Context, id uint, name string) (*models.Account, error) {
	const op = "account.UpdateName"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(op, "Name is required")
	}
	if len(name) > 100 {
		return nil, apperr.Validation(op, "Name too long, max 100 characters")
	}

	res := s.db.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, failWith(s.log, op, id, fmt.Errorf("update name: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound(op, "account not found")
	}
	return s.Get(ctx, id)
}

// ChangePassword replaces the password after checking the current one.
func (s *AccountService) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	const op = "account.ChangePassword"

	if err := util.ValidatePassword(newPassword); err != nil {
		return apperr.Validation(op, err.Error())
	}

	account, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)); err != nil {
		return apperr.Validation(op, "Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return failWith(s.log, op, id, fmt.Errorf("hash password: %w", err))
	}
	if err := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Update("password_hash", string(hash)).Error; err != nil {
		return failWith(s.log, op, id, fmt.Errorf("update password: %w", err))
	}

	s.log.WithField("owner_id", id).Info("password changed")
	return nil
}

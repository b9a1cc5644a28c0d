package service

import (
	"context"
	"testing"

	"github.com/as0628/expense-tracker-project/internal/apperr"
	"github.com/as0628/expense-tracker-project/internal/logging"
	"github.com/as0628/expense-tracker-project/internal/util"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAccountService(db *gorm.DB) *AccountService {
	s := NewAccountService(db, logging.Discard(), "test-secret", "expense-tracker", 1)
	s.cost = bcrypt.MinCost
	return s
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	s := newAccountService(db)
	ctx := context.Background()

	account, err := s.Register(ctx, " Sam ", "Sam@Example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "Sam", account.Name)
	require.Equal(t, "sam@example.com", account.Email)
	require.False(t, account.IsPremium)
	require.NotEqual(t, "secret1", account.PasswordHash)

	token, got, err := s.Login(ctx, "SAM@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)

	claims, err := util.ParseToken("test-secret", token)
	require.NoError(t, err)
	require.Equal(t, account.ID, claims.UserID)
	require.Equal(t, "expense-tracker", claims.Issuer)
}

func TestRegisterRejects(t *testing.T) {
	db := newTestDB(t)
	s := newAccountService(db)
	ctx := context.Background()

	_, err := s.Register(ctx, "Tia", "tia@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.Register(ctx, "Tia again", "TIA@example.com", "secret2")
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.Register(ctx, "", "x@example.com", "secret1")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Register(ctx, "X", "not-an-email", "secret1")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Register(ctx, "X", "x@example.com", "123")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLoginFailures(t *testing.T) {
	db := newTestDB(t)
	s := newAccountService(db)
	ctx := context.Background()

	_, err := s.Register(ctx, "Uma", "uma@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = s.Login(ctx, "uma@example.com", "wrong-pass")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, _, err = s.Login(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
	require.Equal(t, "Invalid email or password", apperr.Message(err))

	_, err = s.Get(ctx, 9999)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateNameAndChangePassword(t *testing.T) {
	db := newTestDB(t)
	s := newAccountService(db)
	ctx := context.Background()

	account, err := s.Register(ctx, "Wren", "wren@example.com", "secret1")
	require.NoError(t, err)

	updated, err := s.UpdateName(ctx, account.ID, "  Wren Lee ")
	require.NoError(t, err)
	require.Equal(t, "Wren Lee", updated.Name)

	_, err = s.UpdateName(ctx, account.ID, " ")
	require.ErrorIs(t, err, apperr.ErrValidation)

	err = s.ChangePassword(ctx, account.ID, "wrong1", "secret2")
	require.ErrorIs(t, err, apperr.ErrValidation)

	err = s.ChangePassword(ctx, account.ID, "secret1", "s2")
	require.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, s.ChangePassword(ctx, account.ID, "secret1", "secret2"))
	_, _, err = s.Login(ctx, "wren@example.com", "secret2")
	require.NoError(t, err)
}

package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/as0628/expense-tracker-project/internal/apperr"
	"github.com/as0628/expense-tracker-project/internal/logging"
	"github.com/as0628/expense-tracker-project/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type outbox struct {
	to   []string
	body []string
	err  error
}

func (o *outbox) Send(_ context.Context, to, _, body string) error {
	if o.err != nil {
		return o.err
	}
	o.to = append(o.to, to)
	o.body = append(o.body, body)
	return nil
}

var resetIDPattern = regexp.MustCompile(`http://localhost:3000/password/reset/([0-9a-f-]{36})`)

func TestPasswordResetFlow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	accounts := newAccountService(db)
	_, err := accounts.Register(ctx, "Vic", "vic@example.com", "old-secret")
	require.NoError(t, err)

	mail := &outbox{}
	resets := NewPasswordReset(db, logging.Discard(), mail, "http://localhost:3000/")
	resets.cost = bcrypt.MinCost

	require.NoError(t, resets.Forgot(ctx, "VIC@example.com"))
	require.Equal(t, []string{"vic@example.com"}, mail.to)
	match := resetIDPattern.FindStringSubmatch(mail.body[0])
	require.Len(t, match, 2)
	id := match[1]

	require.NoError(t, resets.Check(ctx, id))

	err = resets.Reset(ctx, id, "short")
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.NoError(t, resets.Check(ctx, id), "a rejected password must not consume the link")

	require.NoError(t, resets.Reset(ctx, id, "new-secret"))

	_, _, err = accounts.Login(ctx, "vic@example.com", "new-secret")
	require.NoError(t, err)
	_, _, err = accounts.Login(ctx, "vic@example.com", "old-secret")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	// consumed exactly once
	err = resets.Reset(ctx, id, "another-secret")
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Equal(t, "Invalid or expired reset link", apperr.Message(err))
	require.ErrorIs(t, resets.Check(ctx, id), apperr.ErrValidation)
}

func TestPasswordForgotErrors(t *testing.T) {
	db := newTestDB(t)
	mail := &outbox{}
	resets := NewPasswordReset(db, logging.Discard(), mail, "http://localhost:3000")
	ctx := context.Background()

	require.ErrorIs(t, resets.Forgot(ctx, ""), apperr.ErrValidation)

	// unknown address: same success, nothing stored, nothing sent
	require.NoError(t, resets.Forgot(ctx, "ghost@example.com"))
	require.Empty(t, mail.to)
	var n int64
	require.NoError(t, db.Model(&models.PasswordResetRequest{}).Count(&n).Error)
	require.Zero(t, n)

	require.ErrorIs(t, resets.Check(ctx, "not-a-uuid"), apperr.ErrValidation)
	require.ErrorIs(t, resets.Check(ctx, "2f1b5a52-8c3e-4c71-9d8e-3f0f6b8f4d21"), apperr.ErrValidation)
}

func TestPasswordForgotMailFailure(t *testing.T) {
	db := newTestDB(t)
	createAccount(t, db, "wes", false)
	mail := &outbox{err: errors.New("smtp down")}
	resets := NewPasswordReset(db, logging.Discard(), mail, "http://localhost:3000")

	err := resets.Forgot(context.Background(), "wes@example.com")
	require.ErrorIs(t, err, apperr.ErrUnexpected)
}

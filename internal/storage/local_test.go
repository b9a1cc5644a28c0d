package storage

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir(), "http://localhost:3000/", "secret", time.Minute)
	require.NoError(t, err)
	return s
}

func tokenOf(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestLocalPutAndOpen(t *testing.T) {
	s := newLocal(t)

	link, err := s.Put(context.Background(), "reports/user-1-100.xlsx", []byte("data"), "application/octet-stream")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "http://localhost:3000/files/reports/user-1-100.xlsx?token="))

	p, err := s.Open("reports/user-1-100.xlsx", tokenOf(t, link))
	require.NoError(t, err)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "data", string(data))
}

func TestLocalOpenRejectsOtherKey(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	link, err := s.Put(ctx, "reports/user-1-100.xlsx", []byte("a"), "")
	require.NoError(t, err)
	_, err = s.Put(ctx, "reports/user-2-100.xlsx", []byte("b"), "")
	require.NoError(t, err)

	_, err = s.Open("reports/user-2-100.xlsx", tokenOf(t, link))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalOpenExpired(t *testing.T) {
	s := newLocal(t)

	link, err := s.Put(context.Background(), "reports/a.xlsx", []byte("a"), "")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = s.Open("reports/a.xlsx", tokenOf(t, link))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalRejectsTraversal(t *testing.T) {
	s := newLocal(t)

	for _, key := range []string{"../x", "/abs", "a/../../b", "", "a\\b", "a//b"} {
		_, err := s.Put(context.Background(), key, []byte("x"), "")
		require.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

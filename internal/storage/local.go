package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidKey   = errors.New("invalid object key")
	ErrInvalidToken = errors.New("invalid or expired download token")
)

const downloadAudience = "files"

// Local keeps objects on disk and hands out links to the /files route,
// signed with an HS256 token whose subject is the object key.
type Local struct {
	dir     string
	baseURL string
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

func NewLocal(dir, baseURL, secret string, ttl time.Duration) (*Local, error) {
	if dir == "" {
		return nil, errors.New("storage.local_dir is required")
	}
	if secret == "" {
		return nil, errors.New("a signing secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// cleanKey rejects keys that would escape the storage directory.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func (s *Local) Put(ctx context.Context, key string, body []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	full := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	// write then rename so readers never see a partial file
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, body, 0o600); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit object: %w", err)
	}

	return s.SignedURL(key)
}

// SignedURL returns the download link for key, valid for the store's TTL.
func (s *Local) SignedURL(key string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   key,
		Audience:  jwt.ClaimStrings{downloadAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign url: %w", err)
	}
	return s.baseURL + "/files/" + key + "?token=" + url.QueryEscape(token), nil
}

// Open verifies token against key and returns the object's path on disk.
func (s *Local) Open(key, token string) (string, error) {
	key, err := cleanKey(strings.TrimPrefix(key, "/"))
	if err != nil {
		return "", err
	}

	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(downloadAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject != key {
		return "", ErrInvalidToken
	}

	full := filepath.Join(s.dir, filepath.FromSlash(key))
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", os.ErrNotExist
		}
		return "", fmt.Errorf("stat object: %w", err)
	}
	return full, nil
}

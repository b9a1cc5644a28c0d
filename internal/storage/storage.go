// Package storage holds the object stores export reports are written to.
package storage

import (
	"context"
	"fmt"

	"github.com/as0628/expense-tracker-project/internal/config"
)

// Store persists a blob under key and returns a time-limited URL for it.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// New builds the store selected by cfg.Driver. baseURL and secret are used
// by the local driver to sign download links.
func New(ctx context.Context, cfg config.StorageConfig, baseURL, secret string) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir, baseURL, secret, cfg.URLTTL)
	case "gcs":
		return NewGCS(ctx, cfg.Bucket, cfg.CredentialsFile, cfg.URLTTL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS stores objects in a Google Cloud Storage bucket and returns V4
// signed GET URLs.
type GCS struct {
	client *gstorage.Client
	bucket *gstorage.BucketHandle
	ttl    time.Duration
}

// NewGCS connects with the given service-account file, or with application
// default credentials when credentialsFile is empty.
func NewGCS(ctx context.Context, bucket, credentialsFile string, ttl time.Duration) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New("storage.bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &GCS{client: client, bucket: client.Bucket(bucket), ttl: ttl}, nil
}

func (s *GCS) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", key, err)
	}

	url, err := s.bucket.SignedURL(key, &gstorage.SignedURLOptions{
		Scheme:  gstorage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", key, err)
	}
	return url, nil
}

func (s *GCS) Close() error {
	return s.client.Close()
}

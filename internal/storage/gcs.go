package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore persists objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	baseURL string
}

// NewGCSStore creates a client for bucket. When baseURL is empty, URLs use
// the gs:// scheme.
func NewGCSStore(ctx context.Context, bucket, baseURL string, opts ...option.ClientOption) (*GCSStore, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("storage: gcs bucket is required")
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: create gcs client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, baseURL: baseURL}, nil
}

// Open returns a reader for the object stored at key.
func (s *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	r, err := s.client.Bucket(s.bucket).Object(cleanKey).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: gs://%s/%s", ErrObjectNotFound, s.bucket, cleanKey)
		}
		return nil, fmt.Errorf("storage: open gcs object: %w", err)
	}
	return r, nil
}

// Write uploads the reader's content to key.
func (s *GCSStore) Write(ctx context.Context, key string, r io.Reader) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	w := s.client.Bucket(s.bucket).Object(cleanKey).NewWriter(ctx)
	if strings.HasSuffix(strings.ToLower(cleanKey), ".mp4") {
		w.ContentType = "video/mp4"
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: upload gcs object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize gcs object: %w", err)
	}
	return cleanKey, nil
}

// Delete removes the object at key.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	if err := s.client.Bucket(s.bucket).Object(cleanKey).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("%w: gs://%s/%s", ErrObjectNotFound, s.bucket, cleanKey)
		}
		return fmt.Errorf("storage: delete gcs object: %w", err)
	}
	return nil
}

// URL returns the public URL of key.
func (s *GCSStore) URL(key string) string {
	if strings.TrimSpace(s.baseURL) == "" {
		return fmt.Sprintf("gs://%s/%s", s.bucket, strings.TrimLeft(key, "/"))
	}
	return joinURL(s.baseURL, key)
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

var _ ObjectStore = (*GCSStore)(nil)

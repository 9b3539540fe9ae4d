package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"videoads/internal/infra"
)

// ErrObjectNotFound is returned when a key does not exist in the store.
var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectStore persists base assets, product images and generated videos.
type ObjectStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Write(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// DevstorageScope grants read and write access to Cloud Storage buckets.
const DevstorageScope = "https://www.googleapis.com/auth/devstorage.read_write"

// New returns the object store selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "gcs":
		opts := GoogleClientOptions(ctx, cfg, DevstorageScope)
		store, err := NewGCSStore(ctx, cfg.GCSBucket, cfg.StorageBaseURL, opts...)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("bucket", cfg.GCSBucket).Msg("storage: using google cloud storage")
		return store, nil
	case "", "filesystem":
		store, err := NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", store.BasePath()).Msg("storage: using local filesystem")
		return store, nil
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.StorageDriver)
	}
}

// GoogleClientOptions builds Google API client options for scopes. An
// explicit OAuth2 refresh token pair wins over application default
// credentials.
func GoogleClientOptions(ctx context.Context, cfg *infra.Config, scopes ...string) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.GCPProject != "" {
		opts = append(opts, option.WithQuotaProject(cfg.GCPProject))
	}
	if ts := oauthTokenSource(ctx, cfg, scopes...); ts != nil {
		opts = append(opts, option.WithTokenSource(ts))
	} else {
		opts = append(opts, option.WithScopes(scopes...))
	}
	return opts
}

func oauthTokenSource(ctx context.Context, cfg *infra.Config, scopes ...string) oauth2.TokenSource {
	if cfg.OAuthClientID == "" || cfg.OAuthClientSecret == "" || cfg.OAuthRefreshToken == "" {
		return nil
	}
	conf := &oauth2.Config{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}
	return conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  cfg.OAuthAccessToken,
		RefreshToken: cfg.OAuthRefreshToken,
	})
}

// joinURL appends a key to a public base URL.
func joinURL(baseURL, key string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return key
	}
	return baseURL + "/" + strings.TrimLeft(key, "/")
}

package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	LogFile            string
	DatabaseURL        string
	DBStatementTimeout time.Duration
	DBSlowQuery        time.Duration
	JWTSecret          string
	MigrateOnStart     bool
	StorageDriver      string
	StoragePath        string
	StorageBaseURL     string
	GCSBucket          string
	GCPProject         string
	OAuthClientID      string
	OAuthClientSecret  string
	OAuthAccessToken   string
	OAuthRefreshToken  string
	YouTubeUpload      bool
	YouTubePrivacy     string
	RabbitMQURL        string
	VideoQueue         string
	FFmpegPath         string
	WorkerConcurrency  int
	WorkerPollInterval time.Duration
	StaleAfter         time.Duration
	ReclaimSchedule    string
	BulkConcurrency    int
	CORSAllowedOrigins []string
	GeoIPDBPath        string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               port,
		LogFile:            os.Getenv("LOG_FILE"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBStatementTimeout: time.Second * time.Duration(getEnvInt("DB_STATEMENT_TIMEOUT_SECONDS", 30)),
		DBSlowQuery:        time.Millisecond * time.Duration(getEnvInt("DB_SLOW_QUERY_MS", 500)),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		MigrateOnStart:     getEnvBool("MIGRATE_ON_START", false),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", "filesystem")),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:     getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%s/static", port)),
		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCPProject:         os.Getenv("GCP_PROJECT"),
		OAuthClientID:      os.Getenv("CLIENT_ID"),
		OAuthClientSecret:  os.Getenv("CLIENT_SECRET"),
		OAuthAccessToken:   os.Getenv("ACCESS_TOKEN"),
		OAuthRefreshToken:  os.Getenv("REFRESH_TOKEN"),
		YouTubeUpload:      getEnvBool("YOUTUBE_UPLOAD", false),
		YouTubePrivacy:     strings.ToLower(getEnv("YOUTUBE_PRIVACY", "unlisted")),
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		VideoQueue:         getEnv("VIDEO_QUEUE", "video.generation.cmd"),
		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 2),
		WorkerPollInterval: time.Second * time.Duration(getEnvInt("WORKER_POLL_SECONDS", 5)),
		StaleAfter:         time.Minute * time.Duration(getEnvInt("STALE_AFTER_MINUTES", 30)),
		ReclaimSchedule:    getEnv("RECLAIM_SCHEDULE", "@every 5m"),
		BulkConcurrency:    getEnvInt("BULK_CONCURRENCY", 4),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:4200")),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.StorageDriver {
	case "filesystem":
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCS_BUCKET is required when STORAGE_DRIVER=gcs")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	switch cfg.YouTubePrivacy {
	case "public", "unlisted", "private":
	default:
		return nil, fmt.Errorf("unsupported YOUTUBE_PRIVACY %q", cfg.YouTubePrivacy)
	}

	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}
	if cfg.BulkConcurrency < 1 {
		cfg.BulkConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

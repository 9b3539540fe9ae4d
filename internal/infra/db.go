package infra

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Process roles sharing the database. Each gets its own application_name and
// pool size.
const (
	RoleAPI    = "api"
	RoleWorker = "worker"
)

const connectAttempts = 5

// NewDBPool connects a pool sized for role, retrying while the database is
// still starting.
func NewDBPool(ctx context.Context, cfg *Config, role string) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg, role)
	if err != nil {
		return nil, err
	}

	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err := connect(ctx, poolCfg)
		if err == nil {
			return pool, nil
		}
		lastErr = err
		if attempt == connectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, lastErr)
}

func connect(ctx context.Context, poolCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// poolConfig derives pool limits from the concurrency the role runs with.
// Workers hold a connection for the claim and another for the heartbeat of
// every render in flight; the API fans bulk submissions out concurrently.
func poolConfig(cfg *Config, role string) (*pgxpool.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	switch role {
	case RoleWorker:
		poolCfg.MaxConns = int32(2*cfg.WorkerConcurrency + 2)
	case RoleAPI:
		poolCfg.MaxConns = int32(max(10, cfg.BulkConcurrency+8))
	default:
		return nil, fmt.Errorf("unknown database role %q", role)
	}
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	params := poolCfg.ConnConfig.RuntimeParams
	params["application_name"] = "videoads-" + role
	if cfg.DBStatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(cfg.DBStatementTimeout.Milliseconds(), 10)
	}
	return poolCfg, nil
}

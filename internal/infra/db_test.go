package infra

import (
	"testing"
	"time"
)

func TestPoolConfigPerRole(t *testing.T) {
	cfg := &Config{
		DatabaseURL:        "postgres://u:p@localhost:5432/videoads",
		WorkerConcurrency:  3,
		BulkConcurrency:    6,
		DBStatementTimeout: 45 * time.Second,
	}

	worker, err := poolConfig(cfg, RoleWorker)
	if err != nil {
		t.Fatalf("worker pool config: %v", err)
	}
	if worker.MaxConns != 8 {
		t.Fatalf("worker MaxConns = %d, want 8", worker.MaxConns)
	}
	if got := worker.ConnConfig.RuntimeParams["application_name"]; got != "videoads-worker" {
		t.Fatalf("application_name = %q", got)
	}
	if got := worker.ConnConfig.RuntimeParams["statement_timeout"]; got != "45000" {
		t.Fatalf("statement_timeout = %q", got)
	}

	api, err := poolConfig(cfg, RoleAPI)
	if err != nil {
		t.Fatalf("api pool config: %v", err)
	}
	if api.MaxConns != 14 {
		t.Fatalf("api MaxConns = %d, want 14", api.MaxConns)
	}

	if _, err := poolConfig(cfg, "cron"); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, err := poolConfig(nil, RoleAPI); err == nil {
		t.Fatal("expected error without config")
	}
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"videoads/internal/infra"
)

func main() {
	var (
		direction string
		steps     int
	)
	flag.StringVar(&direction, "direction", "up", "Migration direction: up or down")
	flag.IntVar(&steps, "steps", 0, "Number of migrations to apply (0 = all for up, 1 for down)")
	flag.Parse()

	_ = godotenv.Load()
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	logger := infra.NewLogger(os.Getenv("APP_ENV"), "")

	m, err := infra.NewMigrator(dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: init failed")
	}
	defer m.Close()

	switch strings.ToLower(direction) {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps <= 0 {
			steps = 1
		}
		err = m.Steps(-steps)
	default:
		fmt.Fprintf(os.Stderr, "unsupported direction %q\n", direction)
		os.Exit(1)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Str("direction", direction).Msg("migrate: failed")
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		logger.Fatal().Err(verr).Msg("migrate: read version failed")
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Str("direction", direction).Msg("migrate: done")
}

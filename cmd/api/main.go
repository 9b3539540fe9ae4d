package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"videoads/internal/adapter/repo"
	"videoads/internal/http/handlers"
	httpapi "videoads/internal/http/httpapi"
	"videoads/internal/infra"
	"videoads/internal/infra/geoip"
	"videoads/internal/middleware"
	"videoads/internal/queue"
	"videoads/internal/storage"
	"videoads/internal/video"
)

func main() {
	// Optional .env
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := infra.MigrateUp(cfg.DatabaseURL, logger); err != nil {
			logger.Fatal().Err(err).Msg("migrations failed")
		}
	}

	dbpool, err := infra.NewDBPool(ctx, cfg, infra.RoleAPI)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	runner := infra.NewSQLRunner(dbpool, logger, cfg.DBSlowQuery)

	store, err := storage.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	var notifier video.Notifier = queue.Noop{}
	if cfg.RabbitMQURL != "" {
		publisher, err := queue.NewPublisher(cfg.RabbitMQURL, cfg.VideoQueue)
		if err != nil {
			logger.Warn().Err(err).Msg("rabbitmq unavailable, workers will poll")
		} else {
			defer publisher.Close()
			notifier = publisher
		}
	}

	svc, err := video.NewService(video.Deps{
		Bases:           repo.NewBaseRepository(runner),
		Products:        repo.NewProductRepository(runner),
		OfferTypes:      repo.NewOfferTypeRepository(runner),
		Videos:          repo.NewVideoRepository(runner),
		Objects:         store,
		Notifier:        notifier,
		Logger:          logger,
		BulkConcurrency: cfg.BulkConcurrency,
		StaleAfter:      cfg.StaleAfter,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build video service")
	}

	var country middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		country = resolver.CountryCode
		if c, ok := resolver.(io.Closer); ok {
			defer c.Close()
		}
	}

	opts := httpapi.Options{
		Logger:         logger,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:      cfg.RateLimitPerMin,
		Country:        country,
	}
	if fs, ok := store.(*storage.FileStore); ok {
		opts.StaticDir = fs.BasePath()
	}
	app := handlers.NewApp(svc, dbpool, logger)
	router := httpapi.NewRouter(app, opts)

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"videoads/internal/adapter/repo"
	"videoads/internal/infra"
	"videoads/internal/publish"
	"videoads/internal/queue"
	"videoads/internal/render"
	"videoads/internal/storage"
	"videoads/internal/video"
	"videoads/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg, infra.RoleWorker)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger, cfg.DBSlowQuery)

	store, err := storage.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	bases := repo.NewBaseRepository(runner)
	products := repo.NewProductRepository(runner)
	videos := repo.NewVideoRepository(runner)

	svc, err := video.NewService(video.Deps{
		Bases:      bases,
		Products:   products,
		OfferTypes: repo.NewOfferTypeRepository(runner),
		Videos:     videos,
		Objects:    store,
		Logger:     logger,
		StaleAfter: cfg.StaleAfter,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to build video service")
	}

	var wake <-chan struct{}
	if cfg.RabbitMQURL != "" {
		consumer, err := queue.NewConsumer(cfg.RabbitMQURL, cfg.VideoQueue, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("worker: rabbitmq unavailable, polling only")
		} else {
			defer consumer.Close()
			if wake, err = consumer.Wake(ctx); err != nil {
				logger.Warn().Err(err).Msg("worker: rabbitmq consume failed, polling only")
			}
		}
	}

	var publisher worker.Publisher
	if cfg.YouTubeUpload {
		yt, err := publish.NewYouTube(ctx, store, cfg.YouTubePrivacy, storage.GoogleClientOptions(ctx, cfg, publish.UploadScope)...)
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: failed to configure youtube upload")
		}
		publisher = yt
		logger.Info().Str("privacy", cfg.YouTubePrivacy).Msg("worker: youtube upload enabled")
	}

	composer := render.NewComposer(render.NewFFMpeg(cfg.FFmpegPath), store, os.TempDir(), logger)
	w, err := worker.New(worker.Options{
		Videos:          videos,
		Bases:           bases,
		Products:        products,
		Renderer:        composer,
		Reclaimer:       svc,
		Publisher:       publisher,
		Logger:          logger,
		Concurrency:     cfg.WorkerConcurrency,
		PollInterval:    cfg.WorkerPollInterval,
		ReclaimSchedule: cfg.ReclaimSchedule,
		Wake:            wake,
		Heartbeat:       cfg.StaleAfter / 3,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: invalid configuration")
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

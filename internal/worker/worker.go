// Package worker claims queued videos and renders them.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/remeh/sizedwaitgroup"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"videoads/internal/domain"
	"videoads/internal/render"
)

const maxErrorMessage = 1000

// Renderer turns a plan into a stored object.
type Renderer interface {
	Render(ctx context.Context, plan *render.Plan) (string, error)
}

// Publisher uploads a finished video to an external channel and returns the
// id it was given there.
type Publisher interface {
	Publish(ctx context.Context, v *domain.Video, key string) (string, error)
}

// Reclaimer requeues videos abandoned in the processing state.
type Reclaimer interface {
	ReclaimStale(ctx context.Context) (int64, error)
}

// Options configures a Worker.
type Options struct {
	Videos          domain.VideoRepository
	Bases           domain.BaseRepository
	Products        domain.ProductRepository
	Renderer        Renderer
	Reclaimer       Reclaimer
	Publisher       Publisher
	Logger          zerolog.Logger
	Concurrency     int
	PollInterval    time.Duration
	ReclaimSchedule string
	// Heartbeat is how often a rendering video's updated_at is refreshed. It
	// must stay well below the stale threshold used by the Reclaimer.
	Heartbeat time.Duration
	// Wake, when set, triggers an immediate claim round.
	Wake <-chan struct{}
}

type Worker struct {
	videos       domain.VideoRepository
	bases        domain.BaseRepository
	products     domain.ProductRepository
	renderer     Renderer
	reclaimer    Reclaimer
	publisher    Publisher
	logger       zerolog.Logger
	concurrency  int
	pollInterval time.Duration
	heartbeat    time.Duration
	schedule     string
	wake         <-chan struct{}
}

func New(opts Options) (*Worker, error) {
	if opts.Videos == nil || opts.Bases == nil || opts.Products == nil {
		return nil, errors.New("worker: repositories are required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("worker: renderer is required")
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = time.Minute
	}
	return &Worker{
		videos:       opts.Videos,
		bases:        opts.Bases,
		products:     opts.Products,
		renderer:     opts.Renderer,
		reclaimer:    opts.Reclaimer,
		publisher:    opts.Publisher,
		logger:       opts.Logger,
		concurrency:  opts.Concurrency,
		pollInterval: opts.PollInterval,
		heartbeat:    opts.Heartbeat,
		schedule:     opts.ReclaimSchedule,
		wake:         opts.Wake,
	}, nil
}

// Run claims and renders videos until ctx is cancelled. In-flight renders
// are waited for before returning.
func (w *Worker) Run(ctx context.Context) error {
	scheduler, err := w.startReclaim(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	swg := sizedwaitgroup.New(w.concurrency)
	defer swg.Wait()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info().Int("concurrency", w.concurrency).Dur("poll", w.pollInterval).Msg("worker: started")
	wake := w.wake
	for {
		w.drain(ctx, &swg)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-wake:
			if !ok {
				w.logger.Warn().Msg("worker: wake channel closed, polling only")
				wake = nil
			}
		}
	}
}

func (w *Worker) startReclaim(ctx context.Context) (*cron.Cron, error) {
	if w.reclaimer == nil || w.schedule == "" {
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(w.schedule, func() {
		if _, err := w.reclaimer.ReclaimStale(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("worker: reclaim stale videos failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("worker: invalid reclaim schedule %q: %w", w.schedule, err)
	}
	c.Start()
	return c, nil
}

// drain claims videos until the queue is empty, keeping at most
// w.concurrency renders in flight.
func (w *Worker) drain(ctx context.Context, swg *sizedwaitgroup.SizedWaitGroup) {
	for {
		if err := swg.AddWithContext(ctx); err != nil {
			return
		}
		v, err := w.videos.ClaimNext(ctx)
		if err != nil {
			swg.Done()
			if !errors.Is(err, domain.ErrNotFound) && ctx.Err() == nil {
				w.logger.Error().Err(err).Msg("worker: failed to claim video")
			}
			return
		}
		go func() {
			defer swg.Done()
			w.process(ctx, v)
		}()
	}
}

func (w *Worker) process(ctx context.Context, v *domain.Video) {
	log := w.logger.With().Str("video_id", v.ID).Str("base", v.BaseVideo).Logger()
	log.Info().Msg("worker: picked video")
	start := time.Now()

	stop := w.keepAlive(ctx, v.ID, log)
	plan, key, err := w.render(ctx, v)
	stop()
	if err != nil {
		if ctx.Err() != nil {
			log.Warn().Err(err).Msg("worker: render interrupted, left for reclaim")
			return
		}
		log.Error().Err(err).Msg("worker: video failed")
		if markErr := w.videos.MarkError(ctx, v.ID, errorMessage(err)); markErr != nil {
			log.Error().Err(markErr).Msg("worker: mark error failed")
		}
		return
	}
	if err := w.videos.MarkDone(ctx, v.ID, key); err != nil {
		log.Error().Err(err).Str("generated_video", key).Msg("worker: mark done failed")
		return
	}
	log.Info().Str("generated_video", key).Dur("took", time.Since(start)).Msg("worker: video done")

	if w.publisher != nil && plan.IsVideo {
		w.publish(ctx, v, key, log)
	}
}

// keepAlive touches the video every w.heartbeat until the returned stop
// function is called.
func (w *Worker) keepAlive(ctx context.Context, id string, log zerolog.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(w.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.videos.Touch(ctx, id); err != nil && ctx.Err() == nil {
					log.Warn().Err(err).Msg("worker: heartbeat failed")
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// publish uploads a done video. A failed upload leaves the video done
// without a YouTube id.
func (w *Worker) publish(ctx context.Context, v *domain.Video, key string, log zerolog.Logger) {
	id, err := w.publisher.Publish(ctx, v, key)
	if err != nil {
		log.Warn().Err(err).Msg("worker: youtube upload failed")
		return
	}
	if err := w.videos.MarkPublished(ctx, v.ID, id); err != nil {
		log.Error().Err(err).Str("youtube_id", id).Msg("worker: mark published failed")
		return
	}
	log.Info().Str("youtube_id", id).Msg("worker: video published")
}

func (w *Worker) render(ctx context.Context, v *domain.Video) (*render.Plan, string, error) {
	base, err := w.bases.Get(ctx, v.BaseVideo)
	if err != nil {
		return nil, "", fmt.Errorf("load base %q: %w", v.BaseVideo, err)
	}
	products, err := w.products.GetMany(ctx, v.ProductKeys)
	if err != nil {
		return nil, "", fmt.Errorf("load products: %w", err)
	}
	plan, err := render.BuildPlan(*base, *v, products)
	if err != nil {
		return nil, "", err
	}
	key, err := w.renderer.Render(ctx, plan)
	if err != nil {
		return nil, "", err
	}
	return plan, key, nil
}

// errorMessage keeps the tail of the failure, where ffmpeg reports the
// cause, as valid UTF-8 of at most maxErrorMessage bytes.
func errorMessage(err error) string {
	msg := err.Error()
	if stderr := render.Stderr(err); stderr != "" {
		msg = stderr
	}
	msg = strings.ToValidUTF8(msg, "")
	if len(msg) > maxErrorMessage {
		start := len(msg) - maxErrorMessage
		for start < len(msg) && !utf8.RuneStart(msg[start]) {
			start++
		}
		msg = msg[start:]
	}
	return msg
}

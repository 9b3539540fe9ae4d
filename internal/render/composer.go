package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"videoads/internal/domain"
)

const downloadConcurrency = 4

// Runner executes ffmpeg.
type Runner interface {
	Generate(ctx context.Context, args []string) error
}

// Objects is the part of the object store the composer needs.
type Objects interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Write(ctx context.Context, key string, r io.Reader) (string, error)
}

// Composer downloads a plan's inputs, runs ffmpeg and uploads the result.
type Composer struct {
	ffmpeg  Runner
	store   Objects
	tempDir string
	logger  zerolog.Logger
}

func NewComposer(ffmpeg Runner, store Objects, tempDir string, logger zerolog.Logger) *Composer {
	return &Composer{ffmpeg: ffmpeg, store: store, tempDir: tempDir, logger: logger}
}

// Render produces the plan's output and returns its storage key.
func (c *Composer) Render(ctx context.Context, plan *Plan) (string, error) {
	dir, err := os.MkdirTemp(c.tempDir, "render-*")
	if err != nil {
		return "", fmt.Errorf("%w: create work dir: %v", domain.ErrRender, err)
	}
	defer os.RemoveAll(dir)

	basePath := filepath.Join(dir, "base"+path.Ext(plan.BaseKey))
	imagePaths := make([]string, len(plan.Images))
	for i, img := range plan.Images {
		imagePaths[i] = filepath.Join(dir, fmt.Sprintf("image-%d%s", i, path.Ext(img.Key)))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadConcurrency)
	g.Go(func() error { return c.download(gctx, plan.BaseKey, basePath) })
	for i, img := range plan.Images {
		g.Go(func() error { return c.download(gctx, img.Key, imagePaths[i]) })
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	output := filepath.Join(dir, "output"+path.Ext(plan.Output))
	args := Args(plan, basePath, imagePaths, output)
	start := time.Now()
	if err := c.ffmpeg.Generate(ctx, args); err != nil {
		c.logger.Error().Err(err).Str("video_id", plan.VideoID).Str("stderr", Stderr(err)).Msg("ffmpeg failed")
		return "", fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	c.logger.Debug().Str("video_id", plan.VideoID).Dur("took", time.Since(start)).Msg("ffmpeg finished")

	f, err := os.Open(output)
	if err != nil {
		return "", fmt.Errorf("%w: open output: %v", domain.ErrRender, err)
	}
	defer f.Close()
	key, err := c.store.Write(ctx, plan.Output, f)
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", domain.ErrStorage, plan.Output, err)
	}
	return key, nil
}

func (c *Composer) download(ctx context.Context, key, dst string) error {
	r, err := c.store.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: download %s: %v", domain.ErrStorage, key, err)
	}
	defer r.Close()
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrRender, dst, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("%w: download %s: %v", domain.ErrStorage, key, err)
	}
	return f.Close()
}

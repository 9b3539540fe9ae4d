// Package render composes product overlays onto bases with ffmpeg.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var ErrFFMpegUnconfigured = errors.New("ffmpeg not configured")

// FFMpeg provides an interface to the ffmpeg executable.
type FFMpeg struct {
	path string
}

func NewFFMpeg(path string) *FFMpeg {
	return &FFMpeg{path: strings.TrimSpace(path)}
}

func (f *FFMpeg) ensureConfigured() error {
	if f == nil || f.path == "" {
		return ErrFFMpegUnconfigured
	}
	return nil
}

// Generate runs ffmpeg with the given args and waits for it to finish.
// If the command fails, the wrapped error is an *exec.ExitError carrying
// ffmpeg's stderr.
func (f *FFMpeg) Generate(ctx context.Context, args []string) error {
	if err := f.ensureConfigured(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, f.path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error starting command: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitErr.Stderr = stderr.Bytes()
			err = exitErr
		}
		return fmt.Errorf("error running ffmpeg command <%s>: %w", strings.Join(args, " "), err)
	}

	return nil
}

// Stderr extracts ffmpeg's diagnostic output from an error returned by Generate.
func Stderr(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return strings.TrimSpace(string(exitErr.Stderr))
	}
	return ""
}

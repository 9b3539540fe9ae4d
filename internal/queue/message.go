// Package queue carries "video queued" notifications between the API and
// the generation workers over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// VideoQueued is published whenever a video is persisted in the queued state.
type VideoQueued struct {
	VideoID  string    `json:"video_id"`
	QueuedAt time.Time `json:"queued_at"`
}

func encodeVideoQueued(videoID string, now time.Time) ([]byte, error) {
	if videoID == "" {
		return nil, errors.New("queue: video id is required")
	}
	return json.Marshal(VideoQueued{VideoID: videoID, QueuedAt: now.UTC()})
}

func decodeVideoQueued(body []byte) (VideoQueued, error) {
	var msg VideoQueued
	if err := json.Unmarshal(body, &msg); err != nil {
		return VideoQueued{}, fmt.Errorf("queue: decode message: %w", err)
	}
	if msg.VideoID == "" {
		return VideoQueued{}, errors.New("queue: message without video id")
	}
	return msg, nil
}

// Noop drops notifications; workers fall back to polling.
type Noop struct{}

func (Noop) PublishVideoQueued(context.Context, string) error { return nil }

func (Noop) Close() error { return nil }

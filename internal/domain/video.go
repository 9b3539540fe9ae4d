package domain

import "time"

// VideoStatus enumerates the generation lifecycle of a video.
type VideoStatus string

const (
	VideoStatusQueued     VideoStatus = "queued"
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusDone       VideoStatus = "done"
	VideoStatusError      VideoStatus = "error"
)

// Video is a request to compose products onto a base. Configs and
// ProductKeys hold one entry per base product slot.
type Video struct {
	ID             string
	Description    string
	BaseVideo      string
	Configs        [][]OverlayConfig
	ProductKeys    []string
	Status         VideoStatus
	GeneratedVideo string
	ErrorMessage   string
	// YouTubeID is set once a done video has been uploaded to YouTube.
	YouTubeID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Filled reports whether every slot has both a configuration and a product.
func (v Video) Filled() bool {
	if len(v.Configs) != len(v.ProductKeys) {
		return false
	}
	for _, cfg := range v.Configs {
		if cfg == nil {
			return false
		}
	}
	for _, key := range v.ProductKeys {
		if key == "" {
			return false
		}
	}
	return true
}

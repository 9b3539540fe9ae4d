package domain

import (
	"fmt"
	"strings"
	"time"
)

// OverlayKind enumerates what an overlay draws.
type OverlayKind string

const (
	OverlayKindText  OverlayKind = "text"
	OverlayKindImage OverlayKind = "image"
)

// OverlayConfig describes how one product field is drawn on a base.
type OverlayConfig struct {
	Field     string      `json:"field"`
	Kind      OverlayKind `json:"kind"`
	X         int         `json:"x"`
	Y         int         `json:"y"`
	Width     int         `json:"width,omitempty"`
	Height    int         `json:"height,omitempty"`
	FontSize  int         `json:"font_size,omitempty"`
	Font      string      `json:"font,omitempty"`
	Color     string      `json:"color,omitempty"`
	Align     string      `json:"align,omitempty"`
	Angle     float64     `json:"angle,omitempty"`
	StartTime float64     `json:"start_time,omitempty"`
	EndTime   float64     `json:"end_time,omitempty"`
}

// Validate checks the fields the renderer depends on.
func (c OverlayConfig) Validate() error {
	if strings.TrimSpace(c.Field) == "" {
		return fmt.Errorf("%w: overlay field is required", ErrInvalidInput)
	}
	switch c.Kind {
	case OverlayKindText, OverlayKindImage:
	default:
		return fmt.Errorf("%w: overlay kind %q must be text or image", ErrInvalidInput, c.Kind)
	}
	if c.EndTime != 0 && c.EndTime < c.StartTime {
		return fmt.Errorf("%w: overlay %q ends before it starts", ErrInvalidInput, c.Field)
	}
	return nil
}

// OfferType binds a product category to the overlay configuration used for
// one base.
type OfferType struct {
	Title     string
	Base      string
	Configs   []OverlayConfig
	CreatedAt time.Time
	UpdatedAt time.Time
}

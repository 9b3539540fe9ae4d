package domain

import (
	"strings"
	"time"
)

// ProductSlot reserves a place inside a base for one product. StartTime and
// EndTime are seconds from the start of the base and bound the window in
// which the slot's overlays are drawn; both zero means the whole base.
type ProductSlot struct {
	Name      string  `json:"name"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Base is a template asset onto which product overlays are composed.
type Base struct {
	Title     string
	File      string
	Products  []ProductSlot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsVideo reports whether the base file is an mp4 video rather than a still image.
func (b Base) IsVideo() bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(b.File)), "mp4")
}

// SlotCount returns the number of products a video on this base requires.
func (b Base) SlotCount() int {
	return len(b.Products)
}

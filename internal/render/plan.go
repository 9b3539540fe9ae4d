package render

import (
	"fmt"
	"path"
	"strings"

	"videoads/internal/domain"
)

// Window bounds when an overlay is visible, in seconds. A zero End means the
// overlay is drawn for the whole output.
type Window struct {
	Start float64
	End   float64
}

func (w Window) Active() bool {
	return w.End > 0
}

// TextOverlay is a drawtext instruction with its product value resolved.
type TextOverlay struct {
	Text     string
	X, Y     int
	FontSize int
	Font     string
	Color    string
	Align    string
	Window   Window
}

// ImageOverlay draws an object from the store on top of the base.
type ImageOverlay struct {
	Key           string
	X, Y          int
	Width, Height int
	Angle         float64
	Window        Window
}

// Plan is everything needed to render one video.
type Plan struct {
	VideoID string
	BaseKey string
	IsVideo bool
	Texts   []TextOverlay
	Images  []ImageOverlay
	Output  string
}

// BuildPlan resolves the video's per-slot overlay configs against the
// products filling each slot.
func BuildPlan(base domain.Base, v domain.Video, products []domain.Product) (*Plan, error) {
	if len(v.Configs) != base.SlotCount() || len(v.ProductKeys) != base.SlotCount() {
		return nil, fmt.Errorf("%w: video %s does not match the %d slots of base %q",
			domain.ErrIncomplete, v.ID, base.SlotCount(), base.Title)
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	plan := &Plan{
		VideoID: v.ID,
		BaseKey: base.File,
		IsVideo: base.IsVideo(),
		Output:  OutputKey(base, v),
	}
	for i, slot := range base.Products {
		product, ok := byID[v.ProductKeys[i]]
		if !ok {
			return nil, fmt.Errorf("%w: product %q", domain.ErrNotFound, v.ProductKeys[i])
		}
		for _, cfg := range v.Configs[i] {
			value, ok := product.Value(cfg.Field)
			if !ok {
				return nil, fmt.Errorf("%w: product %q has no value for %q", domain.ErrIncomplete, product.ID, cfg.Field)
			}
			win := overlayWindow(slot, cfg)
			if !plan.IsVideo {
				win = Window{}
			}
			switch cfg.Kind {
			case domain.OverlayKindImage:
				plan.Images = append(plan.Images, ImageOverlay{
					Key: value, X: cfg.X, Y: cfg.Y,
					Width: cfg.Width, Height: cfg.Height,
					Angle: cfg.Angle, Window: win,
				})
			default:
				plan.Texts = append(plan.Texts, TextOverlay{
					Text: value, X: cfg.X, Y: cfg.Y,
					FontSize: cfg.FontSize, Font: cfg.Font,
					Color: cfg.Color, Align: cfg.Align, Window: win,
				})
			}
		}
	}
	return plan, nil
}

// overlayWindow prefers the config's own timing and falls back to the slot's.
func overlayWindow(slot domain.ProductSlot, cfg domain.OverlayConfig) Window {
	if cfg.EndTime > 0 {
		return Window{Start: cfg.StartTime, End: cfg.EndTime}
	}
	return Window{Start: slot.StartTime, End: slot.EndTime}
}

// OutputKey names the generated object: generated/<slug>-<video id>.<ext>.
func OutputKey(base domain.Base, v domain.Video) string {
	title := v.Description
	if strings.TrimSpace(title) == "" {
		title = base.Title
	}
	ext := "png"
	if base.IsVideo() {
		ext = "mp4"
	}
	return path.Join("generated", fmt.Sprintf("%s-%s.%s", Slug(title), v.ID, ext))
}

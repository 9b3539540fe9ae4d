package video

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"videoads/internal/domain"
)

// BulkMessage is returned once every selected group has been submitted.
const BulkMessage = "Videos scheduled for creation!"

func newVideoID() string {
	return uuid.NewString()
}

// AddVideoInput is a single video submission.
type AddVideoInput struct {
	Description string                   `json:"description"`
	Base        string                   `json:"base"`
	Configs     [][]domain.OverlayConfig `json:"configs"`
	ProductKeys []string                 `json:"product_keys"`
}

// AddPreviewVideo validates the submission against the base and persists a
// queued video.
func (s *Service) AddPreviewVideo(ctx context.Context, in AddVideoInput) (*domain.Video, error) {
	base, err := s.bases.Get(ctx, in.Base)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown base %q", domain.ErrInvalidInput, in.Base)
		}
		return nil, err
	}
	if base.SlotCount() == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrBaseUnavailable, base.Title)
	}
	v := domain.Video{
		ID:          s.newID(),
		Description: strings.TrimSpace(in.Description),
		BaseVideo:   base.Title,
		Configs:     in.Configs,
		ProductKeys: in.ProductKeys,
		Status:      domain.VideoStatusQueued,
	}
	if len(v.Configs) != base.SlotCount() || len(v.ProductKeys) != base.SlotCount() {
		return nil, fmt.Errorf("%w: base %q needs %d products, got %d configs and %d product keys",
			domain.ErrIncomplete, base.Title, base.SlotCount(), len(v.Configs), len(v.ProductKeys))
	}
	if !v.Filled() {
		return nil, fmt.Errorf("%w: every product slot needs a configuration and a product", domain.ErrIncomplete)
	}
	for _, slot := range v.Configs {
		for _, c := range slot {
			if err := c.Validate(); err != nil {
				return nil, err
			}
		}
	}
	if err := s.checkProducts(ctx, v.ProductKeys); err != nil {
		return nil, err
	}
	if v.Description == "" {
		v.Description = base.Title
	}
	if err := s.videos.Create(ctx, &v); err != nil {
		return nil, err
	}
	if err := s.notifier.PublishVideoQueued(ctx, v.ID); err != nil {
		s.logger.Warn().Err(err).Str("video_id", v.ID).Msg("queue notification failed; workers will poll")
	}
	s.logger.Info().Str("video_id", v.ID).Str("base", v.BaseVideo).Msg("video queued")
	return &v, nil
}

func (s *Service) checkProducts(ctx context.Context, keys []string) error {
	distinct := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, k)
	}
	found, err := s.products.GetMany(ctx, distinct)
	if err != nil {
		return err
	}
	if len(found) == len(distinct) {
		return nil
	}
	for _, p := range found {
		delete(seen, p.ID)
	}
	missing := make([]string, 0, len(seen))
	for _, k := range distinct {
		if _, ok := seen[k]; ok {
			missing = append(missing, k)
		}
	}
	return fmt.Errorf("%w: unknown products %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
}

// BulkInput selects the product groups to turn into videos.
type BulkInput struct {
	Base        string   `json:"base"`
	Groups      []string `json:"groups"`
	All         bool     `json:"all"`
	Description string   `json:"description"`
}

// BulkItem reports the outcome for one group.
type BulkItem struct {
	Group   string `json:"group"`
	VideoID string `json:"video_id,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// BulkResult is returned by CreateBulk.
type BulkResult struct {
	Message string     `json:"message"`
	Items   []BulkItem `json:"items"`
}

// CreateBulk submits one video per selected group. Groups that fail
// validation are reported in the result; any other failure aborts the
// remaining groups and is returned.
func (s *Service) CreateBulk(ctx context.Context, in BulkInput) (*BulkResult, error) {
	available, err := s.AvailableGroupsForBase(ctx, in.Base)
	if err != nil {
		return nil, err
	}
	selected, err := SelectGroups(available, in.Groups, in.All)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no product groups selected", domain.ErrInvalidInput)
	}

	items := make([]BulkItem, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.bulkConcurrency)
	for i, name := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item, err := s.submitGroup(gctx, in, name, available[name])
			if err != nil {
				return fmt.Errorf("group %q: %w", name, err)
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &BulkResult{Message: BulkMessage, Items: items}, nil
}

func (s *Service) submitGroup(ctx context.Context, in BulkInput, name string, members []domain.Product) (BulkItem, error) {
	products := make([]domain.Product, len(members))
	copy(products, members)
	domain.SortByPosition(products)

	add := AddVideoInput{
		Description: groupDescription(in.Description, name),
		Base:        in.Base,
		Configs:     make([][]domain.OverlayConfig, len(products)),
		ProductKeys: make([]string, len(products)),
	}
	for i, p := range products {
		configs, err := s.ConfigsFromOfferType(ctx, p.OfferType, in.Base)
		if err != nil {
			if isValidation(err) {
				return BulkItem{Group: name, Status: "rejected", Error: err.Error()}, nil
			}
			return BulkItem{}, err
		}
		add.ProductKeys[i] = p.ID
		add.Configs[i] = configs
	}
	v, err := s.AddPreviewVideo(ctx, add)
	if err != nil {
		if isValidation(err) {
			return BulkItem{Group: name, Status: "rejected", Error: err.Error()}, nil
		}
		return BulkItem{}, err
	}
	return BulkItem{Group: name, VideoID: v.ID, Status: string(v.Status)}, nil
}

func groupDescription(prefix, group string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return group
	}
	return prefix + " - " + group
}

func isValidation(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput,
		domain.ErrIncomplete,
		domain.ErrNotFound,
		domain.ErrGroupUnavailable,
		domain.ErrBaseUnavailable,
		domain.ErrDuplicate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

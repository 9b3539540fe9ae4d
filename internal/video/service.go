// Package video implements the operator workflow for composing product
// videos: reference data, group derivation, single and bulk submissions and
// the generated video lifecycle.
package video

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"videoads/internal/domain"
	"videoads/internal/storage"
)

const defaultConfigCacheSize = 256

// Notifier announces newly queued videos to the generation workers.
type Notifier interface {
	PublishVideoQueued(ctx context.Context, videoID string) error
}

// ObjectLocator resolves and removes generated objects.
type ObjectLocator interface {
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Deps groups the collaborators of Service.
type Deps struct {
	Bases      domain.BaseRepository
	Products   domain.ProductRepository
	OfferTypes domain.OfferTypeRepository
	Videos     domain.VideoRepository
	Objects    ObjectLocator
	Notifier   Notifier
	Logger     zerolog.Logger

	BulkConcurrency int
	StaleAfter      time.Duration
	ConfigCacheSize int
}

// Service is the facade the HTTP layer drives.
type Service struct {
	bases      domain.BaseRepository
	products   domain.ProductRepository
	offerTypes domain.OfferTypeRepository
	videos     domain.VideoRepository
	objects    ObjectLocator
	notifier   Notifier
	logger     zerolog.Logger

	configs         *lru.Cache
	configMu        sync.Mutex
	configGen       uint64
	bulkConcurrency int
	staleAfter      time.Duration
	newID           func() string
}

// NewService validates deps and builds a Service.
func NewService(deps Deps) (*Service, error) {
	if deps.Bases == nil || deps.Products == nil || deps.OfferTypes == nil || deps.Videos == nil {
		return nil, errors.New("video: repositories are required")
	}
	if deps.Objects == nil {
		return nil, errors.New("video: object store is required")
	}
	size := deps.ConfigCacheSize
	if size <= 0 {
		size = defaultConfigCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("video: config cache: %w", err)
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}
	concurrency := deps.BulkConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	staleAfter := deps.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	return &Service{
		bases:           deps.Bases,
		products:        deps.Products,
		offerTypes:      deps.OfferTypes,
		videos:          deps.Videos,
		objects:         deps.Objects,
		notifier:        notifier,
		logger:          deps.Logger,
		configs:         cache,
		bulkConcurrency: concurrency,
		staleAfter:      staleAfter,
		newID:           newVideoID,
	}, nil
}

type noopNotifier struct{}

func (noopNotifier) PublishVideoQueued(context.Context, string) error { return nil }

func (s *Service) Bases(ctx context.Context) ([]domain.Base, error) {
	return s.bases.List(ctx)
}

func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func (s *Service) OfferTypes(ctx context.Context) ([]domain.OfferType, error) {
	return s.offerTypes.List(ctx)
}

func (s *Service) Videos(ctx context.Context) ([]domain.Video, error) {
	return s.videos.List(ctx)
}

// Draft is an unfilled video for a chosen base: one unset configuration and
// product key per product slot.
type Draft struct {
	Base        string                   `json:"base"`
	Configs     [][]domain.OverlayConfig `json:"configs"`
	ProductKeys []string                 `json:"product_keys"`
}

// ChooseBase loads a base and returns an empty draft sized to its slots.
func (s *Service) ChooseBase(ctx context.Context, title string) (*domain.Base, Draft, error) {
	base, err := s.bases.Get(ctx, title)
	if err != nil {
		return nil, Draft{}, err
	}
	draft := Draft{
		Base:        base.Title,
		Configs:     make([][]domain.OverlayConfig, base.SlotCount()),
		ProductKeys: make([]string, base.SlotCount()),
	}
	return base, draft, nil
}

// IsVideo reports whether v was composed on an mp4 base. A base that no
// longer exists yields false.
func (s *Service) IsVideo(ctx context.Context, v domain.Video) (bool, error) {
	base, err := s.bases.Get(ctx, v.BaseVideo)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return base.IsVideo(), nil
}

// BaseKinds maps every base title to whether it is a video base, so lists
// of videos resolve IsVideo with a single query.
func (s *Service) BaseKinds(ctx context.Context) (map[string]bool, error) {
	bases, err := s.bases.List(ctx)
	if err != nil {
		return nil, err
	}
	kinds := make(map[string]bool, len(bases))
	for _, b := range bases {
		kinds[b.Title] = b.IsVideo()
	}
	return kinds, nil
}

// DownloadURL returns the public location of the generated object, or an
// empty string while the video is still pending.
func (s *Service) DownloadURL(v domain.Video) string {
	if v.GeneratedVideo == "" {
		return ""
	}
	return s.objects.URL(v.GeneratedVideo)
}

// UpdateVideos requeues processing videos abandoned by a crashed worker and
// returns the current list.
func (s *Service) UpdateVideos(ctx context.Context) ([]domain.Video, error) {
	if _, err := s.ReclaimStale(ctx); err != nil {
		return nil, err
	}
	return s.videos.List(ctx)
}

// ReclaimStale puts processing videos older than the stale threshold back
// into the queue.
func (s *Service) ReclaimStale(ctx context.Context) (int64, error) {
	n, err := s.videos.RequeueStale(ctx, s.staleAfter)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Warn().Int64("videos", n).Dur("stale_after", s.staleAfter).Msg("requeued stale videos")
	}
	return n, nil
}

// DeleteVideo removes the video whose generated object is generatedVideo and
// the object itself. A missing object does not keep the record alive.
func (s *Service) DeleteVideo(ctx context.Context, generatedVideo string) error {
	if generatedVideo == "" {
		return fmt.Errorf("%w: generated video is required", domain.ErrInvalidInput)
	}
	v, err := s.videos.DeleteByGenerated(ctx, generatedVideo)
	if err != nil {
		return err
	}
	return s.deleteObject(ctx, v)
}

// DeleteVideoByID removes a video in any state, together with its generated
// object when it has one.
func (s *Service) DeleteVideoByID(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: video id is required", domain.ErrInvalidInput)
	}
	v, err := s.videos.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if v.GeneratedVideo == "" {
		s.logger.Info().Str("video_id", v.ID).Str("status", string(v.Status)).Msg("video deleted")
		return nil
	}
	return s.deleteObject(ctx, v)
}

func (s *Service) deleteObject(ctx context.Context, v *domain.Video) error {
	if err := s.objects.Delete(ctx, v.GeneratedVideo); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Warn().Str("video_id", v.ID).Str("object", v.GeneratedVideo).Msg("generated object already gone")
			return nil
		}
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	s.logger.Info().Str("video_id", v.ID).Str("object", v.GeneratedVideo).Msg("video deleted")
	return nil
}

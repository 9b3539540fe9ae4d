package domain

import (
	"context"
	"time"
)

// BaseRepository persists bases.
type BaseRepository interface {
	List(ctx context.Context) ([]Base, error)
	Get(ctx context.Context, title string) (*Base, error)
	Upsert(ctx context.Context, base *Base) error
	Delete(ctx context.Context, title string) error
}

// ProductRepository persists products.
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	GetMany(ctx context.Context, ids []string) ([]Product, error)
	Upsert(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
}

// OfferTypeRepository persists offer types keyed by (title, base).
type OfferTypeRepository interface {
	List(ctx context.Context) ([]OfferType, error)
	Get(ctx context.Context, title, base string) (*OfferType, error)
	Upsert(ctx context.Context, offerType *OfferType) error
	Delete(ctx context.Context, title, base string) error
}

// VideoRepository persists videos and coordinates claiming between workers.
type VideoRepository interface {
	List(ctx context.Context) ([]Video, error)
	Get(ctx context.Context, id string) (*Video, error)
	Create(ctx context.Context, video *Video) error
	ClaimNext(ctx context.Context) (*Video, error)
	MarkDone(ctx context.Context, id, generatedVideo string) error
	MarkError(ctx context.Context, id, message string) error
	MarkPublished(ctx context.Context, id, youtubeID string) error
	Touch(ctx context.Context, id string) error
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
	DeleteByGenerated(ctx context.Context, generatedVideo string) (*Video, error)
	DeleteByID(ctx context.Context, id string) (*Video, error)
}

package video

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"videoads/internal/domain"
	"videoads/internal/storage"
)

type memBases struct {
	mu    sync.Mutex
	items map[string]domain.Base
	gets  int
}

func (m *memBases) List(context.Context) ([]domain.Base, error) {
	out := make([]domain.Base, 0, len(m.items))
	for _, b := range m.items {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *memBases) Get(_ context.Context, title string) (*domain.Base, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	b, ok := m.items[title]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (m *memBases) Upsert(_ context.Context, b *domain.Base) error {
	m.items[b.Title] = *b
	return nil
}

func (m *memBases) Delete(_ context.Context, title string) error {
	if _, ok := m.items[title]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, title)
	return nil
}

type memProducts struct {
	items map[string]domain.Product
	err   error
}

func (m *memProducts) List(context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProducts) GetMany(_ context.Context, ids []string) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Product
	for _, id := range ids {
		if p, ok := m.items[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) Upsert(_ context.Context, p *domain.Product) error {
	m.items[p.ID] = *p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

type memOfferTypes struct {
	mu    sync.Mutex
	items map[string]domain.OfferType
	gets  int
	// afterGet runs once a row has been read, before Get returns it.
	afterGet func()
}

func (m *memOfferTypes) List(context.Context) ([]domain.OfferType, error) {
	out := make([]domain.OfferType, 0, len(m.items))
	for _, ot := range m.items {
		out = append(out, ot)
	}
	return out, nil
}

func (m *memOfferTypes) Get(_ context.Context, title, base string) (*domain.OfferType, error) {
	m.mu.Lock()
	m.gets++
	ot, ok := m.items[configKey(title, base)]
	hook := m.afterGet
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ot, nil
}

func (m *memOfferTypes) Upsert(_ context.Context, ot *domain.OfferType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[configKey(ot.Title, ot.Base)] = *ot
	return nil
}

func (m *memOfferTypes) Delete(_ context.Context, title, base string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, configKey(title, base))
	return nil
}

type memVideos struct {
	mu        sync.Mutex
	items     []domain.Video
	createErr error
	requeued  time.Duration
	requeueN  int64
}

func (m *memVideos) List(context.Context) ([]domain.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Video(nil), m.items...), nil
}

func (m *memVideos) Get(_ context.Context, id string) (*domain.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.items {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memVideos) Create(_ context.Context, v *domain.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.items = append(m.items, *v)
	return nil
}

func (m *memVideos) ClaimNext(context.Context) (*domain.Video, error) {
	return nil, domain.ErrNotFound
}

func (m *memVideos) MarkDone(context.Context, string, string) error { return nil }

func (m *memVideos) MarkError(context.Context, string, string) error { return nil }

func (m *memVideos) MarkPublished(context.Context, string, string) error { return nil }

func (m *memVideos) Touch(context.Context, string) error { return nil }

func (m *memVideos) DeleteByID(_ context.Context, id string) (*domain.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.items {
		if v.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memVideos) RequeueStale(_ context.Context, olderThan time.Duration) (int64, error) {
	m.requeued = olderThan
	return m.requeueN, nil
}

func (m *memVideos) DeleteByGenerated(_ context.Context, gen string) (*domain.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.items {
		if v.GeneratedVideo == gen {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memObjects struct {
	deleted []string
	missing bool
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	if m.missing {
		return fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memObjects) URL(key string) string { return "https://cdn.example/" + key }

type recordingNotifier struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (n *recordingNotifier) PublishVideoQueued(_ context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, id)
	return n.err
}

type fixture struct {
	svc        *Service
	bases      *memBases
	products   *memProducts
	offerTypes *memOfferTypes
	videos     *memVideos
	objects    *memObjects
	notifier   *recordingNotifier
}

func textConfig(field string) domain.OverlayConfig {
	return domain.OverlayConfig{Field: field, Kind: domain.OverlayKindText, X: 10, Y: 20, FontSize: 32}
}

// newFixture builds a service over a two-slot video base "promo", an image
// base "poster" and two complete groups plus one incomplete group.
func newFixture() *fixture {
	f := &fixture{
		bases: &memBases{items: map[string]domain.Base{
			"promo": {Title: "promo", File: "bases/promo.MP4", Products: []domain.ProductSlot{
				{Name: "first", StartTime: 0, EndTime: 3},
				{Name: "second", StartTime: 3, EndTime: 6},
			}},
			"poster": {Title: "poster", File: "bases/poster.png", Products: []domain.ProductSlot{{Name: "only"}}},
			"empty":  {Title: "empty", File: "bases/empty.mp4"},
		}},
		products: &memProducts{items: map[string]domain.Product{
			"p1": {ID: "p1", Title: "Shoes", OfferType: "sale", Group: "g1", Position: 2},
			"p2": {ID: "p2", Title: "Socks", OfferType: "sale", Group: "g1", Position: 1},
			"p3": {ID: "p3", Title: "Hat", OfferType: "sale", Group: "g2", Position: 1},
			"p4": {ID: "p4", Title: "Scarf", OfferType: "promo", Group: "g2", Position: 2},
			"p5": {ID: "p5", Title: "Belt", OfferType: "sale", Group: "g3", Position: 1},
			"p6": {ID: "p6", Title: "Bag", OfferType: "unset", Group: "g4", Position: 1},
			"p7": {ID: "p7", Title: "Tie", OfferType: "sale", Group: "g4", Position: 2},
		}},
		offerTypes: &memOfferTypes{items: map[string]domain.OfferType{
			configKey("sale", "promo"):  {Title: "sale", Base: "promo", Configs: []domain.OverlayConfig{textConfig("title")}},
			configKey("promo", "promo"): {Title: "promo", Base: "promo", Configs: []domain.OverlayConfig{textConfig("price")}},
			configKey("sale", "poster"): {Title: "sale", Base: "poster", Configs: []domain.OverlayConfig{textConfig("title")}},
		}},
		videos:   &memVideos{},
		objects:  &memObjects{},
		notifier: &recordingNotifier{},
	}
	svc, err := NewService(Deps{
		Bases:           f.bases,
		Products:        f.products,
		OfferTypes:      f.offerTypes,
		Videos:          f.videos,
		Objects:         f.objects,
		Notifier:        f.notifier,
		Logger:          zerolog.Nop(),
		BulkConcurrency: 2,
		StaleAfter:      10 * time.Minute,
	})
	if err != nil {
		panic(err)
	}
	var n atomic.Int64
	svc.newID = func() string {
		return fmt.Sprintf("v%d", n.Add(1))
	}
	f.svc = svc
	return f
}

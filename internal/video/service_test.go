package video

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoads/internal/domain"
)

func TestChooseBaseSizesDraft(t *testing.T) {
	f := newFixture()
	base, draft, err := f.svc.ChooseBase(context.Background(), "promo")
	require.NoError(t, err)
	assert.Equal(t, "promo", base.Title)
	assert.Len(t, draft.Configs, 2)
	assert.Len(t, draft.ProductKeys, 2)
	assert.False(t, domain.Video{Configs: draft.Configs, ProductKeys: draft.ProductKeys}.Filled())

	_, _, err = f.svc.ChooseBase(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAvailableGroupsForBase(t *testing.T) {
	f := newFixture()
	groups, err := f.svc.AvailableGroupsForBase(context.Background(), "promo")
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, groups.Names())

	g1 := groups["g1"]
	require.Len(t, g1, 2)
	assert.Equal(t, "p2", g1[0].ID, "members ordered by position")
	assert.Equal(t, "p1", g1[1].ID)

	poster, err := f.svc.AvailableGroupsForBase(context.Background(), "poster")
	require.NoError(t, err)
	assert.Equal(t, []string{"g3"}, poster.Names())
}

func TestConfigsFromOfferTypeCaches(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.ConfigsFromOfferType(ctx, "sale", "promo")
	require.NoError(t, err)
	first[0].Field = "mutated"

	second, err := f.svc.ConfigsFromOfferType(ctx, "sale", "promo")
	require.NoError(t, err)
	assert.Equal(t, "title", second[0].Field, "callers get copies")
	assert.Equal(t, 1, f.offerTypes.gets)

	require.NoError(t, f.svc.SaveOfferType(ctx, &domain.OfferType{
		Title: "sale", Base: "promo", Configs: []domain.OverlayConfig{textConfig("subtitle")},
	}))
	third, err := f.svc.ConfigsFromOfferType(ctx, "sale", "promo")
	require.NoError(t, err)
	assert.Equal(t, "subtitle", third[0].Field)
	assert.Equal(t, 2, f.offerTypes.gets)

	_, err = f.svc.ConfigsFromOfferType(ctx, "unset", "promo")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfigsFromOfferTypeSkipsCachingRacedReads(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.offerTypes.afterGet = func() {
		f.offerTypes.afterGet = nil
		require.NoError(t, f.svc.SaveOfferType(ctx, &domain.OfferType{
			Title: "sale", Base: "promo", Configs: []domain.OverlayConfig{textConfig("subtitle")},
		}))
	}
	stale, err := f.svc.ConfigsFromOfferType(ctx, "sale", "promo")
	require.NoError(t, err)
	assert.Equal(t, "title", stale[0].Field, "the raced read returns what it saw")

	fresh, err := f.svc.ConfigsFromOfferType(ctx, "sale", "promo")
	require.NoError(t, err)
	assert.Equal(t, "subtitle", fresh[0].Field, "the raced read must not be cached")
	assert.Equal(t, 2, f.offerTypes.gets)
}

func TestAddPreviewVideo(t *testing.T) {
	valid := func() AddVideoInput {
		return AddVideoInput{
			Base:        "promo",
			Configs:     [][]domain.OverlayConfig{{textConfig("title")}, {textConfig("price")}},
			ProductKeys: []string{"p1", "p4"},
		}
	}
	cases := []struct {
		name   string
		mutate func(*AddVideoInput)
		want   error
	}{
		{name: "ok", mutate: func(*AddVideoInput) {}},
		{name: "unknown base", mutate: func(in *AddVideoInput) { in.Base = "nope" }, want: domain.ErrInvalidInput},
		{name: "base without slots", mutate: func(in *AddVideoInput) { in.Base = "empty" }, want: domain.ErrBaseUnavailable},
		{name: "too few slots", mutate: func(in *AddVideoInput) { in.ProductKeys = in.ProductKeys[:1] }, want: domain.ErrIncomplete},
		{name: "unset config", mutate: func(in *AddVideoInput) { in.Configs[1] = nil }, want: domain.ErrIncomplete},
		{name: "unset product", mutate: func(in *AddVideoInput) { in.ProductKeys[0] = "" }, want: domain.ErrIncomplete},
		{name: "bad overlay", mutate: func(in *AddVideoInput) { in.Configs[0][0].Kind = "sparkle" }, want: domain.ErrInvalidInput},
		{name: "unknown product", mutate: func(in *AddVideoInput) { in.ProductKeys[1] = "ghost" }, want: domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			in := valid()
			tc.mutate(&in)
			v, err := f.svc.AddPreviewVideo(context.Background(), in)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
				assert.Empty(t, f.videos.items)
				assert.Empty(t, f.notifier.ids)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.VideoStatusQueued, v.Status)
			assert.Equal(t, "promo", v.Description)
			assert.Equal(t, []string{v.ID}, f.notifier.ids)
			assert.Len(t, f.videos.items, 1)
		})
	}
}

func TestAddPreviewVideoSurvivesNotifierFailure(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("broker down")
	_, err := f.svc.AddPreviewVideo(context.Background(), AddVideoInput{
		Base:        "poster",
		Configs:     [][]domain.OverlayConfig{{textConfig("title")}},
		ProductKeys: []string{"p5"},
	})
	require.NoError(t, err)
	assert.Len(t, f.videos.items, 1)
}

func TestSelectGroups(t *testing.T) {
	available := domain.ProductGroups{"b": nil, "a": nil, "c": nil}
	cases := []struct {
		name      string
		requested []string
		all       bool
		want      []string
		err       error
	}{
		{name: "all", all: true, requested: []string{"b"}, want: []string{"a", "b", "c"}},
		{name: "dedupe", requested: []string{"c", "a", "c"}, want: []string{"a", "c"}},
		{name: "none", requested: nil, want: []string{}},
		{name: "unknown", requested: []string{"z"}, err: domain.ErrGroupUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SelectGroups(available, tc.requested, tc.all)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCreateBulk(t *testing.T) {
	f := newFixture()
	res, err := f.svc.CreateBulk(context.Background(), BulkInput{Base: "promo", All: true, Description: "Summer"})
	require.NoError(t, err)
	assert.Equal(t, BulkMessage, res.Message)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "g1", res.Items[0].Group)
	assert.Equal(t, "g2", res.Items[1].Group)
	for _, item := range res.Items {
		assert.Equal(t, string(domain.VideoStatusQueued), item.Status)
		assert.NotEmpty(t, item.VideoID)
	}

	require.Len(t, f.videos.items, 2)
	byDesc := map[string]domain.Video{}
	for _, v := range f.videos.items {
		byDesc[v.Description] = v
	}
	g1 := byDesc["Summer - g1"]
	assert.Equal(t, []string{"p2", "p1"}, g1.ProductKeys)
	g2 := byDesc["Summer - g2"]
	assert.Equal(t, []string{"p3", "p4"}, g2.ProductKeys)
	require.Len(t, g2.Configs, 2)
	assert.Equal(t, "title", g2.Configs[0][0].Field)
	assert.Equal(t, "price", g2.Configs[1][0].Field)
}

func TestCreateBulkRejectsUnavailableGroup(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateBulk(context.Background(), BulkInput{Base: "promo", Groups: []string{"g3"}})
	assert.ErrorIs(t, err, domain.ErrGroupUnavailable)

	_, err = f.svc.CreateBulk(context.Background(), BulkInput{Base: "promo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateBulkAbortsOnInfrastructureError(t *testing.T) {
	f := newFixture()
	f.videos.createErr = errors.New("connection reset")
	_, err := f.svc.CreateBulk(context.Background(), BulkInput{Base: "promo", All: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestCreateBulkReportsValidationPerGroup(t *testing.T) {
	f := newFixture()
	f.videos.createErr = domain.ErrDuplicate
	res, err := f.svc.CreateBulk(context.Background(), BulkInput{Base: "promo", Groups: []string{"g2"}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "rejected", res.Items[0].Status)
	assert.NotEmpty(t, res.Items[0].Error)
}

func TestUpdateVideosRequeuesStale(t *testing.T) {
	f := newFixture()
	f.videos.items = []domain.Video{{ID: "a"}, {ID: "b"}}
	f.videos.requeueN = 1
	videos, err := f.svc.UpdateVideos(context.Background())
	require.NoError(t, err)
	assert.Len(t, videos, 2)
	assert.Equal(t, f.svc.staleAfter, f.videos.requeued)
}

func TestDeleteVideo(t *testing.T) {
	f := newFixture()
	f.videos.items = []domain.Video{{ID: "a", GeneratedVideo: "generated/a.mp4"}}
	require.NoError(t, f.svc.DeleteVideo(context.Background(), "generated/a.mp4"))
	assert.Empty(t, f.videos.items)
	assert.Equal(t, []string{"generated/a.mp4"}, f.objects.deleted)

	err := f.svc.DeleteVideo(context.Background(), "generated/a.mp4")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.svc.DeleteVideo(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteVideoWithMissingObject(t *testing.T) {
	f := newFixture()
	f.objects.missing = true
	f.videos.items = []domain.Video{{ID: "a", GeneratedVideo: "generated/a.mp4"}}
	require.NoError(t, f.svc.DeleteVideo(context.Background(), "generated/a.mp4"))
	assert.Empty(t, f.videos.items)
}

func TestDeleteVideoByID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.videos.items = []domain.Video{
		{ID: "queued", Status: domain.VideoStatusQueued},
		{ID: "done", Status: domain.VideoStatusDone, GeneratedVideo: "generated/done.mp4"},
	}

	require.NoError(t, f.svc.DeleteVideoByID(ctx, "queued"))
	assert.Empty(t, f.objects.deleted, "queued videos have no object to remove")

	require.NoError(t, f.svc.DeleteVideoByID(ctx, "done"))
	assert.Equal(t, []string{"generated/done.mp4"}, f.objects.deleted)
	assert.Empty(t, f.videos.items)

	assert.ErrorIs(t, f.svc.DeleteVideoByID(ctx, "done"), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteVideoByID(ctx, ""), domain.ErrInvalidInput)
}

func TestBaseKinds(t *testing.T) {
	f := newFixture()
	kinds, err := f.svc.BaseKinds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"promo": true, "poster": false, "empty": true}, kinds)
}

func TestIsVideoAndDownloadURL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ok, err := f.svc.IsVideo(ctx, domain.Video{BaseVideo: "promo"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.IsVideo(ctx, domain.Video{BaseVideo: "poster"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.IsVideo(ctx, domain.Video{BaseVideo: "deleted"})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, "", f.svc.DownloadURL(domain.Video{}))
	assert.Equal(t, "https://cdn.example/generated/x.mp4", f.svc.DownloadURL(domain.Video{GeneratedVideo: "generated/x.mp4"}))
}

func TestReferenceWritesValidate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	assert.ErrorIs(t, f.svc.SaveBase(ctx, &domain.Base{Title: "x"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.SaveBase(ctx, &domain.Base{Title: "x", File: "x.mp4", Products: []domain.ProductSlot{{StartTime: 5, EndTime: 1}}}), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.SaveProduct(ctx, &domain.Product{ID: " "}), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.SaveOfferType(ctx, &domain.OfferType{Title: "t"}), domain.ErrInvalidInput)

	p := &domain.Product{ID: "p9", OfferType: "sale"}
	require.NoError(t, f.svc.SaveProduct(ctx, p))
	assert.NotNil(t, f.products.items["p9"].Values)
	assert.ErrorIs(t, f.svc.DeleteBase(ctx, "missing"), domain.ErrNotFound)
}

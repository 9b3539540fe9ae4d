package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"videoads/internal/domain"
	"videoads/internal/http/handlers"
	"videoads/internal/middleware"
	"videoads/internal/video"
)

const secret = "router-secret"

type fakeService struct {
	handlers.VideoService

	added      video.AddVideoInput
	bulk       video.BulkInput
	deleted    string
	deletedID  string
	saved      *domain.OfferType
	titles     []string
	kindsCalls int
	isVideoN   int
}

func (f *fakeService) Bases(context.Context) ([]domain.Base, error) {
	return []domain.Base{{Title: "promo", File: "promo.mp4", Products: []domain.ProductSlot{{Name: "a"}}}}, nil
}

func (f *fakeService) ChooseBase(_ context.Context, title string) (*domain.Base, video.Draft, error) {
	f.titles = append(f.titles, title)
	if title != "promo" && title != "Shoes & Socks" {
		return nil, video.Draft{}, domain.ErrNotFound
	}
	return &domain.Base{Title: title, File: "promo.mp4", Products: []domain.ProductSlot{{Name: "a"}, {Name: "b"}}},
		video.Draft{Base: "promo", Configs: make([][]domain.OverlayConfig, 2), ProductKeys: make([]string, 2)}, nil
}

func (f *fakeService) AvailableGroupsForBase(context.Context, string) (domain.ProductGroups, error) {
	return domain.ProductGroups{
		"b": {{ID: "p3", Position: 1}},
		"a": {{ID: "p1", Position: 1}},
	}, nil
}

func (f *fakeService) Videos(context.Context) ([]domain.Video, error) {
	return []domain.Video{
		{ID: "v1", BaseVideo: "promo", Status: domain.VideoStatusDone, GeneratedVideo: "generated/v1.mp4"},
		{ID: "v2", BaseVideo: "poster", Status: domain.VideoStatusQueued},
	}, nil
}

func (f *fakeService) IsVideo(_ context.Context, v domain.Video) (bool, error) {
	f.isVideoN++
	return v.BaseVideo == "promo", nil
}

func (f *fakeService) BaseKinds(context.Context) (map[string]bool, error) {
	f.kindsCalls++
	return map[string]bool{"promo": true, "poster": false}, nil
}

func (f *fakeService) DownloadURL(v domain.Video) string {
	if v.GeneratedVideo == "" {
		return ""
	}
	return "http://cdn/" + v.GeneratedVideo
}

func (f *fakeService) AddPreviewVideo(_ context.Context, in video.AddVideoInput) (*domain.Video, error) {
	f.added = in
	if len(in.ProductKeys) == 0 {
		return nil, domain.ErrIncomplete
	}
	return &domain.Video{ID: "v9", BaseVideo: in.Base, ProductKeys: in.ProductKeys, Status: domain.VideoStatusQueued}, nil
}

func (f *fakeService) CreateBulk(_ context.Context, in video.BulkInput) (*video.BulkResult, error) {
	f.bulk = in
	return &video.BulkResult{Message: video.BulkMessage, Items: []video.BulkItem{{Group: "a", VideoID: "v10", Status: "queued"}}}, nil
}

func (f *fakeService) DeleteVideo(_ context.Context, generated string) error {
	f.deleted = generated
	return nil
}

func (f *fakeService) DeleteVideoByID(_ context.Context, id string) error {
	if id != "v2" {
		return domain.ErrNotFound
	}
	f.deletedID = id
	return nil
}

func (f *fakeService) SaveOfferType(_ context.Context, ot *domain.OfferType) error {
	f.saved = ot
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *fakeService, string) {
	t.Helper()
	svc := &fakeService{}
	app := handlers.NewApp(svc, nil, zerolog.Nop())
	token, err := middleware.SignOperatorToken(secret, "ops", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return NewRouter(app, Options{Logger: zerolog.Nop(), JWTSecret: secret, AllowedOrigins: []string{"http://localhost:4200"}}), svc, token
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	h, _, _ := newTestRouter(t)
	if rec := do(t, h, http.MethodGet, "/v1/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/v1/bases", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestBaseDraftAndGroups(t *testing.T) {
	h, _, token := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/v1/bases/promo/draft", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("draft: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var draft struct {
		Base struct {
			IsVideo bool `json:"is_video"`
		} `json:"base"`
		Draft video.Draft `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &draft); err != nil {
		t.Fatalf("decode draft: %v", err)
	}
	if !draft.Base.IsVideo || len(draft.Draft.ProductKeys) != 2 {
		t.Fatalf("unexpected draft %+v", draft)
	}

	if rec := do(t, h, http.MethodGet, "/v1/bases/nope/draft", token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown base, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/bases/promo/groups", token, "")
	var groups struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decode groups: %v", err)
	}
	if len(groups.Items) != 2 || groups.Items[0].Name != "a" || groups.Items[1].Name != "b" {
		t.Fatalf("expected groups in name order, got %+v", groups.Items)
	}
}

func TestPathParamsAreDecoded(t *testing.T) {
	h, svc, token := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/v1/bases/Shoes%20%26%20Socks/draft", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.titles) != 1 || svc.titles[0] != "Shoes & Socks" {
		t.Fatalf("expected decoded title, got %q", svc.titles)
	}

	rec = do(t, h, http.MethodPut, "/v1/offer-types/Shoes%20%26%20Socks/50%25%20off", token, `{"configs":[{"field":"price","kind":"text"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.saved == nil || svc.saved.Base != "Shoes & Socks" || svc.saved.Title != "50% off" {
		t.Fatalf("unexpected offer type %+v", svc.saved)
	}
}

func TestListVideosDecoratesItems(t *testing.T) {
	h, svc, token := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/v1/videos", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []struct {
			ID          string `json:"id"`
			IsVideo     bool   `json:"is_video"`
			DownloadURL string `json:"download_url"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(body.Items))
	}
	if !body.Items[0].IsVideo || body.Items[0].DownloadURL != "http://cdn/generated/v1.mp4" {
		t.Fatalf("unexpected first item %+v", body.Items[0])
	}
	if body.Items[1].IsVideo || body.Items[1].DownloadURL != "" {
		t.Fatalf("unexpected second item %+v", body.Items[1])
	}
	if svc.kindsCalls != 1 || svc.isVideoN != 0 {
		t.Fatalf("expected one base lookup for the list, got kinds=%d per-video=%d", svc.kindsCalls, svc.isVideoN)
	}
}

func TestCreateVideo(t *testing.T) {
	h, svc, token := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/v1/videos", token,
		`{"base":"promo","configs":[[{"field":"title","kind":"text","x":1,"y":2}]],"product_keys":["p1"]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"message":"Saved queued"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if svc.added.Base != "promo" || svc.added.Configs[0][0].Field != "title" {
		t.Fatalf("unexpected input %+v", svc.added)
	}

	rec = do(t, h, http.MethodPost, "/v1/videos", token, `{"base":"promo","configs":[],"product_keys":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete video, got %d", rec.Code)
	}
}

func TestCreateBulk(t *testing.T) {
	h, svc, token := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/v1/videos/bulk", token, `{"base":"promo","groups":["a","a"],"all":false}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), video.BulkMessage) {
		t.Fatalf("expected bulk message, got %s", rec.Body.String())
	}
	if svc.bulk.Base != "promo" || len(svc.bulk.Groups) != 2 {
		t.Fatalf("unexpected bulk input %+v", svc.bulk)
	}
}

func TestDeleteVideoByGeneratedKey(t *testing.T) {
	h, svc, token := newTestRouter(t)
	rec := do(t, h, http.MethodDelete, "/v1/videos/generated/summer-v1.mp4", token, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if svc.deleted != "generated/summer-v1.mp4" {
		t.Fatalf("unexpected key %q", svc.deleted)
	}
}

func TestDeleteVideoByID(t *testing.T) {
	h, svc, token := newTestRouter(t)
	if rec := do(t, h, http.MethodDelete, "/v1/videos/id/v2", token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if svc.deletedID != "v2" || svc.deleted != "" {
		t.Fatalf("expected delete by id only, got id=%q generated=%q", svc.deletedID, svc.deleted)
	}
	if rec := do(t, h, http.MethodDelete, "/v1/videos/id/missing", token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPutOfferTypeUsesPath(t *testing.T) {
	h, svc, token := newTestRouter(t)
	rec := do(t, h, http.MethodPut, "/v1/offer-types/promo/sale", token, `{"configs":[{"field":"price","kind":"text"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.saved == nil || svc.saved.Base != "promo" || svc.saved.Title != "sale" {
		t.Fatalf("unexpected offer type %+v", svc.saved)
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/videos", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:4200" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

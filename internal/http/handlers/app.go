package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"videoads/internal/domain"
	"videoads/internal/middleware"
	"videoads/internal/video"
)

const maxBodyBytes = 1 << 20

// VideoService is the facade the handlers drive.
type VideoService interface {
	Bases(ctx context.Context) ([]domain.Base, error)
	Products(ctx context.Context) ([]domain.Product, error)
	OfferTypes(ctx context.Context) ([]domain.OfferType, error)
	Videos(ctx context.Context) ([]domain.Video, error)
	ChooseBase(ctx context.Context, title string) (*domain.Base, video.Draft, error)
	AvailableGroupsForBase(ctx context.Context, baseTitle string) (domain.ProductGroups, error)
	ConfigsFromOfferType(ctx context.Context, offerType, baseTitle string) ([]domain.OverlayConfig, error)
	AddPreviewVideo(ctx context.Context, in video.AddVideoInput) (*domain.Video, error)
	CreateBulk(ctx context.Context, in video.BulkInput) (*video.BulkResult, error)
	UpdateVideos(ctx context.Context) ([]domain.Video, error)
	DeleteVideo(ctx context.Context, generatedVideo string) error
	DeleteVideoByID(ctx context.Context, id string) error
	IsVideo(ctx context.Context, v domain.Video) (bool, error)
	BaseKinds(ctx context.Context) (map[string]bool, error)
	DownloadURL(v domain.Video) string
	SaveBase(ctx context.Context, base *domain.Base) error
	DeleteBase(ctx context.Context, title string) error
	SaveProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	SaveOfferType(ctx context.Context, ot *domain.OfferType) error
	DeleteOfferType(ctx context.Context, title, base string) error
}

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Service VideoService
	DB      Pinger
	Logger  zerolog.Logger
}

func NewApp(service VideoService, db Pinger, logger zerolog.Logger) *App {
	return &App{Service: service, DB: db, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid payload: %v", err))
		return false
	}
	return true
}

// pathParam returns the decoded URL parameter name. chi matches routes
// against the escaped path when one is present, so "Shoes%20%26%20Socks"
// arrives still encoded.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// fail maps service errors onto HTTP responses.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrIncomplete):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrGroupUnavailable), errors.Is(err, domain.ErrBaseUnavailable):
		a.error(w, http.StatusUnprocessableEntity, "unprocessable", err.Error())
	case errors.Is(err, context.Canceled):
		a.error(w, http.StatusServiceUnavailable, "canceled", "request canceled")
	default:
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

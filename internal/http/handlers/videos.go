package handlers

import (
	"net/http"
	"time"

	"videoads/internal/domain"
	"videoads/internal/video"
)

type videoResponse struct {
	ID             string                   `json:"id"`
	Description    string                   `json:"description"`
	BaseVideo      string                   `json:"base_video"`
	Configs        [][]domain.OverlayConfig `json:"configs"`
	ProductKeys    []string                 `json:"product_keys"`
	Status         domain.VideoStatus       `json:"status"`
	GeneratedVideo string                   `json:"generated_video"`
	ErrorMessage   string                   `json:"error_message,omitempty"`
	YouTubeID      string                   `json:"youtube_id,omitempty"`
	IsVideo        bool                     `json:"is_video"`
	DownloadURL    string                   `json:"download_url,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

func (a *App) toVideoResponse(v domain.Video, isVideo bool) videoResponse {
	return videoResponse{
		ID:             v.ID,
		Description:    v.Description,
		BaseVideo:      v.BaseVideo,
		Configs:        v.Configs,
		ProductKeys:    v.ProductKeys,
		Status:         v.Status,
		GeneratedVideo: v.GeneratedVideo,
		ErrorMessage:   v.ErrorMessage,
		YouTubeID:      v.YouTubeID,
		IsVideo:        isVideo,
		DownloadURL:    a.Service.DownloadURL(v),
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

// writeVideos resolves base kinds once for the whole list.
func (a *App) writeVideos(w http.ResponseWriter, r *http.Request, videos []domain.Video) {
	kinds, err := a.Service.BaseKinds(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		items = append(items, a.toVideoResponse(v, kinds[v.BaseVideo]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := a.Service.Videos(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeVideos(w, r, videos)
}

// CreateVideo submits a single-mode video.
func (a *App) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req video.AddVideoInput
	if !a.decode(w, r, &req) {
		return
	}
	v, err := a.Service.AddPreviewVideo(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	isVideo, err := a.Service.IsVideo(r.Context(), *v)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, map[string]any{
		"message": "Saved " + string(v.Status),
		"video":   a.toVideoResponse(*v, isVideo),
	})
}

func (a *App) CreateBulkVideos(w http.ResponseWriter, r *http.Request) {
	var req video.BulkInput
	if !a.decode(w, r, &req) {
		return
	}
	res, err := a.Service.CreateBulk(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, res)
}

// RefreshVideos requeues stale renders and returns the current list.
func (a *App) RefreshVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := a.Service.UpdateVideos(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeVideos(w, r, videos)
}

func (a *App) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	generated := pathParam(r, "*")
	if generated == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "generated video required")
		return
	}
	if err := a.Service.DeleteVideo(r.Context(), generated); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteVideoByID removes a video that may not have a generated object yet.
func (a *App) DeleteVideoByID(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.DeleteVideoByID(r.Context(), pathParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

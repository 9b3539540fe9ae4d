package handlers

import (
	"net/http"
	"time"

	"videoads/internal/domain"
)

type offerTypeResponse struct {
	Title     string                 `json:"title"`
	Base      string                 `json:"base"`
	Configs   []domain.OverlayConfig `json:"configs"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type offerTypeRequest struct {
	Configs []domain.OverlayConfig `json:"configs"`
}

func toOfferTypeResponse(ot domain.OfferType) offerTypeResponse {
	configs := ot.Configs
	if configs == nil {
		configs = []domain.OverlayConfig{}
	}
	return offerTypeResponse{
		Title:     ot.Title,
		Base:      ot.Base,
		Configs:   configs,
		CreatedAt: ot.CreatedAt,
		UpdatedAt: ot.UpdatedAt,
	}
}

func (a *App) ListOfferTypes(w http.ResponseWriter, r *http.Request) {
	offerTypes, err := a.Service.OfferTypes(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]offerTypeResponse, 0, len(offerTypes))
	for _, ot := range offerTypes {
		items = append(items, toOfferTypeResponse(ot))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) PutOfferType(w http.ResponseWriter, r *http.Request) {
	var req offerTypeRequest
	if !a.decode(w, r, &req) {
		return
	}
	ot := &domain.OfferType{
		Title:   pathParam(r, "title"),
		Base:    pathParam(r, "base"),
		Configs: req.Configs,
	}
	if err := a.Service.SaveOfferType(r.Context(), ot); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toOfferTypeResponse(*ot))
}

func (a *App) DeleteOfferType(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.DeleteOfferType(r.Context(), pathParam(r, "title"), pathParam(r, "base")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OfferTypeConfigs returns the overlay configuration a product of this offer
// type contributes to a video on the base.
func (a *App) OfferTypeConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := a.Service.ConfigsFromOfferType(r.Context(), pathParam(r, "title"), pathParam(r, "base"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"configs": configs})
}

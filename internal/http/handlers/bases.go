package handlers

import (
	"net/http"
	"time"

	"videoads/internal/domain"
)

type baseResponse struct {
	Title     string               `json:"title"`
	File      string               `json:"file"`
	Products  []domain.ProductSlot `json:"products"`
	IsVideo   bool                 `json:"is_video"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type baseRequest struct {
	File     string               `json:"file"`
	Products []domain.ProductSlot `json:"products"`
}

func toBaseResponse(b domain.Base) baseResponse {
	slots := b.Products
	if slots == nil {
		slots = []domain.ProductSlot{}
	}
	return baseResponse{
		Title:     b.Title,
		File:      b.File,
		Products:  slots,
		IsVideo:   b.IsVideo(),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func (a *App) ListBases(w http.ResponseWriter, r *http.Request) {
	bases, err := a.Service.Bases(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]baseResponse, 0, len(bases))
	for _, b := range bases {
		items = append(items, toBaseResponse(b))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) PutBase(w http.ResponseWriter, r *http.Request) {
	var req baseRequest
	if !a.decode(w, r, &req) {
		return
	}
	base := &domain.Base{Title: pathParam(r, "title"), File: req.File, Products: req.Products}
	if err := a.Service.SaveBase(r.Context(), base); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toBaseResponse(*base))
}

func (a *App) DeleteBase(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.DeleteBase(r.Context(), pathParam(r, "title")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BaseDraft is the single-mode starting point: the chosen base plus an empty
// configuration sized to its product slots.
func (a *App) BaseDraft(w http.ResponseWriter, r *http.Request) {
	base, draft, err := a.Service.ChooseBase(r.Context(), pathParam(r, "title"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"base":  toBaseResponse(*base),
		"draft": draft,
	})
}

// BaseGroups lists the product groups available for bulk mode.
func (a *App) BaseGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := a.Service.AvailableGroupsForBase(r.Context(), pathParam(r, "title"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	type groupResponse struct {
		Name     string            `json:"name"`
		Products []productResponse `json:"products"`
	}
	items := make([]groupResponse, 0, len(groups))
	for _, name := range groups.Names() {
		members := make([]productResponse, 0, len(groups[name]))
		for _, p := range groups[name] {
			members = append(members, toProductResponse(p))
		}
		items = append(items, groupResponse{Name: name, Products: members})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

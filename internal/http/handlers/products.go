package handlers

import (
	"net/http"
	"time"

	"videoads/internal/domain"
)

type productResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Values    map[string]string `json:"values"`
	OfferType string            `json:"offer_type"`
	Group     string            `json:"group"`
	Position  int               `json:"position"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type productRequest struct {
	Title     string            `json:"title"`
	Values    map[string]string `json:"values"`
	OfferType string            `json:"offer_type"`
	Group     string            `json:"group"`
	Position  int               `json:"position"`
}

func toProductResponse(p domain.Product) productResponse {
	values := p.Values
	if values == nil {
		values = map[string]string{}
	}
	return productResponse{
		ID:        p.ID,
		Title:     p.Title,
		Values:    values,
		OfferType: p.OfferType,
		Group:     p.Group,
		Position:  p.Position,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (a *App) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.Service.Products(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) PutProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !a.decode(w, r, &req) {
		return
	}
	p := &domain.Product{
		ID:        pathParam(r, "id"),
		Title:     req.Title,
		Values:    req.Values,
		OfferType: req.OfferType,
		Group:     req.Group,
		Position:  req.Position,
	}
	if err := a.Service.SaveProduct(r.Context(), p); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toProductResponse(*p))
}

func (a *App) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.DeleteProduct(r.Context(), pathParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package promo

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

// Handler exposes promo administration endpoints. Redemption previews live with orders.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/promos", h.createPromo)
	r.Get("/api/v1/promos/{code}", h.getPromo)
	r.Patch("/api/v1/promos/{code}/active", h.setActive)
}

func (h *Handler) createPromo(w http.ResponseWriter, r *http.Request) {
	var req CreatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperror.Validation("invalid request body: %v", err))
		return
	}
	p, err := h.service.CreatePromo(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) getPromo(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPromo(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsActive == nil {
		respondError(w, apperror.Validation("is_active is required"))
		return
	}
	p, err := h.service.SetActive(r.Context(), chi.URLParam(r, "code"), *body.IsActive)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	status, payload := apperror.Translate(err)
	respond(w, status, payload)
}

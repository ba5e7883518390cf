package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

// Handler exposes hub area administration and a charge lookup.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/hubs/{hub}/areas", func(r chi.Router) {
		r.Get("/", h.listAreas)
		r.Put("/", h.setCharge)
		r.Get("/charge", h.charge)
	})
}

func (h *Handler) listAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.service.ListAreas(r.Context(), chi.URLParam(r, "hub"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, areas)
}

func (h *Handler) setCharge(w http.ResponseWriter, r *http.Request) {
	var a HubArea
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, apperror.Validation("invalid request body: %v", err))
		return
	}
	a.HubID = chi.URLParam(r, "hub")
	saved, err := h.service.SetCharge(r.Context(), a)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, saved)
}

func (h *Handler) charge(w http.ResponseWriter, r *http.Request) {
	hub, area := chi.URLParam(r, "hub"), r.URL.Query().Get("area")
	charge, err := h.service.Charge(r.Context(), hub, area)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, HubArea{HubID: hub, Area: normalizeArea(area), DeliveryCharge: charge})
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

package restaurant

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Route("/api/v1/restaurants", func(r chi.Router) {
		r.Post("/", h.createRestaurant)
		r.Get("/{id}", h.getRestaurant)
		r.Patch("/{id}/availability", h.setAvailability)
	})
}

func (h *Handler) createRestaurant(w http.ResponseWriter, r *http.Request) {
	var req CreateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperror.Validation("invalid request body: %v", err))
		return
	}

	res, err := h.service.CreateRestaurant(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, res)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetRestaurant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (h *Handler) setAvailability(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Availability *bool `json:"availability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Availability == nil {
		respondError(w, apperror.Validation("availability is required"))
		return
	}
	res, err := h.service.SetAvailability(r.Context(), chi.URLParam(r, "id"), *body.Availability)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, res)
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

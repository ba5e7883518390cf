package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/dishpatch-backend/internal/pkg/apperror"
)

// UserHeader carries the caller's user id, set by the upstream gateway.
const UserHeader = "X-User-ID"

// Handler exposes order HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.placeOrder)                          // POST   /api/v1/orders
		r.Post("/quote", h.quote)                          // POST   /api/v1/orders/quote
		r.Get("/{id}", h.getOrder)                         // GET    /api/v1/orders/{id}
		r.Patch("/{id}/status", h.updateStatus)            // PATCH  /api/v1/orders/{id}/status
		r.Post("/{id}/inventory", h.reconcileInventory)    // POST   /api/v1/orders/{id}/inventory
		r.Get("/customer/{user_id}", h.listCustomerOrders) // GET    /api/v1/orders/customer/{user_id}
	})
	r.Post("/api/v1/promos/avail", h.availPromo)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperror.Validation("invalid request body: %v", err))
		return
	}
	req.UserID = r.Header.Get(UserHeader)
	o, err := h.service.PlaceOrder(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperror.Validation("invalid request body: %v", err))
		return
	}
	req.UserID = r.Header.Get(UserHeader)
	q, err := h.service.Quote(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, q)
}

func (h *Handler) availPromo(w http.ResponseWriter, r *http.Request) {
	var req AvailPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperror.Validation("invalid request body: %v", err))
		return
	}
	req.UserID = r.Header.Get(UserHeader)
	p, err := h.service.AvailPromo(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperror.Validation("invalid request body: %v", err))
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) reconcileInventory(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.ReconcileInventory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListCustomerOrders(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if orders == nil {
		orders = []*Order{}
	}
	respond(w, http.StatusOK, orders)
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

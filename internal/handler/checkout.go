package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/plateful/api/internal/service"
)

// CheckoutHandler hands the cart off to the payment provider and
// confirms the result when the customer lands back on the success page.
type CheckoutHandler struct {
	store    CartReadStore
	checkout *service.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(store CartReadStore, checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{store: store, checkout: checkout}
}

// RegisterRoutes registers checkout endpoints on the given Chi router.
// The router is expected to be mounted under /restaurants/{domain}.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Start)
	r.Post("/confirm", h.Confirm)
}

type startCheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

type confirmCheckoutRequest struct {
	SessionID string `json:"session_id"`
}

type confirmCheckoutResponse struct {
	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
	Total   string    `json:"total"`
}

// Start creates a provider checkout session for the cart and returns
// the URL to redirect the customer to.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := restaurantFromDomain(w, r, h.store)
	if !ok {
		return
	}

	token := cartTokenFromRequest(r)
	if token == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no cart"})
		return
	}

	url, err := h.checkout.Start(r.Context(), restaurant.ID, token, restaurant.Domain.String)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart not found"})
		case errors.Is(err, service.ErrCartEmpty):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "cart is empty"})
		default:
			log.Printf("ERROR: start checkout: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, startCheckoutResponse{CheckoutURL: url})
}

// Confirm verifies the provider session and flips the order to PAID.
// Safe to call twice; a second confirm of a paid order is a no-op. The
// cart cookie is cleared so the next add starts a fresh draft.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := restaurantFromDomain(w, r, h.store)
	if !ok {
		return
	}

	var req confirmCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	order, err := h.checkout.Confirm(r.Context(), restaurant.ID, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		case errors.Is(err, service.ErrSessionMismatch):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "session does not match order"})
		case errors.Is(err, service.ErrPaymentUnconfirmed):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "payment not completed"})
		case errors.Is(err, service.ErrStatusConflict):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order state changed, retry"})
		default:
			log.Printf("ERROR: confirm checkout: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	clearCartCookie(w)

	writeJSON(w, http.StatusOK, confirmCheckoutResponse{
		OrderID: order.ID,
		Status:  order.Status,
		Total:   numericToString(order.Total),
	})
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/enum"
	"github.com/plateful/api/internal/middleware"
	"github.com/plateful/api/internal/service"
)

// OrderStore defines the database methods needed by order handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemOptionsByItem(ctx context.Context, orderItemID uuid.UUID) ([]database.OrderItemOption, error)
}

// OrderHandler handles the owner-facing order endpoints.
type OrderHandler struct {
	store  OrderStore
	status *service.StatusService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, status *service.StatusService) *OrderHandler {
	return &OrderHandler{store: store, status: status}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

type orderSummaryResponse struct {
	ID            uuid.UUID `json:"id"`
	Status        string    `json:"status"`
	CustomerEmail *string   `json:"customer_email"`
	Subtotal      string    `json:"subtotal"`
	Total         string    `json:"total"`
	PaymentRef    *string   `json:"payment_ref"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type orderLineOptionResponse struct {
	GroupName  string `json:"group_name"`
	OptionName string `json:"option_name"`
	PriceDelta string `json:"price_delta"`
}

type orderLineResponse struct {
	ID          uuid.UUID                 `json:"id"`
	ItemTitle   string                    `json:"item_title"`
	VariantName string                    `json:"variant_name"`
	UnitPrice   string                    `json:"unit_price"`
	OptionTotal string                    `json:"option_total"`
	Quantity    int32                     `json:"quantity"`
	Options     []orderLineOptionResponse `json:"options"`
}

type orderDetailResponse struct {
	orderSummaryResponse
	Lines []orderLineResponse `json:"lines"`
}

func toOrderSummary(o database.Order) orderSummaryResponse {
	return orderSummaryResponse{
		ID:            o.ID,
		Status:        o.Status,
		CustomerEmail: textPtr(o.CustomerEmail),
		Subtotal:      numericToString(o.Subtotal),
		Total:         numericToString(o.Total),
		PaymentRef:    textPtr(o.PaymentRef),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// --- Handlers ---

// List returns the restaurant's orders, newest first, optionally
// filtered by status. Draft carts are orders too, so the dashboard
// usually filters them out with ?status=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var statusFilter pgtype.Text
	if s := r.URL.Query().Get("status"); s != "" {
		if !enum.ValidOrderStatus(s) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
			return
		}
		statusFilter = pgtype.Text{String: s, Valid: true}
	}

	limit := int32(50)
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil || n < 1 || n > 100 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 100"})
			return
		}
		limit = int32(n)
	}

	offset := int32(0)
	if s := r.URL.Query().Get("offset"); s != "" {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
			return
		}
		offset = int32(n)
	}

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		RestaurantID: claims.RestaurantID,
		Status:       statusFilter,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderSummaryResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderSummary(o)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns one order with its line snapshots.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{
		ID:           orderID,
		RestaurantID: claims.RestaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	lines, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := orderDetailResponse{
		orderSummaryResponse: toOrderSummary(order),
		Lines:                make([]orderLineResponse, len(lines)),
	}
	for i, line := range lines {
		options, err := h.store.ListOrderItemOptionsByItem(r.Context(), line.ID)
		if err != nil {
			log.Printf("ERROR: list order item options: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}

		entry := orderLineResponse{
			ID:          line.ID,
			ItemTitle:   line.ItemTitle,
			VariantName: line.VariantName,
			UnitPrice:   numericToString(line.UnitPrice),
			OptionTotal: numericToString(line.OptionTotal),
			Quantity:    line.Quantity,
			Options:     make([]orderLineOptionResponse, len(options)),
		}
		for j, opt := range options {
			entry.Options[j] = orderLineOptionResponse{
				GroupName:  opt.GroupName,
				OptionName: opt.OptionName,
				PriceDelta: numericToString(opt.PriceDelta),
			}
		}
		resp.Lines[i] = entry
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus moves an order along the fulfillment flow.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.status.Transition(r.Context(), claims.RestaurantID, orderID, req.Status)
	if err != nil {
		writeStatusError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderSummary(order))
}

// writeStatusError maps status transition failures to HTTP codes.
// Shared with the kitchen endpoints, which drive the same flow.
func writeStatusError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownStatus):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, service.ErrInvalidTransition):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrStatusConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order changed, retry"})
	default:
		log.Printf("ERROR: order status update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

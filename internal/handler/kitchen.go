package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/plateful/api/internal/enum"
	"github.com/plateful/api/internal/middleware"
	"github.com/plateful/api/internal/service"
)

// KitchenHandler serves the kitchen board and its one-tap status
// actions. The board is poll-driven; no push channel.
type KitchenHandler struct {
	kitchen *service.KitchenService
	status  *service.StatusService
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(kitchen *service.KitchenService, status *service.StatusService) *KitchenHandler {
	return &KitchenHandler{kitchen: kitchen, status: status}
}

// RegisterRoutes registers kitchen endpoints on the given Chi router.
func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Board)
	r.Post("/{id}/start", h.action(enum.OrderStatusPreparing))
	r.Post("/{id}/ready", h.action(enum.OrderStatusReady))
	r.Post("/{id}/complete", h.action(enum.OrderStatusCompleted))
	r.Post("/{id}/cancel", h.action(enum.OrderStatusCanceled))
}

// --- Response types ---

type kitchenLineResponse struct {
	ItemTitle   string `json:"item_title"`
	VariantName string `json:"variant_name"`
	Quantity    int32  `json:"quantity"`
}

type kitchenTicketResponse struct {
	OrderID  uuid.UUID             `json:"order_id"`
	Status   string                `json:"status"`
	PlacedAt time.Time             `json:"placed_at"`
	Total    string                `json:"total"`
	Lines    []kitchenLineResponse `json:"lines"`
}

type kitchenBoardResponse struct {
	Paid      []kitchenTicketResponse `json:"paid"`
	Preparing []kitchenTicketResponse `json:"preparing"`
	Ready     []kitchenTicketResponse `json:"ready"`
}

func toTicketResponses(tickets []service.KitchenTicket) []kitchenTicketResponse {
	out := make([]kitchenTicketResponse, len(tickets))
	for i, t := range tickets {
		lines := make([]kitchenLineResponse, len(t.Lines))
		for j, l := range t.Lines {
			lines[j] = kitchenLineResponse{
				ItemTitle:   l.ItemTitle,
				VariantName: l.VariantName,
				Quantity:    l.Quantity,
			}
		}
		out[i] = kitchenTicketResponse{
			OrderID:  t.Order.ID,
			Status:   t.Order.Status,
			PlacedAt: t.Order.CreatedAt,
			Total:    numericToString(t.Order.Total),
			Lines:    lines,
		}
	}
	return out
}

// --- Handlers ---

// Board returns the active orders grouped into lanes, oldest first.
func (h *KitchenHandler) Board(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	board, err := h.kitchen.Board(r.Context(), claims.RestaurantID)
	if err != nil {
		log.Printf("ERROR: kitchen board: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, kitchenBoardResponse{
		Paid:      toTicketResponses(board.Paid),
		Preparing: toTicketResponses(board.Preparing),
		Ready:     toTicketResponses(board.Ready),
	})
}

// action builds a handler that moves the order to the given status.
func (h *KitchenHandler) action(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		order, err := h.status.Transition(r.Context(), claims.RestaurantID, orderID, target)
		if err != nil {
			writeStatusError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toOrderSummary(order))
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/plateful/api/internal/catalog"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/money"
	"github.com/plateful/api/internal/service"
)

// cartCookieName carries the draft order id between storefront requests.
const cartCookieName = "cart_id"

const cartCookieMaxAge = 30 * 24 * 60 * 60

// CartReadStore defines the database methods needed to render a cart.
// Satisfied by *database.Queries; narrow interface for testability.
type CartReadStore interface {
	GetRestaurantByDomain(ctx context.Context, domain string) (database.Restaurant, error)
	GetDraftOrder(ctx context.Context, arg database.GetDraftOrderParams) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemOptionsByItem(ctx context.Context, orderItemID uuid.UUID) ([]database.OrderItemOption, error)
}

// CartHandler handles the customer cart endpoints. The cart is a draft
// order addressed by an httpOnly cookie; no customer account needed.
type CartHandler struct {
	store CartReadStore
	carts *service.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(store CartReadStore, carts *service.CartService) *CartHandler {
	return &CartHandler{store: store, carts: carts}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
// The router is expected to be mounted under /restaurants/{domain}.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.View)
	r.Post("/items", h.AddItem)
	r.Put("/items/{lineID}", h.UpdateItem)
	r.Delete("/items/{lineID}", h.RemoveItem)
}

// --- Request / Response types ---

type addCartItemRequest struct {
	ItemID        string              `json:"item_id"`
	VariantID     string              `json:"variant_id"`
	Quantity      int32               `json:"quantity"`
	CustomerEmail string              `json:"customer_email"`
	Options       map[string][]string `json:"options"`
}

type updateCartItemRequest struct {
	Quantity int32 `json:"quantity"`
}

type cartLineOptionResponse struct {
	GroupName  string `json:"group_name"`
	OptionName string `json:"option_name"`
	PriceDelta string `json:"price_delta"`
}

type cartLineResponse struct {
	ID          uuid.UUID                `json:"id"`
	ItemTitle   string                   `json:"item_title"`
	VariantName string                   `json:"variant_name"`
	UnitPrice   string                   `json:"unit_price"`
	OptionTotal string                   `json:"option_total"`
	Quantity    int32                    `json:"quantity"`
	LineTotal   string                   `json:"line_total"`
	Options     []cartLineOptionResponse `json:"options"`
}

type cartResponse struct {
	CartID   *uuid.UUID         `json:"cart_id"`
	Subtotal string             `json:"subtotal"`
	Total    string             `json:"total"`
	Lines    []cartLineResponse `json:"lines"`
}

func emptyCartResponse() cartResponse {
	return cartResponse{Subtotal: "0.00", Total: "0.00", Lines: []cartLineResponse{}}
}

// --- Handlers ---

// View returns the current cart, or an empty one when the cookie is
// absent or stale. A stale cookie is not an error to the customer.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := restaurantFromDomain(w, r, h.store)
	if !ok {
		return
	}

	token := cartTokenFromRequest(r)
	if token == uuid.Nil {
		writeJSON(w, http.StatusOK, emptyCartResponse())
		return
	}

	order, err := h.store.GetDraftOrder(r.Context(), database.GetDraftOrderParams{
		ID:           token,
		RestaurantID: restaurant.ID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusOK, emptyCartResponse())
			return
		}
		log.Printf("ERROR: get draft order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.buildCartResponse(r.Context(), order)
	if err != nil {
		log.Printf("ERROR: build cart response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddItem adds a line to the cart, creating the cart on first use. The
// draft order id goes back to the customer as the cart cookie.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := restaurantFromDomain(w, r, h.store)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item_id"})
		return
	}

	variantID := uuid.Nil
	if req.VariantID != "" {
		variantID, err = uuid.Parse(req.VariantID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid variant_id"})
			return
		}
	}

	selection, err := parseSelection(req.Options)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid options"})
		return
	}

	order, err := h.carts.AddLine(r.Context(), service.AddLineRequest{
		RestaurantID:  restaurant.ID,
		CartToken:     cartTokenFromRequest(r),
		CustomerEmail: req.CustomerEmail,
		ItemID:        itemID,
		VariantID:     variantID,
		Selection:     selection,
		Quantity:      req.Quantity,
	})
	if err != nil {
		h.writeCartError(w, err)
		return
	}

	setCartCookie(w, order.ID)

	resp, err := h.buildCartResponse(r.Context(), order)
	if err != nil {
		log.Printf("ERROR: build cart response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// UpdateItem changes a line's quantity. Zero removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := restaurantFromDomain(w, r, h.store)
	if !ok {
		return
	}

	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line ID"})
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.carts.SetLineQuantity(r.Context(), restaurant.ID, cartTokenFromRequest(r), lineID, req.Quantity)
	if err != nil {
		h.writeCartError(w, err)
		return
	}

	resp, err := h.buildCartResponse(r.Context(), order)
	if err != nil {
		log.Printf("ERROR: build cart response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// RemoveItem deletes a line from the cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := restaurantFromDomain(w, r, h.store)
	if !ok {
		return
	}

	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line ID"})
		return
	}

	order, err := h.carts.RemoveLine(r.Context(), restaurant.ID, cartTokenFromRequest(r), lineID)
	if err != nil {
		h.writeCartError(w, err)
		return
	}

	resp, err := h.buildCartResponse(r.Context(), order)
	if err != nil {
		log.Printf("ERROR: build cart response: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *CartHandler) writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuantityInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
	case errors.Is(err, catalog.ErrItemNotFound), errors.Is(err, catalog.ErrItemUnavailable):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
	case errors.Is(err, catalog.ErrVariantNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "variant not found"})
	case errors.Is(err, catalog.ErrSelectionInvalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrLineNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "line not found"})
	case errors.Is(err, service.ErrOrderNotEditable):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order is no longer editable"})
	default:
		log.Printf("ERROR: cart operation: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func (h *CartHandler) buildCartResponse(ctx context.Context, order database.Order) (cartResponse, error) {
	lines, err := h.store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return cartResponse{}, err
	}

	id := order.ID
	resp := cartResponse{
		CartID:   &id,
		Subtotal: numericToString(order.Subtotal),
		Total:    numericToString(order.Total),
		Lines:    make([]cartLineResponse, len(lines)),
	}

	for i, line := range lines {
		options, err := h.store.ListOrderItemOptionsByItem(ctx, line.ID)
		if err != nil {
			return cartResponse{}, err
		}

		entry := cartLineResponse{
			ID:          line.ID,
			ItemTitle:   line.ItemTitle,
			VariantName: line.VariantName,
			UnitPrice:   numericToString(line.UnitPrice),
			OptionTotal: numericToString(line.OptionTotal),
			Quantity:    line.Quantity,
			Options:     make([]cartLineOptionResponse, len(options)),
		}
		entry.LineTotal = money.LineTotal(
			numericToDecimal(line.UnitPrice),
			numericToDecimal(line.OptionTotal),
			line.Quantity,
		).StringFixed(2)
		for j, opt := range options {
			entry.Options[j] = cartLineOptionResponse{
				GroupName:  opt.GroupName,
				OptionName: opt.OptionName,
				PriceDelta: numericToString(opt.PriceDelta),
			}
		}
		resp.Lines[i] = entry
	}

	return resp, nil
}

func parseSelection(raw map[string][]string) (catalog.Selection, error) {
	if len(raw) == 0 {
		return catalog.Selection{}, nil
	}
	sel := make(catalog.Selection, len(raw))
	for groupStr, optionStrs := range raw {
		groupID, err := uuid.Parse(groupStr)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, len(optionStrs))
		for i, s := range optionStrs {
			ids[i], err = uuid.Parse(s)
			if err != nil {
				return nil, err
			}
		}
		sel[groupID] = ids
	}
	return sel, nil
}

func cartTokenFromRequest(r *http.Request) uuid.UUID {
	cookie, err := r.Cookie(cartCookieName)
	if err != nil {
		return uuid.Nil
	}
	token, err := uuid.Parse(cookie.Value)
	if err != nil {
		return uuid.Nil
	}
	return token
}

func setCartCookie(w http.ResponseWriter, cartID uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    cartID.String(),
		Path:     "/",
		MaxAge:   cartCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCartCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

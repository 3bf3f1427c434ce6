package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/enum"
	"github.com/plateful/api/internal/handler"
	"github.com/plateful/api/internal/service"
)

// mockOrderStore implements handler.OrderStore and service.StatusStore
// with in-memory maps, so the orders handler can run the real status
// service against it.
type mockOrderStore struct {
	orders      map[uuid.UUID]database.Order
	lines       map[uuid.UUID][]database.OrderItem
	lineOptions map[uuid.UUID][]database.OrderItemOption
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders:      make(map[uuid.UUID]database.Order),
		lines:       make(map[uuid.UUID][]database.OrderItem),
		lineOptions: make(map[uuid.UUID][]database.OrderItemOption),
	}
}

func (m *mockOrderStore) ListOrders(_ context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	var out []database.Order
	for _, o := range m.orders {
		if o.RestaurantID != arg.RestaurantID {
			continue
		}
		if arg.Status.Valid && o.Status != arg.Status.String {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderStore) GetOrder(_ context.Context, arg database.GetOrderParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok || o.RestaurantID != arg.RestaurantID {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderStore) ListOrderItemsByOrder(_ context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	return m.lines[orderID], nil
}

func (m *mockOrderStore) ListOrderItemOptionsByItem(_ context.Context, orderItemID uuid.UUID) ([]database.OrderItemOption, error) {
	return m.lineOptions[orderItemID], nil
}

func (m *mockOrderStore) UpdateOrderStatus(_ context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok || o.RestaurantID != arg.RestaurantID || o.Status != arg.FromStatus {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	o.UpdatedAt = time.Now()
	m.orders[arg.ID] = o
	return o, nil
}

func (m *mockOrderStore) MarkOrderPaid(_ context.Context, arg database.MarkOrderPaidParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok || o.RestaurantID != arg.RestaurantID || o.Status != enum.OrderStatusDraft {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = enum.OrderStatusPaid
	o.PaymentRef = arg.PaymentRef
	m.orders[arg.ID] = o
	return o, nil
}

func (m *mockOrderStore) seedOrder(t *testing.T, restaurantID uuid.UUID, status, total string) database.Order {
	t.Helper()
	o := database.Order{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Status:       status,
		Subtotal:     makeNumeric(t, total),
		Total:        makeNumeric(t, total),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.orders[o.ID] = o
	return o
}

func setupOrderRouter(restaurantID uuid.UUID, store *mockOrderStore) *chi.Mux {
	statuses := service.NewStatusService(fakePool{}, func(db database.DBTX) service.StatusStore {
		return store
	})
	h := handler.NewOrderHandler(store, statuses)
	return authedRouter(restaurantID, func(r chi.Router) {
		r.Route("/orders", h.RegisterRoutes)
	})
}

func TestOrderHandler_List_FiltersByStatus(t *testing.T) {
	restaurantID := uuid.New()
	store := newMockOrderStore()
	store.seedOrder(t, restaurantID, enum.OrderStatusPaid, "21.98")
	store.seedOrder(t, restaurantID, enum.OrderStatusDraft, "10.99")
	store.seedOrder(t, uuid.New(), enum.OrderStatusPaid, "5.00")
	router := setupOrderRouter(restaurantID, store)

	rr := doRequest(t, router, http.MethodGet, "/orders?status=PAID", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	orders := decodeList(t, rr)
	if len(orders) != 1 {
		t.Fatalf("orders: got %d, want 1", len(orders))
	}
	if orders[0]["status"] != enum.OrderStatusPaid {
		t.Errorf("status: got %v, want PAID", orders[0]["status"])
	}
	if orders[0]["total"] != "21.98" {
		t.Errorf("total: got %v, want 21.98", orders[0]["total"])
	}
}

func TestOrderHandler_List_UnknownStatusFilter(t *testing.T) {
	router := setupOrderRouter(uuid.New(), newMockOrderStore())

	rr := doRequest(t, router, http.MethodGet, "/orders?status=SHIPPED", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	if resp := decodeObj(t, rr); resp["error"] != "unknown status" {
		t.Errorf("error: got %v, want 'unknown status'", resp["error"])
	}
}

func TestOrderHandler_List_BadLimit(t *testing.T) {
	router := setupOrderRouter(uuid.New(), newMockOrderStore())

	rr := doRequest(t, router, http.MethodGet, "/orders?limit=500", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestOrderHandler_List_BadOffset(t *testing.T) {
	router := setupOrderRouter(uuid.New(), newMockOrderStore())

	rr := doRequest(t, router, http.MethodGet, "/orders?offset=-1", nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestOrderHandler_Get_WithLines(t *testing.T) {
	restaurantID := uuid.New()
	store := newMockOrderStore()
	order := store.seedOrder(t, restaurantID, enum.OrderStatusPaid, "12.99")
	line := database.OrderItem{
		ID:          uuid.New(),
		OrderID:     order.ID,
		ItemTitle:   "Fish Plate",
		VariantName: "Lunch",
		UnitPrice:   makeNumeric(t, "10.99"),
		OptionTotal: makeNumeric(t, "2.00"),
		Quantity:    1,
	}
	store.lines[order.ID] = []database.OrderItem{line}
	store.lineOptions[line.ID] = []database.OrderItemOption{
		{ID: uuid.New(), OrderItemID: line.ID, GroupName: "Fish Type", OptionName: "Salmon", PriceDelta: makeNumeric(t, "2.00")},
	}
	router := setupOrderRouter(restaurantID, store)

	rr := doRequest(t, router, http.MethodGet, "/orders/"+order.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeObj(t, rr)
	if resp["status"] != enum.OrderStatusPaid {
		t.Errorf("status: got %v, want PAID", resp["status"])
	}
	lines := resp["lines"].([]interface{})
	if len(lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(lines))
	}
	got := lines[0].(map[string]interface{})
	if got["item_title"] != "Fish Plate" || got["variant_name"] != "Lunch" {
		t.Errorf("line: got %v", got)
	}
	options := got["options"].([]interface{})
	if len(options) != 1 {
		t.Fatalf("options: got %d, want 1", len(options))
	}
	opt := options[0].(map[string]interface{})
	if opt["option_name"] != "Salmon" || opt["price_delta"] != "2.00" {
		t.Errorf("option: got %v", opt)
	}
}

func TestOrderHandler_Get_WrongRestaurant(t *testing.T) {
	store := newMockOrderStore()
	foreign := store.seedOrder(t, uuid.New(), enum.OrderStatusPaid, "5.00")
	router := setupOrderRouter(uuid.New(), store)

	rr := doRequest(t, router, http.MethodGet, "/orders/"+foreign.ID.String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestOrderHandler_UpdateStatus_Valid(t *testing.T) {
	restaurantID := uuid.New()
	store := newMockOrderStore()
	order := store.seedOrder(t, restaurantID, enum.OrderStatusPaid, "21.98")
	router := setupOrderRouter(restaurantID, store)

	rr := doRequest(t, router, http.MethodPatch, "/orders/"+order.ID.String()+"/status", map[string]string{
		"status": enum.OrderStatusPreparing,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeObj(t, rr); resp["status"] != enum.OrderStatusPreparing {
		t.Errorf("status: got %v, want PREPARING", resp["status"])
	}
	if store.orders[order.ID].Status != enum.OrderStatusPreparing {
		t.Errorf("stored status: got %s, want PREPARING", store.orders[order.ID].Status)
	}
}

func TestOrderHandler_UpdateStatus_UnknownStatus(t *testing.T) {
	restaurantID := uuid.New()
	store := newMockOrderStore()
	order := store.seedOrder(t, restaurantID, enum.OrderStatusPaid, "21.98")
	router := setupOrderRouter(restaurantID, store)

	rr := doRequest(t, router, http.MethodPatch, "/orders/"+order.ID.String()+"/status", map[string]string{
		"status": "SHIPPED",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestOrderHandler_UpdateStatus_InvalidTransition(t *testing.T) {
	restaurantID := uuid.New()
	store := newMockOrderStore()
	order := store.seedOrder(t, restaurantID, enum.OrderStatusCompleted, "21.98")
	router := setupOrderRouter(restaurantID, store)

	rr := doRequest(t, router, http.MethodPatch, "/orders/"+order.ID.String()+"/status", map[string]string{
		"status": enum.OrderStatusPreparing,
	})

	// Terminal statuses do not move.
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}
	if store.orders[order.ID].Status != enum.OrderStatusCompleted {
		t.Error("terminal order changed status")
	}
}

func TestOrderHandler_UpdateStatus_DraftLocked(t *testing.T) {
	restaurantID := uuid.New()
	store := newMockOrderStore()
	order := store.seedOrder(t, restaurantID, enum.OrderStatusDraft, "10.99")
	router := setupOrderRouter(restaurantID, store)

	rr := doRequest(t, router, http.MethodPatch, "/orders/"+order.ID.String()+"/status", map[string]string{
		"status": enum.OrderStatusPreparing,
	})

	// Drafts only advance through payment confirmation.
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}
}

func TestOrderHandler_UpdateStatus_NotFound(t *testing.T) {
	router := setupOrderRouter(uuid.New(), newMockOrderStore())

	rr := doRequest(t, router, http.MethodPatch, "/orders/"+uuid.NewString()+"/status", map[string]string{
		"status": enum.OrderStatusPreparing,
	})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestOrderHandler_UpdateStatus_WrongRestaurant(t *testing.T) {
	store := newMockOrderStore()
	foreign := store.seedOrder(t, uuid.New(), enum.OrderStatusPaid, "21.98")
	router := setupOrderRouter(uuid.New(), store)

	rr := doRequest(t, router, http.MethodPatch, "/orders/"+foreign.ID.String()+"/status", map[string]string{
		"status": enum.OrderStatusPreparing,
	})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
	if store.orders[foreign.ID].Status != enum.OrderStatusPaid {
		t.Error("foreign order changed status")
	}
}

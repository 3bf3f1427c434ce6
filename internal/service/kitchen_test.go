package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/enum"
)

type mockKitchenStore struct {
	listKitchenOrdersFn     func(ctx context.Context, restaurantID uuid.UUID) ([]database.Order, error)
	listOrderItemsByOrderFn func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

func (m *mockKitchenStore) ListKitchenOrders(ctx context.Context, restaurantID uuid.UUID) ([]database.Order, error) {
	return m.listKitchenOrdersFn(ctx, restaurantID)
}
func (m *mockKitchenStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	return m.listOrderItemsByOrderFn(ctx, orderID)
}

func kitchenOrder(restaurantID uuid.UUID, status string, age time.Duration) database.Order {
	return database.Order{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Status:       status,
		CreatedAt:    time.Now().Add(-age),
	}
}

func TestBoard_GroupsByStatus(t *testing.T) {
	restaurantID := uuid.New()
	paid := kitchenOrder(restaurantID, enum.OrderStatusPaid, 5*time.Minute)
	preparing := kitchenOrder(restaurantID, enum.OrderStatusPreparing, 10*time.Minute)
	ready := kitchenOrder(restaurantID, enum.OrderStatusReady, 15*time.Minute)

	items := map[uuid.UUID][]database.OrderItem{
		paid.ID: {
			{OrderID: paid.ID, ItemTitle: "Fish Plate", VariantName: "Lunch", Quantity: 2},
		},
		preparing.ID: {
			{OrderID: preparing.ID, ItemTitle: "Jerk Chicken", VariantName: "Dinner", Quantity: 1},
		},
	}

	store := &mockKitchenStore{
		listKitchenOrdersFn: func(ctx context.Context, rid uuid.UUID) ([]database.Order, error) {
			if rid != restaurantID {
				return nil, nil
			}
			return []database.Order{ready, preparing, paid}, nil
		},
		listOrderItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
			return items[orderID], nil
		},
	}

	board, err := NewKitchenService(store).Board(context.Background(), restaurantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(board.Paid) != 1 || len(board.Preparing) != 1 || len(board.Ready) != 1 {
		t.Fatalf("lanes: got %d/%d/%d, want 1/1/1", len(board.Paid), len(board.Preparing), len(board.Ready))
	}
	if board.Paid[0].Order.ID != paid.ID {
		t.Errorf("paid lane holds wrong order")
	}
	if len(board.Paid[0].Lines) != 1 || board.Paid[0].Lines[0].ItemTitle != "Fish Plate" {
		t.Errorf("paid ticket lines: got %+v", board.Paid[0].Lines)
	}
	if board.Paid[0].Lines[0].Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", board.Paid[0].Lines[0].Quantity)
	}
	if len(board.Ready[0].Lines) != 0 {
		t.Errorf("ready ticket should have no lines, got %d", len(board.Ready[0].Lines))
	}
}

func TestGroupTickets_LanesOldestFirst(t *testing.T) {
	restaurantID := uuid.New()
	newer := kitchenOrder(restaurantID, enum.OrderStatusPaid, 1*time.Minute)
	older := kitchenOrder(restaurantID, enum.OrderStatusPaid, 30*time.Minute)
	middle := kitchenOrder(restaurantID, enum.OrderStatusPaid, 10*time.Minute)

	board := GroupTickets([]KitchenTicket{
		{Order: newer}, {Order: older}, {Order: middle},
	})

	if len(board.Paid) != 3 {
		t.Fatalf("expected 3 paid tickets, got %d", len(board.Paid))
	}
	if board.Paid[0].Order.ID != older.ID || board.Paid[1].Order.ID != middle.ID || board.Paid[2].Order.ID != newer.ID {
		t.Errorf("paid lane not oldest first")
	}
}

func TestGroupTickets_IgnoresNonKitchenStatuses(t *testing.T) {
	restaurantID := uuid.New()
	board := GroupTickets([]KitchenTicket{
		{Order: kitchenOrder(restaurantID, enum.OrderStatusDraft, 0)},
		{Order: kitchenOrder(restaurantID, enum.OrderStatusCompleted, 0)},
		{Order: kitchenOrder(restaurantID, enum.OrderStatusCanceled, 0)},
	})

	if len(board.Paid)+len(board.Preparing)+len(board.Ready) != 0 {
		t.Errorf("terminal/draft orders must not reach the board: %+v", board)
	}
}

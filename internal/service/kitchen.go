package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/enum"
)

// KitchenStore defines the DB methods the kitchen board needs.
// Satisfied by *database.Queries; narrow interface for testability.
type KitchenStore interface {
	ListKitchenOrders(ctx context.Context, restaurantID uuid.UUID) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// KitchenLine is one line of an order as the kitchen sees it.
type KitchenLine struct {
	ItemTitle   string `json:"item_title"`
	VariantName string `json:"variant_name"`
	Quantity    int32  `json:"quantity"`
}

// KitchenTicket is one active order on the board.
type KitchenTicket struct {
	Order database.Order `json:"order"`
	Lines []KitchenLine  `json:"lines"`
}

// KitchenBoard groups active orders by status, each lane oldest first.
type KitchenBoard struct {
	Paid      []KitchenTicket `json:"paid"`
	Preparing []KitchenTicket `json:"preparing"`
	Ready     []KitchenTicket `json:"ready"`
}

// KitchenService assembles the live board for one restaurant.
type KitchenService struct {
	store KitchenStore
}

func NewKitchenService(store KitchenStore) *KitchenService {
	return &KitchenService{store: store}
}

// Board fetches the active orders and their lines and groups them into
// lanes. A plain read; the dashboard polls this.
func (s *KitchenService) Board(ctx context.Context, restaurantID uuid.UUID) (KitchenBoard, error) {
	orders, err := s.store.ListKitchenOrders(ctx, restaurantID)
	if err != nil {
		return KitchenBoard{}, fmt.Errorf("list kitchen orders: %w", err)
	}

	tickets := make([]KitchenTicket, 0, len(orders))
	for _, order := range orders {
		items, err := s.store.ListOrderItemsByOrder(ctx, order.ID)
		if err != nil {
			return KitchenBoard{}, fmt.Errorf("list order items: %w", err)
		}
		lines := make([]KitchenLine, 0, len(items))
		for _, it := range items {
			lines = append(lines, KitchenLine{
				ItemTitle:   it.ItemTitle,
				VariantName: it.VariantName,
				Quantity:    it.Quantity,
			})
		}
		tickets = append(tickets, KitchenTicket{Order: order, Lines: lines})
	}

	return GroupTickets(tickets), nil
}

// GroupTickets splits tickets into status lanes, each sorted oldest
// first so the kitchen works the queue in arrival order.
func GroupTickets(tickets []KitchenTicket) KitchenBoard {
	var board KitchenBoard
	for _, t := range tickets {
		switch t.Order.Status {
		case enum.OrderStatusPaid:
			board.Paid = append(board.Paid, t)
		case enum.OrderStatusPreparing:
			board.Preparing = append(board.Preparing, t)
		case enum.OrderStatusReady:
			board.Ready = append(board.Ready, t)
		}
	}
	for _, lane := range [][]KitchenTicket{board.Paid, board.Preparing, board.Ready} {
		sort.SliceStable(lane, func(i, j int) bool {
			return lane[i].Order.CreatedAt.Before(lane[j].Order.CreatedAt)
		})
	}
	return board
}

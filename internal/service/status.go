package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/enum"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStatusConflict     = errors.New("order status changed concurrently")
	ErrUnknownStatus      = errors.New("unknown order status")
	ErrPaymentUnconfirmed = errors.New("payment not confirmed")
)

// allowedTransitions whitelists the lifecycle moves the dashboard may
// make. DRAFT is deliberately absent: drafts only advance through
// payment confirmation. COMPLETED and CANCELED are terminal.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPaid:      {enum.OrderStatusPreparing, enum.OrderStatusReady, enum.OrderStatusCanceled},
	enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCanceled},
	enum.OrderStatusReady:     {enum.OrderStatusCompleted, enum.OrderStatusCanceled},
}

// ValidateTransition reports whether an order may move from current to
// next.
func ValidateTransition(current, next string) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("%w: cannot transition from %s", ErrInvalidTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
}

// StatusStore defines the DB methods the status service needs.
// Satisfied by *database.Queries; narrow interface for testability.
type StatusStore interface {
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	MarkOrderPaid(ctx context.Context, arg database.MarkOrderPaidParams) (database.Order, error)
}

type NewStatusStore func(db database.DBTX) StatusStore

// StatusService drives the order lifecycle.
type StatusService struct {
	pool     TxBeginner
	newStore NewStatusStore
}

func NewStatusService(pool TxBeginner, newStore NewStatusStore) *StatusService {
	return &StatusService{pool: pool, newStore: newStore}
}

// Transition moves an order to next if the move is allowed from its
// current status. The UPDATE is keyed on the status read at the start,
// so a concurrent transition makes this one fail with ErrStatusConflict
// instead of silently overwriting it.
func (s *StatusService) Transition(ctx context.Context, restaurantID, orderID uuid.UUID, next string) (database.Order, error) {
	if !enum.ValidOrderStatus(next) {
		return database.Order{}, fmt.Errorf("%w: %s", ErrUnknownStatus, next)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrder(ctx, database.GetOrderParams{
		ID:           orderID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}

	if err := ValidateTransition(order.Status, next); err != nil {
		return database.Order{}, err
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:           orderID,
		RestaurantID: restaurantID,
		Status:       next,
		FromStatus:   order.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrStatusConflict
		}
		return database.Order{}, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// ConfirmPayment flips a DRAFT order to PAID and records the payment
// reference. The flip is a compare-and-swap from DRAFT. Re-confirming
// an already-PAID order is a no-op success, so a retried success
// callback never double-processes.
func (s *StatusService) ConfirmPayment(ctx context.Context, restaurantID, orderID uuid.UUID, paymentRef string) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	ref := pgtype.Text{}
	if paymentRef != "" {
		ref = pgtype.Text{String: paymentRef, Valid: true}
	}
	order, err := store.MarkOrderPaid(ctx, database.MarkOrderPaidParams{
		ID:           orderID,
		RestaurantID: restaurantID,
		PaymentRef:   ref,
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, fmt.Errorf("mark order paid: %w", err)
		}
		// The CAS missed. Either the order does not exist, or it
		// already left DRAFT.
		order, err = store.GetOrder(ctx, database.GetOrderParams{
			ID:           orderID,
			RestaurantID: restaurantID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Order{}, ErrOrderNotFound
			}
			return database.Order{}, fmt.Errorf("get order: %w", err)
		}
		if order.Status == enum.OrderStatusDraft {
			return database.Order{}, ErrStatusConflict
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

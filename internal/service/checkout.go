package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/money"
	"github.com/plateful/api/internal/payment"
)

var (
	ErrCartEmpty       = errors.New("cart has no lines")
	ErrSessionMismatch = errors.New("session does not belong to this order")
)

// CheckoutStore defines the DB methods checkout needs. Satisfied by
// *database.Queries; narrow interface for testability.
type CheckoutStore interface {
	GetDraftOrder(ctx context.Context, arg database.GetDraftOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	SetCheckoutSession(ctx context.Context, arg database.SetCheckoutSessionParams) (database.Order, error)
}

// CheckoutService bridges the draft order and the hosted payment page.
type CheckoutService struct {
	store    CheckoutStore
	status   *StatusService
	provider payment.Provider
	baseURL  string
}

func NewCheckoutService(store CheckoutStore, status *StatusService, provider payment.Provider, baseURL string) *CheckoutService {
	return &CheckoutService{store: store, status: status, provider: provider, baseURL: baseURL}
}

// Start creates a hosted checkout session for the cart's draft order
// and returns the URL to redirect the customer to. The session id is
// stored on the order so the success callback can be verified against
// it later.
func (s *CheckoutService) Start(ctx context.Context, restaurantID, cartToken uuid.UUID, domain string) (string, error) {
	order, err := s.store.GetDraftOrder(ctx, database.GetDraftOrderParams{
		ID:           cartToken,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("get draft order: %w", err)
	}

	lines, err := s.store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return "", fmt.Errorf("list order items: %w", err)
	}
	if len(lines) == 0 {
		return "", ErrCartEmpty
	}

	items := make([]payment.LineItem, 0, len(lines))
	for _, line := range lines {
		unit := numericToDecimal(line.UnitPrice).Add(numericToDecimal(line.OptionTotal))
		name := line.ItemTitle
		if line.VariantName != "" {
			name = fmt.Sprintf("%s (%s)", line.ItemTitle, line.VariantName)
		}
		items = append(items, payment.LineItem{
			Name:       name,
			Quantity:   line.Quantity,
			UnitAmount: money.Cents(unit),
		})
	}

	email := ""
	if order.CustomerEmail.Valid {
		email = order.CustomerEmail.String
	}

	storeBase := fmt.Sprintf("%s/%s", s.baseURL, domain)
	session, err := s.provider.CreateSession(ctx, payment.SessionRequest{
		Amount:        money.Cents(numericToDecimal(order.Total)),
		Currency:      "usd",
		CustomerEmail: email,
		SuccessURL:    storeBase + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     storeBase + "/cart",
		OrderID:       order.ID.String(),
		LineItems:     items,
	})
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	if _, err := s.store.SetCheckoutSession(ctx, database.SetCheckoutSessionParams{
		ID:                order.ID,
		RestaurantID:      restaurantID,
		CheckoutSessionID: pgtype.Text{String: session.ID, Valid: true},
	}); err != nil {
		return "", fmt.Errorf("set checkout session: %w", err)
	}

	return session.URL, nil
}

// Confirm resolves a checkout session with the provider and, when it
// settled, flips the order to PAID. The session id must match the one
// stored at Start, so a session from another order (or another tenant)
// cannot confirm this one. Safe to call repeatedly.
func (s *CheckoutService) Confirm(ctx context.Context, restaurantID uuid.UUID, sessionID string) (database.Order, error) {
	session, err := s.provider.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get checkout session: %w", err)
	}

	orderID, err := uuid.Parse(session.OrderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("parse order id from session: %w", err)
	}

	order, err := s.store.GetOrder(ctx, database.GetOrderParams{
		ID:           orderID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if !order.CheckoutSessionID.Valid || order.CheckoutSessionID.String != session.ID {
		return database.Order{}, ErrSessionMismatch
	}

	if !session.Paid() {
		return database.Order{}, ErrPaymentUnconfirmed
	}

	return s.status.ConfirmPayment(ctx, restaurantID, orderID, session.PaymentRef)
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/plateful/api/internal/catalog"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/money"
	"github.com/shopspring/decimal"
)

// Errors returned by the cart service.
var (
	ErrQuantityInvalid  = errors.New("quantity must be >= 1")
	ErrOrderNotEditable = errors.New("order is no longer editable")
	ErrLineNotFound     = errors.New("line not found in cart")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CartStore defines the DB methods the cart manager needs. Satisfied by
// *database.Queries (and its WithTx variant). It embeds catalog.Store
// so item pricing reads run on the same transaction as the write.
type CartStore interface {
	catalog.Store

	GetDraftOrder(ctx context.Context, arg database.GetDraftOrderParams) (database.Order, error)
	GetDraftOrderForUpdate(ctx context.Context, arg database.GetDraftOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	CreateDraftOrder(ctx context.Context, arg database.CreateDraftOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	CreateOrderItemOption(ctx context.Context, arg database.CreateOrderItemOptionParams) (database.OrderItemOption, error)
	GetOrderItem(ctx context.Context, arg database.GetOrderItemParams) (database.OrderItem, error)
	UpdateOrderItemQuantity(ctx context.Context, arg database.UpdateOrderItemQuantityParams) (database.OrderItem, error)
	DeleteOrderItem(ctx context.Context, arg database.DeleteOrderItemParams) (uuid.UUID, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error)
}

// NewCartStore creates a CartStore from a DBTX (pool or tx).
type NewCartStore func(db database.DBTX) CartStore

// CartService maintains one mutable DRAFT order per cart token.
type CartService struct {
	pool     TxBeginner
	newStore NewCartStore
}

func NewCartService(pool TxBeginner, newStore NewCartStore) *CartService {
	return &CartService{pool: pool, newStore: newStore}
}

// AddLineRequest is the validated input for adding a line.
type AddLineRequest struct {
	RestaurantID  uuid.UUID
	CartToken     uuid.UUID // uuid.Nil when the caller has no cart yet
	CustomerEmail string
	ItemID        uuid.UUID
	VariantID     uuid.UUID // uuid.Nil picks the default variant
	Selection     catalog.Selection
	Quantity      int32
}

// GetOrCreateDraft resolves the cart token to its draft order, creating
// a fresh draft when the token is absent or no longer names one. The
// lookup and the create run in the same transaction so two racing first
// adds cannot mint two drafts for one returned token.
func (s *CartService) GetOrCreateDraft(ctx context.Context, restaurantID, cartToken uuid.UUID, customerEmail string) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	order, err := s.resolveDraft(ctx, store, restaurantID, cartToken, customerEmail)
	if err != nil {
		return database.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// AddLine prices an item against the catalog snapshot, validates the
// option selection, appends an immutable line snapshot to the draft and
// recomputes totals, all in one transaction.
func (s *CartService) AddLine(ctx context.Context, req AddLineRequest) (database.Order, error) {
	if req.Quantity < 1 {
		return database.Order{}, ErrQuantityInvalid
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := s.resolveDraft(ctx, store, req.RestaurantID, req.CartToken, req.CustomerEmail)
	if err != nil {
		return database.Order{}, err
	}

	snap, err := catalog.Load(ctx, store, req.RestaurantID, req.ItemID)
	if err != nil {
		return database.Order{}, err
	}

	variant, err := snap.ResolveVariant(req.VariantID)
	if err != nil {
		return database.Order{}, err
	}

	chosen, optionTotal, err := catalog.ValidateSelection(snap, req.Selection)
	if err != nil {
		return database.Order{}, err
	}

	line, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
		OrderID:     order.ID,
		MenuItemID:  pgtype.UUID{Bytes: snap.ItemID, Valid: true},
		ItemTitle:   snap.Title,
		VariantName: variant.Name,
		UnitPrice:   decimalToNumeric(variant.Price),
		OptionTotal: decimalToNumeric(optionTotal),
		Quantity:    req.Quantity,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("create order item: %w", err)
	}

	for _, opt := range chosen {
		if _, err := store.CreateOrderItemOption(ctx, database.CreateOrderItemOptionParams{
			OrderItemID: line.ID,
			GroupName:   opt.GroupName,
			OptionName:  opt.Name,
			PriceDelta:  decimalToNumeric(opt.PriceDelta),
		}); err != nil {
			return database.Order{}, fmt.Errorf("create order item option: %w", err)
		}
	}

	order, err = s.recomputeTotals(ctx, store, order.ID)
	if err != nil {
		return database.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// SetLineQuantity updates a line in place; quantity 0 deletes the line
// and its option snapshots. Ownership (tenant + cart token + DRAFT) is
// re-checked inside the transaction so a concurrent payment
// confirmation cannot slip an edit onto a PAID order.
func (s *CartService) SetLineQuantity(ctx context.Context, restaurantID, cartToken, lineID uuid.UUID, quantity int32) (database.Order, error) {
	if quantity < 0 {
		return database.Order{}, ErrQuantityInvalid
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetDraftOrderForUpdate(ctx, database.GetDraftOrderParams{
		ID:           cartToken,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, s.classifyMissingDraft(ctx, store, restaurantID, cartToken)
		}
		return database.Order{}, fmt.Errorf("get draft order: %w", err)
	}

	line, err := store.GetOrderItem(ctx, database.GetOrderItemParams{
		ID:      lineID,
		OrderID: order.ID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrLineNotFound
		}
		return database.Order{}, fmt.Errorf("get order item: %w", err)
	}

	if quantity == 0 {
		if _, err := store.DeleteOrderItem(ctx, database.DeleteOrderItemParams{
			ID:      line.ID,
			OrderID: order.ID,
		}); err != nil {
			return database.Order{}, fmt.Errorf("delete order item: %w", err)
		}
	} else {
		if _, err := store.UpdateOrderItemQuantity(ctx, database.UpdateOrderItemQuantityParams{
			ID:       line.ID,
			OrderID:  order.ID,
			Quantity: quantity,
		}); err != nil {
			return database.Order{}, fmt.Errorf("update order item quantity: %w", err)
		}
	}

	order, err = s.recomputeTotals(ctx, store, order.ID)
	if err != nil {
		return database.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// RemoveLine deletes a line outright.
func (s *CartService) RemoveLine(ctx context.Context, restaurantID, cartToken, lineID uuid.UUID) (database.Order, error) {
	return s.SetLineQuantity(ctx, restaurantID, cartToken, lineID, 0)
}

// resolveDraft finds the caller's draft or creates one. The token names
// the order directly; anything that is not this tenant's DRAFT row gets
// a fresh cart instead of someone else's order.
func (s *CartService) resolveDraft(ctx context.Context, store CartStore, restaurantID, cartToken uuid.UUID, customerEmail string) (database.Order, error) {
	if cartToken != uuid.Nil {
		order, err := store.GetDraftOrderForUpdate(ctx, database.GetDraftOrderParams{
			ID:           cartToken,
			RestaurantID: restaurantID,
		})
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, fmt.Errorf("get draft order: %w", err)
		}
	}

	email := pgtype.Text{}
	if customerEmail != "" {
		email = pgtype.Text{String: customerEmail, Valid: true}
	}
	order, err := store.CreateDraftOrder(ctx, database.CreateDraftOrderParams{
		RestaurantID:  restaurantID,
		CustomerEmail: email,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("create draft order: %w", err)
	}
	return order, nil
}

// classifyMissingDraft decides why a cart token no longer resolves:
// the order moved past DRAFT (not editable) or it never was this
// caller's cart.
func (s *CartService) classifyMissingDraft(ctx context.Context, store CartStore, restaurantID, cartToken uuid.UUID) error {
	_, err := store.GetOrder(ctx, database.GetOrderParams{
		ID:           cartToken,
		RestaurantID: restaurantID,
	})
	if err == nil {
		return ErrOrderNotEditable
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLineNotFound
	}
	return fmt.Errorf("get order: %w", err)
}

// recomputeTotals derives subtotal/total from the surviving lines and
// persists them. Runs on the same transaction as the line change so
// totals are never stale relative to the lines.
func (s *CartService) recomputeTotals(ctx context.Context, store CartStore, orderID uuid.UUID) (database.Order, error) {
	lines, err := store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("list order items: %w", err)
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(money.LineTotal(
			numericToDecimal(line.UnitPrice),
			numericToDecimal(line.OptionTotal),
			line.Quantity,
		))
	}
	subtotal = money.Round2(subtotal)

	order, err := store.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:       orderID,
		Subtotal: decimalToNumeric(subtotal),
		Total:    decimalToNumeric(subtotal), // no tax/discount stage
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("update order totals: %w", err)
	}
	return order, nil
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

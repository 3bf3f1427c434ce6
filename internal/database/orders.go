package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, restaurant_id, status, customer_email, subtotal, total, checkout_session_id, payment_ref, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...interface{}) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.RestaurantID, &o.Status, &o.CustomerEmail,
		&o.Subtotal, &o.Total, &o.CheckoutSessionID, &o.PaymentRef, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const createDraftOrder = `
INSERT INTO orders (restaurant_id, status, customer_email, subtotal, total)
VALUES ($1, 'DRAFT', $2, 0, 0)
RETURNING ` + orderColumns + `
`

type CreateDraftOrderParams struct {
	RestaurantID  uuid.UUID
	CustomerEmail pgtype.Text
}

func (q *Queries) CreateDraftOrder(ctx context.Context, arg CreateDraftOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createDraftOrder, arg.RestaurantID, arg.CustomerEmail))
}

const getDraftOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND restaurant_id = $2 AND status = 'DRAFT'
`

type GetDraftOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// GetDraftOrder resolves a cart token to its draft order. A paid or
// otherwise advanced order no longer answers to the token.
func (q *Queries) GetDraftOrder(ctx context.Context, arg GetDraftOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getDraftOrder, arg.ID, arg.RestaurantID))
}

const getDraftOrderForUpdate = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND restaurant_id = $2 AND status = 'DRAFT'
FOR UPDATE
`

// GetDraftOrderForUpdate locks the draft row so a concurrent payment
// confirmation cannot flip the status mid-edit.
func (q *Queries) GetDraftOrderForUpdate(ctx context.Context, arg GetDraftOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getDraftOrderForUpdate, arg.ID, arg.RestaurantID))
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND restaurant_id = $2
`

type GetOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, arg.ID, arg.RestaurantID))
}

const listOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE restaurant_id = $1
  AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`

type ListOrdersParams struct {
	RestaurantID uuid.UUID
	Status       pgtype.Text
	Limit        int32
	Offset       int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.RestaurantID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listKitchenOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE restaurant_id = $1 AND status IN ('PAID', 'PREPARING', 'READY')
ORDER BY created_at
`

// ListKitchenOrders returns the active board, oldest first so the
// kitchen works first-in-first-served.
func (q *Queries) ListKitchenOrders(ctx context.Context, restaurantID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listKitchenOrders, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const updateOrderTotals = `
UPDATE orders
SET subtotal = $2, total = $3, updated_at = NOW()
WHERE id = $1
RETURNING ` + orderColumns + `
`

type UpdateOrderTotalsParams struct {
	ID       uuid.UUID
	Subtotal pgtype.Numeric
	Total    pgtype.Numeric
}

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderTotals, arg.ID, arg.Subtotal, arg.Total))
}

const updateOrderStatus = `
UPDATE orders
SET status = $3, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2 AND status = $4
RETURNING ` + orderColumns + `
`

type UpdateOrderStatusParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Status       string
	FromStatus   string
}

// UpdateOrderStatus is a compare-and-swap keyed by the current status.
// No row comes back when a concurrent transition won the race.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus,
		arg.ID, arg.RestaurantID, arg.Status, arg.FromStatus))
}

const setCheckoutSession = `
UPDATE orders
SET checkout_session_id = $3, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + orderColumns + `
`

type SetCheckoutSessionParams struct {
	ID                uuid.UUID
	RestaurantID      uuid.UUID
	CheckoutSessionID pgtype.Text
}

func (q *Queries) SetCheckoutSession(ctx context.Context, arg SetCheckoutSessionParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, setCheckoutSession, arg.ID, arg.RestaurantID, arg.CheckoutSessionID))
}

const markOrderPaid = `
UPDATE orders
SET status = 'PAID', payment_ref = $3, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2 AND status = 'DRAFT'
RETURNING ` + orderColumns + `
`

type MarkOrderPaidParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	PaymentRef   pgtype.Text
}

// MarkOrderPaid flips DRAFT to PAID and records the provider reference.
// Only DRAFT rows match, which is what makes confirmation idempotent:
// a second call finds no row and the caller treats PAID as success.
func (q *Queries) MarkOrderPaid(ctx context.Context, arg MarkOrderPaidParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, markOrderPaid, arg.ID, arg.RestaurantID, arg.PaymentRef))
}

// --- Order items ---

const orderItemColumns = `id, order_id, menu_item_id, item_title, variant_name, unit_price, option_total, quantity, created_at`

func scanOrderItem(row interface{ Scan(dest ...interface{}) error }) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.MenuItemID, &i.ItemTitle, &i.VariantName,
		&i.UnitPrice, &i.OptionTotal, &i.Quantity, &i.CreatedAt)
	return i, err
}

const createOrderItem = `
INSERT INTO order_items (order_id, menu_item_id, item_title, variant_name, unit_price, option_total, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderItemColumns + `
`

type CreateOrderItemParams struct {
	OrderID     uuid.UUID
	MenuItemID  pgtype.UUID
	ItemTitle   string
	VariantName string
	UnitPrice   pgtype.Numeric
	OptionTotal pgtype.Numeric
	Quantity    int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.MenuItemID, arg.ItemTitle, arg.VariantName,
		arg.UnitPrice, arg.OptionTotal, arg.Quantity))
}

const getOrderItem = `
SELECT ` + orderItemColumns + `
FROM order_items
WHERE id = $1 AND order_id = $2
`

type GetOrderItemParams struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

func (q *Queries) GetOrderItem(ctx context.Context, arg GetOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, getOrderItem, arg.ID, arg.OrderID))
}

const listOrderItemsByOrder = `
SELECT ` + orderItemColumns + `
FROM order_items
WHERE order_id = $1
ORDER BY created_at
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		i, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateOrderItemQuantity = `
UPDATE order_items
SET quantity = $3
WHERE id = $1 AND order_id = $2
RETURNING ` + orderItemColumns + `
`

type UpdateOrderItemQuantityParams struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	Quantity int32
}

func (q *Queries) UpdateOrderItemQuantity(ctx context.Context, arg UpdateOrderItemQuantityParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, updateOrderItemQuantity, arg.ID, arg.OrderID, arg.Quantity))
}

const deleteOrderItem = `
DELETE FROM order_items
WHERE id = $1 AND order_id = $2
RETURNING id
`

type DeleteOrderItemParams struct {
	ID      uuid.UUID
	OrderID uuid.UUID
}

// DeleteOrderItem removes a line; its option snapshots cascade.
func (q *Queries) DeleteOrderItem(ctx context.Context, arg DeleteOrderItemParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteOrderItem, arg.ID, arg.OrderID).Scan(&id)
	return id, err
}

// --- Order item option snapshots ---

const createOrderItemOption = `
INSERT INTO order_item_options (order_item_id, group_name, option_name, price_delta)
VALUES ($1, $2, $3, $4)
RETURNING id, order_item_id, group_name, option_name, price_delta
`

type CreateOrderItemOptionParams struct {
	OrderItemID uuid.UUID
	GroupName   string
	OptionName  string
	PriceDelta  pgtype.Numeric
}

func (q *Queries) CreateOrderItemOption(ctx context.Context, arg CreateOrderItemOptionParams) (OrderItemOption, error) {
	var o OrderItemOption
	err := q.db.QueryRow(ctx, createOrderItemOption,
		arg.OrderItemID, arg.GroupName, arg.OptionName, arg.PriceDelta,
	).Scan(&o.ID, &o.OrderItemID, &o.GroupName, &o.OptionName, &o.PriceDelta)
	return o, err
}

const listOrderItemOptionsByItem = `
SELECT id, order_item_id, group_name, option_name, price_delta
FROM order_item_options
WHERE order_item_id = $1
ORDER BY id
`

func (q *Queries) ListOrderItemOptionsByItem(ctx context.Context, orderItemID uuid.UUID) ([]OrderItemOption, error) {
	rows, err := q.db.Query(ctx, listOrderItemOptionsByItem, orderItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []OrderItemOption
	for rows.Next() {
		var o OrderItemOption
		if err := rows.Scan(&o.ID, &o.OrderItemID, &o.GroupName, &o.OptionName, &o.PriceDelta); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

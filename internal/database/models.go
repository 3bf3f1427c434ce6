package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Restaurant is the tenant. Every other row hangs off a restaurant and
// every query touching tenant data carries the restaurant id filter.
type Restaurant struct {
	ID           uuid.UUID
	OwnerEmail   string
	Name         string
	Domain       pgtype.Text
	Tz           pgtype.Text
	Phone        pgtype.Text
	AddressLine1 pgtype.Text
	City         pgtype.Text
	State        pgtype.Text
	PostalCode   pgtype.Text
	Description  pgtype.Text
	CreatedAt    time.Time
}

type Category struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	IsActive     bool
	SortOrder    int32
	CreatedAt    time.Time
}

type MenuItem struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	CategoryID   pgtype.UUID
	Code         pgtype.Text
	Title        string
	Description  pgtype.Text
	IsAvailable  bool
	CreatedAt    time.Time
}

type ItemVariant struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	Name      string
	Price     pgtype.Numeric
	IsDefault bool
	CreatedAt time.Time
}

type OptionGroup struct {
	ID            uuid.UUID
	RestaurantID  uuid.UUID
	Name          string
	Description   pgtype.Text
	SelectionType string
	MinSelect     int32
	MaxSelect     pgtype.Int4
	IsActive      bool
	CreatedAt     time.Time
}

type Option struct {
	ID          uuid.UUID
	GroupID     uuid.UUID
	Name        string
	PriceDelta  pgtype.Numeric
	IsAvailable bool
	SortOrder   int32
}

// ItemOptionGroup attaches an option group to a menu item with
// per-attachment overrides of the group's selection bounds.
type ItemOptionGroup struct {
	ID        uuid.UUID
	ItemID    uuid.UUID
	GroupID   uuid.UUID
	Required  bool
	MinSelect pgtype.Int4
	MaxSelect pgtype.Int4
	CreatedAt time.Time
}

type Order struct {
	ID                uuid.UUID
	RestaurantID      uuid.UUID
	Status            string
	CustomerEmail     pgtype.Text
	Subtotal          pgtype.Numeric
	Total             pgtype.Numeric
	CheckoutSessionID pgtype.Text
	PaymentRef        pgtype.Text
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem is an immutable price snapshot: title, variant name and
// prices are copied at add time so later catalog edits cannot reprice
// a historical order.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	MenuItemID  pgtype.UUID
	ItemTitle   string
	VariantName string
	UnitPrice   pgtype.Numeric
	OptionTotal pgtype.Numeric
	Quantity    int32
	CreatedAt   time.Time
}

type OrderItemOption struct {
	ID          uuid.UUID
	OrderItemID uuid.UUID
	GroupName   string
	OptionName  string
	PriceDelta  pgtype.Numeric
}

// Package catalog resolves a menu item into the consistent, order-time
// view the cart prices against: variants, attached option groups and
// their effective selection bounds. Client-supplied prices are never
// trusted; everything money-related comes from this snapshot.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/enum"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrItemUnavailable = errors.New("item not available")
	ErrVariantNotFound = errors.New("variant not found")
)

// Store defines the read methods needed to build a snapshot.
// Satisfied by *database.Queries.
type Store interface {
	GetMenuItemForOrder(ctx context.Context, arg database.GetMenuItemForOrderParams) (database.MenuItem, error)
	ListVariantsByItem(ctx context.Context, itemID uuid.UUID) ([]database.ItemVariant, error)
	ListAttachmentsByItem(ctx context.Context, itemID uuid.UUID) ([]database.ListAttachmentsByItemRow, error)
	ListAvailableOptionsByGroup(ctx context.Context, groupID uuid.UUID) ([]database.Option, error)
}

// Variant is a priced size/preparation of an item.
type Variant struct {
	ID        uuid.UUID
	Name      string
	Price     decimal.Decimal
	IsDefault bool
}

// OptionChoice is one selectable option inside a group, already
// filtered to available ones.
type OptionChoice struct {
	ID         uuid.UUID
	Name       string
	PriceDelta decimal.Decimal
}

// Attachment is an option group as applied to one item: the group's
// rules merged with the per-attachment overrides.
type Attachment struct {
	GroupID       uuid.UUID
	GroupName     string
	SelectionType string
	IsActive      bool
	Required      bool
	EffMin        int32
	EffMax        *int32 // nil = unbounded
	Options       []OptionChoice
}

// ItemSnapshot is the order-time view of one menu item.
type ItemSnapshot struct {
	ItemID      uuid.UUID
	Title       string
	Variants    []Variant
	Attachments []Attachment
}

// Load builds the snapshot for (restaurantID, itemID). It fails with
// ErrItemNotFound when the item is missing, foreign to the tenant, or
// switched off, and ErrItemUnavailable when it has no variants to price.
func Load(ctx context.Context, store Store, restaurantID, itemID uuid.UUID) (*ItemSnapshot, error) {
	item, err := store.GetMenuItemForOrder(ctx, database.GetMenuItemForOrderParams{
		ID:           itemID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	dbVariants, err := store.ListVariantsByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	if len(dbVariants) == 0 {
		return nil, ErrItemUnavailable
	}

	variants := make([]Variant, len(dbVariants))
	for i, v := range dbVariants {
		variants[i] = Variant{
			ID:        v.ID,
			Name:      v.Name,
			Price:     numericToDecimal(v.Price),
			IsDefault: v.IsDefault,
		}
	}

	rows, err := store.ListAttachmentsByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}

	attachments := make([]Attachment, 0, len(rows))
	for _, row := range rows {
		att := Attachment{
			GroupID:       row.Group.ID,
			GroupName:     row.Group.Name,
			SelectionType: row.Group.SelectionType,
			IsActive:      row.Group.IsActive,
			Required:      row.Attachment.Required,
			EffMin:        effectiveMin(row.Attachment, row.Group),
			EffMax:        effectiveMax(row.Attachment, row.Group),
		}

		options, err := store.ListAvailableOptionsByGroup(ctx, row.Group.ID)
		if err != nil {
			return nil, fmt.Errorf("list options for group %s: %w", row.Group.ID, err)
		}
		att.Options = make([]OptionChoice, len(options))
		for i, o := range options {
			att.Options[i] = OptionChoice{
				ID:         o.ID,
				Name:       o.Name,
				PriceDelta: numericToDecimal(o.PriceDelta),
			}
		}

		attachments = append(attachments, att)
	}

	return &ItemSnapshot{
		ItemID:      item.ID,
		Title:       item.Title,
		Variants:    variants,
		Attachments: attachments,
	}, nil
}

// ResolveVariant picks the variant for an order line: the explicit
// choice if given, else the default, else the first.
func (s *ItemSnapshot) ResolveVariant(variantID uuid.UUID) (Variant, error) {
	if variantID != uuid.Nil {
		for _, v := range s.Variants {
			if v.ID == variantID {
				return v, nil
			}
		}
		return Variant{}, ErrVariantNotFound
	}
	for _, v := range s.Variants {
		if v.IsDefault {
			return v, nil
		}
	}
	return s.Variants[0], nil
}

// effectiveMin merges the group's min with the attachment override.
// SINGLE groups are capped at min 1 so the floor can never exceed the
// forced max of 1, even for rows stored before bounds were normalized.
func effectiveMin(a database.ItemOptionGroup, g database.OptionGroup) int32 {
	min := g.MinSelect
	if a.MinSelect.Valid {
		min = a.MinSelect.Int32
	}
	if g.SelectionType == enum.SelectionTypeSingle && min > 1 {
		return 1
	}
	return min
}

// effectiveMax merges the group's max with the attachment override.
// SINGLE groups are always capped at 1, whatever is stored.
func effectiveMax(a database.ItemOptionGroup, g database.OptionGroup) *int32 {
	if g.SelectionType == enum.SelectionTypeSingle {
		one := int32(1)
		return &one
	}
	if a.MaxSelect.Valid {
		v := a.MaxSelect.Int32
		return &v
	}
	if g.MaxSelect.Valid {
		v := g.MaxSelect.Int32
		return &v
	}
	return nil
}

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

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, restaurant_id, category_id, code, title, description, is_available, created_at`

func scanMenuItem(row interface{ Scan(dest ...interface{}) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.RestaurantID, &m.CategoryID, &m.Code,
		&m.Title, &m.Description, &m.IsAvailable, &m.CreatedAt)
	return m, err
}

const createMenuItem = `
INSERT INTO menu_items (restaurant_id, category_id, code, title, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + menuItemColumns + `
`

type CreateMenuItemParams struct {
	RestaurantID uuid.UUID
	CategoryID   pgtype.UUID
	Code         pgtype.Text
	Title        string
	Description  pgtype.Text
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, createMenuItem,
		arg.RestaurantID, arg.CategoryID, arg.Code, arg.Title, arg.Description))
}

const getMenuItem = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE id = $1 AND restaurant_id = $2
`

type GetMenuItemParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetMenuItem(ctx context.Context, arg GetMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, arg.ID, arg.RestaurantID))
}

const getMenuItemForOrder = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE id = $1 AND restaurant_id = $2 AND is_available = TRUE
`

type GetMenuItemForOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// GetMenuItemForOrder is the order-time read: it refuses items that are
// missing, foreign to the tenant, or switched off.
func (q *Queries) GetMenuItemForOrder(ctx context.Context, arg GetMenuItemForOrderParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItemForOrder, arg.ID, arg.RestaurantID))
}

const listMenuItems = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE restaurant_id = $1
ORDER BY created_at
`

func (q *Queries) ListMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const listAvailableMenuItemsByCategory = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE restaurant_id = $1
  AND is_available = TRUE
  AND (category_id = $2 OR ($2 IS NULL AND category_id IS NULL))
ORDER BY created_at
`

type ListAvailableMenuItemsByCategoryParams struct {
	RestaurantID uuid.UUID
	CategoryID   pgtype.UUID
}

func (q *Queries) ListAvailableMenuItemsByCategory(ctx context.Context, arg ListAvailableMenuItemsByCategoryParams) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listAvailableMenuItemsByCategory, arg.RestaurantID, arg.CategoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const updateMenuItem = `
UPDATE menu_items
SET category_id = $3, code = $4, title = $5, description = $6, is_available = $7
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + menuItemColumns + `
`

type UpdateMenuItemParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	CategoryID   pgtype.UUID
	Code         pgtype.Text
	Title        string
	Description  pgtype.Text
	IsAvailable  bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, updateMenuItem,
		arg.ID, arg.RestaurantID, arg.CategoryID, arg.Code,
		arg.Title, arg.Description, arg.IsAvailable))
}

const deleteMenuItem = `
DELETE FROM menu_items
WHERE id = $1 AND restaurant_id = $2
RETURNING id
`

type DeleteMenuItemParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) DeleteMenuItem(ctx context.Context, arg DeleteMenuItemParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteMenuItem, arg.ID, arg.RestaurantID).Scan(&id)
	return id, err
}

// --- Variants ---

const variantColumns = `id, item_id, name, price, is_default, created_at`

func scanVariant(row interface{ Scan(dest ...interface{}) error }) (ItemVariant, error) {
	var v ItemVariant
	err := row.Scan(&v.ID, &v.ItemID, &v.Name, &v.Price, &v.IsDefault, &v.CreatedAt)
	return v, err
}

const createVariant = `
INSERT INTO item_variants (item_id, name, price, is_default)
VALUES ($1, $2, $3, $4)
RETURNING ` + variantColumns + `
`

type CreateVariantParams struct {
	ItemID    uuid.UUID
	Name      string
	Price     pgtype.Numeric
	IsDefault bool
}

func (q *Queries) CreateVariant(ctx context.Context, arg CreateVariantParams) (ItemVariant, error) {
	return scanVariant(q.db.QueryRow(ctx, createVariant, arg.ItemID, arg.Name, arg.Price, arg.IsDefault))
}

const listVariantsByItem = `
SELECT ` + variantColumns + `
FROM item_variants
WHERE item_id = $1
ORDER BY created_at
`

func (q *Queries) ListVariantsByItem(ctx context.Context, itemID uuid.UUID) ([]ItemVariant, error) {
	rows, err := q.db.Query(ctx, listVariantsByItem, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []ItemVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

const clearDefaultVariant = `
UPDATE item_variants
SET is_default = FALSE
WHERE item_id = $1
`

// ClearDefaultVariant drops the default flag on every variant of the
// item. Always paired with SetDefaultVariant in the same transaction.
func (q *Queries) ClearDefaultVariant(ctx context.Context, itemID uuid.UUID) error {
	_, err := q.db.Exec(ctx, clearDefaultVariant, itemID)
	return err
}

const setDefaultVariant = `
UPDATE item_variants
SET is_default = TRUE
WHERE id = $1 AND item_id = $2
RETURNING ` + variantColumns + `
`

type SetDefaultVariantParams struct {
	ID     uuid.UUID
	ItemID uuid.UUID
}

func (q *Queries) SetDefaultVariant(ctx context.Context, arg SetDefaultVariantParams) (ItemVariant, error) {
	return scanVariant(q.db.QueryRow(ctx, setDefaultVariant, arg.ID, arg.ItemID))
}

const deleteVariant = `
DELETE FROM item_variants
WHERE id = $1 AND item_id = $2
RETURNING id
`

type DeleteVariantParams struct {
	ID     uuid.UUID
	ItemID uuid.UUID
}

func (q *Queries) DeleteVariant(ctx context.Context, arg DeleteVariantParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteVariant, arg.ID, arg.ItemID).Scan(&id)
	return id, err
}

// --- Option group attachments ---

const attachOptionGroup = `
INSERT INTO item_option_groups (item_id, group_id, required, min_select, max_select)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, item_id, group_id, required, min_select, max_select, created_at
`

type AttachOptionGroupParams struct {
	ItemID    uuid.UUID
	GroupID   uuid.UUID
	Required  bool
	MinSelect pgtype.Int4
	MaxSelect pgtype.Int4
}

func (q *Queries) AttachOptionGroup(ctx context.Context, arg AttachOptionGroupParams) (ItemOptionGroup, error) {
	var a ItemOptionGroup
	err := q.db.QueryRow(ctx, attachOptionGroup,
		arg.ItemID, arg.GroupID, arg.Required, arg.MinSelect, arg.MaxSelect,
	).Scan(&a.ID, &a.ItemID, &a.GroupID, &a.Required, &a.MinSelect, &a.MaxSelect, &a.CreatedAt)
	return a, err
}

const detachOptionGroup = `
DELETE FROM item_option_groups
WHERE item_id = $1 AND group_id = $2
RETURNING id
`

type DetachOptionGroupParams struct {
	ItemID  uuid.UUID
	GroupID uuid.UUID
}

func (q *Queries) DetachOptionGroup(ctx context.Context, arg DetachOptionGroupParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, detachOptionGroup, arg.ItemID, arg.GroupID).Scan(&id)
	return id, err
}

const listAttachmentsByItem = `
SELECT a.id, a.item_id, a.group_id, a.required, a.min_select, a.max_select, a.created_at,
       g.id, g.restaurant_id, g.name, g.description, g.selection_type, g.min_select, g.max_select, g.is_active, g.created_at
FROM item_option_groups a
JOIN option_groups g ON g.id = a.group_id
WHERE a.item_id = $1
ORDER BY a.created_at
`

// ListAttachmentsByItemRow joins each attachment with its group.
type ListAttachmentsByItemRow struct {
	Attachment ItemOptionGroup
	Group      OptionGroup
}

func (q *Queries) ListAttachmentsByItem(ctx context.Context, itemID uuid.UUID) ([]ListAttachmentsByItemRow, error) {
	rows, err := q.db.Query(ctx, listAttachmentsByItem, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ListAttachmentsByItemRow
	for rows.Next() {
		var r ListAttachmentsByItemRow
		err := rows.Scan(
			&r.Attachment.ID, &r.Attachment.ItemID, &r.Attachment.GroupID,
			&r.Attachment.Required, &r.Attachment.MinSelect, &r.Attachment.MaxSelect, &r.Attachment.CreatedAt,
			&r.Group.ID, &r.Group.RestaurantID, &r.Group.Name, &r.Group.Description,
			&r.Group.SelectionType, &r.Group.MinSelect, &r.Group.MaxSelect, &r.Group.IsActive, &r.Group.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const optionGroupColumns = `id, restaurant_id, name, description, selection_type, min_select, max_select, is_active, created_at`

func scanOptionGroup(row interface{ Scan(dest ...interface{}) error }) (OptionGroup, error) {
	var g OptionGroup
	err := row.Scan(&g.ID, &g.RestaurantID, &g.Name, &g.Description,
		&g.SelectionType, &g.MinSelect, &g.MaxSelect, &g.IsActive, &g.CreatedAt)
	return g, err
}

const createOptionGroup = `
INSERT INTO option_groups (restaurant_id, name, description, selection_type, min_select, max_select)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + optionGroupColumns + `
`

type CreateOptionGroupParams struct {
	RestaurantID  uuid.UUID
	Name          string
	Description   pgtype.Text
	SelectionType string
	MinSelect     int32
	MaxSelect     pgtype.Int4
}

func (q *Queries) CreateOptionGroup(ctx context.Context, arg CreateOptionGroupParams) (OptionGroup, error) {
	return scanOptionGroup(q.db.QueryRow(ctx, createOptionGroup,
		arg.RestaurantID, arg.Name, arg.Description, arg.SelectionType, arg.MinSelect, arg.MaxSelect))
}

const getOptionGroup = `
SELECT ` + optionGroupColumns + `
FROM option_groups
WHERE id = $1 AND restaurant_id = $2
`

type GetOptionGroupParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetOptionGroup(ctx context.Context, arg GetOptionGroupParams) (OptionGroup, error) {
	return scanOptionGroup(q.db.QueryRow(ctx, getOptionGroup, arg.ID, arg.RestaurantID))
}

const listOptionGroups = `
SELECT ` + optionGroupColumns + `
FROM option_groups
WHERE restaurant_id = $1
ORDER BY created_at
`

func (q *Queries) ListOptionGroups(ctx context.Context, restaurantID uuid.UUID) ([]OptionGroup, error) {
	rows, err := q.db.Query(ctx, listOptionGroups, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []OptionGroup
	for rows.Next() {
		g, err := scanOptionGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

const updateOptionGroup = `
UPDATE option_groups
SET name = $3, description = $4, selection_type = $5, min_select = $6, max_select = $7, is_active = $8
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + optionGroupColumns + `
`

type UpdateOptionGroupParams struct {
	ID            uuid.UUID
	RestaurantID  uuid.UUID
	Name          string
	Description   pgtype.Text
	SelectionType string
	MinSelect     int32
	MaxSelect     pgtype.Int4
	IsActive      bool
}

func (q *Queries) UpdateOptionGroup(ctx context.Context, arg UpdateOptionGroupParams) (OptionGroup, error) {
	return scanOptionGroup(q.db.QueryRow(ctx, updateOptionGroup,
		arg.ID, arg.RestaurantID, arg.Name, arg.Description,
		arg.SelectionType, arg.MinSelect, arg.MaxSelect, arg.IsActive))
}

const deleteOptionGroup = `
DELETE FROM option_groups
WHERE id = $1 AND restaurant_id = $2
RETURNING id
`

type DeleteOptionGroupParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// DeleteOptionGroup removes the group; options and attachments cascade.
func (q *Queries) DeleteOptionGroup(ctx context.Context, arg DeleteOptionGroupParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteOptionGroup, arg.ID, arg.RestaurantID).Scan(&id)
	return id, err
}

// --- Options ---

const optionColumns = `id, group_id, name, price_delta, is_available, sort_order`

func scanOption(row interface{ Scan(dest ...interface{}) error }) (Option, error) {
	var o Option
	err := row.Scan(&o.ID, &o.GroupID, &o.Name, &o.PriceDelta, &o.IsAvailable, &o.SortOrder)
	return o, err
}

const createOption = `
INSERT INTO options (group_id, name, price_delta, sort_order)
VALUES ($1, $2, $3, (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM options WHERE group_id = $1))
RETURNING ` + optionColumns + `
`

type CreateOptionParams struct {
	GroupID    uuid.UUID
	Name       string
	PriceDelta pgtype.Numeric
}

func (q *Queries) CreateOption(ctx context.Context, arg CreateOptionParams) (Option, error) {
	return scanOption(q.db.QueryRow(ctx, createOption, arg.GroupID, arg.Name, arg.PriceDelta))
}

const listOptionsByGroup = `
SELECT ` + optionColumns + `
FROM options
WHERE group_id = $1
ORDER BY sort_order
`

func (q *Queries) ListOptionsByGroup(ctx context.Context, groupID uuid.UUID) ([]Option, error) {
	rows, err := q.db.Query(ctx, listOptionsByGroup, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []Option
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

const listAvailableOptionsByGroup = `
SELECT ` + optionColumns + `
FROM options
WHERE group_id = $1 AND is_available = TRUE
ORDER BY sort_order
`

func (q *Queries) ListAvailableOptionsByGroup(ctx context.Context, groupID uuid.UUID) ([]Option, error) {
	rows, err := q.db.Query(ctx, listAvailableOptionsByGroup, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []Option
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

const updateOption = `
UPDATE options o
SET name = $2, price_delta = $3, is_available = $4, sort_order = $5
FROM option_groups g
WHERE o.id = $1 AND g.id = o.group_id AND g.restaurant_id = $6
RETURNING o.id, o.group_id, o.name, o.price_delta, o.is_available, o.sort_order
`

type UpdateOptionParams struct {
	ID           uuid.UUID
	Name         string
	PriceDelta   pgtype.Numeric
	IsAvailable  bool
	SortOrder    int32
	RestaurantID uuid.UUID
}

func (q *Queries) UpdateOption(ctx context.Context, arg UpdateOptionParams) (Option, error) {
	return scanOption(q.db.QueryRow(ctx, updateOption,
		arg.ID, arg.Name, arg.PriceDelta, arg.IsAvailable, arg.SortOrder, arg.RestaurantID))
}

const deleteOption = `
DELETE FROM options o
USING option_groups g
WHERE o.id = $1 AND g.id = o.group_id AND g.restaurant_id = $2
RETURNING o.id
`

type DeleteOptionParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) DeleteOption(ctx context.Context, arg DeleteOptionParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteOption, arg.ID, arg.RestaurantID).Scan(&id)
	return id, err
}

package database

import (
	"context"

	"github.com/google/uuid"
)

const categoryColumns = `id, restaurant_id, name, is_active, sort_order, created_at`

func scanCategory(row interface{ Scan(dest ...interface{}) error }) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.IsActive, &c.SortOrder, &c.CreatedAt)
	return c, err
}

const createCategory = `
INSERT INTO categories (restaurant_id, name, sort_order)
VALUES ($1, $2, (SELECT COALESCE(MAX(sort_order), -1) + 1 FROM categories WHERE restaurant_id = $1))
RETURNING ` + categoryColumns + `
`

type CreateCategoryParams struct {
	RestaurantID uuid.UUID
	Name         string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	return scanCategory(q.db.QueryRow(ctx, createCategory, arg.RestaurantID, arg.Name))
}

const getCategory = `
SELECT ` + categoryColumns + `
FROM categories
WHERE id = $1 AND restaurant_id = $2
`

type GetCategoryParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetCategory(ctx context.Context, arg GetCategoryParams) (Category, error) {
	return scanCategory(q.db.QueryRow(ctx, getCategory, arg.ID, arg.RestaurantID))
}

const listCategories = `
SELECT ` + categoryColumns + `
FROM categories
WHERE restaurant_id = $1
ORDER BY sort_order, created_at
`

func (q *Queries) ListCategories(ctx context.Context, restaurantID uuid.UUID) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const updateCategory = `
UPDATE categories
SET name = $3, is_active = $4, sort_order = $5
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + categoryColumns + `
`

type UpdateCategoryParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	IsActive     bool
	SortOrder    int32
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	return scanCategory(q.db.QueryRow(ctx, updateCategory,
		arg.ID, arg.RestaurantID, arg.Name, arg.IsActive, arg.SortOrder))
}

const deleteCategory = `
DELETE FROM categories
WHERE id = $1 AND restaurant_id = $2
RETURNING id
`

type DeleteCategoryParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// DeleteCategory removes the category. menu_items.category_id is
// ON DELETE SET NULL, so items survive unassigned.
func (q *Queries) DeleteCategory(ctx context.Context, arg DeleteCategoryParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteCategory, arg.ID, arg.RestaurantID).Scan(&id)
	return id, err
}

const compactCategorySortOrder = `
UPDATE categories c
SET sort_order = ranked.rn
FROM (
    SELECT id, ROW_NUMBER() OVER (ORDER BY sort_order, created_at) - 1 AS rn
    FROM categories
    WHERE restaurant_id = $1
) ranked
WHERE c.id = ranked.id
`

// CompactCategorySortOrder renumbers sort_order to 0..n-1 after a delete.
func (q *Queries) CompactCategorySortOrder(ctx context.Context, restaurantID uuid.UUID) error {
	_, err := q.db.Exec(ctx, compactCategorySortOrder, restaurantID)
	return err
}

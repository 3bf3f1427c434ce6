package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const restaurantColumns = `id, owner_email, name, domain, tz, phone, address_line1, city, state, postal_code, description, created_at`

func scanRestaurant(row interface{ Scan(dest ...interface{}) error }) (Restaurant, error) {
	var r Restaurant
	err := row.Scan(
		&r.ID, &r.OwnerEmail, &r.Name, &r.Domain, &r.Tz, &r.Phone,
		&r.AddressLine1, &r.City, &r.State, &r.PostalCode, &r.Description, &r.CreatedAt,
	)
	return r, err
}

const getRestaurantByDomain = `
SELECT ` + restaurantColumns + `
FROM restaurants
WHERE domain = $1
`

func (q *Queries) GetRestaurantByDomain(ctx context.Context, domain string) (Restaurant, error) {
	return scanRestaurant(q.db.QueryRow(ctx, getRestaurantByDomain, domain))
}

const getRestaurantByOwnerEmail = `
SELECT ` + restaurantColumns + `
FROM restaurants
WHERE owner_email = $1
`

func (q *Queries) GetRestaurantByOwnerEmail(ctx context.Context, ownerEmail string) (Restaurant, error) {
	return scanRestaurant(q.db.QueryRow(ctx, getRestaurantByOwnerEmail, ownerEmail))
}

const getRestaurant = `
SELECT ` + restaurantColumns + `
FROM restaurants
WHERE id = $1
`

func (q *Queries) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	return scanRestaurant(q.db.QueryRow(ctx, getRestaurant, id))
}

const createRestaurant = `
INSERT INTO restaurants (owner_email, name)
VALUES ($1, $2)
RETURNING ` + restaurantColumns + `
`

type CreateRestaurantParams struct {
	OwnerEmail string
	Name       string
}

func (q *Queries) CreateRestaurant(ctx context.Context, arg CreateRestaurantParams) (Restaurant, error) {
	return scanRestaurant(q.db.QueryRow(ctx, createRestaurant, arg.OwnerEmail, arg.Name))
}

const updateRestaurant = `
UPDATE restaurants
SET name = $2,
    domain = $3,
    tz = $4,
    phone = $5,
    address_line1 = $6,
    city = $7,
    state = $8,
    postal_code = $9,
    description = $10
WHERE id = $1
RETURNING ` + restaurantColumns + `
`

type UpdateRestaurantParams struct {
	ID           uuid.UUID
	Name         string
	Domain       pgtype.Text
	Tz           pgtype.Text
	Phone        pgtype.Text
	AddressLine1 pgtype.Text
	City         pgtype.Text
	State        pgtype.Text
	PostalCode   pgtype.Text
	Description  pgtype.Text
}

func (q *Queries) UpdateRestaurant(ctx context.Context, arg UpdateRestaurantParams) (Restaurant, error) {
	return scanRestaurant(q.db.QueryRow(ctx, updateRestaurant,
		arg.ID, arg.Name, arg.Domain, arg.Tz, arg.Phone,
		arg.AddressLine1, arg.City, arg.State, arg.PostalCode, arg.Description,
	))
}

const getOwnerCredentials = `
SELECT restaurant_id, password_hash
FROM restaurant_owners
WHERE email = $1
`

type OwnerCredentials struct {
	RestaurantID uuid.UUID
	PasswordHash string
}

func (q *Queries) GetOwnerCredentials(ctx context.Context, email string) (OwnerCredentials, error) {
	var c OwnerCredentials
	err := q.db.QueryRow(ctx, getOwnerCredentials, email).Scan(&c.RestaurantID, &c.PasswordHash)
	return c, err
}

const createOwnerCredentials = `
INSERT INTO restaurant_owners (email, restaurant_id, password_hash)
VALUES ($1, $2, $3)
`

type CreateOwnerCredentialsParams struct {
	Email        string
	RestaurantID uuid.UUID
	PasswordHash string
}

func (q *Queries) CreateOwnerCredentials(ctx context.Context, arg CreateOwnerCredentialsParams) error {
	_, err := q.db.Exec(ctx, createOwnerCredentials, arg.Email, arg.RestaurantID, arg.PasswordHash)
	return err
}

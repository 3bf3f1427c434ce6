package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/plateful/api/internal/config"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/enum"
)

// Seeds a demo restaurant with a small menu so the storefront and the
// kitchen board have something to show on a fresh database.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	email := flag.String("email", "", "Owner email address")
	password := flag.String("password", "", "Owner password")
	flag.Parse()

	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *email == "" {
		*email = "owner@dockside.example.com"
	}
	if *password == "" {
		*password = "password123"
		log.Warn().Msg("Using default password 'password123'. Change immediately in production!")
	}

	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Unable to ping database")
	}
	log.Info().Msg("Connected to database")

	// One transaction: the whole demo menu or nothing.
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	queries := database.New(tx)

	existing, err := queries.GetRestaurantByOwnerEmail(ctx, *email)
	if err == nil {
		log.Info().Str("restaurant_id", existing.ID.String()).Msg("Restaurant already seeded, skipping")
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Fatal().Err(err).Msg("Failed to check existing restaurant")
	}

	restaurantID, err := seed(ctx, queries, *email, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("Seed failed")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to commit")
	}

	log.Info().Str("restaurant_id", restaurantID).Msg("Seed completed")
	log.Info().Str("email", *email).Msg("Owner login")
}

func seed(ctx context.Context, queries *database.Queries, email, password string) (string, error) {
	restaurant, err := queries.CreateRestaurant(ctx, database.CreateRestaurantParams{
		OwnerEmail: email,
		Name:       "Dockside Grill",
	})
	if err != nil {
		return "", err
	}

	_, err = queries.UpdateRestaurant(ctx, database.UpdateRestaurantParams{
		ID:           restaurant.ID,
		Name:         restaurant.Name,
		Domain:       text("dockside"),
		Tz:           text("America/New_York"),
		Phone:        text("555-010-2030"),
		AddressLine1: text("1 Harbor Way"),
		City:         text("Portsmouth"),
		State:        text("NH"),
		PostalCode:   text("03801"),
		Description:  text("Seafood off the boat, plates off the grill."),
	})
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	err = queries.CreateOwnerCredentials(ctx, database.CreateOwnerCredentialsParams{
		Email:        email,
		RestaurantID: restaurant.ID,
		PasswordHash: string(hash),
	})
	if err != nil {
		return "", err
	}

	mains, err := queries.CreateCategory(ctx, database.CreateCategoryParams{
		RestaurantID: restaurant.ID,
		Name:         "Mains",
	})
	if err != nil {
		return "", err
	}

	fishPlate, err := queries.CreateMenuItem(ctx, database.CreateMenuItemParams{
		RestaurantID: restaurant.ID,
		CategoryID:   pgtype.UUID{Bytes: mains.ID, Valid: true},
		Code:         text("FISH-1"),
		Title:        "Fish Plate",
		Description:  text("Catch of the day with your choice of sides."),
	})
	if err != nil {
		return "", err
	}

	variants := []database.CreateVariantParams{
		{ItemID: fishPlate.ID, Name: "Lunch", Price: numeric("10.99"), IsDefault: true},
		{ItemID: fishPlate.ID, Name: "Dinner", Price: numeric("14.99")},
	}
	for _, v := range variants {
		if _, err := queries.CreateVariant(ctx, v); err != nil {
			return "", err
		}
	}

	fishType, err := queries.CreateOptionGroup(ctx, database.CreateOptionGroupParams{
		RestaurantID:  restaurant.ID,
		Name:          "Fish Type",
		SelectionType: enum.SelectionTypeSingle,
		MinSelect:     1,
		MaxSelect:     pgtype.Int4{Int32: 1, Valid: true},
	})
	if err != nil {
		return "", err
	}
	fishOptions := []database.CreateOptionParams{
		{GroupID: fishType.ID, Name: "Cod", PriceDelta: numeric("0.00")},
		{GroupID: fishType.ID, Name: "Salmon", PriceDelta: numeric("2.00")},
		{GroupID: fishType.ID, Name: "Red Snapper", PriceDelta: numeric("3.00")},
	}
	for _, o := range fishOptions {
		if _, err := queries.CreateOption(ctx, o); err != nil {
			return "", err
		}
	}

	sides, err := queries.CreateOptionGroup(ctx, database.CreateOptionGroupParams{
		RestaurantID:  restaurant.ID,
		Name:          "Sides",
		SelectionType: enum.SelectionTypeMulti,
		MinSelect:     1,
		MaxSelect:     pgtype.Int4{Int32: 2, Valid: true},
	})
	if err != nil {
		return "", err
	}
	sideOptions := []database.CreateOptionParams{
		{GroupID: sides.ID, Name: "Fries", PriceDelta: numeric("0.00")},
		{GroupID: sides.ID, Name: "Coleslaw", PriceDelta: numeric("0.00")},
		{GroupID: sides.ID, Name: "Mac & Cheese", PriceDelta: numeric("2.50")},
	}
	for _, o := range sideOptions {
		if _, err := queries.CreateOption(ctx, o); err != nil {
			return "", err
		}
	}

	attachments := []database.AttachOptionGroupParams{
		{ItemID: fishPlate.ID, GroupID: fishType.ID, Required: true},
		{ItemID: fishPlate.ID, GroupID: sides.ID, Required: true},
	}
	for _, a := range attachments {
		if _, err := queries.AttachOptionGroup(ctx, a); err != nil {
			return "", err
		}
	}

	return restaurant.ID.String(), nil
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func numeric(s string) pgtype.Numeric {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Fatal().Err(err).Str("value", s).Msg("Bad seed price")
	}
	var n pgtype.Numeric
	if err := n.Scan(d.StringFixed(2)); err != nil {
		log.Fatal().Err(err).Str("value", s).Msg("Bad seed price")
	}
	return n
}

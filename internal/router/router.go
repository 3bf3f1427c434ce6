package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plateful/api/internal/config"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/handler"
	mw "github.com/plateful/api/internal/middleware"
	"github.com/plateful/api/internal/payment"
	"github.com/plateful/api/internal/service"
)

// New creates a Chi router with all application routes wired up. The
// dashboard routes sit behind JWT auth; the storefront routes are
// public and resolve their tenant from the {domain} URL segment.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", cfg.AppBaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Services shared between the storefront and the dashboard.
	cartService := service.NewCartService(pool, func(db database.DBTX) service.CartStore {
		return database.New(db)
	})
	statusService := service.NewStatusService(pool, func(db database.DBTX) service.StatusStore {
		return database.New(db)
	})
	kitchenService := service.NewKitchenService(queries)

	provider := payment.NewClient(cfg.CheckoutAPIURL, cfg.CheckoutAPIKey)
	checkoutService := service.NewCheckoutService(queries, statusService, provider, cfg.AppBaseURL)

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Storefront routes (public, tenant by domain)
	r.Route("/restaurants/{domain}", func(r chi.Router) {
		storefrontHandler := handler.NewStorefrontHandler(queries)
		storefrontHandler.RegisterRoutes(r)

		cartHandler := handler.NewCartHandler(queries, cartService)
		r.Route("/cart", cartHandler.RegisterRoutes)

		checkoutHandler := handler.NewCheckoutHandler(queries, checkoutService)
		r.Route("/checkout", checkoutHandler.RegisterRoutes)
	})

	// Dashboard routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		restaurantHandler := handler.NewRestaurantHandler(queries)
		restaurantHandler.RegisterRoutes(r)

		categoryHandler := handler.NewCategoryHandler(queries)
		r.Route("/categories", categoryHandler.RegisterRoutes)

		itemHandler := handler.NewItemHandler(queries, pool, func(db database.DBTX) handler.ItemStore {
			return database.New(db)
		})
		r.Route("/items", itemHandler.RegisterRoutes)

		optionGroupHandler := handler.NewOptionGroupHandler(queries)
		r.Route("/option-groups", optionGroupHandler.RegisterRoutes)

		orderHandler := handler.NewOrderHandler(queries, statusService)
		r.Route("/orders", orderHandler.RegisterRoutes)

		kitchenHandler := handler.NewKitchenHandler(kitchenService, statusService)
		r.Route("/kitchen", kitchenHandler.RegisterRoutes)
	})

	return r
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/middleware"
)

// RestaurantStore defines the database methods needed by restaurant handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type RestaurantStore interface {
	GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	UpdateRestaurant(ctx context.Context, arg database.UpdateRestaurantParams) (database.Restaurant, error)
}

// RestaurantHandler handles tenant settings endpoints on the dashboard.
type RestaurantHandler struct {
	store RestaurantStore
}

func NewRestaurantHandler(store RestaurantStore) *RestaurantHandler {
	return &RestaurantHandler{store: store}
}

// RegisterRoutes registers authenticated restaurant endpoints.
func (h *RestaurantHandler) RegisterRoutes(r chi.Router) {
	r.Get("/restaurant", h.Get)
	r.Put("/restaurant", h.Update)
}

// --- Request / Response types ---

type updateRestaurantRequest struct {
	Name         string `json:"name"`
	Domain       string `json:"domain"`
	Tz           string `json:"tz"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Description  string `json:"description"`
}

type restaurantResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Domain       *string   `json:"domain"`
	Tz           *string   `json:"tz"`
	Phone        *string   `json:"phone"`
	AddressLine1 *string   `json:"address_line1"`
	City         *string   `json:"city"`
	State        *string   `json:"state"`
	PostalCode   *string   `json:"postal_code"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

func toRestaurantResponse(rest database.Restaurant) restaurantResponse {
	resp := restaurantResponse{
		ID:        rest.ID,
		Name:      rest.Name,
		CreatedAt: rest.CreatedAt,
	}
	resp.Domain = textPtr(rest.Domain)
	resp.Tz = textPtr(rest.Tz)
	resp.Phone = textPtr(rest.Phone)
	resp.AddressLine1 = textPtr(rest.AddressLine1)
	resp.City = textPtr(rest.City)
	resp.State = textPtr(rest.State)
	resp.PostalCode = textPtr(rest.PostalCode)
	resp.Description = textPtr(rest.Description)
	return resp
}

// --- Handlers ---

// Get returns the authenticated owner's restaurant.
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	restaurant, err := h.store.GetRestaurant(r.Context(), claims.RestaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: get restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
}

// Update modifies the restaurant's public profile. The domain slug is
// what storefront URLs key on, so it must stay unique across tenants.
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req updateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	restaurant, err := h.store.UpdateRestaurant(r.Context(), database.UpdateRestaurantParams{
		ID:           claims.RestaurantID,
		Name:         req.Name,
		Domain:       textOrNull(req.Domain),
		Tz:           textOrNull(req.Tz),
		Phone:        textOrNull(req.Phone),
		AddressLine1: textOrNull(req.AddressLine1),
		City:         textOrNull(req.City),
		State:        textOrNull(req.State),
		PostalCode:   textOrNull(req.PostalCode),
		Description:  textOrNull(req.Description),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "domain already taken"})
			return
		}
		log.Printf("ERROR: update restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
}

// --- Helpers shared across handlers ---

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

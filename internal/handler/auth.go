package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/plateful/api/internal/auth"
	"github.com/plateful/api/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetOwnerCredentials(ctx context.Context, email string) (database.OwnerCredentials, error)
	GetRestaurantByOwnerEmail(ctx context.Context, ownerEmail string) (database.Restaurant, error)
	CreateRestaurant(ctx context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error)
	CreateOwnerCredentials(ctx context.Context, arg database.CreateOwnerCredentialsParams) error
}

// AuthHandler handles owner registration and login.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
}

// --- Request / Response types ---

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	RestaurantName string `json:"restaurant_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token      string             `json:"token"`
	Restaurant restaurantResponse `json:"restaurant"`
}

// --- Handlers ---

// Register creates a restaurant and its owner login in one step. Every
// owner account gets exactly one restaurant.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" || req.RestaurantName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email, password and restaurant_name are required"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	_, err := h.store.GetRestaurantByOwnerEmail(r.Context(), req.Email)
	if err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: lookup owner email: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	restaurant, err := h.store.CreateRestaurant(r.Context(), database.CreateRestaurantParams{
		OwnerEmail: req.Email,
		Name:       req.RestaurantName,
	})
	if err != nil {
		log.Printf("ERROR: create restaurant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.store.CreateOwnerCredentials(r.Context(), database.CreateOwnerCredentialsParams{
		Email:        req.Email,
		RestaurantID: restaurant.ID,
		PasswordHash: string(hash),
	}); err != nil {
		log.Printf("ERROR: create owner credentials: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.respondWithToken(w, http.StatusCreated, req.Email, restaurant)
}

// Login handles email + password authentication for restaurant owners.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	creds, err := h.store.GetOwnerCredentials(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	restaurant, err := h.store.GetRestaurantByOwnerEmail(r.Context(), req.Email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.respondWithToken(w, http.StatusOK, req.Email, restaurant)
}

// --- Helpers ---

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, email string, restaurant database.Restaurant) {
	token, err := auth.GenerateToken(h.jwtSecret, restaurant.ID, email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, status, tokenResponse{
		Token:      token,
		Restaurant: toRestaurantResponse(restaurant),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

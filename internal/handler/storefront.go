package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/plateful/api/internal/catalog"
	"github.com/plateful/api/internal/database"
)

// StorefrontStore defines the database methods needed by the public
// menu endpoints. Satisfied by *database.Queries.
type StorefrontStore interface {
	catalog.Store
	GetRestaurantByDomain(ctx context.Context, domain string) (database.Restaurant, error)
	ListCategories(ctx context.Context, restaurantID uuid.UUID) ([]database.Category, error)
	ListAvailableMenuItemsByCategory(ctx context.Context, arg database.ListAvailableMenuItemsByCategoryParams) ([]database.MenuItem, error)
}

// StorefrontHandler serves the customer-facing menu. No auth; the
// tenant is resolved from the {domain} URL segment.
type StorefrontHandler struct {
	store StorefrontStore
}

// NewStorefrontHandler creates a new StorefrontHandler.
func NewStorefrontHandler(store StorefrontStore) *StorefrontHandler {
	return &StorefrontHandler{store: store}
}

// RegisterRoutes registers storefront endpoints on the given Chi router.
// The router is expected to be mounted under /restaurants/{domain}.
func (h *StorefrontHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Menu)
	r.Get("/items/{id}", h.ItemDetail)
}

// --- Response types ---

type storefrontRestaurantResponse struct {
	Name         string  `json:"name"`
	Domain       string  `json:"domain"`
	Phone        *string `json:"phone"`
	AddressLine1 *string `json:"address_line1"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Description  *string `json:"description"`
}

type menuItemSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
}

type menuCategoryResponse struct {
	ID    uuid.UUID         `json:"id"`
	Name  string            `json:"name"`
	Items []menuItemSummary `json:"items"`
}

type menuResponse struct {
	Restaurant storefrontRestaurantResponse `json:"restaurant"`
	Categories []menuCategoryResponse       `json:"categories"`
}

type storefrontVariant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	IsDefault bool      `json:"is_default"`
}

type storefrontOption struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceDelta string    `json:"price_delta"`
}

type storefrontOptionGroup struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	SelectionType string             `json:"selection_type"`
	Required      bool               `json:"required"`
	MinSelect     int32              `json:"min_select"`
	MaxSelect     *int32             `json:"max_select"`
	Options       []storefrontOption `json:"options"`
}

type storefrontItemResponse struct {
	ID           uuid.UUID               `json:"id"`
	Title        string                  `json:"title"`
	Variants     []storefrontVariant     `json:"variants"`
	OptionGroups []storefrontOptionGroup `json:"option_groups"`
}

// --- Handlers ---

// Menu returns the restaurant's profile plus its active categories and
// their available items. Empty categories are omitted.
func (h *StorefrontHandler) Menu(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := h.resolveRestaurant(w, r)
	if !ok {
		return
	}

	categories, err := h.store.ListCategories(r.Context(), restaurant.ID)
	if err != nil {
		log.Printf("ERROR: list categories for menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := menuResponse{
		Restaurant: storefrontRestaurantResponse{
			Name:         restaurant.Name,
			Domain:       restaurant.Domain.String,
			Phone:        textPtr(restaurant.Phone),
			AddressLine1: textPtr(restaurant.AddressLine1),
			City:         textPtr(restaurant.City),
			State:        textPtr(restaurant.State),
			PostalCode:   textPtr(restaurant.PostalCode),
			Description:  textPtr(restaurant.Description),
		},
		Categories: []menuCategoryResponse{},
	}

	for _, cat := range categories {
		if !cat.IsActive {
			continue
		}

		items, err := h.store.ListAvailableMenuItemsByCategory(r.Context(), database.ListAvailableMenuItemsByCategoryParams{
			RestaurantID: restaurant.ID,
			CategoryID:   uuidOrNull(cat.ID),
		})
		if err != nil {
			log.Printf("ERROR: list items for category %s: %v", cat.ID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		if len(items) == 0 {
			continue
		}

		entry := menuCategoryResponse{
			ID:    cat.ID,
			Name:  cat.Name,
			Items: make([]menuItemSummary, len(items)),
		}
		for i, item := range items {
			entry.Items[i] = menuItemSummary{
				ID:          item.ID,
				Title:       item.Title,
				Description: textPtr(item.Description),
			}
		}
		resp.Categories = append(resp.Categories, entry)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ItemDetail returns the order-time view of one item: variants with
// prices and the option groups the customer can pick from. Inactive
// groups are hidden here the same way the cart skips them.
func (h *StorefrontHandler) ItemDetail(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := h.resolveRestaurant(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	snapshot, err := catalog.Load(r.Context(), h.store, restaurant.ID, itemID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrItemNotFound), errors.Is(err, catalog.ErrItemUnavailable):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		default:
			log.Printf("ERROR: load item snapshot: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	resp := storefrontItemResponse{
		ID:           snapshot.ItemID,
		Title:        snapshot.Title,
		Variants:     make([]storefrontVariant, len(snapshot.Variants)),
		OptionGroups: []storefrontOptionGroup{},
	}
	for i, v := range snapshot.Variants {
		resp.Variants[i] = storefrontVariant{
			ID:        v.ID,
			Name:      v.Name,
			Price:     v.Price.StringFixed(2),
			IsDefault: v.IsDefault,
		}
	}
	for _, att := range snapshot.Attachments {
		if !att.IsActive {
			continue
		}
		group := storefrontOptionGroup{
			ID:            att.GroupID,
			Name:          att.GroupName,
			SelectionType: att.SelectionType,
			Required:      att.Required,
			MinSelect:     att.EffMin,
			MaxSelect:     att.EffMax,
			Options:       make([]storefrontOption, len(att.Options)),
		}
		for i, o := range att.Options {
			group.Options[i] = storefrontOption{
				ID:         o.ID,
				Name:       o.Name,
				PriceDelta: o.PriceDelta.StringFixed(2),
			}
		}
		resp.OptionGroups = append(resp.OptionGroups, group)
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *StorefrontHandler) resolveRestaurant(w http.ResponseWriter, r *http.Request) (database.Restaurant, bool) {
	return restaurantFromDomain(w, r, h.store)
}

// domainResolver is the slice of the store the public handlers share to
// turn the {domain} URL segment into a tenant.
type domainResolver interface {
	GetRestaurantByDomain(ctx context.Context, domain string) (database.Restaurant, error)
}

func restaurantFromDomain(w http.ResponseWriter, r *http.Request, store domainResolver) (database.Restaurant, bool) {
	domain := chi.URLParam(r, "domain")
	if domain == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "domain is required"})
		return database.Restaurant{}, false
	}

	restaurant, err := store.GetRestaurantByDomain(r.Context(), domain)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return database.Restaurant{}, false
		}
		log.Printf("ERROR: get restaurant by domain: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.Restaurant{}, false
	}
	return restaurant, true
}

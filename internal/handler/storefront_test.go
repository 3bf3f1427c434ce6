package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/handler"
)

// mockStorefrontStore implements handler.StorefrontStore, including the
// catalog read methods, with in-memory data for one restaurant.
type mockStorefrontStore struct {
	restaurant  database.Restaurant
	categories  []database.Category
	items       map[uuid.UUID]database.MenuItem
	variants    map[uuid.UUID][]database.ItemVariant
	attachments map[uuid.UUID][]database.ListAttachmentsByItemRow
	options     map[uuid.UUID][]database.Option
}

func newMockStorefrontStore(domain string) *mockStorefrontStore {
	return &mockStorefrontStore{
		restaurant: database.Restaurant{
			ID:        uuid.New(),
			Name:      "Dockside Grill",
			Domain:    pgtype.Text{String: domain, Valid: true},
			CreatedAt: time.Now(),
		},
		items:       make(map[uuid.UUID]database.MenuItem),
		variants:    make(map[uuid.UUID][]database.ItemVariant),
		attachments: make(map[uuid.UUID][]database.ListAttachmentsByItemRow),
		options:     make(map[uuid.UUID][]database.Option),
	}
}

func (m *mockStorefrontStore) GetRestaurantByDomain(_ context.Context, domain string) (database.Restaurant, error) {
	if m.restaurant.Domain.String != domain {
		return database.Restaurant{}, pgx.ErrNoRows
	}
	return m.restaurant, nil
}

func (m *mockStorefrontStore) ListCategories(_ context.Context, restaurantID uuid.UUID) ([]database.Category, error) {
	if restaurantID != m.restaurant.ID {
		return nil, nil
	}
	return m.categories, nil
}

func (m *mockStorefrontStore) ListAvailableMenuItemsByCategory(_ context.Context, arg database.ListAvailableMenuItemsByCategoryParams) ([]database.MenuItem, error) {
	var out []database.MenuItem
	for _, it := range m.items {
		if it.RestaurantID != arg.RestaurantID || !it.IsAvailable {
			continue
		}
		if it.CategoryID != arg.CategoryID {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (m *mockStorefrontStore) GetMenuItemForOrder(_ context.Context, arg database.GetMenuItemForOrderParams) (database.MenuItem, error) {
	item, ok := m.items[arg.ID]
	if !ok || item.RestaurantID != arg.RestaurantID || !item.IsAvailable {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	return item, nil
}

func (m *mockStorefrontStore) ListVariantsByItem(_ context.Context, itemID uuid.UUID) ([]database.ItemVariant, error) {
	return m.variants[itemID], nil
}

func (m *mockStorefrontStore) ListAttachmentsByItem(_ context.Context, itemID uuid.UUID) ([]database.ListAttachmentsByItemRow, error) {
	return m.attachments[itemID], nil
}

func (m *mockStorefrontStore) ListAvailableOptionsByGroup(_ context.Context, groupID uuid.UUID) ([]database.Option, error) {
	return m.options[groupID], nil
}

func (m *mockStorefrontStore) seedCategory(name string, active bool) database.Category {
	cat := database.Category{
		ID:           uuid.New(),
		RestaurantID: m.restaurant.ID,
		Name:         name,
		IsActive:     active,
		SortOrder:    int32(len(m.categories)),
	}
	m.categories = append(m.categories, cat)
	return cat
}

func (m *mockStorefrontStore) seedItem(categoryID uuid.UUID, title string, available bool) database.MenuItem {
	item := database.MenuItem{
		ID:           uuid.New(),
		RestaurantID: m.restaurant.ID,
		CategoryID:   pgtype.UUID{Bytes: categoryID, Valid: true},
		Title:        title,
		IsAvailable:  available,
		CreatedAt:    time.Now(),
	}
	m.items[item.ID] = item
	return item
}

func (m *mockStorefrontStore) seedVariant(t *testing.T, itemID uuid.UUID, name, price string, isDefault bool) database.ItemVariant {
	t.Helper()
	v := database.ItemVariant{
		ID:        uuid.New(),
		ItemID:    itemID,
		Name:      name,
		Price:     makeNumeric(t, price),
		IsDefault: isDefault,
	}
	m.variants[itemID] = append(m.variants[itemID], v)
	return v
}

func (m *mockStorefrontStore) seedAttachment(itemID uuid.UUID, group database.OptionGroup, required bool, minOverride, maxOverride *int32) {
	att := database.ItemOptionGroup{
		ID:       uuid.New(),
		ItemID:   itemID,
		GroupID:  group.ID,
		Required: required,
	}
	if minOverride != nil {
		att.MinSelect = pgtype.Int4{Int32: *minOverride, Valid: true}
	}
	if maxOverride != nil {
		att.MaxSelect = pgtype.Int4{Int32: *maxOverride, Valid: true}
	}
	m.attachments[itemID] = append(m.attachments[itemID], database.ListAttachmentsByItemRow{
		Attachment: att,
		Group:      group,
	})
}

func setupStorefrontRouter(store *mockStorefrontStore) *chi.Mux {
	h := handler.NewStorefrontHandler(store)
	r := chi.NewRouter()
	r.Route("/restaurants/{domain}", h.RegisterRoutes)
	return r
}

func TestStorefrontHandler_Menu_Valid(t *testing.T) {
	store := newMockStorefrontStore("dockside")
	mains := store.seedCategory("Mains", true)
	store.seedItem(mains.ID, "Fish Plate", true)
	router := setupStorefrontRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/restaurants/dockside/menu", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeObj(t, rr)
	restaurant, ok := resp["restaurant"].(map[string]interface{})
	if !ok {
		t.Fatalf("restaurant: got %v", resp["restaurant"])
	}
	if restaurant["name"] != "Dockside Grill" || restaurant["domain"] != "dockside" {
		t.Errorf("restaurant: got %v", restaurant)
	}
	categories, ok := resp["categories"].([]interface{})
	if !ok || len(categories) != 1 {
		t.Fatalf("categories: got %v, want 1 entry", resp["categories"])
	}
	cat := categories[0].(map[string]interface{})
	if cat["name"] != "Mains" {
		t.Errorf("category name: got %v, want Mains", cat["name"])
	}
	items := cat["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items: got %d, want 1", len(items))
	}
	if items[0].(map[string]interface{})["title"] != "Fish Plate" {
		t.Errorf("item title: got %v, want Fish Plate", items[0])
	}
}

func TestStorefrontHandler_Menu_SkipsInactiveAndEmpty(t *testing.T) {
	store := newMockStorefrontStore("dockside")
	hidden := store.seedCategory("Seasonal", false)
	store.seedItem(hidden.ID, "Winter Stew", true)
	store.seedCategory("Empty", true)
	soldOut := store.seedCategory("Sold Out", true)
	store.seedItem(soldOut.ID, "Gone Plate", false)
	router := setupStorefrontRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/restaurants/dockside/menu", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeObj(t, rr)
	categories, ok := resp["categories"].([]interface{})
	if !ok {
		t.Fatalf("categories: got %v", resp["categories"])
	}
	if len(categories) != 0 {
		t.Errorf("categories: got %d, want 0 (inactive, empty and sold-out all hidden)", len(categories))
	}
}

func TestStorefrontHandler_Menu_UnknownDomain(t *testing.T) {
	store := newMockStorefrontStore("dockside")
	router := setupStorefrontRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/restaurants/elsewhere/menu", nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
	if resp := decodeObj(t, rr); resp["error"] != "restaurant not found" {
		t.Errorf("error: got %v, want 'restaurant not found'", resp["error"])
	}
}

func TestStorefrontHandler_ItemDetail_Valid(t *testing.T) {
	store := newMockStorefrontStore("dockside")
	mains := store.seedCategory("Mains", true)
	item := store.seedItem(mains.ID, "Fish Plate", true)
	store.seedVariant(t, item.ID, "Lunch", "10.99", true)
	store.seedVariant(t, item.ID, "Dinner", "14.99", false)

	group := database.OptionGroup{
		ID:            uuid.New(),
		RestaurantID:  store.restaurant.ID,
		Name:          "Sides",
		SelectionType: "MULTI",
		MinSelect:     0,
		IsActive:      true,
	}
	max := int32(2)
	store.seedAttachment(item.ID, group, true, nil, &max)
	store.options[group.ID] = []database.Option{
		{ID: uuid.New(), GroupID: group.ID, Name: "Fries", PriceDelta: makeNumeric(t, "0.00"), IsAvailable: true},
		{ID: uuid.New(), GroupID: group.ID, Name: "Mac & Cheese", PriceDelta: makeNumeric(t, "2.50"), IsAvailable: true},
	}
	router := setupStorefrontRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/restaurants/dockside/items/"+item.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeObj(t, rr)
	if resp["title"] != "Fish Plate" {
		t.Errorf("title: got %v, want Fish Plate", resp["title"])
	}
	variants := resp["variants"].([]interface{})
	if len(variants) != 2 {
		t.Fatalf("variants: got %d, want 2", len(variants))
	}
	first := variants[0].(map[string]interface{})
	if first["name"] != "Lunch" || first["price"] != "10.99" || first["is_default"] != true {
		t.Errorf("first variant: got %v", first)
	}
	groups := resp["option_groups"].([]interface{})
	if len(groups) != 1 {
		t.Fatalf("option_groups: got %d, want 1", len(groups))
	}
	g := groups[0].(map[string]interface{})
	if g["name"] != "Sides" || g["required"] != true {
		t.Errorf("group: got %v", g)
	}
	// JSON numbers decode as float64
	if g["min_select"] != float64(0) {
		t.Errorf("min_select: got %v, want 0", g["min_select"])
	}
	if g["max_select"] != float64(2) {
		t.Errorf("max_select: got %v, want 2", g["max_select"])
	}
	options := g["options"].([]interface{})
	if len(options) != 2 {
		t.Fatalf("options: got %d, want 2", len(options))
	}
}

func TestStorefrontHandler_ItemDetail_AttachmentOverridesBounds(t *testing.T) {
	store := newMockStorefrontStore("dockside")
	mains := store.seedCategory("Mains", true)
	item := store.seedItem(mains.ID, "Fish Plate", true)
	store.seedVariant(t, item.ID, "Lunch", "10.99", true)

	group := database.OptionGroup{
		ID:            uuid.New(),
		RestaurantID:  store.restaurant.ID,
		Name:          "Sides",
		SelectionType: "MULTI",
		MinSelect:     0,
		MaxSelect:     pgtype.Int4{Int32: 5, Valid: true},
		IsActive:      true,
	}
	min := int32(1)
	max := int32(2)
	store.seedAttachment(item.ID, group, false, &min, &max)
	router := setupStorefrontRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/restaurants/dockside/items/"+item.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeObj(t, rr)
	groups := resp["option_groups"].([]interface{})
	if len(groups) != 1 {
		t.Fatalf("option_groups: got %d, want 1", len(groups))
	}
	g := groups[0].(map[string]interface{})
	if g["min_select"] != float64(1) {
		t.Errorf("min_select: got %v, want override 1", g["min_select"])
	}
	if g["max_select"] != float64(2) {
		t.Errorf("max_select: got %v, want override 2", g["max_select"])
	}
}

func TestStorefrontHandler_ItemDetail_HidesInactiveGroup(t *testing.T) {
	store := newMockStorefrontStore("dockside")
	mains := store.seedCategory("Mains", true)
	item := store.seedItem(mains.ID, "Fish Plate", true)
	store.seedVariant(t, item.ID, "Lunch", "10.99", true)

	group := database.OptionGroup{
		ID:            uuid.New(),
		RestaurantID:  store.restaurant.ID,
		Name:          "Retired Extras",
		SelectionType: "MULTI",
		IsActive:      false,
	}
	store.seedAttachment(item.ID, group, false, nil, nil)
	router := setupStorefrontRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/restaurants/dockside/items/"+item.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeObj(t, rr)
	if groups := resp["option_groups"].([]interface{}); len(groups) != 0 {
		t.Errorf("option_groups: got %d, want 0", len(groups))
	}
}

func TestStorefrontHandler_ItemDetail_UnavailableItem(t *testing.T) {
	store := newMockStorefrontStore("dockside")
	mains := store.seedCategory("Mains", true)
	item := store.seedItem(mains.ID, "Fish Plate", false)
	router := setupStorefrontRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/restaurants/dockside/items/"+item.ID.String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestStorefrontHandler_ItemDetail_NoVariants(t *testing.T) {
	store := newMockStorefrontStore("dockside")
	mains := store.seedCategory("Mains", true)
	item := store.seedItem(mains.ID, "Fish Plate", true)
	router := setupStorefrontRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/restaurants/dockside/items/"+item.ID.String(), nil)

	// An item with nothing to price is hidden from the storefront.
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

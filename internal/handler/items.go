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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/middleware"
	"github.com/plateful/api/internal/service"
	"github.com/shopspring/decimal"
)

// ItemStore defines the database methods needed by menu item handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ItemStore interface {
	ListMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, arg database.DeleteMenuItemParams) (uuid.UUID, error)
	CreateVariant(ctx context.Context, arg database.CreateVariantParams) (database.ItemVariant, error)
	ListVariantsByItem(ctx context.Context, itemID uuid.UUID) ([]database.ItemVariant, error)
	ClearDefaultVariant(ctx context.Context, itemID uuid.UUID) error
	SetDefaultVariant(ctx context.Context, arg database.SetDefaultVariantParams) (database.ItemVariant, error)
	DeleteVariant(ctx context.Context, arg database.DeleteVariantParams) (uuid.UUID, error)
	AttachOptionGroup(ctx context.Context, arg database.AttachOptionGroupParams) (database.ItemOptionGroup, error)
	DetachOptionGroup(ctx context.Context, arg database.DetachOptionGroupParams) (uuid.UUID, error)
	ListAttachmentsByItem(ctx context.Context, itemID uuid.UUID) ([]database.ListAttachmentsByItemRow, error)
	GetOptionGroup(ctx context.Context, arg database.GetOptionGroupParams) (database.OptionGroup, error)
}

// NewItemStore creates an ItemStore from a DBTX (pool or tx).
type NewItemStore func(db database.DBTX) ItemStore

// ItemHandler handles menu item, variant and attachment endpoints.
// Default-variant swaps run on a transaction so exactly one default
// survives.
type ItemHandler struct {
	store    ItemStore
	pool     service.TxBeginner
	newStore NewItemStore
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(store ItemStore, pool service.TxBeginner, newStore NewItemStore) *ItemHandler {
	return &ItemHandler{store: store, pool: pool, newStore: newStore}
}

// RegisterRoutes registers item endpoints on the given Chi router.
func (h *ItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Post("/{id}/variants", h.AddVariant)
	r.Put("/{id}/variants/{vid}/default", h.SetDefaultVariant)
	r.Delete("/{id}/variants/{vid}", h.DeleteVariant)

	r.Get("/{id}/option-groups", h.ListAttachments)
	r.Post("/{id}/option-groups", h.Attach)
	r.Delete("/{id}/option-groups/{gid}", h.Detach)
}

// --- Request / Response types ---

type createItemRequest struct {
	CategoryID  string `json:"category_id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateItemRequest struct {
	CategoryID  string `json:"category_id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsAvailable *bool  `json:"is_available"`
}

type addVariantRequest struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	IsDefault bool   `json:"is_default"`
}

type attachGroupRequest struct {
	GroupID   string `json:"group_id"`
	Required  bool   `json:"required"`
	MinSelect *int32 `json:"min_select"`
	MaxSelect *int32 `json:"max_select"`
}

type itemResponse struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Code        *string    `json:"code"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsAvailable bool       `json:"is_available"`
	CreatedAt   time.Time  `json:"created_at"`
}

type variantResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	IsDefault bool      `json:"is_default"`
}

type attachmentResponse struct {
	GroupID       uuid.UUID `json:"group_id"`
	GroupName     string    `json:"group_name"`
	SelectionType string    `json:"selection_type"`
	Required      bool      `json:"required"`
	MinSelect     *int32    `json:"min_select"`
	MaxSelect     *int32    `json:"max_select"`
}

type itemDetailResponse struct {
	itemResponse
	Variants     []variantResponse    `json:"variants"`
	OptionGroups []attachmentResponse `json:"option_groups"`
}

func toItemResponse(m database.MenuItem) itemResponse {
	resp := itemResponse{
		ID:          m.ID,
		Title:       m.Title,
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
	}
	if m.CategoryID.Valid {
		id := uuid.UUID(m.CategoryID.Bytes)
		resp.CategoryID = &id
	}
	resp.Code = textPtr(m.Code)
	resp.Description = textPtr(m.Description)
	return resp
}

func toVariantResponse(v database.ItemVariant) variantResponse {
	return variantResponse{
		ID:        v.ID,
		Name:      v.Name,
		Price:     numericToString(v.Price),
		IsDefault: v.IsDefault,
	}
}

func toAttachmentResponse(row database.ListAttachmentsByItemRow) attachmentResponse {
	resp := attachmentResponse{
		GroupID:       row.Group.ID,
		GroupName:     row.Group.Name,
		SelectionType: row.Group.SelectionType,
		Required:      row.Attachment.Required,
	}
	if row.Attachment.MinSelect.Valid {
		v := row.Attachment.MinSelect.Int32
		resp.MinSelect = &v
	}
	if row.Attachment.MaxSelect.Valid {
		v := row.Attachment.MaxSelect.Int32
		resp.MaxSelect = &v
	}
	return resp
}

// --- Handlers ---

// List returns all menu items for the owner's restaurant.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	items, err := h.store.ListMenuItems(r.Context(), claims.RestaurantID)
	if err != nil {
		log.Printf("ERROR: list items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]itemResponse, len(items))
	for i, m := range items {
		resp[i] = toItemResponse(m)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new menu item.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	categoryID, ok := parseOptionalUUID(w, req.CategoryID, "category_id")
	if !ok {
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		RestaurantID: claims.RestaurantID,
		CategoryID:   categoryID,
		Code:         textOrNull(req.Code),
		Title:        req.Title,
		Description:  textOrNull(req.Description),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "item code already exists"})
			return
		}
		log.Printf("ERROR: create item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

// Get returns one item with its variants and attached option groups.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	item, ok := h.ownedItem(w, r, claims.RestaurantID)
	if !ok {
		return
	}

	variants, err := h.store.ListVariantsByItem(r.Context(), item.ID)
	if err != nil {
		log.Printf("ERROR: list variants: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	attachments, err := h.store.ListAttachmentsByItem(r.Context(), item.ID)
	if err != nil {
		log.Printf("ERROR: list attachments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := itemDetailResponse{
		itemResponse: toItemResponse(item),
		Variants:     make([]variantResponse, len(variants)),
		OptionGroups: make([]attachmentResponse, len(attachments)),
	}
	for i, v := range variants {
		resp.Variants[i] = toVariantResponse(v)
	}
	for i, a := range attachments {
		resp.OptionGroups[i] = toAttachmentResponse(a)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update modifies an item.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	categoryID, ok := parseOptionalUUID(w, req.CategoryID, "category_id")
	if !ok {
		return
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:           itemID,
		RestaurantID: claims.RestaurantID,
		CategoryID:   categoryID,
		Code:         textOrNull(req.Code),
		Title:        req.Title,
		Description:  textOrNull(req.Description),
		IsAvailable:  isAvailable,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "item code already exists"})
			return
		}
		log.Printf("ERROR: update item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// Delete removes an item. Past order lines keep their snapshot copy.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	_, err = h.store.DeleteMenuItem(r.Context(), database.DeleteMenuItemParams{
		ID:           itemID,
		RestaurantID: claims.RestaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: delete item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddVariant adds a priced variant. Making it the default clears the
// previous default in the same transaction.
func (h *ItemHandler) AddVariant(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	item, ok := h.ownedItem(w, r, claims.RestaurantID)
	if !ok {
		return
	}

	var req addVariantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: begin tx for add variant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context())

	txStore := h.newStore(tx)
	if req.IsDefault {
		if err := txStore.ClearDefaultVariant(r.Context(), item.ID); err != nil {
			log.Printf("ERROR: clear default variant: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	}

	variant, err := txStore.CreateVariant(r.Context(), database.CreateVariantParams{
		ItemID:    item.ID,
		Name:      req.Name,
		Price:     decimalToNumeric(price),
		IsDefault: req.IsDefault,
	})
	if err != nil {
		log.Printf("ERROR: create variant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit add variant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toVariantResponse(variant))
}

// SetDefaultVariant makes one variant the default. Clear-then-set runs
// in one transaction so the at-most-one-default invariant holds.
func (h *ItemHandler) SetDefaultVariant(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	item, ok := h.ownedItem(w, r, claims.RestaurantID)
	if !ok {
		return
	}

	variantID, err := uuid.Parse(chi.URLParam(r, "vid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid variant ID"})
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: begin tx for default variant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context())

	txStore := h.newStore(tx)
	if err := txStore.ClearDefaultVariant(r.Context(), item.ID); err != nil {
		log.Printf("ERROR: clear default variant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	variant, err := txStore.SetDefaultVariant(r.Context(), database.SetDefaultVariantParams{
		ID:     variantID,
		ItemID: item.ID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "variant not found"})
			return
		}
		log.Printf("ERROR: set default variant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit default variant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toVariantResponse(variant))
}

// DeleteVariant removes a variant.
func (h *ItemHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	item, ok := h.ownedItem(w, r, claims.RestaurantID)
	if !ok {
		return
	}

	variantID, err := uuid.Parse(chi.URLParam(r, "vid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid variant ID"})
		return
	}

	_, err = h.store.DeleteVariant(r.Context(), database.DeleteVariantParams{
		ID:     variantID,
		ItemID: item.ID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "variant not found"})
			return
		}
		log.Printf("ERROR: delete variant: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAttachments returns the option groups attached to an item.
func (h *ItemHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	item, ok := h.ownedItem(w, r, claims.RestaurantID)
	if !ok {
		return
	}

	attachments, err := h.store.ListAttachmentsByItem(r.Context(), item.ID)
	if err != nil {
		log.Printf("ERROR: list attachments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]attachmentResponse, len(attachments))
	for i, a := range attachments {
		resp[i] = toAttachmentResponse(a)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Attach links an option group to an item, optionally overriding the
// group's selection bounds for this item.
func (h *ItemHandler) Attach(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	item, ok := h.ownedItem(w, r, claims.RestaurantID)
	if !ok {
		return
	}

	var req attachGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group_id"})
		return
	}

	// The group must belong to the same tenant as the item.
	if _, err := h.store.GetOptionGroup(r.Context(), database.GetOptionGroupParams{
		ID:           groupID,
		RestaurantID: claims.RestaurantID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "option group not found"})
			return
		}
		log.Printf("ERROR: get option group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	attachment, err := h.store.AttachOptionGroup(r.Context(), database.AttachOptionGroupParams{
		ItemID:    item.ID,
		GroupID:   groupID,
		Required:  req.Required,
		MinSelect: int4OrNull(req.MinSelect),
		MaxSelect: int4OrNull(req.MaxSelect),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "option group already attached"})
			return
		}
		log.Printf("ERROR: attach option group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, attachment)
}

// Detach unlinks an option group from an item.
func (h *ItemHandler) Detach(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	item, ok := h.ownedItem(w, r, claims.RestaurantID)
	if !ok {
		return
	}

	groupID, err := uuid.Parse(chi.URLParam(r, "gid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group ID"})
		return
	}

	_, err = h.store.DetachOptionGroup(r.Context(), database.DetachOptionGroupParams{
		ItemID:  item.ID,
		GroupID: groupID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "attachment not found"})
			return
		}
		log.Printf("ERROR: detach option group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// ownedItem resolves {id} and enforces tenant ownership. Variant and
// attachment queries key on item_id alone, so this check is the tenant
// boundary for everything nested under an item.
func (h *ItemHandler) ownedItem(w http.ResponseWriter, r *http.Request, restaurantID uuid.UUID) (database.MenuItem, bool) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return database.MenuItem{}, false
	}

	item, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{
		ID:           itemID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return database.MenuItem{}, false
		}
		log.Printf("ERROR: get item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.MenuItem{}, false
	}
	return item, true
}

func parseOptionalUUID(w http.ResponseWriter, s, field string) (pgtype.UUID, bool) {
	if s == "" {
		return pgtype.UUID{}, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + field})
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: id, Valid: true}, true
}

func uuidOrNull(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

func int4OrNull(v *int32) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *v, Valid: true}
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

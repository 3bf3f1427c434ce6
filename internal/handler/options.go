package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/enum"
	"github.com/plateful/api/internal/middleware"
	"github.com/shopspring/decimal"
)

// OptionStore defines the database methods needed by option group handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OptionStore interface {
	ListOptionGroups(ctx context.Context, restaurantID uuid.UUID) ([]database.OptionGroup, error)
	CreateOptionGroup(ctx context.Context, arg database.CreateOptionGroupParams) (database.OptionGroup, error)
	GetOptionGroup(ctx context.Context, arg database.GetOptionGroupParams) (database.OptionGroup, error)
	UpdateOptionGroup(ctx context.Context, arg database.UpdateOptionGroupParams) (database.OptionGroup, error)
	DeleteOptionGroup(ctx context.Context, arg database.DeleteOptionGroupParams) (uuid.UUID, error)
	CreateOption(ctx context.Context, arg database.CreateOptionParams) (database.Option, error)
	ListOptionsByGroup(ctx context.Context, groupID uuid.UUID) ([]database.Option, error)
	UpdateOption(ctx context.Context, arg database.UpdateOptionParams) (database.Option, error)
	DeleteOption(ctx context.Context, arg database.DeleteOptionParams) (uuid.UUID, error)
}

// OptionGroupHandler handles option group and option endpoints.
type OptionGroupHandler struct {
	store OptionStore
}

// NewOptionGroupHandler creates a new OptionGroupHandler.
func NewOptionGroupHandler(store OptionStore) *OptionGroupHandler {
	return &OptionGroupHandler{store: store}
}

// RegisterRoutes registers option group endpoints on the given Chi router.
func (h *OptionGroupHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	r.Post("/{id}/options", h.AddOption)
	r.Put("/{id}/options/{oid}", h.UpdateOption)
	r.Delete("/{id}/options/{oid}", h.DeleteOption)
}

// --- Request / Response types ---

type optionGroupRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	SelectionType string `json:"selection_type"`
	MinSelect     int32  `json:"min_select"`
	MaxSelect     *int32 `json:"max_select"`
	IsActive      *bool  `json:"is_active"`
}

type optionRequest struct {
	Name        string `json:"name"`
	PriceDelta  string `json:"price_delta"`
	IsAvailable *bool  `json:"is_available"`
	SortOrder   int32  `json:"sort_order"`
}

type optionGroupResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	SelectionType string    `json:"selection_type"`
	MinSelect     int32     `json:"min_select"`
	MaxSelect     *int32    `json:"max_select"`
	IsActive      bool      `json:"is_active"`
}

type optionResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PriceDelta  string    `json:"price_delta"`
	IsAvailable bool      `json:"is_available"`
	SortOrder   int32     `json:"sort_order"`
}

type optionGroupDetailResponse struct {
	optionGroupResponse
	Options []optionResponse `json:"options"`
}

func toOptionGroupResponse(g database.OptionGroup) optionGroupResponse {
	resp := optionGroupResponse{
		ID:            g.ID,
		Name:          g.Name,
		SelectionType: g.SelectionType,
		MinSelect:     g.MinSelect,
		IsActive:      g.IsActive,
	}
	resp.Description = textPtr(g.Description)
	if g.MaxSelect.Valid {
		v := g.MaxSelect.Int32
		resp.MaxSelect = &v
	}
	return resp
}

func toOptionResponse(o database.Option) optionResponse {
	return optionResponse{
		ID:          o.ID,
		Name:        o.Name,
		PriceDelta:  numericToString(o.PriceDelta),
		IsAvailable: o.IsAvailable,
		SortOrder:   o.SortOrder,
	}
}

// clampGroupBounds normalizes SINGLE groups: a customer picks at most
// one option, so stored bounds of max_select=1, min_select<=1 are the
// only ones the storefront validator can ever satisfy.
func clampGroupBounds(req *optionGroupRequest) {
	if req.SelectionType != enum.SelectionTypeSingle {
		return
	}
	one := int32(1)
	req.MaxSelect = &one
	if req.MinSelect > 1 {
		req.MinSelect = 1
	}
}

func validateGroupRequest(req optionGroupRequest) string {
	if req.Name == "" {
		return "name is required"
	}
	if req.SelectionType != enum.SelectionTypeSingle && req.SelectionType != enum.SelectionTypeMulti {
		return "selection_type must be SINGLE or MULTI"
	}
	if req.MinSelect < 0 {
		return "min_select cannot be negative"
	}
	if req.MaxSelect != nil && *req.MaxSelect < req.MinSelect {
		return "max_select cannot be below min_select"
	}
	return ""
}

// --- Handlers ---

// List returns all option groups for the owner's restaurant.
func (h *OptionGroupHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	groups, err := h.store.ListOptionGroups(r.Context(), claims.RestaurantID)
	if err != nil {
		log.Printf("ERROR: list option groups: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]optionGroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = toOptionGroupResponse(g)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new option group.
func (h *OptionGroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req optionGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	clampGroupBounds(&req)
	if msg := validateGroupRequest(req); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	group, err := h.store.CreateOptionGroup(r.Context(), database.CreateOptionGroupParams{
		RestaurantID:  claims.RestaurantID,
		Name:          req.Name,
		Description:   textOrNull(req.Description),
		SelectionType: req.SelectionType,
		MinSelect:     req.MinSelect,
		MaxSelect:     int4OrNull(req.MaxSelect),
	})
	if err != nil {
		log.Printf("ERROR: create option group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toOptionGroupResponse(group))
}

// Get returns one group with all its options.
func (h *OptionGroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	group, ok := h.ownedGroup(w, r, claims.RestaurantID)
	if !ok {
		return
	}

	options, err := h.store.ListOptionsByGroup(r.Context(), group.ID)
	if err != nil {
		log.Printf("ERROR: list options: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := optionGroupDetailResponse{
		optionGroupResponse: toOptionGroupResponse(group),
		Options:             make([]optionResponse, len(options)),
	}
	for i, o := range options {
		resp.Options[i] = toOptionResponse(o)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update modifies a group's rules. Selection bounds only gate future
// carts; existing order lines keep their snapshots.
func (h *OptionGroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group ID"})
		return
	}

	var req optionGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	clampGroupBounds(&req)
	if msg := validateGroupRequest(req); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	group, err := h.store.UpdateOptionGroup(r.Context(), database.UpdateOptionGroupParams{
		ID:            groupID,
		RestaurantID:  claims.RestaurantID,
		Name:          req.Name,
		Description:   textOrNull(req.Description),
		SelectionType: req.SelectionType,
		MinSelect:     req.MinSelect,
		MaxSelect:     int4OrNull(req.MaxSelect),
		IsActive:      isActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "option group not found"})
			return
		}
		log.Printf("ERROR: update option group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOptionGroupResponse(group))
}

// Delete removes a group; its options and item attachments cascade.
func (h *OptionGroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group ID"})
		return
	}

	_, err = h.store.DeleteOptionGroup(r.Context(), database.DeleteOptionGroupParams{
		ID:           groupID,
		RestaurantID: claims.RestaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "option group not found"})
			return
		}
		log.Printf("ERROR: delete option group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddOption appends an option to a group.
func (h *OptionGroupHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	group, ok := h.ownedGroup(w, r, claims.RestaurantID)
	if !ok {
		return
	}

	var req optionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	delta := decimal.Zero
	if req.PriceDelta != "" {
		var err error
		delta, err = decimal.NewFromString(req.PriceDelta)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price_delta"})
			return
		}
	}

	option, err := h.store.CreateOption(r.Context(), database.CreateOptionParams{
		GroupID:    group.ID,
		Name:       req.Name,
		PriceDelta: decimalToNumeric(delta),
	})
	if err != nil {
		log.Printf("ERROR: create option: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toOptionResponse(option))
}

// UpdateOption modifies an option.
func (h *OptionGroupHandler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	optionID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid option ID"})
		return
	}

	var req optionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	delta := decimal.Zero
	if req.PriceDelta != "" {
		var err error
		delta, err = decimal.NewFromString(req.PriceDelta)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price_delta"})
			return
		}
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	option, err := h.store.UpdateOption(r.Context(), database.UpdateOptionParams{
		ID:           optionID,
		RestaurantID: claims.RestaurantID,
		Name:         req.Name,
		PriceDelta:   decimalToNumeric(delta),
		IsAvailable:  isAvailable,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "option not found"})
			return
		}
		log.Printf("ERROR: update option: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOptionResponse(option))
}

// DeleteOption removes an option.
func (h *OptionGroupHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	optionID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid option ID"})
		return
	}

	_, err = h.store.DeleteOption(r.Context(), database.DeleteOptionParams{
		ID:           optionID,
		RestaurantID: claims.RestaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "option not found"})
			return
		}
		log.Printf("ERROR: delete option: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (h *OptionGroupHandler) ownedGroup(w http.ResponseWriter, r *http.Request, restaurantID uuid.UUID) (database.OptionGroup, bool) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid group ID"})
		return database.OptionGroup{}, false
	}

	group, err := h.store.GetOptionGroup(r.Context(), database.GetOptionGroupParams{
		ID:           groupID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "option group not found"})
			return database.OptionGroup{}, false
		}
		log.Printf("ERROR: get option group: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.OptionGroup{}, false
	}
	return group, true
}

//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/plateful/api/internal/config"
	"github.com/plateful/api/internal/database"
	"github.com/plateful/api/internal/router"
)

// TestIntegrationFlow exercises the full customer and owner lifecycle
// against a real PostgreSQL database: owner signup, menu build-out,
// storefront browsing, cart, hosted checkout and the kitchen board.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()
	runMigrations(t, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	gateway := newStubGateway()
	gatewayServer := httptest.NewServer(gateway)
	defer gatewayServer.Close()

	cfg := &config.Config{
		Port:           "8083",
		DatabaseURL:    connStr,
		JWTSecret:      "integration-test-secret",
		AppBaseURL:     "http://localhost:5173",
		CheckoutAPIURL: gatewayServer.URL,
		CheckoutAPIKey: "test-key",
	}
	queries := database.New(pool)
	server := httptest.NewServer(router.New(cfg, queries, pool))
	defer server.Close()

	// --- 1. Owner registers and names a storefront domain ---
	registerResp := httpPostJSON(t, server, "/auth/register", map[string]interface{}{
		"email":           "owner@dockside.test",
		"password":        "password123",
		"restaurant_name": "Dockside Grill",
	}, "")
	token, ok := registerResp["token"].(string)
	if !ok || token == "" {
		t.Fatalf("register: no token in response: %+v", registerResp)
	}

	httpPutJSON(t, server, "/restaurant", map[string]interface{}{
		"name":   "Dockside Grill",
		"domain": "dockside",
		"tz":     "America/Chicago",
	}, token)

	// --- 2. Owner builds the menu ---
	categoryResp := httpPostJSON(t, server, "/categories", map[string]interface{}{
		"name": "Mains",
	}, token)
	categoryID := categoryResp["id"].(string)

	itemResp := httpPostJSON(t, server, "/items", map[string]interface{}{
		"category_id": categoryID,
		"code":        "FISH-1",
		"title":       "Grilled Catch",
		"description": "Daily catch off the grill",
	}, token)
	itemID := itemResp["id"].(string)

	httpPostJSON(t, server, "/items/"+itemID+"/variants", map[string]interface{}{
		"name":       "Regular",
		"price":      "10.99",
		"is_default": true,
	}, token)

	groupResp := httpPostJSON(t, server, "/option-groups", map[string]interface{}{
		"name":           "Sides",
		"selection_type": "MULTI",
		"min_select":     0,
		"max_select":     2,
	}, token)
	groupID := groupResp["id"].(string)
	optionResp := httpPostJSON(t, server, "/option-groups/"+groupID+"/options", map[string]interface{}{
		"name":        "Fries",
		"price_delta": "1.50",
	}, token)
	optionID := optionResp["id"].(string)

	httpPostJSON(t, server, "/items/"+itemID+"/option-groups", map[string]interface{}{
		"group_id": groupID,
		"required": false,
	}, token)

	// --- 3. Customer browses the storefront ---
	menuResp := httpGetJSON(t, server, "/restaurants/dockside/menu", "")
	categories := menuResp["categories"].([]interface{})
	if len(categories) != 1 {
		t.Fatalf("menu categories: got %d, want 1", len(categories))
	}

	// --- 4. Customer fills a cart (cookie-backed draft order) ---
	customer := newCustomerClient(t)
	cartResp := customer.postJSON(t, server, "/restaurants/dockside/cart/items", map[string]interface{}{
		"item_id":  itemID,
		"quantity": 2,
		"options": map[string][]string{
			groupID: {optionID},
		},
	})
	// Unit: 10.99 + 1.50 side = 12.49; two of them.
	if cartResp["total"].(string) != "24.98" {
		t.Fatalf("cart total: got %s, want 24.98", cartResp["total"])
	}

	// --- 5. Hosted checkout session ---
	startResp := customer.postJSON(t, server, "/restaurants/dockside/checkout", nil)
	checkoutURL, ok := startResp["checkout_url"].(string)
	if !ok || !strings.HasPrefix(checkoutURL, gatewayServer.URL) {
		t.Fatalf("checkout_url: got %v", startResp["checkout_url"])
	}
	sessionID := gateway.lastSessionID()
	if sessionID == "" {
		t.Fatal("gateway never saw a session")
	}

	// Confirming before the provider settles must not flip the order.
	rr := customer.postJSONStatus(t, server, "/restaurants/dockside/checkout/confirm", map[string]interface{}{
		"session_id": sessionID,
	})
	if rr != http.StatusConflict {
		t.Fatalf("confirm before settle: got %d, want %d", rr, http.StatusConflict)
	}

	gateway.settle(sessionID, "pay_integration_1")

	confirmResp := customer.postJSON(t, server, "/restaurants/dockside/checkout/confirm", map[string]interface{}{
		"session_id": sessionID,
	})
	if confirmResp["status"].(string) != "PAID" {
		t.Fatalf("order status after confirm: got %s, want PAID", confirmResp["status"])
	}
	orderID := uuid.MustParse(confirmResp["order_id"].(string))

	// --- 6. Kitchen works the ticket ---
	board := httpGetJSON(t, server, "/kitchen", token)
	paidLane := board["paid"].([]interface{})
	if len(paidLane) != 1 {
		t.Fatalf("kitchen paid lane: got %d, want 1", len(paidLane))
	}

	httpPostJSON(t, server, "/kitchen/"+orderID.String()+"/start", nil, token)
	httpPostJSON(t, server, "/kitchen/"+orderID.String()+"/ready", nil, token)
	doneResp := httpPostJSON(t, server, "/kitchen/"+orderID.String()+"/complete", nil, token)
	if doneResp["status"].(string) != "COMPLETED" {
		t.Fatalf("order status after kitchen flow: got %s, want COMPLETED", doneResp["status"])
	}

	// --- 7. Order history reflects the payment snapshot ---
	orderResp := httpGetJSON(t, server, "/orders/"+orderID.String(), token)
	if orderResp["payment_ref"].(string) != "pay_integration_1" {
		t.Fatalf("payment_ref: got %v, want pay_integration_1", orderResp["payment_ref"])
	}
	if orderResp["total"].(string) != "24.98" {
		t.Fatalf("order total: got %s, want 24.98", orderResp["total"])
	}
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("plateful_test"),
		tcpostgres.WithUsername("plateful"),
		tcpostgres.WithPassword("plateful"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return connStr, cleanup
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	// Go test runs with cwd set to this package's directory.
	m, err := migrate.NewWithDatabaseInstance(
		"file://../database/migrations",
		"postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

// stubGateway plays the hosted checkout provider: sessions are created
// unpaid and settle only when the test says so.
type stubGateway struct {
	mu       sync.Mutex
	sessions map[string]map[string]interface{}
	lastID   string
}

func newStubGateway() *stubGateway {
	return &stubGateway{sessions: make(map[string]map[string]interface{})}
}

func (g *stubGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		id := "cs_test_" + uuid.NewString()[:8]
		session := map[string]interface{}{
			"id":             id,
			"url":            "http://" + r.Host + "/pay/" + id,
			"payment_status": "unpaid",
			"payment_ref":    "",
			"order_id":       req["order_id"],
		}
		g.sessions[id] = session
		g.lastID = id
		json.NewEncoder(w).Encode(session)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/checkout/sessions/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/checkout/sessions/")
		session, ok := g.sessions[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(session)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (g *stubGateway) lastSessionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastID
}

func (g *stubGateway) settle(id, paymentRef string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if session, ok := g.sessions[id]; ok {
		session["payment_status"] = "paid"
		session["payment_ref"] = paymentRef
	}
}

// customerClient carries the cart cookie across storefront calls.
type customerClient struct {
	http *http.Client
}

func newCustomerClient(t *testing.T) *customerClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &customerClient{http: &http.Client{Jar: jar}}
}

func (c *customerClient) postJSON(t *testing.T, server *httptest.Server, path string, body interface{}) map[string]interface{} {
	t.Helper()
	resp := c.do(t, server, path, body)
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("POST %s: status %d, body: %v", path, resp.StatusCode, errResp)
	}
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func (c *customerClient) postJSONStatus(t *testing.T, server *httptest.Server, path string, body interface{}) int {
	t.Helper()
	resp := c.do(t, server, path, body)
	defer resp.Body.Close()
	return resp.StatusCode
}

func (c *customerClient) do(t *testing.T, server *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(http.MethodPost, server.URL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

// --- HTTP helpers for the authenticated dashboard ---

func httpPostJSON(t *testing.T, server *httptest.Server, path string, body map[string]interface{}, token string) map[string]interface{} {
	t.Helper()
	return httpJSON(t, server, http.MethodPost, path, body, token)
}

func httpPutJSON(t *testing.T, server *httptest.Server, path string, body map[string]interface{}, token string) map[string]interface{} {
	t.Helper()
	return httpJSON(t, server, http.MethodPut, path, body, token)
}

func httpGetJSON(t *testing.T, server *httptest.Server, path, token string) map[string]interface{} {
	t.Helper()
	return httpJSON(t, server, http.MethodGet, path, nil, token)
}

func httpJSON(t *testing.T, server *httptest.Server, method, path string, body map[string]interface{}, token string) map[string]interface{} {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("%s %s: status %d, body: %v", method, path, resp.StatusCode, errResp)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

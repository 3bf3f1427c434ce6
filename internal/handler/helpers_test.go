package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/plateful/api/internal/auth"
	"github.com/plateful/api/internal/middleware"
)

// authedRouter builds a router whose requests carry claims for the
// given restaurant, standing in for the JWT middleware.
func authedRouter(restaurantID uuid.UUID, register func(r chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			claims := &auth.Claims{RestaurantID: restaurantID, Email: "owner@example.com"}
			next.ServeHTTP(w, req.WithContext(middleware.WithClaims(req.Context(), claims)))
		})
	})
	register(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, method, path, body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func newRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	if s, ok := body.(string); ok {
		return httptest.NewRequest(method, path, bytes.NewReader([]byte(s)))
	}
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeObj(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func makeNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("numeric %q: %v", s, err)
	}
	return n
}

// fakeTx satisfies pgx.Tx for handlers that open transactions. Only
// Commit and Rollback are ever called; the embedded nil interface
// panics on anything else.
type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

// fakePool satisfies service.TxBeginner without a database.
type fakePool struct{}

func (fakePool) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

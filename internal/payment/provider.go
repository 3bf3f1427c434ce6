// Package payment talks to the hosted checkout provider. The provider
// hosts the payment page; we create a session, redirect the customer to
// it and later resolve the session server-side to learn whether it was
// paid. The session is never trusted from the client.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrSessionNotFound = errors.New("checkout session not found")

// LineItem describes one cart line on the hosted payment page.
type LineItem struct {
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
	UnitAmount int64  `json:"unit_amount"` // cents
}

// SessionRequest creates a hosted checkout session. Amounts are integer
// cents; the provider rejects floats.
type SessionRequest struct {
	Amount        int64      `json:"amount"` // cents
	Currency      string     `json:"currency"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	SuccessURL    string     `json:"success_url"`
	CancelURL     string     `json:"cancel_url"`
	OrderID       string     `json:"order_id"`
	LineItems     []LineItem `json:"line_items"`
}

// Session is the provider's view of a checkout session.
type Session struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"` // "paid" once settled
	PaymentRef    string `json:"payment_ref"`
	OrderID       string `json:"order_id"`
}

// Paid reports whether the session settled.
func (s *Session) Paid() bool {
	return s.PaymentStatus == "paid"
}

// Provider is the checkout gateway surface the services depend on.
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

// Client is the HTTP Provider implementation.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq)
}

func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/checkout/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) (*Session, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrSessionNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("checkout provider: unexpected status %d", resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

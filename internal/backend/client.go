// Package backend talks to the Foroline API service: order creation,
// transaction lookup, payment fallback recording and the account aggregate.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
)

// ErrNotAuthenticated is returned when a call requiring a user token is made
// without one.
var ErrNotAuthenticated = errors.New("backend: not authenticated")

// APIError carries the backend's user-facing error text alongside the HTTP
// status, so handlers can surface the message and keep the page retryable.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// Client issues JSON calls against the API service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs an API client. When baseURL is empty, the client
// serves mock data so the frontend runs standalone in development.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Transaction mirrors the backend's record of a completed payment. A zero
// value (empty TransactionID/OrderCode) is the "not found" sentinel, not an
// error: the webhook may simply not have landed yet.
type Transaction struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	OrderCode     string `json:"order_code"`
	UserID        string `json:"user_id"`
	EventID       int    `json:"event_id"`
	ECI           int    `json:"eci"`
	AmountCents   int    `json:"amount"`
	CreatedAt     string `json:"created_at"`
}

// Found reports whether the record refers to an actual transaction.
func (t Transaction) Found() bool {
	return t.TransactionID != "" && t.OrderCode != ""
}

// PaymentRequest is the fallback verify-and-record payload sent when the
// webhook-driven record is missing.
type PaymentRequest struct {
	UserID        string `json:"user_id"`
	TransactionID string `json:"transaction_id"`
	OrderCode     string `json:"order_code"`
	EventID       int    `json:"event_id"`
	ECI           int    `json:"eci"`
	AmountCents   int    `json:"amount"`
}

// CreateOrder asks the backend to open a Viva order for the given amount and
// returns the order code used to reference the hosted checkout.
func (c *Client) CreateOrder(ctx context.Context, amountCents int, token string) (string, error) {
	if c == nil || c.baseURL == "" {
		return fakeOrderCode(), nil
	}
	if token == "" {
		return "", ErrNotAuthenticated
	}

	body, err := json.Marshal(map[string]int{"amount_cents": amountCents})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/order", nil, bytes.NewReader(body), token)
	if err != nil {
		return "", err
	}
	req.Header.Set(idempotencyHeader, uuid.NewString())

	var payload struct {
		OrderCode string `json:"orderCode"`
	}
	if _, err := c.do(req, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.OrderCode) == "" {
		return "", &APIError{Status: http.StatusBadGateway, Message: "order code missing from response"}
	}
	return payload.OrderCode, nil
}

// GetTransaction looks up the webhook-recorded transaction for the pair. The
// all-empty sentinel comes back as a zero Transaction with a nil error.
func (c *Client) GetTransaction(ctx context.Context, transactionID, orderCode, token string) (Transaction, error) {
	if c == nil || c.baseURL == "" {
		return fakeTransaction(transactionID, orderCode), nil
	}
	if token == "" {
		return Transaction{}, ErrNotAuthenticated
	}

	q := url.Values{}
	q.Set("transaction_id", transactionID)
	q.Set("order_code", orderCode)
	req, err := c.newRequest(ctx, http.MethodGet, "/transaction", q, nil, token)
	if err != nil {
		return Transaction{}, err
	}

	var tx Transaction
	if _, err := c.do(req, &tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// RecordPayment performs the fallback verify-and-record call. It returns true
// when the backend created a new record (201) and false when the record
// already existed — idempotent success, not an error.
func (c *Client) RecordPayment(ctx context.Context, p PaymentRequest, token string) (bool, error) {
	if c == nil || c.baseURL == "" {
		return true, nil
	}
	if token == "" {
		return false, ErrNotAuthenticated
	}

	body, err := json.Marshal(p)
	if err != nil {
		return false, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/payment", nil, bytes.NewReader(body), token)
	if err != nil {
		return false, err
	}

	status, err := c.do(req, nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusCreated, nil
}

// Account is the profile/usage/payment-history aggregate for the signed-in
// user.
type Account struct {
	User struct {
		ID         string `json:"id"`
		Identifier string `json:"identifier"`
		Balance    int    `json:"balance"`
	} `json:"user"`
	Payments    []Payment     `json:"payments"`
	ThreadUsage []ThreadUsage `json:"threadUsage"`
}

// Payment is one row of the payment history table.
type Payment struct {
	OrderCode     string `json:"order_code"`
	TransactionID string `json:"transaction_id"`
	AmountCents   int    `json:"amount"`
	Currency      string `json:"currency"`
	CreatedAt     string `json:"created_at"`
	Status        string `json:"status"`
}

// ThreadUsage aggregates token consumption of one chat thread.
type ThreadUsage struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatedAt    string `json:"createdAt"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	TotalTokens  int    `json:"total_tokens"`
}

// GetAccount fetches the profile aggregate.
func (c *Client) GetAccount(ctx context.Context, token string) (Account, error) {
	if c == nil || c.baseURL == "" {
		return fakeAccount(), nil
	}
	if token == "" {
		return Account{}, ErrNotAuthenticated
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/user/account", nil, nil, token)
	if err != nil {
		return Account{}, err
	}
	var acct Account
	if _, err := c.do(req, &acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body io.Reader, token string) (*http.Request, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do executes the request, decodes a 2xx body into out when provided, and
// converts error statuses into *APIError carrying the backend's message.
func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: drainMessage(resp.Body)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: "malformed response"}
		}
	}
	return resp.StatusCode, nil
}

// drainMessage extracts the human-readable error from the backend envelope.
// The API wraps errors as {"detail": ...}; older handlers used {"message"}.
func drainMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 2048))
	var envelope struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		for _, m := range []string{envelope.Detail, envelope.Message, envelope.Error} {
			if strings.TrimSpace(m) != "" {
				return strings.TrimSpace(m)
			}
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return "request failed"
}

// Package params converts raw, attacker-influenced query-string values into
// typed, constrained records before any other logic runs. All functions are
// pure over their inputs.
package params

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Credit packages purchasable through Viva, in euro cents. Any other amount
// is rejected outright, never coerced.
const (
	AmountBasic = 500
	AmountPlus  = 1000
)

// Freshness windows for a guest-order intent surviving the login redirect.
// The short window absorbs the immediate OAuth round trip; the long window
// covers a user returning later via a kept URL, which then requires explicit
// confirmation. Fixed design constants, not runtime configuration.
const (
	FreshWindow   = 10 * time.Second
	ConfirmWindow = time.Hour
)

// Query parameter names shared with the backend's redirect allowlist.
const (
	KeyAmount        = "amount"
	KeyCreatedAt     = "createdAt"
	KeyTransactionID = "t"
	KeyOrderCode     = "s"
	KeyEventID       = "eventId"
	KeyECI           = "eci"
	KeyOrderFailed   = "orderFailed"
)

// ErrNoIntent is returned when the query carries no order-intent fields at
// all. Callers treat it the same as a validation failure: no intent present.
var ErrNoIntent = errors.New("params: no order intent in query")

// OrderIntent is a validated guest purchase intent carried in the URL.
type OrderIntent struct {
	AmountCents int
	CreatedAt   int64 // epoch milliseconds
}

// Values serializes the intent back into query parameters, the inverse of
// ParseOrderIntent.
func (it OrderIntent) Values() url.Values {
	v := url.Values{}
	v.Set(KeyAmount, strconv.Itoa(it.AmountCents))
	v.Set(KeyCreatedAt, strconv.FormatInt(it.CreatedAt, 10))
	return v
}

// ParseOrderIntent validates the amount/createdAt pair from a query string.
// A failure means "no intent present", never a fatal condition.
func ParseOrderIntent(q url.Values) (OrderIntent, error) {
	rawAmount := strings.TrimSpace(q.Get(KeyAmount))
	rawCreated := strings.TrimSpace(q.Get(KeyCreatedAt))
	if rawAmount == "" && rawCreated == "" {
		return OrderIntent{}, ErrNoIntent
	}

	amount, err := coerceNumber(rawAmount)
	if err != nil {
		return OrderIntent{}, fmt.Errorf("params: amount: %w", err)
	}
	if amount != AmountBasic && amount != AmountPlus {
		return OrderIntent{}, fmt.Errorf("params: amount must be %d or %d", AmountBasic, AmountPlus)
	}

	created, err := coerceNumber(rawCreated)
	if err != nil {
		return OrderIntent{}, fmt.Errorf("params: createdAt: %w", err)
	}

	return OrderIntent{AmountCents: int(amount), CreatedAt: created}, nil
}

// Freshness classifies how old a guest-order intent is.
type Freshness int

const (
	// Fresh intents resume automatically without user interaction.
	Fresh Freshness = iota
	// StaleCacheable intents may resume after explicit confirmation, provided
	// the persisted record matches the URL pair exactly.
	StaleCacheable
	// Expired intents are discarded silently.
	Expired
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case StaleCacheable:
		return "stale-cacheable"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// Classify places createdAt into a freshness tier relative to now. Boundaries
// are strict: an age of exactly FreshWindow is not fresh, and exactly
// ConfirmWindow is expired.
func Classify(now time.Time, createdAt int64) Freshness {
	age := now.UnixMilli() - createdAt
	if age < FreshWindow.Milliseconds() {
		return Fresh
	}
	if age < ConfirmWindow.Milliseconds() {
		return StaleCacheable
	}
	return Expired
}

// PaymentCallback holds the parameters Viva appends when redirecting the
// shopper back from hosted checkout. Consumed once per request, never stored.
type PaymentCallback struct {
	TransactionID string
	OrderCode     string
	EventID       int
	ECI           int
	OrderFailed   bool

	complete bool
}

// Complete reports whether the callback carries every field needed for
// reconciliation: transaction id, order code and numeric eventId/eci.
func (c PaymentCallback) Complete() bool { return c.complete }

// ParsePaymentCallback extracts the checkout-return parameters. Every field
// is optional; absent or malformed fields simply leave the callback
// incomplete. The failure flag matches the literals "1" and "true" only —
// deliberately not liberal.
func ParsePaymentCallback(q url.Values) PaymentCallback {
	cb := PaymentCallback{
		TransactionID: strings.TrimSpace(q.Get(KeyTransactionID)),
		OrderCode:     strings.TrimSpace(q.Get(KeyOrderCode)),
	}

	failed := q.Get(KeyOrderFailed)
	cb.OrderFailed = failed == "1" || failed == "true"

	eventID, evOK := parseIntField(q.Get(KeyEventID))
	eci, eciOK := parseIntField(q.Get(KeyECI))
	cb.EventID = eventID
	cb.ECI = eci

	cb.complete = cb.TransactionID != "" && cb.OrderCode != "" && evOK && eciOK
	return cb
}

// coerceNumber accepts integral values in either integer or float notation,
// mirroring how the URL parameters were historically written.
func coerceNumber(raw string) (int64, error) {
	if raw == "" {
		return 0, errors.New("missing")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if f != float64(int64(f)) {
		return 0, errors.New("not an integral number")
	}
	return int64(f), nil
}

func parseIntField(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

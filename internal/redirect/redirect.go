// Package redirect validates post-login return targets so the auth callback
// can only forward the browser to pages we own, carrying only parameters we
// recognise.
package redirect

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidTarget is returned when a referer fails allowlist validation.
var ErrInvalidTarget = errors.New("redirect: invalid target")

// Paths a login round trip is allowed to land on.
var allowedPaths = map[string]struct{}{
	"/order":         {},
	"/order/success": {},
}

// Query keys that may survive the redirect; everything else is stripped.
// Matches the guest-intent and payment-return carriers.
var allowedParams = map[string]struct{}{
	"amount":      {},
	"createdAt":   {},
	"orderFailed": {},
	"eventId":     {},
	"eci":         {},
	"s":           {},
	"t":           {},
}

// Target is a validated relative redirect destination.
type Target struct {
	Path  string
	Query url.Values
}

// String renders the target as a relative URL.
func (t Target) String() string {
	if len(t.Query) == 0 {
		return t.Path
	}
	return t.Path + "?" + t.Query.Encode()
}

// Validate checks a raw referer value. Absolute URLs, unknown paths and
// traversal tricks are rejected; unrecognised query keys are filtered out
// rather than failing the whole redirect.
func Validate(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return Target{}, ErrInvalidTarget
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return Target{}, ErrInvalidTarget
	}
	if _, ok := allowedPaths[u.Path]; !ok {
		return Target{}, ErrInvalidTarget
	}
	return Target{Path: u.Path, Query: FilterParams(u.Query())}, nil
}

// FilterParams drops every query key outside the allowlist.
func FilterParams(q url.Values) url.Values {
	out := url.Values{}
	for k, vs := range q {
		if _, ok := allowedParams[k]; !ok {
			continue
		}
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

// Package intent bridges a guest's purchase intent across the login redirect,
// a navigation boundary that destroys all in-flight request state. The intent
// travels on two rails at once: the post-login return URL and a single-slot
// record persisted in the visitor's session. After the round trip the two are
// reconciled into one of three actions.
package intent

import (
	"net/url"
	"time"

	"foroline.gr/foroline-web/internal/params"
)

// StorageKey names the single slot a guest intent occupies. There is never
// more than one pending intent per visitor.
const StorageKey = "guestOrder"

// Record is the persisted form of an order intent. The expiry mirrors the
// confirmable window so an abandoned slot cannot outlive its usefulness.
type Record struct {
	AmountCents int   `json:"amount"`
	CreatedAt   int64 `json:"createdAt"`
	ExpiresAt   int64 `json:"expiresAt"`
}

// Store is a bounded, single-item slot with read/write/clear as the only
// operations. Writes replace any previous record; Clear is idempotent.
type Store interface {
	Read() (Record, bool)
	Write(Record)
	Clear()
}

// AuthRedirector sends an unauthenticated visitor to the OAuth authorize
// endpoint, arranging for the browser to come back to returnTo afterwards.
type AuthRedirector interface {
	LoginURL(returnTo string) string
}

// Action is the controller's verdict after the login round trip.
type Action int

const (
	// ActionNone: no usable intent; any leftover state has been cleared.
	ActionNone Action = iota
	// ActionAutoResume: the intent is fresh, resume order creation silently.
	ActionAutoResume
	// ActionAskConfirmation: the intent is stale but matches the persisted
	// record; ask the user before resuming.
	ActionAskConfirmation
)

func (a Action) String() string {
	switch a {
	case ActionAutoResume:
		return "auto-resume"
	case ActionAskConfirmation:
		return "ask-confirmation"
	}
	return "none"
}

// Decision carries the action plus the amount to resume with.
type Decision struct {
	Action      Action
	AmountCents int
}

// Controller owns the persist/resume lifecycle of a guest order intent.
type Controller struct {
	store Store
	now   func() time.Time
}

// NewController builds a controller over the given slot. A nil clock defaults
// to time.Now.
func NewController(store Store, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{store: store, now: now}
}

// Persist records the intent in the slot and returns the query values the
// caller must embed in the post-login return URL so both rails carry the same
// pair.
func (c *Controller) Persist(amountCents int) url.Values {
	it := params.OrderIntent{
		AmountCents: amountCents,
		CreatedAt:   c.now().UnixMilli(),
	}
	c.store.Write(Record{
		AmountCents: it.AmountCents,
		CreatedAt:   it.CreatedAt,
		ExpiresAt:   it.CreatedAt + params.ConfirmWindow.Milliseconds(),
	})
	return it.Values()
}

// Resume inspects the URL-carried pair against the persisted slot and decides
// what happens next. Both tiers require the slot to match the URL pair
// exactly: consuming an intent clears the slot, so replaying the same URL
// (refresh, back-navigation, a pasted link) yields None instead of a second
// resume. Every branch except AskConfirmation clears the slot before
// returning; the AskConfirmation slot survives until Confirm or Discard
// resolves it.
func (c *Controller) Resume(q url.Values) Decision {
	it, err := params.ParseOrderIntent(q)
	if err != nil {
		c.store.Clear()
		return Decision{Action: ActionNone}
	}

	rec, ok := c.store.Read()
	matches := ok && rec.AmountCents == it.AmountCents && rec.CreatedAt == it.CreatedAt

	switch params.Classify(c.now(), it.CreatedAt) {
	case params.Fresh:
		if matches {
			c.store.Clear()
			return Decision{Action: ActionAutoResume, AmountCents: it.AmountCents}
		}
	case params.StaleCacheable:
		if matches && c.now().UnixMilli() < rec.ExpiresAt {
			return Decision{Action: ActionAskConfirmation, AmountCents: it.AmountCents}
		}
	}

	c.store.Clear()
	return Decision{Action: ActionNone}
}

// Confirm resolves a pending AskConfirmation by handing the amount back for
// order creation. The slot is cleared either way.
func (c *Controller) Confirm(amountCents int) Decision {
	c.store.Clear()
	if amountCents != params.AmountBasic && amountCents != params.AmountPlus {
		return Decision{Action: ActionNone}
	}
	return Decision{Action: ActionAutoResume, AmountCents: amountCents}
}

// Discard resolves a pending AskConfirmation by dropping the intent.
func (c *Controller) Discard() {
	c.store.Clear()
}

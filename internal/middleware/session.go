package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"foroline.gr/foroline-web/internal/intent"
)

const sessionCookieName = "FOROLINE_WEB_SESSION"

// SessionData is the signed, cookie-backed visitor state. It doubles as the
// durable side of the guest-order rendezvous: the GuestOrder slot survives
// the OAuth redirect that wipes everything else.
type SessionData struct {
	ID         string         `json:"id"`
	UserID     string         `json:"uid,omitempty"`
	Identifier string         `json:"ident,omitempty"`
	Locale     string         `json:"locale,omitempty"`
	GuestOrder *intent.Record `json:"guestOrder,omitempty"`
	OrderFlash *OrderFlash    `json:"orderFlash,omitempty"`
	CSRFToken  string         `json:"csrf,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool `json:"-"`
}

var sessionSignKey []byte
var sessionSecure bool

func init() {
	// signing key: prefer env var; if absent, generate a process-ephemeral one (dev only)
	key := os.Getenv("FOROLINE_WEB_SESSION_SIGNING_KEY")
	if key == "" {
		sessionSignKey = make([]byte, 32)
		if _, err := rand.Read(sessionSignKey); err != nil {
			log.Printf("session: failed to generate signing key: %v", err)
			sessionSignKey = []byte("insecure-dev-key-please-set-FOROLINE_WEB_SESSION_SIGNING_KEY")
		}
		log.Printf("session: using ephemeral signing key (dev). Set FOROLINE_WEB_SESSION_SIGNING_KEY for production.")
	} else {
		sessionSignKey = []byte(key)
	}
	sessionSecure = strings.EqualFold(os.Getenv("FOROLINE_WEB_ENV"), "prod")
}

// ConfigureSessions installs the signing key and cookie security from loaded
// configuration, replacing the init defaults. Call once at startup, before
// the first request; an empty key keeps the current one.
func ConfigureSessions(signingKey string, secure bool) {
	if signingKey != "" {
		sessionSignKey = []byte(signingKey)
	}
	sessionSecure = secure
}

// Session loads or initializes a session and stores it in request context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := readSessionCookie(r)
		if sd.ID == "" {
			sd.ID = randID()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := contextWithSession(r, sd)
		rw := NewResponseRecorder(w)
		// persist the cookie just before the first body write
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				writeSessionCookie(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			writeSessionCookie(w, sd)
		}
	})
}

func contextWithSession(r *http.Request, s *SessionData) context.Context {
	ctx := context.WithValue(r.Context(), ctxKeySession, s)
	if s.UserID != "" {
		ctx = WithUser(ctx, &User{ID: s.UserID, Identifier: s.Identifier})
	}
	return ctx
}

// GetSession returns session data from context.
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request.
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// RegenerateID assigns a new session ID and CSRF token to prevent fixation after auth.
func (s *SessionData) RegenerateID() {
	s.ID = randID()
	s.CSRFToken = newCSRFToken()
	s.MarkDirty()
}

// OrderFlash is a one-shot checkout outcome carried across the redirect to
// the canonical order URL, so consumed intent parameters never reach the
// rendered page. Exactly one of CheckoutURL and NoticeKey is set.
type OrderFlash struct {
	CheckoutURL  string `json:"checkoutUrl,omitempty"`
	NoticeKey    string `json:"noticeKey,omitempty"`
	NoticeDetail string `json:"noticeDetail,omitempty"`
}

// PopOrderFlash returns and clears the pending one-shot outcome, if any.
func (s *SessionData) PopOrderFlash() *OrderFlash {
	if s.OrderFlash == nil {
		return nil
	}
	f := s.OrderFlash
	s.OrderFlash = nil
	s.MarkDirty()
	return f
}

// IntentSlot exposes the session's guest-order record as the single-item
// store the continuity controller operates on.
type IntentSlot struct {
	s *SessionData
}

// IntentStore returns the request session's guest-order slot.
func IntentStore(r *http.Request) IntentSlot {
	return IntentSlot{s: GetSession(r)}
}

func (sl IntentSlot) Read() (intent.Record, bool) {
	if sl.s == nil || sl.s.GuestOrder == nil {
		return intent.Record{}, false
	}
	return *sl.s.GuestOrder, true
}

func (sl IntentSlot) Write(rec intent.Record) {
	if sl.s == nil {
		return
	}
	sl.s.GuestOrder = &rec
	sl.s.MarkDirty()
}

func (sl IntentSlot) Clear() {
	if sl.s == nil || sl.s.GuestOrder == nil {
		return
	}
	sl.s.GuestOrder = nil
	sl.s.MarkDirty()
}

// readSessionCookie parses and verifies the session cookie.
func readSessionCookie(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return &SessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return &SessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return &SessionData{}, false
	}
	mac := hmac.New(sha256.New, sessionSignKey)
	mac.Write(payloadB)
	if !hmac.Equal(sigB, mac.Sum(nil)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	b, _ := json.Marshal(sd)
	payload := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, sessionSignKey)
	mac.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    payload + "." + sig,
		Path:     "/",
		HttpOnly: true,
		Secure:   sessionSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foroline.gr/foroline-web/internal/intent"
)

func doSession(t *testing.T, h http.HandlerFunc, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	Session(h).ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSessionInitializesAndPersists(t *testing.T) {
	var gotID string
	rec := doSession(t, func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		gotID = s.ID
		_, _ = w.Write([]byte("ok"))
	})
	require.NotEmpty(t, gotID)
	c := sessionCookie(t, rec)
	assert.True(t, c.HttpOnly)

	// the signed cookie round-trips
	rec2 := doSession(t, func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		assert.Equal(t, gotID, s.ID)
		_, _ = w.Write([]byte("ok"))
	}, c)
	_ = rec2
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	rec := doSession(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	c := sessionCookie(t, rec)
	c.Value = c.Value[:len(c.Value)-2] + "xx"

	doSession(t, func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		// tampered cookie yields a brand new session
		assert.NotEmpty(t, s.ID)
		_, _ = w.Write([]byte("ok"))
	}, c)
}

func TestIntentSlotRoundTripThroughCookie(t *testing.T) {
	rec := doSession(t, func(w http.ResponseWriter, r *http.Request) {
		IntentStore(r).Write(intent.Record{AmountCents: 1000, CreatedAt: 123, ExpiresAt: 456})
		_, _ = w.Write([]byte("ok"))
	})
	c := sessionCookie(t, rec)

	doSession(t, func(w http.ResponseWriter, r *http.Request) {
		rec, ok := IntentStore(r).Read()
		require.True(t, ok, "guest-order slot must survive the navigation boundary")
		assert.Equal(t, 1000, rec.AmountCents)
		assert.Equal(t, int64(123), rec.CreatedAt)
		assert.Equal(t, int64(456), rec.ExpiresAt)
		_, _ = w.Write([]byte("ok"))
	}, c)
}

func TestIntentSlotClearIsIdempotent(t *testing.T) {
	doSession(t, func(w http.ResponseWriter, r *http.Request) {
		st := IntentStore(r)
		st.Write(intent.Record{AmountCents: 500})
		st.Clear()
		st.Clear()
		_, ok := st.Read()
		assert.False(t, ok)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestConfigureSessionsReplacesSigningKey(t *testing.T) {
	oldKey := sessionSignKey
	oldSecure := sessionSecure
	t.Cleanup(func() { sessionSignKey = oldKey; sessionSecure = oldSecure })

	rec := doSession(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	c := sessionCookie(t, rec)

	ConfigureSessions("rotated-key-0123456789abcdef0123", true)

	// a cookie signed under the old key no longer verifies
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	sd, ok := readSessionCookie(req)
	assert.False(t, ok)
	assert.Empty(t, sd.ID)
}

func TestOrderFlashIsOneShot(t *testing.T) {
	rec := doSession(t, func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		s.OrderFlash = &OrderFlash{CheckoutURL: "https://checkout.example/ref"}
		s.MarkDirty()
		_, _ = w.Write([]byte("ok"))
	})
	c := sessionCookie(t, rec)

	rec2 := doSession(t, func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		f := s.PopOrderFlash()
		require.NotNil(t, f, "flash must survive the redirect")
		assert.Equal(t, "https://checkout.example/ref", f.CheckoutURL)
		assert.Nil(t, s.PopOrderFlash())
		_, _ = w.Write([]byte("ok"))
	}, c)

	doSession(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, GetSession(r).PopOrderFlash())
		_, _ = w.Write([]byte("ok"))
	}, sessionCookie(t, rec2))
}

func TestAuthDropsUserWithoutToken(t *testing.T) {
	// session says user-1, but no access_token cookie accompanies it
	rec := doSession(t, func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		s.UserID = "user-1"
		s.Identifier = "a@b.gr"
		s.MarkDirty()
		_, _ = w.Write([]byte("ok"))
	})
	c := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	out := httptest.NewRecorder()
	Session(Auth("access_token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, CurrentUser(r))
		assert.Empty(t, AuthToken(r))
		_, _ = w.Write([]byte("ok"))
	}))).ServeHTTP(out, req)
}

func TestAuthExposesUserAndToken(t *testing.T) {
	rec := doSession(t, func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		s.UserID = "user-1"
		s.Identifier = "a@b.gr"
		s.MarkDirty()
		_, _ = w.Write([]byte("ok"))
	})
	c := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "tok-1"})
	out := httptest.NewRecorder()
	Session(Auth("access_token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := CurrentUser(r)
		require.NotNil(t, u)
		assert.Equal(t, "user-1", u.ID)
		assert.Equal(t, "a@b.gr", u.Identifier)
		assert.Equal(t, "tok-1", AuthToken(r))
		_, _ = w.Write([]byte("ok"))
	}))).ServeHTTP(out, req)
}

func TestCSRFBlocksPostWithoutToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/order", nil)
	rec := httptest.NewRecorder()
	Session(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFAllowsHeaderToken(t *testing.T) {
	rec := doSession(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(CSRFToken(r)))
	})
	c := sessionCookie(t, rec)
	token := rec.Body.String()

	req := httptest.NewRequest(http.MethodPost, "/order", nil)
	req.AddCookie(c)
	req.Header.Set("X-CSRF-Token", token)
	out := httptest.NewRecorder()
	called := false
	Session(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, _ = w.Write([]byte("ok"))
	}))).ServeHTTP(out, req)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, out.Code)
}

package middleware

import (
	"net/http"
	"strings"
)

// Auth exposes the backend access token (set by the API on the shared
// domain after the OAuth round trip) to handlers, and drops the session's
// user when the token is gone so a logged-out visitor is never treated as
// authenticated on a stale session.
func Auth(tokenCookie string) func(http.Handler) http.Handler {
	if tokenCookie == "" {
		tokenCookie = "access_token"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(tokenCookie); err == nil {
				token = strings.TrimSpace(c.Value)
			}

			s := GetSession(r)
			if token == "" && s.UserID != "" {
				s.UserID = ""
				s.Identifier = ""
				s.MarkDirty()
			}

			ctx := WithToken(r.Context(), token)
			if token != "" && s.UserID != "" {
				ctx = WithUser(ctx, &User{ID: s.UserID, Identifier: s.Identifier})
			} else {
				// shadow any user attached when the session loaded
				ctx = WithUser(ctx, nil)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the authenticated user for the request, or nil.
func CurrentUser(r *http.Request) *User {
	return UserFromContext(r.Context())
}

// AuthToken returns the backend bearer token for the request, or "".
func AuthToken(r *http.Request) string {
	return TokenFromContext(r.Context())
}

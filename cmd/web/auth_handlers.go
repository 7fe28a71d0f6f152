package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	mw "foroline.gr/foroline-web/internal/middleware"
	"foroline.gr/foroline-web/internal/redirect"
)

// AuthCallbackHandler lands the browser after the OAuth round trip. The
// backend has already set the access-token cookie on the shared domain; we
// hydrate the session user from it and forward to the validated return
// target with its surviving query params.
func AuthCallbackHandler(w http.ResponseWriter, r *http.Request) {
	token := mw.AuthToken(r)
	if token == "" && appCfg.Backend.BaseURL == "" {
		// Standalone development: mint a dev token so the flow is walkable
		// without the backend or the provider.
		token = "dev-token"
		http.SetCookie(w, &http.Cookie{
			Name:     appCfg.Auth.TokenCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(24 * time.Hour),
		})
	}
	if token == "" {
		seeOther(w, r, "/")
		return
	}

	acct, err := apiClient.GetAccount(r.Context(), token)
	if err != nil {
		zlog.Warn("auth callback account lookup", zap.Error(err))
		seeOther(w, r, "/")
		return
	}

	sess := mw.GetSession(r)
	sess.UserID = acct.User.ID
	sess.Identifier = acct.User.Identifier
	sess.RegenerateID()

	target := "/"
	raw := r.URL.Query().Get("return_to")
	if raw == "" {
		raw = r.Referer()
	}
	if tgt, err := redirect.Validate(raw); err == nil {
		target = tgt.String()
	}
	zlog.Info("login completed",
		zap.String("user_id", acct.User.ID),
		zap.String("target", target),
	)
	seeOther(w, r, target)
}

// LogoutHandler drops the session user and expires the token cookie.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	sess.UserID = ""
	sess.Identifier = ""
	sess.GuestOrder = nil
	sess.OrderFlash = nil
	sess.RegenerateID()

	http.SetCookie(w, &http.Cookie{
		Name:     appCfg.Auth.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	seeOther(w, r, "/")
}

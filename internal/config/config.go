// Package config loads runtime configuration from the environment, organised
// by concern. A local .env file is honoured in development.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultCheckoutURL  = "https://demo.vivapayments.com/web/checkout"
	defaultLocale       = "el"
	defaultTemplatesDir = "templates"
	defaultPublicDir    = "public"
	defaultContentDir   = "content"
	defaultLocalesDir   = "locales"

	// Presentation-only delays before timed navigations; they exist so the
	// notice has a moment to render, not for correctness.
	defaultLoginRedirectDelay    = 2 * time.Second
	defaultCheckoutRedirectDelay = 1 * time.Second
	defaultHomeRedirectDelay     = 1 * time.Second
)

// Config captures all runtime configuration for the web frontend.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Payments PaymentsConfig
	Auth     AuthConfig
	Session  SessionConfig
	Content  ContentConfig
	DevMode  bool
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig points to the API service. An empty BaseURL switches the
// client into mock mode for standalone development.
type BackendConfig struct {
	BaseURL string
}

// PaymentsConfig configures the hosted checkout redirect.
type PaymentsConfig struct {
	CheckoutURL           string
	CheckoutRedirectDelay time.Duration
	HomeRedirectDelay     time.Duration
}

// AuthConfig configures the opaque OAuth redirect capability.
type AuthConfig struct {
	AuthorizeURL       string
	Provider           string
	TokenCookie        string
	LoginRedirectDelay time.Duration
}

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
}

// ContentConfig locates disk-based assets: templates, static files, markdown
// content and locale bundles.
type ContentConfig struct {
	TemplatesDir string
	PublicDir    string
	ContentDir   string
	LocalesDir   string
	Fallback     string
	Locales      []string
}

// Load assembles configuration from the environment. The .env file, when
// present, never overrides variables already set.
func Load() (Config, error) {
	_ = godotenv.Load(defaultEnvFile)

	cfg := Config{
		Server: ServerConfig{
			Addr:         ":" + envOr("FOROLINE_WEB_PORT", envOr("PORT", defaultPort)),
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimSpace(os.Getenv("FOROLINE_WEB_API_BASE_URL")),
		},
		Payments: PaymentsConfig{
			CheckoutURL:           envOr("FOROLINE_WEB_CHECKOUT_URL", defaultCheckoutURL),
			CheckoutRedirectDelay: defaultCheckoutRedirectDelay,
			HomeRedirectDelay:     defaultHomeRedirectDelay,
		},
		Auth: AuthConfig{
			AuthorizeURL:       strings.TrimSpace(os.Getenv("FOROLINE_WEB_OAUTH_AUTHORIZE_URL")),
			Provider:           envOr("FOROLINE_WEB_OAUTH_PROVIDER", "google"),
			TokenCookie:        envOr("FOROLINE_WEB_TOKEN_COOKIE", "access_token"),
			LoginRedirectDelay: defaultLoginRedirectDelay,
		},
		Session: SessionConfig{
			SigningKey: os.Getenv("FOROLINE_WEB_SESSION_SIGNING_KEY"),
			Secure:     strings.EqualFold(os.Getenv("FOROLINE_WEB_ENV"), "prod"),
		},
		Content: ContentConfig{
			TemplatesDir: envOr("FOROLINE_WEB_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:    envOr("FOROLINE_WEB_PUBLIC_DIR", defaultPublicDir),
			ContentDir:   envOr("FOROLINE_WEB_CONTENT_DIR", defaultContentDir),
			LocalesDir:   envOr("FOROLINE_WEB_LOCALES_DIR", defaultLocalesDir),
			Fallback:     defaultLocale,
			Locales:      []string{"el", "en"},
		},
		DevMode: os.Getenv("FOROLINE_WEB_DEV") != "" || os.Getenv("DEV") != "",
	}

	if !cfg.DevMode && cfg.Auth.AuthorizeURL == "" && cfg.Backend.BaseURL != "" {
		return cfg, fmt.Errorf("config: FOROLINE_WEB_OAUTH_AUTHORIZE_URL is required when an API base URL is set")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

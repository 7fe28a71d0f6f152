package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FOROLINE_WEB_PORT", "")
	t.Setenv("PORT", "")
	t.Setenv("FOROLINE_WEB_API_BASE_URL", "")
	t.Setenv("FOROLINE_WEB_CHECKOUT_URL", "")
	t.Setenv("FOROLINE_WEB_OAUTH_AUTHORIZE_URL", "")
	t.Setenv("FOROLINE_WEB_ENV", "")
	t.Setenv("FOROLINE_WEB_DEV", "")
	t.Setenv("DEV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "https://demo.vivapayments.com/web/checkout", cfg.Payments.CheckoutURL)
	assert.Equal(t, "el", cfg.Content.Fallback)
	assert.Equal(t, "access_token", cfg.Auth.TokenCookie)
	assert.False(t, cfg.Session.Secure)
}

func TestLoadProdRequiresAuthorizeURL(t *testing.T) {
	t.Setenv("FOROLINE_WEB_API_BASE_URL", "https://api.foroline.gr")
	t.Setenv("FOROLINE_WEB_OAUTH_AUTHORIZE_URL", "")
	t.Setenv("FOROLINE_WEB_DEV", "")
	t.Setenv("DEV", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadProdEnv(t *testing.T) {
	t.Setenv("FOROLINE_WEB_ENV", "prod")
	t.Setenv("FOROLINE_WEB_API_BASE_URL", "https://api.foroline.gr")
	t.Setenv("FOROLINE_WEB_OAUTH_AUTHORIZE_URL", "https://api.foroline.gr/auth/oauth/google/authorize")
	t.Setenv("FOROLINE_WEB_PORT", "9090")
	t.Setenv("FOROLINE_WEB_DEV", "")
	t.Setenv("DEV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, "https://api.foroline.gr", cfg.Backend.BaseURL)
}

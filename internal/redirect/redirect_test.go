package redirect

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAllowedPaths(t *testing.T) {
	for _, raw := range []string{"/order", "/order/success", "/order?amount=500&createdAt=1"} {
		tgt, err := Validate(raw)
		require.NoError(t, err, raw)
		assert.NotEmpty(t, tgt.Path)
	}
}

func TestValidateRejectsForeignTargets(t *testing.T) {
	cases := []string{
		"",
		"/",
		"/profile",
		"/order/../admin",
		"//evil.example/order",
		"https://evil.example/order",
		"http://localhost/order",
		"order",
		"javascript:alert(1)",
	}
	for _, raw := range cases {
		_, err := Validate(raw)
		assert.ErrorIs(t, err, ErrInvalidTarget, "raw %q", raw)
	}
}

func TestValidateFiltersUnknownParams(t *testing.T) {
	tgt, err := Validate("/order?amount=500&createdAt=123&utm_source=mail&hl=en")
	require.NoError(t, err)
	assert.Equal(t, "500", tgt.Query.Get("amount"))
	assert.Equal(t, "123", tgt.Query.Get("createdAt"))
	assert.Empty(t, tgt.Query.Get("utm_source"))
	assert.Empty(t, tgt.Query.Get("hl"))
}

func TestTargetString(t *testing.T) {
	tgt := Target{Path: "/order", Query: url.Values{"amount": {"500"}}}
	assert.Equal(t, "/order?amount=500", tgt.String())
	assert.Equal(t, "/order", Target{Path: "/order"}.String())
}

func TestFilterParamsKeepsPaymentCarrier(t *testing.T) {
	q := url.Values{
		"t":       {"tx"},
		"s":       {"code"},
		"eventId": {"1796"},
		"eci":     {"5"},
		"evil":    {"1"},
	}
	out := FilterParams(q)
	assert.Len(t, out, 4)
	assert.Empty(t, out.Get("evil"))
}

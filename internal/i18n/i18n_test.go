package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T) *Bundle {
	t.Helper()
	b, err := Load("../../locales", "el", []string{"el", "en"})
	require.NoError(t, err)
	return b
}

func TestResolveHonorsQValues(t *testing.T) {
	b := load(t)
	assert.Equal(t, "en", b.Resolve("el;q=0.8, en;q=0.9"))
	assert.Equal(t, "el", b.Resolve("el, en;q=0.5"))
	assert.Equal(t, "el", b.Resolve("fr, de"))
	assert.Equal(t, "en", b.Resolve("en-US, el;q=0.3"))
	assert.Equal(t, "el", b.Resolve(""))
}

func TestTFallsBack(t *testing.T) {
	b := load(t)
	assert.Equal(t, b.dict["el"]["brand.name"], b.T("el", "brand.name"))
	assert.Equal(t, "missing.key", b.T("en", "missing.key"))
}

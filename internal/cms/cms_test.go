package cms

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, dir, kind, lang, slug, data string) {
	t.Helper()
	path := filepath.Join(dir, kind, lang)
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, slug+".md"), []byte(data), 0o644))
}

func TestGetPageFrontMatter(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "legal", "el", "privacy-policy", `---
title: Πολιτική Απορρήτου
summary: Πώς χειριζόμαστε τα δεδομένα σας.
version: "2.1"
effective_date: 2026-01-01
updated_at: 2026-02-15
---
## Συλλογή δεδομένων

Κείμενο πολιτικής.
`)

	store := NewStore(dir, "el")
	page, err := store.GetPage("legal", "privacy-policy", "el")
	require.NoError(t, err)
	assert.Equal(t, "Πολιτική Απορρήτου", page.Title)
	assert.Equal(t, "2.1", page.Version)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), page.EffectiveDate)
	assert.Contains(t, page.Body, "Συλλογή δεδομένων")
}

func TestGetPageStripsByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "legal", "el", "terms", "\uFEFF---\ntitle: Όροι Χρήσης\n---\nΚείμενο.\n")

	store := NewStore(dir, "el")
	page, err := store.GetPage("legal", "terms", "el")
	require.NoError(t, err)
	assert.Equal(t, "Όροι Χρήσης", page.Title)
}

func TestGetPageFallsBackToDefaultLanguage(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "legal", "el", "terms", "---\ntitle: Όροι Χρήσης\n---\nΚείμενο.\n")

	store := NewStore(dir, "el")
	page, err := store.GetPage("legal", "terms", "en")
	require.NoError(t, err)
	assert.Equal(t, "Όροι Χρήσης", page.Title)
}

func TestGetPageRejectsTraversal(t *testing.T) {
	store := NewStore(t.TempDir(), "el")
	_, err := store.GetPage("legal", "../secrets", "el")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetPage("legal", "a/b", "el")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPageMissing(t *testing.T) {
	store := NewStore(t.TempDir(), "el")
	_, err := store.GetPage("legal", "nope", "el")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPagesOrdering(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "guides", "el", "second", "---\ntitle: Δεύτερος\norder: 2\n---\nB\n")
	writePage(t, dir, "guides", "el", "first", "---\ntitle: Πρώτος\norder: 1\n---\nA\n")

	store := NewStore(dir, "el")
	pages, err := store.ListPages("guides", "el")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "first", pages[0].Slug)
	assert.Equal(t, "second", pages[1].Slug)
}

func TestGetPageCaches(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "pages", "el", "about", "---\ntitle: Σχετικά\n---\nΑρχικό.\n")

	store := NewStore(dir, "el")
	first, err := store.GetPage("pages", "about", "el")
	require.NoError(t, err)

	writePage(t, dir, "pages", "el", "about", "---\ntitle: Αλλαγμένο\n---\nΝέο.\n")
	second, err := store.GetPage("pages", "about", "el")
	require.NoError(t, err)
	assert.Equal(t, first.Title, second.Title)

	store.SetCacheDuration(time.Nanosecond)
	time.Sleep(time.Millisecond)
	third, err := store.GetPage("pages", "about", "el")
	require.NoError(t, err)
	assert.Equal(t, "Αλλαγμένο", third.Title)
}

func TestRenderSanitizesAndExtractsTOC(t *testing.T) {
	out, err := Render(`## Εισαγωγή

Κείμενο με <script>alert(1)</script> μέσα.

### Λεπτομέρειες

Κι άλλο κείμενο.
`)
	require.NoError(t, err)
	assert.NotContains(t, out.HTML, "<script>")
	assert.Contains(t, out.HTML, "<h2")

	require.Len(t, out.TOC, 2)
	assert.Equal(t, 2, out.TOC[0].Level)
	assert.Equal(t, "Εισαγωγή", out.TOC[0].Title)
	assert.Equal(t, 3, out.TOC[1].Level)
	assert.NotEmpty(t, out.TOC[0].ID)
}

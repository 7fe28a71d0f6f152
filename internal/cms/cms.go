// Package cms serves localized static content (legal pages, guides,
// informational pages) from local markdown files with YAML front matter.
package cms

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a content resource cannot be located.
var ErrNotFound = errors.New("cms: not found")

// Page represents a localized static page sourced from local markdown.
type Page struct {
	Kind          string
	Slug          string
	Lang          string
	Title         string
	Summary       string
	Body          string // raw markdown
	EffectiveDate time.Time
	UpdatedAt     time.Time
	Version       string
	Order         int
	SEO           PageSEO
	Banner        *Banner
}

// PageSEO holds optional metadata overrides for static pages.
type PageSEO struct {
	Title       string
	Description string
}

// Banner models an optional alert displayed above the body.
type Banner struct {
	Variant string
	Title   string
	Message string
}

type frontMatter struct {
	Title         string  `yaml:"title"`
	Summary       string  `yaml:"summary"`
	Lang          string  `yaml:"lang"`
	EffectiveDate string  `yaml:"effective_date"`
	UpdatedAt     string  `yaml:"updated_at"`
	Version       string  `yaml:"version"`
	Order         int     `yaml:"order"`
	SEO           fmSEO   `yaml:"seo"`
	Banner        *fmBann `yaml:"banner"`
}

type fmSEO struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type fmBann struct {
	Variant string `yaml:"variant"`
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

const defaultContentDir = "content"

// Store reads pages from a content directory laid out as
// <dir>/<kind>/<lang>/<slug>.md.
type Store struct {
	dir      string
	fallback string

	cacheTTL time.Duration
	mu       sync.RWMutex
	cache    map[string]cacheEntry
}

type cacheEntry struct {
	page    Page
	expires time.Time
}

// NewStore constructs a Store rooted at dir. fallbackLang is consulted
// when a page does not exist in the requested language.
func NewStore(dir, fallbackLang string) *Store {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultContentDir
	}
	if fallbackLang == "" {
		fallbackLang = "el"
	}
	return &Store{
		dir:      dir,
		fallback: fallbackLang,
		cacheTTL: 5 * time.Minute,
		cache:    map[string]cacheEntry{},
	}
}

// SetCacheDuration overrides the in-memory cache duration (primarily for tests).
func (s *Store) SetCacheDuration(d time.Duration) {
	if d <= 0 {
		d = time.Minute
	}
	s.mu.Lock()
	s.cacheTTL = d
	s.cache = map[string]cacheEntry{}
	s.mu.Unlock()
}

// GetPage fetches a localized static page, trying the requested language
// first and the fallback language second.
func (s *Store) GetPage(kind, slug, lang string) (Page, error) {
	kind = strings.TrimSpace(strings.ToLower(kind))
	if kind == "" {
		kind = "pages"
	}
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	lang = normalizeLang(lang, s.fallback)

	cacheKey := strings.Join([]string{kind, lang, slug}, "|")
	if page, ok := s.cached(cacheKey); ok {
		return page, nil
	}

	priority := []string{lang}
	if lang != s.fallback {
		priority = append(priority, s.fallback)
	}
	for _, candidate := range priority {
		page, err := s.readMarkdown(kind, slug, candidate)
		if err == nil {
			s.store(cacheKey, page)
			return page, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return Page{}, err
	}
	return Page{}, ErrNotFound
}

// ListPages returns all pages of a kind for a language, sorted by the
// front matter order field and then title. Pages present only in the
// fallback language are included.
func (s *Store) ListPages(kind, lang string) ([]Page, error) {
	kind = strings.TrimSpace(strings.ToLower(kind))
	lang = normalizeLang(lang, s.fallback)

	seen := map[string]bool{}
	var pages []Page
	langs := []string{lang}
	if lang != s.fallback {
		langs = append(langs, s.fallback)
	}
	for _, candidate := range langs {
		slugs, err := s.listSlugs(kind, candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for _, slug := range slugs {
			if seen[slug] {
				continue
			}
			page, err := s.readMarkdown(kind, slug, candidate)
			if err != nil {
				continue
			}
			seen[slug] = true
			pages = append(pages, page)
		}
	}
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Order != pages[j].Order {
			return pages[i].Order < pages[j].Order
		}
		return pages[i].Title < pages[j].Title
	})
	return pages, nil
}

func (s *Store) listSlugs(kind, lang string) ([]string, error) {
	dir := filepath.Join(s.dir, kind, lang)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var slugs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".md") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(name, ".md"))
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (s *Store) readMarkdown(kind, slug, lang string) (Page, error) {
	file := filepath.Join(s.dir, kind, lang, slug+".md")
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, err
	}
	info, statErr := os.Stat(file)
	if statErr != nil {
		info = nil
	}
	fm, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}
	page := Page{
		Kind:    kind,
		Slug:    slug,
		Lang:    firstNonEmpty(strings.TrimSpace(front.Lang), lang),
		Title:   strings.TrimSpace(front.Title),
		Summary: strings.TrimSpace(front.Summary),
		Body:    body,
		Version: strings.TrimSpace(front.Version),
		Order:   front.Order,
		SEO: PageSEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
		},
	}
	if front.Banner != nil {
		page.Banner = &Banner{
			Variant: strings.TrimSpace(front.Banner.Variant),
			Title:   strings.TrimSpace(front.Banner.Title),
			Message: strings.TrimSpace(front.Banner.Message),
		}
	}
	page.EffectiveDate = parseContentDate(front.EffectiveDate)
	page.UpdatedAt = parseContentDate(front.UpdatedAt)
	if page.UpdatedAt.IsZero() && info != nil {
		page.UpdatedAt = info.ModTime()
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	return page, nil
}

func (s *Store) cached(key string) (Page, bool) {
	now := time.Now()
	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if !ok || now.After(entry.expires) {
		return Page{}, false
	}
	return clonePage(entry.page), true
}

func (s *Store) store(key string, page Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{
		page:    clonePage(page),
		expires: time.Now().Add(s.cacheTTL),
	}
}

func clonePage(src Page) Page {
	cp := src
	if src.Banner != nil {
		b := *src.Banner
		cp.Banner = &b
	}
	return cp
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\uFEFF")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 {
		return "", ""
	}
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006/01/02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return ""
	}
	if strings.Contains(slug, "..") {
		return ""
	}
	if strings.ContainsRune(slug, os.PathSeparator) || strings.ContainsRune(slug, '/') {
		return ""
	}
	return slug
}

func normalizeLang(lang, fallback string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if idx := strings.IndexAny(lang, "-_"); idx > 0 {
		lang = lang[:idx]
	}
	switch lang {
	case "el", "en":
		return lang
	default:
		return fallback
	}
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		if runes[0] >= 'a' && runes[0] <= 'z' {
			runes[0] -= 'a' - 'A'
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

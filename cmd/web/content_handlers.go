package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"foroline.gr/foroline-web/internal/cms"
	"foroline.gr/foroline-web/internal/handlers"
	mw "foroline.gr/foroline-web/internal/middleware"
)

// ContentView is the rendered markdown page view model.
type ContentView struct {
	Title         string
	Summary       string
	Body          template.HTML
	TOC           []cms.TOCEntry
	Version       string
	EffectiveDate string
	UpdatedAt     string
	Banner        *cms.Banner
}

// HomeHandler renders the landing page.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	home := handlers.BuildHomeData(mw.Lang(r))
	vm := basePageData(r, home.Title)
	vm.SEO = home.SEO
	renderPage(w, r, "home", vm)
}

// GuideHandler renders the product usage guide.
func GuideHandler(w http.ResponseWriter, r *http.Request) {
	serveContent(w, r, "pages", "guide", "guide")
}

// LegalPageHandler renders a legal document (privacy policy, terms) by slug.
func LegalPageHandler(w http.ResponseWriter, r *http.Request) {
	serveContent(w, r, "legal", chi.URLParam(r, "slug"), "content")
}

// ContactHandler renders the contact page.
func ContactHandler(w http.ResponseWriter, r *http.Request) {
	serveContent(w, r, "pages", "contact", "content")
}

// NotFoundHandler renders the localized 404 page.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	vm := basePageData(r, i18nOrDefault(lang, "error.notfound.title", "Η σελίδα δεν βρέθηκε"))
	vm.SEO.Robots = "noindex"
	w.WriteHeader(http.StatusNotFound)
	renderPage(w, r, "not_found", vm)
}

func serveContent(w http.ResponseWriter, r *http.Request, kind, slug, tmpl string) {
	lang := mw.Lang(r)
	page, err := contentStore.GetPage(kind, slug, lang)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			NotFoundHandler(w, r)
			return
		}
		zlog.Error("load content", zap.String("kind", kind), zap.String("slug", slug), zap.Error(err))
		http.Error(w, "content unavailable", http.StatusInternalServerError)
		return
	}

	rendered, err := cms.Render(page.Body)
	if err != nil {
		zlog.Error("render content", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "content unavailable", http.StatusInternalServerError)
		return
	}

	etag := contentETag(page)
	w.Header().Set("Cache-Control", "public, max-age=600")
	w.Header().Set("ETag", etag)
	if !page.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", page.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	vm := basePageData(r, page.Title)
	vm.SEO.Title = page.Title + " | " + i18nOrDefault(lang, "brand.name", "Foroline")
	vm.SEO.Description = page.Summary
	if page.SEO.Title != "" {
		vm.SEO.Title = page.SEO.Title
	}
	if page.SEO.Description != "" {
		vm.SEO.Description = page.SEO.Description
	}
	view := ContentView{
		Title:   page.Title,
		Summary: page.Summary,
		Body:    template.HTML(rendered.HTML),
		TOC:     rendered.TOC,
		Version: page.Version,
		Banner:  page.Banner,
	}
	if !page.EffectiveDate.IsZero() {
		view.EffectiveDate = page.EffectiveDate.Format("02/01/2006")
	}
	if !page.UpdatedAt.IsZero() {
		view.UpdatedAt = page.UpdatedAt.Format("02/01/2006")
	}
	if tmpl == "guide" {
		vm.Guide = view
	} else {
		vm.Content = view
	}
	renderPage(w, r, tmpl, vm)
}

func contentETag(page cms.Page) string {
	h := sha256.Sum256([]byte(page.Lang + "|" + page.Version + "|" + page.Body))
	return fmt.Sprintf("%q", hex.EncodeToString(h[:8]))
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "*" || trimmed == etag {
			return true
		}
	}
	return false
}

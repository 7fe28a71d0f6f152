package main

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"foroline.gr/foroline-web/internal/format"
	"foroline.gr/foroline-web/internal/handlers"
	mw "foroline.gr/foroline-web/internal/middleware"
	"foroline.gr/foroline-web/internal/nav"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	devMode      bool
	tmplCache    *template.Template
)

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			return i18nOrDefault(lang, key, key)
		},
		"euro":     format.FmtEuro,
		"tokens":   format.FmtTokens,
		"fmtDate":  format.FmtDate,
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	}
	// Recursively discover and parse all .tmpl files. ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

// renderPage executes a named page template. In dev mode templates are
// reparsed on each request.
func renderPage(w http.ResponseWriter, r *http.Request, name string, vm handlers.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	t := tmplCache
	if devMode {
		tc, err := parseTemplates()
		if err != nil {
			zlog.Error("template parse", zap.Error(err))
			http.Error(w, "template parse error", http.StatusInternalServerError)
			return
		}
		t = tc
	}
	if t == nil {
		http.Error(w, "templates not initialized", http.StatusInternalServerError)
		return
	}
	if err := t.ExecuteTemplate(w, name, vm); err != nil {
		zlog.Error("template exec", zap.String("template", name), zap.Error(err))
	}
}

// basePageData fills the layout fields every page shares.
func basePageData(r *http.Request, title string) handlers.PageData {
	lang := mw.Lang(r)
	vm := handlers.PageData{
		Title:     title,
		Lang:      lang,
		Path:      r.URL.Path,
		Nav:       nav.Build(r.URL.Path),
		Analytics: handlers.LoadAnalyticsFromEnv(),
		CSRFToken: mw.CSRFToken(r),
	}
	if u := mw.CurrentUser(r); u != nil {
		vm.LoggedIn = true
		vm.Identifier = u.Identifier
	}
	return vm
}

func i18nOrDefault(lang, key, def string) string {
	if i18nBundle == nil {
		return def
	}
	if v := i18nBundle.T(lang, key); v != "" && v != key {
		return v
	}
	return def
}

func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

package handlers

import (
	"foroline.gr/foroline-web/internal/nav"
	"foroline.gr/foroline-web/internal/seo"
)

// PageData is a generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       seo.Meta
	Analytics Analytics
	CSRFToken string

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	LoggedIn   bool
	Identifier string

	// Optional per-page view model payloads
	Order    any
	Outcome  any
	Redirect any
	Profile  any
	Guide    any
	Content  any
	Contact  any
	Error    any
}

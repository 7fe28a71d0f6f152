// Package nav defines the primary navigation and breadcrumb view models.
package nav

import "strings"

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/order"
	LabelKey string // i18n key, e.g. "nav.order"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/order", LabelKey: "nav.order"},
	{Path: "/guide", LabelKey: "nav.guide"},
	{Path: "/profile", LabelKey: "nav.profile"},
	{Path: "/contact", LabelKey: "nav.contact"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

// Crumb is a breadcrumb entry.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

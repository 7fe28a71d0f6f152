package handlers

import "foroline.gr/foroline-web/internal/seo"

// BuildHomeData constructs the default view model for the landing page.
func BuildHomeData(lang string) PageData {
	title := "Foroline"
	desc := "Φορολογικός βοηθός με τεχνητή νοημοσύνη για ελεύθερους επαγγελματίες"
	if lang == "en" {
		desc = "AI tax assistant for Greek freelancers and small businesses"
	}
	return PageData{
		Title: title,
		Lang:  lang,
		SEO:   seo.ForPage(title, desc, "/"),
		Path:  "/",
	}
}

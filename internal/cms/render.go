package cms

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TOCEntry is a table-of-contents item extracted from rendered headings.
type TOCEntry struct {
	ID    string
	Title string
	Level int // 2 or 3
}

// Rendered is a sanitized HTML document with its table of contents.
type Rendered struct {
	HTML string
	TOC  []TOCEntry
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

var contentPolicy = newContentPolicy()

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "table")
	policy.AllowAttrs("id").OnElements("h2", "h3", "h4")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Render converts markdown to sanitized HTML and extracts a table of
// contents from h2/h3 headings.
func Render(body string) (Rendered, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return Rendered{}, fmt.Errorf("cms: render markdown: %w", err)
	}
	safe := contentPolicy.SanitizeBytes(buf.Bytes())
	toc, err := extractTOC(safe)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{HTML: string(safe), TOC: toc}, nil
}

func extractTOC(doc []byte) ([]TOCEntry, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("cms: parse rendered html: %w", err)
	}
	var toc []TOCEntry
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.H2 || n.DataAtom == atom.H3) {
			level := 2
			if n.DataAtom == atom.H3 {
				level = 3
			}
			entry := TOCEntry{Level: level, Title: strings.TrimSpace(textContent(n))}
			for _, attr := range n.Attr {
				if attr.Key == "id" {
					entry.ID = attr.Val
				}
			}
			if entry.ID != "" && entry.Title != "" {
				toc = append(toc, entry)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return toc, nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

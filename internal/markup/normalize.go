// Package markup turns one raw documentation page into a normalized record,
// tolerating malformed or partial markup. Every extraction sub-step is
// guarded independently, so a failure in one degrades that field to its
// empty default instead of discarding the whole record.
package markup

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/teklab/tekladoc/internal/model"
	"github.com/teklab/tekladoc/internal/toc"
)

// Normalize converts a page's raw markup plus the TOC entry that pointed to
// it into an ApiRecord. It returns nil for empty or unparseable content;
// it never panics past this boundary.
func Normalize(html []byte, entry model.TocEntry) *model.ApiRecord {
	if len(bytes.TrimSpace(html)) == 0 {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		slog.Warn("unparseable page", "page", entry.TargetPage, "error", err)
		return nil
	}

	title := pageTitle(doc)
	if title == "" {
		title = entry.DisplayName
	}
	if title == "" {
		return nil
	}

	namespace := pageNamespace(doc, title)
	description := CleanText(metaContent(doc, "Description"))
	summary := pageSummary(doc, description)

	// Title-derived classification wins over the TOC guess when the page
	// gives stronger evidence; the TOC entry keeps its own kind for
	// navigation rendering.
	kind := toc.Classify(title)
	if kind == model.KindOther && entry.Kind != "" {
		kind = entry.Kind
	}

	normalized := namespace
	if normalized == "" {
		normalized = entry.Namespace
	}

	return &model.ApiRecord{
		Title:               title,
		Description:         description,
		Summary:             summary,
		Namespace:           namespace,
		NormalizedNamespace: normalized,
		Kind:                kind,
		Depth:               entry.Depth,
		SourcePage:          entry.TargetPage,
	}
}

func pageTitle(doc *goquery.Document) string {
	return CleanText(doc.Find("title").First().Text())
}

// pageNamespace resolves the namespace through the documented chain:
// explicit "Namespace:" label link, page container metadata, then title
// derivation, then empty.
func pageNamespace(doc *goquery.Document, title string) string {
	if ns := namespaceLabel(doc); ns != "" {
		return ns
	}
	if ns := strings.TrimSpace(metaContent(doc, "container")); ns != "" {
		return ns
	}
	return toc.DeriveNamespace(title)
}

// namespaceLabel finds a "Namespace:" label and returns its adjacent link
// text, if present.
func namespaceLabel(doc *goquery.Document) string {
	var ns string
	doc.Find("strong, b, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.HasPrefix(strings.TrimSpace(sel.Text()), "Namespace:") {
			return true
		}
		link := sel.NextFiltered("a")
		if link.Length() == 0 {
			link = sel.Parent().Find("a").First()
		}
		ns = strings.TrimSpace(link.Text())
		return ns == ""
	})
	return ns
}

// pageSummary prefers the explicit summary block, falling back to the
// description metadata, then empty.
func pageSummary(doc *goquery.Document, description string) string {
	if s := CleanText(doc.Find(".summary").First().Text()); s != "" {
		return s
	}
	if s := CleanText(doc.Find("div.introduction").First().Text()); s != "" {
		return s
	}
	return description
}

func metaContent(doc *goquery.Document, name string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		n, _ := sel.Attr("name")
		if !strings.EqualFold(n, name) {
			return true
		}
		content, _ = sel.Attr("content")
		return false
	})
	return content
}

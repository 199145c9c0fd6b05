// Package toc parses the help archive's hierarchical navigation document
// into a flat, ordered list of entries and classifies each entry from its
// display name alone.
package toc

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/teklab/tekladoc/internal/model"
)

// RootToken is the product root namespace token. Dotted identifier runs
// beginning with it are treated as namespace candidates.
const RootToken = "Tekla"

// maxNamespaceSegments caps derived namespaces. Deeper dotted segments name
// a member, not a namespace.
const maxNamespaceSegments = 3

// Parse reads an HHC-style sitemap document and returns its entries in
// document order. Order is significant for navigation display and is not
// assumed to be alphabetical.
func Parse(r io.Reader) ([]model.TocEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing navigation document: %w", err)
	}

	var entries []model.TocEntry

	objects := doc.Find(`object[type="text/sitemap"]`)
	if objects.Length() > 0 {
		objects.Each(func(_ int, sel *goquery.Selection) {
			name, target := sitemapParams(sel)
			if name == "" {
				return
			}
			entries = append(entries, newEntry(name, target, depthOf(sel)))
		})
		slog.Debug("parsed navigation document", "entries", len(entries), "format", "sitemap")
		return entries, nil
	}

	// Some extractions rewrite the sitemap into plain nested lists.
	doc.Find("li > a").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Text())
		if name == "" {
			return
		}
		target, _ := sel.Attr("href")
		entries = append(entries, newEntry(name, target, depthOf(sel)))
	})
	slog.Debug("parsed navigation document", "entries", len(entries), "format", "anchors")
	return entries, nil
}

func newEntry(name, target string, depth int) model.TocEntry {
	return model.TocEntry{
		DisplayName: name,
		TargetPage:  target,
		Depth:       depth,
		Kind:        Classify(name),
		Namespace:   DeriveNamespace(name),
	}
}

func sitemapParams(sel *goquery.Selection) (name, target string) {
	sel.Find("param").Each(func(_ int, p *goquery.Selection) {
		pname, _ := p.Attr("name")
		value, _ := p.Attr("value")
		switch strings.ToLower(pname) {
		case "name":
			name = strings.TrimSpace(value)
		case "local":
			target = strings.TrimSpace(value)
		}
	})
	return name, target
}

// depthOf counts the list containers strictly enclosing the entry, scanning
// upward to the document root. The outermost list is the tree root, so an
// entry directly under it has depth zero.
func depthOf(sel *goquery.Selection) int {
	n := sel.ParentsFiltered("ul").Length()
	if n > 0 {
		return n - 1
	}
	return 0
}

// suffixWord reports whether name contains w as a whole word. Matching is
// case-sensitive on the literal word.
func suffixWord(name, w string) bool {
	return strings.Contains(name+" ", " "+w+" ")
}

// Classify derives the entry kind from its display name. Rules are applied
// in precedence order, most specific first, so a name matching several
// patterns resolves deterministically.
func Classify(name string) model.Kind {
	switch {
	case name == RootToken, strings.Contains(name, "Namespace"):
		return model.KindNamespace
	case suffixWord(name, "Class"):
		return model.KindClass
	case suffixWord(name, "Interface"):
		return model.KindInterface
	case suffixWord(name, "Enumeration"), suffixWord(name, "Enum"):
		return model.KindEnum
	case suffixWord(name, "Properties"), suffixWord(name, "Members"):
		return model.KindPropertiesCollection
	case suffixWord(name, "Methods"):
		return model.KindMethodsCollection
	case suffixWord(name, "Property"):
		return model.KindProperty
	case suffixWord(name, "Method"), suffixWord(name, "Constructor"):
		return model.KindMethod
	case suffixWord(name, "Event"):
		return model.KindEvent
	case suffixWord(name, "Field"):
		return model.KindField
	case suffixWord(name, "Delegate"):
		return model.KindDelegate
	default:
		return model.KindOther
	}
}

// DeriveNamespace extracts a namespace from a display name like
// "Tekla.Structures.Model.Beam Class". It takes the first run of
// dot-separated segments beginning with the root token, capped at three
// segments when more are present.
func DeriveNamespace(name string) string {
	for _, tok := range strings.Fields(name) {
		if tok != RootToken && !strings.HasPrefix(tok, RootToken+".") {
			continue
		}
		segments := strings.Split(strings.Trim(tok, "."), ".")
		if len(segments) > maxNamespaceSegments {
			segments = segments[:maxNamespaceSegments]
		}
		return strings.Join(segments, ".")
	}
	return ""
}

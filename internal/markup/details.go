package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/teklab/tekladoc/internal/model"
)

// inheritedMarker separates a member's own description from its
// inherited-from attribution in generated member tables.
const inheritedMarker = "(Inherited from "

// ExtractDetails performs the deep parse of a class page. Each field is
// extracted independently and defaults to empty when its section is absent
// or malformed; the returned struct is always complete.
func ExtractDetails(html []byte) model.DetailedInfo {
	var info model.DetailedInfo

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return info
	}

	info.SyntaxText = extractSyntax(doc)
	info.InheritanceChain = extractInheritance(doc)
	info.Constructors = memberTable(doc, "constructors", "constructorTableSection")
	info.Properties = memberTable(doc, "properties", "propertyTableSection")
	info.Methods = memberTable(doc, "methods", "methodTableSection")
	info.Examples = extractExamples(doc)
	return info
}

func extractSyntax(doc *goquery.Document) string {
	sec := section(doc, "syntax", "syntaxSection")
	if sec == nil {
		return ""
	}
	code := sec.Find("pre").First()
	if code.Length() == 0 {
		code = sec.Find("code").First()
	}
	if code.Length() == 0 {
		return ""
	}
	// Keep line structure inside the signature block, drop script artifacts.
	text := code.Text()
	for _, p := range artifactPatterns {
		text = p.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// extractInheritance returns ancestor names in root-to-self order as listed
// on the page, excluding the universal root object type.
func extractInheritance(doc *goquery.Document) []string {
	sec := section(doc, "inheritance", "inheritanceSection", "exampleInheritance")
	if sec == nil {
		return nil
	}
	var chain []string
	sec.Find("a").Each(func(_ int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Text())
		if name == "" || name == "Object" || strings.HasSuffix(name, ".Object") {
			return
		}
		chain = append(chain, name)
	})
	return chain
}

// memberTable reads the table under the named section. Name comes from the
// second column's link text and description from the third column, split on
// the inherited-from marker.
func memberTable(doc *goquery.Document, keys ...string) []model.MemberInfo {
	sec := section(doc, keys...)
	if sec == nil {
		return nil
	}
	table := sec.Find("table").First()
	if table.Length() == 0 {
		table = sec.NextAllFiltered("table").First()
	}
	if table.Length() == 0 {
		return nil
	}

	var members []model.MemberInfo
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		name := strings.TrimSpace(cells.Eq(1).Find("a").First().Text())
		if name == "" {
			name = CleanText(cells.Eq(1).Text())
		}
		if name == "" {
			return
		}
		var desc string
		if cells.Length() >= 3 {
			desc = CleanText(cells.Eq(2).Text())
		}
		own, from := splitInherited(desc)
		members = append(members, model.MemberInfo{
			Name:          name,
			Description:   own,
			Inherited:     from != "",
			InheritedFrom: from,
		})
	})
	return members
}

// splitInherited separates "Does a thing. (Inherited from ModelObject.)"
// into the own description and the inherited-from type name.
func splitInherited(desc string) (own, from string) {
	idx := strings.Index(desc, inheritedMarker)
	if idx < 0 {
		return desc, ""
	}
	own = strings.TrimSpace(desc[:idx])
	rest := desc[idx+len(inheritedMarker):]
	if end := strings.Index(rest, ")"); end >= 0 {
		rest = rest[:end]
	}
	from = strings.TrimSuffix(strings.TrimSpace(rest), ".")
	return own, from
}

func extractExamples(doc *goquery.Document) []string {
	sec := section(doc, "examples", "exampleSection", "codeExampleSection")
	if sec == nil {
		return nil
	}
	var examples []string
	sec.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		code := strings.TrimSpace(pre.Text())
		if code != "" {
			examples = append(examples, code)
		}
	})
	return examples
}

// section locates a named page section by id, class, or named anchor, in
// that order. Returns nil when no key matches.
func section(doc *goquery.Document, keys ...string) *goquery.Selection {
	for _, k := range keys {
		if sec := doc.Find("#" + k).First(); sec.Length() > 0 {
			return sec
		}
		if sec := doc.Find("." + k).First(); sec.Length() > 0 {
			return sec
		}
		if anchor := doc.Find(fmt.Sprintf("a[name=%q]", k)).First(); anchor.Length() > 0 {
			return anchor.Parent()
		}
	}
	return nil
}

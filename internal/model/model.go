// Package model holds the shared data shapes for the tekladoc pipeline:
// TOC entries produced by the walker, normalized API records, class-level
// detail breakdowns, code examples and the search projection.
package model

// Kind categorizes a documentation record or TOC entry.
type Kind string

const (
	KindNamespace            Kind = "namespace"
	KindClass                Kind = "class"
	KindInterface            Kind = "interface"
	KindEnum                 Kind = "enum"
	KindMethod               Kind = "method"
	KindProperty             Kind = "property"
	KindEvent                Kind = "event"
	KindField                Kind = "field"
	KindDelegate             Kind = "delegate"
	KindPropertiesCollection Kind = "properties-collection"
	KindMethodsCollection    Kind = "methods-collection"
	KindOther                Kind = "other"
)

// KindAll is the filter value that disables kind filtering on queries.
const KindAll = "all"

// Kinds lists every valid kind, in partition-file order.
var Kinds = []Kind{
	KindNamespace, KindClass, KindInterface, KindEnum,
	KindMethod, KindProperty, KindEvent, KindField, KindDelegate,
	KindPropertiesCollection, KindMethodsCollection, KindOther,
}

// TocEntry is one line of the navigation tree. Entries are created once
// during the TOC parse and immutable afterwards; document order is
// significant and preserved.
type TocEntry struct {
	DisplayName string `json:"display_name"`
	TargetPage  string `json:"target_page,omitempty"`
	Depth       int    `json:"depth"`
	Kind        Kind   `json:"kind"`
	Namespace   string `json:"namespace,omitempty"`
}

// ApiRecord is one normalized documentation entry. Title is always
// non-empty (falls back to the TOC display name). An empty Namespace means
// "namespace unknown", not an error. DetailedInfo is attached lazily on the
// first detail-level lookup and is nil until then.
type ApiRecord struct {
	Title               string        `json:"title"`
	Description         string        `json:"description,omitempty"`
	Summary             string        `json:"summary,omitempty"`
	Namespace           string        `json:"namespace,omitempty"`
	NormalizedNamespace string        `json:"normalized_namespace,omitempty"`
	Kind                Kind          `json:"kind"`
	Depth               int           `json:"depth"`
	SourcePage          string        `json:"source_page,omitempty"`
	DetailedInfo        *DetailedInfo `json:"detailed_info,omitempty"`
}

// DetailedInfo is the class-level deep breakdown extracted on demand from a
// source page. Every list defaults to empty rather than absent; a missing
// section in the page is not an error.
type DetailedInfo struct {
	SyntaxText       string       `json:"syntax_text,omitempty"`
	InheritanceChain []string     `json:"inheritance_chain,omitempty"`
	Constructors     []MemberInfo `json:"constructors,omitempty"`
	Properties       []MemberInfo `json:"properties,omitempty"`
	Methods          []MemberInfo `json:"methods,omitempty"`
	Examples         []string     `json:"examples,omitempty"`
}

// MemberInfo describes one constructor, property or method row.
type MemberInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Inherited     bool   `json:"inherited,omitempty"`
	InheritedFrom string `json:"inherited_from,omitempty"`
}

// CodeExample is one sample program from the examples corpus. ApiElements
// holds deduplicated API symbol names referenced by the example, used for
// reverse lookup.
type CodeExample struct {
	Name         string        `json:"name"`
	Category     string        `json:"category"`
	Description  string        `json:"description,omitempty"`
	Files        []string      `json:"files,omitempty"`
	CodeSnippets []CodeSnippet `json:"code_snippets,omitempty"`
	ApiElements  []string      `json:"api_elements,omitempty"`
}

// CodeSnippet is one code block belonging to an example.
type CodeSnippet struct {
	Title       string `json:"title"`
	Code        string `json:"code"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
}

// SearchIndexEntry is the denormalized projection of an ApiRecord consumed
// by the fuzzy index. It is derived wholesale from the record set and never
// patched individually.
type SearchIndexEntry struct {
	Title       string `json:"title"`
	Kind        Kind   `json:"kind"`
	Namespace   string `json:"namespace,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	SourcePage  string `json:"source_page,omitempty"`
}

// Projection builds the search-index view of a record.
func Projection(r ApiRecord) SearchIndexEntry {
	return SearchIndexEntry{
		Title:       r.Title,
		Kind:        r.Kind,
		Namespace:   r.Namespace,
		Summary:     r.Summary,
		Description: r.Description,
		SourcePage:  r.SourcePage,
	}
}

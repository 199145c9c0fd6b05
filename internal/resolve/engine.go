// Package resolve is the query layer over the record store, the fuzzy
// index and the remote fallback. Its operations never propagate a fault:
// internal errors are logged and converted to the operation's "not found"
// value at the boundary.
package resolve

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teklab/tekladoc/internal/fallback"
	"github.com/teklab/tekladoc/internal/index"
	"github.com/teklab/tekladoc/internal/markup"
	"github.com/teklab/tekladoc/internal/model"
	"github.com/teklab/tekladoc/internal/store"
)

// Primary namespaces used for disambiguation. When a lookup is ambiguous
// between the modeling and drawing domains, the modeling candidate wins:
// it is the far more commonly queried domain.
const (
	ModelingNamespace = "Tekla.Structures.Model"
	DrawingNamespace  = "Tekla.Structures.Drawing"
)

const (
	defaultLimit          = 10
	maxExamplesPerQuery   = 5
	maxSnippetsPerExample = 3
	classTitleSuffix      = " Class"
)

// PageReader supplies raw documentation pages for deep-detail parsing.
type PageReader interface {
	ReadPage(path string) ([]byte, error)
}

// DirPageReader reads pages from the extracted documentation directory.
type DirPageReader struct {
	Dir string
}

func (r DirPageReader) ReadPage(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.Dir, filepath.FromSlash(path)))
}

// Engine owns the query-time state: the loaded store, the built index and
// the optional remote fallback. It is constructed once per process (or per
// test) and has no package-level state.
type Engine struct {
	store  *store.Store
	index  *index.Index
	remote fallback.Client
	pages  PageReader
	limit  int
}

// New assembles an engine. remote and pages may be nil; the corresponding
// capabilities degrade to "no answer" rather than failing.
func New(st *store.Store, idx *index.Index, remote fallback.Client, pages PageReader) *Engine {
	return &Engine{store: st, index: idx, remote: remote, pages: pages, limit: defaultLimit}
}

// SetDefaultLimit overrides the result count used when a caller passes no
// limit. Values below one are ignored.
func (e *Engine) SetDefaultLimit(n int) {
	if n > 0 {
		e.limit = n
	}
}

// guard converts a panic inside an operation into a logged diagnostic, so
// callers observe an empty result instead of a fault.
func guard(op string, input string) {
	if r := recover(); r != nil {
		slog.Error("operation failed", "op", op, "input", input, "panic", r)
	}
}

// Search returns ranked results for a free-text query. kindFilter "all"
// disables filtering; any other value restricts the ranked list before
// truncation. When the index cannot answer, or local results are judged
// insufficient, the remote fallback fills in.
func (e *Engine) Search(ctx context.Context, query, kindFilter string, limit int) (results []model.Result) {
	defer guard("search", query)

	if limit <= 0 {
		limit = e.limit
	}

	if e.index == nil || e.index.Size() == 0 {
		return e.remoteSearch(ctx, query, kindFilter, limit)
	}

	hits, err := e.index.Search(query, limit*3)
	if err != nil {
		slog.Warn("index search failed, delegating to fallback", "query", query, "error", err)
		return e.remoteSearch(ctx, query, kindFilter, limit)
	}

	for _, hit := range hits {
		results = append(results, adaptHit(hit))
	}
	results = filterKind(results, kindFilter)

	if fallback.ShouldUseFallback(results) && e.remote != nil {
		remote, err := e.remote.SearchOnline(ctx, query, kindFilter, limit)
		if err != nil {
			slog.Warn("fallback search failed", "query", query, "error", err)
		} else {
			results = mergeRemote(results, remote, limit)
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// remoteSearch delegates the whole query to the fallback and adapts its
// shape so callers cannot tell which source answered.
func (e *Engine) remoteSearch(ctx context.Context, query, kindFilter string, limit int) []model.Result {
	if e.remote == nil {
		return nil
	}
	remote, err := e.remote.SearchOnline(ctx, query, kindFilter, limit)
	if err != nil {
		slog.Warn("fallback search failed", "query", query, "error", err)
		return nil
	}
	results := make([]model.Result, 0, len(remote))
	for _, rec := range remote {
		results = append(results, adaptRemote(rec))
	}
	return results
}

// GetClassDetails resolves a single best-matching class record, optionally
// augmented in place with its member breakdown. Returns nil when nothing
// matches locally or remotely.
func (e *Engine) GetClassDetails(ctx context.Context, name string, includeMembers bool) (rec *model.ApiRecord) {
	defer guard("get_class_details", name)

	candidates := e.classCandidates()
	selected := selectClass(candidates, name)

	if selected == nil {
		return e.remoteClass(ctx, name)
	}

	if includeMembers && selected.DetailedInfo == nil {
		e.attachDetails(selected)
	}

	if fallback.LowQuality(selected.Namespace, selected.Summary) && e.remote != nil {
		remote, err := e.remote.GetClassDetailsOnline(ctx, name)
		if err != nil {
			slog.Warn("fallback class lookup failed", "name", name, "error", err)
		} else if remote != nil {
			// Replace the descriptive fields on a copy, keeping any
			// locally computed members. The stored record never changes
			// beyond the detail attach.
			enriched := *selected
			if remote.Description != "" {
				enriched.Summary = remote.Description
				enriched.Description = remote.Description
			}
			if remote.Namespace != "" {
				enriched.Namespace = remote.Namespace
				enriched.NormalizedNamespace = remote.Namespace
			}
			return &enriched
		}
	}

	return selected
}

// attachDetails runs the deep parse for a class record and caches the
// result on it. A parse failure leaves the record untouched and is only
// noted in diagnostics.
func (e *Engine) attachDetails(rec *model.ApiRecord) {
	if e.pages == nil || rec.SourcePage == "" {
		return
	}
	page, err := e.pages.ReadPage(rec.SourcePage)
	if err != nil {
		slog.Warn("deep-detail page unreadable", "page", rec.SourcePage, "error", err)
		return
	}
	info := markup.ExtractDetails(page)
	if err := e.store.AttachDetails(rec.SourcePage, info); err != nil {
		slog.Warn("detail attach failed", "page", rec.SourcePage, "error", err)
	}
}

func (e *Engine) remoteClass(ctx context.Context, name string) *model.ApiRecord {
	if e.remote == nil {
		return nil
	}
	remote, err := e.remote.GetClassDetailsOnline(ctx, name)
	if err != nil {
		slog.Warn("fallback class lookup failed", "name", name, "error", err)
		return nil
	}
	if remote == nil {
		return nil
	}
	return remoteToRecord(*remote)
}

func (e *Engine) classCandidates() []*model.ApiRecord {
	if part := e.store.ByKind(model.KindClass); len(part) > 0 {
		return part
	}
	var classes []*model.ApiRecord
	for _, rec := range e.store.All() {
		if rec.Kind == model.KindClass {
			classes = append(classes, rec)
		}
	}
	return classes
}

// GetMethodDetails returns the first method record whose name contains the
// query and, when given, the class name fragment. Nil when nothing matches.
func (e *Engine) GetMethodDetails(ctx context.Context, name, className string) (rec *model.ApiRecord) {
	defer guard("get_method_details", name)

	match := func(r *model.ApiRecord) bool {
		if !containsFold(r.Title, name) {
			return false
		}
		return className == "" || containsFold(r.Title, className)
	}

	for _, r := range e.store.ByKind(model.KindMethod) {
		if match(r) {
			return r
		}
	}
	// Partitions are conveniences; the combined collection is the ground
	// truth.
	for _, r := range e.store.All() {
		if r.Kind == model.KindMethod && match(r) {
			return r
		}
	}

	if e.remote == nil {
		return nil
	}
	remote, err := e.remote.GetMethodDetailsOnline(ctx, name, className)
	if err != nil {
		slog.Warn("fallback method lookup failed", "name", name, "error", err)
		return nil
	}
	if remote == nil {
		return nil
	}
	return remoteToRecord(*remote)
}

// BrowseNamespace returns records under a namespace prefix. Without
// members, the view is restricted to namespace-level contents: classes,
// interfaces, enums and delegates.
func (e *Engine) BrowseNamespace(prefix string, includeMembers bool) (records []*model.ApiRecord) {
	defer guard("browse_namespace", prefix)

	contentKinds := map[model.Kind]bool{
		model.KindClass:     true,
		model.KindInterface: true,
		model.KindEnum:      true,
		model.KindDelegate:  true,
	}

	lp := strings.ToLower(prefix)
	for _, rec := range e.store.All() {
		if !strings.HasPrefix(strings.ToLower(rec.Namespace), lp) {
			continue
		}
		if !includeMembers && !contentKinds[rec.Kind] {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// ExampleView is one code example trimmed to a bounded response size.
type ExampleView struct {
	Name        string              `json:"name"`
	Category    string              `json:"category"`
	Description string              `json:"description,omitempty"`
	Files       []string            `json:"files,omitempty"`
	ApiElements []string            `json:"api_elements,omitempty"`
	Snippets    []model.CodeSnippet `json:"snippets,omitempty"`
}

// GetCodeExamples returns examples mentioning the element, each with up to
// a few snippets filtered by language ("all" disables the filter).
func (e *Engine) GetCodeExamples(elementName, language string) (views []ExampleView) {
	defer guard("get_code_examples", elementName)

	for _, ex := range e.store.Examples() {
		if !exampleMentions(ex, elementName) {
			continue
		}
		view := ExampleView{
			Name:        ex.Name,
			Category:    ex.Category,
			Description: ex.Description,
			Files:       ex.Files,
			ApiElements: ex.ApiElements,
		}
		for _, sn := range ex.CodeSnippets {
			if language != model.KindAll && language != "" && !strings.EqualFold(sn.Language, language) {
				continue
			}
			view.Snippets = append(view.Snippets, sn)
			if len(view.Snippets) >= maxSnippetsPerExample {
				break
			}
		}
		views = append(views, view)
		if len(views) >= maxExamplesPerQuery {
			break
		}
	}
	return views
}

func exampleMentions(ex model.CodeExample, elementName string) bool {
	if containsFold(ex.Name, elementName) || containsFold(ex.Description, elementName) {
		return true
	}
	for _, el := range ex.ApiElements {
		if containsFold(el, elementName) {
			return true
		}
	}
	return false
}

// GetExampleCategories lists the distinct example categories, sorted.
func (e *Engine) GetExampleCategories() (categories []string) {
	defer guard("get_example_categories", "")

	seen := make(map[string]bool)
	for _, ex := range e.store.Examples() {
		if ex.Category == "" || seen[ex.Category] {
			continue
		}
		seen[ex.Category] = true
		categories = append(categories, ex.Category)
	}
	sort.Strings(categories)
	return categories
}

// GetStatistics reports dataset counts. A pure read, no fallback involved.
func (e *Engine) GetStatistics() store.Stats {
	return e.store.Stats()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

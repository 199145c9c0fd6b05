// Package index builds the in-memory fuzzy search index over the dataset's
// denormalized projection. The index is immutable after construction;
// rebuilding means rebuilding the projection wholesale.
package index

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"

	"github.com/teklab/tekladoc/internal/model"
)

// Field weights: title dominates, then namespace, then summary, with the
// page identifier as a low-weight tiebreaker. Tuned empirically.
const (
	titleBoost      = 3.0
	namespaceBoost  = 2.0
	summaryBoost    = 1.5
	descBoost       = 1.0
	identifierBoost = 0.5

	fuzziness = 1

	// minQueryLength suppresses matching below this many characters to
	// avoid noise matches on one-character queries.
	minQueryLength = 2
)

// Hit is one ranked match. Scores are comparative within a single query
// only and are never persisted.
type Hit struct {
	Title      string
	Kind       model.Kind
	Namespace  string
	Summary    string
	SourcePage string
	Score      float64
}

// Index wraps a memory-only bleve index over the search projection.
type Index struct {
	idx  bleve.Index
	size int
}

// Build constructs the index from the projection. Called once at startup.
func Build(entries []model.SearchIndexEntry) (*Index, error) {
	mapping := bleve.NewIndexMapping()
	// Letter-based tokenization splits dotted identifiers like
	// "Beam.Insert" into words, so "Beam" finds the method title.
	mapping.DefaultAnalyzer = simple.Name
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}

	batch := idx.NewBatch()
	for i, entry := range entries {
		id := entry.SourcePage
		if id == "" {
			id = fmt.Sprintf("record-%d", i)
		}
		if err := batch.Index(id, entry); err != nil {
			return nil, fmt.Errorf("indexing %q: %w", entry.Title, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("committing index batch: %w", err)
	}

	slog.Debug("search index built", "entries", len(entries))
	return &Index{idx: idx, size: len(entries)}, nil
}

// Size returns the number of indexed entries.
func (x *Index) Size() int {
	return x.size
}

// Search runs a weighted multi-field fuzzy query and returns ranked hits
// annotated with everything needed to materialize a result without a second
// lookup.
func (x *Index) Search(query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	title := bleve.NewMatchQuery(query)
	title.SetField("title")
	title.SetBoost(titleBoost)
	title.SetFuzziness(fuzziness)

	namespace := bleve.NewMatchQuery(query)
	namespace.SetField("namespace")
	namespace.SetBoost(namespaceBoost)
	namespace.SetFuzziness(fuzziness)

	summary := bleve.NewMatchQuery(query)
	summary.SetField("summary")
	summary.SetBoost(summaryBoost)
	summary.SetFuzziness(fuzziness)

	description := bleve.NewMatchQuery(query)
	description.SetField("description")
	description.SetBoost(descBoost)
	description.SetFuzziness(fuzziness)

	identifier := bleve.NewMatchQuery(query)
	identifier.SetField("source_page")
	identifier.SetBoost(identifierBoost)

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(title, namespace, summary, description, identifier))
	req.Size = limit
	req.Fields = []string{"*"}

	res, err := x.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["kind"].(string); ok {
			hit.Kind = model.Kind(v)
		}
		if v, ok := h.Fields["namespace"].(string); ok {
			hit.Namespace = v
		}
		if v, ok := h.Fields["summary"].(string); ok {
			hit.Summary = v
		}
		if v, ok := h.Fields["source_page"].(string); ok {
			hit.SourcePage = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

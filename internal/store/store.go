// Package store loads the persisted normalized dataset into memory and
// serves it to the resolution engine. Records are loaded once at startup
// and never mutated afterwards, except for the idempotent attachment of
// lazily parsed class details.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/teklab/tekladoc/internal/model"
)

// Dataset file names inside the data directory.
const (
	RecordsFile    = "records.json"
	ProjectionFile = "search-index.json"
	ExamplesFile   = "examples.json"
	TocFile        = "toc.json"
)

// PartitionFile returns the per-kind convenience file name.
func PartitionFile(kind model.Kind) string {
	return string(kind) + ".json"
}

// Store holds the record set for the process lifetime. The combined
// collection is the ground truth; partitions are conveniences and a query
// that needs correctness must consult the combined collection.
type Store struct {
	records    []*model.ApiRecord
	byKind     map[model.Kind][]*model.ApiRecord
	bySource   map[string]*model.ApiRecord
	projection []model.SearchIndexEntry
	examples   []model.CodeExample
}

// Stats summarizes the loaded dataset.
type Stats struct {
	Total        int                `json:"total_records"`
	ByKind       map[model.Kind]int `json:"by_kind"`
	Examples     int                `json:"examples"`
	CodeSnippets int                `json:"code_snippets"`
}

// Load reads the dataset from dir. Loading is fault-tolerant per file: a
// missing or corrupt file degrades to an empty collection with a logged
// warning and never fails startup. An absent combined file yields a store
// with no local data.
func Load(dir string) *Store {
	s := &Store{
		byKind:   make(map[model.Kind][]*model.ApiRecord),
		bySource: make(map[string]*model.ApiRecord),
	}

	var combined []model.ApiRecord
	loadJSON(filepath.Join(dir, RecordsFile), &combined)
	for i := range combined {
		rec := &combined[i]
		s.records = append(s.records, rec)
		if rec.SourcePage != "" {
			if _, ok := s.bySource[rec.SourcePage]; !ok {
				s.bySource[rec.SourcePage] = rec
			}
		}
	}

	for _, kind := range model.Kinds {
		var part []model.ApiRecord
		loadJSON(filepath.Join(dir, PartitionFile(kind)), &part)
		for i := range part {
			// Share identity with the combined record when possible so a
			// detail attach is visible through every view.
			if rec, ok := s.bySource[part[i].SourcePage]; ok && part[i].SourcePage != "" {
				s.byKind[kind] = append(s.byKind[kind], rec)
				continue
			}
			s.byKind[kind] = append(s.byKind[kind], &part[i])
		}
	}

	loadJSON(filepath.Join(dir, ProjectionFile), &s.projection)
	if len(s.projection) == 0 && len(s.records) > 0 {
		for _, rec := range s.records {
			s.projection = append(s.projection, model.Projection(*rec))
		}
	}

	loadJSON(filepath.Join(dir, ExamplesFile), &s.examples)

	slog.Info("dataset loaded",
		"dir", dir,
		"records", len(s.records),
		"examples", len(s.examples))
	return s
}

// loadJSON decodes one dataset file into out. Absence or corruption leaves
// out untouched and logs a warning.
func loadJSON(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("unreadable dataset file", "path", path, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("corrupt dataset file", "path", path, "error", err)
	}
}

// All returns the combined collection in load order.
func (s *Store) All() []*model.ApiRecord {
	return s.records
}

// ByKind returns the partition for one kind. Partitions may be incomplete;
// fall back to All for correctness.
func (s *Store) ByKind(kind model.Kind) []*model.ApiRecord {
	return s.byKind[kind]
}

// BySource returns the record extracted from the given page, if any.
func (s *Store) BySource(page string) *model.ApiRecord {
	return s.bySource[page]
}

// Projection returns the denormalized search view of the dataset.
func (s *Store) Projection() []model.SearchIndexEntry {
	return s.projection
}

// Examples returns the loaded example corpus.
func (s *Store) Examples() []model.CodeExample {
	return s.examples
}

// Empty reports whether the store has no local records.
func (s *Store) Empty() bool {
	return len(s.records) == 0
}

// AttachDetails caches the deep-parse result on the record extracted from
// sourcePage. Re-attaching overwrites; it never appends or duplicates.
func (s *Store) AttachDetails(sourcePage string, info model.DetailedInfo) error {
	rec, ok := s.bySource[sourcePage]
	if !ok {
		return fmt.Errorf("no record for page %s", sourcePage)
	}
	rec.DetailedInfo = &info
	return nil
}

// Stats counts the loaded collections. A pure read.
func (s *Store) Stats() Stats {
	st := Stats{
		Total:    len(s.records),
		ByKind:   make(map[model.Kind]int),
		Examples: len(s.examples),
	}
	for _, rec := range s.records {
		st.ByKind[rec.Kind]++
	}
	for _, ex := range s.examples {
		st.CodeSnippets += len(ex.CodeSnippets)
	}
	return st
}

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/teklab/tekladoc/internal/model"
)

// Save persists a freshly built dataset: the combined record file, one
// convenience partition per kind, the search projection, and the TOC list.
func Save(dir string, records []model.ApiRecord, entries []model.TocEntry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, RecordsFile), records); err != nil {
		return err
	}

	parts := make(map[model.Kind][]model.ApiRecord)
	projection := make([]model.SearchIndexEntry, 0, len(records))
	for _, rec := range records {
		parts[rec.Kind] = append(parts[rec.Kind], rec)
		projection = append(projection, model.Projection(rec))
	}
	for _, kind := range model.Kinds {
		part := parts[kind]
		if part == nil {
			part = []model.ApiRecord{}
		}
		if err := writeJSON(filepath.Join(dir, PartitionFile(kind)), part); err != nil {
			return err
		}
	}

	if err := writeJSON(filepath.Join(dir, ProjectionFile), projection); err != nil {
		return err
	}
	if entries != nil {
		if err := writeJSON(filepath.Join(dir, TocFile), entries); err != nil {
			return err
		}
	}
	return nil
}

// SaveExamples persists the example corpus file.
func SaveExamples(dir string, examples []model.CodeExample) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return writeJSON(filepath.Join(dir, ExamplesFile), examples)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

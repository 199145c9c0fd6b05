package resolve

import (
	"strings"

	"github.com/teklab/tekladoc/internal/index"
	"github.com/teklab/tekladoc/internal/model"
)

// adaptHit converts a local index hit to the common result shape.
func adaptHit(h index.Hit) model.Result {
	return model.Result{
		Title:      h.Title,
		Kind:       h.Kind,
		Namespace:  h.Namespace,
		Summary:    h.Summary,
		SourcePage: h.SourcePage,
		Score:      h.Score,
		Source:     model.SourceLocal,
	}
}

// adaptRemote converts a fallback answer to the common result shape,
// field for field, so callers never observe which source answered.
func adaptRemote(r model.RemoteRecord) model.Result {
	return model.Result{
		Title:      r.Title,
		Kind:       r.Kind,
		Namespace:  r.Namespace,
		Summary:    r.Description,
		SourcePage: r.URL,
		Source:     model.SourceRemote,
	}
}

// remoteToRecord materializes a fallback answer as an ApiRecord for the
// detail operations.
func remoteToRecord(r model.RemoteRecord) *model.ApiRecord {
	return &model.ApiRecord{
		Title:               r.Title,
		Description:         r.Description,
		Summary:             r.Description,
		Namespace:           r.Namespace,
		NormalizedNamespace: r.Namespace,
		Kind:                r.Kind,
		SourcePage:          r.URL,
	}
}

// filterKind restricts ranked results to one kind. Applied after ranking,
// before truncation; "all" disables it.
func filterKind(results []model.Result, kindFilter string) []model.Result {
	if kindFilter == "" || kindFilter == model.KindAll {
		return results
	}
	filtered := results[:0]
	for _, r := range results {
		if string(r.Kind) == kindFilter {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// mergeRemote appends fallback results whose titles are not already
// present locally, case-insensitively, until limit is reached.
func mergeRemote(local []model.Result, remote []model.RemoteRecord, limit int) []model.Result {
	seen := make(map[string]bool, len(local))
	for _, r := range local {
		seen[strings.ToLower(r.Title)] = true
	}
	for _, rec := range remote {
		if len(local) >= limit {
			break
		}
		key := strings.ToLower(rec.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		local = append(local, adaptRemote(rec))
	}
	return local
}

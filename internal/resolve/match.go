package resolve

import (
	"strings"

	"github.com/teklab/tekladoc/internal/model"
)

// selectClass resolves a free-text class name against the candidate set in
// three escalating passes, stopping at the first pass with at least one
// match: exact, word-boundary, then broad substring. Ambiguity between the
// modeling and drawing namespaces resolves toward modeling; otherwise store
// order wins.
func selectClass(candidates []*model.ApiRecord, name string) *model.ApiRecord {
	for _, pass := range []func(*model.ApiRecord, string) bool{
		matchExact, matchWordBoundary, matchSubstring,
	} {
		var matched []*model.ApiRecord
		for _, rec := range candidates {
			if pass(rec, name) {
				matched = append(matched, rec)
			}
		}
		if len(matched) > 0 {
			return disambiguate(matched)
		}
	}
	return nil
}

// recordIdentifier is the bare type name: the display name with its kind
// suffix removed.
func recordIdentifier(rec *model.ApiRecord) string {
	return strings.TrimSuffix(rec.Title, classTitleSuffix)
}

func matchExact(rec *model.ApiRecord, name string) bool {
	return strings.EqualFold(rec.Title, name+classTitleSuffix) ||
		strings.EqualFold(rec.Title, name) ||
		strings.EqualFold(recordIdentifier(rec), name)
}

// matchWordBoundary requires the query to align to a whole word in the
// name. This keeps "Beam" from matching inside "AnalysisCompositeBeam".
func matchWordBoundary(rec *model.ApiRecord, name string) bool {
	title := strings.ToLower(rec.Title)
	q := strings.ToLower(name)
	return strings.HasPrefix(title, q+" ") ||
		strings.HasSuffix(title, " "+q) ||
		strings.Contains(title, " "+q+" ") ||
		strings.Contains(title, " "+q+"class")
}

// matchSubstring is the last resort: the query anywhere in the name or the
// page identifier.
func matchSubstring(rec *model.ApiRecord, name string) bool {
	return containsFold(rec.Title, name) || containsFold(rec.SourcePage, name)
}

// disambiguate picks one of several matched records. When exactly the
// modeling and drawing namespaces are represented, the modeling candidate
// wins; otherwise the first candidate in store order does.
func disambiguate(matched []*model.ApiRecord) *model.ApiRecord {
	if len(matched) == 1 {
		return matched[0]
	}

	namespaces := make(map[string]bool)
	for _, rec := range matched {
		namespaces[rec.Namespace] = true
	}
	if len(namespaces) == 2 && namespaces[ModelingNamespace] && namespaces[DrawingNamespace] {
		for _, rec := range matched {
			if rec.Namespace == ModelingNamespace {
				return rec
			}
		}
	}
	return matched[0]
}

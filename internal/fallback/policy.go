package fallback

import (
	"strings"

	"github.com/teklab/tekladoc/internal/model"
)

// CopyrightMarker is the boilerplate string that identifies a record whose
// summary was scraped from a page footer instead of real documentation.
const CopyrightMarker = "Copyright © Trimble"

// placeholderNamespaces are values the offline pipeline emits when it could
// not determine a namespace.
var placeholderNamespaces = map[string]bool{
	"":        true,
	"n/a":     true,
	"unknown": true,
}

// LowQuality reports whether a record with the given namespace and summary
// text should be considered too poor to answer with. The same predicate
// gates class details and drives the fallback decision.
func LowQuality(namespace, text string) bool {
	if placeholderNamespaces[strings.ToLower(strings.TrimSpace(namespace))] {
		return true
	}
	return strings.Contains(text, CopyrightMarker)
}

// ShouldUseFallback decides whether a remote lookup is warranted: always
// when there are no local results, otherwise when more than half of them
// are low quality.
func ShouldUseFallback(local []model.Result) bool {
	if len(local) == 0 {
		return true
	}
	poor := 0
	for _, r := range local {
		if LowQuality(r.Namespace, r.Summary) {
			poor++
		}
	}
	return poor*2 > len(local)
}

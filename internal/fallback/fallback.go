// Package fallback looks up documentation against the online Tekla
// developer site when local data is absent or low-quality. Answers carry
// the same logical fields as local records so the resolution engine can
// treat both sources uniformly.
package fallback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/teklab/tekladoc/internal/markup"
	"github.com/teklab/tekladoc/internal/model"
	"github.com/teklab/tekladoc/internal/toc"
)

// Client answers the same query shapes as the local store.
type Client interface {
	SearchOnline(ctx context.Context, query, kindFilter string, limit int) ([]model.RemoteRecord, error)
	GetClassDetailsOnline(ctx context.Context, name string) (*model.RemoteRecord, error)
	GetMethodDetailsOnline(ctx context.Context, name, className string) (*model.RemoteRecord, error)
}

// HTTPClient implements Client against the online documentation site.
// Prior answers are cached by the full query shape for the process
// lifetime; the cache is never invalidated within a run.
type HTTPClient struct {
	baseURL string
	http    *retryablehttp.Client
	pages   *pageCache

	mu         sync.Mutex
	queryCache map[string][]model.RemoteRecord
}

// NewHTTPClient builds a fallback client for the given site base URL.
// cacheDir, when non-empty, enables the compressed on-disk page cache.
func NewHTTPClient(baseURL, cacheDir string) *HTTPClient {
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 500 * time.Millisecond
	c.HTTPClient.Timeout = 20 * time.Second
	c.Logger = nil

	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       c,
		pages:      newPageCache(cacheDir),
		queryCache: make(map[string][]model.RemoteRecord),
	}
}

// SearchOnline queries the site's search endpoint and adapts its JSON
// answer to the record shape.
func (h *HTTPClient) SearchOnline(ctx context.Context, query, kindFilter string, limit int) ([]model.RemoteRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	key := fmt.Sprintf("search|%s|%s|%d", query, kindFilter, limit)
	if cached, ok := h.cached(key); ok {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/api/search?q=%s&limit=%d", h.baseURL, url.QueryEscape(query), limit)
	body, err := h.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("online search for %q: %w", query, err)
	}

	var records []model.RemoteRecord
	for _, hit := range gjson.GetBytes(body, "results").Array() {
		rec := model.RemoteRecord{
			Title:       hit.Get("title").String(),
			Description: hit.Get("description").String(),
			Namespace:   hit.Get("namespace").String(),
			URL:         hit.Get("url").String(),
			Kind:        remoteKind(hit.Get("type").String(), hit.Get("title").String()),
		}
		if rec.Title == "" {
			continue
		}
		if rec.Namespace == "" {
			rec.Namespace = toc.DeriveNamespace(rec.Title)
		}
		if kindFilter != model.KindAll && kindFilter != "" && string(rec.Kind) != kindFilter {
			continue
		}
		records = append(records, rec)
		if len(records) >= limit {
			break
		}
	}

	h.store(key, records)
	slog.Debug("online search", "query", query, "results", len(records))
	return records, nil
}

// GetClassDetailsOnline resolves a class by name: search first, then fetch
// and normalize the winning page.
func (h *HTTPClient) GetClassDetailsOnline(ctx context.Context, name string) (*model.RemoteRecord, error) {
	return h.detail(ctx, name, "", string(model.KindClass))
}

// GetMethodDetailsOnline resolves a method, optionally scoped to a class.
func (h *HTTPClient) GetMethodDetailsOnline(ctx context.Context, name, className string) (*model.RemoteRecord, error) {
	query := name
	if className != "" {
		query = className + "." + name
	}
	return h.detail(ctx, query, className, string(model.KindMethod))
}

func (h *HTTPClient) detail(ctx context.Context, query, classFragment, kind string) (*model.RemoteRecord, error) {
	hits, err := h.SearchOnline(ctx, query, kind, 5)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	best := hits[0]
	if classFragment != "" {
		for _, hit := range hits {
			if strings.Contains(strings.ToLower(hit.Title), strings.ToLower(classFragment)) {
				best = hit
				break
			}
		}
	}
	if best.URL == "" {
		return &best, nil
	}

	// Enrich the search hit from the page itself when it can be fetched.
	page, err := h.fetchPage(ctx, best.URL)
	if err != nil {
		slog.Debug("detail page fetch failed, using search hit", "url", best.URL, "error", err)
		return &best, nil
	}
	if rec := markup.Normalize(page, model.TocEntry{DisplayName: best.Title, TargetPage: best.URL}); rec != nil {
		if rec.Summary != "" {
			best.Description = rec.Summary
		}
		if rec.Namespace != "" {
			best.Namespace = rec.Namespace
		}
		if rec.Kind != model.KindOther {
			best.Kind = rec.Kind
		}
	}
	return &best, nil
}

// fetchPage downloads a documentation page, consulting the compressed
// on-disk cache first.
func (h *HTTPClient) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	if !strings.HasPrefix(pageURL, "http") {
		pageURL = h.baseURL + "/" + strings.TrimLeft(pageURL, "/")
	}
	if data, ok := h.pages.load(pageURL); ok {
		return data, nil
	}
	data, err := h.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	h.pages.save(pageURL, data)
	return data, nil
}

func (h *HTTPClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "tekladoc/1.0")

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

func (h *HTTPClient) cached(key string) ([]model.RemoteRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	records, ok := h.queryCache[key]
	return records, ok
}

func (h *HTTPClient) store(key string, records []model.RemoteRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queryCache[key] = records
}

// remoteKind maps the site's result type label to a record kind, falling
// back to title classification.
func remoteKind(typeLabel, title string) model.Kind {
	switch strings.ToLower(typeLabel) {
	case "class":
		return model.KindClass
	case "interface":
		return model.KindInterface
	case "enum", "enumeration":
		return model.KindEnum
	case "method", "constructor":
		return model.KindMethod
	case "property":
		return model.KindProperty
	case "event":
		return model.KindEvent
	case "field":
		return model.KindField
	case "delegate":
		return model.KindDelegate
	case "namespace":
		return model.KindNamespace
	}
	return toc.Classify(title)
}

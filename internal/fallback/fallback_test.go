package fallback

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/teklab/tekladoc/internal/model"
)

func TestShouldUseFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		local []model.Result
		want  bool
	}{
		{"empty", nil, true},
		{
			"placeholder_namespace",
			[]model.Result{{Namespace: "N/A"}},
			true,
		},
		{
			"good_namespace",
			[]model.Result{{Namespace: "Tekla.Structures.Model", Summary: "Represents a beam."}},
			false,
		},
		{
			"boilerplate_summary",
			[]model.Result{{Namespace: "Tekla.Structures.Model", Summary: "Copyright © Trimble Solutions"}},
			true,
		},
		{
			"minority_poor",
			[]model.Result{
				{Namespace: "Tekla.Structures.Model"},
				{Namespace: "Tekla.Structures.Model"},
				{Namespace: ""},
			},
			false,
		},
		{
			"majority_poor",
			[]model.Result{
				{Namespace: ""},
				{Namespace: "unknown"},
				{Namespace: "Tekla.Structures.Model"},
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldUseFallback(tt.local); got != tt.want {
				t.Errorf("ShouldUseFallback(%v) = %v, want %v", tt.local, got, tt.want)
			}
		})
	}
}

func TestSearchOnline_ParsesAndCaches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"results":[
			{"title":"Beam Class","description":"Represents a beam.","type":"class","url":"/api/Beam"},
			{"title":"Beam.Insert Method","description":"Inserts the beam.","type":"method","url":"/api/Beam.Insert"}
		]}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")

	records, err := client.SearchOnline(context.Background(), "Beam", model.KindAll, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Kind != model.KindClass {
		t.Errorf("kind = %q, want class", records[0].Kind)
	}

	// Kind filter applied server-side of the adapter.
	classes, err := client.SearchOnline(context.Background(), "Beam", string(model.KindClass), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(classes) != 1 || classes[0].Title != "Beam Class" {
		t.Errorf("filtered records = %+v", classes)
	}

	// Same query shape answered from the cache.
	before := calls.Load()
	if _, err := client.SearchOnline(context.Background(), "Beam", model.KindAll, 10); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != before {
		t.Errorf("expected cached answer, got extra HTTP call")
	}
}

func TestGetClassDetailsOnline_EnrichesFromPage(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"title":"Beam Class","type":"class","url":"/api/Beam"}]}`)
	})
	mux.HandleFunc("/api/Beam", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Beam Class</title></head><body>
			<div class="summary">Represents a steel beam.</div>
			<strong>Namespace:</strong> <a href="#">Tekla.Structures.Model</a>
		</body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewHTTPClient(srv.URL, t.TempDir())

	rec, err := client.GetClassDetailsOnline(context.Background(), "Beam")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("expected record")
	}
	if rec.Description != "Represents a steel beam." {
		t.Errorf("description = %q", rec.Description)
	}
	if rec.Namespace != "Tekla.Structures.Model" {
		t.Errorf("namespace = %q", rec.Namespace)
	}
}

func TestSearchOnline_NoResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	records, err := client.SearchOnline(context.Background(), "Nothing", model.KindAll, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestPageCache_RoundTrip(t *testing.T) {
	t.Parallel()

	cache := newPageCache(t.TempDir())
	cache.save("https://example.com/page", []byte("<html>cached</html>"))

	data, ok := cache.load("https://example.com/page")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != "<html>cached</html>" {
		t.Errorf("got %q", data)
	}

	if _, ok := cache.load("https://example.com/other"); ok {
		t.Error("unexpected cache hit")
	}
}

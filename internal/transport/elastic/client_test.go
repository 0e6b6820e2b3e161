package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/genomebank/searchgw/internal/domain"
	"github.com/genomebank/searchgw/internal/engine"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()}), srv
}

func TestSearch_ParsesHitsTotalAndAggregations(t *testing.T) {
	var gotBody map[string]any
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entries/_search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 42, "relation": "eq"},
				"hits": [
					{"_id": "PRJDB1", "_source": {"identifier": "PRJDB1", "type": "bioproject"}},
					{"_id": "PRJDB2", "_source": {"identifier": "PRJDB2", "type": "bioproject"}}
				]
			},
			"aggregations": {
				"type": {"buckets": [
					{"key": "bioproject", "doc_count": 40},
					{"key": "biosample", "doc_count": 2}
				]}
			}
		}`))
	})
	defer srv.Close()

	result, err := client.Search(context.Background(), "entries", &engine.SearchRequest{
		Query: map[string]any{"match_all": map[string]any{}},
		Size:  10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Total != 42 {
		t.Errorf("Total = %d, want 42", result.Total)
	}
	if len(result.Hits) != 2 || result.Hits[0].Identifier() != "PRJDB1" {
		t.Errorf("Hits = %v", result.Hits)
	}
	buckets := result.Aggregations["type"]
	if len(buckets) != 2 || buckets[0].Value != "bioproject" || buckets[0].Count != 40 {
		t.Errorf("Aggregations = %v", result.Aggregations)
	}

	if gotBody["track_total_hits"] != true {
		t.Error("search request must demand exact totals")
	}
}

func TestSearch_EngineErrorWrapsUpstream(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "engine exploded"}`))
	})
	defer srv.Close()

	_, err := client.Search(context.Background(), "entries", &engine.SearchRequest{
		Query: map[string]any{"match_all": map[string]any{}},
	})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestSearch_MalformedResponseWrapsUpstream(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	defer srv.Close()

	_, err := client.Search(context.Background(), "entries", &engine.SearchRequest{})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGetSource_Found(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bioproject/_source/PRJDB1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"identifier": "PRJDB1", "type": "bioproject"}`))
	})
	defer srv.Close()

	doc, err := client.GetSource(context.Background(), "bioproject", "PRJDB1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Identifier() != "PRJDB1" {
		t.Errorf("Identifier = %q", doc.Identifier())
	}
}

func TestGetSource_MissingIsNotFound(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	_, err := client.GetSource(context.Background(), "bioproject", "PRJDB404")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, domain.ErrUpstream) {
		t.Error("a missing document is not an engine failure")
	}
}

func TestMultiGet_SkipsMissingDocs(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/biosample/_mget" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body map[string][]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body["ids"]) != 2 {
			t.Errorf("ids = %v", body["ids"])
		}
		_, _ = w.Write([]byte(`{"docs": [
			{"_id": "SAMD1", "found": true, "_source": {"identifier": "SAMD1"}},
			{"_id": "SAMD2", "found": false}
		]}`))
	})
	defer srv.Close()

	docs, err := client.MultiGet(context.Background(), "biosample", []string{"SAMD1", "SAMD2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	if _, ok := docs["SAMD2"]; ok {
		t.Error("missing id must be absent from the map")
	}
}

func TestPing(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cluster_name": "test"}`))
	})
	defer srv.Close()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Unreachable(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1"})

	if err := client.Ping(context.Background()); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestBucketKey(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"bioproject", "bioproject"},
		{float64(42), "42"},
		{float64(1.5), "1.5"},
		{true, "true"},
	}
	for _, tc := range tests {
		if got := bucketKey(tc.in); got != tc.want {
			t.Errorf("bucketKey(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// Package elastic is a thin Elasticsearch REST client implementing the
// engine capability interfaces over net/http.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/genomebank/searchgw/internal/domain"
	"github.com/genomebank/searchgw/internal/domain/document"
	"github.com/genomebank/searchgw/internal/domain/search/facet"
	"github.com/genomebank/searchgw/internal/engine"
)

// Config holds the engine connection settings.
type Config struct {
	// BaseURL is the engine root, e.g. "http://localhost:9200".
	BaseURL string
	// HTTPClient overrides the transport (nil = a default client).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client speaks the Elasticsearch REST API.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
}

var _ engine.Client = (*Client)(nil)

// New creates an engine client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{base: cfg.BaseURL, http: httpClient, logger: logger}
}

// searchBody is the engine-side request document. track_total_hits is
// always set so the total is exact, not an approximation.
type searchBody struct {
	Query          map[string]any   `json:"query"`
	From           int              `json:"from"`
	Size           int              `json:"size"`
	Sort           []map[string]any `json:"sort,omitempty"`
	Source         any              `json:"_source,omitempty"`
	Aggs           map[string]any   `json:"aggs,omitempty"`
	TrackTotalHits bool             `json:"track_total_hits"`
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source document.Raw `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]struct {
		Buckets []struct {
			Key      any   `json:"key"`
			DocCount int64 `json:"doc_count"`
		} `json:"buckets"`
	} `json:"aggregations"`
}

// Search implements engine.Searcher.
func (c *Client) Search(ctx context.Context, index string, req *engine.SearchRequest) (*engine.SearchResult, error) {
	body := searchBody{
		Query:          req.Query,
		From:           req.From,
		Size:           req.Size,
		Sort:           req.Sort,
		Source:         req.Source,
		Aggs:           req.Aggregations,
		TrackTotalHits: true,
	}

	var parsed searchResponse
	if err := c.post(ctx, "/"+index+"/_search", body, &parsed); err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}

	result := &engine.SearchResult{
		Total: parsed.Hits.Total.Value,
		Hits:  make([]document.Raw, 0, len(parsed.Hits.Hits)),
	}
	for _, h := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, h.Source)
	}

	if len(parsed.Aggregations) > 0 {
		result.Aggregations = make(map[string][]facet.Bucket, len(parsed.Aggregations))
		for name, agg := range parsed.Aggregations {
			buckets := make([]facet.Bucket, 0, len(agg.Buckets))
			for _, b := range agg.Buckets {
				buckets = append(buckets, facet.Bucket{
					Value: bucketKey(b.Key),
					Count: b.DocCount,
				})
			}
			result.Aggregations[name] = buckets
		}
	}

	return result, nil
}

type mgetResponse struct {
	Docs []struct {
		ID     string       `json:"_id"`
		Found  bool         `json:"found"`
		Source document.Raw `json:"_source"`
	} `json:"docs"`
}

// MultiGet implements engine.Getter.
func (c *Client) MultiGet(ctx context.Context, index string, ids []string) (map[string]document.Raw, error) {
	var parsed mgetResponse
	if err := c.post(ctx, "/"+index+"/_mget", map[string]any{"ids": ids}, &parsed); err != nil {
		return nil, fmt.Errorf("mget %s: %w", index, err)
	}

	docs := make(map[string]document.Raw, len(parsed.Docs))
	for _, d := range parsed.Docs {
		if d.Found {
			docs[d.ID] = d.Source
		}
	}
	return docs, nil
}

// GetSource implements engine.Getter. A missing document maps to
// domain.ErrNotFound, distinct from engine failure.
func (c *Client) GetSource(ctx context.Context, index, id string) (document.Raw, error) {
	endpoint := "/" + index + "/_source/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get source %s/%s: %v: %w", index, id, err, domain.ErrUpstream)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("entry %s/%s: %w", index, id, domain.ErrNotFound)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, engineStatusError(resp)
	}

	var doc document.Raw
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed engine response: %v: %w", err, domain.ErrUpstream)
	}
	return doc, nil
}

// Ping implements engine.Pinger.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %v: %w", err, domain.ErrUpstream)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return engineStatusError(resp)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrUpstream)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return engineStatusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed engine response: %v: %w", err, domain.ErrUpstream)
	}
	return nil
}

// engineStatusError drains the error body for the log and wraps the
// status into the upstream sentinel. Engine error text never reaches
// the client; the problem mapper emits a generic 500 detail.
func engineStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("engine responded %d: %s: %w", resp.StatusCode, string(body), domain.ErrUpstream)
}

// bucketKey stringifies an aggregation bucket key; numeric keys keep
// their JSON text form.
func bucketKey(key any) string {
	switch v := key.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return formatFloat(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

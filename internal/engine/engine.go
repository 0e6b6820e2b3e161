// Package engine defines the capability interfaces this core consumes
// from the search engine collaborator. The engine is long-lived and
// injected into each operation, so tests substitute a stub.
package engine

import (
	"context"

	"github.com/genomebank/searchgw/internal/domain/document"
	"github.com/genomebank/searchgw/internal/domain/entrytype"
	"github.com/genomebank/searchgw/internal/domain/search/facet"
)

// CrossTypeIndex is the alias spanning every per-type index. Per-type
// indices are named by their type tag.
const CrossTypeIndex = "entries"

// IndexFor returns the index name holding one entry type.
func IndexFor(t entrytype.Type) string { return t.String() }

// SearchRequest is a compiled search specification in the engine's
// native query language.
type SearchRequest struct {
	Query        map[string]any
	From         int
	Size         int
	Sort         []map[string]any
	Source       any // nil, a field list, or an excludes clause
	Aggregations map[string]any
}

// SearchResult carries raw documents, the exact total hit count, and
// raw aggregation buckets keyed by aggregation name.
type SearchResult struct {
	Total        int64
	Hits         []document.Raw
	Aggregations map[string][]facet.Bucket
}

// Searcher executes compiled searches. A zero-hit search succeeds;
// only engine unavailability or a malformed response is an error.
type Searcher interface {
	Search(ctx context.Context, index string, req *SearchRequest) (*SearchResult, error)
}

// Getter retrieves documents by identifier.
type Getter interface {
	// GetSource returns one document, or domain.ErrNotFound.
	GetSource(ctx context.Context, index, id string) (document.Raw, error)
	// MultiGet returns the found documents keyed by id; absent ids are
	// simply missing from the map.
	MultiGet(ctx context.Context, index string, ids []string) (map[string]document.Raw, error)
}

// Pinger checks engine reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Client is the full engine facade. Consumers depend on the narrow
// sub-interfaces.
type Client interface {
	Searcher
	Getter
	Pinger
}

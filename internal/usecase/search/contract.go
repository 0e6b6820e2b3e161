package search

import (
	"context"

	"github.com/genomebank/searchgw/internal/engine"
)

// Engine executes compiled searches against the search engine.
type Engine interface {
	Search(ctx context.Context, index string, req *engine.SearchRequest) (*engine.SearchResult, error)
}

// Package search implements the list-search, facet, and type-count
// operations.
package search

import (
	"context"
	"fmt"

	"github.com/genomebank/searchgw/internal/domain/document"
	"github.com/genomebank/searchgw/internal/domain/entrytype"
	"github.com/genomebank/searchgw/internal/domain/search/facet"
	"github.com/genomebank/searchgw/internal/domain/search/filter"
	"github.com/genomebank/searchgw/internal/domain/search/page"
	"github.com/genomebank/searchgw/internal/domain/search/sortspec"
	"github.com/genomebank/searchgw/internal/engine"
	"github.com/genomebank/searchgw/internal/query"
)

// Scope names the index a search runs against: one entry type, or the
// cross-type alias.
type Scope struct {
	entryType *entrytype.Type
}

// CrossType is the scope spanning all entry types.
func CrossType() Scope { return Scope{} }

// ForType scopes a search to a single entry type.
func ForType(t entrytype.Type) Scope { return Scope{entryType: &t} }

// Index returns the engine index for this scope.
func (s Scope) Index() string {
	if s.entryType == nil {
		return engine.CrossTypeIndex
	}
	return engine.IndexFor(*s.entryType)
}

// FacetSpec returns the facet field set for this scope.
func (s Scope) FacetSpec() facet.Spec {
	if s.entryType == nil {
		return facet.CrossTypeSpec()
	}
	return facet.TypeSpec(*s.entryType)
}

// Request is one fully validated search specification.
type Request struct {
	Scope      Scope
	Filter     filter.Context
	Sort       sortspec.Spec
	Page       page.Spec
	Projection document.Options
	// WithFacets attaches the scope's facet breakdown to the same
	// engine call, so facets and hits describe one result set.
	WithFacets bool
}

// Result is a page of projected entries with the exact total, plus the
// facet breakdown when requested.
type Result struct {
	Entries []document.Projected
	Total   int64
	Facets  facet.Result // nil unless requested
}

// Service handles entry search and faceting.
type Service struct {
	engine Engine
}

// New creates a search service.
func New(eng Engine) *Service {
	return &Service{engine: eng}
}

// Search executes one paginated search.
func (s *Service) Search(ctx context.Context, req Request) (Result, error) {
	compiled := query.Search(req.Filter, req.Sort, req.Page, req.Projection)

	var spec facet.Spec
	if req.WithFacets {
		spec = req.Scope.FacetSpec()
		compiled.Aggregations = query.Aggregations(spec)
	}

	raw, err := s.engine.Search(ctx, req.Scope.Index(), compiled)
	if err != nil {
		return Result{}, fmt.Errorf("search entries: %w", err)
	}

	result := Result{
		Entries: projectHits(raw.Hits, req.Projection),
		Total:   raw.Total,
	}
	if req.WithFacets {
		result.Facets = facet.FromRaw(spec, raw.Aggregations)
	}
	return result, nil
}

// Facets returns the facet breakdown of the result set the same filter
// context would select, without fetching any entries.
func (s *Service) Facets(ctx context.Context, scope Scope, fc filter.Context) (facet.Result, error) {
	spec := scope.FacetSpec()

	raw, err := s.engine.Search(ctx, scope.Index(), query.Facets(fc, spec))
	if err != nil {
		return nil, fmt.Errorf("facet entries: %w", err)
	}
	return facet.FromRaw(spec, raw.Aggregations), nil
}

// TypeCounts returns the per-type hit counts for a cross-type filter
// context. Types with zero hits are present with a zero count.
func (s *Service) TypeCounts(ctx context.Context, fc filter.Context) (map[entrytype.Type]int64, error) {
	raw, err := s.engine.Search(ctx, engine.CrossTypeIndex, query.Facets(fc, facet.TypeCountSpec()))
	if err != nil {
		return nil, fmt.Errorf("count types: %w", err)
	}

	counts := make(map[entrytype.Type]int64, len(entrytype.All()))
	for _, t := range entrytype.All() {
		counts[t] = 0
	}
	for _, b := range raw.Aggregations["type"] {
		if t, err := entrytype.Parse(b.Value); err == nil {
			counts[t] = b.Count
		}
	}
	return counts, nil
}

func projectHits(hits []document.Raw, opts document.Options) []document.Projected {
	out := make([]document.Projected, 0, len(hits))
	for _, h := range hits {
		out = append(out, document.Project(h, opts))
	}
	return out
}

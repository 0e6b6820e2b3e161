// Package query compiles filter contexts, sort specs, and pagination
// into the search engine's native query language. The search and facet
// paths compile from the same filter context, so facet counts always
// describe the result set a co-issued search would return.
package query

import (
	"github.com/genomebank/searchgw/internal/domain/document"
	"github.com/genomebank/searchgw/internal/domain/search/facet"
	"github.com/genomebank/searchgw/internal/domain/search/filter"
	"github.com/genomebank/searchgw/internal/domain/search/page"
	"github.com/genomebank/searchgw/internal/domain/search/sortspec"
	"github.com/genomebank/searchgw/internal/engine"
)

// umbrella flag values map to the BioProject objectType field.
const (
	objectTypeUmbrella = "UmbrellaBioProject"
	objectTypeNormal   = "BioProject"
)

// Search compiles one full search request from a filter context, sort
// spec, pagination, and projection options.
func Search(fc filter.Context, sort sortspec.Spec, pg page.Spec, opts document.Options) *engine.SearchRequest {
	return &engine.SearchRequest{
		Query:  Query(fc),
		From:   pg.Offset(),
		Size:   pg.Limit(),
		Sort:   Sort(sort),
		Source: Source(opts),
	}
}

// Facets compiles an aggregation-only request (zero-size result
// window) sharing the exact same filter clauses as Search.
func Facets(fc filter.Context, spec facet.Spec) *engine.SearchRequest {
	return &engine.SearchRequest{
		Query:        Query(fc),
		From:         0,
		Size:         0,
		Aggregations: Aggregations(spec),
	}
}

// Query compiles a filter context into an engine query clause. An
// empty context compiles to match-everything.
func Query(fc filter.Context) map[string]any {
	filters := filterClauses(fc)
	keywords := fc.Keywords()

	if len(keywords) == 0 && len(filters) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}

	boolQuery := map[string]any{}

	if len(keywords) > 0 {
		fields := fc.EffectiveKeywordFields()
		matches := make([]any, len(keywords))
		for i, kw := range keywords {
			matches[i] = map[string]any{
				"multi_match": map[string]any{
					"query":  kw,
					"fields": fields,
				},
			}
		}
		if fc.Operator() == filter.OperatorOr {
			boolQuery["should"] = matches
			boolQuery["minimum_should_match"] = 1
		} else {
			boolQuery["must"] = matches
		}
	}

	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	return map[string]any{"bool": boolQuery}
}

func filterClauses(fc filter.Context) []any {
	var clauses []any

	if fc.Organism() != "" {
		clauses = append(clauses, term("organism.identifier", fc.Organism()))
	}

	if c := rangeClause("datePublished", fc.DatePublished()); c != nil {
		clauses = append(clauses, c)
	}
	if c := rangeClause("dateModified", fc.DateModified()); c != nil {
		clauses = append(clauses, c)
	}

	if types := fc.Types(); len(types) > 0 {
		tags := make([]string, len(types))
		for i, t := range types {
			tags[i] = t.String()
		}
		clauses = append(clauses, map[string]any{
			"terms": map[string]any{"type": tags},
		})
	}

	extra := fc.Extra()
	if u := extra.Umbrella(); u != nil {
		objectType := objectTypeNormal
		if *u {
			objectType = objectTypeUmbrella
		}
		clauses = append(clauses, term("objectType", objectType))
	}
	if extra.Organization() != "" {
		clauses = append(clauses, nestedMatch("organization", "organization.name", extra.Organization()))
	}
	if extra.Publication() != "" {
		clauses = append(clauses, nestedMatch("publication", "publication.title", extra.Publication()))
	}
	if extra.Grant() != "" {
		clauses = append(clauses, nestedMatch("grant", "grant.title", extra.Grant()))
	}

	return clauses
}

func term(field, value string) map[string]any {
	return map[string]any{"term": map[string]any{field: value}}
}

func nestedMatch(path, field, value string) map[string]any {
	return map[string]any{
		"nested": map[string]any{
			"path":  path,
			"query": map[string]any{"match": map[string]any{field: value}},
		},
	}
}

func rangeClause(field string, r filter.DateRange) map[string]any {
	if r.IsZero() {
		return nil
	}
	bounds := map[string]any{}
	if r.From() != "" {
		bounds["gte"] = r.From()
	}
	if r.To() != "" {
		bounds["lte"] = r.To()
	}
	return map[string]any{"range": map[string]any{field: bounds}}
}

// Sort compiles a sort spec. Relevance order returns nil (engine
// default ranking). An explicit sort carries an identifier ascending
// tie-break so pagination is reproducible across requests within one
// result snapshot.
func Sort(s sortspec.Spec) []map[string]any {
	if s.IsRelevance() {
		return nil
	}
	return []map[string]any{
		{s.Field(): map[string]any{"order": string(s.Direction())}},
		{"identifier": map[string]any{"order": "asc"}},
	}
}

// Source compiles the projection options into an engine source filter:
// an explicit field list wins, otherwise the properties subtree is
// excluded when not requested.
func Source(opts document.Options) any {
	if len(opts.Fields) > 0 {
		return opts.Fields
	}
	if !opts.IncludeProperties {
		return map[string]any{"excludes": []string{"properties"}}
	}
	return nil
}

// Aggregations compiles a facet spec into terms aggregations capped at
// the facet top-N.
func Aggregations(spec facet.Spec) map[string]any {
	aggs := make(map[string]any, len(spec.Fields()))
	for _, f := range spec.Fields() {
		aggs[f.Name] = map[string]any{
			"terms": map[string]any{
				"field": f.EngineField,
				"size":  facet.TopN,
			},
		}
	}
	return aggs
}

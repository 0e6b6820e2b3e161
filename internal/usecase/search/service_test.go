package search

import (
	"context"
	"errors"
	"testing"

	"github.com/genomebank/searchgw/internal/domain"
	"github.com/genomebank/searchgw/internal/domain/document"
	"github.com/genomebank/searchgw/internal/domain/entrytype"
	"github.com/genomebank/searchgw/internal/domain/search/facet"
	"github.com/genomebank/searchgw/internal/domain/search/filter"
	"github.com/genomebank/searchgw/internal/domain/search/page"
	"github.com/genomebank/searchgw/internal/domain/search/sortspec"
	"github.com/genomebank/searchgw/internal/engine"
)

type stubEngine struct {
	result    *engine.SearchResult
	err       error
	lastIndex string
	lastReq   *engine.SearchRequest
	calls     int
}

func (s *stubEngine) Search(_ context.Context, index string, req *engine.SearchRequest) (*engine.SearchResult, error) {
	s.calls++
	s.lastIndex = index
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func mustPage(t *testing.T, p, pp int) page.Spec {
	t.Helper()
	spec, err := page.New(p, pp)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	return spec
}

func TestSearch_ProjectsHits(t *testing.T) {
	eng := &stubEngine{result: &engine.SearchResult{
		Total: 2,
		Hits: []document.Raw{
			{"identifier": "PRJDB1", "title": "one", "properties": map[string]any{"x": 1}},
			{"identifier": "PRJDB2", "title": "two"},
		},
	}}
	svc := New(eng)

	result, err := svc.Search(context.Background(), Request{
		Scope: CrossType(),
		Page:  mustPage(t, 1, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eng.lastIndex != engine.CrossTypeIndex {
		t.Errorf("index = %q, want %q", eng.lastIndex, engine.CrossTypeIndex)
	}
	if result.Total != 2 || len(result.Entries) != 2 {
		t.Errorf("total=%d entries=%d", result.Total, len(result.Entries))
	}
	if _, ok := result.Entries[0]["properties"]; ok {
		t.Error("properties must be projected away by default")
	}
	if result.Facets != nil {
		t.Error("facets must be nil when not requested")
	}
}

func TestSearch_TypeScopeTargetsTypeIndex(t *testing.T) {
	eng := &stubEngine{result: &engine.SearchResult{}}
	svc := New(eng)

	fc, err := filter.NewForType(entrytype.BioSample, filter.Params{})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	_, err = svc.Search(context.Background(), Request{
		Scope:  ForType(entrytype.BioSample),
		Filter: fc,
		Page:   mustPage(t, 1, 10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eng.lastIndex != "biosample" {
		t.Errorf("index = %q, want biosample", eng.lastIndex)
	}
}

func TestSearch_WithFacetsSingleEngineCall(t *testing.T) {
	eng := &stubEngine{result: &engine.SearchResult{
		Total: 1,
		Hits:  []document.Raw{{"identifier": "PRJDB1"}},
		Aggregations: map[string][]facet.Bucket{
			"type": {{Value: "bioproject", Count: 1}},
		},
	}}
	svc := New(eng)

	result, err := svc.Search(context.Background(), Request{
		Scope:      CrossType(),
		Page:       mustPage(t, 1, 10),
		WithFacets: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eng.calls != 1 {
		t.Errorf("engine calls = %d, facets must share the search call", eng.calls)
	}
	if eng.lastReq.Aggregations == nil {
		t.Error("search request must carry the facet aggregations")
	}
	if result.Facets == nil {
		t.Fatal("facets missing from result")
	}
	if result.Facets["type"][0].Value != "bioproject" {
		t.Errorf("facets = %v", result.Facets)
	}
	// Requested facets with no buckets still appear, empty.
	if buckets, ok := result.Facets["organism"]; !ok || buckets == nil {
		t.Errorf("organism facet = %v, want empty non-nil", buckets)
	}
}

func TestSearch_SortCompiled(t *testing.T) {
	eng := &stubEngine{result: &engine.SearchResult{}}
	svc := New(eng)

	sort, err := sortspec.Parse("dateModified:desc")
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if _, err := svc.Search(context.Background(), Request{
		Scope: CrossType(),
		Sort:  sort,
		Page:  mustPage(t, 1, 10),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eng.lastReq.Sort) != 2 {
		t.Errorf("sort clauses = %d, want primary + tie-break", len(eng.lastReq.Sort))
	}
}

func TestSearch_EngineFailurePropagates(t *testing.T) {
	eng := &stubEngine{err: domain.ErrUpstream}
	svc := New(eng)

	_, err := svc.Search(context.Background(), Request{Scope: CrossType(), Page: mustPage(t, 1, 10)})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestFacets_ZeroSizeRequest(t *testing.T) {
	eng := &stubEngine{result: &engine.SearchResult{
		Aggregations: map[string][]facet.Bucket{
			"organism": {{Value: "Homo sapiens", Count: 7}},
		},
	}}
	svc := New(eng)

	fc, err := filter.NewCrossType(filter.Params{Keywords: "cancer"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	result, err := svc.Facets(context.Background(), CrossType(), fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eng.lastReq.Size != 0 {
		t.Errorf("facet request size = %d, want 0", eng.lastReq.Size)
	}
	if result["organism"][0].Count != 7 {
		t.Errorf("facets = %v", result)
	}
}

func TestTypeCounts_ZeroFilled(t *testing.T) {
	eng := &stubEngine{result: &engine.SearchResult{
		Aggregations: map[string][]facet.Bucket{
			"type": {
				{Value: "bioproject", Count: 10},
				{Value: "jga-study", Count: 3},
			},
		},
	}}
	svc := New(eng)

	fc, err := filter.NewCrossType(filter.Params{})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	counts, err := svc.TypeCounts(context.Background(), fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(counts) != len(entrytype.All()) {
		t.Errorf("got %d types, want all %d", len(counts), len(entrytype.All()))
	}
	if counts[entrytype.BioProject] != 10 || counts[entrytype.JGAStudy] != 3 {
		t.Errorf("counts = %v", counts)
	}
	if counts[entrytype.SRARun] != 0 {
		t.Errorf("absent type count = %d, want 0", counts[entrytype.SRARun])
	}
}

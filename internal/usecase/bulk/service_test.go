package bulk

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/genomebank/searchgw/internal/domain"
	dombulk "github.com/genomebank/searchgw/internal/domain/bulk"
	"github.com/genomebank/searchgw/internal/domain/document"
	"github.com/genomebank/searchgw/internal/domain/entrytype"
)

type stubGetter struct {
	docs      map[string]document.Raw
	err       error
	lastIndex string
	lastIDs   []string
	calls     int
}

func (s *stubGetter) MultiGet(_ context.Context, index string, ids []string) (map[string]document.Raw, error) {
	s.calls++
	s.lastIndex = index
	s.lastIDs = ids
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]document.Raw)
	for _, id := range ids {
		if doc, ok := s.docs[id]; ok {
			out[id] = doc
		}
	}
	return out, nil
}

func TestResolve_Partition(t *testing.T) {
	getter := &stubGetter{docs: map[string]document.Raw{
		"A": {"identifier": "A"},
		"C": {"identifier": "C"},
	}}
	svc := New(getter)

	result, err := svc.Resolve(context.Background(), entrytype.BioSample, []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if getter.lastIndex != "biosample" {
		t.Errorf("index = %q", getter.lastIndex)
	}
	if len(result.Entries()) != 2 {
		t.Errorf("entries = %v", result.Entries())
	}
	if !reflect.DeepEqual(result.NotFound(), []string{"B"}) {
		t.Errorf("notFound = %v", result.NotFound())
	}
}

func TestResolve_DedupesBeforeEngineCall(t *testing.T) {
	getter := &stubGetter{docs: map[string]document.Raw{"A": {"identifier": "A"}}}
	svc := New(getter)

	result, err := svc.Resolve(context.Background(), entrytype.BioSample, []string{"A", "A", "B", "B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if getter.calls != 1 {
		t.Errorf("engine calls = %d, want 1", getter.calls)
	}
	if !reflect.DeepEqual(getter.lastIDs, []string{"A", "B"}) {
		t.Errorf("engine received ids %v, want deduplicated", getter.lastIDs)
	}
	// A duplicated id resolves once, in exactly one partition.
	if len(result.Entries()) != 1 || len(result.NotFound()) != 1 {
		t.Errorf("partition = %d found / %d missing, want 1/1", len(result.Entries()), len(result.NotFound()))
	}
}

func TestResolve_EmptyIDs(t *testing.T) {
	svc := New(&stubGetter{})

	_, err := svc.Resolve(context.Background(), entrytype.BioSample, nil)
	if !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestResolve_TooManyIDsRejectedBeforeEngineCall(t *testing.T) {
	getter := &stubGetter{}
	svc := New(getter)

	ids := make([]string, dombulk.MaxIDs+1)
	for i := range ids {
		ids[i] = fmt.Sprintf("ID%d", i)
	}

	_, err := svc.Resolve(context.Background(), entrytype.BioSample, ids)
	if !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if getter.calls != 0 {
		t.Error("the id cap must be checked before any engine call")
	}
}

func TestResolve_RawDocumentsKeepXrefs(t *testing.T) {
	getter := &stubGetter{docs: map[string]document.Raw{
		"A": {
			"identifier": "A",
			"properties": map[string]any{"kept": true},
			"dbXrefs":    []any{map[string]any{"identifier": "X"}},
		},
	}}
	svc := New(getter)

	result, err := svc.Resolve(context.Background(), entrytype.BioSample, []string{"A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := result.Entries()[0]
	if _, ok := entry["dbXrefsCount"]; ok {
		t.Error("bulk entries are raw, no count field")
	}
	if _, ok := entry["properties"]; !ok {
		t.Error("bulk entries keep the properties subtree")
	}
}

func TestResolve_EngineFailurePropagates(t *testing.T) {
	svc := New(&stubGetter{err: domain.ErrUpstream})

	_, err := svc.Resolve(context.Background(), entrytype.BioSample, []string{"A"})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestResolveStream_FoundOnly(t *testing.T) {
	getter := &stubGetter{docs: map[string]document.Raw{
		"A": {"identifier": "A"},
		"C": {"identifier": "C"},
	}}
	svc := New(getter)

	stream, err := svc.ResolveStream(context.Background(), entrytype.BioSample, []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var seen []string
	for {
		doc, ok := stream.Next()
		if !ok {
			break
		}
		seen = append(seen, doc["identifier"].(string))
	}
	if !reflect.DeepEqual(seen, []string{"A", "C"}) {
		t.Errorf("streamed %v, want found ids only in order", seen)
	}
}

// Package bulk implements multi-id entry retrieval for pipeline
// consumers, in JSON and NDJSON renditions.
package bulk

import (
	"context"
	"fmt"

	"github.com/genomebank/searchgw/internal/domain"
	dombulk "github.com/genomebank/searchgw/internal/domain/bulk"
	"github.com/genomebank/searchgw/internal/domain/document"
	"github.com/genomebank/searchgw/internal/domain/entrytype"
	"github.com/genomebank/searchgw/internal/engine"
)

// Service handles bulk entry retrieval. Bulk responses always carry
// the raw document, full dbXrefs included.
type Service struct {
	getter Getter
}

// New creates a bulk service.
func New(getter Getter) *Service {
	return &Service{getter: getter}
}

// rawOptions is the projection every bulk rendition uses.
var rawOptions = document.Options{
	IncludeProperties: true,
	XrefMode:          document.XrefRaw,
}

// Resolve fetches the requested ids in one engine round trip and
// partitions them into found and not-found sets, both in requested
// first-occurrence order.
func (s *Service) Resolve(ctx context.Context, t entrytype.Type, ids []string) (dombulk.Result, error) {
	distinct, docs, err := s.fetch(ctx, t, ids)
	if err != nil {
		return dombulk.Result{}, err
	}
	return dombulk.NewResult(distinct, docs, rawOptions), nil
}

// ResolveStream fetches the requested ids and returns a pull-based
// stream of the found documents for NDJSON serialization.
func (s *Service) ResolveStream(ctx context.Context, t entrytype.Type, ids []string) (*dombulk.Stream, error) {
	distinct, docs, err := s.fetch(ctx, t, ids)
	if err != nil {
		return nil, err
	}
	return dombulk.NewStream(distinct, docs, rawOptions), nil
}

func (s *Service) fetch(ctx context.Context, t entrytype.Type, ids []string) ([]string, map[string]document.Raw, error) {
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("%w: ids must not be empty", domain.ErrInvalidParameter)
	}
	if len(ids) > dombulk.MaxIDs {
		return nil, nil, fmt.Errorf("%w: too many ids: %d exceeds the limit of %d",
			domain.ErrInvalidParameter, len(ids), dombulk.MaxIDs)
	}

	distinct := dombulk.Dedupe(ids)

	docs, err := s.getter.MultiGet(ctx, engine.IndexFor(t), distinct)
	if err != nil {
		return nil, nil, fmt.Errorf("bulk get %s: %w", t, err)
	}
	return distinct, docs, nil
}

// Package entry implements single-entry retrieval in its four
// renditions: frontend detail, raw document, JSON-LD, and the full
// cross-reference list.
package entry

import (
	"context"
	"fmt"
	"strings"

	"github.com/genomebank/searchgw/internal/domain/document"
	"github.com/genomebank/searchgw/internal/domain/entrytype"
	"github.com/genomebank/searchgw/internal/engine"
)

// Service handles entry retrieval.
type Service struct {
	getter      Getter
	baseURL     string
	contextBase string
}

// New creates an entry service. baseURL is the externally visible API
// root used for JSON-LD @id values; contextBase is the root under
// which per-database context documents are published.
func New(getter Getter, baseURL, contextBase string) *Service {
	return &Service{
		getter:      getter,
		baseURL:     strings.TrimRight(baseURL, "/"),
		contextBase: strings.TrimRight(contextBase, "/"),
	}
}

// Detail returns one entry shaped for frontend display: the full
// document with dbXrefs truncated to xrefLimit and the exact reference
// count attached.
func (s *Service) Detail(ctx context.Context, t entrytype.Type, id string, xrefLimit int) (document.Projected, error) {
	raw, err := s.get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	return document.Project(raw, document.Options{
		IncludeProperties: true,
		XrefMode:          document.XrefTruncate,
		XrefLimit:         xrefLimit,
	}), nil
}

// Raw returns the stored document unmodified.
func (s *Service) Raw(ctx context.Context, t entrytype.Type, id string) (document.Raw, error) {
	return s.get(ctx, t, id)
}

// JSONLD returns the stored document with @context and @id fields
// added for RDF consumption.
func (s *Service) JSONLD(ctx context.Context, t entrytype.Type, id string) (document.Projected, error) {
	raw, err := s.get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	return document.Project(raw, document.Options{
		IncludeProperties: true,
		ContextURI:        s.ContextURI(t),
		EntryURI:          fmt.Sprintf("%s/entries/%s/%s", s.baseURL, t, id),
	}), nil
}

// DbXrefs returns the entry's complete cross-reference list. An entry
// without references yields an empty list, not an error.
func (s *Service) DbXrefs(ctx context.Context, t entrytype.Type, id string) ([]any, error) {
	raw, err := s.get(ctx, t, id)
	if err != nil {
		return nil, err
	}
	xrefs := raw.Xrefs()
	if xrefs == nil {
		xrefs = []any{}
	}
	return xrefs, nil
}

// ContextURI returns the JSON-LD context document URL for a type. SRA
// and JGA types share one context per family.
func (s *Service) ContextURI(t entrytype.Type) string {
	family := t.String()
	switch {
	case strings.HasPrefix(family, "sra-"):
		family = "sra"
	case strings.HasPrefix(family, "jga-"):
		family = "jga"
	}
	return fmt.Sprintf("%s/%s.jsonld", s.contextBase, family)
}

func (s *Service) get(ctx context.Context, t entrytype.Type, id string) (document.Raw, error) {
	raw, err := s.getter.GetSource(ctx, engine.IndexFor(t), id)
	if err != nil {
		return nil, fmt.Errorf("get entry %s/%s: %w", t, id, err)
	}
	return raw, nil
}

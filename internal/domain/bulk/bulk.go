// Package bulk partitions multi-id retrieval results into found and
// not-found sets with deterministic ordering.
package bulk

import (
	"github.com/genomebank/searchgw/internal/domain/document"
)

// MaxIDs caps a single bulk request. Exceeding it is a request-shape
// failure reported before any engine call.
const MaxIDs = 1000

// Dedupe returns the distinct ids in first-occurrence order. A
// duplicated id appears once in the output, so it resolves once in
// either the found or the not-found partition, never both.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Result partitions a multi-get outcome. Invariant:
// len(Entries) + len(NotFound) == len(distinct requested ids).
type Result struct {
	entries  []document.Projected
	notFound []string
}

// NewResult builds a Result from the deduplicated requested ids and
// the documents the engine returned, preserving requested order in
// both partitions. Missing ids are data, not failures.
func NewResult(ids []string, docs map[string]document.Raw, opts document.Options) Result {
	r := Result{
		entries:  make([]document.Projected, 0, len(docs)),
		notFound: []string{},
	}
	for _, id := range ids {
		raw, ok := docs[id]
		if !ok {
			r.notFound = append(r.notFound, id)
			continue
		}
		r.entries = append(r.entries, document.Project(raw, opts))
	}
	return r
}

// Entries returns the found documents in requested order.
func (r Result) Entries() []document.Projected { return r.entries }

// NotFound returns the missing ids in requested order.
func (r Result) NotFound() []string { return r.notFound }

// Stream is a finite, single-pass sequence of projected documents for
// NDJSON serialization. Projection happens lazily on each pull so the
// transport's backpressure bounds the work done; missing ids are
// skipped (NDJSON consumers already know which ids they asked for).
type Stream struct {
	ids  []string
	docs map[string]document.Raw
	opts document.Options
	pos  int
}

// NewStream creates a pull-based stream over the found documents in
// requested order.
func NewStream(ids []string, docs map[string]document.Raw, opts document.Options) *Stream {
	return &Stream{ids: ids, docs: docs, opts: opts}
}

// Next returns the next projected document, or false when exhausted.
func (s *Stream) Next() (document.Projected, bool) {
	for s.pos < len(s.ids) {
		id := s.ids[s.pos]
		s.pos++
		if raw, ok := s.docs[id]; ok {
			return document.Project(raw, s.opts), true
		}
	}
	return nil, false
}

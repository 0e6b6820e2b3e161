// Package document holds the raw engine document representation and
// the response projection pipeline.
package document

// Raw is one entry as stored by the search engine. The document schema
// is owned by the upstream converter pipeline and is opaque here except
// for the few fields projection needs.
type Raw map[string]any

// Projected is a Raw document after field allow-listing, properties
// toggling, dbXrefs handling, and optional JSON-LD enrichment.
type Projected map[string]any

// Identifier returns the entry accession identifier ("" if absent).
func (d Raw) Identifier() string {
	s, _ := d["identifier"].(string)
	return s
}

// EntryType returns the entry's database type tag ("" if absent).
func (d Raw) EntryType() string {
	s, _ := d["type"].(string)
	return s
}

// Xrefs returns the entry's cross-reference list (nil if absent).
func (d Raw) Xrefs() []any {
	xs, _ := d["dbXrefs"].([]any)
	return xs
}

// XrefMode selects the dbXrefs handling policy.
type XrefMode int

const (
	// XrefRaw passes the reference list through unmodified with no
	// count field. Used by data-access paths (raw document, JSON-LD,
	// bulk).
	XrefRaw XrefMode = iota
	// XrefTruncate truncates the list to XrefLimit entries and attaches
	// the exact total count. Used by front-end list/detail paths.
	XrefTruncate
)

// XrefLimitMax bounds the dbXrefsLimit parameter.
const (
	XrefLimitMax     = 1000
	XrefLimitDefault = 100
)

// Options control projection of one response.
type Options struct {
	// Fields restricts output to the named top-level fields when
	// non-empty. Unknown names match nothing; they are never an error
	// since a restriction can only shrink the output.
	Fields []string
	// IncludeProperties keeps the free-form properties subtree.
	IncludeProperties bool
	// XrefMode selects raw or truncated dbXrefs handling.
	XrefMode XrefMode
	// XrefLimit caps the reference list in XrefTruncate mode. Zero
	// yields an empty list while the count field keeps the true total.
	XrefLimit int
	// ContextURI and EntryURI, when both set, are injected as @context
	// and @id top-level fields. JSON-LD responses always use XrefRaw.
	ContextURI string
	EntryURI   string
}

// Project applies, in order: the properties toggle, the field
// allow-list, the dbXrefs policy, and JSON-LD enrichment. The input
// document is not modified.
func Project(raw Raw, opts Options) Projected {
	out := make(Projected, len(raw)+2)
	for k, v := range raw {
		out[k] = v
	}

	if !opts.IncludeProperties {
		delete(out, "properties")
	}

	if len(opts.Fields) > 0 {
		keep := make(map[string]struct{}, len(opts.Fields))
		for _, f := range opts.Fields {
			keep[f] = struct{}{}
		}
		for k := range out {
			if _, ok := keep[k]; !ok {
				delete(out, k)
			}
		}
	}

	// dbXrefs policy applies unless the allow-list excluded the field.
	// A reference-free entry still gets dbXrefs: [] and a zero count so
	// the response shape is stable; the count is always the exact
	// total, never truncated.
	if opts.XrefMode == XrefTruncate && fieldAllowed(opts.Fields, "dbXrefs") {
		xrefs := raw.Xrefs()
		out["dbXrefsCount"] = len(xrefs)
		out["dbXrefs"] = truncateXrefs(xrefs, opts.XrefLimit)
	}

	if opts.ContextURI != "" && opts.EntryURI != "" {
		out["@context"] = opts.ContextURI
		out["@id"] = opts.EntryURI
	}

	return out
}

func fieldAllowed(fields []string, name string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func truncateXrefs(xrefs []any, limit int) []any {
	if limit < 0 {
		limit = 0
	}
	if limit >= len(xrefs) {
		if xrefs == nil {
			return []any{}
		}
		return xrefs
	}
	return xrefs[:limit]
}

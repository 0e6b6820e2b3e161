// Package filter builds the engine-agnostic filter context shared by
// the search and facet paths. A context built once per request
// guarantees that facet counts always describe the same result set a
// co-issued search would return.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/genomebank/searchgw/internal/domain"
	"github.com/genomebank/searchgw/internal/domain/entrytype"
)

// Operator combines multiple keywords.
type Operator string

// Keyword operators. AND requires every keyword to match, OR any.
const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

// DefaultKeywordFields are searched when no field restriction is given.
var DefaultKeywordFields = []string{"identifier", "title", "name", "description"}

// DateRange is a closed date range; either endpoint may be empty.
// A reversed range (from > to) is accepted literally and simply
// matches nothing.
type DateRange struct {
	from string
	to   string
}

// From returns the inclusive lower bound ("" = unbounded).
func (r DateRange) From() string { return r.from }

// To returns the inclusive upper bound ("" = unbounded).
func (r DateRange) To() string { return r.to }

// IsZero reports whether both endpoints are empty.
func (r DateRange) IsZero() bool { return r.from == "" && r.to == "" }

// Extra holds the BioProject-specific filter set.
type Extra struct {
	organization string
	publication  string
	grant        string
	umbrella     *bool
}

// Organization returns the organization name text filter.
func (e Extra) Organization() string { return e.organization }

// Publication returns the publication title text filter.
func (e Extra) Publication() string { return e.publication }

// Grant returns the grant title text filter.
func (e Extra) Grant() string { return e.grant }

// Umbrella returns the umbrella flag (nil = unset).
func (e Extra) Umbrella() *bool { return e.umbrella }

// IsZero reports whether no extra filter is set.
func (e Extra) IsZero() bool {
	return e.organization == "" && e.publication == "" && e.grant == "" && e.umbrella == nil
}

// Params are the raw search-narrowing parameters of one request.
type Params struct {
	Keywords        string // comma-separated free-text keywords
	KeywordFields   string // comma-separated field restriction
	KeywordOperator string // AND (default) or OR
	Organism        string // taxonomy identifier, exact match

	DatePublishedFrom string // YYYY-MM-DD
	DatePublishedTo   string
	DateModifiedFrom  string
	DateModifiedTo    string

	Types string // comma-separated type tags, cross-type search only

	Organization string // BioProject only
	Publication  string // BioProject only
	Grant        string // BioProject only
	Umbrella     string // BioProject only, TRUE/FALSE case-insensitive
}

// Context is the validated, engine-agnostic filter specification.
// Immutable once built; the same Params always produce an identical
// Context.
type Context struct {
	keywords      []string
	keywordFields []string
	operator      Operator
	organism      string
	datePublished DateRange
	dateModified  DateRange
	types         []entrytype.Type
	extra         Extra
}

// NewCrossType builds a filter context for a cross-type search, where
// the types parameter is legal and type-specific filters are not.
func NewCrossType(p Params) (Context, error) {
	if err := rejectExtra(p, "cross-type search"); err != nil {
		return Context{}, err
	}
	types, err := entrytype.ParseList(p.Types)
	if err != nil {
		return Context{}, err
	}
	ctx, err := build(p)
	if err != nil {
		return Context{}, err
	}
	ctx.types = types
	return ctx, nil
}

// NewForType builds a filter context for a single-type search. The
// BioProject extra filters are accepted only when the type permits
// them; the types parameter is never legal here.
func NewForType(t entrytype.Type, p Params) (Context, error) {
	if p.Types != "" {
		return Context{}, fmt.Errorf("%w: types is not allowed on a single-type search", domain.ErrInvalidParameter)
	}
	if !t.SupportsExtraFilters() {
		if err := rejectExtra(p, string(t)); err != nil {
			return Context{}, err
		}
	}
	ctx, err := build(p)
	if err != nil {
		return Context{}, err
	}
	if t.SupportsExtraFilters() {
		extra, err := parseExtra(p)
		if err != nil {
			return Context{}, err
		}
		ctx.extra = extra
	}
	return ctx, nil
}

func build(p Params) (Context, error) {
	fields, err := parseKeywordFields(p.KeywordFields)
	if err != nil {
		return Context{}, err
	}

	op := OperatorAnd
	switch p.KeywordOperator {
	case "", string(OperatorAnd):
	case string(OperatorOr):
		op = OperatorOr
	default:
		return Context{}, fmt.Errorf(
			"%w: invalid keywordOperator %q, allowed: AND, OR", domain.ErrInvalidParameter, p.KeywordOperator)
	}

	published, err := parseDateRange("datePublished", p.DatePublishedFrom, p.DatePublishedTo)
	if err != nil {
		return Context{}, err
	}
	modified, err := parseDateRange("dateModified", p.DateModifiedFrom, p.DateModifiedTo)
	if err != nil {
		return Context{}, err
	}

	return Context{
		keywords:      parseKeywords(p.Keywords),
		keywordFields: fields,
		operator:      op,
		organism:      strings.TrimSpace(p.Organism),
		datePublished: published,
		dateModified:  modified,
	}, nil
}

// parseKeywords splits comma-separated keywords, trims whitespace and
// drops empty tokens. An all-whitespace or all-comma input yields an
// empty list, meaning "no keyword filter" rather than an error.
func parseKeywords(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseKeywordFields(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	allowed := make(map[string]struct{}, len(DefaultKeywordFields))
	for _, f := range DefaultKeywordFields {
		allowed[f] = struct{}{}
	}

	var out []string
	var invalid []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := allowed[part]; !ok {
			invalid = append(invalid, part)
			continue
		}
		out = append(out, part)
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: invalid keywordFields: %s. Allowed: %s",
			domain.ErrInvalidParameter, strings.Join(invalid, ", "), strings.Join(DefaultKeywordFields, ", "))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: invalid keywordFields: empty value. Allowed: %s",
			domain.ErrInvalidParameter, strings.Join(DefaultKeywordFields, ", "))
	}
	return out, nil
}

func parseDateRange(name, from, to string) (DateRange, error) {
	for _, v := range []string{from, to} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return DateRange{}, fmt.Errorf(
				"%w: invalid %s date %q, expected YYYY-MM-DD", domain.ErrInvalidParameter, name, v)
		}
	}
	return DateRange{from: from, to: to}, nil
}

func parseExtra(p Params) (Extra, error) {
	e := Extra{
		organization: p.Organization,
		publication:  p.Publication,
		grant:        p.Grant,
	}
	if p.Umbrella != "" {
		switch strings.ToUpper(p.Umbrella) {
		case "TRUE":
			v := true
			e.umbrella = &v
		case "FALSE":
			v := false
			e.umbrella = &v
		default:
			return Extra{}, fmt.Errorf(
				"%w: invalid umbrella value %q: must be TRUE or FALSE (case-insensitive)",
				domain.ErrInvalidParameter, p.Umbrella)
		}
	}
	return e, nil
}

func rejectExtra(p Params, scope string) error {
	var present []string
	if p.Organization != "" {
		present = append(present, "organization")
	}
	if p.Publication != "" {
		present = append(present, "publication")
	}
	if p.Grant != "" {
		present = append(present, "grant")
	}
	if p.Umbrella != "" {
		present = append(present, "umbrella")
	}
	if len(present) > 0 {
		return fmt.Errorf("%w: %s not allowed on %s",
			domain.ErrInvalidParameter, strings.Join(present, ", "), scope)
	}
	return nil
}

// Keywords returns the parsed keyword tokens (may be empty).
func (c Context) Keywords() []string { return c.keywords }

// KeywordFields returns the restricted search fields, or nil when all
// default fields are searched.
func (c Context) KeywordFields() []string { return c.keywordFields }

// EffectiveKeywordFields returns the fields a keyword clause compiles
// against: the restriction when present, the default set otherwise.
func (c Context) EffectiveKeywordFields() []string {
	if len(c.keywordFields) > 0 {
		return c.keywordFields
	}
	return DefaultKeywordFields
}

// Operator returns the keyword combination operator.
func (c Context) Operator() Operator { return c.operator }

// Organism returns the organism identifier filter ("" = unset).
func (c Context) Organism() string { return c.organism }

// DatePublished returns the publication date range.
func (c Context) DatePublished() DateRange { return c.datePublished }

// DateModified returns the modification date range.
func (c Context) DateModified() DateRange { return c.dateModified }

// Types returns the cross-type inclusion list (nil = all types).
func (c Context) Types() []entrytype.Type { return c.types }

// Extra returns the type-specific filter set.
func (c Context) Extra() Extra { return c.extra }

// IsEmpty reports whether the context narrows nothing, compiling to a
// match-everything query.
func (c Context) IsEmpty() bool {
	return len(c.keywords) == 0 &&
		c.organism == "" &&
		c.datePublished.IsZero() &&
		c.dateModified.IsZero() &&
		len(c.types) == 0 &&
		c.extra.IsZero()
}

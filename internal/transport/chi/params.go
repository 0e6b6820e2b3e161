package chi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/genomebank/searchgw/internal/domain"
	"github.com/genomebank/searchgw/internal/domain/document"
	"github.com/genomebank/searchgw/internal/domain/search/filter"
	"github.com/genomebank/searchgw/internal/domain/search/page"
	"github.com/genomebank/searchgw/internal/domain/search/sortspec"
)

// filterParams collects the raw search-narrowing query parameters.
// Validation happens in the filter context constructors.
func filterParams(q url.Values) filter.Params {
	return filter.Params{
		Keywords:        q.Get("keywords"),
		KeywordFields:   q.Get("keywordFields"),
		KeywordOperator: q.Get("keywordOperator"),
		Organism:        q.Get("organism"),

		DatePublishedFrom: q.Get("datePublishedFrom"),
		DatePublishedTo:   q.Get("datePublishedTo"),
		DateModifiedFrom:  q.Get("dateModifiedFrom"),
		DateModifiedTo:    q.Get("dateModifiedTo"),

		Types: q.Get("types"),

		Organization: q.Get("organization"),
		Publication:  q.Get("publication"),
		Grant:        q.Get("grant"),
		Umbrella:     q.Get("umbrella"),
	}
}

// parsePage builds the pagination spec. Malformed numbers are shape
// errors; range and deep-paging checks happen in page.New.
func parsePage(q url.Values) (page.Spec, error) {
	pageNum, err := intParam(q, "page", 1)
	if err != nil {
		return page.Spec{}, err
	}
	perPage, err := intParam(q, "perPage", page.DefaultPerPage)
	if err != nil {
		return page.Spec{}, err
	}
	return page.New(pageNum, perPage)
}

// parseSort builds the sort spec from the sort parameter.
func parseSort(q url.Values) (sortspec.Spec, error) {
	return sortspec.Parse(q.Get("sort"))
}

// parseListOptions builds the projection options for list responses:
// optional field allow-list, properties toggle, and truncated dbXrefs.
func parseListOptions(q url.Values) (document.Options, error) {
	includeProperties, err := boolParam(q, "includeProperties", false)
	if err != nil {
		return document.Options{}, err
	}
	limit, err := xrefLimitParam(q)
	if err != nil {
		return document.Options{}, err
	}
	return document.Options{
		Fields:            splitFields(q.Get("fields")),
		IncludeProperties: includeProperties,
		XrefMode:          document.XrefTruncate,
		XrefLimit:         limit,
	}, nil
}

// xrefLimitParam parses dbXrefsLimit within its 0..1000 window.
func xrefLimitParam(q url.Values) (int, error) {
	limit, err := intParam(q, "dbXrefsLimit", document.XrefLimitDefault)
	if err != nil {
		return 0, err
	}
	if limit < 0 || limit > document.XrefLimitMax {
		return 0, fmt.Errorf("%w: dbXrefsLimit must be between 0 and %d, got %d",
			domain.ErrInvalidParameter, document.XrefLimitMax, limit)
	}
	return limit, nil
}

func splitFields(s string) []string {
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

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidParameter, name, raw)
	}
	return v, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false, got %q", domain.ErrInvalidParameter, name, raw)
	}
	return v, nil
}

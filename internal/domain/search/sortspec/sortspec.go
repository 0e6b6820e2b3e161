// Package sortspec parses the sort parameter against the sortable
// field allow-list.
package sortspec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/genomebank/searchgw/internal/domain"
)

// Direction orders results ascending or descending.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// sortableFields are the fields that may appear in a sort parameter.
// Everything else sorts by engine relevance only.
var sortableFields = map[string]struct{}{
	"datePublished": {},
	"dateModified":  {},
}

// Spec is an optional (field, direction) pair. The zero value means
// relevance order (engine default ranking).
type Spec struct {
	field     string
	direction Direction
}

// Parse validates a "{field}:{direction}" sort parameter. An empty
// parameter yields the relevance-order zero value. An unknown field or
// direction is a validation failure, never silently ignored.
func Parse(s string) (Spec, error) {
	if s == "" {
		return Spec{}, nil
	}

	field, direction, ok := strings.Cut(s, ":")
	if !ok || strings.Contains(direction, ":") {
		return Spec{}, fmt.Errorf(
			"%w: invalid sort format %q, expected '{field}:{direction}'", domain.ErrInvalidParameter, s)
	}
	if _, known := sortableFields[field]; !known {
		return Spec{}, fmt.Errorf(
			"%w: invalid sort field %q, allowed: %s", domain.ErrInvalidParameter, field, allowedFields())
	}
	if direction != string(Asc) && direction != string(Desc) {
		return Spec{}, fmt.Errorf(
			"%w: invalid sort direction %q, allowed: asc, desc", domain.ErrInvalidParameter, direction)
	}

	return Spec{field: field, direction: Direction(direction)}, nil
}

// IsRelevance reports whether results should use engine default
// relevance ranking.
func (s Spec) IsRelevance() bool { return s.field == "" }

// Field returns the sort field ("" for relevance order).
func (s Spec) Field() string { return s.field }

// Direction returns the sort direction.
func (s Spec) Direction() Direction { return s.direction }

// String re-derives the raw parameter form.
func (s Spec) String() string {
	if s.IsRelevance() {
		return ""
	}
	return s.field + ":" + string(s.direction)
}

func allowedFields() string {
	names := make([]string, 0, len(sortableFields))
	for f := range sortableFields {
		names = append(names, f)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Package entrytype defines the closed set of database entry types and
// the per-type capability table for type-specific filters and facets.
package entrytype

import (
	"fmt"
	"strings"

	"github.com/genomebank/searchgw/internal/domain"
)

// Type is a database entry type tag.
type Type string

// The twelve supported database types.
const (
	BioProject    Type = "bioproject"
	BioSample     Type = "biosample"
	SRASubmission Type = "sra-submission"
	SRAStudy      Type = "sra-study"
	SRAExperiment Type = "sra-experiment"
	SRARun        Type = "sra-run"
	SRASample     Type = "sra-sample"
	SRAAnalysis   Type = "sra-analysis"
	JGAStudy      Type = "jga-study"
	JGADataset    Type = "jga-dataset"
	JGADAC        Type = "jga-dac"
	JGAPolicy     Type = "jga-policy"
)

var all = []Type{
	BioProject, BioSample,
	SRASubmission, SRAStudy, SRAExperiment, SRARun, SRASample, SRAAnalysis,
	JGAStudy, JGADataset, JGADAC, JGAPolicy,
}

// All returns every supported type in declaration order.
func All() []Type {
	out := make([]Type, len(all))
	copy(out, all)
	return out
}

// IsValid reports whether t is one of the supported types.
func (t Type) IsValid() bool {
	for _, v := range all {
		if t == v {
			return true
		}
	}
	return false
}

// String returns the type tag.
func (t Type) String() string { return string(t) }

// Parse validates a raw type tag. An unknown tag maps to ErrNotFound:
// the type segment is part of the URL path, so an unknown type is an
// unknown resource, not a malformed parameter.
func Parse(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown database type %q", domain.ErrNotFound, s)
	}
	return t, nil
}

// ParseList splits a comma-separated list of type tags. Empty tokens
// are dropped; an unknown tag is a parameter error (the list arrives as
// a query parameter, unlike the path segment handled by Parse).
func ParseList(s string) ([]Type, error) {
	if s == "" {
		return nil, nil
	}
	var out []Type
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t := Type(part)
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown database type %q in types", domain.ErrInvalidParameter, part)
		}
		out = append(out, t)
	}
	return out, nil
}

// SupportsExtraFilters reports whether the type accepts the
// organization/publication/grant/umbrella filter set. Only BioProject
// carries these fields in its documents.
func (t Type) SupportsExtraFilters() bool {
	return t == BioProject
}

// ExtraFacet returns the name of the type-conditional facet field, or
// "" when the type has none. Only BioProject distinguishes umbrella
// projects via objectType.
func (t Type) ExtraFacet() string {
	if t == BioProject {
		return "objectType"
	}
	return ""
}

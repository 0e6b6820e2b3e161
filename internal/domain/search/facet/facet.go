// Package facet defines the facet field sets and the client-facing
// facet result shape.
package facet

import (
	"sort"

	"github.com/genomebank/searchgw/internal/domain/entrytype"
)

// TopN caps the number of buckets per facet. Facets are advisory
// breakdowns, so the cap is not signaled to the client.
const TopN = 50

// Field names the facets by their engine aggregation field.
type Field struct {
	Name        string
	EngineField string
}

// commonFields are available regardless of the active type filter.
var commonFields = []Field{
	{Name: "organism", EngineField: "organism.name"},
	{Name: "status", EngineField: "status"},
	{Name: "accessibility", EngineField: "accessibility"},
}

// typeField is the cross-type distribution facet, only meaningful when
// multiple types are searched.
var typeField = Field{Name: "type", EngineField: "type"}

// objectTypeField is the BioProject umbrella classification facet.
var objectTypeField = Field{Name: "objectType", EngineField: "objectType"}

// Spec is the set of facet fields requested for one search scope.
type Spec struct {
	fields []Field
}

// CrossTypeSpec returns the facet set for a cross-type search: the
// common facets plus the type distribution.
func CrossTypeSpec() Spec {
	return Spec{fields: append([]Field{typeField}, commonFields...)}
}

// TypeSpec returns the facet set for a single-type search: the common
// facets plus the type-conditional facet when the type defines one.
func TypeSpec(t entrytype.Type) Spec {
	fields := make([]Field, len(commonFields), len(commonFields)+1)
	copy(fields, commonFields)
	if t.ExtraFacet() != "" {
		fields = append(fields, objectTypeField)
	}
	return Spec{fields: fields}
}

// TypeCountSpec returns a facet set holding only the type
// distribution, used for per-type hit counting.
func TypeCountSpec() Spec {
	return Spec{fields: []Field{typeField}}
}

// Fields returns the requested facet fields.
func (s Spec) Fields() []Field { return s.fields }

// Bucket is one (value, count) pair of a facet.
type Bucket struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// Result maps facet names to their ordered buckets.
type Result map[string][]Bucket

// FromRaw reshapes raw engine buckets into the client facet format.
// Buckets are ordered by descending count, then ascending value for
// ties, and capped at TopN. Requested facets absent from the raw
// aggregations yield empty (non-nil) bucket lists so the response
// shape is stable.
func FromRaw(spec Spec, raw map[string][]Bucket) Result {
	out := make(Result, len(spec.fields))
	for _, f := range spec.fields {
		buckets := append([]Bucket(nil), raw[f.Name]...)
		sort.SliceStable(buckets, func(i, j int) bool {
			if buckets[i].Count != buckets[j].Count {
				return buckets[i].Count > buckets[j].Count
			}
			return buckets[i].Value < buckets[j].Value
		})
		if len(buckets) > TopN {
			buckets = buckets[:TopN]
		}
		if buckets == nil {
			buckets = []Bucket{}
		}
		out[f.Name] = buckets
	}
	return out
}

package core

import (
	"slices"

	"github.com/bytedance/sonic"
)

// Entity categories produced by the extraction cascade.
const (
	CategoryPerson       = "PER"
	CategoryOrganization = "ORG"
	CategoryLocation     = "LOC"
	CategoryMisc         = "MISC"
	CategoryAmounts      = "montants"
	CategoryDates        = "dates"
)

// CanonicalCategories is the category set kept by filtered extraction.
var CanonicalCategories = []string{
	CategoryPerson,
	CategoryOrganization,
	CategoryAmounts,
	CategoryDates,
}

// EntityBundle maps an entity category to its deduplicated values.
type EntityBundle map[string][]string

// Has reports whether the category holds at least one value.
func (b EntityBundle) Has(category string) bool {
	return len(b[category]) > 0
}

// Add appends values to a category, skipping empty strings and duplicates.
func (b EntityBundle) Add(category string, values ...string) {
	existing := b[category]
	for _, v := range values {
		if v == "" || slices.Contains(existing, v) {
			continue
		}
		existing = append(existing, v)
	}
	if len(existing) > 0 {
		b[category] = existing
	}
}

// FillMissing copies categories from other that are empty in b.
func (b EntityBundle) FillMissing(other EntityBundle) {
	for cat, values := range other {
		if !b.Has(cat) {
			b.Add(cat, values...)
		}
	}
}

// Filter returns a bundle restricted to the given categories with empty
// categories dropped.
func (b EntityBundle) Filter(categories ...string) EntityBundle {
	out := EntityBundle{}
	for _, cat := range categories {
		if b.Has(cat) {
			out[cat] = slices.Clone(b[cat])
		}
	}
	return out
}

// Clone returns a deep copy.
func (b EntityBundle) Clone() EntityBundle {
	if b == nil {
		return nil
	}
	out := make(EntityBundle, len(b))
	for k, v := range b {
		out[k] = slices.Clone(v)
	}
	return out
}

// EntityValue is a session entity slot: either a list of values or a scalar.
type EntityValue struct {
	List   []string
	Scalar any
	IsList bool
}

// ListValue builds a list-valued entity, dropping duplicates.
func ListValue(values ...string) EntityValue {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return EntityValue{List: out, IsList: true}
}

// ScalarValue builds a scalar entity.
func ScalarValue(v any) EntityValue {
	return EntityValue{Scalar: v}
}

func (v EntityValue) clone() EntityValue {
	v.List = slices.Clone(v.List)
	return v
}

// MarshalJSON encodes list values as JSON arrays and scalars as themselves.
func (v EntityValue) MarshalJSON() ([]byte, error) {
	if v.IsList {
		if v.List == nil {
			return []byte("[]"), nil
		}
		return sonic.Marshal(v.List)
	}
	return sonic.Marshal(v.Scalar)
}

// UnmarshalJSON accepts an array of strings or any scalar.
func (v *EntityValue) UnmarshalJSON(data []byte) error {
	var list []string
	if err := sonic.Unmarshal(data, &list); err == nil && len(data) > 0 && data[0] == '[' {
		*v = EntityValue{List: list, IsList: true}
		return nil
	}
	var scalar any
	if err := sonic.Unmarshal(data, &scalar); err != nil {
		return err
	}
	*v = EntityValue{Scalar: scalar}
	return nil
}

// MergeEntities merges src into dst and returns dst. Categories that are
// lists on both sides become their order-preserving union. Any other
// category in src overwrites the value in dst.
func MergeEntities(dst, src map[string]EntityValue) map[string]EntityValue {
	if dst == nil {
		dst = make(map[string]EntityValue, len(src))
	}
	for cat, incoming := range src {
		current, ok := dst[cat]
		if ok && current.IsList && incoming.IsList {
			merged := slices.Clone(current.List)
			for _, val := range incoming.List {
				if !slices.Contains(merged, val) {
					merged = append(merged, val)
				}
			}
			dst[cat] = EntityValue{List: merged, IsList: true}
			continue
		}
		dst[cat] = incoming.clone()
	}
	return dst
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeEntities(t *testing.T) {
	t.Run("list union preserves order and dedups", func(t *testing.T) {
		a := map[string]EntityValue{"PER": ListValue("Alice", "Bob")}
		b := map[string]EntityValue{"PER": ListValue("Bob", "Chloé")}

		merged := MergeEntities(a, b)

		assert.Equal(t, []string{"Alice", "Bob", "Chloé"}, merged["PER"].List)
	})

	t.Run("scalar overwrites", func(t *testing.T) {
		a := map[string]EntityValue{"title": ScalarValue("old")}
		b := map[string]EntityValue{"title": ScalarValue("new")}

		merged := MergeEntities(a, b)

		assert.Equal(t, "new", merged["title"].Scalar)
	})

	t.Run("scalar replaces list", func(t *testing.T) {
		a := map[string]EntityValue{"PER": ListValue("Alice")}
		b := map[string]EntityValue{"PER": ScalarValue("Bob")}

		merged := MergeEntities(a, b)

		assert.False(t, merged["PER"].IsList)
		assert.Equal(t, "Bob", merged["PER"].Scalar)
	})

	t.Run("new categories are added", func(t *testing.T) {
		merged := MergeEntities(nil, map[string]EntityValue{"ORG": ListValue("ACME")})

		assert.Equal(t, []string{"ACME"}, merged["ORG"].List)
	})

	t.Run("repeated merge is idempotent", func(t *testing.T) {
		a := map[string]EntityValue{"PER": ListValue("Alice")}
		b := map[string]EntityValue{"PER": ListValue("Alice", "Bob")}

		once := MergeEntities(MergeEntities(map[string]EntityValue{}, a), b)
		twice := MergeEntities(MergeEntities(MergeEntities(map[string]EntityValue{}, a), b), b)

		assert.Equal(t, once, twice)
	})
}

func TestEntityBundle(t *testing.T) {
	b := EntityBundle{}
	b.Add(CategoryPerson, "Alice", "", "Alice", "Bob")
	b.Add(CategoryDates)

	assert.Equal(t, []string{"Alice", "Bob"}, b[CategoryPerson])
	assert.True(t, b.Has(CategoryPerson))
	assert.False(t, b.Has(CategoryDates))
	_, present := b[CategoryDates]
	assert.False(t, present)

	b.FillMissing(EntityBundle{CategoryPerson: {"Zoé"}, CategoryOrganization: {"ACME"}})
	assert.Equal(t, []string{"Alice", "Bob"}, b[CategoryPerson])
	assert.Equal(t, []string{"ACME"}, b[CategoryOrganization])

	b[CategoryLocation] = []string{"Paris"}
	filtered := b.Filter(CanonicalCategories...)
	assert.NotContains(t, filtered, CategoryLocation)
	assert.Len(t, filtered, 2)
}

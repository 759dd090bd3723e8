package valueobjects_test

import (
	"testing"

	"planner-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
)

func TestParseModuleKind_KnownKind(t *testing.T) {
	kind := valueobjects.ParseModuleKind("calendar")

	assert.Equal(t, valueobjects.KindCalendar, kind)
	assert.True(t, kind.IsValid())
}

func TestParseModuleKind_UnknownValueFallsBack(t *testing.T) {
	for _, raw := range []string{"", "shopping_list", "CALENDAR", "memo "} {
		kind := valueobjects.ParseModuleKind(raw)
		assert.Equal(t, valueobjects.FallbackKind, kind, "raw value %q", raw)
	}
}

func TestTaxonomy_IsClosed(t *testing.T) {
	kinds := valueobjects.Taxonomy()

	assert.Len(t, kinds, 13)
	assert.Contains(t, kinds, valueobjects.FallbackKind)
	for _, k := range kinds {
		assert.True(t, valueobjects.IsKnownKind(k.String()))
	}
}

func TestTaxonomy_ReturnsCopy(t *testing.T) {
	kinds := valueobjects.Taxonomy()
	kinds[0] = valueobjects.ModuleKind("mutated")

	assert.Equal(t, valueobjects.KindMemo, valueobjects.Taxonomy()[0])
}

func TestTaxonomyStrings_MatchesTaxonomy(t *testing.T) {
	kinds := valueobjects.Taxonomy()
	names := valueobjects.TaxonomyStrings()

	assert.Len(t, names, len(kinds))
	for i, k := range kinds {
		assert.Equal(t, k.String(), names[i])
	}
}

func TestParseModuleKind_LifestyleKindsAreTaxonomyMembers(t *testing.T) {
	// These kinds route generically for now but must never collapse to
	// the fallback: a "food" verdict is a food entry, not a memo.
	for raw, want := range map[string]valueobjects.ModuleKind{
		"food": valueobjects.KindFood,
		"gym":  valueobjects.KindGym,
		"work": valueobjects.KindWork,
	} {
		assert.Equal(t, want, valueobjects.ParseModuleKind(raw))
	}
}

package valueobjects

// ModuleKind identifies which module owns an entry. The set is closed:
// the classifier may only ever assign one of these values, and anything
// it returns outside the set collapses to KindMemo.
type ModuleKind string

const (
	KindMemo           ModuleKind = "memo"
	KindCalendar       ModuleKind = "calendar"
	KindTask           ModuleKind = "task"
	KindRemember       ModuleKind = "remember"
	KindJournal        ModuleKind = "journal"
	KindDiary          ModuleKind = "diary"
	KindMood           ModuleKind = "mood"
	KindIdea           ModuleKind = "idea"
	KindExpense        ModuleKind = "expense"
	KindFood           ModuleKind = "food"
	KindGym            ModuleKind = "gym"
	KindWork           ModuleKind = "work"
	KindScreenshotNote ModuleKind = "screenshot_note"
)

// FallbackKind is the deterministic fallback for unknown or low-confidence
// classifications.
const FallbackKind = KindMemo

// taxonomy is the closed set of module kinds, in classifier prompt order.
var taxonomy = []ModuleKind{
	KindMemo,
	KindCalendar,
	KindTask,
	KindRemember,
	KindJournal,
	KindDiary,
	KindMood,
	KindIdea,
	KindExpense,
	KindFood,
	KindGym,
	KindWork,
	KindScreenshotNote,
}

// Taxonomy returns the closed set of module kinds
func Taxonomy() []ModuleKind {
	kinds := make([]ModuleKind, len(taxonomy))
	copy(kinds, taxonomy)
	return kinds
}

// TaxonomyStrings returns the taxonomy as plain strings for adapter prompts
func TaxonomyStrings() []string {
	names := make([]string, len(taxonomy))
	for i, k := range taxonomy {
		names[i] = string(k)
	}
	return names
}

// IsKnownKind reports whether the value is a member of the taxonomy
func IsKnownKind(value string) bool {
	for _, k := range taxonomy {
		if string(k) == value {
			return true
		}
	}
	return false
}

// ParseModuleKind maps a raw classifier value onto the taxonomy. Unknown
// values deterministically become FallbackKind, never an error: the
// pipeline must always have a routable kind.
func ParseModuleKind(value string) ModuleKind {
	if IsKnownKind(value) {
		return ModuleKind(value)
	}
	return FallbackKind
}

// String returns the string representation of the kind
func (k ModuleKind) String() string {
	return string(k)
}

// IsValid reports whether the kind is a taxonomy member
func (k ModuleKind) IsValid() bool {
	return IsKnownKind(string(k))
}

package console

import "strings"

// TriState is the per-key filter state. Cleared means no opinion;
// Included and Excluded build the derived inclusion/exclusion sets.
type TriState int8

const (
	TriCleared TriState = iota
	TriIncluded
	TriExcluded
)

// Cycle advances Cleared → Included → Excluded → Cleared.
func (t TriState) Cycle() TriState {
	switch t {
	case TriCleared:
		return TriIncluded
	case TriIncluded:
		return TriExcluded
	}
	return TriCleared
}

// Filter selects entries by level, category and substring search. The
// tri-state maps are the single source of truth; the derived
// include/exclude sets are rebuilt lazily whenever the filter changes,
// so the two representations cannot diverge.
type Filter struct {
	levels        map[Level]TriState
	categories    map[string]TriState
	search        string
	searchLower   string
	caseSensitive bool

	revision   uint64
	derivedRev uint64

	includeLevels     map[Level]struct{}
	excludeLevels     map[Level]struct{}
	includeCategories map[string]struct{}
	excludeCategories map[string]struct{}
}

// NewFilter returns an empty filter matching everything.
func NewFilter() *Filter {
	return &Filter{
		levels:     make(map[Level]TriState),
		categories: make(map[string]TriState),
	}
}

// SetLevelState sets the tri-state for one level.
func (f *Filter) SetLevelState(level Level, state TriState) {
	if state == TriCleared {
		delete(f.levels, level)
	} else {
		f.levels[level] = state
	}
	f.revision++
}

// LevelState returns the tri-state for one level.
func (f *Filter) LevelState(level Level) TriState { return f.levels[level] }

// CycleLevel advances the tri-state for one level.
func (f *Filter) CycleLevel(level Level) TriState {
	next := f.levels[level].Cycle()
	f.SetLevelState(level, next)
	return next
}

// SetCategoryState sets the tri-state for one category, matched exactly
// as given.
func (f *Filter) SetCategoryState(category string, state TriState) {
	if state == TriCleared {
		delete(f.categories, category)
	} else {
		f.categories[category] = state
	}
	f.revision++
}

// CategoryState returns the tri-state for one category.
func (f *Filter) CategoryState(category string) TriState { return f.categories[category] }

// SetSearch sets the literal substring search term. The term is not a
// pattern: matching is plain substring containment, for predictable
// performance and no injection surface.
func (f *Filter) SetSearch(term string) {
	f.search = term
	f.searchLower = strings.ToLower(term)
	f.revision++
}

// Search returns the active search term.
func (f *Filter) Search() string { return f.search }

// SetCaseSensitive toggles case-sensitive search matching.
func (f *Filter) SetCaseSensitive(on bool) {
	f.caseSensitive = on
	f.revision++
}

// CaseSensitive reports the search case mode.
func (f *Filter) CaseSensitive() bool { return f.caseSensitive }

// Clear resets every constraint.
func (f *Filter) Clear() {
	f.levels = make(map[Level]TriState)
	f.categories = make(map[string]TriState)
	f.search = ""
	f.searchLower = ""
	f.revision++
}

// Active reports whether any constraint is set.
func (f *Filter) Active() bool {
	return len(f.levels) > 0 || len(f.categories) > 0 || f.search != ""
}

// Revision increments on every mutation; consumers compare revisions to
// detect stale derived state.
func (f *Filter) Revision() uint64 { return f.revision }

// Matches evaluates one entry: exclusion short-circuits first, explicit
// inclusion next (an empty included set means no restriction, not
// reject-all), substring search last.
func (f *Filter) Matches(e *Entry) bool {
	f.ensureDerived()

	if _, excluded := f.excludeLevels[e.Level]; excluded {
		return false
	}
	if _, excluded := f.excludeCategories[e.Category]; excluded {
		return false
	}
	if len(f.includeLevels) > 0 {
		if _, ok := f.includeLevels[e.Level]; !ok {
			return false
		}
	}
	if len(f.includeCategories) > 0 {
		if _, ok := f.includeCategories[e.Category]; !ok {
			return false
		}
	}
	if f.search != "" {
		if f.caseSensitive {
			return strings.Contains(e.Message, f.search) ||
				strings.Contains(e.Category, f.search)
		}
		return strings.Contains(e.messageLower, f.searchLower) ||
			strings.Contains(e.categoryLower, f.searchLower)
	}
	return true
}

func (f *Filter) ensureDerived() {
	if f.derivedRev == f.revision && f.includeLevels != nil {
		return
	}
	f.includeLevels = make(map[Level]struct{})
	f.excludeLevels = make(map[Level]struct{})
	f.includeCategories = make(map[string]struct{})
	f.excludeCategories = make(map[string]struct{})
	for level, state := range f.levels {
		switch state {
		case TriIncluded:
			f.includeLevels[level] = struct{}{}
		case TriExcluded:
			f.excludeLevels[level] = struct{}{}
		}
	}
	for category, state := range f.categories {
		switch state {
		case TriIncluded:
			f.includeCategories[category] = struct{}{}
		case TriExcluded:
			f.excludeCategories[category] = struct{}{}
		}
	}
	f.derivedRev = f.revision
}

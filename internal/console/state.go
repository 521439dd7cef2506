package console

// DirtyState classifies the recomputation the filtering layer owes the
// display, in increasing priority. Each state subsumes the ones below.
type DirtyState int8

const (
	StateClean DirtyState = iota
	StateEntriesDirty
	StateFiltersDirty
	StateCategoriesDirty
	StateFullRefresh
)

func (s DirtyState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateEntriesDirty:
		return "entries_dirty"
	case StateFiltersDirty:
		return "filters_dirty"
	case StateCategoriesDirty:
		return "categories_dirty"
	case StateFullRefresh:
		return "full_refresh"
	}
	return "unknown"
}

// StateManager tracks dirtiness between producers (ingestion, filter
// edits, category discovery) and the per-tick consumer. Marks only ever
// promote the coarse state; the side flags persist independently so the
// consumer never drops work it has not serviced yet.
type StateManager struct {
	hasNewEntries        bool
	filtersDirty         bool
	categoriesNeedUpdate bool
	fullRefresh          bool
}

// State reports the highest-priority dirty state currently raised.
func (m *StateManager) State() DirtyState {
	switch {
	case m.fullRefresh:
		return StateFullRefresh
	case m.categoriesNeedUpdate:
		return StateCategoriesDirty
	case m.filtersDirty:
		return StateFiltersDirty
	case m.hasNewEntries:
		return StateEntriesDirty
	}
	return StateClean
}

// MarkEntriesDirty records that new entries arrived.
func (m *StateManager) MarkEntriesDirty() { m.hasNewEntries = true }

// MarkFiltersDirty records that the filter spec changed.
func (m *StateManager) MarkFiltersDirty() { m.filtersDirty = true }

// MarkCategoriesDirty records that a new category was discovered.
func (m *StateManager) MarkCategoriesDirty() { m.categoriesNeedUpdate = true }

// MarkFullRefresh unconditionally jumps to the top state.
func (m *StateManager) MarkFullRefresh() {
	m.fullRefresh = true
	m.hasNewEntries = true
	m.filtersDirty = true
	m.categoriesNeedUpdate = true
}

// HasNewEntries reports the new-entries side flag.
func (m *StateManager) HasNewEntries() bool { return m.hasNewEntries }

// FiltersDirty reports the filter side flag.
func (m *StateManager) FiltersDirty() bool { return m.filtersDirty }

// CategoriesNeedUpdate reports the category side flag.
func (m *StateManager) CategoriesNeedUpdate() bool { return m.categoriesNeedUpdate }

// ClearNewEntries resets only the new-entries flag; the coarse state is
// recomputed from the remaining flags.
func (m *StateManager) ClearNewEntries() { m.hasNewEntries = false }

// ClearFiltersDirty resets only the filter flag.
func (m *StateManager) ClearFiltersDirty() { m.filtersDirty = false }

// ClearCategoriesDirty resets only the category flag.
func (m *StateManager) ClearCategoriesDirty() { m.categoriesNeedUpdate = false }

// ClearDirty resets to CLEAN unconditionally.
func (m *StateManager) ClearDirty() {
	m.hasNewEntries = false
	m.filtersDirty = false
	m.categoriesNeedUpdate = false
	m.fullRefresh = false
}

package console

import "testing"

func TestMarksOnlyPromote(t *testing.T) {
	m := &StateManager{}
	if m.State() != StateClean {
		t.Fatalf("initial state = %v, want clean", m.State())
	}

	m.MarkEntriesDirty()
	if m.State() != StateEntriesDirty {
		t.Fatalf("state = %v, want entries_dirty", m.State())
	}

	m.MarkCategoriesDirty()
	if m.State() != StateCategoriesDirty {
		t.Fatalf("state = %v, want categories_dirty", m.State())
	}

	// A lower-priority mark never demotes.
	m.MarkFiltersDirty()
	if m.State() != StateCategoriesDirty {
		t.Fatalf("state = %v, want categories_dirty after lower mark", m.State())
	}

	m.MarkFullRefresh()
	if m.State() != StateFullRefresh {
		t.Fatalf("state = %v, want full_refresh", m.State())
	}
}

func TestSideFlagsPersistIndependently(t *testing.T) {
	m := &StateManager{}
	m.MarkEntriesDirty()
	m.MarkFiltersDirty()
	m.MarkCategoriesDirty()

	// Servicing only the category work must not drop the others.
	m.ClearCategoriesDirty()
	if !m.FiltersDirty() {
		t.Fatalf("filters flag dropped by category clear")
	}
	if !m.HasNewEntries() {
		t.Fatalf("new-entries flag dropped by category clear")
	}
	if m.State() != StateFiltersDirty {
		t.Fatalf("state = %v, want filters_dirty", m.State())
	}

	m.ClearFiltersDirty()
	if m.State() != StateEntriesDirty {
		t.Fatalf("state = %v, want entries_dirty", m.State())
	}

	m.ClearNewEntries()
	if m.State() != StateClean {
		t.Fatalf("state = %v, want clean", m.State())
	}
}

func TestClearDirtyResetsEverything(t *testing.T) {
	m := &StateManager{}
	m.MarkFullRefresh()
	m.ClearDirty()

	if m.State() != StateClean {
		t.Fatalf("state = %v, want clean", m.State())
	}
	if m.HasNewEntries() || m.FiltersDirty() || m.CategoriesNeedUpdate() {
		t.Fatalf("side flags survived ClearDirty")
	}
}

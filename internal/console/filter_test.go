package console

import "testing"

func entry(level Level, category, message string) *Entry {
	return NewEntry(0, level, category, message, nil)
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	f := NewFilter()
	if !f.Matches(entry(LevelTrace, "Net", "hello")) {
		t.Fatalf("empty filter rejected an entry")
	}
	if f.Active() {
		t.Fatalf("empty filter reports Active")
	}
}

func TestExclusionShortCircuits(t *testing.T) {
	f := NewFilter()
	f.SetLevelState(LevelDebug, TriExcluded)
	f.SetCategoryState("Chatty", TriExcluded)
	// Even an explicitly included level is rejected when its category
	// is excluded.
	f.SetLevelState(LevelInfo, TriIncluded)

	if f.Matches(entry(LevelDebug, "Net", "x")) {
		t.Fatalf("excluded level matched")
	}
	if f.Matches(entry(LevelInfo, "Chatty", "x")) {
		t.Fatalf("excluded category matched")
	}
	if !f.Matches(entry(LevelInfo, "Net", "x")) {
		t.Fatalf("included level in allowed category rejected")
	}
}

func TestEmptyInclusionAllowsAll(t *testing.T) {
	f := NewFilter()
	// Only exclusions set: the empty included set means "no
	// restriction", not "reject all".
	f.SetLevelState(LevelError, TriExcluded)

	if !f.Matches(entry(LevelInfo, "Net", "x")) {
		t.Fatalf("entry rejected despite empty inclusion set")
	}
}

func TestInclusionRestrictsWhenNonEmpty(t *testing.T) {
	f := NewFilter()
	f.SetLevelState(LevelError, TriIncluded)

	if f.Matches(entry(LevelInfo, "Net", "x")) {
		t.Fatalf("non-included level matched")
	}
	if !f.Matches(entry(LevelError, "Net", "x")) {
		t.Fatalf("included level rejected")
	}
}

func TestSearchMatchesMessageOrCategory(t *testing.T) {
	f := NewFilter()
	f.SetSearch("net")

	if !f.Matches(entry(LevelInfo, "Network", "connected")) {
		t.Fatalf("category substring not matched")
	}
	if !f.Matches(entry(LevelInfo, "Disk", "network unreachable")) {
		t.Fatalf("message substring not matched")
	}
	if f.Matches(entry(LevelInfo, "Disk", "mounted")) {
		t.Fatalf("non-matching entry matched")
	}
}

func TestSearchCaseSensitivity(t *testing.T) {
	f := NewFilter()
	f.SetSearch("ERR")

	if !f.Matches(entry(LevelInfo, "Net", "deferred")) {
		t.Fatalf("case-insensitive search missed mixed-case text")
	}

	f.SetCaseSensitive(true)
	if f.Matches(entry(LevelInfo, "Net", "deferred")) {
		t.Fatalf("case-sensitive search matched lower-case text")
	}
	if !f.Matches(entry(LevelInfo, "Net", "ERROR: x")) {
		t.Fatalf("case-sensitive search missed exact text")
	}
}

func TestSearchIsLiteralNotPattern(t *testing.T) {
	f := NewFilter()
	f.SetSearch("a.*b")

	if f.Matches(entry(LevelInfo, "Net", "aXXb")) {
		t.Fatalf("search term behaved like a regular expression")
	}
	if !f.Matches(entry(LevelInfo, "Net", "literal a.*b here")) {
		t.Fatalf("literal occurrence of the term not matched")
	}
}

func TestCycleLevel(t *testing.T) {
	f := NewFilter()
	if got := f.CycleLevel(LevelInfo); got != TriIncluded {
		t.Fatalf("first cycle = %v, want included", got)
	}
	if got := f.CycleLevel(LevelInfo); got != TriExcluded {
		t.Fatalf("second cycle = %v, want excluded", got)
	}
	if got := f.CycleLevel(LevelInfo); got != TriCleared {
		t.Fatalf("third cycle = %v, want cleared", got)
	}
	if f.Active() {
		t.Fatalf("filter active after full cycle back to cleared")
	}
}

func TestDerivedMapsFollowTriStateChanges(t *testing.T) {
	f := NewFilter()
	f.SetLevelState(LevelInfo, TriIncluded)
	if !f.Matches(entry(LevelInfo, "Net", "x")) {
		t.Fatalf("included level rejected")
	}

	// Flip the same source-of-truth key; the derived maps must follow.
	f.SetLevelState(LevelInfo, TriExcluded)
	if f.Matches(entry(LevelInfo, "Net", "x")) {
		t.Fatalf("derived maps diverged from tri-state source")
	}

	f.SetLevelState(LevelInfo, TriCleared)
	if !f.Matches(entry(LevelInfo, "Net", "x")) {
		t.Fatalf("cleared level still filtered")
	}
}

package console

import "testing"

func seedEntries(t *testing.T, repo Repository, n int) []*Entry {
	t.Helper()
	entries := make([]*Entry, 0, n)
	for i := 0; i < n; i++ {
		e := NewEntry(int64(i), LevelInfo, "Net", "msg", nil)
		if !repo.Add(e) {
			t.Fatalf("Add rejected entry %d", i)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestMemoryRepositoryWindow(t *testing.T) {
	repo := NewMemoryRepository(3)
	entries := seedEntries(t, repo, 5)

	if repo.TotalAdded() != 5 {
		t.Fatalf("TotalAdded = %d, want 5", repo.TotalAdded())
	}
	if repo.Count() != 3 {
		t.Fatalf("Count = %d, want 3", repo.Count())
	}
	all := repo.All()
	for i, want := range entries[2:] {
		if all[i] != want {
			t.Fatalf("All[%d] = entry %d, want entry %d", i, all[i].Timestamp, want.Timestamp)
		}
	}
}

func TestNewEntriesChaining(t *testing.T) {
	// Concatenating repeated calls that each advance sinceTotal must
	// reproduce one call from the original sinceTotal.
	repo := NewMemoryRepository(100)
	seedEntries(t, repo, 20)

	oneShot := repo.NewEntries(4)

	var chained []*Entry
	since := uint64(4)
	for {
		batchEnd := since + 3
		if batchEnd > repo.TotalAdded() {
			batchEnd = repo.TotalAdded()
		}
		// Simulate the caller observing a moving total by slicing.
		batch := repo.NewEntries(since)
		if len(batch) == 0 {
			break
		}
		take := int(batchEnd - since)
		chained = append(chained, batch[:take]...)
		since = batchEnd
	}

	if len(chained) != len(oneShot) {
		t.Fatalf("chained %d entries, one-shot %d", len(chained), len(oneShot))
	}
	for i := range oneShot {
		if chained[i] != oneShot[i] {
			t.Fatalf("chained[%d] != oneShot[%d]", i, i)
		}
	}
}

func TestNewEntriesAfterWraparound(t *testing.T) {
	repo := NewMemoryRepository(3)
	entries := seedEntries(t, repo, 5)

	// Entries 0 and 1 were evicted; asking since 0 yields only the
	// retained window, not synthesized records.
	got := repo.NewEntries(0)
	if len(got) != 3 {
		t.Fatalf("NewEntries(0) returned %d entries, want 3", len(got))
	}
	for i, want := range entries[2:] {
		if got[i] != want {
			t.Fatalf("NewEntries(0)[%d] wrong entry", i)
		}
	}

	if got := repo.NewEntries(5); len(got) != 0 {
		t.Fatalf("NewEntries(total) returned %d entries, want 0", len(got))
	}
	if got := repo.NewEntries(99); len(got) != 0 {
		t.Fatalf("NewEntries(beyond total) returned %d entries, want 0", len(got))
	}
}

func TestContainsTracksEviction(t *testing.T) {
	repo := NewMemoryRepository(2)
	entries := seedEntries(t, repo, 3)

	if repo.Contains(entries[0]) {
		t.Fatalf("Contains(evicted) = true, want false")
	}
	if !repo.Contains(entries[2]) {
		t.Fatalf("Contains(retained) = false, want true")
	}
	if repo.Contains(nil) {
		t.Fatalf("Contains(nil) = true, want false")
	}
}

func TestQueryAppliesFilter(t *testing.T) {
	repo := NewMemoryRepository(10)
	repo.Add(NewEntry(1, LevelInfo, "Net", "connected", nil))
	repo.Add(NewEntry(2, LevelError, "Net", "timeout", nil))
	repo.Add(NewEntry(3, LevelInfo, "Disk", "mounted", nil))

	f := NewFilter()
	f.SetLevelState(LevelError, TriExcluded)
	got := repo.Query(f)
	if len(got) != 2 {
		t.Fatalf("Query returned %d entries, want 2", len(got))
	}
	for _, e := range got {
		if e.Level == LevelError {
			t.Fatalf("Query returned excluded level")
		}
	}

	if got := repo.Query(nil); len(got) != 3 {
		t.Fatalf("Query(nil) returned %d entries, want 3", len(got))
	}
}

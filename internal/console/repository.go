package console

// Repository is the storage abstraction owning the bounded collection
// of entries. Two implementations exist: MemoryRepository (ring-backed,
// lost on exit) and FileRepository (ring-backed window plus an
// append-only on-disk log).
type Repository interface {
	// Add appends entry and assigns its stream position. It reports
	// whether the entry was accepted; both implementations always
	// accept.
	Add(entry *Entry) bool

	// Get returns the i-th oldest retained entry.
	Get(i int) (*Entry, bool)

	// Count reports how many entries are currently retained.
	Count() int

	// TotalAdded reports how many entries have ever been added.
	TotalAdded() uint64

	// All copies the retained entries, oldest first.
	All() []*Entry

	// Query returns the retained entries matching filter, in order.
	Query(filter *Filter) []*Entry

	// NewEntries returns the entries added after sinceTotal, in order.
	// Entries already evicted from the retained window are excluded,
	// not synthesized. Cost is O(new entries), never O(history).
	NewEntries(sinceTotal uint64) []*Entry

	// Clear drops all entries and resets total-added accounting.
	Clear() bool

	// Contains reports whether entry is still retained. Display lists
	// hold entries by reference after eviction; callers re-validate
	// before dereferencing repository-relative state.
	Contains(entry *Entry) bool

	// Close flushes any pending state. Memory repositories are a no-op.
	Close() error
}

// windowNewEntries slices the retained window for entries added after
// sinceTotal. get must address the window oldest-first.
func windowNewEntries(total uint64, count int, sinceTotal uint64, get func(int) (*Entry, bool)) []*Entry {
	if sinceTotal >= total {
		return nil
	}
	oldest := total - uint64(count)
	if sinceTotal < oldest {
		sinceTotal = oldest
	}
	n := int(total - sinceTotal)
	out := make([]*Entry, 0, n)
	start := count - n
	for i := 0; i < n; i++ {
		if e, ok := get(start + i); ok {
			out = append(out, e)
		}
	}
	return out
}

// windowContains checks seq membership in [total-count, total).
func windowContains(total uint64, count int, entry *Entry) bool {
	if entry == nil {
		return false
	}
	oldest := total - uint64(count)
	return entry.seq >= oldest && entry.seq < total
}

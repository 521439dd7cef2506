package console

import "github.com/slatehart/logdeck/internal/ringbuf"

// MemoryRepository stores entries in a fixed-capacity ring. Adds are
// O(1); once full, the oldest entry is overwritten. Entries are lost
// on process exit.
type MemoryRepository struct {
	ring *ringbuf.Ring[*Entry]
}

// NewMemoryRepository returns a repository retaining at most capacity
// entries.
func NewMemoryRepository(capacity int) *MemoryRepository {
	return &MemoryRepository{ring: ringbuf.New[*Entry](capacity)}
}

func (r *MemoryRepository) Add(entry *Entry) bool {
	entry.seq = r.ring.TotalAdded()
	r.ring.Push(entry)
	return true
}

func (r *MemoryRepository) Get(i int) (*Entry, bool) { return r.ring.At(i) }

func (r *MemoryRepository) Count() int { return r.ring.Len() }

func (r *MemoryRepository) TotalAdded() uint64 { return r.ring.TotalAdded() }

func (r *MemoryRepository) All() []*Entry { return r.ring.Slice() }

func (r *MemoryRepository) Query(filter *Filter) []*Entry {
	out := make([]*Entry, 0)
	r.ring.Do(func(e *Entry) bool {
		if filter == nil || filter.Matches(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

func (r *MemoryRepository) NewEntries(sinceTotal uint64) []*Entry {
	return windowNewEntries(r.ring.TotalAdded(), r.ring.Len(), sinceTotal, r.ring.At)
}

func (r *MemoryRepository) Clear() bool {
	r.ring.Clear()
	return true
}

func (r *MemoryRepository) Contains(entry *Entry) bool {
	return windowContains(r.ring.TotalAdded(), r.ring.Len(), entry)
}

func (r *MemoryRepository) Close() error { return nil }

package console

import (
	"fmt"
	"time"
)

// EngineOptions tune the bulk filtering strategies.
type EngineOptions struct {
	// MaxDisplay caps the display list.
	MaxDisplay int
	// LargeThreshold switches full passes from immediate to chunked.
	LargeThreshold int
	// SearchThreshold switches to chunked at a lower entry count when a
	// search term is active, since search passes are assumed more
	// expensive to finish fast.
	SearchThreshold int
	// ChunkSize bounds entries processed per resume.
	ChunkSize int
	// ChunkBudget bounds wall time per resume, whichever comes first.
	ChunkBudget time.Duration
	// MinSearchResults lets a searching pass terminate early once it
	// has enough results to show.
	MinSearchResults int
}

const (
	defaultMaxDisplay       = 2000
	defaultLargeThreshold   = 1000
	defaultSearchThreshold  = 250
	defaultChunkSize        = 500
	defaultChunkBudget      = 5 * time.Millisecond
	defaultMinSearchResults = 200
)

// bulkTask is the saved cursor of one suspended full pass. The cursor
// is a stream position, not a window index, so it stays valid when the
// ring evicts entries between resumptions. Destroyed on completion,
// cancellation or filter change.
type bulkTask struct {
	version   uint64
	cursor    uint64
	partial   []*Entry
	processed int
	searching bool
}

// TickResult reports what one engine activation did.
type TickResult struct {
	// Changed is true when the display list was replaced or extended.
	Changed bool
	// Searching is true while a search-driven pass is in flight.
	Searching bool
	// PartialCount is the number of results so far (partial while a
	// pass is suspended, final once Done).
	PartialCount int
	// Done distinguishes "pass completed" from "still running"; a
	// completed search with zero results reports Done with count 0.
	Done bool
	// Err carries a recovered evaluation failure; the pass that caused
	// it has been discarded.
	Err error
}

// Engine drives the three bulk filtering strategies (immediate,
// chunked, incremental) plus the cancellable search pass, consuming
// dirtiness from the StateManager one budgeted step per tick. All
// strategies produce the same accepted set as a naive full pass when
// run to completion; chunking and incrementality are performance
// strategies, not different semantics.
type Engine struct {
	repo   Repository
	state  *StateManager
	filter *Filter
	opts   EngineOptions

	display    []*Entry
	displayRev uint64
	lastTotal  uint64

	task          *bulkTask
	searchVersion uint64

	now func() time.Time
}

// NewEngine wires an engine over repo, consuming state and applying
// filter. Zero option fields take defaults.
func NewEngine(repo Repository, state *StateManager, filter *Filter, opts EngineOptions) *Engine {
	if opts.MaxDisplay < 1 {
		opts.MaxDisplay = defaultMaxDisplay
	}
	if opts.LargeThreshold < 1 {
		opts.LargeThreshold = defaultLargeThreshold
	}
	if opts.SearchThreshold < 1 {
		opts.SearchThreshold = defaultSearchThreshold
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.ChunkBudget <= 0 {
		opts.ChunkBudget = defaultChunkBudget
	}
	if opts.MinSearchResults < 1 {
		opts.MinSearchResults = defaultMinSearchResults
	}
	return &Engine{
		repo:   repo,
		state:  state,
		filter: filter,
		opts:   opts,
		now:    time.Now,
	}
}

// Display returns the current filtered display list. Entries may have
// been evicted from the repository since the list was built; callers
// re-validate with Repository.Contains before using repository-relative
// state.
func (e *Engine) Display() []*Entry { return e.display }

// DisplayRevision increments whenever the display list changes.
func (e *Engine) DisplayRevision() uint64 { return e.displayRev }

// Processing reports whether a bulk pass is suspended mid-flight.
func (e *Engine) Processing() bool { return e.task != nil }

// CancelSearch invalidates any in-flight pass. The suspended task
// re-validates its captured version on resume and stops producing
// results when it no longer matches.
func (e *Engine) CancelSearch() { e.searchVersion++ }

// Tick performs at most one budget's worth of filtering work. A panic
// inside evaluation is recovered and reported; the bad pass is dropped
// so one failure cannot take the console down.
func (e *Engine) Tick() (res TickResult) {
	defer func() {
		if p := recover(); p != nil {
			e.task = nil
			e.state.ClearDirty()
			res.Err = fmt.Errorf("filter evaluation failed: %v", p)
		}
	}()

	switch st := e.state.State(); {
	case st >= StateFiltersDirty:
		// A filter or category change invalidates any in-flight pass.
		e.searchVersion++
		e.state.ClearDirty()
		if e.beginFullPass() {
			return TickResult{Changed: true, Done: true, PartialCount: len(e.display)}
		}
	case st == StateEntriesDirty && e.task == nil:
		changed := e.applyIncremental()
		e.state.ClearNewEntries()
		return TickResult{Changed: changed, Done: true, PartialCount: len(e.display)}
	case st == StateEntriesDirty:
		// A pass is in flight; it iterates by stream position up to the
		// repository's current total, so the arrivals are covered.
		e.state.ClearNewEntries()
	case st == StateClean && e.task == nil:
		return TickResult{Done: true, PartialCount: len(e.display)}
	}

	res.Searching = e.task != nil && e.task.searching
	if e.resumeTask() {
		res.Changed = true
		res.Done = true
		res.Searching = false
		res.PartialCount = len(e.display)
	} else if e.task != nil {
		res.PartialCount = len(e.task.partial)
	}
	return res
}

// beginFullPass restarts filtering from scratch, immediately for small
// datasets and as a suspended chunked task above the thresholds. It
// reports whether the pass completed within this call.
func (e *Engine) beginFullPass() bool {
	e.task = nil
	count := e.repo.Count()
	searching := e.filter.Search() != ""
	chunked := count >= e.opts.LargeThreshold ||
		(searching && count >= e.opts.SearchThreshold)

	total := e.repo.TotalAdded()
	start := total - uint64(count)
	if chunked {
		e.task = &bulkTask{version: e.searchVersion, cursor: start, searching: searching}
		return false
	}

	display := make([]*Entry, 0, min(count, e.opts.MaxDisplay))
	for i := 0; i < count; i++ {
		entry, ok := e.repo.Get(i)
		if !ok {
			continue
		}
		if e.filter.Matches(entry) {
			display = append(display, entry)
			if len(display) >= e.opts.MaxDisplay {
				break
			}
		}
	}
	e.display = display
	e.lastTotal = total
	e.displayRev++
	return true
}

// resumeTask runs the suspended pass for one chunk or time budget,
// whichever is exhausted first, and reports whether it finished.
func (e *Engine) resumeTask() bool {
	t := e.task
	if t == nil {
		return false
	}
	if t.version != e.searchVersion {
		// Stale: a newer search superseded this pass. Discard output.
		e.task = nil
		return false
	}

	deadline := e.now().Add(e.opts.ChunkBudget)
	steps := 0
	total := e.repo.TotalAdded()
	oldest := total - uint64(e.repo.Count())
	if t.cursor < oldest {
		// Entries evicted while suspended are unavailable, not errors.
		t.cursor = oldest
	}

	for t.cursor < total {
		if steps >= e.opts.ChunkSize || e.now().After(deadline) {
			return false // yield; resume on the next tick
		}
		entry, ok := e.repo.Get(int(t.cursor - oldest))
		t.cursor++
		steps++
		t.processed++
		if !ok {
			continue
		}
		if !e.filter.Matches(entry) {
			continue
		}
		t.partial = append(t.partial, entry)
		if len(t.partial) >= e.opts.MaxDisplay {
			break
		}
		if t.searching && len(t.partial) >= e.opts.MinSearchResults {
			break
		}
	}

	e.display = t.partial
	e.lastTotal = total
	e.displayRev++
	e.task = nil
	return true
}

// applyIncremental evaluates only the entries added since the last
// observed total and appends the matches, without re-evaluating
// previously accepted entries.
func (e *Engine) applyIncremental() bool {
	fresh := e.repo.NewEntries(e.lastTotal)
	e.lastTotal = e.repo.TotalAdded()
	changed := false
	for _, entry := range fresh {
		if len(e.display) >= e.opts.MaxDisplay {
			break
		}
		if e.filter.Matches(entry) {
			e.display = append(e.display, entry)
			changed = true
		}
	}
	if changed {
		e.displayRev++
	}
	return changed
}

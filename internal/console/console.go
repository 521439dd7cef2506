package console

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/slatehart/logdeck/internal/spam"
)

// systemCategory is the console's own category for notices it emits
// about itself (rate limiting, recovered evaluation failures).
const systemCategory = "Console"

// ErrRateLimited reports that an entry was swallowed by the spam
// blocker. The caller already got a single "rate limiting" notice for
// the pattern; individual blocked messages are dropped silently.
var ErrRateLimited = errors.New("rate limited")

// Options configure a Console.
type Options struct {
	// Capacity bounds the memory repository. Ignored when FilePath is
	// set; the file repository is bounded by File.CacheSize instead.
	Capacity int
	// FilePath enables file persistence when non-empty.
	FilePath string
	File     FileOptions
	Engine   EngineOptions
	Spam     spam.Options
	// HighlightCache bounds the memoized highlight segmentations.
	HighlightCache int
	Logger         *slog.Logger
}

const (
	defaultCapacity       = 5000
	defaultHighlightCache = 512
)

// Console is the in-process log console: the single ingestion point,
// the bounded store and the per-tick filtered view over it. It assumes
// one logical writer and one logical reader on one logical thread of
// control; no method is safe for concurrent use.
type Console struct {
	repo        Repository
	store       *Store
	state       *StateManager
	filter      *Filter
	engine      *Engine
	blocker     *spam.Blocker
	highlighter *Highlighter
	logger      *slog.Logger

	categories map[string]struct{}
}

// New builds a console. When opts.FilePath is set entries persist to an
// append-only log; if the file cannot be opened the console degrades to
// memory-only storage instead of failing.
func New(opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Capacity < 1 {
		opts.Capacity = defaultCapacity
	}
	if opts.HighlightCache < 1 {
		opts.HighlightCache = defaultHighlightCache
	}

	var repo Repository
	if opts.FilePath != "" {
		fileOpts := opts.File
		if fileOpts.Logger == nil {
			fileOpts.Logger = logger
		}
		fr, err := OpenFileRepository(opts.FilePath, fileOpts)
		if err != nil {
			logger.Error("file repository unavailable, using memory only", "path", opts.FilePath, "error", err)
		} else {
			repo = fr
		}
	}
	if repo == nil {
		repo = NewMemoryRepository(opts.Capacity)
	}

	spamOpts := opts.Spam
	if spamOpts.Logger == nil {
		spamOpts.Logger = logger
	}

	state := &StateManager{}
	filter := NewFilter()
	c := &Console{
		repo:        repo,
		store:       NewStore(repo),
		state:       state,
		filter:      filter,
		engine:      NewEngine(repo, state, filter, opts.Engine),
		blocker:     spam.New(spamOpts),
		highlighter: NewHighlighter(opts.HighlightCache),
		logger:      logger.With("component", "console"),
		categories:  make(map[string]struct{}),
	}

	// Categories recovered from a persisted window are known up front.
	for _, e := range repo.All() {
		c.categories[e.Category] = struct{}{}
	}
	if repo.Count() > 0 {
		c.state.MarkFullRefresh()
	}
	return c
}

// AddEntry is the ingestion boundary: spam gate, then validation, then
// the repository. The first message of a burst that crosses the spam
// threshold produces one WARN notice; subsequent blocked messages
// return ErrRateLimited and are dropped.
func (c *Console) AddEntry(level, category, message string, data map[string]any) (*Entry, error) {
	blocked, info, first := c.blocker.ShouldBlock(level, category, message)
	if blocked {
		if first {
			notice := fmt.Sprintf("rate limiting rapid messages from %q (sample: %s)", category, truncateSample(info.Sample))
			if _, err := c.ingest("WARN", systemCategory, notice, nil); err != nil {
				c.logger.Warn("could not emit rate-limit notice", "error", err)
			}
		}
		return nil, ErrRateLimited
	}
	return c.ingest(level, category, message, data)
}

func (c *Console) ingest(level, category, message string, data map[string]any) (*Entry, error) {
	entry, err := c.store.AddEntry(level, category, message, data)
	if err != nil {
		return nil, err
	}
	c.state.MarkEntriesDirty()
	if _, known := c.categories[entry.Category]; !known {
		c.categories[entry.Category] = struct{}{}
		c.state.MarkCategoriesDirty()
	}
	return entry, nil
}

// Tick runs one budgeted step of the filtering engine. Call it once per
// host render tick. Evaluation failures surface as an ERROR entry in
// the console's own category rather than propagating.
func (c *Console) Tick() TickResult {
	res := c.engine.Tick()
	if res.Err != nil {
		if _, err := c.ingest("ERROR", systemCategory, res.Err.Error(), nil); err != nil {
			c.logger.Error("could not surface engine failure", "error", err)
		}
	}
	return res
}

// Display returns the current filtered display list.
func (c *Console) Display() []*Entry { return c.engine.Display() }

// DisplayRevision increments whenever the display list changes.
func (c *Console) DisplayRevision() uint64 { return c.engine.DisplayRevision() }

// Processing reports whether a bulk filter pass is suspended mid-flight.
func (c *Console) Processing() bool { return c.engine.Processing() }

// Entries returns all retained entries, oldest first.
func (c *Console) Entries() []*Entry { return c.repo.All() }

// EntryCount reports how many entries are retained.
func (c *Console) EntryCount() int { return c.repo.Count() }

// TotalAdded reports how many entries were ever accepted.
func (c *Console) TotalAdded() uint64 { return c.repo.TotalAdded() }

// Dropped reports how many entries have been evicted from the window.
func (c *Console) Dropped() uint64 {
	return c.repo.TotalAdded() - uint64(c.repo.Count())
}

// NewEntries returns the entries added since a previously observed
// total, in order, excluding any already evicted from the window.
func (c *Console) NewEntries(sinceTotal uint64) []*Entry { return c.repo.NewEntries(sinceTotal) }

// Query runs a one-off filter over the retained entries, independent of
// the display list.
func (c *Console) Query(filter *Filter) []*Entry { return c.repo.Query(filter) }

// ClearEntries drops all entries and forces a full refresh.
func (c *Console) ClearEntries() bool {
	ok := c.repo.Clear()
	c.categories = make(map[string]struct{})
	c.state.MarkFullRefresh()
	return ok
}

// ValidateSelection re-validates an entry held by reference (e.g. the
// metadata pane selection) against the repository. It returns nil when
// the entry has been evicted, so stale display lists degrade to "no
// selection" instead of dereferencing repository-relative state.
func (c *Console) ValidateSelection(entry *Entry) *Entry {
	if entry == nil || !c.repo.Contains(entry) {
		return nil
	}
	return entry
}

// Filter exposes the live filter for inspection. Mutate it through the
// console methods below so dirtiness is tracked.
func (c *Console) Filter() *Filter { return c.filter }

// SetSearch replaces the search term, cancelling any in-flight search.
func (c *Console) SetSearch(term string) {
	c.engine.CancelSearch()
	c.filter.SetSearch(term)
	c.state.MarkFiltersDirty()
}

// SetCaseSensitive toggles search case sensitivity.
func (c *Console) SetCaseSensitive(on bool) {
	c.engine.CancelSearch()
	c.filter.SetCaseSensitive(on)
	c.state.MarkFiltersDirty()
}

// SetLevelState sets one level's tri-state filter.
func (c *Console) SetLevelState(level Level, state TriState) {
	c.filter.SetLevelState(level, state)
	c.state.MarkFiltersDirty()
}

// CycleLevel advances one level's tri-state filter.
func (c *Console) CycleLevel(level Level) TriState {
	next := c.filter.CycleLevel(level)
	c.state.MarkFiltersDirty()
	return next
}

// SetCategoryState sets one category's tri-state filter.
func (c *Console) SetCategoryState(category string, state TriState) {
	c.filter.SetCategoryState(category, state)
	c.state.MarkFiltersDirty()
}

// ClearFilters resets every filter constraint.
func (c *Console) ClearFilters() {
	c.engine.CancelSearch()
	c.filter.Clear()
	c.state.MarkFiltersDirty()
}

// Categories returns the known categories, sorted.
func (c *Console) Categories() []string {
	out := make([]string, 0, len(c.categories))
	for cat := range c.categories {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Highlighter exposes the memoized search-highlight segmentation for
// the rendering layer.
func (c *Console) Highlighter() *Highlighter { return c.highlighter }

// BlockedPatterns reports how many spam patterns are actively blocked.
func (c *Console) BlockedPatterns() int { return c.blocker.BlockedPatterns() }

// Close flushes pending writes and the index unconditionally.
func (c *Console) Close() error { return c.repo.Close() }

func truncateSample(s string) string {
	const limit = 80
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}

// FormatTimestamp renders an entry timestamp for display.
func FormatTimestamp(millis int64) string {
	return time.UnixMilli(millis).Format("15:04:05.000")
}

// Package spam rate-limits bursts of near-identical log messages before
// they reach storage. Messages are normalized so that counters,
// timestamps and addresses hash identically, then tracked per-hash in a
// sliding time window.
package spam

import (
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Options tune the blocker. Zero fields take defaults.
type Options struct {
	// Threshold is the number of occurrences inside Window that starts
	// blocking a pattern.
	Threshold int
	// Window is the sliding window over which occurrences are counted.
	Window time.Duration
	// BlockExpire unblocks a pattern after this much silence.
	BlockExpire time.Duration
	// CleanupInterval throttles the global prune pass.
	CleanupInterval time.Duration
	// MaxTrackedPatterns bounds the history map; exceeding it evicts
	// the least-recently-active patterns down to RetentionRatio.
	MaxTrackedPatterns int
	RetentionRatio     float64
	Logger             *slog.Logger
}

const (
	defaultThreshold       = 8
	defaultWindow          = 2 * time.Second
	defaultBlockExpire     = 30 * time.Second
	defaultCleanupInterval = 10 * time.Second
	defaultMaxTracked      = 1000
	defaultRetentionRatio  = 0.75
)

// BlockInfo describes one actively blocked pattern.
type BlockInfo struct {
	// Count is how many messages the pattern has swallowed, including
	// the one that crossed the threshold.
	Count int
	// FirstBlock is when the pattern crossed the threshold.
	FirstBlock time.Time
	// Sample is the first blocked message, un-normalized.
	Sample string
}

type history struct {
	times []time.Time
	last  time.Time
}

// Blocker decides per message whether it is part of a spam burst.
type Blocker struct {
	opts   Options
	logger *slog.Logger

	histories   map[uint64]*history
	blocked     map[uint64]*BlockInfo
	lastCleanup time.Time

	// now is swappable for tests.
	now func() time.Time
}

// New returns a blocker with opts applied over defaults.
func New(opts Options) *Blocker {
	if opts.Threshold < 1 {
		opts.Threshold = defaultThreshold
	}
	if opts.Window <= 0 {
		opts.Window = defaultWindow
	}
	if opts.BlockExpire <= 0 {
		opts.BlockExpire = defaultBlockExpire
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.MaxTrackedPatterns < 1 {
		opts.MaxTrackedPatterns = defaultMaxTracked
	}
	if opts.RetentionRatio <= 0 || opts.RetentionRatio >= 1 {
		opts.RetentionRatio = defaultRetentionRatio
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Blocker{
		opts:      opts,
		logger:    logger.With("component", "spam_blocker"),
		histories: make(map[uint64]*history),
		blocked:   make(map[uint64]*BlockInfo),
		now:       time.Now,
	}
}

// ShouldBlock reports whether the message is part of a burst. firstBlock
// is true exactly once per pattern, when it crosses the threshold, so
// the caller can emit a single "rate limiting" notice instead of one per
// blocked message. TRACE and DEBUG messages are exempt: spam control
// targets user-visible noise.
func (b *Blocker) ShouldBlock(level, category, message string) (blocked bool, info *BlockInfo, firstBlock bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE", "DEBUG":
		return false, nil, false
	}

	now := b.now()
	b.maybeCleanup(now)

	key := patternKey(category, message)
	h := b.histories[key]
	if h == nil {
		h = &history{}
		b.histories[key] = h
	}

	if active, ok := b.blocked[key]; ok {
		if now.Sub(h.last) >= b.opts.BlockExpire {
			// Silence long enough: the pattern starts fresh.
			delete(b.blocked, key)
			h.times = h.times[:0]
		} else {
			active.Count++
			h.last = now
			h.times = appendPruned(h.times, now, b.opts.Window)
			return true, active, false
		}
	}

	h.last = now
	h.times = appendPruned(h.times, now, b.opts.Window)
	if len(h.times) >= b.opts.Threshold {
		info := &BlockInfo{Count: 1, FirstBlock: now, Sample: message}
		b.blocked[key] = info
		b.logger.Debug("pattern crossed spam threshold", "category", category, "sample", message)
		return true, info, true
	}
	return false, nil, false
}

// BlockedPatterns reports how many patterns are actively blocked.
func (b *Blocker) BlockedPatterns() int { return len(b.blocked) }

// TrackedPatterns reports how many patterns have live histories.
func (b *Blocker) TrackedPatterns() int { return len(b.histories) }

func appendPruned(times []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return append(kept, now)
}

// maybeCleanup prunes stale histories and expired blocks, and bounds
// the tracked-pattern map under pathological bursts. Throttled to once
// per CleanupInterval.
func (b *Blocker) maybeCleanup(now time.Time) {
	if now.Sub(b.lastCleanup) < b.opts.CleanupInterval {
		return
	}
	b.lastCleanup = now

	for key, h := range b.histories {
		if _, isBlocked := b.blocked[key]; isBlocked {
			if now.Sub(h.last) >= b.opts.BlockExpire {
				delete(b.blocked, key)
				delete(b.histories, key)
			}
			continue
		}
		if now.Sub(h.last) >= b.opts.Window {
			delete(b.histories, key)
		}
	}

	if len(b.histories) <= b.opts.MaxTrackedPatterns {
		return
	}
	target := int(float64(b.opts.MaxTrackedPatterns) * b.opts.RetentionRatio)
	type aged struct {
		key  uint64
		last time.Time
	}
	all := make([]aged, 0, len(b.histories))
	for key, h := range b.histories {
		all = append(all, aged{key, h.last})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].last.Before(all[j].last) })
	evicted := 0
	for _, a := range all {
		if len(b.histories) <= target {
			break
		}
		delete(b.histories, a.key)
		delete(b.blocked, a.key)
		evicted++
	}
	b.logger.Debug("evicted least-recently-active patterns", "evicted", evicted, "retained", len(b.histories))
}

var (
	reTimestamp = regexp.MustCompile(`\[[0-9][0-9:.\-T /]*\]`)
	reHex       = regexp.MustCompile(`0[xX][0-9a-fA-F]+`)
	reDecimal   = regexp.MustCompile(`[0-9]+\.[0-9]+`)
	reDigits    = regexp.MustCompile(`[0-9]+`)
)

// Normalize replaces volatile substrings (bracketed timestamps, hex
// literals, decimals, digit runs) with placeholders so near-identical
// messages differing only in a counter or timestamp hash identically.
func Normalize(message string) string {
	m := reTimestamp.ReplaceAllString(message, "[TS]")
	m = reHex.ReplaceAllString(m, "0x#")
	m = reDecimal.ReplaceAllString(m, "#.#")
	return reDigits.ReplaceAllString(m, "#")
}

func patternKey(category, message string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(category)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(Normalize(message))
	return d.Sum64()
}

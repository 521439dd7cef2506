package console

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/slatehart/logdeck/internal/lru"
)

// Segment is one run of text, either matching the search term or not.
type Segment struct {
	Text  string
	Match bool
}

// maxKeyText bounds the text portion of cache keys so key construction
// does not defeat the memory bound the cache provides.
const maxKeyText = 256

// Highlighter splits entry text into match/non-match runs for search
// highlighting, memoizing the segmentation per (text, term, case mode).
type Highlighter struct {
	cache *lru.Cache[string, []Segment]
}

// NewHighlighter returns a highlighter memoizing up to capacity
// segmentations.
func NewHighlighter(capacity int) *Highlighter {
	return &Highlighter{cache: lru.New[string, []Segment](capacity)}
}

// Segments splits text into runs. With an empty term the whole text is
// one non-matching segment. Case-insensitive matching uses simple
// Unicode folding, the same folding the filter's precomputed lowercase
// fields use, so every entry the filter accepted highlights its match.
func (h *Highlighter) Segments(text, term string, caseSensitive bool) []Segment {
	if term == "" || text == "" {
		return []Segment{{Text: text}}
	}
	key := segmentKey(text, term, caseSensitive)
	if segs, ok := h.cache.Get(key); ok {
		return segs
	}
	segs := segment(text, term, caseSensitive)
	h.cache.Put(key, segs)
	return segs
}

// Stats exposes the memoization counters.
func (h *Highlighter) Stats() lru.Stats { return h.cache.Stats() }

// Clear drops all memoized segmentations, e.g. after a theme change.
func (h *Highlighter) Clear() { h.cache.Clear() }

// segmentKey truncates long source text and appends its length so
// distinct long texts with a shared prefix still key differently.
func segmentKey(text, term string, caseSensitive bool) string {
	flag := "i"
	if caseSensitive {
		flag = "s"
	}
	if len(text) > maxKeyText {
		text = text[:maxKeyText] + "#" + strconv.Itoa(len(text))
	}
	return text + "\x00" + term + "\x00" + flag
}

func segment(text, term string, caseSensitive bool) []Segment {
	haystack, needle := text, term
	var offsets []int
	if !caseSensitive {
		needle = strings.ToLower(term)
		if isASCII(text) {
			haystack = strings.ToLower(text)
		} else {
			// Folding can change byte lengths (e.g. İ → i); track, for
			// every folded byte, the original offset it came from so
			// matches slice the original text at the right positions.
			haystack, offsets = foldOffsets(text)
		}
	}

	var segs []Segment
	pos := 0  // byte position in haystack
	orig := 0 // byte position in text
	for pos < len(haystack) {
		i := strings.Index(haystack[pos:], needle)
		if i < 0 || len(needle) == 0 {
			segs = append(segs, Segment{Text: text[orig:]})
			break
		}
		start, end := pos+i, pos+i+len(needle)
		oStart, oEnd := start, end
		if offsets != nil {
			oStart, oEnd = offsets[start], offsets[end]
		}
		if oStart > orig {
			segs = append(segs, Segment{Text: text[orig:oStart]})
		}
		segs = append(segs, Segment{Text: text[oStart:oEnd], Match: true})
		pos = end
		orig = oEnd
	}
	if len(segs) == 0 {
		segs = append(segs, Segment{Text: text})
	}
	return segs
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// foldOffsets lowercases text rune by rune and records, for every byte
// of the folded form, the original byte offset it came from, plus a
// final sentinel at len(text).
func foldOffsets(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		lr := unicode.ToLower(r)
		for j := 0; j < utf8.RuneLen(lr); j++ {
			offsets = append(offsets, i)
		}
		b.WriteRune(lr)
	}
	offsets = append(offsets, len(text))
	return b.String(), offsets
}

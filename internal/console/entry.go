package console

import (
	"fmt"
	"sort"
	"strings"
)

// Field is one key/value pair of entry metadata. Fields keep their
// order so encoding is deterministic.
type Field struct {
	Key   string
	Value string
}

// Entry is one structured log record. Entries are immutable after
// construction; the lower-cased message and category are precomputed
// for fast case-insensitive filtering.
type Entry struct {
	Timestamp int64 // unix milliseconds
	Level     Level
	Category  string
	Message   string
	Data      []Field

	messageLower  string
	categoryLower string

	// seq is the entry's position in the total ingestion stream,
	// assigned by the repository that accepted it.
	seq uint64
}

// NewEntry constructs an immutable entry with derived lowercase fields.
func NewEntry(timestamp int64, level Level, category, message string, data []Field) *Entry {
	return &Entry{
		Timestamp:     timestamp,
		Level:         level,
		Category:      category,
		Message:       message,
		Data:          data,
		messageLower:  strings.ToLower(message),
		categoryLower: strings.ToLower(category),
	}
}

// Seq returns the entry's position in the total ingestion stream.
func (e *Entry) Seq() uint64 { return e.seq }

// FieldsFromMap flattens a mapping into ordered fields, sorting keys so
// the result is deterministic. Values degrade to their fmt form; this
// is a best-effort flat encoding, not a recursive serializer.
func FieldsFromMap(data map[string]any) []Field {
	if len(data) == 0 {
		return nil
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: fmt.Sprint(data[k])})
	}
	return fields
}

package console

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxCategoryLen = 64
	maxMessageLen  = 8192
)

// ValidationError reports an ingestion input the Store rejected.
// Validation failures never reach the repository.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Store validates and forwards entries to a Repository. It is the
// single ingestion point.
type Store struct {
	repo Repository

	// now is swappable for tests.
	now func() int64
}

// NewStore returns a store writing to repo.
func NewStore(repo Repository) *Store {
	return &Store{
		repo: repo,
		now:  func() int64 { return time.Now().UnixMilli() },
	}
}

// AddEntry validates the inputs, constructs an entry and forwards it to
// the repository. The level name is normalized case-insensitively; the
// category is validated as given, without trimming.
func (s *Store) AddEntry(level, category, message string, data map[string]any) (*Entry, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return nil, &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if len(category) > maxCategoryLen {
		return nil, &ValidationError{Field: "category", Reason: fmt.Sprintf("longer than %d bytes", maxCategoryLen)}
	}
	if strings.ContainsAny(category, "|\n") {
		return nil, &ValidationError{Field: "category", Reason: `must not contain '|' or newline`}
	}
	if len(message) > maxMessageLen {
		return nil, &ValidationError{Field: "message", Reason: fmt.Sprintf("longer than %d bytes", maxMessageLen)}
	}

	entry := NewEntry(s.now(), lvl, category, message, FieldsFromMap(data))
	s.repo.Add(entry)
	return entry, nil
}

// Repo exposes the active repository for the query boundary.
func (s *Store) Repo() Repository { return s.repo }

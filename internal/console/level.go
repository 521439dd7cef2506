package console

import (
	"fmt"
	"strings"
)

// Level is the severity of a log entry.
type Level int8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}

// String returns the canonical upper-case name.
func (l Level) String() string {
	if l < LevelTrace || l > LevelError {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// Levels lists all levels in ascending severity order.
func Levels() []Level {
	return []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}
}

// ParseLevel resolves a level name case-insensitively, so "info",
// "Info" and "INFO" all normalize to LevelInfo.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, &ValidationError{Field: "level", Reason: fmt.Sprintf("unknown level %q", s)}
}

package console

import (
	"fmt"
	"strconv"
	"strings"
)

// On-disk record format: one UTF-8 line per entry, five fields joined
// by '|' in fixed order:
//
//	timestamp|level|category|message|data
//
// '|', newline and backslash inside category/message/data are escaped
// as \|, \n and \\ so decoding reverses encoding exactly. Category is
// additionally validated at ingestion to contain neither '|' nor
// newline, but a trailing backslash is legal and must not swallow the
// field separator. Data is a flat key:value list joined by ','.

const fieldSep = '|'

func encodeLine(e *Entry) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(e.Timestamp, 10))
	b.WriteByte(fieldSep)
	b.WriteString(e.Level.String())
	b.WriteByte(fieldSep)
	b.WriteString(escapeField(e.Category))
	b.WriteByte(fieldSep)
	b.WriteString(escapeField(e.Message))
	b.WriteByte(fieldSep)
	b.WriteString(escapeField(encodeData(e.Data)))
	return b.String()
}

func decodeLine(line string) (*Entry, error) {
	fields := splitEscaped(line)
	if len(fields) < 4 || len(fields) > 5 {
		return nil, fmt.Errorf("record has %d fields, want 4 or 5", len(fields))
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", fields[0], err)
	}
	level, err := ParseLevel(fields[1])
	if err != nil {
		return nil, fmt.Errorf("bad level %q", fields[1])
	}

	var data []Field
	if len(fields) == 5 {
		data = decodeData(unescapeField(fields[4]))
	}
	return NewEntry(ts, level, unescapeField(fields[2]), unescapeField(fields[3]), data), nil
}

func escapeField(s string) string {
	if !strings.ContainsAny(s, "\\|\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '|':
			b.WriteString(`\|`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func unescapeField(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				b.WriteRune(r)
			}
			continue
		}
		switch r {
		case 'n':
			b.WriteByte('\n')
		case '|', '\\':
			b.WriteRune(r)
		default:
			// Unknown escape, keep verbatim.
			b.WriteByte('\\')
			b.WriteRune(r)
		}
		escaped = false
	}
	return b.String()
}

// splitEscaped splits on unescaped '|', leaving escapes in place for
// unescapeField to resolve per field.
func splitEscaped(line string) []string {
	var fields []string
	var b strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			b.WriteByte('\\')
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == fieldSep:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteByte('\\')
	}
	fields = append(fields, b.String())
	return fields
}

func encodeData(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Key + ":" + f.Value
	}
	return strings.Join(parts, ",")
}

// decodeData reverses encodeData best-effort: values containing ','
// or ':' cannot round-trip and degrade to split fragments.
func decodeData(s string) []Field {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	fields := make([]Field, 0, len(parts))
	for _, p := range parts {
		k, v, found := strings.Cut(p, ":")
		if !found {
			fields = append(fields, Field{Key: p})
			continue
		}
		fields = append(fields, Field{Key: k, Value: v})
	}
	return fields
}

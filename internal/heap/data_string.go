package heap

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/corvidlang/corvid/internal/value"
)

// StrData backs DataStr: a Python str heap entry. Stored as a Go string
// (UTF-8); length() reports the Python character count (runes), not
// bytes.
type StrData struct {
	Value string
}

func (s *StrData) length() int {
	return utf8.RuneCountInString(s.Value)
}

// BytesData backs DataBytes: an immutable Python bytes object.
type BytesData struct {
	Bytes []byte
}

// BytearrayData backs DataBytearray: a mutable byte buffer.
type BytearrayData struct {
	Bytes []byte
}

// DequeData backs DataDeque.
type DequeData struct {
	Items        []value.Value
	Maxlen       int // 0 means unbounded
	containsRefs bool
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) && !strings.ContainsAny(strconv.FormatFloat(f, 'g', -1, 64), "eE") {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// writeStrRepr writes Python's str repr: single-quoted unless the string
// contains a single quote and no double quote, escaping control
// characters and backslashes the way CPython's unicode_repr does.
func writeStrRepr(w *strings.Builder, s string) {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	w.WriteByte(quote)
	for _, r := range s {
		switch r {
		case rune(quote):
			w.WriteByte('\\')
			w.WriteRune(r)
		case '\\':
			w.WriteString(`\\`)
		case '\n':
			w.WriteString(`\n`)
		case '\r':
			w.WriteString(`\r`)
		case '\t':
			w.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(w, `\x%02x`, r)
			} else {
				w.WriteRune(r)
			}
		}
	}
	w.WriteByte(quote)
}

// writeBytesRepr writes Python's bytes repr (prefix "b" or "bytearray"
// caller-supplied) with the same quoting rule as str repr, restricted to
// the printable-ASCII-or-escape subset bytes reprs use.
func writeBytesRepr(w *strings.Builder, b []byte, prefix string) {
	hasSingle, hasDouble := false, false
	for _, c := range b {
		if c == '\'' {
			hasSingle = true
		}
		if c == '"' {
			hasDouble = true
		}
	}
	quote := byte('\'')
	if hasSingle && !hasDouble {
		quote = '"'
	}
	w.WriteString(prefix)
	w.WriteByte(quote)
	for _, c := range b {
		switch {
		case c == quote:
			w.WriteByte('\\')
			w.WriteByte(c)
		case c == '\\':
			w.WriteString(`\\`)
		case c == '\n':
			w.WriteString(`\n`)
		case c == '\r':
			w.WriteString(`\r`)
		case c == '\t':
			w.WriteString(`\t`)
		case c >= 0x20 && c < 0x7f:
			w.WriteByte(c)
		default:
			fmt.Fprintf(w, `\x%02x`, c)
		}
	}
	w.WriteByte(quote)
}

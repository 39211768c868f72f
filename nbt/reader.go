package nbt

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// StringReader is a cursor over a string, indexed by code point. It backs
// both the SNBT parser and the path engine, which re-enter the same reader
// segment by segment.
type StringReader struct {
	runes  []rune
	cursor int
}

// NewStringReader wraps s in a reader positioned at the start.
func NewStringReader(s string) *StringReader {
	return &StringReader{runes: []rune(s)}
}

// String returns the full source string.
func (r *StringReader) String() string { return string(r.runes) }

// Cursor returns the current read position.
func (r *StringReader) Cursor() int { return r.cursor }

// SetCursor repositions the reader. Used to restore a checkpoint after a
// failed or repeated parse attempt.
func (r *StringReader) SetCursor(cursor int) { r.cursor = cursor }

// TotalLength returns the length of the source in code points.
func (r *StringReader) TotalLength() int { return len(r.runes) }

// RemainingLength returns how many code points are left to read.
func (r *StringReader) RemainingLength() int { return len(r.runes) - r.cursor }

// ReadSoFar returns the already-consumed part of the source.
func (r *StringReader) ReadSoFar() string { return string(r.runes[:r.cursor]) }

// Remaining returns the unread part of the source.
func (r *StringReader) Remaining() string { return string(r.runes[r.cursor:]) }

// CanRead reports whether at least one code point is left.
func (r *StringReader) CanRead() bool { return r.CanReadN(1) }

// CanReadN reports whether at least n code points are left.
func (r *StringReader) CanReadN(n int) bool { return r.cursor+n <= len(r.runes) }

// Peek returns the current code point without advancing, or 0 at the end.
func (r *StringReader) Peek() rune { return r.PeekAt(0) }

// PeekAt returns the code point at the given offset from the cursor, or 0
// if that position is out of bounds.
func (r *StringReader) PeekAt(offset int) rune {
	i := r.cursor + offset
	if i < 0 || i >= len(r.runes) {
		return 0
	}
	return r.runes[i]
}

// Read returns the current code point and advances past it.
func (r *StringReader) Read() rune {
	c := r.runes[r.cursor]
	r.cursor++
	return c
}

// Skip advances past the current code point.
func (r *StringReader) Skip() { r.cursor++ }

// SkipWhitespace advances past any run of Unicode whitespace.
func (r *StringReader) SkipWhitespace() {
	for r.CanRead() && unicode.IsSpace(r.Peek()) {
		r.Skip()
	}
}

// Expect fails with a syntax error unless the next code point is c, in
// which case it advances past it.
func (r *StringReader) Expect(c rune) error {
	if !r.CanRead() || r.Peek() != c {
		return syntaxErrorAt(r, "expected character %q at ->%q", c, r.Remaining())
	}
	r.Skip()
	return nil
}

func isAllowedNumber(c rune) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '.'
}

func isQuotedStringStart(c rune) bool {
	return c == '\'' || c == '"'
}

func isAllowedInUnquotedString(c rune) bool {
	return (c >= '0' && c <= '9') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		c == '-' || c == '+' || c == '.' || c == '_'
}

// readNumberRun consumes the maximal run of number characters and returns
// it, failing with a syntax error if the run is empty.
func (r *StringReader) readNumberRun(what string) (string, error) {
	start := r.cursor
	for r.CanRead() && isAllowedNumber(r.Peek()) {
		r.Skip()
	}
	if start == r.cursor {
		return "", syntaxErrorAt(r, "could not find %s: end of string, or first character not in [-.0-9]", what)
	}
	return string(r.runes[start:r.cursor]), nil
}

// ReadInt reads a base-10 integer literal, failing with a range error if
// it does not fit a signed 32-bit integer.
func (r *StringReader) ReadInt() (int32, error) {
	start := r.cursor
	s, err := r.readNumberRun("an integer")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		r.cursor = start
		return 0, &RangeError{Literal: s, Want: "32-bit integer"}
	}
	return int32(v), nil
}

// ReadLong reads a base-10 integer literal, failing with a range error if
// it does not fit a signed 64-bit integer.
func (r *StringReader) ReadLong() (int64, error) {
	start := r.cursor
	s, err := r.readNumberRun("a long")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		r.cursor = start
		return 0, &RangeError{Literal: s, Want: "64-bit integer"}
	}
	return v, nil
}

// ReadDouble reads a base-10 floating point literal at double precision.
func (r *StringReader) ReadDouble() (float64, error) {
	start := r.cursor
	s, err := r.readNumberRun("a double")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.cursor = start
		return 0, &RangeError{Literal: s, Want: "64-bit IEEE double-precision float"}
	}
	return v, nil
}

// ReadFloat reads a base-10 floating point literal. The value is parsed at
// double precision but magnitudes of 2^128 and above are rejected because
// they exceed the range of a 32-bit float.
func (r *StringReader) ReadFloat() (float64, error) {
	start := r.cursor
	s, err := r.readNumberRun("a float")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.Abs(v) >= math.Ldexp(1, 128) {
		r.cursor = start
		return 0, &RangeError{Literal: s, Want: "32-bit IEEE float"}
	}
	return v, nil
}

// ReadUnquotedString consumes the maximal run of [-+._0-9A-Za-z]. The run
// may be empty.
func (r *StringReader) ReadUnquotedString() string {
	start := r.cursor
	for r.CanRead() && isAllowedInUnquotedString(r.Peek()) {
		r.Skip()
	}
	return string(r.runes[start:r.cursor])
}

// ReadQuotedString reads a single- or double-quoted string, returning its
// unescaped contents.
func (r *StringReader) ReadQuotedString() (string, error) {
	if !r.CanRead() {
		return "", nil
	}
	q := r.Peek()
	if !isQuotedStringStart(q) {
		return "", syntaxErrorAt(r, "expected quote to begin string, got %q", q)
	}
	r.Skip()
	return r.ReadStringUntil(q)
}

// ReadStringUntil reads until an unescaped terminator. A backslash escapes
// only the terminator or another backslash; any other escaped character is
// a syntax error, as is running out of input before the terminator.
func (r *StringReader) ReadStringUntil(terminator rune) (string, error) {
	var sb strings.Builder
	escaped := false
	for r.CanRead() {
		c := r.Read()
		if escaped {
			if c == terminator || c == '\\' {
				sb.WriteRune(c)
				escaped = false
			} else {
				r.cursor--
				return "", syntaxErrorAt(r, "unexpected escaped character %q", c)
			}
		} else if c == '\\' {
			escaped = true
		} else if c == terminator {
			return sb.String(), nil
		} else {
			sb.WriteRune(c)
		}
	}
	return "", syntaxErrorAt(r, "expected end quote %q", terminator)
}

// ReadString reads a quoted string if the next character is a quote, else
// an unquoted token.
func (r *StringReader) ReadString() (string, error) {
	if !r.CanRead() {
		return "", nil
	}
	if isQuotedStringStart(r.Peek()) {
		q := r.Read()
		return r.ReadStringUntil(q)
	}
	return r.ReadUnquotedString(), nil
}

// ReadBoolean reads a string token and accepts only the literals "true"
// and "false", restoring the cursor on any other token.
func (r *StringReader) ReadBoolean() (bool, error) {
	start := r.cursor
	s, err := r.ReadString()
	if err != nil {
		return false, err
	}
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "":
		return false, syntaxErrorAt(r, "expected boolean")
	}
	r.cursor = start
	return false, syntaxErrorAt(r, "invalid boolean %q", s)
}

// errorContext renders the tail of the consumed input as a pointer-style
// excerpt for syntax errors.
func (r *StringReader) errorContext() string {
	read := r.runes[:r.cursor]
	ellipsis := ""
	if r.cursor > 10 {
		ellipsis = "..."
		read = read[r.cursor-10:]
	}
	return ellipsis + string(read) + "<--[HERE]"
}

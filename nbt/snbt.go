package nbt

import (
	"math"
	"regexp"
	"strconv"
)

// Mojangson (SNBT) recursive-descent parser. Unquoted literals are
// classified by suffix against the regex ladder below, tried in order;
// anything that matches no pattern and is not a boolean literal is a plain
// string.
var (
	snbtFloat    = regexp.MustCompile(`(?i)^[-+]?(?:[0-9]+\.?|[0-9]*\.[0-9]+)(?:e[-+]?[0-9]+)?f$`)
	snbtByte     = regexp.MustCompile(`(?i)^[-+]?(?:0|[1-9][0-9]*)b$`)
	snbtLong     = regexp.MustCompile(`(?i)^[-+]?(?:0|[1-9][0-9]*)l$`)
	snbtShort    = regexp.MustCompile(`(?i)^[-+]?(?:0|[1-9][0-9]*)s$`)
	snbtInt      = regexp.MustCompile(`^[-+]?(?:0|[1-9][0-9]*)$`)
	snbtDouble   = regexp.MustCompile(`(?i)^[-+]?(?:[0-9]+\.?|[0-9]*\.[0-9]+)(?:e[-+]?[0-9]+)?d$`)
	snbtDoubleNS = regexp.MustCompile(`(?i)^[-+]?(?:[0-9]+\.|[0-9]*\.[0-9]+)(?:e[-+]?[0-9]+)?$`)
)

// Parse parses a Mojangson value of any variant. Trailing non-whitespace
// input is a syntax error.
func Parse(text string) (*Tag, error) {
	r := NewStringReader(text)
	t, err := parseValue(r)
	if err != nil {
		return nil, err
	}
	r.SkipWhitespace()
	if r.CanRead() {
		return nil, syntaxErrorAt(r, "trailing data ->%q", r.Remaining())
	}
	return t, nil
}

// ParseCompound parses a Mojangson compound, rejecting any other variant
// and any trailing input.
func ParseCompound(text string) (*Tag, error) {
	r := NewStringReader(text)
	r.SkipWhitespace()
	t, err := parseCompound(r)
	if err != nil {
		return nil, err
	}
	r.SkipWhitespace()
	if r.CanRead() {
		return nil, syntaxErrorAt(r, "trailing data ->%q", r.Remaining())
	}
	return t, nil
}

// parseValue parses one value at the reader's position, leaving the cursor
// just past it. Path filters re-enter here on a shared reader.
func parseValue(r *StringReader) (*Tag, error) {
	r.SkipWhitespace()
	if !r.CanRead() {
		return nil, syntaxErrorAt(r, "expected value")
	}
	switch r.Peek() {
	case '{':
		return parseCompound(r)
	case '[':
		return parseAnyArray(r)
	default:
		return parseLiteral(r)
	}
}

func parseLiteral(r *StringReader) (*Tag, error) {
	if isQuotedStringStart(r.Peek()) {
		s, err := r.ReadQuotedString()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	}
	s := r.ReadUnquotedString()
	if s == "" {
		return nil, syntaxErrorAt(r, "expected value")
	}
	return classifyLiteral(r, s)
}

// classifyLiteral maps an unquoted token to its tag. A token that matches
// a numeric pattern but overflows its width is a range error rather than a
// fallback to string, so bad data fails loudly instead of changing type.
func classifyLiteral(r *StringReader, s string) (*Tag, error) {
	switch {
	case snbtFloat.MatchString(s):
		v, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil || math.Abs(v) >= math.Ldexp(1, 128) {
			return nil, &RangeError{Literal: s[:len(s)-1], Want: "32-bit IEEE float"}
		}
		return Float(float32(v)), nil
	case snbtByte.MatchString(s):
		v, err := strconv.ParseInt(s[:len(s)-1], 10, 8)
		if err != nil {
			return nil, &RangeError{Literal: s[:len(s)-1], Want: "8-bit integer"}
		}
		return Byte(int8(v)), nil
	case snbtLong.MatchString(s):
		v, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
		if err != nil {
			return nil, &RangeError{Literal: s[:len(s)-1], Want: "64-bit integer"}
		}
		return Long(v), nil
	case snbtShort.MatchString(s):
		v, err := strconv.ParseInt(s[:len(s)-1], 10, 16)
		if err != nil {
			return nil, &RangeError{Literal: s[:len(s)-1], Want: "16-bit integer"}
		}
		return Short(int16(v)), nil
	case snbtInt.MatchString(s):
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, &RangeError{Literal: s, Want: "32-bit integer"}
		}
		return Int(int32(v)), nil
	case snbtDouble.MatchString(s):
		v, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return nil, &RangeError{Literal: s[:len(s)-1], Want: "64-bit IEEE double-precision float"}
		}
		return Double(v), nil
	case snbtDoubleNS.MatchString(s):
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &RangeError{Literal: s, Want: "64-bit IEEE double-precision float"}
		}
		return Double(v), nil
	case s == "true":
		return Byte(1), nil
	case s == "false":
		return Byte(0), nil
	default:
		return String(s), nil
	}
}

func parseCompound(r *StringReader) (*Tag, error) {
	if err := r.Expect('{'); err != nil {
		return nil, err
	}
	t := Compound()
	r.SkipWhitespace()
	for r.CanRead() && r.Peek() != '}' {
		start := r.Cursor()
		key, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		if key == "" {
			r.SetCursor(start)
			return nil, syntaxErrorAt(r, "expected key")
		}
		r.SkipWhitespace()
		if err := r.Expect(':'); err != nil {
			return nil, err
		}
		v, err := parseValue(r)
		if err != nil {
			return nil, err
		}
		t.Set(key, v) // duplicate keys: last one wins
		if !hasElementSeparator(r) {
			break
		}
		r.SkipWhitespace()
		if !r.CanRead() {
			return nil, syntaxErrorAt(r, "expected key")
		}
	}
	if err := r.Expect('}'); err != nil {
		return nil, err
	}
	return t, nil
}

// parseAnyArray dispatches between a typed numeric array ([B;, [I;, [L;)
// and a plain list.
func parseAnyArray(r *StringReader) (*Tag, error) {
	if r.CanReadN(3) && !isQuotedStringStart(r.PeekAt(1)) && r.PeekAt(2) == ';' {
		return parseNumericArray(r)
	}
	return parseList(r)
}

func parseList(r *StringReader) (*Tag, error) {
	if err := r.Expect('['); err != nil {
		return nil, err
	}
	r.SkipWhitespace()
	if !r.CanRead() {
		return nil, syntaxErrorAt(r, "expected value")
	}
	var elems []*Tag
	elemType := TypeEnd
	for r.Peek() != ']' {
		start := r.Cursor()
		v, err := parseValue(r)
		if err != nil {
			return nil, err
		}
		if elemType == TypeEnd {
			elemType = v.typ
		} else if v.typ != elemType {
			r.SetCursor(start)
			return nil, syntaxErrorAt(r, "mixed types in list: %s != %s", elemType, v.typ)
		}
		elems = append(elems, v)
		if !hasElementSeparator(r) {
			break
		}
		r.SkipWhitespace()
		if !r.CanRead() {
			return nil, syntaxErrorAt(r, "expected value")
		}
	}
	if err := r.Expect(']'); err != nil {
		return nil, err
	}
	return newList(elems), nil
}

func parseNumericArray(r *StringReader) (*Tag, error) {
	if err := r.Expect('['); err != nil {
		return nil, err
	}
	kind := r.Read()
	r.Skip() // the ';'
	r.SkipWhitespace()
	if !r.CanRead() {
		return nil, syntaxErrorAt(r, "expected value")
	}
	var want TagType
	switch kind {
	case 'B':
		want = TypeByte
	case 'I':
		want = TypeInt
	case 'L':
		want = TypeLong
	default:
		return nil, syntaxErrorAt(r, "invalid array type %q, expected B, I or L", kind)
	}
	var elems []*Tag
	for r.Peek() != ']' {
		start := r.Cursor()
		v, err := parseValue(r)
		if err != nil {
			return nil, err
		}
		if v.typ != want {
			r.SetCursor(start)
			return nil, syntaxErrorAt(r, "mixed types in array: %s != %s", want, v.typ)
		}
		elems = append(elems, v)
		if !hasElementSeparator(r) {
			break
		}
		r.SkipWhitespace()
		if !r.CanRead() {
			return nil, syntaxErrorAt(r, "expected value")
		}
	}
	if err := r.Expect(']'); err != nil {
		return nil, err
	}
	switch want {
	case TypeByte:
		v := make([]int8, len(elems))
		for i, e := range elems {
			v[i] = int8(e.num)
		}
		return ByteArray(v), nil
	case TypeInt:
		v := make([]int32, len(elems))
		for i, e := range elems {
			v[i] = int32(e.num)
		}
		return IntArray(v), nil
	default:
		v := make([]int64, len(elems))
		for i, e := range elems {
			v[i] = e.num
		}
		return LongArray(v), nil
	}
}

func hasElementSeparator(r *StringReader) bool {
	r.SkipWhitespace()
	if r.CanRead() && r.Peek() == ',' {
		r.Skip()
		r.SkipWhitespace()
		return true
	}
	return false
}

package nbt

import (
	"fmt"
	"iter"
	"strings"
)

// Path mini-language over a tag tree. A path is parsed left to right
// against a StringReader, dispatching on the current node's variant:
// compounds take a key or a {filter} structural gate, lists and arrays
// take [i], [] or [{filter}], leaves accept only end of path.
//
// HasPath, CountPath, and IterPath use soft-miss semantics: a path that
// addresses the wrong node variant or an absent target yields zero
// results. Malformed grammar and unparsable filters are hard errors in
// every operation. AtPath alone turns absent targets into errors, since
// its caller expects exactly one match.

// pathKeyStop are the characters that terminate an unquoted path key.
const pathKeyStop = ` .[]{}"`

// HasPath reports whether at least one tag matches the path.
func HasPath(t *Tag, path string) (bool, error) {
	r, err := pathReader(path)
	if err != nil {
		return false, err
	}
	found := false
	_, err = walkPath(t, r, "", func(string, *Tag) bool {
		found = true
		return false
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// AtPath returns the unique tag at the path. Absent keys, out-of-range
// indices, paths continuing past a leaf, and wildcard segments are all
// errors here.
func AtPath(t *Tag, path string) (*Tag, error) {
	r, err := pathReader(path)
	if err != nil {
		return nil, err
	}
	return atPath(t, r)
}

// CountPath counts the tags matching the path.
func CountPath(t *Tag, path string) (int, error) {
	r, err := pathReader(path)
	if err != nil {
		return 0, err
	}
	n := 0
	_, err = walkPath(t, r, "", func(string, *Tag) bool {
		n++
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// FindPath returns all tags matching the path, in tree iteration order.
func FindPath(t *Tag, path string) ([]*Tag, error) {
	r, err := pathReader(path)
	if err != nil {
		return nil, err
	}
	var out []*Tag
	_, err = walkPath(t, r, "", func(_ string, m *Tag) bool {
		out = append(out, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IterPath returns a restartable lazy sequence of (sub-path, tag) pairs
// for every match. The path is validated up front so grammar and filter
// errors surface here instead of being swallowed by the sequence.
func IterPath(t *Tag, path string) (iter.Seq2[string, *Tag], error) {
	r, err := pathReader(path)
	if err != nil {
		return nil, err
	}
	if _, err := walkPath(t, r, "", func(string, *Tag) bool { return true }); err != nil {
		return nil, err
	}
	seq := func(yield func(string, *Tag) bool) {
		r := NewStringReader(path)
		walkPath(t, r, "", yield)
	}
	return seq, nil
}

// PathJoin joins path fragments: index fragments attach directly, key
// fragments with a dot. Empty fragments are skipped.
func PathJoin(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if sb.Len() > 0 && !strings.HasPrefix(p, "[") {
			sb.WriteString(".")
		}
		sb.WriteString(p)
	}
	return sb.String()
}

func pathReader(path string) (*StringReader, error) {
	r := NewStringReader(path)
	if r.CanRead() && r.Peek() == '.' {
		return nil, syntaxErrorAt(r, "path must not begin with '.'")
	}
	return r, nil
}

// readPathKey reads a quoted or unquoted compound key. The unquoted set
// is broader than literal tokens: anything except space, '.', brackets,
// braces, and the double quote.
func readPathKey(r *StringReader) (string, error) {
	if r.Peek() == '"' {
		r.Skip()
		return r.ReadStringUntil('"')
	}
	var sb strings.Builder
	for r.CanRead() && !strings.ContainsRune(pathKeyStop, r.Peek()) {
		sb.WriteRune(r.Read())
	}
	if sb.Len() == 0 {
		return "", syntaxErrorAt(r, "expected key at ->%q", r.Remaining())
	}
	return sb.String(), nil
}

// pathKeyLabel renders a key the way a yielded sub-path must spell it so
// the sub-path can be fed back into a query.
func pathKeyLabel(key string) string {
	if key != "" && !strings.ContainsAny(key, pathKeyStop) {
		return key
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range key {
		if c == '"' || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	sb.WriteByte('"')
	return sb.String()
}

// pathSuffixCheck enforces that a consumed segment is followed by end of
// path, '.', or '['.
func pathSuffixCheck(r *StringReader) error {
	if !r.CanRead() {
		return nil
	}
	if c := r.Peek(); c == '.' || c == '[' {
		return nil
	}
	return syntaxErrorAt(r, "unexpected character %q after path segment", r.Peek())
}

// walkPath is the multi-result walker. yield returning false stops the
// walk; the first return value reports whether the walk ran to completion.
func walkPath(t *Tag, r *StringReader, sub string, yield func(string, *Tag) bool) (bool, error) {
	if !r.CanRead() {
		return yield(sub, t), nil
	}
	switch t.Type() {
	case TypeCompound:
		if r.Peek() == '{' {
			filter, err := parseCompound(r)
			if err != nil {
				return false, err
			}
			if err := pathSuffixCheck(r); err != nil {
				return false, err
			}
			if !filter.IsSubset(t) {
				return true, nil
			}
			return descendPath(t, r, sub, yield)
		}
		if r.Peek() == '[' {
			// Array syntax on a compound: wrong variant, zero results.
			return true, nil
		}
		key, err := readPathKey(r)
		if err != nil {
			return false, err
		}
		if err := pathSuffixCheck(r); err != nil {
			return false, err
		}
		child := t.Get(key)
		if child == nil {
			return true, nil
		}
		return descendPath(child, r, PathJoin(sub, pathKeyLabel(key)), yield)

	case TypeList, TypeByteArray, TypeIntArray, TypeLongArray:
		if r.Peek() != '[' {
			return true, nil
		}
		r.Skip()
		switch {
		case r.CanRead() && r.Peek() == ']':
			r.Skip()
			if err := pathSuffixCheck(r); err != nil {
				return false, err
			}
			rest := r.Cursor()
			for i := 0; i < t.Len(); i++ {
				r.SetCursor(rest)
				child, err := t.Index(i)
				if err != nil {
					return false, err
				}
				cont, err := descendPath(child, r, PathJoin(sub, fmt.Sprintf("[%d]", i)), yield)
				if err != nil || !cont {
					return cont, err
				}
			}
			return true, nil

		case r.CanRead() && r.Peek() == '{':
			filter, err := parseCompound(r)
			if err != nil {
				return false, err
			}
			if err := r.Expect(']'); err != nil {
				return false, err
			}
			if err := pathSuffixCheck(r); err != nil {
				return false, err
			}
			rest := r.Cursor()
			for i := 0; i < t.Len(); i++ {
				child, err := t.Index(i)
				if err != nil {
					return false, err
				}
				// Array elements are scalars and never pass a filter.
				if child.Type() != TypeCompound || !filter.IsSubset(child) {
					continue
				}
				r.SetCursor(rest)
				cont, err := descendPath(child, r, PathJoin(sub, fmt.Sprintf("[%d]", i)), yield)
				if err != nil || !cont {
					return cont, err
				}
			}
			return true, nil

		default:
			i, err := r.ReadInt()
			if err != nil {
				return false, err
			}
			if err := r.Expect(']'); err != nil {
				return false, err
			}
			if err := pathSuffixCheck(r); err != nil {
				return false, err
			}
			idx := int(i)
			if idx < 0 {
				idx += t.Len()
			}
			if idx < 0 || idx >= t.Len() {
				return true, nil
			}
			child, err := t.Index(idx)
			if err != nil {
				return false, err
			}
			return descendPath(child, r, PathJoin(sub, fmt.Sprintf("[%d]", idx)), yield)
		}

	default:
		// Path continues past a leaf: zero results.
		return true, nil
	}
}

func descendPath(t *Tag, r *StringReader, sub string, yield func(string, *Tag) bool) (bool, error) {
	if r.CanRead() && r.Peek() == '.' {
		r.Skip()
	}
	return walkPath(t, r, sub, yield)
}

// atPath is the strict single-result walker behind AtPath.
func atPath(t *Tag, r *StringReader) (*Tag, error) {
	if !r.CanRead() {
		return t, nil
	}
	switch t.Type() {
	case TypeCompound:
		if r.Peek() == '{' {
			filter, err := parseCompound(r)
			if err != nil {
				return nil, err
			}
			if err := pathSuffixCheck(r); err != nil {
				return nil, err
			}
			if !filter.IsSubset(t) {
				return nil, pathErrorf("filter %s does not match", filter)
			}
			return atDescend(t, r)
		}
		if r.Peek() == '[' {
			return nil, pathErrorf("compound cannot be indexed with array syntax (->%q)", r.Remaining())
		}
		key, err := readPathKey(r)
		if err != nil {
			return nil, err
		}
		if err := pathSuffixCheck(r); err != nil {
			return nil, err
		}
		child := t.Get(key)
		if child == nil {
			return nil, pathErrorf("key %q not found", key)
		}
		return atDescend(child, r)

	case TypeList, TypeByteArray, TypeIntArray, TypeLongArray:
		if err := r.Expect('['); err != nil {
			return nil, err
		}
		i, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		if err := r.Expect(']'); err != nil {
			return nil, err
		}
		if err := pathSuffixCheck(r); err != nil {
			return nil, err
		}
		child, err := t.Index(int(i))
		if err != nil {
			return nil, err
		}
		return atDescend(child, r)

	default:
		return nil, pathErrorf("%s tag cannot contain other tags (->%q)", t.Type(), r.Remaining())
	}
}

func atDescend(t *Tag, r *StringReader) (*Tag, error) {
	if !r.CanRead() {
		return t, nil
	}
	if r.Peek() == '.' {
		r.Skip()
	}
	return atPath(t, r)
}

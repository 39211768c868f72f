package nbt

import "fmt"

// IsSubset reports whether t is structurally contained in other: scalars,
// strings, and arrays must be equal; every list element of t must match at
// least one element of other (non-injective, so duplicates may share a
// match); every compound key of t must exist in other with a recursively
// contained value. Extra content in other is ignored. The path engine's
// {filter} segments are built on this test.
func (t *Tag) IsSubset(other *Tag) bool {
	if t == nil || other == nil {
		return t == nil
	}
	if t.typ != other.typ {
		return false
	}
	switch t.typ {
	case TypeList:
		for _, e := range t.list {
			matched := false
			for _, o := range other.list {
				if e.IsSubset(o) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	case TypeCompound:
		for _, e := range t.comp {
			o := other.Get(e.Name)
			if o == nil || !e.Tag.IsSubset(o) {
				return false
			}
		}
		return true
	default:
		return t.Equal(other)
	}
}

// DiffKind classifies one difference record.
type DiffKind int

const (
	// DiffType: the two sides hold different variants.
	DiffType DiffKind = iota
	// DiffValue: same variant, different scalar/string/array contents.
	DiffValue
	// DiffLength: lists of different lengths.
	DiffLength
	// DiffMissingLeft: a key present only on the right side.
	DiffMissingLeft
	// DiffMissingRight: a key present only on the left side.
	DiffMissingRight
	// DiffKeyOrder: same key set in a different stored order. Reported
	// only when OrderMatters is set.
	DiffKeyOrder
)

func (k DiffKind) String() string {
	switch k {
	case DiffType:
		return "type"
	case DiffValue:
		return "value"
	case DiffLength:
		return "length"
	case DiffMissingLeft:
		return "missing-left"
	case DiffMissingRight:
		return "missing-right"
	case DiffKeyOrder:
		return "key-order"
	default:
		return "unknown"
	}
}

// Difference is one reported divergence between two trees. Left and Right
// are the diverging subtrees; either may be nil for missing-key records.
type Difference struct {
	Path  string
	Kind  DiffKind
	Left  *Tag
	Right *Tag
}

func (d Difference) String() string {
	return fmt.Sprintf("%s at %q", d.Kind, d.Path)
}

// DiffOptions controls difference reporting.
type DiffOptions struct {
	// OrderMatters additionally reports compounds whose shared keys are
	// stored in a different order.
	OrderMatters bool
}

// Diff reports every divergence between t and other as records, never
// mutating either side. Lists are compared strictly by position; an
// extra tail beyond the shorter list is reported as a single length
// record.
func (t *Tag) Diff(other *Tag, opts DiffOptions) []Difference {
	var out []Difference
	diffAt(&out, t, other, opts, "")
	return out
}

func diffAt(out *[]Difference, a, b *Tag, opts DiffOptions, path string) {
	if a == nil || b == nil {
		if a != b {
			*out = append(*out, Difference{Path: path, Kind: DiffValue, Left: a, Right: b})
		}
		return
	}
	if a.typ != b.typ {
		*out = append(*out, Difference{Path: path, Kind: DiffType, Left: a, Right: b})
		return
	}
	switch a.typ {
	case TypeList:
		if len(a.list) != len(b.list) {
			*out = append(*out, Difference{Path: path, Kind: DiffLength, Left: a, Right: b})
		}
		n := min(len(a.list), len(b.list))
		for i := 0; i < n; i++ {
			diffAt(out, a.list[i], b.list[i], opts, PathJoin(path, fmt.Sprintf("[%d]", i)))
		}
	case TypeCompound:
		for _, e := range a.comp {
			if b.Get(e.Name) == nil {
				*out = append(*out, Difference{Path: PathJoin(path, pathKeyLabel(e.Name)), Kind: DiffMissingRight, Left: e.Tag})
			}
		}
		for _, e := range b.comp {
			if a.Get(e.Name) == nil {
				*out = append(*out, Difference{Path: PathJoin(path, pathKeyLabel(e.Name)), Kind: DiffMissingLeft, Right: e.Tag})
			}
		}
		if opts.OrderMatters && keyOrderDiffers(a, b) {
			*out = append(*out, Difference{Path: path, Kind: DiffKeyOrder, Left: a, Right: b})
		}
		for _, e := range a.comp {
			if o := b.Get(e.Name); o != nil {
				diffAt(out, e.Tag, o, opts, PathJoin(path, pathKeyLabel(e.Name)))
			}
		}
	default:
		if !a.Equal(b) {
			*out = append(*out, Difference{Path: path, Kind: DiffValue, Left: a, Right: b})
		}
	}
}

// keyOrderDiffers reports whether the keys common to both compounds appear
// in a different relative order.
func keyOrderDiffers(a, b *Tag) bool {
	var ak, bk []string
	for _, e := range a.comp {
		if b.Get(e.Name) != nil {
			ak = append(ak, e.Name)
		}
	}
	for _, e := range b.comp {
		if a.Get(e.Name) != nil {
			bk = append(bk, e.Name)
		}
	}
	if len(ak) != len(bk) {
		return true
	}
	for i := range ak {
		if ak[i] != bk[i] {
			return true
		}
	}
	return false
}

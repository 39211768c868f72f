package nbt

import "slices"

// TagType identifies a Tag variant. The numeric values are the wire
// discriminants and are the single source of truth for both encode and
// decode.
type TagType byte

const (
	TypeEnd TagType = iota
	TypeByte
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeByteArray
	TypeString
	TypeList
	TypeCompound
	TypeIntArray
	TypeLongArray
)

// String returns the variant name.
func (t TagType) String() string {
	switch t {
	case TypeEnd:
		return "end"
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeByteArray:
		return "byte-array"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeCompound:
		return "compound"
	case TypeIntArray:
		return "int-array"
	case TypeLongArray:
		return "long-array"
	default:
		return "unknown"
	}
}

func (t TagType) valid() bool { return t >= TypeEnd && t <= TypeLongArray }

// Tag is one value in an NBT tree: a fixed-width scalar, a string, a
// packed numeric array, a homogeneous list, or an ordered compound.
// Construct tags with the typed constructors or by decoding; the zero
// value is not meaningful.
type Tag struct {
	typ TagType

	// Scalar values (one valid based on typ)
	num  int64   // Byte, Short, Int, Long
	fnum float64 // Float, Double
	str  string

	// Array values
	bytesVal []int8
	intsVal  []int32
	longsVal []int64

	// Container values
	list []*Tag
	comp []CompoundEntry

	// unsigned marks a long array decoded under a key whose contents are
	// interpreted as unsigned (see unsignedArrayKeys). The wire bytes are
	// identical to a signed long array.
	unsigned bool

	// root marks a document root compound: it holds a single entry and
	// encodes without a trailing end discriminant.
	root bool
}

// CompoundEntry is one name/value pair of a compound. Entry order is
// preserved through decode, encode, and iteration.
type CompoundEntry struct {
	Name string
	Tag  *Tag
}

// ============================================================
// Constructors
// ============================================================

// Byte creates a signed 8-bit integer tag.
func Byte(v int8) *Tag { return &Tag{typ: TypeByte, num: int64(v)} }

// Short creates a signed 16-bit integer tag.
func Short(v int16) *Tag { return &Tag{typ: TypeShort, num: int64(v)} }

// Int creates a signed 32-bit integer tag.
func Int(v int32) *Tag { return &Tag{typ: TypeInt, num: int64(v)} }

// Long creates a signed 64-bit integer tag.
func Long(v int64) *Tag { return &Tag{typ: TypeLong, num: v} }

// Float creates a 32-bit float tag.
func Float(v float32) *Tag { return &Tag{typ: TypeFloat, fnum: float64(v)} }

// Double creates a 64-bit float tag.
func Double(v float64) *Tag { return &Tag{typ: TypeDouble, fnum: v} }

// String creates a string tag.
func String(v string) *Tag { return &Tag{typ: TypeString, str: v} }

// ByteArray creates a packed signed 8-bit array tag.
func ByteArray(v []int8) *Tag { return &Tag{typ: TypeByteArray, bytesVal: v} }

// IntArray creates a packed signed 32-bit array tag.
func IntArray(v []int32) *Tag { return &Tag{typ: TypeIntArray, intsVal: v} }

// LongArray creates a packed signed 64-bit array tag.
func LongArray(v []int64) *Tag { return &Tag{typ: TypeLongArray, longsVal: v} }

// List creates a homogeneous list tag. Every element must be the same
// concrete variant; mixed or nil elements are rejected so that a
// heterogeneous list is never constructible.
func List(elems ...*Tag) (*Tag, error) {
	for i, e := range elems {
		if e == nil {
			return nil, typeErrorf("list element %d is nil", i)
		}
		if e.typ != elems[0].typ {
			return nil, typeErrorf("mixed types in list: %s != %s", elems[0].typ, e.typ)
		}
	}
	return &Tag{typ: TypeList, list: elems}, nil
}

func newList(elems []*Tag) *Tag { return &Tag{typ: TypeList, list: elems} }

// Compound creates an ordered compound tag from entries. A nil entry value
// is permitted only in merge patches passed to Update, where it marks a
// deletion; it cannot be encoded.
func Compound(entries ...CompoundEntry) *Tag {
	return &Tag{typ: TypeCompound, comp: entries}
}

// Entry pairs a name with a tag for use in Compound construction.
func Entry(name string, t *Tag) CompoundEntry {
	return CompoundEntry{Name: name, Tag: t}
}

// NewRoot wraps a body tag in a document root: a compound holding exactly
// one entry under the empty name, encoded without a trailing terminator.
func NewRoot(body *Tag) *Tag {
	return &Tag{typ: TypeCompound, comp: []CompoundEntry{{Name: "", Tag: body}}, root: true}
}

// ============================================================
// Accessors
// ============================================================

// Type returns the tag variant.
func (t *Tag) Type() TagType {
	if t == nil {
		return TypeEnd
	}
	return t.typ
}

// IsRoot reports whether this compound is a document root.
func (t *Tag) IsRoot() bool { return t != nil && t.root }

// Body returns the single entry of a document root, or nil if this is not
// a root compound with at least one entry.
func (t *Tag) Body() *Tag {
	if t == nil || t.typ != TypeCompound || len(t.comp) == 0 {
		return nil
	}
	return t.comp[0].Tag
}

// AsByte returns the 8-bit integer value.
func (t *Tag) AsByte() (int8, error) {
	if t == nil || t.typ != TypeByte {
		return 0, typeErrorf("expected byte, got %s", t.Type())
	}
	return int8(t.num), nil
}

// AsShort returns the 16-bit integer value.
func (t *Tag) AsShort() (int16, error) {
	if t == nil || t.typ != TypeShort {
		return 0, typeErrorf("expected short, got %s", t.Type())
	}
	return int16(t.num), nil
}

// AsInt returns the 32-bit integer value.
func (t *Tag) AsInt() (int32, error) {
	if t == nil || t.typ != TypeInt {
		return 0, typeErrorf("expected int, got %s", t.Type())
	}
	return int32(t.num), nil
}

// AsLong returns the 64-bit integer value.
func (t *Tag) AsLong() (int64, error) {
	if t == nil || t.typ != TypeLong {
		return 0, typeErrorf("expected long, got %s", t.Type())
	}
	return t.num, nil
}

// AsFloat returns the 32-bit float value.
func (t *Tag) AsFloat() (float32, error) {
	if t == nil || t.typ != TypeFloat {
		return 0, typeErrorf("expected float, got %s", t.Type())
	}
	return float32(t.fnum), nil
}

// AsDouble returns the 64-bit float value.
func (t *Tag) AsDouble() (float64, error) {
	if t == nil || t.typ != TypeDouble {
		return 0, typeErrorf("expected double, got %s", t.Type())
	}
	return t.fnum, nil
}

// AsString returns the string value.
func (t *Tag) AsString() (string, error) {
	if t == nil || t.typ != TypeString {
		return "", typeErrorf("expected string, got %s", t.Type())
	}
	return t.str, nil
}

// AsByteArray returns the 8-bit array contents.
func (t *Tag) AsByteArray() ([]int8, error) {
	if t == nil || t.typ != TypeByteArray {
		return nil, typeErrorf("expected byte-array, got %s", t.Type())
	}
	return t.bytesVal, nil
}

// AsIntArray returns the 32-bit array contents.
func (t *Tag) AsIntArray() ([]int32, error) {
	if t == nil || t.typ != TypeIntArray {
		return nil, typeErrorf("expected int-array, got %s", t.Type())
	}
	return t.intsVal, nil
}

// AsLongArray returns the 64-bit array contents. The values are the raw
// two's complement words regardless of unsigned interpretation.
func (t *Tag) AsLongArray() ([]int64, error) {
	if t == nil || t.typ != TypeLongArray {
		return nil, typeErrorf("expected long-array, got %s", t.Type())
	}
	return t.longsVal, nil
}

// AsList returns the list elements.
func (t *Tag) AsList() ([]*Tag, error) {
	if t == nil || t.typ != TypeList {
		return nil, typeErrorf("expected list, got %s", t.Type())
	}
	return t.list, nil
}

// Entries returns the compound's entries in insertion order.
func (t *Tag) Entries() ([]CompoundEntry, error) {
	if t == nil || t.typ != TypeCompound {
		return nil, typeErrorf("expected compound, got %s", t.Type())
	}
	return t.comp, nil
}

// ElemType returns the element variant of a list, or TypeEnd for an empty
// list or a non-list tag.
func (t *Tag) ElemType() TagType {
	if t == nil || t.typ != TypeList || len(t.list) == 0 {
		return TypeEnd
	}
	return t.list[0].typ
}

// Len returns the element count of a list, compound, array, or string,
// and 0 for scalars.
func (t *Tag) Len() int {
	if t == nil {
		return 0
	}
	switch t.typ {
	case TypeList:
		return len(t.list)
	case TypeCompound:
		return len(t.comp)
	case TypeByteArray:
		return len(t.bytesVal)
	case TypeIntArray:
		return len(t.intsVal)
	case TypeLongArray:
		return len(t.longsVal)
	case TypeString:
		return len(t.str)
	default:
		return 0
	}
}

// Get returns the compound value stored under key, or nil if this is not
// a compound or the key is absent.
func (t *Tag) Get(key string) *Tag {
	if t == nil || t.typ != TypeCompound {
		return nil
	}
	for _, e := range t.comp {
		if e.Name == key {
			return e.Tag
		}
	}
	return nil
}

// Keys returns the compound's keys in insertion order.
func (t *Tag) Keys() []string {
	if t == nil || t.typ != TypeCompound {
		return nil
	}
	keys := make([]string, len(t.comp))
	for i, e := range t.comp {
		keys[i] = e.Name
	}
	return keys
}

// Index returns element i of a list, or a synthesized scalar tag for
// element i of a numeric array. Negative indices count from the end.
func (t *Tag) Index(i int) (*Tag, error) {
	if t == nil {
		return nil, typeErrorf("nil tag")
	}
	n := t.Len()
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, pathErrorf("index %d not in range (%d entries)", i, n)
	}
	switch t.typ {
	case TypeList:
		return t.list[i], nil
	case TypeByteArray:
		return Byte(t.bytesVal[i]), nil
	case TypeIntArray:
		return Int(t.intsVal[i]), nil
	case TypeLongArray:
		return Long(t.longsVal[i]), nil
	default:
		return nil, typeErrorf("cannot index %s", t.typ)
	}
}

// ============================================================
// Mutators
// ============================================================

// Set stores a value under key in a compound, replacing an existing entry
// in place or appending a new one. Panics on non-compounds: mutating the
// wrong variant is a programming error, not a data error.
func (t *Tag) Set(key string, v *Tag) {
	if t.typ != TypeCompound {
		panic("nbt: cannot set on non-compound")
	}
	for i := range t.comp {
		if t.comp[i].Name == key {
			t.comp[i].Tag = v
			return
		}
	}
	t.comp = append(t.comp, CompoundEntry{Name: key, Tag: v})
}

// Delete removes a key from a compound. Removing an absent key is a no-op.
func (t *Tag) Delete(key string) {
	if t.typ != TypeCompound {
		panic("nbt: cannot delete on non-compound")
	}
	for i := range t.comp {
		if t.comp[i].Name == key {
			t.comp = append(t.comp[:i], t.comp[i+1:]...)
			return
		}
	}
}

// Append adds an element to a list, enforcing homogeneity.
func (t *Tag) Append(v *Tag) error {
	if t.typ != TypeList {
		return typeErrorf("cannot append to %s", t.Type())
	}
	if v == nil {
		return typeErrorf("cannot append nil tag")
	}
	if len(t.list) > 0 && t.list[0].typ != v.typ {
		return typeErrorf("mixed types in list: %s != %s", t.list[0].typ, v.typ)
	}
	t.list = append(t.list, v)
	return nil
}

// Update merges another compound into this one, recursively. For each
// incoming entry: a nil value deletes the key, two compounds merge
// recursively, and anything else replaces the existing value. Keys absent
// from the incoming compound are left untouched.
func (t *Tag) Update(other *Tag) error {
	if t == nil || t.typ != TypeCompound || other == nil || other.typ != TypeCompound {
		return typeErrorf("update requires two compounds, got %s and %s", t.Type(), other.Type())
	}
	for _, e := range other.comp {
		old := t.Get(e.Name)
		switch {
		case old != nil && e.Tag == nil:
			t.Delete(e.Name)
		case old == nil && e.Tag == nil:
			// Deleting an absent key is a no-op.
		case old != nil && old.typ == TypeCompound && e.Tag.typ == TypeCompound:
			if err := old.Update(e.Tag); err != nil {
				return err
			}
		default:
			t.Set(e.Name, e.Tag)
		}
	}
	return nil
}

// ============================================================
// Value semantics
// ============================================================

// Equal reports logical equality: same variant and same contained data,
// recursively. Compound entry order is ignored; use EqualExact when byte
// identity (including entry order and signedness interpretation) matters.
func (t *Tag) Equal(other *Tag) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.typ != other.typ {
		return false
	}
	switch t.typ {
	case TypeByte, TypeShort, TypeInt, TypeLong:
		return t.num == other.num
	case TypeFloat, TypeDouble:
		return t.fnum == other.fnum
	case TypeString:
		return t.str == other.str
	case TypeByteArray:
		return slices.Equal(t.bytesVal, other.bytesVal)
	case TypeIntArray:
		return slices.Equal(t.intsVal, other.intsVal)
	case TypeLongArray:
		if !slices.Equal(t.longsVal, other.longsVal) {
			return false
		}
		if t.unsigned != other.unsigned {
			// Interpretations diverge only for words with the sign bit set.
			for _, v := range t.longsVal {
				if v < 0 {
					return false
				}
			}
		}
		return true
	case TypeList:
		if len(t.list) != len(other.list) {
			return false
		}
		for i := range t.list {
			if !t.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case TypeCompound:
		if len(t.comp) != len(other.comp) {
			return false
		}
		for _, e := range t.comp {
			o := other.Get(e.Name)
			if o == nil && e.Tag != nil {
				return false
			}
			if e.Tag == nil {
				if o != nil {
					return false
				}
				continue
			}
			if !e.Tag.Equal(o) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Less orders scalar and string tags by value. Numeric tags compare across
// widths; anything else is not ordered.
func (t *Tag) Less(other *Tag) (bool, error) {
	if t == nil || other == nil {
		return false, typeErrorf("nil tag is not ordered")
	}
	an, aok := t.number()
	bn, bok := other.number()
	if aok && bok {
		return an < bn, nil
	}
	if t.typ == TypeString && other.typ == TypeString {
		return t.str < other.str, nil
	}
	return false, typeErrorf("%s and %s are not ordered", t.typ, other.typ)
}

func (t *Tag) number() (float64, bool) {
	switch t.typ {
	case TypeByte, TypeShort, TypeInt, TypeLong:
		return float64(t.num), true
	case TypeFloat, TypeDouble:
		return t.fnum, true
	default:
		return 0, false
	}
}

// DeepCopy returns a structurally independent copy that is logically equal
// to the source and re-encodes to identical bytes.
func (t *Tag) DeepCopy() *Tag {
	if t == nil {
		return nil
	}
	c := &Tag{typ: t.typ, num: t.num, fnum: t.fnum, str: t.str, unsigned: t.unsigned, root: t.root}
	switch t.typ {
	case TypeByteArray:
		c.bytesVal = slices.Clone(t.bytesVal)
	case TypeIntArray:
		c.intsVal = slices.Clone(t.intsVal)
	case TypeLongArray:
		c.longsVal = slices.Clone(t.longsVal)
	case TypeList:
		c.list = make([]*Tag, len(t.list))
		for i, e := range t.list {
			c.list[i] = e.DeepCopy()
		}
	case TypeCompound:
		c.comp = make([]CompoundEntry, len(t.comp))
		for i, e := range t.comp {
			c.comp[i] = CompoundEntry{Name: e.Name, Tag: e.Tag.DeepCopy()}
		}
	}
	return c
}

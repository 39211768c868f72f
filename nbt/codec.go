package nbt

import (
	"encoding/binary"
	"math"
)

// Binary wire codec. All fixed-width fields are big-endian. The decode
// side is discriminant-directed and the encode side is its structural
// inverse; both dispatch on the TagType table in tag.go so the
// discriminant values live in exactly one place.

// unsignedArrayKeys forces an unsigned interpretation on long arrays
// decoded under these compound keys. The wire bytes are unaffected; only
// logical equality and the tree display change. The array codec itself
// stays schema-agnostic.
var unsignedArrayKeys = map[string]struct{}{
	"BlockStates": {},
}

// breader is a sequential cursor over a byte slice.
type breader struct {
	data []byte
	pos  int
}

func (r *breader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, typeErrorf("truncated input: need %d bytes at offset %d, have %d", n, r.pos, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *breader) u8() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *breader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *breader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *breader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// count reads a 4-byte element count and validates it against the bytes
// actually remaining, so a corrupt count fails before any allocation.
// width is the minimum encoded size of one element.
func (r *breader) count(kind TagType, width int) (int, error) {
	n, err := r.u32()
	if err != nil {
		return 0, err
	}
	c := int(int32(n))
	if c < 0 || c*width > len(r.data)-r.pos {
		return 0, typeErrorf("invalid %s element count %d (%d bytes remain)", kind, c, len(r.data)-r.pos)
	}
	return c, nil
}

// ============================================================
// Decode
// ============================================================

// DecodeRoot decodes a document root from data. The root is a compound
// holding at most one named entry and carrying no terminator unless empty.
// Trailing bytes after the root are rejected.
func DecodeRoot(data []byte) (*Tag, error) {
	r := &breader{data: data}
	t, err := decodeRoot(r)
	if err != nil {
		return nil, err
	}
	if r.pos != len(r.data) {
		return nil, typeErrorf("%d trailing bytes after document root", len(r.data)-r.pos)
	}
	return t, nil
}

func decodeRoot(r *breader) (*Tag, error) {
	kind, err := r.u8()
	if err != nil {
		return nil, err
	}
	if kind == byte(TypeEnd) {
		return &Tag{typ: TypeCompound, root: true}, nil
	}
	name, err := decodeString(r)
	if err != nil {
		return nil, err
	}
	body, err := decodeValue(r, TagType(kind))
	if err != nil {
		return nil, err
	}
	if body.typ == TypeLongArray {
		_, body.unsigned = unsignedArrayKeys[name]
	}
	return &Tag{typ: TypeCompound, comp: []CompoundEntry{{Name: name, Tag: body}}, root: true}, nil
}

func decodeValue(r *breader, kind TagType) (*Tag, error) {
	switch kind {
	case TypeByte:
		v, err := r.u8()
		if err != nil {
			return nil, err
		}
		return Byte(int8(v)), nil
	case TypeShort:
		v, err := r.u16()
		if err != nil {
			return nil, err
		}
		return Short(int16(v)), nil
	case TypeInt:
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		return Int(int32(v)), nil
	case TypeLong:
		v, err := r.u64()
		if err != nil {
			return nil, err
		}
		return Long(int64(v)), nil
	case TypeFloat:
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		return Float(math.Float32frombits(v)), nil
	case TypeDouble:
		v, err := r.u64()
		if err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(v)), nil
	case TypeString:
		s, err := decodeString(r)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case TypeByteArray:
		n, err := r.u32()
		if err != nil {
			return nil, err
		}
		b, err := r.take(int(int32(n)))
		if err != nil {
			return nil, err
		}
		v := make([]int8, len(b))
		for i, c := range b {
			v[i] = int8(c)
		}
		return ByteArray(v), nil
	case TypeIntArray:
		count, err := r.count(TypeIntArray, 4)
		if err != nil {
			return nil, err
		}
		v := make([]int32, count)
		for i := range v {
			w, err := r.u32()
			if err != nil {
				return nil, err
			}
			v[i] = int32(w)
		}
		return IntArray(v), nil
	case TypeLongArray:
		count, err := r.count(TypeLongArray, 8)
		if err != nil {
			return nil, err
		}
		v := make([]int64, count)
		for i := range v {
			w, err := r.u64()
			if err != nil {
				return nil, err
			}
			v[i] = int64(w)
		}
		return LongArray(v), nil
	case TypeList:
		return decodeList(r)
	case TypeCompound:
		return decodeCompound(r)
	default:
		return nil, typeErrorf("unknown discriminant %d", kind)
	}
}

func decodeList(r *breader) (*Tag, error) {
	elem, err := r.u8()
	if err != nil {
		return nil, err
	}
	count, err := r.count(TypeList, 1)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return newList(nil), nil
	}
	kind := TagType(elem)
	if kind == TypeEnd || !kind.valid() {
		return nil, typeErrorf("list of %d elements with invalid element discriminant %d", count, elem)
	}
	elems := make([]*Tag, count)
	for i := range elems {
		elems[i], err = decodeValue(r, kind)
		if err != nil {
			return nil, err
		}
	}
	return newList(elems), nil
}

func decodeCompound(r *breader) (*Tag, error) {
	var entries []CompoundEntry
	for {
		kind, err := r.u8()
		if err != nil {
			return nil, err
		}
		if kind == byte(TypeEnd) {
			return Compound(entries...), nil
		}
		name, err := decodeString(r)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(r, TagType(kind))
		if err != nil {
			return nil, err
		}
		if v.typ == TypeLongArray {
			_, v.unsigned = unsignedArrayKeys[name]
		}
		entries = append(entries, CompoundEntry{Name: name, Tag: v})
	}
}

func decodeString(r *breader) (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return decodeMUTF8(b)
}

// ============================================================
// Encode
// ============================================================

// EncodeRoot encodes a document root compound: its single entry as a
// (discriminant, name, value) triple with no terminator, or a lone
// terminator byte when empty.
func EncodeRoot(t *Tag) ([]byte, error) {
	if t == nil || t.typ != TypeCompound {
		return nil, typeErrorf("document root must be a compound, got %s", t.Type())
	}
	if len(t.comp) == 0 {
		return []byte{byte(TypeEnd)}, nil
	}
	if len(t.comp) > 1 {
		return nil, typeErrorf("document root holds %d entries, want at most 1", len(t.comp))
	}
	e := t.comp[0]
	if e.Tag == nil {
		return nil, typeErrorf("document root entry %q is nil", e.Name)
	}
	dst := []byte{byte(e.Tag.typ)}
	dst = appendString(dst, e.Name)
	return appendValue(dst, e.Tag)
}

// MarshalBinary returns the tag's wire payload: the value bytes without a
// leading discriminant or name, exactly as the value appears inside a
// containing compound or list.
func (t *Tag) MarshalBinary() ([]byte, error) {
	if t == nil {
		return nil, typeErrorf("cannot encode nil tag")
	}
	if t.root {
		return EncodeRoot(t)
	}
	return appendValue(nil, t)
}

func appendValue(dst []byte, t *Tag) ([]byte, error) {
	var err error
	switch t.typ {
	case TypeByte:
		return append(dst, byte(t.num)), nil
	case TypeShort:
		return binary.BigEndian.AppendUint16(dst, uint16(t.num)), nil
	case TypeInt:
		return binary.BigEndian.AppendUint32(dst, uint32(t.num)), nil
	case TypeLong:
		return binary.BigEndian.AppendUint64(dst, uint64(t.num)), nil
	case TypeFloat:
		return binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(t.fnum))), nil
	case TypeDouble:
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(t.fnum)), nil
	case TypeString:
		return appendString(dst, t.str), nil
	case TypeByteArray:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(t.bytesVal)))
		for _, v := range t.bytesVal {
			dst = append(dst, byte(v))
		}
		return dst, nil
	case TypeIntArray:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(t.intsVal)))
		for _, v := range t.intsVal {
			dst = binary.BigEndian.AppendUint32(dst, uint32(v))
		}
		return dst, nil
	case TypeLongArray:
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(t.longsVal)))
		for _, v := range t.longsVal {
			dst = binary.BigEndian.AppendUint64(dst, uint64(v))
		}
		return dst, nil
	case TypeList:
		// An empty list carries a byte placeholder discriminant.
		elem := TypeByte
		if len(t.list) > 0 {
			elem = t.list[0].typ
		}
		dst = append(dst, byte(elem))
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(t.list)))
		for _, e := range t.list {
			if e.typ != elem {
				return nil, typeErrorf("mixed types in list: %s != %s", elem, e.typ)
			}
			dst, err = appendValue(dst, e)
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	case TypeCompound:
		for _, e := range t.comp {
			if e.Tag == nil {
				return nil, typeErrorf("compound entry %q is nil", e.Name)
			}
			dst = append(dst, byte(e.Tag.typ))
			dst = appendString(dst, e.Name)
			dst, err = appendValue(dst, e.Tag)
			if err != nil {
				return nil, err
			}
		}
		if !t.root || len(t.comp) == 0 {
			dst = append(dst, byte(TypeEnd))
		}
		return dst, nil
	default:
		return nil, typeErrorf("cannot encode %s", t.typ)
	}
}

func appendString(dst []byte, s string) []byte {
	body := appendMUTF8(nil, s)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(body)))
	return append(dst, body...)
}

// EqualExact reports byte-exact equality: both tags re-encode to identical
// wire payloads. Unlike Equal it is insensitive to the unsigned long-array
// interpretation (the bytes coincide) but sensitive to compound entry
// order.
func (t *Tag) EqualExact(other *Tag) (bool, error) {
	if t == nil || other == nil {
		return t == other, nil
	}
	if t.typ != other.typ {
		return false, nil
	}
	a, err := t.MarshalBinary()
	if err != nil {
		return false, err
	}
	b, err := other.MarshalBinary()
	if err != nil {
		return false, err
	}
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		if a[i] != b[i] {
			return false, nil
		}
	}
	return true, nil
}

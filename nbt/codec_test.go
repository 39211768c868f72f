package nbt

import (
	"bytes"
	"testing"
)

func sampleRoot(t *testing.T) *Tag {
	t.Helper()
	return NewRoot(Compound(
		Entry("byte", Byte(-1)),
		Entry("short", Short(300)),
		Entry("int", Int(70000)),
		Entry("long", Long(1<<40)),
		Entry("float", Float(1.5)),
		Entry("double", Double(-2.25)),
		Entry("str", String("héllo \U0001f30a")),
		Entry("bytes", ByteArray([]int8{-128, 0, 127})),
		Entry("ints", IntArray([]int32{-1, 0, 1})),
		Entry("longs", LongArray([]int64{-1, 1 << 62})),
		Entry("list", mustList(t, String("a"), String("b"))),
		Entry("empty", mustList(t)),
		Entry("inner", Compound(Entry("k", Int(5)))),
	))
}

func TestBinaryRoundTrip(t *testing.T) {
	root := sampleRoot(t)
	enc, err := EncodeRoot(root)
	if err != nil {
		t.Fatalf("EncodeRoot: %v", err)
	}
	dec, err := DecodeRoot(enc)
	if err != nil {
		t.Fatalf("DecodeRoot: %v", err)
	}
	if !root.Equal(dec) {
		t.Fatalf("round trip mismatch:\n%s\n%s", root, dec)
	}
	exact, err := root.EqualExact(dec)
	if err != nil || !exact {
		t.Fatalf("EqualExact = %v, %v", exact, err)
	}
}

func TestRootWireShape(t *testing.T) {
	// A root holding one named int: discriminant, name, value, and no
	// trailing terminator.
	root := NewRoot(Int(258))
	enc, err := EncodeRoot(root)
	if err != nil {
		t.Fatalf("EncodeRoot: %v", err)
	}
	want := []byte{0x03, 0x00, 0x00, 0x00, 0x00, 0x01, 0x02}
	if !bytes.Equal(enc, want) {
		t.Fatalf("encoded root = % x, want % x", enc, want)
	}

	// An empty root is a lone terminator byte.
	enc, err = EncodeRoot(&Tag{typ: TypeCompound, root: true})
	if err != nil {
		t.Fatalf("EncodeRoot(empty): %v", err)
	}
	if !bytes.Equal(enc, []byte{0x00}) {
		t.Fatalf("empty root = % x, want 00", enc)
	}
	dec, err := DecodeRoot([]byte{0x00})
	if err != nil || dec.Len() != 0 || !dec.IsRoot() {
		t.Fatalf("decode empty root = %v, %v", dec, err)
	}
}

func TestEmptyListPlaceholder(t *testing.T) {
	enc, err := mustList(t).MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	// Element discriminant falls back to the byte variant, count zero.
	want := []byte{0x01, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(enc, want) {
		t.Fatalf("empty list = % x, want % x", enc, want)
	}
}

func TestNestedCompoundTerminator(t *testing.T) {
	root := NewRoot(Compound(Entry("inner", Compound())))
	enc, err := EncodeRoot(root)
	if err != nil {
		t.Fatalf("EncodeRoot: %v", err)
	}
	// 0a "" { 0a "inner" { 00 } 00 }  with no terminator after the root
	// entry itself.
	want := []byte{
		0x0a, 0x00, 0x00,
		0x0a, 0x00, 0x05, 'i', 'n', 'n', 'e', 'r',
		0x00,
		0x00,
	}
	if !bytes.Equal(enc, want) {
		t.Fatalf("encoded = % x, want % x", enc, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"empty input", nil},
		{"unknown discriminant", []byte{0x63, 0x00, 0x00}},
		{"truncated name", []byte{0x03, 0x00, 0x05, 'a'}},
		{"truncated value", []byte{0x03, 0x00, 0x00, 0x01}},
		{"trailing bytes", []byte{0x01, 0x00, 0x00, 0x07, 0xff}},
		{"list of end tags", []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'l', 0x00, 0x00, 0x00, 0x00, 0x02}},
		{"negative int-array count", []byte{0x0b, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}},
		{"negative long-array count", []byte{0x0c, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}},
		{"negative byte-array count", []byte{0x07, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00}},
		{"int-array count past end", []byte{0x0b, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00}},
		{"long-array count past end", []byte{0x0c, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00}},
		{"list count past end", []byte{0x09, 0x00, 0x00, 0x01, 0x7f, 0xff, 0xff, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := DecodeRoot(tt.in); err == nil {
				t.Fatalf("DecodeRoot(% x) = %v, want error", tt.in, got)
			}
		})
	}
}

func TestBlockStatesDecodeUnsigned(t *testing.T) {
	root := NewRoot(Compound(
		Entry("BlockStates", LongArray([]int64{-1, 5})),
		Entry("Other", LongArray([]int64{-1, 5})),
	))
	enc, err := EncodeRoot(root)
	if err != nil {
		t.Fatalf("EncodeRoot: %v", err)
	}
	dec, err := DecodeRoot(enc)
	if err != nil {
		t.Fatalf("DecodeRoot: %v", err)
	}
	body := dec.Body()
	if !body.Get("BlockStates").unsigned {
		t.Fatal("BlockStates not decoded as unsigned")
	}
	if body.Get("Other").unsigned {
		t.Fatal("unrelated long array decoded as unsigned")
	}

	// The interpretations disagree on the sign-bit word, so logical
	// equality fails while the re-encoded bytes still coincide.
	if body.Get("BlockStates").Equal(body.Get("Other")) {
		t.Fatal("unsigned and signed arrays with sign-bit words compare equal")
	}
	exact, err := body.Get("BlockStates").EqualExact(body.Get("Other"))
	if err != nil || !exact {
		t.Fatalf("EqualExact = %v, %v, want true", exact, err)
	}

	// Round-tripping the unsigned interpretation preserves the raw words.
	again, err := DecodeRoot(enc)
	if err != nil {
		t.Fatalf("DecodeRoot: %v", err)
	}
	if !dec.Equal(again) {
		t.Fatal("decode is not deterministic")
	}
}

func TestMarshalBinaryRejectsMixedList(t *testing.T) {
	l := mustList(t, Int(1))
	l.list = append(l.list, String("x")) // bypass the constructor
	if _, err := l.MarshalBinary(); err == nil {
		t.Fatal("mixed list produced bytes")
	}
}

func TestEncodeRootRejectsNonRootShapes(t *testing.T) {
	if _, err := EncodeRoot(Int(1)); err == nil {
		t.Fatal("EncodeRoot accepted a scalar")
	}
	two := Compound(Entry("a", Int(1)), Entry("b", Int(2)))
	if _, err := EncodeRoot(two); err == nil {
		t.Fatal("EncodeRoot accepted a two-entry compound")
	}
}

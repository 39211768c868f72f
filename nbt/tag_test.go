package nbt

import (
	"errors"
	"testing"
)

func mustList(t *testing.T, elems ...*Tag) *Tag {
	t.Helper()
	l, err := List(elems...)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return l
}

func TestListHomogeneity(t *testing.T) {
	if _, err := List(Int(1), Int(2)); err != nil {
		t.Fatalf("homogeneous list rejected: %v", err)
	}
	if _, err := List(Int(1), String("x")); err == nil {
		t.Fatal("mixed list constructed")
	}
	if _, err := List(Int(1), nil); err == nil {
		t.Fatal("list with nil element constructed")
	}
	l := mustList(t, Byte(1))
	if err := l.Append(Short(2)); err == nil {
		t.Fatal("Append of mismatched variant succeeded")
	}
	if err := l.Append(Byte(2)); err != nil || l.Len() != 2 {
		t.Fatalf("Append: %v, len %d", err, l.Len())
	}
}

func TestAccessors(t *testing.T) {
	if v, err := Byte(-5).AsByte(); err != nil || v != -5 {
		t.Fatalf("AsByte = %d, %v", v, err)
	}
	if v, err := Long(1 << 40).AsLong(); err != nil || v != 1<<40 {
		t.Fatalf("AsLong = %d, %v", v, err)
	}
	if v, err := Double(1.5).AsDouble(); err != nil || v != 1.5 {
		t.Fatalf("AsDouble = %v, %v", v, err)
	}
	if _, err := Int(1).AsString(); err == nil {
		t.Fatal("AsString on int succeeded")
	}
	var terr *TypeError
	_, err := String("x").AsInt()
	if !errors.As(err, &terr) {
		t.Fatalf("AsInt on string = %v, want *TypeError", err)
	}
}

func TestCompoundOrderAndMutation(t *testing.T) {
	c := Compound(
		Entry("b", Int(2)),
		Entry("a", Int(1)),
	)
	if got := c.Keys(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("Keys = %v, want insertion order", got)
	}
	c.Set("a", Int(10))
	if got := c.Keys(); got[1] != "a" {
		t.Fatalf("Set replaced in place, Keys = %v", got)
	}
	if v, _ := c.Get("a").AsInt(); v != 10 {
		t.Fatalf("Get(a) = %d", v)
	}
	c.Set("c", Int(3))
	if got := c.Keys(); len(got) != 3 || got[2] != "c" {
		t.Fatalf("appended key out of order: %v", got)
	}
	c.Delete("b")
	if c.Get("b") != nil || c.Len() != 2 {
		t.Fatalf("Delete left %v", c.Keys())
	}
	c.Delete("missing") // no-op
}

func TestIndexNegativeAndArrays(t *testing.T) {
	l := mustList(t, String("a"), String("b"), String("c"))
	last, err := l.Index(-1)
	if err != nil {
		t.Fatalf("Index(-1): %v", err)
	}
	if v, _ := last.AsString(); v != "c" {
		t.Fatalf("Index(-1) = %q", v)
	}
	if _, err := l.Index(3); err == nil {
		t.Fatal("Index(3) in range")
	}
	arr := IntArray([]int32{7, 8, 9})
	e, err := arr.Index(1)
	if err != nil {
		t.Fatalf("array Index: %v", err)
	}
	if v, _ := e.AsInt(); v != 8 {
		t.Fatalf("array Index(1) = %d", v)
	}
}

func TestEqual(t *testing.T) {
	a := Compound(Entry("x", Int(1)), Entry("y", String("s")))
	b := Compound(Entry("y", String("s")), Entry("x", Int(1)))
	if !a.Equal(b) {
		t.Fatal("order-insensitive compound equality failed")
	}
	if a.Equal(Compound(Entry("x", Int(1)))) {
		t.Fatal("compounds with different key sets compare equal")
	}
	if Int(1).Equal(Long(1)) {
		t.Fatal("different variants compare equal")
	}
	if !ByteArray([]int8{1, 2}).Equal(ByteArray([]int8{1, 2})) {
		t.Fatal("equal byte arrays compare unequal")
	}
}

func TestEqualUnsignedLongArrays(t *testing.T) {
	signed := LongArray([]int64{1, 2, 3})
	unsigned := LongArray([]int64{1, 2, 3})
	unsigned.unsigned = true
	if !signed.Equal(unsigned) {
		t.Fatal("non-negative words should compare equal across interpretations")
	}
	signedNeg := LongArray([]int64{-1})
	unsignedNeg := LongArray([]int64{-1})
	unsignedNeg.unsigned = true
	if signedNeg.Equal(unsignedNeg) {
		t.Fatal("sign-bit words must differ across interpretations")
	}
}

func TestLess(t *testing.T) {
	if v, err := Byte(1).Less(Long(2)); err != nil || !v {
		t.Fatalf("Byte(1) < Long(2) = %v, %v", v, err)
	}
	if v, err := Double(3.5).Less(Int(3)); err != nil || v {
		t.Fatalf("Double(3.5) < Int(3) = %v, %v", v, err)
	}
	if v, err := String("a").Less(String("b")); err != nil || !v {
		t.Fatalf("string ordering = %v, %v", v, err)
	}
	if _, err := String("a").Less(Int(1)); err == nil {
		t.Fatal("string and int are ordered")
	}
	if _, err := Compound().Less(Compound()); err == nil {
		t.Fatal("compounds are ordered")
	}
}

func TestDeepCopy(t *testing.T) {
	src := Compound(
		Entry("nums", IntArray([]int32{1, 2})),
		Entry("inner", Compound(Entry("s", String("v")))),
	)
	cp := src.DeepCopy()
	if !src.Equal(cp) {
		t.Fatal("copy differs from source")
	}
	cp.Get("inner").Set("s", String("changed"))
	ints, _ := cp.Get("nums").AsIntArray()
	ints[0] = 99
	if v, _ := src.Get("inner").Get("s").AsString(); v != "v" {
		t.Fatal("mutating the copy reached the source compound")
	}
	if orig, _ := src.Get("nums").AsIntArray(); orig[0] != 1 {
		t.Fatal("mutating the copy reached the source array")
	}
	a, _ := src.MarshalBinary()
	b, _ := src.DeepCopy().MarshalBinary()
	if string(a) != string(b) {
		t.Fatal("copy re-encodes differently")
	}
}

func TestUpdate(t *testing.T) {
	base := Compound(
		Entry("keep", Int(1)),
		Entry("replace", String("old")),
		Entry("drop", Int(9)),
		Entry("nested", Compound(Entry("a", Int(1)), Entry("b", Int(2)))),
	)
	patch := Compound(
		Entry("replace", String("new")),
		Entry("drop", nil),
		Entry("nested", Compound(Entry("b", Int(20)), Entry("c", Int(3)))),
		Entry("added", Byte(1)),
	)
	if err := base.Update(patch); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if v, _ := base.Get("keep").AsInt(); v != 1 {
		t.Fatal("untouched key changed")
	}
	if v, _ := base.Get("replace").AsString(); v != "new" {
		t.Fatal("replacement not applied")
	}
	if base.Get("drop") != nil {
		t.Fatal("nil patch value did not delete the key")
	}
	nested := base.Get("nested")
	if v, _ := nested.Get("a").AsInt(); v != 1 {
		t.Fatal("recursive merge dropped an existing key")
	}
	if v, _ := nested.Get("b").AsInt(); v != 20 {
		t.Fatal("recursive merge did not replace")
	}
	if v, _ := nested.Get("c").AsInt(); v != 3 {
		t.Fatal("recursive merge did not add")
	}
	if err := base.Update(Int(1)); err == nil {
		t.Fatal("Update with a non-compound patch succeeded")
	}
}

func TestRootBody(t *testing.T) {
	body := Compound(Entry("x", Int(1)))
	root := NewRoot(body)
	if !root.IsRoot() {
		t.Fatal("NewRoot not marked as root")
	}
	if root.Body() != body {
		t.Fatal("Body does not return the wrapped tag")
	}
	if Compound().Body() != nil {
		t.Fatal("Body on an empty compound")
	}
}

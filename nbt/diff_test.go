package nbt

import (
	"testing"
)

func TestIsSubset(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal scalars", "1b", "1b", true},
		{"unequal scalars", "1b", "2b", false},
		{"variant mismatch", "1b", "1s", false},
		{"compound subset", `{id:"pear"}`, `{id:"pear", Count:1b}`, true},
		{"compound extra key", `{id:"pear", Count:1b}`, `{id:"pear"}`, false},
		{"nested subset", `{a:{x:1}}`, `{a:{x:1,y:2},b:3}`, true},
		{"list any-match", `[2,2]`, `[1,2,3]`, true},
		{"list no match", `[4]`, `[1,2,3]`, false},
		{"array equal", "[I;1,2]", "[I;1,2]", true},
		{"array length differs", "[I;1]", "[I;1,2]", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse(tt.a)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.a, err)
			}
			b, err := Parse(tt.b)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.b, err)
			}
			if got := a.IsSubset(b); got != tt.want {
				t.Fatalf("IsSubset(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSubsetLaw(t *testing.T) {
	// Mutual containment implies logical equality for compounds, arrays,
	// and scalars.
	pairs := [][2]string{
		{`{a:1,b:{c:2}}`, `{b:{c:2},a:1}`},
		{"[I;1,2,3]", "[I;1,2,3]"},
		{`"s"`, `"s"`},
	}
	for _, p := range pairs {
		a, _ := Parse(p[0])
		b, _ := Parse(p[1])
		if !a.IsSubset(b) || !b.IsSubset(a) {
			t.Fatalf("mutual subset failed for %s / %s", p[0], p[1])
		}
		if !a.Equal(b) {
			t.Fatalf("mutual subset without equality for %s / %s", p[0], p[1])
		}
	}

	// Lists are exempt: non-injective matching allows mutual containment
	// between unequal lists.
	a, _ := Parse("[1,1,2]")
	b, _ := Parse("[2,2,1]")
	if !a.IsSubset(b) || !b.IsSubset(a) {
		t.Fatal("expected mutual containment between multisets")
	}
	if a.Equal(b) {
		t.Fatal("lists compare equal")
	}
}

func TestDiffLeaves(t *testing.T) {
	a, _ := Parse(`{x:1, s:"a", arr:[I;1,2]}`)
	b, _ := Parse(`{x:2, s:"a", arr:[I;1,3]}`)
	diffs := a.Diff(b, DiffOptions{})
	if len(diffs) != 2 {
		t.Fatalf("got %d records: %v", len(diffs), diffs)
	}
	byPath := map[string]Difference{}
	for _, d := range diffs {
		byPath[d.Path] = d
	}
	if d, ok := byPath["x"]; !ok || d.Kind != DiffValue {
		t.Fatalf("missing value record at x: %v", diffs)
	}
	if d, ok := byPath["arr"]; !ok || d.Kind != DiffValue {
		t.Fatalf("missing value record at arr: %v", diffs)
	}
}

func TestDiffTypeMismatchStopsRecursion(t *testing.T) {
	a, _ := Parse(`{x:{deep:1}}`)
	b, _ := Parse(`{x:[1]}`)
	diffs := a.Diff(b, DiffOptions{})
	if len(diffs) != 1 || diffs[0].Kind != DiffType || diffs[0].Path != "x" {
		t.Fatalf("got %v", diffs)
	}
}

func TestDiffMissingKeys(t *testing.T) {
	a, _ := Parse(`{onlyA:1, both:2}`)
	b, _ := Parse(`{both:2, onlyB:3}`)
	diffs := a.Diff(b, DiffOptions{})
	if len(diffs) != 2 {
		t.Fatalf("got %v", diffs)
	}
	kinds := map[string]DiffKind{}
	for _, d := range diffs {
		kinds[d.Path] = d.Kind
	}
	if kinds["onlyA"] != DiffMissingRight || kinds["onlyB"] != DiffMissingLeft {
		t.Fatalf("got %v", kinds)
	}
}

func TestDiffListsPositional(t *testing.T) {
	a, _ := Parse(`["x","y"]`)
	b, _ := Parse(`["y","x"]`)
	diffs := a.Diff(b, DiffOptions{})
	// Strict positional comparison reports both slots.
	if len(diffs) != 2 || diffs[0].Path != "[0]" || diffs[1].Path != "[1]" {
		t.Fatalf("got %v", diffs)
	}

	short, _ := Parse(`["x"]`)
	diffs = a.Diff(short, DiffOptions{})
	if len(diffs) != 1 || diffs[0].Kind != DiffLength {
		t.Fatalf("got %v", diffs)
	}
}

func TestDiffKeyOrder(t *testing.T) {
	a, _ := Parse(`{a:1, b:2}`)
	b, _ := Parse(`{b:2, a:1}`)
	if diffs := a.Diff(b, DiffOptions{}); len(diffs) != 0 {
		t.Fatalf("order-insensitive diff reported %v", diffs)
	}
	diffs := a.Diff(b, DiffOptions{OrderMatters: true})
	if len(diffs) != 1 || diffs[0].Kind != DiffKeyOrder {
		t.Fatalf("got %v", diffs)
	}
}

func TestDiffEqualTreesEmpty(t *testing.T) {
	a := sampleRoot(t)
	if diffs := a.Diff(a.DeepCopy(), DiffOptions{OrderMatters: true}); len(diffs) != 0 {
		t.Fatalf("diff of equal trees: %v", diffs)
	}
}

package vectorizer

import (
	"math"
	"testing"
)

// fakeTable is a fixed lookup table.
type fakeTable struct {
	dim  int
	vecs map[string][]float32
}

func (f *fakeTable) Dim() int { return f.dim }
func (f *fakeTable) Len() int { return len(f.vecs) }
func (f *fakeTable) Contains(tok string) bool {
	_, ok := f.vecs[tok]
	return ok
}
func (f *fakeTable) Vector(tok string) ([]float32, bool) {
	v, ok := f.vecs[tok]
	return v, ok
}

// composingTable composes a fixed vector for any token starting with "go".
type composingTable struct {
	fakeTable
}

func (c *composingTable) Compose(tok string) ([]float32, bool) {
	if v, ok := c.Vector(tok); ok {
		return v, true
	}
	if len(tok) >= 2 && tok[:2] == "go" {
		return []float32{10, 10}, true
	}
	return nil, false
}

func goodBad() *fakeTable {
	return &fakeTable{dim: 2, vecs: map[string][]float32{
		"good": {1, 0},
		"bad":  {0, 1},
		"ok":   {0.5, 0.5},
	}}
}

func closeEnough(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-6
}

func assertVec(t *testing.T, got, want []float32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if !closeEnough(got[i], want[i]) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestVectorize(t *testing.T) {
	tbl := goodBad()
	tests := []struct {
		name string
		doc  []string
		want []float32
	}{
		{"single token", []string{"good"}, []float32{1, 0}},
		{"mean of two", []string{"good", "bad"}, []float32{0.5, 0.5}},
		{"repeated token counts twice", []string{"good", "good", "bad"}, []float32{2.0 / 3, 1.0 / 3}},
		{"oov skipped", []string{"good", "great", "bad"}, []float32{0.5, 0.5}},
		{"empty document", nil, []float32{0, 0}},
		{"all oov", []string{"x", "y"}, []float32{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVec(t, Vectorize(tt.doc, tbl), tt.want)
		})
	}
}

func TestVectorize_DoesNotMutateTable(t *testing.T) {
	tbl := goodBad()
	_ = Vectorize([]string{"good", "bad", "good"}, tbl)
	assertVec(t, tbl.vecs["good"], []float32{1, 0})
	assertVec(t, tbl.vecs["bad"], []float32{0, 1})
}

func TestVectorize_SingleKnownTokenIsCopied(t *testing.T) {
	tbl := goodBad()
	out := Vectorize([]string{"good"}, tbl)
	out[0] = 99
	assertVec(t, tbl.vecs["good"], []float32{1, 0})
}

func TestNew_Policies(t *testing.T) {
	tbl := &composingTable{fakeTable: *goodBad()}

	skip, err := New(tbl, Skip)
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, skip.Vectorize([]string{"goods", "bad"}), []float32{0, 1})

	comp, err := New(tbl, Compose)
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, comp.Vectorize([]string{"goods", "bad"}), []float32{5, 5.5})
	// Tokens nothing can compose are still skipped.
	assertVec(t, comp.Vectorize([]string{"zzz"}), []float32{0, 0})

	if _, err := New(tbl, "guess"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestNew_ComposeWithoutComposerFallsBackToSkip(t *testing.T) {
	v, err := New(goodBad(), Compose)
	if err != nil {
		t.Fatal(err)
	}
	assertVec(t, v.Vectorize([]string{"goods"}), []float32{0, 0})
}

func TestVectorizeAll(t *testing.T) {
	v, err := New(goodBad(), Skip)
	if err != nil {
		t.Fatal(err)
	}
	out := v.VectorizeAll([][]string{{"good"}, {}, {"bad", "ok"}})
	if len(out) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(out))
	}
	assertVec(t, out[0], []float32{1, 0})
	assertVec(t, out[1], []float32{0, 0})
	assertVec(t, out[2], []float32{0.25, 0.75})
	if v.Dim() != 2 {
		t.Fatalf("expected dim 2, got %d", v.Dim())
	}
}

func TestFeatures(t *testing.T) {
	got := Features([][]float32{{0.5, 1}, {}})
	if len(got) != 2 || len(got[0]) != 2 || got[0][0] != 0.5 || got[0][1] != 1 || len(got[1]) != 0 {
		t.Fatalf("unexpected features: %v", got)
	}
}

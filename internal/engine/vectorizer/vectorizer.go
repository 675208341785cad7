package vectorizer

import (
	"fmt"

	"github.com/viterin/vek/vek32"

	"github.com/crimson-sun/vecforest/internal/engine/embedder"
)

// OOV policies.
const (
	// Skip ignores tokens outside the table's vocabulary.
	Skip = "skip"
	// Compose asks a sub-word table to build vectors for unseen tokens.
	// Tables that cannot compose fall back to Skip.
	Compose = "compose"
)

// Vectorizer averages token vectors into fixed-length document vectors.
// It only reads the table, so one Vectorizer may be shared by goroutines.
type Vectorizer struct {
	table    embedder.Table
	composer embedder.Composer
}

// New returns a Vectorizer over table with the given OOV policy.
func New(table embedder.Table, policy string) (*Vectorizer, error) {
	v := &Vectorizer{table: table}
	switch policy {
	case "", Skip:
	case Compose:
		if c, ok := table.(embedder.Composer); ok {
			v.composer = c
		}
	default:
		return nil, fmt.Errorf("vectorizer: unknown oov policy %q", policy)
	}
	return v, nil
}

// Dim returns the length of produced vectors.
func (v *Vectorizer) Dim() int {
	return v.table.Dim()
}

// Vectorize returns the element-wise mean of the vectors of doc's known
// tokens. A document with no known tokens maps to the zero vector.
func (v *Vectorizer) Vectorize(doc []string) []float32 {
	out := make([]float32, v.table.Dim())
	var count int
	for _, tok := range doc {
		vec, ok := v.lookup(tok)
		if !ok {
			continue
		}
		vek32.Add_Inplace(out, vec)
		count++
	}
	if count > 1 {
		vek32.MulNumber_Inplace(out, 1/float32(count))
	}
	return out
}

// VectorizeAll vectorizes each document in order.
func (v *Vectorizer) VectorizeAll(docs [][]string) [][]float32 {
	out := make([][]float32, len(docs))
	for i, doc := range docs {
		out[i] = v.Vectorize(doc)
	}
	return out
}

func (v *Vectorizer) lookup(tok string) ([]float32, bool) {
	if vec, ok := v.table.Vector(tok); ok {
		return vec, true
	}
	if v.composer != nil {
		return v.composer.Compose(tok)
	}
	return nil, false
}

// Vectorize averages doc over table, skipping unknown tokens.
func Vectorize(doc []string, table embedder.Table) []float32 {
	v := &Vectorizer{table: table}
	return v.Vectorize(doc)
}

// Features widens document vectors to float64 feature rows.
func Features(vecs [][]float32) [][]float64 {
	out := make([][]float64, len(vecs))
	for i, vec := range vecs {
		row := make([]float64, len(vec))
		for j, x := range vec {
			row[j] = float64(x)
		}
		out[i] = row
	}
	return out
}

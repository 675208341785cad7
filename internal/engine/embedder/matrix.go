package embedder

import (
	"math/rand"

	"github.com/viterin/vek/vek32"
)

// matrix is a dense row-major float32 matrix.
type matrix struct {
	dim  int
	data []float32
}

func newMatrix(rows, dim int) *matrix {
	return &matrix{dim: dim, data: make([]float32, rows*dim)}
}

// randomize fills the matrix uniformly in [-0.5/dim, 0.5/dim).
func (m *matrix) randomize(rng *rand.Rand) {
	scale := 1 / float32(m.dim)
	for i := range m.data {
		m.data[i] = (rng.Float32() - 0.5) * scale
	}
}

func (m *matrix) row(i int32) []float32 {
	off := int(i) * m.dim
	return m.data[off : off+m.dim : off+m.dim]
}

func (m *matrix) rows() int {
	return len(m.data) / m.dim
}

// shadow is a worker-private view of a matrix. Rows are copied on first
// touch and written back by merge, so the shared matrix is only read while
// workers run.
type shadow struct {
	base  *matrix
	local map[int32][]float32
}

func newShadow(base *matrix) *shadow {
	return &shadow{base: base, local: make(map[int32][]float32)}
}

func (s *shadow) row(i int32) []float32 {
	if r, ok := s.local[i]; ok {
		return r
	}
	r := make([]float32, s.base.dim)
	copy(r, s.base.row(i))
	s.local[i] = r
	return r
}

// merge adds every worker's accumulated change into base and resets the
// shadows. Changes to a row are summed in worker order, which keeps seeded
// runs reproducible regardless of goroutine scheduling.
func merge(base *matrix, shadows []*shadow) {
	acc := make(map[int32][]float32)
	for _, s := range shadows {
		for i, r := range s.local {
			a, ok := acc[i]
			if !ok {
				a = make([]float32, base.dim)
				acc[i] = a
			}
			b := base.row(i)
			for d := range r {
				a[d] += r[d] - b[d]
			}
		}
		clear(s.local)
	}
	for i, a := range acc {
		vek32.Add_Inplace(base.row(i), a)
	}
}

// axpy computes y += a*x.
func axpy(y, x []float32, a float32) {
	for i := range y {
		y[i] += a * x[i]
	}
}

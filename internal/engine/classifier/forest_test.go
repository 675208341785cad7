package classifier

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// separable returns two well-separated clusters on feature 0, with
// feature 1 as noise.
func separable() ([][]float64, []int) {
	var x [][]float64
	var y []int
	for i := range 20 {
		noise := float64(i%5) / 10
		x = append(x, []float64{-1 - float64(i)/20, noise})
		y = append(y, 0)
		x = append(x, []float64{1 + float64(i)/20, noise})
		y = append(y, 1)
	}
	return x, y
}

func fit(t *testing.T, cfg Config, x [][]float64, y []int) *Forest {
	t.Helper()
	f := New(cfg, nil)
	require.NoError(t, f.Fit(context.Background(), x, y))
	return f
}

func TestForest_SeparatesLinearlySeparableData(t *testing.T) {
	x, y := separable()
	f := fit(t, Config{Trees: 25, Seed: 42}, x, y)

	pred, err := f.PredictBatch(x)
	require.NoError(t, err)
	assert.Equal(t, y, pred)

	p, err := f.Predict([]float64{-5, 0.2})
	require.NoError(t, err)
	assert.Equal(t, 0, p)
	p, err = f.Predict([]float64{5, 0.2})
	require.NoError(t, err)
	assert.Equal(t, 1, p)
}

func TestForest_ProbaSumsToOne(t *testing.T) {
	x, y := separable()
	f := fit(t, Config{Trees: 10, Seed: 1}, x, y)

	for _, row := range [][]float64{{-2, 0}, {0, 0}, {2, 0.4}} {
		proba, err := f.PredictProba(row)
		require.NoError(t, err)
		require.Len(t, proba, 2)
		assert.InDelta(t, 1.0, floats.Sum(proba), 1e-9)
		for _, p := range proba {
			assert.GreaterOrEqual(t, p, 0.0)
		}
	}
}

func TestForest_CategoricalLabels(t *testing.T) {
	var x [][]float64
	var y []int
	for c := 1; c <= 4; c++ {
		for i := range 8 {
			x = append(x, []float64{float64(c * 10), float64(i)})
			y = append(y, c)
		}
	}
	f := fit(t, Config{Trees: 30, Seed: 7, Workers: 4}, x, y)

	assert.Equal(t, []int{1, 2, 3, 4}, f.Classes())
	for c := 1; c <= 4; c++ {
		p, err := f.Predict([]float64{float64(c * 10), 3})
		require.NoError(t, err)
		assert.Equal(t, c, p)
	}
}

func TestForest_SingleClass(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []int{1, 1, 1}
	f := fit(t, Config{Trees: 3, Seed: 1}, x, y)

	proba, err := f.PredictProba([]float64{10})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, proba)
	p, err := f.Predict([]float64{10})
	require.NoError(t, err)
	assert.Equal(t, 1, p)
}

func TestForest_TieGoesToSmallestClass(t *testing.T) {
	f := &Forest{
		classes:   []int{1, 3},
		nFeatures: 1,
		trees:     []*tree{{nodes: []node{{feature: leaf, proba: []float64{0.5, 0.5}}}}},
	}
	p, err := f.Predict([]float64{0})
	require.NoError(t, err)
	assert.Equal(t, 1, p)
}

func TestForest_SeedReproducibleAcrossWorkers(t *testing.T) {
	x, y := separable()
	a := fit(t, Config{Trees: 12, Seed: 9, Workers: 1}, x, y)
	b := fit(t, Config{Trees: 12, Seed: 9, Workers: 4}, x, y)

	for _, row := range [][]float64{{-0.5, 0.1}, {0.01, 0.3}, {0.9, 0}} {
		pa, err := a.PredictProba(row)
		require.NoError(t, err)
		pb, err := b.PredictProba(row)
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	}
}

func TestForest_FitErrors(t *testing.T) {
	f := New(DefaultConfig(), nil)

	err := f.Fit(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoSamples)

	err = f.Fit(context.Background(), [][]float64{{1}}, []int{0, 1})
	assert.Error(t, err)

	err = f.Fit(context.Background(), [][]float64{{1, 2}, {1}}, []int{0, 1})
	assert.Error(t, err)
}

func TestForest_FitCancelled(t *testing.T) {
	x, y := separable()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(Config{Trees: 5}, nil)
	err := f.Fit(ctx, x, y)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = f.Predict(x[0])
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestForest_PredictWrongWidth(t *testing.T) {
	x, y := separable()
	f := fit(t, Config{Trees: 2, Seed: 1}, x, y)
	_, err := f.Predict([]float64{1})
	assert.Error(t, err)
}

func TestScanFeature_GiniThreshold(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {10}, {11}}
	y := []int{0, 0, 0, 1, 1}
	b := newBuilder(Config{MinSamplesSplit: 2, MinSamplesLeaf: 1}, x, y, 2, 1, nil)

	s, ok := b.scanFeature([]int{4, 0, 3, 1, 2}, 0)
	require.True(t, ok)
	assert.Equal(t, 6.5, s.threshold)
	assert.Equal(t, 3, s.pos)
	// Both children pure: 3^2/3 + 2^2/2.
	assert.InDelta(t, 5.0, s.score, 1e-12)
}

func TestScanFeature_MinSamplesLeaf(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []int{1, 0, 0, 0}
	b := newBuilder(Config{MinSamplesSplit: 2, MinSamplesLeaf: 2}, x, y, 2, 1, nil)

	s, ok := b.scanFeature([]int{0, 1, 2, 3}, 0)
	require.True(t, ok)
	assert.Equal(t, 2.5, s.threshold)
}

func TestScanFeature_ConstantFeature(t *testing.T) {
	x := [][]float64{{1}, {1}, {1}}
	y := []int{0, 1, 0}
	b := newBuilder(Config{MinSamplesSplit: 2, MinSamplesLeaf: 1}, x, y, 2, 1, nil)

	_, ok := b.scanFeature([]int{0, 1, 2}, 0)
	assert.False(t, ok)
}

func TestGrow_PureLeavesWithUnlimitedDepth(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []int{0, 1, 0, 1}
	b := newBuilder(DefaultConfig(), x, y, 2, 1, rand.New(rand.NewSource(1)))
	b.grow([]int{0, 1, 2, 3}, 0)

	for i, row := range x {
		proba := b.t.leafProba(row)
		assert.Equal(t, 1.0, proba[y[i]], "row %d", i)
	}
	assert.False(t, math.IsNaN(b.t.leafProba([]float64{1.5})[0]))
}

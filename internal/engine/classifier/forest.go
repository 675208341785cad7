package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrNoSamples is returned when Fit receives no training rows.
	ErrNoSamples = errors.New("classifier: no training samples")
	// ErrNotFitted is returned by prediction before a successful Fit.
	ErrNotFitted = errors.New("classifier: forest not fitted")
)

// Config holds random forest hyperparameters.
type Config struct {
	Trees           int
	MaxFeatures     int // candidate features per split; 0 = sqrt(features)
	MaxDepth        int // 0 = grow until leaves are pure
	MinSamplesSplit int
	MinSamplesLeaf  int
	Workers         int   // trees fitted concurrently
	Seed            int64 // 0 seeds from the clock
}

// DefaultConfig returns the forest used by the experiments.
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Workers:         1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Trees <= 0 {
		c.Trees = d.Trees
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = d.MinSamplesSplit
	}
	if c.MinSamplesLeaf < 1 {
		c.MinSamplesLeaf = d.MinSamplesLeaf
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// Forest is a random forest of CART trees using Gini impurity and
// bootstrap sampling. After Fit it is read-only and safe for concurrent
// prediction.
type Forest struct {
	cfg       Config
	logger    *slog.Logger
	classes   []int
	nFeatures int
	trees     []*tree
}

// New creates an unfitted forest.
func New(cfg Config, logger *slog.Logger) *Forest {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forest{cfg: cfg.withDefaults(), logger: logger}
}

// Classes returns the sorted class labels seen by Fit. PredictProba returns
// probabilities in this order.
func (f *Forest) Classes() []int {
	return slices.Clone(f.classes)
}

// Fit trains the forest on rows x with labels y. Each tree sees a bootstrap
// sample of the rows. Refitting replaces the previous model.
func (f *Forest) Fit(ctx context.Context, x [][]float64, y []int) error {
	if len(x) == 0 {
		return ErrNoSamples
	}
	if len(x) != len(y) {
		return fmt.Errorf("classifier: %d rows but %d labels", len(x), len(y))
	}
	nf := len(x[0])
	if nf == 0 {
		return errors.New("classifier: rows have no features")
	}
	for i, row := range x {
		if len(row) != nf {
			return fmt.Errorf("classifier: row %d has %d features, want %d", i, len(row), nf)
		}
	}

	start := time.Now()
	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	yIdx := make([]int, len(y))
	for i, label := range y {
		yIdx[i], _ = slices.BinarySearch(classes, label)
	}

	mtry := f.cfg.MaxFeatures
	if mtry <= 0 || mtry > nf {
		mtry = max(1, int(math.Sqrt(float64(nf))))
	}

	seed := f.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	trees := make([]*tree, f.cfg.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers)
	for i := range trees {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seed + int64(i)))
			b := newBuilder(f.cfg, x, yIdx, len(classes), mtry, rng)
			b.grow(bootstrap(len(x), rng), 0)
			trees[i] = b.t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("classifier: fit: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("classifier: fit: %w", err)
	}

	f.classes = classes
	f.nFeatures = nf
	f.trees = trees

	f.logger.Info("forest fitted",
		"trees", len(trees),
		"samples", len(x),
		"features", nf,
		"classes", len(classes),
		"duration", time.Since(start),
	)
	return nil
}

func bootstrap(n int, rng *rand.Rand) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = rng.Intn(n)
	}
	return s
}

// PredictProba returns the mean of per-tree class probabilities for x,
// ordered as Classes.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, ErrNotFitted
	}
	if len(x) != f.nFeatures {
		return nil, fmt.Errorf("classifier: got %d features, want %d", len(x), f.nFeatures)
	}
	proba := make([]float64, len(f.classes))
	for _, t := range f.trees {
		floats.Add(proba, t.leafProba(x))
	}
	floats.Scale(1/float64(len(f.trees)), proba)
	return proba, nil
}

// Predict returns the most probable class for x. Ties go to the smallest
// class label.
func (f *Forest) Predict(x []float64) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return f.classes[floats.MaxIdx(proba)], nil
}

// PredictBatch predicts every row of xs.
func (f *Forest) PredictBatch(xs [][]float64) ([]int, error) {
	out := make([]int, len(xs))
	for i, x := range xs {
		p, err := f.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("classifier: row %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

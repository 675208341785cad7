package embedder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Embedding algorithms.
const (
	Word2Vec = "word2vec" // whole-word skip-gram
	FastText = "fasttext" // skip-gram over words and character n-grams
)

// ErrEmptyCorpus is returned when training documents contain no usable tokens.
var ErrEmptyCorpus = errors.New("embedder: empty training corpus")

// Table is a read-only token to vector mapping built from training documents.
// Returned vectors are shared and must not be modified.
type Table interface {
	Dim() int
	Len() int
	Contains(token string) bool
	Vector(token string) ([]float32, bool)
}

// Composer is implemented by tables that can synthesize vectors for
// out-of-vocabulary tokens from sub-word fragments.
type Composer interface {
	Compose(token string) ([]float32, bool)
}

// Trainer fits an embedding table on training documents.
type Trainer interface {
	Train(ctx context.Context, docs [][]string) (Table, error)
}

// Config holds trainer hyperparameters. Zero values of required fields are
// replaced by DefaultConfig's.
type Config struct {
	Dim      int
	Window   int
	MinCount int // tokens seen fewer times are dropped; 0 keeps everything
	Epochs   int
	Negative int
	Workers  int
	Alpha    float64 // initial learning rate
	MinAlpha float64 // learning rate at the end of the last epoch
	Sample   float64 // frequent-word down-sampling threshold, 0 = off

	// FastText only.
	MinN      int
	MaxN      int
	Buckets   int
	CacheSize int // composed out-of-vocabulary vectors kept in memory

	// Seed fixes initialization and worker randomness. 0 seeds from the clock.
	Seed int64
}

// DefaultConfig returns the hyperparameters used by the experiments.
func DefaultConfig() Config {
	return Config{
		Dim:       100,
		Window:    5,
		MinCount:  0,
		Epochs:    5,
		Negative:  5,
		Workers:   4,
		Alpha:     0.025,
		MinAlpha:  0.0001,
		Sample:    1e-3,
		MinN:      3,
		MaxN:      6,
		Buckets:   2000000,
		CacheSize: 4096,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Dim <= 0 {
		c.Dim = d.Dim
	}
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.Epochs <= 0 {
		c.Epochs = d.Epochs
	}
	if c.Negative <= 0 {
		c.Negative = d.Negative
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.Alpha <= 0 {
		c.Alpha = d.Alpha
	}
	if c.MinAlpha <= 0 || c.MinAlpha > c.Alpha {
		c.MinAlpha = d.MinAlpha
	}
	if c.MinN <= 0 {
		c.MinN = d.MinN
	}
	if c.MaxN < c.MinN {
		c.MaxN = max(d.MaxN, c.MinN)
	}
	if c.Buckets <= 0 {
		c.Buckets = d.Buckets
	}
	if c.CacheSize <= 0 {
		c.CacheSize = d.CacheSize
	}
	return c
}

func (c Config) seed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

// New returns the trainer for the named algorithm.
func New(kind string, cfg Config, logger *slog.Logger) (Trainer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	switch kind {
	case Word2Vec:
		return &Word2VecTrainer{cfg: cfg, logger: logger}, nil
	case FastText:
		return &FastTextTrainer{cfg: cfg, logger: logger}, nil
	default:
		return nil, fmt.Errorf("embedder: unknown algorithm %q", kind)
	}
}

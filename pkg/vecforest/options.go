package vecforest

import (
	"log/slog"

	"github.com/crimson-sun/vecforest/internal/engine"
)

type options struct {
	embedding string
	labels    string
	engine    engine.Options
	logger    *slog.Logger
}

// Option configures an Experiment.
type Option func(*options)

// WithEmbedding selects the embedding algorithm: Word2Vec or FastText.
// Default: Word2Vec.
func WithEmbedding(kind string) Option {
	return func(o *options) {
		o.embedding = kind
	}
}

// WithLabels selects the label scheme: Binary or Categorical. Default: Binary.
func WithLabels(scheme string) Option {
	return func(o *options) {
		o.labels = scheme
	}
}

// WithSeed fixes the split, embedding, and forest randomness. Default: 42.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.engine.SplitSeed = seed
		o.engine.Embedding.Seed = seed
		o.engine.Forest.Seed = seed
	}
}

// WithSplit sets the test and validation fractions. Default: 0.2 and 0.2.
func WithSplit(testSize, validationSize float64) Option {
	return func(o *options) {
		o.engine.TestSize = testSize
		o.engine.ValidationSize = validationSize
	}
}

// WithDimension sets the embedding vector size. Default: 100.
func WithDimension(dim int) Option {
	return func(o *options) {
		o.engine.Embedding.Dim = dim
	}
}

// WithEpochs sets the number of embedding training passes. Default: 5.
func WithEpochs(n int) Option {
	return func(o *options) {
		o.engine.Embedding.Epochs = n
	}
}

// WithTrees sets the random forest size. Default: 100.
func WithTrees(n int) Option {
	return func(o *options) {
		o.engine.Forest.Trees = n
	}
}

// WithWorkers sets how many goroutines train embeddings and fit trees.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.engine.Embedding.Workers = n
		o.engine.Forest.Workers = n
	}
}

// WithOOV sets the out-of-vocabulary policy: SkipOOV or ComposeOOV.
// Default: SkipOOV.
func WithOOV(policy string) Option {
	return func(o *options) {
		o.engine.OOV = policy
	}
}

// WithLogger sets the logger for training progress. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	opts := engine.DefaultOptions()
	opts.Embedding.Seed = opts.SplitSeed
	opts.Forest.Seed = opts.SplitSeed
	return options{
		embedding: Word2Vec,
		labels:    Binary,
		engine:    opts,
	}
}

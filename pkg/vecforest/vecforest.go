package vecforest

import (
	"context"
	"fmt"

	"github.com/crimson-sun/vecforest/internal/dataset"
	"github.com/crimson-sun/vecforest/internal/engine"
	"github.com/crimson-sun/vecforest/internal/engine/embedder"
	"github.com/crimson-sun/vecforest/internal/engine/labels"
	"github.com/crimson-sun/vecforest/internal/engine/vectorizer"
	"github.com/crimson-sun/vecforest/internal/logging"

	// Register dataset formats.
	_ "github.com/crimson-sun/vecforest/internal/dataset/csvfile"
	_ "github.com/crimson-sun/vecforest/internal/dataset/jsonl"
)

// Embedding algorithms.
const (
	Word2Vec = embedder.Word2Vec
	FastText = embedder.FastText
)

// Label schemes.
const (
	Binary      = labels.Binary
	Categorical = labels.Categorical
)

// Out-of-vocabulary policies.
const (
	SkipOOV    = vectorizer.Skip
	ComposeOOV = vectorizer.Compose
)

// Experiment runs embedding + random forest experiments with fixed settings.
type Experiment struct {
	engine  *engine.Engine
	variant engine.Variant
}

// New creates an Experiment. It fails on unknown algorithm, label scheme, or
// OOV policy names.
func New(opts ...Option) (*Experiment, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.embedding != Word2Vec && o.embedding != FastText {
		return nil, fmt.Errorf("vecforest: unknown embedding %q", o.embedding)
	}
	if _, err := labels.ByName(o.labels); err != nil {
		return nil, fmt.Errorf("vecforest: %w", err)
	}
	if o.engine.OOV != SkipOOV && o.engine.OOV != ComposeOOV {
		return nil, fmt.Errorf("vecforest: unknown oov policy %q", o.engine.OOV)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	return &Experiment{
		engine:  engine.New(o.engine, o.logger),
		variant: engine.Variant{Embedding: o.embedding, Labels: o.labels},
	}, nil
}

// Run executes the configured variant over records.
func (e *Experiment) Run(ctx context.Context, records []Record) (Result, error) {
	return e.engine.Run(ctx, toModel(records), e.variant)
}

// RunAll executes every embedding x label scheme combination over records,
// word2vec before fasttext and binary before categorical.
func (e *Experiment) RunAll(ctx context.Context, records []Record) ([]Result, error) {
	in := toModel(records)
	var results []Result
	for _, v := range engine.AllVariants() {
		res, err := e.engine.Run(ctx, in, v)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// LoadFile reads a "csv" or "jsonl" dataset from a path or http(s) URL using
// the default column names: clean_words_mecab, target, category.
func LoadFile(ctx context.Context, format, path string) ([]Record, error) {
	records, err := dataset.LoadFile(ctx, format, path, dataset.Options{
		TokenColumn:    "clean_words_mecab",
		TargetColumn:   "target",
		CategoryColumn: "category",
	})
	if err != nil {
		return nil, err
	}
	return fromModel(records), nil
}

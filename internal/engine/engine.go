package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crimson-sun/vecforest/internal/engine/classifier"
	"github.com/crimson-sun/vecforest/internal/engine/embedder"
	"github.com/crimson-sun/vecforest/internal/engine/labels"
	"github.com/crimson-sun/vecforest/internal/engine/metrics"
	"github.com/crimson-sun/vecforest/internal/engine/split"
	"github.com/crimson-sun/vecforest/internal/engine/vectorizer"
	"github.com/crimson-sun/vecforest/internal/model"
)

// Variant selects the embedding algorithm and label scheme of one experiment.
type Variant struct {
	Embedding string // embedder.Word2Vec or embedder.FastText
	Labels    string // labels.Binary or labels.Categorical
}

func (v Variant) String() string {
	return v.Embedding + "/" + v.Labels
}

// AllVariants returns every embedding x label scheme combination.
func AllVariants() []Variant {
	var out []Variant
	for _, emb := range []string{embedder.Word2Vec, embedder.FastText} {
		for _, lbl := range []string{labels.Binary, labels.Categorical} {
			out = append(out, Variant{Embedding: emb, Labels: lbl})
		}
	}
	return out
}

// Options parameterizes every stage of an experiment.
type Options struct {
	TestSize       float64
	ValidationSize float64
	SplitSeed      int64
	OOV            string // vectorizer.Skip or vectorizer.Compose
	Embedding      embedder.Config
	Forest         classifier.Config
}

// DefaultOptions returns the settings of the reference experiments.
func DefaultOptions() Options {
	return Options{
		TestSize:       0.2,
		ValidationSize: 0.2,
		SplitSeed:      42,
		OOV:            vectorizer.Skip,
		Embedding:      embedder.DefaultConfig(),
		Forest:         classifier.DefaultConfig(),
	}
}

// Engine runs the split → embed → vectorize → classify → report experiment.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// New creates an Engine. A nil logger uses slog.Default().
func New(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{opts: opts, logger: logger}
}

// Options returns the settings the Engine runs with.
func (e *Engine) Options() Options { return e.opts }

// Logger returns the Engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Run executes one experiment variant over records. The embedding is trained
// on the training partition only; the fitted forest is evaluated unchanged on
// all three partitions.
func (e *Engine) Run(ctx context.Context, records []model.Record, v Variant) (model.ExperimentResult, error) {
	started := time.Now()
	logger := e.logger.With("variant", v.String())

	scheme, err := labels.ByName(v.Labels)
	if err != nil {
		return model.ExperimentResult{}, err
	}
	trainer, err := embedder.New(v.Embedding, e.opts.Embedding, logger)
	if err != nil {
		return model.ExperimentResult{}, err
	}

	examples, err := scheme.Select(records)
	if err != nil {
		return model.ExperimentResult{}, err
	}
	parts, err := split.Three(examples, e.opts.TestSize, e.opts.ValidationSize, e.opts.SplitSeed)
	if err != nil {
		return model.ExperimentResult{}, fmt.Errorf("engine: %s: %w", v, err)
	}
	logger.Info("data split",
		"examples", len(examples),
		"train", len(parts.Train),
		"validation", len(parts.Validation),
		"test", len(parts.Test),
	)

	stage := time.Now()
	table, err := trainer.Train(ctx, model.Documents(parts.Train))
	if err != nil {
		return model.ExperimentResult{}, fmt.Errorf("engine: %s: train embedding: %w", v, err)
	}
	logger.Info("embedding trained", "vocab", table.Len(), "duration", time.Since(stage))

	vec, err := vectorizer.New(table, e.opts.OOV)
	if err != nil {
		return model.ExperimentResult{}, err
	}
	splits := []struct {
		name     string
		examples []model.Example
	}{
		{model.SplitTrain, parts.Train},
		{model.SplitValidation, parts.Validation},
		{model.SplitTest, parts.Test},
	}
	features := make([][][]float64, len(splits))
	for i, s := range splits {
		features[i] = vectorizer.Features(vec.VectorizeAll(model.Documents(s.examples)))
	}
	if err := ctx.Err(); err != nil {
		return model.ExperimentResult{}, err
	}

	forest := classifier.New(e.opts.Forest, logger)
	if err := forest.Fit(ctx, features[0], model.Labels(parts.Train)); err != nil {
		return model.ExperimentResult{}, fmt.Errorf("engine: %s: %w", v, err)
	}

	result := model.ExperimentResult{
		RunID:          uuid.NewString(),
		Embedding:      v.Embedding,
		Labels:         v.Labels,
		TrainSize:      len(parts.Train),
		ValidationSize: len(parts.Validation),
		TestSize:       len(parts.Test),
		VocabSize:      table.Len(),
		Started:        started,
	}
	for i, s := range splits {
		pred, err := forest.PredictBatch(features[i])
		if err != nil {
			return model.ExperimentResult{}, fmt.Errorf("engine: %s: predict %s: %w", v, s.name, err)
		}
		rep, err := metrics.Report(s.name, model.Labels(s.examples), pred, scheme.Classes, scheme.Names)
		if err != nil {
			return model.ExperimentResult{}, fmt.Errorf("engine: %s: %w", v, err)
		}
		result.Reports = append(result.Reports, rep)
		if s.name == model.SplitTest {
			result.TestAccuracy = rep.Accuracy
		}
	}
	result.Duration = time.Since(started)

	logger.Info("experiment done",
		"run_id", result.RunID,
		"test_accuracy", result.TestAccuracy,
		"duration", result.Duration,
	)
	return result, nil
}

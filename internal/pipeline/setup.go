package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/crimson-sun/vecforest/internal/config"
	"github.com/crimson-sun/vecforest/internal/dataset"
	"github.com/crimson-sun/vecforest/internal/engine"
	"github.com/crimson-sun/vecforest/internal/engine/classifier"
	"github.com/crimson-sun/vecforest/internal/engine/embedder"
	"github.com/crimson-sun/vecforest/internal/model"
	"github.com/crimson-sun/vecforest/internal/output"
	"github.com/crimson-sun/vecforest/internal/output/async"
	"github.com/crimson-sun/vecforest/internal/output/file"
	"github.com/crimson-sun/vecforest/internal/output/multi"
	"github.com/crimson-sun/vecforest/internal/output/stdout"
	"github.com/crimson-sun/vecforest/internal/output/webhook"

	// Register dataset formats.
	_ "github.com/crimson-sun/vecforest/internal/dataset/csvfile"
	_ "github.com/crimson-sun/vecforest/internal/dataset/jsonl"
)

// EngineOptions maps configuration onto engine options. The experiment seed
// drives the split; component seeds fall back to it when unset.
func EngineOptions(cfg config.Config) engine.Options {
	opts := engine.DefaultOptions()
	opts.TestSize = cfg.Experiment.TestSize
	opts.ValidationSize = cfg.Experiment.ValidationSize
	opts.SplitSeed = cfg.Experiment.Seed
	opts.OOV = cfg.Experiment.OOV

	e := cfg.Embedding
	opts.Embedding = embedder.Config{
		Dim:      e.Dim,
		Window:   e.Window,
		MinCount: e.MinCount,
		Epochs:   e.Epochs,
		Negative: e.Negative,
		Workers:  e.Workers,
		Alpha:    e.Alpha,
		Sample:   e.Sample,
		MinN:     e.MinN,
		MaxN:     e.MaxN,
		Buckets:  e.Buckets,
		Seed:     seedOr(e.Seed, cfg.Experiment.Seed),
	}

	f := cfg.Forest
	opts.Forest = classifier.Config{
		Trees:           f.Trees,
		MaxFeatures:     f.MaxFeatures,
		MaxDepth:        f.MaxDepth,
		MinSamplesSplit: f.MinSamplesSplit,
		MinSamplesLeaf:  f.MinSamplesLeaf,
		Workers:         f.Workers,
		Seed:            seedOr(f.Seed, cfg.Experiment.Seed),
	}
	return opts
}

func seedOr(seed, fallback int64) int64 {
	if seed != 0 {
		return seed
	}
	return fallback
}

// Variants returns the experiments selected by cfg.
func Variants(cfg config.Config) []engine.Variant {
	if cfg.Experiment.All {
		return engine.AllVariants()
	}
	return []engine.Variant{{Embedding: cfg.Experiment.Embedding, Labels: cfg.Experiment.Labels}}
}

// LoadDataset reads the configured dataset once for every variant.
func LoadDataset(ctx context.Context, cfg config.DatasetConfig) ([]model.Record, error) {
	opts := dataset.Options{
		TokenColumn:    cfg.TokenColumn,
		TargetColumn:   cfg.TargetColumn,
		CategoryColumn: cfg.CategoryColumn,
		Stem:           cfg.Stem,
		AuthToken:      cfg.Token,
	}
	return dataset.LoadFile(ctx, cfg.Format, cfg.Path, opts)
}

// BuildOutput assembles the configured destinations. Reports always go to w
// (stdout when nil). The report file and the webhook are added when
// configured; webhook posts run in the background.
func BuildOutput(cfg config.OutputConfig, w io.Writer, logger *slog.Logger) (output.Output, error) {
	verbosity := output.ParseVerbosity(cfg.Verbosity)

	var stdOpts []stdout.Option
	if w != nil {
		stdOpts = append(stdOpts, stdout.WithWriter(w))
	}
	if cfg.Pretty {
		stdOpts = append(stdOpts, stdout.WithPretty())
	}
	std, err := stdout.New(cfg.Format, verbosity, stdOpts...)
	if err != nil {
		return nil, err
	}
	outs := []output.Output{std}

	if cfg.ReportFile != "" {
		f, err := file.New(cfg.ReportFile, verbosity)
		if err != nil {
			return nil, fmt.Errorf("report file: %w", err)
		}
		outs = append(outs, f)
	}

	if cfg.WebhookURL != "" {
		whOpts := []webhook.Option{webhook.WithVerbosity(verbosity)}
		if cfg.WebhookToken != "" {
			whOpts = append(whOpts, webhook.WithHeaders(map[string]string{
				"Authorization": "Bearer " + cfg.WebhookToken,
			}))
		}
		outs = append(outs, async.New(webhook.New(cfg.WebhookURL, whOpts...), async.WithLogger(logger)))
	}

	if len(outs) == 1 {
		return std, nil
	}
	return multi.New(outs...), nil
}

// FromConfig builds the engine and outputs described by cfg.
func FromConfig(cfg config.Config, w io.Writer, logger *slog.Logger) (*Pipeline, error) {
	out, err := BuildOutput(cfg.Output, w, logger)
	if err != nil {
		return nil, err
	}
	return New(engine.New(EngineOptions(cfg), logger), out, logger), nil
}

// Execute loads the dataset, runs the selected variants, and closes the
// outputs.
func Execute(ctx context.Context, cfg config.Config, w io.Writer, logger *slog.Logger) (results []model.ExperimentResult, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	records, err := LoadDataset(ctx, cfg.Dataset)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded", "path", cfg.Dataset.Path, "records", len(records))

	p, err := FromConfig(cfg, w, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("pipeline close: %w", cerr)
		}
	}()
	return p.Run(ctx, records, Variants(cfg))
}

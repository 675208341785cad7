package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/vecforest/internal/engine"
	"github.com/crimson-sun/vecforest/internal/model"
	"github.com/crimson-sun/vecforest/internal/output"
)

// Pipeline connects a dataset, the experiment engine, and an output.
type Pipeline struct {
	engine *engine.Engine
	output output.Output
	logger *slog.Logger
}

// New creates a Pipeline from the given components. A nil logger uses
// slog.Default().
func New(eng *engine.Engine, out output.Output, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		engine: eng,
		output: out,
		logger: logger,
	}
}

// Run executes each variant over records in order and writes every result to
// the output as soon as it is ready. The first failing variant stops the run;
// results already written stay written.
func (p *Pipeline) Run(ctx context.Context, records []model.Record, variants []engine.Variant) ([]model.ExperimentResult, error) {
	results := make([]model.ExperimentResult, 0, len(variants))
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		p.logger.Info("running experiment", "variant", v.String(), "records", len(records))

		result, err := p.engine.Run(ctx, records, v)
		if err != nil {
			return results, fmt.Errorf("pipeline run %s: %w", v, err)
		}
		if err := p.output.Write(ctx, result); err != nil {
			return results, fmt.Errorf("pipeline output: %w", err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}

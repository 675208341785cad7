package multi

import (
	"context"
	"errors"
	"fmt"

	"github.com/crimson-sun/vecforest/internal/model"
	"github.com/crimson-sun/vecforest/internal/output"
)

// Multi fans out results to multiple output.Output implementations.
// Each Write call delivers the result to every wrapped output sequentially.
// If one output fails, the remaining outputs still receive the result.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi that fans out to the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

// Write delivers the result to every wrapped output. Errors are collected,
// tagged with the output's position, and do not prevent delivery to
// subsequent outputs.
func (m *Multi) Write(ctx context.Context, result model.ExperimentResult) error {
	return m.each(func(o output.Output) error { return o.Write(ctx, result) })
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	return m.each(output.Output.Close)
}

func (m *Multi) each(fn func(output.Output) error) error {
	var errs []error
	for i, o := range m.outputs {
		if err := fn(o); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/crimson-sun/vecforest/internal/model"
	"github.com/crimson-sun/vecforest/internal/output"
)

// Formats.
const (
	Text = "text"
	JSON = "json"
)

// Option configures a stdout Output.
type Option func(*Output)

// WithWriter replaces os.Stdout as the destination.
func WithWriter(w io.Writer) Option {
	return func(o *Output) { o.w = w }
}

// WithPretty indents JSON output.
func WithPretty() Option {
	return func(o *Output) { o.pretty = true }
}

// Output writes experiment results to stdout as report tables or JSON.
type Output struct {
	mu        sync.Mutex
	w         io.Writer
	format    string
	pretty    bool
	verbosity output.Verbosity
}

// New creates a stdout Output. format is Text or JSON.
func New(format string, verbosity output.Verbosity, opts ...Option) (*Output, error) {
	if format != Text && format != JSON {
		return nil, fmt.Errorf("stdout output: unknown format %q", format)
	}
	o := &Output{w: os.Stdout, format: format, verbosity: verbosity}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Output) Write(_ context.Context, result model.ExperimentResult) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	formatted := output.FormatResult(result, o.verbosity)
	if o.format == Text {
		if err := output.WriteText(o.w, formatted); err != nil {
			return fmt.Errorf("stdout output: %w", err)
		}
		return nil
	}

	enc := json.NewEncoder(o.w)
	if o.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(formatted); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}

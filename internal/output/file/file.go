package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/crimson-sun/vecforest/internal/model"
	"github.com/crimson-sun/vecforest/internal/output"
)

const (
	defaultBufSize = 64 * 1024
	defaultBackups = 9
)

// Option configures a file Output.
type Option func(*Output)

// WithMaxBytes rotates the report file once appending a line would push it
// past n bytes. 0 (default) never rotates.
func WithMaxBytes(n int64) Option {
	return func(o *Output) { o.maxBytes = n }
}

// WithBackups sets how many rotated files ({path}.1 ... {path}.n) are kept.
func WithBackups(n int) Option {
	return func(o *Output) { o.backups = n }
}

// Output appends experiment results to a JSON Lines report file. Results
// from earlier runs are kept, so one file accumulates a history of runs.
type Output struct {
	mu        sync.Mutex
	path      string
	verbosity output.Verbosity
	maxBytes  int64
	backups   int

	f    *os.File
	w    *bufio.Writer
	size int64
}

// New opens (or creates) path for appending.
func New(path string, verbosity output.Verbosity, opts ...Option) (*Output, error) {
	o := &Output{path: path, verbosity: verbosity, backups: defaultBackups}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.open(); err != nil {
		return nil, err
	}
	return o, nil
}

// Write appends result as one JSON line.
func (o *Output) Write(_ context.Context, result model.ExperimentResult) error {
	line, err := json.Marshal(output.FormatResult(result, o.verbosity))
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}
	line = append(line, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.maxBytes > 0 && o.size > 0 && o.size+int64(len(line)) > o.maxBytes {
		if err := o.rotate(); err != nil {
			return fmt.Errorf("file output: rotate: %w", err)
		}
	}
	n, err := o.w.Write(line)
	o.size += int64(n)
	if err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Close flushes buffered lines and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	flushErr := o.w.Flush()
	closeErr := o.f.Close()
	if flushErr != nil {
		return fmt.Errorf("file output: flush: %w", flushErr)
	}
	return closeErr
}

func (o *Output) open() error {
	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file output: stat %s: %w", o.path, err)
	}
	o.f, o.w, o.size = f, bufio.NewWriterSize(f, defaultBufSize), info.Size()
	return nil
}

// rotate shifts {path}.i to {path}.i+1, moves the current file to {path}.1
// and reopens path empty. The oldest backup beyond the limit is overwritten.
func (o *Output) rotate() error {
	if err := o.w.Flush(); err != nil {
		return err
	}
	if err := o.f.Close(); err != nil {
		return err
	}
	for i := o.backups - 1; i >= 1; i-- {
		// Missing backups are expected on the first rotations.
		_ = os.Rename(fmt.Sprintf("%s.%d", o.path, i), fmt.Sprintf("%s.%d", o.path, i+1))
	}
	if o.backups > 0 {
		if err := os.Rename(o.path, o.path+".1"); err != nil {
			return err
		}
	} else if err := os.Remove(o.path); err != nil {
		return err
	}
	return o.open()
}

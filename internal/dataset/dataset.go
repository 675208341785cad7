package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/vecforest/internal/dataset/remote"
	"github.com/crimson-sun/vecforest/internal/model"
)

// ErrEmptyDataset is returned when a dataset holds no data rows.
var ErrEmptyDataset = errors.New("dataset: no records")

// Loader defines the interface all dataset formats must implement.
type Loader interface {
	// Load reads every record from r. Column names come from opts.
	Load(ctx context.Context, r io.Reader, opts Options) ([]model.Record, error)
}

// Options names the dataset columns and controls token post-processing.
type Options struct {
	TokenColumn    string
	TargetColumn   string // "" = every record gets Target 0
	CategoryColumn string // "" = every record gets Category 0
	Stem           string // snowball language applied to whitespace text cells
	AuthToken      string // Bearer token for http(s) dataset paths
}

// LoadFile reads path with the loader registered for format. A path that is
// an http(s) URL is downloaded first.
func LoadFile(ctx context.Context, format, path string, opts Options) ([]model.Record, error) {
	ctor, err := Get(format)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	if remote.IsURL(path) {
		body, err := remote.New(opts.AuthToken).Fetch(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("dataset: fetch %s: %w", path, err)
		}
		r = bytes.NewReader(body)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		defer f.Close()
		r = f
	}

	records, err := ctor().Load(ctx, r, opts)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return records, nil
}

package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/crimson-sun/vecforest/internal/dataset"
	"github.com/crimson-sun/vecforest/internal/model"
)

// ctxCheckEvery is how many rows are read between context checks.
const ctxCheckEvery = 1024

func init() {
	dataset.Register("csv", func() dataset.Loader { return &Loader{} })
}

// Loader reads comma-separated datasets with a header row.
type Loader struct{}

// Load implements dataset.Loader.
func (l *Loader) Load(ctx context.Context, r io.Reader, opts dataset.Options) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, dataset.ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("csv: header: %w", err)
	}
	cols, err := dataset.ResolveColumns(header, opts)
	if err != nil {
		return nil, err
	}

	parser, err := dataset.NewCellParser(opts.Stem)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	var records []model.Record
	for line := 2; ; line++ {
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		rec, err := cols.Record(parser, row, line, opts)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

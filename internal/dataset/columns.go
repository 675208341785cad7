package dataset

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/vecforest/internal/model"
)

// Columns maps configured column names to positions in a header row.
type Columns struct {
	Token    int
	Target   int // -1 when not configured
	Category int // -1 when not configured
}

// ResolveColumns locates the configured columns in header. A configured
// column missing from the header is an error naming it.
func ResolveColumns(header []string, opts Options) (Columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	find := func(name string, required bool) (int, error) {
		if name == "" {
			if required {
				return -1, fmt.Errorf("dataset: token column not configured")
			}
			return -1, nil
		}
		i, ok := pos[name]
		if !ok {
			return -1, fmt.Errorf("dataset: missing column %q", name)
		}
		return i, nil
	}

	var c Columns
	var err error
	if c.Token, err = find(opts.TokenColumn, true); err != nil {
		return Columns{}, err
	}
	if c.Target, err = find(opts.TargetColumn, false); err != nil {
		return Columns{}, err
	}
	if c.Category, err = find(opts.CategoryColumn, false); err != nil {
		return Columns{}, err
	}
	return c, nil
}

// Record builds a record from one row of string cells. line is used in errors.
func (c Columns) Record(p *CellParser, row []string, line int, opts Options) (model.Record, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	tokens, err := p.Tokens(cell(c.Token))
	if err != nil {
		return model.Record{}, fmt.Errorf("dataset: line %d column %q: %w", line, opts.TokenColumn, err)
	}
	rec := model.Record{Tokens: tokens}
	if c.Target >= 0 {
		if rec.Target, err = p.Int(cell(c.Target)); err != nil {
			return model.Record{}, fmt.Errorf("dataset: line %d column %q: %w", line, opts.TargetColumn, err)
		}
	}
	if c.Category >= 0 {
		if rec.Category, err = p.Int(cell(c.Category)); err != nil {
			return model.Record{}, fmt.Errorf("dataset: line %d column %q: %w", line, opts.CategoryColumn, err)
		}
	}
	return rec, nil
}

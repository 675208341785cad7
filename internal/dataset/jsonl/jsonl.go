package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/crimson-sun/vecforest/internal/dataset"
	"github.com/crimson-sun/vecforest/internal/model"
)

const maxLineSize = 16 * 1024 * 1024 // 16MB

func init() {
	dataset.Register("jsonl", func() dataset.Loader { return &Loader{} })
}

// Loader reads newline-delimited JSON objects, one record per line.
// Token fields may be a JSON array of strings or a string cell.
type Loader struct{}

// Load implements dataset.Loader.
func (l *Loader) Load(ctx context.Context, r io.Reader, opts dataset.Options) ([]model.Record, error) {
	if opts.TokenColumn == "" {
		return nil, fmt.Errorf("dataset: token column not configured")
	}
	parser, err := dataset.NewCellParser(opts.Stem)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	var records []model.Record
	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("jsonl: line %d: %w", line, err)
		}
		rec, err := decode(parser, obj, line, opts)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: read error: %w", err)
	}
	return records, nil
}

func decode(p *dataset.CellParser, obj map[string]json.RawMessage, line int, opts dataset.Options) (model.Record, error) {
	raw, ok := obj[opts.TokenColumn]
	if !ok {
		return model.Record{}, fmt.Errorf("dataset: line %d: missing column %q", line, opts.TokenColumn)
	}

	var rec model.Record
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		rec.Tokens = dataset.Normalize(list)
	} else {
		cell, err := cellString(raw)
		if err != nil {
			return model.Record{}, fmt.Errorf("dataset: line %d column %q: %w", line, opts.TokenColumn, err)
		}
		if rec.Tokens, err = p.Tokens(cell); err != nil {
			return model.Record{}, fmt.Errorf("dataset: line %d column %q: %w", line, opts.TokenColumn, err)
		}
	}

	labels := []struct {
		column string
		dest   *int
	}{
		{opts.TargetColumn, &rec.Target},
		{opts.CategoryColumn, &rec.Category},
	}
	for _, lbl := range labels {
		if lbl.column == "" {
			continue
		}
		raw, ok := obj[lbl.column]
		if !ok {
			return model.Record{}, fmt.Errorf("dataset: line %d: missing column %q", line, lbl.column)
		}
		cell, err := cellString(raw)
		if err != nil {
			return model.Record{}, fmt.Errorf("dataset: line %d column %q: %w", line, lbl.column, err)
		}
		if *lbl.dest, err = p.Int(cell); err != nil {
			return model.Record{}, fmt.Errorf("dataset: line %d column %q: %w", line, lbl.column, err)
		}
	}
	return rec, nil
}

// cellString renders a JSON scalar as the text a CSV cell would hold.
func cellString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("unsupported value %s", raw)
	}
	return n.String(), nil
}

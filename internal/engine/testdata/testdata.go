// Package testdata embeds a small labeled review corpus used by engine and
// pipeline tests.
package testdata

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"github.com/crimson-sun/vecforest/internal/dataset"
	"github.com/crimson-sun/vecforest/internal/dataset/jsonl"
	"github.com/crimson-sun/vecforest/internal/model"
)

//go:embed corpus.jsonl
var corpusJSONL []byte

// CorpusJSONL returns the raw corpus in JSON Lines form.
func CorpusJSONL() []byte {
	return bytes.Clone(corpusJSONL)
}

// LoadCorpus parses the embedded corpus with the default column names.
func LoadCorpus() ([]model.Record, error) {
	opts := dataset.Options{
		TokenColumn:    "clean_words_mecab",
		TargetColumn:   "target",
		CategoryColumn: "category",
	}
	records, err := (&jsonl.Loader{}).Load(context.Background(), bytes.NewReader(corpusJSONL), opts)
	if err != nil {
		return nil, fmt.Errorf("parse corpus.jsonl: %w", err)
	}
	return records, nil
}

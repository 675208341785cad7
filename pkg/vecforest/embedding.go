package vecforest

import (
	"context"
	"fmt"

	"github.com/crimson-sun/vecforest/internal/engine/embedder"
	"github.com/crimson-sun/vecforest/internal/engine/vectorizer"
)

// Embedding is a trained token vector table. Safe for concurrent reads.
type Embedding struct {
	table embedder.Table
	vec   *vectorizer.Vectorizer
}

// TrainEmbedding fits the Experiment's embedding algorithm on docs without
// running a classifier. Only tokens in docs receive vectors.
func (e *Experiment) TrainEmbedding(ctx context.Context, docs [][]string) (*Embedding, error) {
	opts := e.engine.Options()
	trainer, err := embedder.New(e.variant.Embedding, opts.Embedding, e.engine.Logger())
	if err != nil {
		return nil, fmt.Errorf("vecforest: %w", err)
	}
	table, err := trainer.Train(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("vecforest: %w", err)
	}
	vec, err := vectorizer.New(table, opts.OOV)
	if err != nil {
		return nil, fmt.Errorf("vecforest: %w", err)
	}
	return &Embedding{table: table, vec: vec}, nil
}

// Dim returns the vector size.
func (m *Embedding) Dim() int { return m.table.Dim() }

// Len returns the vocabulary size.
func (m *Embedding) Len() int { return m.table.Len() }

// Vector returns a copy of token's vector. False when token was not trained.
func (m *Embedding) Vector(token string) ([]float32, bool) {
	v, ok := m.table.Vector(token)
	if !ok {
		return nil, false
	}
	return append([]float32(nil), v...), true
}

// Vectorize returns the mean vector of doc's known tokens, or the zero vector
// when none are known.
func (m *Embedding) Vectorize(doc []string) []float32 {
	return m.vec.Vectorize(doc)
}

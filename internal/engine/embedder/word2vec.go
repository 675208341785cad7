package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Word2VecTrainer trains whole-word skip-gram vectors with negative sampling.
type Word2VecTrainer struct {
	cfg    Config
	logger *slog.Logger
}

// Train fits vectors on docs. Only tokens present in docs get a vector.
func (t *Word2VecTrainer) Train(ctx context.Context, docs [][]string) (Table, error) {
	start := time.Now()
	v := buildVocab(docs, t.cfg.MinCount)
	if v.total == 0 {
		return nil, ErrEmptyCorpus
	}

	subwords := make([][]int32, v.size())
	for id := range subwords {
		subwords[id] = []int32{int32(id)}
	}

	seed := t.cfg.seed()
	sg := newSkipGram(t.cfg, t.logger, v, subwords, v.size(), seed)
	if err := sg.train(ctx, v.encode(docs), seed); err != nil {
		return nil, fmt.Errorf("embedder: word2vec: %w", err)
	}

	t.logger.Info("word2vec trained",
		"vocab", v.size(),
		"words", v.total,
		"dim", t.cfg.Dim,
		"duration", time.Since(start),
	)
	return &table{vocab: v, vectors: finalVectors(sg)}, nil
}

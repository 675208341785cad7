package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viterin/vek/vek32"
)

// FastTextTrainer trains skip-gram vectors where each word is represented by
// its own row plus the rows of its hashed character n-grams.
type FastTextTrainer struct {
	cfg    Config
	logger *slog.Logger
}

// Train fits vectors on docs. The returned table also implements Composer.
func (t *FastTextTrainer) Train(ctx context.Context, docs [][]string) (Table, error) {
	start := time.Now()
	v := buildVocab(docs, t.cfg.MinCount)
	if v.total == 0 {
		return nil, ErrEmptyCorpus
	}

	// Only buckets hit by a training word get a row. Rows for the rest would
	// stay at their random initialization and never be read.
	bucketRows := make(map[uint32]int32)
	subwords := make([][]int32, v.size())
	next := int32(v.size())
	for id, tok := range v.idToToken {
		rows := []int32{int32(id)}
		for _, g := range charNgrams(tok, t.cfg.MinN, t.cfg.MaxN) {
			b := bucket(g, t.cfg.Buckets)
			r, ok := bucketRows[b]
			if !ok {
				r = next
				bucketRows[b] = r
				next++
			}
			rows = append(rows, r)
		}
		subwords[id] = rows
	}

	seed := t.cfg.seed()
	sg := newSkipGram(t.cfg, t.logger, v, subwords, int(next), seed)
	if err := sg.train(ctx, v.encode(docs), seed); err != nil {
		return nil, fmt.Errorf("embedder: fasttext: %w", err)
	}

	cache, err := lru.New[string, []float32](t.cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("embedder: fasttext cache: %w", err)
	}

	tbl := &subwordTable{
		table:      table{vocab: v, vectors: finalVectors(sg)},
		minN:       t.cfg.MinN,
		maxN:       t.cfg.MaxN,
		buckets:    t.cfg.Buckets,
		bucketRows: bucketRows,
		ngrams:     sg.in,
		cache:      cache,
	}

	t.logger.Info("fasttext trained",
		"vocab", v.size(),
		"ngram_buckets", len(bucketRows),
		"words", v.total,
		"dim", t.cfg.Dim,
		"duration", time.Since(start),
	)
	return tbl, nil
}

// subwordTable is a fasttext table. In-vocabulary lookups behave like a
// whole-word table; Compose builds vectors for unseen tokens.
type subwordTable struct {
	table

	minN, maxN int
	buckets    int
	bucketRows map[uint32]int32
	ngrams     *matrix // trained input rows, indexed through bucketRows
	cache      *lru.Cache[string, []float32]
}

// Compose returns the vector for token. In-vocabulary tokens return their
// trained vector. Unseen tokens get the mean of their n-gram rows that were
// trained; false when none were.
func (t *subwordTable) Compose(token string) ([]float32, bool) {
	if vec, ok := t.Vector(token); ok {
		return vec, true
	}
	if vec, ok := t.cache.Get(token); ok {
		return vec, true
	}

	vec := make([]float32, t.Dim())
	n := 0
	for _, g := range charNgrams(token, t.minN, t.maxN) {
		r, ok := t.bucketRows[bucket(g, t.buckets)]
		if !ok {
			continue
		}
		vek32.Add_Inplace(vec, t.ngrams.row(r))
		n++
	}
	if n == 0 {
		return nil, false
	}
	vek32.MulNumber_Inplace(vec, 1/float32(n))
	t.cache.Add(token, vec)
	return vec, true
}

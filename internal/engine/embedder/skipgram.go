package embedder

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/viterin/vek/vek32"
)

const (
	// maxExp clips the sigmoid argument; outside it the gradient saturates.
	maxExp = 6
	// batchWords is how many corpus words each worker consumes between merges.
	batchWords = 10000
)

// skipGram trains input vectors with skip-gram negative sampling. Each
// vocabulary word is represented by the mean of its input rows: one row for
// word2vec, the word row plus its character n-gram rows for fasttext.
type skipGram struct {
	cfg      Config
	logger   *slog.Logger
	vocab    *vocab
	subwords [][]int32 // per token ID, input rows making up the word
	in       *matrix
	out      *matrix
	neg      *negSampler
	keep     []float64
}

func newSkipGram(cfg Config, logger *slog.Logger, v *vocab, subwords [][]int32, inRows int, seed int64) *skipGram {
	sg := &skipGram{
		cfg:      cfg,
		logger:   logger,
		vocab:    v,
		subwords: subwords,
		in:       newMatrix(inRows, cfg.Dim),
		out:      newMatrix(v.size(), cfg.Dim),
		neg:      newNegSampler(v.counts),
		keep:     keepProbs(v, cfg.Sample),
	}
	sg.in.randomize(rand.New(rand.NewSource(seed)))
	return sg
}

// train runs all epochs over the encoded corpus.
func (sg *skipGram) train(ctx context.Context, corpus [][]int32, seed int64) error {
	nw := sg.cfg.Workers
	shards := make([][][]int32, nw)
	var corpusWords int64
	for i, doc := range corpus {
		shards[i%nw] = append(shards[i%nw], doc)
		corpusWords += int64(len(doc))
	}
	totalWords := corpusWords * int64(sg.cfg.Epochs)

	var processed int64
	for epoch := 0; epoch < sg.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()

		workers := make([]*sgWorker, nw)
		inShadows := make([]*shadow, nw)
		outShadows := make([]*shadow, nw)
		for w := range workers {
			workerSeed := seed + int64(epoch*nw+w) + 1
			workers[w] = newSGWorker(sg, shards[w], rand.New(rand.NewSource(workerSeed)))
			inShadows[w] = workers[w].in
			outShadows[w] = workers[w].out
		}

		var loss float64
		var pairs int64
		for {
			var wg sync.WaitGroup
			active := 0
			for _, wk := range workers {
				if wk.exhausted() {
					continue
				}
				active++
				wg.Add(1)
				go func(wk *sgWorker) {
					defer wg.Done()
					wk.step(processed, totalWords, nw)
				}(wk)
			}
			if active == 0 {
				break
			}
			wg.Wait()

			merge(sg.in, inShadows)
			merge(sg.out, outShadows)
			for _, wk := range workers {
				processed += wk.words
				loss += wk.loss
				pairs += wk.pairs
				wk.words, wk.loss, wk.pairs = 0, 0, 0
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		avgLoss := 0.0
		if pairs > 0 {
			avgLoss = loss / float64(pairs)
		}
		sg.logger.Debug("embedding epoch done",
			"epoch", epoch+1,
			"epochs", sg.cfg.Epochs,
			"pairs", pairs,
			"loss", avgLoss,
			"duration", time.Since(start),
		)
	}
	return nil
}

// wordVector writes the mean of a word's input rows into dst.
func (sg *skipGram) wordVector(dst []float32, id int32) {
	clear(dst)
	rows := sg.subwords[id]
	for _, r := range rows {
		vek32.Add_Inplace(dst, sg.in.row(r))
	}
	if len(rows) > 1 {
		vek32.MulNumber_Inplace(dst, 1/float32(len(rows)))
	}
}

// sgWorker trains one shard of the corpus against private matrix shadows.
type sgWorker struct {
	sg    *skipGram
	rng   *rand.Rand
	shard [][]int32
	next  int
	in    *shadow
	out   *shadow

	words int64
	loss  float64
	pairs int64

	sen  []int32
	h    []float32
	grad []float32
}

func newSGWorker(sg *skipGram, shard [][]int32, rng *rand.Rand) *sgWorker {
	return &sgWorker{
		sg:    sg,
		rng:   rng,
		shard: shard,
		in:    newShadow(sg.in),
		out:   newShadow(sg.out),
		h:     make([]float32, sg.cfg.Dim),
		grad:  make([]float32, sg.cfg.Dim),
	}
}

func (w *sgWorker) exhausted() bool {
	return w.next >= len(w.shard)
}

// step trains documents until batchWords words are consumed or the shard ends.
func (w *sgWorker) step(processedBefore, totalWords int64, nWorkers int) {
	cfg := w.sg.cfg
	for w.next < len(w.shard) && w.words < batchWords {
		doc := w.shard[w.next]
		w.next++

		progress := float64(processedBefore+w.words*int64(nWorkers)) / float64(totalWords)
		alpha := cfg.Alpha - (cfg.Alpha-cfg.MinAlpha)*progress
		if alpha < cfg.MinAlpha {
			alpha = cfg.MinAlpha
		}
		w.trainDoc(doc, float32(alpha))
		w.words += int64(len(doc))
	}
}

func (w *sgWorker) trainDoc(doc []int32, alpha float32) {
	sen := w.sen[:0]
	for _, id := range doc {
		if p := w.sg.keep[id]; p < 1 && p < w.rng.Float64() {
			continue
		}
		sen = append(sen, id)
	}
	w.sen = sen

	window := w.sg.cfg.Window
	for pos, center := range sen {
		// Reduced window: the effective radius is uniform in [1, window].
		b := w.rng.Intn(window)
		lo := max(0, pos-window+b)
		hi := min(len(sen)-1, pos+window-b)
		for c := lo; c <= hi; c++ {
			if c == pos {
				continue
			}
			w.trainPair(center, sen[c], alpha)
		}
	}
}

func (w *sgWorker) trainPair(center, outWord int32, alpha float32) {
	rows := w.sg.subwords[center]
	h := w.h
	clear(h)
	for _, r := range rows {
		vek32.Add_Inplace(h, w.in.row(r))
	}
	if len(rows) > 1 {
		vek32.MulNumber_Inplace(h, 1/float32(len(rows)))
	}

	grad := w.grad
	clear(grad)
	for d := 0; d <= w.sg.cfg.Negative; d++ {
		target, label := outWord, float32(1)
		if d > 0 {
			target = w.sg.neg.sample(w.rng)
			if target == outWord {
				continue
			}
			label = 0
		}

		o := w.out.row(target)
		f := vek32.Dot(h, o)
		var g float32
		switch {
		case f > maxExp:
			g = (label - 1) * alpha
		case f < -maxExp:
			g = label * alpha
		default:
			g = (label - sigmoid(f)) * alpha
		}
		w.loss += pairLoss(f, label)

		axpy(grad, o, g)
		axpy(o, h, g)
	}
	w.pairs++

	for _, r := range rows {
		vek32.Add_Inplace(w.in.row(r), grad)
	}
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}

// pairLoss is the logistic loss of one (input, target) score, clipped like the gradient.
func pairLoss(f, label float32) float64 {
	x := float64(f)
	if label == 0 {
		x = -x
	}
	x = math.Max(-maxExp, math.Min(maxExp, x))
	return math.Log1p(math.Exp(-x))
}

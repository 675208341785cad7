package classifier

import (
	"cmp"
	"math/rand"
	"slices"
)

const leaf = -1

// node is one tree node. Leaves have feature == leaf and carry class
// probabilities; internal nodes route x[feature] <= threshold to left.
type node struct {
	feature   int
	threshold float64
	left      int32
	right     int32
	proba     []float64
}

// tree is a CART classification tree stored as a flat node slice.
type tree struct {
	nodes []node
}

func (t *tree) leafProba(x []float64) []float64 {
	i := int32(0)
	for {
		n := &t.nodes[i]
		if n.feature == leaf {
			return n.proba
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// builder grows one tree on a bootstrap sample.
type builder struct {
	cfg      Config
	x        [][]float64
	y        []int // class index per sample
	nClasses int
	mtry     int
	rng      *rand.Rand

	features []int
	left     []float64
	right    []float64
	t        *tree
}

func newBuilder(cfg Config, x [][]float64, y []int, nClasses, mtry int, rng *rand.Rand) *builder {
	nf := len(x[0])
	features := make([]int, nf)
	for i := range features {
		features[i] = i
	}
	return &builder{
		cfg:      cfg,
		x:        x,
		y:        y,
		nClasses: nClasses,
		mtry:     mtry,
		rng:      rng,
		features: features,
		left:     make([]float64, nClasses),
		right:    make([]float64, nClasses),
		t:        &tree{},
	}
}

type split struct {
	feature   int
	threshold float64
	score     float64 // sum over children of sum(count^2)/n; higher is purer
	pos       int     // samples[:pos] go left once sorted by feature
}

func (b *builder) grow(samples []int, depth int) int32 {
	id := int32(len(b.t.nodes))
	b.t.nodes = append(b.t.nodes, node{feature: leaf})

	counts := b.classCounts(samples)
	if !b.splittable(samples, counts, depth) {
		b.t.nodes[id].proba = normalize(counts, len(samples))
		return id
	}

	best, ok := b.bestSplit(samples)
	if !ok {
		b.t.nodes[id].proba = normalize(counts, len(samples))
		return id
	}

	b.sortBy(samples, best.feature)
	lo := slices.Clone(samples[:best.pos])
	hi := slices.Clone(samples[best.pos:])

	l := b.grow(lo, depth+1)
	r := b.grow(hi, depth+1)
	b.t.nodes[id] = node{feature: best.feature, threshold: best.threshold, left: l, right: r}
	return id
}

func (b *builder) splittable(samples []int, counts []float64, depth int) bool {
	if len(samples) < b.cfg.MinSamplesSplit || len(samples) < 2*b.cfg.MinSamplesLeaf {
		return false
	}
	if b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth {
		return false
	}
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero > 1
}

// bestSplit draws features in random order and keeps the best Gini split
// among the first mtry of them. Like the reference implementation, it keeps
// drawing past mtry until at least one valid split is found.
func (b *builder) bestSplit(samples []int) (split, bool) {
	best := split{score: -1}
	found := false
	nf := len(b.features)
	for k := 0; k < nf; k++ {
		if k >= b.mtry && found {
			break
		}
		j := k + b.rng.Intn(nf-k)
		b.features[k], b.features[j] = b.features[j], b.features[k]
		f := b.features[k]

		if s, ok := b.scanFeature(samples, f); ok && s.score > best.score {
			best = s
			found = true
		}
	}
	return best, found
}

// scanFeature finds the best threshold on feature f by sweeping sorted values.
func (b *builder) scanFeature(samples []int, f int) (split, bool) {
	b.sortBy(samples, f)
	clear(b.left)
	copy(b.right, b.classCounts(samples))

	var sumL, sumR float64 // sum of squared class counts
	for _, c := range b.right {
		sumR += c * c
	}

	n := len(samples)
	minLeaf := b.cfg.MinSamplesLeaf
	best := split{feature: f, score: -1}
	found := false
	for i := 0; i < n-1; i++ {
		c := b.y[samples[i]]
		// Moving one sample of class c from right to left.
		sumL += 2*b.left[c] + 1
		sumR -= 2*b.right[c] - 1
		b.left[c]++
		b.right[c]--

		nl, nr := i+1, n-i-1
		if nl < minLeaf || nr < minLeaf {
			continue
		}
		v, next := b.x[samples[i]][f], b.x[samples[i+1]][f]
		if v == next {
			continue
		}
		score := sumL/float64(nl) + sumR/float64(nr)
		if score > best.score {
			best.score = score
			best.pos = nl
			best.threshold = v + (next-v)/2
			if best.threshold == next {
				best.threshold = v
			}
			found = true
		}
	}
	return best, found
}

func (b *builder) sortBy(samples []int, f int) {
	slices.SortStableFunc(samples, func(i, j int) int {
		return cmp.Compare(b.x[i][f], b.x[j][f])
	})
}

func (b *builder) classCounts(samples []int) []float64 {
	counts := make([]float64, b.nClasses)
	for _, s := range samples {
		counts[b.y[s]]++
	}
	return counts
}

func normalize(counts []float64, n int) []float64 {
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = c / float64(n)
	}
	return out
}

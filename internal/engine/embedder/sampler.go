package embedder

import (
	"math"
	"math/rand"
	"sort"
)

// negPower smooths the unigram distribution used for negative sampling.
const negPower = 0.75

// negSampler draws negative examples proportionally to count^0.75.
type negSampler struct {
	cum []float64
}

func newNegSampler(counts []int64) *negSampler {
	cum := make([]float64, len(counts))
	var total float64
	for i, c := range counts {
		total += math.Pow(float64(c), negPower)
		cum[i] = total
	}
	return &negSampler{cum: cum}
}

func (s *negSampler) sample(rng *rand.Rand) int32 {
	x := rng.Float64() * s.cum[len(s.cum)-1]
	i := sort.SearchFloat64s(s.cum, x)
	if i >= len(s.cum) {
		i = len(s.cum) - 1
	}
	return int32(i)
}

// keepProbs returns, per token ID, the probability of keeping an occurrence
// during frequent-word down-sampling. sample <= 0 keeps everything.
func keepProbs(v *vocab, sample float64) []float64 {
	keep := make([]float64, v.size())
	if sample <= 0 {
		for i := range keep {
			keep[i] = 1
		}
		return keep
	}
	threshold := sample * float64(v.total)
	for i, c := range v.counts {
		n := float64(c)
		p := (math.Sqrt(n/threshold) + 1) * (threshold / n)
		keep[i] = math.Min(p, 1)
	}
	return keep
}

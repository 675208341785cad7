package embedder

import "hash/fnv"

const (
	bow = "<"
	eow = ">"
)

// charNgrams returns the character n-grams of "<token>" for n in [minN, maxN].
func charNgrams(token string, minN, maxN int) []string {
	runes := []rune(bow + token + eow)
	var out []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(runes); i++ {
			out = append(out, string(runes[i:i+n]))
		}
	}
	return out
}

// bucket hashes an n-gram into [0, buckets).
func bucket(ngram string, buckets int) uint32 {
	h := fnv.New32a()
	h.Write([]byte(ngram))
	return h.Sum32() % uint32(buckets)
}

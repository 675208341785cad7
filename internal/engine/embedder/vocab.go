package embedder

import "sort"

// vocab holds the training vocabulary. Token IDs are assigned by descending
// frequency, ties broken by first occurrence.
type vocab struct {
	tokenToID map[string]int32
	idToToken []string
	counts    []int64
	total     int64 // sum of counts of retained tokens
}

// buildVocab counts tokens across docs and keeps those seen at least
// minCount times (every token when minCount <= 1).
func buildVocab(docs [][]string, minCount int) *vocab {
	type entry struct {
		token string
		count int64
	}
	index := make(map[string]int)
	var entries []entry
	for _, doc := range docs {
		for _, tok := range doc {
			if i, ok := index[tok]; ok {
				entries[i].count++
				continue
			}
			index[tok] = len(entries)
			entries = append(entries, entry{token: tok, count: 1})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	v := &vocab{tokenToID: make(map[string]int32, len(entries))}
	for _, e := range entries {
		if e.count < int64(minCount) {
			continue
		}
		v.tokenToID[e.token] = int32(len(v.idToToken))
		v.idToToken = append(v.idToToken, e.token)
		v.counts = append(v.counts, e.count)
		v.total += e.count
	}
	return v
}

// lookup returns the token ID and whether the token is in the vocabulary.
func (v *vocab) lookup(token string) (int32, bool) {
	id, ok := v.tokenToID[token]
	return id, ok
}

// contains reports whether the token is in the vocabulary.
func (v *vocab) contains(token string) bool {
	_, ok := v.tokenToID[token]
	return ok
}

// size returns the number of tokens in the vocabulary.
func (v *vocab) size() int {
	return len(v.idToToken)
}

// encode maps docs to ID sequences, dropping tokens outside the vocabulary.
// Documents left empty are omitted.
func (v *vocab) encode(docs [][]string) [][]int32 {
	out := make([][]int32, 0, len(docs))
	for _, doc := range docs {
		ids := make([]int32, 0, len(doc))
		for _, tok := range doc {
			if id, ok := v.tokenToID[tok]; ok {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			out = append(out, ids)
		}
	}
	return out
}

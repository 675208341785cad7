package embedder

// table is a whole-word embedding table backed by one contiguous matrix.
type table struct {
	vocab   *vocab
	vectors *matrix
}

func (t *table) Dim() int { return t.vectors.dim }

func (t *table) Len() int { return t.vocab.size() }

func (t *table) Contains(token string) bool { return t.vocab.contains(token) }

func (t *table) Vector(token string) ([]float32, bool) {
	id, ok := t.vocab.lookup(token)
	if !ok {
		return nil, false
	}
	return t.vectors.row(id), true
}

// finalVectors materializes one vector per vocabulary word from a trained model.
func finalVectors(sg *skipGram) *matrix {
	m := newMatrix(sg.vocab.size(), sg.cfg.Dim)
	for id := range sg.vocab.size() {
		sg.wordVector(m.row(int32(id)), int32(id))
	}
	return m
}

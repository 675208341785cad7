package model

// Record is one dataset row, produced by a dataset loader and consumed by the engine.
type Record struct {
	Tokens   []string // cleaned, tokenized text
	Target   int      // binary helpfulness indicator (0 or 1)
	Category int      // categorical code 1-4, 0 = uncategorized
}

// Example is a tokenized document paired with the label selected for the
// current experiment.
type Example struct {
	Tokens []string
	Label  int
}

// Split holds the three disjoint partitions of an experiment's examples.
type Split struct {
	Train      []Example
	Validation []Example
	Test       []Example
}

// Documents returns the token sequences of the given examples, in order.
func Documents(examples []Example) [][]string {
	docs := make([][]string, len(examples))
	for i, ex := range examples {
		docs[i] = ex.Tokens
	}
	return docs
}

// Labels returns the labels of the given examples, in order.
func Labels(examples []Example) []int {
	labels := make([]int, len(examples))
	for i, ex := range examples {
		labels[i] = ex.Label
	}
	return labels
}

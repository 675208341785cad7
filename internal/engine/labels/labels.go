package labels

import (
	"errors"
	"fmt"

	"github.com/crimson-sun/vecforest/internal/model"
)

// ErrNoLabeledRows is returned when label selection leaves nothing to train on.
var ErrNoLabeledRows = errors.New("labels: no labeled rows")

// Scheme names.
const (
	Binary      = "binary"
	Categorical = "categorical"
)

// Scheme decides which records take part in an experiment and what label
// each one carries.
type Scheme struct {
	Name    string
	Classes []int    // class codes, in report order
	Names   []string // display names, parallel to Classes

	selectFn func(model.Record) (int, bool)
}

// BinaryScheme uses the target column as-is.
func BinaryScheme() Scheme {
	return Scheme{
		Name:    Binary,
		Classes: []int{0, 1},
		Names:   []string{"not helpful", "helpful"},
		selectFn: func(r model.Record) (int, bool) {
			return r.Target, true
		},
	}
}

// CategoricalScheme uses the category column and drops uncategorized (0) rows.
func CategoricalScheme() Scheme {
	return Scheme{
		Name:    Categorical,
		Classes: []int{1, 2, 3, 4},
		Names:   []string{"cat1", "cat2", "cat3", "cat4"},
		selectFn: func(r model.Record) (int, bool) {
			return r.Category, r.Category > 0
		},
	}
}

// ByName returns the scheme registered under name.
func ByName(name string) (Scheme, error) {
	switch name {
	case Binary:
		return BinaryScheme(), nil
	case Categorical:
		return CategoricalScheme(), nil
	default:
		return Scheme{}, fmt.Errorf("labels: unknown scheme %q", name)
	}
}

// Select filters records and attaches labels, preserving input order so the
// downstream seeded split stays reproducible.
func (s Scheme) Select(records []model.Record) ([]model.Example, error) {
	examples := make([]model.Example, 0, len(records))
	for _, r := range records {
		label, ok := s.selectFn(r)
		if !ok {
			continue
		}
		examples = append(examples, model.Example{Tokens: r.Tokens, Label: label})
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w (scheme %s, %d input rows)", ErrNoLabeledRows, s.Name, len(records))
	}
	return examples, nil
}

// ClassName returns the display name for a class code, or the code itself when
// the class is not part of the scheme.
func (s Scheme) ClassName(class int) string {
	for i, c := range s.Classes {
		if c == class {
			return s.Names[i]
		}
	}
	return fmt.Sprint(class)
}

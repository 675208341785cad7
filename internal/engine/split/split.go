package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/crimson-sun/vecforest/internal/model"
)

// ErrTooFewSamples is returned when a partition would leave the training side empty.
var ErrTooFewSamples = errors.New("split: too few samples")

// Sizes returns the (train, test) sizes for n samples. The test side is
// rounded up, the train side takes the remainder.
func Sizes(n int, testSize float64) (nTrain, nTest int) {
	nTest = int(math.Ceil(testSize * float64(n)))
	return n - nTest, nTest
}

// TrainTest partitions examples using one permutation drawn from seed. The
// first nTest permuted indices form the test side, the rest the train side,
// both in permuted order. The input slice is not modified.
func TrainTest(examples []model.Example, testSize float64, seed int64) (train, test []model.Example, err error) {
	n := len(examples)
	nTrain, nTest := Sizes(n, testSize)
	if nTrain <= 0 || nTest <= 0 {
		return nil, nil, fmt.Errorf("%w: %d samples with test size %v gives train=%d test=%d",
			ErrTooFewSamples, n, testSize, nTrain, nTest)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = make([]model.Example, 0, nTest)
	for _, i := range perm[:nTest] {
		test = append(test, examples[i])
	}
	train = make([]model.Example, 0, nTrain)
	for _, i := range perm[nTest:] {
		train = append(train, examples[i])
	}
	return train, test, nil
}

// Three performs the two sequential partitions: (train+validation) vs test,
// then train vs validation, both with the same seed.
func Three(examples []model.Example, testSize, validationSize float64, seed int64) (model.Split, error) {
	rest, test, err := TrainTest(examples, testSize, seed)
	if err != nil {
		return model.Split{}, err
	}
	train, val, err := TrainTest(rest, validationSize, seed)
	if err != nil {
		return model.Split{}, err
	}
	return model.Split{Train: train, Validation: val, Test: test}, nil
}

// Package metrics computes per-class classification reports and confusion
// matrices.
package metrics

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/crimson-sun/vecforest/internal/model"
)

// Confusion returns the confusion matrix over classes: rows are true
// classes, columns predicted classes, both in the order given. Pairs whose
// true or predicted label is not in classes are not counted.
func Confusion(yTrue, yPred, classes []int) *mat.Dense {
	n := len(classes)
	m := mat.NewDense(n, n, nil)
	for i := range yTrue {
		t := slices.Index(classes, yTrue[i])
		p := slices.Index(classes, yPred[i])
		if t < 0 || p < 0 {
			continue
		}
		m.Set(t, p, m.At(t, p)+1)
	}
	return m
}

// Report builds the classification report for one split. Precision, recall
// and F1 with a zero denominator are reported as 0.
func Report(split string, yTrue, yPred, classes []int, names []string) (model.Report, error) {
	if len(yTrue) != len(yPred) {
		return model.Report{}, fmt.Errorf("metrics: %d true labels but %d predictions", len(yTrue), len(yPred))
	}
	if len(classes) == 0 {
		return model.Report{}, fmt.Errorf("metrics: no classes")
	}
	if len(names) != len(classes) {
		return model.Report{}, fmt.Errorf("metrics: %d class names for %d classes", len(names), len(classes))
	}

	cm := Confusion(yTrue, yPred, classes)
	n := len(classes)

	precision := make([]float64, n)
	recall := make([]float64, n)
	f1 := make([]float64, n)
	support := make([]float64, n)

	rep := model.Report{Split: split, Classes: make([]model.ClassMetrics, n)}
	for k := range n {
		tp := cm.At(k, k)
		predicted := mat.Sum(cm.ColView(k))
		actual := mat.Sum(cm.RowView(k))

		precision[k] = safeDiv(tp, predicted)
		recall[k] = safeDiv(tp, actual)
		f1[k] = safeDiv(2*precision[k]*recall[k], precision[k]+recall[k])
		support[k] = actual

		rep.Classes[k] = model.ClassMetrics{
			Label:     classes[k],
			Name:      names[k],
			Precision: precision[k],
			Recall:    recall[k],
			F1:        f1[k],
			Support:   int(actual),
		}
	}

	var correct int
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	rep.Accuracy = safeDiv(float64(correct), float64(len(yTrue)))

	total := floats.Sum(support)
	rep.MacroAvg = model.Average{
		Precision: floats.Sum(precision) / float64(n),
		Recall:    floats.Sum(recall) / float64(n),
		F1:        floats.Sum(f1) / float64(n),
		Support:   int(total),
	}
	rep.WeightedAvg = model.Average{
		Precision: safeDiv(floats.Dot(precision, support), total),
		Recall:    safeDiv(floats.Dot(recall, support), total),
		F1:        safeDiv(floats.Dot(f1, support), total),
		Support:   int(total),
	}

	rep.Confusion = make([][]int, n)
	for i := range n {
		rep.Confusion[i] = make([]int, n)
		for j := range n {
			rep.Confusion[i][j] = int(cm.At(i, j))
		}
	}
	return rep, nil
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

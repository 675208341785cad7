package metrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/crimson-sun/vecforest/internal/model"
)

// Digits is the precision used by WriteText.
const Digits = 4

// WriteText renders r as a fixed-width table in the familiar
// precision/recall/f1-score/support layout.
func WriteText(w io.Writer, r model.Report) error {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len(c.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%*s  %9.*f %9.*f %9.*f %9d\n",
			width, c.Name, Digits, c.Precision, Digits, c.Recall, Digits, c.F1, c.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.*f %9d\n", width, "accuracy", "", "", Digits, r.Accuracy, r.MacroAvg.Support)
	for _, a := range []struct {
		name string
		avg  model.Average
	}{{"macro avg", r.MacroAvg}, {"weighted avg", r.WeightedAvg}} {
		fmt.Fprintf(&b, "%*s  %9.*f %9.*f %9.*f %9d\n",
			width, a.name, Digits, a.avg.Precision, Digits, a.avg.Recall, Digits, a.avg.F1, a.avg.Support)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteConfusion renders the confusion matrix with class names as row and
// column headers.
func WriteConfusion(w io.Writer, r model.Report) error {
	width := len("true\\pred")
	cell := 6
	for _, c := range r.Classes {
		width = max(width, len(c.Name))
		cell = max(cell, len(c.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", width, "true\\pred")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, " %*s", cell, c.Name)
	}
	b.WriteString("\n")
	for i, row := range r.Confusion {
		name := ""
		if i < len(r.Classes) {
			name = r.Classes[i].Name
		}
		fmt.Fprintf(&b, "%-*s", width, name)
		for _, v := range row {
			fmt.Fprintf(&b, " %*d", cell, v)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

package output

import (
	"fmt"
	"io"

	"github.com/crimson-sun/vecforest/internal/engine/metrics"
	"github.com/crimson-sun/vecforest/internal/model"
)

// Verbosity controls how much of a result is emitted.
type Verbosity int

const (
	// Minimal drops confusion matrices.
	Minimal Verbosity = iota
	// Standard emits everything.
	Standard
)

// ParseVerbosity maps "minimal" to Minimal and anything else to Standard.
func ParseVerbosity(s string) Verbosity {
	if s == "minimal" {
		return Minimal
	}
	return Standard
}

// FormatResult returns a copy of the result with fields stripped according
// to verbosity. The input's reports are not modified.
func FormatResult(r model.ExperimentResult, verbosity Verbosity) model.ExperimentResult {
	if verbosity == Minimal {
		reports := make([]model.Report, len(r.Reports))
		for i, rep := range r.Reports {
			rep.Confusion = nil
			reports[i] = rep
		}
		r.Reports = reports
	}
	return r
}

// WriteText renders a result as classification report tables, one per
// split, followed by the test accuracy line.
func WriteText(w io.Writer, r model.ExperimentResult) error {
	if _, err := fmt.Fprintf(w, "== %s / %s  (run %s)\n", r.Embedding, r.Labels, r.RunID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "train=%d validation=%d test=%d vocab=%d\n\n",
		r.TrainSize, r.ValidationSize, r.TestSize, r.VocabSize); err != nil {
		return err
	}
	for _, rep := range r.Reports {
		if _, err := fmt.Fprintf(w, "[%s]\n", rep.Split); err != nil {
			return err
		}
		if err := metrics.WriteText(w, rep); err != nil {
			return err
		}
		if len(rep.Confusion) > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
			if err := metrics.WriteConfusion(w, rep); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Accuracy: %.4f\n", r.TestAccuracy)
	return err
}

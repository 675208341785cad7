package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/vecforest/internal/model"
)

func baseResult() model.ExperimentResult {
	rep := func(split string, acc float64) model.Report {
		return model.Report{
			Split: split,
			Classes: []model.ClassMetrics{
				{Label: 0, Name: "not helpful", Precision: 1, Recall: 0.5, F1: 2.0 / 3, Support: 2},
				{Label: 1, Name: "helpful", Precision: 0.5, Recall: 1, F1: 2.0 / 3, Support: 1},
			},
			Accuracy:    acc,
			MacroAvg:    model.Average{Precision: 0.75, Recall: 0.75, F1: 2.0 / 3, Support: 3},
			WeightedAvg: model.Average{Precision: 5.0 / 6, Recall: 2.0 / 3, F1: 2.0 / 3, Support: 3},
			Confusion:   [][]int{{1, 1}, {0, 1}},
		}
	}
	return model.ExperimentResult{
		RunID:          "run-1",
		Embedding:      "word2vec",
		Labels:         "binary",
		TrainSize:      6,
		ValidationSize: 2,
		TestSize:       3,
		VocabSize:      12,
		Reports:        []model.Report{rep("train", 1), rep("validation", 0.5), rep("test", 2.0/3)},
		TestAccuracy:   2.0 / 3,
		Started:        time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC),
		Duration:       time.Second,
	}
}

func TestFormatResultMinimal(t *testing.T) {
	orig := baseResult()
	r := FormatResult(orig, Minimal)

	for _, rep := range r.Reports {
		if rep.Confusion != nil {
			t.Fatalf("%s: Confusion should be nil at Minimal", rep.Split)
		}
	}
	if orig.Reports[0].Confusion == nil {
		t.Fatal("FormatResult modified the input")
	}
	if r.TestAccuracy != orig.TestAccuracy || len(r.Reports) != 3 {
		t.Fatal("accuracy and reports should be preserved")
	}
}

func TestFormatResultStandard(t *testing.T) {
	r := FormatResult(baseResult(), Standard)
	if r.Reports[2].Confusion == nil {
		t.Fatal("Confusion should be preserved at Standard")
	}
}

func TestParseVerbosity(t *testing.T) {
	if ParseVerbosity("minimal") != Minimal {
		t.Error("minimal should parse to Minimal")
	}
	for _, s := range []string{"", "standard", "full"} {
		if ParseVerbosity(s) != Standard {
			t.Errorf("%q should parse to Standard", s)
		}
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, baseResult()); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"== word2vec / binary",
		"[train]", "[validation]", "[test]",
		"precision    recall  f1-score   support",
		"weighted avg",
		"true\\pred",
		"Accuracy: 0.6667\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "Accuracy: 0.6667\n") {
		t.Errorf("accuracy line should come last:\n%s", out)
	}
}

func TestWriteTextMinimalOmitsConfusion(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, FormatResult(baseResult(), Minimal)); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if strings.Contains(buf.String(), "true\\pred") {
		t.Error("confusion matrix should be omitted")
	}
}

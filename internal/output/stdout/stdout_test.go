package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/crimson-sun/vecforest/internal/model"
	"github.com/crimson-sun/vecforest/internal/output"
)

func testResult() model.ExperimentResult {
	return model.ExperimentResult{
		RunID:     "run-1",
		Embedding: "fasttext",
		Labels:    "categorical",
		TestSize:  2,
		Reports: []model.Report{{
			Split:     model.SplitTest,
			Classes:   []model.ClassMetrics{{Label: 1, Name: "cat1", Precision: 1, Recall: 1, F1: 1, Support: 2}},
			Accuracy:  1,
			MacroAvg:  model.Average{Precision: 1, Recall: 1, F1: 1, Support: 2},
			Confusion: [][]int{{2}},
		}},
		TestAccuracy: 1,
		Started:      time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC),
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestOutputCompactJSON(t *testing.T) {
	result := captureStdout(func() {
		out, err := New(JSON, output.Standard)
		if err != nil {
			t.Fatal(err)
		}
		out.Write(context.Background(), testResult())
	})

	// Should be single line (NDJSON).
	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["embedding"] != "fasttext" {
		t.Fatalf("expected embedding=fasttext, got %v", m["embedding"])
	}
	if m["test_accuracy"] != 1.0 {
		t.Fatalf("expected test_accuracy=1, got %v", m["test_accuracy"])
	}
}

func TestOutputPrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	out, err := New(JSON, output.Standard, WithWriter(&buf), WithPretty())
	if err != nil {
		t.Fatal(err)
	}
	out.Write(context.Background(), testResult())

	result := buf.String()
	if !strings.Contains(result, "  ") {
		t.Fatal("expected indented output for pretty mode")
	}
	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected multi-line pretty output, got %d lines", len(lines))
	}
}

func TestOutputMinimalOmitsConfusion(t *testing.T) {
	var buf bytes.Buffer
	out, err := New(JSON, output.Minimal, WithWriter(&buf))
	if err != nil {
		t.Fatal(err)
	}
	out.Write(context.Background(), testResult())

	if strings.Contains(buf.String(), "confusion") {
		t.Fatalf("confusion should be omitted at Minimal: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"accuracy":1`) {
		t.Fatalf("accuracy should be preserved: %s", buf.String())
	}
}

func TestOutputText(t *testing.T) {
	var buf bytes.Buffer
	out, err := New(Text, output.Standard, WithWriter(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if err := out.Write(context.Background(), testResult()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	s := buf.String()
	if !strings.Contains(s, "[test]") || !strings.Contains(s, "cat1") {
		t.Fatalf("expected report table, got:\n%s", s)
	}
	if !strings.HasSuffix(s, "Accuracy: 1.0000\n") {
		t.Fatalf("expected trailing accuracy line, got:\n%s", s)
	}
}

func TestNewUnknownFormat(t *testing.T) {
	if _, err := New("xml", output.Standard); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

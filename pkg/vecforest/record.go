package vecforest

import "github.com/crimson-sun/vecforest/internal/model"

// Record is one labeled document.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Record struct {
	Tokens   []string `json:"tokens"`   // tokenized text
	Target   int      `json:"target"`   // binary label, 0 or 1
	Category int      `json:"category"` // 1-4, 0 = uncategorized
}

// Result is everything one experiment variant produced: split sizes, the
// per-split classification reports, and the test accuracy.
type Result = model.ExperimentResult

// Report is one split's classification report.
type Report = model.Report

func toModel(records []Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		out[i] = model.Record{Tokens: r.Tokens, Target: r.Target, Category: r.Category}
	}
	return out
}

func fromModel(records []model.Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Record{Tokens: r.Tokens, Target: r.Target, Category: r.Category}
	}
	return out
}

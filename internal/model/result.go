package model

import "time"

// Split names used in reports.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
	SplitTest       = "test"
)

// ClassMetrics holds precision, recall and F1 for a single class.
type ClassMetrics struct {
	Label     int     `json:"label"`
	Name      string  `json:"name"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Average is an aggregate (macro or support-weighted) over all classes.
type Average struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the classification report for one split.
type Report struct {
	Split       string         `json:"split"`
	Classes     []ClassMetrics `json:"classes"`
	Accuracy    float64        `json:"accuracy"`
	MacroAvg    Average        `json:"macro_avg"`
	WeightedAvg Average        `json:"weighted_avg"`
	Confusion   [][]int        `json:"confusion,omitempty"` // rows = true class, cols = predicted class
}

// ExperimentResult is vecforest's output type: everything one experiment
// variant produced.
type ExperimentResult struct {
	RunID          string        `json:"run_id"`
	Embedding      string        `json:"embedding"`
	Labels         string        `json:"labels"`
	TrainSize      int           `json:"train_size"`
	ValidationSize int           `json:"validation_size"`
	TestSize       int           `json:"test_size"`
	VocabSize      int           `json:"vocab_size"`
	Reports        []Report      `json:"reports"` // train, validation, test
	TestAccuracy   float64       `json:"test_accuracy"`
	Started        time.Time     `json:"started"`
	Duration       time.Duration `json:"duration_ns"`
}

// Report returns the report for the named split, if present.
func (r ExperimentResult) Report(split string) (Report, bool) {
	for _, rep := range r.Reports {
		if rep.Split == split {
			return rep, true
		}
	}
	return Report{}, false
}

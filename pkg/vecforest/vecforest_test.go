package vecforest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/crimson-sun/vecforest/internal/engine/testdata"
	"github.com/crimson-sun/vecforest/internal/model"
)

func goodBad() []Record {
	var records []Record
	for i := range 10 {
		if i%2 == 0 {
			records = append(records, Record{Tokens: []string{"good", "product"}, Target: 1, Category: 1})
		} else {
			records = append(records, Record{Tokens: []string{"bad", "product"}, Target: 0, Category: 2})
		}
	}
	return records
}

func corpus(t *testing.T) []Record {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	if err := os.WriteFile(path, testdata.CorpusJSONL(), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	records, err := LoadFile(context.Background(), "jsonl", path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	return records
}

func small(opts ...Option) []Option {
	return append([]Option{WithDimension(12), WithEpochs(2), WithTrees(10)}, opts...)
}

func TestNewRejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"embedding", WithEmbedding("glove")},
		{"labels", WithLabels("multi")},
		{"oov", WithOOV("guess")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunGoodBad(t *testing.T) {
	exp, err := New(small()...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	res, err := exp.Run(context.Background(), goodBad())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.TrainSize != 6 || res.ValidationSize != 2 || res.TestSize != 2 {
		t.Errorf("split = %d/%d/%d, want 6/2/2", res.TrainSize, res.ValidationSize, res.TestSize)
	}
	if res.Embedding != Word2Vec || res.Labels != Binary {
		t.Errorf("variant = %s/%s", res.Embedding, res.Labels)
	}
	if _, ok := res.Report(model.SplitTest); !ok {
		t.Error("missing test report")
	}
}

func TestRunAllOrder(t *testing.T) {
	exp, err := New(small(WithWorkers(2))...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	results, err := exp.RunAll(context.Background(), corpus(t))
	if err != nil {
		t.Fatalf("RunAll() error: %v", err)
	}
	want := [][2]string{
		{Word2Vec, Binary}, {Word2Vec, Categorical},
		{FastText, Binary}, {FastText, Categorical},
	}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, w := range want {
		if results[i].Embedding != w[0] || results[i].Labels != w[1] {
			t.Errorf("result %d = %s/%s, want %s/%s", i, results[i].Embedding, results[i].Labels, w[0], w[1])
		}
	}
}

func TestRunSeededIsReproducible(t *testing.T) {
	records := corpus(t)
	var accs [2]float64
	for i := range accs {
		exp, err := New(small(WithSeed(5), WithEmbedding(FastText), WithOOV(ComposeOOV))...)
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		res, err := exp.Run(context.Background(), records)
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		accs[i] = res.TestAccuracy
	}
	if accs[0] != accs[1] {
		t.Errorf("seeded runs differ: %v vs %v", accs[0], accs[1])
	}
}

func TestRunConcurrentUse(t *testing.T) {
	exp, err := New(small()...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = exp.Run(context.Background(), goodBad())
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Errorf("run %d: %v", i, err)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	exp, err := New(small()...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exp.Run(ctx, goodBad()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTrainEmbedding(t *testing.T) {
	exp, err := New(small(WithEmbedding(FastText), WithOOV(ComposeOOV))...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	docs := [][]string{{"good", "product"}, {"bad", "product"}}
	emb, err := exp.TrainEmbedding(context.Background(), docs)
	if err != nil {
		t.Fatalf("TrainEmbedding() error: %v", err)
	}
	if emb.Dim() != 12 || emb.Len() != 3 {
		t.Fatalf("Dim/Len = %d/%d, want 12/3", emb.Dim(), emb.Len())
	}

	v, ok := emb.Vector("good")
	if !ok {
		t.Fatal("expected vector for trained token")
	}
	v[0] = 1e9
	if again, _ := emb.Vector("good"); again[0] == 1e9 {
		t.Error("Vector must return a copy")
	}

	if _, ok := emb.Vector("excellent"); ok {
		t.Error("untrained token should have no vector")
	}
	if got := emb.Vectorize(nil); len(got) != 12 {
		t.Errorf("empty doc vector has length %d, want 12", len(got))
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/vecforest/internal/dataset/remote"
)

// Version is the vecforest release version.
const Version = "0.3.0"

// Config holds all vecforest configuration.
type Config struct {
	Dataset    DatasetConfig    `yaml:"dataset"`
	Experiment ExperimentConfig `yaml:"experiment"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Forest     ForestConfig     `yaml:"forest"`
	Output     OutputConfig     `yaml:"output"`
	LogLevel   string           `yaml:"log_level"`
}

// DatasetConfig describes where the labeled token data lives and how its
// columns are named.
type DatasetConfig struct {
	Path           string `yaml:"path"`
	Format         string `yaml:"format"` // "csv", "jsonl"
	TokenColumn    string `yaml:"token_column"`
	TargetColumn   string `yaml:"target_column"`
	CategoryColumn string `yaml:"category_column"`
	Stem           string `yaml:"stem"`  // snowball language for whitespace text, "" = off
	Token          string `yaml:"token"` // Bearer token when Path is an http(s) URL
}

// ExperimentConfig selects the experiment variant and the data split.
type ExperimentConfig struct {
	Embedding      string  `yaml:"embedding"` // "word2vec", "fasttext"
	Labels         string  `yaml:"labels"`    // "binary", "categorical"
	All            bool    `yaml:"all"`       // run every embedding x labels combination
	Seed           int64   `yaml:"seed"`
	TestSize       float64 `yaml:"test_size"`
	ValidationSize float64 `yaml:"validation_size"`
	OOV            string  `yaml:"oov"` // "skip", "compose"
}

// EmbeddingConfig holds embedding trainer hyperparameters.
type EmbeddingConfig struct {
	Dim      int     `yaml:"dim"`
	Window   int     `yaml:"window"`
	MinCount int     `yaml:"min_count"`
	Epochs   int     `yaml:"epochs"`
	Negative int     `yaml:"negative"`
	Alpha    float64 `yaml:"alpha"`
	Sample   float64 `yaml:"sample"`
	Workers  int     `yaml:"workers"`
	MinN     int     `yaml:"min_n"`
	MaxN     int     `yaml:"max_n"`
	Buckets  int     `yaml:"buckets"`
	Seed     int64   `yaml:"seed"` // 0 = unseeded
}

// ForestConfig holds random forest hyperparameters.
type ForestConfig struct {
	Trees           int   `yaml:"trees"`
	MaxFeatures     int   `yaml:"max_features"` // 0 = sqrt(n_features)
	MaxDepth        int   `yaml:"max_depth"`    // 0 = unlimited
	MinSamplesSplit int   `yaml:"min_samples_split"`
	MinSamplesLeaf  int   `yaml:"min_samples_leaf"`
	Workers         int   `yaml:"workers"`
	Seed            int64 `yaml:"seed"` // 0 = unseeded
}

// OutputConfig holds report destination settings.
type OutputConfig struct {
	Format     string `yaml:"format"` // "text", "json"
	Pretty     bool   `yaml:"pretty"`
	ReportFile string `yaml:"report_file"` // JSON Lines, "" = off
	Verbosity  string `yaml:"verbosity"`   // "standard", "minimal"

	WebhookURL   string `yaml:"webhook_url"` // POST each result here, "" = off
	WebhookToken string `yaml:"webhook_token"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Dataset: DatasetConfig{
			Format:         "csv",
			TokenColumn:    "clean_words_mecab",
			TargetColumn:   "target",
			CategoryColumn: "category",
		},
		Experiment: ExperimentConfig{
			Embedding:      "word2vec",
			Labels:         "binary",
			Seed:           42,
			TestSize:       0.2,
			ValidationSize: 0.2,
			OOV:            "skip",
		},
		Embedding: EmbeddingConfig{
			Dim:      100,
			Window:   5,
			MinCount: 0,
			Epochs:   5,
			Negative: 5,
			Alpha:    0.025,
			Sample:   1e-3,
			Workers:  4,
			MinN:     3,
			MaxN:     6,
			Buckets:  2000000,
		},
		Forest: ForestConfig{
			Trees:           100,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
			Workers:         1,
		},
		Output: OutputConfig{
			Format:    "text",
			Verbosity: "standard",
		},
		LogLevel: "info",
	}
}

// Load reads .env (if present) then environment variables on top of the defaults.
func Load() Config {
	// Best-effort: a missing .env is not an error.
	_ = godotenv.Load()

	cfg := Defaults()
	applyEnv(&cfg)
	return cfg
}

// LoadFile layers a YAML file between the defaults and the environment.
// An empty path behaves like Load.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Load(), nil
	}
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	d := &cfg.Dataset
	d.Path = getenv("VECFOREST_DATASET", d.Path)
	d.Format = getenv("VECFOREST_DATASET_FORMAT", d.Format)
	d.TokenColumn = getenv("VECFOREST_TOKEN_COLUMN", d.TokenColumn)
	d.TargetColumn = getenv("VECFOREST_TARGET_COLUMN", d.TargetColumn)
	d.CategoryColumn = getenv("VECFOREST_CATEGORY_COLUMN", d.CategoryColumn)
	d.Stem = getenv("VECFOREST_STEM", d.Stem)
	d.Token = getenv("VECFOREST_DATASET_TOKEN", d.Token)

	x := &cfg.Experiment
	x.Embedding = getenv("VECFOREST_EMBEDDING", x.Embedding)
	x.Labels = getenv("VECFOREST_LABELS", x.Labels)
	x.All = getenvBool("VECFOREST_ALL", x.All)
	x.Seed = getenvInt64("VECFOREST_SEED", x.Seed)
	x.TestSize = getenvFloat("VECFOREST_TEST_SIZE", x.TestSize)
	x.ValidationSize = getenvFloat("VECFOREST_VALIDATION_SIZE", x.ValidationSize)
	x.OOV = getenv("VECFOREST_OOV", x.OOV)

	e := &cfg.Embedding
	e.Dim = getenvInt("VECFOREST_EMBED_DIM", e.Dim)
	e.Window = getenvInt("VECFOREST_EMBED_WINDOW", e.Window)
	e.MinCount = getenvInt("VECFOREST_EMBED_MIN_COUNT", e.MinCount)
	e.Epochs = getenvInt("VECFOREST_EMBED_EPOCHS", e.Epochs)
	e.Negative = getenvInt("VECFOREST_EMBED_NEGATIVE", e.Negative)
	e.Workers = getenvInt("VECFOREST_EMBED_WORKERS", e.Workers)
	e.Seed = getenvInt64("VECFOREST_EMBED_SEED", e.Seed)

	f := &cfg.Forest
	f.Trees = getenvInt("VECFOREST_TREES", f.Trees)
	f.MaxDepth = getenvInt("VECFOREST_MAX_DEPTH", f.MaxDepth)
	f.Workers = getenvInt("VECFOREST_FOREST_WORKERS", f.Workers)
	f.Seed = getenvInt64("VECFOREST_FOREST_SEED", f.Seed)

	o := &cfg.Output
	o.Format = getenv("VECFOREST_OUTPUT", o.Format)
	o.Pretty = getenvBool("VECFOREST_OUTPUT_PRETTY", o.Pretty)
	o.ReportFile = getenv("VECFOREST_REPORT_FILE", o.ReportFile)
	o.Verbosity = getenv("VECFOREST_VERBOSITY", o.Verbosity)
	o.WebhookURL = getenv("VECFOREST_WEBHOOK_URL", o.WebhookURL)
	o.WebhookToken = getenv("VECFOREST_WEBHOOK_TOKEN", o.WebhookToken)

	cfg.LogLevel = getenv("VECFOREST_LOG_LEVEL", cfg.LogLevel)
}

// Validate checks the configuration and returns every problem found, joined.
func (c Config) Validate() error {
	var errs []error

	if c.Dataset.Path == "" {
		errs = append(errs, errors.New("dataset path is required (VECFOREST_DATASET or --dataset)"))
	} else if !remote.IsURL(c.Dataset.Path) {
		if _, err := os.Stat(c.Dataset.Path); err != nil {
			errs = append(errs, fmt.Errorf("dataset file: %w", err))
		}
	}
	if !oneOf(c.Dataset.Format, "csv", "jsonl") {
		errs = append(errs, fmt.Errorf("dataset format must be csv or jsonl, got %q", c.Dataset.Format))
	}
	if c.Dataset.TokenColumn == "" {
		errs = append(errs, errors.New("token column must not be empty"))
	}

	if !c.Experiment.All {
		if !oneOf(c.Experiment.Embedding, "word2vec", "fasttext") {
			errs = append(errs, fmt.Errorf("embedding must be word2vec or fasttext, got %q", c.Experiment.Embedding))
		}
		if !oneOf(c.Experiment.Labels, "binary", "categorical") {
			errs = append(errs, fmt.Errorf("labels must be binary or categorical, got %q", c.Experiment.Labels))
		}
	}
	if c.Experiment.TestSize <= 0 || c.Experiment.TestSize >= 1 {
		errs = append(errs, fmt.Errorf("test size must be in (0, 1), got %v", c.Experiment.TestSize))
	}
	if c.Experiment.ValidationSize <= 0 || c.Experiment.ValidationSize >= 1 {
		errs = append(errs, fmt.Errorf("validation size must be in (0, 1), got %v", c.Experiment.ValidationSize))
	}
	if !oneOf(c.Experiment.OOV, "skip", "compose") {
		errs = append(errs, fmt.Errorf("oov policy must be skip or compose, got %q", c.Experiment.OOV))
	}

	e := c.Embedding
	if e.Dim <= 0 {
		errs = append(errs, fmt.Errorf("embedding dim must be positive, got %d", e.Dim))
	}
	if e.Window <= 0 {
		errs = append(errs, fmt.Errorf("embedding window must be positive, got %d", e.Window))
	}
	if e.MinCount < 0 {
		errs = append(errs, fmt.Errorf("embedding min count must be >= 0, got %d", e.MinCount))
	}
	if e.Epochs <= 0 {
		errs = append(errs, fmt.Errorf("embedding epochs must be positive, got %d", e.Epochs))
	}
	if e.Workers <= 0 {
		errs = append(errs, fmt.Errorf("embedding workers must be positive, got %d", e.Workers))
	}
	if e.MinN <= 0 || e.MaxN < e.MinN {
		errs = append(errs, fmt.Errorf("embedding n-gram range [%d, %d] is invalid", e.MinN, e.MaxN))
	}

	f := c.Forest
	if f.Trees <= 0 {
		errs = append(errs, fmt.Errorf("forest trees must be positive, got %d", f.Trees))
	}
	if f.MinSamplesSplit < 2 {
		errs = append(errs, fmt.Errorf("forest min samples split must be >= 2, got %d", f.MinSamplesSplit))
	}
	if f.MinSamplesLeaf < 1 {
		errs = append(errs, fmt.Errorf("forest min samples leaf must be >= 1, got %d", f.MinSamplesLeaf))
	}

	if !oneOf(c.Output.Format, "text", "json") {
		errs = append(errs, fmt.Errorf("output format must be text or json, got %q", c.Output.Format))
	}
	if !oneOf(c.Output.Verbosity, "standard", "minimal") {
		errs = append(errs, fmt.Errorf("output verbosity must be standard or minimal, got %q", c.Output.Verbosity))
	}
	if c.Output.WebhookURL != "" && !remote.IsURL(c.Output.WebhookURL) {
		errs = append(errs, fmt.Errorf("webhook url must be http(s), got %q", c.Output.WebhookURL))
	}

	return errors.Join(errs...)
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v == "1" || strings.EqualFold(v, "true")
}

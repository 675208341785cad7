package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/vecforest/internal/config"
	"github.com/crimson-sun/vecforest/internal/logging"
	"github.com/crimson-sun/vecforest/internal/pipeline"
)

// runFlags override the file and environment configuration when set.
type runFlags struct {
	configPath string

	dataset       string
	datasetFormat string
	tokenColumn   string

	embedding string
	labels    string
	all       bool
	seed      int64
	oov       string

	dim    int
	epochs int
	trees  int

	output     string
	pretty     bool
	reportFile string
	verbosity  string
	webhook    string
	logLevel   string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one experiment variant, or all four with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFile(f.configPath)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}
			return run(cmd, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fl.StringVarP(&f.dataset, "dataset", "d", "", "dataset path or http(s) URL")
	fl.StringVar(&f.datasetFormat, "dataset-format", "", "dataset format: csv, jsonl")
	fl.StringVar(&f.tokenColumn, "token-column", "", "column holding the tokenized text")
	fl.StringVarP(&f.embedding, "embedding", "e", "", "embedding algorithm: word2vec, fasttext")
	fl.StringVarP(&f.labels, "labels", "l", "", "label scheme: binary, categorical")
	fl.BoolVar(&f.all, "all", false, "run every embedding x labels combination")
	fl.Int64Var(&f.seed, "seed", 0, "seed for the split, embedding, and forest")
	fl.StringVar(&f.oov, "oov", "", "out-of-vocabulary policy: skip, compose")
	fl.IntVar(&f.dim, "dim", 0, "embedding dimension")
	fl.IntVar(&f.epochs, "epochs", 0, "embedding training epochs")
	fl.IntVar(&f.trees, "trees", 0, "random forest size")
	fl.StringVarP(&f.output, "output", "o", "", "report format: text, json")
	fl.BoolVar(&f.pretty, "pretty", false, "indent JSON reports")
	fl.StringVar(&f.reportFile, "report-file", "", "append JSON Lines results to this file")
	fl.StringVar(&f.verbosity, "verbosity", "", "report verbosity: standard, minimal")
	fl.StringVar(&f.webhook, "webhook", "", "POST each result to this URL")
	fl.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	return cmd
}

func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("dataset") {
		cfg.Dataset.Path = f.dataset
	}
	if changed("dataset-format") {
		cfg.Dataset.Format = f.datasetFormat
	}
	if changed("token-column") {
		cfg.Dataset.TokenColumn = f.tokenColumn
	}
	if changed("embedding") {
		cfg.Experiment.Embedding = f.embedding
	}
	if changed("labels") {
		cfg.Experiment.Labels = f.labels
	}
	if changed("all") {
		cfg.Experiment.All = f.all
	}
	if changed("seed") {
		cfg.Experiment.Seed = f.seed
	}
	if changed("oov") {
		cfg.Experiment.OOV = f.oov
	}
	if changed("dim") {
		cfg.Embedding.Dim = f.dim
	}
	if changed("epochs") {
		cfg.Embedding.Epochs = f.epochs
	}
	if changed("trees") {
		cfg.Forest.Trees = f.trees
	}
	if changed("output") {
		cfg.Output.Format = f.output
	}
	if changed("pretty") {
		cfg.Output.Pretty = f.pretty
	}
	if changed("report-file") {
		cfg.Output.ReportFile = f.reportFile
	}
	if changed("verbosity") {
		cfg.Output.Verbosity = f.verbosity
	}
	if changed("webhook") {
		cfg.Output.WebhookURL = f.webhook
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

func run(cmd *cobra.Command, cfg config.Config) error {
	logger := logging.Init(cfg.Output.Format == "json", logging.ParseLevel(cfg.LogLevel))

	// Set up graceful shutdown.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Warn("shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("vecforest starting",
		"version", config.Version,
		"dataset", cfg.Dataset.Path,
		"embedding", cfg.Experiment.Embedding,
		"labels", cfg.Experiment.Labels,
		"all", cfg.Experiment.All,
	)
	if _, err := pipeline.Execute(ctx, cfg, cmd.OutOrStdout(), logger); err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("interrupted")
		}
		return err
	}
	return nil
}

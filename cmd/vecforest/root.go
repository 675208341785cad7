package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/vecforest/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vecforest",
		Short: "Embedding + random forest text classification experiments",
		Long: `vecforest trains word2vec or fasttext embeddings on tokenized reviews,
averages them into document vectors, and evaluates a random forest on
binary sentiment or 4-class category labels.

Examples:
  vecforest run --dataset reviews.csv
  vecforest run --dataset reviews.csv --embedding fasttext --labels categorical
  vecforest run --dataset reviews.jsonl --format jsonl --all --output json`,
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vecforest version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "vecforest %s\n", config.Version)
			return err
		},
	}
}

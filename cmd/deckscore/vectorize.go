package main

import (
	"github.com/spf13/cobra"
)

func vectorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vectorize",
		Short: "Build the TF-IDF feature table",
		Long: `Fit the TF-IDF vectorizer over every translated deck and write the
shared feature table. Training and prediction both read this table, so
rerun vectorize after ingesting new decks.

The vocabulary is rebuilt from scratch on every run; models trained on
an older vocabulary should be retrained afterwards.

Examples:
  deckscore vectorize`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			return vectorizeStage(cmd.Context(), store)
		},
	}
}

package main

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/deckscore/deckscore/internal/cli"
	"github.com/deckscore/deckscore/internal/model"
)

func statusCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where each deck sits in the pipeline",
		Long: `Show every known document and the furthest stage it has reached:
ingested, vectorized, labeled or predicted, along with the axes that
have predictions for it.

Examples:
  deckscore status
  deckscore status --filter '^alpha'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			statuses, err := store.DocumentStatuses(cmd.Context())
			if err != nil {
				return err
			}

			if filter != "" {
				re, err := regexp.Compile(filter)
				if err != nil {
					return fmt.Errorf("bad --filter pattern: %w", err)
				}
				kept := make([]model.DocumentStatus, 0, len(statuses))
				for _, st := range statuses {
					if re.MatchString(st.Doc) {
						kept = append(kept, st)
					}
				}
				statuses = kept
			}

			return cli.WriteStatuses(os.Stdout, statuses)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show documents matching this regular expression")

	return cmd
}

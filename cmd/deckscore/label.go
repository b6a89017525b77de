package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deckscore/deckscore/internal/cli"
	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
	"github.com/deckscore/deckscore/internal/storage"
)

func labelCmd() *cobra.Command {
	var (
		pending      bool
		techLabel    string
		domainLabel  string
		countryLabel string
		resultLabel  string
	)

	cmd := &cobra.Command{
		Use:   "label [doc]",
		Short: "Record truth labels for decks",
		Long: `Record the manual classification of a deck on one or more axes. Labels
are what the classifiers train on and what evaluations compare against.

With axis flags only the given axes are written; without flags every
axis is prompted for interactively, showing the current value.

Examples:
  deckscore label deck1.pdf --country france --tech hard
  deckscore label deck1.pdf                 # Interactive prompts
  deckscore label --pending                 # Decks still missing labels`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore()
			if err != nil {
				return err
			}

			if pending {
				return listPendingDecks(ctx, store)
			}
			if len(args) == 0 {
				return common.NewUserError("give a document id to label, or --pending to see what still needs one", nil)
			}

			doc := args[0]
			if filepath.Ext(doc) == "" {
				doc += ".pdf"
			}

			labels, err := loadOrCreateLabels(ctx, store)
			if err != nil {
				return err
			}
			row, _ := labels.Get(doc)
			row.Doc = doc

			flagged := []struct {
				axis  model.Axis
				value string
			}{
				{model.AxisTech, techLabel},
				{model.AxisDomain, domainLabel},
				{model.AxisCountry, countryLabel},
				{model.AxisResult, resultLabel},
			}
			interactive := true
			for _, f := range flagged {
				if f.value == "" {
					continue
				}
				interactive = false
				if !f.axis.ValidCategory(f.value) {
					return common.NewUserError(
						fmt.Sprintf("%q is not a %s category (want %s)", f.value, f.axis, strings.Join(f.axis.Categories(), ", ")),
						common.ErrUnknownCategory)
				}
				if err := row.Set(f.axis, f.value); err != nil {
					return err
				}
			}

			if interactive {
				labeler := cli.NewLabeler(os.Stdin, os.Stdout)
				updated, err := labeler.PromptRow(ctx, row)
				if errors.Is(err, cli.ErrLabelingCanceled) {
					fmt.Println(cli.FormatInfo("Labeling canceled, nothing saved"))
					return nil
				}
				if err != nil {
					return err
				}
				row = updated
			}

			labels.Upsert(row)
			if err := store.SaveLabels(ctx, labels); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Labeled " + doc))
			if !row.Complete() {
				fmt.Println(cli.FormatInfo("Some axes are still unlabeled; rerun without flags to fill them in"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pending, "pending", false, "List decks that have no complete labels yet")
	cmd.Flags().StringVar(&techLabel, "tech", "", "Tech label (soft, hard, both)")
	cmd.Flags().StringVar(&domainLabel, "domain", "", "Domain label (energy transition, industrie 4.0, new materials, others)")
	cmd.Flags().StringVar(&countryLabel, "country", "", "Country label (benelux, france, germany, autres)")
	cmd.Flags().StringVar(&resultLabel, "result", "", "Result label (Unfavorable, Very Unfavorable, Interessant, Out)")

	return cmd
}

// loadOrCreateLabels tolerates a missing label store: the first label ever
// recorded starts from an empty set.
func loadOrCreateLabels(ctx context.Context, store *storage.FileStore) (*model.LabelSet, error) {
	labels, err := store.LoadLabels(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return model.NewLabelSet(), nil
	}
	if err != nil {
		return nil, err
	}
	return labels, nil
}

func listPendingDecks(ctx context.Context, store *storage.FileStore) error {
	decks, err := store.ListDecks(ctx)
	if err != nil {
		return err
	}

	labels, err := loadOrCreateLabels(ctx, store)
	if err != nil {
		return err
	}

	var pendingDocs []string
	for _, deck := range decks {
		doc := docID(deck)
		if row, ok := labels.Get(doc); ok && row.Complete() {
			continue
		}
		pendingDocs = append(pendingDocs, doc)
	}

	if len(pendingDocs) == 0 {
		fmt.Println(cli.FormatSuccess("Every deck has a full set of labels"))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%d decks awaiting labels", len(pendingDocs))))
	for _, doc := range pendingDocs {
		fmt.Printf("  %s %s\n", cli.LabelIcon, doc)
	}
	return nil
}

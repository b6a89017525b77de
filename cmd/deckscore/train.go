package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckscore/deckscore/internal/cli"
	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
)

func trainCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "train [axis]",
		Short: "Fit classifiers on labeled decks",
		Long: `Fit the classifier for one axis on the current feature table and label
store, or every axis with --all. Axes train independently: with --all a
failure on one axis is reported and the remaining axes still train.

Fitted model artifacts are written to the models directory and picked
up by predict.

Examples:
  deckscore train country
  deckscore train --all`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return common.NewUserError("give exactly one axis, or --all for every axis", nil)
			}

			axes := trainOrder()
			if !all {
				axis, err := model.ParseAxis(args[0])
				if err != nil {
					return err
				}
				axes = []model.Axis{axis}
			}

			store, err := openStore()
			if err != nil {
				return err
			}

			handler := cli.NewInterruptHandler()
			ctx := handler.Watch(cmd.Context())

			features, err := store.LoadFeatures(ctx)
			if err != nil {
				return err
			}
			labels, err := store.LoadLabels(ctx)
			if err != nil {
				return err
			}

			var errs []error
			for _, axis := range axes {
				if ctx.Err() != nil {
					errs = append(errs, ctx.Err())
					break
				}
				if err := trainAxis(ctx, store, features, labels, axis); err != nil {
					common.LogError(err, "Training failed", common.Fields{"axis": axis.String()})
					fmt.Println(cli.FormatError(fmt.Sprintf("training %s failed: %v", axis, err)))
					errs = append(errs, err)
				}
			}

			if handler.WasInterrupted() {
				fmt.Println(cli.InterruptNotice("deckscore train --all"))
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Train every axis, result first")

	return cmd
}

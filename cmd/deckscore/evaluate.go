package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckscore/deckscore/internal/cli"
	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
)

func evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate [axis]",
		Short: "Compare predictions against labels",
		Long: `Compare the saved predictions of an axis against the label store and
print accuracy, category shares, the confusion matrix and every
misclassified deck. Without an axis argument all four axes are
evaluated in turn.

Only documents present in both the prediction file and the label store
count; unlabeled decks are ignored.

Examples:
  deckscore evaluate
  deckscore evaluate country`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEvaluate,
	}
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	axes := model.AllAxes()
	if len(args) == 1 {
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

	ctx := cmd.Context()
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
		if err := evaluateAxis(ctx, store, labels, axis); err != nil {
			common.LogError(err, "Evaluation failed", common.Fields{"axis": axis.String()})
			fmt.Println(cli.FormatError(fmt.Sprintf("evaluating %s failed: %v", axis, err)))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

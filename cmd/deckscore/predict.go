package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckscore/deckscore/internal/cli"
	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
)

func predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict [axis]",
		Short: "Score decks with the fitted classifiers",
		Long: `Predict categories for every vectorized deck. With an axis argument only
that axis is scored; without one all four axes run in turn. Each axis
writes its own prediction file, so a missing model on one axis does not
block the others.

Examples:
  deckscore predict
  deckscore predict tech`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPredict,
	}
}

func runPredict(cmd *cobra.Command, args []string) error {
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
	features, err := store.LoadFeatures(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, axis := range axes {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := predictAxis(ctx, store, features, axis); err != nil {
			common.LogError(err, "Prediction failed", common.Fields{"axis": axis.String()})
			fmt.Println(cli.FormatError(fmt.Sprintf("predicting %s failed: %v", axis, err)))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

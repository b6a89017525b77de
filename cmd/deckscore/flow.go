package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckscore/deckscore/internal/cli"
	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
)

func flowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flow",
		Short: "Run the whole scoring pipeline",
		Long: `Vectorize the translated corpus, then predict and evaluate every axis
with the fitted models. This is the everyday command once models are
trained: drop decks in, run ingest, run flow.

Axes run independently; one axis failing to predict or evaluate does
not stop the others. Without a label store predictions are still
written and evaluation is skipped.

Examples:
  deckscore flow`,
		RunE: runFlow,
	}
}

func runFlow(cmd *cobra.Command, _ []string) error {
	start := time.Now()

	store, err := openStore()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler()
	ctx := handler.Watch(cmd.Context())

	fmt.Println(cli.FormatTitle("Scoring pipeline"))

	if err := vectorizeStage(ctx, store); err != nil {
		if handler.WasInterrupted() {
			fmt.Println(cli.InterruptNotice("deckscore flow"))
		}
		return err
	}

	features, err := store.LoadFeatures(ctx)
	if err != nil {
		return err
	}

	labels, err := store.LoadLabels(ctx)
	if errors.Is(err, common.ErrNotFound) {
		fmt.Println(cli.FormatWarning("No labels yet, skipping evaluation"))
		labels = nil
	} else if err != nil {
		return err
	}

	var (
		errs      []error
		predicted int
		evaluated int
		failed    = make(map[model.Axis]bool)
	)
	for _, axis := range model.AllAxes() {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := predictAxis(ctx, store, features, axis); err != nil {
			common.LogError(err, "Prediction failed", common.Fields{"axis": axis.String()})
			fmt.Println(cli.FormatError(fmt.Sprintf("predicting %s failed: %v", axis, err)))
			errs = append(errs, err)
			failed[axis] = true
			continue
		}
		predicted++
	}

	if labels != nil {
		for _, axis := range model.AllAxes() {
			if ctx.Err() != nil {
				errs = append(errs, ctx.Err())
				break
			}
			// Stale prediction files from an earlier run would be misleading.
			if failed[axis] {
				continue
			}
			if err := evaluateAxis(ctx, store, labels, axis); err != nil {
				common.LogError(err, "Evaluation failed", common.Fields{"axis": axis.String()})
				fmt.Println(cli.FormatError(fmt.Sprintf("evaluating %s failed: %v", axis, err)))
				errs = append(errs, err)
				continue
			}
			evaluated++
		}
	}

	if handler.WasInterrupted() {
		fmt.Println(cli.InterruptNotice("deckscore flow"))
		return errors.Join(errs...)
	}

	summary := fmt.Sprintf("  • Documents scored: %d\n", features.Len()) +
		fmt.Sprintf("  • Axes predicted: %d/%d\n", predicted, len(model.AllAxes())) +
		fmt.Sprintf("  • Axes evaluated: %d/%d\n", evaluated, len(model.AllAxes())) +
		fmt.Sprintf("  • Time taken: %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Println(cli.RenderBox("Flow Complete", summary))

	return errors.Join(errs...)
}

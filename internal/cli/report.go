package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/deckscore/deckscore/internal/ml/evaluate"
	"github.com/deckscore/deckscore/internal/model"
)

// WriteEvaluation renders one axis evaluation: the headline accuracy, the
// actual-vs-predicted class shares, the confusion matrix and the documents
// the classifier got wrong.
func WriteEvaluation(w io.Writer, eval *evaluate.Evaluation) error {
	fmt.Fprintln(w, FormatTitle(fmt.Sprintf("%s evaluation", eval.Axis)))
	fmt.Fprintf(w, "%s %.1f%% (%d/%d correct)\n\n",
		BoldStyle.Render("Accuracy:"), eval.Accuracy*100, eval.Correct, eval.Total)

	if err := writeShares(w, eval); err != nil {
		return err
	}
	if err := writeConfusion(w, eval); err != nil {
		return err
	}
	writeMisclassified(w, eval)
	return nil
}

// writeShares prints the per-class proportion of labeled truth next to the
// proportion the classifier predicted.
func writeShares(w io.Writer, eval *evaluate.Evaluation) error {
	classes := make([]string, 0, len(eval.ActualShare)+len(eval.PredictedShare))
	seen := make(map[string]bool)
	for class := range eval.ActualShare {
		seen[class] = true
		classes = append(classes, class)
	}
	for class := range eval.PredictedShare {
		if !seen[class] {
			classes = append(classes, class)
		}
	}
	sort.Strings(classes)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		HeaderStyle.Render("class"),
		HeaderStyle.Render("actual"),
		HeaderStyle.Render("predicted"))
	for _, class := range classes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			class,
			percent(eval.ActualShare[class]),
			percent(eval.PredictedShare[class]))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

// writeConfusion prints the actual-by-predicted count grid.
func writeConfusion(w io.Writer, eval *evaluate.Evaluation) error {
	if len(eval.Classes) == 0 {
		return nil
	}

	fmt.Fprintln(w, BoldStyle.Render("Confusion matrix")+
		SubtleStyle.Render(" (rows actual, columns predicted)"))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, class := range eval.Classes {
		fmt.Fprintf(tw, "%s\t", HeaderStyle.Render(class))
	}
	fmt.Fprintln(tw)
	for i, class := range eval.Classes {
		fmt.Fprintf(tw, "%s\t", HeaderStyle.Render(class))
		for j := range eval.Classes {
			fmt.Fprintf(tw, "%d\t", eval.Confusion[i][j])
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

// writeMisclassified lists the wrong calls in prediction order.
func writeMisclassified(w io.Writer, eval *evaluate.Evaluation) {
	if len(eval.Misclassified) == 0 {
		fmt.Fprintln(w, FormatSuccess("No misclassified documents"))
		return
	}

	fmt.Fprintln(w, BoldStyle.Render(fmt.Sprintf("Misclassified (%d)", len(eval.Misclassified))))
	for _, m := range eval.Misclassified {
		fmt.Fprintf(w, "  %s %s: predicted %s, labeled %s\n",
			ErrorStyle.Render(ErrorIcon), m.Doc, m.Predicted, m.Actual)
	}
}

// WriteStatuses renders the per-document workflow table.
func WriteStatuses(w io.Writer, statuses []model.DocumentStatus) error {
	if len(statuses) == 0 {
		fmt.Fprintln(w, InfoStyle.Render("No documents yet. Drop decks into the decks directory and run 'deckscore ingest'."))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		HeaderStyle.Render("doc"),
		HeaderStyle.Render("state"),
		HeaderStyle.Render("predicted axes"))
	for _, status := range statuses {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			status.Doc,
			stateStyle(status.State).Render(string(status.State)),
			axisList(status.PredictedAxes))
	}
	return tw.Flush()
}

func stateStyle(state model.WorkflowState) lipgloss.Style {
	switch state {
	case model.StatePredicted:
		return SuccessStyle
	case model.StateVectorized:
		return InfoStyle
	case model.StateLabeled:
		return WarningStyle
	default:
		return SubtleStyle
	}
}

func axisList(axes []model.Axis) string {
	if len(axes) == 0 {
		return SubtleStyle.Render("-")
	}
	names := make([]string, len(axes))
	for i, axis := range axes {
		names[i] = string(axis)
	}
	return strings.Join(names, ", ")
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

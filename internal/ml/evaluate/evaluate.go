// Package evaluate compares persisted predictions for one axis against the
// ground-truth label store.
package evaluate

import (
	"fmt"
	"sort"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/ml"
	"github.com/deckscore/deckscore/internal/model"
)

// Misclassification is one document the classifier got wrong.
type Misclassification struct {
	Doc       string
	Predicted string
	Actual    string
}

// Evaluation is the quality summary for one axis.
type Evaluation struct {
	Axis     model.Axis
	Total    int
	Correct  int
	Accuracy float64
	// ActualShare and PredictedShare are per-class proportions over the
	// evaluated rows.
	ActualShare    map[string]float64
	PredictedShare map[string]float64
	Misclassified  []Misclassification
	// Classes is the sorted union of actual and predicted values; Confusion
	// rows are actual, columns predicted, both in Classes order.
	Classes   []string
	Confusion [][]int
}

// Predictions joins the prediction table with the label store on the
// document id and scores the overlap. Rows with an empty actual or predicted
// value are dropped; if nothing evaluable remains the result is ErrNoOverlap
// rather than a vacuous perfect report.
func Predictions(preds *model.PredictionTable, labels *model.LabelSet) (*Evaluation, error) {
	axis := preds.Axis

	var docs, actual, predicted []string
	for _, pred := range preds.Predictions {
		row, ok := labels.Get(pred.Doc)
		if !ok {
			continue
		}
		truth := row.Get(axis)
		if truth == "" || pred.Category == "" {
			continue
		}
		docs = append(docs, pred.Doc)
		actual = append(actual, truth)
		predicted = append(predicted, pred.Category)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents with both a %s prediction and a %s label", common.ErrNoOverlap, axis, axis)
	}

	eval := &Evaluation{
		Axis:           axis,
		Total:          len(docs),
		ActualShare:    share(actual),
		PredictedShare: share(predicted),
	}
	for i := range docs {
		if actual[i] == predicted[i] {
			eval.Correct++
			continue
		}
		eval.Misclassified = append(eval.Misclassified, Misclassification{
			Doc:       docs[i],
			Predicted: predicted[i],
			Actual:    actual[i],
		})
	}
	eval.Accuracy = float64(eval.Correct) / float64(eval.Total)

	eval.Classes = classUnion(actual, predicted)
	eval.Confusion = ml.ConfusionMatrix(actual, predicted, eval.Classes)
	return eval, nil
}

// share returns each value's proportion of the total.
func share(values []string) map[string]float64 {
	shares := make(map[string]float64, len(values))
	for _, v := range values {
		shares[v]++
	}
	n := float64(len(values))
	for v := range shares {
		shares[v] /= n
	}
	return shares
}

// classUnion returns the sorted union of both label sets. Using the union
// keeps confusion row sums equal to actual counts and column sums equal to
// predicted counts, even when the classifier emitted "unknown".
func classUnion(actual, predicted []string) []string {
	seen := make(map[string]struct{})
	var classes []string
	for _, values := range [][]string{actual, predicted} {
		for _, v := range values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			classes = append(classes, v)
		}
	}
	sort.Strings(classes)
	return classes
}

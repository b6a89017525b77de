package evaluate

import (
	"testing"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalFixtures() (*model.PredictionTable, *model.LabelSet) {
	preds := &model.PredictionTable{
		Axis: model.AxisCountry,
		Predictions: []model.Prediction{
			{Doc: "a.pdf", Category: "france", Confidence: 0.9},
			{Doc: "b.pdf", Category: "france", Confidence: 0.6},
			{Doc: "c.pdf", Category: "germany", Confidence: 0.8},
			{Doc: "d.pdf", Category: "unknown", Confidence: 0.2},
			{Doc: "e.pdf", Category: "france", Confidence: 0.7},
		},
	}

	labels := model.NewLabelSet()
	labels.Upsert(model.LabelRow{Doc: "a.pdf", Country: "france"})
	labels.Upsert(model.LabelRow{Doc: "b.pdf", Country: "germany"})
	labels.Upsert(model.LabelRow{Doc: "c.pdf", Country: "germany"})
	labels.Upsert(model.LabelRow{Doc: "d.pdf", Country: "france"})
	// e.pdf is labeled but its country is empty, so it must drop out.
	labels.Upsert(model.LabelRow{Doc: "e.pdf", Tech: "hard"})
	return preds, labels
}

func TestPredictions_ScoresOverlap(t *testing.T) {
	preds, labels := evalFixtures()

	eval, err := Predictions(preds, labels)
	require.NoError(t, err)

	assert.Equal(t, model.AxisCountry, eval.Axis)
	assert.Equal(t, 4, eval.Total)
	assert.Equal(t, 2, eval.Correct)
	assert.InDelta(t, 0.5, eval.Accuracy, 1e-9)

	require.Len(t, eval.Misclassified, 2)
	assert.Equal(t, Misclassification{Doc: "b.pdf", Predicted: "france", Actual: "germany"}, eval.Misclassified[0])
	assert.Equal(t, Misclassification{Doc: "d.pdf", Predicted: "unknown", Actual: "france"}, eval.Misclassified[1])

	assert.InDelta(t, 0.5, eval.ActualShare["france"], 1e-9)
	assert.InDelta(t, 0.5, eval.ActualShare["germany"], 1e-9)
	assert.InDelta(t, 0.5, eval.PredictedShare["france"], 1e-9)
	assert.InDelta(t, 0.25, eval.PredictedShare["unknown"], 1e-9)
}

func TestPredictions_ConfusionUsesClassUnion(t *testing.T) {
	preds, labels := evalFixtures()

	eval, err := Predictions(preds, labels)
	require.NoError(t, err)

	// "unknown" never appears as an actual value but must still get a column.
	assert.Equal(t, []string{"france", "germany", "unknown"}, eval.Classes)
	assert.Equal(t, [][]int{
		{1, 0, 1},
		{1, 1, 0},
		{0, 0, 0},
	}, eval.Confusion)

	// Row sums equal actual counts, column sums equal predicted counts.
	for i, class := range eval.Classes {
		var rowSum, colSum int
		for j := range eval.Classes {
			rowSum += eval.Confusion[i][j]
			colSum += eval.Confusion[j][i]
		}
		assert.InDelta(t, eval.ActualShare[class]*float64(eval.Total), float64(rowSum), 1e-9)
		assert.InDelta(t, eval.PredictedShare[class]*float64(eval.Total), float64(colSum), 1e-9)
	}
}

func TestPredictions_NoJoinedRows(t *testing.T) {
	preds := &model.PredictionTable{
		Axis:        model.AxisDomain,
		Predictions: []model.Prediction{{Doc: "a.pdf", Category: "others"}},
	}

	_, err := Predictions(preds, model.NewLabelSet())
	assert.ErrorIs(t, err, common.ErrNoOverlap)
}

func TestPredictions_AllRowsEmptyAfterDrop(t *testing.T) {
	preds := &model.PredictionTable{
		Axis:        model.AxisDomain,
		Predictions: []model.Prediction{{Doc: "a.pdf", Category: "others"}},
	}
	labels := model.NewLabelSet()
	labels.Upsert(model.LabelRow{Doc: "a.pdf", Country: "france"})

	_, err := Predictions(preds, labels)
	assert.ErrorIs(t, err, common.ErrNoOverlap)
}

func TestPredictions_PerfectRun(t *testing.T) {
	preds := &model.PredictionTable{
		Axis: model.AxisTech,
		Predictions: []model.Prediction{
			{Doc: "a.pdf", Category: "hard"},
			{Doc: "b.pdf", Category: "soft"},
		},
	}
	labels := model.NewLabelSet()
	labels.Upsert(model.LabelRow{Doc: "a.pdf", Tech: "hard"})
	labels.Upsert(model.LabelRow{Doc: "b.pdf", Tech: "soft"})

	eval, err := Predictions(preds, labels)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, eval.Accuracy, 1e-9)
	assert.Empty(t, eval.Misclassified)
}

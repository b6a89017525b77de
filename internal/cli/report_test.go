package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckscore/deckscore/internal/ml/evaluate"
	"github.com/deckscore/deckscore/internal/model"
)

func sampleEvaluation() *evaluate.Evaluation {
	return &evaluate.Evaluation{
		Axis:     model.AxisCountry,
		Total:    4,
		Correct:  3,
		Accuracy: 0.75,
		ActualShare: map[string]float64{
			"france":  0.5,
			"germany": 0.5,
		},
		PredictedShare: map[string]float64{
			"france":  0.75,
			"germany": 0.25,
		},
		Misclassified: []evaluate.Misclassification{
			{Doc: "deck2.pdf", Predicted: "france", Actual: "germany"},
		},
		Classes: []string{"france", "germany"},
		Confusion: [][]int{
			{2, 0},
			{1, 1},
		},
	}
}

func TestWriteEvaluation(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteEvaluation(&out, sampleEvaluation()))

	text := out.String()
	assert.Contains(t, text, "country evaluation")
	assert.Contains(t, text, "75.0% (3/4 correct)")
	assert.Contains(t, text, "france")
	assert.Contains(t, text, "germany")
	assert.Contains(t, text, "Confusion matrix")
	assert.Contains(t, text, "deck2.pdf: predicted france, labeled germany")
}

func TestWriteEvaluation_PerfectRun(t *testing.T) {
	eval := sampleEvaluation()
	eval.Correct = 4
	eval.Accuracy = 1
	eval.Misclassified = nil

	var out bytes.Buffer
	require.NoError(t, WriteEvaluation(&out, eval))

	assert.Contains(t, out.String(), "No misclassified documents")
}

func TestWriteStatuses(t *testing.T) {
	statuses := []model.DocumentStatus{
		{Doc: "alpha.pdf", State: model.StatePredicted,
			PredictedAxes: []model.Axis{model.AxisCountry, model.AxisDomain}},
		{Doc: "beta.pdf", State: model.StateLabeled},
		{Doc: "gamma.pdf", State: model.StateUnlabeled},
	}

	var out bytes.Buffer
	require.NoError(t, WriteStatuses(&out, statuses))

	text := out.String()
	assert.Contains(t, text, "alpha.pdf")
	assert.Contains(t, text, "country, domain")
	assert.Contains(t, text, "predicted")
	assert.Contains(t, text, "beta.pdf")
	assert.Contains(t, text, "labeled")
	assert.Contains(t, text, "gamma.pdf")
	assert.Contains(t, text, "unlabeled")
}

func TestWriteStatuses_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteStatuses(&out, nil))

	assert.Contains(t, out.String(), "No documents yet")
}

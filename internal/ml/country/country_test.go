package country

import (
	"testing"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/ml"
	"github.com/deckscore/deckscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countryFixtures(t *testing.T) (*model.FeatureTable, *model.LabelSet) {
	t.Helper()

	features := model.NewFeatureTable([]string{"amsterdam", "berlin", "paris"})
	labels := model.NewLabelSet()
	rows := []struct {
		doc     string
		row     []float64
		country string
	}{
		{"b1.pdf", []float64{0.9, 0.1, 0.0}, "benelux"},
		{"b2.pdf", []float64{0.8, 0.0, 0.2}, "benelux"},
		{"b3.pdf", []float64{0.7, 0.2, 0.1}, "benelux"},
		{"g1.pdf", []float64{0.1, 0.9, 0.0}, "germany"},
		{"g2.pdf", []float64{0.0, 0.8, 0.2}, "germany"},
		{"g3.pdf", []float64{0.2, 0.7, 0.1}, "germany"},
		{"f1.pdf", []float64{0.0, 0.1, 0.9}, "france"},
		{"f2.pdf", []float64{0.2, 0.0, 0.8}, "france"},
		{"f3.pdf", []float64{0.1, 0.2, 0.7}, "france"},
	}
	for _, r := range rows {
		require.NoError(t, features.Append(r.doc, r.row))
		labels.Upsert(model.LabelRow{Doc: r.doc, Country: r.country})
	}
	return features, labels
}

func TestTrain_FitsAndPredicts(t *testing.T) {
	features, labels := countryFixtures(t)

	result, err := Train(features, labels)
	require.NoError(t, err)
	require.NotNil(t, result.Model)
	assert.Equal(t, features.Terms, result.Model.FeatureNames)
	assert.Equal(t, []string{"benelux", "france", "germany"}, result.Encoder.Classes)

	table, err := Predict(result.Model, result.Encoder, features)
	require.NoError(t, err)
	require.Equal(t, features.Len(), table.Len())

	byDoc := table.ByDoc()
	assert.Equal(t, "benelux", byDoc["b1.pdf"].Category)
	assert.Equal(t, "germany", byDoc["g2.pdf"].Category)
	assert.Equal(t, "france", byDoc["f3.pdf"].Category)
}

func TestTrain_CrossValidationDiagnostic(t *testing.T) {
	features, labels := countryFixtures(t)

	result, err := Train(features, labels)
	require.NoError(t, err)
	// Three samples per class allows the full three folds.
	assert.Equal(t, 3, result.Folds)
	require.NotNil(t, result.Report)
	assert.Equal(t, 9, result.Report.Support)
}

func TestTrain_SkipsCrossValidationOnSingletonClass(t *testing.T) {
	features := model.NewFeatureTable([]string{"x"})
	labels := model.NewLabelSet()
	require.NoError(t, features.Append("a.pdf", []float64{1}))
	require.NoError(t, features.Append("b.pdf", []float64{2}))
	require.NoError(t, features.Append("c.pdf", []float64{3}))
	labels.Upsert(model.LabelRow{Doc: "a.pdf", Country: "france"})
	labels.Upsert(model.LabelRow{Doc: "b.pdf", Country: "france"})
	labels.Upsert(model.LabelRow{Doc: "c.pdf", Country: "germany"})

	result, err := Train(features, labels)
	require.NoError(t, err)
	assert.Zero(t, result.Folds)
	assert.Nil(t, result.Report)
	assert.NotNil(t, result.Model)
}

func TestTrain_NoFeatureColumns(t *testing.T) {
	features := model.NewFeatureTable(nil)
	_, err := Train(features, model.NewLabelSet())
	assert.ErrorIs(t, err, common.ErrNoFeatures)
}

func TestTrain_NoOverlap(t *testing.T) {
	features := model.NewFeatureTable([]string{"x"})
	require.NoError(t, features.Append("a.pdf", []float64{1}))

	labels := model.NewLabelSet()
	labels.Upsert(model.LabelRow{Doc: "other.pdf", Country: "france"})

	_, err := Train(features, labels)
	assert.ErrorIs(t, err, common.ErrNoOverlap)
}

func TestTrain_ZeroVariance(t *testing.T) {
	features := model.NewFeatureTable([]string{"x", "y"})
	labels := model.NewLabelSet()
	require.NoError(t, features.Append("a.pdf", []float64{0, 0}))
	require.NoError(t, features.Append("b.pdf", []float64{0, 0}))
	labels.Upsert(model.LabelRow{Doc: "a.pdf", Country: "france"})
	labels.Upsert(model.LabelRow{Doc: "b.pdf", Country: "germany"})

	_, err := Train(features, labels)
	assert.ErrorIs(t, err, common.ErrZeroVariance)
}

func TestPredict_LowConfidenceBecomesUnknown(t *testing.T) {
	// A treeless ensemble with flat base scores spreads probability evenly
	// over four classes; 0.25 sits under the threshold.
	m := &Model{
		FeatureNames: []string{"x"},
		Boosting:     &ml.GradientBoosting{BaseScores: []float64{0, 0, 0, 0}, LearningRate: 0.1},
	}
	encoder := &ml.LabelEncoder{Classes: []string{"autres", "benelux", "france", "germany"}}

	features := model.NewFeatureTable([]string{"x"})
	require.NoError(t, features.Append("a.pdf", []float64{1}))

	table, err := Predict(m, encoder, features)
	require.NoError(t, err)
	pred := table.Predictions[0]
	assert.Equal(t, model.CategoryUnknown, pred.Category)
	assert.InDelta(t, 0.25, pred.Confidence, 1e-9)
	assert.InDelta(t, 0.25, pred.Probabilities["france"], 1e-9)
}

func TestPredict_RealignsDriftedVocabulary(t *testing.T) {
	features, labels := countryFixtures(t)
	result, err := Train(features, labels)
	require.NoError(t, err)

	// Missing "paris" column and a novel term the model never saw.
	drifted := model.NewFeatureTable([]string{"amsterdam", "berlin", "novel"})
	require.NoError(t, drifted.Append("b1.pdf", []float64{0.9, 0.1, 0.5}))

	table, err := Predict(result.Model, result.Encoder, drifted)
	require.NoError(t, err)
	assert.Equal(t, "benelux", table.Predictions[0].Category)
}

func TestPredict_MissingModel(t *testing.T) {
	features := model.NewFeatureTable([]string{"x"})
	_, err := Predict(nil, nil, features)
	assert.ErrorIs(t, err, common.ErrModelNotTrained)
}

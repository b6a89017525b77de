package tech

import (
	"testing"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryTargets(t *testing.T) {
	hard, soft := binaryTargets([]string{"hard", "soft", "both", "unknown"})
	assert.Equal(t, []int{1, 0, 1, 0}, hard)
	assert.Equal(t, []int{0, 1, 1, 0}, soft)
}

func TestCombine(t *testing.T) {
	tests := []struct {
		want string
		hard bool
		soft bool
	}{
		{hard: true, soft: true, want: "both"},
		{hard: true, soft: false, want: "hard"},
		{hard: false, soft: true, want: "soft"},
		{hard: false, soft: false, want: "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, combine(tt.hard, tt.soft))
	}
}

func techFixtures(t *testing.T) (*model.FeatureTable, *model.LabelSet) {
	t.Helper()

	features := model.NewFeatureTable([]string{"metal", "code"})
	labels := model.NewLabelSet()
	rows := []struct {
		doc  string
		row  []float64
		tech string
	}{
		{"h1.pdf", []float64{0.9, 0.05}, "hard"},
		{"h2.pdf", []float64{0.85, 0.1}, "hard"},
		{"h3.pdf", []float64{0.95, 0.0}, "hard"},
		{"h4.pdf", []float64{0.8, 0.05}, "hard"},
		{"s1.pdf", []float64{0.05, 0.9}, "soft"},
		{"s2.pdf", []float64{0.1, 0.85}, "soft"},
		{"s3.pdf", []float64{0.0, 0.95}, "soft"},
		{"s4.pdf", []float64{0.05, 0.8}, "soft"},
		{"b1.pdf", []float64{0.7, 0.7}, "both"},
		{"b2.pdf", []float64{0.75, 0.65}, "both"},
		{"b3.pdf", []float64{0.65, 0.75}, "both"},
		{"b4.pdf", []float64{0.7, 0.75}, "both"},
	}
	for _, r := range rows {
		require.NoError(t, features.Append(r.doc, r.row))
		labels.Upsert(model.LabelRow{Doc: r.doc, Tech: r.tech})
	}
	return features, labels
}

func TestTrain_FitsAndPredicts(t *testing.T) {
	features, labels := techFixtures(t)

	result, err := Train(features, labels)
	require.NoError(t, err)
	require.NotNil(t, result.Model)
	assert.False(t, result.Model.Hard.Degenerate)
	assert.False(t, result.Model.Soft.Degenerate)

	table, err := Predict(result.Model, features)
	require.NoError(t, err)

	byDoc := table.ByDoc()
	assert.Equal(t, "hard", byDoc["h1.pdf"].Category)
	assert.Equal(t, "soft", byDoc["s2.pdf"].Category)
	assert.Equal(t, "both", byDoc["b3.pdf"].Category)
	for _, pred := range table.Predictions {
		assert.GreaterOrEqual(t, pred.Confidence, Threshold)
	}
}

func TestTrain_HoldoutReports(t *testing.T) {
	features, labels := techFixtures(t)

	result, err := Train(features, labels)
	require.NoError(t, err)
	require.NotNil(t, result.HardReport)
	require.NotNil(t, result.SoftReport)
	// 30% of twelve rows, one per stratum.
	assert.Equal(t, 3, result.HardReport.Support)
	assert.Equal(t, 3, result.SoftReport.Support)
}

func TestTrain_DegenerateTargetNeverFires(t *testing.T) {
	features := model.NewFeatureTable([]string{"metal", "code"})
	labels := model.NewLabelSet()
	rows := []struct {
		doc  string
		row  []float64
		tech string
	}{
		{"h1.pdf", []float64{0.9, 0.1}, "hard"},
		{"h2.pdf", []float64{0.8, 0.0}, "hard"},
		{"b1.pdf", []float64{0.7, 0.7}, "both"},
		{"b2.pdf", []float64{0.75, 0.8}, "both"},
	}
	for _, r := range rows {
		require.NoError(t, features.Append(r.doc, r.row))
		labels.Upsert(model.LabelRow{Doc: r.doc, Tech: r.tech})
	}

	result, err := Train(features, labels)
	require.NoError(t, err)
	// Every row is hard-positive, so that head cannot be fitted.
	assert.True(t, result.Model.Hard.Degenerate)
	assert.False(t, result.Model.Soft.Degenerate)

	table, err := Predict(result.Model, features)
	require.NoError(t, err)
	for _, pred := range table.Predictions {
		assert.NotContains(t, []string{"hard", "both"}, pred.Category)
	}
}

func TestTrain_NoOverlap(t *testing.T) {
	features := model.NewFeatureTable([]string{"x"})
	require.NoError(t, features.Append("a.pdf", []float64{1}))

	_, err := Train(features, model.NewLabelSet())
	assert.ErrorIs(t, err, common.ErrNoOverlap)
}

func TestTrain_NoFeatureColumns(t *testing.T) {
	_, err := Train(model.NewFeatureTable(nil), model.NewLabelSet())
	assert.ErrorIs(t, err, common.ErrNoFeatures)
}

func TestPredict_MissingModel(t *testing.T) {
	features := model.NewFeatureTable([]string{"x"})
	_, err := Predict(nil, features)
	assert.ErrorIs(t, err, common.ErrModelNotTrained)

	_, err = Predict(&Model{FeatureNames: []string{"x"}}, features)
	assert.ErrorIs(t, err, common.ErrModelNotTrained)
}

func TestPredict_ConfidenceIsMaxOfHeads(t *testing.T) {
	features, labels := techFixtures(t)
	result, err := Train(features, labels)
	require.NoError(t, err)

	probe := model.NewFeatureTable([]string{"metal", "code"})
	require.NoError(t, probe.Append("p.pdf", []float64{0.9, 0.05}))

	table, err := Predict(result.Model, probe)
	require.NoError(t, err)

	hardProb := result.Model.Hard.positiveProbs([][]float64{{0.9, 0.05}})[0]
	softProb := result.Model.Soft.positiveProbs([][]float64{{0.9, 0.05}})[0]
	assert.InDelta(t, max(hardProb, softProb), table.Predictions[0].Confidence, 1e-12)
}

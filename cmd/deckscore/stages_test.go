package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/deckscore/deckscore/internal/model"
	"github.com/deckscore/deckscore/internal/storage"
)

func writeTranslated(t *testing.T, store *storage.FileStore, stem, text string) {
	t.Helper()
	dir := store.Layout().TranslatedDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".txt"), []byte(text), 0o644))
}

func TestVectorizeStage(t *testing.T) {
	ctx := context.Background()
	store := newCommandStore(t)

	// Shared terms across both documents survive the min-df cut.
	writeTranslated(t, store, "alpha", "solar energy storage platform for solar energy networks")
	writeTranslated(t, store, "beta", "solar energy management software for energy traders")

	require.NoError(t, vectorizeStage(ctx, store))

	features, err := store.LoadFeatures(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha.pdf", "beta.pdf"}, features.Docs)
	assert.Positive(t, features.Dim())
}

func TestVectorizeStageWithoutCorpus(t *testing.T) {
	store := newCommandStore(t)

	err := vectorizeStage(context.Background(), store)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPredictAxisWithoutModel(t *testing.T) {
	store := newCommandStore(t)

	features := model.NewFeatureTable([]string{"solar", "steel"})
	require.NoError(t, features.Append("a.pdf", []float64{1, 0}))

	err := predictAxis(context.Background(), store, features, model.AxisResult)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelNotTrained)

	var stageErr *common.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "result", stageErr.Axis)
	assert.Equal(t, "load model", stageErr.Stage)
}

func TestResultAxisRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newCommandStore(t)

	features := model.NewFeatureTable([]string{"growth", "decline"})
	labels := model.NewLabelSet()
	docs := []struct {
		id    string
		row   []float64
		label string
	}{
		{"a.pdf", []float64{1, 0}, "Interessant"},
		{"b.pdf", []float64{0.9, 0.1}, "Interessant"},
		{"c.pdf", []float64{0.8, 0}, "Interessant"},
		{"d.pdf", []float64{0, 1}, "Out"},
		{"e.pdf", []float64{0.1, 0.9}, "Out"},
		{"f.pdf", []float64{0, 0.8}, "Out"},
	}
	for _, d := range docs {
		require.NoError(t, features.Append(d.id, d.row))
		require.NoError(t, labels.Set(d.id, model.AxisResult, d.label))
	}
	require.NoError(t, store.SaveLabels(ctx, labels))

	require.NoError(t, trainAxis(ctx, store, features, labels, model.AxisResult))
	require.NoError(t, predictAxis(ctx, store, features, model.AxisResult))

	preds, err := store.LoadPredictions(ctx, model.AxisResult)
	require.NoError(t, err)
	require.Equal(t, len(docs), preds.Len())
	for _, p := range preds.Predictions {
		assert.True(t, model.AxisResult.ValidCategory(p.Category),
			"predicted %q for %s", p.Category, p.Doc)
		assert.GreaterOrEqual(t, p.Confidence, 0.0)
		assert.LessOrEqual(t, p.Confidence, 1.0)
	}

	require.NoError(t, evaluateAxis(ctx, store, labels, model.AxisResult))
}

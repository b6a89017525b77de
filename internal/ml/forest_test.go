package ml

import (
	"testing"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forestTrainingData() ([][]float64, []int) {
	x := [][]float64{
		{0, 0}, {0.3, 0.2}, {0.1, 0.4}, {0.2, 0.1}, {0.4, 0.3},
		{5, 5}, {5.2, 4.8}, {4.9, 5.1}, {5.3, 5.2}, {4.8, 4.9},
	}
	y := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	return x, y
}

func TestFitForest_SeparableClusters(t *testing.T) {
	x, y := forestTrainingData()

	forest, err := FitForest(x, y, 2, ForestConfig{Trees: 25, Seed: 42})
	require.NoError(t, err)
	require.Len(t, forest.Trees, 25)

	probs := forest.PredictProba([][]float64{{0.1, 0.1}, {5.1, 5.0}})
	assert.Greater(t, probs[0][0], 0.9)
	assert.Greater(t, probs[1][1], 0.9)
}

func TestFitForest_ProbabilitiesSumToOne(t *testing.T) {
	x, y := forestTrainingData()

	forest, err := FitForest(x, y, 2, ForestConfig{Trees: 10, Seed: 1})
	require.NoError(t, err)

	for _, row := range forest.PredictProba(x) {
		var sum float64
		for _, p := range row {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestFitForest_DeterministicAcrossWorkerCounts(t *testing.T) {
	x, y := forestTrainingData()

	serial, err := FitForest(x, y, 2, ForestConfig{Trees: 20, Seed: 7, Workers: 1})
	require.NoError(t, err)
	parallel, err := FitForest(x, y, 2, ForestConfig{Trees: 20, Seed: 7, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, serial.PredictProba(x), parallel.PredictProba(x))
}

func TestFitForest_SeedChangesEnsemble(t *testing.T) {
	x, y := forestTrainingData()

	a, err := FitForest(x, y, 2, ForestConfig{Trees: 5, Seed: 1})
	require.NoError(t, err)
	b, err := FitForest(x, y, 2, ForestConfig{Trees: 5, Seed: 2})
	require.NoError(t, err)

	assert.NotEqual(t, a.Trees, b.Trees)
}

func TestFitForest_BalancedWeightsMinority(t *testing.T) {
	// Eight majority points and two minority points; balanced weighting
	// keeps the minority cluster winning on its own turf.
	x := [][]float64{
		{0}, {0.1}, {0.2}, {0.3}, {0.1}, {0.2}, {0}, {0.3},
		{10}, {10.1},
	}
	y := []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1}

	forest, err := FitForest(x, y, 2, ForestConfig{Trees: 50, Balanced: true, Seed: 42})
	require.NoError(t, err)

	probs := forest.PredictProba([][]float64{{10.05}})
	assert.Greater(t, probs[0][1], 0.5)
}

func TestFitForest_RowMismatch(t *testing.T) {
	_, err := FitForest([][]float64{{1}, {2}}, []int{0}, 2, DefaultForestConfig())
	assert.ErrorIs(t, err, common.ErrRowMismatch)
}

func TestFitForest_EmptyInput(t *testing.T) {
	_, err := FitForest(nil, nil, 2, DefaultForestConfig())
	assert.ErrorIs(t, err, common.ErrNoFeatures)
}

package ml

import (
	"testing"

	"github.com/deckscore/deckscore/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitBoosting_SeparableBinary(t *testing.T) {
	x := [][]float64{{-2}, {-1.5}, {-1}, {1}, {1.5}, {2}}
	y := []int{0, 0, 0, 1, 1, 1}

	model, err := FitBoosting(x, y, 2, BoostingConfig{Rounds: 20, LearningRate: 0.1, MaxDepth: 3, MinSamplesLeaf: 1})
	require.NoError(t, err)

	probs := model.PredictProba([][]float64{{-1.8}, {1.8}})
	assert.Greater(t, probs[0][0], 0.7)
	assert.Greater(t, probs[1][1], 0.7)
	for _, row := range probs {
		assert.InDelta(t, 1.0, row[0]+row[1], 1e-9)
	}
}

func TestFitBoosting_ThreeClasses(t *testing.T) {
	x := [][]float64{
		{0, 0}, {0.2, 0.1}, {0.1, 0.2},
		{5, 0}, {5.2, 0.1}, {4.9, 0.2},
		{0, 5}, {0.1, 5.1}, {0.2, 4.8},
	}
	y := []int{0, 0, 0, 1, 1, 1, 2, 2, 2}

	model, err := FitBoosting(x, y, 3, BoostingConfig{Rounds: 30, LearningRate: 0.1, MaxDepth: 3, MinSamplesLeaf: 1})
	require.NoError(t, err)

	probs := model.PredictProba([][]float64{{0.1, 0.1}, {5, 0.1}, {0.1, 5}})
	assert.Equal(t, 0, ArgMax(probs[0]))
	assert.Equal(t, 1, ArgMax(probs[1]))
	assert.Equal(t, 2, ArgMax(probs[2]))
}

func TestFitBoosting_Deterministic(t *testing.T) {
	x := [][]float64{{-1, 2}, {0, 1}, {1, 0}, {2, -1}, {3, -2}, {4, -3}}
	y := []int{0, 0, 0, 1, 1, 1}
	cfg := BoostingConfig{Rounds: 15, LearningRate: 0.2, MaxDepth: 2, MinSamplesLeaf: 1}

	first, err := FitBoosting(x, y, 2, cfg)
	require.NoError(t, err)
	second, err := FitBoosting(x, y, 2, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.PredictProba(x), second.PredictProba(x))
}

func TestFitBoosting_BalancedShiftsPriors(t *testing.T) {
	// With balanced weights the baseline log priors are equal even though
	// class 0 dominates the sample.
	x := [][]float64{{1}, {2}, {3}, {4}, {5}}
	y := []int{0, 0, 0, 0, 1}

	model, err := FitBoosting(x, y, 2, BoostingConfig{Rounds: 1, Balanced: true})
	require.NoError(t, err)
	assert.InDelta(t, model.BaseScores[0], model.BaseScores[1], 1e-9)
}

func TestFitBoosting_SingleClass(t *testing.T) {
	model, err := FitBoosting([][]float64{{1}, {2}}, []int{0, 0}, 1, DefaultBoostingConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, model.NumClasses())
	assert.Empty(t, model.Trees)

	probs := model.PredictProba([][]float64{{7}})
	assert.InDelta(t, 1.0, probs[0][0], 1e-12)
}

func TestFitBoosting_RowMismatch(t *testing.T) {
	_, err := FitBoosting([][]float64{{1}, {2}}, []int{0}, 2, DefaultBoostingConfig())
	assert.ErrorIs(t, err, common.ErrRowMismatch)
}

func TestFitBoosting_EmptyInput(t *testing.T) {
	_, err := FitBoosting(nil, nil, 2, DefaultBoostingConfig())
	assert.ErrorIs(t, err, common.ErrNoFeatures)
}

package ml

import (
	"fmt"
	"math"

	"github.com/deckscore/deckscore/internal/common"
)

// LogisticRegression is a multinomial logistic model trained by batch
// gradient descent on the softmax cross-entropy. Binary problems are the
// two-class special case. A model fitted on a single class degenerates to
// always predicting that class with probability one; callers that need a
// different degenerate behavior check NumClasses.
type LogisticRegression struct {
	// Weights is classes x features; Intercepts has one entry per class.
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

// LogisticConfig are the training hyperparameters.
type LogisticConfig struct {
	// MaxIter bounds the gradient descent iterations.
	MaxIter int
	// LearningRate is the fixed descent step.
	LearningRate float64
	// C is the inverse regularization strength; larger means less L2.
	C float64
	// Balanced reweights samples inversely to their class frequency.
	Balanced bool
	// Tol stops early once the largest weight update falls below it.
	Tol float64
}

// DefaultLogisticConfig mirrors the usual defaults: moderate regularization,
// enough iterations to converge on small corpora.
func DefaultLogisticConfig() LogisticConfig {
	return LogisticConfig{
		MaxIter:      1000,
		LearningRate: 0.5,
		C:            1.0,
		Tol:          1e-6,
	}
}

// FitLogistic trains a model for numClasses classes on x and the integer
// labels y.
func FitLogistic(x [][]float64, y []int, numClasses int, cfg LogisticConfig) (*LogisticRegression, error) {
	n := len(x)
	if n == 0 {
		return nil, fmt.Errorf("%w: no rows to fit", common.ErrNoFeatures)
	}
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d rows, %d labels", common.ErrRowMismatch, n, len(y))
	}
	if numClasses < 1 {
		return nil, fmt.Errorf("fit needs at least one class, got %d", numClasses)
	}
	d := len(x[0])
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = DefaultLogisticConfig().MaxIter
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultLogisticConfig().LearningRate
	}
	if cfg.C <= 0 {
		cfg.C = DefaultLogisticConfig().C
	}

	model := &LogisticRegression{
		Weights:    make([][]float64, numClasses),
		Intercepts: make([]float64, numClasses),
	}
	for c := range model.Weights {
		model.Weights[c] = make([]float64, d)
	}
	if numClasses == 1 {
		// Single observed class: the zero model already predicts it with
		// probability one.
		return model, nil
	}

	weights := sampleWeights(y, numClasses, cfg.Balanced)
	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}
	lambda := 1 / (cfg.C * totalWeight)

	gradW := make([][]float64, numClasses)
	for c := range gradW {
		gradW[c] = make([]float64, d)
	}
	gradB := make([]float64, numClasses)

	for iter := 0; iter < cfg.MaxIter; iter++ {
		for c := range gradW {
			for j := range gradW[c] {
				gradW[c][j] = 0
			}
			gradB[c] = 0
		}

		for i, row := range x {
			probs := model.scores(row)
			softmaxInPlace(probs)
			for c := 0; c < numClasses; c++ {
				residual := probs[c]
				if y[i] == c {
					residual -= 1
				}
				residual *= weights[i] / totalWeight
				gradB[c] += residual
				if residual == 0 {
					continue
				}
				g := gradW[c]
				for j, v := range row {
					g[j] += residual * v
				}
			}
		}

		var maxStep float64
		for c := 0; c < numClasses; c++ {
			for j := 0; j < d; j++ {
				step := cfg.LearningRate * (gradW[c][j] + lambda*model.Weights[c][j])
				model.Weights[c][j] -= step
				if math.Abs(step) > maxStep {
					maxStep = math.Abs(step)
				}
			}
			step := cfg.LearningRate * gradB[c]
			model.Intercepts[c] -= step
			if math.Abs(step) > maxStep {
				maxStep = math.Abs(step)
			}
		}

		if cfg.Tol > 0 && maxStep < cfg.Tol {
			break
		}
	}

	return model, nil
}

// NumClasses returns how many classes the model was fitted on.
func (m *LogisticRegression) NumClasses() int {
	return len(m.Weights)
}

// PredictProba returns the per-class probability rows for x.
func (m *LogisticRegression) PredictProba(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		probs := m.scores(row)
		softmaxInPlace(probs)
		out[i] = probs
	}
	return out
}

// Predict returns the most probable class for each row.
func (m *LogisticRegression) Predict(x [][]float64) []int {
	probs := m.PredictProba(x)
	classes := make([]int, len(x))
	for i := range probs {
		classes[i] = ArgMax(probs[i])
	}
	return classes
}

func (m *LogisticRegression) scores(row []float64) []float64 {
	scores := make([]float64, len(m.Weights))
	for c, w := range m.Weights {
		scores[c] = Dot(w, row) + m.Intercepts[c]
	}
	return scores
}

// softmaxInPlace converts raw scores to probabilities, shifting by the max
// for numeric stability. A single score becomes probability one.
func softmaxInPlace(scores []float64) {
	if len(scores) == 0 {
		return
	}
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	for i, s := range scores {
		scores[i] = math.Exp(s - maxScore)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
}

// sampleWeights returns per-sample weights: uniform, or inversely
// proportional to class frequency when balanced.
func sampleWeights(y []int, numClasses int, balanced bool) []float64 {
	weights := make([]float64, len(y))
	if !balanced {
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}

	counts := make([]float64, numClasses)
	for _, c := range y {
		counts[c]++
	}
	n := float64(len(y))
	for i, c := range y {
		weights[i] = n / (float64(numClasses) * counts[c])
	}
	return weights
}

package ml

import (
	"fmt"
	"math"
	"sort"

	"github.com/deckscore/deckscore/internal/common"
)

// GradientBoosting is a multiclass gradient-boosted tree ensemble trained on
// the softmax deviance: every round fits one shallow regression tree per
// class to the weighted residuals and applies a Newton step per leaf.
type GradientBoosting struct {
	// Trees is rounds x classes.
	Trees        [][]*treeNode `json:"trees"`
	BaseScores   []float64     `json:"baseScores"`
	LearningRate float64       `json:"learningRate"`
}

// BoostingConfig are the training hyperparameters.
type BoostingConfig struct {
	Rounds         int
	LearningRate   float64
	MaxDepth       int
	MinSamplesLeaf int
	// Balanced reweights samples inversely to their class frequency.
	Balanced bool
}

// DefaultBoostingConfig returns the usual shallow-tree setup.
func DefaultBoostingConfig() BoostingConfig {
	return BoostingConfig{
		Rounds:         100,
		LearningRate:   0.1,
		MaxDepth:       6,
		MinSamplesLeaf: 2,
	}
}

// FitBoosting trains an ensemble for numClasses classes.
func FitBoosting(x [][]float64, y []int, numClasses int, cfg BoostingConfig) (*GradientBoosting, error) {
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
	if cfg.Rounds <= 0 {
		cfg.Rounds = DefaultBoostingConfig().Rounds
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultBoostingConfig().LearningRate
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultBoostingConfig().MaxDepth
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 1
	}

	weights := sampleWeights(y, numClasses, cfg.Balanced)
	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}

	// Baseline scores are the weighted log priors.
	model := &GradientBoosting{
		BaseScores:   make([]float64, numClasses),
		LearningRate: cfg.LearningRate,
	}
	for c := 0; c < numClasses; c++ {
		var classWeight float64
		for i, label := range y {
			if label == c {
				classWeight += weights[i]
			}
		}
		prior := classWeight / totalWeight
		if prior <= 0 {
			prior = 1e-12
		}
		model.BaseScores[c] = math.Log(prior)
	}
	if numClasses == 1 {
		return model, nil
	}

	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, numClasses)
		copy(scores[i], model.BaseScores)
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	probs := make([]float64, numClasses)
	residuals := make([]float64, n)
	hessians := make([]float64, n)
	kFactor := float64(numClasses-1) / float64(numClasses)

	for round := 0; round < cfg.Rounds; round++ {
		stage := make([]*treeNode, numClasses)
		for c := 0; c < numClasses; c++ {
			for i := 0; i < n; i++ {
				copy(probs, scores[i])
				softmaxInPlace(probs)
				p := probs[c]
				target := 0.0
				if y[i] == c {
					target = 1
				}
				residuals[i] = target - p
				hessians[i] = p * (1 - p)
			}

			leafValue := func(leaf []int) float64 {
				var num, den float64
				for _, i := range leaf {
					num += weights[i] * residuals[i]
					den += weights[i] * hessians[i]
				}
				if den < 1e-12 {
					return 0
				}
				return kFactor * num / den
			}

			tree := buildRegressionTree(x, residuals, weights, indices, regressionTreeConfig{
				maxDepth:       cfg.MaxDepth,
				minSamplesLeaf: cfg.MinSamplesLeaf,
				leafValue:      leafValue,
			})
			stage[c] = tree

			for i := 0; i < n; i++ {
				scores[i][c] += cfg.LearningRate * tree.predict(x[i])[0]
			}
		}
		model.Trees = append(model.Trees, stage)
	}

	return model, nil
}

// NumClasses returns how many classes the ensemble was fitted on.
func (m *GradientBoosting) NumClasses() int {
	return len(m.BaseScores)
}

// PredictProba returns the per-class probability rows for x.
func (m *GradientBoosting) PredictProba(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		scores := make([]float64, len(m.BaseScores))
		copy(scores, m.BaseScores)
		for _, stage := range m.Trees {
			for c, tree := range stage {
				scores[c] += m.LearningRate * tree.predict(row)[0]
			}
		}
		softmaxInPlace(scores)
		out[i] = scores
	}
	return out
}

// regressionTreeConfig controls one regression tree fit.
type regressionTreeConfig struct {
	leafValue      func(indices []int) float64
	maxDepth       int
	minSamplesLeaf int
}

// buildRegressionTree grows a depth-limited CART tree minimizing the
// weighted squared error of targets. Leaf values come from cfg.leafValue so
// boosting can apply its Newton estimate.
func buildRegressionTree(x [][]float64, targets, weights []float64, indices []int, cfg regressionTreeConfig) *treeNode {
	return growRegression(x, targets, weights, indices, cfg, 0)
}

func growRegression(x [][]float64, targets, weights []float64, indices []int, cfg regressionTreeConfig, depth int) *treeNode {
	if depth >= cfg.maxDepth || len(indices) < 2*cfg.minSamplesLeaf {
		return regressionLeaf(indices, cfg)
	}

	split := bestRegressionSplit(x, targets, weights, indices, cfg.minSamplesLeaf)
	if !split.valid {
		return regressionLeaf(indices, cfg)
	}

	return &treeNode{
		Feature:   split.feature,
		Threshold: split.threshold,
		Left:      growRegression(x, targets, weights, split.left, cfg, depth+1),
		Right:     growRegression(x, targets, weights, split.right, cfg, depth+1),
	}
}

func regressionLeaf(indices []int, cfg regressionTreeConfig) *treeNode {
	return &treeNode{Leaf: true, Value: []float64{cfg.leafValue(indices)}}
}

// bestRegressionSplit scans every feature for the split that maximizes the
// weighted sum-of-squares reduction. Ties keep the first candidate found, so
// the tree is deterministic.
func bestRegressionSplit(x [][]float64, targets, weights []float64, indices []int, minLeaf int) splitCandidate {
	var best splitCandidate
	if len(x) == 0 {
		return best
	}
	d := len(x[0])

	order := append([]int(nil), indices...)
	for feature := 0; feature < d; feature++ {
		sort.SliceStable(order, func(a, b int) bool {
			return x[order[a]][feature] < x[order[b]][feature]
		})

		var totalW, totalWT float64
		for _, i := range order {
			totalW += weights[i]
			totalWT += weights[i] * targets[i]
		}

		var leftW, leftWT float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			leftW += weights[i]
			leftWT += weights[i] * targets[i]

			next := order[pos+1]
			if x[i][feature] == x[next][feature] {
				continue
			}
			leftCount := pos + 1
			rightCount := len(order) - leftCount
			if leftCount < minLeaf || rightCount < minLeaf {
				continue
			}
			rightW := totalW - leftW
			rightWT := totalWT - leftWT
			if leftW <= 0 || rightW <= 0 {
				continue
			}

			score := leftWT*leftWT/leftW + rightWT*rightWT/rightW
			if !best.valid || score > best.score {
				best = splitCandidate{
					feature:   feature,
					threshold: (x[i][feature] + x[next][feature]) / 2,
					score:     score,
					left:      append([]int(nil), order[:leftCount]...),
					right:     append([]int(nil), order[leftCount:]...),
					valid:     true,
				}
			}
		}
	}

	return best
}

package ml

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/deckscore/deckscore/internal/common"
)

// RandomForest is a bagged ensemble of gini-split classification trees with
// a random sqrt-of-features subset considered at every split.
type RandomForest struct {
	Trees      []*treeNode `json:"trees"`
	NumClasses int         `json:"numClasses"`
}

// ForestConfig are the training hyperparameters.
type ForestConfig struct {
	Trees          int
	MinSamplesLeaf int
	// Balanced computes class weights from the full training labels and
	// applies them to every bootstrap sample.
	Balanced bool
	// Seed makes the ensemble reproducible. Each tree derives its own
	// generator from Seed and its index, so results do not depend on
	// goroutine scheduling.
	Seed int64
	// Workers bounds the tree-building goroutines; 0 means GOMAXPROCS.
	Workers int
}

// DefaultForestConfig returns the usual forest setup.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:          100,
		MinSamplesLeaf: 1,
		Seed:           42,
	}
}

// FitForest trains the ensemble. Trees build concurrently on a bounded
// worker pool; the result is identical regardless of parallelism.
func FitForest(x [][]float64, y []int, numClasses int, cfg ForestConfig) (*RandomForest, error) {
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
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultForestConfig().Trees
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 1
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.Trees {
		workers = cfg.Trees
	}

	d := len(x[0])
	mtry := int(math.Ceil(math.Sqrt(float64(d))))
	if mtry < 1 {
		mtry = 1
	}

	// Class weights come from the full label distribution, not per
	// bootstrap, matching the balanced weighting the pipeline trains with.
	classWeights := make([]float64, numClasses)
	counts := make([]float64, numClasses)
	for _, c := range y {
		counts[c]++
	}
	for c := range classWeights {
		if cfg.Balanced && counts[c] > 0 {
			classWeights[c] = float64(n) / (float64(numClasses) * counts[c])
		} else {
			classWeights[c] = 1
		}
	}
	sampleWeight := make([]float64, n)
	for i, c := range y {
		sampleWeight[i] = classWeights[c]
	}

	forest := &RandomForest{
		Trees:      make([]*treeNode, cfg.Trees),
		NumClasses: numClasses,
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				rng := rand.New(rand.NewSource(cfg.Seed + int64(t)))
				sample := make([]int, n)
				for i := range sample {
					sample[i] = rng.Intn(n)
				}
				forest.Trees[t] = growClassification(x, y, sampleWeight, sample, classificationTreeConfig{
					numClasses:     numClasses,
					maxFeatures:    mtry,
					minSamplesLeaf: cfg.MinSamplesLeaf,
					rng:            rng,
				})
			}
		}()
	}
	for t := 0; t < cfg.Trees; t++ {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	return forest, nil
}

// PredictProba averages the leaf class distributions across trees.
func (m *RandomForest) PredictProba(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		probs := make([]float64, m.NumClasses)
		for _, tree := range m.Trees {
			for c, p := range tree.predict(row) {
				probs[c] += p
			}
		}
		if len(m.Trees) > 0 {
			for c := range probs {
				probs[c] /= float64(len(m.Trees))
			}
		}
		out[i] = probs
	}
	return out
}

// classificationTreeConfig controls one gini tree fit.
type classificationTreeConfig struct {
	rng            *rand.Rand
	numClasses     int
	maxFeatures    int
	minSamplesLeaf int
}

func growClassification(x [][]float64, y []int, weights []float64, indices []int, cfg classificationTreeConfig) *treeNode {
	classWeight := make([]float64, cfg.numClasses)
	for _, i := range indices {
		classWeight[y[i]] += weights[i]
	}
	nonZero := 0
	for _, w := range classWeight {
		if w > 0 {
			nonZero++
		}
	}
	if nonZero <= 1 || len(indices) < 2*cfg.minSamplesLeaf {
		return classificationLeaf(classWeight)
	}

	split := bestGiniSplit(x, y, weights, indices, cfg)
	if !split.valid {
		return classificationLeaf(classWeight)
	}

	return &treeNode{
		Feature:   split.feature,
		Threshold: split.threshold,
		Left:      growClassification(x, y, weights, split.left, cfg),
		Right:     growClassification(x, y, weights, split.right, cfg),
	}
}

func classificationLeaf(classWeight []float64) *treeNode {
	var total float64
	for _, w := range classWeight {
		total += w
	}
	value := make([]float64, len(classWeight))
	if total > 0 {
		for c, w := range classWeight {
			value[c] = w / total
		}
	}
	return &treeNode{Leaf: true, Value: value}
}

// bestGiniSplit scans a random subset of features for the split that
// maximizes the weighted gini improvement.
func bestGiniSplit(x [][]float64, y []int, weights []float64, indices []int, cfg classificationTreeConfig) splitCandidate {
	var best splitCandidate
	if len(x) == 0 {
		return best
	}
	d := len(x[0])
	mtry := cfg.maxFeatures
	if mtry > d {
		mtry = d
	}
	features := cfg.rng.Perm(d)[:mtry]

	order := append([]int(nil), indices...)
	leftClass := make([]float64, cfg.numClasses)
	totalClass := make([]float64, cfg.numClasses)

	for _, feature := range features {
		sort.SliceStable(order, func(a, b int) bool {
			return x[order[a]][feature] < x[order[b]][feature]
		})

		for c := range totalClass {
			totalClass[c] = 0
			leftClass[c] = 0
		}
		var totalW float64
		for _, i := range order {
			totalClass[y[i]] += weights[i]
			totalW += weights[i]
		}

		var leftW float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			leftClass[y[i]] += weights[i]
			leftW += weights[i]

			next := order[pos+1]
			if x[i][feature] == x[next][feature] {
				continue
			}
			leftCount := pos + 1
			rightCount := len(order) - leftCount
			if leftCount < cfg.minSamplesLeaf || rightCount < cfg.minSamplesLeaf {
				continue
			}
			rightW := totalW - leftW
			if leftW <= 0 || rightW <= 0 {
				continue
			}

			var leftSq, rightSq float64
			for c := 0; c < cfg.numClasses; c++ {
				l := leftClass[c]
				r := totalClass[c] - l
				leftSq += l * l
				rightSq += r * r
			}
			score := leftSq/leftW + rightSq/rightW
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

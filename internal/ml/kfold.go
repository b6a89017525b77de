package ml

import (
	"fmt"
	"math/rand"
	"sort"
)

// Classifier predicts class probabilities for feature rows. All three
// estimators in this package implement it.
type Classifier interface {
	PredictProba(x [][]float64) [][]float64
}

// StratifiedKFold assigns samples to k folds, spreading each class across
// folds round-robin after a seeded shuffle. The result maps fold number to
// the held-out sample indices, each sorted ascending.
func StratifiedKFold(y []int, k int, seed int64) [][]int {
	byClass := make(map[int][]int)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	folds := make([][]int, k)
	next := 0
	for _, c := range classes {
		group := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(group), func(a, b int) {
			group[a], group[b] = group[b], group[a]
		})
		for _, idx := range group {
			folds[next%k] = append(folds[next%k], idx)
			next++
		}
	}

	for _, fold := range folds {
		sort.Ints(fold)
	}
	return folds
}

// CrossValPredict returns one out-of-fold prediction per sample: for each
// fold, a fresh model trains on the remaining folds and predicts the
// held-out rows.
func CrossValPredict(x [][]float64, y []int, k int, seed int64, train func(x [][]float64, y []int) (Classifier, error)) ([]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("cross-validation needs at least 2 folds, got %d", k)
	}

	folds := StratifiedKFold(y, k, seed)
	predictions := make([]int, len(y))

	for f, held := range folds {
		heldSet := make(map[int]struct{}, len(held))
		for _, idx := range held {
			heldSet[idx] = struct{}{}
		}
		var trainIdx []int
		for i := range y {
			if _, ok := heldSet[i]; !ok {
				trainIdx = append(trainIdx, i)
			}
		}
		if len(trainIdx) == 0 || len(held) == 0 {
			continue
		}

		clf, err := train(Subset(x, trainIdx), SubsetInts(y, trainIdx))
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", f, err)
		}

		probs := clf.PredictProba(Subset(x, held))
		for pos, idx := range held {
			predictions[idx] = ArgMax(probs[pos])
		}
	}

	return predictions, nil
}

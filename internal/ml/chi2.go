package ml

import (
	"fmt"
	"sort"

	"github.com/deckscore/deckscore/internal/common"
)

// SelectKBest keeps the k feature columns with the highest chi-squared
// statistic between the non-negative feature values and the class labels.
// Indices are the selected source columns in ascending order, so Transform
// preserves the original column order among survivors.
type SelectKBest struct {
	Indices []int `json:"indices"`
}

// FitChi2 scores every column and selects the top k. Ties at the cut prefer
// the lower column index.
func FitChi2(x [][]float64, y []int, numClasses, k int) (*SelectKBest, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: nothing to select (k=%d)", common.ErrNoFeatures, k)
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no rows to score", common.ErrNoFeatures)
	}
	d := len(x[0])
	if k > d {
		k = d
	}

	// Per-class sums of each feature.
	observed := make([][]float64, numClasses)
	for c := range observed {
		observed[c] = make([]float64, d)
	}
	classCount := make([]float64, numClasses)
	for i, row := range x {
		c := y[i]
		classCount[c]++
		obs := observed[c]
		for j, v := range row {
			obs[j] += v
		}
	}

	n := float64(len(x))
	scores := make([]float64, d)
	for j := 0; j < d; j++ {
		var total float64
		for c := 0; c < numClasses; c++ {
			total += observed[c][j]
		}
		if total == 0 {
			continue
		}
		var stat float64
		for c := 0; c < numClasses; c++ {
			expected := classCount[c] / n * total
			if expected == 0 {
				continue
			}
			diff := observed[c][j] - expected
			stat += diff * diff / expected
		}
		scores[j] = stat
	}

	order := make([]int, d)
	for j := range order {
		order[j] = j
	}
	sort.Slice(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return order[a] < order[b]
	})

	selected := append([]int(nil), order[:k]...)
	sort.Ints(selected)
	return &SelectKBest{Indices: selected}, nil
}

// Transform keeps only the selected columns.
func (s *SelectKBest) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		kept := make([]float64, len(s.Indices))
		for j, idx := range s.Indices {
			kept[j] = row[idx]
		}
		out[i] = kept
	}
	return out
}

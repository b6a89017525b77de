package ml

import (
	"math"
	"math/rand"
	"sort"
)

// StratifiedSplit partitions indices 0..len(strata)-1 into train and test
// sets, giving each stratum roughly the test fraction. A singleton stratum
// goes entirely to train, and no stratum loses its last training sample.
// Deterministic for a given seed.
func StratifiedSplit(strata []string, testFraction float64, seed int64) (trainIdx, testIdx []int) {
	groups := make(map[string][]int)
	for i, key := range strata {
		groups[key] = append(groups[key], i)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rng := rand.New(rand.NewSource(seed))
	for _, key := range keys {
		group := append([]int(nil), groups[key]...)
		rng.Shuffle(len(group), func(a, b int) {
			group[a], group[b] = group[b], group[a]
		})

		nTest := int(math.Round(testFraction * float64(len(group))))
		if nTest >= len(group) {
			nTest = len(group) - 1
		}
		if nTest < 0 {
			nTest = 0
		}

		testIdx = append(testIdx, group[:nTest]...)
		trainIdx = append(trainIdx, group[nTest:]...)
	}

	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	return trainIdx, testIdx
}

// Subset returns the rows of x selected by indices.
func Subset(x [][]float64, indices []int) [][]float64 {
	out := make([][]float64, len(indices))
	for i, idx := range indices {
		out[i] = x[idx]
	}
	return out
}

// SubsetInts returns the values of y selected by indices.
func SubsetInts(y []int, indices []int) []int {
	out := make([]int, len(indices))
	for i, idx := range indices {
		out[i] = y[idx]
	}
	return out
}

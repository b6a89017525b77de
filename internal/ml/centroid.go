package ml

// CentroidSet holds one mean vector per class. Classes with no samples get a
// zero centroid, which yields zero cosine similarity everywhere instead of a
// divide-by-zero.
type CentroidSet struct {
	Centroids [][]float64 `json:"centroids"`
}

// FitCentroids averages the rows of each class.
func FitCentroids(x [][]float64, y []int, numClasses int) *CentroidSet {
	var d int
	if len(x) > 0 {
		d = len(x[0])
	}

	centroids := make([][]float64, numClasses)
	counts := make([]int, numClasses)
	for c := range centroids {
		centroids[c] = make([]float64, d)
	}
	for i, row := range x {
		c := y[i]
		counts[c]++
		for j, v := range row {
			centroids[c][j] += v
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for j := range centroids[c] {
			centroids[c][j] /= float64(counts[c])
		}
	}

	return &CentroidSet{Centroids: centroids}
}

// Similarities returns, for every row, its cosine similarity to each class
// centroid.
func (c *CentroidSet) Similarities(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		sims := make([]float64, len(c.Centroids))
		for k, centroid := range c.Centroids {
			sims[k] = CosineSimilarity(row, centroid)
		}
		out[i] = sims
	}
	return out
}

// Package ml implements the fitted components the axis classifiers are built
// from: encoders, scalers, feature selection, decomposition and the
// estimators themselves. Everything works on plain float64 slices and every
// fitted component serializes to JSON.
package ml

import (
	"math"
)

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the Euclidean length of a vector.
func Norm(a []float64) float64 {
	var sum float64
	for _, v := range a {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either has zero length.
func CosineSimilarity(a, b []float64) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// ArgMax returns the index of the largest value, preferring the first on
// ties. Returns -1 for an empty slice.
func ArgMax(values []float64) int {
	if len(values) == 0 {
		return -1
	}
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// Sanitize replaces NaN and infinite values with zero, in place. Feature
// cells can legitimately parse to NaN (the string "NaN" is a valid float),
// and no estimator here tolerates one.
func Sanitize(x [][]float64) {
	for _, row := range x {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row[j] = 0
			}
		}
	}
}

package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDotAndNorm(t *testing.T) {
	assert.InDelta(t, 11.0, Dot([]float64{1, 2, 3}, []float64{3, 1, 2}), 1e-12)
	assert.InDelta(t, 5.0, Norm([]float64{3, 4}), 1e-12)
	assert.Zero(t, Norm(nil))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{name: "identical direction", a: []float64{1, 0}, b: []float64{2, 0}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, want: -1},
		{name: "zero vector yields zero", a: []float64{0, 0}, b: []float64{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-12)
		})
	}
}

func TestArgMax(t *testing.T) {
	assert.Equal(t, 2, ArgMax([]float64{0.1, 0.2, 0.7}))
	assert.Equal(t, 0, ArgMax([]float64{0.5, 0.5}), "ties prefer the first index")
	assert.Equal(t, -1, ArgMax(nil))
}

func TestSanitize(t *testing.T) {
	x := [][]float64{
		{1, math.NaN(), 3},
		{math.Inf(1), math.Inf(-1), 0.5},
	}
	Sanitize(x)
	assert.Equal(t, [][]float64{{1, 0, 3}, {0, 0, 0.5}}, x)
}

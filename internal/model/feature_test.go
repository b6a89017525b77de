package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureTableAppend(t *testing.T) {
	table := NewFeatureTable([]string{"a", "b"})
	require.NoError(t, table.Append("x.pdf", []float64{1, 2}))
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 2, table.Dim())
	assert.Equal(t, []float64{1, 2}, table.Row(0))

	err := table.Append("y.pdf", []float64{1})
	assert.Error(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestFeatureTableColumnSums(t *testing.T) {
	table := NewFeatureTable([]string{"a", "b"})
	require.NoError(t, table.Append("x.pdf", []float64{1, 0}))
	require.NoError(t, table.Append("y.pdf", []float64{2, 0.5}))
	assert.Equal(t, []float64{3, 0.5}, table.ColumnSums())
}

func TestAlign(t *testing.T) {
	table := NewFeatureTable([]string{"alpha", "beta", "gamma"})
	require.NoError(t, table.Append("x.pdf", []float64{1, 2, 3}))
	require.NoError(t, table.Append("y.pdf", []float64{4, 5, 6}))

	aligned, stats := table.Align([]string{"beta", "delta", "alpha"})

	assert.Equal(t, []string{"beta", "delta", "alpha"}, aligned.Terms)
	assert.Equal(t, [][]float64{{2, 0, 1}, {5, 0, 4}}, aligned.Rows)
	assert.Equal(t, []string{"x.pdf", "y.pdf"}, aligned.Docs)
	assert.Equal(t, 1, stats.Injected)
	assert.Equal(t, 1, stats.Dropped)
}

func TestAlign_IdenticalVocabularyIsClean(t *testing.T) {
	table := NewFeatureTable([]string{"a", "b"})
	require.NoError(t, table.Append("x.pdf", []float64{1, 2}))

	aligned, stats := table.Align([]string{"a", "b"})
	assert.Equal(t, table.Rows, aligned.Rows)
	assert.Zero(t, stats.Injected)
	assert.Zero(t, stats.Dropped)
}

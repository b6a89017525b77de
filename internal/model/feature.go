package model

import (
	"fmt"
)

// FeatureTable is the dense TF-IDF feature matrix. Rows follow Docs order and
// every row has exactly len(Terms) columns. The table is the single shared
// input for all four classifiers.
type FeatureTable struct {
	Docs  []string
	Terms []string
	Rows  [][]float64
}

// NewFeatureTable creates an empty table with the given term columns.
func NewFeatureTable(terms []string) *FeatureTable {
	return &FeatureTable{Terms: terms}
}

// Append adds one document row. The row length must match the term columns.
func (t *FeatureTable) Append(doc string, row []float64) error {
	if len(row) != len(t.Terms) {
		return fmt.Errorf("row for %q has %d values, want %d", doc, len(row), len(t.Terms))
	}
	t.Docs = append(t.Docs, doc)
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of document rows.
func (t *FeatureTable) Len() int {
	return len(t.Docs)
}

// Dim returns the number of term columns.
func (t *FeatureTable) Dim() int {
	return len(t.Terms)
}

// Row returns the i-th document row without copying.
func (t *FeatureTable) Row(i int) []float64 {
	return t.Rows[i]
}

// ColumnSums returns the per-column totals across all rows.
func (t *FeatureTable) ColumnSums() []float64 {
	sums := make([]float64, len(t.Terms))
	for _, row := range t.Rows {
		for j, v := range row {
			sums[j] += v
		}
	}
	return sums
}

// AlignStats reports how a table was reshaped to match a model's columns.
type AlignStats struct {
	// Injected counts model columns absent from the table, filled with zeros.
	Injected int
	// Dropped counts table columns the model does not know about.
	Dropped int
}

// Align reshapes the table to exactly the given term columns, in that order.
// Terms the table lacks become zero columns; terms the model never saw are
// dropped. This is the one adapter between a live vocabulary and the
// vocabulary a model was fitted on.
func (t *FeatureTable) Align(terms []string) (*FeatureTable, AlignStats) {
	index := make(map[string]int, len(t.Terms))
	for j, term := range t.Terms {
		index[term] = j
	}

	var stats AlignStats
	matched := 0

	aligned := &FeatureTable{
		Docs:  t.Docs,
		Terms: append([]string(nil), terms...),
		Rows:  make([][]float64, len(t.Rows)),
	}
	columns := make([]int, len(terms))
	for j, term := range terms {
		src, ok := index[term]
		if !ok {
			src = -1
			stats.Injected++
		} else {
			matched++
		}
		columns[j] = src
	}
	stats.Dropped = len(t.Terms) - matched

	for i, row := range t.Rows {
		out := make([]float64, len(terms))
		for j, src := range columns {
			if src >= 0 {
				out[j] = row[src]
			}
		}
		aligned.Rows[i] = out
	}

	return aligned, stats
}

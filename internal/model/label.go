package model

import (
	"fmt"
)

// LabelRow holds the manual labels for one document, one column per axis.
// Empty cells mean the axis has not been labeled yet.
type LabelRow struct {
	Doc     string
	Tech    string
	Domain  string
	Country string
	Result  string
}

// Get returns the label value for the given axis.
func (r LabelRow) Get(axis Axis) string {
	switch axis {
	case AxisTech:
		return r.Tech
	case AxisDomain:
		return r.Domain
	case AxisCountry:
		return r.Country
	case AxisResult:
		return r.Result
	default:
		return ""
	}
}

// Set stores a label value for the given axis.
func (r *LabelRow) Set(axis Axis, value string) error {
	switch axis {
	case AxisTech:
		r.Tech = value
	case AxisDomain:
		r.Domain = value
	case AxisCountry:
		r.Country = value
	case AxisResult:
		r.Result = value
	default:
		return fmt.Errorf("unknown classification axis %q", axis)
	}
	return nil
}

// Complete reports whether every axis has a label.
func (r LabelRow) Complete() bool {
	for _, axis := range AllAxes() {
		if r.Get(axis) == "" {
			return false
		}
	}
	return true
}

// LabelSet is the in-memory form of the label store: ordered rows with a
// doc-keyed index. Order is preserved across load/save so diffs of the
// on-disk file stay readable.
type LabelSet struct {
	index map[string]int
	rows  []LabelRow
}

// NewLabelSet creates an empty label set.
func NewLabelSet() *LabelSet {
	return &LabelSet{index: make(map[string]int)}
}

// Len returns the number of labeled documents.
func (s *LabelSet) Len() int {
	return len(s.rows)
}

// Rows returns the label rows in insertion order.
func (s *LabelSet) Rows() []LabelRow {
	return s.rows
}

// Docs returns the document ids in insertion order.
func (s *LabelSet) Docs() []string {
	docs := make([]string, len(s.rows))
	for i, row := range s.rows {
		docs[i] = row.Doc
	}
	return docs
}

// Get returns the row for a document.
func (s *LabelSet) Get(doc string) (LabelRow, bool) {
	i, ok := s.index[doc]
	if !ok {
		return LabelRow{}, false
	}
	return s.rows[i], true
}

// Upsert replaces the row for row.Doc, or appends it when the document has
// never been labeled.
func (s *LabelSet) Upsert(row LabelRow) {
	if i, ok := s.index[row.Doc]; ok {
		s.rows[i] = row
		return
	}
	s.index[row.Doc] = len(s.rows)
	s.rows = append(s.rows, row)
}

// Set updates a single axis label for a document, creating the row if needed.
func (s *LabelSet) Set(doc string, axis Axis, value string) error {
	if i, ok := s.index[doc]; ok {
		return s.rows[i].Set(axis, value)
	}
	row := LabelRow{Doc: doc}
	if err := row.Set(axis, value); err != nil {
		return err
	}
	s.Upsert(row)
	return nil
}

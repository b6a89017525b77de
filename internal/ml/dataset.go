package ml

import (
	"github.com/deckscore/deckscore/internal/model"
)

// TrainingSet pairs feature rows with their axis labels after the inner join
// between the feature table and the label store. Rows are copies, so
// trainers may sanitize or transform them freely.
type TrainingSet struct {
	Docs   []string
	Labels []string
	X      [][]float64
}

// Len returns the number of joined rows.
func (s *TrainingSet) Len() int {
	return len(s.Docs)
}

// JoinFeatures inner-joins the feature table with the label store on the
// document id, preserving feature-row order. With dropEmpty set, rows whose
// axis label is blank are excluded; otherwise the blank value is kept for
// the caller to canonicalize. Feature values are sanitized on the way in.
func JoinFeatures(features *model.FeatureTable, labels *model.LabelSet, axis model.Axis, dropEmpty bool) *TrainingSet {
	set := &TrainingSet{}
	for i, doc := range features.Docs {
		row, ok := labels.Get(doc)
		if !ok {
			continue
		}
		label := row.Get(axis)
		if dropEmpty && label == "" {
			continue
		}
		set.Docs = append(set.Docs, doc)
		set.Labels = append(set.Labels, label)
		set.X = append(set.X, append([]float64(nil), features.Row(i)...))
	}
	Sanitize(set.X)
	return set
}

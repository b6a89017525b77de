package model

// Prediction is one classifier verdict for one document.
type Prediction struct {
	Doc      string
	Category string
	// Probabilities holds the full per-category probability row for axes
	// that persist it; nil otherwise.
	Probabilities map[string]float64
	Confidence    float64
}

// PredictionTable is all predictions for one axis, in feature-row order.
type PredictionTable struct {
	Axis Axis
	// Classes fixes the column order for probability output; empty when the
	// axis does not persist probabilities.
	Classes     []string
	Predictions []Prediction
}

// Len returns the number of predicted documents.
func (t *PredictionTable) Len() int {
	return len(t.Predictions)
}

// ByDoc returns a doc-keyed view of the predictions.
func (t *PredictionTable) ByDoc() map[string]Prediction {
	byDoc := make(map[string]Prediction, len(t.Predictions))
	for _, p := range t.Predictions {
		byDoc[p.Doc] = p
	}
	return byDoc
}

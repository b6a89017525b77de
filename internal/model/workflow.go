package model

// WorkflowState tracks how far one document has moved through the pipeline.
// States are derived from what exists on disk, never stored, so they cannot
// drift from reality.
type WorkflowState string

// Workflow states, in pipeline order.
const (
	StateUnlabeled  WorkflowState = "unlabeled"
	StateLabeled    WorkflowState = "labeled"
	StateVectorized WorkflowState = "vectorized"
	StatePredicted  WorkflowState = "predicted"
)

// DocumentStatus is the derived progress snapshot for one document.
type DocumentStatus struct {
	Doc           string
	State         WorkflowState
	PredictedAxes []Axis
	Labeled       bool
	Vectorized    bool
}

// DeriveState resolves the furthest pipeline stage a document has reached.
func DeriveState(labeled, vectorized, predicted bool) WorkflowState {
	switch {
	case predicted:
		return StatePredicted
	case vectorized:
		return StateVectorized
	case labeled:
		return StateLabeled
	default:
		return StateUnlabeled
	}
}

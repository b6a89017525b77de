package ml

// treeNode is one node of a CART tree. A leaf carries Value: one element for
// regression trees, a class distribution for classification trees. Internal
// nodes send rows with feature <= threshold to the left child.
type treeNode struct {
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
	Value     []float64 `json:"value,omitempty"`
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Leaf      bool      `json:"leaf"`
}

// predict walks the tree for one row.
func (n *treeNode) predict(row []float64) []float64 {
	node := n
	for !node.Leaf {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// splitCandidate is the best split found for one node.
type splitCandidate struct {
	feature   int
	threshold float64
	score     float64
	left      []int
	right     []int
	valid     bool
}

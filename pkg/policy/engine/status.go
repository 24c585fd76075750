package engine

import "verity-hq/ganymede/pkg/pel/ast"

// Reason explains a leaf condition's outcome.
type Reason string

const (
	// ReasonMatched means the observed value satisfied the comparison.
	ReasonMatched Reason = "MATCHED"

	// ReasonUnmatched means the field was present but the comparison failed.
	ReasonUnmatched Reason = "UNMATCHED"

	// ReasonFieldMissing means the subject has no value for the field.
	// This is an evaluation outcome, not an error.
	ReasonFieldMissing Reason = "FIELD_MISSING"
)

// DisplayState is the tri-state presentation status of a node.
type DisplayState string

const (
	// DisplaySatisfied marks a node whose own verdict is true.
	DisplaySatisfied DisplayState = "SATISFIED"

	// DisplayUnsatisfied marks a false node that actually blocks (or would
	// block) its parent from being satisfied.
	DisplayUnsatisfied DisplayState = "UNSATISFIED"

	// DisplaySatisfiedViaSibling marks a false node whose OR parent is
	// nonetheless satisfied because a sibling matched.
	DisplaySatisfiedViaSibling DisplayState = "SATISFIED_VIA_SIBLING"
)

// Status is the evaluated mirror of a condition tree node. The status
// tree has exactly the shape of the condition tree it was evaluated
// from, with a verdict and display state at every node and observed
// values at the leaves.
type Status struct {
	// Node is the condition this status was computed for.
	Node *ast.ConditionNode

	// Verdict is the boolean outcome of the node.
	Verdict bool

	// Display is the presentation status, derived after the whole tree
	// has a verdict.
	Display DisplayState

	// Reason is set on comparison leaves only.
	Reason Reason

	// Observed is the subject's value for the leaf's field, when present.
	Observed interface{}

	// ObservedOK reports whether the field was present on the subject.
	ObservedOK bool

	// Children mirror the condition node's children, in order.
	Children []*Status
}

// IsLeaf reports whether this status belongs to a comparison node.
func (s *Status) IsLeaf() bool {
	return s.Node != nil && s.Node.IsComparison()
}

// Leaves returns the comparison statuses of the tree in left-to-right
// order.
func (s *Status) Leaves() []*Status {
	if s == nil {
		return nil
	}
	if s.IsLeaf() {
		return []*Status{s}
	}
	var leaves []*Status
	for _, child := range s.Children {
		leaves = append(leaves, child.Leaves()...)
	}
	return leaves
}

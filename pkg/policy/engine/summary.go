package engine

import (
	"time"

	pelerrors "verity-hq/ganymede/pkg/pel/errors"
)

// LeafOutcome is the per-condition row of a compliance summary, in the
// order the conditions appear in the expression.
type LeafOutcome struct {
	Expression string       `json:"expression"`
	Field      string       `json:"field"`
	Comparator string       `json:"comparator"`
	Operand    string       `json:"operand"`
	Observed   interface{}  `json:"observed,omitempty"`
	ObservedOK bool         `json:"observed_present"`
	Reason     Reason       `json:"reason"`
	Display    DisplayState `json:"status"`

	// Description and Category come from the field dictionary when the
	// tree was annotated; empty otherwise.
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Summary is the flat compliance report for one subject against one
// expression.
type Summary struct {
	SubjectID   string        `json:"subject_id,omitempty"`
	Expression  string        `json:"expression"`
	Compliant   bool          `json:"compliant"`
	EvaluatedAt time.Time     `json:"evaluated_at"`
	Outcomes    []LeafOutcome `json:"outcomes"`

	// Counts by display state, for quick reporting.
	Satisfied           int `json:"satisfied"`
	Unsatisfied         int `json:"unsatisfied"`
	SatisfiedViaSibling int `json:"satisfied_via_sibling"`
}

// BuildSummary flattens a status tree into a compliance summary.
// A structurally broken status tree (leaf without a reason, group
// without children) indicates an evaluator bug and is reported as an
// invariant violation.
func BuildSummary(status *Status, subjectID string) (*Summary, error) {
	if status == nil {
		return nil, ErrNilStatus
	}

	summary := &Summary{
		SubjectID:   subjectID,
		Expression:  status.Node.Raw,
		Compliant:   status.Verdict,
		EvaluatedAt: time.Now().UTC(),
	}

	if err := collectOutcomes(status, summary); err != nil {
		return nil, err
	}

	return summary, nil
}

func collectOutcomes(status *Status, summary *Summary) error {
	if status.Node == nil {
		return pelerrors.NewInvariantViolation("status without condition node")
	}
	if status.Display == "" {
		return pelerrors.NewInvariantViolation("status for %q has no display state", status.Node.Raw)
	}

	if status.IsLeaf() {
		if status.Reason == "" {
			return pelerrors.NewInvariantViolation("leaf status for %q has no reason", status.Node.Raw)
		}

		outcome := LeafOutcome{
			Expression: status.Node.Raw,
			Field:      status.Node.Field,
			Comparator: string(status.Node.Comparator),
			Operand:    status.Node.Operand.String(),
			Observed:   status.Observed,
			ObservedOK: status.ObservedOK,
			Reason:     status.Reason,
			Display:    status.Display,
		}
		if a := status.Node.Annotation; a != nil {
			outcome.Description = a.Description
			outcome.Category = a.Category
		}
		summary.Outcomes = append(summary.Outcomes, outcome)

		switch status.Display {
		case DisplaySatisfied:
			summary.Satisfied++
		case DisplaySatisfiedViaSibling:
			summary.SatisfiedViaSibling++
		default:
			summary.Unsatisfied++
		}
		return nil
	}

	if len(status.Children) == 0 {
		return pelerrors.NewInvariantViolation("group status for %q has no children", status.Node.Raw)
	}
	for _, child := range status.Children {
		if err := collectOutcomes(child, summary); err != nil {
			return err
		}
	}
	return nil
}

package ast

import "fmt"

// NodeKind discriminates the two shapes of a condition tree node.
type NodeKind string

const (
	KindGroup      NodeKind = "group"      // AND/OR of children
	KindComparison NodeKind = "comparison" // field comparator operand
)

// GroupOperator is the logical connective applied uniformly to all
// children of a group.
type GroupOperator string

const (
	GroupAnd GroupOperator = "AND"
	GroupOr  GroupOperator = "OR"
)

// Comparator is a comparison operator in a PEL leaf condition.
type Comparator string

const (
	ComparatorEqual        Comparator = "="
	ComparatorNotEqual     Comparator = "!="
	ComparatorGreaterThan  Comparator = ">"
	ComparatorGreaterEqual Comparator = ">="
	ComparatorLessThan     Comparator = "<"
	ComparatorLessEqual    Comparator = "<="
	ComparatorIn           Comparator = "IN"
	ComparatorBetween      Comparator = "BETWEEN"
)

// ConditionNode is a node in the parsed condition tree.
// Group nodes use Operator and Children; comparison nodes use Field,
// Comparator, Operand, and Raw.
type ConditionNode struct {
	Kind NodeKind

	// Group fields.
	Operator GroupOperator
	Children []*ConditionNode

	// Comparison fields.
	Field      string
	Comparator Comparator
	Operand    *Operand

	// Raw is the original expression text of this node, whitespace
	// normalized. For groups it covers the whole subexpression.
	Raw string

	// Offset is the byte offset of this node in the source expression.
	Offset int

	// Annotation carries display-only field metadata attached by the
	// annotator. Nil until annotated; never consulted by the evaluator.
	Annotation *FieldAnnotation
}

// IsGroup returns true for AND/OR group nodes.
func (n *ConditionNode) IsGroup() bool {
	return n.Kind == KindGroup
}

// IsComparison returns true for leaf comparison nodes.
func (n *ConditionNode) IsComparison() bool {
	return n.Kind == KindComparison
}

// Validate checks the structural invariants of the tree rooted at n:
// every group has at least one child, and every leaf operand's
// cardinality matches its comparator. The parser establishes these
// invariants; a violation here is a programming bug, not bad input.
func (n *ConditionNode) Validate() error {
	if n == nil {
		return fmt.Errorf("nil condition node")
	}

	switch n.Kind {
	case KindGroup:
		if n.Operator != GroupAnd && n.Operator != GroupOr {
			return fmt.Errorf("group has invalid operator %q", n.Operator)
		}
		if len(n.Children) == 0 {
			return fmt.Errorf("%s group has no children", n.Operator)
		}
		for _, child := range n.Children {
			if err := child.Validate(); err != nil {
				return err
			}
		}
		return nil

	case KindComparison:
		if n.Field == "" {
			return fmt.Errorf("comparison has empty field name")
		}
		if n.Operand == nil {
			return fmt.Errorf("comparison on %q has no operand", n.Field)
		}
		return validateCardinality(n)

	default:
		return fmt.Errorf("unknown node kind %q", n.Kind)
	}
}

// validateCardinality checks that the operand shape matches the comparator:
// IN takes a list, BETWEEN takes a low/high pair, everything else a scalar.
func validateCardinality(n *ConditionNode) error {
	switch n.Comparator {
	case ComparatorIn:
		if n.Operand.Kind != OperandList || len(n.Operand.List) == 0 {
			return fmt.Errorf("IN on %q requires a non-empty value list", n.Field)
		}
	case ComparatorBetween:
		if n.Operand.Kind != OperandRange || n.Operand.Low == nil || n.Operand.High == nil {
			return fmt.Errorf("BETWEEN on %q requires a low and high bound", n.Field)
		}
	case ComparatorEqual, ComparatorNotEqual,
		ComparatorGreaterThan, ComparatorGreaterEqual,
		ComparatorLessThan, ComparatorLessEqual:
		if n.Operand.Kind != OperandScalar || n.Operand.Scalar == nil {
			return fmt.Errorf("%s on %q requires a scalar operand", n.Comparator, n.Field)
		}
	default:
		return fmt.Errorf("unknown comparator %q on %q", n.Comparator, n.Field)
	}
	return nil
}

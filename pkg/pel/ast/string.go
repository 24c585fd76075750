package ast

import "strings"

// String renders the condition tree in canonical expression form.
// Reparsing the result yields an equivalent tree: nested groups are
// parenthesized, keywords are uppercase, string literals single-quoted.
func (n *ConditionNode) String() string {
	var sb strings.Builder
	n.write(&sb, true)
	return sb.String()
}

func (n *ConditionNode) write(sb *strings.Builder, root bool) {
	if n.Kind == KindComparison {
		sb.WriteString(n.Field)
		sb.WriteString(" ")
		sb.WriteString(string(n.Comparator))
		sb.WriteString(" ")
		sb.WriteString(n.Operand.String())
		return
	}

	if !root {
		sb.WriteString("(")
	}
	for i, child := range n.Children {
		if i > 0 {
			sb.WriteString(" ")
			sb.WriteString(string(n.Operator))
			sb.WriteString(" ")
		}
		child.write(sb, false)
	}
	if !root {
		sb.WriteString(")")
	}
}

package ast

// Walk traverses the condition tree in pre-order (left to right,
// parents before children) and calls fn for each node. Traversal stops
// at the first error, which is returned.
func Walk(node *ConditionNode, fn func(*ConditionNode) error) error {
	if node == nil {
		return nil
	}
	if err := fn(node); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// Leaves returns all comparison nodes in pre-order traversal order,
// which matches their left-to-right position in the source expression.
func Leaves(node *ConditionNode) []*ConditionNode {
	var leaves []*ConditionNode
	Walk(node, func(n *ConditionNode) error {
		if n.IsComparison() {
			leaves = append(leaves, n)
		}
		return nil
	})
	return leaves
}

// Clone returns a deep copy of the tree rooted at n. Annotations are
// shallow-copied; operands and literals are shared because they are
// never mutated after parse.
func Clone(n *ConditionNode) *ConditionNode {
	if n == nil {
		return nil
	}
	out := *n
	if n.Annotation != nil {
		annotation := *n.Annotation
		out.Annotation = &annotation
	}
	if len(n.Children) > 0 {
		out.Children = make([]*ConditionNode, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = Clone(child)
		}
	}
	return &out
}

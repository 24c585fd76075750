package dictionary

import "verity-hq/ganymede/pkg/pel/ast"

// Annotate attaches field metadata to every comparison leaf of a
// condition tree and returns the annotated copy. The input tree is
// never mutated, so a shared parsed tree stays immutable. Fields
// missing from the dictionary get an empty annotation rather than an
// error.
func Annotate(tree *ast.ConditionNode, src FieldSource) *ast.ConditionNode {
	if tree == nil {
		return nil
	}

	annotated := ast.Clone(tree)
	ast.Walk(annotated, func(n *ast.ConditionNode) error {
		if !n.IsComparison() {
			return nil
		}

		annotation := &ast.FieldAnnotation{}
		if src != nil {
			if meta, ok := src.Lookup(n.Field); ok {
				annotation.Description = meta.Description
				annotation.Category = meta.Section
				annotation.ValueType = meta.Type
			}
		}
		n.Annotation = annotation
		return nil
	})

	return annotated
}

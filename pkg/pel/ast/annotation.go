package ast

// FieldAnnotation carries display-only metadata about a leaf's field,
// resolved from an external field dictionary. Annotations never affect
// evaluation semantics; they exist so reports can explain what a field
// means. A field absent from the dictionary yields an empty annotation.
type FieldAnnotation struct {
	Description string
	Category    string
	ValueType   string
}

// IsEmpty returns true if no metadata was resolved for the field.
func (a *FieldAnnotation) IsEmpty() bool {
	return a == nil || (a.Description == "" && a.Category == "" && a.ValueType == "")
}

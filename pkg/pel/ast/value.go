package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// LiteralKind represents the lexical type of a literal operand value.
type LiteralKind string

const (
	LiteralString  LiteralKind = "string"
	LiteralNumber  LiteralKind = "number"
	LiteralBoolean LiteralKind = "boolean"
)

// Literal is a single literal value appearing in an expression operand.
// Text preserves the value as written (without quotes); Value holds the
// parsed Go value: string, float64, or bool.
type Literal struct {
	Kind  LiteralKind
	Text  string
	Value interface{}
}

// NewStringLiteral builds a string literal.
func NewStringLiteral(text string) *Literal {
	return &Literal{Kind: LiteralString, Text: text, Value: text}
}

// NewNumberLiteral builds a numeric literal from its source text.
func NewNumberLiteral(text string) (*Literal, error) {
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number literal %q: %w", text, err)
	}
	return &Literal{Kind: LiteralNumber, Text: text, Value: num}, nil
}

// NewBooleanLiteral builds a boolean literal.
func NewBooleanLiteral(text string, value bool) *Literal {
	return &Literal{Kind: LiteralBoolean, Text: text, Value: value}
}

// Number returns the literal as a float64 where possible. Numeric
// literals convert directly, booleans map to 0/1, and numeric-looking
// string literals are parsed.
func (l *Literal) Number() (float64, bool) {
	switch l.Kind {
	case LiteralNumber:
		return l.Value.(float64), true
	case LiteralBoolean:
		if l.Value.(bool) {
			return 1, true
		}
		return 0, true
	default:
		num, err := strconv.ParseFloat(strings.TrimSpace(l.Text), 64)
		if err != nil {
			return 0, false
		}
		return num, true
	}
}

// String renders the literal in canonical expression form: strings are
// single-quoted, numbers and booleans appear as written.
func (l *Literal) String() string {
	switch l.Kind {
	case LiteralString:
		return "'" + l.Text + "'"
	default:
		return l.Text
	}
}

// OperandKind represents the cardinality of a comparison operand.
type OperandKind string

const (
	OperandScalar OperandKind = "scalar" // single value: = != > >= < <=
	OperandList   OperandKind = "list"   // value set: IN
	OperandRange  OperandKind = "range"  // low/high pair: BETWEEN
)

// Operand is the right-hand side of a comparison. Exactly one of the
// shape fields is populated, according to Kind.
type Operand struct {
	Kind   OperandKind
	Scalar *Literal
	List   []*Literal
	Low    *Literal
	High   *Literal
}

// ScalarOperand wraps a single literal.
func ScalarOperand(lit *Literal) *Operand {
	return &Operand{Kind: OperandScalar, Scalar: lit}
}

// ListOperand wraps an IN value list.
func ListOperand(lits []*Literal) *Operand {
	return &Operand{Kind: OperandList, List: lits}
}

// RangeOperand wraps a BETWEEN low/high pair.
func RangeOperand(low, high *Literal) *Operand {
	return &Operand{Kind: OperandRange, Low: low, High: high}
}

// String renders the operand in canonical expression form.
func (o *Operand) String() string {
	switch o.Kind {
	case OperandList:
		parts := make([]string, len(o.List))
		for i, lit := range o.List {
			parts[i] = lit.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case OperandRange:
		return o.Low.String() + " AND " + o.High.String()
	default:
		return o.Scalar.String()
	}
}

package engine

import (
	"fmt"
	"strconv"
	"strings"

	"verity-hq/ganymede/pkg/pel/ast"
)

// evaluateComparator evaluates a comparison between an observed subject
// value and a literal operand. Comparisons never fail: when values
// cannot be coerced to a common numeric or boolean type, the comparison
// falls back to case-insensitive string equality (or lexicographic
// order for the ordering comparators).
func evaluateComparator(observed interface{}, cmp ast.Comparator, operand *ast.Operand) bool {
	switch cmp {
	case ast.ComparatorEqual:
		return evaluateEqual(observed, operand.Scalar)

	case ast.ComparatorNotEqual:
		return !evaluateEqual(observed, operand.Scalar)

	case ast.ComparatorGreaterThan:
		return evaluateOrdering(observed, operand.Scalar) > 0

	case ast.ComparatorGreaterEqual:
		return evaluateOrdering(observed, operand.Scalar) >= 0

	case ast.ComparatorLessThan:
		return evaluateOrdering(observed, operand.Scalar) < 0

	case ast.ComparatorLessEqual:
		return evaluateOrdering(observed, operand.Scalar) <= 0

	case ast.ComparatorIn:
		return evaluateIn(observed, operand.List)

	case ast.ComparatorBetween:
		return evaluateBetween(observed, operand.Low, operand.High)

	default:
		return false
	}
}

// evaluateEqual compares a single observed value against a literal.
// Both sides are coerced to numbers when possible (so "7" = 7 and
// TRUE = 1 hold), then to booleans, then compared as folded strings.
func evaluateEqual(observed interface{}, lit *ast.Literal) bool {
	if obsNum, ok := observedNumber(observed); ok {
		if litNum, ok := lit.Number(); ok {
			return obsNum == litNum
		}
	}

	if obsBool, ok := observedBool(observed); ok {
		if litBool, ok := literalBool(lit); ok {
			return obsBool == litBool
		}
	}

	return strings.EqualFold(observedString(observed), lit.Text)
}

// evaluateOrdering returns -1, 0, or +1 for observed relative to the
// literal. Numeric when both sides coerce, otherwise lexicographic over
// the folded string forms.
func evaluateOrdering(observed interface{}, lit *ast.Literal) int {
	if obsNum, ok := observedNumber(observed); ok {
		if litNum, ok := lit.Number(); ok {
			switch {
			case obsNum < litNum:
				return -1
			case obsNum > litNum:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(
		strings.ToLower(observedString(observed)),
		strings.ToLower(lit.Text),
	)
}

// evaluateIn checks membership of the observed value in the literal
// list. A list-valued observed value (multi-valued subject field)
// matches when any of its elements matches any list literal.
func evaluateIn(observed interface{}, list []*ast.Literal) bool {
	for _, element := range observedElements(observed) {
		for _, lit := range list {
			if evaluateEqual(element, lit) {
				return true
			}
		}
	}
	return false
}

// evaluateBetween checks low <= observed <= high, inclusive on both
// bounds. Numeric when all three values coerce, otherwise lexicographic.
func evaluateBetween(observed interface{}, low, high *ast.Literal) bool {
	if obsNum, ok := observedNumber(observed); ok {
		lowNum, lowOK := low.Number()
		highNum, highOK := high.Number()
		if lowOK && highOK {
			return lowNum <= obsNum && obsNum <= highNum
		}
	}

	obs := strings.ToLower(observedString(observed))
	return strings.ToLower(low.Text) <= obs && obs <= strings.ToLower(high.Text)
}

// observedElements expands a multi-valued observed value into its
// elements; scalars yield themselves.
func observedElements(observed interface{}) []interface{} {
	switch v := observed.(type) {
	case []interface{}:
		return v
	case []string:
		elements := make([]interface{}, len(v))
		for i, s := range v {
			elements[i] = s
		}
		return elements
	default:
		return []interface{}{observed}
	}
}

// observedNumber coerces an observed subject value to float64.
// Booleans map to 0/1 and numeric-looking strings are parsed, matching
// the literal coercion on the other side of the comparison.
func observedNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		num, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return num, true
	default:
		return 0, false
	}
}

// observedBool coerces an observed value to a boolean. Accepted forms
// are native booleans, 0/1, and the words true/false in any case.
func observedBool(v interface{}) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case float64:
		if val == 0 || val == 1 {
			return val == 1, true
		}
		return false, false
	case int:
		if val == 0 || val == 1 {
			return val == 1, true
		}
		return false, false
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// literalBool coerces a literal to a boolean using the same accepted
// forms as observedBool.
func literalBool(lit *ast.Literal) (bool, bool) {
	switch lit.Kind {
	case ast.LiteralBoolean:
		return lit.Value.(bool), true
	case ast.LiteralNumber:
		num := lit.Value.(float64)
		if num == 0 || num == 1 {
			return num == 1, true
		}
		return false, false
	default:
		switch strings.ToLower(strings.TrimSpace(lit.Text)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
		return false, false
	}
}

// observedString renders an observed value for string comparison.
// Floats holding whole numbers print without a trailing ".0" so they
// line up with integer-looking literals.
func observedString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

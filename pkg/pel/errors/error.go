package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes the type of error encountered while processing
// a PEL expression.
type ErrorType string

const (
	ErrorTypeLex       ErrorType = "lex"       // malformed token stream
	ErrorTypeParse     ErrorType = "parse"     // structurally invalid expression
	ErrorTypeInvariant ErrorType = "invariant" // internal contract broken
)

// Error is a rich expression error with offset, context, and an
// optional suggestion.
type Error struct {
	Type       ErrorType // category of error
	Message    string    // error message
	Offset     int       // byte offset in the source expression (-1 if unknown)
	Expected   string    // what the parser expected (parse errors)
	Found      string    // what the parser found instead (parse errors)
	Suggestion string    // suggested fix (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.Offset >= 0 {
		sb.WriteString(fmt.Sprintf(" at offset %d", e.Offset))
	}
	if e.Expected != "" || e.Found != "" {
		sb.WriteString(fmt.Sprintf(": expected %s, found %s", e.Expected, e.Found))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf(" (suggestion: %s)", e.Suggestion))
	}

	return sb.String()
}

// NewLexError builds a lex error at the given offset.
func NewLexError(offset int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    ErrorTypeLex,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
	}
}

// NewParseError builds a parse error with expected-vs-found detail.
func NewParseError(offset int, expected, found string) *Error {
	return &Error{
		Type:     ErrorTypeParse,
		Message:  "unexpected input",
		Offset:   offset,
		Expected: expected,
		Found:    found,
	}
}

// NewInvariantViolation builds an invariant error. Offset is not
// meaningful for invariant violations.
func NewInvariantViolation(format string, args ...interface{}) *Error {
	return &Error{
		Type:    ErrorTypeInvariant,
		Message: fmt.Sprintf(format, args...),
		Offset:  -1,
	}
}

// IsLexError reports whether err is a lex error.
func IsLexError(err error) bool {
	return isType(err, ErrorTypeLex)
}

// IsParseError reports whether err is a parse error.
func IsParseError(err error) bool {
	return isType(err, ErrorTypeParse)
}

// IsInvariantViolation reports whether err is an invariant violation.
func IsInvariantViolation(err error) bool {
	return isType(err, ErrorTypeInvariant)
}

func isType(err error, t ErrorType) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Type == t
	}
	return false
}

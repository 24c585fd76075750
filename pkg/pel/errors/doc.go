// Package errors defines the error taxonomy for PEL expression
// processing.
//
// Three error types exist:
//
//   - Lex: the raw expression contains a malformed token (unterminated
//     string literal, unrecognized symbol). Reported with the byte
//     offset and the offending character.
//   - Parse: the token stream is structurally invalid (unbalanced
//     parentheses, dangling AND/OR, operand cardinality mismatch,
//     empty expression). Reported with offset and expected-vs-found.
//   - Invariant: an internal contract was broken (empty group, a
//     cardinality mismatch slipping past the parser). Always a
//     programming bug, never recoverable by the caller.
//
// A missing subject field during evaluation is deliberately NOT an
// error: it is a first-class evaluation outcome, because real-world
// subject records are frequently incomplete and the system must still
// render partial compliance.
package errors

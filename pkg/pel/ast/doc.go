// Package ast defines the abstract syntax tree for PEL, the policy
// eligibility language.
//
// A PEL expression is a SQL WHERE-style boolean expression over named
// subject fields:
//
//	age >= 18 AND (bmi >= 40 OR (bmi >= 35 AND comorbidity_flag = 1))
//
// The parsed form is a condition tree with exactly two node shapes:
//
//   - Group: an n-ary AND or OR combination of child nodes. A group
//     never mixes operators; mixed logic is expressed through nested
//     groups created by parenthesization.
//   - Comparison: a single field/comparator/operand leaf.
//
// Groups are deliberately n-ary rather than binary. Every sibling of a
// logical connective stays visible at one level, which is what lets the
// evaluator decide whether a failed OR-branch was covered by a sibling
// without walking back up through synthetic binary joins.
//
// Condition trees are built once per policy expression and are immutable
// afterward. A single tree is safely shared read-only across any number
// of concurrent evaluations.
package ast

// Package parser builds PEL condition trees from raw expression text.
//
// The grammar is a small SQL WHERE-clause subset:
//
//	expression = and_chain { OR and_chain }
//	and_chain  = primary { AND primary }
//	primary    = "(" expression ")" | comparison
//	comparison = field ( op literal
//	                   | IN "(" literal { "," literal } ")"
//	                   | BETWEEN literal AND literal )
//	op         = "=" | "!=" | ">" | ">=" | "<" | "<="
//
// Precedence follows standard SQL: parentheses bind tightest, then
// comparison, then AND, then OR, left-associative throughout. Runs of
// the same keyword collapse into a single n-ary group instead of nested
// binary pairs.
//
// BETWEEN is the one grammar exception: the AND between its bounds
// belongs to the comparison, not to the logical connective, and the
// parser consumes it as such.
//
// Parse failures never produce a partially built tree; the caller must
// re-supply a corrected expression.
package parser

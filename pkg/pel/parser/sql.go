package parser

import (
	"regexp"
	"strings"

	"verity-hq/ganymede/pkg/pel/ast"
	pelerrors "verity-hq/ganymede/pkg/pel/errors"
)

var (
	whereRe        = regexp.MustCompile(`(?i)\bWHERE\b`)
	lineCommentRe  = regexp.MustCompile(`--.*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// ExtractWhereClause pulls the WHERE clause out of a SQL policy
// definition: everything after the first WHERE keyword up to the
// terminating semicolon (or end of input), with SQL comments stripped.
// Returns false when the text has no WHERE clause.
func ExtractWhereClause(sqlText string) (string, bool) {
	loc := whereRe.FindStringIndex(sqlText)
	if loc == nil {
		return "", false
	}

	clause := sqlText[loc[1]:]
	if end := strings.Index(clause, ";"); end >= 0 {
		clause = clause[:end]
	}

	clause = lineCommentRe.ReplaceAllString(clause, "")
	clause = blockCommentRe.ReplaceAllString(clause, "")
	return strings.TrimSpace(clause), true
}

// ParseSQL parses the eligibility expression embedded in a SQL policy
// file. Inputs without a WHERE clause are treated as bare expressions,
// so both full policy files and standalone expressions are accepted.
func ParseSQL(sqlText string) (*ast.ConditionNode, error) {
	clause, ok := ExtractWhereClause(sqlText)
	if !ok {
		clause = strings.TrimSpace(sqlText)
	}
	if clause == "" {
		return nil, pelerrors.NewParseError(0, "an expression", "end of expression")
	}
	return Parse(clause)
}

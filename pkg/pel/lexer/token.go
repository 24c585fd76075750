package lexer

import "fmt"

// TokenKind classifies a lexical token in a PEL expression.
type TokenKind string

const (
	TokenIdent    TokenKind = "IDENTIFIER" // field name or bare word
	TokenOperator TokenKind = "OPERATOR"   // = != > >= < <=
	TokenNumber   TokenKind = "NUMBER"     // numeric literal
	TokenString   TokenKind = "STRING"     // quoted string literal
	TokenLParen   TokenKind = "LPAREN"
	TokenRParen   TokenKind = "RPAREN"
	TokenComma    TokenKind = "COMMA"
	TokenAnd      TokenKind = "AND"
	TokenOr       TokenKind = "OR"
	TokenIn       TokenKind = "IN"
	TokenBetween  TokenKind = "BETWEEN"
	TokenEOF      TokenKind = "EOF"
)

// Token is a single lexical token. Text holds the token as written
// (string literals are unquoted); Offset is the byte offset of the
// token's first character in the source expression.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

// String returns a readable form for error messages.
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of expression"
	case TokenString:
		return fmt.Sprintf("'%s'", t.Text)
	default:
		return fmt.Sprintf("%q", t.Text)
	}
}

// IsKeyword reports whether the token is one of the logical keywords.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case TokenAnd, TokenOr, TokenIn, TokenBetween:
		return true
	default:
		return false
	}
}

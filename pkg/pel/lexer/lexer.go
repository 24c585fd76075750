package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	pelerrors "verity-hq/ganymede/pkg/pel/errors"
)

// Lex tokenizes a raw PEL expression string. Whitespace is
// insignificant; keywords (AND, OR, IN, BETWEEN) match
// case-insensitively. Lex fails with a lex error on an unterminated
// string literal or an unrecognized symbol, reporting the byte offset.
func Lex(input string) ([]Token, error) {
	l := &lexer{input: input}
	return l.run()
}

type lexer struct {
	input string
	pos   int
	toks  []Token
}

func (l *lexer) run() ([]Token, error) {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])

		switch {
		case unicode.IsSpace(r):
			l.pos += size

		case r == '(':
			l.emit(TokenLParen, "(", l.pos)
			l.pos++

		case r == ')':
			l.emit(TokenRParen, ")", l.pos)
			l.pos++

		case r == ',':
			l.emit(TokenComma, ",", l.pos)
			l.pos++

		case r == '\'' || r == '"':
			if err := l.lexString(byte(r)); err != nil {
				return nil, err
			}

		case r == '=' || r == '!' || r == '<' || r == '>':
			if err := l.lexOperator(); err != nil {
				return nil, err
			}

		case unicode.IsDigit(r) || (r == '-' && l.digitFollows()):
			l.lexNumber()

		case unicode.IsLetter(r) || r == '_':
			l.lexWord()

		default:
			return nil, pelerrors.NewLexError(l.pos, "unrecognized symbol %q", string(r))
		}
	}

	l.emit(TokenEOF, "", l.pos)
	return l.toks, nil
}

func (l *lexer) emit(kind TokenKind, text string, offset int) {
	l.toks = append(l.toks, Token{Kind: kind, Text: text, Offset: offset})
}

// lexString consumes a quoted literal. The opening quote character also
// terminates the literal; there is no escaping in PEL expressions.
func (l *lexer) lexString(quote byte) error {
	start := l.pos
	l.pos++ // opening quote

	for l.pos < len(l.input) {
		if l.input[l.pos] == quote {
			l.emit(TokenString, l.input[start+1:l.pos], start)
			l.pos++
			return nil
		}
		l.pos++
	}

	return pelerrors.NewLexError(start, "unterminated string literal (opened with %q)", string(quote))
}

func (l *lexer) lexOperator() error {
	start := l.pos
	c := l.input[l.pos]

	two := ""
	if l.pos+1 < len(l.input) {
		two = l.input[l.pos : l.pos+2]
	}

	switch two {
	case ">=", "<=", "!=":
		l.emit(TokenOperator, two, start)
		l.pos += 2
		return nil
	}

	switch c {
	case '=', '>', '<':
		l.emit(TokenOperator, string(c), start)
		l.pos++
		return nil
	}

	// A lone '!' is not a valid operator.
	return pelerrors.NewLexError(start, "unrecognized symbol %q", string(c))
}

func (l *lexer) lexNumber() {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	l.emit(TokenNumber, l.input[start:l.pos], start)
}

// lexWord consumes an identifier and folds logical keywords
// case-insensitively.
func (l *lexer) lexWord() {
	start := l.pos
	for l.pos < len(l.input) && isWordByte(l.input[l.pos]) {
		l.pos++
	}
	word := l.input[start:l.pos]

	switch strings.ToUpper(word) {
	case "AND":
		l.emit(TokenAnd, word, start)
	case "OR":
		l.emit(TokenOr, word, start)
	case "IN":
		l.emit(TokenIn, word, start)
	case "BETWEEN":
		l.emit(TokenBetween, word, start)
	default:
		l.emit(TokenIdent, word, start)
	}
}

// digitFollows reports whether the byte after the current position
// starts a number, so '-' can begin a negative literal.
func (l *lexer) digitFollows() bool {
	return l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c)
}

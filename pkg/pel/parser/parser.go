package parser

import (
	"strings"

	"verity-hq/ganymede/pkg/pel/ast"
	pelerrors "verity-hq/ganymede/pkg/pel/errors"
	"verity-hq/ganymede/pkg/pel/lexer"
)

// Parse tokenizes and parses a PEL expression into its condition tree.
// The returned root is either a group or a single comparison. Parsing
// is deterministic: the same expression always yields a structurally
// identical tree.
func Parse(input string) (*ast.ConditionNode, error) {
	toks, err := lexer.Lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{input: input, toks: toks}

	if p.peek().Kind == lexer.TokenEOF {
		return nil, pelerrors.NewParseError(0, "an expression", "end of expression")
	}

	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Kind != lexer.TokenEOF {
		perr := pelerrors.NewParseError(tok.Offset, "end of expression", tok.String())
		if tok.Kind == lexer.TokenIdent {
			perr.Suggestion = pelerrors.SuggestKeyword(tok.Text)
		}
		return nil, perr
	}

	if err := root.Validate(); err != nil {
		return nil, pelerrors.NewInvariantViolation("parser produced invalid tree: %v", err)
	}

	return root, nil
}

type parser struct {
	input string
	toks  []lexer.Token
	pos   int
}

func (p *parser) peek() lexer.Token {
	return p.toks[p.pos]
}

func (p *parser) next() lexer.Token {
	tok := p.toks[p.pos]
	if tok.Kind != lexer.TokenEOF {
		p.pos++
	}
	return tok
}

// parseExpression parses the OR level. Consecutive OR siblings collapse
// into one flat n-ary group so that downstream evaluation can see every
// alternative of a connective at a single level.
func (p *parser) parseExpression() (*ast.ConditionNode, error) {
	first, err := p.parseAndChain()
	if err != nil {
		return nil, err
	}

	children := []*ast.ConditionNode{first}
	for p.peek().Kind == lexer.TokenOr {
		p.next()
		child, err := p.parseAndChain()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	if len(children) == 1 {
		return first, nil
	}
	return p.group(ast.GroupOr, children), nil
}

// parseAndChain parses a maximal run of AND-joined primaries. AND binds
// tighter than OR, so chains are collected here before the enclosing OR
// level folds them in.
func (p *parser) parseAndChain() (*ast.ConditionNode, error) {
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	children := []*ast.ConditionNode{first}
	for p.peek().Kind == lexer.TokenAnd {
		p.next()
		child, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	if len(children) == 1 {
		return first, nil
	}
	return p.group(ast.GroupAnd, children), nil
}

// parsePrimary parses a parenthesized subexpression or a single
// comparison.
func (p *parser) parsePrimary() (*ast.ConditionNode, error) {
	tok := p.peek()

	switch tok.Kind {
	case lexer.TokenLParen:
		p.next()
		node, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.Kind != lexer.TokenRParen {
			return nil, pelerrors.NewParseError(closing.Offset, "')'", closing.String())
		}
		p.next()
		return node, nil

	case lexer.TokenIdent:
		return p.parseComparison()

	default:
		return nil, pelerrors.NewParseError(tok.Offset, "field name or '('", tok.String())
	}
}

// parseComparison parses `field comparator operand`. BETWEEN consumes
// the AND between its bounds as part of the comparison syntax.
func (p *parser) parseComparison() (*ast.ConditionNode, error) {
	field := p.next()
	start := field.Offset

	tok := p.peek()
	var comparator ast.Comparator
	var operand *ast.Operand
	var err error

	switch tok.Kind {
	case lexer.TokenOperator:
		p.next()
		comparator = ast.Comparator(tok.Text)
		var lit *ast.Literal
		lit, err = p.parseLiteral()
		if err != nil {
			return nil, err
		}
		operand = ast.ScalarOperand(lit)

	case lexer.TokenIn:
		p.next()
		comparator = ast.ComparatorIn
		operand, err = p.parseInList()
		if err != nil {
			return nil, err
		}

	case lexer.TokenBetween:
		p.next()
		comparator = ast.ComparatorBetween
		operand, err = p.parseBetweenRange()
		if err != nil {
			return nil, err
		}

	default:
		perr := pelerrors.NewParseError(tok.Offset, "a comparator", tok.String())
		if tok.Kind == lexer.TokenIdent {
			perr.Suggestion = pelerrors.SuggestKeyword(tok.Text)
		}
		if perr.Suggestion == "" {
			perr.Suggestion = pelerrors.SuggestComparator()
		}
		return nil, perr
	}

	return &ast.ConditionNode{
		Kind:       ast.KindComparison,
		Field:      field.Text,
		Comparator: comparator,
		Operand:    operand,
		Raw:        p.rawSince(start),
		Offset:     start,
	}, nil
}

// parseInList parses the parenthesized literal list of an IN operand.
func (p *parser) parseInList() (*ast.Operand, error) {
	if tok := p.peek(); tok.Kind != lexer.TokenLParen {
		return nil, pelerrors.NewParseError(tok.Offset, "'(' after IN", tok.String())
	}
	p.next()

	var values []*ast.Literal
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, lit)

		tok := p.peek()
		switch tok.Kind {
		case lexer.TokenComma:
			p.next()
		case lexer.TokenRParen:
			p.next()
			return ast.ListOperand(values), nil
		default:
			return nil, pelerrors.NewParseError(tok.Offset, "',' or ')'", tok.String())
		}
	}
}

// parseBetweenRange parses `lo AND hi`. The AND here is part of the
// BETWEEN grammar, not a logical connective.
func (p *parser) parseBetweenRange() (*ast.Operand, error) {
	low, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Kind != lexer.TokenAnd {
		return nil, pelerrors.NewParseError(tok.Offset, "AND between BETWEEN bounds", tok.String())
	}
	p.next()

	high, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	return ast.RangeOperand(low, high), nil
}

// parseLiteral parses a single literal operand value. Bare identifiers
// are accepted as unquoted string values, matching loose SQL usage in
// real policy files; TRUE/FALSE become boolean literals.
func (p *parser) parseLiteral() (*ast.Literal, error) {
	tok := p.peek()

	switch tok.Kind {
	case lexer.TokenNumber:
		lit, err := ast.NewNumberLiteral(tok.Text)
		if err != nil {
			return nil, pelerrors.NewParseError(tok.Offset, "a number", tok.String())
		}
		p.next()
		return lit, nil

	case lexer.TokenString:
		p.next()
		return ast.NewStringLiteral(tok.Text), nil

	case lexer.TokenIdent:
		p.next()
		switch strings.ToUpper(tok.Text) {
		case "TRUE":
			return ast.NewBooleanLiteral(tok.Text, true), nil
		case "FALSE":
			return ast.NewBooleanLiteral(tok.Text, false), nil
		}
		return ast.NewStringLiteral(tok.Text), nil

	default:
		return nil, pelerrors.NewParseError(tok.Offset, "a literal value", tok.String())
	}
}

// group builds an n-ary group node covering its children's source span.
func (p *parser) group(op ast.GroupOperator, children []*ast.ConditionNode) *ast.ConditionNode {
	start := children[0].Offset
	return &ast.ConditionNode{
		Kind:     ast.KindGroup,
		Operator: op,
		Children: children,
		Raw:      p.rawSince(start),
		Offset:   start,
	}
}

// rawSince returns the source text from start up to the current token,
// with whitespace runs collapsed.
func (p *parser) rawSince(start int) string {
	end := len(p.input)
	if p.pos < len(p.toks) {
		end = p.toks[p.pos].Offset
	}
	if start > end {
		start = end
	}
	return strings.Join(strings.Fields(p.input[start:end]), " ")
}

// Package parser parses invariant expressions into expression trees.
//
// The surface language is a small, side-effect-free boolean expression
// language. A handful of constructs are desugared during parsing so that
// the downstream analyses only ever see canonical nodes:
//
//   - `not X or Y`            becomes an implication X => Y,
//   - `x is None`             becomes an is-none check,
//   - `x is not None`         becomes an is-not-none check,
//   - `x in Some_constant`    becomes a membership check.
package parser

import (
	"fmt"
	"strconv"

	"github.com/metac-lang/metac/compiler/lexer"
	"github.com/metac-lang/metac/internal/compiler/ast"
)

// ParseError describes a syntax error in an invariant expression
type ParseError struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parser is a recursive-descent parser over a scanned token stream
type Parser struct {
	tokens  []lexer.Token
	current int
}

// Parse scans and parses a single invariant expression
func Parse(source string) (ast.ExprNode, error) {
	lex := lexer.New(source)
	tokens, lexErrors := lex.ScanTokens()
	if len(lexErrors) > 0 {
		first := lexErrors[0]
		return nil, &ParseError{
			Message: first.Message,
			Line:    first.Line,
			Column:  first.Column,
		}
	}

	p := &Parser{tokens: tokens}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if !p.isAtEnd() {
		return nil, p.errorAtCurrent(
			fmt.Sprintf("unexpected token %q after the expression",
				p.peek().Lexeme))
	}

	return expr, nil
}

// parseExpression parses the top-level or-chain.
//
// A leading `not` over the first operand turns the chain into an
// implication: `not X or Y or Z` reads as "if X then Y or Z". A `not`
// anywhere else has no canonical form and is rejected.
func (p *Parser) parseExpression() (ast.ExprNode, error) {
	location := p.location()

	var antecedent ast.ExprNode
	if p.match(lexer.TOKEN_NOT) {
		negated, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		antecedent = negated
	}

	var operands []ast.ExprNode
	if antecedent == nil {
		first, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		operands = append(operands, first)
	}

	for p.match(lexer.TOKEN_OR) {
		operand, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}

	if antecedent != nil {
		if len(operands) == 0 {
			return nil, p.errorAt(location,
				"a negation must be followed by 'or' to form an implication")
		}

		var consequent ast.ExprNode
		if len(operands) == 1 {
			consequent = operands[0]
		} else {
			consequent = &ast.Or{Values: operands, Loc: operands[0].Location()}
		}

		return &ast.Implication{
			Antecedent: antecedent,
			Consequent: consequent,
			Loc:        location,
		}, nil
	}

	if len(operands) == 1 {
		return operands[0], nil
	}

	return &ast.Or{Values: operands, Loc: location}, nil
}

func (p *Parser) parseConjunction() (ast.ExprNode, error) {
	location := p.location()

	first, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	operands := []ast.ExprNode{first}
	for p.match(lexer.TOKEN_AND) {
		operand, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}

	if len(operands) == 1 {
		return operands[0], nil
	}

	return &ast.And{Values: operands, Loc: location}, nil
}

var comparatorByToken = map[lexer.TokenType]ast.Comparator{
	lexer.TOKEN_LT: ast.Lt,
	lexer.TOKEN_LE: ast.Le,
	lexer.TOKEN_EQ: ast.Eq,
	lexer.TOKEN_NE: ast.Ne,
	lexer.TOKEN_GT: ast.Gt,
	lexer.TOKEN_GE: ast.Ge,
}

func (p *Parser) parseComparison() (ast.ExprNode, error) {
	location := p.location()

	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	if op, ok := comparatorByToken[p.peek().Type]; ok {
		p.advance()

		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		return &ast.Comparison{
			Left: left, Op: op, Right: right, Loc: location}, nil
	}

	if p.match(lexer.TOKEN_IS) {
		negated := p.match(lexer.TOKEN_NOT)

		if _, err := p.consume(
			lexer.TOKEN_NONE, "expected 'None' after 'is'"); err != nil {
			return nil, err
		}

		if negated {
			return &ast.IsNotNone{Value: left, Loc: location}, nil
		}
		return &ast.IsNone{Value: left, Loc: location}, nil
	}

	if p.match(lexer.TOKEN_IN) {
		containerToken, err := p.consume(
			lexer.TOKEN_IDENT, "expected a constant name after 'in'")
		if err != nil {
			return nil, err
		}

		container := &ast.Name{
			Identifier: containerToken.Lexeme,
			Loc: ast.SourceLocation{
				Line: containerToken.Line, Column: containerToken.Column},
		}

		return &ast.IsIn{Member: left, Container: container, Loc: location}, nil
	}

	return left, nil
}

func (p *Parser) parsePrimary() (ast.ExprNode, error) {
	token := p.peek()
	location := p.location()

	switch token.Type {
	case lexer.TOKEN_LPAREN:
		p.advance()

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if _, err := p.consume(
			lexer.TOKEN_RPAREN, "expected ')' after the expression"); err != nil {
			return nil, err
		}
		return expr, nil

	case lexer.TOKEN_TRUE:
		p.advance()
		return &ast.Constant{Value: true, Loc: location}, nil

	case lexer.TOKEN_FALSE:
		p.advance()
		return &ast.Constant{Value: false, Loc: location}, nil

	case lexer.TOKEN_INT:
		p.advance()
		value, err := strconv.ParseInt(token.Lexeme, 10, 64)
		if err != nil {
			return nil, p.errorAt(location,
				fmt.Sprintf("the integer literal %q is out of range", token.Lexeme))
		}
		return &ast.Constant{Value: value, Loc: location}, nil

	case lexer.TOKEN_FLOAT:
		p.advance()
		value, err := strconv.ParseFloat(token.Lexeme, 64)
		if err != nil {
			return nil, p.errorAt(location,
				fmt.Sprintf("invalid float literal %q", token.Lexeme))
		}
		return &ast.Constant{Value: value, Loc: location}, nil

	case lexer.TOKEN_STRING:
		p.advance()
		return &ast.Constant{
			Value: unquote(token.Lexeme), Loc: location}, nil

	case lexer.TOKEN_IDENT:
		p.advance()
		return p.parseNameTail(token, location)

	case lexer.TOKEN_NOT:
		return nil, p.errorAt(location,
			"'not' is only allowed as the antecedent of an implication")

	default:
		return nil, p.errorAtCurrent(
			fmt.Sprintf("expected an expression but got %q", token.Lexeme))
	}
}

// parseNameTail finishes a name: member accesses and function calls
func (p *Parser) parseNameTail(
	token lexer.Token, location ast.SourceLocation,
) (ast.ExprNode, error) {
	var node ast.ExprNode = &ast.Name{Identifier: token.Lexeme, Loc: location}

	for {
		switch {
		case p.match(lexer.TOKEN_DOT):
			memberToken, err := p.consume(
				lexer.TOKEN_IDENT, "expected a member name after '.'")
			if err != nil {
				return nil, err
			}

			node = &ast.Member{
				Instance: node,
				Name:     memberToken.Lexeme,
				Loc:      location,
			}

		case p.check(lexer.TOKEN_LPAREN):
			name, ok := node.(*ast.Name)
			if !ok {
				return nil, p.errorAtCurrent("only plain names can be called")
			}
			p.advance()

			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}

			node = &ast.FunctionCall{
				Name: name.Identifier,
				Args: args,
				Loc:  location,
			}

		default:
			return node, nil
		}
	}
}

func (p *Parser) parseArguments() ([]ast.ExprNode, error) {
	var args []ast.ExprNode

	if !p.check(lexer.TOKEN_RPAREN) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
	}

	if _, err := p.consume(
		lexer.TOKEN_RPAREN, "expected ')' after the arguments"); err != nil {
		return nil, err
	}

	return args, nil
}

// unquote strips the surrounding quotes and resolves the escape sequences
func unquote(lexeme string) string {
	runes := []rune(lexeme)
	inner := runes[1 : len(runes)-1]

	result := make([]rune, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			default:
				result = append(result, inner[i])
			}
			continue
		}
		result = append(result, inner[i])
	}
	return string(result)
}

func (p *Parser) match(tokenType lexer.TokenType) bool {
	if p.check(tokenType) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(tokenType lexer.TokenType) bool {
	return p.peek().Type == tokenType
}

func (p *Parser) consume(
	tokenType lexer.TokenType, message string,
) (lexer.Token, error) {
	if p.check(tokenType) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorAtCurrent(message)
}

func (p *Parser) advance() lexer.Token {
	token := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return token
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TOKEN_EOF
}

func (p *Parser) location() ast.SourceLocation {
	token := p.peek()
	return ast.SourceLocation{Line: token.Line, Column: token.Column}
}

func (p *Parser) errorAtCurrent(message string) *ParseError {
	token := p.peek()
	return &ParseError{Message: message, Line: token.Line, Column: token.Column}
}

func (p *Parser) errorAt(location ast.SourceLocation, message string) *ParseError {
	return &ParseError{
		Message: message, Line: location.Line, Column: location.Column}
}

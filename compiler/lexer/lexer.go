// Package lexer tokenizes invariant expressions of the meta-model.
package lexer

import (
	"fmt"
	"unicode"
)

// LexError describes an unexpected character in the source
type LexError struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Lexer tokenizes a single invariant expression
type Lexer struct {
	source      []rune
	start       int
	current     int
	line        int
	column      int
	startLine   int
	startColumn int
	tokens      []Token
	errors      []LexError
}

// New creates a new Lexer for the given source
func New(source string) *Lexer {
	return &Lexer{
		source: []rune(source),
		line:   1,
		column: 1,
		tokens: make([]Token, 0, len(source)/4),
	}
}

// ScanTokens scans all tokens from the source and returns them with any errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.startLine = l.line
		l.startColumn = l.column
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type: TOKEN_EOF, Lexeme: "", Line: l.line, Column: l.column})

	return l.tokens, l.errors
}

func (l *Lexer) scanToken() {
	r := l.advance()

	switch r {
	case ' ', '\t', '\r':
		// Skip whitespace.
	case '\n':
		l.line++
		l.column = 1
	case '(':
		l.addToken(TOKEN_LPAREN)
	case ')':
		l.addToken(TOKEN_RPAREN)
	case ',':
		l.addToken(TOKEN_COMMA)
	case '.':
		l.addToken(TOKEN_DOT)
	case '<':
		if l.match('=') {
			l.addToken(TOKEN_LE)
		} else {
			l.addToken(TOKEN_LT)
		}
	case '>':
		if l.match('=') {
			l.addToken(TOKEN_GE)
		} else {
			l.addToken(TOKEN_GT)
		}
	case '=':
		if l.match('=') {
			l.addToken(TOKEN_EQ)
		} else {
			l.addError("expected '==' but got '='")
		}
	case '!':
		if l.match('=') {
			l.addToken(TOKEN_NE)
		} else {
			l.addError("expected '!=' but got '!'")
		}
	case '\'', '"':
		l.scanString(r)
	default:
		switch {
		case unicode.IsDigit(r):
			l.scanNumber()
		case unicode.IsLetter(r) || r == '_':
			l.scanIdentifier()
		default:
			l.addError(fmt.Sprintf("unexpected character %q", r))
		}
	}
}

func (l *Lexer) scanString(quote rune) {
	for !l.isAtEnd() && l.peek() != quote {
		if l.peek() == '\n' {
			l.addError("unterminated string")
			return
		}
		if l.peek() == '\\' {
			l.advance()
			if l.isAtEnd() {
				break
			}
		}
		l.advance()
	}

	if l.isAtEnd() {
		l.addError("unterminated string")
		return
	}

	// Consume the closing quote.
	l.advance()
	l.addToken(TOKEN_STRING)
}

func (l *Lexer) scanNumber() {
	for !l.isAtEnd() && unicode.IsDigit(l.peek()) {
		l.advance()
	}

	isFloat := false
	if !l.isAtEnd() && l.peek() == '.' && l.peekNext() != 0 &&
		unicode.IsDigit(l.peekNext()) {
		isFloat = true
		l.advance()
		for !l.isAtEnd() && unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}

	if isFloat {
		l.addToken(TOKEN_FLOAT)
	} else {
		l.addToken(TOKEN_INT)
	}
}

func (l *Lexer) scanIdentifier() {
	for !l.isAtEnd() &&
		(unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}

	lexeme := string(l.source[l.start:l.current])
	l.tokens = append(l.tokens, Token{
		Type:   LookupIdent(lexeme),
		Lexeme: lexeme,
		Line:   l.startLine,
		Column: l.startColumn,
	})
}

func (l *Lexer) addToken(tokenType TokenType) {
	l.tokens = append(l.tokens, Token{
		Type:   tokenType,
		Lexeme: string(l.source[l.start:l.current]),
		Line:   l.startLine,
		Column: l.startColumn,
	})
}

func (l *Lexer) addError(message string) {
	l.errors = append(l.errors, LexError{
		Message: message,
		Line:    l.startLine,
		Column:  l.startColumn,
	})
}

func (l *Lexer) advance() rune {
	r := l.source[l.current]
	l.current++
	if r != '\n' {
		l.column++
	}
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.source[l.current] != expected {
		return false
	}
	l.current++
	l.column++
	return true
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() rune {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

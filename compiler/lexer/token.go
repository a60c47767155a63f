package lexer

// TokenType identifies the type of a token
type TokenType int

const (
	TOKEN_EOF TokenType = iota
	TOKEN_ILLEGAL

	// Literals
	TOKEN_IDENT
	TOKEN_INT
	TOKEN_FLOAT
	TOKEN_STRING

	// Punctuation
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_COMMA
	TOKEN_DOT

	// Comparators
	TOKEN_LT
	TOKEN_LE
	TOKEN_EQ
	TOKEN_NE
	TOKEN_GT
	TOKEN_GE

	// Keywords
	TOKEN_AND
	TOKEN_OR
	TOKEN_NOT
	TOKEN_IS
	TOKEN_IN
	TOKEN_NONE
	TOKEN_TRUE
	TOKEN_FALSE
)

// Token is a single lexical token of an invariant expression
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

var keywords = map[string]TokenType{
	"and":   TOKEN_AND,
	"or":    TOKEN_OR,
	"not":   TOKEN_NOT,
	"is":    TOKEN_IS,
	"in":    TOKEN_IN,
	"None":  TOKEN_NONE,
	"True":  TOKEN_TRUE,
	"False": TOKEN_FALSE,
}

// LookupIdent returns the keyword token type for the identifier, or
// TOKEN_IDENT if it is not a keyword
func LookupIdent(ident string) TokenType {
	if tokenType, ok := keywords[ident]; ok {
		return tokenType
	}
	return TOKEN_IDENT
}

package main

// TokenType is the type of token (identifier, operator, literal, etc.).
type TokenType string

// Definition of token types
const (
	// Special tokens
	EOF TokenType = "EOF"

	// Identifiers + literals
	IDENT TokenType = "IDENT" // x, foo, _bar
	INT   TokenType = "INT"   // 12345

	// Keywords
	IF  TokenType = "IF"
	OUT TokenType = "OUT"

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LT       TokenType = "<"
	GT       TokenType = ">"
	LE       TokenType = "<="
	GE       TokenType = ">="

	// Delimiters
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
)

// Token is one lexical unit of a source file. Line and Col are 1-based and
// point at the first character of the token.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
}

// lexer scans a single source string. Each Tokenize call owns a fresh lexer,
// so nothing is shared between compilations.
type lexer struct {
	input string
	pos   int
	line  int
	col   int
}

// Tokenize converts source text into a flat token slice ending in exactly one
// EOF token. It returns a *LexError on the first unrecognized character.
func Tokenize(source string) ([]Token, error) {
	l := &lexer{input: source, line: 1, col: 1}

	var tokens []Token
	for {
		l.skipWhitespaceAndComments()

		if l.pos >= len(l.input) {
			tokens = append(tokens, Token{Type: EOF, Line: l.line, Col: l.col})
			return tokens, nil
		}

		startLine, startCol := l.line, l.col
		c := l.peek(0)

		if isDigit(c) {
			tokens = append(tokens, l.lexNumber())
			continue
		}
		if isLetter(c) {
			tokens = append(tokens, l.lexIdentOrKeyword())
			continue
		}

		l.advance()
		mk := func(typ TokenType, lit string) {
			tokens = append(tokens, Token{Type: typ, Literal: lit, Line: startLine, Col: startCol})
		}

		switch c {
		case '=':
			if l.peek(0) == '=' {
				l.advance()
				mk(EQ, "==")
			} else {
				mk(ASSIGN, "=")
			}
		case '!':
			if l.peek(0) == '=' {
				l.advance()
				mk(NOT_EQ, "!=")
			} else {
				// There is no unary logical-not in the language.
				return nil, &LexError{Ch: '!', Line: startLine, Col: startCol}
			}
		case '<':
			if l.peek(0) == '=' {
				l.advance()
				mk(LE, "<=")
			} else {
				mk(LT, "<")
			}
		case '>':
			if l.peek(0) == '=' {
				l.advance()
				mk(GE, ">=")
			} else {
				mk(GT, ">")
			}
		case '+':
			mk(PLUS, "+")
		case '-':
			mk(MINUS, "-")
		case '*':
			mk(ASTERISK, "*")
		case '/':
			mk(SLASH, "/")
		case ';':
			mk(SEMICOLON, ";")
		case '(':
			mk(LPAREN, "(")
		case ')':
			mk(RPAREN, ")")
		case '{':
			mk(LBRACE, "{")
		case '}':
			mk(RBRACE, "}")
		default:
			return nil, &LexError{Ch: rune(c), Line: startLine, Col: startCol}
		}
	}
}

func (l *lexer) peek(offset int) byte {
	idx := l.pos + offset
	if idx >= len(l.input) {
		return 0
	}
	return l.input[idx]
}

func (l *lexer) advance() byte {
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		c := l.peek(0)
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.advance()
		} else if c == '/' && l.peek(1) == '/' {
			for l.pos < len(l.input) && l.peek(0) != '\n' {
				l.advance()
			}
		} else {
			return
		}
	}
}

func (l *lexer) lexNumber() Token {
	startLine, startCol := l.line, l.col
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.peek(0)) {
		l.advance()
	}
	return Token{Type: INT, Literal: l.input[start:l.pos], Line: startLine, Col: startCol}
}

func (l *lexer) lexIdentOrKeyword() Token {
	startLine, startCol := l.line, l.col
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.peek(0)) || isDigit(l.peek(0))) {
		l.advance()
	}
	lit := l.input[start:l.pos]

	typ := IDENT
	if lit == "if" {
		typ = IF
	} else if lit == "out" {
		typ = OUT
	}
	return Token{Type: typ, Literal: lit, Line: startLine, Col: startCol}
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

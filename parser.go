package main

import "strconv"

// parser consumes the token slice produced by Tokenize. Parsing is strictly
// predictive: every rule peeks one token to pick its branch and no rule ever
// un-consumes a token. The first error aborts parsing entirely.
type parser struct {
	tokens []Token
	pos    int
}

// Parse builds a NodeProgram AST from the token slice, or returns a
// *ParseError for the first token sequence that does not match the grammar.
func Parse(tokens []Token) (*ASTNode, error) {
	p := &parser{tokens: tokens}

	prog := &ASTNode{Kind: NodeProgram, Line: 1, Col: 1}
	for !p.check(EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Children = append(prog.Children, stmt)
	}
	return prog, nil
}

func (p *parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	// Past the end: report the EOF token, which is always last.
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) check(typ TokenType) bool {
	return p.peek().Type == typ
}

func (p *parser) expect(typ TokenType, msg string) (Token, error) {
	if !p.check(typ) {
		return Token{}, &ParseError{Expected: msg, Got: p.peek()}
	}
	return p.advance(), nil
}

// statement := assignment | if_stmt | out_stmt, dispatched by the first token.
func (p *parser) parseStatement() (*ASTNode, error) {
	switch p.peek().Type {
	case IF:
		return p.parseIf()
	case OUT:
		return p.parseOut()
	case IDENT:
		return p.parseAssignment()
	default:
		return nil, &ParseError{Expected: "expected a statement", Got: p.peek()}
	}
}

// assignment := IDENT '=' expr ';'
func (p *parser) parseAssignment() (*ASTNode, error) {
	id, err := p.expect(IDENT, "expected identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "expected '=' after identifier"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return &ASTNode{
		Kind:     NodeAssign,
		Name:     id.Literal,
		Line:     id.Line,
		Col:      id.Col,
		Children: []*ASTNode{value},
	}, nil
}

// if_stmt := 'if' '(' expr ')' '{' statement* '}'
// Braces are mandatory and there is no else branch.
func (p *parser) parseIf() (*ASTNode, error) {
	tok, err := p.expect(IF, "expected 'if'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "expected ')' after condition"); err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE, "expected '{' to open if-body"); err != nil {
		return nil, err
	}

	children := []*ASTNode{cond}
	for !p.check(RBRACE) && !p.check(EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		children = append(children, stmt)
	}
	if _, err := p.expect(RBRACE, "expected '}' to close if-body"); err != nil {
		return nil, err
	}
	return &ASTNode{
		Kind:     NodeIf,
		Line:     tok.Line,
		Col:      tok.Col,
		Children: children,
	}, nil
}

// out_stmt := 'out' expr ';'
func (p *parser) parseOut() (*ASTNode, error) {
	tok, err := p.expect(OUT, "expected 'out'")
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON, "expected ';' after out-expression"); err != nil {
		return nil, err
	}
	return &ASTNode{
		Kind:     NodeOut,
		Line:     tok.Line,
		Col:      tok.Col,
		Children: []*ASTNode{expr},
	}, nil
}

// Expression grammar, lowest binding first. Every level is left-associative,
// including comparison: a==b==c parses as (a==b)==c.

func (p *parser) parseExpr() (*ASTNode, error) {
	return p.parseComparison()
}

// comparison := add_sub (('=='|'!='|'<'|'>'|'<='|'>=') add_sub)*
func (p *parser) parseComparison() (*ASTNode, error) {
	left, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	for p.check(EQ) || p.check(NOT_EQ) || p.check(LT) || p.check(GT) || p.check(LE) || p.check(GE) {
		op := p.advance()
		right, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		left = &ASTNode{
			Kind:     NodeBinary,
			Op:       op.Literal,
			Line:     op.Line,
			Col:      op.Col,
			Children: []*ASTNode{left, right},
		}
	}
	return left, nil
}

// add_sub := mul_div (('+'|'-') mul_div)*
func (p *parser) parseAddSub() (*ASTNode, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		op := p.advance()
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		left = &ASTNode{
			Kind:     NodeBinary,
			Op:       op.Literal,
			Line:     op.Line,
			Col:      op.Col,
			Children: []*ASTNode{left, right},
		}
	}
	return left, nil
}

// mul_div := primary (('*'|'/') primary)*
func (p *parser) parseMulDiv() (*ASTNode, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.check(ASTERISK) || p.check(SLASH) {
		op := p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &ASTNode{
			Kind:     NodeBinary,
			Op:       op.Literal,
			Line:     op.Line,
			Col:      op.Col,
			Children: []*ASTNode{left, right},
		}
	}
	return left, nil
}

// primary := INT_LITERAL | IDENT | '(' expr ')'
func (p *parser) parsePrimary() (*ASTNode, error) {
	switch p.peek().Type {
	case INT:
		tok := p.advance()
		val, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, &ParseError{Expected: "expected a 64-bit integer literal", Got: tok}
		}
		return &ASTNode{Kind: NodeInteger, Integer: val, Line: tok.Line, Col: tok.Col}, nil

	case IDENT:
		tok := p.advance()
		return &ASTNode{Kind: NodeIdent, Name: tok.Literal, Line: tok.Line, Col: tok.Col}, nil

	case LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "expected ')' to close expression"); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, &ParseError{Expected: "expected expression", Got: p.peek()}
	}
}

package main

import (
	"testing"

	"github.com/nalgeon/be"
)

// parseExprSExpr parses "out <input>;" and returns the s-expression of the
// out statement's expression.
func parseExprSExpr(t *testing.T, input string) string {
	t.Helper()
	tokens, err := Tokenize("out " + input + ";")
	be.Err(t, err, nil)
	prog, err := Parse(tokens)
	be.Err(t, err, nil)
	be.Equal(t, len(prog.Children), 1)
	return prog.Children[0].Children[0].SExpr()
}

func parseExprError(t *testing.T, input string) error {
	t.Helper()
	tokens, err := Tokenize("out " + input + ";")
	be.Err(t, err, nil)
	_, err = Parse(tokens)
	be.True(t, err != nil)
	return err
}

func TestParseIntegerLiteral(t *testing.T) {
	be.Equal(t, parseExprSExpr(t, "42"), `(integer 42)`)
}

func TestParseIdentifier(t *testing.T) {
	be.Equal(t, parseExprSExpr(t, "foo"), `(ident "foo")`)
}

func TestParsePrecedenceMulOverAdd(t *testing.T) {
	be.Equal(t, parseExprSExpr(t, "1 + 2 * 3"),
		`(binary "+" (integer 1) (binary "*" (integer 2) (integer 3)))`)
	be.Equal(t, parseExprSExpr(t, "1 * 2 + 3"),
		`(binary "+" (binary "*" (integer 1) (integer 2)) (integer 3))`)
}

func TestParsePrecedenceCmpLowest(t *testing.T) {
	be.Equal(t, parseExprSExpr(t, "a + b < c * d"),
		`(binary "<" (binary "+" (ident "a") (ident "b")) (binary "*" (ident "c") (ident "d")))`)
}

func TestParseLeftAssociativity(t *testing.T) {
	be.Equal(t, parseExprSExpr(t, "1 - 2 - 3"),
		`(binary "-" (binary "-" (integer 1) (integer 2)) (integer 3))`)
	be.Equal(t, parseExprSExpr(t, "8 / 4 / 2"),
		`(binary "/" (binary "/" (integer 8) (integer 4)) (integer 2))`)
}

func TestParseChainedComparison(t *testing.T) {
	// Comparisons chain left-associatively like any other binary operator:
	// a == b == c compares the first result against c.
	be.Equal(t, parseExprSExpr(t, "a == b == c"),
		`(binary "==" (binary "==" (ident "a") (ident "b")) (ident "c"))`)
	be.Equal(t, parseExprSExpr(t, "1 < 2 < 3"),
		`(binary "<" (binary "<" (integer 1) (integer 2)) (integer 3))`)
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	be.Equal(t, parseExprSExpr(t, "(1 + 2) * 3"),
		`(binary "*" (binary "+" (integer 1) (integer 2)) (integer 3))`)
}

func TestParseNestedParentheses(t *testing.T) {
	be.Equal(t, parseExprSExpr(t, "((x))"), `(ident "x")`)
}

func TestParseAllComparisonOperators(t *testing.T) {
	for _, op := range []string{"==", "!=", "<", ">", "<=", ">="} {
		be.Equal(t, parseExprSExpr(t, "a "+op+" b"),
			`(binary "`+op+`" (ident "a") (ident "b"))`)
	}
}

func TestParseMissingClosingParen(t *testing.T) {
	err := parseExprError(t, "(1 + 2")
	be.Err(t, err, "expected ')' to close expression")
}

func TestParseDanglingOperator(t *testing.T) {
	err := parseExprError(t, "1 +")
	be.Err(t, err, "expected expression")
}

func TestParseEmptyParens(t *testing.T) {
	err := parseExprError(t, "()")
	be.Err(t, err, "expected expression")
}

func TestParseExprPositions(t *testing.T) {
	tokens, err := Tokenize("out 1 + 2;")
	be.Err(t, err, nil)
	prog, err := Parse(tokens)
	be.Err(t, err, nil)
	add := prog.Children[0].Children[0]
	be.Equal(t, add.Kind, NodeBinary)
	// A binary node carries the position of its operator token.
	be.Equal(t, add.Line, 1)
	be.Equal(t, add.Col, 7)
}

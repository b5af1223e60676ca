package mdtest

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestParseSymbol(t *testing.T) {
	node, err := Parse("program")
	be.Err(t, err, nil)
	be.Equal(t, node.Type, NodeSymbol)
	be.Equal(t, node.Text, "program")
}

func TestParseString(t *testing.T) {
	node, err := Parse(`"hello"`)
	be.Err(t, err, nil)
	be.Equal(t, node.Type, NodeString)
	be.Equal(t, node.Text, "hello")
}

func TestParseStringWithEscapes(t *testing.T) {
	node, err := Parse(`"say \"hi\""`)
	be.Err(t, err, nil)
	be.Equal(t, node.Text, `say "hi"`)
}

func TestParseInteger(t *testing.T) {
	node, err := Parse("42")
	be.Err(t, err, nil)
	be.Equal(t, node.Type, NodeInteger)
	be.Equal(t, node.Text, "42")
}

func TestParseNegativeInteger(t *testing.T) {
	node, err := Parse("-7")
	be.Err(t, err, nil)
	be.Equal(t, node.Type, NodeInteger)
	be.Equal(t, node.Text, "-7")
}

func TestParseEllipsis(t *testing.T) {
	node, err := Parse("...")
	be.Err(t, err, nil)
	be.Equal(t, node.Type, NodeEllipsis)
}

func TestParseList(t *testing.T) {
	node, err := Parse(`(assign "x" (integer 10))`)
	be.Err(t, err, nil)
	be.Equal(t, node.Type, NodeList)
	be.Equal(t, len(node.Items), 3)
	be.Equal(t, node.Items[0].Text, "assign")
	be.Equal(t, node.Items[1].Type, NodeString)
	be.Equal(t, node.Items[2].Type, NodeList)
}

func TestParseNestedList(t *testing.T) {
	node, err := Parse(`(binary "+" (integer 1) (integer 2))`)
	be.Err(t, err, nil)
	be.Equal(t, node.String(), `(binary "+" (integer 1) (integer 2))`)
}

func TestParseUnterminatedList(t *testing.T) {
	_, err := Parse("(program")
	be.Err(t, err, "unterminated list")
}

func TestParseUnterminatedString(t *testing.T) {
	_, err := Parse(`"oops`)
	be.Err(t, err, "unterminated string")
}

func TestParseTrailingInput(t *testing.T) {
	_, err := Parse("(program) extra")
	be.Err(t, err, "trailing input")
}

func TestMatchExact(t *testing.T) {
	pattern, err := Parse(`(ident "x")`)
	be.Err(t, err, nil)
	actual, err := Parse(`(ident "x")`)
	be.Err(t, err, nil)
	be.True(t, Match(pattern, actual))
}

func TestMatchMismatchedAtom(t *testing.T) {
	pattern, err := Parse(`(ident "x")`)
	be.Err(t, err, nil)
	actual, err := Parse(`(ident "y")`)
	be.Err(t, err, nil)
	be.True(t, !Match(pattern, actual))
}

func TestMatchMismatchedLength(t *testing.T) {
	pattern, err := Parse(`(program (out (integer 1)))`)
	be.Err(t, err, nil)
	actual, err := Parse(`(program (out (integer 1)) (out (integer 2)))`)
	be.Err(t, err, nil)
	be.True(t, !Match(pattern, actual))
}

func TestMatchEllipsisTail(t *testing.T) {
	pattern, err := Parse(`(program (assign "x" ...) ...)`)
	be.Err(t, err, nil)
	actual, err := Parse(`(program (assign "x" (integer 10)) (out (ident "x")))`)
	be.Err(t, err, nil)
	be.True(t, Match(pattern, actual))
}

func TestMatchEllipsisEmptyTail(t *testing.T) {
	pattern, err := Parse(`(program ...)`)
	be.Err(t, err, nil)
	actual, err := Parse(`(program)`)
	be.Err(t, err, nil)
	be.True(t, Match(pattern, actual))
}

func TestMatchTypeMismatch(t *testing.T) {
	pattern, err := Parse(`(integer 1)`)
	be.Err(t, err, nil)
	actual, err := Parse(`(ident "x")`)
	be.Err(t, err, nil)
	be.True(t, !Match(pattern, actual))
}

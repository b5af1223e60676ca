// Package mdtest extracts compiler test cases from Markdown documents and
// matches AST s-expressions against expected patterns.
//
// A test document contains headings of the form "Test: <name>", each followed
// by one input fence (nano-program or nano-expr) and one or more assertion
// fences (ast, ir, error, output). AST assertions are s-expressions; the
// symbol "..." matches any remaining items of a list.
package mdtest

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of an s-expression Node.
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeEllipsis
	NodeList
)

// Node is one s-expression datum.
type Node struct {
	Type  NodeType
	Text  string  // NodeSymbol, NodeString, NodeInteger
	Items []*Node // NodeList
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		return "\"" + escaped + "\""
	case NodeInteger:
		return n.Text
	case NodeEllipsis:
		return "..."
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

// Match reports whether actual matches the pattern. Atoms match by type and
// text; lists match item by item, except that an ellipsis in the pattern
// matches all remaining items of the actual list.
func Match(pattern, actual *Node) bool {
	if pattern.Type == NodeEllipsis {
		return true
	}
	if pattern.Type != actual.Type {
		return false
	}
	if pattern.Type != NodeList {
		return pattern.Text == actual.Text
	}

	for i, item := range pattern.Items {
		if item.Type == NodeEllipsis {
			return true
		}
		if i >= len(actual.Items) {
			return false
		}
		if !Match(item, actual.Items[i]) {
			return false
		}
	}
	return len(pattern.Items) == len(actual.Items)
}

// Parse parses a single s-expression datum.
func Parse(input string) (*Node, error) {
	p := &sexprParser{input: input}
	p.skipSpace()
	node, err := p.parseDatum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("unexpected trailing input at offset %d", p.pos)
	}
	return node, nil
}

type sexprParser struct {
	input string
	pos   int
}

func (p *sexprParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *sexprParser) parseDatum() (*Node, error) {
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("unexpected end of input")
	}

	switch c := p.input[p.pos]; {
	case c == '(':
		return p.parseList()
	case c == '"':
		return p.parseString()
	case c == '-' || ('0' <= c && c <= '9'):
		return p.parseInteger()
	default:
		return p.parseSymbolOrEllipsis()
	}
}

func (p *sexprParser) parseList() (*Node, error) {
	p.pos++ // consume '('
	list := &Node{Type: NodeList}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("unterminated list")
		}
		if p.input[p.pos] == ')' {
			p.pos++
			return list, nil
		}
		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
}

func (p *sexprParser) parseString() (*Node, error) {
	p.pos++ // consume opening '"'
	var sb strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '"' {
			p.pos++
			return &Node{Type: NodeString, Text: sb.String()}, nil
		}
		if c == '\\' && p.pos+1 < len(p.input) {
			p.pos++
			c = p.input[p.pos]
		}
		sb.WriteByte(c)
		p.pos++
	}
	return nil, fmt.Errorf("unterminated string")
}

func (p *sexprParser) parseInteger() (*Node, error) {
	start := p.pos
	if p.input[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.input) && '0' <= p.input[p.pos] && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start || (p.pos == start+1 && p.input[start] == '-') {
		return nil, fmt.Errorf("malformed integer at offset %d", start)
	}
	return &Node{Type: NodeInteger, Text: p.input[start:p.pos]}, nil
}

func (p *sexprParser) parseSymbolOrEllipsis() (*Node, error) {
	start := p.pos
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("unexpected character %q at offset %d", p.input[p.pos], p.pos)
	}
	text := p.input[start:p.pos]
	if text == "..." {
		return &Node{Type: NodeEllipsis}, nil
	}
	return &Node{Type: NodeSymbol, Text: text}, nil
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '"' || unicode.IsSpace(rune(c))
}

package main

import "strconv"

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeProgram NodeKind = "NodeProgram"
	NodeAssign  NodeKind = "NodeAssign"
	NodeIf      NodeKind = "NodeIf"
	NodeOut     NodeKind = "NodeOut"
	NodeBinary  NodeKind = "NodeBinary"
	NodeIdent   NodeKind = "NodeIdent"
	NodeInteger NodeKind = "NodeInteger"
)

// ASTNode represents a node in the Abstract Syntax Tree. The kind set is
// closed: codegen switches exhaustively over it. Every node carries the line
// and column of its defining token so a debugger can resolve it to a
// breakpoint.
type ASTNode struct {
	Kind NodeKind
	Line int
	Col  int
	// NodeInteger:
	Integer int64
	// NodeIdent, NodeAssign (target name):
	Name string
	// NodeBinary:
	Op string // "+", "-", "*", "/", "==", "!=", "<", ">", "<=", ">="
	// NodeProgram: statements
	// NodeAssign:  [value]
	// NodeIf:      [condition, body statements...]
	// NodeOut:     [expression]
	// NodeBinary:  [left, right]
	Children []*ASTNode
}

// SExpr converts an AST node to its s-expression string representation.
// Used by tests and the markdown test framework.
func (n *ASTNode) SExpr() string {
	switch n.Kind {
	case NodeProgram:
		result := "(program"
		for _, child := range n.Children {
			result += " " + child.SExpr()
		}
		return result + ")"
	case NodeAssign:
		return "(assign \"" + n.Name + "\" " + n.Children[0].SExpr() + ")"
	case NodeIf:
		result := "(if " + n.Children[0].SExpr()
		for _, child := range n.Children[1:] {
			result += " " + child.SExpr()
		}
		return result + ")"
	case NodeOut:
		return "(out " + n.Children[0].SExpr() + ")"
	case NodeBinary:
		return "(binary \"" + n.Op + "\" " + n.Children[0].SExpr() + " " + n.Children[1].SExpr() + ")"
	case NodeIdent:
		return "(ident \"" + n.Name + "\")"
	case NodeInteger:
		return "(integer " + strconv.FormatInt(n.Integer, 10) + ")"
	default:
		return ""
	}
}

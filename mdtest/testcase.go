package mdtest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType says how a test case's input fence should be compiled.
type InputType string

const (
	// InputProgram is a whole program fed to the full pipeline.
	InputProgram InputType = "nano-program"
	// InputExpr is a single expression, wrapped in "out <expr>;" by the runner.
	InputExpr InputType = "nano-expr"
)

// AssertionType identifies what a test case asserts about its input.
type AssertionType string

const (
	// AssertAST matches the parsed AST against an s-expression pattern.
	AssertAST AssertionType = "ast"
	// AssertIR requires each non-blank line to appear, in order, in the
	// generated LLVM IR.
	AssertIR AssertionType = "ir"
	// AssertError requires compilation to fail with a message containing
	// the fence content.
	AssertError AssertionType = "error"
	// AssertOutput requires the compiled program to print the fence
	// content when run.
	AssertOutput AssertionType = "output"
)

// Assertion is one expectation attached to a test case.
type Assertion struct {
	Type    AssertionType
	Content string
	Line    int
}

// TestCase is one extracted "Test:" section of a markdown document.
type TestCase struct {
	Name       string
	InputType  InputType
	Input      string
	Assertions []Assertion
	Line       int
}

// ExtractTestCases parses a markdown document and returns every test case it
// defines. A test case starts at a heading of the form "Test: <name>" and
// runs until the next heading of equal or shallower level.
func ExtractTestCases(source []byte) ([]TestCase, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var cases []TestCase
	var current *TestCase
	currentLevel := 0

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			title := headingText(node, source)
			name, ok := strings.CutPrefix(title, "Test: ")
			if ok && current != nil && node.Level > currentLevel {
				return ast.WalkStop, fmt.Errorf(
					"line %d: test %q nested under test %q",
					headingLine(node, source), name, current.Name)
			}
			if current != nil && node.Level <= currentLevel {
				if err := finishTestCase(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
				current = nil
			}
			if ok {
				current = &TestCase{
					Name: strings.TrimSpace(name),
					Line: headingLine(node, source),
				}
				currentLevel = node.Level
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			if current == nil {
				return ast.WalkSkipChildren, nil
			}
			lang := string(node.Language(source))
			content := fenceContent(node, source)
			line := fenceLine(node, source)
			switch {
			case lang == string(InputProgram) || lang == string(InputExpr):
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf(
						"line %d: test %q has more than one input fence",
						line, current.Name)
				}
				current.InputType = InputType(lang)
				current.Input = content
			case isAssertionFence(lang):
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(lang),
					Content: content,
					Line:    line,
				})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if current != nil {
		if err := finishTestCase(current); err != nil {
			return nil, err
		}
		cases = append(cases, *current)
	}
	return cases, nil
}

func isAssertionFence(lang string) bool {
	switch AssertionType(lang) {
	case AssertAST, AssertIR, AssertError, AssertOutput:
		return true
	}
	return false
}

func finishTestCase(tc *TestCase) error {
	if tc.Input == "" {
		return fmt.Errorf("line %d: test %q has no input fence", tc.Line, tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("line %d: test %q has no assertions", tc.Line, tc.Name)
	}
	return nil
}

func headingText(heading *ast.Heading, source []byte) string {
	var sb strings.Builder
	for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
	}
	return sb.String()
}

func headingLine(heading *ast.Heading, source []byte) int {
	lines := heading.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return lineOfOffset(source, lines.At(0).Start)
}

func fenceContent(fence *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := fence.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

func fenceLine(fence *ast.FencedCodeBlock, source []byte) int {
	lines := fence.Lines()
	if lines.Len() == 0 {
		return 0
	}
	// Lines() covers the fence body, the opening marker is one line above.
	return lineOfOffset(source, lines.At(0).Start) - 1
}

func lineOfOffset(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return 1 + bytes.Count(source[:offset], []byte("\n"))
}

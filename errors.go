package main

import "fmt"

// The three fatal error kinds. Each aborts the whole compilation: no partial
// output, no recovery, no multi-error reporting.

// LexError reports an unrecognized character, or a '!' not followed by '='.
type LexError struct {
	Ch   rune
	Line int
	Col  int
}

func (e *LexError) Error() string {
	if e.Ch == '!' {
		return fmt.Sprintf("lex error at line %d, col %d: unexpected '!' (did you mean '!='?)", e.Line, e.Col)
	}
	return fmt.Sprintf("lex error at line %d, col %d: unexpected character %q", e.Line, e.Col, e.Ch)
}

// ParseError reports a token that does not match the grammar, along with what
// the parser expected at that position.
type ParseError struct {
	Expected string
	Got      Token
}

func (e *ParseError) Error() string {
	got := e.Got.Literal
	if e.Got.Type == EOF {
		got = "end of input"
	} else {
		got = "'" + got + "'"
	}
	return fmt.Sprintf("parse error at line %d, col %d: %s, got %s", e.Got.Line, e.Got.Col, e.Expected, got)
}

// CodegenError reports either a user-facing generation failure (an undefined
// variable reference) or, with Internal set, a structural defect in the
// generator itself discovered by module verification.
type CodegenError struct {
	Msg      string
	Line     int
	Col      int
	Internal bool
}

func (e *CodegenError) Error() string {
	if e.Internal {
		return "internal codegen error: " + e.Msg
	}
	return fmt.Sprintf("codegen error at line %d, col %d: %s", e.Line, e.Col, e.Msg)
}

func undefinedVariable(name string, line, col int) *CodegenError {
	return &CodegenError{
		Msg:  fmt.Sprintf("undefined variable '%s'", name),
		Line: line,
		Col:  col,
	}
}

package main

import "github.com/llir/llvm/ir"

// Compile runs the full pipeline on source text: tokenize, parse, generate,
// verify, optimize. The returned module is ready to serialize with String().
// Every call owns an isolated context; nothing is shared between compilations.
func Compile(source string, profile Profile) (*ir.Module, error) {
	return CompileNamed(source, "input.nano", ".", profile)
}

// CompileNamed is Compile with an explicit source file name and directory,
// which the debug-info compile unit records so a debugger can locate the
// original file.
func CompileNamed(source, sourceFile, sourceDir string, profile Profile) (*ir.Module, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	prog, err := Parse(tokens)
	if err != nil {
		return nil, err
	}
	return NewCodegen(sourceFile, sourceDir, profile).Generate(prog)
}

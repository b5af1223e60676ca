package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// generateIR compiles source with the given profile and returns the textual
// LLVM IR.
func generateIR(t *testing.T, source string, profile Profile) string {
	t.Helper()
	mod, err := Compile(source, profile)
	be.Err(t, err, nil)
	return mod.String()
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("expected IR to contain %q, got:\n%s", needle, haystack)
	}
}

func assertNotContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("expected IR to not contain %q, got:\n%s", needle, haystack)
	}
}

func TestGenAssignmentAndOut(t *testing.T) {
	ir := generateIR(t, "x = 10; out x;", Profile{})
	assertContains(t, ir, "alloca i64")
	assertContains(t, ir, "store i64 10")
	assertContains(t, ir, "load i64")
	assertContains(t, ir, "@printf")
	assertContains(t, ir, "ret i32 0")
}

func TestGenFormatStringGlobal(t *testing.T) {
	ir := generateIR(t, "out 1;", Profile{})
	assertContains(t, ir, "@.fmt")
	assertContains(t, ir, `c"%lld\0A\00"`)
	assertContains(t, ir, "private")
	assertContains(t, ir, "unnamed_addr")
}

func TestGenPrintfDeclaration(t *testing.T) {
	ir := generateIR(t, "out 1;", Profile{})
	assertContains(t, ir, "declare i32 @printf")
	assertContains(t, ir, "...")
}

func TestGenArithmetic(t *testing.T) {
	ir := generateIR(t, "x = 1; y = 2; out x + y; out x - y; out x * y; out x / y;", Profile{})
	assertContains(t, ir, "add i64")
	assertContains(t, ir, "sub i64")
	assertContains(t, ir, "mul i64")
	assertContains(t, ir, "sdiv i64")
}

func TestGenComparisonWidensToI64(t *testing.T) {
	ir := generateIR(t, "x = 1; out x < 2;", Profile{})
	assertContains(t, ir, "icmp slt i64")
	assertContains(t, ir, "sext i1")
}

func TestGenComparisonPredicates(t *testing.T) {
	cases := []struct {
		op   string
		pred string
	}{
		{"==", "icmp eq i64"},
		{"!=", "icmp ne i64"},
		{"<", "icmp slt i64"},
		{">", "icmp sgt i64"},
		{"<=", "icmp sle i64"},
		{">=", "icmp sge i64"},
	}
	for _, tc := range cases {
		ir := generateIR(t, "x = 1; out x "+tc.op+" 2;", Profile{})
		assertContains(t, ir, tc.pred)
	}
}

func TestGenIfBlocks(t *testing.T) {
	ir := generateIR(t, "x = 1; if (x > 0) { out x; }", Profile{})
	assertContains(t, ir, "br i1")
	assertContains(t, ir, "then")
	assertContains(t, ir, "merge")
}

func TestGenIfConditionTruthiness(t *testing.T) {
	// An arithmetic condition gets an explicit != 0 test.
	ir := generateIR(t, "x = 5; if (x) { out x; }", Profile{})
	assertContains(t, ir, "icmp ne i64")
	assertContains(t, ir, "0")
}

func TestGenIfComparisonConditionNotDoubleTested(t *testing.T) {
	// A comparison condition is widened to i64 by the expression rules, so the
	// if still synthesizes exactly one truthiness test over the widened value.
	ir := generateIR(t, "x = 1; if (x == 1) { out x; }", Profile{})
	be.Equal(t, strings.Count(ir, "icmp eq i64"), 1)
	be.Equal(t, strings.Count(ir, "icmp ne i64"), 1)
}

func TestGenEntryAllocaHoisting(t *testing.T) {
	// The first assignment to y sits inside the if-body, but its storage slot
	// still lands in the entry block, before the conditional branch.
	ir := generateIR(t, "x = 1; if (x) { y = 2; } out x;", Profile{})
	be.Equal(t, strings.Count(ir, "alloca i64"), 2)

	lastAlloca := strings.LastIndex(ir, "alloca i64")
	firstBranch := strings.Index(ir, "br i1")
	be.True(t, lastAlloca < firstBranch)
}

func TestGenReassignmentReusesSlot(t *testing.T) {
	ir := generateIR(t, "x = 1; x = x + 1; out x;", Profile{})
	be.Equal(t, strings.Count(ir, "alloca i64"), 1)
	be.Equal(t, strings.Count(ir, "store i64"), 2)
}

func TestGenIfBodyVariableStaysLive(t *testing.T) {
	// No lexical scoping: a variable first assigned inside an if-body is
	// visible after the if.
	ir := generateIR(t, "if (1) { y = 5; } out y;", Profile{})
	assertContains(t, ir, "load i64")
}

func TestGenUndefinedVariable(t *testing.T) {
	_, err := Compile("out y;", Profile{})
	be.Err(t, err, "undefined variable 'y'")

	var cgErr *CodegenError
	be.True(t, errors.As(err, &cgErr))
	be.Equal(t, cgErr.Line, 1)
	be.Equal(t, cgErr.Col, 5)
	be.True(t, !cgErr.Internal)
}

func TestGenUndefinedVariableInCondition(t *testing.T) {
	_, err := Compile("if (q > 0) { out 1; }", Profile{})
	be.Err(t, err, "undefined variable 'q'")
}

func TestGenUseBeforeAssignment(t *testing.T) {
	// Definedness follows traversal order, not whole-program knowledge.
	_, err := Compile("out x; x = 1;", Profile{})
	be.Err(t, err, "undefined variable 'x'")
}

func TestGenSelfReferenceOnFirstAssignment(t *testing.T) {
	// A first assignment may not read its own name on the right-hand side.
	_, err := Compile("x = x + 1;", Profile{})
	be.Err(t, err, "undefined variable 'x'")
}

func TestGenSelfReferenceAfterFirstAssignment(t *testing.T) {
	_, err := Compile("x = 1; x = x + 1;", Profile{})
	be.Err(t, err, nil)
}

func TestGenNativeTargetTriple(t *testing.T) {
	ir := generateIR(t, "out 1;", Profile{})
	assertContains(t, ir, "target triple = ")
	assertContains(t, ir, nativeTriple())
	assertContains(t, ir, "target datalayout = ")
}

func TestGenWASITarget(t *testing.T) {
	ir := generateIR(t, "out 1;", Profile{Target: TargetWASI})
	assertContains(t, ir, "wasm32-unknown-wasi")
	assertContains(t, ir, "@__main_void")
	assertContains(t, ir, "hidden")
	assertContains(t, ir, "alias")
}

func TestGenNativeHasNoWASIAlias(t *testing.T) {
	ir := generateIR(t, "out 1;", Profile{})
	assertNotContains(t, ir, "__main_void")
}

func TestGenEmptyProgram(t *testing.T) {
	ir := generateIR(t, "", Profile{})
	assertContains(t, ir, "ret i32 0")
}

func TestGenNoDebugMetadataByDefault(t *testing.T) {
	ir := generateIR(t, "x = 1; out x;", Profile{})
	assertNotContains(t, ir, "DICompileUnit")
	assertNotContains(t, ir, "!dbg")
}

package main

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// printf format string for the one supported integer type: "%lld\n" plus the
// terminating NUL.
const outFormat = "%lld\n\x00"

// Codegen owns the IR-building context for one Generate call: the module, the
// insertion cursor and the variable table. It is never shared or reused.
type Codegen struct {
	profile Profile

	mod   *ir.Module
	fn    *ir.Func
	entry *ir.Block
	cur   *ir.Block // current insertion block

	// Variable table: name -> storage slot. Flat, keyed by name, populated on
	// first assignment in traversal order. There is no lexical scoping:
	// a variable declared inside an if-body stays live afterwards.
	variables map[string]*ir.InstAlloca

	printf  *ir.Func
	fmtStr  *ir.Global
	fmtType *types.ArrayType

	blockNum int

	dbg *debugInfo // nil when the debug-info axis is off
}

// NewCodegen prepares a generator for one compilation unit. sourceFile and
// sourceDir identify the .nano file for the debug-info compile unit.
func NewCodegen(sourceFile, sourceDir string, profile Profile) *Codegen {
	c := &Codegen{
		profile:   profile,
		mod:       ir.NewModule(),
		variables: make(map[string]*ir.InstAlloca),
	}

	c.mod.SourceFilename = sourceFile
	c.mod.TargetTriple = profile.triple()
	c.mod.DataLayout = profile.dataLayout()

	if profile.DebugInfo {
		c.dbg = newDebugInfo(c.mod, sourceFile, sourceDir, profile.Opt != OptNone)
	}

	c.declarePrintf()
	return c
}

// Generate walks the program once, emitting everything into a single main
// function, then finalizes debug info, verifies the module and runs the
// selected optimization pipeline.
func (c *Codegen) Generate(prog *ASTNode) (*ir.Module, error) {
	if prog.Kind != NodeProgram {
		return nil, &CodegenError{Msg: "generate called on a non-program node", Internal: true}
	}

	c.createMainFunction()

	for _, stmt := range prog.Children {
		if err := c.genStatement(stmt); err != nil {
			return nil, err
		}
	}

	// Implicit success return.
	ret := c.cur.NewRet(constant.NewInt(types.I32, 0))
	c.stamp(ret, 1, 1)

	if c.dbg != nil {
		c.dbg.finalize()
	}
	c.emitModuleFlags()
	assignMetadataIDs(c.mod)

	// Verification failure is a defect in this generator, not in the program
	// being compiled. Abort with full detail before any optimization runs.
	if err := verifyModule(c.mod); err != nil {
		return nil, &CodegenError{Msg: err.Error(), Internal: true}
	}

	optimizeModule(c.mod, c.profile.Opt)
	return c.mod, nil
}

// declarePrintf declares the external variadic printf primitive and the
// private global holding the format string.
func (c *Codegen) declarePrintf() {
	c.printf = c.mod.NewFunc("printf", types.I32, ir.NewParam("", types.I8Ptr))
	c.printf.Sig.Variadic = true

	fmtData := constant.NewCharArrayFromString(outFormat)
	c.fmtType = fmtData.Typ
	c.fmtStr = c.mod.NewGlobalDef(".fmt", fmtData)
	c.fmtStr.Immutable = true
	c.fmtStr.Linkage = enum.LinkagePrivate
	c.fmtStr.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
	c.fmtStr.Align = 1
}

func (c *Codegen) createMainFunction() {
	c.fn = c.mod.NewFunc("main", types.I32)

	if c.profile.Target == TargetWASI {
		// wasm32-wasi: crt1's _start resolves __main_void rather than main.
		// Emit the hidden external-linkage alias clang would generate from C
		// source so wasm-ld can link the startup stub against this module.
		c.fn.Visibility = enum.VisibilityHidden
		alias := c.mod.NewAlias("__main_void", c.fn)
		alias.Linkage = enum.LinkageExternal
		alias.Visibility = enum.VisibilityHidden
	}

	if c.dbg != nil {
		c.dbg.attachMain(c.fn)
	}

	c.entry = c.fn.NewBlock("entry")
	c.cur = c.entry
}

func (c *Codegen) genStatement(stmt *ASTNode) error {
	switch stmt.Kind {
	case NodeAssign:
		return c.genAssignment(stmt)
	case NodeIf:
		return c.genIf(stmt)
	case NodeOut:
		return c.genOut(stmt)
	default:
		return &CodegenError{Msg: fmt.Sprintf("unknown statement kind %s", stmt.Kind), Internal: true}
	}
}

func (c *Codegen) genAssignment(node *ASTNode) error {
	slot, seen := c.variables[node.Name]
	if !seen {
		slot = c.createEntryAlloca(node.Name)
		if c.dbg != nil {
			c.dbg.declareVariable(node.Name, node.Line, node.Col)
		}
	}

	// The table entry is recorded only after the right-hand side has been
	// generated: a first assignment may not reference its own name, and falls
	// through to the undefined-variable error.
	val, err := c.genExpr(node.Children[0])
	if err != nil {
		return err
	}
	if !seen {
		c.variables[node.Name] = slot
	}

	store := c.cur.NewStore(val, slot)
	c.stamp(store, node.Line, node.Col)
	return nil
}

func (c *Codegen) genIf(node *ASTNode) error {
	cond, err := c.genExpr(node.Children[0])
	if err != nil {
		return err
	}

	// An arithmetic condition is not a one-bit truth value yet; truthiness is
	// "not equal to zero".
	if !cond.Type().Equal(types.I1) {
		test := c.cur.NewICmp(enum.IPredNE, cond, constant.NewInt(types.I64, 0))
		test.SetName(c.uniqueName("ifcond"))
		c.stamp(test, node.Line, node.Col)
		cond = test
	}

	thenBlock := c.fn.NewBlock(c.uniqueName("then"))
	mergeBlock := c.fn.NewBlock(c.uniqueName("merge"))

	br := c.cur.NewCondBr(cond, thenBlock, mergeBlock)
	c.stamp(br, node.Line, node.Col)

	c.cur = thenBlock
	for _, stmt := range node.Children[1:] {
		if err := c.genStatement(stmt); err != nil {
			return err
		}
	}

	// The language has no early exit, so the body cannot have terminated the
	// block itself, but check before appending the fall-through branch.
	if c.cur.Term == nil {
		end := c.cur.NewBr(mergeBlock)
		c.stamp(end, node.Line, node.Col)
	}

	c.cur = mergeBlock
	return nil
}

func (c *Codegen) genOut(node *ASTNode) error {
	val, err := c.genExpr(node.Children[0])
	if err != nil {
		return err
	}

	zero := constant.NewInt(types.I32, 0)
	fmtPtr := c.cur.NewGetElementPtr(c.fmtType, c.fmtStr, zero, zero)
	fmtPtr.InBounds = true
	fmtPtr.SetName(c.uniqueName("fmtptr"))

	call := c.cur.NewCall(c.printf, fmtPtr, val)
	c.stamp(call, node.Line, node.Col)
	return nil
}

// genExpr evaluates an expression post-order and returns its i64 value.
// Comparisons are widened back to i64 before they escape, so every
// expression has the one supported integer type.
func (c *Codegen) genExpr(expr *ASTNode) (value.Value, error) {
	switch expr.Kind {
	case NodeInteger:
		return constant.NewInt(types.I64, expr.Integer), nil

	case NodeIdent:
		slot, ok := c.variables[expr.Name]
		if !ok {
			return nil, undefinedVariable(expr.Name, expr.Line, expr.Col)
		}
		load := c.cur.NewLoad(types.I64, slot)
		load.SetName(c.uniqueName(expr.Name))
		c.stamp(load, expr.Line, expr.Col)
		return load, nil

	case NodeBinary:
		lhs, err := c.genExpr(expr.Children[0])
		if err != nil {
			return nil, err
		}
		rhs, err := c.genExpr(expr.Children[1])
		if err != nil {
			return nil, err
		}
		return c.genBinaryOp(expr, lhs, rhs)

	default:
		return nil, &CodegenError{Msg: fmt.Sprintf("unknown expression kind %s", expr.Kind), Internal: true}
	}
}

// genBinaryOp selects the native operation by operator string. Debug
// locations go on the final instruction produced for the construct, so
// stepping lands on the operation that yields its value.
func (c *Codegen) genBinaryOp(node *ASTNode, lhs, rhs value.Value) (value.Value, error) {
	switch node.Op {
	case "+":
		inst := c.cur.NewAdd(lhs, rhs)
		inst.SetName(c.uniqueName("add"))
		c.stamp(inst, node.Line, node.Col)
		return inst, nil
	case "-":
		inst := c.cur.NewSub(lhs, rhs)
		inst.SetName(c.uniqueName("sub"))
		c.stamp(inst, node.Line, node.Col)
		return inst, nil
	case "*":
		inst := c.cur.NewMul(lhs, rhs)
		inst.SetName(c.uniqueName("mul"))
		c.stamp(inst, node.Line, node.Col)
		return inst, nil
	case "/":
		inst := c.cur.NewSDiv(lhs, rhs)
		inst.SetName(c.uniqueName("div"))
		c.stamp(inst, node.Line, node.Col)
		return inst, nil
	}

	var pred enum.IPred
	switch node.Op {
	case "==":
		pred = enum.IPredEQ
	case "!=":
		pred = enum.IPredNE
	case "<":
		pred = enum.IPredSLT
	case ">":
		pred = enum.IPredSGT
	case "<=":
		pred = enum.IPredSLE
	case ">=":
		pred = enum.IPredSGE
	default:
		return nil, &CodegenError{Msg: fmt.Sprintf("unknown operator %q", node.Op), Internal: true}
	}

	cmp := c.cur.NewICmp(pred, lhs, rhs)
	cmp.SetName(c.uniqueName("cmp"))
	// Widen the one-bit result back to i64 so true/false participate in
	// further arithmetic and chained comparisons.
	ext := c.cur.NewSExt(cmp, types.I64)
	ext.SetName(c.uniqueName("cmpext"))
	c.stamp(ext, node.Line, node.Col)
	return ext, nil
}

// createEntryAlloca inserts a new i64 storage slot in the entry block, after
// the existing allocas but before the first real instruction. Storage stays
// hoisted no matter how deep in nested conditionals the first assignment sits.
func (c *Codegen) createEntryAlloca(name string) *ir.InstAlloca {
	slot := ir.NewAlloca(types.I64)
	slot.SetName(name)

	idx := 0
	for idx < len(c.entry.Insts) {
		if _, ok := c.entry.Insts[idx].(*ir.InstAlloca); !ok {
			break
		}
		idx++
	}
	c.entry.Insts = append(c.entry.Insts, nil)
	copy(c.entry.Insts[idx+1:], c.entry.Insts[idx:])
	c.entry.Insts[idx] = slot
	return slot
}

func (c *Codegen) uniqueName(base string) string {
	c.blockNum++
	return fmt.Sprintf("%s%d", base, c.blockNum)
}

// stamp attaches a !dbg location to an emitted instruction when the
// debug-info axis is on.
func (c *Codegen) stamp(inst any, line, col int) {
	if c.dbg == nil {
		return
	}
	c.dbg.stamp(inst, line, col)
}

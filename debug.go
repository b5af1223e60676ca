package main

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/metadata"
	"github.com/llir/llvm/ir/types"
)

// debugInfo builds the DWARF-style metadata emitted alongside the IR: a
// compile-unit/file/subprogram descriptor chain, one local-variable record per
// declared variable, and per-instruction source locations. It exists only
// when the profile's debug-info axis is on.
type debugInfo struct {
	mod *ir.Module

	file    *metadata.DIFile
	cu      *metadata.DICompileUnit
	sp      *metadata.DISubprogram
	int64Ty *metadata.DIBasicType

	vars []*metadata.DILocalVariable
	seen map[string]bool
	locs map[[2]int]*metadata.DILocation
}

func newDebugInfo(mod *ir.Module, sourceFile, sourceDir string, optimized bool) *debugInfo {
	d := &debugInfo{
		mod:  mod,
		seen: make(map[string]bool),
		locs: make(map[[2]int]*metadata.DILocation),
	}

	d.file = &metadata.DIFile{Filename: sourceFile, Directory: sourceDir}
	d.cu = &metadata.DICompileUnit{
		Distinct:     true,
		Language:     enum.DwarfLangC,
		File:         d.file,
		Producer:     "nanoc 1.0",
		IsOptimized:  optimized,
		EmissionKind: enum.EmissionKindFullDebug,
	}
	d.int64Ty = &metadata.DIBasicType{
		Name:     "int64",
		Size:     64,
		Encoding: enum.DwarfAttEncodingSigned,
	}
	mod.MetadataDefs = append(mod.MetadataDefs, d.file, d.cu, d.int64Ty)

	mod.NamedMetadataDefs["llvm.dbg.cu"] = &metadata.NamedDef{
		Name:  "llvm.dbg.cu",
		Nodes: []metadata.Node{d.cu},
	}
	return d
}

// attachMain creates the subprogram descriptor for the entry function and
// attaches it, so every DILocation below has a scope a debugger understands.
func (d *debugInfo) attachMain(fn *ir.Func) {
	retTy := &metadata.DIBasicType{
		Name:     "int",
		Size:     32,
		Encoding: enum.DwarfAttEncodingSigned,
	}
	sig := &metadata.Tuple{Fields: []metadata.Field{retTy}}
	subTy := &metadata.DISubroutineType{Types: sig}

	d.sp = &metadata.DISubprogram{
		Distinct:  true,
		Name:      fn.Name(),
		Scope:     d.file,
		File:      d.file,
		Line:      1,
		ScopeLine: 1,
		Type:      subTy,
		Flags:     enum.DIFlagPrototyped,
		SPFlags:   enum.DISPFlagDefinition,
		Unit:      d.cu,
	}
	d.mod.MetadataDefs = append(d.mod.MetadataDefs, retTy, sig, subTy, d.sp)

	fn.Metadata = append(fn.Metadata, &metadata.Attachment{Name: "dbg", Node: d.sp})
}

// declareVariable records the declaration of a variable at its
// first-assignment position. Exactly one record exists per distinct name.
func (d *debugInfo) declareVariable(name string, line, col int) {
	if d.seen[name] {
		return
	}
	d.seen[name] = true

	v := &metadata.DILocalVariable{
		Name:  name,
		Scope: d.sp,
		File:  d.file,
		Line:  int64(line),
		Type:  d.int64Ty,
	}
	d.vars = append(d.vars, v)
	d.mod.MetadataDefs = append(d.mod.MetadataDefs, v)
}

func (d *debugInfo) location(line, col int) *metadata.DILocation {
	key := [2]int{line, col}
	if loc, ok := d.locs[key]; ok {
		return loc
	}
	loc := &metadata.DILocation{
		Line:   int64(line),
		Column: int64(col),
		Scope:  d.sp,
	}
	d.locs[key] = loc
	d.mod.MetadataDefs = append(d.mod.MetadataDefs, loc)
	return loc
}

// stamp attaches a !dbg location to the given instruction or terminator.
// llir has no common metadata accessor across instruction types, hence the
// switch over the kinds this generator emits.
func (d *debugInfo) stamp(inst any, line, col int) {
	att := &metadata.Attachment{Name: "dbg", Node: d.location(line, col)}
	switch v := inst.(type) {
	case *ir.InstAlloca:
		v.Metadata = append(v.Metadata, att)
	case *ir.InstLoad:
		v.Metadata = append(v.Metadata, att)
	case *ir.InstStore:
		v.Metadata = append(v.Metadata, att)
	case *ir.InstAdd:
		v.Metadata = append(v.Metadata, att)
	case *ir.InstSub:
		v.Metadata = append(v.Metadata, att)
	case *ir.InstMul:
		v.Metadata = append(v.Metadata, att)
	case *ir.InstSDiv:
		v.Metadata = append(v.Metadata, att)
	case *ir.InstICmp:
		v.Metadata = append(v.Metadata, att)
	case *ir.InstSExt:
		v.Metadata = append(v.Metadata, att)
	case *ir.InstCall:
		v.Metadata = append(v.Metadata, att)
	case *ir.InstGetElementPtr:
		v.Metadata = append(v.Metadata, att)
	case *ir.TermRet:
		v.Metadata = append(v.Metadata, att)
	case *ir.TermBr:
		v.Metadata = append(v.Metadata, att)
	case *ir.TermCondBr:
		v.Metadata = append(v.Metadata, att)
	}
}

// finalize ties the per-variable records into the subprogram descriptor.
func (d *debugInfo) finalize() {
	if d.sp == nil || len(d.vars) == 0 {
		return
	}
	retained := &metadata.Tuple{}
	for _, v := range d.vars {
		retained.Fields = append(retained.Fields, v)
	}
	d.sp.RetainedNodes = retained
	d.mod.MetadataDefs = append(d.mod.MetadataDefs, retained)
}

// emitModuleFlags records the target- and debug-dependent module flags.
func (c *Codegen) emitModuleFlags() {
	var flags []metadata.Node
	if c.profile.Target == TargetNative {
		flags = append(flags, c.moduleFlag(7, "PIC Level", 2)) // Max
	}
	if c.dbg != nil {
		flags = append(flags,
			c.moduleFlag(2, "Dwarf Version", 5),      // Warning
			c.moduleFlag(2, "Debug Info Version", 3), // Warning
		)
	}
	if len(flags) == 0 {
		return
	}
	c.mod.NamedMetadataDefs["llvm.module.flags"] = &metadata.NamedDef{
		Name:  "llvm.module.flags",
		Nodes: flags,
	}
}

func (c *Codegen) moduleFlag(behavior int64, name string, val int64) *metadata.Tuple {
	t := &metadata.Tuple{Fields: []metadata.Field{
		constant.NewInt(types.I32, behavior),
		&metadata.String{Value: name},
		constant.NewInt(types.I32, val),
	}}
	c.mod.MetadataDefs = append(c.mod.MetadataDefs, t)
	return t
}

// assignMetadataIDs gives every metadata definition a stable numeric ID for
// serialization. Runs once, after all metadata has been created.
func assignMetadataIDs(m *ir.Module) {
	for i, def := range m.MetadataDefs {
		def.SetID(int64(i))
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/ir"
)

// verifyModule checks the structural well-formedness of a generated module
// before it is optimized or emitted. A failure here is a bug in the generator,
// never in the program being compiled, so the report lists every violation
// found rather than stopping at the first.
func verifyModule(m *ir.Module) error {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	var defined int
	for _, f := range m.Funcs {
		if len(f.Blocks) == 0 {
			continue // external declaration
		}
		defined++
		verifyFunc(f, report)
	}
	if defined == 0 {
		report("module defines no function body")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("module verification failed:\n  %s", strings.Join(problems, "\n  "))
}

func verifyFunc(f *ir.Func, report func(string, ...any)) {
	name := f.Name()
	inFunc := make(map[*ir.Block]bool, len(f.Blocks))
	for _, b := range f.Blocks {
		inFunc[b] = true
	}

	entry := f.Blocks[0]
	reachable := reachableBlocks(entry)

	for _, b := range f.Blocks {
		// Storage slots live in the entry block only; a slot materializing
		// inside a conditional body would break the hoisting discipline. This
		// check runs even for blocks missing a terminator, so one broken block
		// reports all of its defects.
		if b != entry {
			for _, inst := range b.Insts {
				if _, ok := inst.(*ir.InstAlloca); ok {
					report("%s: alloca outside the entry block (in %q)", name, b.Name())
				}
			}
		}

		if b.Term == nil {
			if reachable[b] {
				report("%s: block %q is reachable but has no terminator", name, b.Name())
			}
			continue
		}
		for _, succ := range b.Term.Succs() {
			if !inFunc[succ] {
				report("%s: block %q branches to a block outside the function", name, b.Name())
			}
		}
	}
}

func reachableBlocks(entry *ir.Block) map[*ir.Block]bool {
	reachable := map[*ir.Block]bool{entry: true}
	work := []*ir.Block{entry}
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		if b.Term == nil {
			continue
		}
		for _, succ := range b.Term.Succs() {
			if !reachable[succ] {
				reachable[succ] = true
				work = append(work, succ)
			}
		}
	}
	return reachable
}

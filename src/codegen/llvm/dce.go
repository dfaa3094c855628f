// dce.go implements the module-level dead-code elimination pass that
// closes the pipeline: a reachability walk over operands from a fixed set
// of roots, deleting any private definition never visited.
package llvm

import "tinygo.org/x/go-llvm"

// runDCE deletes every private function and global in g.module that is
// not reachable from main or from an externally visible definition.
// Externally visible declarations (printf, getchar, malloc, free, and
// every other module's externs, which are just bodyless declarations in
// this module) are roots themselves and never deleted.
func (g *generator) runDCE() {
	reachable := make(map[llvm.Value]bool)
	var queue []llvm.Value

	mark := func(v llvm.Value) {
		if v.IsNil() || reachable[v] {
			return
		}
		reachable[v] = true
		queue = append(queue, v)
	}

	for fn := g.module.FirstFunction(); !fn.IsNil(); fn = llvm.NextFunction(fn) {
		if fn.Name() == "main" || fn.Linkage() != llvm.PrivateLinkage {
			mark(fn)
		}
	}
	for gl := g.module.FirstGlobal(); !gl.IsNil(); gl = llvm.NextGlobal(gl) {
		if gl.Linkage() != llvm.PrivateLinkage {
			mark(gl)
		}
	}

	// Operands of an instruction or constant expression may themselves be
	// constant expressions wrapping a global (a GEP into a string
	// constant, a bitcast of a function); marking every operand and
	// walking the marked value's own operands on dequeue reaches the
	// underlying global transitively.
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		if !v.IsAFunction().IsNil() {
			for bb := v.FirstBasicBlock(); !bb.IsNil(); bb = llvm.NextBasicBlock(bb) {
				for inst := bb.FirstInstruction(); !inst.IsNil(); inst = llvm.NextInstruction(inst) {
					mark(inst)
				}
			}
		}
		for i1 := 0; i1 < v.OperandsCount(); i1++ {
			mark(v.Operand(i1))
		}
	}

	var deadFns, deadGlobals []llvm.Value
	for fn := g.module.FirstFunction(); !fn.IsNil(); fn = llvm.NextFunction(fn) {
		if !reachable[fn] && !fn.IsDeclaration() {
			deadFns = append(deadFns, fn)
		}
	}
	for gl := g.module.FirstGlobal(); !gl.IsNil(); gl = llvm.NextGlobal(gl) {
		if !reachable[gl] && !gl.IsDeclaration() {
			deadGlobals = append(deadGlobals, gl)
		}
	}

	for _, fn := range deadFns {
		fn.EraseFromParentAsFunction()
	}
	for _, gl := range deadGlobals {
		gl.EraseFromParentAsGlobal()
	}
}

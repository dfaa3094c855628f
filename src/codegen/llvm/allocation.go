// allocation.go lowers `new`/`delete`: malloc/free declared as external
// C-runtime functions, resolved at the emitted module's link step.
package llvm

import "tinygo.org/x/go-llvm"

// declareRuntime declares the two malloc/free externs every module needs
// for reference allocation and the closure context heap.
func (g *generator) declareRuntime() {
	bytePtr := llvm.PointerType(g.ctx.Int8Type(), 0)

	mallocType := llvm.FunctionType(bytePtr, []llvm.Type{g.ctx.Int64Type()}, false)
	g.mallocFn = llvm.AddFunction(g.module, "malloc", mallocType)

	freeType := llvm.FunctionType(g.ctx.VoidType(), []llvm.Type{bytePtr}, false)
	g.freeFn = llvm.AddFunction(g.module, "free", freeType)
}

// sizeOf computes sizeof(t) as an i64 without a TargetData, via the
// standard null-pointer GEP idiom: getelementptr(T, null, 1) ptrtoint i64.
func (g *generator) sizeOf(t llvm.Type) llvm.Value {
	ptrType := llvm.PointerType(t, 0)
	null := llvm.ConstNull(ptrType)
	one := llvm.ConstInt(g.ctx.Int32Type(), 1, false)
	indexed := g.builder.CreateGEP(null, []llvm.Value{one}, "")
	return g.builder.CreatePtrToInt(indexed, g.ctx.Int64Type(), "")
}

// allocate implements `new [size] T { ... }`: mallocs room for size copies
// of T's LLVM representation (size defaults to a single element, hasCount
// false) and returns the raw pointer bitcast to &T.
func (g *generator) allocate(elemType llvm.Type, count llvm.Value, hasCount bool) llvm.Value {
	elemSize := g.sizeOf(elemType)
	total := elemSize
	if hasCount {
		total = g.builder.CreateMul(elemSize, count, "")
	}
	raw := g.builder.CreateCall(g.mallocFn, []llvm.Value{total}, "")
	return g.builder.CreateBitCast(raw, llvm.PointerType(elemType, 0), "")
}

// deallocate implements `delete p`: frees the pointee, bitcasting p down
// to i8* first since free is declared over the opaque byte pointer.
func (g *generator) deallocate(ptr llvm.Value) {
	bytePtr := llvm.PointerType(g.ctx.Int8Type(), 0)
	raw := g.builder.CreateBitCast(ptr, bytePtr, "")
	g.builder.CreateCall(g.freeFn, []llvm.Value{raw}, "")
}

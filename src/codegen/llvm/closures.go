// closures.go implements the closure ABI: every function value is a
// 2-word { fn_ptr, ctx_ptr } struct, every lowered function takes an
// implicit trailing ctx parameter, and a capturing lambda heap-allocates
// a context struct holding its captures.
package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/hhramberg/l0c/src/ast"
	"github.com/hhramberg/l0c/src/token"
	"github.com/hhramberg/l0c/src/util"
)

// closureFields is the declared field order of the shared __closure type:
// a function pointer and an opaque context pointer.
var closureFields = []string{"fn", "ctx"}

// declareClosureType creates the shared __closure = { i8*, i8* } struct
// type once per generator/context.
func (g *generator) declareClosureType() llvm.Type {
	st := g.ctx.StructCreateNamed("__closure")
	bytePtr := llvm.PointerType(g.ctx.Int8Type(), 0)
	st.StructSetBody([]llvm.Type{bytePtr, bytePtr}, false)
	return st
}

// buildClosure packs a function pointer and context pointer into a
// __closure value. fn is bitcast to i8* since distinct function
// signatures would otherwise produce distinct pointer types that can't
// share one struct field.
func (g *generator) buildClosure(fn, ctx llvm.Value) llvm.Value {
	bytePtr := llvm.PointerType(g.ctx.Int8Type(), 0)
	fnBytes := g.builder.CreateBitCast(fn, bytePtr, "")
	agg := llvm.ConstNull(g.closureType)
	agg = g.builder.CreateInsertValue(agg, fnBytes, 0, "")
	agg = g.builder.CreateInsertValue(agg, ctx, 1, "")
	return agg
}

// extractClosureFn and extractClosureCtx pull the two fields back out of a
// closure value ahead of a call, bitcasting the function pointer back to
// its declared signature.
func (g *generator) extractClosureFn(closure llvm.Value, fnType llvm.Type) llvm.Value {
	raw := g.builder.CreateExtractValue(closure, 0, "")
	return g.builder.CreateBitCast(raw, llvm.PointerType(fnType, 0), "")
}

func (g *generator) extractClosureCtx(closure llvm.Value) llvm.Value {
	return g.builder.CreateExtractValue(closure, 1, "")
}

// contextTypeName derives the __context__<name> struct name for a
// lambda's capture record.
func contextTypeName(globalName string) string {
	return "__context__" + globalName
}

// capture bundles what buildContext/bindCaptures need to know about one
// captured variable: its source-language type (for the new local binding
// inside the lambda) and its LLVM-level value and lowered type (for
// building the context struct).
type capture struct {
	name  token.Ident
	typ   *ast.Type
	llt   llvm.Type
	value llvm.Value
}

// buildContext allocates, on the heap via malloc, a context struct holding
// one field per captured variable (in capture order), stores each
// variable's current value into it, and returns the raw i8* context
// pointer, the context struct type, and the per-capture metadata
// bindCaptures needs to re-declare each capture as a lambda-local.
func (g *generator) buildContext(fn *ast.Function, outer *util.Stack) (llvm.Value, llvm.Type, []capture, error) {
	caps := make([]capture, len(fn.Captures))
	for i1, name := range fn.Captures {
		v, t, llt, err := g.loadVariable(outer, name)
		if err != nil {
			return llvm.Value{}, llvm.Type{}, nil, fmt.Errorf("capturing %q: %w", name.String(), err)
		}
		caps[i1] = capture{name: name, typ: t, llt: llt, value: v}
	}

	fields := make([]llvm.Type, len(caps))
	for i1, c := range caps {
		fields[i1] = c.llt
	}
	ctxType := g.ctx.StructCreateNamed(contextTypeName(fn.GlobalName))
	ctxType.StructSetBody(fields, false)

	size := g.sizeOf(ctxType)
	raw := g.builder.CreateCall(g.mallocFn, []llvm.Value{size}, "")
	typed := g.builder.CreateBitCast(raw, llvm.PointerType(ctxType, 0), "")

	for i1, c := range caps {
		addr := g.builder.CreateGEP(typed, []llvm.Value{
			llvm.ConstInt(g.ctx.Int32Type(), 0, false),
			llvm.ConstInt(g.ctx.Int32Type(), uint64(i1), false),
		}, "")
		g.builder.CreateStore(c.value, addr)
	}

	return raw, ctxType, caps, nil
}

// lookupAddress walks the scope stack top-down (innermost scope first)
// looking for a variable named key, returning its bound backend address
// and source type. Every function body generates its own self-contained
// stack of (environment, externals, globals, own locals) — never the
// enclosing function's locals — so a name only resolves here if it is a
// global or was bound as a parameter, capture or local declaration of the
// function currently being lowered.
func (g *generator) lookupAddress(st *util.Stack, key string) (llvm.Value, *ast.Type, error) {
	for i1 := 1; i1 <= st.Size(); i1++ {
		scope := st.Get(i1).(*ast.Scope)
		if !scope.IsVariableDeclared(key) {
			continue
		}
		raw, ok := scope.GetValue(key)
		if !ok {
			return llvm.Value{}, nil, fmt.Errorf("variable %q has no backend value bound", key)
		}
		t, err := scope.GetVariableType(key)
		if err != nil {
			return llvm.Value{}, nil, err
		}
		return raw.(llvm.Value), t, nil
	}
	return llvm.Value{}, nil, fmt.Errorf("undeclared variable %q", key)
}

// loadVariable reads a variable's current value, source type, and lowered
// LLVM type from the address recorded in its scope.
func (g *generator) loadVariable(st *util.Stack, name token.Ident) (llvm.Value, *ast.Type, llvm.Type, error) {
	addr, t, err := g.lookupAddress(st, name.String())
	if err != nil {
		return llvm.Value{}, nil, llvm.Type{}, err
	}
	llt, err := g.lowerType(t)
	if err != nil {
		return llvm.Value{}, nil, llvm.Type{}, err
	}
	return g.builder.CreateLoad(addr, ""), t, llt, nil
}

// bindCaptures computes, inside the lambda's own allocas block, a pointer
// into the context struct for each capture and binds it in the lambda's
// locals scope, so the body
// can read/write them exactly like any other local via scope.GetValue.
func (g *generator) bindCaptures(fn *ast.Function, ctxPtr llvm.Value, caps []capture) error {
	for i1, c := range caps {
		addr := g.builder.CreateGEP(ctxPtr, []llvm.Value{
			llvm.ConstInt(g.ctx.Int32Type(), 0, false),
			llvm.ConstInt(g.ctx.Int32Type(), uint64(i1), false),
		}, "")
		key := c.name.String()
		if err := fn.LocalsScope.DeclareVariableTyped(key, c.typ); err != nil {
			// Parameter or prior capture already declared this name: the
			// resolver guarantees captures are free names, so this should
			// not occur.
			return fmt.Errorf("capture %q collides with an existing local", key)
		}
		if err := fn.LocalsScope.SetValue(key, addr); err != nil {
			return err
		}
	}
	return nil
}

// Package llvm lowers a fully annotated L0 module to LLVM IR, calling
// directly into tinygo.org/x/go-llvm: one context, module and builder per
// compiled source file, a func-header/func-body split, and a builder
// threaded through a recursive per-statement generator.
package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/hhramberg/l0c/src/ast"
	"github.com/hhramberg/l0c/src/util"
)

// generator carries the per-module state threaded through code generation.
// Each source file is its own LLVM module, so a cross-module reference is
// always lowered as an extern declaration, never a shared LLVM value.
type generator struct {
	ctx     llvm.Context
	module  llvm.Module
	builder llvm.Builder
	opt     util.Options
	m       *ast.Module

	closureType llvm.Type
	unitType    llvm.Type
	structTypes map[string]llvm.Type

	mallocFn, freeFn    llvm.Value
	printfFn, getcharFn llvm.Value
}

// Generate lowers m to LLVM IR and returns its textual representation,
// after running dead-global elimination. Returning text rather than
// writing an object file directly keeps -obj emission (see EmitObject in
// target.go, called by the driver) a separate step.
func Generate(opt util.Options, m *ast.Module) (string, error) {
	ctx := llvm.NewContext()
	defer ctx.Dispose()
	builder := ctx.NewBuilder()
	defer builder.Dispose()
	module := ctx.NewModule(m.Name)
	defer module.Dispose()

	g := &generator{
		ctx:         ctx,
		module:      module,
		builder:     builder,
		opt:         opt,
		m:           m,
		structTypes: make(map[string]llvm.Type),
	}
	g.unitType = ctx.StructType(nil, false)
	g.closureType = g.declareClosureType()
	g.declareRuntime()
	g.declareEnvironment()

	if err := g.declareStructShapes(); err != nil {
		return "", err
	}
	if err := g.defineStructBodies(); err != nil {
		return "", err
	}
	if err := g.declareExternals(); err != nil {
		return "", err
	}
	if err := g.declareEnumCases(); err != nil {
		return "", err
	}
	if err := g.declareGlobalCallables(); err != nil {
		return "", err
	}
	if err := g.declareStaticMembers(); err != nil {
		return "", err
	}

	for _, fn := range m.Callables {
		if _, err := g.genFuncHeader(fn); err != nil {
			return "", err
		}
	}
	for _, fn := range m.Callables {
		if err := g.genFuncBody(fn, llvm.Type{}, nil); err != nil {
			return "", err
		}
	}

	if err := g.defineGlobalCallables(); err != nil {
		return "", err
	}
	if err := g.defineStaticMembers(); err != nil {
		return "", err
	}

	g.runDCE()

	if opt.Verbose {
		fmt.Println("generated LLVM module:")
		module.Dump()
	}

	return module.String(), nil
}

// declareEnvironment declares printf/getchar and binds an internal
// closure-wrapper global for each into the module's environment scope, so
// ordinary Variable lookup loads a {fn_ptr, null} closure for them like
// for any other function-valued name.
func (g *generator) declareEnvironment() {
	cstring := llvm.PointerType(g.ctx.Int8Type(), 0)

	printfType := llvm.FunctionType(g.ctx.Int64Type(), []llvm.Type{cstring}, true)
	g.printfFn = llvm.AddFunction(g.module, "printf", printfType)
	g.bindEnvironmentClosure("printf", g.printfFn)

	getcharType := llvm.FunctionType(g.ctx.Int8Type(), nil, false)
	g.getcharFn = llvm.AddFunction(g.module, "getchar", getcharType)
	g.bindEnvironmentClosure("getchar", g.getcharFn)
}

// bindEnvironmentClosure wraps a runtime function in a constant closure
// global and binds it under name. The global's requested name collides
// with the function's own, so LLVM renames the global; the scope binding
// keeps the rename invisible to lookup.
func (g *generator) bindEnvironmentClosure(name string, fn llvm.Value) {
	bytePtr := llvm.PointerType(g.ctx.Int8Type(), 0)
	closure := llvm.ConstNamedStruct(g.closureType, []llvm.Value{
		llvm.ConstBitCast(fn, bytePtr),
		llvm.ConstNull(bytePtr),
	})
	global := llvm.AddGlobal(g.module, g.closureType, name)
	global.SetInitializer(closure)
	global.SetLinkage(llvm.InternalLinkage)
	global.SetGlobalConstant(true)
	_ = g.m.EnvironmentScope.SetValue(name, global)
}

// declareExternals declares one uninitialized external-linkage global per
// sibling-module name in the externals scope (the defining module emits
// the initializer) and binds it for Variable lookup.
func (g *generator) declareExternals() error {
	for _, name := range g.m.ExternalsScope.Variables() {
		t, err := g.m.ExternalsScope.GetVariableType(name)
		if err != nil {
			return err
		}
		llt, err := g.lowerType(t)
		if err != nil {
			return err
		}
		global := llvm.AddGlobal(g.module, llt, name)
		if err := g.m.ExternalsScope.SetValue(name, global); err != nil {
			return err
		}
	}
	return nil
}

// declareStructShapes creates the (initially opaque) named LLVM struct for
// every struct this module declares or imports, so mutually-referencing
// structs can name each other before either body is filled in.
func (g *generator) declareStructShapes() error {
	for _, def := range g.structDefinitions() {
		if _, err := g.structType(def.Name); err != nil {
			return err
		}
	}
	return nil
}

// defineStructBodies fills in the bodies declared by declareStructShapes.
func (g *generator) defineStructBodies() error {
	for _, def := range g.structDefinitions() {
		if err := g.defineStruct(def); err != nil {
			return err
		}
	}
	return nil
}

// structDefinitions collects every struct type definition visible to this
// module: its own declarations plus the types imported from siblings.
func (g *generator) structDefinitions() []*ast.Type {
	var defs []*ast.Type
	for _, td := range g.m.GlobalTypeDeclarations {
		def, err := g.m.GlobalsScope.GetTypeDefinition(td.Name)
		if err != nil || def.Kind != ast.KindStruct {
			continue
		}
		defs = append(defs, def)
	}
	for _, name := range g.m.ExternalsScope.Types() {
		def, err := g.m.ExternalsScope.GetTypeDefinition(name)
		if err != nil || def.Kind != ast.KindStruct {
			continue
		}
		defs = append(defs, def)
	}
	return defs
}

// declareEnumCases emits one i64 global constant per enum case, tagged by
// declaration-order index, named "<Enum>::<Case>".
func (g *generator) declareEnumCases() error {
	for _, td := range g.m.GlobalTypeDeclarations {
		def, err := g.m.GlobalsScope.GetTypeDefinition(td.Name)
		if err != nil {
			return err
		}
		if def.Kind != ast.KindEnum {
			continue
		}
		for i1, c := range def.Cases {
			name := staticGlobalName(def.Name, c)
			global := llvm.AddGlobal(g.module, g.ctx.Int64Type(), name)
			global.SetInitializer(llvm.ConstInt(g.ctx.Int64Type(), uint64(i1), false))
			global.SetGlobalConstant(true)
			if err := g.m.GlobalsScope.SetValue(name, global); err != nil {
				return err
			}
		}
	}
	return nil
}

// declareGlobalCallables declares, but does not yet initialize, one
// external-linkage __closure global per top-level callable other than
// main: main is the process entry point itself, not a first-class value
// with its own wrapper global.
func (g *generator) declareGlobalCallables() error {
	for _, decl := range g.m.GlobalDeclarations {
		if decl.Name == "main" {
			continue
		}
		global := llvm.AddGlobal(g.module, g.closureType, decl.Name)
		global.SetGlobalConstant(true)
		if err := g.m.GlobalsScope.SetValue(decl.Name, global); err != nil {
			return err
		}
	}
	return nil
}

// defineGlobalCallables sets each wrapper global's initializer once every
// function header exists, building a non-capturing closure {fn_ptr, null}.
func (g *generator) defineGlobalCallables() error {
	bytePtr := llvm.PointerType(g.ctx.Int8Type(), 0)
	for _, decl := range g.m.GlobalDeclarations {
		if decl.Name == "main" {
			continue
		}
		fn, ok := decl.Initializer.(*ast.Function)
		if !ok {
			return fmt.Errorf("global callable %q has a non-function initializer", decl.Name)
		}
		fnVal := g.module.NamedFunction(fn.GlobalName)
		if fnVal.IsNil() {
			return fmt.Errorf("codegen: function %q has no LLVM declaration", fn.GlobalName)
		}
		global := g.module.NamedGlobal(decl.Name)
		closureConst := llvm.ConstNamedStruct(g.closureType, []llvm.Value{
			llvm.ConstBitCast(fnVal, bytePtr),
			llvm.ConstNull(bytePtr),
		})
		global.SetInitializer(closureConst)
	}
	return nil
}

// declareStaticMembers declares, but does not initialize, one external
// global per struct member carrying a default initializer:
// this covers true static/method members and non-static members that
// merely supply a default value consulted by Initializer defaulting.
func (g *generator) declareStaticMembers() error {
	for _, td := range g.m.GlobalTypeDeclarations {
		def, err := g.m.GlobalsScope.GetTypeDefinition(td.Name)
		if err != nil {
			return err
		}
		if def.Kind != ast.KindStruct {
			continue
		}
		for _, member := range def.Members {
			if member.DefaultInitializerGlobalName == "" {
				continue
			}
			llt, err := g.lowerType(member.Type)
			if err != nil {
				return err
			}
			global := llvm.AddGlobal(g.module, llt, member.DefaultInitializerGlobalName)
			if err := g.m.GlobalsScope.SetValue(member.DefaultInitializerGlobalName, global); err != nil {
				return err
			}
		}
	}
	return nil
}

// defineStaticMembers sets every static-member global's constant
// initializer once function headers exist (a function-valued default
// needs its LLVM declaration to build a closure constant).
func (g *generator) defineStaticMembers() error {
	for _, td := range g.m.GlobalTypeDeclarations {
		def, err := g.m.GlobalsScope.GetTypeDefinition(td.Name)
		if err != nil {
			return err
		}
		if def.Kind != ast.KindStruct {
			continue
		}
		for _, member := range def.Members {
			if member.DefaultInitializerGlobalName == "" {
				continue
			}
			global := g.module.NamedGlobal(member.DefaultInitializerGlobalName)
			val, err := g.genConstant(member.DefaultInitializer)
			if err != nil {
				return fmt.Errorf("default initializer of %s: %w", member.DefaultInitializerGlobalName, err)
			}
			global.SetInitializer(val)
		}
	}
	return nil
}

// genFuncHeader declares fn's LLVM function. Every lowered function takes
// its declared parameters plus an implicit trailing ctx : i8*; a method additionally takes an implicit leading object pointer.
func (g *generator) genFuncHeader(fn *ast.Function) (llvm.Value, error) {
	paramTypes := make([]llvm.Type, 0, len(fn.Parameters)+2)
	if fn.IsMethod {
		paramTypes = append(paramTypes, llvm.PointerType(g.ctx.Int8Type(), 0))
	}
	for _, param := range fn.Parameters {
		t, err := g.lowerType(param.Type)
		if err != nil {
			return llvm.Value{}, err
		}
		paramTypes = append(paramTypes, t)
	}
	paramTypes = append(paramTypes, llvm.PointerType(g.ctx.Int8Type(), 0)) // ctx

	retType, err := g.lowerType(fn.ReturnType)
	if err != nil {
		return llvm.Value{}, err
	}

	ftyp := llvm.FunctionType(retType, paramTypes, false)
	return llvm.AddFunction(g.module, fn.GlobalName, ftyp), nil
}

// genFuncBody generates fn's allocas/entry basic-block pair, binds
// parameters and, when fn captures variables, the members of
// caps loaded through ctxType's pointer, then lowers the body. ctxType and
// caps are the zero value for a non-capturing function.
func (g *generator) genFuncBody(fn *ast.Function, ctxType llvm.Type, caps []capture) error {
	fnVal := g.module.NamedFunction(fn.GlobalName)
	if fnVal.IsNil() {
		return fmt.Errorf("codegen: function %q has no LLVM declaration", fn.GlobalName)
	}

	allocas := llvm.AddBasicBlock(fnVal, "allocas")
	entry := llvm.AddBasicBlock(fnVal, "entry")

	g.builder.SetInsertPointAtEnd(allocas)

	params := fnVal.Params()
	idx := 0
	if fn.IsMethod {
		idx++ // object pointer: handled by the call-site lowering, not a named local.
	}
	for _, param := range fn.Parameters {
		llParam := params[idx]
		idx++
		llt, err := g.lowerType(param.Type)
		if err != nil {
			return err
		}
		addr := g.builder.CreateAlloca(llt, param.Name)
		g.builder.CreateStore(llParam, addr)
		if err := fn.LocalsScope.SetValue(param.Name, addr); err != nil {
			return err
		}
	}

	if len(caps) > 0 {
		ctxParam := params[idx]
		typedCtx := g.builder.CreateBitCast(ctxParam, llvm.PointerType(ctxType, 0), "")
		if err := g.bindCaptures(fn, typedCtx, caps); err != nil {
			return err
		}
	}

	g.builder.SetInsertPointAtEnd(entry)
	st := &util.Stack{}
	st.Push(g.m.EnvironmentScope)
	st.Push(g.m.ExternalsScope)
	st.Push(g.m.GlobalsScope)
	st.Push(fn.LocalsScope)

	if err := g.genBlock(fnVal, fn.Body, st); err != nil {
		return err
	}
	if !fn.Body.Returns {
		g.genImplicitUnitReturn()
	}

	g.builder.SetInsertPointAtEnd(allocas)
	g.builder.CreateBr(entry)
	return nil
}

// genImplicitUnitReturn emits "ret <unit zero value>" at the current
// insertion point, for a unit-returning function whose body fell off the
// end without an explicit return — the return-statement pass guarantees this is only reachable when the return type is Unit.
func (g *generator) genImplicitUnitReturn() {
	g.builder.CreateRet(llvm.ConstNull(g.unitType))
}

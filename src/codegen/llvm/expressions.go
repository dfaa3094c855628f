// expressions.go lowers every ast.Expr variant to an LLVM SSA value.
package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/hhramberg/l0c/src/ast"
	"github.com/hhramberg/l0c/src/util"
)

// genExpr lowers e to the value it denotes at the current insertion point.
func (g *generator) genExpr(st *util.Stack, e ast.Expr) (llvm.Value, error) {
	switch expr := e.(type) {
	case *ast.UnitLiteral:
		return llvm.ConstNull(g.unitType), nil

	case *ast.BooleanLiteral:
		v := uint64(0)
		if expr.Value {
			v = 1
		}
		return llvm.ConstInt(g.ctx.Int1Type(), v, false), nil

	case *ast.IntegerLiteral:
		return llvm.ConstInt(g.ctx.Int64Type(), uint64(expr.Value), true), nil

	case *ast.CharacterLiteral:
		return llvm.ConstInt(g.ctx.Int8Type(), uint64(expr.Value), false), nil

	case *ast.StringLiteral:
		return g.builder.CreateGlobalStringPtr(expr.Value, ""), nil

	case *ast.Variable:
		v, _, _, err := g.loadVariable(st, expr.Name)
		return v, err

	case *ast.MemberAccessor:
		return g.genMemberAccessor(st, expr)

	case *ast.Call:
		return g.genCall(st, expr)

	case *ast.UnaryOp:
		return g.genUnaryOp(st, expr)

	case *ast.BinaryOp:
		return g.genBinaryOp(st, expr)

	case *ast.Assignment:
		return g.genAssignment(st, expr)

	case *ast.Function:
		return g.genLambda(st, expr)

	case *ast.Initializer:
		return g.genInitializerValue(st, expr)

	case *ast.Allocation:
		return g.genAllocationExpr(st, expr)

	default:
		return llvm.Value{}, fmt.Errorf("codegen: unhandled expression type %T", e)
	}
}

// isLvalueExpr mirrors sema's lvalue rule: a bare variable,
// a member access, or a dereferenced reference.
func isLvalueExpr(e ast.Expr) bool {
	switch expr := e.(type) {
	case *ast.Variable, *ast.MemberAccessor:
		return true
	case *ast.UnaryOp:
		return expr.Op == ast.UnaryDeref
	default:
		return false
	}
}

// lvalueAddress returns the backend address e's value is stored at. e must
// satisfy isLvalueExpr, guaranteed for both assignment targets and
// addressOf operands by the reference pass.
func (g *generator) lvalueAddress(st *util.Stack, e ast.Expr) (llvm.Value, error) {
	switch expr := e.(type) {
	case *ast.Variable:
		addr, _, err := g.lookupAddress(st, expr.Name.String())
		return addr, err
	case *ast.UnaryOp: // UnaryDeref: the operand's value IS the address.
		return g.genExpr(st, expr.Operand)
	case *ast.MemberAccessor:
		return g.memberFieldAddress(st, expr)
	default:
		return llvm.Value{}, fmt.Errorf("codegen: %T is not an lvalue", e)
	}
}

// structBase returns the address of the struct instance obj denotes: obj's
// loaded pointer value when obj is reference-typed, obj's own storage
// address when obj is itself an lvalue struct, or a spilled temporary
// holding obj's value otherwise (e.g. a struct-typed call result accessed
// immediately, "f().member").
func (g *generator) structBase(st *util.Stack, obj ast.Expr) (llvm.Value, error) {
	if obj.Type().Kind == ast.KindReference {
		return g.genExpr(st, obj)
	}
	if isLvalueExpr(obj) {
		return g.lvalueAddress(st, obj)
	}
	val, err := g.genExpr(st, obj)
	if err != nil {
		return llvm.Value{}, err
	}
	addr := g.builder.CreateAlloca(val.Type(), "")
	g.builder.CreateStore(val, addr)
	return addr, nil
}

// memberFieldAddress returns the address of expr's member: a GEP into the
// owning struct for an instance member, or the named module-level global
// for a static member.
func (g *generator) memberFieldAddress(st *util.Stack, expr *ast.MemberAccessor) (llvm.Value, error) {
	if expr.NonstaticIndex != nil {
		base, err := g.structBase(st, expr.Object)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.fieldAddress(base, *expr.NonstaticIndex), nil
	}
	name := staticGlobalName(expr.ObjectType.Name, expr.Member)
	global := g.module.NamedGlobal(name)
	if global.IsNil() {
		return llvm.Value{}, fmt.Errorf("codegen: static member %q has no LLVM declaration", name)
	}
	return global, nil
}

// genMemberAccessor lowers a read of object.member.
func (g *generator) genMemberAccessor(st *util.Stack, expr *ast.MemberAccessor) (llvm.Value, error) {
	addr, err := g.memberFieldAddress(st, expr)
	if err != nil {
		return llvm.Value{}, err
	}
	return g.builder.CreateLoad(addr, ""), nil
}

// genCall lowers a function or method call. Every call extracts the
// function pointer and context pointer out of a closure value and passes
// the context as an implicit trailing argument; a method call additionally
// prepends the object pointer.
func (g *generator) genCall(st *util.Stack, expr *ast.Call) (llvm.Value, error) {
	retType, err := g.lowerType(expr.Type())
	if err != nil {
		return llvm.Value{}, err
	}
	bytePtr := llvm.PointerType(g.ctx.Int8Type(), 0)

	var args []llvm.Value
	var closureVal llvm.Value
	var paramLLTypes []llvm.Type

	if expr.IsMethodCall {
		mac := expr.Function.(*ast.MemberAccessor)
		objAddr, err := g.structBase(st, mac.Object)
		if err != nil {
			return llvm.Value{}, err
		}
		closureVal, err = g.genExpr(st, expr.Function)
		if err != nil {
			return llvm.Value{}, err
		}
		paramLLTypes = append(paramLLTypes, bytePtr)
		args = append(args, g.builder.CreateBitCast(objAddr, bytePtr, ""))
	} else {
		closureVal, err = g.genExpr(st, expr.Function)
		if err != nil {
			return llvm.Value{}, err
		}
	}

	for _, arg := range expr.Arguments {
		t, err := g.lowerType(arg.Type())
		if err != nil {
			return llvm.Value{}, err
		}
		paramLLTypes = append(paramLLTypes, t)
		v, err := g.genExpr(st, arg)
		if err != nil {
			return llvm.Value{}, err
		}
		args = append(args, v)
	}
	paramLLTypes = append(paramLLTypes, bytePtr) // ctx
	args = append(args, g.extractClosureCtx(closureVal))

	fnLLVMType := llvm.FunctionType(retType, paramLLTypes, false)
	fnPtr := g.extractClosureFn(closureVal, fnLLVMType)
	return g.builder.CreateCall(fnPtr, args, ""), nil
}

// genUnaryOp lowers a unary operator application from its resolved
// overload.
func (g *generator) genUnaryOp(st *util.Stack, expr *ast.UnaryOp) (llvm.Value, error) {
	switch expr.Overload {
	case ast.AddressOf:
		return g.lvalueAddress(st, expr.Operand)

	case ast.Dereferenciation:
		ptr, err := g.genExpr(st, expr.Operand)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.builder.CreateLoad(ptr, ""), nil

	case ast.IntegerIdentity:
		return g.genExpr(st, expr.Operand)

	case ast.IntegerNegation:
		v, err := g.genExpr(st, expr.Operand)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.builder.CreateSub(llvm.ConstInt(g.ctx.Int64Type(), 0, false), v, ""), nil

	case ast.BooleanNegation:
		v, err := g.genExpr(st, expr.Operand)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.builder.CreateXor(llvm.ConstInt(g.ctx.Int1Type(), 1, false), v, ""), nil

	default:
		return llvm.Value{}, fmt.Errorf("codegen: unhandled unary overload %d", expr.Overload)
	}
}

// genBinaryOp lowers a binary operator application from its resolved
// overload.
func (g *generator) genBinaryOp(st *util.Stack, expr *ast.BinaryOp) (llvm.Value, error) {
	if expr.Overload == ast.ReferenceIndexation {
		base, err := g.genExpr(st, expr.Left)
		if err != nil {
			return llvm.Value{}, err
		}
		idx, err := g.genExpr(st, expr.Right)
		if err != nil {
			return llvm.Value{}, err
		}
		return g.builder.CreateGEP(base, []llvm.Value{idx}, ""), nil
	}

	l, err := g.genExpr(st, expr.Left)
	if err != nil {
		return llvm.Value{}, err
	}
	r, err := g.genExpr(st, expr.Right)
	if err != nil {
		return llvm.Value{}, err
	}

	switch expr.Overload {
	case ast.IntegerAdd:
		return g.builder.CreateAdd(l, r, ""), nil
	case ast.IntegerSub:
		return g.builder.CreateSub(l, r, ""), nil
	case ast.IntegerMul:
		return g.builder.CreateMul(l, r, ""), nil
	case ast.IntegerDiv:
		return g.builder.CreateSDiv(l, r, ""), nil
	case ast.IntegerMod:
		return g.builder.CreateSRem(l, r, ""), nil
	case ast.IntegerLt:
		return g.builder.CreateICmp(llvm.IntSLT, l, r, ""), nil
	case ast.IntegerGt:
		return g.builder.CreateICmp(llvm.IntSGT, l, r, ""), nil
	case ast.IntegerLe:
		return g.builder.CreateICmp(llvm.IntSLE, l, r, ""), nil
	case ast.IntegerGe:
		return g.builder.CreateICmp(llvm.IntSGE, l, r, ""), nil
	case ast.IntegerEq:
		return g.builder.CreateICmp(llvm.IntEQ, l, r, ""), nil
	case ast.IntegerNe:
		return g.builder.CreateICmp(llvm.IntNE, l, r, ""), nil

	case ast.CharacterAdd:
		rTrunc := g.builder.CreateTrunc(r, g.ctx.Int8Type(), "")
		return g.builder.CreateAdd(l, rTrunc, ""), nil
	case ast.CharacterSub:
		diff := g.builder.CreateSub(l, r, "")
		return g.builder.CreateSExt(diff, g.ctx.Int64Type(), ""), nil
	case ast.CharacterEq:
		return g.builder.CreateICmp(llvm.IntEQ, l, r, ""), nil
	case ast.CharacterNe:
		return g.builder.CreateICmp(llvm.IntNE, l, r, ""), nil

	case ast.BooleanAnd:
		return g.builder.CreateAnd(l, r, ""), nil
	case ast.BooleanOr:
		return g.builder.CreateOr(l, r, ""), nil
	case ast.BooleanEq:
		return g.builder.CreateICmp(llvm.IntEQ, l, r, ""), nil
	case ast.BooleanNe:
		return g.builder.CreateICmp(llvm.IntNE, l, r, ""), nil

	default:
		return llvm.Value{}, fmt.Errorf("codegen: unhandled binary overload %d", expr.Overload)
	}
}

// genAssignment stores Value's lowered result through Target's address and
// yields that same value, matching assignment-as-expression semantics.
func (g *generator) genAssignment(st *util.Stack, expr *ast.Assignment) (llvm.Value, error) {
	val, err := g.genExpr(st, expr.Value)
	if err != nil {
		return llvm.Value{}, err
	}
	addr, err := g.lvalueAddress(st, expr.Target)
	if err != nil {
		return llvm.Value{}, err
	}
	g.builder.CreateStore(val, addr)
	return val, nil
}

// genLambda declares and immediately defines a lambda's LLVM function,
// building its capture context (if any) from the enclosing function's live
// scope stack, and returns the resulting closure value.
func (g *generator) genLambda(st *util.Stack, fn *ast.Function) (llvm.Value, error) {
	fn.GlobalName = util.NewLabel(util.LabelLambda)

	if _, err := g.genFuncHeader(fn); err != nil {
		return llvm.Value{}, err
	}

	bytePtr := llvm.PointerType(g.ctx.Int8Type(), 0)
	ctxPtr := llvm.ConstNull(bytePtr)
	var ctxType llvm.Type
	var caps []capture
	if len(fn.Captures) > 0 {
		var err error
		ctxPtr, ctxType, caps, err = g.buildContext(fn, st)
		if err != nil {
			return llvm.Value{}, err
		}
	}

	savedBlock := g.builder.GetInsertBlock()
	if err := g.genFuncBody(fn, ctxType, caps); err != nil {
		return llvm.Value{}, err
	}
	g.builder.SetInsertPointAtEnd(savedBlock)

	fnVal := g.module.NamedFunction(fn.GlobalName)
	return g.buildClosure(fnVal, ctxPtr), nil
}

// genInitializerValue builds a struct aggregate by value: an alloca of the
// struct type, one store per member (defaulted members read their
// generated default global), then a load of the whole aggregate. Used
// for a standalone "Type{...}" expression; "new Type{...}" instead stores
// members straight into the heap block via genInitializerInto.
func (g *generator) genInitializerValue(st *util.Stack, expr *ast.Initializer) (llvm.Value, error) {
	t := ast.ModifyQualifier(expr.Type(), ast.Constant)
	addr, err := g.genInitializerInto(st, t, expr.MemberOrder, expr.MemberInitializers, nil)
	if err != nil {
		return llvm.Value{}, err
	}
	return g.builder.CreateLoad(addr, ""), nil
}

// genInitializerInto allocates (if dst is nil, via a fresh alloca;
// otherwise into the provided address) and fills one struct instance,
// returning its address. Members absent from inits are filled from their
// DefaultInitializerGlobalName global.
func (g *generator) genInitializerInto(st *util.Stack, t *ast.Type, order []string, inits map[string]ast.Expr, dst llvm.Value) (llvm.Value, error) {
	structT, err := g.structType(t.Name)
	if err != nil {
		return llvm.Value{}, err
	}
	if dst.IsNil() {
		dst = g.builder.CreateAlloca(structT, "")
	}

	given := make(map[string]bool, len(order))
	for _, name := range order {
		given[name] = true
	}

	for _, member := range t.Members {
		if member.IsStatic {
			continue
		}
		addr := g.fieldAddress(dst, member.Index)
		var val llvm.Value
		if given[member.Name] {
			val, err = g.genExpr(st, inits[member.Name])
			if err != nil {
				return llvm.Value{}, err
			}
		} else {
			global := g.module.NamedGlobal(member.DefaultInitializerGlobalName)
			val = g.builder.CreateLoad(global, "")
		}
		g.builder.CreateStore(val, addr)
	}
	return dst, nil
}

// genAllocationExpr lowers "new [size] Type {...}": malloc enough space
// for (size, if present) instances, then initialize the first slot only;
// the remaining slots are left undefined.
func (g *generator) genAllocationExpr(st *util.Stack, expr *ast.Allocation) (llvm.Value, error) {
	elemType, err := g.lowerType(expr.AllocatedType)
	if err != nil {
		return llvm.Value{}, err
	}

	var count llvm.Value
	hasCount := expr.Size != nil
	if hasCount {
		count, err = g.genExpr(st, expr.Size)
		if err != nil {
			return llvm.Value{}, err
		}
	}
	ptr := g.allocate(elemType, count, hasCount)

	if init, ok := expr.InitialValue.(*ast.Initializer); ok {
		if _, err := g.genInitializerInto(st, expr.AllocatedType, init.MemberOrder, init.MemberInitializers, ptr); err != nil {
			return llvm.Value{}, err
		}
	} else {
		val, err := g.genExpr(st, expr.InitialValue)
		if err != nil {
			return llvm.Value{}, err
		}
		g.builder.CreateStore(val, ptr)
	}

	return ptr, nil
}

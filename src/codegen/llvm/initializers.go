// initializers.go lowers the constant-expression initializers of module
// globals. Struct default-member globals and, were a module
// ever to declare a non-callable public global, their own initializer
// globals all funnel through genConstant rather than genExpr, since they
// must be built once at module-definition time with no builder insertion
// point available.
package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/hhramberg/l0c/src/ast"
	"github.com/hhramberg/l0c/src/util"
)

// genConstant lowers e to an LLVM constant value, without emitting any
// instructions. Only the syntactic forms a default member initializer can
// actually take reach here: primitive literals and non-capturing function
// literals (static methods); anything else is a GeneratorError.
func (g *generator) genConstant(e ast.Expr) (llvm.Value, error) {
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
		bytes := append([]byte(expr.Value), 0)
		chars := make([]llvm.Value, len(bytes))
		for i1, b := range bytes {
			chars[i1] = llvm.ConstInt(g.ctx.Int8Type(), uint64(b), false)
		}
		global := llvm.AddGlobal(g.module, llvm.ArrayType(g.ctx.Int8Type(), len(bytes)), "")
		global.SetInitializer(llvm.ConstArray(g.ctx.Int8Type(), chars))
		global.SetGlobalConstant(true)
		global.SetLinkage(llvm.PrivateLinkage)
		zero := llvm.ConstInt(g.ctx.Int32Type(), 0, false)
		return llvm.ConstGEP(global, []llvm.Value{zero, zero}), nil

	case *ast.Function:
		return g.genConstantFunction(expr)

	default:
		return llvm.Value{}, &util.GeneratorError{Message: fmt.Sprintf("initializer is not a constant expression (%T)", e)}
	}
}

// genConstantFunction lowers a function literal used as a constant
// initializer (a struct's default method). Captures make no sense in a
// context with no enclosing call frame to capture from, so a capturing
// lambda reaching here is a generator error rather than a silent null
// context.
func (g *generator) genConstantFunction(fn *ast.Function) (llvm.Value, error) {
	if len(fn.Captures) > 0 {
		return llvm.Value{}, fmt.Errorf("codegen: default initializer function %q captures variables, which is not a constant expression", fn.GlobalName)
	}
	if fn.GlobalName == "" {
		fn.GlobalName = util.NewLabel(util.LabelLambda)
	}

	fnVal := g.module.NamedFunction(fn.GlobalName)
	if fnVal.IsNil() {
		var err error
		fnVal, err = g.genFuncHeader(fn)
		if err != nil {
			return llvm.Value{}, err
		}
	}
	if fnVal.BasicBlocksCount() == 0 {
		if err := g.genFuncBody(fn, llvm.Type{}, nil); err != nil {
			return llvm.Value{}, err
		}
	}

	bytePtr := llvm.PointerType(g.ctx.Int8Type(), 0)
	return llvm.ConstNamedStruct(g.closureType, []llvm.Value{
		llvm.ConstBitCast(fnVal, bytePtr),
		llvm.ConstNull(bytePtr),
	}), nil
}

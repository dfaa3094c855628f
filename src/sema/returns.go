// returns.go implements pass 8, the return-statement pass: verifies every control-flow
// path through a callable returns a value assignable to its declared
// return type, truncates unreachable statements following a return, and
// synthesizes the implicit "return unit" for unit-returning functions whose
// body falls through.
package sema

import "github.com/hhramberg/l0c/src/ast"

// CheckReturns walks every callable in m.
func CheckReturns(m *ast.Module) error {
	for _, fn := range m.Callables {
		if err := checkFunctionReturns(fn); err != nil {
			return err
		}
	}
	return nil
}

// checkFunctionReturns also descends into nested lambda literals appearing
// anywhere in fn's body, since each carries its own independent return type.
func checkFunctionReturns(fn *ast.Function) error {
	if err := checkBlockReturns(fn.Body, fn.ReturnType); err != nil {
		return err
	}
	if !fn.Body.Returns {
		if fn.ReturnType.Kind != ast.KindUnit {
			return errf("function %q does not return on all paths", fn.GlobalName)
		}
		fn.Body.Statements = append(fn.Body.Statements, &ast.ReturnStatement{Value: nil})
		fn.Body.Returns = true
	}
	return walkNestedFunctions(fn.Body)
}

// checkBlockReturns sets block.Returns, truncating any statements that
// follow the first statement guaranteed to return (dead code).
func checkBlockReturns(block *ast.StatementBlock, expected *ast.Type) error {
	for i1, stmt := range block.Statements {
		returns, err := checkStmtReturns(stmt, expected)
		if err != nil {
			return err
		}
		if returns {
			block.Statements = block.Statements[:i1+1]
			block.Returns = true
			return nil
		}
	}
	block.Returns = false
	return nil
}

// checkStmtReturns reports whether stmt is guaranteed to return on every
// path through it.
func checkStmtReturns(stmt ast.Stmt, expected *ast.Type) (bool, error) {
	switch s := stmt.(type) {
	case *ast.ReturnStatement:
		var actual *ast.Type
		if s.Value != nil {
			actual = s.Value.Type()
		} else {
			actual = ast.NewUnit()
		}
		if !assignable(expected, actual) {
			return false, errf("cannot return %s from a function returning %s", actual, expected)
		}
		return true, nil

	case *ast.ConditionalStatement:
		if err := checkBlockReturns(s.Then, expected); err != nil {
			return false, err
		}
		if s.Else == nil {
			return false, nil
		}
		if err := checkBlockReturns(s.Else, expected); err != nil {
			return false, err
		}
		return s.Then.Returns && s.Else.Returns, nil

	case *ast.WhileLoop:
		// A while loop's body is not guaranteed to execute, so it never
		// makes the enclosing block return.
		return false, checkBlockReturns(s.Body, expected)

	default:
		return false, nil
	}
}

// walkNestedFunctions finds *ast.Function literals nested inside block's
// expressions and checks their returns independently, since a lambda's
// return type is unrelated to its enclosing function's.
func walkNestedFunctions(block *ast.StatementBlock) error {
	for _, stmt := range block.Statements {
		if err := walkNestedFunctionsStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func walkNestedFunctionsStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Declaration:
		return walkNestedFunctionsExpr(s.Initializer)
	case *ast.ExpressionStatement:
		return walkNestedFunctionsExpr(s.Expression)
	case *ast.ReturnStatement:
		return walkNestedFunctionsExpr(s.Value)
	case *ast.ConditionalStatement:
		if err := walkNestedFunctionsExpr(s.Condition); err != nil {
			return err
		}
		if err := walkNestedFunctions(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return walkNestedFunctions(s.Else)
		}
		return nil
	case *ast.WhileLoop:
		if err := walkNestedFunctionsExpr(s.Condition); err != nil {
			return err
		}
		return walkNestedFunctions(s.Body)
	case *ast.Deallocation:
		return walkNestedFunctionsExpr(s.Reference)
	default:
		return nil
	}
}

// walkNestedFunctionsExpr finds *ast.Function literals within e and checks
// their returns, recursing into subexpressions that may themselves contain
// lambda literals.
func walkNestedFunctionsExpr(e ast.Expr) error {
	switch expr := e.(type) {
	case nil:
		return nil
	case *ast.Function:
		return checkFunctionReturns(expr)
	case *ast.MemberAccessor:
		return walkNestedFunctionsExpr(expr.Object)
	case *ast.Call:
		if err := walkNestedFunctionsExpr(expr.Function); err != nil {
			return err
		}
		for _, arg := range expr.Arguments {
			if err := walkNestedFunctionsExpr(arg); err != nil {
				return err
			}
		}
		return nil
	case *ast.UnaryOp:
		return walkNestedFunctionsExpr(expr.Operand)
	case *ast.BinaryOp:
		if err := walkNestedFunctionsExpr(expr.Left); err != nil {
			return err
		}
		return walkNestedFunctionsExpr(expr.Right)
	case *ast.Assignment:
		if err := walkNestedFunctionsExpr(expr.Target); err != nil {
			return err
		}
		return walkNestedFunctionsExpr(expr.Value)
	case *ast.Initializer:
		for _, name := range expr.MemberOrder {
			if err := walkNestedFunctionsExpr(expr.MemberInitializers[name]); err != nil {
				return err
			}
		}
		return nil
	case *ast.Allocation:
		if err := walkNestedFunctionsExpr(expr.Size); err != nil {
			return err
		}
		for _, name := range expr.MemberOrder {
			if err := walkNestedFunctionsExpr(expr.MemberInitializers[name]); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

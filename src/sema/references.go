// references.go implements pass 9, the reference pass: verifies lvalue rules and
// synthesizes each Assignment's TargetAddress, the backend-facing pointer
// expression the generator stores through.
package sema

import "github.com/hhramberg/l0c/src/ast"

// CheckReferences walks every callable in m.
func CheckReferences(m *ast.Module) error {
	for _, fn := range m.Callables {
		if err := referenceFunction(fn); err != nil {
			return err
		}
	}
	return referenceDefaultInitializers(m)
}

// referenceDefaultInitializers asserts lvalue rules inside every struct
// member's non-function default initializer, matching the coverage
// resolver.go and typecheck.go give these expressions.
func referenceDefaultInitializers(m *ast.Module) error {
	for _, td := range m.GlobalTypeDeclarations {
		def, err := m.GlobalsScope.GetTypeDefinition(td.Name)
		if err != nil {
			return err
		}
		for _, member := range def.Members {
			if member.DefaultInitializer == nil {
				continue
			}
			if _, ok := member.DefaultInitializer.(*ast.Function); ok {
				continue
			}
			if err := referenceExpr(member.DefaultInitializer); err != nil {
				return err
			}
		}
	}
	return nil
}

func referenceFunction(fn *ast.Function) error {
	return referenceBlock(fn.Body)
}

func referenceBlock(block *ast.StatementBlock) error {
	for _, stmt := range block.Statements {
		if err := referenceStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func referenceStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Declaration:
		return referenceExpr(s.Initializer)
	case *ast.TypeDeclaration:
		return nil
	case *ast.ExpressionStatement:
		return referenceExpr(s.Expression)
	case *ast.ReturnStatement:
		return referenceExpr(s.Value)
	case *ast.ConditionalStatement:
		if err := referenceExpr(s.Condition); err != nil {
			return err
		}
		if err := referenceBlock(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return referenceBlock(s.Else)
		}
		return nil
	case *ast.WhileLoop:
		if err := referenceExpr(s.Condition); err != nil {
			return err
		}
		return referenceBlock(s.Body)
	case *ast.Deallocation:
		return referenceExpr(s.Reference)
	default:
		return errf("reference pass: unhandled statement type")
	}
}

// referenceExpr recurses into every subexpression of e, and for an
// Assignment node verifies its target is an lvalue and synthesizes
// TargetAddress.
func referenceExpr(e ast.Expr) error {
	switch expr := e.(type) {
	case nil, *ast.UnitLiteral, *ast.BooleanLiteral, *ast.IntegerLiteral,
		*ast.CharacterLiteral, *ast.StringLiteral, *ast.Variable:
		return nil

	case *ast.MemberAccessor:
		return referenceExpr(expr.Object)

	case *ast.Call:
		if err := referenceExpr(expr.Function); err != nil {
			return err
		}
		for _, arg := range expr.Arguments {
			if err := referenceExpr(arg); err != nil {
				return err
			}
		}
		return nil

	case *ast.UnaryOp:
		if expr.Op == ast.UnaryAddressOf && !isLvalue(expr.Operand) {
			return errf("cannot take the address of a non-lvalue expression")
		}
		return referenceExpr(expr.Operand)

	case *ast.BinaryOp:
		if err := referenceExpr(expr.Left); err != nil {
			return err
		}
		return referenceExpr(expr.Right)

	case *ast.Assignment:
		if err := referenceExpr(expr.Target); err != nil {
			return err
		}
		if err := referenceExpr(expr.Value); err != nil {
			return err
		}
		if !isLvalue(expr.Target) {
			return errf("assignment target is not an lvalue")
		}
		expr.TargetAddress = targetAddress(expr.Target)
		return nil

	case *ast.Function:
		return referenceFunction(expr)

	case *ast.Initializer:
		for _, name := range expr.MemberOrder {
			if err := referenceExpr(expr.MemberInitializers[name]); err != nil {
				return err
			}
		}
		return nil

	case *ast.Allocation:
		if err := referenceExpr(expr.Size); err != nil {
			return err
		}
		for _, name := range expr.MemberOrder {
			if err := referenceExpr(expr.MemberInitializers[name]); err != nil {
				return err
			}
		}
		return nil

	default:
		return errf("reference pass: unhandled expression type")
	}
}

// isLvalue reports whether e names a storage location:
// a bare variable, a struct member access, or a dereferenced reference.
func isLvalue(e ast.Expr) bool {
	switch expr := e.(type) {
	case *ast.Variable:
		return true
	case *ast.MemberAccessor:
		return true
	case *ast.UnaryOp:
		return expr.Op == ast.UnaryDeref
	default:
		return false
	}
}

// targetAddress synthesizes the pointer expression the generator stores
// through for an lvalue assignment target: a bare variable becomes "&var",
// a dereference target's operand is used directly (it already is the
// pointer), and a member access is left as-is for the generator to GEP into.
func targetAddress(target ast.Expr) ast.Expr {
	switch expr := target.(type) {
	case *ast.Variable:
		addr := &ast.UnaryOp{Op: ast.UnaryAddressOf, Operand: expr, Overload: ast.AddressOf}
		addr.SetType(ast.ModifyQualifier(ast.NewReference(expr.Type()), ast.Constant))
		return addr
	case *ast.UnaryOp: // UnaryDeref
		return expr.Operand
	default: // *ast.MemberAccessor
		return expr
	}
}

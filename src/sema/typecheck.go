// typecheck.go implements pass 7, the type checker: attaches a Type to every
// expression, resolves annotations, and resolves operator overloads from
// the fixed enumerations in ast/overload.go.
package sema

import (
	"github.com/hhramberg/l0c/src/ast"
)

// checker carries the per-module state threaded through the type-check
// walk: the module (for static-member scope lookups) and the annotation
// resolution chain (environment, externals, globals).
type checker struct {
	m     *ast.Module
	chain []*ast.Scope
}

// TypeCheck type-checks every callable in m.
func TypeCheck(m *ast.Module) error {
	c := &checker{m: m, chain: []*ast.Scope{m.EnvironmentScope, m.ExternalsScope, m.GlobalsScope}}
	for _, fn := range m.Callables {
		if _, err := c.checkFunction(fn); err != nil {
			return err
		}
	}
	return c.checkDefaultInitializers(m)
}

// checkDefaultInitializers type-checks every struct member's non-function
// default initializer and verifies it is assignable to the member's
// declared type. Function-valued defaults are covered via
// m.Callables above.
func (c *checker) checkDefaultInitializers(m *ast.Module) error {
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
			if err := c.checkExpr(member.DefaultInitializer); err != nil {
				return err
			}
			if !assignable(member.Type, member.DefaultInitializer.Type()) {
				return errf("default initializer of %s::%s: cannot assign %s to %s",
					def.Name, member.Name, member.DefaultInitializer.Type(), member.Type)
			}
		}
	}
	return nil
}

// checkFunction resolves fn's parameter and return types, sets fn's own
// function type, and type-checks its body. Used both for top-level
// callables and for nested lambda expressions.
func (c *checker) checkFunction(fn *ast.Function) (*ast.Type, error) {
	params := make([]*ast.Type, len(fn.Parameters))
	for i1, param := range fn.Parameters {
		t, err := resolveAnnotation(c.chain, param.Annotation)
		if err != nil {
			return nil, err
		}
		param.Type = t
		if err := param.Scope.SetVariableType(param.Name, t); err != nil {
			return nil, err
		}
		params[i1] = t
	}
	ret, err := resolveAnnotation(c.chain, fn.ReturnTypeAnnotation)
	if err != nil {
		return nil, err
	}
	fn.ReturnType = ret

	ft := ast.ModifyQualifier(ast.NewFunction(params, ret), ast.Constant)
	fn.SetType(ft)

	if err := c.checkBlock(fn.Body); err != nil {
		return nil, err
	}
	return ft, nil
}

func (c *checker) checkBlock(block *ast.StatementBlock) error {
	for _, stmt := range block.Statements {
		if err := c.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Declaration:
		if s.Initializer != nil {
			if err := c.checkExpr(s.Initializer); err != nil {
				return err
			}
		}
		if s.Annotation != nil {
			t, err := resolveAnnotation(c.chain, s.Annotation)
			if err != nil {
				return err
			}
			if s.Initializer != nil && !assignable(t, s.Initializer.Type()) {
				return errf("cannot assign %s to %q of type %s", s.Initializer.Type(), s.Name, t)
			}
			s.Type = t
		} else {
			s.Type = ast.ModifyQualifier(s.Initializer.Type(), ast.Constant)
		}
		return s.Scope.SetVariableType(s.Name, s.Type)

	case *ast.TypeDeclaration:
		return errf("local type declarations are not supported")

	case *ast.ExpressionStatement:
		return c.checkExpr(s.Expression)

	case *ast.ReturnStatement:
		if s.Value != nil {
			return c.checkExpr(s.Value)
		}
		return nil

	case *ast.ConditionalStatement:
		if err := c.checkExpr(s.Condition); err != nil {
			return err
		}
		if s.Condition.Type().Kind != ast.KindBoolean {
			return errf("if condition must be Boolean, got %s", s.Condition.Type())
		}
		if err := c.checkBlock(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return c.checkBlock(s.Else)
		}
		return nil

	case *ast.WhileLoop:
		if err := c.checkExpr(s.Condition); err != nil {
			return err
		}
		if s.Condition.Type().Kind != ast.KindBoolean {
			return errf("while condition must be Boolean, got %s", s.Condition.Type())
		}
		return c.checkBlock(s.Body)

	case *ast.Deallocation:
		if err := c.checkExpr(s.Reference); err != nil {
			return err
		}
		if s.Reference.Type().Kind != ast.KindReference {
			return errf("delete requires a reference, got %s", s.Reference.Type())
		}
		return nil

	default:
		return errf("type checker: unhandled statement type")
	}
}

func (c *checker) checkExpr(e ast.Expr) error {
	switch expr := e.(type) {
	case *ast.UnitLiteral:
		expr.SetType(ast.NewUnit())
		return nil
	case *ast.BooleanLiteral:
		expr.SetType(ast.NewBoolean())
		return nil
	case *ast.IntegerLiteral:
		expr.SetType(ast.NewInteger())
		return nil
	case *ast.CharacterLiteral:
		expr.SetType(ast.NewCharacter())
		return nil
	case *ast.StringLiteral:
		expr.SetType(ast.NewString())
		return nil

	case *ast.Variable:
		t, err := expr.Scope.GetVariableType(expr.Name.String())
		if err != nil {
			return err
		}
		expr.SetType(t)
		return nil

	case *ast.MemberAccessor:
		return c.checkMemberAccessor(expr)

	case *ast.Call:
		return c.checkCall(expr)

	case *ast.UnaryOp:
		return c.checkUnaryOp(expr)

	case *ast.BinaryOp:
		return c.checkBinaryOp(expr)

	case *ast.Assignment:
		if err := c.checkExpr(expr.Target); err != nil {
			return err
		}
		if err := c.checkExpr(expr.Value); err != nil {
			return err
		}
		if expr.Target.Type().Qualifier != ast.Mutable {
			return errf("assignment target is not mutable")
		}
		if !assignable(expr.Target.Type(), expr.Value.Type()) {
			return errf("cannot assign %s to %s", expr.Value.Type(), expr.Target.Type())
		}
		expr.SetType(expr.Target.Type())
		return nil

	case *ast.Function:
		_, err := c.checkFunction(expr)
		return err

	case *ast.Initializer:
		return c.checkInitializer(expr)

	case *ast.Allocation:
		return c.checkAllocation(expr)

	default:
		return errf("type checker: unhandled expression type")
	}
}

func (c *checker) checkMemberAccessor(expr *ast.MemberAccessor) error {
	if err := c.checkExpr(expr.Object); err != nil {
		return err
	}
	objType := expr.Object.Type()
	if objType.Kind != ast.KindStruct {
		return errf("member access on non-struct type %s", objType)
	}
	var member *ast.StructMember
	for _, md := range objType.Members {
		if md.Name == expr.Member {
			member = md
			break
		}
	}
	if member == nil {
		return errf("struct %s has no member %q", objType.Name, expr.Member)
	}

	expr.ObjectType = objType
	expr.IsMethod = member.IsMethod

	resultType := member.Type
	if objType.Qualifier == ast.Constant {
		resultType = ast.ModifyQualifier(resultType, ast.Constant)
	}
	expr.SetType(resultType)

	if member.IsStatic {
		key := objType.Name + "::" + member.Name
		scope := c.m.GlobalsScope
		if !scope.IsVariableDeclared(key) {
			scope = c.m.ExternalsScope
		}
		expr.StaticScope = scope
	} else {
		idx := member.Index
		expr.NonstaticIndex = &idx
	}
	return nil
}

func (c *checker) checkCall(expr *ast.Call) error {
	if err := c.checkExpr(expr.Function); err != nil {
		return err
	}
	fnType := expr.Function.Type()
	if fnType.Kind != ast.KindFunction {
		return errf("call target is not a function, got %s", fnType)
	}
	if len(expr.Arguments) != len(fnType.Params) {
		return errf("expected %d arguments, got %d", len(fnType.Params), len(expr.Arguments))
	}
	for i1, arg := range expr.Arguments {
		if err := c.checkExpr(arg); err != nil {
			return err
		}
		if !assignable(fnType.Params[i1], arg.Type()) {
			return errf("argument %d: cannot assign %s to %s", i1, arg.Type(), fnType.Params[i1])
		}
	}
	if mac, ok := expr.Function.(*ast.MemberAccessor); ok {
		expr.IsMethodCall = mac.IsMethod
	}
	expr.SetType(fnType.Return)
	return nil
}

func (c *checker) checkUnaryOp(expr *ast.UnaryOp) error {
	if err := c.checkExpr(expr.Operand); err != nil {
		return err
	}
	ot := expr.Operand.Type()
	switch expr.Op {
	case ast.UnaryAddressOf:
		expr.Overload = ast.AddressOf
		expr.SetType(ast.ModifyQualifier(ast.NewReference(ot), ast.Constant))
		return nil
	case ast.UnaryDeref:
		if ot.Kind != ast.KindReference {
			return errf("cannot dereference non-reference type %s", ot)
		}
		expr.Overload = ast.Dereferenciation
		expr.SetType(ot.Base)
		return nil
	case ast.UnaryPlus:
		if ot.Kind != ast.KindInteger {
			return errf("no viable overload for unary '+' on %s", ot)
		}
		expr.Overload = ast.IntegerIdentity
		expr.SetType(ast.NewInteger())
		return nil
	case ast.UnaryMinus:
		if ot.Kind != ast.KindInteger {
			return errf("no viable overload for unary '-' on %s", ot)
		}
		expr.Overload = ast.IntegerNegation
		expr.SetType(ast.NewInteger())
		return nil
	case ast.UnaryNot:
		if ot.Kind != ast.KindBoolean {
			return errf("no viable overload for unary '!' on %s", ot)
		}
		expr.Overload = ast.BooleanNegation
		expr.SetType(ast.NewBoolean())
		return nil
	default:
		return errf("no viable unary overload")
	}
}

func (c *checker) checkBinaryOp(expr *ast.BinaryOp) error {
	if err := c.checkExpr(expr.Left); err != nil {
		return err
	}
	if err := c.checkExpr(expr.Right); err != nil {
		return err
	}
	lt, rt := expr.Left.Type(), expr.Right.Type()

	if expr.Op == ast.BinaryAdd && lt.Kind == ast.KindReference && rt.Kind == ast.KindInteger {
		expr.Overload = ast.ReferenceIndexation
		expr.SetType(lt)
		return nil
	}

	switch expr.Op {
	case ast.BinaryAdd, ast.BinarySub, ast.BinaryMul, ast.BinaryDiv, ast.BinaryMod:
		if lt.Kind == ast.KindInteger && rt.Kind == ast.KindInteger {
			expr.Overload = map[ast.BinaryOperator]ast.BinaryOverload{
				ast.BinaryAdd: ast.IntegerAdd, ast.BinarySub: ast.IntegerSub,
				ast.BinaryMul: ast.IntegerMul, ast.BinaryDiv: ast.IntegerDiv,
				ast.BinaryMod: ast.IntegerMod,
			}[expr.Op]
			expr.SetType(ast.NewInteger())
			return nil
		}
		if expr.Op == ast.BinaryAdd && lt.Kind == ast.KindCharacter && rt.Kind == ast.KindInteger {
			expr.Overload = ast.CharacterAdd
			expr.SetType(ast.NewCharacter())
			return nil
		}
		if expr.Op == ast.BinarySub && lt.Kind == ast.KindCharacter && rt.Kind == ast.KindCharacter {
			expr.Overload = ast.CharacterSub
			expr.SetType(ast.NewInteger())
			return nil
		}
	case ast.BinaryLt, ast.BinaryGt, ast.BinaryLe, ast.BinaryGe:
		if lt.Kind == ast.KindInteger && rt.Kind == ast.KindInteger {
			expr.Overload = map[ast.BinaryOperator]ast.BinaryOverload{
				ast.BinaryLt: ast.IntegerLt, ast.BinaryGt: ast.IntegerGt,
				ast.BinaryLe: ast.IntegerLe, ast.BinaryGe: ast.IntegerGe,
			}[expr.Op]
			expr.SetType(ast.NewBoolean())
			return nil
		}
	case ast.BinaryEq, ast.BinaryNe:
		if lt.Kind == rt.Kind {
			switch lt.Kind {
			case ast.KindInteger:
				expr.Overload = pick(expr.Op, ast.IntegerEq, ast.IntegerNe)
				expr.SetType(ast.NewBoolean())
				return nil
			case ast.KindBoolean:
				expr.Overload = pick(expr.Op, ast.BooleanEq, ast.BooleanNe)
				expr.SetType(ast.NewBoolean())
				return nil
			case ast.KindCharacter:
				expr.Overload = pick(expr.Op, ast.CharacterEq, ast.CharacterNe)
				expr.SetType(ast.NewBoolean())
				return nil
			}
		}
	case ast.BinaryAnd, ast.BinaryOr:
		if lt.Kind == ast.KindBoolean && rt.Kind == ast.KindBoolean {
			expr.Overload = pick(expr.Op, ast.BooleanAnd, ast.BooleanOr)
			expr.SetType(ast.NewBoolean())
			return nil
		}
	}
	return errf("no viable binary overload for operator on %s, %s", lt, rt)
}

// pick returns eq for == and ne for !=; a small helper for the equality
// overload table above.
func pick(op ast.BinaryOperator, eq, ne ast.BinaryOverload) ast.BinaryOverload {
	if op == ast.BinaryEq {
		return eq
	}
	return ne
}

func (c *checker) checkInitializer(expr *ast.Initializer) error {
	t, err := resolveAnnotation(c.chain, expr.TypeAnnotation)
	if err != nil {
		return err
	}
	if t.Kind != ast.KindStruct {
		return errf("initializer type %s is not a struct", t)
	}
	if err := c.checkMemberInits(t, expr.MemberOrder, expr.MemberInitializers); err != nil {
		return err
	}
	expr.SetType(ast.ModifyQualifier(t, ast.Constant))
	return nil
}

// checkMemberInits validates a struct initializer's member list against t's
// declared members: every named member must exist and be non-static, every
// value must be assignable, and every non-defaulted member must appear.
func (c *checker) checkMemberInits(t *ast.Type, order []string, inits map[string]ast.Expr) error {
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		member := findMember(t, name)
		if member == nil {
			return errf("struct %s has no member %q", t.Name, name)
		}
		if member.IsStatic {
			return errf("cannot initialize static member %q", name)
		}
		value := inits[name]
		if err := c.checkExpr(value); err != nil {
			return err
		}
		if !assignable(member.Type, value.Type()) {
			return errf("cannot assign %s to member %q of type %s", value.Type(), name, member.Type)
		}
		seen[name] = true
	}
	for _, member := range t.Members {
		if member.IsStatic || seen[member.Name] {
			continue
		}
		if member.DefaultInitializerGlobalName == "" {
			return errf("member %q of struct %s has no default and was not initialized", member.Name, t.Name)
		}
	}
	return nil
}

func findMember(t *ast.Type, name string) *ast.StructMember {
	for _, m := range t.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (c *checker) checkAllocation(expr *ast.Allocation) error {
	if expr.Size != nil {
		if err := c.checkExpr(expr.Size); err != nil {
			return err
		}
		if expr.Size.Type().Kind != ast.KindInteger {
			return errf("allocation size must be Integer, got %s", expr.Size.Type())
		}
	}

	base, err := resolveAnnotation(c.chain, expr.TypeAnnotation)
	if err != nil {
		return err
	}
	allocated := ast.ModifyQualifier(base, ast.Mutable)
	expr.AllocatedType = allocated

	if allocated.Kind == ast.KindStruct {
		init := &ast.Initializer{
			TypeAnnotation:     expr.TypeAnnotation,
			MemberOrder:        expr.MemberOrder,
			MemberInitializers: expr.MemberInitializers,
		}
		if err := c.checkInitializer(init); err != nil {
			return err
		}
		expr.InitialValue = init
	} else {
		if len(expr.MemberOrder) > 0 {
			return errf("member initializer list on non-struct allocation of %s", allocated)
		}
		expr.InitialValue = zeroLiteral(allocated)
	}

	expr.SetType(ast.ModifyQualifier(ast.NewReference(allocated), ast.Constant))
	return nil
}

// zeroLiteral synthesizes the default value for an allocation with no
// explicit initializer.
func zeroLiteral(t *ast.Type) ast.Expr {
	switch t.Kind {
	case ast.KindBoolean:
		e := &ast.BooleanLiteral{Value: false}
		e.SetType(ast.NewBoolean())
		return e
	case ast.KindInteger:
		e := &ast.IntegerLiteral{Value: 0}
		e.SetType(ast.NewInteger())
		return e
	case ast.KindCharacter:
		e := &ast.CharacterLiteral{Value: 0}
		e.SetType(ast.NewCharacter())
		return e
	case ast.KindString:
		e := &ast.StringLiteral{Value: ""}
		e.SetType(ast.NewString())
		return e
	default:
		e := &ast.UnitLiteral{}
		e.SetType(ast.NewUnit())
		return e
	}
}

// assignable reports whether a value of type value may be bound to a
// target of type target.
func assignable(target, value *ast.Type) bool {
	if target == nil || value == nil {
		return false
	}
	switch target.Kind {
	case ast.KindUnit, ast.KindBoolean, ast.KindInteger, ast.KindCharacter, ast.KindString:
		return value.Kind == target.Kind
	case ast.KindStruct, ast.KindEnum:
		return value.Kind == target.Kind && value.Name == target.Name
	case ast.KindReference:
		if value.Kind != ast.KindReference {
			return false
		}
		if !assignable(target.Base, value.Base) {
			return false
		}
		if target.Base.Qualifier == ast.Mutable && value.Base.Qualifier != ast.Mutable {
			return false
		}
		return true
	case ast.KindFunction:
		if value.Kind != ast.KindFunction || len(target.Params) != len(value.Params) {
			return false
		}
		for i1 := range target.Params {
			if !assignable(target.Params[i1], value.Params[i1]) {
				return false
			}
		}
		return assignable(target.Return, value.Return)
	default:
		return false
	}
}

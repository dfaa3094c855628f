// resolver.go implements the resolver pass: walks every callable,
// attaching the owning Scope to each Variable/Declaration and computing
// lambda capture sets. The scope stack is a util.Stack: innermost
// scope on top, popped on block exit.
package sema

import (
	"github.com/hhramberg/l0c/src/ast"
	"github.com/hhramberg/l0c/src/token"
	"github.com/hhramberg/l0c/src/util"
)

// resolver tracks, across the whole walk, which locals_scope belongs to
// which Function (to detect captures) and which Function is innermost at
// any point in the walk.
type resolver struct {
	localsOwner map[*ast.Scope]*ast.Function
	funcStack   []*ast.Function
}

// Resolve walks every callable in m: top-level functions, methods, and
// struct default-initializer functions.
func Resolve(m *ast.Module) error {
	st := &util.Stack{}
	st.Push(m.EnvironmentScope)
	st.Push(m.ExternalsScope)
	st.Push(m.GlobalsScope)

	r := &resolver{localsOwner: make(map[*ast.Scope]*ast.Function)}
	for _, fn := range m.Callables {
		if err := r.resolveFunction(st, fn); err != nil {
			return err
		}
	}
	return resolveDefaultInitializers(st, r, m)
}

// resolveDefaultInitializers walks every struct member's non-function
// default initializer expression. Function-valued defaults are already
// covered via m.Callables; these are the remaining primitive/struct
// literal defaults.
func resolveDefaultInitializers(st *util.Stack, r *resolver, m *ast.Module) error {
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
			if err := r.resolveExpr(st, member.DefaultInitializer); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolver) resolveFunction(st *util.Stack, fn *ast.Function) error {
	fn.LocalsScope = ast.NewScope()
	for _, param := range fn.Parameters {
		if err := fn.LocalsScope.DeclareVariable(param.Name); err != nil {
			return err
		}
		param.Scope = fn.LocalsScope
	}

	r.localsOwner[fn.LocalsScope] = fn
	r.funcStack = append(r.funcStack, fn)
	st.Push(fn.LocalsScope)

	err := r.resolveBlock(st, fn.Body)

	st.Pop()
	r.funcStack = r.funcStack[:len(r.funcStack)-1]
	return err
}

func (r *resolver) resolveBlock(st *util.Stack, block *ast.StatementBlock) error {
	for _, stmt := range block.Statements {
		if err := r.resolveStmt(st, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) resolveStmt(st *util.Stack, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Declaration:
		if s.Initializer != nil {
			if err := r.resolveExpr(st, s.Initializer); err != nil {
				return err
			}
		}
		top := st.Peek().(*ast.Scope)
		if err := top.DeclareVariable(s.Name); err != nil {
			return err
		}
		s.Scope = top
		return nil

	case *ast.TypeDeclaration:
		return errf("local type declarations are not supported")

	case *ast.ExpressionStatement:
		return r.resolveExpr(st, s.Expression)

	case *ast.ReturnStatement:
		if s.Value != nil {
			return r.resolveExpr(st, s.Value)
		}
		return nil

	case *ast.ConditionalStatement:
		if err := r.resolveExpr(st, s.Condition); err != nil {
			return err
		}
		if err := r.resolveAnonymousBlock(st, s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return r.resolveAnonymousBlock(st, s.Else)
		}
		return nil

	case *ast.WhileLoop:
		if err := r.resolveExpr(st, s.Condition); err != nil {
			return err
		}
		return r.resolveAnonymousBlock(st, s.Body)

	case *ast.Deallocation:
		return r.resolveExpr(st, s.Reference)

	default:
		return errf("resolver: unhandled statement type")
	}
}

// resolveAnonymousBlock opens a fresh scope for an if/while block,
// records it on the block for the generator's scope stack, and resolves
// the block's statements inside it.
func (r *resolver) resolveAnonymousBlock(st *util.Stack, block *ast.StatementBlock) error {
	block.Scope = ast.NewScope()
	st.Push(block.Scope)
	err := r.resolveBlock(st, block)
	st.Pop()
	return err
}

func (r *resolver) resolveExpr(st *util.Stack, e ast.Expr) error {
	switch expr := e.(type) {
	case *ast.UnitLiteral, *ast.BooleanLiteral, *ast.IntegerLiteral,
		*ast.CharacterLiteral, *ast.StringLiteral:
		return nil

	case *ast.Variable:
		return r.resolveVariable(st, expr)

	case *ast.MemberAccessor:
		return r.resolveExpr(st, expr.Object)

	case *ast.Call:
		if err := r.resolveExpr(st, expr.Function); err != nil {
			return err
		}
		for _, arg := range expr.Arguments {
			if err := r.resolveExpr(st, arg); err != nil {
				return err
			}
		}
		return nil

	case *ast.UnaryOp:
		return r.resolveExpr(st, expr.Operand)

	case *ast.BinaryOp:
		if err := r.resolveExpr(st, expr.Left); err != nil {
			return err
		}
		return r.resolveExpr(st, expr.Right)

	case *ast.Assignment:
		if err := r.resolveExpr(st, expr.Target); err != nil {
			return err
		}
		return r.resolveExpr(st, expr.Value)

	case *ast.Function:
		return r.resolveFunction(st, expr)

	case *ast.Initializer:
		for _, name := range expr.MemberOrder {
			if err := r.resolveExpr(st, expr.MemberInitializers[name]); err != nil {
				return err
			}
		}
		return nil

	case *ast.Allocation:
		if expr.Size != nil {
			if err := r.resolveExpr(st, expr.Size); err != nil {
				return err
			}
		}
		for _, name := range expr.MemberOrder {
			if err := r.resolveExpr(st, expr.MemberInitializers[name]); err != nil {
				return err
			}
		}
		return nil

	default:
		return errf("resolver: unhandled expression type")
	}
}

// resolveVariable walks the scope stack top-down looking for v.Name and
// attaches the owning scope. If the name was declared in an enclosing
// function's locals_scope, it is recorded as a capture of every function
// nested inside the owner, not just the innermost one: each intermediate
// lambda must carry the variable in its own context struct so the next
// level down can capture it from there.
func (r *resolver) resolveVariable(st *util.Stack, v *ast.Variable) error {
	name := v.Name.String()
	for i1 := 1; i1 <= st.Size(); i1++ {
		scope := st.Get(i1).(*ast.Scope)
		if !scope.IsVariableDeclared(name) {
			continue
		}
		v.Scope = scope
		if owner, ok := r.localsOwner[scope]; ok {
			for j1 := len(r.funcStack) - 1; j1 >= 0 && r.funcStack[j1] != owner; j1-- {
				r.addCapture(r.funcStack[j1], v.Name)
			}
		}
		return nil
	}
	return errf("undeclared variable %q", name)
}

// addCapture appends name to fn.Captures in first-use order, suppressing
// duplicates.
func (r *resolver) addCapture(fn *ast.Function, name token.Ident) {
	for _, c := range fn.Captures {
		if c.Equal(name) {
			return
		}
	}
	fn.Captures = append(fn.Captures, name)
}

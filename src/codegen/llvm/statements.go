// statements.go lowers ast.Stmt to LLVM IR, one gen function per
// statement kind.
package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/hhramberg/l0c/src/ast"
	"github.com/hhramberg/l0c/src/util"
)

// genBlock lowers every statement in block in order, with the block's
// anonymous scope (if the resolver opened one) pushed for name lookup.
func (g *generator) genBlock(fn llvm.Value, block *ast.StatementBlock, st *util.Stack) error {
	if block.Scope != nil {
		st.Push(block.Scope)
		defer st.Pop()
	}
	for _, stmt := range block.Statements {
		if err := g.genStmt(fn, stmt, st); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) genStmt(fn llvm.Value, stmt ast.Stmt, st *util.Stack) error {
	switch s := stmt.(type) {
	case *ast.Declaration:
		return g.genDeclaration(st, s)

	case *ast.TypeDeclaration:
		return fmt.Errorf("codegen: local type declarations are not supported")

	case *ast.ExpressionStatement:
		_, err := g.genExpr(st, s.Expression)
		return err

	case *ast.ReturnStatement:
		return g.genReturnStatement(st, s)

	case *ast.ConditionalStatement:
		return g.genConditional(fn, st, s)

	case *ast.WhileLoop:
		return g.genWhileLoop(fn, st, s)

	case *ast.Deallocation:
		ptr, err := g.genExpr(st, s.Reference)
		if err != nil {
			return err
		}
		g.deallocate(ptr)
		return nil

	default:
		return fmt.Errorf("codegen: unhandled statement type %T", stmt)
	}
}

// genDeclaration allocates stack storage for a new local, initializes it,
// and binds the address under its name. The alloca is emitted at the
// builder's current insertion point, i.e. in whichever block the
// declaration appears (the entry block, or a then/else/loop-body block),
// not in the function's allocas block.
func (g *generator) genDeclaration(st *util.Stack, decl *ast.Declaration) error {
	val, err := g.genExpr(st, decl.Initializer)
	if err != nil {
		return err
	}
	llt, err := g.lowerType(decl.Type)
	if err != nil {
		return err
	}
	addr := g.builder.CreateAlloca(llt, decl.Name)
	g.builder.CreateStore(val, addr)
	return decl.Scope.SetValue(decl.Name, addr)
}

// genReturnStatement lowers "return [expr]"; a bare return in a
// unit-returning function returns the unit zero value.
func (g *generator) genReturnStatement(st *util.Stack, ret *ast.ReturnStatement) error {
	if ret.Value == nil {
		g.builder.CreateRet(llvm.ConstNull(g.unitType))
		return nil
	}
	val, err := g.genExpr(st, ret.Value)
	if err != nil {
		return err
	}
	g.builder.CreateRet(val)
	return nil
}

// genConditional lowers "if cond: { then } [else: { else }]" with the
// classic then/else/merge three-block shape, skipping blocks proven
// unreachable by the return-statement pass: a branch
// that always returns needs no merge edge out of it.
func (g *generator) genConditional(fn llvm.Value, st *util.Stack, cond *ast.ConditionalStatement) error {
	condVal, err := g.genExpr(st, cond.Condition)
	if err != nil {
		return err
	}

	thenBB := llvm.AddBasicBlock(fn, util.NewLabel(util.LabelIfThen))
	var elseBB llvm.BasicBlock
	hasElse := cond.Else != nil
	if hasElse {
		elseBB = llvm.AddBasicBlock(fn, util.NewLabel(util.LabelIfElse))
	}

	needMerge := !cond.Then.Returns || (hasElse && !cond.Else.Returns) || !hasElse
	var mergeBB llvm.BasicBlock
	if needMerge {
		mergeBB = llvm.AddBasicBlock(fn, util.NewLabel(util.LabelIfEnd))
	}

	if hasElse {
		g.builder.CreateCondBr(condVal, thenBB, elseBB)
	} else {
		g.builder.CreateCondBr(condVal, thenBB, mergeBB)
	}

	g.builder.SetInsertPointAtEnd(thenBB)
	if err := g.genBlock(fn, cond.Then, st); err != nil {
		return err
	}
	if !cond.Then.Returns {
		g.builder.CreateBr(mergeBB)
	}

	if hasElse {
		g.builder.SetInsertPointAtEnd(elseBB)
		if err := g.genBlock(fn, cond.Else, st); err != nil {
			return err
		}
		if !cond.Else.Returns {
			g.builder.CreateBr(mergeBB)
		}
	}

	if needMerge {
		g.builder.SetInsertPointAtEnd(mergeBB)
	}
	return nil
}

// genWhileLoop lowers "while cond: { body }" with the classic
// head/body/merge three-block shape.
func (g *generator) genWhileLoop(fn llvm.Value, st *util.Stack, loop *ast.WhileLoop) error {
	headBB := llvm.AddBasicBlock(fn, util.NewLabel(util.LabelWhileHead))
	bodyBB := llvm.AddBasicBlock(fn, util.NewLabel(util.LabelWhileBody))
	mergeBB := llvm.AddBasicBlock(fn, util.NewLabel(util.LabelWhileEnd))

	g.builder.CreateBr(headBB)

	g.builder.SetInsertPointAtEnd(headBB)
	condVal, err := g.genExpr(st, loop.Condition)
	if err != nil {
		return err
	}
	g.builder.CreateCondBr(condVal, bodyBB, mergeBB)

	g.builder.SetInsertPointAtEnd(bodyBB)
	if err := g.genBlock(fn, loop.Body, st); err != nil {
		return err
	}
	g.builder.CreateBr(headBB)

	g.builder.SetInsertPointAtEnd(mergeBB)
	return nil
}

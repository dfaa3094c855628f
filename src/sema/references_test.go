package sema

import (
	"testing"

	"github.com/hhramberg/l0c/src/ast"
	"github.com/hhramberg/l0c/src/frontend"
)

// runFull drives every semantic pass over a single-module source (passes
// 1-9), returning the module and the first error any pass raises.
func runFull(t *testing.T, src string) (*ast.Module, error) {
	t.Helper()
	m, err := frontend.Parse(src, "test", "")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if err := TopLevel(m); err != nil {
		t.Fatalf("top-level error: %s", err)
	}
	if err := GlobalScope(m); err != nil {
		t.Fatalf("global scope error: %s", err)
	}
	if err := BindExternals([]*ast.Module{m}); err != nil {
		t.Fatalf("extern binding error: %s", err)
	}
	if err := Resolve(m); err != nil {
		t.Fatalf("resolver error: %s", err)
	}
	if err := TypeCheck(m); err != nil {
		t.Fatalf("type checker error: %s", err)
	}
	if err := CheckReturns(m); err != nil {
		t.Fatalf("return pass error: %s", err)
	}
	return m, CheckReferences(m)
}

// TestCheckReferencesSynthesizesTargetAddressForVariable covers the bare
// "x = value" case: TargetAddress becomes "&x".
func TestCheckReferencesSynthesizesTargetAddressForVariable(t *testing.T) {
	src := `fn f() -> I64 { x: mut I64 = 0; x = 1; return x; };`
	m, err := runFull(t, src)
	if err != nil {
		t.Fatalf("unexpected reference pass error: %s", err)
	}
	fn := m.Callables[0]
	exprStmt := fn.Body.Statements[1].(*ast.ExpressionStatement)
	assign := exprStmt.Expression.(*ast.Assignment)
	addr, ok := assign.TargetAddress.(*ast.UnaryOp)
	if !ok || addr.Op != ast.UnaryAddressOf {
		t.Fatalf("expected TargetAddress to be synthesized &x, got %T", assign.TargetAddress)
	}
}

// TestCheckReferencesRejectsNonLvalueAssignmentTarget covers assigning to a
// non-lvalue expression (a literal).
func TestCheckReferencesRejectsNonLvalueAssignmentTarget(t *testing.T) {
	// The type checker itself only demands a Mutable target type, which a
	// literal never has, so this is rejected earlier, at TypeCheck.
	src := `fn f() -> I64 { 1 = 2; return 0; };`
	m, err := frontend.Parse(src, "test", "")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if err := TopLevel(m); err != nil {
		t.Fatalf("top-level error: %s", err)
	}
	if err := GlobalScope(m); err != nil {
		t.Fatalf("global scope error: %s", err)
	}
	if err := BindExternals([]*ast.Module{m}); err != nil {
		t.Fatalf("extern binding error: %s", err)
	}
	if err := Resolve(m); err != nil {
		t.Fatalf("resolver error: %s", err)
	}
	if err := TypeCheck(m); err == nil {
		t.Fatalf("expected an error assigning to a non-lvalue literal")
	}
}

// TestCheckReferencesAllowsDereferenceLvalue covers "r^ = value", where r is
// a reference: the dereference is an lvalue and TargetAddress is the
// reference itself.
func TestCheckReferencesAllowsDereferenceLvalue(t *testing.T) {
	src := `fn f() -> I64 { x: mut I64 = 0; r: &mut I64 = &x; r^ = 5; return r^; };`
	m, err := runFull(t, src)
	if err != nil {
		t.Fatalf("unexpected reference pass error: %s", err)
	}
	fn := m.Callables[0]
	exprStmt := fn.Body.Statements[2].(*ast.ExpressionStatement)
	assign := exprStmt.Expression.(*ast.Assignment)
	deref := assign.Target.(*ast.UnaryOp)
	if deref.Op != ast.UnaryDeref {
		t.Fatalf("expected the target to be a dereference")
	}
	if assign.TargetAddress != deref.Operand {
		t.Errorf("expected TargetAddress to reuse the dereference's operand directly")
	}
}

// TestCheckReferencesRejectsAddressOfNonLvalue covers "&(1 + 2)".
func TestCheckReferencesRejectsAddressOfNonLvalue(t *testing.T) {
	src := `fn f() -> I64 { r := &(1 + 2); return 0; };`
	_, err := runFull(t, src)
	if err == nil {
		t.Fatalf("expected an error taking the address of a non-lvalue expression")
	}
}

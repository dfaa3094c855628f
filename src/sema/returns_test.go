package sema

import (
	"testing"

	"github.com/hhramberg/l0c/src/ast"
	"github.com/hhramberg/l0c/src/frontend"
)

// runThroughReturns drives a single-module source through passes 1-8
// (parse, top-level, global scope, extern binding, resolver, type checker,
// return pass), the minimum needed to exercise CheckReturns.
func runThroughReturns(t *testing.T, src string) (*ast.Module, error) {
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
	return m, CheckReturns(m)
}

// TestCheckReturnsTruncatesDeadCode verifies that statements following a
// return are dropped as unreachable.
func TestCheckReturnsTruncatesDeadCode(t *testing.T) {
	src := `fn f() -> I64 { return 1; x: I64 = 2; return x; };`
	m, err := runThroughReturns(t, src)
	if err != nil {
		t.Fatalf("unexpected return pass error: %s", err)
	}
	fn := m.Callables[0]
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected dead code after the return to be truncated, got %d statements", len(fn.Body.Statements))
	}
}

// TestCheckReturnsInsertsImplicitUnitReturn covers the implicit "return
// unit" appended to a falling-through unit-returning function.
func TestCheckReturnsInsertsImplicitUnitReturn(t *testing.T) {
	src := `fn f() -> () { x: I64 = 2; };`
	m, err := runThroughReturns(t, src)
	if err != nil {
		t.Fatalf("unexpected return pass error: %s", err)
	}
	fn := m.Callables[0]
	last := fn.Body.Statements[len(fn.Body.Statements)-1]
	ret, ok := last.(*ast.ReturnStatement)
	if !ok || ret.Value != nil {
		t.Errorf("expected an implicit bare return appended, got %T", last)
	}
	if !fn.Body.Returns {
		t.Errorf("expected Body.Returns to be set true after the implicit return")
	}
}

// TestCheckReturnsRejectsMissingReturn covers the error path: a
// non-unit-returning function whose body falls through is a SemanticError.
func TestCheckReturnsRejectsMissingReturn(t *testing.T) {
	src := `fn f() -> I64 { x: I64 = 2; };`
	_, err := runThroughReturns(t, src)
	if err == nil {
		t.Fatalf("expected a semantic error for a missing return on a non-unit function")
	}
}

// TestCheckReturnsBothArmsReturn verifies that an if/else
// where both arms return makes the enclosing block return too, with no
// implicit return appended after it.
func TestCheckReturnsBothArmsReturn(t *testing.T) {
	src := `fn abs(x: I64) -> I64 { if x < 0: { return -x; } else: { return x; }; };`
	m, err := runThroughReturns(t, src)
	if err != nil {
		t.Fatalf("unexpected return pass error: %s", err)
	}
	fn := m.Callables[0]
	if !fn.Body.Returns {
		t.Errorf("expected the function body to be marked as returning")
	}
	if len(fn.Body.Statements) != 1 {
		t.Errorf("expected no implicit return appended after a fully-returning if/else, got %d statements", len(fn.Body.Statements))
	}
}

// TestCheckReturnsWhileBodyNeverGuaranteesReturn covers the rule that a
// while loop's body, even if it always returns internally, does not make
// the enclosing block return (the loop may execute zero times).
func TestCheckReturnsWhileBodyNeverGuaranteesReturn(t *testing.T) {
	src := `fn f() -> I64 { while true: { return 1; }; return 0; };`
	m, err := runThroughReturns(t, src)
	if err != nil {
		t.Fatalf("unexpected return pass error: %s", err)
	}
	fn := m.Callables[0]
	if len(fn.Body.Statements) != 2 {
		t.Errorf("expected the trailing return after the while loop to survive, got %d statements", len(fn.Body.Statements))
	}
}

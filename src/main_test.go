package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hhramberg/l0c/src/ast"
	codegenllvm "github.com/hhramberg/l0c/src/codegen/llvm"
	"github.com/hhramberg/l0c/src/frontend"
	"github.com/hhramberg/l0c/src/sema"
	"github.com/hhramberg/l0c/src/util"
)

// compile runs every pass of a single-module pipeline over src and returns
// the generated LLVM IR text together with the analysed module; the first
// error any pass raises fails the test.
func compile(t *testing.T, name, src string) (string, *ast.Module) {
	t.Helper()

	m, err := frontend.Parse(src, name, "")
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if err := sema.TopLevel(m); err != nil {
		t.Fatalf("top-level analysis error: %s", err)
	}
	if err := sema.GlobalScope(m); err != nil {
		t.Fatalf("global scope error: %s", err)
	}
	if err := sema.BindExternals([]*ast.Module{m}); err != nil {
		t.Fatalf("extern binding error: %s", err)
	}
	if err := sema.Resolve(m); err != nil {
		t.Fatalf("resolver error: %s", err)
	}
	if err := sema.TypeCheck(m); err != nil {
		t.Fatalf("type checker error: %s", err)
	}
	if err := sema.CheckReturns(m); err != nil {
		t.Fatalf("return pass error: %s", err)
	}
	if err := sema.CheckReferences(m); err != nil {
		t.Fatalf("reference pass error: %s", err)
	}

	ir, err := codegenllvm.Generate(util.Options{}, m)
	if err != nil {
		t.Fatalf("generator error: %s", err)
	}
	return ir, m
}

// expectFail runs the pipeline up to the reference pass and requires some
// pass, from parsing onwards, to fail; it returns that pass's error.
func expectFail(t *testing.T, name, src string) error {
	t.Helper()

	m, err := frontend.Parse(src, name, "")
	if err != nil {
		return err
	}
	if err := sema.TopLevel(m); err != nil {
		return err
	}
	if err := sema.GlobalScope(m); err != nil {
		return err
	}
	if err := sema.BindExternals([]*ast.Module{m}); err != nil {
		return err
	}
	if err := sema.Resolve(m); err != nil {
		return err
	}
	if err := sema.TypeCheck(m); err != nil {
		return err
	}
	if err := sema.CheckReturns(m); err != nil {
		return err
	}
	if err := sema.CheckReferences(m); err != nil {
		return err
	}
	t.Fatalf("expected a semantic error, pipeline succeeded")
	return nil
}

// TestIntegerReturn compiles constant arithmetic in a returned expression.
func TestIntegerReturn(t *testing.T) {
	src := `fn main() -> I64 { return 2 + 3 * 4; };`
	ir, _ := compile(t, "integer_return", src)
	if !strings.Contains(ir, "define i64 @main(") {
		t.Errorf("expected a defined i64 @main, got:\n%s", ir)
	}
}

// TestConditionalWithElse: both arms of an if/else return, so no merge
// block should be reachable by a fallthrough br.
func TestConditionalWithElse(t *testing.T) {
	src := `
fn abs(x: I64) -> I64 {
  if x < 0: { return -x; } else: { return x; };
};
fn main() -> I64 { return abs(-7); };
`
	ir, _ := compile(t, "abs", src)
	if !strings.Contains(ir, "define i64 @__fn__abs(") {
		t.Errorf("expected a defined __fn__abs, got:\n%s", ir)
	}
	if strings.Contains(ir, "endif") {
		t.Errorf("expected no merge block when both arms return, got:\n%s", ir)
	}
}

// TestWhileLoopSum compiles a while loop accumulating 1..=10 into s.
func TestWhileLoopSum(t *testing.T) {
	src := `
fn main() -> I64 {
  s: mut I64 = 0; i: mut I64 = 1;
  while i <= 10: { s = s + i; i = i + 1; };
  return s;
};
`
	ir, _ := compile(t, "sum_loop", src)
	if !strings.Contains(ir, "whilehead") || !strings.Contains(ir, "whilebody") {
		t.Errorf("expected whilehead/whilebody blocks, got:\n%s", ir)
	}
}

// TestClosureCapture: a lambda capturing an enclosing parameter must
// carry a non-trivial context struct.
func TestClosureCapture(t *testing.T) {
	src := `
fn make_adder(n: I64) -> (I64) -> I64 {
  return $(x: I64) -> I64 { return x + n; };
};
fn main() -> I64 { return 0; };
`
	ir, m := compile(t, "make_adder", src)
	if !strings.Contains(ir, "%__closure = type") {
		t.Errorf("expected the shared __closure struct type, got:\n%s", ir)
	}
	if !strings.Contains(ir, "__context__") {
		t.Errorf("expected a context struct for the capturing lambda, got:\n%s", ir)
	}

	// Find the lambda inside make_adder's body and check its capture set.
	var lambda *ast.Function
	for _, c := range m.Callables {
		if c.GlobalName == "__fn__make_adder" {
			ret := c.Body.Statements[0].(*ast.ReturnStatement)
			lambda = ret.Value.(*ast.Function)
		}
	}
	if lambda == nil {
		t.Fatalf("could not locate lambda in make_adder's body")
	}
	if len(lambda.Captures) != 1 || lambda.Captures[0].Last() != "n" {
		t.Errorf("expected captures == [n], got %v", lambda.Captures)
	}
}

// TestNestedClosureCapturesGrandparent: a lambda nested two levels deep
// reads a variable declared in the outermost function. The capture must
// be relayed through the intermediate lambda's context struct, so both
// lambdas carry it in their capture sets.
func TestNestedClosureCapturesGrandparent(t *testing.T) {
	src := `
fn make(n: I64) -> () -> (I64) -> I64 {
  return $() -> (I64) -> I64 {
    return $(x: I64) -> I64 { return x + n; };
  };
};
fn main() -> I64 { return 0; };
`
	ir, m := compile(t, "nested_capture", src)
	if !strings.Contains(ir, "__context__") {
		t.Errorf("expected heap-allocated context structs, got:\n%s", ir)
	}

	var outer *ast.Function
	for _, c := range m.Callables {
		if c.GlobalName == "__fn__make" {
			ret := c.Body.Statements[0].(*ast.ReturnStatement)
			outer = ret.Value.(*ast.Function)
		}
	}
	if outer == nil {
		t.Fatalf("could not locate the intermediate lambda in make's body")
	}
	if len(outer.Captures) != 1 || outer.Captures[0].Last() != "n" {
		t.Fatalf("expected the intermediate lambda to relay the capture of n, got %v", outer.Captures)
	}
	inner := outer.Body.Statements[0].(*ast.ReturnStatement).Value.(*ast.Function)
	if len(inner.Captures) != 1 || inner.Captures[0].Last() != "n" {
		t.Errorf("expected the innermost lambda to capture n, got %v", inner.Captures)
	}
}

// TestStructDefaultInitializer compiles a struct with defaulted members,
// partially overridden by an initializer expression.
func TestStructDefaultInitializer(t *testing.T) {
	src := `
struct Point { x: I64 = 0; y: I64 = 0; };
fn main() -> I64 { p := Point{ x = 3; y = 4; }; return p.x + p.y; };
`
	ir, _ := compile(t, "point", src)
	if !strings.Contains(ir, `%Point = type { i64, i64 }`) {
		t.Errorf("expected a named Point struct of {i64,i64}, got:\n%s", ir)
	}
}

// TestReferenceMutabilityRejection: binding a const-base reference to a
// mut-base reference annotation is rejected.
func TestReferenceMutabilityRejection(t *testing.T) {
	src := `fn main() -> I64 { x: I64 = 5; r: &mut I64 = &x; return 0; };`
	err := expectFail(t, "bad_ref", src)
	if err == nil {
		t.Fatalf("expected a type error")
	}
	if !strings.Contains(err.Error(), "assign") && !strings.Contains(err.Error(), "qualif") {
		t.Errorf("expected an error naming the incompatible qualifiers, got: %s", err)
	}
}

// TestBlockScopedDeclaration compiles a declaration local to an if block,
// read back inside the same block.
func TestBlockScopedDeclaration(t *testing.T) {
	src := `
fn main() -> I64 {
  s: mut I64 = 0;
  if true: { y := 41; s = s + y; };
  return s + 1;
};
`
	ir, _ := compile(t, "block_scope", src)
	if !strings.Contains(ir, "define i64 @main(") {
		t.Errorf("expected a defined main, got:\n%s", ir)
	}
}

// TestEmptyModuleCompiles: an empty module still lowers to a module that
// carries the shared __closure type. Besides it, the module holds the
// printf/getchar/malloc/free declarations and the internal closure
// globals wrapping printf and getchar, which dead-global elimination keeps.
func TestEmptyModuleCompiles(t *testing.T) {
	ir, _ := compile(t, "empty", ``)
	if !strings.Contains(ir, "%__closure = type") {
		t.Errorf("expected the shared __closure type even for an empty module, got:\n%s", ir)
	}
}

// TestNewZeroLength checks that new[0] T is accepted.
func TestNewZeroLength(t *testing.T) {
	src := `fn main() -> I64 { r := new[0] I64{}; delete r; return 0; };`
	if _, _, err := func() (string, *ast.Module, error) {
		m, err := frontend.Parse(src, "new_zero", "")
		if err != nil {
			return "", nil, err
		}
		if err := sema.TopLevel(m); err != nil {
			return "", nil, err
		}
		if err := sema.GlobalScope(m); err != nil {
			return "", nil, err
		}
		if err := sema.BindExternals([]*ast.Module{m}); err != nil {
			return "", nil, err
		}
		if err := sema.Resolve(m); err != nil {
			return "", nil, err
		}
		if err := sema.TypeCheck(m); err != nil {
			return "", nil, err
		}
		if err := sema.CheckReturns(m); err != nil {
			return "", nil, err
		}
		if err := sema.CheckReferences(m); err != nil {
			return "", nil, err
		}
		ir, err := codegenllvm.Generate(util.Options{}, m)
		return ir, m, err
	}(); err != nil {
		t.Fatalf("new[0] T should be accepted: %s", err)
	}
}

// TestFirstErrorDrainsBufferedErrors drives the driver's failing-compile
// path: firstError must return the first buffered error and terminate
// (Errors() closes its channel) rather than block after draining.
func TestFirstErrorDrainsBufferedErrors(t *testing.T) {
	pe := util.NewPerror(2)
	defer pe.Stop()

	pe.Append(errors.New("first"))
	pe.Append(errors.New("second"))
	for pe.Len() < 2 {
		time.Sleep(time.Millisecond)
	}

	done := make(chan error, 1)
	go func() { done <- firstError(pe) }()
	select {
	case err := <-done:
		if err == nil || err.Error() != "first" {
			t.Errorf("expected the first buffered error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("firstError blocked instead of draining the error buffer")
	}
}

// TestCrossModuleExternBinding: module b calls a function defined in
// module a without an explicit import statement.
func TestCrossModuleExternBinding(t *testing.T) {
	srcA := `fn helper() -> I64 { return 41; };`
	srcB := `fn main() -> I64 { return helper() + 1; };`

	a, err := frontend.Parse(srcA, "a", "")
	if err != nil {
		t.Fatalf("parse a: %s", err)
	}
	b, err := frontend.Parse(srcB, "b", "")
	if err != nil {
		t.Fatalf("parse b: %s", err)
	}
	for _, m := range []*ast.Module{a, b} {
		if err := sema.TopLevel(m); err != nil {
			t.Fatalf("top-level(%s): %s", m.Name, err)
		}
		if err := sema.GlobalScope(m); err != nil {
			t.Fatalf("global scope(%s): %s", m.Name, err)
		}
	}
	if err := sema.BindExternals([]*ast.Module{a, b}); err != nil {
		t.Fatalf("bind externals: %s", err)
	}
	for _, m := range []*ast.Module{a, b} {
		if err := sema.Resolve(m); err != nil {
			t.Fatalf("resolve(%s): %s", m.Name, err)
		}
		if err := sema.TypeCheck(m); err != nil {
			t.Fatalf("type check(%s): %s", m.Name, err)
		}
		if err := sema.CheckReturns(m); err != nil {
			t.Fatalf("return pass(%s): %s", m.Name, err)
		}
		if err := sema.CheckReferences(m); err != nil {
			t.Fatalf("reference pass(%s): %s", m.Name, err)
		}
	}
}

package frontend

import (
	"testing"

	"github.com/hhramberg/l0c/src/ast"
)

// parseOne parses src and requires exactly one top-level statement,
// returning it.
func parseOne(t *testing.T, src string) ast.Stmt {
	t.Helper()
	m, err := Parse(src, "test", "")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if len(m.Statements) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(m.Statements))
	}
	return m.Statements[0]
}

// TestParseFnDeclDesugars checks that "fn name(params) -> ret { ... }"
// desugars into a Declaration whose initializer is a Function.
func TestParseFnDeclDesugars(t *testing.T) {
	stmt := parseOne(t, `fn add(a: I64, b: I64) -> I64 { return a + b; };`)
	decl, ok := stmt.(*ast.Declaration)
	if !ok {
		t.Fatalf("expected *ast.Declaration, got %T", stmt)
	}
	if decl.Name != "add" {
		t.Errorf("expected name %q, got %q", "add", decl.Name)
	}
	fn, ok := decl.Initializer.(*ast.Function)
	if !ok {
		t.Fatalf("expected initializer *ast.Function, got %T", decl.Initializer)
	}
	if len(fn.Parameters) != 2 {
		t.Errorf("expected 2 parameters, got %d", len(fn.Parameters))
	}
}

// TestParseStructDeclDesugars covers the "struct Name { fields }" sugar.
func TestParseStructDeclDesugars(t *testing.T) {
	stmt := parseOne(t, `struct Point { x: I64 = 0; y: I64 = 0; };`)
	td, ok := stmt.(*ast.TypeDeclaration)
	if !ok {
		t.Fatalf("expected *ast.TypeDeclaration, got %T", stmt)
	}
	se, ok := td.Definition.(*ast.StructExpression)
	if !ok {
		t.Fatalf("expected *ast.StructExpression, got %T", td.Definition)
	}
	if len(se.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(se.Members))
	}
	if se.Members[0].Name != "x" || se.Members[0].DefaultInitializer == nil {
		t.Errorf("expected member x with a default initializer")
	}
}

// TestParseExpressionPrecedence exercises the full precedence chain from
// assignment down to postfix/atom.
func TestParseExpressionPrecedence(t *testing.T) {
	stmt := parseOne(t, `fn main() -> I64 { return 1 + 2 * 3 == 7 && true; };`)
	decl := stmt.(*ast.Declaration)
	fn := decl.Initializer.(*ast.Function)
	ret := fn.Body.Statements[0].(*ast.ReturnStatement)
	top, ok := ret.Value.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expected top-level *ast.BinaryOp (&&), got %T", ret.Value)
	}
	if top.Op != ast.BinaryAnd {
		t.Errorf("expected && at the top of the precedence chain, got %v", top.Op)
	}
	eq, ok := top.Left.(*ast.BinaryOp)
	if !ok || eq.Op != ast.BinaryEq {
		t.Fatalf("expected == below &&, got %T", top.Left)
	}
	add, ok := eq.Left.(*ast.BinaryOp)
	if !ok || add.Op != ast.BinaryAdd {
		t.Fatalf("expected + below ==, got %T", eq.Left)
	}
	mul, ok := add.Right.(*ast.BinaryOp)
	if !ok || mul.Op != ast.BinaryMul {
		t.Fatalf("expected * to bind tighter than +, got %T", add.Right)
	}
}

// TestParseIfElse covers the if/else statement form.
func TestParseIfElse(t *testing.T) {
	stmt := parseOne(t, `fn abs(x: I64) -> I64 { if x < 0: { return -x; } else: { return x; }; };`)
	decl := stmt.(*ast.Declaration)
	fn := decl.Initializer.(*ast.Function)
	cond, ok := fn.Body.Statements[0].(*ast.ConditionalStatement)
	if !ok {
		t.Fatalf("expected *ast.ConditionalStatement, got %T", fn.Body.Statements[0])
	}
	if cond.Else == nil {
		t.Errorf("expected an else branch")
	}
}

// TestParseLambdaAndInitializer covers the "$"-lambda and "ident{...}"
// initializer atoms.
func TestParseLambdaAndInitializer(t *testing.T) {
	stmt := parseOne(t, `fn main() -> I64 { f := $(x: I64) -> I64 { return x; }; p := Point{ x = 1; y = 2; }; return 0; };`)
	decl := stmt.(*ast.Declaration)
	fn := decl.Initializer.(*ast.Function)

	d1 := fn.Body.Statements[0].(*ast.Declaration)
	if _, ok := d1.Initializer.(*ast.Function); !ok {
		t.Errorf("expected a lambda Function initializer, got %T", d1.Initializer)
	}

	d2 := fn.Body.Statements[1].(*ast.Declaration)
	init, ok := d2.Initializer.(*ast.Initializer)
	if !ok {
		t.Fatalf("expected *ast.Initializer, got %T", d2.Initializer)
	}
	if len(init.MemberOrder) != 2 {
		t.Errorf("expected 2 member initializers, got %d", len(init.MemberOrder))
	}
}

// TestParseAllocationAndDelete covers "new T {...}" / "new[n] T {...}" and
// "delete expr".
func TestParseAllocationAndDelete(t *testing.T) {
	stmt := parseOne(t, `fn main() -> I64 { r := new[0] I64{}; delete r; return 0; };`)
	decl := stmt.(*ast.Declaration)
	fn := decl.Initializer.(*ast.Function)

	d1 := fn.Body.Statements[0].(*ast.Declaration)
	alloc, ok := d1.Initializer.(*ast.Allocation)
	if !ok {
		t.Fatalf("expected *ast.Allocation, got %T", d1.Initializer)
	}
	if alloc.Size == nil {
		t.Errorf("expected an array size expression for new[0]")
	}

	if _, ok := fn.Body.Statements[1].(*ast.Deallocation); !ok {
		t.Errorf("expected *ast.Deallocation, got %T", fn.Body.Statements[1])
	}
}

// TestParseTrailingCommas checks that trailing commas in parameter and
// argument lists are accepted.
func TestParseTrailingCommas(t *testing.T) {
	stmt := parseOne(t, `fn add(a: I64, b: I64,) -> I64 { return a + b; };`)
	decl := stmt.(*ast.Declaration)
	fn := decl.Initializer.(*ast.Function)
	if len(fn.Parameters) != 2 {
		t.Fatalf("expected 2 parameters despite trailing comma, got %d", len(fn.Parameters))
	}
}

// TestParseUnexpectedTokenError covers the parser's fatal "expected X, got
// Y" error reporting.
func TestParseUnexpectedTokenError(t *testing.T) {
	if _, err := Parse(`fn main() I64 { return 0; };`, "bad", ""); err == nil {
		t.Fatalf("expected a parser error for a missing '->'")
	}
}

// TestParseReferenceTypeAnnotation covers "&&" desugaring to
// reference-to-reference.
func TestParseReferenceTypeAnnotation(t *testing.T) {
	stmt := parseOne(t, `fn main() -> I64 { r: && I64 = unit; return 0; };`)
	decl := stmt.(*ast.Declaration)
	fn := decl.Initializer.(*ast.Function)
	d1 := fn.Body.Statements[0].(*ast.Declaration)
	outer, ok := d1.Annotation.(*ast.ReferenceTypeAnnotation)
	if !ok {
		t.Fatalf("expected *ast.ReferenceTypeAnnotation, got %T", d1.Annotation)
	}
	if _, ok := outer.Base.(*ast.ReferenceTypeAnnotation); !ok {
		t.Errorf("expected && to desugar into a nested reference, got %T", outer.Base)
	}
}

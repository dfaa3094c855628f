package sema

import (
	"testing"

	"github.com/hhramberg/l0c/src/ast"
)

func TestAssignablePrimitives(t *testing.T) {
	if !assignable(ast.NewInteger(), ast.NewInteger()) {
		t.Errorf("expected I64 assignable to I64")
	}
	if assignable(ast.NewInteger(), ast.NewBoolean()) {
		t.Errorf("expected Boolean not assignable to I64")
	}
}

func TestAssignableReferenceMutabilityMayOnlyWeaken(t *testing.T) {
	constInt := ast.NewInteger()
	mutInt := ast.ModifyQualifier(ast.NewInteger(), ast.Mutable)

	// &mut T accepted where &const T is required (weakening is fine).
	if !assignable(ast.NewReference(constInt), ast.NewReference(mutInt)) {
		t.Errorf("expected &mut I64 assignable to &const I64")
	}
	// &const T rejected where &mut T is required.
	if assignable(ast.NewReference(mutInt), ast.NewReference(constInt)) {
		t.Errorf("expected &const I64 not assignable to &mut I64")
	}
}

func TestAssignableStructByNameOnly(t *testing.T) {
	a := ast.NewStruct("Point")
	b := ast.NewStruct("Point")
	c := ast.NewStruct("Vector")
	if !assignable(a, b) {
		t.Errorf("expected structs with the same name to be assignable")
	}
	if assignable(a, c) {
		t.Errorf("expected structs with different names not to be assignable")
	}
}

func TestAssignableFunctionIsPointwise(t *testing.T) {
	f1 := ast.NewFunction([]*ast.Type{ast.NewInteger()}, ast.NewInteger())
	f2 := ast.NewFunction([]*ast.Type{ast.NewInteger()}, ast.NewInteger())
	f3 := ast.NewFunction([]*ast.Type{ast.NewBoolean()}, ast.NewInteger())
	if !assignable(f1, f2) {
		t.Errorf("expected pointwise-equal function types to be assignable")
	}
	if assignable(f1, f3) {
		t.Errorf("expected mismatched parameter types to reject assignability")
	}
}

func TestZeroLiteralPerKind(t *testing.T) {
	cases := []struct {
		t    *ast.Type
		kind ast.Kind
	}{
		{ast.NewBoolean(), ast.KindBoolean},
		{ast.NewInteger(), ast.KindInteger},
		{ast.NewCharacter(), ast.KindCharacter},
		{ast.NewString(), ast.KindString},
		{ast.NewUnit(), ast.KindUnit},
	}
	for _, c := range cases {
		z := zeroLiteral(c.t)
		if z.Type().Kind != c.kind {
			t.Errorf("zeroLiteral(%s): expected kind %v, got %v", c.t, c.kind, z.Type().Kind)
		}
	}
}

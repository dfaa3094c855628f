// types.go lowers ast.Type values to LLVM types: a small switch from a
// source-language type to an llvm.Type.
package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/hhramberg/l0c/src/ast"
)

// lowerType maps an ast.Type to its LLVM representation.
//
// Unit lowers to an empty struct (a zero-sized value, not void, so it can
// still be alloca'd/stored like any other value). Integer is i64,
// Character is i8, Boolean is i1, String is i8*. A Reference lowers to a
// typed pointer to its base (not a bare i8*). Function
// values lower to the shared __closure struct, by value. Struct types are
// looked up in g's struct type cache; enums, carrying no data of their
// own, lower directly to the i64 tag representation.
func (g *generator) lowerType(t *ast.Type) (llvm.Type, error) {
	if t == nil {
		return llvm.Type{}, fmt.Errorf("codegen: cannot lower a <nil> type")
	}
	switch t.Kind {
	case ast.KindUnit:
		return g.unitType, nil
	case ast.KindBoolean:
		return g.ctx.Int1Type(), nil
	case ast.KindInteger:
		return g.ctx.Int64Type(), nil
	case ast.KindCharacter:
		return g.ctx.Int8Type(), nil
	case ast.KindString:
		return llvm.PointerType(g.ctx.Int8Type(), 0), nil
	case ast.KindReference:
		base, err := g.lowerType(t.Base)
		if err != nil {
			return llvm.Type{}, err
		}
		return llvm.PointerType(base, 0), nil
	case ast.KindFunction:
		return g.closureType, nil
	case ast.KindStruct:
		return g.structType(t.Name)
	case ast.KindEnum:
		return g.ctx.Int64Type(), nil
	default:
		return llvm.Type{}, fmt.Errorf("codegen: unrecognised type kind %d", t.Kind)
	}
}

// structType returns the named LLVM struct type registered for a struct
// named name, declaring an opaque placeholder if it hasn't been built yet
// (struct types may reference each other before either body is filled in,
// mirroring the forward-reference tolerance of top-level analysis).
func (g *generator) structType(name string) (llvm.Type, error) {
	if st, ok := g.structTypes[name]; ok {
		return st, nil
	}
	st := g.ctx.StructCreateNamed(name)
	g.structTypes[name] = st
	return st, nil
}

// zeroValue returns the zero representation of t (llvm.ConstNull). Nothing
// in this package calls it; unit literals and null context pointers are
// built with llvm.ConstNull directly.
func (g *generator) zeroValue(t llvm.Type) llvm.Value {
	return llvm.ConstNull(t)
}

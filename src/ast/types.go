// Package ast defines L0's data model: types, scopes, modules, and the
// expression/statement sum types produced by the parser and annotated by
// the semantic passes.
package ast

import (
	"fmt"
	"strings"
)

// Qualifier is the Constant/Mutable attribute attached to every Type
// occurrence.
type Qualifier int

const (
	Constant Qualifier = iota
	Mutable
)

func (q Qualifier) String() string {
	if q == Mutable {
		return "mut"
	}
	return "const"
}

// Kind is the closed sum of type shapes.
type Kind int

const (
	KindUnit Kind = iota
	KindBoolean
	KindInteger
	KindCharacter
	KindString
	KindReference
	KindFunction
	KindStruct
	KindEnum
)

// Type is a shape/qualifier pair. Equality ignores the qualifier;
// ModifyQualifier is a trivial projection.
type Type struct {
	Kind      Kind
	Qualifier Qualifier

	Base *Type // Reference: base type.

	Params []*Type // Function: parameter types.
	Return *Type   // Function: return type.

	Name    string          // Struct/Enum: nominal name.
	Members []*StructMember // Struct: ordered member list (instance + static).
	Cases   []string        // Enum: ordered case names.
}

// Primitive type constructors. Each returns a fresh Constant-qualified
// value; callers needing Mutable should call ModifyQualifier.
func NewUnit() *Type      { return &Type{Kind: KindUnit} }
func NewBoolean() *Type   { return &Type{Kind: KindBoolean} }
func NewInteger() *Type   { return &Type{Kind: KindInteger} }
func NewCharacter() *Type { return &Type{Kind: KindCharacter} }
func NewString() *Type    { return &Type{Kind: KindString} }

// NewReference returns a reference type over base.
func NewReference(base *Type) *Type {
	return &Type{Kind: KindReference, Base: base}
}

// NewFunction returns a function type.
func NewFunction(params []*Type, ret *Type) *Type {
	return &Type{Kind: KindFunction, Params: params, Return: ret}
}

// NewStruct returns a named, initially-empty struct type shell. Top-level
// analysis creates these before the global scope builder
// fills Members in.
func NewStruct(name string) *Type {
	return &Type{Kind: KindStruct, Name: name}
}

// NewEnum returns a named, initially-empty enum type shell.
func NewEnum(name string) *Type {
	return &Type{Kind: KindEnum, Name: name}
}

// ModifyQualifier returns a shallow copy of t with qualifier q.
func ModifyQualifier(t *Type, q Qualifier) *Type {
	cp := *t
	cp.Qualifier = q
	return &cp
}

// Equal reports structural equality, ignoring qualifiers. Struct/Enum types
// compare by name only.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindUnit, KindBoolean, KindInteger, KindCharacter, KindString:
		return true
	case KindReference:
		return Equal(a.Base, b.Base)
	case KindFunction:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i1 := range a.Params {
			if !Equal(a.Params[i1], b.Params[i1]) {
				return false
			}
		}
		return Equal(a.Return, b.Return)
	case KindStruct, KindEnum:
		return a.Name == b.Name
	default:
		return false
	}
}

// String returns a print-friendly rendering of the type, used in error
// messages.
func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}
	q := t.Qualifier.String()
	switch t.Kind {
	case KindUnit:
		return q + " ()"
	case KindBoolean:
		return q + " Boolean"
	case KindInteger:
		return q + " I64"
	case KindCharacter:
		return q + " C8"
	case KindString:
		return q + " CString"
	case KindReference:
		return fmt.Sprintf("%s &%s", q, t.Base.String())
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i1, p := range t.Params {
			parts[i1] = p.String()
		}
		return fmt.Sprintf("%s (%s) -> %s", q, strings.Join(parts, ", "), t.Return.String())
	case KindStruct:
		return fmt.Sprintf("%s struct %s", q, t.Name)
	case KindEnum:
		return fmt.Sprintf("%s enum %s", q, t.Name)
	default:
		return "<unknown type>"
	}
}

// IsPrimitive reports whether t is one of the five builtin primitive kinds.
func (t *Type) IsPrimitive() bool {
	switch t.Kind {
	case KindUnit, KindBoolean, KindInteger, KindCharacter, KindString:
		return true
	default:
		return false
	}
}

// StructMember describes one member of a struct type: an instance field, a
// static (data or function) member, or a method. Methods are always
// static and do not occupy an instance slot.
type StructMember struct {
	Name     string
	Type     *Type
	IsMethod bool
	IsStatic bool

	// Index is the 0-based instance slot for non-static members, in
	// declaration order.
	Index int

	// DefaultInitializerGlobalName names the synthesized global
	// "<struct>::<member>" holding this member's default value, set when
	// the member has a default initializer (always true for static
	// members).
	DefaultInitializerGlobalName string

	// DefaultInitializer is the expression that initializes
	// DefaultInitializerGlobalName. Non-function initializers are not
	// callables, so the semantic passes visit them directly off this
	// field rather than through Module.Callables.
	DefaultInitializer Expr
}

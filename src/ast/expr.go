package ast

import "github.com/hhramberg/l0c/src/token"

// Expr is the sum type of L0 expressions. Every concrete Expr carries a
// mutable Type field, filled in by the type checker via
// SetType. Passes dispatch over the concrete node types with a type
// switch.
type Expr interface {
	exprNode()
	Type() *Type
	SetType(*Type)
}

// typed is embedded by every concrete Expr to provide the common Type
// slot.
type typed struct {
	typ *Type
}

func (t *typed) Type() *Type      { return t.typ }
func (t *typed) SetType(ty *Type) { t.typ = ty }

// UnitLiteral is the literal value of unit type, spelled "unit".
type UnitLiteral struct{ typed }

func (*UnitLiteral) exprNode() {}

// BooleanLiteral is "true" or "false".
type BooleanLiteral struct {
	typed
	Value bool
}

func (*BooleanLiteral) exprNode() {}

// IntegerLiteral is a decimal integer literal.
type IntegerLiteral struct {
	typed
	Value int64
}

func (*IntegerLiteral) exprNode() {}

// CharacterLiteral is a single-quoted character literal.
type CharacterLiteral struct {
	typed
	Value byte
}

func (*CharacterLiteral) exprNode() {}

// StringLiteral is a double-quoted string literal.
type StringLiteral struct {
	typed
	Value string
}

func (*StringLiteral) exprNode() {}

// Variable is a reference to a named variable. Scope is attached by the
// resolver and names the Scope in which the variable was
// declared.
type Variable struct {
	typed
	Name  token.Ident
	Scope *Scope
}

func (*Variable) exprNode() {}

// MemberAccessor is "object.member". Exactly one of NonstaticIndex or
// StaticScope is set by the type checker.
type MemberAccessor struct {
	typed
	Object     Expr
	Member     string
	ObjectType *Type

	NonstaticIndex *int   // set when Member is an instance field.
	StaticScope    *Scope // set when Member is static: the module scope (globals, or externals for an imported type) declaring "<Type>::<Member>".
	IsMethod       bool   // set when Member resolves to a method.
}

func (*MemberAccessor) exprNode() {}

// Call is a function or method call.
type Call struct {
	typed
	Function     Expr
	Arguments    []Expr
	IsMethodCall bool
}

func (*Call) exprNode() {}

// UnaryOp is a prefix unary operator application.
type UnaryOp struct {
	typed
	Op       UnaryOperator
	Operand  Expr
	Overload UnaryOverload
}

func (*UnaryOp) exprNode() {}

// BinaryOp is an infix binary operator application.
type BinaryOp struct {
	typed
	Left, Right Expr
	Op          BinaryOperator
	Overload    BinaryOverload
}

func (*BinaryOp) exprNode() {}

// Assignment is "target = value". TargetAddress is synthesized by the
// reference pass.
type Assignment struct {
	typed
	Target        Expr
	Value         Expr
	TargetAddress Expr
}

func (*Assignment) exprNode() {}

// Function is a function or lambda literal: parameters, a return type
// annotation, a body, and — for lambdas — a capture set discovered by the
// resolver.
type Function struct {
	typed
	Parameters           []*Declaration
	ReturnTypeAnnotation TypeAnnotation
	ReturnType           *Type
	Body                 *StatementBlock
	LocalsScope          *Scope

	// Captures holds the free variables referenced from the body that are
	// declared in an enclosing function's locals scope, in first-use
	// order with duplicates suppressed.
	Captures []token.Ident

	// GlobalName is assigned by the global scope builder for top-level
	// callables ("main" or "__fn__<name>") and by the generator for
	// lambdas ("__lambda__<n>").
	GlobalName string

	// IsMethod marks a function declared with the "method" annotation: it
	// receives an implicit leading object-pointer parameter at the call
	// site, not as a Parameters entry.
	IsMethod bool
}

func (*Function) exprNode() {}

// Initializer is "Type{ member = value; ... }".
type Initializer struct {
	typed
	TypeAnnotation     TypeAnnotation
	MemberOrder        []string
	MemberInitializers map[string]Expr
}

func (*Initializer) exprNode() {}

// Allocation is "new [size] Type { ... }" or "new Type { ... }".
type Allocation struct {
	typed
	TypeAnnotation     TypeAnnotation
	Size               Expr // nil if not an array allocation.
	MemberOrder        []string
	MemberInitializers map[string]Expr

	// AllocatedType and InitialValue are filled in by the type checker:
	// AllocatedType is the Mutable-qualified pointee type, InitialValue is
	// either the explicit Initializer or a synthesized zero value.
	AllocatedType *Type
	InitialValue  Expr
}

func (*Allocation) exprNode() {}

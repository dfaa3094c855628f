package ast

import "github.com/hhramberg/l0c/src/token"

// TypeAnnotation is the untyped, parser-level representation of a type
// occurrence, resolved into a *Type by the type checker.
type TypeAnnotation interface {
	typeAnnotationNode()
}

// SimpleTypeAnnotation names a primitive or nominal (struct/enum) type.
type SimpleTypeAnnotation struct {
	Name      token.Ident
	Qualifier Qualifier
}

func (*SimpleTypeAnnotation) typeAnnotationNode() {}

// ReferenceTypeAnnotation is "&base" or "&&base" (which desugars to a
// reference-to-reference during parsing).
type ReferenceTypeAnnotation struct {
	Base      TypeAnnotation
	Qualifier Qualifier
}

func (*ReferenceTypeAnnotation) typeAnnotationNode() {}

// FunctionTypeAnnotation is "(p1, ..., pn) -> ret".
type FunctionTypeAnnotation struct {
	Params    []TypeAnnotation
	Return    TypeAnnotation
	Qualifier Qualifier
}

func (*FunctionTypeAnnotation) typeAnnotationNode() {}

// MethodTypeAnnotation is "method (p1, ..., pn) -> ret": a struct member
// annotation marking the member as a static, non-instance-slot method.
type MethodTypeAnnotation struct {
	Params    []TypeAnnotation
	Return    TypeAnnotation
	Qualifier Qualifier
}

func (*MethodTypeAnnotation) typeAnnotationNode() {}

// TypeExpr is the right-hand side of a TypeDeclaration: either a struct or
// an enum expression.
type TypeExpr interface {
	typeExprNode()
}

// StructMemberDecl is one member declaration inside a StructExpression,
// before the global scope builder turns it into a resolved StructMember.
type StructMemberDecl struct {
	Name               string
	Annotation         TypeAnnotation
	DefaultInitializer Expr // nil if the member has no default.
}

// StructExpression is the body of a "struct Name { ... }" declaration.
type StructExpression struct {
	Members []*StructMemberDecl
}

func (*StructExpression) typeExprNode() {}

// EnumExpression is the body of an "enum Name { ... }" declaration.
type EnumExpression struct {
	Cases []string
}

func (*EnumExpression) typeExprNode() {}

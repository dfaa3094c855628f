package ast

// Stmt is the sum type of L0 statements.
type Stmt interface {
	stmtNode()
}

// StatementBlock is a brace-delimited list of statements. Returns is set by
// the return-statement pass: true iff every control-flow
// path through this block ends in a ReturnStatement. Scope is the fresh
// anonymous scope the resolver opens for an if/while block; nil for a
// function body, whose declarations live in the function's locals scope.
type StatementBlock struct {
	Statements []Stmt
	Returns    bool
	Scope      *Scope
}

func (*StatementBlock) stmtNode() {}

// Declaration is "name : annotation = initializer" or "name := initializer".
// Also used, with no Initializer, to represent function parameters; the
// resolver sets a parameter's Scope to its function's locals scope.
type Declaration struct {
	Name        string
	Annotation  TypeAnnotation // nil if inferred ("name := ...").
	Initializer Expr
	Scope       *Scope // attached by the resolver for local declarations.
	Type        *Type  // attached by the type checker.
}

func (*Declaration) stmtNode() {}

// TypeDeclaration is "name : type = struct{...}" or "name : type = enum{...}",
// or the desugared form of "struct name { ... }".
type TypeDeclaration struct {
	Name       string
	Definition TypeExpr
}

func (*TypeDeclaration) stmtNode() {}

// ExpressionStatement is an expression evaluated for its side effects.
type ExpressionStatement struct {
	Expression Expr
}

func (*ExpressionStatement) stmtNode() {}

// ReturnStatement is "return [expr]".
type ReturnStatement struct {
	Value Expr // nil for a bare "return" in a unit-returning function.
}

func (*ReturnStatement) stmtNode() {}

// ConditionalStatement is "if cond: { then } [else: { else }]". The
// per-arm Returns flags recorded on Then and Else by the return pass tell
// the generator whether a merge block is needed.
type ConditionalStatement struct {
	Condition Expr
	Then      *StatementBlock
	Else      *StatementBlock // nil if there is no else branch.
}

func (*ConditionalStatement) stmtNode() {}

// WhileLoop is "while cond: { body }".
type WhileLoop struct {
	Condition Expr
	Body      *StatementBlock
}

func (*WhileLoop) stmtNode() {}

// Deallocation is "delete expr".
type Deallocation struct {
	Reference Expr
}

func (*Deallocation) stmtNode() {}

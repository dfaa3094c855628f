package ast

// Module is one compiled source file. EnvironmentScope holds the
// compiler-provided builtins, ExternalsScope holds declarations imported
// from sibling modules (pass 5), GlobalsScope holds this module's own
// public declarations (pass 4).
type Module struct {
	Name       string
	SourcePath string

	Statements []Stmt

	EnvironmentScope *Scope
	ExternalsScope   *Scope
	GlobalsScope     *Scope

	GlobalDeclarations     []*Declaration
	GlobalTypeDeclarations []*TypeDeclaration

	// Callables lists every function that needs a top-level IR
	// definition: top-level functions, struct methods, and default-
	// initializer functions, in registration order.
	Callables []*Function

	// IR holds the textual LLVM IR produced by the generator, nil until
	// pass 10 completes.
	IR *string
}

// NewModule returns an empty Module named name, with a fresh
// EnvironmentScope populated with L0's compiler-provided builtins.
func NewModule(name, sourcePath string) *Module {
	m := &Module{
		Name:             name,
		SourcePath:       sourcePath,
		EnvironmentScope: NewScope(),
		ExternalsScope:   NewScope(),
		GlobalsScope:     NewScope(),
	}
	populateEnvironment(m.EnvironmentScope)
	return m
}

// populateEnvironment declares the runtime bindings every module's
// environment scope auto-provides: printf and getchar.
func populateEnvironment(s *Scope) {
	cstring := NewString()
	printf := NewFunction([]*Type{cstring}, NewInteger())
	_ = s.DeclareVariableTyped("printf", printf)

	getchar := NewFunction(nil, NewCharacter())
	_ = s.DeclareVariableTyped("getchar", getchar)

	for _, name := range []string{"()", "Boolean", "I64", "C8", "CString"} {
		_ = s.DeclareType(name)
	}
	_ = s.DefineType("()", NewUnit())
	_ = s.DefineType("Boolean", NewBoolean())
	_ = s.DefineType("I64", NewInteger())
	_ = s.DefineType("C8", NewCharacter())
	_ = s.DefineType("CString", NewString())
}

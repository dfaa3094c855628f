// globalscope.go implements pass 4, the global scope builder: fills every pre-declared
// type shell with its members or cases, registers default-initializer and
// enum-case globals, and registers every top-level callable.
package sema

import "github.com/hhramberg/l0c/src/ast"

// GlobalScope fills m's type shells and registers its top-level globals.
func GlobalScope(m *ast.Module) error {
	chain := []*ast.Scope{m.EnvironmentScope, m.GlobalsScope}

	for _, stmt := range m.Statements {
		switch s := stmt.(type) {
		case *ast.TypeDeclaration:
			if err := fillType(m, chain, s); err != nil {
				return err
			}
		case *ast.Declaration:
			if err := registerCallable(m, chain, s); err != nil {
				return err
			}
		default:
			return errf("this statement kind is not allowed at module scope")
		}
	}
	return nil
}

// fillType fills the shell type previously declared by TopLevel with its
// struct members or enum cases.
func fillType(m *ast.Module, chain []*ast.Scope, td *ast.TypeDeclaration) error {
	def, err := m.GlobalsScope.GetTypeDefinition(td.Name)
	if err != nil {
		return err
	}

	switch expr := td.Definition.(type) {
	case *ast.StructExpression:
		index := 0
		for _, md := range expr.Members {
			t, err := resolveAnnotation(chain, md.Annotation)
			if err != nil {
				return err
			}
			_, isMethod := md.Annotation.(*ast.MethodTypeAnnotation)
			member := &ast.StructMember{
				Name:     md.Name,
				Type:     t,
				IsMethod: isMethod,
				IsStatic: isMethod,
			}
			if md.DefaultInitializer != nil {
				globalName := td.Name + "::" + md.Name
				if err := m.GlobalsScope.DeclareVariableTyped(globalName, t); err != nil {
					return err
				}
				member.DefaultInitializerGlobalName = globalName
				member.DefaultInitializer = md.DefaultInitializer
				if fn, ok := md.DefaultInitializer.(*ast.Function); ok {
					fn.GlobalName = "__fn__" + globalName
					fn.IsMethod = isMethod
					m.Callables = append(m.Callables, fn)
				}
			}
			if !member.IsStatic {
				member.Index = index
				index++
			}
			def.Members = append(def.Members, member)
		}

	case *ast.EnumExpression:
		for _, c := range expr.Cases {
			globalName := td.Name + "::" + c
			if err := m.GlobalsScope.DeclareVariableTyped(globalName, def); err != nil {
				return err
			}
		}
		def.Cases = append(def.Cases, expr.Cases...)

	default:
		return errf("type %q has an unrecognised definition", td.Name)
	}

	m.GlobalTypeDeclarations = append(m.GlobalTypeDeclarations, td)
	return nil
}

// registerCallable registers a top-level "name : annotation = Function{...}"
// declaration, naming its generated function "main" or "__fn__<name>".
func registerCallable(m *ast.Module, chain []*ast.Scope, decl *ast.Declaration) error {
	fn, ok := decl.Initializer.(*ast.Function)
	if !ok {
		return errf("top-level declaration %q must be initialized with a function", decl.Name)
	}
	if decl.Annotation == nil {
		return errf("top-level declaration %q must be annotated", decl.Name)
	}
	t, err := resolveAnnotation(chain, decl.Annotation)
	if err != nil {
		return err
	}
	if t.Qualifier == ast.Mutable {
		return errf("top-level declaration %q must be immutable", decl.Name)
	}
	decl.Type = t

	if decl.Name == "main" {
		fn.GlobalName = "main"
	} else {
		fn.GlobalName = "__fn__" + decl.Name
	}

	if err := m.GlobalsScope.DeclareVariableTyped(decl.Name, t); err != nil {
		return err
	}
	m.GlobalDeclarations = append(m.GlobalDeclarations, decl)
	m.Callables = append(m.Callables, fn)
	return nil
}

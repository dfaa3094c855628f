// toplevel.go implements pass 3: pre-declare every named type shell so later passes can resolve forward and mutually-recursive
// type references.
package sema

import "github.com/hhramberg/l0c/src/ast"

// TopLevel pre-declares every TypeDeclaration in m as an empty struct or
// enum shell in m.GlobalsScope.
func TopLevel(m *ast.Module) error {
	for _, stmt := range m.Statements {
		td, ok := stmt.(*ast.TypeDeclaration)
		if !ok {
			continue
		}
		if err := m.GlobalsScope.DeclareType(td.Name); err != nil {
			return err
		}

		var shell *ast.Type
		switch td.Definition.(type) {
		case *ast.StructExpression:
			shell = ast.NewStruct(td.Name)
		case *ast.EnumExpression:
			shell = ast.NewEnum(td.Name)
		default:
			return errf("type %q has an unrecognised definition", td.Name)
		}
		if err := m.GlobalsScope.DefineType(td.Name, shell); err != nil {
			return err
		}
	}
	return nil
}

// externals.go implements pass 5, cross-module extern binding. Every sibling module's globals are copied,
// wholesale, into this module's externals scope.
package sema

import "github.com/hhramberg/l0c/src/ast"

// BindExternals merges every sibling's GlobalsScope into each module's
// ExternalsScope. Direction-blind: a name collision is an error even when
// the colliding declarations are never referenced.
func BindExternals(modules []*ast.Module) error {
	for _, m := range modules {
		for _, sibling := range modules {
			if sibling == m {
				continue
			}
			if err := m.ExternalsScope.Merge(sibling.GlobalsScope); err != nil {
				return err
			}
		}
	}
	return nil
}

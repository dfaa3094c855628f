// annotations.go resolves the parser's untyped TypeAnnotation tree into a
// concrete *ast.Type, shared by the global scope builder (pass 4) and the
// type checker (pass 7).
package sema

import "github.com/hhramberg/l0c/src/ast"

// resolveAnnotation resolves annot by searching chain innermost-last (the
// last entry is searched first) for named types.
func resolveAnnotation(chain []*ast.Scope, annot ast.TypeAnnotation) (*ast.Type, error) {
	switch a := annot.(type) {
	case *ast.SimpleTypeAnnotation:
		name := a.Name.String()
		for i1 := len(chain) - 1; i1 >= 0; i1-- {
			if chain[i1].IsTypeDefined(name) {
				def, err := chain[i1].GetTypeDefinition(name)
				if err != nil {
					return nil, err
				}
				return ast.ModifyQualifier(def, a.Qualifier), nil
			}
		}
		return nil, errf("undeclared type %q", name)

	case *ast.ReferenceTypeAnnotation:
		base, err := resolveAnnotation(chain, a.Base)
		if err != nil {
			return nil, err
		}
		return ast.ModifyQualifier(ast.NewReference(base), a.Qualifier), nil

	case *ast.FunctionTypeAnnotation:
		return resolveFuncLike(chain, a.Params, a.Return, a.Qualifier)

	case *ast.MethodTypeAnnotation:
		// A method's static type is identical in shape to a plain function
		// type: the implicit receiver is injected at the call site, not
		// part of the static signature.
		return resolveFuncLike(chain, a.Params, a.Return, a.Qualifier)

	default:
		return nil, errf("unrecognised type annotation")
	}
}

func resolveFuncLike(chain []*ast.Scope, paramAnnots []ast.TypeAnnotation, retAnnot ast.TypeAnnotation, q ast.Qualifier) (*ast.Type, error) {
	params := make([]*ast.Type, len(paramAnnots))
	for i1, p := range paramAnnots {
		pt, err := resolveAnnotation(chain, p)
		if err != nil {
			return nil, err
		}
		params[i1] = pt
	}
	ret, err := resolveAnnotation(chain, retAnnot)
	if err != nil {
		return nil, err
	}
	return ast.ModifyQualifier(ast.NewFunction(params, ret), q), nil
}

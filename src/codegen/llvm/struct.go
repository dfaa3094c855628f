// struct.go lowers struct type definitions to named LLVM struct bodies
// and provides field-address computation for member access.
package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/hhramberg/l0c/src/ast"
)

// defineStruct fills in the body of the named struct type previously
// registered by structType, from its non-static members in declaration
// order. The body is not packed; field alignment is left to LLVM's default.
func (g *generator) defineStruct(def *ast.Type) error {
	st, err := g.structType(def.Name)
	if err != nil {
		return err
	}
	fields := make([]llvm.Type, 0, len(def.Members))
	for _, member := range def.Members {
		if member.IsStatic {
			continue
		}
		ft, err := g.lowerType(member.Type)
		if err != nil {
			return fmt.Errorf("struct %s member %q: %w", def.Name, member.Name, err)
		}
		fields = append(fields, ft)
	}
	st.StructSetBody(fields, false)
	return nil
}

// fieldAddress computes the pointer to a non-static member's storage
// inside an instance, via a 0/index getelementptr.
func (g *generator) fieldAddress(instance llvm.Value, index int) llvm.Value {
	return g.builder.CreateGEP(instance, []llvm.Value{
		llvm.ConstInt(g.ctx.Int32Type(), 0, false),
		llvm.ConstInt(g.ctx.Int32Type(), uint64(index), false),
	}, "")
}

// staticGlobalName returns the module-global name of a static struct
// member, "<StructName>::<MemberName>".
func staticGlobalName(structName, member string) string {
	return structName + "::" + member
}

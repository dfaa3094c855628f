package ast

import (
	"fmt"

	"github.com/hhramberg/l0c/src/util"
)

// Scope holds the declared variable and type names visible at some point in
// the program, plus — only once the generator runs — the backend value
// bound to each name. Declaration and type-setting are deliberately
// separate operations: re-declaring a name, or setting a type twice, is
// a ScopeError.
type Scope struct {
	variables     map[string]bool
	variableTypes map[string]*Type
	values        map[string]interface{} // backend values, set during IR generation.

	types           map[string]bool
	typeDefinitions map[string]*Type
}

// NewScope returns an empty Scope ready for use.
func NewScope() *Scope {
	return &Scope{
		variables:       make(map[string]bool),
		variableTypes:   make(map[string]*Type),
		values:          make(map[string]interface{}),
		types:           make(map[string]bool),
		typeDefinitions: make(map[string]*Type),
	}
}

// DeclareVariable registers name as a declared variable with no type yet.
func (s *Scope) DeclareVariable(name string) error {
	if s.IsVariableDeclared(name) {
		return &util.ScopeError{Message: fmt.Sprintf("variable %q was declared before", name)}
	}
	s.variables[name] = true
	return nil
}

// DeclareVariableTyped declares name and immediately sets its type.
func (s *Scope) DeclareVariableTyped(name string, t *Type) error {
	if err := s.DeclareVariable(name); err != nil {
		return err
	}
	return s.SetVariableType(name, t)
}

// IsVariableDeclared reports whether name has been declared in this scope.
func (s *Scope) IsVariableDeclared(name string) bool {
	return s.variables[name]
}

// SetVariableType sets the type of an already-declared variable. Setting
// the type twice, or on an undeclared variable, is a ScopeError.
func (s *Scope) SetVariableType(name string, t *Type) error {
	if !s.IsVariableDeclared(name) {
		return &util.ScopeError{Message: fmt.Sprintf("cannot set type of undeclared variable %q", name)}
	}
	if s.IsVariableTypeSet(name) {
		return &util.ScopeError{Message: fmt.Sprintf("type of variable %q was set before", name)}
	}
	s.variableTypes[name] = t
	return nil
}

// IsVariableTypeSet reports whether name's type has been set.
func (s *Scope) IsVariableTypeSet(name string) bool {
	_, ok := s.variableTypes[name]
	return ok
}

// GetVariableType returns the type of an already-typed variable.
func (s *Scope) GetVariableType(name string) (*Type, error) {
	if !s.IsVariableTypeSet(name) {
		return nil, &util.ScopeError{Message: fmt.Sprintf("type of variable %q is undefined", name)}
	}
	return s.variableTypes[name], nil
}

// SetValue binds name to a backend value during IR generation.
func (s *Scope) SetValue(name string, v interface{}) error {
	if !s.IsVariableDeclared(name) {
		return &util.ScopeError{Message: fmt.Sprintf("cannot set value of undeclared variable %q", name)}
	}
	if _, ok := s.values[name]; ok {
		return &util.ScopeError{Message: fmt.Sprintf("value of variable %q was set before", name)}
	}
	s.values[name] = v
	return nil
}

// GetValue returns the backend value bound to name, if any.
func (s *Scope) GetValue(name string) (interface{}, bool) {
	v, ok := s.values[name]
	return v, ok
}

// DeclareType registers name as a declared (possibly not yet defined) type.
func (s *Scope) DeclareType(name string) error {
	if s.IsTypeDeclared(name) {
		return &util.ScopeError{Message: fmt.Sprintf("type %q was declared before", name)}
	}
	s.types[name] = true
	return nil
}

// IsTypeDeclared reports whether name has been declared as a type.
func (s *Scope) IsTypeDeclared(name string) bool {
	return s.types[name]
}

// DefineType attaches a definition to an already-declared type name.
func (s *Scope) DefineType(name string, t *Type) error {
	if !s.IsTypeDeclared(name) {
		return &util.ScopeError{Message: fmt.Sprintf("type %q is undeclared", name)}
	}
	if s.IsTypeDefined(name) {
		return &util.ScopeError{Message: fmt.Sprintf("type %q was defined before", name)}
	}
	s.typeDefinitions[name] = t
	return nil
}

// IsTypeDefined reports whether name's definition has been set.
func (s *Scope) IsTypeDefined(name string) bool {
	_, ok := s.typeDefinitions[name]
	return ok
}

// GetTypeDefinition returns the definition of an already-defined type.
func (s *Scope) GetTypeDefinition(name string) (*Type, error) {
	if !s.IsTypeDefined(name) {
		return nil, &util.ScopeError{Message: fmt.Sprintf("type %q is undefined", name)}
	}
	return s.typeDefinitions[name], nil
}

// Variables returns every declared variable name.
func (s *Scope) Variables() []string {
	out := make([]string, 0, len(s.variables))
	for k := range s.variables {
		out = append(out, k)
	}
	return out
}

// Types returns every declared type name.
func (s *Scope) Types() []string {
	out := make([]string, 0, len(s.types))
	for k := range s.types {
		out = append(out, k)
	}
	return out
}

// Merge copies every declared-and-typed variable and every defined type
// from other into s. Used by cross-module extern binding: every sibling
// module's globals are copied, wholesale, into this module's externals
// scope. Name collisions are errors even when no module references both.
func (s *Scope) Merge(other *Scope) error {
	for name := range other.types {
		if err := s.DeclareType(name); err != nil {
			return err
		}
		def, err := other.GetTypeDefinition(name)
		if err != nil {
			return err
		}
		if err := s.DefineType(name, def); err != nil {
			return err
		}
	}
	for name := range other.variables {
		t, err := other.GetVariableType(name)
		if err != nil {
			return err
		}
		if err := s.DeclareVariableTyped(name, t); err != nil {
			return err
		}
	}
	return nil
}

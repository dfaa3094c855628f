// errors.go defines the five closed error kinds raised by the compiler's
// passes. Every kind is a small concrete type satisfying the error
// interface; none of them carry a stack trace or wrap an inner cause,
// matching the plain fmt.Errorf/errors.New style used throughout vslc.
package util

import "fmt"

// LexerError is raised by the lexer: unknown character, unterminated
// literal, unknown escape sequence.
type LexerError struct {
	Message string
}

func (e *LexerError) Error() string { return fmt.Sprintf("lexer error: %s", e.Message) }

// ParserError is raised by the parser: unexpected token, missing
// delimiter.
type ParserError struct {
	Message string
}

func (e *ParserError) Error() string { return fmt.Sprintf("parser error: %s", e.Message) }

// ScopeError is raised by Scope operations: duplicate declaration, lookup
// of an undeclared name.
type ScopeError struct {
	Message string
}

func (e *ScopeError) Error() string { return fmt.Sprintf("scope error: %s", e.Message) }

// SemanticError is raised by the top-level, resolver, type checker, return
// and reference passes: type mismatch, non-boolean condition, unresolved
// name, assignment to a constant, non-lvalue target, missing return on a
// non-unit branch, missing struct initializer, no viable operator overload.
type SemanticError struct {
	Message string
}

func (e *SemanticError) Error() string { return fmt.Sprintf("semantic error: %s", e.Message) }

// GeneratorError is raised by the generator when an annotation invariant
// that an earlier pass should have established does not hold.
type GeneratorError struct {
	Message string
}

func (e *GeneratorError) Error() string { return fmt.Sprintf("generator error: %s", e.Message) }

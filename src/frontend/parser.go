// parser.go implements L0's recursive-descent parser: token stream to
// untyped ast.Module. Errors propagate as return values, no panics;
// messages describe the expected versus received token.
package frontend

import (
	"fmt"

	"github.com/hhramberg/l0c/src/ast"
	"github.com/hhramberg/l0c/src/token"
	"github.com/hhramberg/l0c/src/util"
)

// parser holds the token stream and the current read position.
type parser struct {
	tokens []token.Token
	pos    int
}

// Parse lexes and parses src into an ast.Module named name.
func Parse(src, name, sourcePath string) (*ast.Module, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: toks}
	m := ast.NewModule(name, sourcePath)

	for !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectKind(token.Semi); err != nil {
			return nil, err
		}
		m.Statements = append(m.Statements, stmt)
	}
	return m, nil
}

// TokenStream lexes src and returns its tokens without parsing, for the -ts
// driver flag.
func TokenStream(src string) ([]token.Token, error) {
	return Lex(src)
}

// ----------------------------
// ----- Token primitives -----
// ----------------------------

func (p *parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) atEOF() bool {
	return p.cur().Kind == token.EOF
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// at reports whether the current token has kind k.
func (p *parser) at(k token.Kind) bool {
	return p.cur().Kind == k
}

// atWord reports whether the current token is the keyword or identifier
// word.
func (p *parser) atWord(word string) bool {
	t := p.cur()
	return (t.Kind == token.Keyword || t.Kind == token.Identifier) && t.StrVal == word
}

// accept consumes and returns true if the current token has kind k.
func (p *parser) accept(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// acceptWord consumes and returns true if the current token is the given
// keyword/identifier word.
func (p *parser) acceptWord(word string) bool {
	if p.atWord(word) {
		p.advance()
		return true
	}
	return false
}

// expectKind consumes a token of kind k or returns a ParserError.
func (p *parser) expectKind(k token.Kind) error {
	if !p.accept(k) {
		return p.errorf("expected %s, got %q", k, p.cur().Lexeme)
	}
	return nil
}

// expectWord consumes the given keyword/identifier word or returns a
// ParserError.
func (p *parser) expectWord(word string) error {
	if !p.acceptWord(word) {
		return p.errorf("expected %q, got %q", word, p.cur().Lexeme)
	}
	return nil
}

// errorf builds a ParserError describing expected-vs-received state.
func (p *parser) errorf(format string, args ...interface{}) error {
	return &util.ParserError{Message: fmt.Sprintf(format, args...)}
}

// ----------------------------
// ----- Statement parsing -----
// ----------------------------

func (p *parser) parseStatement() (ast.Stmt, error) {
	switch {
	case p.atWord("return"):
		return p.parseReturn()
	case p.atWord("if"):
		return p.parseIf()
	case p.atWord("while"):
		return p.parseWhile()
	case p.atWord("delete"):
		return p.parseDelete()
	case p.atWord("fn"):
		return p.parseFnDecl()
	case p.atWord("method"):
		return p.parseMethodDecl()
	case p.atWord("struct"):
		return p.parseStructDecl()
	case p.atWord("enum"):
		return p.parseEnumDecl()
	case p.at(token.Identifier) && p.peekIs(1, token.Colon):
		return p.parseDeclaration()
	case p.at(token.Identifier) && p.peekIs(1, token.Walrus):
		return p.parseShortDeclaration()
	default:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Expression: expr}, nil
	}
}

// peekIs reports whether the token offset positions ahead has kind k.
func (p *parser) peekIs(offset int, k token.Kind) bool {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return k == token.EOF
	}
	return p.tokens[idx].Kind == k
}

func (p *parser) parseReturn() (ast.Stmt, error) {
	if err := p.expectWord("return"); err != nil {
		return nil, err
	}
	if p.at(token.Semi) {
		return &ast.ReturnStatement{}, nil
	}
	v, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Value: v}, nil
}

func (p *parser) parseIf() (ast.Stmt, error) {
	if err := p.expectWord("if"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectKind(token.Colon); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.ConditionalStatement{Condition: cond, Then: then}
	if p.acceptWord("else") {
		if err := p.expectKind(token.Colon); err != nil {
			return nil, err
		}
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBlock
	}
	return stmt, nil
}

func (p *parser) parseWhile() (ast.Stmt, error) {
	if err := p.expectWord("while"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectKind(token.Colon); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileLoop{Condition: cond, Body: body}, nil
}

func (p *parser) parseDelete() (ast.Stmt, error) {
	if err := p.expectWord("delete"); err != nil {
		return nil, err
	}
	ref, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Deallocation{Reference: ref}, nil
}

// parseBlock parses "{ stmt; stmt; ... }".
func (p *parser) parseBlock() (*ast.StatementBlock, error) {
	if err := p.expectKind(token.LBrace); err != nil {
		return nil, err
	}
	block := &ast.StatementBlock{}
	for !p.at(token.RBrace) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectKind(token.Semi); err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if err := p.expectKind(token.RBrace); err != nil {
		return nil, err
	}
	return block, nil
}

// parseDeclaration parses "ident : (type-annot | 'type' = struct/enum-expr) [= expr]".
func (p *parser) parseDeclaration() (ast.Stmt, error) {
	name := p.advance().StrVal
	if err := p.expectKind(token.Colon); err != nil {
		return nil, err
	}
	if p.atWord("type") {
		p.advance()
		if err := p.expectKind(token.Assign); err != nil {
			return nil, err
		}
		def, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		return &ast.TypeDeclaration{Name: name, Definition: def}, nil
	}
	annot, err := p.parseTypeAnnotation()
	if err != nil {
		return nil, err
	}
	decl := &ast.Declaration{Name: name, Annotation: annot}
	if p.accept(token.Assign) {
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Initializer = init
	}
	return decl, nil
}

// parseShortDeclaration parses "ident := expr".
func (p *parser) parseShortDeclaration() (ast.Stmt, error) {
	name := p.advance().StrVal
	if err := p.expectKind(token.Walrus); err != nil {
		return nil, err
	}
	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Declaration{Name: name, Initializer: init}, nil
}

// parseTypeExpr parses "struct { members }" or "enum { cases }".
func (p *parser) parseTypeExpr() (ast.TypeExpr, error) {
	switch {
	case p.atWord("struct"):
		p.advance()
		return p.parseStructBody()
	case p.atWord("enum"):
		p.advance()
		return p.parseEnumBody()
	default:
		return nil, p.errorf("expected 'struct' or 'enum', got %q", p.cur().Lexeme)
	}
}

// parseFnDecl parses "fn name(params) -> ret { block }" sugar, desugaring
// into a Declaration with a Function initializer.
func (p *parser) parseFnDecl() (ast.Stmt, error) {
	if err := p.expectWord("fn"); err != nil {
		return nil, err
	}
	if !p.at(token.Identifier) {
		return nil, p.errorf("expected function name, got %q", p.cur().Lexeme)
	}
	name := p.advance().StrVal
	fn, err := p.parseFunctionTail(false)
	if err != nil {
		return nil, err
	}
	annot := &ast.FunctionTypeAnnotation{}
	for _, param := range fn.Parameters {
		annot.Params = append(annot.Params, param.Annotation)
	}
	annot.Return = fn.ReturnTypeAnnotation
	return &ast.Declaration{Name: name, Annotation: annot, Initializer: fn}, nil
}

// parseMethodDecl parses "method name(params) -> ret { block }" sugar.
func (p *parser) parseMethodDecl() (ast.Stmt, error) {
	if err := p.expectWord("method"); err != nil {
		return nil, err
	}
	if !p.at(token.Identifier) {
		return nil, p.errorf("expected method name, got %q", p.cur().Lexeme)
	}
	name := p.advance().StrVal
	fn, err := p.parseFunctionTail(true)
	if err != nil {
		return nil, err
	}
	annot := &ast.MethodTypeAnnotation{}
	for _, param := range fn.Parameters {
		annot.Params = append(annot.Params, param.Annotation)
	}
	annot.Return = fn.ReturnTypeAnnotation
	return &ast.Declaration{Name: name, Annotation: annot, Initializer: fn}, nil
}

// parseFunctionTail parses "(params) -> ret { block }" after the name.
func (p *parser) parseFunctionTail(isMethod bool) (*ast.Function, error) {
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	if err := p.expectKind(token.Arrow); err != nil {
		return nil, err
	}
	ret, err := p.parseTypeAnnotation()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Parameters:           params,
		ReturnTypeAnnotation: ret,
		Body:                 body,
		IsMethod:             isMethod,
	}, nil
}

// parseParameterList parses "(ident: type, ident: type, ...)" with
// trailing commas accepted.
func (p *parser) parseParameterList() ([]*ast.Declaration, error) {
	if err := p.expectKind(token.LParen); err != nil {
		return nil, err
	}
	var params []*ast.Declaration
	for !p.at(token.RParen) {
		if !p.at(token.Identifier) {
			return nil, p.errorf("expected parameter name, got %q", p.cur().Lexeme)
		}
		name := p.advance().StrVal
		if err := p.expectKind(token.Colon); err != nil {
			return nil, err
		}
		annot, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Declaration{Name: name, Annotation: annot})
		if !p.accept(token.Comma) {
			break
		}
	}
	if err := p.expectKind(token.RParen); err != nil {
		return nil, err
	}
	return params, nil
}

// parseStructDecl parses "struct name { fields }" sugar, desugaring into a
// TypeDeclaration whose initializer is a StructExpression.
func (p *parser) parseStructDecl() (ast.Stmt, error) {
	if err := p.expectWord("struct"); err != nil {
		return nil, err
	}
	if !p.at(token.Identifier) {
		return nil, p.errorf("expected struct name, got %q", p.cur().Lexeme)
	}
	name := p.advance().StrVal
	def, err := p.parseStructBody()
	if err != nil {
		return nil, err
	}
	return &ast.TypeDeclaration{Name: name, Definition: def}, nil
}

// parseStructBody parses "{ member; member; ... }" where each member is
// either a field declaration or a method-decl.
func (p *parser) parseStructBody() (*ast.StructExpression, error) {
	if err := p.expectKind(token.LBrace); err != nil {
		return nil, err
	}
	def := &ast.StructExpression{}
	for !p.at(token.RBrace) {
		member, err := p.parseStructMember()
		if err != nil {
			return nil, err
		}
		if err := p.expectKind(token.Semi); err != nil {
			return nil, err
		}
		def.Members = append(def.Members, member)
	}
	if err := p.expectKind(token.RBrace); err != nil {
		return nil, err
	}
	return def, nil
}

func (p *parser) parseStructMember() (*ast.StructMemberDecl, error) {
	if p.atWord("method") {
		p.advance()
		if !p.at(token.Identifier) {
			return nil, p.errorf("expected method name, got %q", p.cur().Lexeme)
		}
		name := p.advance().StrVal
		fn, err := p.parseFunctionTail(true)
		if err != nil {
			return nil, err
		}
		annot := &ast.MethodTypeAnnotation{Return: fn.ReturnTypeAnnotation}
		for _, param := range fn.Parameters {
			annot.Params = append(annot.Params, param.Annotation)
		}
		return &ast.StructMemberDecl{Name: name, Annotation: annot, DefaultInitializer: fn}, nil
	}

	if !p.at(token.Identifier) {
		return nil, p.errorf("expected member name, got %q", p.cur().Lexeme)
	}
	name := p.advance().StrVal
	if err := p.expectKind(token.Colon); err != nil {
		return nil, err
	}
	annot, err := p.parseTypeAnnotation()
	if err != nil {
		return nil, err
	}
	member := &ast.StructMemberDecl{Name: name, Annotation: annot}
	if p.accept(token.Assign) {
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		member.DefaultInitializer = init
	}
	return member, nil
}

// parseEnumDecl parses "enum name { cases }" sugar.
func (p *parser) parseEnumDecl() (ast.Stmt, error) {
	if err := p.expectWord("enum"); err != nil {
		return nil, err
	}
	if !p.at(token.Identifier) {
		return nil, p.errorf("expected enum name, got %q", p.cur().Lexeme)
	}
	name := p.advance().StrVal
	def, err := p.parseEnumBody()
	if err != nil {
		return nil, err
	}
	return &ast.TypeDeclaration{Name: name, Definition: def}, nil
}

// parseEnumBody parses "{ Case1, Case2, ... }", trailing comma accepted.
func (p *parser) parseEnumBody() (*ast.EnumExpression, error) {
	if err := p.expectKind(token.LBrace); err != nil {
		return nil, err
	}
	def := &ast.EnumExpression{}
	for !p.at(token.RBrace) {
		if !p.at(token.Identifier) {
			return nil, p.errorf("expected enum case name, got %q", p.cur().Lexeme)
		}
		def.Cases = append(def.Cases, p.advance().StrVal)
		if !p.accept(token.Comma) {
			break
		}
	}
	if err := p.expectKind(token.RBrace); err != nil {
		return nil, err
	}
	return def, nil
}

// ----------------------------
// ----- Type annotations -----
// ----------------------------

func (p *parser) parseTypeAnnotation() (ast.TypeAnnotation, error) {
	q := ast.Constant
	switch {
	case p.acceptWord("mut"):
		q = ast.Mutable
	case p.acceptWord("const"):
		q = ast.Constant
	}
	return p.parseUnqualified(q)
}

func (p *parser) parseUnqualified(q ast.Qualifier) (ast.TypeAnnotation, error) {
	switch {
	case p.atWord("method"):
		p.advance()
		return p.parseFunctionTypeTail(q, true)
	case p.at(token.Amp):
		p.advance()
		base, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		return &ast.ReferenceTypeAnnotation{Base: base, Qualifier: q}, nil
	case p.at(token.AndAnd):
		// "&&" desugars to a reference-to-reference.
		p.advance()
		base, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		inner := &ast.ReferenceTypeAnnotation{Base: base, Qualifier: ast.Constant}
		return &ast.ReferenceTypeAnnotation{Base: inner, Qualifier: q}, nil
	case p.at(token.LParen):
		return p.parseFunctionTypeTail(q, false)
	case p.at(token.Identifier) || p.atWord("unit"):
		name := p.parseTypeName()
		return &ast.SimpleTypeAnnotation{Name: name, Qualifier: q}, nil
	default:
		return nil, p.errorf("expected type annotation, got %q", p.cur().Lexeme)
	}
}

// parseTypeName parses a possibly-qualified type name such as "A::B::C",
// and the keyword spelling "unit", which it maps to the "()" type name.
func (p *parser) parseTypeName() token.Ident {
	if p.atWord("unit") {
		p.advance()
		return token.ParseIdent("()")
	}
	id := token.NewIdent(p.advance().StrVal)
	for p.accept(token.ColonColon) {
		id = id.Append(p.advance().StrVal)
	}
	return id
}

// parseFunctionTypeTail parses "(t1, ..., tn) -> ret" after either "(" is
// seen directly, or after the "method" keyword.
func (p *parser) parseFunctionTypeTail(q ast.Qualifier, isMethod bool) (ast.TypeAnnotation, error) {
	if err := p.expectKind(token.LParen); err != nil {
		return nil, err
	}
	var params []ast.TypeAnnotation
	for !p.at(token.RParen) {
		annot, err := p.parseTypeAnnotation()
		if err != nil {
			return nil, err
		}
		params = append(params, annot)
		if !p.accept(token.Comma) {
			break
		}
	}
	if err := p.expectKind(token.RParen); err != nil {
		return nil, err
	}
	if !p.at(token.Arrow) {
		// "()" with no arrow is the unit type, not a function type.
		if len(params) == 0 && !isMethod {
			return &ast.SimpleTypeAnnotation{Name: token.ParseIdent("()"), Qualifier: q}, nil
		}
		return nil, p.errorf("expected '->' after type list, got %q", p.cur().Lexeme)
	}
	p.advance()
	ret, err := p.parseTypeAnnotation()
	if err != nil {
		return nil, err
	}
	if isMethod {
		return &ast.MethodTypeAnnotation{Params: params, Return: ret, Qualifier: q}, nil
	}
	return &ast.FunctionTypeAnnotation{Params: params, Return: ret, Qualifier: q}, nil
}

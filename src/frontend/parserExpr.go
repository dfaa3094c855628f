// parserExpr.go implements the expression grammar:
// assignment (right-assoc) -> || -> && -> ==,!= -> <,>,<=,>= -> +,- ->
// *,/,% -> unary (+,-,!,&) -> postfix (call, member, deref) -> atom.
package frontend

import (
	"github.com/hhramberg/l0c/src/ast"
	"github.com/hhramberg/l0c/src/token"
)

func (p *parser) parseExpression() (ast.Expr, error) {
	return p.parseAssignment()
}

func (p *parser) parseAssignment() (ast.Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.accept(token.Assign) {
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Target: left, Value: right}, nil
	}
	return left, nil
}

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(token.OrOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Right: right, Op: ast.BinaryOr}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.accept(token.AndAnd) {
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Right: right, Op: ast.BinaryAnd}
	}
	return left, nil
}

func (p *parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOperator
		switch {
		case p.accept(token.Eq):
			op = ast.BinaryEq
		case p.accept(token.Ne):
			op = ast.BinaryNe
		default:
			return left, nil
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Right: right, Op: op}
	}
}

func (p *parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOperator
		switch {
		case p.accept(token.Lt):
			op = ast.BinaryLt
		case p.accept(token.Gt):
			op = ast.BinaryGt
		case p.accept(token.Le):
			op = ast.BinaryLe
		case p.accept(token.Ge):
			op = ast.BinaryGe
		default:
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Right: right, Op: op}
	}
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOperator
		switch {
		case p.accept(token.Plus):
			op = ast.BinaryAdd
		case p.accept(token.Minus):
			op = ast.BinarySub
		default:
			return left, nil
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Right: right, Op: op}
	}
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinaryOperator
		switch {
		case p.accept(token.Star):
			op = ast.BinaryMul
		case p.accept(token.Slash):
			op = ast.BinaryDiv
		case p.accept(token.Percent):
			op = ast.BinaryMod
		default:
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Right: right, Op: op}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	var op ast.UnaryOperator
	switch {
	case p.accept(token.Plus):
		op = ast.UnaryPlus
	case p.accept(token.Minus):
		op = ast.UnaryMinus
	case p.accept(token.Bang):
		op = ast.UnaryNot
	case p.accept(token.Amp):
		op = ast.UnaryAddressOf
	default:
		return p.parsePostfix()
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryOp{Op: op, Operand: operand}, nil
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept(token.LParen):
			args, err := p.parseArgumentList()
			if err != nil {
				return nil, err
			}
			e = &ast.Call{Function: e, Arguments: args}
		case p.accept(token.Dot):
			if !p.at(token.Identifier) {
				return nil, p.errorf("expected member name, got %q", p.cur().Lexeme)
			}
			member := p.advance().StrVal
			e = &ast.MemberAccessor{Object: e, Member: member}
		case p.accept(token.Caret):
			e = &ast.UnaryOp{Op: ast.UnaryDeref, Operand: e}
		default:
			return e, nil
		}
	}
}

// parseArgumentList parses "(" already-consumed up to ")", trailing comma
// accepted.
func (p *parser) parseArgumentList() ([]ast.Expr, error) {
	var args []ast.Expr
	for !p.at(token.RParen) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.accept(token.Comma) {
			break
		}
	}
	if err := p.expectKind(token.RParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parseAtom() (ast.Expr, error) {
	t := p.cur()
	switch {
	case p.accept(token.LParen):
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectKind(token.RParen); err != nil {
			return nil, err
		}
		return e, nil
	case p.acceptWord("true"):
		return &ast.BooleanLiteral{Value: true}, nil
	case p.acceptWord("false"):
		return &ast.BooleanLiteral{Value: false}, nil
	case p.acceptWord("unit"):
		return &ast.UnitLiteral{}, nil
	case t.Kind == token.IntegerLiteral:
		p.advance()
		return &ast.IntegerLiteral{Value: t.IntVal}, nil
	case t.Kind == token.CharacterLiteral:
		p.advance()
		return &ast.CharacterLiteral{Value: t.CharVal}, nil
	case t.Kind == token.StringLiteral:
		p.advance()
		return &ast.StringLiteral{Value: t.StrVal}, nil
	case p.accept(token.Dollar):
		return p.parseLambda()
	case p.atWord("new"):
		return p.parseAllocation()
	case t.Kind == token.Identifier:
		return p.parseIdentifierAtom()
	default:
		return nil, p.errorf("unexpected token %q", t.Lexeme)
	}
}

// parseIdentifierAtom parses a qualified identifier, then checks for a
// trailing "{" introducing an Initializer.
func (p *parser) parseIdentifierAtom() (ast.Expr, error) {
	name := p.parseTypeName()
	if p.at(token.LBrace) {
		return p.parseInitializer(name)
	}
	return &ast.Variable{Name: name}, nil
}

// parseLambda parses "$(params) -> ret { body }".
func (p *parser) parseLambda() (ast.Expr, error) {
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
	return &ast.Function{Parameters: params, ReturnTypeAnnotation: ret, Body: body}, nil
}

// parseInitializer parses "Name{ member = expr; ... }".
func (p *parser) parseInitializer(name token.Ident) (ast.Expr, error) {
	order, inits, err := p.parseMemberInits()
	if err != nil {
		return nil, err
	}
	return &ast.Initializer{
		TypeAnnotation:     &ast.SimpleTypeAnnotation{Name: name},
		MemberOrder:        order,
		MemberInitializers: inits,
	}, nil
}

// parseMemberInits parses "{ member = expr; member = expr; ... }".
func (p *parser) parseMemberInits() ([]string, map[string]ast.Expr, error) {
	if err := p.expectKind(token.LBrace); err != nil {
		return nil, nil, err
	}
	var order []string
	inits := make(map[string]ast.Expr)
	for !p.at(token.RBrace) {
		if !p.at(token.Identifier) {
			return nil, nil, p.errorf("expected member name, got %q", p.cur().Lexeme)
		}
		member := p.advance().StrVal
		if err := p.expectKind(token.Assign); err != nil {
			return nil, nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, nil, err
		}
		if _, dup := inits[member]; dup {
			return nil, nil, p.errorf("duplicate member initializer for %q", member)
		}
		order = append(order, member)
		inits[member] = value
		if err := p.expectKind(token.Semi); err != nil {
			return nil, nil, err
		}
	}
	if err := p.expectKind(token.RBrace); err != nil {
		return nil, nil, err
	}
	return order, inits, nil
}

// parseAllocation parses "new [size] Type { member = expr; ... }".
func (p *parser) parseAllocation() (ast.Expr, error) {
	if err := p.expectWord("new"); err != nil {
		return nil, err
	}
	alloc := &ast.Allocation{}
	if p.accept(token.LBracket) {
		size, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		alloc.Size = size
		if err := p.expectKind(token.RBracket); err != nil {
			return nil, err
		}
	}
	annot, err := p.parseTypeAnnotation()
	if err != nil {
		return nil, err
	}
	alloc.TypeAnnotation = annot
	if p.at(token.LBrace) {
		order, inits, err := p.parseMemberInits()
		if err != nil {
			return nil, err
		}
		alloc.MemberOrder = order
		alloc.MemberInitializers = inits
	}
	return alloc, nil
}

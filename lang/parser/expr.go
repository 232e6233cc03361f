package parser

import (
	"github.com/catface-lang/catface/lang/ast"
	"github.com/catface-lang/catface/lang/token"
)

// Operator precedence, loosest to tightest: assignment, comparison,
// additive, multiplicative, postfix. Comparison, additive and
// multiplicative levels are left-associative.

// parseExpr parses an expression, or returns nil if no expression
// starts at the current token:
//
//	expr       := assignment | comparison
//	assignment := IDENT ('='|'+='|'-='|'*='|'/=') expr
func (p *parser) parseExpr() ast.Expr {
	x := p.parseComparison()
	if x == nil {
		return nil
	}

	if p.tok.IsAssignOp() {
		dest, ok := x.(*ast.Ident)
		if !ok {
			p.fail(x.Span().Begin, "assignment destination must be an identifier")
		}
		op, opPos := p.tok, p.val.Pos
		p.advance()
		val := p.parseExpr()
		if val == nil {
			p.fail(p.val.Pos, "assignment value missing")
		}
		return &ast.AssignExpr{Dest: dest, Op: op, OpPos: opPos, Value: val}
	}
	return x
}

// comparison := sum (('<'|'<='|'>'|'>='|'=='|'!=') sum)*
func (p *parser) parseComparison() ast.Expr {
	x := p.parseSum()
	if x == nil {
		return nil
	}
	for p.tok.IsComparison() {
		op, opPos := p.tok, p.val.Pos
		p.advance()
		y := p.parseSum()
		if y == nil {
			p.fail(p.val.Pos, "expression right-hand side missing")
		}
		x = &ast.BinaryExpr{X: x, Op: op, OpPos: opPos, Y: y}
	}
	return x
}

// sum := product (('+'|'-') product)*
func (p *parser) parseSum() ast.Expr {
	x := p.parseProduct()
	if x == nil {
		return nil
	}
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op, opPos := p.tok, p.val.Pos
		p.advance()
		y := p.parseProduct()
		if y == nil {
			p.fail(p.val.Pos, "expression right-hand side missing")
		}
		x = &ast.BinaryExpr{X: x, Op: op, OpPos: opPos, Y: y}
	}
	return x
}

// product := value (('*'|'/') value)*
func (p *parser) parseProduct() ast.Expr {
	x := p.parseValue()
	if x == nil {
		return nil
	}
	for p.tok == token.STAR || p.tok == token.SLASH {
		op, opPos := p.tok, p.val.Pos
		p.advance()
		y := p.parseValue()
		if y == nil {
			p.fail(p.val.Pos, "expression right-hand side missing")
		}
		x = &ast.BinaryExpr{X: x, Op: op, OpPos: opPos, Y: y}
	}
	return x
}

// value := atom postfix*
// postfix := '(' (expr (',' expr)*)? ')' | 'as' type
func (p *parser) parseValue() ast.Expr {
	x := p.parseAtom()
	if x == nil {
		return nil
	}

	for {
		switch p.tok {
		case token.LPAREN:
			call := &ast.CallExpr{Fun: x, Lparen: p.val.Pos}
			p.advance()
			if p.tok != token.RPAREN {
				arg := p.parseExpr()
				if arg == nil {
					p.fail(p.val.Pos, "bracket internals missing")
				}
				call.Args = append(call.Args, arg)
				for p.tok == token.COMMA {
					p.advance()
					arg = p.parseExpr()
					if arg == nil {
						p.fail(p.val.Pos, "bracket internals missing")
					}
					call.Args = append(call.Args, arg)
				}
			}
			call.Rparen = p.expect(token.RPAREN)
			x = call

		case token.AS:
			as := p.val.Pos
			p.advance()
			if !p.tok.IsType() {
				p.fail(p.val.Pos, "variable type missing")
			}
			x = &ast.ConvExpr{X: x, As: as, Type: p.parseTypeName()}

		default:
			return x
		}
	}
}

// atom := INTEGER | FLOATING | IDENT | '(' expr ')'
func (p *parser) parseAtom() ast.Expr {
	switch p.tok {
	case token.INT:
		lit := &ast.IntLit{Start: p.val.Pos, Raw: p.val.Raw, Value: p.val.Int}
		p.advance()
		return lit

	case token.FLOAT:
		lit := &ast.FloatLit{Start: p.val.Pos, Raw: p.val.Raw, Value: p.val.Float}
		p.advance()
		return lit

	case token.IDENT:
		return p.parseIdent()

	case token.LPAREN:
		pe := &ast.ParenExpr{Lparen: p.val.Pos}
		p.advance()
		pe.X = p.parseExpr()
		if pe.X == nil {
			p.fail(p.val.Pos, "bracket internals missing")
		}
		pe.Rparen = p.expect(token.RPAREN)
		return pe
	}
	return nil
}

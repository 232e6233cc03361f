package parser

import (
	"github.com/catface-lang/catface/lang/ast"
	"github.com/catface-lang/catface/lang/token"
)

// parseDecl parses a top-level or block-level declaration:
//
//	decl := 'fn' IDENT '(' params? ')' type? (block | ';')
//	      | 'let' IDENT ':' type ('=' expr)? ';'
func (p *parser) parseDecl() ast.Decl {
	switch p.tok {
	case token.FN:
		return p.parseFuncDecl()
	case token.LET:
		return p.parseVarDecl()
	}
	p.expect(token.FN, token.LET)
	return nil // unreachable, expect aborted
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	fn := &ast.FuncDecl{Fn: p.expect(token.FN)}
	fn.Name = p.parseIdent()
	fn.Lparen = p.expect(token.LPAREN)
	if p.tok != token.RPAREN {
		fn.Params = append(fn.Params, p.parseParam())
		for p.tok == token.COMMA {
			p.advance()
			fn.Params = append(fn.Params, p.parseParam())
		}
	}
	fn.Rparen = p.expect(token.RPAREN)

	if p.tok.IsType() {
		fn.Result = p.parseTypeName()
	}

	if p.tok == token.SEMI {
		fn.Semi = p.val.Pos
		p.advance()
		return fn
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *parser) parseParam() *ast.Param {
	prm := &ast.Param{Name: p.parseIdent()}
	prm.Colon = p.expect(token.COLON)
	if !p.tok.IsType() {
		p.fail(p.val.Pos, "variable type missing")
	}
	prm.Type = p.parseTypeName()
	return prm
}

func (p *parser) parseVarDecl() *ast.VarDecl {
	vd := &ast.VarDecl{Let: p.expect(token.LET)}
	vd.Name = p.parseIdent()
	vd.Colon = p.expect(token.COLON)
	if !p.tok.IsType() {
		p.fail(p.val.Pos, "variable type missing")
	}
	vd.Type = p.parseTypeName()

	if p.tok == token.EQ {
		vd.Assign = p.val.Pos
		p.advance()
		vd.Init = p.parseExpr()
		if vd.Init == nil {
			p.fail(p.val.Pos, "variable initializer missing")
		}
	}
	vd.Semi = p.expect(token.SEMI)
	return vd
}

func (p *parser) parseIdent() *ast.Ident {
	name := p.val.Raw
	pos := p.expect(token.IDENT)
	return &ast.Ident{Start: pos, Name: name}
}

var typeKinds = map[token.Token]ast.Type{
	token.I32:  ast.TypeI32,
	token.U32:  ast.TypeU32,
	token.F32:  ast.TypeF32,
	token.VOID: ast.TypeVoid,
}

// parseTypeName parses a primitive type name. The current token must
// be a type keyword.
func (p *parser) parseTypeName() *ast.TypeName {
	kind := typeKinds[p.tok]
	pos := p.expect(token.I32, token.U32, token.F32, token.VOID)
	return &ast.TypeName{Start: pos, Kind: kind}
}

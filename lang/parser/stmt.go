package parser

import (
	"github.com/catface-lang/catface/lang/ast"
	"github.com/catface-lang/catface/lang/token"
)

// parseBlock parses a brace-delimited block of statements.
func (p *parser) parseBlock() *ast.Block {
	b := &ast.Block{Lbrace: p.expect(token.LBRACE)}
	for p.tok != token.RBRACE && p.tok != token.EOF {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	b.Rbrace = p.expect(token.RBRACE)
	return b
}

// parseStmt parses a single statement:
//
//	stmt := 'if' expr block ('else' block)?
//	      | 'while' expr block
//	      | block
//	      | decl
//	      | expr ';'
func (p *parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.IF:
		return p.parseIfStmt()

	case token.WHILE:
		return p.parseWhileStmt()

	case token.LBRACE:
		return &ast.BlockStmt{Block: p.parseBlock()}

	case token.FN, token.LET:
		return &ast.DeclStmt{Decl: p.parseDecl()}
	}

	x := p.parseExpr()
	if x == nil {
		p.expect(token.IF, token.WHILE, token.LBRACE, token.FN, token.LET)
	}
	semi := p.expect(token.SEMI)
	return &ast.ExprStmt{X: x, Semi: semi}
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	st := &ast.IfStmt{If: p.expect(token.IF)}
	st.Cond = p.parseExpr()
	if st.Cond == nil {
		p.fail(p.val.Pos, "if condition missing")
	}
	if p.tok != token.LBRACE {
		p.fail(p.val.Pos, "if block missing")
	}
	st.Then = p.parseBlock()

	if p.tok == token.ELSE {
		p.advance()
		if p.tok != token.LBRACE {
			p.fail(p.val.Pos, "else block missing")
		}
		st.Else = p.parseBlock()
	}
	return st
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	st := &ast.WhileStmt{While: p.expect(token.WHILE)}
	st.Cond = p.parseExpr()
	if st.Cond == nil {
		p.fail(p.val.Pos, "while condition missing")
	}
	if p.tok != token.LBRACE {
		p.fail(p.val.Pos, "while block missing")
	}
	st.Body = p.parseBlock()
	return st
}

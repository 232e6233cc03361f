package ast

import (
	"fmt"

	"github.com/catface-lang/catface/lang/token"
)

type (
	// ExprStmt represents an expression used as a statement,
	// terminated by a semicolon.
	ExprStmt struct {
		X    Expr
		Semi token.Pos
	}

	// DeclStmt represents a declaration appearing inside a block.
	DeclStmt struct {
		Decl Decl
	}

	// BlockStmt represents a nested block used as a statement.
	BlockStmt struct {
		Block *Block
	}

	// IfStmt represents an if statement with an optional else block.
	IfStmt struct {
		If   token.Pos
		Cond Expr
		Then *Block
		Else *Block // may be nil
	}

	// WhileStmt represents a while loop.
	WhileStmt struct {
		While token.Pos
		Cond  Expr
		Body  *Block
	}
)

func (n *ExprStmt) stmt()  {}
func (n *DeclStmt) stmt()  {}
func (n *BlockStmt) stmt() {}
func (n *IfStmt) stmt()    {}
func (n *WhileStmt) stmt() {}

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Span() token.Span {
	return token.MakeSpan(n.X.Span().Begin, n.Semi+1)
}
func (n *ExprStmt) Walk(v Visitor) { Walk(v, n.X) }

func (n *DeclStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "decl stmt", nil) }
func (n *DeclStmt) Span() token.Span              { return n.Decl.Span() }
func (n *DeclStmt) Walk(v Visitor)                { Walk(v, n.Decl) }

func (n *BlockStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "block stmt", nil) }
func (n *BlockStmt) Span() token.Span              { return n.Block.Span() }
func (n *BlockStmt) Walk(v Visitor)                { Walk(v, n.Block) }

func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfStmt) Span() token.Span {
	end := n.Then.Span().End
	if n.Else != nil {
		end = n.Else.Span().End
	}
	return token.MakeSpan(n.If, end)
}
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Span() token.Span {
	return token.MakeSpan(n.While, n.Body.Span().End)
}
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}

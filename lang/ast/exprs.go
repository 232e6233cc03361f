package ast

import (
	"fmt"
	"strconv"

	"github.com/catface-lang/catface/lang/token"
)

// Unwrap returns the expression inside the parens. It unwraps
// multiple ParenExpr recursively until it reaches a non-ParenExpr.
func Unwrap(e Expr) Expr {
	if pe, ok := e.(*ParenExpr); ok {
		return Unwrap(pe.X)
	}
	return e
}

type (
	// IntLit represents an integer literal. The literal is untyped
	// until context fixes its type.
	IntLit struct {
		Start token.Pos
		Raw   string
		Value uint64
	}

	// FloatLit represents a floating literal. The literal is untyped
	// until context fixes its type.
	FloatLit struct {
		Start token.Pos
		Raw   string
		Value float64
	}

	// Ident represents an identifier expression.
	Ident struct {
		Start token.Pos
		Name  string
	}

	// CallExpr represents a function call, e.g. f(x, y).
	CallExpr struct {
		Fun    Expr
		Lparen token.Pos
		Args   []Expr
		Rparen token.Pos
	}

	// ConvExpr represents a conversion, e.g. x as i32.
	ConvExpr struct {
		X    Expr
		As   token.Pos
		Type *TypeName
	}

	// AssignExpr represents an assignment, plain or compound, e.g.
	// x = y or x += y. The destination is always an identifier.
	AssignExpr struct {
		Dest  *Ident
		Op    token.Token // EQ or PLUS_EQ..SLASH_EQ
		OpPos token.Pos
		Value Expr
	}

	// BinaryExpr represents a binary operator expression, e.g. x + y.
	BinaryExpr struct {
		X     Expr
		Op    token.Token
		OpPos token.Pos
		Y     Expr
	}

	// ParenExpr represents a parenthesized expression.
	ParenExpr struct {
		Lparen token.Pos
		X      Expr
		Rparen token.Pos
	}
)

func (n *IntLit) expr()     {}
func (n *FloatLit) expr()   {}
func (n *Ident) expr()      {}
func (n *CallExpr) expr()   {}
func (n *ConvExpr) expr()   {}
func (n *AssignExpr) expr() {}
func (n *BinaryExpr) expr() {}
func (n *ParenExpr) expr()  {}

func (n *IntLit) Format(f fmt.State, verb rune) { format(f, verb, n, "int "+n.Raw, nil) }
func (n *IntLit) Span() token.Span {
	return token.MakeSpan(n.Start, n.Start+token.Pos(len(n.Raw)))
}
func (n *IntLit) Walk(_ Visitor) {}

func (n *FloatLit) Format(f fmt.State, verb rune) { format(f, verb, n, "float "+n.Raw, nil) }
func (n *FloatLit) Span() token.Span {
	return token.MakeSpan(n.Start, n.Start+token.Pos(len(n.Raw)))
}
func (n *FloatLit) Walk(_ Visitor) {}

func (n *Ident) Format(f fmt.State, verb rune) { format(f, verb, n, "ident "+n.Name, nil) }
func (n *Ident) Span() token.Span {
	return token.MakeSpan(n.Start, n.Start+token.Pos(len(n.Name)))
}
func (n *Ident) Walk(_ Visitor) {}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() token.Span {
	return token.MakeSpan(n.Fun.Span().Begin, n.Rparen+1)
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fun)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *ConvExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "as "+n.Type.Kind.String(), nil)
}
func (n *ConvExpr) Span() token.Span {
	return token.MakeSpan(n.X.Span().Begin, n.Type.Span().End)
}
func (n *ConvExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Type)
}

func (n *AssignExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.Dest.Name+" "+n.Op.String(), nil)
}
func (n *AssignExpr) Span() token.Span {
	return token.MakeSpan(n.Dest.Span().Begin, n.Value.Span().End)
}
func (n *AssignExpr) Walk(v Visitor) {
	Walk(v, n.Dest)
	Walk(v, n.Value)
}

func (n *BinaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binop "+strconv.Quote(n.Op.String()), nil)
}
func (n *BinaryExpr) Span() token.Span {
	return token.MakeSpan(n.X.Span().Begin, n.Y.Span().End)
}
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.X)
	Walk(v, n.Y)
}

func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "paren", nil) }
func (n *ParenExpr) Span() token.Span              { return token.MakeSpan(n.Lparen, n.Rparen+1) }
func (n *ParenExpr) Walk(v Visitor)                { Walk(v, n.X) }

package ast

import (
	"fmt"

	"github.com/catface-lang/catface/lang/token"
)

type (
	// FuncDecl represents a function declaration, with or without a
	// body: fn name(params) type { ... } or fn name(params) type;
	FuncDecl struct {
		Fn     token.Pos
		Name   *Ident
		Lparen token.Pos
		Params []*Param
		Rparen token.Pos
		Result *TypeName // nil means void
		Body   *Block    // nil for a body-less declaration
		Semi   token.Pos // set only when Body is nil
	}

	// Param is a single function parameter: name ':' type.
	Param struct {
		Name  *Ident
		Colon token.Pos
		Type  *TypeName
	}

	// VarDecl represents a let declaration:
	// let name ':' type ('=' init)? ';'
	VarDecl struct {
		Let    token.Pos
		Name   *Ident
		Colon  token.Pos
		Type   *TypeName
		Assign token.Pos // zero if no initializer
		Init   Expr      // may be nil
		Semi   token.Pos
	}

	// TypeName is a primitive type written in source.
	TypeName struct {
		Start token.Pos
		Kind  Type
	}
)

func (n *FuncDecl) decl() {}
func (n *VarDecl) decl()  {}

func (n *FuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "fn "+n.Name.Name, map[string]int{"params": len(n.Params)})
}

func (n *FuncDecl) Span() token.Span {
	if n.Body != nil {
		return token.MakeSpan(n.Fn, n.Body.Span().End)
	}
	return token.MakeSpan(n.Fn, n.Semi+1)
}

func (n *FuncDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Result != nil {
		Walk(v, n.Result)
	}
	if n.Body != nil {
		Walk(v, n.Body)
	}
}

// ResultType returns the declared return type, void when omitted.
func (n *FuncDecl) ResultType() Type {
	if n.Result == nil {
		return TypeVoid
	}
	return n.Result.Kind
}

func (n *Param) Format(f fmt.State, verb rune) {
	format(f, verb, n, "param "+n.Name.Name, nil)
}
func (n *Param) Span() token.Span {
	return token.MakeSpan(n.Name.Span().Begin, n.Type.Span().End)
}
func (n *Param) Walk(v Visitor) {
	Walk(v, n.Name)
	Walk(v, n.Type)
}

func (n *VarDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "let "+n.Name.Name, nil)
}
func (n *VarDecl) Span() token.Span { return token.MakeSpan(n.Let, n.Semi+1) }
func (n *VarDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	Walk(v, n.Type)
	if n.Init != nil {
		Walk(v, n.Init)
	}
}

func (n *TypeName) Format(f fmt.State, verb rune) {
	format(f, verb, n, "type "+n.Kind.String(), nil)
}
func (n *TypeName) Span() token.Span {
	return token.MakeSpan(n.Start, n.Start+token.Pos(len(n.Kind.String())))
}
func (n *TypeName) Walk(_ Visitor) {}

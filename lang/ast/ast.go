// Package ast defines the types that represent the abstract syntax
// tree (AST) of the CF language. Literal nodes are untyped until a
// surrounding conversion or assignment/call context fixes their type;
// the tir package performs that resolution.
package ast

import (
	"fmt"
	"sort"

	"github.com/catface-lang/catface/lang/token"
)

// Node represents any node in the AST.
type Node interface {
	// Every Node implements the fmt.Formatter interface so they can
	// print a description of themselves. The only supported verbs are
	// 'v' and 's'. The '#' flag prints count information about children
	// nodes.
	fmt.Formatter

	// Span reports the half-open byte range of the node.
	Span() token.Span

	// Walk enters each node inside itself to implement the Visitor
	// pattern.
	Walk(v Visitor)
}

// Decl represents a top-level or block-level declaration.
type Decl interface {
	Node
	decl()
}

// Stmt represents a statement in the AST.
type Stmt interface {
	Node
	stmt()
}

// Expr represents an expression in the AST.
type Expr interface {
	Node
	expr()
}

// Type is a CF primitive type.
type Type uint8

const (
	TypeI32 Type = iota
	TypeU32
	TypeF32
	TypeVoid
)

func (t Type) String() string {
	switch t {
	case TypeI32:
		return "i32"
	case TypeU32:
		return "u32"
	case TypeF32:
		return "f32"
	case TypeVoid:
		return "void"
	}
	return "<invalid>"
}

// File is the root of the AST for a single source file: an ordered
// sequence of declarations terminated by EOF.
type File struct {
	Name  string // file name, may be empty if not read from a file
	Decls []Decl
	EOF   token.Pos // position of the EOF marker
}

func (n *File) Format(f fmt.State, verb rune) {
	lbl := "file"
	if n.Name != "" {
		lbl += " " + n.Name
	}
	format(f, verb, n, lbl, map[string]int{"decls": len(n.Decls)})
}

func (n *File) Span() token.Span {
	if len(n.Decls) > 0 {
		return token.MakeSpan(n.Decls[0].Span().Begin, n.EOF)
	}
	return token.MakeSpan(n.EOF, n.EOF)
}

func (n *File) Walk(v Visitor) {
	for _, d := range n.Decls {
		Walk(v, d)
	}
}

// Block represents a brace-delimited sequence of statements; a
// lexical scope boundary.
type Block struct {
	Lbrace token.Pos
	Stmts  []Stmt
	Rbrace token.Pos
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}

func (n *Block) Span() token.Span { return token.MakeSpan(n.Lbrace, n.Rbrace+1) }

func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}

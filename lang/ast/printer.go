package ast

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/catface-lang/catface/lang/token"
)

// Printer controls pretty-printing of AST nodes as an indented tree,
// one node per line.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer

	// Positions prints each node's span as file:line:col ranges when a
	// file is provided to Print.
	Positions bool

	// NodeFmt is the format string to use to print the nodes. The verb
	// must be either `s` or `v` and the `#` flag is supported.
	// Defaults to `%v`.
	NodeFmt string
}

// Print pretty-prints the AST node n from the specified file. The
// file argument is only required when printing positions.
func (p *Printer) Print(n Node, file *token.File) error {
	if file == nil && p.Positions {
		return errors.New("file must be provided to print positions")
	}

	pp := &printer{
		w:       p.Output,
		pos:     p.Positions,
		nodeFmt: p.NodeFmt,
		file:    file,
	}
	if pp.nodeFmt == "" {
		pp.nodeFmt = "%v"
	}
	Walk(pp, n)
	return pp.err
}

type printer struct {
	w       io.Writer
	pos     bool
	nodeFmt string
	file    *token.File
	depth   int
	err     error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit {
		p.depth--
		return nil
	}
	if p.err != nil {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", p.depth))
	fmt.Fprintf(&sb, p.nodeFmt, n)
	if p.pos {
		sp := n.Span()
		start := p.file.Position(sp.Begin)
		end := p.file.Position(sp.End)
		fmt.Fprintf(&sb, " [%d:%d - %d:%d]", start.Line, start.Column, end.Line, end.Column)
	}
	sb.WriteByte('\n')

	_, p.err = io.WriteString(p.w, sb.String())
	p.depth++
	return p
}

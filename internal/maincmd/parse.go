package maincmd

import (
	"context"
	"fmt"

	"github.com/catface-lang/catface/lang/ast"
	"github.com/catface-lang/catface/lang/parser"
	"github.com/catface-lang/catface/lang/scanner"
	"github.com/mna/mainer"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(ctx, stdio, c.WithPositions, args...)
}

// ParseFiles parses the source files and prints the resulting ASTs.
func ParseFiles(ctx context.Context, stdio mainer.Stdio, positions bool, files ...string) error {
	printer := ast.Printer{
		Output:    stdio.Stdout,
		Positions: positions,
	}
	handles, roots, err := parser.ParseFiles(ctx, files...)
	for i, root := range roots {
		if err := printer.Print(root, handles[i]); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}

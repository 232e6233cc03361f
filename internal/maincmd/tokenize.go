package maincmd

import (
	"context"
	"fmt"

	"github.com/catface-lang/catface/lang/scanner"
	"github.com/mna/mainer"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

// TokenizeFiles scans the source files and prints one token per line
// with its position and literal value.
func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	handles, toksByFile, err := scanner.ScanFiles(ctx, files...)
	for i, toks := range toksByFile {
		file := handles[i]
		if file == nil {
			continue
		}
		for _, tok := range toks {
			pos := file.Position(tok.Value.Pos)
			fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s", pos.Filename, pos.Line, pos.Column, tok.Token)
			if lit := tok.Token.Literal(tok.Value); lit != "" {
				fmt.Fprintf(stdio.Stdout, " %s", lit)
			}
			fmt.Fprintln(stdio.Stdout)
		}
	}
	if err != nil {
		scanner.PrintError(stdio.Stderr, err)
	}
	return err
}

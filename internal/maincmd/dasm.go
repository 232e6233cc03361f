package maincmd

import (
	"context"
	"os"

	"github.com/catface-lang/catface/lang/asm"
	"github.com/catface-lang/catface/lang/executable"
	"github.com/mna/mainer"
)

// Dasm disassembles executables to textual bytecode.
func (c *Cmd) Dasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	out := stdio.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return printError(stdio, err)
		}
		defer f.Close()
		out = f
	}

	for _, file := range args {
		f, err := os.Open(file)
		if err != nil {
			return printError(stdio, err)
		}
		ex, err := executable.Read(f)
		f.Close()
		if err != nil {
			return printError(stdio, err)
		}

		if err := asm.Disassemble(ex.Code, out); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}

package maincmd

import (
	"context"
	"os"

	"github.com/catface-lang/catface/lang/asm"
	"github.com/catface-lang/catface/lang/linker"
	"github.com/mna/mainer"
)

// Asm assembles each textual bytecode file into a relocatable
// object. With --link, each object is immediately linked into an
// executable.
func (c *Cmd) Asm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, file := range args {
		src, err := os.ReadFile(file)
		if err != nil {
			return printError(stdio, err)
		}

		o, err := asm.Assemble(src, file)
		if err != nil {
			return printError(stdio, err)
		}

		if c.LinkNow {
			ex, err := linker.Link(o)
			if err != nil {
				return printError(stdio, err)
			}
			if err := writeExecutable(c.outputFor(file, args, ".cfexe"), ex); err != nil {
				return printError(stdio, err)
			}
			continue
		}

		if err := writeObject(c.outputFor(file, args, ".cfobj"), o); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}

// outputFor returns the output path for one of possibly several
// inputs; the --output flag only applies to a single input.
func (c *Cmd) outputFor(file string, args []string, ext string) string {
	if c.Output != "" && len(args) == 1 {
		return c.Output
	}
	return replaceExt(file, ext)
}

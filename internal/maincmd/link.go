package maincmd

import (
	"context"
	"os"

	"github.com/catface-lang/catface/lang/linker"
	"github.com/catface-lang/catface/lang/object"
	"github.com/mna/mainer"
	"golang.org/x/sync/errgroup"
)

// Link reads the object files, in command-line order, and combines
// them into an executable.
func (c *Cmd) Link(ctx context.Context, stdio mainer.Stdio, args []string) error {
	objs := make([]*object.Object, len(args))

	// reading and hash-verifying the inputs is independent per file
	g, _ := errgroup.WithContext(ctx)
	for i, file := range args {
		i, file := i, file
		g.Go(func() error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			o, err := object.Read(f)
			if err != nil {
				return err
			}
			objs[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return printError(stdio, err)
	}

	ex, err := linker.Link(objs...)
	if err != nil {
		return printError(stdio, err)
	}

	out := c.Output
	if out == "" {
		out = replaceExt(args[0], ".cfexe")
	}
	return printError(stdio, writeExecutable(out, ex))
}

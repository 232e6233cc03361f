package maincmd

import (
	"context"
	"os"
	"strings"

	"github.com/catface-lang/catface/lang/codegen"
	"github.com/catface-lang/catface/lang/executable"
	"github.com/catface-lang/catface/lang/linker"
	"github.com/catface-lang/catface/lang/object"
	"github.com/catface-lang/catface/lang/parser"
	"github.com/catface-lang/catface/lang/scanner"
	"github.com/catface-lang/catface/lang/tir"
	"github.com/mna/mainer"
	"golang.org/x/sync/errgroup"
)

// Build compiles each CF source file into a relocatable object. With
// --link, the objects are linked into a single executable instead.
func (c *Cmd) Build(ctx context.Context, stdio mainer.Stdio, args []string) error {
	objs := make([]*object.Object, len(args))

	g, ctx := errgroup.WithContext(ctx)
	for i, file := range args {
		i, file := i, file
		g.Go(func() error {
			o, err := CompileFile(ctx, file)
			if err != nil {
				return err
			}
			objs[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if el, ok := err.(scanner.ErrorList); ok { //nolint:errorlint
			scanner.PrintError(stdio.Stderr, el)
			return err
		}
		return printError(stdio, err)
	}

	if c.LinkNow {
		ex, err := linker.Link(objs...)
		if err != nil {
			return printError(stdio, err)
		}
		return printError(stdio, writeExecutable(c.output(args[0], ".cfexe"), ex))
	}

	for i, o := range objs {
		out := replaceExt(args[i], ".cfobj")
		if c.Output != "" && len(args) == 1 {
			out = c.Output
		}
		if err := writeObject(out, o); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}

// CompileFile runs the front half of the pipeline on a single source
// file: parse, TIR build, code generation.
func CompileFile(ctx context.Context, file string) (*object.Object, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return CompileSource(ctx, file, b)
}

// CompileSource compiles a source buffer under the given name.
func CompileSource(ctx context.Context, name string, src []byte) (*object.Object, error) {
	handle, root, err := parser.ParseFile(ctx, name, src)
	if err != nil {
		return nil, err
	}
	unit, err := tir.Build(handle, root)
	if err != nil {
		return nil, err
	}
	return codegen.Generate(unit)
}

func (c *Cmd) output(firstInput, ext string) string {
	if c.Output != "" {
		return c.Output
	}
	return replaceExt(firstInput, ext)
}

func replaceExt(path, ext string) string {
	if i := strings.LastIndexByte(path, '.'); i > 0 {
		return path[:i] + ext
	}
	return path + ext
}

func writeObject(path string, o *object.Object) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := object.Write(f, o); err != nil {
		return err
	}
	return f.Close()
}

func writeExecutable(path string, ex *executable.Executable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := executable.Write(f, ex); err != nil {
		return err
	}
	return f.Close()
}

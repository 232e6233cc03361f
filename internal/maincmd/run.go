package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/catface-lang/catface/lang/executable"
	"github.com/catface-lang/catface/lang/vm"
	"github.com/mna/mainer"
)

// Run executes an executable in the virtual machine against the
// console sandbox.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
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

		sb := &vm.Console{In: stdio.Stdin, Out: stdio.Stdout}
		stop := context.AfterFunc(ctx, func() { sb.ShouldTerminate.Store(true) })
		info := vm.Exec(ex, sb, vm.Options{MemorySize: c.Memory})
		stop()

		if info.Reason != vm.TermHalt {
			return printError(stdio, fmt.Errorf("%s: %s", file, info))
		}
	}
	return nil
}

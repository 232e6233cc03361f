package vm

import (
	"bufio"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/catface-lang/catface/lang/isa"
)

// Console is a headless sandbox backing the run command: floats are
// read from and written to the configured streams, execution time is
// wall clock, video calls are accepted and ignored, and key input is
// read byte-wise from the input stream. The host cancels by setting
// ShouldTerminate; the VM observes it on the next sandbox call and
// exits with a sandbox error.
type Console struct {
	In  io.Reader
	Out io.Writer

	// ShouldTerminate makes every subsequent sandbox call fail,
	// terminating execution. May be set from any goroutine.
	ShouldTerminate atomic.Bool

	// LastTerm records the termination info passed to Terminate.
	LastTerm *TermInfo

	in    *bufio.Reader
	start time.Time
}

var _ Sandbox = (*Console)(nil)

func (c *Console) Initialize(env *ExecEnv) bool {
	if c.ShouldTerminate.Load() {
		return false
	}
	c.in = bufio.NewReader(c.In)
	c.start = time.Now()
	return true
}

func (c *Console) Terminate(info *TermInfo) { c.LastTerm = info }

func (c *Console) ExecutionTime() (float32, bool) {
	if c.ShouldTerminate.Load() {
		return 0, false
	}
	return float32(time.Since(c.start).Seconds()), true
}

func (c *Console) SetVideoMode(f isa.StorageFormat, m isa.UpdateMode) bool {
	return !c.ShouldTerminate.Load()
}

func (c *Console) RefreshScreen() bool {
	return !c.ShouldTerminate.Load()
}

func (c *Console) WaitKeyDown() (isa.Key, bool) {
	if c.ShouldTerminate.Load() {
		return isa.KeyNull, false
	}
	b, err := c.in.ReadByte()
	if err != nil {
		return isa.KeyNull, false
	}
	if b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	return isa.KeyFromUint32(uint32(b)), true
}

func (c *Console) KeyState(k isa.Key) (pressed, ok bool) {
	// no live keyboard state without a windowing host
	return false, !c.ShouldTerminate.Load()
}

func (c *Console) ReadFloat64() float64 {
	var v float64
	fmt.Fscan(c.in, &v) //nolint:errcheck
	return v
}

func (c *Console) WriteFloat64(v float64) {
	fmt.Fprintln(c.Out, v)
}

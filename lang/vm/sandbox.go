package vm

import "github.com/catface-lang/catface/lang/isa"

// ExecEnv is the execution environment shared with the sandbox at
// initialization: the VM's linear memory, which the sandbox may read
// at any time for framebuffer scan-out. The VM's writes are
// word-sized and scan-out may tear within a frame.
type ExecEnv struct {
	Memory []byte
}

// Sandbox is the host capability set the VM uses for I/O, timing and
// presentation. Every boolean-returning operation may fail by
// returning false, which terminates execution with a sandbox error.
//
// Initialize is called once before execution; if it fails, no further
// callbacks are made. Terminate is called exactly once after any
// non-initialization exit.
type Sandbox interface {
	Initialize(env *ExecEnv) bool
	Terminate(info *TermInfo)

	ExecutionTime() (float32, bool)

	SetVideoMode(f isa.StorageFormat, m isa.UpdateMode) bool
	RefreshScreen() bool

	WaitKeyDown() (isa.Key, bool)
	KeyState(k isa.Key) (pressed, ok bool)

	ReadFloat64() float64
	WriteFloat64(v float64)
}

// Package vm implements the stack-based virtual machine that
// executes linked CF bytecode against a sandboxed linear memory.
package vm

import (
	"encoding/binary"

	"github.com/catface-lang/catface/lang/executable"
	"github.com/catface-lang/catface/lang/isa"
)

// DefaultMemorySize is the linear memory size used when none is
// configured.
const DefaultMemorySize = 1 << 20 // 1 MiB

// Options configures an execution.
type Options struct {
	// MemorySize is the linear RAM size in bytes. Defaults to
	// DefaultMemorySize when zero.
	MemorySize int
}

// Exec runs the executable against the sandbox and returns the
// termination info. The sandbox's Terminate callback receives the
// same info unless initialization failed.
func Exec(ex *executable.Executable, sb Sandbox, opts Options) *TermInfo {
	size := opts.MemorySize
	if size <= 0 {
		size = DefaultMemorySize
	}

	m := &machine{
		code:    ex.Code,
		mem:     make([]byte, size),
		sandbox: sb,
	}

	if !sb.Initialize(&ExecEnv{Memory: m.mem}) {
		return &TermInfo{Reason: TermSandboxError}
	}

	m.run()
	sb.Terminate(m.term)
	return m.term
}

// machine is the state of one execution.
type machine struct {
	code     []byte
	mem      []byte
	regs     [isa.RegisterCount]uint32
	operands []uint32
	calls    []uint32
	sandbox  Sandbox

	ic   uint32 // next byte to fetch
	insn uint32 // offset of the instruction being executed

	term *TermInfo
}

// trap terminates execution, recording the offset of the current
// instruction. It returns false so helpers can propagate failure in
// one expression.
func (m *machine) trap(info TermInfo) bool {
	info.Offset = m.insn
	m.term = &info
	return false
}

// readBytes fetches the next n operand bytes from the code stream.
func (m *machine) readBytes(n uint32) ([]byte, bool) {
	if uint32(len(m.code))-m.ic < n || m.ic > uint32(len(m.code)) {
		return nil, m.trap(TermInfo{Reason: TermUnexpectedCodeEnd})
	}
	b := m.code[m.ic : m.ic+n]
	m.ic += n
	return b, true
}

func (m *machine) readU32() (uint32, bool) {
	b, ok := m.readBytes(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (m *machine) push(v uint32) bool {
	m.operands = append(m.operands, v)
	return true
}

func (m *machine) pop() (uint32, bool) {
	if len(m.operands) == 0 {
		return 0, m.trap(TermInfo{Reason: TermNoOperands})
	}
	v := m.operands[len(m.operands)-1]
	m.operands = m.operands[:len(m.operands)-1]
	return v, true
}

// jump moves the instruction counter to an absolute code offset.
func (m *machine) jump(target uint32) bool {
	if target >= uint32(len(m.code)) {
		return m.trap(TermInfo{Reason: TermInvalidIC})
	}
	m.ic = target
	return true
}

func (m *machine) readReg(idx isa.Register) (uint32, bool) {
	if idx >= isa.RegisterCount {
		_ = m.trap(TermInfo{Reason: TermUnknownRegister, UnknownRegister: uint32(idx)})
		return 0, false
	}
	return m.regs[idx], true
}

// writeReg stores a value into a register. Writes to cz and fl are
// discarded.
func (m *machine) writeReg(idx isa.Register, v uint32) bool {
	if idx >= isa.RegisterCount {
		return m.trap(TermInfo{Reason: TermUnknownRegister, UnknownRegister: uint32(idx)})
	}
	if idx >= isa.AX {
		m.regs[idx] = v
	}
	return true
}

// load4 reads the 32-bit value at addr, bounds-checked.
func (m *machine) load4(addr uint32) (uint32, bool) {
	if !m.checkAddr(addr) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(m.mem[addr:]), true
}

// store4 writes the 32-bit value at addr, bounds-checked.
func (m *machine) store4(addr, v uint32) bool {
	if !m.checkAddr(addr) {
		return false
	}
	binary.LittleEndian.PutUint32(m.mem[addr:], v)
	return true
}

// checkAddr validates a 4-byte access: [addr, addr+4) must satisfy
// addr <= memSize-4.
func (m *machine) checkAddr(addr uint32) bool {
	if addr > uint32(len(m.mem))-4 {
		return m.trap(TermInfo{
			Reason:     TermSegmentationFault,
			Addr:       addr,
			MemorySize: uint32(len(m.mem)),
		})
	}
	return true
}

func (m *machine) flags() isa.Flags { return isa.Flags(m.regs[isa.FL]) }

func (m *machine) setFlags(f isa.Flags) { m.regs[isa.FL] = uint32(f) }

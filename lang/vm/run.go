package vm

import (
	"math"

	"github.com/catface-lang/catface/lang/isa"
)

// run is the interpreter loop. It executes instructions until a trap
// records the termination info.
func (m *machine) run() {
	for m.term == nil {
		m.insn = m.ic

		op, ok := m.readBytes(1)
		if !ok {
			return
		}

		switch opcode := isa.Opcode(op[0]); opcode {
		case isa.UNREACHABLE:
			m.trap(TermInfo{Reason: TermUnreachable})

		case isa.HALT:
			m.trap(TermInfo{Reason: TermHalt})

		case isa.SYSCALL:
			m.syscall()

		case isa.ADD:
			m.binaryU32(func(x, y uint32) uint32 { return x + y })
		case isa.SUB:
			m.binaryU32(func(x, y uint32) uint32 { return x - y })
		case isa.SHL:
			m.binaryU32(func(x, y uint32) uint32 { return x << (y & 31) })
		case isa.SHR:
			m.binaryU32(func(x, y uint32) uint32 { return x >> (y & 31) })
		case isa.SAR:
			m.binaryU32(func(x, y uint32) uint32 { return uint32(int32(x) >> (y & 31)) })
		case isa.OR:
			m.binaryU32(func(x, y uint32) uint32 { return x | y })
		case isa.XOR:
			m.binaryU32(func(x, y uint32) uint32 { return x ^ y })
		case isa.AND:
			m.binaryU32(func(x, y uint32) uint32 { return x & y })
		case isa.MUL:
			m.binaryU32(func(x, y uint32) uint32 { return x * y })
		case isa.IMUL:
			m.binaryU32(func(x, y uint32) uint32 { return uint32(int32(x) * int32(y)) })
		case isa.DIV:
			m.binaryU32(func(x, y uint32) uint32 {
				if y == 0 {
					return 0
				}
				return x / y
			})
		case isa.IDIV:
			m.binaryU32(func(x, y uint32) uint32 {
				if y == 0 {
					return 0
				}
				return uint32(int32(x) / int32(y))
			})

		case isa.FADD:
			m.binaryF32(func(x, y float32) float32 { return x + y })
		case isa.FSUB:
			m.binaryF32(func(x, y float32) float32 { return x - y })
		case isa.FMUL:
			m.binaryF32(func(x, y float32) float32 { return x * y })
		case isa.FDIV:
			m.binaryF32(func(x, y float32) float32 { return x / y })

		case isa.FTOI:
			m.unaryU32(func(v uint32) uint32 {
				return uint32(int32(math.Float32frombits(v)))
			})
		case isa.ITOF:
			m.unaryU32(func(v uint32) uint32 {
				return math.Float32bits(float32(int32(v)))
			})

		case isa.FSIN:
			m.unaryF32(func(v float32) float32 { return float32(math.Sin(float64(v))) })
		case isa.FCOS:
			m.unaryF32(func(v float32) float32 { return float32(math.Cos(float64(v))) })
		case isa.FNEG:
			m.unaryF32(func(v float32) float32 { return -v })
		case isa.FSQRT:
			m.unaryF32(func(v float32) float32 { return float32(math.Sqrt(float64(v))) })

		case isa.CMP:
			m.compare(func(x, y uint32) (lt, eq bool) { return x < y, x == y })
		case isa.ICMP:
			m.compare(func(x, y uint32) (lt, eq bool) {
				return int32(x) < int32(y), x == y
			})
		case isa.FCMP:
			m.compare(func(x, y uint32) (lt, eq bool) {
				fx, fy := math.Float32frombits(x), math.Float32frombits(y)
				return fx < fy, fx == fy
			})

		case isa.JMP:
			m.condJump(true)
		case isa.JLE:
			m.condJump(m.flags().IsLt() || m.flags().IsEq())
		case isa.JL:
			m.condJump(m.flags().IsLt())
		case isa.JGE:
			m.condJump(!m.flags().IsLt())
		case isa.JG:
			m.condJump(!m.flags().IsLt() && !m.flags().IsEq())
		case isa.JE:
			m.condJump(m.flags().IsEq())
		case isa.JNE:
			m.condJump(!m.flags().IsEq())

		case isa.CALL:
			target, ok := m.readU32()
			if !ok {
				return
			}
			m.calls = append(m.calls, m.ic)
			m.jump(target)

		case isa.RET:
			if len(m.calls) == 0 {
				m.trap(TermInfo{Reason: TermCallStackUnderflow})
				break
			}
			m.ic = m.calls[len(m.calls)-1]
			m.calls = m.calls[:len(m.calls)-1]

		case isa.PUSH:
			m.pushInsn()

		case isa.POP:
			m.popInsn()

		case isa.VSM:
			m.setVideoMode()

		case isa.VRS:
			if !m.sandbox.RefreshScreen() {
				m.trap(TermInfo{Reason: TermSandboxError})
			}

		case isa.TIME:
			t, ok := m.sandbox.ExecutionTime()
			if !ok {
				m.trap(TermInfo{Reason: TermSandboxError})
				break
			}
			m.push(math.Float32bits(t))

		case isa.MGS:
			m.push(uint32(len(m.mem)))

		case isa.IWKD:
			key, ok := m.sandbox.WaitKeyDown()
			if !ok {
				m.trap(TermInfo{Reason: TermSandboxError})
				break
			}
			m.push(uint32(key))

		case isa.IGKS:
			m.keyState()

		default:
			m.trap(TermInfo{Reason: TermUnknownOpcode, UnknownOpcode: op[0]})
		}
	}
}

func (m *machine) binaryU32(f func(x, y uint32) uint32) {
	y, ok := m.pop()
	if !ok {
		return
	}
	x, ok := m.pop()
	if !ok {
		return
	}
	m.push(f(x, y))
}

func (m *machine) binaryF32(f func(x, y float32) float32) {
	m.binaryU32(func(x, y uint32) uint32 {
		return math.Float32bits(f(math.Float32frombits(x), math.Float32frombits(y)))
	})
}

func (m *machine) unaryU32(f func(v uint32) uint32) {
	v, ok := m.pop()
	if !ok {
		return
	}
	m.push(f(v))
}

func (m *machine) unaryF32(f func(v float32) float32) {
	m.unaryU32(func(v uint32) uint32 {
		return math.Float32bits(f(math.Float32frombits(v)))
	})
}

func (m *machine) compare(f func(x, y uint32) (lt, eq bool)) {
	y, ok := m.pop()
	if !ok {
		return
	}
	x, ok := m.pop()
	if !ok {
		return
	}
	lt, eq := f(x, y)
	m.setFlags(m.flags().SetCompare(lt, eq))
}

func (m *machine) condJump(cond bool) {
	target, ok := m.readU32()
	if !ok {
		return
	}
	if cond {
		m.jump(target)
	}
}

func (m *machine) syscall() {
	idx, ok := m.readU32()
	if !ok {
		return
	}

	switch idx {
	case 0: // readFloat64
		v := m.sandbox.ReadFloat64()
		m.push(math.Float32bits(float32(v)))

	case 1: // writeFloat64
		v, ok := m.pop()
		if !ok {
			return
		}
		m.sandbox.WriteFloat64(float64(math.Float32frombits(v)))

	default:
		m.trap(TermInfo{Reason: TermUnknownSyscall, UnknownSyscall: idx})
	}
}

// pushInsn decodes the info byte and pushes reg + (imm or 0),
// dereferenced through memory when the access flag is set.
func (m *machine) pushInsn() {
	b, ok := m.readBytes(1)
	if !ok {
		return
	}
	info := isa.DecodePushPopInfo(b[0])

	var value uint32
	if info.Immediate {
		if value, ok = m.readU32(); !ok {
			return
		}
	}
	reg, ok := m.readReg(info.Register)
	if !ok {
		return
	}
	value += reg

	if info.MemoryAccess {
		if value, ok = m.load4(value); !ok {
			return
		}
	}
	m.push(value)
}

// popInsn decodes the info byte and pops the top operand into memory
// at reg + imm, or into a register. Popping into an immediate is
// illegal.
func (m *machine) popInsn() {
	b, ok := m.readBytes(1)
	if !ok {
		return
	}
	info := isa.DecodePushPopInfo(b[0])

	value, ok := m.pop()
	if !ok {
		return
	}

	if info.MemoryAccess {
		var imm uint32
		if info.Immediate {
			if imm, ok = m.readU32(); !ok {
				return
			}
		}
		reg, ok := m.readReg(info.Register)
		if !ok {
			return
		}
		m.store4(reg+imm, value)
		return
	}

	if info.Immediate {
		m.trap(TermInfo{Reason: TermInvalidPopInfo, PopInfo: b[0]})
		return
	}
	m.writeReg(info.Register, value)
}

func (m *machine) setVideoMode() {
	bits, ok := m.pop()
	if !ok {
		return
	}

	// only the low 4 bits are interpreted
	format := isa.StorageFormat(bits & 0x7)
	update := isa.UpdateMode(bits >> 3 & 0x1)
	if format > isa.FormatTrueColor {
		m.trap(TermInfo{Reason: TermInvalidVideoMode, VideoModeBits: bits})
		return
	}

	m.setFlags(m.flags().SetVideoMode(format, update))
	if !m.sandbox.SetVideoMode(format, update) {
		m.trap(TermInfo{Reason: TermSandboxError})
	}
}

func (m *machine) keyState() {
	v, ok := m.pop()
	if !ok {
		return
	}

	var state uint32
	if key := isa.KeyFromUint32(v); key != isa.KeyNull {
		pressed, ok := m.sandbox.KeyState(key)
		if !ok {
			m.trap(TermInfo{Reason: TermSandboxError})
			return
		}
		if pressed {
			state = 1
		}
	}
	m.push(state)
}

package vm

import "fmt"

// TermReason is the cause of program termination.
type TermReason uint8

const (
	// reasons independent of the executed image
	TermHalt          TermReason = iota // program finished without errors
	TermSandboxError                    // a sandbox call failed
	TermInternalError                   // something went wrong in the VM itself

	// reasons caused by an invalid image
	TermUnknownSyscall
	TermUnknownOpcode
	TermUnexpectedCodeEnd
	TermUnknownRegister

	// reasons caused by execution errors
	TermUnreachable
	TermNoOperands
	TermStackUnderflow
	TermCallStackUnderflow
	TermInvalidIC
	TermSegmentationFault
	TermInvalidPopInfo
	TermInvalidVideoMode
)

var termNames = [...]string{
	TermHalt:               "halt",
	TermSandboxError:       "sandbox error",
	TermInternalError:      "internal error",
	TermUnknownSyscall:     "unknown system call",
	TermUnknownOpcode:      "unknown opcode",
	TermUnexpectedCodeEnd:  "unexpected code end",
	TermUnknownRegister:    "unknown register",
	TermUnreachable:        "unreachable",
	TermNoOperands:         "no operands",
	TermStackUnderflow:     "stack underflow",
	TermCallStackUnderflow: "call stack underflow",
	TermInvalidIC:          "invalid instruction counter",
	TermSegmentationFault:  "segmentation fault",
	TermInvalidPopInfo:     "invalid pop info",
	TermInvalidVideoMode:   "invalid video mode",
}

func (r TermReason) String() string {
	if int(r) < len(termNames) {
		return termNames[r]
	}
	return "<invalid>"
}

// TermInfo describes why and where execution terminated. Offset is
// the code offset of the instruction that terminated execution. The
// remaining fields are set only for the reasons they apply to.
type TermInfo struct {
	Reason TermReason
	Offset uint32

	UnknownOpcode   byte   // TermUnknownOpcode
	UnknownRegister uint32 // TermUnknownRegister
	UnknownSyscall  uint32 // TermUnknownSyscall
	Addr            uint32 // TermSegmentationFault
	MemorySize      uint32 // TermSegmentationFault
	PopInfo         byte   // TermInvalidPopInfo
	VideoModeBits   uint32 // TermInvalidVideoMode
}

func (t *TermInfo) String() string {
	switch t.Reason {
	case TermUnknownOpcode:
		return fmt.Sprintf("%s %#x at offset %#x", t.Reason, t.UnknownOpcode, t.Offset)
	case TermUnknownRegister:
		return fmt.Sprintf("%s %d at offset %#x", t.Reason, t.UnknownRegister, t.Offset)
	case TermUnknownSyscall:
		return fmt.Sprintf("%s %d at offset %#x", t.Reason, t.UnknownSyscall, t.Offset)
	case TermSegmentationFault:
		return fmt.Sprintf("%s { addr = %#x, memory_size = %#x } at offset %#x",
			t.Reason, t.Addr, t.MemorySize, t.Offset)
	case TermInvalidPopInfo:
		return fmt.Sprintf("%s %#x at offset %#x", t.Reason, t.PopInfo, t.Offset)
	case TermInvalidVideoMode:
		return fmt.Sprintf("%s %#x at offset %#x", t.Reason, t.VideoModeBits, t.Offset)
	}
	return fmt.Sprintf("%s at offset %#x", t.Reason, t.Offset)
}

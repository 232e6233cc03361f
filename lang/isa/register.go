package isa

import "strings"

// Register is an index into the VM register file.
type Register uint8

// RegisterCount is the size of the register file.
const RegisterCount = 8

// The register file. CZ always reads as zero and discards writes; FL
// is the flag register; EX and FX serve as the stack and frame
// pointers of the compiled-code calling convention.
const (
	CZ Register = iota
	FL
	AX
	BX
	CX
	DX
	EX
	FX
)

var registerNames = [RegisterCount]string{"cz", "fl", "ax", "bx", "cx", "dx", "ex", "fx"}

func (r Register) String() string {
	if r < RegisterCount {
		return registerNames[r]
	}
	return "<invalid>"
}

// LookupRegister returns the register for a (case-insensitive) name.
func LookupRegister(name string) (Register, bool) {
	name = strings.ToLower(name)
	for i, n := range registerNames {
		if n == name {
			return Register(i), true
		}
	}
	return 0, false
}

// PushPopInfo is the decoded form of the info byte that follows PUSH
// and POP opcodes. The effective value is register + immediate (when
// present); the memory-access flag dereferences it as an address.
type PushPopInfo struct {
	Register     Register // 3-bit register index
	MemoryAccess bool     // operate on memory at the effective address
	Immediate    bool     // a 4-byte immediate follows the info byte
}

const (
	ppRegisterMask = 0x07
	ppMemoryBit    = 1 << 3
	ppImmediateBit = 1 << 4
)

// Byte encodes the info into its wire form.
func (i PushPopInfo) Byte() byte {
	b := byte(i.Register) & ppRegisterMask
	if i.MemoryAccess {
		b |= ppMemoryBit
	}
	if i.Immediate {
		b |= ppImmediateBit
	}
	return b
}

// DecodePushPopInfo decodes an info byte. Bits above the defined
// fields are ignored.
func DecodePushPopInfo(b byte) PushPopInfo {
	return PushPopInfo{
		Register:     Register(b & ppRegisterMask),
		MemoryAccess: b&ppMemoryBit != 0,
		Immediate:    b&ppImmediateBit != 0,
	}
}

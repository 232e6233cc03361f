// Package isa defines the CF bytecode instruction set: opcodes, the
// register file, the push/pop info byte and the flag register layout.
// It is shared by the code generator, the assembler, the disassembler
// and the virtual machine.
package isa

import "strings"

// Opcode is a one-byte instruction header. Multi-byte operands that
// follow an opcode are little-endian.
type Opcode uint8

// "x ADD y" is a stack picture describing the operand stack before
// and after execution of the instruction.
const ( //nolint:revive
	// system instructions
	UNREACHABLE Opcode = iota //     - UNREACHABLE -      terminates with the unreachable reason
	SYSCALL                   //   ... SYSCALL<idx> ...   invokes a sandbox function by index
	HALT                      //     - HALT -             terminates normally

	// u32 binary instructions
	ADD //   x y ADD  x+y
	SUB //   x y SUB  x-y
	SHL //   x y SHL  x<<y
	SHR //   x y SHR  x>>y   (unsigned)
	SAR //   x y SAR  x>>y   (signed)
	OR  //   x y OR   x|y
	XOR //   x y XOR  x^y
	AND //   x y AND  x&y

	// signed/unsigned split instructions
	IMUL //  x y IMUL x*y    (signed)
	MUL  //  x y MUL  x*y    (unsigned)
	IDIV //  x y IDIV x/y    (signed)
	DIV  //  x y DIV  x/y    (unsigned)

	// f32 arithmetic instructions
	FADD //  x y FADD x+y
	FSUB //  x y FSUB x-y
	FMUL //  x y FMUL x*y
	FDIV //  x y FDIV x/y

	// conversion instructions
	FTOI //    x FTOI i32(x)
	ITOF //    x ITOF f32(x)

	// f32 unary instructions
	FSIN  //   x FSIN  sin(x)
	FCOS  //   x FCOS  cos(x)
	FNEG  //   x FNEG  -x
	FSQRT //   x FSQRT sqrt(x)

	// push-pop instructions; both take an info byte, optionally
	// followed by a 4-byte immediate
	PUSH // - PUSH<info> x
	POP  // x POP<info>  -

	// comparison instructions, set the fl.isLt/fl.isEq bits
	CMP  //  x y CMP  -      (unsigned)
	ICMP //  x y ICMP -      (signed)
	FCMP //  x y FCMP -      (float)

	// jump instructions, 4-byte code offset operand
	JMP // - JMP<target> -
	JLE // - JLE<target> -   isLt || isEq
	JL  // - JL<target>  -   isLt
	JGE // - JGE<target> -   !isLt
	JG  // - JG<target>  -   !isLt && !isEq
	JE  // - JE<target>  -   isEq
	JNE // - JNE<target> -   !isEq

	// call/ret instructions
	CALL // - CALL<target> - pushes the instruction counter
	RET  // - RET -          pops the instruction counter

	// video instructions
	VSM // m VSM -           pops video mode bits, applies them
	VRS // - VRS -           requests a screen refresh

	TIME // - TIME t         pushes f32 execution time
	MGS  // - MGS n          pushes the memory size

	// input instructions
	IWKD // - IWKD k         waits for a key press, pushes the key
	IGKS // k IGKS s         pushes 1 if the popped key is pressed

	maxOpcode
)

var opcodeNames = [...]string{
	UNREACHABLE: "unreachable",
	SYSCALL:     "syscall",
	HALT:        "halt",
	ADD:         "add",
	SUB:         "sub",
	SHL:         "shl",
	SHR:         "shr",
	SAR:         "sar",
	OR:          "or",
	XOR:         "xor",
	AND:         "and",
	IMUL:        "imul",
	MUL:         "mul",
	IDIV:        "idiv",
	DIV:         "div",
	FADD:        "fadd",
	FSUB:        "fsub",
	FMUL:        "fmul",
	FDIV:        "fdiv",
	FTOI:        "ftoi",
	ITOF:        "itof",
	FSIN:        "fsin",
	FCOS:        "fcos",
	FNEG:        "fneg",
	FSQRT:       "fsqrt",
	PUSH:        "push",
	POP:         "pop",
	CMP:         "cmp",
	ICMP:        "icmp",
	FCMP:        "fcmp",
	JMP:         "jmp",
	JLE:         "jle",
	JL:          "jl",
	JGE:         "jge",
	JG:          "jg",
	JE:          "je",
	JNE:         "jne",
	CALL:        "call",
	RET:         "ret",
	VSM:         "vsm",
	VRS:         "vrs",
	TIME:        "time",
	MGS:         "mgs",
	IWKD:        "iwkd",
	IGKS:        "igks",
}

func (op Opcode) String() string {
	if op < maxOpcode {
		return opcodeNames[op]
	}
	return "<invalid>"
}

// Valid returns true if the opcode is part of the instruction set.
func (op Opcode) Valid() bool { return op < maxOpcode }

// IsJump returns true for JMP and the conditional jumps.
func (op Opcode) IsJump() bool { return op >= JMP && op <= JNE }

var reverseOpcodes = func() map[string]Opcode {
	m := make(map[string]Opcode, maxOpcode)
	for op := UNREACHABLE; op < maxOpcode; op++ {
		m[opcodeNames[op]] = op
	}
	return m
}()

// LookupOpcode returns the opcode for a (case-insensitive) mnemonic.
func LookupOpcode(mnemonic string) (Opcode, bool) {
	op, ok := reverseOpcodes[strings.ToLower(mnemonic)]
	return op, ok
}

package asm

import (
	"encoding/binary"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/catface-lang/catface/lang/isa"
)

// Disassemble writes the assembler textual form of a linked code
// image. Jump and call targets are printed as absolute code offsets,
// which the assembler accepts back, so a disassembled image
// reassembles to the same code.
func Disassemble(code []byte, w io.Writer) error {
	bw := tabwriter.NewWriter(w, 4, 0, 1, ' ', 0)
	off := 0

	for off < len(code) {
		op := isa.Opcode(code[off])
		if !op.Valid() {
			return fmt.Errorf("unknown opcode %#02x at offset %#x", code[off], off)
		}
		insn := off
		off++

		switch {
		case op == isa.PUSH || op == isa.POP:
			if off >= len(code) {
				return fmt.Errorf("truncated %s at offset %#x", op, off-1)
			}
			info := isa.DecodePushPopInfo(code[off])
			off++

			var imm uint32
			if info.Immediate {
				if off+4 > len(code) {
					return fmt.Errorf("truncated %s immediate at offset %#x", op, off)
				}
				imm = binary.LittleEndian.Uint32(code[off:])
				off += 4
			}
			fmt.Fprintf(bw, "\t%s %s\t; %#08x\n", op, formatPushPop(info, imm), insn)

		case op.IsJump() || op == isa.CALL || op == isa.SYSCALL:
			if off+4 > len(code) {
				return fmt.Errorf("truncated %s operand at offset %#x", op, off)
			}
			arg := binary.LittleEndian.Uint32(code[off:])
			off += 4
			fmt.Fprintf(bw, "\t%s %#x\t; %#08x\n", op, arg, insn)

		default:
			fmt.Fprintf(bw, "\t%s\t; %#08x\n", op, insn)
		}
	}
	return bw.Flush()
}

// formatPushPop renders the operand of a push or pop instruction in
// the same syntax the assembler parses.
func formatPushPop(info isa.PushPopInfo, imm uint32) string {
	var inner string
	switch {
	case info.Immediate && info.Register == isa.CZ && !info.MemoryAccess:
		inner = fmt.Sprintf("%#x", imm)
	case info.Immediate:
		inner = fmt.Sprintf("%s + %#x", info.Register, imm)
	default:
		inner = info.Register.String()
	}
	if info.MemoryAccess {
		return "[" + inner + "]"
	}
	return inner
}

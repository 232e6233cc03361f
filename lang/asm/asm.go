// Package asm implements the textual bytecode assembler and its
// disassembler counterpart. The assembler is an alternative front end
// that produces the same relocatable objects as the code generator.
//
// The source is line-oriented; ';' starts a comment. Each line is one
// of:
//
//	<opcode> <operand?>     an instruction
//	<label>:                a relative label at the current offset
//	<name> = <literal>      an absolute label (named constant)
//	                        blank or comment-only
//
// Push/pop operands take the forms reg, [reg], reg+imm, [reg+imm],
// imm and [imm]. Jumps and calls take a label name or an absolute
// code offset.
package asm

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/catface-lang/catface/lang/isa"
	"github.com/catface-lang/catface/lang/object"
)

// Error is an assembly error bound to a 1-based source line.
type Error struct {
	File string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// Assemble translates assembler source into a relocatable object.
func Assemble(src []byte, sourceName string) (*object.Object, error) {
	a := &assembler{
		name: sourceName,
		obj:  &object.Object{SourceName: sourceName},
	}

	s := bufio.NewScanner(bytes.NewReader(src))
	for s.Scan() {
		a.line++
		if err := a.assembleLine(s.Text()); err != nil {
			return nil, err
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	a.obj.Code = a.code
	return a.obj, nil
}

type assembler struct {
	name string
	line int
	code []byte
	obj  *object.Object
}

func (a *assembler) errorf(format string, args ...any) error {
	return &Error{File: a.name, Line: a.line, Msg: fmt.Sprintf(format, args...)}
}

func (a *assembler) assembleLine(line string) error {
	toks, err := tokenizeLine(line)
	if err != nil {
		return a.errorf("%s", err)
	}
	if len(toks) == 0 {
		return nil
	}

	if toks[0].kind != tokIdent {
		return a.errorf("unknown instruction %q (line %q)", toks[0].text, line)
	}

	// label declaration: name ':'
	if len(toks) == 2 && toks[1].kind == tokColon {
		return a.addLabel(toks[0].text, uint32(len(a.code)), true)
	}

	// named constant: name '=' literal
	if len(toks) == 3 && toks[1].kind == tokEqual {
		var value uint32
		switch toks[2].kind {
		case tokInt:
			value = uint32(toks[2].intVal)
		case tokFloat:
			value = math.Float32bits(float32(toks[2].floatVal))
		default:
			return a.errorf("invalid constant value %q", toks[2].text)
		}
		return a.addLabel(toks[0].text, value, false)
	}

	op, ok := isa.LookupOpcode(toks[0].text)
	if !ok {
		return a.errorf("unknown instruction %q (line %q)", toks[0].text, line)
	}
	return a.assembleInsn(op, toks[1:])
}

func (a *assembler) assembleInsn(op isa.Opcode, operands []lineToken) error {
	switch {
	case op == isa.PUSH || op == isa.POP:
		return a.assemblePushPop(op, operands)

	case op.IsJump() || op == isa.CALL:
		if len(operands) != 1 {
			return a.errorf("%s requires one operand", op)
		}
		a.emit(byte(op))
		switch operands[0].kind {
		case tokIdent:
			return a.addLink(operands[0].text)
		case tokInt:
			a.emitU32(uint32(operands[0].intVal))
			return nil
		}
		return a.errorf("invalid %s target %q", op, operands[0].text)

	case op == isa.SYSCALL:
		if len(operands) != 1 || operands[0].kind != tokInt {
			return a.errorf("syscall requires an integer index")
		}
		a.emit(byte(op))
		a.emitU32(uint32(operands[0].intVal))
		return nil

	default:
		if len(operands) != 0 {
			return a.errorf("%s takes no operand", op)
		}
		a.emit(byte(op))
		return nil
	}
}

// assemblePushPop parses the six push/pop operand forms and emits the
// opcode, info byte and optional immediate.
func (a *assembler) assemblePushPop(op isa.Opcode, operands []lineToken) error {
	var info isa.PushPopInfo

	// unwrap [ ... ] for the memory forms
	if len(operands) >= 2 && operands[0].kind == tokLbrack {
		if operands[len(operands)-1].kind != tokRbrack {
			return a.errorf("invalid %s argument: missing ']'", op)
		}
		info.MemoryAccess = true
		operands = operands[1 : len(operands)-1]
	}

	var imm uint32
	var immLabel string

	switch {
	case len(operands) == 1:
		t := operands[0]
		if t.kind == tokIdent {
			if reg, ok := isa.LookupRegister(t.text); ok {
				info.Register = reg
				break
			}
			// identifier immediate resolves through a link
			info.Immediate = true
			immLabel = t.text
			break
		}
		var ok bool
		if imm, ok = immediateValue(t); !ok {
			return a.errorf("invalid %s argument %q", op, t.text)
		}
		info.Immediate = true

	case len(operands) == 3 && operands[1].kind == tokPlus:
		if operands[0].kind != tokIdent {
			return a.errorf("invalid %s argument", op)
		}
		reg, ok := isa.LookupRegister(operands[0].text)
		if !ok {
			return a.errorf("unknown register %q", operands[0].text)
		}
		info.Register = reg
		info.Immediate = true
		if operands[2].kind == tokIdent {
			immLabel = operands[2].text
		} else if imm, ok = immediateValue(operands[2]); !ok {
			return a.errorf("invalid %s argument %q", op, operands[2].text)
		}

	default:
		if op == isa.POP && len(operands) == 0 && !info.MemoryAccess {
			// bare pop drops the top operand
			info.Register = isa.CZ
			break
		}
		return a.errorf("invalid %s argument", op)
	}

	if op == isa.POP && info.Immediate && !info.MemoryAccess {
		return a.errorf("invalid pop argument: cannot pop into an immediate")
	}

	a.emit(byte(op), info.Byte())
	if info.Immediate {
		if immLabel != "" {
			return a.addLink(immLabel)
		}
		a.emitU32(imm)
	}
	return nil
}

func immediateValue(t lineToken) (uint32, bool) {
	switch t.kind {
	case tokInt:
		return uint32(t.intVal), true
	case tokFloat:
		return math.Float32bits(float32(t.floatVal)), true
	}
	return 0, false
}

func (a *assembler) emit(b ...byte) { a.code = append(a.code, b...) }

func (a *assembler) emitU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	a.emit(b[:]...)
}

func (a *assembler) addLabel(name string, value uint32, relative bool) error {
	if err := object.CheckName(name); err != nil {
		return a.errorf("%s", err)
	}
	a.obj.Labels = append(a.obj.Labels, object.Label{
		Line:     uint32(a.line),
		Value:    value,
		Relative: relative,
		Name:     name,
	})
	return nil
}

// addLink records a relocation at the current offset and emits its
// 4-byte placeholder.
func (a *assembler) addLink(name string) error {
	if err := object.CheckName(name); err != nil {
		return a.errorf("%s", err)
	}
	a.obj.Links = append(a.obj.Links, object.Link{
		Line:   uint32(a.line),
		Offset: uint32(len(a.code)),
		Name:   name,
	})
	a.emitU32(0xFFFFFFFF)
	return nil
}

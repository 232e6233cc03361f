package asm

import (
	"bytes"
	"math"
	"testing"

	"github.com/catface-lang/catface/lang/isa"
	"github.com/catface-lang/catface/lang/linker"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleBareInstructions(t *testing.T) {
	o, err := Assemble([]byte(`
	; full no-operand instruction set
	unreachable
	halt
	add
	sub
	shl
	shr
	sar
	or
	xor
	and
	imul
	mul
	idiv
	div
	fadd
	fsub
	fmul
	fdiv
	ftoi
	itof
	fsin
	fcos
	fneg
	fsqrt
	cmp
	icmp
	fcmp
	ret
	vsm
	vrs
	time
	mgs
	iwkd
	igks
`), "t.cfasm")
	require.NoError(t, err)

	want := []byte{
		byte(isa.UNREACHABLE), byte(isa.HALT),
		byte(isa.ADD), byte(isa.SUB), byte(isa.SHL), byte(isa.SHR), byte(isa.SAR),
		byte(isa.OR), byte(isa.XOR), byte(isa.AND),
		byte(isa.IMUL), byte(isa.MUL), byte(isa.IDIV), byte(isa.DIV),
		byte(isa.FADD), byte(isa.FSUB), byte(isa.FMUL), byte(isa.FDIV),
		byte(isa.FTOI), byte(isa.ITOF),
		byte(isa.FSIN), byte(isa.FCOS), byte(isa.FNEG), byte(isa.FSQRT),
		byte(isa.CMP), byte(isa.ICMP), byte(isa.FCMP),
		byte(isa.RET), byte(isa.VSM), byte(isa.VRS),
		byte(isa.TIME), byte(isa.MGS), byte(isa.IWKD), byte(isa.IGKS),
	}
	assert.Equal(t, want, o.Code)
}

func TestAssemblePushPopForms(t *testing.T) {
	o, err := Assemble([]byte(`
	push ax
	push [bx]
	push cx + 16
	push [dx + 0x20]
	push 42
	push [8]
	push 1.5
	pop fx
	pop [ex]
	pop [fx + 4]
	pop
`), "t.cfasm")
	require.NoError(t, err)

	le := func(v uint32) []byte { return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)} }
	var want []byte
	add := func(op isa.Opcode, info isa.PushPopInfo, imm ...byte) {
		want = append(want, byte(op), info.Byte())
		want = append(want, imm...)
	}
	add(isa.PUSH, isa.PushPopInfo{Register: isa.AX})
	add(isa.PUSH, isa.PushPopInfo{Register: isa.BX, MemoryAccess: true})
	add(isa.PUSH, isa.PushPopInfo{Register: isa.CX, Immediate: true}, le(16)...)
	add(isa.PUSH, isa.PushPopInfo{Register: isa.DX, MemoryAccess: true, Immediate: true}, le(0x20)...)
	add(isa.PUSH, isa.PushPopInfo{Register: isa.CZ, Immediate: true}, le(42)...)
	add(isa.PUSH, isa.PushPopInfo{Register: isa.CZ, MemoryAccess: true, Immediate: true}, le(8)...)
	add(isa.PUSH, isa.PushPopInfo{Register: isa.CZ, Immediate: true}, le(math.Float32bits(1.5))...)
	add(isa.POP, isa.PushPopInfo{Register: isa.FX})
	add(isa.POP, isa.PushPopInfo{Register: isa.EX, MemoryAccess: true})
	add(isa.POP, isa.PushPopInfo{Register: isa.FX, MemoryAccess: true, Immediate: true}, le(4)...)
	add(isa.POP, isa.PushPopInfo{Register: isa.CZ})

	assert.Equal(t, want, o.Code)
}

func TestAssembleLabelsAndLinks(t *testing.T) {
	o, err := Assemble([]byte(`
answer = 42
start:
	push answer
	jmp start
	call helper
	syscall 1
`), "t.cfasm")
	require.NoError(t, err)

	require.Len(t, o.Labels, 2)
	assert.Equal(t, "answer", o.Labels[0].Name)
	assert.False(t, o.Labels[0].Relative)
	assert.Equal(t, uint32(42), o.Labels[0].Value)

	assert.Equal(t, "start", o.Labels[1].Name)
	assert.True(t, o.Labels[1].Relative)
	assert.Equal(t, uint32(0), o.Labels[1].Value)
	assert.Equal(t, uint32(3), o.Labels[1].Line)

	require.Len(t, o.Links, 3)
	assert.Equal(t, "answer", o.Links[0].Name)
	assert.Equal(t, uint32(2), o.Links[0].Offset)
	assert.Equal(t, "start", o.Links[1].Name)
	assert.Equal(t, "helper", o.Links[2].Name)
	assert.Equal(t, uint32(6), o.Links[2].Line)

	// placeholders at every link site
	for _, l := range o.Links {
		assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, o.Code[l.Offset:l.Offset+4], l.Name)
	}
}

func TestAssembleFloatConstant(t *testing.T) {
	o, err := Assemble([]byte("pi = 3.5\n"), "t.cfasm")
	require.NoError(t, err)
	require.Len(t, o.Labels, 1)
	assert.Equal(t, math.Float32bits(3.5), o.Labels[0].Value)
}

func TestAssembleErrors(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"frobnicate\n", "unknown instruction"},
		{"push zz + 4\n", `unknown register "zz"`},
		{"push [ax\n", "invalid push argument"},
		{"pop 12\n", "cannot pop into an immediate"},
		{"jmp\n", "jmp requires one operand"},
		{"syscall x\n", "syscall requires an integer index"},
		{"add 1\n", "add takes no operand"},
		{"push @\n", "unexpected character"},
	}
	for _, c := range cases {
		_, err := Assemble([]byte(c.src), "t.cfasm")
		require.Error(t, err, c.src)
		assert.Contains(t, err.Error(), c.want, c.src)
	}
}

func TestAssembleUnknownInstructionDetails(t *testing.T) {
	_, err := Assemble([]byte("halt\nbogus ax\n"), "t.cfasm")
	require.Error(t, err)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 2, ae.Line)
	assert.Contains(t, ae.Msg, `"bogus"`)
	assert.Contains(t, ae.Msg, "bogus ax") // the whole offending line
}

func TestAssembleTooLongLabel(t *testing.T) {
	name := bytes.Repeat([]byte("q"), 64)
	_, err := Assemble(append(name, ':', '\n'), "t.cfasm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long name")
}

func TestDisassembleRoundTrip(t *testing.T) {
	src := `
main:
	push 0
	pop [ex + 8]
	push [ex + 8]
	push 10
	cmp
	jle main
	call main
	syscall 1
	time
	halt
`
	o, err := Assemble([]byte(src), "t.cfasm")
	require.NoError(t, err)
	ex, err := linker.Link(o)
	require.NoError(t, err)

	var listing bytes.Buffer
	require.NoError(t, Disassemble(ex.Code, &listing))

	// reassembling the listing reproduces the exact code image
	o2, err := Assemble(listing.Bytes(), "listing.cfasm")
	require.NoError(t, err)
	ex2, err := linker.Link(o2)
	require.NoError(t, err)

	if diff := cmp.Diff(ex.Code, ex2.Code); diff != "" {
		t.Errorf("round-trip code mismatch (-want +got):\n%s", diff)
	}
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	err := Disassemble([]byte{0xEE}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown opcode")
}

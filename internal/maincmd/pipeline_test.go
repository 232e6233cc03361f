package maincmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/catface-lang/catface/lang/asm"
	"github.com/catface-lang/catface/lang/linker"
	"github.com/catface-lang/catface/lang/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execSource compiles, links and runs a CF program against a console
// sandbox, returning the termination info and everything written to
// the output stream.
func execSource(t *testing.T, src, input string) (*vm.TermInfo, string) {
	t.Helper()

	o, err := CompileSource(context.Background(), "test.cf", []byte(src))
	require.NoError(t, err)
	ex, err := linker.Link(o)
	require.NoError(t, err)

	var out bytes.Buffer
	sb := &vm.Console{In: strings.NewReader(input), Out: &out}
	info := vm.Exec(ex, sb, vm.Options{})
	return info, out.String()
}

func TestArithmeticProgramHaltsCleanly(t *testing.T) {
	info, out := execSource(t, "fn main() { let x: i32 = 2 as i32 + 3 as i32; }", "")
	assert.Equal(t, vm.TermHalt, info.Reason)
	assert.Empty(t, out)
}

func TestFloatOutputProgram(t *testing.T) {
	// writeFloat is resolved against an absolute syscall shim provided
	// in assembler form and linked alongside the compiled object
	src := `
fn writeFloat(x: f32);
fn main() {
	writeFloat(1.5 as f32 + 2.5 as f32);
}`
	o, err := CompileSource(context.Background(), "test.cf", []byte(src))
	require.NoError(t, err)

	shim, err := asm.Assemble([]byte(`
writeFloat:
	syscall 1
	push cz
	pop ax
	ret
`), "runtime.cfasm")
	require.NoError(t, err)

	ex, err := linker.Link(o, shim)
	require.NoError(t, err)

	var out bytes.Buffer
	sb := &vm.Console{In: strings.NewReader(""), Out: &out}
	info := vm.Exec(ex, sb, vm.Options{})
	require.Equal(t, vm.TermHalt, info.Reason)
	assert.Equal(t, "4\n", out.String())
}

func TestLoopProgramIteratesTenTimes(t *testing.T) {
	src := `
fn count(x: f32);
fn main() {
	let i: i32 = 0 as i32;
	let total: f32 = 0.0 as f32;
	while i < 10 as i32 {
		i += 1 as i32;
		count(1.0 as f32);
	}
}`
	o, err := CompileSource(context.Background(), "test.cf", []byte(src))
	require.NoError(t, err)

	shim, err := asm.Assemble([]byte(`
count:
	syscall 1
	push cz
	pop ax
	ret
`), "runtime.cfasm")
	require.NoError(t, err)

	ex, err := linker.Link(o, shim)
	require.NoError(t, err)

	var out bytes.Buffer
	sb := &vm.Console{In: strings.NewReader(""), Out: &out}
	info := vm.Exec(ex, sb, vm.Options{})
	require.Equal(t, vm.TermHalt, info.Reason)
	assert.Equal(t, 10, strings.Count(out.String(), "1\n"))
}

func TestBadCastFailsTIRBuilding(t *testing.T) {
	_, err := CompileSource(context.Background(), "test.cf", []byte("fn main() { let x: void = 1 as i32; }"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected initializer type (expected void, actual i32)")
}

func TestUnknownLabelAtLink(t *testing.T) {
	o, err := asm.Assemble([]byte(`
main:
	call nonexistent
	halt
`), "prog.cfasm")
	require.NoError(t, err)

	_, err = linker.Link(o)
	require.Error(t, err)

	var ue *linker.UnknownLabelError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "nonexistent", ue.Name)
	assert.Equal(t, uint32(3), ue.Line)
	assert.Contains(t, err.Error(), `unknown label "nonexistent"`)
}

func TestMissingMainFailsLink(t *testing.T) {
	_, err := execCompileAndLink(t, "fn helper() { }")
	require.Error(t, err)
	var ue *linker.UnknownLabelError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "main", ue.Name)
}

func execCompileAndLink(t *testing.T, src string) (interface{}, error) {
	t.Helper()
	o, err := CompileSource(context.Background(), "test.cf", []byte(src))
	require.NoError(t, err)
	return linker.Link(o)
}

func TestNestedCallsThroughPipeline(t *testing.T) {
	src := `
fn double(x: i32) i32 {
	x = x + x;
	emit(x as f32);
}
fn emit(x: f32);
fn main() {
	double(21 as i32);
}`
	o, err := CompileSource(context.Background(), "test.cf", []byte(src))
	require.NoError(t, err)

	shim, err := asm.Assemble([]byte(`
emit:
	syscall 1
	push cz
	pop ax
	ret
`), "runtime.cfasm")
	require.NoError(t, err)

	ex, err := linker.Link(o, shim)
	require.NoError(t, err)

	var out bytes.Buffer
	sb := &vm.Console{In: strings.NewReader(""), Out: &out}
	info := vm.Exec(ex, sb, vm.Options{})
	require.Equal(t, vm.TermHalt, info.Reason)
	assert.Equal(t, "42\n", out.String())
}

func TestDisassembleReassembleBehaviour(t *testing.T) {
	src := `
fn main() {
	let i: u32 = 0 as u32;
	while i < 3 as u32 { i += 1 as u32; }
}`
	o, err := CompileSource(context.Background(), "test.cf", []byte(src))
	require.NoError(t, err)
	ex, err := linker.Link(o)
	require.NoError(t, err)

	var listing bytes.Buffer
	require.NoError(t, asm.Disassemble(ex.Code, &listing))
	o2, err := asm.Assemble(listing.Bytes(), "listing.cfasm")
	require.NoError(t, err)
	ex2, err := linker.Link(o2)
	require.NoError(t, err)

	sb1 := &vm.Console{In: strings.NewReader(""), Out: &bytes.Buffer{}}
	sb2 := &vm.Console{In: strings.NewReader(""), Out: &bytes.Buffer{}}
	info1 := vm.Exec(ex, sb1, vm.Options{})
	info2 := vm.Exec(ex2, sb2, vm.Options{})
	assert.Equal(t, info1.Reason, info2.Reason)
	assert.Equal(t, ex.Code, ex2.Code)
}

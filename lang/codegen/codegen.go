// Package codegen lowers TIR into stack-machine bytecode, producing
// a relocatable object. Every expression emits code that leaves
// exactly one 32-bit value on the operand stack; statements drop the
// values they do not consume.
package codegen

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/catface-lang/catface/lang/ast"
	"github.com/catface-lang/catface/lang/isa"
	"github.com/catface-lang/catface/lang/object"
	"github.com/catface-lang/catface/lang/tir"
	"github.com/catface-lang/catface/lang/token"
)

// Generate lowers the unit into a relocatable object. The emitted
// image begins with a prelude that initializes the stack and frame
// pointers to the memory size, calls main and halts; the link to main
// is an ordinary relocation resolved by the linker.
func Generate(unit *tir.Unit) (*object.Object, error) {
	g := &generator{unit: unit}

	g.genPrelude()
	for i := range unit.Funcs {
		g.genFunction(&unit.Funcs[i])
	}
	if g.err != nil {
		return nil, g.err
	}

	return &object.Object{
		SourceName: unit.SourceName,
		Code:       g.code,
		Labels:     g.labels,
		Links:      g.links,
	}, nil
}

// generator owns the emission state of a single object. The first
// emission error sticks and later emissions are no-ops.
type generator struct {
	unit   *tir.Unit
	code   []byte
	labels []object.Label
	links  []object.Link
	err    error

	// current function context
	fnName      string
	condCounter uint32
	loopCounter uint32
	cmpCounter  uint32
}

// placeholder bytes written at link sites, rewritten by the linker.
var placeholder = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}

func (g *generator) lineOf(sp token.Span) uint32 {
	if g.unit.File == nil || sp.Begin == token.NoPos {
		return 0
	}
	return uint32(g.unit.File.Line(sp.Begin))
}

func (g *generator) emit(b ...byte) {
	if g.err != nil {
		return
	}
	g.code = append(g.code, b...)
}

func (g *generator) emitOpcode(op isa.Opcode) { g.emit(byte(op)) }

// emitPushPop writes a push or pop instruction with its info byte and
// the trailing immediate when the info byte calls for one.
func (g *generator) emitPushPop(op isa.Opcode, info isa.PushPopInfo, imm uint32) {
	g.emit(byte(op), info.Byte())
	if info.Immediate {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], imm)
		g.emit(b[:]...)
	}
}

func (g *generator) addLabel(name string, line uint32) {
	if g.err != nil {
		return
	}
	if err := object.CheckName(name); err != nil {
		g.err = err
		return
	}
	g.labels = append(g.labels, object.Label{
		Line:     line,
		Value:    uint32(len(g.code)),
		Relative: true,
		Name:     name,
	})
}

// addLink records a relocation at the current offset and emits the
// 4-byte placeholder it refers to.
func (g *generator) addLink(name string, line uint32) {
	if g.err != nil {
		return
	}
	if err := object.CheckName(name); err != nil {
		g.err = err
		return
	}
	g.links = append(g.links, object.Link{
		Line:   line,
		Offset: uint32(len(g.code)),
		Name:   name,
	})
	g.emit(placeholder[:]...)
}

// genPrelude emits:
//
//	mgs
//	pop ex
//	mgs
//	pop fx
//	call main
//	halt
func (g *generator) genPrelude() {
	g.emitOpcode(isa.MGS)
	g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.EX}, 0)
	g.emitOpcode(isa.MGS)
	g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.FX}, 0)
	g.emitOpcode(isa.CALL)
	g.addLink("main", 0)
	g.emitOpcode(isa.HALT)
}

func (g *generator) genFunction(fn *tir.Function) {
	if fn.Body == nil {
		return
	}

	g.fnName = fn.Name
	g.condCounter = 0
	g.loopCounter = 0
	g.cmpCounter = 0

	line := g.lineOf(fn.Span())
	g.addLabel(fn.Name, line)

	// pop arguments from the operand stack into the locals area
	for i := 0; i < g.unit.NumParams(fn); i++ {
		g.emitPushPop(isa.POP, isa.PushPopInfo{
			Register:     isa.EX,
			MemoryAccess: true,
			Immediate:    true,
		}, uint32(-int32(i+1)*4))
	}

	// save caller's frame pointer and set up the new frame
	g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.FX}, 0)
	g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.EX}, 0)
	g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.FX}, 0)

	// advance the stack pointer past the arguments
	g.emitPushPop(isa.PUSH, isa.PushPopInfo{
		Register:  isa.EX,
		Immediate: true,
	}, uint32(int32(g.unit.NumParams(fn))*4))
	g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.EX}, 0)

	g.genBlock(fn.Body)
	g.genEpilogue()
}

// genEpilogue restores the caller's stack and frame pointers and
// returns.
func (g *generator) genEpilogue() {
	g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.FX}, 0)
	g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.EX}, 0)
	g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.FX}, 0)
	g.emitOpcode(isa.RET)
}

// genBlock advances the stack pointer over the block's locals,
// lowers its statements, then retreats the stack pointer.
func (g *generator) genBlock(b *tir.Block) {
	n := uint32(len(b.Locals)) * 4

	g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.EX, Immediate: true}, n)
	g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.EX}, 0)

	for _, stmt := range b.Stmts {
		g.genStmt(stmt)
	}

	g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.EX, Immediate: true}, uint32(-int32(n)))
	g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.EX}, 0)
}

func (g *generator) genStmt(stmt tir.Stmt) {
	switch stmt := stmt.(type) {
	case *tir.ExprStmt:
		g.genExpr(stmt.X)
		// drop the statement value
		g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.CZ}, 0)

	case *tir.BlockStmt:
		g.genBlock(stmt.Block)

	case *tir.ReturnStmt:
		g.genExpr(stmt.X)
		g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.AX}, 0)
		g.genEpilogue()

	case *tir.IfStmt:
		g.genIf(stmt)

	case *tir.LoopStmt:
		g.genLoop(stmt)
	}
}

// genIf lowers a conditional:
//
//	[condition]
//	push cz
//	cmp
//	je __fn__else_n
//	[then block]
//	jmp __fn__if_end_n
//	__fn__else_n:
//	[else block]
//	__fn__if_end_n:
func (g *generator) genIf(stmt *tir.IfStmt) {
	n := g.condCounter
	g.condCounter++
	elseLabel := fmt.Sprintf("__%s__else_%d", g.fnName, n)
	endLabel := fmt.Sprintf("__%s__if_end_%d", g.fnName, n)
	line := g.lineOf(stmt.Span())

	g.genExpr(stmt.Cond)
	g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ}, 0)
	g.emitOpcode(isa.CMP)
	g.emitOpcode(isa.JE)
	g.addLink(elseLabel, line)

	g.genBlock(stmt.Then)
	g.emitOpcode(isa.JMP)
	g.addLink(endLabel, line)

	g.addLabel(elseLabel, line)
	g.genBlock(stmt.Else)
	g.addLabel(endLabel, line)
}

// genLoop lowers a while loop:
//
//	__fn__loop_n:
//	[condition]          (when present)
//	push cz
//	cmp
//	je __fn__loop_end_n
//	[body]
//	jmp __fn__loop_n
//	__fn__loop_end_n:
func (g *generator) genLoop(stmt *tir.LoopStmt) {
	n := g.loopCounter
	g.loopCounter++
	loopLabel := fmt.Sprintf("__%s__loop_%d", g.fnName, n)
	endLabel := fmt.Sprintf("__%s__loop_end_%d", g.fnName, n)
	line := g.lineOf(stmt.Span())

	g.addLabel(loopLabel, line)

	if stmt.Cond != nil {
		g.genExpr(stmt.Cond)
		g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ}, 0)
		g.emitOpcode(isa.CMP)
		g.emitOpcode(isa.JE)
		g.addLink(endLabel, line)
	}

	g.genBlock(stmt.Body)
	g.emitOpcode(isa.JMP)
	g.addLink(loopLabel, line)

	g.addLabel(endLabel, line)
}

func (g *generator) genExpr(e tir.Expr) {
	switch e := e.(type) {
	case *tir.ConstI32:
		if e.V == 0 {
			g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ}, 0)
			return
		}
		g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ, Immediate: true}, uint32(e.V))

	case *tir.ConstU32:
		g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ, Immediate: true}, e.V)

	case *tir.ConstF32:
		g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ, Immediate: true}, math.Float32bits(e.V))

	case *tir.Void:
		// void still occupies one stack slot
		g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ}, 0)

	case *tir.LocalRef:
		g.emitPushPop(isa.PUSH, isa.PushPopInfo{
			Register:     isa.FX,
			MemoryAccess: true,
			Immediate:    true,
		}, localSlot(e.Local))

	case *tir.Assign:
		g.genExpr(e.Value)
		g.emitPushPop(isa.POP, isa.PushPopInfo{
			Register:     isa.FX,
			MemoryAccess: true,
			Immediate:    true,
		}, localSlot(e.Dest))
		// assignments have type void, push the synthetic value
		g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ}, 0)

	case *tir.Binary:
		g.genBinary(e)

	case *tir.Call:
		g.genCall(e)

	case *tir.Cast:
		g.genCast(e)
	}
}

// localSlot returns the frame-pointer-relative offset of a local
// variable slot.
func localSlot(id tir.LocalID) uint32 {
	return uint32(-int32(id+1) * 4)
}

var arithOpcodes = map[tir.BinOp]map[ast.Type]isa.Opcode{
	tir.OpAdd: {ast.TypeI32: isa.ADD, ast.TypeU32: isa.ADD, ast.TypeF32: isa.FADD},
	tir.OpSub: {ast.TypeI32: isa.SUB, ast.TypeU32: isa.SUB, ast.TypeF32: isa.FSUB},
	tir.OpMul: {ast.TypeI32: isa.IMUL, ast.TypeU32: isa.MUL, ast.TypeF32: isa.FMUL},
	tir.OpDiv: {ast.TypeI32: isa.IDIV, ast.TypeU32: isa.DIV, ast.TypeF32: isa.FDIV},
}

var compareJumps = map[tir.BinOp]isa.Opcode{
	tir.OpLt: isa.JL,
	tir.OpLe: isa.JLE,
	tir.OpGt: isa.JG,
	tir.OpGe: isa.JGE,
	tir.OpEq: isa.JE,
	tir.OpNe: isa.JNE,
}

func (g *generator) genBinary(e *tir.Binary) {
	g.genExpr(e.X)
	g.genExpr(e.Y)

	if !e.Op.IsComparison() {
		g.emitOpcode(arithOpcodes[e.Op][e.Result])
		return
	}

	// comparison: set the flags with the type-matched compare, then
	// materialize a u32 0/1 through a conditional-jump diamond
	switch e.X.Type() {
	case ast.TypeI32:
		g.emitOpcode(isa.ICMP)
	case ast.TypeU32:
		g.emitOpcode(isa.CMP)
	case ast.TypeF32:
		g.emitOpcode(isa.FCMP)
	}

	n := g.cmpCounter
	g.cmpCounter++
	trueLabel := fmt.Sprintf("__%s__cmp_%d", g.fnName, n)
	endLabel := fmt.Sprintf("__%s__cmp_end_%d", g.fnName, n)
	line := g.lineOf(e.Span())

	g.emitOpcode(compareJumps[e.Op])
	g.addLink(trueLabel, line)
	g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ}, 0)
	g.emitOpcode(isa.JMP)
	g.addLink(endLabel, line)
	g.addLabel(trueLabel, line)
	g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ, Immediate: true}, 1)
	g.addLabel(endLabel, line)
}

func (g *generator) genCall(e *tir.Call) {
	// arguments are emitted in reverse order; the callee pops them
	// back into its frame slots in declaration order
	for i := len(e.Args) - 1; i >= 0; i-- {
		g.genExpr(e.Args[i])
	}

	fn := g.unit.Func(e.Func)
	g.emitOpcode(isa.CALL)
	g.addLink(fn.Name, g.lineOf(e.Span()))

	// the result arrives in ax
	g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.AX}, 0)
}

func (g *generator) genCast(e *tir.Cast) {
	g.genExpr(e.X)

	from := e.X.Type()
	switch {
	case e.To == ast.TypeVoid:
		// drop the value, keep the one-slot contract
		g.emitPushPop(isa.POP, isa.PushPopInfo{Register: isa.CZ}, 0)
		g.emitPushPop(isa.PUSH, isa.PushPopInfo{Register: isa.CZ}, 0)

	case e.To == from, e.To != ast.TypeF32 && from != ast.TypeF32:
		// identity and integer-width casts are free

	case e.To == ast.TypeF32:
		g.emitOpcode(isa.ITOF)

	default:
		g.emitOpcode(isa.FTOI)
	}
}

package tir

import (
	"errors"
	"fmt"

	"github.com/catface-lang/catface/lang/ast"
	"github.com/catface-lang/catface/lang/scanner"
	"github.com/catface-lang/catface/lang/token"
	"github.com/dolthub/swiss"
)

// Build produces the TIR of a parsed file. It runs two passes: a
// function discovery pass over the top-level declarations, then a
// body-building pass that resolves names and checks types. The error,
// if non-nil, is a scanner.ErrorList.
func Build(file *token.File, root *ast.File) (*Unit, error) {
	b := &builder{
		file:   file,
		byName: swiss.NewMap[string, FuncID](16),
		unit: &Unit{
			File:       file,
			SourceName: root.Name,
		},
	}

	err := b.catch(func() {
		b.discoverFunctions(root)
		b.buildFunctions(root)
	})
	if err != nil {
		return nil, err
	}
	return b.unit, nil
}

// builder owns the state of a single TIR build.
type builder struct {
	file   *token.File
	errors scanner.ErrorList
	byName *swiss.Map[string, FuncID]
	unit   *Unit
}

var errAbort = errors.New("tir build aborted")

// catch runs fn, converting the abort sentinel into the accumulated
// error list. The first error aborts the build.
func (b *builder) catch(fn func()) (err error) {
	defer func() {
		if e := recover(); e != nil {
			if e != errAbort { //nolint:errorlint
				panic(e)
			}
			b.errors.Sort()
			err = b.errors.Err()
		}
	}()
	fn()
	b.errors.Sort()
	return b.errors.Err()
}

func (b *builder) failf(pos token.Pos, format string, args ...any) {
	b.errors.Add(b.file.Position(pos), fmt.Sprintf(format, args...))
	panic(errAbort)
}

// protoID interns a prototype, returning the id of a structurally
// equal existing one when possible.
func (b *builder) protoID(p Prototype) ProtoID {
	for i, ex := range b.unit.Protos {
		if ex.Equal(p) {
			return ProtoID(i)
		}
	}
	b.unit.Protos = append(b.unit.Protos, p)
	return ProtoID(len(b.unit.Protos) - 1)
}

// discoverFunctions is pass 1: register every top-level function with
// its prototype, and reject global variables.
func (b *builder) discoverFunctions(root *ast.File) {
	for _, decl := range root.Decls {
		switch decl := decl.(type) {
		case *ast.VarDecl:
			b.failf(decl.Span().Begin, "global variables not allowed")

		case *ast.FuncDecl:
			proto := Prototype{Result: decl.ResultType()}
			for _, p := range decl.Params {
				proto.Params = append(proto.Params, p.Type.Kind)
			}

			if id, ok := b.byName.Get(decl.Name.Name); ok {
				prev := &b.unit.Funcs[id]
				if !b.unit.Protos[prev.Proto].Equal(proto) {
					b.failf(decl.Span().Begin, "unmatched function prototypes for %q", decl.Name.Name)
				}
				if decl.Body != nil {
					if prev.decl.Body != nil {
						b.failf(decl.Span().Begin, "function %q already has a body", decl.Name.Name)
					}
					prev.decl = decl
				}
				continue
			}

			if decl.Name.Name == "main" && (len(proto.Params) != 0 || proto.Result != ast.TypeVoid) {
				b.failf(decl.Span().Begin, "function main must take no parameters and return void")
			}

			id := FuncID(len(b.unit.Funcs))
			b.unit.Funcs = append(b.unit.Funcs, Function{
				Proto: b.protoID(proto),
				Name:  decl.Name.Name,
				decl:  decl,
			})
			b.byName.Put(decl.Name.Name, id)
		}
	}
}

// buildFunctions is pass 2: build the body of every implemented
// function.
func (b *builder) buildFunctions(root *ast.File) {
	for i := range b.unit.Funcs {
		fn := &b.unit.Funcs[i]
		if fn.decl.Body == nil {
			continue
		}

		fb := &funcBuilder{b: b, fn: fn}
		fb.pushScope()
		for pi, p := range fn.decl.Params {
			fb.addLocal(p.Name.Name, b.unit.Protos[fn.Proto].Params[pi], true)
		}
		fn.Body = fb.buildBlock(fn.decl.Body)
		fb.popScope()
	}
}

// localInfo tracks a live local variable during body building.
type localInfo struct {
	id   LocalID
	name string
	typ  ast.Type
	init bool
}

// funcBuilder builds the body of a single function, maintaining a
// stack of lexical scopes.
type funcBuilder struct {
	b      *builder
	fn     *Function
	scopes [][]localInfo
	live   int // count of live locals, next local id
}

func (fb *funcBuilder) pushScope() { fb.scopes = append(fb.scopes, nil) }

func (fb *funcBuilder) popScope() {
	last := len(fb.scopes) - 1
	fb.live -= len(fb.scopes[last])
	fb.scopes = fb.scopes[:last]
}

// addLocal declares a local in the current scope and returns its id.
// Ids number the currently live locals, which matches the frame slot
// discipline of the code generator.
func (fb *funcBuilder) addLocal(name string, typ ast.Type, init bool) LocalID {
	id := LocalID(fb.live)
	last := len(fb.scopes) - 1
	fb.scopes[last] = append(fb.scopes[last], localInfo{id: id, name: name, typ: typ, init: init})
	fb.live++
	return id
}

// findLocal resolves a name to the innermost live local, or nil.
func (fb *funcBuilder) findLocal(name string) *localInfo {
	for si := len(fb.scopes) - 1; si >= 0; si-- {
		scope := fb.scopes[si]
		for li := len(scope) - 1; li >= 0; li-- {
			if scope[li].name == name {
				return &scope[li]
			}
		}
	}
	return nil
}

func (fb *funcBuilder) buildBlock(block *ast.Block) *Block {
	fb.pushScope()
	defer fb.popScope()

	res := &Block{}
	for _, stmt := range block.Stmts {
		switch stmt := stmt.(type) {
		case *ast.ExprStmt:
			res.Stmts = append(res.Stmts, &ExprStmt{X: fb.buildExpr(stmt.X)})

		case *ast.DeclStmt:
			fb.buildDeclStmt(res, stmt)

		case *ast.BlockStmt:
			res.Stmts = append(res.Stmts, &BlockStmt{
				Block: fb.buildBlock(stmt.Block),
				Sp:    stmt.Span(),
			})

		case *ast.IfStmt:
			cond := fb.buildExpr(stmt.Cond)
			if cond.Type() != ast.TypeU32 {
				fb.b.failf(stmt.Cond.Span().Begin, "if condition type must be u32 (actual %s)", cond.Type())
			}
			ifs := &IfStmt{Cond: cond, Then: fb.buildBlock(stmt.Then), Sp: stmt.Span()}
			if stmt.Else != nil {
				ifs.Else = fb.buildBlock(stmt.Else)
			} else {
				ifs.Else = &Block{}
			}
			res.Stmts = append(res.Stmts, ifs)

		case *ast.WhileStmt:
			cond := fb.buildExpr(stmt.Cond)
			if cond.Type() != ast.TypeU32 {
				fb.b.failf(stmt.Cond.Span().Begin, "while condition type must be u32 (actual %s)", cond.Type())
			}
			res.Stmts = append(res.Stmts, &LoopStmt{
				Cond: cond,
				Body: fb.buildBlock(stmt.Body),
				Sp:   stmt.Span(),
			})
		}
	}
	return res
}

func (fb *funcBuilder) buildDeclStmt(res *Block, stmt *ast.DeclStmt) {
	switch decl := stmt.Decl.(type) {
	case *ast.FuncDecl:
		fb.b.failf(decl.Span().Begin, "local functions not allowed")

	case *ast.VarDecl:
		typ := decl.Type.Kind

		var value Expr
		if decl.Init != nil {
			// the initializer cannot reference the declared variable
			value = fb.buildExpr(decl.Init)
			if value.Type() != typ {
				fb.b.failf(decl.Init.Span().Begin,
					"unexpected initializer type (expected %s, actual %s)", typ, value.Type())
			}
		}

		id := fb.addLocal(decl.Name.Name, typ, decl.Init != nil)
		res.Locals = append(res.Locals, Local{ID: id, Name: decl.Name.Name, Type: typ})

		if value != nil {
			res.Stmts = append(res.Stmts, &ExprStmt{X: &Assign{
				Dest:  id,
				Value: value,
				Sp:    decl.Span(),
			}})
		}
	}
}

func (fb *funcBuilder) buildExpr(e ast.Expr) Expr {
	switch e := e.(type) {
	case *ast.IntLit, *ast.FloatLit:
		fb.b.failf(e.Span().Begin, "cannot deduce literal type")

	case *ast.ParenExpr:
		return fb.buildExpr(e.X)

	case *ast.Ident:
		local := fb.findLocal(e.Name)
		if local == nil {
			fb.b.failf(e.Span().Begin, "unknown variable %q referenced", e.Name)
		}
		if !local.init {
			fb.b.failf(e.Span().Begin, "variable %q used before initialization", e.Name)
		}
		return &LocalRef{Local: local.id, Typ: local.typ, Sp: e.Span()}

	case *ast.CallExpr:
		return fb.buildCall(e)

	case *ast.ConvExpr:
		return fb.buildConv(e)

	case *ast.AssignExpr:
		return fb.buildAssign(e)

	case *ast.BinaryExpr:
		x := fb.buildExpr(e.X)
		y := fb.buildExpr(e.Y)
		if x.Type() != y.Type() {
			fb.b.failf(e.Span().Begin, "operand types unmatched (%s and %s)", x.Type(), y.Type())
		}
		if x.Type() == ast.TypeVoid {
			fb.b.failf(e.Span().Begin, "operator %q is not defined for type %s", e.Op.String(), x.Type())
		}

		op := binOps[e.Op]
		result := x.Type()
		if op.IsComparison() {
			result = ast.TypeU32
		}
		return &Binary{Op: op, X: x, Y: y, Result: result, Sp: e.Span()}
	}
	return nil // unreachable, all cases fail or return
}

func (fb *funcBuilder) buildCall(e *ast.CallExpr) Expr {
	callee, ok := ast.Unwrap(e.Fun).(*ast.Ident)
	if !ok {
		fb.b.failf(e.Fun.Span().Begin, "expression is not callable")
	}

	id, ok := fb.b.byName.Get(callee.Name)
	if !ok {
		fb.b.failf(callee.Span().Begin, "function %q does not exist", callee.Name)
	}
	fn := &fb.b.unit.Funcs[id]
	proto := fb.b.unit.Protos[fn.Proto]

	if len(e.Args) != len(proto.Params) {
		fb.b.failf(e.Span().Begin, "unexpected argument number (expected %d, got %d)",
			len(proto.Params), len(e.Args))
	}

	call := &Call{Func: id, Result: proto.Result, Sp: e.Span()}
	for i, arg := range e.Args {
		built := fb.buildExpr(arg)
		if built.Type() != proto.Params[i] {
			fb.b.failf(arg.Span().Begin,
				"unexpected argument type (parameter %d, expected %s, actual %s)",
				i, proto.Params[i], built.Type())
		}
		call.Args = append(call.Args, built)
	}
	return call
}

// buildConv handles the 'as' postfix. Literal conversions are
// evaluated at build time and produce typed constants; other
// conversions wrap the built inner expression.
func (fb *funcBuilder) buildConv(e *ast.ConvExpr) Expr {
	to := e.Type.Kind
	sp := e.Span()

	switch lit := ast.Unwrap(e.X).(type) {
	case *ast.IntLit:
		switch to {
		case ast.TypeI32:
			return &ConstI32{V: int32(lit.Value), Sp: sp}
		case ast.TypeU32:
			return &ConstU32{V: uint32(lit.Value), Sp: sp}
		case ast.TypeF32:
			return &ConstF32{V: float32(lit.Value), Sp: sp}
		case ast.TypeVoid:
			return &Void{Sp: sp}
		}

	case *ast.FloatLit:
		switch to {
		case ast.TypeI32:
			return &ConstI32{V: int32(lit.Value), Sp: sp}
		case ast.TypeU32:
			return &ConstU32{V: uint32(lit.Value), Sp: sp}
		case ast.TypeF32:
			return &ConstF32{V: float32(lit.Value), Sp: sp}
		case ast.TypeVoid:
			return &Void{Sp: sp}
		}
	}

	x := fb.buildExpr(e.X)
	if x.Type() == ast.TypeVoid && to != ast.TypeVoid {
		fb.b.failf(e.Span().Begin, "impossible cast (from %s to %s)", x.Type(), to)
	}
	return &Cast{X: x, To: to, Sp: sp}
}

// buildAssign handles plain and compound assignments. Compound forms
// desugar to dest = dest op value, which requires the destination to
// be initialized; a plain '=' may target an uninitialized local and
// marks it initialized.
func (fb *funcBuilder) buildAssign(e *ast.AssignExpr) Expr {
	local := fb.findLocal(e.Dest.Name)
	if local == nil {
		fb.b.failf(e.Dest.Span().Begin, "unknown variable %q referenced", e.Dest.Name)
	}

	var value Expr
	if op, ok := compoundOps[e.Op]; ok {
		if !local.init {
			fb.b.failf(e.Dest.Span().Begin, "variable %q used before initialization", e.Dest.Name)
		}
		value = fb.buildExpr(&ast.BinaryExpr{
			X:     e.Dest,
			Op:    op,
			OpPos: e.OpPos,
			Y:     e.Value,
		})
	} else {
		value = fb.buildExpr(e.Value)
	}

	if value.Type() != local.typ {
		fb.b.failf(e.Span().Begin,
			"unexpected assignment value type (expected %s, actual %s)", local.typ, value.Type())
	}

	local.init = true
	return &Assign{Dest: local.id, Value: value, Sp: e.Span()}
}

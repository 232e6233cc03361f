package parser

import (
	"context"
	"testing"

	"github.com/catface-lang/catface/lang/ast"
	"github.com/catface-lang/catface/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*token.File, *ast.File, error) {
	t.Helper()
	return ParseFile(context.Background(), "test.cf", []byte(src))
}

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	_, root, err := parse(t, src)
	require.NoError(t, err)
	return root
}

func TestParseFuncDecl(t *testing.T) {
	root := mustParse(t, "fn add(x: i32, y: i32) i32 { }")
	require.Len(t, root.Decls, 1)

	fn, ok := root.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "x", fn.Params[0].Name.Name)
	assert.Equal(t, ast.TypeI32, fn.Params[0].Type.Kind)
	assert.Equal(t, "y", fn.Params[1].Name.Name)
	require.NotNil(t, fn.Result)
	assert.Equal(t, ast.TypeI32, fn.Result.Kind)
	require.NotNil(t, fn.Body)
	assert.Empty(t, fn.Body.Stmts)
}

func TestParseFuncDeclNoBody(t *testing.T) {
	root := mustParse(t, "fn sqrt(x: f32) f32;")
	fn := root.Decls[0].(*ast.FuncDecl)
	assert.Nil(t, fn.Body)
	assert.Equal(t, ast.TypeF32, fn.Result.Kind)
}

func TestParseFuncDeclVoidResult(t *testing.T) {
	root := mustParse(t, "fn main() { }")
	fn := root.Decls[0].(*ast.FuncDecl)
	assert.Nil(t, fn.Result)
	assert.Equal(t, ast.TypeVoid, fn.ResultType())
}

func TestParseVarDecl(t *testing.T) {
	root := mustParse(t, "fn main() { let x: i32 = 2 as i32; let y: f32; }")
	fn := root.Decls[0].(*ast.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)

	ds := fn.Body.Stmts[0].(*ast.DeclStmt)
	vd := ds.Decl.(*ast.VarDecl)
	assert.Equal(t, "x", vd.Name.Name)
	assert.Equal(t, ast.TypeI32, vd.Type.Kind)
	require.NotNil(t, vd.Init)
	conv, ok := vd.Init.(*ast.ConvExpr)
	require.True(t, ok)
	assert.Equal(t, ast.TypeI32, conv.Type.Kind)

	vd2 := fn.Body.Stmts[1].(*ast.DeclStmt).Decl.(*ast.VarDecl)
	assert.Nil(t, vd2.Init)
}

func TestParsePrecedence(t *testing.T) {
	root := mustParse(t, "fn f() { x = a + b * c < d; }")
	fn := root.Decls[0].(*ast.FuncDecl)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)

	// x = ((a + (b*c)) < d)
	as, ok := es.X.(*ast.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, token.EQ, as.Op)

	cmp, ok := as.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.LT, cmp.Op)

	sum, ok := cmp.X.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, sum.Op)

	prod, ok := sum.Y.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.STAR, prod.Op)
}

func TestParseLeftAssociativity(t *testing.T) {
	root := mustParse(t, "fn f() { a - b - c; }")
	fn := root.Decls[0].(*ast.FuncDecl)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)

	outer := es.X.(*ast.BinaryExpr)
	inner, ok := outer.X.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "a", inner.X.(*ast.Ident).Name)
	assert.Equal(t, "c", outer.Y.(*ast.Ident).Name)
}

func TestParseCallAndConv(t *testing.T) {
	root := mustParse(t, "fn f() { g(1 as i32, h()) as f32; }")
	fn := root.Decls[0].(*ast.FuncDecl)
	es := fn.Body.Stmts[0].(*ast.ExprStmt)

	conv := es.X.(*ast.ConvExpr)
	call := conv.X.(*ast.CallExpr)
	assert.Equal(t, "g", call.Fun.(*ast.Ident).Name)
	require.Len(t, call.Args, 2)
	_, ok := call.Args[1].(*ast.CallExpr)
	assert.True(t, ok)
}

func TestParseIfElseWhile(t *testing.T) {
	root := mustParse(t, `
fn f() {
	while i < n {
		if i == k {
			i += step;
		} else {
			{ i = i + step; }
		}
	}
}`)
	fn := root.Decls[0].(*ast.FuncDecl)
	wh := fn.Body.Stmts[0].(*ast.WhileStmt)
	ifs := wh.Body.Stmts[0].(*ast.IfStmt)
	require.NotNil(t, ifs.Else)
	_, ok := ifs.Else.Stmts[0].(*ast.BlockStmt)
	assert.True(t, ok)
}

func TestParseCompoundAssign(t *testing.T) {
	for _, c := range []struct {
		src string
		op  token.Token
	}{
		{"fn f() { x += y; }", token.PLUS_EQ},
		{"fn f() { x -= y; }", token.MINUS_EQ},
		{"fn f() { x *= y; }", token.STAR_EQ},
		{"fn f() { x /= y; }", token.SLASH_EQ},
	} {
		root := mustParse(t, c.src)
		es := root.Decls[0].(*ast.FuncDecl).Body.Stmts[0].(*ast.ExprStmt)
		as := es.X.(*ast.AssignExpr)
		assert.Equal(t, c.op, as.Op, c.src)
	}
}

func TestParseSpansWithinSource(t *testing.T) {
	src := "fn main() { let x: i32 = 2 as i32; }"
	_, root, err := parse(t, src)
	require.NoError(t, err)

	var bad []ast.Node
	var v ast.VisitorFunc
	v = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitEnter {
			sp := n.Span()
			if sp.Begin > sp.End || int(sp.End) > len(src) {
				bad = append(bad, n)
			}
		}
		return v
	}
	ast.Walk(v, root)
	assert.Empty(t, bad)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"fn f() { if { } }", "if condition missing"},
		{"fn f() { if x ; }", "if block missing"},
		{"fn f() { if x { } else ; }", "else block missing"},
		{"fn f() { while { } }", "while condition missing"},
		{"fn f() { while x ; }", "while block missing"},
		{"fn f() { let x: = 1; }", "variable type missing"},
		{"fn f() { let x: i32 = ; }", "variable initializer missing"},
		{"fn f() { x = ; }", "assignment value missing"},
		{"fn f() { a + ; }", "expression right-hand side missing"},
		{"fn f() { ( ) ; }", "bracket internals missing"},
		{"fn f() { x as ; }", "variable type missing"},
		{"let x: i32 = 1", "unexpected token type"},
		{"fn f( { }", "unexpected token type"},
	}
	for _, c := range cases {
		_, _, err := parse(t, c.src)
		require.Error(t, err, c.src)
		assert.Contains(t, err.Error(), c.want, c.src)
	}
}

func TestParseErrorHasPosition(t *testing.T) {
	_, _, err := parse(t, "fn f() {\n\tif { }\n}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test.cf:2:")
}

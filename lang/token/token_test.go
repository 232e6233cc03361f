package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKw(t *testing.T) {
	cases := map[string]Token{
		"fn":    FN,
		"let":   LET,
		"i32":   I32,
		"u32":   U32,
		"f32":   F32,
		"void":  VOID,
		"if":    IF,
		"else":  ELSE,
		"while": WHILE,
		"as":    AS,
		"x":     IDENT,
		"Fn":    IDENT,
		"main":  IDENT,
	}
	for in, want := range cases {
		assert.Equal(t, want, LookupKw(in), in)
	}
}

func TestGoString(t *testing.T) {
	assert.Equal(t, "'+='", PLUS_EQ.GoString())
	assert.Equal(t, "'{'", LBRACE.GoString())
	assert.Equal(t, "fn", FN.GoString())
	assert.Equal(t, "identifier", IDENT.GoString())
}

func TestPredicates(t *testing.T) {
	assert.True(t, EQ.IsAssignOp())
	assert.True(t, SLASH_EQ.IsAssignOp())
	assert.False(t, EQEQ.IsAssignOp())
	assert.True(t, LE.IsComparison())
	assert.True(t, NEQ.IsComparison())
	assert.False(t, PLUS.IsComparison())
	assert.True(t, VOID.IsType())
	assert.False(t, FN.IsType())
}

func TestValueEnd(t *testing.T) {
	v := Value{Raw: "while", Pos: 10}
	require.Equal(t, Pos(15), v.End())
}

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilePosition(t *testing.T) {
	src := "ab\ncde\n\nf"
	f := NewFile("t.cf", len(src))
	// line starts as the scanner would register them
	f.AddLine(3)
	f.AddLine(7)
	f.AddLine(8)

	cases := []struct {
		off       Pos
		line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3}, // the newline itself
		{3, 2, 1},
		{6, 2, 4},
		{7, 3, 1},
		{8, 4, 1},
	}
	for _, c := range cases {
		pos := f.Position(c.off)
		assert.Equal(t, c.line, pos.Line, "offset %d line", c.off)
		assert.Equal(t, c.col, pos.Column, "offset %d col", c.off)
		assert.Equal(t, "t.cf", pos.Filename)
	}
}

func TestFilePositionUnknown(t *testing.T) {
	f := NewFile("t.cf", 0)
	pos := f.Position(NoPos)
	assert.Equal(t, 0, pos.Line)
	assert.Equal(t, "t.cf", pos.Filename)
}

func TestAddLineOutOfOrder(t *testing.T) {
	f := NewFile("t.cf", 10)
	f.AddLine(4)
	f.AddLine(2) // ignored
	f.AddLine(4) // ignored
	assert.Equal(t, 2, f.Line(8))
}

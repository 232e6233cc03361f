package token

import (
	gotoken "go/token"
	"sort"
)

// Pos is a byte offset into a source file. The zero offset is the
// first byte; NoPos marks an unknown position.
type Pos uint32

// NoPos is the position attached to synthesised nodes.
const NoPos Pos = ^Pos(0)

// Span is a half-open byte range [Begin, End) into a source file.
// Every AST and TIR node carries the span it was produced from.
type Span struct {
	Begin, End Pos
}

// MakeSpan builds a span from two byte offsets.
func MakeSpan(begin, end Pos) Span { return Span{Begin: begin, End: end} }

// Position is the human-readable form of a Pos: file name, 1-based
// line and column. It is go/token's Position so diagnostics compose
// with go/scanner's ErrorList unchanged.
type Position = gotoken.Position

// File holds the line table of a single source file and converts byte
// offsets to positions. Lines are registered by the scanner as it
// encounters newlines.
type File struct {
	name  string
	size  int
	lines []int // byte offset of each line start, lines[0] == 0
}

// NewFile creates a file handle for a source text of the given size.
func NewFile(name string, size int) *File {
	return &File{name: name, size: size, lines: []int{0}}
}

// Name returns the file name the handle was created with.
func (f *File) Name() string { return f.name }

// Size returns the source length in bytes.
func (f *File) Size() int { return f.size }

// AddLine registers the byte offset of a new line start. Offsets must
// be added in increasing order; out-of-order or duplicate offsets are
// ignored.
func (f *File) AddLine(off int) {
	if off > f.lines[len(f.lines)-1] && off <= f.size {
		f.lines = append(f.lines, off)
	}
}

// Line returns the 1-based line number of the position.
func (f *File) Line(p Pos) int {
	l, _ := f.lineCol(p)
	return l
}

// Position converts a byte offset to a file/line/column position.
func (f *File) Position(p Pos) Position {
	if p == NoPos {
		return Position{Filename: f.name}
	}
	l, c := f.lineCol(p)
	return Position{Filename: f.name, Offset: int(p), Line: l, Column: c}
}

func (f *File) lineCol(p Pos) (line, col int) {
	i := sort.SearchInts(f.lines, int(p)+1) - 1
	return i + 1, int(p) - f.lines[i] + 1
}

// Package scanner tokenizes CF source files for the parser to
// consume. CF source is ASCII; bytes outside the token alphabet are
// reported as unexpected symbols.
package scanner

import (
	"context"
	"fmt"
	"go/scanner"
	"os"

	"github.com/catface-lang/catface/lang/token"
)

type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

var PrintError = scanner.PrintError

// TokenAndValue combines the token type with the token value in the
// same struct.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFiles is a helper function that tokenizes the source files and
// returns the list of tokens grouped by the file at the same index,
// along with the file handles and any error encountered. The error,
// if non-nil, is an ErrorList.
func ScanFiles(ctx context.Context, files ...string) ([]*token.File, [][]TokenAndValue, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var (
		s      Scanner
		tokVal token.Value
		el     ErrorList
	)

	handles := make([]*token.File, len(files))
	tokensByFile := make([][]TokenAndValue, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		f := token.NewFile(file, len(b))
		handles[i] = f
		s.Init(f, b, el.Add)
		for {
			tok := s.Scan(&tokVal)
			tokensByFile[i] = append(tokensByFile[i], TokenAndValue{
				Token: tok,
				Value: tokVal,
			})
			if tok == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return handles, tokensByFile, el.Err()
}

// Scanner tokenizes a CF source buffer.
type Scanner struct {
	// immutable state after Init
	file *token.File
	src  []byte
	err  func(pos token.Position, msg string)

	// mutable scanning state
	cur  int // current byte, -1 at end of file
	off  int // offset in bytes of cur
	roff int // reading offset in bytes (position after cur)
}

// Init initializes the scanner to tokenize a new file. It panics if
// the file size is not the same as the length of the src slice.
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string)) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}

	s.file = file
	s.src = src
	s.err = errHandler
	s.cur = ' '
	s.off = 0
	s.roff = 0

	s.advance()
}

// read the next byte into s.cur; s.cur < 0 means end-of-file.
func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.file.AddLine(s.off)
		}
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}
	s.cur = int(s.src[s.roff])
	s.roff++
}

// advance only if the current byte matches the specified one.
func (s *Scanner) advanceIf(match byte) bool {
	if s.cur == int(match) {
		s.advance()
		return true
	}
	return false
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(token.Pos(off)), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

// Scan returns the next token in the source file.
func (s *Scanner) Scan(tokVal *token.Value) (tok token.Token) {
	s.skipWhitespace()

	pos := token.Pos(s.off)
	start := s.off

	switch cur := s.cur; {
	case isLetter(cur):
		lit := s.ident()
		tok = token.IDENT
		if len(lit) > 1 {
			// keywords are longer than one letter - avoid lookup otherwise
			tok = token.LookupKw(lit)
		}
		*tokVal = token.Value{Raw: lit, Pos: pos}

	case isDecimal(cur):
		var isFloat bool
		var intVal uint64
		var floatVal float64
		isFloat, intVal, floatVal = s.number()
		lit := string(s.src[start:s.off])
		if isFloat {
			tok = token.FLOAT
			*tokVal = token.Value{Raw: lit, Pos: pos, Float: floatVal}
		} else {
			tok = token.INT
			*tokVal = token.Value{Raw: lit, Pos: pos, Int: intVal}
		}

	default:
		s.advance() // always make progress
		switch cur {
		case '{', '}', '(', ')', '[', ']', ':', ';', ',':
			tok = lookupPunct(string(rune(cur)))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '=', '+', '-', '*', '<', '>':
			// single-char operators that can be followed by '=' and
			// nothing else
			s.advanceIf('=')
			tok = lookupPunct(string(s.src[start:s.off]))
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '/':
			// slash, slasheq or start of a comment (//)
			tok = token.SLASH
			if s.advanceIf('=') {
				tok = token.SLASH_EQ
			} else if s.advanceIf('/') {
				tok = token.COMMENT
				lit := s.comment(start)
				*tokVal = token.Value{Raw: lit, Pos: pos}
				break
			}
			*tokVal = token.Value{Raw: tok.String(), Pos: pos}

		case '!':
			// '!' exists only as part of '!='
			if s.advanceIf('=') {
				tok = token.NEQ
				*tokVal = token.Value{Raw: tok.String(), Pos: pos}
				break
			}
			s.errorf(start, "unexpected symbol '!' at offset %d", start)
			tok = token.ILLEGAL
			*tokVal = token.Value{Raw: "!", Pos: pos}

		case -1:
			tok = token.EOF
			*tokVal = token.Value{Raw: "", Pos: pos}

		default:
			s.errorf(start, "unexpected symbol %q at offset %d", rune(cur), start)
			tok = token.ILLEGAL
			*tokVal = token.Value{Raw: string(rune(cur)), Pos: pos}
		}
	}
	return tok
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDecimal(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

// comment scans the remainder of a // comment, start pointing at the
// first slash.
func (s *Scanner) comment(start int) string {
	for s.cur != '\n' && s.cur != -1 {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) skipWhitespace() {
	for s.cur == ' ' || s.cur == '\t' || s.cur == '\n' || s.cur == '\r' {
		s.advance()
	}
}

var puncts = map[string]token.Token{
	"{": token.LBRACE, "}": token.RBRACE,
	"(": token.LPAREN, ")": token.RPAREN,
	"[": token.LBRACK, "]": token.RBRACK,
	":": token.COLON, ";": token.SEMI, ",": token.COMMA,
	"=": token.EQ, "==": token.EQEQ,
	"+": token.PLUS, "+=": token.PLUS_EQ,
	"-": token.MINUS, "-=": token.MINUS_EQ,
	"*": token.STAR, "*=": token.STAR_EQ,
	"/": token.SLASH, "/=": token.SLASH_EQ,
	"<": token.LT, "<=": token.LE,
	">": token.GT, ">=": token.GE,
	"!=": token.NEQ,
}

func lookupPunct(s string) token.Token {
	if tok, ok := puncts[s]; ok {
		return tok
	}
	return token.ILLEGAL
}

func isLetter(c int) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isDecimal(c int) bool { return '0' <= c && c <= '9' }

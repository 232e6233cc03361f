// Package parser implements the recursive-descent parser that
// transforms CF source code into an abstract syntax tree (AST).
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/catface-lang/catface/lang/ast"
	"github.com/catface-lang/catface/lang/scanner"
	"github.com/catface-lang/catface/lang/token"
)

// ParseFiles is a helper function that parses the source files and
// returns the file handles along with the ASTs and any error
// encountered. The error, if non-nil, is a scanner.ErrorList.
func ParseFiles(ctx context.Context, files ...string) ([]*token.File, []*ast.File, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var p parser

	handles := make([]*token.File, 0, len(files))
	res := make([]*ast.File, 0, len(files))
	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			p.errors.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		f, root := p.parse(file, b)
		handles = append(handles, f)
		res = append(res, root)
	}
	p.errors.Sort()
	return handles, res, p.errors.Err()
}

// ParseFile parses a single source buffer under the provided name and
// returns the file handle, the AST and any error encountered. The
// error, if non-nil, is a scanner.ErrorList.
func ParseFile(ctx context.Context, filename string, src []byte) (*token.File, *ast.File, error) {
	var p parser
	f, root := p.parse(filename, src)
	p.errors.Sort()
	return f, root, p.errors.Err()
}

// parser parses source files and generates an AST.
type parser struct {
	scanner scanner.Scanner
	errors  scanner.ErrorList
	file    *token.File

	// current token
	tok token.Token
	val token.Value
}

func (p *parser) parse(filename string, src []byte) (*token.File, *ast.File) {
	p.file = token.NewFile(filename, len(src))
	p.scanner.Init(p.file, src, p.errors.Add)
	p.advance()

	root := &ast.File{Name: filename}
	func() {
		// the first structural error aborts the parse of this file
		defer func() {
			if e := recover(); e != nil && e != errAbort { //nolint:errorlint
				panic(e)
			}
		}()
		for p.tok != token.EOF {
			root.Decls = append(root.Decls, p.parseDecl())
		}
		root.EOF = p.val.Pos
	}()
	return p.file, root
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
	for p.tok == token.COMMENT {
		// comments are dropped by the parser
		p.tok = p.scanner.Scan(&p.val)
	}
}

var errAbort = errors.New("parse aborted")

// expect consumes the current token if it is one of the expected
// tokens and returns its position, otherwise it reports an error and
// panics with errAbort, which gets recovered at the file level.
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos

	for _, tok := range toks {
		if p.tok == tok {
			p.advance()
			return pos
		}
	}

	var buf strings.Builder
	for i, tok := range toks {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(tok.GoString())
	}
	lbl := buf.String()
	if len(toks) > 1 {
		lbl = "one of " + lbl
	}
	p.errorf(pos, "unexpected token type (expected %s, got %s)", lbl, p.tok.GoString())
	panic(errAbort)
}

// fail reports the message at the given position and aborts parsing.
func (p *parser) fail(pos token.Pos, msg string) {
	p.error(pos, msg)
	panic(errAbort)
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
}

func (p *parser) errorf(pos token.Pos, format string, args ...any) {
	p.errors.Add(p.file.Position(pos), fmt.Sprintf(format, args...))
}

// Package linker combines relocatable objects into a single
// executable image, resolving every link against the labels defined
// across all objects.
package linker

import (
	"encoding/binary"
	"fmt"

	"github.com/catface-lang/catface/lang/executable"
	"github.com/catface-lang/catface/lang/object"
	"github.com/dolthub/swiss"
)

// DuplicateLabelError reports two labels sharing one name, with the
// defining source file and line of both declarations.
type DuplicateLabelError struct {
	Name                  string
	FirstFile, SecondFile string
	FirstLine, SecondLine uint32
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate declaration of label %q (first: %s:%d, second: %s:%d)",
		e.Name, e.FirstFile, e.FirstLine, e.SecondFile, e.SecondLine)
}

// UnknownLabelError reports a link whose target label does not exist,
// with the referencing source file and line.
type UnknownLabelError struct {
	Name string
	File string
	Line uint32
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown label %q referenced at %s:%d", e.Name, e.File, e.Line)
}

// label is the linker-internal view of an object label, rebased into
// the combined code image.
type label struct {
	file  string
	line  uint32
	value uint32
}

// link is the linker-internal view of an object link, rebased into
// the combined code image.
type link struct {
	file   string
	line   uint32
	offset uint32
	name   string
}

// Link combines the objects, in order, into an executable. On
// success the executable owns the combined code.
func Link(objects ...*object.Object) (*executable.Executable, error) {
	ln := linker{labels: swiss.NewMap[string, label](64)}

	for _, o := range objects {
		if err := ln.addObject(o); err != nil {
			return nil, err
		}
	}
	return ln.buildExecutable()
}

type linker struct {
	code   []byte
	links  []link
	labels *swiss.Map[string, label]
}

// addObject appends an object's labels, links and code, rebasing
// relative label values and link offsets by the current code length.
func (ln *linker) addObject(o *object.Object) error {
	base := uint32(len(ln.code))

	for _, l := range o.Labels {
		value := l.Value
		if l.Relative {
			value += base
		}
		if first, ok := ln.labels.Get(l.Name); ok {
			return &DuplicateLabelError{
				Name:      l.Name,
				FirstFile: first.file, FirstLine: first.line,
				SecondFile: o.SourceName, SecondLine: l.Line,
			}
		}
		ln.labels.Put(l.Name, label{file: o.SourceName, line: l.Line, value: value})
	}

	for _, l := range o.Links {
		ln.links = append(ln.links, link{
			file:   o.SourceName,
			line:   l.Line,
			offset: l.Offset + base,
			name:   l.Name,
		})
	}

	ln.code = append(ln.code, o.Code...)
	return nil
}

// buildExecutable patches every pending link site with the resolved
// label value, little-endian.
func (ln *linker) buildExecutable() (*executable.Executable, error) {
	for _, l := range ln.links {
		target, ok := ln.labels.Get(l.name)
		if !ok {
			return nil, &UnknownLabelError{Name: l.name, File: l.file, Line: l.line}
		}
		binary.LittleEndian.PutUint32(ln.code[l.offset:], target.value)
	}
	return &executable.Executable{Code: ln.code}, nil
}

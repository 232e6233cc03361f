package object

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// CATJOB on-disk layout, all integers little-endian:
//
//	magic[8]     "CATJOB\0\0"
//	name_length  u32
//	label_count  u32
//	link_count   u32
//	code_length  u32
//	data_hash    sha256 of name+labels+links+code
//	body         name bytes, label records, link records, code bytes
//
// A label record is {line u32, value u32, is_relative u8, pad[3],
// name char[64]}; a link record is {source_line u32, code_offset u32,
// name char[64]}. Names are NUL-padded.

var magic = [8]byte{'C', 'A', 'T', 'J', 'O', 'B', 0, 0}

const (
	headerSize = 8 + 4*4 + sha256.Size
	labelSize  = 4 + 4 + 1 + 3 + MaxNameLen + 1
	linkSize   = 4 + 4 + MaxNameLen + 1
)

// Read errors. ReadError wraps them with position details.
var (
	ErrUnexpectedEOF = errors.New("unexpected file end")
	ErrInvalidMagic  = errors.New("invalid object magic")
	ErrInvalidHash   = errors.New("invalid object data hash")
)

// ReadError describes why an object could not be decoded.
type ReadError struct {
	Err      error
	Offset   int64 // file offset of the failed read, for ErrUnexpectedEOF
	Required int   // bytes required at Offset
	Actual   int   // bytes actually available
}

func (e *ReadError) Error() string {
	if errors.Is(e.Err, ErrUnexpectedEOF) {
		return fmt.Sprintf("%s (offset: %#x, read: %d, required: %d)",
			e.Err, e.Offset, e.Actual, e.Required)
	}
	return e.Err.Error()
}

func (e *ReadError) Unwrap() error { return e.Err }

// Write encodes the object to w. It fails with ErrNameTooLong if any
// label or link name exceeds MaxNameLen bytes.
func Write(w io.Writer, o *Object) error {
	body, err := encodeBody(o)
	if err != nil {
		return err
	}

	var hdr bytes.Buffer
	hdr.Write(magic[:])
	for _, v := range [4]uint32{
		uint32(len(o.SourceName)),
		uint32(len(o.Labels)),
		uint32(len(o.Links)),
		uint32(len(o.Code)),
	} {
		binary.Write(&hdr, binary.LittleEndian, v) //nolint:errcheck
	}
	sum := sha256.Sum256(body)
	hdr.Write(sum[:])

	if _, err := w.Write(hdr.Bytes()); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

func encodeBody(o *Object) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(o.SourceName)

	var name [MaxNameLen + 1]byte
	for _, l := range o.Labels {
		if err := CheckName(l.Name); err != nil {
			return nil, err
		}
		binary.Write(&buf, binary.LittleEndian, l.Line)  //nolint:errcheck
		binary.Write(&buf, binary.LittleEndian, l.Value) //nolint:errcheck
		rel := byte(0)
		if l.Relative {
			rel = 1
		}
		buf.Write([]byte{rel, 0, 0, 0})
		name = [MaxNameLen + 1]byte{}
		copy(name[:], l.Name)
		buf.Write(name[:])
	}
	for _, l := range o.Links {
		if err := CheckName(l.Name); err != nil {
			return nil, err
		}
		binary.Write(&buf, binary.LittleEndian, l.Line)   //nolint:errcheck
		binary.Write(&buf, binary.LittleEndian, l.Offset) //nolint:errcheck
		name = [MaxNameLen + 1]byte{}
		copy(name[:], l.Name)
		buf.Write(name[:])
	}
	buf.Write(o.Code)
	return buf.Bytes(), nil
}

// Read decodes an object from r, verifying the magic and the data
// hash.
func Read(r io.Reader) (*Object, error) {
	var hdr [headerSize]byte
	if n, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, &ReadError{Err: ErrUnexpectedEOF, Offset: 0, Required: headerSize, Actual: n}
	}
	if !bytes.Equal(hdr[:8], magic[:]) {
		return nil, &ReadError{Err: fmt.Errorf("%w: %q", ErrInvalidMagic, hdr[:8])}
	}

	nameLen := binary.LittleEndian.Uint32(hdr[8:])
	labelCount := binary.LittleEndian.Uint32(hdr[12:])
	linkCount := binary.LittleEndian.Uint32(hdr[16:])
	codeLen := binary.LittleEndian.Uint32(hdr[20:])
	var wantHash [sha256.Size]byte
	copy(wantHash[:], hdr[24:])

	bodyLen := int(nameLen) + int(labelCount)*labelSize + int(linkCount)*linkSize + int(codeLen)
	body := make([]byte, bodyLen)
	if n, err := io.ReadFull(r, body); err != nil {
		return nil, &ReadError{Err: ErrUnexpectedEOF, Offset: headerSize, Required: bodyLen, Actual: n}
	}
	if sha256.Sum256(body) != wantHash {
		return nil, &ReadError{Err: ErrInvalidHash}
	}

	o := &Object{
		SourceName: string(body[:nameLen]),
		Labels:     make([]Label, 0, labelCount),
		Links:      make([]Link, 0, linkCount),
	}
	off := int(nameLen)
	for i := uint32(0); i < labelCount; i++ {
		rec := body[off : off+labelSize]
		o.Labels = append(o.Labels, Label{
			Line:     binary.LittleEndian.Uint32(rec),
			Value:    binary.LittleEndian.Uint32(rec[4:]),
			Relative: rec[8] != 0,
			Name:     trimName(rec[12:]),
		})
		off += labelSize
	}
	for i := uint32(0); i < linkCount; i++ {
		rec := body[off : off+linkSize]
		o.Links = append(o.Links, Link{
			Line:   binary.LittleEndian.Uint32(rec),
			Offset: binary.LittleEndian.Uint32(rec[4:]),
			Name:   trimName(rec[8:]),
		})
		off += linkSize
	}
	o.Code = append([]byte(nil), body[off:]...)
	return o, nil
}

func trimName(b []byte) string {
	b = b[:MaxNameLen+1]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

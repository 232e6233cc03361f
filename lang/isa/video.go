package isa

// StorageFormat selects how the framebuffer at the start of RAM is
// interpreted by the sandbox. The VM itself never interprets pixels.
type StorageFormat uint8

const (
	FormatText         StorageFormat = 0 // plain text
	FormatColoredText  StorageFormat = 1 // text with 16 colors
	FormatColorPalette StorageFormat = 2 // 256-color palette
	FormatTrueColor    StorageFormat = 3 // RGBX, fourth byte ignored
)

func (f StorageFormat) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatColoredText:
		return "colored text"
	case FormatColorPalette:
		return "color palette"
	case FormatTrueColor:
		return "true color"
	}
	return "<invalid>"
}

// UpdateMode selects when the sandbox scans the framebuffer out to
// the screen.
type UpdateMode uint8

const (
	UpdateImmediate UpdateMode = 0 // scan out continuously
	UpdateManual    UpdateMode = 1 // scan out on VRS only
)

func (m UpdateMode) String() string {
	switch m {
	case UpdateImmediate:
		return "immediate"
	case UpdateManual:
		return "manual"
	}
	return "<invalid>"
}

// Screen geometry.
const (
	ScreenWidth  = 320
	ScreenHeight = 200
	FontWidth    = 8
	FontHeight   = 8
	TextWidth    = ScreenWidth / FontWidth
	TextHeight   = ScreenHeight / FontHeight
)

// Flags is the FL register. Bits 0 and 1 hold the comparison result,
// bits 2-4 the video storage format and bit 5 the update mode.
type Flags uint32

const (
	flagLt         Flags = 1 << 0
	flagEq         Flags = 1 << 1
	flagFormatMask Flags = 0x7 << 2
	flagUpdateBit  Flags = 1 << 5
)

// IsLt reports the less-than bit of the last comparison.
func (f Flags) IsLt() bool { return f&flagLt != 0 }

// IsEq reports the equal bit of the last comparison.
func (f Flags) IsEq() bool { return f&flagEq != 0 }

// SetCompare stores a comparison result.
func (f Flags) SetCompare(lt, eq bool) Flags {
	f &^= flagLt | flagEq
	if lt {
		f |= flagLt
	}
	if eq {
		f |= flagEq
	}
	return f
}

// StorageFormat reports the video storage format bits.
func (f Flags) StorageFormat() StorageFormat { return StorageFormat(f & flagFormatMask >> 2) }

// UpdateMode reports the video update mode bit.
func (f Flags) UpdateMode() UpdateMode {
	if f&flagUpdateBit != 0 {
		return UpdateManual
	}
	return UpdateImmediate
}

// SetVideoMode stores the video mode bits.
func (f Flags) SetVideoMode(sf StorageFormat, m UpdateMode) Flags {
	f &^= flagFormatMask | flagUpdateBit
	f |= Flags(sf) << 2
	if m == UpdateManual {
		f |= flagUpdateBit
	}
	return f
}

package isa

// Key is a keyboard key code. ASCII-representable keys use their
// uppercase ASCII value; other keys live above the ASCII separator.
type Key uint8

const (
	// KeyNull does not represent any actual key.
	KeyNull Key = 0

	KeyEnter        Key = '\n'
	KeyBackspace    Key = '\b'
	KeyTab          Key = '\t'
	KeyEscape       Key = 0x1B
	KeySpace        Key = ' '
	KeyQuote        Key = '\''
	KeyComma        Key = ','
	KeyMinus        Key = '-'
	KeyDot          Key = '.'
	KeySlash        Key = '/'
	KeySemicolon    Key = ';'
	KeyEqual        Key = '='
	KeyLeftBracket  Key = '['
	KeyBackslash    Key = '\\'
	KeyRightBracket Key = ']'
	KeyBackquote    Key = '`'
	KeyDelete       Key = 0x7F

	// keyASCIISeparator separates ASCII and non-ASCII keys.
	keyASCIISeparator Key = 0x80
)

const (
	KeyUp Key = keyASCIISeparator + 1 + iota
	KeyDown
	KeyLeft
	KeyRight
	KeyShift
	KeyAlt
	KeyCtrl

	keyMax
)

// KeyFromUint32 converts a popped stack value to a key. Values that
// do not correspond to any key convert to KeyNull.
func KeyFromUint32(v uint32) Key {
	if v > uint32(keyMax) {
		return KeyNull
	}
	k := Key(v)
	switch {
	case k >= 'A' && k <= 'Z', k >= '0' && k <= '9':
		return k
	case k > keyASCIISeparator && k < keyMax:
		return k
	}
	switch k {
	case KeyEnter, KeyBackspace, KeyTab, KeyEscape, KeySpace, KeyQuote,
		KeyComma, KeyMinus, KeyDot, KeySlash, KeySemicolon, KeyEqual,
		KeyLeftBracket, KeyBackslash, KeyRightBracket, KeyBackquote,
		KeyDelete:
		return k
	}
	return KeyNull
}

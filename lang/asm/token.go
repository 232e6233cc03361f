package asm

import (
	"fmt"
	"strconv"
	"strings"
)

type lineTokenKind uint8

const (
	tokIdent lineTokenKind = iota
	tokInt
	tokFloat
	tokLbrack
	tokRbrack
	tokPlus
	tokColon
	tokEqual
)

type lineToken struct {
	kind     lineTokenKind
	text     string
	intVal   uint64
	floatVal float64
}

// tokenizeLine splits one source line into tokens, dropping the ';'
// comment tail.
func tokenizeLine(line string) ([]lineToken, error) {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}

	var toks []lineToken
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++

		case c == '[':
			toks = append(toks, lineToken{kind: tokLbrack, text: "["})
			i++
		case c == ']':
			toks = append(toks, lineToken{kind: tokRbrack, text: "]"})
			i++
		case c == '+':
			toks = append(toks, lineToken{kind: tokPlus, text: "+"})
			i++
		case c == ':':
			toks = append(toks, lineToken{kind: tokColon, text: ":"})
			i++
		case c == '=':
			toks = append(toks, lineToken{kind: tokEqual, text: "="})
			i++

		case c >= '0' && c <= '9':
			start := i
			if strings.HasPrefix(line[i:], "0x") || strings.HasPrefix(line[i:], "0X") {
				i += 2
				for i < len(line) && isHexDigit(line[i]) {
					i++
				}
				v, err := strconv.ParseUint(line[start+2:i], 16, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid integer %q", line[start:i])
				}
				toks = append(toks, lineToken{kind: tokInt, text: line[start:i], intVal: v})
				break
			}

			isFloat := false
			for i < len(line) && (isDigit(line[i]) || line[i] == '.' || line[i] == 'e' ||
				((line[i] == '-' || line[i] == '+') && (line[i-1] == 'e'))) {
				if line[i] == '.' || line[i] == 'e' {
					isFloat = true
				}
				i++
			}
			text := line[start:i]
			if isFloat {
				v, err := strconv.ParseFloat(text, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid floating literal %q", text)
				}
				toks = append(toks, lineToken{kind: tokFloat, text: text, floatVal: v})
			} else {
				v, err := strconv.ParseUint(text, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid integer %q", text)
				}
				toks = append(toks, lineToken{kind: tokInt, text: text, intVal: v})
			}

		case isIdentByte(c):
			start := i
			for i < len(line) && (isIdentByte(line[i]) || isDigit(line[i])) {
				i++
			}
			toks = append(toks, lineToken{kind: tokIdent, text: line[start:i]})

		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return toks, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

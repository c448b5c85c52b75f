package raw

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
)

// Literal builds a literal string from plain bytes, escaping the characters
// that cannot appear verbatim between parentheses.
func Literal(text string) StringObj {
	var b bytes.Buffer
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	return StringObj{Raw: b.Bytes()}
}

// TextString encodes s as a PDF text string: a literal for printable ASCII,
// otherwise UTF-16BE with a byte order mark, written as a hex string.
func TextString(s string) Object {
	if isPrintableASCII(s) {
		return Literal(s)
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		return Literal(s)
	}
	return HexStr(out)
}

// DecodeText returns the Go string for a PDF text string, handling the
// UTF-16BE BOM form. Other bytes are taken as-is.
func DecodeText(o Object) (string, bool) {
	var b []byte
	switch v := o.(type) {
	case StringObj:
		b = v.Text()
	case HexStringObj:
		b = v.Bytes()
	default:
		return "", false
	}
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(b)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
	return string(b), true
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\n' || c == '\r' || c == '\t' {
			continue
		}
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

// unescapeLiteral processes the escape sequences of a literal string body.
func unescapeLiteral(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for i := 0; i < len(in); i++ {
		c := in[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(in) {
			break
		}
		esc := in[i]
		switch {
		case esc == '\r':
			// line continuation
			if i+1 < len(in) && in[i+1] == '\n' {
				i++
			}
		case esc == '\n':
		case esc >= '0' && esc <= '7':
			val := int(esc - '0')
			for k := 0; k < 2 && i+1 < len(in) && in[i+1] >= '0' && in[i+1] <= '7'; k++ {
				i++
				val = val<<3 + int(in[i]-'0')
			}
			out = append(out, byte(val))
		default:
			out = append(out, translateEscape(esc))
		}
	}
	return out
}

func translateEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	default:
		return c
	}
}

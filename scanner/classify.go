package scanner

import (
	"regexp"
	"strings"
)

// Kind is the primitive type of a piece of object text.
type Kind int

const (
	KindInvalid Kind = iota
	KindReference
	KindNumber
	KindNull
	KindBoolean
	KindArray
	KindDict
	KindStream
	KindString
	KindHexString
	KindName
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "Reference"
	case KindNumber:
		return "Numeric"
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindArray:
		return "Array"
	case KindDict:
		return "Dictionary"
	case KindStream:
		return "Stream"
	case KindString:
		return "String"
	case KindHexString:
		return "HexString"
	case KindName:
		return "Name"
	}
	return "Invalid"
}

var (
	numberRE    = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
	referenceRE = regexp.MustCompile(`^\d+\s+\d+\s+R$`)
)

// IsNumber reports whether text is a PDF numeric literal.
func IsNumber(text string) bool { return numberRE.MatchString(text) }

// IsReference reports whether text is an "N G R" reference.
func IsReference(text string) bool { return referenceRE.MatchString(text) }

// Classify determines the kind of pre-trimmed object text. It never fails:
// text that cannot be decided is KindInvalid. Stream detection runs before
// dictionary detection and reference detection before anything that could
// take "N G R" apart.
func Classify(text string) Kind {
	t := strings.TrimSpace(text)
	switch {
	case t == "":
		return KindInvalid
	case IsNumber(t):
		return KindNumber
	case IsReference(t):
		return KindReference
	case enclosed(t, "[", "]"):
		return KindArray
	case enclosed(t, "(", ")"):
		return KindString
	case strings.HasPrefix(t, "<<"):
		if _, stream, ok := SplitStream(t); ok && strings.HasSuffix(strings.TrimRight(stream, whitespace), "endstream") {
			return KindStream
		}
		if strings.HasSuffix(t, ">>") {
			return KindDict
		}
		return KindInvalid
	case enclosed(t, "<", ">"):
		return KindHexString
	case t == "true" || t == "false":
		return KindBoolean
	case t == "null":
		return KindNull
	case t[0] == '/' && scanRegular(t, 1) == len(t):
		return KindName
	}
	return KindInvalid
}

const whitespace = "\x00\t\n\f\r "

func enclosed(t, open, close string) bool {
	return len(t) >= len(open)+len(close) && strings.HasPrefix(t, open) && strings.HasSuffix(t, close)
}

// SplitStream separates a stream object's dictionary text from its
// "stream ... endstream" portion. ok is false when body is not a dictionary
// followed by the stream keyword.
func SplitStream(body string) (head, stream string, ok bool) {
	start := skipSpace(body, 0)
	if !strings.HasPrefix(body[start:], "<<") {
		return body, "", false
	}
	s := New(body, Config{})
	s.pos = start
	it, err := s.Next()
	if err != nil || it.Type != ItemDict {
		return body, "", false
	}
	rest := skipSpace(body, s.pos)
	if !strings.HasPrefix(body[rest:], "stream") {
		return body, "", false
	}
	after := rest + len("stream")
	if after < len(body) && !IsWhitespace(body[after]) {
		return body, "", false
	}
	return body[start:s.pos], body[rest:], true
}

// Normalize prepares object body text for classification: comments outside
// strings are removed, whitespace runs outside literal strings collapse to a
// single space, and any stream portion is reattached verbatim.
func Normalize(body string) string {
	head, stream, ok := SplitStream(body)
	out := collapse(head)
	if ok {
		return out + "\n" + strings.TrimRight(stream, whitespace)
	}
	return out
}

func collapse(text string) string {
	var b strings.Builder
	pendingSpace := false
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case IsWhitespace(c):
			pendingSpace = true
			i++
			continue
		case c == '%':
			pendingSpace = true
			i = skipComment(text, i)
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		if c == '(' {
			end, err := scanLiteral(text, i)
			if err != nil {
				b.WriteString(text[i:])
				break
			}
			b.WriteString(text[i:end])
			i = end
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

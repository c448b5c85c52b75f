package scanner

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

type ItemType int

const (
	ItemToken   ItemType = iota // number, keyword, true/false/null, R
	ItemName                    // '/Name'
	ItemLiteral                 // '( ... )'
	ItemHex                     // '< ... >'
	ItemArray                   // '[ ... ]'
	ItemDict                    // '<< ... >>'
)

func (t ItemType) String() string {
	switch t {
	case ItemToken:
		return "token"
	case ItemName:
		return "name"
	case ItemLiteral:
		return "literal"
	case ItemHex:
		return "hex"
	case ItemArray:
		return "array"
	case ItemDict:
		return "dict"
	}
	return "unknown"
}

// Item is one complete value in object text: a scalar token, or a whole
// compound value with its nested content left unparsed.
type Item struct {
	Type ItemType
	Text string
	Pos  int
}

type Config struct {
	MaxNestingDepth int
	MaxStringLength int64
}

var (
	ErrUnterminated = errors.New("unterminated value")
	ErrUnbalanced   = errors.New("unbalanced delimiter")
	ErrTooDeep      = errors.New("nesting depth exceeded")
	ErrTooLong      = errors.New("string too long")
)

// Scanner splits object text into items. Compound items are delimited by
// counting nesting depth, so brackets inside strings and nested values are
// never mistaken for the end of the outer value.
type Scanner struct {
	src string
	pos int
	cfg Config
}

func New(text string, cfg Config) *Scanner {
	return &Scanner{src: text, cfg: cfg}
}

func (s *Scanner) Position() int { return s.pos }

// Next returns the next item, or io.EOF when the text is exhausted.
func (s *Scanner) Next() (Item, error) {
	s.pos = skipSpace(s.src, s.pos)
	if s.pos >= len(s.src) {
		return Item{}, io.EOF
	}
	start := s.pos
	c := s.src[start]
	var (
		end int
		typ ItemType
		err error
	)
	switch {
	case c == '(':
		typ = ItemLiteral
		end, err = scanLiteral(s.src, start)
	case c == '<' && peek(s.src, start+1) == '<':
		typ = ItemDict
		end, err = s.scanBalanced(start)
	case c == '<':
		typ = ItemHex
		end, err = scanHex(s.src, start)
	case c == '[':
		typ = ItemArray
		end, err = s.scanBalanced(start)
	case c == '/':
		typ = ItemName
		end = scanRegular(s.src, start+1)
	case c == ')' || c == '>' || c == ']' || c == '{' || c == '}':
		return Item{}, fmt.Errorf("%w: %q at %d", ErrUnbalanced, c, start)
	default:
		typ = ItemToken
		end = scanRegular(s.src, start)
	}
	if err != nil {
		return Item{}, err
	}
	if (typ == ItemLiteral || typ == ItemHex) && s.cfg.MaxStringLength > 0 && int64(end-start) > s.cfg.MaxStringLength {
		return Item{}, fmt.Errorf("%w at %d", ErrTooLong, start)
	}
	s.pos = end
	return Item{Type: typ, Text: s.src[start:end], Pos: start}, nil
}

// All returns every remaining item.
func (s *Scanner) All() ([]Item, error) {
	var items []Item
	for {
		it, err := s.Next()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
}

// scanBalanced consumes an array or dictionary starting at start, tracking
// each open delimiter on a stack and skipping over strings and comments.
func (s *Scanner) scanBalanced(start int) (int, error) {
	var stack []byte
	i := start
	for i < len(s.src) {
		c := s.src[i]
		switch {
		case c == '(':
			end, err := scanLiteral(s.src, i)
			if err != nil {
				return 0, err
			}
			i = end
			continue
		case c == '%':
			i = skipComment(s.src, i)
			continue
		case c == '<' && peek(s.src, i+1) == '<':
			stack = append(stack, '<')
			i += 2
		case c == '<':
			end, err := scanHex(s.src, i)
			if err != nil {
				return 0, err
			}
			i = end
			continue
		case c == '[':
			stack = append(stack, '[')
			i++
		case c == '>' && peek(s.src, i+1) == '>':
			if len(stack) == 0 || stack[len(stack)-1] != '<' {
				return 0, fmt.Errorf("%w: '>>' at %d", ErrUnbalanced, i)
			}
			stack = stack[:len(stack)-1]
			i += 2
		case c == ']':
			if len(stack) == 0 || stack[len(stack)-1] != '[' {
				return 0, fmt.Errorf("%w: ']' at %d", ErrUnbalanced, i)
			}
			stack = stack[:len(stack)-1]
			i++
		default:
			i++
			continue
		}
		if s.cfg.MaxNestingDepth > 0 && len(stack) > s.cfg.MaxNestingDepth {
			return 0, fmt.Errorf("%w at %d", ErrTooDeep, i)
		}
		if len(stack) == 0 {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: compound value at %d", ErrUnterminated, start)
}

// scanLiteral returns the index just past the ')' closing the literal string at start.
func scanLiteral(src string, start int) (int, error) {
	depth := 0
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: literal string at %d", ErrUnterminated, start)
}

func scanHex(src string, start int) (int, error) {
	end := strings.IndexByte(src[start:], '>')
	if end < 0 {
		return 0, fmt.Errorf("%w: hex string at %d", ErrUnterminated, start)
	}
	return start + end + 1, nil
}

func scanRegular(src string, i int) int {
	for i < len(src) && !IsDelimiter(src[i]) && !IsWhitespace(src[i]) {
		i++
	}
	return i
}

func skipSpace(src string, i int) int {
	for i < len(src) {
		switch {
		case IsWhitespace(src[i]):
			i++
		case src[i] == '%':
			i = skipComment(src, i)
		default:
			return i
		}
	}
	return i
}

func skipComment(src string, i int) int {
	for i < len(src) && src[i] != '\n' && src[i] != '\r' {
		i++
	}
	return i
}

func peek(src string, i int) byte {
	if i < 0 || i >= len(src) {
		return 0
	}
	return src[i]
}

// IsWhitespace reports PDF whitespace: NUL, tab, LF, FF, CR and space.
func IsWhitespace(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

func IsDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

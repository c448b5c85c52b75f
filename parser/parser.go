package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wudi/pdfedit/filters"
	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/scanner"
	"github.com/wudi/pdfedit/security"
)

// Config controls value parsing and object indexing.
type Config struct {
	Recovery recovery.Strategy
	Limits   security.Limits
	// DecodeStreams runs every stream payload through Filters at parse time.
	DecodeStreams bool
	Filters       *filters.Pipeline
}

func (c Config) withDefaults() Config {
	c.Limits = c.Limits.WithDefaults()
	if c.Recovery == nil {
		c.Recovery = recovery.NewLenient(0)
	}
	if c.DecodeStreams && c.Filters == nil {
		c.Filters = filters.Default(c.Limits)
	}
	return c
}

// ParseValue classifies text and parses it into a value.
func ParseValue(text string) (raw.Object, error) {
	t := scanner.Normalize(text)
	return ParseKind(t, scanner.Classify(t))
}

// ParseKind parses text already classified as kind.
func ParseKind(text string, kind scanner.Kind) (raw.Object, error) {
	p := &valueParser{cfg: Config{}.withDefaults()}
	return p.parse(strings.TrimSpace(text), kind)
}

// Coerce turns host-supplied scalar text into a value: text shaped like a
// reference, hex string, literal string or name becomes that value, anything
// else becomes a literal string.
func Coerce(text string) raw.Object {
	t := strings.TrimSpace(text)
	switch k := scanner.Classify(t); k {
	case scanner.KindReference, scanner.KindHexString, scanner.KindString, scanner.KindName:
		if v, err := ParseKind(t, k); err == nil {
			return v
		}
	}
	return raw.Literal(text)
}

type valueParser struct {
	cfg      Config
	depth    int
	warnings []error
}

func (p *valueParser) scannerConfig() scanner.Config {
	return scanner.Config{
		MaxNestingDepth: p.cfg.Limits.MaxNestingDepth,
		MaxStringLength: p.cfg.Limits.MaxStringLength,
	}
}

func (p *valueParser) parse(text string, kind scanner.Kind) (raw.Object, error) {
	// scalar kinds may come from the caller; compounds are checked by single
	switch kind {
	case scanner.KindNumber, scanner.KindReference, scanner.KindNull, scanner.KindBoolean, scanner.KindName:
		if got := scanner.Classify(text); got != kind {
			return nil, invalid(strings.ToLower(kind.String()), text, fmt.Errorf("text is %s", got))
		}
	}
	switch kind {
	case scanner.KindNumber:
		return parseNumber(text)
	case scanner.KindReference:
		f := strings.Fields(text)
		num, err1 := strconv.Atoi(f[0])
		gen, err2 := strconv.Atoi(f[1])
		if err := errors.Join(err1, err2); err != nil {
			return nil, invalid("reference", text, err)
		}
		return raw.Ref(num, gen), nil
	case scanner.KindNull:
		return raw.NullObj{}, nil
	case scanner.KindBoolean:
		return raw.Bool(text == "true"), nil
	case scanner.KindName:
		return raw.NameLiteral(text[1:]), nil
	case scanner.KindString:
		if err := p.single(text, scanner.ItemLiteral); err != nil {
			return nil, err
		}
		return raw.StringObj{Raw: []byte(text[1 : len(text)-1])}, nil
	case scanner.KindHexString:
		if err := p.single(text, scanner.ItemHex); err != nil {
			return nil, err
		}
		digits := text[1 : len(text)-1]
		for i := 0; i < len(digits); i++ {
			if c := digits[i]; !isHex(c) && !scanner.IsWhitespace(c) {
				return nil, invalid("hex string", text, fmt.Errorf("bad digit %q", c))
			}
		}
		return raw.HexStringObj{Digits: []byte(digits)}, nil
	case scanner.KindArray:
		if err := p.single(text, scanner.ItemArray); err != nil {
			return nil, err
		}
		items, err := p.enter(text[1 : len(text)-1])
		if err != nil {
			return nil, err
		}
		defer p.leave()
		vals, err := p.sequence(items)
		if err != nil {
			return nil, err
		}
		return &raw.ArrayObj{Items: vals}, nil
	case scanner.KindDict:
		return p.dict(text)
	case scanner.KindStream:
		return p.stream(text)
	}
	return nil, invalid("value", text, errors.New("cannot classify"))
}

// enter splits the inside of a compound value into items, one level deeper.
func (p *valueParser) enter(inner string) ([]scanner.Item, error) {
	p.depth++
	if p.cfg.Limits.MaxNestingDepth > 0 && p.depth > p.cfg.Limits.MaxNestingDepth {
		p.depth--
		return nil, &recovery.FormatError{Op: "parse", Err: scanner.ErrTooDeep}
	}
	items, err := scanner.New(inner, p.scannerConfig()).All()
	if err != nil {
		p.depth--
		return nil, &recovery.FormatError{Op: "parse", Err: err}
	}
	return items, nil
}

func (p *valueParser) leave() { p.depth-- }

// single checks that text is exactly one item of the expected type, so that
// "(a) (b)" or "[1] [2]" are not taken for one value.
func (p *valueParser) single(text string, want scanner.ItemType) error {
	s := scanner.New(text, p.scannerConfig())
	it, err := s.Next()
	if err != nil {
		return &recovery.FormatError{Op: "parse", Err: err}
	}
	if it.Type != want || len(it.Text) != len(text) {
		return invalid(want.String(), text, errors.New("trailing content"))
	}
	return nil
}

// sequence parses items in order. Scalar tokens pass through a fixed
// three-slot window so that "N G R" collapses into one reference while
// "N G M" stays three numbers.
func (p *valueParser) sequence(items []scanner.Item) ([]raw.Object, error) {
	out := make([]raw.Object, 0, len(items))
	var window [3]scanner.Item
	n := 0
	shift := func() error {
		v, err := p.item(window[0])
		if err != nil {
			return err
		}
		out = append(out, v)
		window[0], window[1] = window[1], window[2]
		n--
		return nil
	}
	for _, it := range items {
		if it.Type != scanner.ItemToken && it.Type != scanner.ItemName {
			for n > 0 {
				if err := shift(); err != nil {
					return nil, err
				}
			}
			v, err := p.item(it)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			continue
		}
		window[n] = it
		n++
		if n < 3 {
			continue
		}
		if isRefWindow(window) {
			num, err1 := strconv.Atoi(window[0].Text)
			gen, err2 := strconv.Atoi(window[1].Text)
			if err := errors.Join(err1, err2); err != nil {
				return nil, invalid("reference", window[0].Text+" "+window[1].Text+" R", err)
			}
			out = append(out, raw.Ref(num, gen))
			n = 0
			continue
		}
		if err := shift(); err != nil {
			return nil, err
		}
	}
	for n > 0 {
		if err := shift(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *valueParser) item(it scanner.Item) (raw.Object, error) {
	return p.parse(it.Text, scanner.Classify(it.Text))
}

func isRefWindow(w [3]scanner.Item) bool {
	return w[2].Type == scanner.ItemToken && w[2].Text == "R" &&
		w[0].Type == scanner.ItemToken && isUint(w[0].Text) &&
		w[1].Type == scanner.ItemToken && isUint(w[1].Text)
}

// dict parses a dictionary as a flat sequence and folds it into pairs.
func (p *valueParser) dict(text string) (*raw.DictObj, error) {
	if err := p.single(text, scanner.ItemDict); err != nil {
		return nil, err
	}
	items, err := p.enter(text[2 : len(text)-2])
	if err != nil {
		return nil, err
	}
	defer p.leave()
	vals, err := p.sequence(items)
	if err != nil {
		return nil, err
	}
	if len(vals)%2 != 0 {
		return nil, invalid("dictionary", text, fmt.Errorf("odd number of entries (%d)", len(vals)))
	}
	d := raw.Dict()
	for i := 0; i < len(vals); i += 2 {
		key, ok := vals[i].(raw.NameObj)
		if !ok {
			return nil, invalid("dictionary", text, fmt.Errorf("key %d is a %s, not a name", i/2, vals[i].Type()))
		}
		d.Set(key.Val, vals[i+1])
	}
	return d, nil
}

func parseNumber(text string) (raw.Object, error) {
	if !strings.ContainsRune(text, '.') {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return raw.NumberObj{I: i, IsInt: true, Lit: text}, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, invalid("number", text, err)
	}
	return raw.NumberObj{F: f, Lit: text}, nil
}

func invalid(what, text string, err error) error {
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return &recovery.FormatError{Op: "parse " + what, Err: fmt.Errorf("%q: %w", text, err)}
}

func isUint(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

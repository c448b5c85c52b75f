package raw

import (
	"encoding/hex"
	"sort"
	"strconv"
)

// Name object. Val excludes the leading slash and keeps #xx escapes as written.
type NameObj struct{ Val string }

func (n NameObj) Type() string     { return TypeName }
func (n NameObj) IsIndirect() bool { return false }
func (n NameObj) Value() string    { return n.Val }
func (NameObj) object()            {}

// Number object. Lit holds the source lexeme when the number was parsed,
// so that rendering reproduces it exactly.
type NumberObj struct {
	I     int64
	F     float64
	IsInt bool
	Lit   string
}

func (n NumberObj) Type() string     { return TypeNumber }
func (n NumberObj) IsIndirect() bool { return false }
func (n NumberObj) Int() int64 {
	if n.IsInt {
		return n.I
	}
	return int64(n.F)
}
func (n NumberObj) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}
func (n NumberObj) IsInteger() bool { return n.IsInt }
func (NumberObj) object()           {}

// String returns the canonical text for the number.
func (n NumberObj) String() string {
	if n.Lit != "" {
		return n.Lit
	}
	if n.IsInt {
		return strconv.FormatInt(n.I, 10)
	}
	return strconv.FormatFloat(n.F, 'f', -1, 64)
}

// Boolean object
type BoolObj struct{ V bool }

func (b BoolObj) Type() string     { return TypeBool }
func (b BoolObj) IsIndirect() bool { return false }
func (b BoolObj) Value() bool      { return b.V }
func (BoolObj) object()            {}

// Null object
type NullObj struct{}

func (n NullObj) Type() string     { return TypeNull }
func (n NullObj) IsIndirect() bool { return false }
func (NullObj) object()            {}

// StringObj is a literal string. Raw is the content between the outer
// parentheses exactly as written, escapes included.
type StringObj struct{ Raw []byte }

func (s StringObj) Type() string     { return TypeString }
func (s StringObj) IsIndirect() bool { return false }
func (s StringObj) Value() []byte    { return s.Raw }
func (s StringObj) IsHex() bool      { return false }
func (StringObj) object()            {}

// Text returns the string bytes with escape sequences processed.
func (s StringObj) Text() []byte { return unescapeLiteral(s.Raw) }

// HexStringObj is a hex string. Digits holds the characters between the
// angle brackets exactly as written.
type HexStringObj struct{ Digits []byte }

func (h HexStringObj) Type() string     { return TypeHex }
func (h HexStringObj) IsIndirect() bool { return false }
func (h HexStringObj) Value() []byte    { return h.Digits }
func (h HexStringObj) IsHex() bool      { return true }
func (HexStringObj) object()            {}

// Bytes decodes the hex digits, ignoring whitespace and padding an odd digit count with 0.
func (h HexStringObj) Bytes() []byte {
	digits := make([]byte, 0, len(h.Digits)+1)
	for _, c := range h.Digits {
		if isHexDigit(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, hex.DecodedLen(len(digits)))
	n, _ := hex.Decode(out, digits)
	return out[:n]
}

// Array object
type ArrayObj struct{ Items []Object }

func (a *ArrayObj) Type() string     { return TypeArray }
func (a *ArrayObj) IsIndirect() bool { return false }
func (a *ArrayObj) Get(i int) (Object, bool) {
	if i < 0 || i >= len(a.Items) {
		return nil, false
	}
	return a.Items[i], true
}
func (a *ArrayObj) Len() int        { return len(a.Items) }
func (a *ArrayObj) Append(o Object) { a.Items = append(a.Items, o) }
func (*ArrayObj) object()           {}

// Dictionary object. Keys are names without the leading slash.
type DictObj struct{ KV map[string]Object }

func (d *DictObj) Type() string     { return TypeDict }
func (d *DictObj) IsIndirect() bool { return false }
func (d *DictObj) Get(key string) (Object, bool) {
	if d == nil {
		return nil, false
	}
	o, ok := d.KV[key]
	return o, ok
}
func (d *DictObj) Set(key string, value Object) {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key] = value
}
func (d *DictObj) Delete(key string) { delete(d.KV, key) }

// Keys returns the dictionary keys in sorted order.
func (d *DictObj) Keys() []string {
	keys := make([]string, 0, len(d.KV))
	for k := range d.KV {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
func (d *DictObj) Len() int { return len(d.KV) }
func (*DictObj) object()    {}

// Name returns the value of key when it is a name.
func (d *DictObj) Name(key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}
	n, ok := v.(NameObj)
	return n.Val, ok
}

// HasName reports whether key holds the given name, e.g. HasName("Type", "Page").
func (d *DictObj) HasName(key, value string) bool {
	n, ok := d.Name(key)
	return ok && n == value
}

// StreamObj is a stream: metadata dictionary, raw payload, and the decoded
// payload when a decode has been performed.
type StreamObj struct {
	Dict    *DictObj
	Data    []byte
	Decoded []byte
}

func (s *StreamObj) Type() string         { return TypeStream }
func (s *StreamObj) IsIndirect() bool     { return false }
func (s *StreamObj) Dictionary() *DictObj { return s.Dict }
func (s *StreamObj) RawData() []byte      { return s.Data }
func (s *StreamObj) Length() int64        { return int64(len(s.Data)) }
func (*StreamObj) object()                {}

// RefObj is an indirect reference that has not been resolved against a table.
type RefObj struct{ R ObjectRef }

func (r RefObj) Type() string     { return TypeRef }
func (r RefObj) IsIndirect() bool { return true }
func (r RefObj) Ref() ObjectRef   { return r.R }
func (RefObj) object()            {}

// LinkObj is a resolved reference. The target is looked up through the
// owning table on every access, so later edits to the target are visible.
type LinkObj struct {
	R     ObjectRef
	table Resolver
}

func (l LinkObj) Type() string     { return TypeLink }
func (l LinkObj) IsIndirect() bool { return true }
func (l LinkObj) Ref() ObjectRef   { return l.R }
func (LinkObj) object()            {}

// Target returns the current value of the linked object.
func (l LinkObj) Target() (Object, bool) {
	if l.table == nil {
		return nil, false
	}
	return l.table.Lookup(l.R)
}

// Bound reports whether the link has a table to resolve against.
func (l LinkObj) Bound() bool { return l.table != nil }

// Helpers
func NameLiteral(v string) NameObj                    { return NameObj{Val: v} }
func NumberInt(i int64) NumberObj                     { return NumberObj{I: i, IsInt: true} }
func NumberFloat(f float64) NumberObj                 { return NumberObj{F: f, IsInt: false} }
func Bool(v bool) BoolObj                             { return BoolObj{V: v} }
func NewArray(items ...Object) *ArrayObj              { return &ArrayObj{Items: items} }
func Dict() *DictObj                                  { return &DictObj{KV: make(map[string]Object)} }
func NewStream(dict *DictObj, data []byte) *StreamObj { return &StreamObj{Dict: dict, Data: data} }
func Ref(num, gen int) RefObj                         { return RefObj{R: ObjectRef{Num: num, Gen: gen}} }
func Link(ref ObjectRef, table Resolver) LinkObj      { return LinkObj{R: ref, table: table} }
func HexStr(b []byte) HexStringObj {
	dst := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(dst, b)
	return HexStringObj{Digits: toUpper(dst)}
}

// Numbers builds an array of real numbers.
func Numbers(vals ...float64) *ArrayObj {
	arr := &ArrayObj{Items: make([]Object, 0, len(vals))}
	for _, v := range vals {
		arr.Items = append(arr.Items, NumberFloat(v))
	}
	return arr
}

// RefOf returns the reference carried by a RefObj or LinkObj.
func RefOf(o Object) (ObjectRef, bool) {
	switch v := o.(type) {
	case RefObj:
		return v.R, true
	case LinkObj:
		return v.R, true
	}
	return ObjectRef{}, false
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func toUpper(b []byte) []byte {
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return b
}

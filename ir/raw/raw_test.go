package raw

import (
	"bytes"
	"testing"
)

type table map[ObjectRef]Object

func (t table) Lookup(ref ObjectRef) (Object, bool) {
	o, ok := t[ref]
	return o, ok
}

func TestTextStrings(t *testing.T) {
	lit := TextString("a (b) \\ c\n")
	if s, ok := lit.(StringObj); !ok || string(s.Raw) != `a \(b\) \\ c\n` {
		t.Fatalf("unexpected literal %#v", lit)
	}
	if got, _ := DecodeText(lit); got != "a (b) \\ c\n" {
		t.Fatalf("literal decoded to %q", got)
	}

	utf := TextString("Grüße")
	h, ok := utf.(HexStringObj)
	if !ok || !bytes.HasPrefix(h.Digits, []byte("FEFF")) {
		t.Fatalf("expected a UTF-16BE hex string, got %#v", utf)
	}
	if got, _ := DecodeText(utf); got != "Grüße" {
		t.Fatalf("UTF-16 decoded to %q", got)
	}

	if got, _ := DecodeText(StringObj{Raw: []byte(`\101\102C\
D`)}); got != "ABCD" {
		t.Fatalf("escapes decoded to %q", got)
	}
	if _, ok := DecodeText(NumberInt(3)); ok {
		t.Fatalf("a number is not text")
	}
}

func TestHexBytes(t *testing.T) {
	if got := (HexStringObj{Digits: []byte("48 65 6c 6")}).Bytes(); string(got) != "Hel`" {
		t.Fatalf("got %q", got)
	}
	if got := HexStr([]byte{0xab, 0x01}); string(got.Digits) != "AB01" {
		t.Fatalf("got %s", got.Digits)
	}
}

func TestEqual(t *testing.T) {
	a := Dict()
	a.Set("Kids", NewArray(Ref(3, 0), NumberInt(1)))
	a.Set("Rect", Numbers(0, 1.5))
	b := Dict()
	b.Set("Kids", NewArray(Link(ObjectRef{Num: 3}, nil), NumberFloat(1)))
	b.Set("Rect", NewArray(NumberInt(0), NumberObj{F: 1.5, Lit: "1.50"}))
	if !Equal(a, b) {
		t.Fatalf("expected equal values")
	}
	b.Set("Extra", NullObj{})
	if Equal(a, b) {
		t.Fatalf("extra key ignored")
	}
	for _, pair := range [][2]Object{
		{NameLiteral("A"), Literal("A")},
		{Ref(1, 0), Ref(1, 1)},
		{Bool(true), Bool(false)},
		{NewStream(Dict(), []byte("x")), NewStream(Dict(), []byte("y"))},
	} {
		if Equal(pair[0], pair[1]) {
			t.Errorf("%#v should differ from %#v", pair[0], pair[1])
		}
	}
}

func TestCloneIsShallow(t *testing.T) {
	inner := NewArray(NumberInt(1))
	d := Dict()
	d.Set("Inner", inner)
	c := Clone(d).(*DictObj)
	c.Set("Added", Bool(true))
	if _, ok := d.Get("Added"); ok {
		t.Fatalf("clone shares the outer map")
	}
	if v, _ := c.Get("Inner"); v != Object(inner) {
		t.Fatalf("nested containers should be shared")
	}
	arr := NewArray(NumberInt(1))
	ca := Clone(arr).(*ArrayObj)
	ca.Append(NumberInt(2))
	if arr.Len() != 1 {
		t.Fatalf("clone shares the item slice")
	}
}

func TestLinkLooksUpOnEveryAccess(t *testing.T) {
	tbl := table{{Num: 2}: NumberInt(1)}
	l := Link(ObjectRef{Num: 2}, tbl)
	tbl[ObjectRef{Num: 2}] = NumberInt(5)
	if v, ok := l.Target(); !ok || !Equal(v, NumberInt(5)) {
		t.Fatalf("link did not see the new value: %v", v)
	}
	if _, ok := Link(ObjectRef{Num: 2}, nil).Target(); ok {
		t.Fatalf("unbound link resolved")
	}
	if ref, ok := RefOf(l); !ok || ref.String() != "2 0 R" {
		t.Fatalf("RefOf = %v", ref)
	}
}

func TestDictHelpers(t *testing.T) {
	var nilDict *DictObj
	if _, ok := nilDict.Get("Type"); ok || nilDict.HasName("Type", "Page") {
		t.Fatalf("nil dictionary should be empty")
	}
	d := Dict()
	d.Set("Type", NameLiteral("Page"))
	d.Set("A", NullObj{})
	if !d.HasName("Type", "Page") || d.HasName("A", "Page") {
		t.Fatalf("HasName")
	}
	if keys := d.Keys(); len(keys) != 2 || keys[0] != "A" {
		t.Fatalf("keys not sorted: %v", keys)
	}
	if (ObjectRef{Num: 0}).Valid() || !(ObjectRef{Num: 1}).Valid() || (ObjectRef{Num: 1, Gen: -1}).Valid() {
		t.Fatalf("Valid")
	}
}

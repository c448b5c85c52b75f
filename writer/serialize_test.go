package writer

import (
	"strings"
	"testing"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/parser"
)

func TestRenderScalarsExactly(t *testing.T) {
	for _, s := range []string{"12", "-3.5", ".5", "+7", "true", "false", "null", "/Name", "/A#20B", "7 0 R", "(a \\(b\\))", "<0aFF>"} {
		v, err := parser.ParseValue(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got := string(Render(v)); got != s {
			t.Errorf("render(parse(%q)) = %q", s, got)
		}
	}
}

func TestRenderCompoundRoundTrip(t *testing.T) {
	inner := raw.Dict()
	inner.Set("S", raw.NameLiteral("URI"))
	inner.Set("URI", raw.Literal("https://example.com/a(b)"))
	d := raw.Dict()
	d.Set("Type", raw.NameLiteral("Page"))
	d.Set("Kids", raw.NewArray(raw.Ref(3, 0), raw.Ref(4, 1)))
	d.Set("Count", raw.NumberInt(2))
	d.Set("Rect", raw.Numbers(0, 0.5, 612, 792.25))
	d.Set("Open", raw.Bool(false))
	d.Set("Missing", raw.NullObj{})
	d.Set("ID", raw.HexStr([]byte{0xde, 0xad}))
	d.Set("A", inner)
	d.Set("Nested", raw.NewArray(raw.NewArray(), raw.Dict(), raw.NumberInt(7), raw.NumberInt(0), raw.NumberInt(5)))

	text := Render(d)
	got, err := parser.ParseValue(string(text))
	if err != nil {
		t.Fatalf("parse %s: %v", text, err)
	}
	if !raw.Equal(got, d) {
		t.Fatalf("round trip changed the value:\n%s\n%s", text, Render(got))
	}
	if !strings.HasPrefix(string(text), "<< /A << /S /URI") {
		t.Fatalf("keys not sorted: %s", text)
	}
}

func TestRenderLinkAsReference(t *testing.T) {
	l := raw.Link(raw.ObjectRef{Num: 12, Gen: 3}, nil)
	if got := string(Render(raw.NewArray(l))); got != "[12 3 R]" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderStream(t *testing.T) {
	dict := raw.Dict()
	dict.Set("Length", raw.Ref(9, 0))
	s := raw.NewStream(dict, []byte("q Q"))
	text := string(Render(s))
	if text != "<< /Length 3 >>\nstream\nq Q\nendstream" {
		t.Fatalf("unexpected stream text %q", text)
	}
	v, err := parser.ParseValue(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, ok := v.(*raw.StreamObj)
	if !ok || string(got.Data) != "q Q" {
		t.Fatalf("payload not preserved: %#v", v)
	}
	if _, isRef := dict.KV["Length"].(raw.RefObj); !isRef {
		t.Fatalf("render modified the stream dictionary")
	}
}

func TestRenderObjectAndTrailer(t *testing.T) {
	if got := string(RenderObject(raw.ObjectRef{Num: 4, Gen: 1}, raw.NumberInt(5))); got != "4 1 obj\n5\nendobj\n" {
		t.Fatalf("object: %q", got)
	}
	tr := raw.Dict()
	tr.Set("Root", raw.Ref(1, 0))
	if got := string(RenderTrailer(tr)); got != "trailer\n<< /Root 1 0 R >>\n" {
		t.Fatalf("trailer: %q", got)
	}
	if got := string(Render(raw.NameLiteral("a b/c"))); got != "/a#20b#2Fc" {
		t.Fatalf("name escaping: %q", got)
	}
}

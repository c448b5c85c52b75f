package xref_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/xref"
)

func buildSimplePDF() ([]byte, map[int]int64, int64) {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n")

	offsets := make(map[int]int64)

	offsets[1] = int64(buf.Len())
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = int64(buf.Len())
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")

	xrefOffset := int64(buf.Len())
	buf.WriteString("xref\n0 3\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 2; i++ {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", offsets[i]))
	}
	buf.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	buf.WriteString("startxref\n")
	buf.WriteString(fmt.Sprintf("%d\n", xrefOffset))
	buf.WriteString("%%EOF\n")

	return buf.Bytes(), offsets, xrefOffset
}

// appendUpdate adds an incremental section that redefines object 2.
func appendUpdate(base []byte, prev int64) ([]byte, int64) {
	buf := bytes.NewBuffer(append([]byte(nil), base...))
	off := int64(buf.Len())
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 /Updated true >>\nendobj\n")
	xrefOffset := int64(buf.Len())
	s := xref.NewSection()
	s.Add(raw.ObjectRef{Num: 2}, off)
	s.WriteTo(buf)
	fmt.Fprintf(buf, "trailer\n<< /Size 3 /Root 1 0 R /Prev %d >>\nstartxref\n%d\n%%%%EOF\n", prev, xrefOffset)
	return buf.Bytes(), xrefOffset
}

func TestFindStartXRefUsesLast(t *testing.T) {
	pdf, _, first := buildSimplePDF()
	got, err := xref.FindStartXRef(pdf)
	if err != nil || got != first {
		t.Fatalf("expected %d, got %d (%v)", first, got, err)
	}
	updated, second := appendUpdate(pdf, first)
	if got, _ := xref.FindStartXRef(updated); got != second {
		t.Fatalf("expected last startxref %d, got %d", second, got)
	}
	if _, err := xref.FindStartXRef([]byte("%PDF-1.4\n")); err == nil {
		t.Fatalf("expected error without startxref")
	}
}

func TestParseSection(t *testing.T) {
	pdf, offsets, start := buildSimplePDF()
	table, err := xref.ParseSection(pdf, start)
	if err != nil {
		t.Fatalf("parse section: %v", err)
	}
	for obj, off := range offsets {
		gotOff, gen, ok := table.Lookup(obj)
		if !ok {
			t.Fatalf("missing object %d", obj)
		}
		if gotOff != off || gen != 0 {
			t.Fatalf("object %d: expected (%d,0), got (%d,%d)", obj, off, gotOff, gen)
		}
	}
	if _, _, ok := table.Lookup(0); ok {
		t.Fatalf("free entry reported as in use")
	}
	if got := table.Objects(); len(got) != 2 || got[0] != 1 {
		t.Fatalf("unexpected objects %v", got)
	}
	if _, ok := table.Prev(); ok {
		t.Fatalf("first section has no /Prev")
	}
	if _, err := xref.ParseSection(pdf, 3); !recovery.IsFormat(err) {
		t.Fatalf("expected format error at a bad offset, got %v", err)
	}
}

func TestSectionSubsections(t *testing.T) {
	s := xref.NewSection()
	s.Add(raw.ObjectRef{Num: 7}, 700)
	s.Add(raw.ObjectRef{Num: 3}, 300)
	s.Add(raw.ObjectRef{Num: 4, Gen: 2}, 400)
	s.Add(raw.ObjectRef{Num: 3}, 333)

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := strings.Join([]string{
		"xref",
		"0 1",
		"0000000000 65535 f ",
		"3 2",
		"0000000333 00000 n ",
		"0000000400 00002 n ",
		"7 1",
		"0000000700 00000 n ",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected section:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestChainFollowsPrev(t *testing.T) {
	pdf, _, first := buildSimplePDF()
	updated, _ := appendUpdate(pdf, first)
	chain, err := xref.Chain(updated, 0)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(chain))
	}
	if prev, ok := chain[0].Prev(); !ok || prev != first {
		t.Fatalf("newest section should point at %d, got %d", first, prev)
	}
	if _, ok := chain[1].Trailer.Get("Prev"); ok {
		t.Fatalf("oldest trailer picked up a /Prev")
	}
}

func TestChainDetectsLoop(t *testing.T) {
	pdf, _, first := buildSimplePDF()
	looped, second := appendUpdate(pdf, first)
	looped, _ = appendUpdate(looped, second)
	looped = bytes.Replace(looped, []byte(fmt.Sprintf("/Prev %d", first)), []byte(fmt.Sprintf("/Prev %d", second)), 1)
	if _, err := xref.Chain(looped, 0); !recovery.IsFormat(err) {
		t.Fatalf("expected format error for /Prev loop, got %v", err)
	}
}

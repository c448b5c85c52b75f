package xref

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/parser"
	"github.com/wudi/pdfedit/recovery"
)

var startXRefRE = regexp.MustCompile(`startxref\s+(\d+)`)

// FindStartXRef returns the offset named by the last "startxref" in data.
func FindStartXRef(data []byte) (int64, error) {
	matches := startXRefRE.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return 0, errors.New("startxref not found")
	}
	off, err := strconv.ParseInt(string(matches[len(matches)-1][1]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse startxref: %w", err)
	}
	return off, nil
}

// Entry is one in-use object in a cross-reference section.
type Entry struct {
	Ref    raw.ObjectRef
	Offset int64
}

// Section is a classic cross-reference section under construction.
// Adding the same object number twice keeps the later entry.
type Section struct {
	entries map[int]Entry
}

func NewSection() *Section {
	return &Section{entries: make(map[int]Entry)}
}

func (s *Section) Add(ref raw.ObjectRef, offset int64) {
	s.entries[ref.Num] = Entry{Ref: ref, Offset: offset}
}

func (s *Section) Len() int { return len(s.entries) }

// Subsections groups the entries into runs of consecutive object numbers,
// in ascending order.
func (s *Section) Subsections() [][]Entry {
	nums := make([]int, 0, len(s.entries))
	for n := range s.entries {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	var out [][]Entry
	for i, n := range nums {
		if i == 0 || n != nums[i-1]+1 {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], s.entries[n])
	}
	return out
}

// WriteTo writes the section starting with the "xref" keyword. Object 0 is
// always listed as the head of the free list in its own subsection.
func (s *Section) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("xref\n0 1\n0000000000 65535 f \n")
	for _, sub := range s.Subsections() {
		fmt.Fprintf(&buf, "%d %d\n", sub[0].Ref.Num, len(sub))
		for _, e := range sub {
			fmt.Fprintf(&buf, "%010d %05d n \n", e.Offset, e.Ref.Gen)
		}
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

type entry struct {
	offset int64
	gen    int
	inUse  bool
}

// Table is a parsed classic cross-reference section.
type Table struct {
	entries map[int]entry
	Trailer *raw.DictObj
}

func (t *Table) Lookup(objNum int) (offset int64, gen int, found bool) {
	e, ok := t.entries[objNum]
	if !ok || !e.inUse {
		return 0, 0, false
	}
	return e.offset, e.gen, true
}

func (t *Table) Objects() []int {
	out := make([]int, 0, len(t.entries))
	for k, e := range t.entries {
		if e.inUse {
			out = append(out, k)
		}
	}
	sort.Ints(out)
	return out
}

// Prev returns the trailer's /Prev offset.
func (t *Table) Prev() (int64, bool) {
	v, ok := t.Trailer.Get("Prev")
	if !ok {
		return 0, false
	}
	n, ok := v.(raw.NumberObj)
	if !ok || !n.IsInteger() {
		return 0, false
	}
	return n.Int(), true
}

// ParseSection reads the classic section at offset and the trailer after it.
func ParseSection(data []byte, offset int64) (*Table, error) {
	if offset < 0 || offset >= int64(len(data)) {
		return nil, recovery.Formatf("xref", "offset out of range: %d", offset)
	}
	tableData := data[offset:]
	sc := bufio.NewScanner(bytes.NewReader(tableData))
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "xref" {
		return nil, recovery.Formatf("xref", "xref keyword not found at %d", offset)
	}

	entries := make(map[int]entry)
	sawTrailer := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "trailer") {
			sawTrailer = true
			break
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, recovery.Formatf("xref", "invalid subsection header: %q", line)
		}
		startObj, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, recovery.Formatf("xref", "parse subsection start: %v", err)
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, recovery.Formatf("xref", "parse subsection count: %v", err)
		}

		for i := 0; i < count; i++ {
			if !sc.Scan() {
				return nil, recovery.Formatf("xref", "unexpected end of section")
			}
			fields := strings.Fields(sc.Text())
			if len(fields) < 3 {
				return nil, recovery.Formatf("xref", "invalid entry: %q", sc.Text())
			}
			off, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, recovery.Formatf("xref", "parse entry offset: %v", err)
			}
			gen, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, recovery.Formatf("xref", "parse entry generation: %v", err)
			}
			entries[startObj+i] = entry{offset: off, gen: gen, inUse: fields[2] == "n"}
		}
	}
	if !sawTrailer {
		return nil, &recovery.FormatError{Op: "xref", Err: recovery.ErrNoTrailer}
	}

	// only the trailer belonging to this section
	end := bytes.Index(tableData, []byte("startxref"))
	if end < 0 {
		return nil, &recovery.FormatError{Op: "xref", Err: recovery.ErrNoTrailer}
	}
	trailer, _, err := parser.ParseTrailer(tableData[:end+len("startxref")])
	if err != nil {
		return nil, err
	}
	return &Table{entries: entries, Trailer: trailer}, nil
}

// Chain walks the /Prev links from the last startxref and returns the
// sections newest first. maxDepth bounds the walk; 0 means no bound.
func Chain(data []byte, maxDepth int) ([]*Table, error) {
	off, err := FindStartXRef(data)
	if err != nil {
		return nil, &recovery.FormatError{Op: "xref", Err: err}
	}
	seen := make(map[int64]bool)
	var out []*Table
	for {
		if seen[off] {
			return out, recovery.Formatf("xref", "/Prev loop at offset %d", off)
		}
		if maxDepth > 0 && len(out) >= maxDepth {
			return out, recovery.Formatf("xref", "more than %d sections", maxDepth)
		}
		seen[off] = true
		t, err := ParseSection(data, off)
		if err != nil {
			return out, err
		}
		out = append(out, t)
		prev, ok := t.Prev()
		if !ok {
			return out, nil
		}
		off = prev
	}
}

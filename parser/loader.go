package parser

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/scanner"
)

// Entry is one indirect object found in the byte content.
type Entry struct {
	Ref    raw.ObjectRef
	Value  raw.Object
	Offset int64
}

// Index is the result of scanning a document for indirect objects.
type Index struct {
	// Entries in file order. A later entry for the same ref supersedes an earlier one.
	Entries     []Entry
	Diagnostics []recovery.Diagnostic
}

var (
	objHeaderRE = regexp.MustCompile(`(\d+)\s+(\d+)\s+obj\b`)
	trailerRE   = regexp.MustCompile(`(?s)trailer(.*?)startxref`)
)

// IndexObjects locates every top-level "N G obj ... endobj" span and parses
// it. A span that fails is reported to cfg.Recovery; unless the strategy
// answers ActionFail the span is skipped and indexing continues.
func IndexObjects(ctx context.Context, data []byte, cfg Config) (*Index, error) {
	cfg = cfg.withDefaults()
	idx := &Index{}
	pos := 0
	for pos < len(data) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loc := objHeaderRE.FindSubmatchIndex(data[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		if start > 0 && !scanner.IsWhitespace(data[start-1]) && !scanner.IsDelimiter(data[start-1]) {
			pos = start + 1
			continue
		}
		bodyStart := pos + loc[1]
		num, errNum := strconv.Atoi(string(data[pos+loc[2] : pos+loc[3]]))
		gen, errGen := strconv.Atoi(string(data[pos+loc[4] : pos+loc[5]]))
		where := recovery.Location{ByteOffset: int64(start), ObjectNum: num, ObjectGen: gen, Component: "parser:object"}

		bodyEnd, next, ok := findEndobj(data, bodyStart)
		if !ok {
			if err := idx.report(ctx, cfg, where, recovery.Formatf("index", "object %d %d has no endobj", num, gen)); err != nil {
				return nil, err
			}
			pos = bodyStart
			continue
		}
		pos = next

		ref := raw.ObjectRef{Num: num, Gen: gen}
		if errNum != nil || errGen != nil || !ref.Valid() {
			if err := idx.report(ctx, cfg, where, recovery.Formatf("index", "invalid object id %q", data[start:bodyStart])); err != nil {
				return nil, err
			}
			continue
		}
		obj, warnings, err := ParseObjectBody(string(data[bodyStart:bodyEnd]), cfg)
		if err != nil {
			if err := idx.report(ctx, cfg, where, fmt.Errorf("object %d %d: %w", num, gen, err)); err != nil {
				return nil, err
			}
			continue
		}
		for _, w := range warnings {
			idx.Diagnostics = append(idx.Diagnostics, recovery.Diagnostic{Location: where, Err: w})
		}
		idx.Entries = append(idx.Entries, Entry{Ref: ref, Value: obj, Offset: int64(start)})
	}
	return idx, nil
}

func (idx *Index) report(ctx context.Context, cfg Config, where recovery.Location, err error) error {
	if cfg.Recovery.OnError(ctx, err, where) == recovery.ActionFail {
		return err
	}
	idx.Diagnostics = append(idx.Diagnostics, recovery.Diagnostic{Location: where, Err: err})
	return nil
}

// findEndobj returns the end of the object body starting at from and the
// position just after its "endobj" keyword. When the body opens a stream the
// search for "endobj" starts after "endstream", so payload bytes that happen
// to spell "endobj" do not cut the span short.
func findEndobj(data []byte, from int) (bodyEnd, next int, ok bool) {
	e := bytes.Index(data[from:], []byte("endobj"))
	if e < 0 {
		return 0, 0, false
	}
	seg := data[from : from+e]
	if si := streamKeyword(seg); si >= 0 && !bytes.Contains(seg[si:], []byte("endstream")) {
		es := bytes.Index(data[from+si:], []byte("endstream"))
		if es < 0 {
			return 0, 0, false
		}
		after := from + si + es
		e2 := bytes.Index(data[after:], []byte("endobj"))
		if e2 < 0 {
			return 0, 0, false
		}
		return after + e2, after + e2 + len("endobj"), true
	}
	return from + e, from + e + len("endobj"), true
}

// streamKeyword finds a "stream" keyword that is not the tail of "endstream".
func streamKeyword(seg []byte) int {
	off := 0
	for {
		i := bytes.Index(seg[off:], []byte("stream"))
		if i < 0 {
			return -1
		}
		i += off
		if i < 3 || !bytes.Equal(seg[i-3:i], []byte("end")) {
			return i
		}
		off = i + len("stream")
	}
}

// ParseTrailer parses the last "trailer ... startxref" dictionary.
func ParseTrailer(data []byte) (*raw.DictObj, int64, error) {
	matches := trailerRE.FindAllSubmatchIndex(data, -1)
	if len(matches) == 0 {
		return nil, 0, &recovery.FormatError{Op: "trailer", Err: recovery.ErrNoTrailer}
	}
	m := matches[len(matches)-1]
	v, err := ParseValue(string(data[m[2]:m[3]]))
	if err != nil {
		return nil, 0, &recovery.FormatError{Op: "trailer", Err: err}
	}
	d, ok := v.(*raw.DictObj)
	if !ok {
		return nil, 0, recovery.Formatf("trailer", "trailer is a %s, not a dictionary", v.Type())
	}
	return d, int64(m[0]), nil
}

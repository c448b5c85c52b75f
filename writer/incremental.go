package writer

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/wudi/pdfedit/document"
	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/xref"
)

// Incremental appends a document's queued edits to its content.
type Incremental struct {
	interceptors []Interceptor
	keepID       bool
}

func NewIncremental(opts ...Option) *Incremental {
	w := &Incremental{}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Save returns the document content followed by an update holding every
// queued edit, then commits the output to the document. With nothing
// queued the content is returned as it is.
func (w *Incremental) Save(ctx context.Context, doc *document.Document) (out []byte, err error) {
	ctx, span := doc.Tracer().StartSpan(ctx, observability.SpanSave)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	base := doc.Content()
	edits := doc.Edits()
	if len(edits) == 0 {
		return base, nil
	}
	prev, err := xref.FindStartXRef(base)
	if err != nil {
		return nil, &recovery.FormatError{Op: "save", Err: err}
	}

	var buf bytes.Buffer
	buf.Grow(len(base) + 512*len(edits))
	buf.Write(base)
	if n := len(base); n > 0 && base[n-1] != '\n' && base[n-1] != '\r' {
		buf.WriteByte('\n')
	}
	updateStart := buf.Len()

	// every queued edit is written; the section keeps the last offset per id
	section := xref.NewSection()
	for _, q := range edits {
		if q.Trailer {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, ic := range w.interceptors {
			if err := ic.BeforeWrite(ctx, q.Ref, q.Value); err != nil {
				return nil, fmt.Errorf("before write %s: %w", q.Ref, err)
			}
		}
		offset := int64(buf.Len())
		n, _ := buf.Write(RenderObject(q.Ref, q.Value))
		section.Add(q.Ref, offset)
		for _, ic := range w.interceptors {
			if err := ic.AfterWrite(ctx, q.Ref, int64(n)); err != nil {
				return nil, fmt.Errorf("after write %s: %w", q.Ref, err)
			}
		}
	}

	trailer := raw.Clone(doc.Trailer()).(*raw.DictObj)
	trailer.Set("Prev", raw.NumberInt(prev))
	trailer.Set("Size", raw.NumberInt(int64(doc.NextObjectNumber()-1)))
	trailer.Delete("XRefStm")
	if !w.keepID {
		refreshID(trailer, buf.Bytes()[updateStart:])
	}

	xrefOffset := int64(buf.Len())
	if _, err := section.WriteTo(&buf); err != nil {
		return nil, err
	}
	buf.Write(RenderTrailer(trailer))
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	out = buf.Bytes()
	doc.Commit(out)
	doc.Logger().Info("incremental update written",
		observability.Int("objects", section.Len()),
		observability.Int("queued", len(edits)),
		observability.Int64("startxref", xrefOffset),
		observability.Int64("prev", prev),
		observability.Int("bytes", len(out)-len(base)))
	span.SetTag("objects", section.Len())
	return out, nil
}

// Write saves doc and writes the whole file to out.
func (w *Incremental) Write(ctx context.Context, doc *document.Document, out io.Writer) error {
	data, err := w.Save(ctx, doc)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// refreshID replaces the second /ID element with a fingerprint of the
// update. The first element identifies the original file and is kept.
func refreshID(trailer *raw.DictObj, update []byte) {
	v, ok := trailer.Get("ID")
	if !ok {
		return
	}
	ids, ok := v.(*raw.ArrayObj)
	if !ok || ids.Len() != 2 {
		return
	}
	sum := blake2b.Sum256(update)
	trailer.Set("ID", raw.NewArray(ids.Items[0], raw.HexStr(sum[:16])))
}

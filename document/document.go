// Package document holds a loaded PDF as a table of indirect objects, with
// references resolved into shared links, a flattened page list and a queue
// of pending edits.
//
// A Document is not safe for concurrent use.
package document

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/wudi/pdfedit/filters"
	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/parser"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/xref"
)

type Document struct {
	content []byte
	objects map[raw.ObjectRef]raw.Object
	trailer *raw.DictObj
	pages   []raw.ObjectRef
	queue   []Queued

	nextNum int
	nextGen int

	diagnostics []recovery.Diagnostic
	cfg         config
	log         observability.Logger
}

// Load indexes data and builds a Document. Damaged object spans are skipped
// and reported through Diagnostics; a missing trailer, root or page list
// fails the load with a *recovery.FormatError.
func Load(ctx context.Context, data []byte, opts ...Option) (doc *Document, err error) {
	cfg := newConfig(opts)
	ctx, span := cfg.tracer.StartSpan(ctx, observability.SpanLoad)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	idx, err := parser.IndexObjects(ctx, data, parser.Config{
		Recovery:      cfg.recovery,
		Limits:        cfg.limits,
		DecodeStreams: cfg.decodeStreams,
	})
	if err != nil {
		return nil, err
	}
	if len(idx.Entries) == 0 {
		return nil, &recovery.FormatError{Op: "load", Err: recovery.ErrNoObjects}
	}

	d := &Document{
		content:     data,
		objects:     make(map[raw.ObjectRef]raw.Object, len(idx.Entries)),
		diagnostics: idx.Diagnostics,
		cfg:         cfg,
		log:         cfg.logger,
	}
	maxGen := 0
	for _, e := range idx.Entries {
		d.objects[e.Ref] = e.Value
		if e.Ref.Num >= d.nextNum {
			d.nextNum = e.Ref.Num + 1
		}
		if e.Ref.Gen > maxGen {
			maxGen = e.Ref.Gen
		}
	}
	d.nextGen = maxGen + 1
	for _, diag := range idx.Diagnostics {
		d.log.Warn("object skipped", observability.String("at", diag.Location.String()), observability.Error("err", diag.Err))
	}
	d.log.Debug("indexed objects", observability.Int("objects", len(d.objects)), observability.Int("skipped", len(idx.Diagnostics)))

	trailer, _, err := parser.ParseTrailer(data)
	if err != nil {
		return nil, err
	}
	d.trailer = trailer

	for _, ref := range d.Refs() {
		resolved, missing := d.link(d.objects[ref])
		d.objects[ref] = resolved
		for _, m := range missing {
			d.diagnose(recovery.Location{ObjectNum: ref.Num, ObjectGen: ref.Gen, Component: "document:resolve"},
				fmt.Errorf("%w: %s", recovery.ErrLookup, m))
		}
	}
	resolved, missing := d.link(d.trailer)
	d.trailer = resolved.(*raw.DictObj)
	for _, m := range missing {
		d.diagnose(recovery.Location{Component: "document:trailer"}, fmt.Errorf("%w: %s", recovery.ErrLookup, m))
	}

	if _, ok := d.trailer.Get("Root"); !ok {
		return nil, &recovery.FormatError{Op: "load", Err: recovery.ErrNoRoot}
	}
	pages, err := d.indexPages()
	if err != nil {
		return nil, err
	}
	d.pages = pages

	d.log.Debug("document loaded",
		observability.Int("objects", len(d.objects)),
		observability.Int("pages", len(d.pages)),
		observability.Int("diagnostics", len(d.diagnostics)))
	span.SetTag("pages", len(d.pages))
	return d, nil
}

func (d *Document) diagnose(loc recovery.Location, err error) {
	d.diagnostics = append(d.diagnostics, recovery.Diagnostic{Location: loc, Err: err})
	d.log.Warn("document diagnostic", observability.String("at", loc.String()), observability.Error("err", err))
}

// Lookup implements raw.Resolver; links created by the document look their
// targets up here, so edits registered later are seen through them.
func (d *Document) Lookup(ref raw.ObjectRef) (raw.Object, bool) {
	o, ok := d.objects[ref]
	return o, ok
}

// Get returns the current value of an indirect object.
func (d *Document) Get(ref raw.ObjectRef) (raw.Object, bool) {
	return d.Lookup(ref)
}

// Deref follows links and references until it reaches a direct value.
func (d *Document) Deref(o raw.Object) (raw.Object, error) {
	for depth := 0; ; depth++ {
		ref, ok := raw.RefOf(o)
		if !ok {
			return o, nil
		}
		if depth >= d.cfg.limits.MaxIndirectDepth {
			return nil, recovery.Operationf("deref", "more than %d links from %s", d.cfg.limits.MaxIndirectDepth, ref)
		}
		next, ok := d.objects[ref]
		if !ok {
			return nil, &recovery.OperationError{Op: "deref", Err: fmt.Errorf("%w: %s", recovery.ErrLookup, ref)}
		}
		o = next
	}
}

// dict dereferences o and returns it as a dictionary; a stream yields its
// dictionary.
func (d *Document) dict(o raw.Object) (*raw.DictObj, bool) {
	v, err := d.Deref(o)
	if err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case *raw.DictObj:
		return t, true
	case *raw.StreamObj:
		return t.Dict, true
	}
	return nil, false
}

func (d *Document) Trailer() *raw.DictObj { return d.trailer }

// Root returns the document catalog.
func (d *Document) Root() (*raw.DictObj, error) {
	v, ok := d.trailer.Get("Root")
	if !ok {
		return nil, &recovery.FormatError{Op: "root", Err: recovery.ErrNoRoot}
	}
	cat, ok := d.dict(v)
	if !ok {
		return nil, recovery.Formatf("root", "/Root is not a dictionary")
	}
	return cat, nil
}

// Refs returns every object id in ascending order.
func (d *Document) Refs() []raw.ObjectRef {
	refs := make([]raw.ObjectRef, 0, len(d.objects))
	for r := range d.objects {
		refs = append(refs, r)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs
}

func (d *Document) ObjectCount() int { return len(d.objects) }

// CountType counts objects whose dictionary has /Type typ.
func (d *Document) CountType(typ string) int {
	n := 0
	for _, o := range d.objects {
		var dict *raw.DictObj
		switch t := o.(type) {
		case *raw.DictObj:
			dict = t
		case *raw.StreamObj:
			dict = t.Dict
		}
		if dict.HasName("Type", typ) {
			n++
		}
	}
	return n
}

func (d *Document) NextObjectNumber() int { return d.nextNum }
func (d *Document) NextGeneration() int   { return d.nextGen }

func (d *Document) Diagnostics() []recovery.Diagnostic {
	return append([]recovery.Diagnostic(nil), d.diagnostics...)
}

// Content returns the byte content the document was loaded from, or the
// output of the last committed save.
func (d *Document) Content() []byte { return d.content }

func (d *Document) Logger() observability.Logger { return d.log }

func (d *Document) Tracer() observability.Tracer { return d.cfg.tracer }

// DecodeStream returns the decoded payload of a stream object. When a filter
// is not supported the partially decoded payload is returned along with an
// error wrapping recovery.ErrUnsupportedFilter.
func (d *Document) DecodeStream(ctx context.Context, ref raw.ObjectRef) ([]byte, error) {
	o, ok := d.objects[ref]
	if !ok {
		return nil, &recovery.OperationError{Op: "decode", Err: fmt.Errorf("%w: %s", recovery.ErrLookup, ref)}
	}
	s, ok := o.(*raw.StreamObj)
	if !ok {
		return nil, recovery.Operationf("decode", "%s is a %s, not a stream", ref, o.Type())
	}
	if s.Decoded != nil {
		return s.Decoded, nil
	}
	ctx, span := d.cfg.tracer.StartSpan(ctx, observability.SpanDecode)
	defer span.Finish()
	names, params := filters.ExtractFilters(s.Dict)
	out, err := filters.Default(d.cfg.limits).Decode(ctx, s.Data, names, params)
	if err != nil {
		span.SetError(err)
		if errors.Is(err, recovery.ErrUnsupportedFilter) {
			d.log.Warn("stream partially decoded", observability.String("ref", ref.String()), observability.Error("err", err))
		}
		return out, err
	}
	return out, nil
}

// Revisions returns the number of cross-reference sections reachable from
// the last startxref.
func (d *Document) Revisions() (int, error) {
	chain, err := xref.Chain(d.content, d.cfg.limits.MaxXRefDepth)
	return len(chain), err
}

var idRE = regexp.MustCompile(`^\s*(\d+)(?:\s+(\d+)(?:\s+(R|obj))?)?\s*$`)

// LookupID parses an object identifier written as "N G R", "N G obj", "N G"
// or "N" and returns the matching object id. A bare number picks the highest
// generation present.
func (d *Document) LookupID(text string) (raw.ObjectRef, error) {
	m := idRE.FindStringSubmatch(text)
	if m == nil {
		return raw.ObjectRef{}, recovery.Operationf("lookup", "invalid object id %q", text)
	}
	num, err := strconv.Atoi(m[1])
	if err != nil || num <= 0 {
		return raw.ObjectRef{}, recovery.Operationf("lookup", "invalid object number %q", m[1])
	}
	if m[2] == "" {
		best, found := raw.ObjectRef{}, false
		for r := range d.objects {
			if r.Num == num && (!found || r.Gen > best.Gen) {
				best, found = r, true
			}
		}
		if !found {
			return raw.ObjectRef{}, &recovery.OperationError{Op: "lookup", Err: fmt.Errorf("%w: object %d", recovery.ErrLookup, num)}
		}
		return best, nil
	}
	gen, err := strconv.Atoi(m[2])
	if err != nil {
		return raw.ObjectRef{}, recovery.Operationf("lookup", "invalid generation %q", m[2])
	}
	ref := raw.ObjectRef{Num: num, Gen: gen}
	if _, ok := d.objects[ref]; !ok {
		return raw.ObjectRef{}, &recovery.OperationError{Op: "lookup", Err: fmt.Errorf("%w: %s", recovery.ErrLookup, ref)}
	}
	return ref, nil
}

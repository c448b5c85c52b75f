// Package builder adds markup and link annotations to the pages of a loaded
// document. Every change goes through the document's edit queue, so the
// next incremental save writes the annotation, the page or array edit that
// attaches it, and nothing else.
package builder

import (
	"fmt"
	"math"

	"github.com/wudi/pdfedit/document"
	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/richtext"
)

// DefaultColor is the highlight yellow used when no color is given.
var DefaultColor = []float64{0.9686242, 0.8626859, 0.03784475}

// flagPrint is annotation flag bit 3: print the annotation with the page.
const flagPrint = 4

// Annotator builds annotations for one document.
type Annotator struct {
	doc *document.Document
	log observability.Logger
}

func NewAnnotator(doc *document.Document) *Annotator {
	return &Annotator{doc: doc, log: doc.Logger()}
}

// AddAnnotation creates a markup annotation for page n (counting from 1) and
// queues it. quad holds one or more groups of eight numbers. A color with
// fewer than three components is replaced by DefaultColor. The annotation is
// not visible until it is attached with Attach. On error nothing is queued.
func (a *Annotator) AddAnnotation(page int, rect [4]float64, quad []float64, color []float64, opts ...Option) (raw.ObjectRef, error) {
	return a.atomic(func() (raw.ObjectRef, error) {
		return a.addAnnotation(page, rect, quad, color, opts)
	})
}

func (a *Annotator) addAnnotation(page int, rect [4]float64, quad []float64, color []float64, opts []Option) (raw.ObjectRef, error) {
	pageRef, err := a.doc.PageRef(page)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	if len(quad) == 0 || len(quad)%8 != 0 {
		return raw.ObjectRef{}, recovery.Operationf("add annotation", "quad points come in groups of 8, got %d numbers", len(quad))
	}
	o := newOptions(opts)
	if o.color != nil {
		color = o.color
	}
	if len(color) < 3 {
		color = DefaultColor
	}
	if err := finite("add annotation", "rect", rect[:]); err != nil {
		return raw.ObjectRef{}, err
	}
	if err := finite("add annotation", "quad points", quad); err != nil {
		return raw.ObjectRef{}, err
	}
	if err := finite("add annotation", "color", color[:3]); err != nil {
		return raw.ObjectRef{}, err
	}

	annot := raw.Dict()
	annot.Set("Type", raw.NameLiteral("Annot"))
	annot.Set("Subtype", raw.NameLiteral(string(o.subtype)))
	annot.Set("Rect", raw.Numbers(rect[:]...))
	annot.Set("QuadPoints", raw.Numbers(quad...))
	annot.Set("C", raw.Numbers(color[:3]...))
	annot.Set("F", raw.NumberInt(flagPrint))
	if err := a.describe(annot, pageRef, o); err != nil {
		return raw.ObjectRef{}, err
	}
	if o.appearance {
		ap, err := a.highlightAppearance(rect, quad, color[:3], o.subtype)
		if err != nil {
			return raw.ObjectRef{}, err
		}
		annot.Set("AP", apDict(ap))
	}

	ref, err := a.doc.Create(annot)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	a.log.Debug("annotation created",
		observability.String("ref", ref.String()),
		observability.String("subtype", string(o.subtype)),
		observability.Int("page", page))
	return ref, nil
}

// describe sets the entries shared by every annotation kind: author, notes,
// the page back-link and any extra entries.
func (a *Annotator) describe(annot *raw.DictObj, pageRef raw.ObjectRef, o *options) error {
	if o.title != "" {
		annot.Set("T", raw.TextString(o.title))
	}
	if o.contents != "" {
		annot.Set("Contents", raw.TextString(o.contents))
	}
	if o.markdown != "" {
		note, err := richtext.Render(o.markdown)
		if err != nil {
			return &recovery.OperationError{Op: "add annotation", Err: fmt.Errorf("render note: %w", err)}
		}
		annot.Set("RC", raw.TextString(note.RC))
		annot.Set("Contents", raw.TextString(note.Plain))
	}
	if o.pageLink {
		annot.Set("P", raw.RefObj{R: pageRef})
	}
	for k, v := range o.entries {
		annot.Set(k, v)
	}
	return nil
}

// atomic runs f and, when it fails, rolls the document back to where it
// was before f started.
func (a *Annotator) atomic(f func() (raw.ObjectRef, error)) (raw.ObjectRef, error) {
	cp := a.doc.Checkpoint()
	ref, err := f()
	if err != nil {
		a.doc.Rollback(cp)
		return raw.ObjectRef{}, err
	}
	return ref, nil
}

// finite rejects NaN and infinities, which have no PDF number syntax.
func finite(op, what string, vals []float64) error {
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return recovery.Operationf(op, "%s[%d] is %v", what, i, v)
		}
	}
	return nil
}

// Attach adds annot to the /Annots of page n. It returns the id of the
// object that was edited to hold the new entry: the page itself, the
// page's separate annotation array, or a newly created array. On error
// nothing is queued.
func (a *Annotator) Attach(page int, annot raw.ObjectRef) (raw.ObjectRef, error) {
	return a.atomic(func() (raw.ObjectRef, error) { return a.attach(page, annot) })
}

func (a *Annotator) attach(page int, annot raw.ObjectRef) (raw.ObjectRef, error) {
	pageRef, err := a.doc.PageRef(page)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	pageDict, err := a.doc.Page(page)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	entry := raw.RefObj{R: annot}

	cur, ok := pageDict.Get("Annots")
	if !ok {
		arr, err := a.doc.CreateSequence(entry)
		if err != nil {
			return raw.ObjectRef{}, err
		}
		if _, err := a.doc.Edit(pageRef, document.SetEntry("Annots", raw.RefObj{R: arr})); err != nil {
			return raw.ObjectRef{}, err
		}
		return arr, nil
	}

	if arr, ok := cur.(*raw.ArrayObj); ok {
		next := raw.Clone(arr).(*raw.ArrayObj)
		next.Append(entry)
		return a.doc.Edit(pageRef, document.SetEntry("Annots", next))
	}

	target, ok := raw.RefOf(cur)
	if !ok {
		return raw.ObjectRef{}, unsupported(page, fmt.Sprintf("/Annots is a %s", cur.Type()))
	}
	v, ok := a.doc.Get(target)
	if !ok {
		return raw.ObjectRef{}, unsupported(page, fmt.Sprintf("/Annots points at missing object %s", target))
	}
	switch t := v.(type) {
	case *raw.ArrayObj:
		return a.doc.Edit(target, document.AppendItem(entry))
	case *raw.DictObj:
		if !isAnnotation(t) {
			return raw.ObjectRef{}, unsupported(page, fmt.Sprintf("/Annots points at %s, which is not an annotation", target))
		}
		pair := raw.NewArray(raw.RefObj{R: target}, entry)
		return a.doc.Edit(pageRef, document.SetEntry("Annots", pair))
	}
	return raw.ObjectRef{}, unsupported(page, fmt.Sprintf("/Annots points at a %s", v.Type()))
}

// Highlight adds and attaches a markup annotation in one step and returns
// the annotation id.
func (a *Annotator) Highlight(page int, rect [4]float64, quad []float64, opts ...Option) (raw.ObjectRef, error) {
	return a.atomic(func() (raw.ObjectRef, error) {
		ref, err := a.addAnnotation(page, rect, quad, nil, opts)
		if err != nil {
			return raw.ObjectRef{}, err
		}
		if _, err := a.attach(page, ref); err != nil {
			return raw.ObjectRef{}, err
		}
		return ref, nil
	})
}

func isAnnotation(d *raw.DictObj) bool {
	if d.HasName("Type", "Annot") {
		return true
	}
	_, hasSubtype := d.Get("Subtype")
	_, hasRect := d.Get("Rect")
	return hasSubtype && hasRect
}

func unsupported(page int, detail string) error {
	return &recovery.OperationError{Op: "attach", Err: fmt.Errorf("%w: page %d: %s", recovery.ErrUnsupportedAnnots, page, detail)}
}

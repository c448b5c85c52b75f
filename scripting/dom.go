package scripting

import (
	"fmt"

	"github.com/wudi/pdfedit/document"
	"github.com/wudi/pdfedit/ir/raw"
)

// DocumentDOM exposes a loaded document to scripts.
type DocumentDOM struct {
	doc   *document.Document
	alert func(string)
}

// NewDocumentDOM returns a DOM over doc. alert receives app.alert messages;
// nil discards them.
func NewDocumentDOM(doc *document.Document, alert func(string)) *DocumentDOM {
	if alert == nil {
		alert = func(string) {}
	}
	return &DocumentDOM{doc: doc, alert: alert}
}

func (d *DocumentDOM) NumPages() int        { return d.doc.PageCount() }
func (d *DocumentDOM) Alert(message string) { d.alert(message) }

// Annotations lists the annotations of page n (counting from 0) in /Annots
// order. Entries that are not dictionaries are left out.
func (d *DocumentDOM) Annotations(n int) ([]Annotation, error) {
	page, err := d.doc.Page(n + 1)
	if err != nil {
		return nil, err
	}
	v, ok := page.Get("Annots")
	if !ok {
		return []Annotation{}, nil
	}
	v, err = d.doc.Deref(v)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*raw.ArrayObj)
	if !ok {
		return nil, fmt.Errorf("page %d: /Annots is a %s", n+1, v.Type())
	}
	out := make([]Annotation, 0, arr.Len())
	for _, item := range arr.Items {
		target, err := d.doc.Deref(item)
		if err != nil {
			continue
		}
		dict, ok := target.(*raw.DictObj)
		if !ok {
			continue
		}
		a := Annotation{Rect: []float64{}}
		if ref, ok := raw.RefOf(item); ok {
			a.ID = ref.String()
		}
		a.Type, _ = dict.Name("Subtype")
		if r, ok := dict.Get("Rect"); ok {
			if ra, ok := r.(*raw.ArrayObj); ok {
				for _, x := range ra.Items {
					if num, ok := x.(raw.NumberObj); ok {
						a.Rect = append(a.Rect, num.Float())
					}
				}
			}
		}
		if t, ok := dict.Get("T"); ok {
			a.Author, _ = raw.DecodeText(t)
		}
		if c, ok := dict.Get("Contents"); ok {
			a.Contents, _ = raw.DecodeText(c)
		}
		out = append(out, a)
	}
	return out, nil
}

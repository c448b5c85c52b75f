package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wudi/pdfedit/builder"
	"github.com/wudi/pdfedit/coords"
	"github.com/wudi/pdfedit/document"
	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/parser"
)

// annotationSpec is one entry of a layout file, as produced by an external
// layout analysis tool. Rect is [llx lly urx ury]; Quad holds groups of
// eight numbers. An entry with a URL becomes a link annotation. With origin
// "top-left" the numbers are measured from the top of the page's media box,
// y growing downwards, as image-based tools report them. Entries adds raw
// keys to the annotation; values such as "12 0 R", "/Name" or "<FEFF>" keep
// their type and any other text becomes a literal string.
type annotationSpec struct {
	Page    int       `json:"page"`
	Origin  string    `json:"origin,omitempty"`
	Rect    []float64 `json:"rect"`
	Quad    []float64 `json:"quad"`
	Color   []float64 `json:"color,omitempty"`
	Subtype string    `json:"subtype,omitempty"`
	Author  string    `json:"author,omitempty"`
	Note    string    `json:"note,omitempty"`
	URL     string    `json:"url,omitempty"`

	Entries map[string]string `json:"entries,omitempty"`
}

func readLayout(path string) ([]annotationSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	var specs []annotationSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}
	for i, s := range specs {
		if len(s.Rect) != 4 {
			return nil, fmt.Errorf("layout entry %d: rect needs 4 numbers, got %d", i, len(s.Rect))
		}
	}
	return specs, nil
}

func applyLayout(doc *document.Document, a *builder.Annotator, specs []annotationSpec) error {
	for i, s := range specs {
		rect := [4]float64{s.Rect[0], s.Rect[1], s.Rect[2], s.Rect[3]}
		quad := s.Quad
		switch s.Origin {
		case "", "bottom-left":
		case "top-left":
			height, err := pageHeight(doc, s.Page)
			if err != nil {
				return fmt.Errorf("layout entry %d: %w", i, err)
			}
			m := coords.FromTopLeft(height)
			rect = m.TransformRect(rect)
			quad = m.TransformQuad(quad)
		default:
			return fmt.Errorf("layout entry %d: unknown origin %q", i, s.Origin)
		}
		opts := []builder.Option{builder.WithPageLink()}
		if s.Author != "" {
			opts = append(opts, builder.WithTitle(s.Author))
		}
		if s.Note != "" {
			opts = append(opts, builder.WithMarkdownContents(s.Note))
		}
		for k, v := range s.Entries {
			opts = append(opts, builder.WithEntry(strings.TrimPrefix(k, "/"), parser.Coerce(v)))
		}
		if s.URL != "" {
			if _, err := a.AddLink(s.Page, rect, builder.URIAction{URI: s.URL}, opts...); err != nil {
				return fmt.Errorf("layout entry %d: %w", i, err)
			}
			continue
		}
		if s.Subtype != "" {
			opts = append(opts, builder.WithSubtype(builder.Subtype(s.Subtype)))
		}
		if len(quad) == 0 {
			quad = coords.Quad(rect)
		}
		ref, err := a.AddAnnotation(s.Page, rect, quad, s.Color, opts...)
		if err != nil {
			return fmt.Errorf("layout entry %d: %w", i, err)
		}
		if _, err := a.Attach(s.Page, ref); err != nil {
			return fmt.Errorf("layout entry %d: %w", i, err)
		}
	}
	return nil
}

// pageHeight returns the height of page n's media box, which may be
// inherited from the page tree.
func pageHeight(doc *document.Document, n int) (float64, error) {
	node, err := doc.Page(n)
	if err != nil {
		return 0, err
	}
	for depth := 0; node != nil && depth < 64; depth++ {
		if v, ok := node.Get("MediaBox"); ok {
			box, err := doc.Deref(v)
			if err != nil {
				return 0, err
			}
			if arr, ok := box.(*raw.ArrayObj); ok && arr.Len() == 4 {
				lly, ok1 := arr.Items[1].(raw.NumberObj)
				ury, ok2 := arr.Items[3].(raw.NumberObj)
				if ok1 && ok2 {
					return ury.Float() - lly.Float(), nil
				}
			}
			return 0, fmt.Errorf("page %d: malformed /MediaBox", n)
		}
		parent, ok := node.Get("Parent")
		if !ok {
			break
		}
		p, err := doc.Deref(parent)
		if err != nil {
			return 0, err
		}
		node, _ = p.(*raw.DictObj)
	}
	return 0, fmt.Errorf("page %d has no /MediaBox", n)
}

func annotateSample(a *builder.Annotator, pages int) error {
	rect := [4]float64{102.5784, 705.876, 113.9088, 719.94}
	for p := 1; p <= pages; p++ {
		if _, err := a.Highlight(p, rect, coords.Quad(rect)); err != nil {
			return fmt.Errorf("page %d: %w", p, err)
		}
	}
	return nil
}

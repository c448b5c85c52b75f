// Package scripting runs JavaScript against a loaded document. Scripts see
// an Acrobat-like surface: app.alert, numPages and getAnnots. The surface
// is read-only; scripts cannot queue edits.
package scripting

import "context"

// Engine runs scripts against one bound DOM.
type Engine interface {
	// Run executes src; name labels it in error messages.
	Run(ctx context.Context, name, src string) (any, error)
	Bind(dom DOM) error
}

// DOM is the document as scripts see it. Pages count from 0.
type DOM interface {
	NumPages() int
	Annotations(page int) ([]Annotation, error)
	Alert(message string)
}

// Annotation summarizes one entry of a page's /Annots.
type Annotation struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Rect     []float64 `json:"rect"`
	Author   string    `json:"author"`
	Contents string    `json:"contents"`
}

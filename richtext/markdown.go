// Package richtext turns markdown notes into the two forms an annotation
// carries: XHTML rich text for /RC and plain text for /Contents.
package richtext

import (
	"bytes"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Note is a rendered annotation note.
type Note struct {
	// RC is an XHTML document suitable for an annotation's /RC entry.
	RC string
	// Plain is the text content, one line per block.
	Plain string
}

const (
	bodyOpen  = `<?xml version="1.0"?><body xmlns="http://www.w3.org/1999/xhtml" xmlns:xfa="http://www.xfa.org/schema/xfa-data/1.0/" xfa:APIVersion="Acrobat:7.0.0" xfa:spec="2.0.2">`
	bodyClose = `</body>`
)

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			treeblood.MathML(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
		),
	)
}

// Render converts markdown to a Note. Math between $ or $$ delimiters is
// rendered as MathML. Raw HTML in the source is dropped.
func Render(source string) (Note, error) {
	var buf bytes.Buffer
	if err := newMarkdown().Convert([]byte(source), &buf); err != nil {
		return Note{}, err
	}
	body := buf.String()
	plain, err := PlainText(body)
	if err != nil {
		return Note{}, err
	}
	return Note{RC: bodyOpen + body + bodyClose, Plain: plain}, nil
}

package builder

import (
	"golang.org/x/image/colornames"

	"github.com/wudi/pdfedit/ir/raw"
)

// Subtype is a text markup annotation subtype.
type Subtype string

const (
	SubtypeHighlight Subtype = "Highlight"
	SubtypeUnderline Subtype = "Underline"
	SubtypeStrikeOut Subtype = "StrikeOut"
	SubtypeSquiggly  Subtype = "Squiggly"
)

type options struct {
	subtype    Subtype
	color      []float64
	title      string
	contents   string
	markdown   string
	pageLink   bool
	appearance bool
	entries    map[string]raw.Object
}

// Option configures an annotation.
type Option func(*options)

func WithSubtype(s Subtype) Option {
	return func(o *options) { o.subtype = s }
}

// WithColor sets the annotation color as RGB components in 0..1.
func WithColor(rgb ...float64) Option {
	return func(o *options) { o.color = rgb }
}

// WithColorName sets the color from an SVG 1.1 color keyword such as
// "gold" or "lightgreen". Unknown names leave the color unchanged.
func WithColorName(name string) Option {
	return func(o *options) {
		c, ok := colornames.Map[name]
		if !ok {
			return
		}
		o.color = []float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
	}
}

// WithTitle sets the author shown in the annotation's pop-up (/T).
func WithTitle(author string) Option {
	return func(o *options) { o.title = author }
}

// WithContents sets the plain text note (/Contents).
func WithContents(text string) Option {
	return func(o *options) { o.contents = text }
}

// WithMarkdownContents renders md into rich text (/RC) and sets /Contents
// to its plain text. It overrides WithContents.
func WithMarkdownContents(md string) Option {
	return func(o *options) { o.markdown = md }
}

// WithPageLink records the page in the annotation's /P entry.
func WithPageLink() Option {
	return func(o *options) { o.pageLink = true }
}

// WithAppearance generates a normal appearance stream so viewers that do
// not synthesize markup appearances still draw the annotation.
func WithAppearance() Option {
	return func(o *options) { o.appearance = true }
}

// WithEntry sets an extra key on the annotation dictionary. Entries are
// applied last and replace anything the builder set under the same key.
func WithEntry(key string, v raw.Object) Option {
	return func(o *options) {
		if o.entries == nil {
			o.entries = make(map[string]raw.Object)
		}
		o.entries[key] = v
	}
}

func newOptions(opts []Option) *options {
	o := &options{subtype: SubtypeHighlight}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

package builder

import (
	"fmt"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/scripting"
)

// Action is what a link annotation does when activated.
type Action interface {
	actionDict() (*raw.DictObj, error)
}

// URIAction opens a URI.
type URIAction struct {
	URI string
}

func (a URIAction) actionDict() (*raw.DictObj, error) {
	if a.URI == "" {
		return nil, fmt.Errorf("empty URI")
	}
	d := raw.Dict()
	d.Set("S", raw.NameLiteral("URI"))
	d.Set("URI", raw.Literal(a.URI))
	return d, nil
}

// JavaScriptAction runs a script. The script must compile.
type JavaScriptAction struct {
	JS string
}

func (a JavaScriptAction) actionDict() (*raw.DictObj, error) {
	if err := scripting.Validate("link action", a.JS); err != nil {
		return nil, err
	}
	d := raw.Dict()
	d.Set("S", raw.NameLiteral("JavaScript"))
	d.Set("JS", raw.TextString(a.JS))
	return d, nil
}

// AddLink creates a link annotation covering rect on page n and attaches it.
func (a *Annotator) AddLink(page int, rect [4]float64, action Action, opts ...Option) (raw.ObjectRef, error) {
	return a.atomic(func() (raw.ObjectRef, error) { return a.addLink(page, rect, action, opts) })
}

func (a *Annotator) addLink(page int, rect [4]float64, action Action, opts []Option) (raw.ObjectRef, error) {
	if err := finite("add link", "rect", rect[:]); err != nil {
		return raw.ObjectRef{}, err
	}
	pageRef, err := a.doc.PageRef(page)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	if action == nil {
		return raw.ObjectRef{}, recovery.Operationf("add link", "no action")
	}
	act, err := action.actionDict()
	if err != nil {
		return raw.ObjectRef{}, &recovery.OperationError{Op: "add link", Err: err}
	}
	o := newOptions(opts)

	annot := raw.Dict()
	annot.Set("Type", raw.NameLiteral("Annot"))
	annot.Set("Subtype", raw.NameLiteral("Link"))
	annot.Set("Rect", raw.Numbers(rect[:]...))
	annot.Set("Border", raw.Numbers(0, 0, 0))
	annot.Set("A", act)
	if err := a.describe(annot, pageRef, o); err != nil {
		return raw.ObjectRef{}, err
	}
	ref, err := a.doc.Create(annot)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	if _, err := a.attach(page, ref); err != nil {
		return raw.ObjectRef{}, err
	}
	return ref, nil
}

package document

import (
	"fmt"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/recovery"
)

// indexPages flattens the page tree into document order. The children of an
// intermediate /Pages node are spliced in right after it, so the walk stays
// left to right without recursion. A child that is neither a page nor a page
// tree node is skipped with a diagnostic.
func (d *Document) indexPages() ([]raw.ObjectRef, error) {
	cat, err := d.Root()
	if err != nil {
		return nil, err
	}
	treeRoot, ok := cat.Get("Pages")
	if !ok {
		return nil, &recovery.FormatError{Op: "pages", Err: fmt.Errorf("%w: catalog has no /Pages", recovery.ErrNoPages)}
	}
	tree, ok := d.dict(treeRoot)
	if !ok {
		return nil, &recovery.FormatError{Op: "pages", Err: fmt.Errorf("%w: /Pages is not a dictionary", recovery.ErrNoPages)}
	}
	kids, ok := d.kids(tree)
	if !ok || len(kids) == 0 {
		return nil, &recovery.FormatError{Op: "pages", Err: fmt.Errorf("%w: page tree root has no /Kids", recovery.ErrNoPages)}
	}

	visited := make(map[raw.ObjectRef]bool)
	if ref, ok := raw.RefOf(treeRoot); ok {
		visited[ref] = true
	}
	walk := append([]raw.Object(nil), kids...)
	var pages []raw.ObjectRef
	for i := 0; i < len(walk); i++ {
		child := walk[i]
		ref, ok := raw.RefOf(child)
		if !ok {
			d.diagnose(recovery.Location{Component: "document:pages"}, recovery.Formatf("pages", "kid %d is a direct %s", i, child.Type()))
			continue
		}
		where := recovery.Location{ObjectNum: ref.Num, ObjectGen: ref.Gen, Component: "document:pages"}
		if visited[ref] {
			d.diagnose(where, recovery.Formatf("pages", "%s appears twice in the page tree", ref))
			continue
		}
		visited[ref] = true
		node, ok := d.dict(child)
		if !ok {
			d.diagnose(where, recovery.Formatf("pages", "%s is not a dictionary", ref))
			continue
		}
		switch {
		case node.HasName("Type", "Page"):
			pages = append(pages, ref)
		case node.HasName("Type", "Pages"), !hasType(node) && hasKids(node):
			sub, _ := d.kids(node)
			rest := append(append([]raw.Object(nil), sub...), walk[i+1:]...)
			walk = append(walk[:i+1], rest...)
		default:
			typ, _ := node.Name("Type")
			d.diagnose(where, recovery.Formatf("pages", "%s has /Type %q, want /Page or /Pages", ref, typ))
		}
	}
	if len(pages) == 0 {
		return nil, &recovery.FormatError{Op: "pages", Err: recovery.ErrNoPages}
	}
	return pages, nil
}

func (d *Document) kids(node *raw.DictObj) ([]raw.Object, bool) {
	v, ok := node.Get("Kids")
	if !ok {
		return nil, false
	}
	v, err := d.Deref(v)
	if err != nil {
		return nil, false
	}
	arr, ok := v.(*raw.ArrayObj)
	if !ok {
		return nil, false
	}
	return arr.Items, true
}

func hasType(d *raw.DictObj) bool { _, ok := d.Get("Type"); return ok }
func hasKids(d *raw.DictObj) bool { _, ok := d.Get("Kids"); return ok }

// Pages returns the page object ids in document order.
func (d *Document) Pages() []raw.ObjectRef {
	return append([]raw.ObjectRef(nil), d.pages...)
}

func (d *Document) PageCount() int { return len(d.pages) }

// PageRef returns the id of page n, counting from 1.
func (d *Document) PageRef(n int) (raw.ObjectRef, error) {
	if n < 1 || n > len(d.pages) {
		return raw.ObjectRef{}, recovery.Operationf("page", "page %d out of range 1..%d", n, len(d.pages))
	}
	return d.pages[n-1], nil
}

// Page returns the current dictionary of page n, counting from 1.
func (d *Document) Page(n int) (*raw.DictObj, error) {
	ref, err := d.PageRef(n)
	if err != nil {
		return nil, err
	}
	page, ok := d.dict(raw.Link(ref, d))
	if !ok {
		return nil, recovery.Operationf("page", "page %d (%s) is no longer a dictionary", n, ref)
	}
	return page, nil
}

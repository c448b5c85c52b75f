package document

import (
	"fmt"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/recovery"
)

// link replaces every reference in o that names an object in the table with
// a link bound to the document. Containers are updated in place, nested
// direct containers and stream dictionaries included. References with no
// target are left as they are and returned.
func (d *Document) link(o raw.Object) (raw.Object, []raw.ObjectRef) {
	var missing []raw.ObjectRef
	var walk func(raw.Object) raw.Object
	walk = func(o raw.Object) raw.Object {
		switch v := o.(type) {
		case raw.RefObj:
			if _, ok := d.objects[v.R]; !ok {
				missing = append(missing, v.R)
				return v
			}
			return raw.Link(v.R, d)
		case raw.LinkObj:
			if !v.Bound() {
				return walk(raw.RefObj{R: v.R})
			}
			return v
		case *raw.ArrayObj:
			for i, item := range v.Items {
				v.Items[i] = walk(item)
			}
		case *raw.DictObj:
			for k, item := range v.KV {
				v.KV[k] = walk(item)
			}
		case *raw.StreamObj:
			walk(v.Dict)
		}
		return o
	}
	return walk(o), missing
}

// Resolve binds the references inside o to this document. It fails with an
// *recovery.OperationError wrapping recovery.ErrLookup when a reference
// names an object that does not exist.
func (d *Document) Resolve(o raw.Object) (raw.Object, error) {
	out, missing := d.link(o)
	if len(missing) > 0 {
		return out, &recovery.OperationError{Op: "resolve", Err: fmt.Errorf("%w: %s", recovery.ErrLookup, missing[0])}
	}
	return out, nil
}

// Register inserts o under ref, replacing any current value, after binding
// its references. The table is unchanged when an error is returned.
func (d *Document) Register(ref raw.ObjectRef, o raw.Object) error {
	if !ref.Valid() {
		return recovery.Operationf("register", "invalid object id %s", ref)
	}
	if o == nil {
		return recovery.Operationf("register", "nil value for %s", ref)
	}
	// a self reference is valid once the object is in the table
	_, existed := d.objects[ref]
	if !existed {
		d.objects[ref] = raw.NullObj{}
	}
	resolved, err := d.Resolve(o)
	if err != nil {
		if !existed {
			delete(d.objects, ref)
		}
		return err
	}
	d.objects[ref] = resolved
	if ref.Num >= d.nextNum {
		d.nextNum = ref.Num + 1
	}
	return nil
}

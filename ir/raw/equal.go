package raw

import "bytes"

// Equal reports whether a and b denote the same PDF value. Numbers compare by
// value, references and links by ObjectRef, strings by their written form.
func Equal(a, b Object) bool {
	if ra, ok := RefOf(a); ok {
		rb, ok := RefOf(b)
		return ok && ra == rb
	}
	switch x := a.(type) {
	case NameObj:
		y, ok := b.(NameObj)
		return ok && x.Val == y.Val
	case NumberObj:
		y, ok := b.(NumberObj)
		if !ok {
			return false
		}
		if x.IsInt && y.IsInt {
			return x.I == y.I
		}
		return x.Float() == y.Float()
	case BoolObj:
		y, ok := b.(BoolObj)
		return ok && x.V == y.V
	case NullObj:
		_, ok := b.(NullObj)
		return ok
	case StringObj:
		y, ok := b.(StringObj)
		return ok && bytes.Equal(x.Raw, y.Raw)
	case HexStringObj:
		y, ok := b.(HexStringObj)
		return ok && bytes.Equal(x.Digits, y.Digits)
	case *ArrayObj:
		y, ok := b.(*ArrayObj)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *DictObj:
		y, ok := b.(*DictObj)
		if !ok || len(x.KV) != len(y.KV) {
			return false
		}
		for k, v := range x.KV {
			w, ok := y.KV[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	case *StreamObj:
		y, ok := b.(*StreamObj)
		return ok && Equal(x.Dict, y.Dict) && bytes.Equal(x.Data, y.Data)
	}
	return false
}

// Clone copies the outer container of o so it can be changed without
// affecting the original. Nested containers and links are shared.
func Clone(o Object) Object {
	switch v := o.(type) {
	case *ArrayObj:
		items := make([]Object, len(v.Items))
		copy(items, v.Items)
		return &ArrayObj{Items: items}
	case *DictObj:
		return cloneDict(v)
	case *StreamObj:
		return &StreamObj{Dict: cloneDict(v.Dict), Data: v.Data, Decoded: v.Decoded}
	default:
		return o
	}
}

func cloneDict(d *DictObj) *DictObj {
	if d == nil {
		return Dict()
	}
	out := &DictObj{KV: make(map[string]Object, len(d.KV))}
	for k, v := range d.KV {
		out.KV[k] = v
	}
	return out
}

package document

import (
	"fmt"
	"sort"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/recovery"
)

// TrailerRef addresses the trailer dictionary in Edit.
var TrailerRef = raw.ObjectRef{}

type ChangeKind int

const (
	ChangeSet ChangeKind = iota
	ChangeDelete
	ChangeAppend
	ChangeReplace
	ChangeRestream
	ChangeRenumber
	ChangeTrailer
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSet:
		return "set"
	case ChangeDelete:
		return "delete"
	case ChangeAppend:
		return "append"
	case ChangeReplace:
		return "replace"
	case ChangeRestream:
		return "restream"
	case ChangeRenumber:
		return "renumber"
	case ChangeTrailer:
		return "trailer"
	}
	return "unknown"
}

// Change is one modification applied by Edit.
type Change struct {
	Kind  ChangeKind
	Key   string
	Value raw.Object
	Data  []byte
}

// SetEntry sets a dictionary entry (on a stream, its dictionary).
func SetEntry(key string, v raw.Object) Change { return Change{Kind: ChangeSet, Key: key, Value: v} }

func DeleteEntry(key string) Change { return Change{Kind: ChangeDelete, Key: key} }

// AppendItem appends to an array.
func AppendItem(v raw.Object) Change { return Change{Kind: ChangeAppend, Value: v} }

// Replace swaps the whole value.
func Replace(v raw.Object) Change { return Change{Kind: ChangeReplace, Value: v} }

// Restream turns a dictionary into a stream, or replaces a stream's payload.
// data is stored unfiltered, so /Filter and /DecodeParms are dropped.
func Restream(data []byte) Change { return Change{Kind: ChangeRestream, Data: data} }

// Renumber copies the object under a fresh id, leaving the original alone.
func Renumber() Change { return Change{Kind: ChangeRenumber} }

// MarkTrailer makes a copy of a dictionary object the document trailer.
func MarkTrailer() Change { return Change{Kind: ChangeTrailer} }

// Queued is one pending edit. Trailer edits carry the new trailer and are
// not written as objects.
type Queued struct {
	Ref     raw.ObjectRef
	Value   raw.Object
	Trailer bool

	// value the edit replaced; nil for a created object
	prev raw.Object
}

// Edit copies the current value of ref, applies c and registers the copy in
// place of the original; the loaded bytes are never modified. The copy is
// queued for the next save. It returns the id the copy was stored under,
// which differs from ref only for Renumber. Use TrailerRef to edit the
// trailer.
func (d *Document) Edit(ref raw.ObjectRef, c Change) (raw.ObjectRef, error) {
	var cur raw.Object
	if ref == TrailerRef {
		cur = d.trailer
	} else {
		o, ok := d.objects[ref]
		if !ok {
			return raw.ObjectRef{}, &recovery.OperationError{Op: "edit", Err: fmt.Errorf("%w: %s", recovery.ErrLookup, ref)}
		}
		cur = o
	}

	next, err := d.apply(raw.Clone(cur), c)
	if err != nil {
		return raw.ObjectRef{}, &recovery.OperationError{Op: "edit " + c.Kind.String(), Err: err}
	}
	if next, err = d.Resolve(next); err != nil {
		return raw.ObjectRef{}, err
	}

	switch {
	case c.Kind == ChangeTrailer || ref == TrailerRef:
		dict, ok := next.(*raw.DictObj)
		if !ok {
			return raw.ObjectRef{}, recovery.Operationf("edit trailer", "trailer must be a dictionary, got %s", next.Type())
		}
		d.enqueue(Queued{Ref: TrailerRef, Value: dict, Trailer: true, prev: d.trailer})
		d.trailer = dict
		return TrailerRef, nil
	case c.Kind == ChangeRenumber:
		ref = d.allocate()
	}
	d.enqueue(Queued{Ref: ref, Value: next, prev: d.objects[ref]})
	d.objects[ref] = next
	return ref, nil
}

func (d *Document) apply(cur raw.Object, c Change) (raw.Object, error) {
	switch c.Kind {
	case ChangeSet, ChangeDelete:
		var dict *raw.DictObj
		switch v := cur.(type) {
		case *raw.DictObj:
			dict = v
		case *raw.StreamObj:
			dict = v.Dict
		default:
			return nil, fmt.Errorf("%s is not a dictionary", cur.Type())
		}
		if c.Key == "" {
			return nil, fmt.Errorf("empty key")
		}
		if c.Kind == ChangeDelete {
			dict.Delete(c.Key)
		} else {
			if c.Value == nil {
				return nil, fmt.Errorf("nil value for /%s", c.Key)
			}
			dict.Set(c.Key, c.Value)
		}
		return cur, nil
	case ChangeAppend:
		arr, ok := cur.(*raw.ArrayObj)
		if !ok {
			return nil, fmt.Errorf("%s is not an array", cur.Type())
		}
		if c.Value == nil {
			return nil, fmt.Errorf("nil item")
		}
		arr.Append(c.Value)
		return arr, nil
	case ChangeReplace:
		if c.Value == nil {
			return nil, fmt.Errorf("nil value")
		}
		return raw.Clone(c.Value), nil
	case ChangeRestream:
		var dict *raw.DictObj
		switch v := cur.(type) {
		case *raw.DictObj:
			dict = v
		case *raw.StreamObj:
			dict = v.Dict
		default:
			return nil, fmt.Errorf("%s cannot carry a stream", cur.Type())
		}
		dict.Delete("Filter")
		dict.Delete("DecodeParms")
		dict.Set("Length", raw.NumberInt(int64(len(c.Data))))
		return raw.NewStream(dict, c.Data), nil
	case ChangeRenumber:
		return cur, nil
	case ChangeTrailer:
		if _, ok := cur.(*raw.DictObj); !ok {
			return nil, fmt.Errorf("%s cannot be a trailer", cur.Type())
		}
		return cur, nil
	}
	return nil, fmt.Errorf("unknown change %d", c.Kind)
}

func (d *Document) allocate() raw.ObjectRef {
	ref := raw.ObjectRef{Num: d.nextNum, Gen: d.nextGen}
	d.nextNum++
	return ref
}

func (d *Document) enqueue(q Queued) {
	d.queue = append(d.queue, q)
	d.log.Debug("edit queued", observability.String("ref", q.Ref.String()), observability.Int("queued", len(d.queue)))
}

// Create registers o under a fresh id and queues it.
func (d *Document) Create(o raw.Object) (raw.ObjectRef, error) {
	ref := raw.ObjectRef{Num: d.nextNum, Gen: d.nextGen}
	if err := d.Register(ref, o); err != nil {
		return raw.ObjectRef{}, err
	}
	d.enqueue(Queued{Ref: ref, Value: d.objects[ref]})
	return ref, nil
}

// CreateSequence creates a new array object.
func (d *Document) CreateSequence(values ...raw.Object) (raw.ObjectRef, error) {
	return d.Create(raw.NewArray(values...))
}

// CreateMapping creates a new dictionary object.
func (d *Document) CreateMapping(entries map[string]raw.Object) (raw.ObjectRef, error) {
	dict := raw.Dict()
	for k, v := range entries {
		dict.Set(k, v)
	}
	return d.Create(dict)
}

// Edits returns the pending edits in the order they were made.
func (d *Document) Edits() []Queued {
	return append([]Queued(nil), d.queue...)
}

// Latest returns, for every object id in the queue, the value of its last
// queued edit, ordered by id.
func (d *Document) Latest() []Queued {
	last := make(map[raw.ObjectRef]Queued)
	for _, q := range d.queue {
		if !q.Trailer {
			last[q.Ref] = q
		}
	}
	out := make([]Queued, 0, len(last))
	for _, q := range last {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.Less(out[j].Ref) })
	return out
}

// Checkpoint marks the edit state of a document.
type Checkpoint struct {
	queued  int
	nextNum int
	nextGen int
}

// Checkpoint returns a mark that Rollback can return to.
func (d *Document) Checkpoint() Checkpoint {
	return Checkpoint{queued: len(d.queue), nextNum: d.nextNum, nextGen: d.nextGen}
}

// Rollback undoes every edit queued since cp, newest first, restoring the
// values they replaced and dropping the objects they created. A checkpoint
// taken before the last Commit is ignored.
func (d *Document) Rollback(cp Checkpoint) {
	if cp.nextGen != d.nextGen || cp.queued > len(d.queue) {
		return
	}
	for i := len(d.queue) - 1; i >= cp.queued; i-- {
		q := d.queue[i]
		switch {
		case q.Trailer:
			d.trailer = q.prev.(*raw.DictObj)
		case q.prev == nil:
			delete(d.objects, q.Ref)
		default:
			d.objects[q.Ref] = q.prev
		}
	}
	if n := len(d.queue) - cp.queued; n > 0 {
		d.log.Debug("edits rolled back", observability.Int("edits", n))
	}
	d.queue = d.queue[:cp.queued]
	d.nextNum = cp.nextNum
}

// Commit adopts saved output as the document content. The queue is cleared
// and objects created afterwards get the next generation.
func (d *Document) Commit(out []byte) {
	d.content = out
	d.queue = nil
	d.nextGen++
}

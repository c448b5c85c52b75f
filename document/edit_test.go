package document

import (
	"testing"

	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/recovery"
)

func TestEditCopiesAndQueues(t *testing.T) {
	doc := load(t, threePages())
	ref := raw.ObjectRef{Num: 3}
	before, _ := doc.Get(ref)

	got, err := doc.Edit(ref, SetEntry("Rotate", raw.NumberInt(90)))
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got != ref {
		t.Fatalf("edit should keep the object id, got %s", got)
	}
	if _, ok := before.(*raw.DictObj).Get("Rotate"); ok {
		t.Fatalf("edit mutated the previous value")
	}
	after, _ := doc.Get(ref)
	if v, _ := after.(*raw.DictObj).Get("Rotate"); !raw.Equal(v, raw.NumberInt(90)) {
		t.Fatalf("edited value not registered")
	}
	if _, err := doc.Edit(ref, DeleteEntry("MediaBox")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	edits := doc.Edits()
	if len(edits) != 2 || edits[0].Ref != ref || edits[1].Ref != ref {
		t.Fatalf("unexpected queue %v", edits)
	}
	if _, ok := edits[0].Value.(*raw.DictObj).Get("MediaBox"); !ok {
		t.Fatalf("earlier queued edit was changed by a later one")
	}
	latest := doc.Latest()
	if len(latest) != 1 {
		t.Fatalf("expected one latest entry, got %d", len(latest))
	}
	if _, ok := latest[0].Value.(*raw.DictObj).Get("MediaBox"); ok {
		t.Fatalf("latest entry is not the last queued edit")
	}
}

func TestEditResolvesNewValues(t *testing.T) {
	doc := load(t, threePages())
	if _, err := doc.Edit(raw.ObjectRef{Num: 5}, SetEntry("Next", raw.Ref(6, 0))); err != nil {
		t.Fatalf("edit: %v", err)
	}
	page, _ := doc.Page(2)
	if _, ok := entry(page, "Next").(raw.LinkObj); !ok {
		t.Fatalf("expected the new entry to be linked")
	}
	_, err := doc.Edit(raw.ObjectRef{Num: 5}, SetEntry("Next", raw.Ref(60, 0)))
	if !recovery.IsOperation(err) {
		t.Fatalf("expected operation error for a dangling value, got %v", err)
	}
}

func TestEditAppendAndReplace(t *testing.T) {
	doc := load(t, threePages())
	arr, err := doc.CreateSequence(raw.Ref(3, 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if arr != (raw.ObjectRef{Num: 7, Gen: 1}) {
		t.Fatalf("expected fresh id 7 1, got %s", arr)
	}
	if _, err := doc.Edit(arr, AppendItem(raw.Ref(5, 0))); err != nil {
		t.Fatalf("append: %v", err)
	}
	v, _ := doc.Get(arr)
	if v.(*raw.ArrayObj).Len() != 2 {
		t.Fatalf("expected two items, got %d", v.(*raw.ArrayObj).Len())
	}
	if _, err := doc.Edit(arr, Replace(raw.NumberInt(4))); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if v, _ := doc.Get(arr); !raw.Equal(v, raw.NumberInt(4)) {
		t.Fatalf("replace not applied: %#v", v)
	}
	if _, err := doc.Edit(raw.ObjectRef{Num: 1}, AppendItem(raw.NullObj{})); !recovery.IsOperation(err) {
		t.Fatalf("expected operation error appending to a dictionary, got %v", err)
	}
	if _, err := doc.Edit(raw.ObjectRef{Num: 99}, Replace(raw.NullObj{})); !recovery.IsOperation(err) {
		t.Fatalf("expected operation error for unknown object, got %v", err)
	}
}

func TestEditRenumberAndRestream(t *testing.T) {
	doc := load(t, threePages())
	copyRef, err := doc.Edit(raw.ObjectRef{Num: 3}, Renumber())
	if err != nil {
		t.Fatalf("renumber: %v", err)
	}
	if copyRef == (raw.ObjectRef{Num: 3}) || copyRef.Num != 7 {
		t.Fatalf("expected a fresh id, got %s", copyRef)
	}
	orig, _ := doc.Get(raw.ObjectRef{Num: 3})
	dup, _ := doc.Get(copyRef)
	if !raw.Equal(orig, dup) {
		t.Fatalf("renumbered copy differs from the original")
	}

	if _, err := doc.Edit(copyRef, Restream([]byte("q Q"))); err != nil {
		t.Fatalf("restream: %v", err)
	}
	o, _ := doc.Get(copyRef)
	s, ok := o.(*raw.StreamObj)
	if !ok || string(s.Data) != "q Q" {
		t.Fatalf("expected a stream with the new payload")
	}
	if n, _ := s.Dict.Get("Length"); !raw.Equal(n, raw.NumberInt(3)) {
		t.Fatalf("expected /Length 3, got %v", n)
	}
}

func TestEditTrailer(t *testing.T) {
	doc := load(t, threePages())
	info, err := doc.CreateMapping(map[string]raw.Object{"Title": raw.TextString("Report")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := doc.Edit(TrailerRef, SetEntry("Info", raw.Ref(info.Num, info.Gen))); err != nil {
		t.Fatalf("edit trailer: %v", err)
	}
	if _, ok := entry(doc.Trailer(), "Info").(raw.LinkObj); !ok {
		t.Fatalf("trailer /Info not set")
	}
	edits := doc.Edits()
	if len(edits) != 2 || !edits[1].Trailer {
		t.Fatalf("expected a queued trailer edit, got %v", edits)
	}
	if got := doc.Latest(); len(got) != 1 || got[0].Ref != info {
		t.Fatalf("trailer edits must not appear among objects: %v", got)
	}
	if _, err := doc.Edit(raw.ObjectRef{Num: 3}, MarkTrailer()); err != nil {
		t.Fatalf("mark trailer: %v", err)
	}
	if !doc.Trailer().HasName("Type", "Page") {
		t.Fatalf("marked dictionary did not become the trailer")
	}
}

func TestCommitAdvancesGeneration(t *testing.T) {
	doc := load(t, threePages())
	if _, err := doc.CreateMapping(nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	doc.Commit([]byte("saved"))
	if string(doc.Content()) != "saved" || len(doc.Edits()) != 0 {
		t.Fatalf("commit did not adopt the output")
	}
	ref, _ := doc.CreateSequence()
	if ref != (raw.ObjectRef{Num: 8, Gen: 2}) {
		t.Fatalf("expected 8 2 after commit, got %s", ref)
	}
}

func TestRollback(t *testing.T) {
	doc := load(t, threePages())
	if _, err := doc.Edit(raw.ObjectRef{Num: 5}, SetEntry("Rotate", raw.NumberInt(180))); err != nil {
		t.Fatalf("edit: %v", err)
	}
	cp := doc.Checkpoint()
	page3, _ := doc.Get(raw.ObjectRef{Num: 3})
	trailer := doc.Trailer()

	arr, err := doc.CreateSequence(raw.Ref(3, 0))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := doc.Edit(raw.ObjectRef{Num: 3}, SetEntry("Annots", raw.Ref(arr.Num, arr.Gen))); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := doc.Edit(raw.ObjectRef{Num: 3}, Renumber()); err != nil {
		t.Fatalf("renumber: %v", err)
	}
	if _, err := doc.Edit(TrailerRef, SetEntry("Info", raw.Ref(arr.Num, arr.Gen))); err != nil {
		t.Fatalf("edit trailer: %v", err)
	}

	doc.Rollback(cp)
	if edits := doc.Edits(); len(edits) != 1 || edits[0].Ref != (raw.ObjectRef{Num: 5}) {
		t.Fatalf("expected only the edit before the checkpoint, got %v", edits)
	}
	if got, _ := doc.Get(raw.ObjectRef{Num: 3}); got != page3 {
		t.Fatalf("page 3 not restored")
	}
	if doc.Trailer() != trailer {
		t.Fatalf("trailer not restored")
	}
	if _, ok := doc.Get(arr); ok {
		t.Fatalf("created object %s still in the table", arr)
	}
	if doc.ObjectCount() != 6 {
		t.Fatalf("expected 6 objects, got %d", doc.ObjectCount())
	}
	page2, _ := doc.Page(2)
	if v := entry(page2, "Rotate"); !raw.Equal(v, raw.NumberInt(180)) {
		t.Fatalf("edit before the checkpoint was undone")
	}
	if ref, _ := doc.CreateSequence(); ref != arr {
		t.Fatalf("expected %s to be reused, got %s", arr, ref)
	}
}

func TestRollbackAfterCommitIsIgnored(t *testing.T) {
	doc := load(t, threePages())
	cp := doc.Checkpoint()
	ref, _ := doc.CreateSequence()
	doc.Commit([]byte("saved"))
	doc.Rollback(cp)
	if _, ok := doc.Get(ref); !ok {
		t.Fatalf("rollback undid a committed object")
	}
	if doc.NextObjectNumber() != 8 {
		t.Fatalf("expected next object 8, got %d", doc.NextObjectNumber())
	}
}

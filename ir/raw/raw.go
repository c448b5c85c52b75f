package raw

import (
	"errors"
	"fmt"
)

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Valid reports whether r can name an object in a table: positive number, non-negative generation.
func (r ObjectRef) Valid() bool { return r.Num > 0 && r.Gen >= 0 }

// Less orders refs by number, then generation.
func (r ObjectRef) Less(o ObjectRef) bool {
	if r.Num != o.Num {
		return r.Num < o.Num
	}
	return r.Gen < o.Gen
}

// Object is the closed set of PDF values. Every variant lives in this package.
type Object interface {
	Type() string
	IsIndirect() bool
	object()
}

// Resolver looks up indirect objects by reference.
type Resolver interface {
	Lookup(ref ObjectRef) (Object, bool)
}

// ErrUnbound is returned when a link has no table to resolve against.
var ErrUnbound = errors.New("link is not bound to a document")

// Kind names, as returned by Object.Type.
const (
	TypeName   = "name"
	TypeNumber = "number"
	TypeBool   = "boolean"
	TypeNull   = "null"
	TypeString = "string"
	TypeHex    = "hexstring"
	TypeArray  = "array"
	TypeDict   = "dict"
	TypeStream = "stream"
	TypeRef    = "ref"
	TypeLink   = "link"
)

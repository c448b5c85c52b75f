package recovery

import (
	"context"
	"fmt"
)

// Strategy decides what happens when one part of a document cannot be read.
type Strategy interface {
	OnError(ctx context.Context, err error, location Location) Action
}

// Location points at the failing part of a document.
type Location struct {
	ByteOffset int64
	ObjectNum  int
	ObjectGen  int
	Component  string
}

func (l Location) String() string {
	if l.ObjectNum > 0 {
		return fmt.Sprintf("%s: object %d %d at offset %d", l.Component, l.ObjectNum, l.ObjectGen, l.ByteOffset)
	}
	return fmt.Sprintf("%s: offset %d", l.Component, l.ByteOffset)
}

// Action is a Strategy's answer for one damaged part.
type Action int

const (
	// ActionFail aborts the read with the error.
	ActionFail Action = iota
	// ActionSkip drops the part and continues.
	ActionSkip
)

// Diagnostic records a non-fatal problem found while reading a document.
type Diagnostic struct {
	Location Location
	Err      error
}

func (d Diagnostic) String() string { return fmt.Sprintf("[%s] %v", d.Location, d.Err) }

package recovery

import (
	"errors"
	"fmt"
)

var (
	ErrNoObjects         = errors.New("no indirect objects")
	ErrNoTrailer         = errors.New("no trailer")
	ErrNoRoot            = errors.New("trailer has no /Root")
	ErrNoPages           = errors.New("no pages")
	ErrLookup            = errors.New("object not found")
	ErrUnsupportedFilter = errors.New("unsupported filter")
	ErrUnsupportedAnnots = errors.New("unsupported /Annots shape")
)

// FormatError reports a document that is structurally unusable, or a
// single object span or derived structure that could not be built.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string { return "pdf format: " + e.Op + ": " + e.Err.Error() }
func (e *FormatError) Unwrap() error { return e.Err }

// OperationError reports caller misuse: unknown object or page, invalid id.
// The document is unchanged when one is returned.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string { return "pdf operation: " + e.Op + ": " + e.Err.Error() }
func (e *OperationError) Unwrap() error { return e.Err }

// DecodeError reports a stream payload that could not be decoded.
type DecodeError struct {
	Filter string
	Err    error
}

func (e *DecodeError) Error() string { return "pdf decode " + e.Filter + ": " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

func Formatf(op, format string, args ...any) error {
	return &FormatError{Op: op, Err: fmt.Errorf(format, args...)}
}

func Operationf(op, format string, args ...any) error {
	return &OperationError{Op: op, Err: fmt.Errorf(format, args...)}
}

// IsFormat reports whether err is or wraps a *FormatError.
func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsOperation reports whether err is or wraps an *OperationError.
func IsOperation(err error) bool {
	var oe *OperationError
	return errors.As(err, &oe)
}

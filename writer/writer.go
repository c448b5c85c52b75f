// Package writer renders objects in PDF syntax and appends queued document
// edits to the original bytes as an incremental update.
package writer

import (
	"context"

	"github.com/wudi/pdfedit/ir/raw"
)

// Interceptor observes each object as it is appended. An error from either
// hook abandons the save; nothing is committed to the document.
type Interceptor interface {
	BeforeWrite(ctx context.Context, ref raw.ObjectRef, obj raw.Object) error
	AfterWrite(ctx context.Context, ref raw.ObjectRef, bytesWritten int64) error
}

// Option configures an Incremental writer.
type Option func(*Incremental)

// WithInterceptor adds i after any interceptors already installed.
func WithInterceptor(i Interceptor) Option {
	return func(w *Incremental) { w.interceptors = append(w.interceptors, i) }
}

// WithKeepID leaves the trailer /ID as it was instead of refreshing its
// second element.
func WithKeepID() Option {
	return func(w *Incremental) { w.keepID = true }
}

// Package observability defines the logging and tracing hooks the library
// reports through. Hosts plug in their own implementations; the defaults
// discard everything.
package observability

import (
	"context"
	"time"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is one key/value pair attached to a log record.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field             { return Field{key, value} }
func Any(key string, value any) Field            { return Field{key, value} }
func Int(key string, value int) Field            { return Field{key, value} }
func Int64(key string, value int64) Field        { return Field{key, value} }
func Duration(key string, d time.Duration) Field { return Field{key, d} }

// Error records err under key. A nil error is recorded as nil.
func Error(key string, err error) Field { return Field{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// Tracer opens spans around load, decode and save.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

type Span interface {
	SetTag(key string, value any)
	SetError(err error)
	Finish()
}

// Span names used by the library.
const (
	SpanLoad   = "pdf.load"
	SpanDecode = "pdf.decode"
	SpanSave   = "pdf.save"
)

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

// NopTracer returns a tracer that does nothing.
func NopTracer() Tracer { return nopTracer{} }

type nopSpan struct{}

func (nopSpan) SetTag(string, any) {}
func (nopSpan) SetError(error)     {}
func (nopSpan) Finish()            {}

// LogTracer writes one Debug record per finished span carrying its name,
// duration, tags and error.
func LogTracer(l Logger) Tracer { return logTracer{l: l} }

type logTracer struct{ l Logger }

func (t logTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, &logSpan{l: t.l, name: name, start: time.Now()}
}

type logSpan struct {
	l      Logger
	name   string
	start  time.Time
	fields []Field
	err    error
}

func (s *logSpan) SetTag(key string, value any) { s.fields = append(s.fields, Any(key, value)) }
func (s *logSpan) SetError(err error)           { s.err = err }

func (s *logSpan) Finish() {
	fields := append([]Field{String("span", s.name), Duration("took", time.Since(s.start))}, s.fields...)
	if s.err != nil {
		fields = append(fields, Error("err", s.err))
	}
	s.l.Debug("span finished", fields...)
}

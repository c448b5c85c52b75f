package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, SpanLoad)
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestSlogLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	log := NewSlog(slog.New(h)).With(String("file", "a.pdf"))

	log.Debug("indexed", Int("objects", 12))
	log.Warn("skipped", Error("err", errors.New("bad span")), Int64("offset", 42))

	out := buf.String()
	for _, want := range []string{"file=a.pdf", "objects=12", `err="bad span"`, "offset=42", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestNopLoggerWith(t *testing.T) {
	var l Logger = NopLogger{}
	l.With(String("k", "v")).Info("ignored")
}

func TestLogTracer(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	_, span := LogTracer(log).StartSpan(context.Background(), SpanSave)
	span.SetTag("objects", 3)
	span.SetError(errors.New("disk full"))
	span.Finish()

	out := buf.String()
	for _, want := range []string{"span finished", "span=pdf.save", "took=", "objects=3", `err="disk full"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("span record missing %q:\n%s", want, out)
		}
	}
}

package recovery

import (
	"context"
	"sync"
)

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, err error, at Location) Action

func (f StrategyFunc) OnError(ctx context.Context, err error, at Location) Action {
	return f(ctx, err, at)
}

// Strict fails the read at the first damaged part.
func Strict() Strategy {
	return StrategyFunc(func(context.Context, error, Location) Action { return ActionFail })
}

// Lenient skips damaged parts and records a diagnostic for each. Once Limit
// parts have been skipped the next error fails the read; a zero Limit never
// fails. A cancelled context always fails.
type Lenient struct {
	Limit int

	mu          sync.Mutex
	diagnostics []Diagnostic
}

func NewLenient(limit int) *Lenient {
	return &Lenient{Limit: limit}
}

func (s *Lenient) OnError(ctx context.Context, err error, at Location) Action {
	if ctx.Err() != nil {
		return ActionFail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Limit > 0 && len(s.diagnostics) >= s.Limit {
		return ActionFail
	}
	s.diagnostics = append(s.diagnostics, Diagnostic{Location: at, Err: err})
	return ActionSkip
}

// Diagnostics returns the skipped parts in the order they were reported.
func (s *Lenient) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Diagnostic(nil), s.diagnostics...)
}

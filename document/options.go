package document

import (
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/security"
)

type config struct {
	logger        observability.Logger
	tracer        observability.Tracer
	recovery      recovery.Strategy
	limits        security.Limits
	decodeStreams bool
}

// Option configures Load.
type Option func(*config)

func WithLogger(l observability.Logger) Option {
	return func(c *config) { c.logger = l }
}

func WithTracer(t observability.Tracer) Option {
	return func(c *config) { c.tracer = t }
}

// WithRecovery sets the strategy consulted for every object span that fails
// to parse. The default skips the span and records a diagnostic.
func WithRecovery(s recovery.Strategy) Option {
	return func(c *config) { c.recovery = s }
}

func WithLimits(l security.Limits) Option {
	return func(c *config) { c.limits = l }
}

// WithDecodeStreams decodes every stream payload while loading.
func WithDecodeStreams(on bool) Option {
	return func(c *config) { c.decodeStreams = on }
}

func newConfig(opts []Option) config {
	c := config{
		logger:   observability.NopLogger{},
		tracer:   observability.NopTracer(),
		recovery: recovery.NewLenient(0),
	}
	for _, o := range opts {
		o(&c)
	}
	c.limits = c.limits.WithDefaults()
	return c
}

package trace

import "context"

type (
	tracerKey   struct{}
	spanKey     struct{}
	inflightKey struct{}
)

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithTracer attaches t to ctx; nil means Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// SpanContext carries the enclosing span so the parser can nest its
// lex+parse span under the driver's per-file span.
type SpanContext struct {
	SpanID uint64
}

// CurrentSpan returns the span attached to ctx, or the zero SpanContext.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx != nil {
		if sc, ok := ctx.Value(spanKey{}).(SpanContext); ok {
			return sc
		}
	}
	return SpanContext{}
}

func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanKey{}, sc)
}

// WithInflight attaches the set of files in flight that a Heartbeat reads.
func WithInflight(ctx context.Context, f *Inflight) context.Context {
	return context.WithValue(ctx, inflightKey{}, f)
}

// InflightFrom returns the set attached to ctx; nil is a valid no-op set.
func InflightFrom(ctx context.Context) *Inflight {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(inflightKey{}).(*Inflight)
	return f
}

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"goa.design/clue/log"
)

type (
	// ClueLogger emits compiler-pipeline log lines (parse/resolve/validate/
	// evaluate/render diagnostics) through goa.design/clue/log.
	ClueLogger struct{}

	// ClueMetrics records pipeline counters, timers, and gauges — lens
	// invocation counts, phase durations, gas consumption — through OTEL.
	ClueMetrics struct {
		meter metric.Meter
	}

	// ClueTracer opens spans around pipeline phases (resolve, validate,
	// evaluate, render) and individual lens calls through OTEL.
	ClueTracer struct {
		tracer trace.Tracer
	}

	clueSpan struct {
		span trace.Span
	}

	// kv is the canonical (key, value) pair extracted from a variadic
	// keyvals/attrs slice. The []any conversions below (to a clue Fielder,
	// to an OTEL attribute) build on pairsFromVariadic rather than
	// re-walking the slice themselves; tagsToAttrs pairs []string metric
	// tags with its own loop.
	kv struct {
		key string
		val any
	}
)

// NewClueLogger constructs a Logger that delegates to goa.design/clue/log.
// Formatting and debug settings come from the context, set via
// log.Context/log.WithFormat/log.WithDebug by the embedding application.
func NewClueLogger() Logger { return ClueLogger{} }

// NewClueMetrics constructs a Metrics recorder backed by the global OTEL
// MeterProvider, scoped under the facet-compiler instrumentation name.
func NewClueMetrics() Metrics {
	return &ClueMetrics{meter: otel.Meter("github.com/rokoss21/facet-compiler")}
}

// NewClueTracer constructs a Tracer backed by the global OTEL TracerProvider.
func NewClueTracer() Tracer {
	return &ClueTracer{tracer: otel.Tracer("github.com/rokoss21/facet-compiler")}
}

func (ClueLogger) Debug(ctx context.Context, msg string, keyvals ...any) {
	log.Debug(ctx, withMessage(msg, keyvals)...)
}

func (ClueLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	log.Info(ctx, withMessage(msg, keyvals)...)
}

func (ClueLogger) Warn(ctx context.Context, msg string, keyvals ...any) {
	fielders := []log.Fielder{log.KV{K: "msg", V: msg}, log.KV{K: "severity", V: "warning"}}
	log.Warn(ctx, append(fielders, toFielders(keyvals)...)...)
}

func (ClueLogger) Error(ctx context.Context, msg string, keyvals ...any) {
	log.Error(ctx, nil, withMessage(msg, keyvals)...)
}

func withMessage(msg string, keyvals []any) []log.Fielder {
	return append([]log.Fielder{log.KV{K: "msg", V: msg}}, toFielders(keyvals)...)
}

// IncCounter increments a named counter, e.g. "lens.invocations" tagged by
// lens name and trust level.
func (m *ClueMetrics) IncCounter(name string, value float64, tags ...string) {
	counter, err := m.meter.Float64Counter(name)
	if err != nil {
		return
	}
	counter.Add(context.Background(), value, metric.WithAttributes(tagsToAttrs(tags)...))
}

// RecordTimer records a duration, e.g. a pipeline phase's wall time.
func (m *ClueMetrics) RecordTimer(name string, duration time.Duration, tags ...string) {
	histogram, err := m.meter.Float64Histogram(name)
	if err != nil {
		return
	}
	histogram.Record(context.Background(), duration.Seconds(), metric.WithAttributes(tagsToAttrs(tags)...))
}

// RecordGauge records a point-in-time value, e.g. gas remaining after an
// Evaluate pass. OTEL has no synchronous gauge instrument, so a histogram
// named with a "_gauge" suffix is the closest available fit.
func (m *ClueMetrics) RecordGauge(name string, value float64, tags ...string) {
	histogram, err := m.meter.Float64Histogram(name + "_gauge")
	if err != nil {
		return
	}
	histogram.Record(context.Background(), value, metric.WithAttributes(tagsToAttrs(tags)...))
}

func (t *ClueTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span) {
	newCtx, span := t.tracer.Start(ctx, name, opts...)
	return newCtx, &clueSpan{span: span}
}

func (t *ClueTracer) Span(ctx context.Context) Span {
	return &clueSpan{span: trace.SpanFromContext(ctx)}
}

func (s *clueSpan) End(opts ...trace.SpanEndOption) { s.span.End(opts...) }

// AddEvent records a point event on the span, with attrs as alternating
// key/value pairs.
func (s *clueSpan) AddEvent(name string, attrs ...any) {
	s.span.AddEvent(name, trace.WithAttributes(toAttrs(attrs)...))
}

func (s *clueSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

func (s *clueSpan) RecordError(err error, opts ...trace.EventOption) {
	s.span.RecordError(err, opts...)
}

// pairsFromVariadic walks a (k1, v1, k2, v2, ...) slice into kv pairs,
// dropping any pair whose key isn't a string and leaving a dangling final
// key paired with a nil value. toFielders and toAttrs both funnel through
// here; tagsToAttrs, over []string tags, pairs a dangling key with "".
func pairsFromVariadic(vals []any) []kv {
	var pairs []kv
	for i := 0; i < len(vals); i += 2 {
		k, ok := vals[i].(string)
		if !ok {
			continue
		}
		var v any
		if i+1 < len(vals) {
			v = vals[i+1]
		}
		pairs = append(pairs, kv{key: k, val: v})
	}
	return pairs
}

func toFielders(keyvals []any) []log.Fielder {
	pairs := pairsFromVariadic(keyvals)
	fielders := make([]log.Fielder, len(pairs))
	for i, p := range pairs {
		fielders[i] = log.KV{K: p.key, V: p.val}
	}
	return fielders
}

func tagsToAttrs(tags []string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for i := 0; i < len(tags); i += 2 {
		v := ""
		if i+1 < len(tags) {
			v = tags[i+1]
		}
		attrs = append(attrs, attribute.String(tags[i], v))
	}
	return attrs
}

func toAttrs(keyvals []any) []attribute.KeyValue {
	pairs := pairsFromVariadic(keyvals)
	attrs := make([]attribute.KeyValue, len(pairs))
	for i, p := range pairs {
		attrs[i] = valueAttr(p.key, p.val)
	}
	return attrs
}

// valueAttr converts a single value into an OTEL attribute, stringifying
// anything that isn't one of the primitive kinds OTEL natively supports
// (e.g. a lens's argument list) rather than collapsing it to an empty
// string the way a plain type switch with no default conversion would.
func valueAttr(key string, v any) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case float64:
		return attribute.Float64(key, val)
	case bool:
		return attribute.Bool(key, val)
	default:
		return attribute.String(key, fmt.Sprintf("%v", val))
	}
}

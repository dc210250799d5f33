// Package telemetry holds the Prometheus collectors and OpenTelemetry spans
// shared by the REST and gRPC clients.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	namespace      = "clamav_sdk"
	instrumentName = "github.com/DevHatRo/clamav-sdk-go"
)

// DefaultBuckets are the scan latency histogram buckets in seconds.
var DefaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

// Outcome label values for non-verdict terminations.
const (
	OutcomeError = "error"
	OutcomeDone  = "done"
)

// Recorder records metrics and spans for one client. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	transport string
	scans     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	frames    *prometheus.CounterVec
	pending   *prometheus.GaugeVec
	tracer    trace.Tracer
}

// New creates a Recorder for the given transport label. Metrics are only
// registered when reg is non-nil. Collectors already registered by another
// client on the same registry are reused.
func New(transport string, reg prometheus.Registerer, tp trace.TracerProvider) (*Recorder, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	r := &Recorder{
		transport: transport,
		tracer:    tp.Tracer(instrumentName),
	}
	if reg == nil {
		return r, nil
	}

	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_total",
		Help:      "Scans performed, by transport, operation and outcome.",
	}, []string{"transport", "operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Wall-clock duration of scan operations.",
		Buckets:   DefaultBuckets,
	}, []string{"transport", "operation"})
	frames := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "frames_sent_total",
		Help:      "Chunk frames written to streaming channels.",
	}, []string{"transport"})
	pending := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_pending",
		Help:      "Payloads awaiting a terminal response in multi-file sessions.",
	}, []string{"transport"})

	var err error
	if r.scans, err = register(reg, scans); err != nil {
		return nil, err
	}
	if r.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if r.frames, err = register(reg, frames); err != nil {
		return nil, err
	}
	if r.pending, err = register(reg, pending); err != nil {
		return nil, err
	}
	return r, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Op tracks one in-progress operation.
type Op struct {
	r         *Recorder
	operation string
	start     time.Time
	span      trace.Span
}

// Start begins an operation span.
func (r *Recorder) Start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, *Op) {
	if r == nil {
		return ctx, &Op{operation: operation, start: time.Now()}
	}
	attrs = append(attrs, attribute.String("clamav.transport", r.transport))
	ctx, span := r.tracer.Start(ctx, "clamav."+operation, trace.WithAttributes(attrs...))
	return ctx, &Op{r: r, operation: operation, start: time.Now(), span: span}
}

// End finishes the operation. outcome is the verdict label; it is replaced
// by OutcomeError when err is non-nil and defaults to OutcomeDone.
func (o *Op) End(outcome string, err error) {
	switch {
	case err != nil:
		outcome = OutcomeError
	case outcome == "":
		outcome = OutcomeDone
	}
	if o.span != nil {
		if err != nil {
			o.span.RecordError(err)
			o.span.SetStatus(codes.Error, err.Error())
		}
		o.span.SetAttributes(attribute.String("clamav.outcome", outcome))
		o.span.End()
	}
	if o.r == nil || o.r.scans == nil {
		return
	}
	o.r.scans.WithLabelValues(o.r.transport, o.operation, outcome).Inc()
	o.r.duration.WithLabelValues(o.r.transport, o.operation).Observe(time.Since(o.start).Seconds())
}

// Event adds a span event, e.g. a per-file completion inside a session.
func (o *Op) Event(name string, attrs ...attribute.KeyValue) {
	if o.span != nil {
		o.span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// FrameSent counts one frame written to a stream.
func (r *Recorder) FrameSent() {
	if r == nil || r.frames == nil {
		return
	}
	r.frames.WithLabelValues(r.transport).Inc()
}

// Pending adjusts the number of payloads awaiting a response.
func (r *Recorder) Pending(delta int) {
	if r == nil || r.pending == nil {
		return
	}
	r.pending.WithLabelValues(r.transport).Add(float64(delta))
}

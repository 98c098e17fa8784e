package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/robopages/robopages/dispatch"
)

// CallObserver records call dispatch signals into OpenTelemetry.
type CallObserver struct {
	tracer trace.Tracer

	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewCallObserver creates a call observer bound to the provided meter/tracer.
func NewCallObserver(meter metric.Meter, tracer trace.Tracer) (*CallObserver, error) {
	calls, err := meter.Int64Counter(
		"robopages.calls",
		metric.WithDescription("Number of dispatched function calls"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"robopages.call.duration",
		metric.WithDescription("Function call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &CallObserver{
		tracer:   tracer,
		calls:    calls,
		duration: duration,
	}, nil
}

// ObserveCall records one dispatched call's outcome.
func (o *CallObserver) ObserveCall(observation dispatch.CallObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("function", observation.Function),
		attribute.String("page", observation.Page),
		attribute.String("status", string(observation.Status)),
		attribute.Bool("dockerized", observation.Dockerized),
	}
	if observation.ErrorCode != "" {
		attrs = append(attrs, attribute.String("error_code", observation.ErrorCode))
	}
	if observation.ExitCode != 0 {
		attrs = append(attrs, attribute.Int("exit_code", observation.ExitCode))
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.calls.Add(ctx, 1, options)
	o.duration.Record(ctx, float64(time.Duration(observation.DurationMS)*time.Millisecond)/float64(time.Second), options)

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "call.dispatch", trace.WithAttributes(attrs...))
	if observation.Status == dispatch.StatusError {
		span.SetStatus(codes.Error, observation.ErrorCode)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

var _ dispatch.Observer = (*CallObserver)(nil)

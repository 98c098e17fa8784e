package otel_test

import (
	"context"
	"testing"

	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/robopages/robopages/dispatch"
	robotel "github.com/robopages/robopages/otel"
)

// newTestMeter returns a meter backed by a manual reader for collecting metrics in tests.
func newTestMeter() (*metric.ManualReader, *metric.MeterProvider) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	return reader, mp
}

// collectMetrics reads all metrics from the reader.
func collectMetrics(t *testing.T, reader *metric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return &rm
}

// findMetric searches for a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, scope := range rm.ScopeMetrics {
		for i := range scope.Metrics {
			if scope.Metrics[i].Name == name {
				return &scope.Metrics[i]
			}
		}
	}
	return nil
}

func TestCallObserverRecordsMetrics(t *testing.T) {
	reader, mp := newTestMeter()
	meter := mp.Meter("test-call-observer")
	tracer := noop.NewTracerProvider().Tracer("test-call-observer")

	observer, err := robotel.NewCallObserver(meter, tracer)
	if err != nil {
		t.Fatalf("NewCallObserver() error = %v", err)
	}

	observer.ObserveCall(dispatch.CallObservation{
		CallID:     "call-1",
		Function:   "nmap_tcp_ports",
		Page:       "nmap",
		Status:     dispatch.StatusError,
		ErrorCode:  dispatch.CodeTimeout,
		DurationMS: 120,
	})
	observer.ObserveCall(dispatch.CallObservation{
		CallID:     "call-2",
		Function:   "nmap_tcp_ports",
		Page:       "nmap",
		Status:     dispatch.StatusOK,
		ExitCode:   0,
		DurationMS: 80,
		Dockerized: true,
	})

	rm := collectMetrics(t, reader)

	calls := findMetric(rm, "robopages.calls")
	if calls == nil {
		t.Fatal("robopages.calls metric not found")
	}
	sumData, ok := calls.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("robopages.calls type = %T, want Sum[int64]", calls.Data)
	}
	// One data point per attribute set, each counting one call.
	if len(sumData.DataPoints) != 2 {
		t.Fatalf("expected 2 data points, got %d", len(sumData.DataPoints))
	}
	for _, dp := range sumData.DataPoints {
		if dp.Value != 1 {
			t.Errorf("expected counter value 1, got %d", dp.Value)
		}
	}

	errorCodeFound := false
	for _, dp := range sumData.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if string(attr.Key) == "error_code" && attr.Value.AsString() == dispatch.CodeTimeout {
				errorCodeFound = true
			}
		}
	}
	if !errorCodeFound {
		t.Error("expected error_code attribute on failed call data point")
	}

	duration := findMetric(rm, "robopages.call.duration")
	if duration == nil {
		t.Fatal("robopages.call.duration metric not found")
	}
	histData, ok := duration.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("robopages.call.duration type = %T, want Histogram[float64]", duration.Data)
	}
	if len(histData.DataPoints) != 2 {
		t.Fatalf("expected 2 histogram data points, got %d", len(histData.DataPoints))
	}
	// 120ms = 0.12s on the failed call's data point.
	sumFound := false
	for _, dp := range histData.DataPoints {
		if dp.Sum == 0.12 {
			sumFound = true
		}
	}
	if !sumFound {
		t.Error("expected a histogram data point with sum 0.12s")
	}
}

func TestCallObserverEmitsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	tracer := tp.Tracer("test-call-observer")

	_, mp := newTestMeter()
	observer, err := robotel.NewCallObserver(mp.Meter("test-call-observer"), tracer)
	if err != nil {
		t.Fatalf("NewCallObserver() error = %v", err)
	}

	observer.ObserveCall(dispatch.CallObservation{
		Function:   "ping_host",
		Page:       "ping",
		Status:     dispatch.StatusOK,
		DurationMS: 10,
	})
	observer.ObserveCall(dispatch.CallObservation{
		Function:   "ping_host",
		Page:       "ping",
		Status:     dispatch.StatusError,
		ErrorCode:  dispatch.CodeExecution,
		DurationMS: 5,
	})

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	for _, span := range spans {
		if span.Name != "call.dispatch" {
			t.Errorf("span name = %q, want call.dispatch", span.Name)
		}
	}
	if spans[0].Status.Code != otelcodes.Ok {
		t.Errorf("first span status = %v, want Ok", spans[0].Status.Code)
	}
	if spans[1].Status.Code != otelcodes.Error {
		t.Errorf("second span status = %v, want Error", spans[1].Status.Code)
	}
	if spans[1].Status.Description != dispatch.CodeExecution {
		t.Errorf("second span description = %q, want %q", spans[1].Status.Description, dispatch.CodeExecution)
	}

	functionFound := false
	for _, attr := range spans[0].Attributes {
		if string(attr.Key) == "function" && attr.Value.AsString() == "ping_host" {
			functionFound = true
		}
	}
	if !functionFound {
		t.Error("expected function attribute on dispatch span")
	}
}

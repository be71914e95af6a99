package main

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/campusops/library-circulation/circulation/config"
	"github.com/campusops/library-circulation/journal"
	"github.com/campusops/library-circulation/journal/oteladapters"
)

const (
	serviceName             = "circulationd"
	observabilityShutdownIn = 5 * time.Second
)

// observability holds the adapters handed to the ledger and the journal.
// metrics and tracing stay nil when observability is disabled.
type observability struct {
	logger  journal.Logger
	metrics journal.MetricsCollector
	tracing journal.TracingCollector
}

// setupObservability installs global OpenTelemetry providers when enabled. No exporter is
// attached here. Ledger and journal logs go to the global OpenTelemetry LoggerProvider.
func setupObservability(_ context.Context, settings config.Settings, logger *slog.Logger) (observability, func(), error) {
	if !settings.Observability {
		return observability{logger: logger}, func() {}, nil
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), observabilityShutdownIn)
		defer cancel()

		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Warn("tracer provider shutdown failed", "error", err.Error())
		}

		if err := meterProvider.Shutdown(ctx); err != nil {
			logger.Warn("meter provider shutdown failed", "error", err.Error())
		}
	}

	logger.Info("observability enabled", "metrics", true, "tracing", true, "log_bridge", true)

	return observability{
		logger:  oteladapters.NewSlogBridgeLogger(serviceName),
		metrics: oteladapters.NewMetricsCollector(meterProvider.Meter(serviceName)),
		tracing: oteladapters.NewTracingCollector(tracerProvider.Tracer(serviceName)),
	}, shutdown, nil
}

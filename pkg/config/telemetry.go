package config

import (
	"context"
	"time"

	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/pitgrid/boostrace-service-go/log"
	"github.com/pitgrid/boostrace-service-go/version"
)

// Telemetry holds the configured OTLP providers.
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// SetupTelemetry initializes OTLP trace and metric providers against
// TelemetryEndpoint and registers them globally.
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", "boostrace-service"),
		attribute.String("service.version", version.Version),
	)

	traceExp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(TelemetryEndpoint),
		otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)

	metricExp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(TelemetryEndpoint),
		otlpmetricgrpc.WithInsecure())
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp,
			sdkmetric.WithInterval(15*time.Second))),
		sdkmetric.WithResource(res))
	otel.SetMeterProvider(mp)

	if err := otlpruntime.Start(
		otlpruntime.WithMinimumReadMemStatsInterval(10 * time.Second)); err != nil {
		return nil, err
	}
	return &Telemetry{tracerProvider: tp, meterProvider: mp}, nil
}

func (t *Telemetry) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.tracerProvider.Shutdown(ctx); err != nil {
		log.Error("could not shutdown tracer provider", log.ErrorField(err))
	}
	if err := t.meterProvider.Shutdown(ctx); err != nil {
		log.Error("could not shutdown meter provider", log.ErrorField(err))
	}
}

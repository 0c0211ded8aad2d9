package app

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "game-storefront"

// newTracerProvider exports spans over OTLP/HTTP to endpoint and installs
// the provider globally.
func newTracerProvider(
	ctx context.Context, endpoint string, sampleRatio float64,
) (*sdktrace.TracerProvider, error) {
	const op = "app.newTracerProvider"

	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(newResource()),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

// newMeterProvider pushes metrics over OTLP/HTTP to endpoint every interval
// and installs the provider globally.
func newMeterProvider(
	ctx context.Context, endpoint string, interval time.Duration,
) (*sdkmetric.MeterProvider, error) {
	const op = "app.newMeterProvider"

	exp, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)),
		sdkmetric.WithResource(newResource()),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

func newResource() *resource.Resource {
	return resource.NewSchemaless(attribute.String("service.name", serviceName))
}

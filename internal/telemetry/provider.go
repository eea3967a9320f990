// Package telemetry exports the bridge's command spans over OTLP/HTTP.
//
// Every native-loop command is a span (see package bridge). The resource
// records which platform backend answered and whether the loop was pinned
// to an OS thread, since both change how the spans read.
package telemetry

import (
	"context"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/reclaim/launchers/internal/config"
)

const (
	// PlatformKey names the association database backend (runtime.GOOS).
	PlatformKey = attribute.Key("launchers.platform")

	// LockedThreadKey reports whether the native loop runs on a locked OS thread.
	LockedThreadKey = attribute.Key("launchers.bridge.locked_thread")
)

// Setup registers a global tracer provider exporting to
// cfg.Telemetry.Endpoint. When tracing is disabled or no endpoint is set it
// registers nothing and returns a no-op shutdown.
//
// The returned shutdown function flushes pending spans and should be
// deferred by the caller.
func Setup(ctx context.Context, serviceName string, cfg config.Config) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.Telemetry.Endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := newResource(ctx, serviceName, cfg.Bridge)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func newResource(ctx context.Context, serviceName string, bridge config.BridgeConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			PlatformKey.String(runtime.GOOS),
			LockedThreadKey.Bool(bridge.LockOSThread),
		),
	)
}

package telemetry

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/reclaim/launchers/internal/config"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	cfg := config.Config{Telemetry: config.TelemetryConfig{Enabled: true}}
	shutdown, err := Setup(context.Background(), "test-host", cfg)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupNoopWhenDisabled(t *testing.T) {
	cfg := config.Config{Telemetry: config.TelemetryConfig{Endpoint: "http://localhost:4318"}}
	shutdown, err := Setup(context.Background(), "test-host", cfg)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupCreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address; no span is recorded so nothing is exported.
	cfg := config.Config{Telemetry: config.TelemetryConfig{
		Enabled:  true,
		Endpoint: "http://192.0.2.1:4318",
	}}
	shutdown, err := Setup(context.Background(), "test-host", cfg)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestResourceDescribesBridge(t *testing.T) {
	res, err := newResource(context.Background(), "test-host", config.BridgeConfig{LockOSThread: true})
	require.NoError(t, err)

	set := res.Set()
	name, ok := set.Value(semconv.ServiceNameKey)
	require.True(t, ok)
	require.Equal(t, "test-host", name.AsString())

	platform, ok := set.Value(PlatformKey)
	require.True(t, ok)
	require.Equal(t, runtime.GOOS, platform.AsString())

	locked, ok := set.Value(LockedThreadKey)
	require.True(t, ok)
	require.True(t, locked.AsBool())
}

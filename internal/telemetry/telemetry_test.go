package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	t.Setenv(envEndpoint, "")

	provider, err := Setup(context.Background())
	require.NoError(t, err)
	assert.False(t, provider.Enabled())
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSetup_InstallsProvider(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	t.Setenv(envEndpoint, "http://127.0.0.1:4318")
	t.Setenv(envServiceName, "formwizard-test")

	provider, err := Setup(context.Background())
	require.NoError(t, err)
	require.True(t, provider.Enabled())
	assert.Same(t, provider.provider, otel.GetTracerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "https://collector:4318", endpointURL("collector:4318"))
	assert.Equal(t, "http://collector:4318/v1/traces", endpointURL("http://collector:4318/v1/traces"))
}

func TestProvider_NilSafe(t *testing.T) {
	var provider *Provider
	assert.False(t, provider.Enabled())
	assert.NoError(t, provider.Shutdown(context.Background()))
}

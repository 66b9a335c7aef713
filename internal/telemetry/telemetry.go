// Package telemetry installs an OTLP trace exporter for the CLI when
// OTEL_EXPORTER_OTLP_ENDPOINT is set. Without it the global no-op provider
// stays in place and request spans cost nothing.
package telemetry

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	envEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envServiceName = "OTEL_SERVICE_NAME"
	envInsecure    = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultServiceName = "formwizard"
)

// Provider wraps the SDK tracer provider installed by Setup.
type Provider struct {
	provider *sdktrace.TracerProvider
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.provider != nil
}

// Shutdown flushes pending spans. It is safe on a disabled provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// Setup creates the exporter and registers it as the global tracer provider.
// It returns a disabled provider when no endpoint is configured.
func Setup(ctx context.Context) (*Provider, error) {
	endpoint := strings.TrimSpace(os.Getenv(envEndpoint))
	if endpoint == "" {
		return &Provider{}, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpointURL(endpoint))}
	if insecure := strings.TrimSpace(os.Getenv(envInsecure)); insecure == "true" || strings.HasPrefix(endpoint, "http://") {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	serviceName := strings.TrimSpace(os.Getenv(envServiceName))
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return &Provider{provider: provider}, nil
}

// endpointURL accepts a bare host:port the way the exporter's env handling
// does and turns it into a URL.
func endpointURL(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "https://" + endpoint
}

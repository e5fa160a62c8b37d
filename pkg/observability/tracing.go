// Package observability provides the site's Prometheus metrics, OpenTelemetry
// tracing, and the HTTP middleware that feeds them.
package observability

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

const defaultEndpoint = "localhost:4317"

// sampleRates is the share of root traces kept per environment. Unlisted
// environments keep every trace.
var sampleRates = map[string]float64{
	"production": 0.1,
	"staging":    0.5,
}

// TracingConfig configures span export
type TracingConfig struct {
	ServiceName string
	Environment string
	// Endpoint is the host:port of an OTLP gRPC collector
	Endpoint string
	// SampleRate overrides the environment's rate when positive
	SampleRate float64
}

func (c TracingConfig) withDefaults() TracingConfig {
	if c.ServiceName == "" {
		c.ServiceName = "website"
	}
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.SampleRate <= 0 {
		c.SampleRate = sampleRate(c.Environment)
	}
	return c
}

// Tracing owns the tracer provider installed as the global provider
type Tracing struct {
	provider *sdktrace.TracerProvider
	config   TracingConfig
}

// InitTracing exports spans to an OTLP gRPC collector and installs the
// provider and W3C propagators globally
func InitTracing(ctx context.Context, config TracingConfig) (*Tracing, error) {
	config = config.withDefaults()

	clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(config.Endpoint)}
	if isLoopback(config.Endpoint) {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(clientOpts...))
	if err != nil {
		return nil, fmt.Errorf("failed to create span exporter: %w", err)
	}

	return install(config, sdktrace.WithBatcher(exporter))
}

// install builds the provider around the given span processing option
func install(config TracingConfig, processing sdktrace.TracerProviderOption) (*Tracing, error) {
	res, err := newResource(config)
	if err != nil {
		return nil, fmt.Errorf("failed to describe service: %w", err)
	}

	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.SampleRate))
	if config.SampleRate >= 1 {
		sampler = sdktrace.ParentBased(sdktrace.AlwaysSample())
	}

	provider := sdktrace.NewTracerProvider(
		processing,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracing{provider: provider, config: config}, nil
}

// Config returns the effective configuration
func (t *Tracing) Config() TracingConfig {
	return t.config
}

// Shutdown flushes pending spans and stops the exporter
func (t *Tracing) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

func newResource(config TracingConfig) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(serviceVersion()),
		semconv.DeploymentEnvironmentName(config.Environment),
	}
	if function := os.Getenv("AWS_LAMBDA_FUNCTION_NAME"); function != "" {
		attrs = append(attrs,
			semconv.CloudProviderAWS,
			semconv.CloudPlatformAWSLambda,
			semconv.FaaSName(function),
			semconv.CloudRegion(os.Getenv("AWS_REGION")),
		)
	}
	if host, err := os.Hostname(); err == nil {
		attrs = append(attrs, semconv.HostName(host))
	}

	return resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
}

func sampleRate(environment string) float64 {
	if rate, ok := sampleRates[environment]; ok {
		return rate
	}
	return 1
}

// serviceVersion prefers SERVICE_VERSION, then the main module version
func serviceVersion() string {
	if version := os.Getenv("SERVICE_VERSION"); version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "unknown"
}

// isLoopback reports whether a host:port endpoint is on this machine, where
// collectors run without TLS
func isLoopback(endpoint string) bool {
	host, _, err := net.SplitHostPort(endpoint)
	if err != nil {
		host = endpoint
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

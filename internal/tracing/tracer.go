// Package tracing wires OpenTelemetry for catalog builds, activations and
// the HTTP server.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultServiceName identifies mirrorkit in exported traces.
const DefaultServiceName = "mirrorkit"

// Exporters.
const (
	ExporterNone   = "none"
	ExporterFile   = "file"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

const defaultOTLPEndpoint = "localhost:4317"

// Config configures tracing.
type Config struct {
	// Enabled controls whether tracing is active. When false a no-op tracer
	// is used.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Exporter is one of "none", "file", "stdout", "otlp". With "none" spans
	// are still created, so request ids reach the logs.
	Exporter string `mapstructure:"exporter" yaml:"exporter"`

	// FilePath is the JSONL output for the file exporter.
	FilePath string `mapstructure:"file_path" yaml:"file_path"`

	// OTLPEndpoint is the collector address for the otlp exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`

	// SampleRate is the fraction of root traces sampled.
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`

	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

// DefaultConfig returns tracing disabled with a file exporter preselected.
func DefaultConfig() Config {
	return Config{
		Exporter:     ExporterFile,
		OTLPEndpoint: defaultOTLPEndpoint,
		SampleRate:   1.0,
		ServiceName:  DefaultServiceName,
	}
}

// Validate checks the exporter name and sample rate, and, when tracing is
// enabled, the settings the chosen exporter needs.
func (c Config) Validate() error {
	if c.SampleRate < 0.0 || c.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", c.SampleRate)
	}
	switch c.Exporter {
	case "", ExporterNone, ExporterFile, ExporterStdout, ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be %q, %q, %q, or %q, got %q",
			ExporterNone, ExporterFile, ExporterStdout, ExporterOTLP, c.Exporter)
	}
	if !c.Enabled {
		return nil
	}
	if c.Exporter == ExporterFile && c.FilePath == "" {
		return fmt.Errorf("tracing.file_path is required when exporter is %q", ExporterFile)
	}
	if c.Exporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is %q", ExporterOTLP)
	}
	return nil
}

// Provider owns the tracer provider and its exporter.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	enabled  bool
}

// Option adjusts the resource a Provider reports.
type Option func(*[]attribute.KeyValue)

// WithServiceVersion tags every span with the mirrorkit version.
func WithServiceVersion(version string) Option {
	return func(attrs *[]attribute.KeyValue) {
		if version != "" {
			*attrs = append(*attrs, attribute.String("service.version", version))
		}
	}
}

// NewProvider builds a provider from cfg. A disabled config yields a no-op
// provider.
func NewProvider(cfg Config, opts ...Option) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{tracer: noop.NewTracerProvider().Tracer("noop")}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	attrs := []attribute.KeyValue{attribute.String("service.name", serviceName)}
	for _, opt := range opts {
		opt(&attrs)
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	providerOpts := []sdktrace.TracerProviderOption{
		// Schemaless avoids schema URL conflicts with resource.Default().
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))),
	}
	if exporter != nil {
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(providerOpts...)
	otel.SetTracerProvider(provider)

	return &Provider{provider: provider, tracer: provider.Tracer(serviceName), enabled: true}, nil
}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ExporterFile:
		exporter, err := NewFileExporter(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("create file exporter: %w", err)
		}
		return exporter, nil
	case ExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		return exporter, nil
	case ExporterOTLP:
		exporter, err := otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		return exporter, nil
	default:
		return nil, nil
	}
}

// Tracer returns the tracer. It is never nil.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p.enabled
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider != nil {
		return p.provider.Shutdown(ctx)
	}
	return nil
}

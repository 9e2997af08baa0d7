// Package apm configures OpenTelemetry tracing.
package apm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solquote/internal/logger"
)

// Exporter names accepted in telemetry.trace_exporter.
type Exporter string

const (
	ConsoleExporter  Exporter = "console"
	ZipkinExporter   Exporter = "zipkin"
	OTLPHTTPExporter Exporter = "otlp-http"
	OTLPGRPCExporter Exporter = "otlp-grpc"
	NoExporter       Exporter = "none"
)

// TraceProvider is stopped on shutdown to flush pending spans.
type TraceProvider interface {
	Stop() error
}

// Config selects and addresses the span exporter.
type Config struct {
	ServiceName string
	Exporter    Exporter
	Endpoint    string
	// Headers is "k1=v1,k2=v2", as in OTEL_EXPORTER_OTLP_HEADERS.
	Headers string
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type noopProvider struct{}

func (noopProvider) Stop() error { return nil }

// NewTraceProvider installs a global tracer provider. Unknown exporters and
// exporter construction failures degrade to a no-op provider.
func NewTraceProvider(log logger.LoggerInterface, cfg Config) TraceProvider {
	ctx := context.Background()

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		log.Warn(ctx, "trace exporter unavailable, tracing disabled", "exporter", cfg.Exporter, "error", err)
		return noopProvider{}
	}
	if exp == nil {
		return noopProvider{}
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
			attribute.String("otel.exporter", string(cfg.Exporter)),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	log.Info(ctx, "tracing enabled", "exporter", cfg.Exporter, "endpoint", cfg.Endpoint)
	return &traceProvider{tp: tp}
}

func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case ConsoleExporter:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case ZipkinExporter:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("zipkin exporter needs an endpoint")
		}
		return zipkin.New(cfg.Endpoint)
	case OTLPHTTPExporter:
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(cfg.Endpoint),
			otlptracehttp.WithHeaders(ParseHeaders(cfg.Headers)),
		)
	case OTLPGRPCExporter:
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(cfg.Endpoint),
			otlptracegrpc.WithHeaders(ParseHeaders(cfg.Headers)),
		)
	case NoExporter, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}

// ParseHeaders parses "k1=v1,k2=v2". Malformed entries are skipped.
func ParseHeaders(s string) map[string]string {
	out := make(map[string]string)
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok || k == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return o.tp.Shutdown(ctx)
}

// NoticeError records err on span and marks it failed.
func NoticeError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Package tracing builds the otel tracer provider used by the lookup
// pipeline. Finished spans are written to the zap logger.
package tracing

import (
	"contactfinder/pkg/logger"
	"context"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Options configure the tracer provider.
type Options struct {
	// Enabled turns span export on. A disabled provider samples nothing.
	Enabled bool
	// SampleRatio is the fraction of root spans kept.
	SampleRatio float64
}

// NewTracerProvider returns an sdk tracer provider exporting to the logger
// found in ctx. Callers must Shutdown the provider to flush pending spans.
func NewTracerProvider(ctx context.Context, options Options) *sdktrace.TracerProvider {
	if !options.Enabled {
		return sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample()))
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(options.SampleRatio))),
		sdktrace.WithBatcher(NewLogExporter(logger.Get(ctx))),
	)
}

// LogExporter is a span exporter writing one log entry per finished span.
type LogExporter struct {
	logger *zap.Logger
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)

// NewLogExporter creates a LogExporter on top of l.
func NewLogExporter(l *zap.Logger) *LogExporter {
	return &LogExporter{logger: l}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		sc := s.SpanContext()
		fields := []zap.Field{
			zap.String("span", s.Name()),
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
			zap.Duration("duration", s.EndTime().Sub(s.StartTime())),
		}
		if p := s.Parent(); p.IsValid() {
			fields = append(fields, zap.String("parent_id", p.SpanID().String()))
		}
		if st := s.Status(); st.Code == codes.Error {
			fields = append(fields, zap.String("error", st.Description))
		}
		for _, kv := range s.Attributes() {
			fields = append(fields, zap.String(string(kv.Key), kv.Value.Emit()))
		}

		e.logger.Info("span finished", fields...)
	}

	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}

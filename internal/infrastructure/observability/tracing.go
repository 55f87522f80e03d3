package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "jan-server/dialog-api"
)

// GetTracer returns the tracer for the dialog-api service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// DialogAttributes returns common attributes for dialog spans.
func DialogAttributes(dialogID uint) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("dialog.id", int64(dialogID)),
	}
}

// StartRepositorySpan starts a client span around a storage call such as "message.append".
func StartRepositorySpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := GetTracer().Start(ctx, "repository."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append([]attribute.KeyValue{attribute.String("db.system", "postgresql")}, attrs...)...),
	)
	return ctx, span
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error, severity string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.severity", severity))
}

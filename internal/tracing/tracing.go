// Package tracing wraps request dispatch in spans using the global
// OpenTelemetry tracer provider. No exporter is configured here: by
// default the global provider is a no-op, so this never requires a
// running collector.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/distfs/distfs")

// StartRequestSpan opens a span named name, tagged with the request's
// filename/username, around one dispatched request.
func StartRequestSpan(ctx context.Context, name, filename, username string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("distfs.filename", filename),
		attribute.String("distfs.username", username),
	))
}

// EndWithError records err on span (if any) before the caller calls span.End().
func EndWithError(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

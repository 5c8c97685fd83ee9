package converge

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "converge"

// startRunSpan opens the span covering one policy run. The caller ends it.
//
//nolint:spancheck // Span lifecycle managed by caller
func startRunSpan(ctx context.Context, r *run) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "converge."+string(r.policy))

	span.SetAttributes(
		attribute.String("series_id", r.id),
		attribute.String("check", r.opts.name),
		attribute.Int64("duration_ms", r.duration.Milliseconds()),
	)

	return ctx, span
}

func addCheckpointEvent(span trace.Span, index int, cp *Checkpoint) {
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Int("index", index),
		attribute.String("outcome", checkpointOutcome(cp)),
	}

	if err := cp.Err(); err != nil {
		attrs = append(attrs, attribute.String("error", err.Error()))
	}

	span.AddEvent("checkpoint", trace.WithAttributes(attrs...), trace.WithTimestamp(cp.Timestamp()))
}

func endRunSpan(span trace.Span, outcome string, samples int, err error) {
	span.SetAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("samples", samples),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

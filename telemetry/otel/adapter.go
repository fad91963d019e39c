// Package otel adapts the telemetry emitter to OpenTelemetry log records. The
// host application owns the LoggerProvider and its exporters.
package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"dashboard-session-core/telemetry"
)

// NewEventEmitter returns an EventEmitter that sends events as OTel log
// records via the given LoggerProvider. If provider is nil, returns a no-op
// emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return telemetry.Nop()
	}
	return &otelEmitter{logger: provider.Logger("dashcore.telemetry")}
}

// recordLogger is the slice of otellog.Logger the emitter needs; lets tests
// capture records without a full provider.
type recordLogger interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitterWithLogger returns an EventEmitter writing to the given
// logger directly. Test seam.
func NewEventEmitterWithLogger(l recordLogger) telemetry.EventEmitter {
	return &otelEmitter{logger: l}
}

type otelEmitter struct {
	logger recordLogger
}

// Emit converts the event to an OTel log record and emits it.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	rec.SetBody(otellog.StringValue(event.Type))
	if event.Role != "" {
		rec.AddAttributes(otellog.String("role", string(event.Role)))
	}
	if event.Email != "" {
		rec.AddAttributes(otellog.String("email", event.Email))
	}
	if event.Reason != "" {
		rec.AddAttributes(otellog.String("reason", event.Reason))
	}
	if event.SubjectID != "" {
		rec.AddAttributes(otellog.String("subject_id", event.SubjectID))
	}
	if event.Err != "" {
		rec.AddAttributes(otellog.String("error", event.Err))
	}
	if !event.At.IsZero() {
		rec.SetTimestamp(event.At)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	e.logger.Emit(ctx, rec)
	return nil
}

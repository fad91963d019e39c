// Package telemetry emits best-effort events for session lifecycle and bus
// delivery failures. Emission never affects control flow; callers log and
// ignore errors.
package telemetry

import (
	"context"
	"log"
	"time"

	"dashboard-session-core/role"
)

// Event types emitted by the core.
const (
	EventLogin           = "session.login"
	EventLogout          = "session.logout"
	EventDeliveryFailure = "bus.delivery_failure"
)

// Event is a single telemetry event.
type Event struct {
	// Type is one of the Event* constants.
	Type string
	// Role is the dashboard role the event concerns.
	Role role.Role
	// Email is the session identity, when known.
	Email string
	// Reason qualifies logout events (explicit, superseded, session_timeout,
	// inactivity_timeout, invalid_token).
	Reason string
	// SubjectID is the domain object id for bus events.
	SubjectID string
	// Err is the error text for failure events.
	Err string
	// At is the event time; zero means "now".
	At time.Time
}

// EventEmitter emits telemetry events (e.g. to OTel Logs). Best-effort.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// Nop returns an emitter that discards everything.
func Nop() EventEmitter { return nopEmitter{} }

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, *Event) error { return nil }

// emitTimeout is the max time allowed for a single async emit.
const emitTimeout = 5 * time.Second

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not
// blocked. emitter and event may be nil; then EmitAsync returns immediately.
// The goroutine uses context.Background() so caller cancellation does not
// abort an in-flight emit.
func EmitAsync(emitter EventEmitter, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	if _, isNop := emitter.(nopEmitter); isNop {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(ctx, event); err != nil {
			log.Printf("telemetry: async emit failed: %v", err)
		}
	}()
}

// Package session owns the lifecycle of concurrently authenticated dashboard
// sessions: at most one per role, hydrated from the token store at startup,
// created by login, destroyed by logout, expiry, or failed re-hydration.
package session

import (
	"time"

	"dashboard-session-core/role"
)

// Session is a live, authenticated role. LastActivity >= LoginTime always.
type Session struct {
	ID           string
	Role         role.Role
	Email        string
	DisplayName  string
	Token        string
	LoginTime    time.Time
	LastActivity time.Time
}

// LogoutReason says why a session ended. Carried on lifecycle telemetry.
type LogoutReason string

const (
	// ReasonExplicit is a user-driven logout.
	ReasonExplicit LogoutReason = "explicit"
	// ReasonSuperseded means a new login replaced the session under the same role.
	ReasonSuperseded LogoutReason = "superseded"
	// ReasonSessionTimeout is the absolute session timer firing.
	ReasonSessionTimeout LogoutReason = "session_timeout"
	// ReasonInactivityTimeout is the rolling inactivity timer firing.
	ReasonInactivityTimeout LogoutReason = "inactivity_timeout"
	// ReasonInvalidToken is an identity-check failure during startup hydration.
	ReasonInvalidToken LogoutReason = "invalid_token"
)

// Lifecycle receives session transitions. The timeout engine implements it to
// arm, re-arm, and cancel per-role timers. Calls are made outside the
// directory's lock.
type Lifecycle interface {
	// SessionStarted fires on login, supersede, and hydration.
	SessionStarted(r role.Role)
	// SessionEnded fires on any destruction path.
	SessionEnded(r role.Role)
	// SessionTouched fires on an observed user-activity signal.
	SessionTouched(r role.Role)
}

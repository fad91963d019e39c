// Package timeout expires dashboard sessions under dual absolute/inactivity
// policies, one independent timer pair per role.
package timeout

import (
	"time"

	"dashboard-session-core/role"
)

// Policy is a session/inactivity duration pair.
type Policy struct {
	// Session is the absolute lifetime from (re)arming; never reset by activity.
	Session time.Duration
	// Inactivity is the rolling deadline from the last activity signal.
	Inactivity time.Duration
}

// Default policy durations.
const (
	DefaultSession         = 30 * time.Minute
	DefaultInactivity      = 15 * time.Minute
	DefaultAdminSession    = 2 * time.Hour
	DefaultAdminInactivity = 45 * time.Minute
)

// Policies holds the two policy tiers. The admin role gets Admin; every other
// role gets Standard.
type Policies struct {
	Standard Policy
	Admin    Policy
}

// DefaultPolicies returns the stock tiers: non-admin 30m/15m, admin 2h/45m.
func DefaultPolicies() Policies {
	return Policies{
		Standard: Policy{Session: DefaultSession, Inactivity: DefaultInactivity},
		Admin:    Policy{Session: DefaultAdminSession, Inactivity: DefaultAdminInactivity},
	}
}

// For returns the policy tier governing r.
func (p Policies) For(r role.Role) Policy {
	if r.IsAdmin() {
		return p.Admin
	}
	return p.Standard
}

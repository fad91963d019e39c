// Package tokenstore persists one opaque auth token per role so sessions
// survive process reloads. Tokens are pass-through: no shape validation here.
package tokenstore

import (
	"context"

	"dashboard-session-core/role"
)

// Store holds at most one token per role. Implementations must treat an
// unavailable backing store as "no token" on reads (fail safe to logged out)
// and must keep the four role slots independent: a write to one role never
// touches another.
type Store interface {
	// Set stores token for r, replacing any previous token.
	Set(ctx context.Context, r role.Role, token string) error
	// Get returns the token for r. Returns ok false if no token is stored.
	// A read failure is reported as ok false, not as an error.
	Get(ctx context.Context, r role.Role) (token string, ok bool)
	// Clear removes the token for r. Clearing an empty slot is a no-op.
	Clear(ctx context.Context, r role.Role) error
	// ClearAll removes every role's token.
	ClearAll(ctx context.Context) error
}

// Package sessioncore lets one physical user hold several concurrently
// authenticated dashboard identities in a single client runtime: log in to up
// to four roles, switch between them without discarding the others, expire
// each under its own timeout policy, and keep domain status consistent across
// every open dashboard through a relay bus.
//
// Hosts construct one Core per process and call Initialize before rendering.
package sessioncore

import (
	"context"

	sdklog "go.opentelemetry.io/otel/sdk/log"

	"dashboard-session-core/auth"
	"dashboard-session-core/auth/httpapi"
	"dashboard-session-core/bus"
	"dashboard-session-core/config"
	"dashboard-session-core/role"
	"dashboard-session-core/session"
	"dashboard-session-core/telemetry"
	"dashboard-session-core/telemetry/otel"
	"dashboard-session-core/timeout"
	"dashboard-session-core/tokenstore"
)

// Core wires the session directory, timeout engine, and synchronization bus.
type Core struct {
	directory *session.Directory
	engine    *timeout.Engine
	bus       *bus.Bus
	emitter   telemetry.EventEmitter
	closers   []func() error
}

// New assembles a Core from cfg. cfg may be nil to run on defaults; authr may
// be nil, then an HTTP client against cfg.AuthBaseURL is used; provider may be
// nil to disable telemetry.
func New(cfg *config.Config, authr auth.Authenticator, provider *sdklog.LoggerProvider) (*Core, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	emitter := otel.NewEventEmitter(provider)

	var store tokenstore.Store
	var closers []func() error
	if cfg.TokenDBPath != "" {
		s, err := tokenstore.OpenSQLiteStore(cfg.TokenDBPath)
		if err != nil {
			return nil, err
		}
		store = s
		closers = append(closers, s.Close)
	} else {
		store = tokenstore.NewMemoryStore()
	}

	if authr == nil {
		authr = httpapi.NewClient(cfg.AuthBaseURL, nil)
	}

	directory := session.NewDirectory(store, authr, emitter)
	engine := timeout.NewEngine(cfg.Policies(), directory.Expire)
	directory.SetLifecycle(engine)

	return &Core{
		directory: directory,
		engine:    engine,
		bus:       bus.New(emitter),
		emitter:   emitter,
		closers:   closers,
	}, nil
}

// Initialize hydrates sessions from persisted tokens; one identity-check per
// role, failures isolated per role. Call once at startup before rendering.
func (c *Core) Initialize(ctx context.Context) { c.directory.Initialize(ctx) }

// Initialized reports whether startup hydration has completed.
func (c *Core) Initialized() bool { return c.directory.Initialized() }

// Login authenticates email/password for r and registers its session,
// superseding any session already under r.
func (c *Core) Login(ctx context.Context, r role.Role, email, password string) (*session.Session, error) {
	return c.directory.Login(ctx, r, email, password)
}

// LoginFederated signs in r through a federated identity-provider token.
func (c *Core) LoginFederated(ctx context.Context, r role.Role, providerToken, displayName string) (*session.Session, error) {
	return c.directory.LoginFederated(ctx, r, providerToken, displayName)
}

// Logout ends r's session. Returns session.ErrNotLoggedIn if r has none; the
// switcher UI treats that as a visible no-op.
func (c *Core) Logout(ctx context.Context, r role.Role) error {
	return c.directory.Logout(ctx, r)
}

// LogoutAll ends every session and clears every persisted token.
func (c *Core) LogoutAll(ctx context.Context) error { return c.directory.LogoutAll(ctx) }

// Sessions returns every live session ordered by login time ascending, one
// switcher row per role.
func (c *Core) Sessions() []session.Session { return c.directory.List() }

// SwitchActive designates r as the rendered dashboard without
// re-authenticating. Returns session.ErrNotLoggedIn if r has no session; the
// UI then keeps the current view.
func (c *Core) SwitchActive(r role.Role) error { return c.directory.SwitchActive(r) }

// ActiveRole returns the currently rendered role, if any.
func (c *Core) ActiveRole() (role.Role, bool) { return c.directory.Active() }

// Activity records a user input signal (pointer, key, scroll, touch) against
// the active role, resetting its inactivity deadline. No-op when no dashboard
// is active.
func (c *Core) Activity() {
	if r, ok := c.directory.Active(); ok {
		c.directory.Touch(r)
	}
}

// RefreshIdentity re-runs the identity-check for r to pick up fresher profile
// fields. Not an activity signal.
func (c *Core) RefreshIdentity(ctx context.Context, r role.Role) (*session.Session, error) {
	return c.directory.RefreshIdentity(ctx, r)
}

// Subscribe registers cb for status events visible to r; returns the
// subscription id for Unsubscribe.
func (c *Core) Subscribe(r role.Role, cb bus.Callback) string { return c.bus.Subscribe(r, cb) }

// Unsubscribe removes a subscription from r.
func (c *Core) Unsubscribe(r role.Role, id string) { c.bus.Unsubscribe(r, id) }

// PublishStatus relays a domain status change from origin to every other
// subscribed role, in publish order, never echoing back to origin.
func (c *Core) PublishStatus(subjectID string, newStatus bus.Status, origin role.Role) {
	c.bus.Publish(subjectID, newStatus, origin)
}

// PublishStatusBatch relays several changes from origin, preserving order.
func (c *Core) PublishStatusBatch(changes []bus.Change, origin role.Role) {
	c.bus.PublishBatch(changes, origin)
}

// BusStats returns a diagnostic snapshot of the relay.
func (c *Core) BusStats() bus.Stats { return c.bus.GetStats() }

// Close cancels all timers, waits for in-flight bus deliveries, and releases
// the token store.
func (c *Core) Close() error {
	c.engine.Stop()
	c.bus.Flush()
	var firstErr error
	for _, f := range c.closers {
		if err := f(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

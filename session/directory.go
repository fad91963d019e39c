package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dashboard-session-core/auth"
	"dashboard-session-core/role"
	"dashboard-session-core/telemetry"
	"dashboard-session-core/tokenstore"
)

// Sentinel errors for the directory; callers compare with errors.Is.
var (
	// ErrNotLoggedIn is returned by Logout, SwitchActive, and RefreshIdentity
	// for a role with no session. Non-fatal, UI-visible no-op.
	ErrNotLoggedIn = errors.New("session: role is not logged in")
)

// Directory is the in-memory registry of live sessions, at most one per role.
// It exclusively owns session lifecycle; the timeout engine only observes
// transitions through Lifecycle and calls Expire.
type Directory struct {
	store   tokenstore.Store
	authr   auth.Authenticator
	emitter telemetry.EventEmitter

	mu          sync.RWMutex
	sessions    map[role.Role]*Session
	active      role.Role // zero value when no dashboard is active
	initialized bool

	lifecycle Lifecycle
	nowF      func() time.Time
}

// NewDirectory returns a Directory over the given store and authenticator.
// emitter may be nil to disable telemetry.
func NewDirectory(store tokenstore.Store, authr auth.Authenticator, emitter telemetry.EventEmitter) *Directory {
	if emitter == nil {
		emitter = telemetry.Nop()
	}
	return &Directory{
		store:    store,
		authr:    authr,
		emitter:  emitter,
		sessions: make(map[role.Role]*Session),
		nowF:     time.Now().UTC,
	}
}

// SetLifecycle registers the lifecycle observer. Must be called before
// Initialize or any login; typically wired right after construction.
func (d *Directory) SetLifecycle(l Lifecycle) {
	d.mu.Lock()
	d.lifecycle = l
	d.mu.Unlock()
}

// Initialize hydrates sessions from the token store: for every role with a
// stored token, one identity-check is issued on its own goroutine so one
// role's failure (network included) cannot affect another role's outcome.
// Any failure clears that role's token and leaves it logged out; nothing
// here is fatal. Sets the initialized flag when done.
func (d *Directory) Initialize(ctx context.Context) {
	var (
		wg       sync.WaitGroup
		hydrated sync.Map // role.Role → *Session
	)
	for _, r := range role.All() {
		token, ok := d.store.Get(ctx, r)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(r role.Role, token string) {
			defer wg.Done()
			profile, err := d.authr.Verify(ctx, r, token)
			if err != nil {
				_ = d.store.Clear(ctx, r)
				telemetry.EmitAsync(d.emitter, &telemetry.Event{
					Type:   telemetry.EventLogout,
					Role:   r,
					Reason: string(ReasonInvalidToken),
					Err:    err.Error(),
				})
				return
			}
			now := d.nowF()
			hydrated.Store(r, &Session{
				ID:           uuid.New().String(),
				Role:         r,
				Email:        profile.Email,
				DisplayName:  profile.DisplayName,
				Token:        token,
				LoginTime:    now,
				LastActivity: now,
			})
		}(r, token)
	}
	wg.Wait()

	var started []role.Role
	d.mu.Lock()
	for _, r := range role.All() {
		if v, ok := hydrated.Load(r); ok {
			d.sessions[r] = v.(*Session)
			started = append(started, r)
		}
	}
	d.initialized = true
	l := d.lifecycle
	d.mu.Unlock()

	for _, r := range started {
		if l != nil {
			l.SessionStarted(r)
		}
	}
}

// Initialized reports whether startup hydration has completed. Dependents
// that must not act before hydration consume this.
func (d *Directory) Initialized() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.initialized
}

// Login authenticates email/password for r, persists the token, re-issues the
// identity-check for canonical profile fields, and registers the session. A
// session already occupying r is silently superseded. Returns
// auth.ErrInvalidCredentials or auth.ErrUnreachable from the authenticator.
func (d *Directory) Login(ctx context.Context, r role.Role, email, password string) (*Session, error) {
	res, err := d.authr.Login(ctx, r, email, password)
	if err != nil {
		return nil, err
	}
	return d.adopt(ctx, r, res.Token)
}

// LoginFederated is Login over a federated identity-provider token; same
// contract shape, used for SSO-style admin sign-in.
func (d *Directory) LoginFederated(ctx context.Context, r role.Role, providerToken, displayName string) (*Session, error) {
	res, err := d.authr.LoginFederated(ctx, r, providerToken, displayName)
	if err != nil {
		return nil, err
	}
	return d.adopt(ctx, r, res.Token)
}

// adopt re-verifies token for canonical identity, persists it, and installs
// the session, superseding any prior one. Verification comes first: on any
// failure the prior session and its stored token are left untouched.
func (d *Directory) adopt(ctx context.Context, r role.Role, token string) (*Session, error) {
	profile, err := d.authr.Verify(ctx, r, token)
	if err != nil {
		return nil, err
	}
	if err := d.store.Set(ctx, r, token); err != nil {
		return nil, err
	}

	now := d.nowF()
	s := &Session{
		ID:           uuid.New().String(),
		Role:         r,
		Email:        profile.Email,
		DisplayName:  profile.DisplayName,
		Token:        token,
		LoginTime:    now,
		LastActivity: now,
	}

	d.mu.Lock()
	prior := d.sessions[r]
	d.sessions[r] = s
	l := d.lifecycle
	d.mu.Unlock()

	if prior != nil {
		telemetry.EmitAsync(d.emitter, &telemetry.Event{
			Type:   telemetry.EventLogout,
			Role:   r,
			Email:  prior.Email,
			Reason: string(ReasonSuperseded),
		})
	}
	telemetry.EmitAsync(d.emitter, &telemetry.Event{
		Type:  telemetry.EventLogin,
		Role:  r,
		Email: s.Email,
	})
	if l != nil {
		// SessionStarted re-arms the role's timers whether or not a prior
		// session existed.
		l.SessionStarted(r)
	}
	out := *s
	return &out, nil
}

// Logout ends the session for r, clears its token, and cancels its timers.
// Returns ErrNotLoggedIn if r has no session; the second of two consecutive
// logouts is a safe no-op.
func (d *Directory) Logout(ctx context.Context, r role.Role) error {
	return d.end(ctx, r, ReasonExplicit)
}

// Expire ends the session for r because one of its timers fired. Called by
// the timeout engine; identical to Logout except for the recorded reason.
func (d *Directory) Expire(ctx context.Context, r role.Role, reason LogoutReason) error {
	return d.end(ctx, r, reason)
}

func (d *Directory) end(ctx context.Context, r role.Role, reason LogoutReason) error {
	d.mu.Lock()
	s, ok := d.sessions[r]
	if !ok {
		d.mu.Unlock()
		return ErrNotLoggedIn
	}
	delete(d.sessions, r)
	if d.active == r {
		d.active = ""
	}
	l := d.lifecycle
	d.mu.Unlock()

	// The session is already removed; a failing Clear must not leave the
	// role's timers armed or the logout unrecorded.
	clearErr := d.store.Clear(ctx, r)
	telemetry.EmitAsync(d.emitter, &telemetry.Event{
		Type:   telemetry.EventLogout,
		Role:   r,
		Email:  s.Email,
		Reason: string(reason),
	})
	if l != nil {
		l.SessionEnded(r)
	}
	return clearErr
}

// LogoutAll ends every session and clears every token. Idempotent; roles with
// no session are skipped without error.
func (d *Directory) LogoutAll(ctx context.Context) error {
	d.mu.Lock()
	ended := make([]*Session, 0, len(d.sessions))
	for _, r := range role.All() {
		if s, ok := d.sessions[r]; ok {
			ended = append(ended, s)
			delete(d.sessions, r)
		}
	}
	d.active = ""
	l := d.lifecycle
	d.mu.Unlock()

	clearErr := d.store.ClearAll(ctx)
	for _, s := range ended {
		telemetry.EmitAsync(d.emitter, &telemetry.Event{
			Type:   telemetry.EventLogout,
			Role:   s.Role,
			Email:  s.Email,
			Reason: string(ReasonExplicit),
		})
		if l != nil {
			l.SessionEnded(s.Role)
		}
	}
	return clearErr
}

// SwitchActive designates r as the rendered dashboard. It does not
// re-authenticate and does not touch other sessions. Returns ErrNotLoggedIn
// if r has no session.
func (d *Directory) SwitchActive(r role.Role) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sessions[r]; !ok {
		return ErrNotLoggedIn
	}
	d.active = r
	return nil
}

// Active returns the currently rendered role, if any.
func (d *Directory) Active() (role.Role, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.active == "" {
		return "", false
	}
	return d.active, true
}

// List returns a copy of every live session ordered by login time ascending
// (ties broken by role declaration order, stable for UI).
func (d *Directory) List() []Session {
	d.mu.RLock()
	out := make([]Session, 0, len(d.sessions))
	for _, r := range role.All() {
		if s, ok := d.sessions[r]; ok {
			out = append(out, *s)
		}
	}
	d.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LoginTime.Before(out[j].LoginTime)
	})
	return out
}

// Touch records a user-activity signal for r: bumps LastActivity and notifies
// the lifecycle so the role's inactivity timer resets. No-op for a role with
// no session.
func (d *Directory) Touch(r role.Role) {
	d.mu.Lock()
	s, ok := d.sessions[r]
	if ok {
		s.LastActivity = d.nowF()
	}
	l := d.lifecycle
	d.mu.Unlock()
	if ok && l != nil {
		l.SessionTouched(r)
	}
}

// RefreshIdentity re-issues the identity-check for r to refresh profile
// fields. Not an activity signal: timers and LastActivity are untouched.
// Returns ErrNotLoggedIn if r has no session; a verify failure is returned
// without ending the session.
func (d *Directory) RefreshIdentity(ctx context.Context, r role.Role) (*Session, error) {
	d.mu.RLock()
	s, ok := d.sessions[r]
	var token string
	if ok {
		token = s.Token
	}
	d.mu.RUnlock()
	if !ok {
		return nil, ErrNotLoggedIn
	}

	profile, err := d.authr.Verify(ctx, r, token)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	s, ok = d.sessions[r]
	if ok && s.Token == token {
		s.Email = profile.Email
		s.DisplayName = profile.DisplayName
	}
	var out *Session
	if ok {
		cp := *s
		out = &cp
	}
	d.mu.Unlock()
	if out == nil {
		return nil, ErrNotLoggedIn
	}
	return out, nil
}

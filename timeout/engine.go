package timeout

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"dashboard-session-core/role"
	"dashboard-session-core/session"
)

// ExpireFunc ends the session for r with the given reason. Wired to the
// session directory's Expire; the engine never mutates sessions itself.
type ExpireFunc func(ctx context.Context, r role.Role, reason session.LogoutReason) error

// Engine owns one timer pair per live role, each armed under that role's own
// policy and firing logout against that role only. Implements
// session.Lifecycle, so the directory drives arming and cancellation.
type Engine struct {
	policies Policies
	expire   ExpireFunc

	mu     sync.Mutex
	timers map[role.Role]*timerPair
}

// timerPair is one arming of a role's timers. Fire callbacks capture the pair
// (and, for inactivity, the touch generation) that armed them and bail out if
// the arena has moved on, so a stale timer racing a re-arm or an activity
// signal can never expire the fresh session.
type timerPair struct {
	session    *time.Timer
	inactivity *time.Timer
	touchGen   uint64
}

// NewEngine returns an Engine with no armed timers.
func NewEngine(policies Policies, expire ExpireFunc) *Engine {
	return &Engine{
		policies: policies,
		expire:   expire,
		timers:   make(map[role.Role]*timerPair),
	}
}

// SessionStarted arms (or re-arms) both of r's timers under r's policy.
func (e *Engine) SessionStarted(r role.Role) {
	p := e.policies.For(r)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked(r)
	pair := &timerPair{}
	pair.session = time.AfterFunc(p.Session, func() {
		e.fireSession(r, pair)
	})
	e.armInactivityLocked(r, pair, p.Inactivity)
	e.timers[r] = pair
}

func (e *Engine) armInactivityLocked(r role.Role, pair *timerPair, d time.Duration) {
	pair.touchGen++
	gen := pair.touchGen
	pair.inactivity = time.AfterFunc(d, func() {
		e.fireInactivity(r, pair, gen)
	})
}

// SessionEnded cancels r's timers. Other roles' timers are untouched.
func (e *Engine) SessionEnded(r role.Role) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked(r)
}

// SessionTouched restarts r's inactivity timer from now. The absolute session
// timer is unconditional and keeps its original deadline. No-op when r has no
// armed timers.
func (e *Engine) SessionTouched(r role.Role) {
	p := e.policies.For(r)
	e.mu.Lock()
	defer e.mu.Unlock()
	pair, ok := e.timers[r]
	if !ok {
		return
	}
	pair.inactivity.Stop()
	e.armInactivityLocked(r, pair, p.Inactivity)
}

// Armed reports whether r currently has timers running. Diagnostic.
func (e *Engine) Armed(r role.Role) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.timers[r]
	return ok
}

// Stop cancels every role's timers. Used on host shutdown.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range role.All() {
		e.stopLocked(r)
	}
}

// fireSession and fireInactivity run on timer goroutines: confirm the arena
// still holds the pair that armed the timer, drop the entry, then ask the
// directory to expire the role. The directory's SessionEnded callback finds
// the entry already gone, so no lock is held across the expire call.
func (e *Engine) fireSession(r role.Role, pair *timerPair) {
	e.mu.Lock()
	if e.timers[r] != pair {
		e.mu.Unlock()
		return // superseded while this timer was firing
	}
	e.stopLocked(r)
	e.mu.Unlock()
	e.callExpire(r, session.ReasonSessionTimeout)
}

func (e *Engine) fireInactivity(r role.Role, pair *timerPair, gen uint64) {
	e.mu.Lock()
	if e.timers[r] != pair || pair.touchGen != gen {
		e.mu.Unlock()
		return // supersede or an activity signal won the race
	}
	e.stopLocked(r)
	e.mu.Unlock()
	e.callExpire(r, session.ReasonInactivityTimeout)
}

func (e *Engine) callExpire(r role.Role, reason session.LogoutReason) {
	if err := e.expire(context.Background(), r, reason); err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			return // logged out between firing and expiry; nothing to do
		}
		log.Printf("timeout: expiring %s (%s) failed: %v", r, reason, err)
	}
}

func (e *Engine) stopLocked(r role.Role) {
	if pair, ok := e.timers[r]; ok {
		pair.session.Stop()
		pair.inactivity.Stop()
		delete(e.timers, r)
	}
}

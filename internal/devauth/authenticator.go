// Package devauth provides an in-process auth.Authenticator with registered
// accounts, used for dev hosting and tests so the core runs with no network.
package devauth

import (
	"context"
	"sync"
	"time"

	"dashboard-session-core/auth"
	"dashboard-session-core/internal/security"
	"dashboard-session-core/role"
)

type account struct {
	email        string
	passwordHash string
	displayName  string
}

// Authenticator implements auth.Authenticator against accounts registered via
// Register and RegisterFederated. Tokens are HS256 JWTs carrying the profile,
// so Verify round-trips canonical identity the way the remote service would.
type Authenticator struct {
	mu        sync.RWMutex
	accounts  map[role.Role]map[string]account // role → email → account
	federated map[role.Role]map[string]account // role → provider token → account
	hasher    *security.Hasher
	tokens    *security.TokenProvider
}

// New returns an Authenticator with no accounts. tokenTTL bounds how long an
// issued token verifies; pick something longer than the absolute session
// policy so re-hydration after a reload still succeeds.
func New(secret []byte, tokenTTL time.Duration) *Authenticator {
	return &Authenticator{
		accounts:  make(map[role.Role]map[string]account),
		federated: make(map[role.Role]map[string]account),
		hasher:    security.NewHasher(4), // low cost; dev/test only
		tokens:    security.NewTokenProvider(secret, "dashcore-dev", tokenTTL),
	}
}

// Register adds a password account for r. Returns an error only if hashing fails.
func (a *Authenticator) Register(r role.Role, email, password, displayName string) error {
	hash, err := a.hasher.Hash([]byte(password))
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.accounts[r] == nil {
		a.accounts[r] = make(map[string]account)
	}
	a.accounts[r][email] = account{email: email, passwordHash: hash, displayName: displayName}
	return nil
}

// RegisterFederated adds an account for r reachable by providerToken.
func (a *Authenticator) RegisterFederated(r role.Role, providerToken, email, displayName string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.federated[r] == nil {
		a.federated[r] = make(map[string]account)
	}
	a.federated[r][providerToken] = account{email: email, displayName: displayName}
}

// Login authenticates email/password for r and issues a token.
func (a *Authenticator) Login(ctx context.Context, r role.Role, email, password string) (*auth.LoginResult, error) {
	a.mu.RLock()
	acct, ok := a.accounts[r][email]
	a.mu.RUnlock()
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	if err := a.hasher.Compare(acct.passwordHash, []byte(password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	return a.issue(r, acct)
}

// LoginFederated exchanges providerToken for a session token. displayName
// overrides the registered one when non-empty, mirroring the remote contract.
func (a *Authenticator) LoginFederated(ctx context.Context, r role.Role, providerToken, displayName string) (*auth.LoginResult, error) {
	a.mu.RLock()
	acct, ok := a.federated[r][providerToken]
	a.mu.RUnlock()
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	if displayName != "" {
		acct.displayName = displayName
	}
	return a.issue(r, acct)
}

// Verify validates token for r and returns the profile from its claims.
func (a *Authenticator) Verify(ctx context.Context, r role.Role, token string) (*auth.Profile, error) {
	email, displayName, err := a.tokens.Verify(r, token)
	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Profile{Email: email, DisplayName: displayName}, nil
}

func (a *Authenticator) issue(r role.Role, acct account) (*auth.LoginResult, error) {
	token, _, err := a.tokens.Issue(r, acct.email, acct.displayName)
	if err != nil {
		return nil, err
	}
	return &auth.LoginResult{
		Token:   token,
		Profile: auth.Profile{Email: acct.email, DisplayName: acct.displayName},
	}, nil
}

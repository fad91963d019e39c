// Package auth defines the contract with the external account service and the
// error taxonomy callers branch on.
package auth

import (
	"context"
	"errors"

	"dashboard-session-core/role"
)

// Sentinel errors for authentication; callers compare with errors.Is.
var (
	// ErrInvalidCredentials means the account service rejected the login or
	// the stored token. Session state is unchanged; the user may retry.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUnreachable means the account service could not be reached. Distinct
	// from ErrInvalidCredentials so callers retry only on this one.
	ErrUnreachable = errors.New("auth: account service unreachable")
)

// Profile holds the canonical identity fields returned by the account service.
type Profile struct {
	Email       string
	DisplayName string
}

// LoginResult is the outcome of a successful login: the opaque token to
// persist plus the profile.
type LoginResult struct {
	Token   string
	Profile Profile
}

// Authenticator is the account service as seen by the session directory.
// All methods suspend on the network and honor ctx cancellation.
type Authenticator interface {
	// Login authenticates email/password for r and issues a token.
	Login(ctx context.Context, r role.Role, email, password string) (*LoginResult, error)
	// LoginFederated exchanges an identity-provider token for a session token.
	// Same contract shape as Login; used for SSO-style admin sign-in.
	LoginFederated(ctx context.Context, r role.Role, providerToken, displayName string) (*LoginResult, error)
	// Verify checks a stored token for r and returns the associated profile.
	// Returns ErrInvalidCredentials if the token is no longer accepted.
	Verify(ctx context.Context, r role.Role, token string) (*Profile, error)
}

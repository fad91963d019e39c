package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dashboard-session-core/role"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or was
	// issued for a different role.
	ErrInvalidToken = errors.New("invalid token")
)

// DashboardClaims holds JWT claims for a dashboard session token. The profile
// travels in the claims so Verify can return canonical identity without extra
// lookups.
type DashboardClaims struct {
	jwt.RegisteredClaims
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// TokenProvider issues and validates HS256 dashboard tokens. Used by the
// in-process authenticator; the remote account service issues its own tokens.
type TokenProvider struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with secret. issuer is set
// on claims and validated on verify.
func NewTokenProvider(secret []byte, issuer string, tokenTTL time.Duration) *TokenProvider {
	return &TokenProvider{secret: secret, issuer: issuer, tokenTTL: tokenTTL}
}

// Issue issues a dashboard token for r bound to email and displayName.
// Returns the token string and its expiration time.
func (p *TokenProvider) Issue(r role.Role, email, displayName string) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(p.tokenTTL)
	claims := DashboardClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   email,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:        string(r),
		DisplayName: displayName,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(p.secret)
	return token, expiresAt, err
}

// Verify parses and validates a dashboard token (signature, exp, iss) and
// checks it was issued for r. Returns email and display name from the claims.
func (p *TokenProvider) Verify(r role.Role, tokenString string) (email, displayName string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &DashboardClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil {
		return "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*DashboardClaims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Issuer != p.issuer {
		return "", "", ErrInvalidToken
	}
	if claims.Role != string(r) {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.DisplayName, nil
}

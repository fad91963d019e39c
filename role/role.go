// Package role defines the closed set of dashboard identities a user can hold.
package role

import "fmt"

// Role is one of the four fixed dashboard identities. Exactly one session may
// exist per role at a time; the token store has one slot per role.
type Role string

const (
	Individual Role = "individual"
	Family     Role = "family"
	Business   Role = "business"
	Admin      Role = "admin"
)

// All returns every role in fixed declaration order. Callers that fan out per
// role (hydration, bus delivery) iterate this slice so the order is stable.
func All() []Role {
	return []Role{Individual, Family, Business, Admin}
}

// Parse returns the Role for s, or an error if s is not a known role.
func Parse(s string) (Role, error) {
	switch Role(s) {
	case Individual, Family, Business, Admin:
		return Role(s), nil
	}
	return "", fmt.Errorf("role: unknown role %q", s)
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case Individual, Family, Business, Admin:
		return true
	}
	return false
}

// IsAdmin reports whether r is the administrator role. Timeout policies key on
// this distinction.
func (r Role) IsAdmin() bool { return r == Admin }

func (r Role) String() string { return string(r) }

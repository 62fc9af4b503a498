package session

// Package session contains domain-level types for the portal session
// lifecycle. It is pure and free of framework/adapter concerns.

import "time"

// Role represents a portal authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known portal roles.
func (r Role) Valid() bool { return r == RoleStudent || r == RoleAdmin }

// Identity is the role-scoped principal confirmed by the identity boundary.
// Adapters map provider-specific user payloads into this shape.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Profile is the 1:1 portal record paired with an Identity. It is always
// fetched and replaced together with the Identity so readers never observe
// a name belonging to a different account than the role it gates on.
type Profile struct {
	UserID        string `json:"user_id"`
	FullName      string `json:"full_name"`
	Verified      bool   `json:"verified"`
	Program       string `json:"program,omitempty"`
	StudentNumber string `json:"student_number,omitempty"`
}

// Snapshot is the only externally observable session state: the atomic,
// wholesale-replaced Identity/Profile pair. Profile != nil implies
// Identity != nil; the reverse is not required while a session is being
// created.
type Snapshot struct {
	Identity *Identity `json:"identity"`
	Profile  *Profile  `json:"profile"`
}

// SignedOut is the fail-closed snapshot: no identity, no profile.
var SignedOut = Snapshot{}

// Authenticated reports whether the snapshot carries a live identity.
func (s Snapshot) Authenticated() bool { return s.Identity != nil }

// TokenRecord is the edge-side record of a provider session token, keyed
// by an opaque session ID carried in the browser cookie.
type TokenRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

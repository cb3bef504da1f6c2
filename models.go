package session

import (
	"github.com/google/uuid"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleGuest is a registered but not yet activated account
	RoleGuest UserRole = "guest"
	// RoleUser is an activated account
	RoleUser UserRole = "user"
	// RoleAdmin is an administrator account
	RoleAdmin UserRole = "admin"
)

// User is the identity owned by the session store. It is never persisted
// client side; on reload it is re-derived from the remote profile fetch.
type User struct {
	ID    uuid.UUID `json:"id,omitempty"`
	Email string    `json:"email,omitempty"`
	Role  UserRole  `json:"role,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsGuest reports whether the user is registered but not activated.
func (u *User) IsGuest() bool {
	return u != nil && u.Role == RoleGuest
}

// IsActivated reports whether the account went through activation.
func (u *User) IsActivated() bool {
	return u != nil && (u.Role == RoleUser || u.Role == RoleAdmin)
}

// UserProfile is the richer, role-scoped information about the user. The
// session layer carries it opaquely: it is fetched on demand and dropped
// together with the rest of the session.
type UserProfile struct {
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
	Phone     string         `json:"phone_number,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (p *UserProfile) AddMetadata(key string, val any) *UserProfile {
	if p.Metadata == nil {
		p.Metadata = make(map[string]any)
	}
	p.Metadata[key] = val
	return p
}

// Credentials is what a successful login or registration hands back: the
// bearer token plus the identity it belongs to.
type Credentials struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Account is the payload of a profile fetch: the identity re-derived from
// the token plus the profile data scoped to its role.
type Account struct {
	User    *User        `json:"user"`
	Profile *UserProfile `json:"profile,omitempty"`
}

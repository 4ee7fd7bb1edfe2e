package domain

import (
	"strings"
	"time"
)

// Role classifies callers for authorization.
type Role string

const (
	RoleUser       Role = "user"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// NormalizeRole maps any free-text role onto a known Role. Unknown values become RoleUser.
func NormalizeRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSupervisor:
		return RoleSupervisor
	default:
		return RoleUser
	}
}

// IsStaff reports whether the role may see and review every user's records.
func (r Role) IsStaff() bool {
	role := NormalizeRole(string(r))
	return role == RoleAdmin || role == RoleSupervisor
}

// IsAdmin reports whether the role is admin.
func (r Role) IsAdmin() bool {
	return NormalizeRole(string(r)) == RoleAdmin
}

// User is an account able to hold a session.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasCredential reports whether the account can log in.
func (u *User) HasCredential() bool {
	return u.PasswordHash != ""
}

// Public strips the credential for wire output.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: NormalizeRole(string(u.Role))}
}

// PublicUser is the only user shape that leaves the process.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) RecordID() string           { return u.ID }
func (u User) OwnerID() string            { return u.ID }
func (u User) RecordStatus() string       { return string(u.Role) }
func (u User) RecordCreatedAt() time.Time { return u.CreatedAt }

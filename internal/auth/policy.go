package auth

import (
	"github.com/spec-kit/gatelaunch/internal/domain"
)

// Principal represents the authenticated caller.
type Principal struct {
	User    domain.User
	Session domain.Session
}

// Role returns the normalized caller role.
func (p *Principal) Role() domain.Role {
	if p == nil {
		return domain.RoleUser
	}
	return domain.NormalizeRole(string(p.User.Role))
}

// IsStaff reports whether the caller is admin or supervisor.
func (p *Principal) IsStaff() bool {
	return p != nil && p.Role().IsStaff()
}

// IsAdmin reports whether the caller is admin.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role().IsAdmin()
}

// CanSee reports whether the caller may observe a record owned by ownerID.
func (p *Principal) CanSee(ownerID string) bool {
	if p == nil {
		return false
	}
	return p.IsStaff() || (ownerID != "" && ownerID == p.User.ID)
}

// Visible filters items down to what the caller may observe, keeping order.
// Staff receive the full slice.
func Visible[T domain.Owned](p *Principal, items []T) []T {
	if p.IsStaff() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if p.CanSee(item.OwnerID()) {
			out = append(out, item)
		}
	}
	return out
}

// Capability names a route-level requirement.
type Capability int

const (
	CapAuthenticated Capability = iota
	CapStaff
	CapAdmin
)

// Allows reports whether the caller holds capability c.
func (p *Principal) Allows(c Capability) bool {
	switch c {
	case CapAuthenticated:
		return p != nil
	case CapStaff:
		return p.IsStaff()
	case CapAdmin:
		return p.IsAdmin()
	}
	return false
}

package auth

import "blog-platform/internal/domain"

// DenyReason distinguishes a missing identity from an insufficient one.
type DenyReason string

const (
	DenyUnauthenticated DenyReason = "unauthenticated"
	DenyForbidden       DenyReason = "forbidden"
)

// Decision is the typed outcome of an authorization predicate. Handlers map it
// to a response; the predicate itself never performs navigation or writes.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Authenticated requires any valid principal.
func Authenticated(p *Principal) Decision {
	if p == nil {
		return Deny(DenyUnauthenticated)
	}
	return Allow()
}

// RequireRole requires a principal carrying the given role.
func RequireRole(p *Principal, role domain.Role) Decision {
	if p == nil {
		return Deny(DenyUnauthenticated)
	}
	if p.Role != role {
		return Deny(DenyForbidden)
	}
	return Allow()
}

// RequireOwner allows the owning user and admins.
func RequireOwner(p *Principal, ownerID int64) Decision {
	if p == nil {
		return Deny(DenyUnauthenticated)
	}
	if p.ID != ownerID && p.Role != domain.RoleAdmin {
		return Deny(DenyForbidden)
	}
	return Allow()
}

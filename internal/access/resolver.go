package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/dinodia/dinodia-core/internal/device"
)

// Resolver computes a caller's grant for a household.
type Resolver struct {
	households  HouseholdRepository
	memberships MembershipRepository
}

// NewResolver creates a resolver over the given repositories.
func NewResolver(households HouseholdRepository, memberships MembershipRepository) *Resolver {
	return &Resolver{households: households, memberships: memberships}
}

// ResolveRole returns the caller's grant for a household.
//
// The household owner is always OWNER with no restrictions, even when
// an explicit membership row exists for them. Otherwise the membership
// row is applied verbatim; no row means NONE.
func (r *Resolver) ResolveRole(ctx context.Context, householdID, userID int64) (Grant, error) {
	household, err := r.households.Get(ctx, householdID)
	if err != nil {
		return Grant{Role: RoleNone}, fmt.Errorf("resolving role: %w", err)
	}

	if household.OwnerID == userID {
		return Grant{Role: RoleOwner}, nil
	}

	membership, err := r.memberships.Get(ctx, householdID, userID)
	if errors.Is(err, ErrMembershipNotFound) {
		return Grant{Role: RoleNone}, nil
	}
	if err != nil {
		return Grant{Role: RoleNone}, fmt.Errorf("resolving role: %w", err)
	}

	return Grant{
		Role:       membership.Role,
		AreaFilter: membership.AreaFilter,
		Labels:     membership.Labels(),
	}, nil
}

// FilterDevices applies a grant to a device list. The output preserves
// input order and the function has no side effects.
func FilterDevices(devices []device.Device, grant Grant) []device.Device {
	if grant.Role == RoleNone {
		return []device.Device{}
	}

	visible := make([]device.Device, 0, len(devices))
	for _, d := range devices {
		if Allowed(d, grant) {
			visible = append(visible, d)
		}
	}
	return visible
}

// Allowed evaluates the access predicate for a single device.
//
// Area restrictions match the device area exactly and case-sensitively;
// a device without an area never matches one. Label restrictions need
// at least one overlapping label. Tenants additionally never see
// unlabeled devices, restriction or not.
func Allowed(d device.Device, grant Grant) bool {
	switch grant.Role {
	case RoleOwner, RoleTenant:
	default:
		return false
	}

	if grant.Role == RoleTenant && len(d.Labels) == 0 {
		return false
	}

	if grant.AreaFilter != nil && d.AreaName != *grant.AreaFilter {
		return false
	}

	if len(grant.Labels) > 0 {
		match := false
		for _, l := range grant.Labels {
			if d.HasLabel(l) {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}

	return true
}

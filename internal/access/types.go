package access

import (
	"strings"
	"time"
)

// Role is a caller's standing within one household.
type Role string

const (
	// RoleOwner sees and controls everything in the household.
	RoleOwner Role = "OWNER"
	// RoleTenant sees only labeled devices, further narrowed by any
	// area or label restriction on the membership.
	RoleTenant Role = "TENANT"
	// RoleNone is the implicit role of a user with no standing. It is
	// never stored.
	RoleNone Role = "NONE"
)

// Valid reports whether the role may be stored on a membership row.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleTenant
}

// Household groups devices, a hub, and members under one owner.
type Household struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership links a user to a household with a role and optional
// visibility restrictions. AreaFilter nil means no area restriction;
// LabelFilterCSV nil means no label restriction.
type Membership struct {
	ID             int64     `json:"id"`
	HouseholdID    int64     `json:"household_id"`
	UserID         int64     `json:"user_id"`
	Role           Role      `json:"role"`
	AreaFilter     *string   `json:"area_filter"`
	LabelFilterCSV *string   `json:"label_filter"`
	CreatedAt      time.Time `json:"created_at"`
}

// Labels parses the membership's label filter into a cleaned list.
// Nil or blank CSV yields nil, meaning no label restriction.
func (m *Membership) Labels() []string {
	if m.LabelFilterCSV == nil {
		return nil
	}
	return splitLabels(*m.LabelFilterCSV)
}

// Grant is the resolved outcome of a role lookup: what the caller is
// allowed to see in one household. Zero restrictions for owners
// resolved by ownership.
type Grant struct {
	Role       Role
	AreaFilter *string
	Labels     []string
}

// VoiceGrant is the standing of the configured voice identity: labeled
// devices only, no area or label restriction. Tenant semantics give
// exactly that, since tenants never see unlabeled devices.
func VoiceGrant() Grant {
	return Grant{Role: RoleTenant}
}

// splitLabels splits a comma-separated label list, trimming whitespace
// and dropping empties.
func splitLabels(csv string) []string {
	parts := strings.Split(csv, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}

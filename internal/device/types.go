package device

import "strings"

// Device is a hub entity enriched with area, label and category
// metadata.
//
// AreaName is empty for entities not assigned to any area. An empty
// area never satisfies an area restriction, so unassigned devices stay
// invisible to area-filtered members.
//
// Category is nil when no label matches the catalog.
type Device struct {
	EntityID     string    `json:"entity_id"`
	Domain       string    `json:"domain"`
	FriendlyName string    `json:"friendly_name"`
	State        string    `json:"state"`
	Icon         string    `json:"icon,omitempty"`
	AreaName     string    `json:"area_name,omitempty"`
	Labels       []string  `json:"labels"`
	Category     *Category `json:"category"`
}

// HasLabel reports whether the device carries the given label,
// case-insensitively.
func (d Device) HasLabel(label string) bool {
	for _, l := range d.Labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// DomainOf extracts the domain from an entity id ("light.kitchen"
// yields "light"). The full id is returned unchanged when it has no
// domain separator.
func DomainOf(entityID string) string {
	if i := strings.IndexByte(entityID, '.'); i > 0 {
		return entityID[:i]
	}
	return entityID
}

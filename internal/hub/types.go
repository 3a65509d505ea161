package hub

import "time"

// Instance is a household's configured Home Assistant connection.
// One row in hub_instances per household.
type Instance struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	BaseURL     string    `json:"base_url"`
	AccessToken string    `json:"-"` // never serialised outward
	CreatedAt   time.Time `json:"created_at"`
}

// EntityState is one entry from GET /api/states.
// Attributes is kept loose; the hub's vocabulary is open-ended and only
// friendly_name and icon are read by this system.
type EntityState struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged string         `json:"last_changed"`
	LastUpdated string         `json:"last_updated"`
}

// FriendlyName returns the attributes' friendly_name, defaulting to the
// entity id when absent.
func (e EntityState) FriendlyName() string {
	if v, ok := e.Attributes["friendly_name"].(string); ok && v != "" {
		return v
	}
	return e.EntityID
}

// Icon returns the attributes' icon, or empty when absent.
func (e EntityState) Icon() string {
	if v, ok := e.Attributes["icon"].(string); ok {
		return v
	}
	return ""
}

// ServiceResult reports the outcome of a service call with the hub's raw
// HTTP status and error text preserved for diagnostics.
type ServiceResult struct {
	Status int    `json:"status"`
	Body   string `json:"body,omitempty"`
}

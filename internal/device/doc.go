// Package device builds the enriched device view served to the API and
// the voice adapters.
//
// Devices are never persisted. Every listing is assembled fresh from two
// hub calls: /api/states for the raw entities and /api/template for the
// area and label metadata the states endpoint does not carry. When the
// metadata template cannot be rendered the listing degrades to devices
// without areas or labels rather than failing.
//
// The package also owns the label category catalog that maps free-form
// hub labels onto the fixed set of device categories used by the UI and
// the voice assistant integrations.
package device

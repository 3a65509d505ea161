package hub

import "errors"

// Domain errors for the hub package.
//
// These are checked with errors.Is() when adapters translate internal
// failures into protocol-specific error payloads:
//
//	if errors.Is(err, hub.ErrUnreachable) {
//	    // report the device as offline, not the request as invalid
//	}
var (
	// ErrNotConfigured is returned when a household has no hub instance.
	// No network call is attempted.
	ErrNotConfigured = errors.New("hub: not configured for household")

	// ErrUnreachable is returned on network errors and timeouts.
	ErrUnreachable = errors.New("hub: unreachable")

	// ErrUnauthorized is returned when the hub rejects the access token (401/403).
	ErrUnauthorized = errors.New("hub: unauthorised")

	// ErrProtocol is returned on any other non-2xx status or a malformed body.
	ErrProtocol = errors.New("hub: protocol error")

	// ErrTemplate is returned when a template render does not produce valid
	// JSON. Callers treat this as degraded metadata, never as a fatal error.
	ErrTemplate = errors.New("hub: template render failed")
)

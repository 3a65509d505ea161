// Package hub is the single point of HTTP access to a household's
// Home Assistant instance.
//
// Each household configures exactly one hub (base URL + long-lived access
// token, stored in the hub_instances table). The client exposes three
// operations against it:
//
//   - States: GET /api/states, every entity's current state
//   - RenderTemplate: POST /api/template, server-side Jinja rendering
//     used for area/label metadata enrichment
//   - CallService: POST /api/services/{domain}/{service}, the one way
//     any command reaches a device
//
// No operation retries automatically. Service calls such as "toggle" are
// not idempotent, so a blind retry could double-toggle; callers that want
// resilience must retry above this layer with that in mind.
//
// Errors are classified into the package sentinels (ErrNotConfigured,
// ErrUnreachable, ErrUnauthorized, ErrProtocol, ErrTemplate) and checked
// with errors.Is by the bridge adapters when translating to protocol
// error vocabularies.
package hub

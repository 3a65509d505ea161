// Package api implements the HTTP REST API for Dinodia Core.
//
// This package provides:
//   - REST endpoints for households, memberships, hub configuration,
//     device listing, and direct device control
//   - Webhook endpoints for the Alexa Smart Home skill and Google
//     smart home Action
//   - JWT bearer authentication for the management surface
//   - Middleware stack (request ID, logging, recovery, CORS, body limits)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between user interfaces (landlord dashboard,
// tenant app, voice platforms) and the Home Assistant hubs. Device
// reads pull from the per-household aggregator cache, control calls go
// through the bridge service which enforces access grants before any
// hub traffic, and every command attempt lands in the audit trail.
//
// # Security
//
// Management endpoints require a JWT bearer token issued by the login
// endpoint. Household mutation endpoints additionally require the
// caller to hold the OWNER role. The voice webhooks are unauthenticated
// at this layer because the skill endpoints verify the platform
// signature upstream before forwarding.
//
// # Graceful Degradation
//
// The server operates without MQTT or InfluxDB. Hub failures surface as
// 502 responses on read and control endpoints while the rest of the API
// keeps working.
package api

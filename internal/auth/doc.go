// Package auth owns user accounts and API token handling.
//
// Authentication is deliberately thin: a user is identified by email,
// issued a signed JWT access token, and carries no global role. All
// authorisation is per-household and lives in the access package; a
// valid token only proves who is calling.
package auth

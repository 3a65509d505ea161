// Package database provides SQLite connectivity for Dinodia Core.
//
// It manages:
//   - The database connection (WAL mode for concurrent reads)
//   - Embedded schema migrations (additive-only)
//   - Connection lifecycle and health checks
//
// The database holds only what the bridge cannot fetch fresh from a hub:
// users, households, memberships, per-household hub credentials and the
// command audit trail. Device state is never persisted here.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// All queries use parameterised statements. The database file is created
// with 0600 permissions because it contains hub access tokens.
package database

// Package store provides read-only access to a WebReplay store.
//
// A WebReplay store is a SQLite database holding:
//   - Logins / LoginSites: saved credentials and the sites they apply to
//   - SafeNotes: free-text secure notes
//   - Tasks: recorded tasks; Flags = 4 marks a bookmark
//
// Rows are soft-deleted through an IsDeleted flag and stay in the file.
//
// # Protection
//
// A store is password protected when its StoreProtection table has a row.
// The row carries a salt, an iteration count and a PBKDF2-SHA-256 verifier;
// Open derives the verifier from the caller's password and refuses the store
// on mismatch. A store without the row accepts any password, including "".
//
// # Database Configuration
//
//   - mode=ro URI: the file is never created or modified
//   - query_only=ON: writes are rejected even through raw SQL
//   - busy_timeout=5000: wait for WebReplay's own locks up to 5 seconds
//   - one connection: a store belongs to exactly one export
//
// Both github.com/mattn/go-sqlite3 ("sqlite3") and modernc.org/sqlite
// ("sqlite") are registered; Options.Driver picks one.
package store

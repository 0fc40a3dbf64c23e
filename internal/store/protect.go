package store

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// ProtectionTable holds the password verifier of a protected store. A store
// without the table, or with the table but no row, is unprotected.
const ProtectionTable = "StoreProtection"

// VerifierSize is the length of the derived verifier in bytes.
const VerifierSize = 32

// DeriveVerifier derives the password verifier stored in ProtectionTable:
// PBKDF2-SHA-256(password, salt, iterations, VerifierSize).
func DeriveVerifier(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, VerifierSize, sha256.New)
}

// authenticate checks password against the store's verifier. It reports
// whether the store is protected at all.
func authenticate(ctx context.Context, db *sql.DB, password string) (bool, error) {
	var tables int
	err := db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", ProtectionTable,
	).Scan(&tables)
	if err != nil {
		return false, fmt.Errorf("look up %s: %w", ProtectionTable, err)
	}
	if tables == 0 {
		return false, nil
	}

	var (
		salt       []byte
		iterations int
		verifier   []byte
	)
	err = db.QueryRowContext(ctx,
		"SELECT Salt, Iterations, Verifier FROM "+ProtectionTable+" LIMIT 1",
	).Scan(&salt, &iterations, &verifier)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return true, fmt.Errorf("read %s: %w", ProtectionTable, err)
	}
	if iterations <= 0 || len(salt) == 0 || len(verifier) != VerifierSize {
		return true, fmt.Errorf("invalid %s row (iterations=%d, salt=%d bytes, verifier=%d bytes)",
			ProtectionTable, iterations, len(salt), len(verifier))
	}

	derived := DeriveVerifier(password, salt, iterations)
	if subtle.ConstantTimeCompare(derived, verifier) != 1 {
		return true, ErrWrongPassword
	}
	return true, nil
}

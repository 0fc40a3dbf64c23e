package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	// DriverSQLite3 is github.com/mattn/go-sqlite3 (cgo). Default.
	DriverSQLite3 = "sqlite3"

	// DriverSQLite is modernc.org/sqlite (pure Go).
	DriverSQLite = "sqlite"
)

// ValidDrivers lists the accepted driver names.
var ValidDrivers = []string{DriverSQLite3, DriverSQLite}

var (
	// ErrNotFound is returned when the store file does not exist.
	ErrNotFound = errors.New("store file not found")

	// ErrWrongPassword is returned when the password does not unlock a
	// protected store.
	ErrWrongPassword = errors.New("wrong password")

	// ErrNotDatabase is returned when the file is not a readable database.
	ErrNotDatabase = errors.New("file is not a database or is corrupt")
)

// OpenError describes why a store could not be opened.
type OpenError struct {
	Path   string
	Reason string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open store %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Options configures Open.
type Options struct {
	// Driver is one of ValidDrivers. Empty means DriverSQLite3.
	Driver string

	// Password unlocks a protected store. Empty means no password.
	Password string
}

// Store is an open, authenticated, read-only connection to a WebReplay store.
// A Store is meant to be owned by a single export; it is not shared.
type Store struct {
	db        *sql.DB
	path      string
	protected bool
}

// Open opens the store at path read-only and authenticates with the
// configured password.
//
// The database is configured with:
//   - mode=ro URI and query_only, so nothing can be written back
//   - 5-second busy timeout in case WebReplay itself holds a lock
//   - a single connection
//
// Every failure is returned as an *OpenError.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite3
	}
	if !isValidDriver(driver) {
		return nil, &OpenError{Path: path, Reason: "invalid driver", Err: fmt.Errorf("%q is not one of %v", driver, ValidDrivers)}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &OpenError{Path: path, Reason: "missing file", Err: ErrNotFound}
		}
		return nil, &OpenError{Path: path, Reason: "stat file", Err: err}
	}
	if info.IsDir() {
		return nil, &OpenError{Path: path, Reason: "not a file", Err: ErrNotDatabase}
	}

	source, err := dataSource(path)
	if err != nil {
		return nil, &OpenError{Path: path, Reason: "resolve path", Err: err}
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, &OpenError{Path: path, Reason: "open database", Err: err}
	}

	// Verify connection works
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &OpenError{Path: path, Reason: "connect", Err: err}
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, &OpenError{Path: path, Reason: "apply pragmas", Err: err}
	}

	// The first real read is where a corrupt or foreign file shows up.
	if err := checkDatabase(ctx, db); err != nil {
		db.Close()
		return nil, &OpenError{Path: path, Reason: "read schema", Err: fmt.Errorf("%w: %v", ErrNotDatabase, err)}
	}

	protected, err := authenticate(ctx, db, opts.Password)
	if err != nil {
		db.Close()
		return nil, &OpenError{Path: path, Reason: "authenticate", Err: err}
	}

	return &Store{db: db, path: path, protected: protected}, nil
}

// Close releases the connection. It is safe to call more than once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// Protected reports whether the store required a password.
func (s *Store) Protected() bool {
	return s.protected
}

// Query executes a read-only query and returns named-column rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	if s.db == nil {
		return nil, errors.New("store is closed")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return newRows(rows)
}

// dataSource builds a read-only SQLite URI for path. Both drivers accept it.
func dataSource(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if filepath.VolumeName(abs) != "" {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "mode=ro"}
	return u.String(), nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA query_only = ON",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func checkDatabase(ctx context.Context, db *sql.DB) error {
	var n int
	return db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&n)
}

func isValidDriver(driver string) bool {
	for _, d := range ValidDrivers {
		if d == driver {
			return true
		}
	}
	return false
}

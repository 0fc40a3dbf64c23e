package testutil

import (
	"database/sql"
	_ "embed"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/wrexpt/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// BookmarkFlags is the Tasks.Flags value WebReplay uses for bookmarks.
const BookmarkFlags = 4

// FixtureIterations keeps PBKDF2 cheap in tests.
const FixtureIterations = 1000

// Login is a Logins row plus the LoginSites rows joined to it.
type Login struct {
	Name      string
	Note      string
	User1     string
	User2     string
	Password1 string
	Password2 string
	Deleted   bool
	Sites     []LoginSite
}

// LoginSite is a LoginSites row.
type LoginSite struct {
	Site          string
	UserDesc1     string
	UserDesc2     string
	PasswordDesc1 string
	PasswordDesc2 string
}

// Note is a SafeNotes row.
type Note struct {
	Name    string
	Body    string
	Deleted bool
}

// Task is a Tasks row.
type Task struct {
	Name    string
	Script  string
	Flags   int
	Deleted bool
}

// Bookmark returns a bookmark task whose script carries url.
func Bookmark(name, url string) Task {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(url))
	return Task{
		Name:   name,
		Script: fmt.Sprintf(`<task URL="%s"/>`, b.String()),
		Flags:  BookmarkFlags,
	}
}

// Fixture describes the content of a generated store.
type Fixture struct {
	Logins []Login
	Notes  []Note
	Tasks  []Task

	// Password protects the store when non-empty.
	Password string
}

// NewStore writes f to a fresh store file in t.TempDir and returns its path.
func NewStore(t *testing.T, f Fixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "WR.sdf")
	if err := WriteStore(path, f); err != nil {
		t.Fatalf("WriteStore() failed: %v", err)
	}
	return path
}

// WriteStore creates a store at path holding f.
func WriteStore(path string, f Fixture) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	for _, l := range f.Logins {
		res, err := db.Exec(
			`INSERT INTO Logins (LoginName, Note, UserName1, UserName2, Password1, Password2, IsDeleted)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.Name, l.Note, l.User1, l.User2, l.Password1, l.Password2, boolInt(l.Deleted))
		if err != nil {
			return fmt.Errorf("insert login %q: %w", l.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, s := range l.Sites {
			_, err := db.Exec(
				`INSERT INTO LoginSites (LoginID, SiteFullName, UserDesc1, UserDesc2, PasswordDesc1, PasswordDesc2)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				id, s.Site, s.UserDesc1, s.UserDesc2, s.PasswordDesc1, s.PasswordDesc2)
			if err != nil {
				return fmt.Errorf("insert site %q: %w", s.Site, err)
			}
		}
	}

	for _, n := range f.Notes {
		_, err := db.Exec(`INSERT INTO SafeNotes (SafeName, SafeNote, IsDeleted) VALUES (?, ?, ?)`,
			n.Name, n.Body, boolInt(n.Deleted))
		if err != nil {
			return fmt.Errorf("insert note %q: %w", n.Name, err)
		}
	}

	for _, tk := range f.Tasks {
		_, err := db.Exec(`INSERT INTO Tasks (TaskName, Script, Flags, IsDeleted) VALUES (?, ?, ?, ?)`,
			tk.Name, tk.Script, tk.Flags, boolInt(tk.Deleted))
		if err != nil {
			return fmt.Errorf("insert task %q: %w", tk.Name, err)
		}
	}

	if f.Password != "" {
		if err := protect(db, f.Password); err != nil {
			return err
		}
	}
	return nil
}

// Exec runs raw SQL against the store at path, for rows the Fixture types
// cannot express (NULL columns, odd flags).
func Exec(t *testing.T, path, query string, args ...any) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func protect(db *sql.DB, password string) error {
	salt := []byte("wrexpt-fixture-salt")
	verifier := store.DeriveVerifier(password, salt, FixtureIterations)

	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + store.ProtectionTable + ` (
		Salt       BLOB NOT NULL,
		Iterations INTEGER NOT NULL,
		Verifier   BLOB NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create protection table: %w", err)
	}
	_, err = db.Exec(`INSERT INTO `+store.ProtectionTable+` (Salt, Iterations, Verifier) VALUES (?, ?, ?)`,
		salt, FixtureIterations, verifier)
	if err != nil {
		return fmt.Errorf("insert verifier: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

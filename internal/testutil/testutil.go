package testutil

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"taskManagementAPI/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The database is closed through t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sqlx.DB {
	t.Helper()
	// Shared cache keeps the schema alive for as long as one connection is open.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// OpenFileDB opens a migrated SQLite file inside t.TempDir. Use it when a test
// needs several real connections, e.g. concurrent writers.
func OpenFileDB(t *testing.T) *sqlx.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// SeedUser inserts a user row directly and returns its id. The password
// column holds hash verbatim.
func SeedUser(t *testing.T, d *sqlx.DB, username, hash string) int64 {
	t.Helper()
	res, err := d.ExecContext(context.Background(),
		`INSERT INTO "user" (name, email, username, password) VALUES (?, ?, ?, ?)`,
		username, fmt.Sprintf("%s@example.com", username), username, hash)
	if err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seed user id: %v", err)
	}
	return id
}

// SessionCookie returns the cookie called name from resp, failing the test
// when it is missing.
func SessionCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

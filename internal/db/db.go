package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Connection parameters understood by go-sqlite3. They are passed in the DSN
// so that every pooled connection gets them, not just the first one.
//
// _txlock=immediate makes every BeginTx take the write lock up front, which
// serializes read-then-write transactions (task ordering in particular).
const baseParams = "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

// Open opens (or creates) the SQLite database at dbPath and brings its
// schema up to date. Migrations are embedded from migrations/ and named
// NNNN_name.up.sql / NNNN_name.down.sql.
func Open(dbPath string) (*sqlx.DB, error) {
	if dbPath == "" {
		dbPath = "app.db"
	}
	dsn, memory := buildDSN(dbPath)
	d, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if memory {
		// Shared-cache memory databases use table locks that busy_timeout does
		// not cover; one connection keeps writers strictly serialized.
		d.SetMaxOpenConns(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = d.PingContext(ctx)
	if err == nil {
		err = applyMigrations(ctx, d)
	}
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("init sqlite db: %w", err)
	}
	return d, nil
}

// buildDSN appends the connection parameters to dbPath and reports whether
// the database lives in memory.
func buildDSN(dbPath string) (string, bool) {
	memory := dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
	params := baseParams
	if !memory {
		params += "&_journal_mode=WAL"
	}
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + params, memory
}

// RollbackLast reverts the newest applied migration using its down script.
// It is a no-op on a database without migrations.
func RollbackLast(ctx context.Context, d *sqlx.DB) error {
	if d == nil {
		return errors.New("rollback: nil db")
	}
	current, err := Version(ctx, d)
	if err != nil {
		return err
	}
	if current == 0 {
		return nil
	}
	migs, err := loadMigrations()
	if err != nil {
		return err
	}
	for _, m := range migs {
		if m.version != current {
			continue
		}
		if m.down == "" {
			break
		}
		return runScript(ctx, d, m.down, `DELETE FROM schema_migrations WHERE version = ?`, m.version)
	}
	return fmt.Errorf("rollback: no down script for version %04d", current)
}

// Version returns the highest applied migration version, 0 when none.
func Version(ctx context.Context, d *sqlx.DB) (int, error) {
	if err := ensureMigrationsTable(ctx, d); err != nil {
		return 0, err
	}
	var v int
	if err := d.GetContext(ctx, &v, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migration pairs the up and down scripts of one schema version.
type migration struct {
	version int
	name    string
	up      string
	down    string
}

var migrationName = regexp.MustCompile(`^(\d{4})_(\w+)\.(up|down)\.sql$`)

// loadMigrations reads the embedded scripts, sorted by version.
func loadMigrations() ([]migration, error) {
	paths, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	byVersion := make(map[int]*migration)
	for _, p := range paths {
		parts := migrationName.FindStringSubmatch(path.Base(p))
		if parts == nil {
			return nil, fmt.Errorf("unexpected migration file %s", p)
		}
		version, _ := strconv.Atoi(parts[1])
		body, err := migrationsFS.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		m, ok := byVersion[version]
		if !ok {
			m = &migration{version: version, name: parts[2]}
			byVersion[version] = m
		}
		if parts[3] == "up" {
			m.up = string(body)
		} else {
			m.down = string(body)
		}
	}
	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func ensureMigrationsTable(ctx context.Context, d *sqlx.DB) error {
	const ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := d.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// applyMigrations runs, in order, every up script newer than the current version.
func applyMigrations(ctx context.Context, d *sqlx.DB) error {
	current, err := Version(ctx, d)
	if err != nil {
		return err
	}
	migs, err := loadMigrations()
	if err != nil {
		return err
	}
	for _, m := range migs {
		if m.version <= current {
			continue
		}
		if m.up == "" {
			return fmt.Errorf("migration %04d_%s has no up script", m.version, m.name)
		}
		if err := runScript(ctx, d, m.up, `INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
			return fmt.Errorf("migration %04d_%s: %w", m.version, m.name, err)
		}
	}
	return nil
}

// runScript executes a migration script and its bookkeeping statement in one
// transaction. Scripts starting with "-- NO_TX" run outside a transaction.
func runScript(ctx context.Context, d *sqlx.DB, script, bookkeeping string, version int) error {
	if strings.HasPrefix(strings.TrimSpace(script), "-- NO_TX") {
		if _, err := d.ExecContext(ctx, script); err != nil {
			return err
		}
		_, err := d.ExecContext(ctx, bookkeeping, version)
		return err
	}
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, version); err != nil {
		return err
	}
	return tx.Commit()
}

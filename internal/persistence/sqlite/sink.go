// Package sqlite persists normalized rows into a local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"example.com/healthingest/internal/domain"
	"example.com/healthingest/internal/persistence"
	"example.com/healthingest/internal/persistence/sqlite/migrations"
)

// maxBindParams is SQLITE_MAX_VARIABLE_NUMBER for the bundled SQLite build.
const maxBindParams = 32766

var (
	recordInsert = persistence.Insert{
		Verb:        "INSERT OR IGNORE",
		Table:       string(domain.TableRecords),
		Columns:     domain.RecordColumns,
		Placeholder: persistence.Question,
	}
	workoutInsert = persistence.Insert{
		Verb:        "INSERT OR IGNORE",
		Table:       string(domain.TableWorkouts),
		Columns:     domain.WorkoutColumns,
		Placeholder: persistence.Question,
	}
)

// Sink stores record and workout batches in SQLite. Duplicate hashes are ignored
// by the UNIQUE constraints.
type Sink struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies migrations.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Sink, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	if path == ":memory:" {
		dsn = path
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	s := &Sink{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Sink) Path() string {
	return s.path
}

// WriteRecords inserts a batch into health_raw.
func (s *Sink) WriteRecords(ctx context.Context, rows []domain.RecordRow) (int, error) {
	if err := writeBatch(ctx, s.db, recordInsert, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteWorkouts inserts a batch into workouts.
func (s *Sink) WriteWorkouts(ctx context.Context, rows []domain.WorkoutRow) (int, error) {
	if err := writeBatch(ctx, s.db, workoutInsert, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func writeBatch[T persistence.Valuer](ctx context.Context, db *sql.DB, ins persistence.Insert, rows []T) (err error) {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, args := range persistence.Chunks(rows, ins.RowsPerStatement(maxBindParams)) {
		n := len(args) / len(ins.Columns)
		if _, err = tx.ExecContext(ctx, ins.SQL(n), args...); err != nil {
			return fmt.Errorf("insert into %s: %w", ins.Table, err)
		}
	}

	return tx.Commit()
}

// Truncate empties both target tables.
func (s *Sink) Truncate(ctx context.Context) error {
	for _, table := range []domain.Table{domain.TableRecords, domain.TableWorkouts} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+string(table)); err != nil {
			return fmt.Errorf("truncating %s: %w", table, err)
		}
	}
	return nil
}

// Count returns the number of rows stored in table.
func (s *Sink) Count(ctx context.Context, table domain.Table) (int64, error) {
	if table != domain.TableRecords && table != domain.TableWorkouts {
		return 0, fmt.Errorf("unknown table: %s", table)
	}
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(table)).Scan(&n)
	return n, err
}

// migrate applies every NNN_*.up.sql file numbered above the database's
// user_version. Each file runs in its own transaction together with the
// user_version bump.
func (s *Sink) migrate(fsys fs.FS) error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("reading user_version: %w", err)
	}

	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return fmt.Errorf("migration %s: missing version prefix", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return fmt.Errorf("migration %s: bad version prefix: %w", name, err)
		}
		if version <= current {
			continue
		}
		if err := s.applyMigration(fsys, name, version); err != nil {
			return err
		}
		current = version
	}
	return nil
}

func (s *Sink) applyMigration(fsys fs.FS, name string, version int) error {
	body, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", name, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(body)); err != nil {
		return fmt.Errorf("executing migration %s: %w", name, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("recording migration %s: %w", name, err)
	}
	return tx.Commit()
}

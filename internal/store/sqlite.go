package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/index"
)

// schemaVersion is bumped whenever the files table changes shape.
const schemaVersion = 1

// SQLiteStore holds a copy of the index in table files.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
}

// OpenSQLite opens or creates the database at path. An empty path opens a
// private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, storeErr(path, "cannot create database directory", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storeErr(path, "cannot open database", err)
	}

	// One connection: an in-memory database lives and dies with it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	if path != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, storeErr(path, "cannot configure database", err)
		}
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, storeErr(path, "cannot initialize schema", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS files (
		filename TEXT PRIMARY KEY,
		year     TEXT NOT NULL,
		district TEXT NOT NULL,
		subject  TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS files_year_subject ON files(year, subject);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, schemaVersion)
	return err
}

// Replace swaps the table contents for records in one transaction.
// Position keeps each record's index in the JSON array.
func (s *SQLiteStore) Replace(ctx context.Context, records []index.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(s.path, "cannot begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return storeErr(s.path, "cannot clear files table", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files(filename, year, district, subject, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return storeErr(s.path, "cannot prepare insert", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Filename, r.Year, r.District, r.Subject, i); err != nil {
			return storeErr(s.path, fmt.Sprintf("cannot insert %s", r.Filename), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr(s.path, "cannot commit", err)
	}

	slog.Debug("store_replaced",
		slog.String("path", s.path),
		slog.Int("records", len(records)))
	return nil
}

// Records returns the stored records in index order.
func (s *SQLiteStore) Records(ctx context.Context) ([]index.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, year, district, subject FROM files ORDER BY position`)
	if err != nil {
		return nil, storeErr(s.path, "cannot query files", err)
	}
	defer rows.Close()

	records := []index.FileRecord{}
	for rows.Next() {
		var r index.FileRecord
		if err := rows.Scan(&r.Filename, &r.Year, &r.District, &r.Subject); err != nil {
			return nil, storeErr(s.path, "cannot scan row", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(s.path, "cannot read rows", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, storeErr(s.path, "cannot count files", err)
	}
	return n, nil
}

// Path returns the database path, empty for in-memory stores.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database. Safe to call multiple times.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func storeErr(path, msg string, err error) error {
	e := cerrors.New(cerrors.ErrCodeStoreFailed, msg, err)
	if path != "" {
		e = e.WithDetail("path", path)
	}
	return e
}

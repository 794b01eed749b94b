package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var (
	ErrNotFound   = errors.New("saved search not found")
	ErrEmptyQuery = errors.New("saved search query is empty")
)

// SavedSearch is a query the user pinned to re-run later.
type SavedSearch struct {
	ID             string                  `json:"id"`
	Query          string                  `json:"query"`
	Type           telemetry.TransportType `json:"type"`
	LastKnownDelay bool                    `json:"last_known_delay"`
	// Timestamp is the creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Store persists saved searches in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to the database at path, creating the file and schema if
// needed. "~/" is expanded to the home directory.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = MemoryPath
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
	}

	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == MemoryPath {
		// Every connection would otherwise get its own empty database.
		dbh.SetMaxOpenConns(1)
	} else if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &Store{db: dbh, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS saved_searches (
  id TEXT PRIMARY KEY,
  query TEXT NOT NULL,
  type TEXT NOT NULL,
  last_known_delay INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_saved_searches_query_type ON saved_searches(query, type);
CREATE INDEX IF NOT EXISTS idx_saved_searches_created ON saved_searches(created_at DESC);
`)
	return err
}

const selectColumns = `SELECT id, query, type, last_known_delay, created_at FROM saved_searches`

// Toggle saves (query, type) if it is not saved yet, or removes it if it is.
// It reports whether the search is saved after the call.
func (s *Store) Toggle(ctx context.Context, query string, t telemetry.TransportType) (SavedSearch, bool, error) {
	if strings.TrimSpace(query) == "" {
		return SavedSearch{}, false, ErrEmptyQuery
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SavedSearch{}, false, err
	}
	defer tx.Rollback()

	existing, err := scanOne(tx.QueryRowContext(ctx, selectColumns+` WHERE query=? AND type=?`, query, string(t)))
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, `DELETE FROM saved_searches WHERE id=?`, existing.ID); err != nil {
			return SavedSearch{}, false, err
		}
		if err := tx.Commit(); err != nil {
			return SavedSearch{}, false, err
		}
		return existing, false, nil
	case !errors.Is(err, ErrNotFound):
		return SavedSearch{}, false, err
	}

	saved := SavedSearch{
		ID:        uuid.NewString(),
		Query:     query,
		Type:      t,
		Timestamp: s.now().UnixMilli(),
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO saved_searches(id, query, type, last_known_delay, created_at) VALUES(?,?,?,?,?)`,
		saved.ID, saved.Query, string(saved.Type), 0, saved.Timestamp); err != nil {
		return SavedSearch{}, false, fmt.Errorf("insert saved search: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return SavedSearch{}, false, err
	}
	return saved, true, nil
}

// List returns every saved search, newest first.
func (s *Store) List(ctx context.Context) ([]SavedSearch, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SavedSearch{}
	for rows.Next() {
		saved, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, rows.Err()
}

// Get returns the saved search with id.
func (s *Store) Get(ctx context.Context, id string) (SavedSearch, error) {
	return scanOne(s.db.QueryRowContext(ctx, selectColumns+` WHERE id=?`, id))
}

// Find returns the saved search matching (query, type).
func (s *Store) Find(ctx context.Context, query string, t telemetry.TransportType) (SavedSearch, error) {
	return scanOne(s.db.QueryRowContext(ctx, selectColumns+` WHERE query=? AND type=?`, query, string(t)))
}

// Delete removes the saved search with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE id=?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// SetLastKnownDelay records whether the latest run of id reported a delay.
func (s *Store) SetLastKnownDelay(ctx context.Context, id string, delayed bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE saved_searches SET last_known_delay=? WHERE id=?`, boolToInt(delayed), id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row scanner) (SavedSearch, error) {
	var (
		saved   SavedSearch
		typ     string
		delayed int
	)
	if err := row.Scan(&saved.ID, &saved.Query, &typ, &delayed, &saved.Timestamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SavedSearch{}, ErrNotFound
		}
		return SavedSearch{}, err
	}
	saved.Type = telemetry.TransportType(typ)
	saved.LastKnownDelay = delayed != 0
	return saved, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

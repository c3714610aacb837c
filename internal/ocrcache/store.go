package ocrcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"hardsub/internal/ocr"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by an incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists recognition results.
type Store struct {
	db   *sql.DB
	path string
}

// Stats summarizes the cache contents.
type Stats struct {
	Path      string
	Entries   int64
	Hits      int64
	SizeBytes int64
	Oldest    time.Time
	Newest    time.Time
}

// Open initializes or connects to the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'hardsub cache clear' or delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Lookup returns the cached candidates for an image hash under engineKey.
func (s *Store) Lookup(ctx context.Context, imageHash, engineKey string) ([]ocr.Candidate, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT candidates FROM recognitions WHERE image_hash = ? AND engine_key = ?",
		imageHash, engineKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup recognition: %w", err)
	}

	var cands []ocr.Candidate
	if err := json.Unmarshal([]byte(payload), &cands); err != nil {
		return nil, false, fmt.Errorf("decode cached recognition: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE recognitions SET hits = hits + 1, last_used_at = ? WHERE image_hash = ? AND engine_key = ?",
		now(), imageHash, engineKey,
	); err != nil {
		return nil, false, fmt.Errorf("touch recognition: %w", err)
	}
	return cands, true, nil
}

// Put stores candidates for an image hash, replacing any previous entry.
func (s *Store) Put(ctx context.Context, imageHash, engineKey string, cands []ocr.Candidate) error {
	if cands == nil {
		cands = []ocr.Candidate{}
	}
	payload, err := json.Marshal(cands)
	if err != nil {
		return fmt.Errorf("encode recognition: %w", err)
	}
	ts := now()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO recognitions (image_hash, engine_key, candidates, created_at, last_used_at, hits)
VALUES (?, ?, ?, ?, ?, 0)
ON CONFLICT(image_hash, engine_key) DO UPDATE SET
    candidates = excluded.candidates,
    last_used_at = excluded.last_used_at`,
		imageHash, engineKey, string(payload), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("store recognition: %w", err)
	}
	return nil
}

// Stats reports entry counts and the database size on disk.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	var oldest, newest sql.NullString
	var hits sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), SUM(hits), MIN(created_at), MAX(last_used_at) FROM recognitions",
	).Scan(&stats.Entries, &hits, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("read cache stats: %w", err)
	}
	stats.Hits = hits.Int64
	stats.Oldest = parseTime(oldest.String)
	stats.Newest = parseTime(newest.String)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if info, err := os.Stat(s.path + suffix); err == nil {
			stats.SizeBytes += info.Size()
		}
	}
	return stats, nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recognitions")
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Prune removes entries not used since before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM recognitions WHERE last_used_at < ?",
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// now is swapped in tests.
var now = func() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

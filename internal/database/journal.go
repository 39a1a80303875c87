package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/tcmlookup/internal/model"
)

// FileName is the journal database file inside the journal directory.
const FileName = "tcmlookup.db"

// OutcomeError is the outcome stored for lookups that failed.
const OutcomeError = "error"

// saltKey is the meta row holding the digest key.
const saltKey = "digest_salt"

// storedLayout keeps timestamps fixed-width so they sort as text.
const storedLayout = "2006-01-02T15:04:05.000000000Z"

// Journal is an append-only SQLite log of lookups.
//
// It stores what happened, never what was found: the search key is kept
// only as a keyed BLAKE2b digest, and record contents are not stored at
// all. The journal is never consulted to answer a lookup.
type Journal struct {
	db     *sql.DB
	dbPath string
	salt   []byte
}

// Options configures Journal behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default journal options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Entry is one journaled lookup.
type Entry struct {
	// ID is the lookup ID.
	ID string

	// KeyDigest is the keyed digest of the search key.
	KeyDigest string

	// StartedAt is when the lookup began.
	StartedAt time.Time

	// Duration is how long the lookup took.
	Duration time.Duration

	// Outcome is a model.Outcome label or OutcomeError.
	Outcome string

	// ErrorKind is the model.ErrorKind label of a failed lookup.
	ErrorKind string

	// FailedStep is the navigation step that failed, if any.
	FailedStep string

	// Candidates is the number of records extracted before filtering.
	Candidates int
}

// Open opens or creates the journal in dbDir.
func Open(dbDir string, opts Options) (*Journal, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("journal not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check journal path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, dbPath: dbPath}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := j.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := j.loadSalt(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to load digest key: %w", err)
	}

	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.dbPath
}

func (j *Journal) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lookups (
		id TEXT PRIMARY KEY,
		key_digest TEXT NOT NULL,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error_kind TEXT NOT NULL DEFAULT '',
		failed_step TEXT NOT NULL DEFAULT '',
		candidates INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_lookups_started ON lookups(started_at);
	CREATE INDEX IF NOT EXISTS idx_lookups_digest ON lookups(key_digest);
	CREATE INDEX IF NOT EXISTS idx_lookups_outcome ON lookups(outcome);
	`
	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// loadSalt reads the digest key, generating it on first use.
func (j *Journal) loadSalt(ctx context.Context) error {
	var salt []byte
	err := j.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, saltKey).Scan(&salt)
	if err == nil && len(salt) > 0 {
		j.salt = salt
		return nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	salt = make([]byte, blake2b.Size256)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	if _, err := j.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`, saltKey, salt); err != nil {
		return err
	}
	// Re-read in case another process won the insert.
	if err := j.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, saltKey).Scan(&salt); err != nil {
		return err
	}
	j.salt = salt
	return nil
}

// Digest returns the journal's keyed digest of key. The same key always
// yields the same digest within one journal and different digests
// across journals.
func (j *Journal) Digest(key model.SearchKey) string {
	h, err := blake2b.New256(j.salt)
	if err != nil {
		// Only possible with a key longer than 64 bytes; the salt is 32.
		panic(err)
	}
	_, _ = h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}

// Append stores an entry.
func (j *Journal) Append(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		return errors.New("journal entry has no ID")
	}
	_, err := j.db.ExecContext(ctx, `
	INSERT INTO lookups (id, key_digest, started_at, duration_ms, outcome, error_kind, failed_step, candidates)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.KeyDigest,
		e.StartedAt.UTC().Format(storedLayout),
		e.Duration.Milliseconds(),
		e.Outcome,
		e.ErrorKind,
		e.FailedStep,
		e.Candidates,
	)
	if err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return j.query(ctx, `
	SELECT id, key_digest, started_at, duration_ms, outcome, error_kind, failed_step, candidates
	FROM lookups
	ORDER BY started_at DESC
	LIMIT ?
	`, limit)
}

// ForKey returns up to limit entries for key, newest first.
func (j *Journal) ForKey(ctx context.Context, key model.SearchKey, limit int) ([]Entry, error) {
	return j.query(ctx, `
	SELECT id, key_digest, started_at, duration_ms, outcome, error_kind, failed_step, candidates
	FROM lookups
	WHERE key_digest = ?
	ORDER BY started_at DESC
	LIMIT ?
	`, j.Digest(key), limit)
}

func (j *Journal) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &e.KeyDigest, &startedAt, &durationMS,
			&e.Outcome, &e.ErrorKind, &e.FailedStep, &e.Candidates); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.StartedAt = parseTimestamp(startedAt)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByOutcome returns the number of entries per outcome label.
func (j *Journal) CountByOutcome(ctx context.Context) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM lookups GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// timestampFormats are the layouts SQLite may hand back, most specific first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses s with the first matching layout, or returns the
// zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

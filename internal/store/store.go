package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var baselineSQL string

// Schema version tracking:
// 3 - Baseline: rdeck, rgame
// 4 - rdeck.arena
// 5 - rpack (timeMillis, cardList)
// 6 - rpack.dust
const (
	BaselineVersion = 3
	CurrentVersion  = 6
)

// DefaultFileName is the database file name used when no path is configured.
const DefaultFileName = "decklog.db"

// Options configures Open.
type Options struct {
	// RecreateOnMismatch drops and rebuilds all tables (losing their rows)
	// when the migrated schema does not match the current shape or when the
	// on-disk version has no migration path. When false, Open fails instead.
	RecreateOnMismatch bool

	// Logger receives migration and recovery logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Now supplies default timestamps for inserts. Defaults to time.Now.
	Now func() time.Time
}

// Store provides durable storage for decks, games and packs.
// Uses SQLite with WAL mode for concurrent read access.
//
// All methods are safe for concurrent use. SQLite serializes writers; the
// store adds no locking of its own, so separate calls are not atomic together.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
	report MigrationReport
	notify *notifier
}

// Open creates or opens a SQLite database at the given path, applies pragmas,
// runs pending migrations and verifies the resulting schema.
//
// This function is idempotent - safe to call multiple times on the same file.
func Open(path string, opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{
		db:     db,
		logger: opts.Logger,
		now:    opts.Now,
		notify: newNotifier(),
	}

	ctx := context.Background()
	report, err := s.migrate(ctx, opts.RecreateOnMismatch)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.report = report

	s.logger.Debug("store opened",
		"path", path,
		"from_version", report.From,
		"to_version", report.To,
		"recreated", report.Recreated,
	)
	return s, nil
}

// Close closes the database connection and ends every open stream.
func (s *Store) Close() error {
	if s.notify != nil {
		s.notify.close()
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - writes made through it do not notify streams.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Report returns what Open did to bring the schema to CurrentVersion.
func (s *Store) Report() MigrationReport {
	return s.report
}

// Version returns the schema version recorded in the database.
func (s *Store) Version(ctx context.Context) (int, error) {
	return userVersion(ctx, s.db)
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// MigrationReport describes what Open did to bring the schema current.
type MigrationReport struct {
	From      int      `json:"from"`      // user_version found on disk (0 for a new file)
	To        int      `json:"to"`        // user_version after Open
	Applied   []string `json:"applied"`   // steps that completed, in order
	Failed    []string `json:"failed"`    // steps that errored and were skipped
	Recreated bool     `json:"recreated"` // tables were dropped and rebuilt empty
}

// execQuerier is satisfied by both *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// migration transforms schema version from into version to.
// apply must be idempotent: it inspects the live schema and only changes
// what is missing, so a step that was partially applied by an earlier run
// completes without error.
type migration struct {
	from, to int
	name     string
	apply    func(ctx context.Context, q execQuerier) error
}

var migrations = []migration{
	{
		from: 3, to: 4,
		name:  "add rdeck.arena",
		apply: addColumnIfAbsent("rdeck", "arena", "INTEGER NOT NULL DEFAULT 0"),
	},
	{
		from: 4, to: 5,
		name: "create rpack",
		apply: execStatement(`
			CREATE TABLE IF NOT EXISTS rpack (
				id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
				timeMillis INTEGER NOT NULL,
				cardList TEXT NOT NULL
			)`),
	},
	{
		from: 5, to: 6,
		name:  "add rpack.dust",
		apply: addColumnIfAbsent("rpack", "dust", "INTEGER NOT NULL DEFAULT 0"),
	},
}

// migrate brings the database to CurrentVersion.
//
// A step that fails is logged and skipped; the chain continues with the
// next step. The resulting shape is then verified, and a mismatch either
// fails or, when recreate is set, rebuilds all tables empty.
func (s *Store) migrate(ctx context.Context, recreate bool) (MigrationReport, error) {
	from, err := userVersion(ctx, s.db)
	if err != nil {
		return MigrationReport{}, err
	}
	report := MigrationReport{From: from, Applied: []string{}, Failed: []string{}}

	if from != 0 && (from < BaselineVersion || from > CurrentVersion) {
		if !recreate {
			return report, fmt.Errorf("%w: version %d (supported %d..%d)",
				ErrNoMigrationPath, from, BaselineVersion, CurrentVersion)
		}
		return s.recreate(ctx, report, fmt.Sprintf("no migration path from version %d", from))
	}

	if err := s.runChain(ctx, from, &report); err != nil {
		return report, err
	}

	if err := verifyShape(ctx, s.db); err != nil {
		if !recreate {
			return report, err
		}
		return s.recreate(ctx, report, err.Error())
	}

	if err := setUserVersion(ctx, s.db, CurrentVersion); err != nil {
		return report, err
	}
	report.To = CurrentVersion
	return report, nil
}

// runChain applies the baseline (for new files) and every step at or above from.
func (s *Store) runChain(ctx context.Context, from int, report *MigrationReport) error {
	if from == 0 {
		if _, err := s.db.ExecContext(ctx, baselineSQL); err != nil {
			return fmt.Errorf("apply baseline schema: %w", err)
		}
		if err := setUserVersion(ctx, s.db, BaselineVersion); err != nil {
			return err
		}
		from = BaselineVersion
	}

	for _, m := range migrations {
		if m.from < from {
			continue
		}
		if err := s.runStep(ctx, m); err != nil {
			s.logger.Warn("migration step failed",
				"step", m.name,
				"from", m.from,
				"to", m.to,
				"error", err,
			)
			report.Failed = append(report.Failed, m.name)
			continue
		}
		s.logger.Info("migration applied", "step", m.name, "from", m.from, "to", m.to)
		report.Applied = append(report.Applied, m.name)
	}
	return nil
}

// runStep applies one migration and records its target version atomically.
func (s *Store) runStep(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := m.apply(ctx, tx); err != nil {
		return err
	}
	if err := setUserVersion(ctx, tx, m.to); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// recreate drops every table and rebuilds the current schema empty.
// All rows are lost.
func (s *Store) recreate(ctx context.Context, report MigrationReport, reason string) (MigrationReport, error) {
	s.logger.Warn("recreating database, existing records are discarded",
		"from_version", report.From,
		"to_version", CurrentVersion,
		"reason", reason,
	)

	for _, table := range tableNames {
		if err := dropObject(ctx, s.db, table); err != nil {
			return report, fmt.Errorf("recreate: %w", err)
		}
	}
	if err := setUserVersion(ctx, s.db, 0); err != nil {
		return report, fmt.Errorf("recreate: %w", err)
	}

	report.Applied = []string{}
	report.Failed = []string{}
	if err := s.runChain(ctx, 0, &report); err != nil {
		return report, fmt.Errorf("recreate: %w", err)
	}
	if err := verifyShape(ctx, s.db); err != nil {
		return report, fmt.Errorf("recreate: %w", err)
	}
	if err := setUserVersion(ctx, s.db, CurrentVersion); err != nil {
		return report, fmt.Errorf("recreate: %w", err)
	}

	report.To = CurrentVersion
	report.Recreated = true
	return report, nil
}

// dropObject drops whatever schema object is named name (a table, or a view
// left behind by a damaged store).
func dropObject(ctx context.Context, q execQuerier, name string) error {
	var kind string
	err := q.QueryRowContext(ctx,
		`SELECT type FROM sqlite_master WHERE name = ? AND type IN ('table', 'view')`, name,
	).Scan(&kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect %s: %w", name, err)
	}
	if _, err := q.ExecContext(ctx, fmt.Sprintf("DROP %s %s", strings.ToUpper(kind), name)); err != nil {
		return fmt.Errorf("drop %s %s: %w", kind, name, err)
	}
	return nil
}

func execStatement(stmt string) func(context.Context, execQuerier) error {
	return func(ctx context.Context, q execQuerier) error {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return err
		}
		return nil
	}
}

func addColumnIfAbsent(table, column, definition string) func(context.Context, execQuerier) error {
	return func(ctx context.Context, q execQuerier) error {
		has, err := tableHasColumn(ctx, q, table, column)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if has {
			return nil
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return err
		}
		return nil
	}
}

func tableHasColumn(ctx context.Context, q execQuerier, table, column string) (bool, error) {
	cols, err := tableColumns(ctx, q, table)
	if err != nil {
		return false, err
	}
	for _, c := range cols {
		if strings.EqualFold(c.Name, column) {
			return true, nil
		}
	}
	return false, nil
}

func userVersion(ctx context.Context, q execQuerier) (int, error) {
	var version int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}

func setUserVersion(ctx context.Context, q execQuerier, version int) error {
	if _, err := q.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

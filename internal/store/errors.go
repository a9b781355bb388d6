package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrDeckExists is returned when inserting a deck whose id is taken.
	// The existing row is left unchanged.
	ErrDeckExists = errors.New("deck already exists")

	// ErrNotFound is returned by single-row reads and by updates that
	// target an id with no row.
	ErrNotFound = errors.New("record not found")

	// ErrSchemaMismatch is returned by Open when the migrated schema does not
	// match the current shape and recreation was not requested.
	ErrSchemaMismatch = errors.New("schema does not match current version")

	// ErrNoMigrationPath is returned by Open when the on-disk version is
	// older than the baseline or newer than CurrentVersion and recreation
	// was not requested.
	ErrNoMigrationPath = errors.New("no migration path for schema version")
)

// isPrimaryKeyConflict reports whether err is a primary key or unique violation.
func isPrimaryKeyConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

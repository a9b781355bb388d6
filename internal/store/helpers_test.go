package store

import (
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/decklog/internal/record"
	"github.com/roach88/decklog/internal/testutil"
)

func testOptions() Options {
	return Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		Now:    testutil.NewDeterministicClock().Now,
	}
}

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, testOptions())
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

// createRawDB opens a bare SQLite file (no migrations) and runs setup
// statements against it, to simulate stores written by older versions.
func createRawDB(t *testing.T, statements ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "setup statement failed: %s", stmt)
	}
	return path
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// createTestDeck creates a deck with minimal required fields.
func createTestDeck(id, name string) record.Deck {
	return record.Deck{
		ID:         id,
		Name:       name,
		DeckString: "AAECAf0EAA==",
	}
}

// createTestGame creates a game with minimal required fields.
func createTestGame(deckID *string, victory bool, opponent string) record.Game {
	return record.Game{
		DeckID:        deckID,
		Victory:       victory,
		PlayerClass:   "warrior",
		OpponentClass: opponent,
		GameType:      "GT_RANKED",
		FormatType:    "FT_STANDARD",
		DeckName:      "Test Deck",
	}
}

package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/decklog/internal/record"
	"github.com/roach88/decklog/internal/store"
)

func TestMigrateNewDatabase(t *testing.T) {
	c := newTestCLI(t)

	var res MigrateResult
	c.jsonData(&res, "migrate")
	assert.Equal(t, c.db, res.Path)
	assert.Equal(t, 0, res.Report.From)
	assert.Equal(t, store.CurrentVersion, res.Report.To)
	assert.False(t, res.Report.Recreated)
	assert.Empty(t, res.Schema)

	out := c.mustRun("migrate")
	assert.Equal(t, c.db+": already at version 6\n", out)
}

func TestMigrateFromBaseline(t *testing.T) {
	c := newTestCLI(t)
	createRawDB(t, c.db, append(baselineTables,
		`INSERT INTO rdeck (id, name, deck_string, wins, losses, accessMillis)
		 VALUES ('d1', 'Old Deck', 'AAEC', 4, 2, 1000)`,
		`PRAGMA user_version = 3`,
	)...)

	var res MigrateResult
	c.jsonData(&res, "migrate", "--schema")
	assert.Equal(t, 3, res.Report.From)
	assert.Equal(t, 6, res.Report.To)
	assert.Equal(t, []string{"add rdeck.arena", "create rpack", "add rpack.dust"}, res.Report.Applied)
	assert.Empty(t, res.Report.Failed)
	assert.Contains(t, res.Schema, "rpack\n")
	assert.Contains(t, res.Schema, "  dust INTEGER NOT NULL DEFAULT 0\n")

	var d record.Deck
	c.jsonData(&d, "deck", "show", "d1")
	assert.Equal(t, record.Deck{ID: "d1", Name: "Old Deck", DeckString: "AAEC", Wins: 4, Losses: 2, AccessMillis: 1000}, d)
}

func TestMigrateMismatch(t *testing.T) {
	c := newTestCLI(t)
	// Claims the current version but never got the arena column or rpack.
	createRawDB(t, c.db, append(baselineTables,
		`INSERT INTO rdeck (id, name, deck_string, accessMillis) VALUES ('d1', 'Lost', '', 1)`,
		`PRAGMA user_version = 6`,
	)...)

	cliErr, err := c.jsonError("migrate")
	assert.Equal(t, ErrCodeOpenFailed, cliErr.Code)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, cliErr.Message, "schema does not match")

	var res MigrateResult
	c.jsonData(&res, "--recreate-on-mismatch", "migrate")
	assert.True(t, res.Report.Recreated)
	assert.Equal(t, store.CurrentVersion, res.Report.To)

	// The recreated database is empty
	out := c.mustRun("deck", "list")
	assert.Equal(t, "No decks\n", out)
}

func TestMigrateRecreateFromConfig(t *testing.T) {
	c := newTestCLI(t)
	createRawDB(t, c.db, `PRAGMA user_version = 99`)

	cliErr, _ := c.jsonError("migrate")
	assert.Contains(t, cliErr.Message, "no migration path")

	cfg := writeFile(t, "decklog.yaml", "recreate_on_mismatch: true\n")
	out := c.mustRun("--config", cfg, "migrate")
	assert.Contains(t, out, "recreated at version 6 (previous version 99")
}

func TestDatabaseFromConfig(t *testing.T) {
	c := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "from-config.db")
	cfg := writeFile(t, "decklog.yaml", "database: "+path+"\nlog:\n  level: debug\n  format: json\n")

	stdout, stderr, err := c.exec("--config", cfg, "--format", "json", "migrate")
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, `"path":"`+path+`"`)
	assert.Contains(t, stderr, `"msg":"store opened"`, "debug logs go to stderr as JSON")
}

func TestInvalidConfig(t *testing.T) {
	c := newTestCLI(t)
	cfg := writeFile(t, "decklog.yaml", "retain_decks: -1\n")

	cliErr, err := c.jsonError("--config", cfg, "deck", "list")
	assert.Equal(t, ErrCodeConfigInvalid, cliErr.Code)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

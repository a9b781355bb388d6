package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/decklog/internal/testutil"
)

// testCLI runs commands against one temp database with a deterministic
// clock and deck id generator shared across runs.
type testCLI struct {
	t     *testing.T
	db    string
	clock *testutil.DeterministicClock
	ids   *testutil.SequentialIDs
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	return &testCLI{
		t:     t,
		db:    filepath.Join(t.TempDir(), "decklog.db"),
		clock: testutil.NewDeterministicClock(),
		ids:   testutil.NewSequentialIDs("deck"),
	}
}

// exec runs args with no implicit flags.
func (c *testCLI) exec(args ...string) (stdout, stderr string, err error) {
	c.t.Helper()
	opts := &RootOptions{Now: c.clock.Now, NewID: c.ids.NewID}
	cmd := newRootCommand(opts)

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// run executes a command against the test database.
func (c *testCLI) run(args ...string) (stdout string, err error) {
	c.t.Helper()
	stdout, _, err = c.exec(append([]string{"--db", c.db}, args...)...)
	return stdout, err
}

// mustRun executes a command and fails the test on error.
func (c *testCLI) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "decklog %v\n%s", args, out)
	return out
}

// jsonData runs a command with --format json and decodes the data field into v.
func (c *testCLI) jsonData(v any, args ...string) {
	c.t.Helper()
	out := c.mustRun(append([]string{"--format", "json"}, args...)...)

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(c.t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	require.Equal(c.t, "ok", resp.Status)
	require.NoError(c.t, json.Unmarshal(resp.Data, v))
}

// jsonError runs a command expected to fail and returns the reported error.
func (c *testCLI) jsonError(args ...string) (CLIError, error) {
	c.t.Helper()
	out, err := c.run(append([]string{"--format", "json"}, args...)...)
	require.Error(c.t, err, "decklog %v should fail", args)

	var resp CLIResponse
	require.NoError(c.t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	require.Equal(c.t, "error", resp.Status)
	require.NotNil(c.t, resp.Error)
	return *resp.Error, err
}

// writeFile writes content to name inside a temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// createRawDB runs statements against a bare SQLite file at path.
func createRawDB(t *testing.T, path string, statements ...string) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "setup statement failed: %s", stmt)
	}
}

// baselineTables reproduces the version 3 layout written by older releases.
var baselineTables = []string{
	`CREATE TABLE rdeck (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		deck_string TEXT NOT NULL,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		accessMillis INTEGER NOT NULL
	)`,
	`CREATE TABLE rgame (
		id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
		deck_id TEXT,
		victory INTEGER NOT NULL,
		player_class TEXT NOT NULL,
		opponent_class TEXT NOT NULL,
		coin INTEGER NOT NULL,
		rank INTEGER,
		game_type TEXT NOT NULL,
		format_type TEXT NOT NULL,
		hs_replay_url TEXT,
		date INTEGER,
		deck_name TEXT NOT NULL
	)`,
}

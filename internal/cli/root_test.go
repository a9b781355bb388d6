package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "decklog", cmd.Use)
	assert.Contains(t, cmd.Long, "SQLite")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"deck"}, {"deck", "list"}, {"deck", "latest"}, {"deck", "show"}, {"deck", "add"},
		{"deck", "update"}, {"deck", "record"}, {"deck", "delete"}, {"deck", "prune"}, {"deck", "counter"},
		{"game"}, {"game", "list"}, {"game", "add"}, {"game", "clear"}, {"game", "replay-url"}, {"game", "against"},
		{"pack"}, {"pack", "add"}, {"pack", "list"}, {"pack", "stats"},
		{"migrate"}, {"seed"},
		{"watch"}, {"watch", "decks"}, {"watch", "games"}, {"watch", "packs"}, {"watch", "counter"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	// Empty means "use the config file, then the default file name"
	assert.Equal(t, "", dbFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	recreateFlag := cmd.PersistentFlags().Lookup("recreate-on-mismatch")
	require.NotNil(t, recreateFlag)
	assert.Equal(t, "false", recreateFlag.DefValue)
}

func TestDeckRecordCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	recordCmd, _, err := cmd.Find([]string{"deck", "record"})
	require.NoError(t, err)

	for _, name := range []string{"wins", "losses", "set"} {
		require.NotNil(t, recordCmd.Flags().Lookup(name), "missing --%s", name)
	}
}

func TestWatchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	watchCmd, _, err := cmd.Find([]string{"watch", "packs"})
	require.NoError(t, err)

	countFlag := watchCmd.InheritedFlags().Lookup("count")
	require.NotNil(t, countFlag)
	assert.Equal(t, "0", countFlag.DefValue)
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "deck", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/decklog/internal/record"
	"github.com/roach88/decklog/internal/testutil"
)

func TestPackAddAndStats(t *testing.T) {
	c := newTestCLI(t)

	out := c.mustRun("pack", "stats")
	assert.Equal(t, "0 pack(s), 0 dust\n", out)

	var p record.Pack
	c.jsonData(&p, "pack", "add", "--cards", "EX1_001, EX1_002,,CS2_029", "--dust", "40")
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "EX1_001,EX1_002,CS2_029", p.CardList)
	assert.Equal(t, testutil.DefaultEpochMillis+1, p.TimeMillis)

	out = c.mustRun("pack", "add", "--cards", "CS2_029", "--time", "1000")
	assert.Equal(t, "Added pack 2 (1 card(s), 0 dust)\n", out)

	var stats record.PackStats
	c.jsonData(&stats, "pack", "stats")
	assert.Equal(t, record.PackStats{Count: 2, Dust: 40}, stats)

	var packs []record.Pack
	c.jsonData(&packs, "pack", "list")
	require.Len(t, packs, 2)
	assert.Equal(t, int64(1), packs[0].ID, "newest first")
	assert.Equal(t, int64(1000), packs[1].TimeMillis)
}

func TestPackAddRejectsNegativeDust(t *testing.T) {
	c := newTestCLI(t)

	cliErr, err := c.jsonError("pack", "add", "--cards", "EX1_001", "--dust", "-5")
	assert.Equal(t, ErrCodeInvalid, cliErr.Code)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

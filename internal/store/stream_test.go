package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/decklog/internal/record"
)

const streamTimeout = 5 * time.Second

// waitFor reads updates until match returns true, failing on timeout,
// stream end or a stream error. Intermediate values may be coalesced, so
// tests only wait for the state they expect.
func waitFor[T any](t *testing.T, st *Stream[T], match func(T) bool) T {
	t.Helper()
	timeout := time.After(streamTimeout)
	for {
		select {
		case u, ok := <-st.Updates():
			require.True(t, ok, "stream ended before expected value")
			require.NoError(t, u.Err)
			if match(u.Value) {
				return u.Value
			}
		case <-timeout:
			t.Fatal("timed out waiting for stream value")
		}
	}
}

func TestWatchCollection_RedeliversOnChange(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	st := s.WatchCollection(ctx)
	defer st.Close()

	waitFor(t, st, func(decks []record.Deck) bool { return len(decks) == 0 })

	require.NoError(t, s.InsertDeck(ctx, createTestDeck("d1", "First")))
	waitFor(t, st, func(decks []record.Deck) bool { return len(decks) == 1 })

	require.NoError(t, s.UpdateNameAndContents(ctx, "d1", "Renamed", "", 99))
	got := waitFor(t, st, func(decks []record.Deck) bool {
		return len(decks) == 1 && decks[0].Name == "Renamed"
	})
	assert.Equal(t, "d1", got[0].ID)

	require.NoError(t, s.DeleteDeck(ctx, "d1"))
	waitFor(t, st, func(decks []record.Deck) bool { return len(decks) == 0 })
}

func TestWatchLatestDeck_NilUntilDeckExists(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	st := s.WatchLatestDeck(ctx)
	defer st.Close()

	waitFor(t, st, func(d *record.Deck) bool { return d == nil })

	require.NoError(t, s.InsertDeck(ctx, createTestDeck("d1", "Deck")))
	got := waitFor(t, st, func(d *record.Deck) bool { return d != nil })
	assert.Equal(t, "d1", got.ID)
}

func TestWatchDeck_FollowsCounters(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	require.NoError(t, s.InsertDeck(ctx, createTestDeck("d1", "Deck")))

	st := s.WatchDeck(ctx, "d1")
	defer st.Close()
	waitFor(t, st, func(d *record.Deck) bool { return d != nil && d.Wins == 0 })

	require.NoError(t, s.IncrementWinsLosses(ctx, "d1", 1, 0))
	waitFor(t, st, func(d *record.Deck) bool { return d != nil && d.Wins == 1 })

	require.NoError(t, s.SetWinsLosses(ctx, "d1", 7, 3))
	waitFor(t, st, func(d *record.Deck) bool { return d != nil && d.Wins == 7 && d.Losses == 3 })
}

func TestWatchDeckCounter_FollowsGames(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	st := s.WatchDeckCounter(ctx, "d1")
	defer st.Close()
	waitFor(t, st, func(c record.Counter) bool { return c == record.Counter{} })

	_, err := s.InsertGame(ctx, createTestGame(strPtr("d1"), true, "mage"))
	require.NoError(t, err)
	_, err = s.InsertGame(ctx, createTestGame(strPtr("d1"), false, "mage"))
	require.NoError(t, err)

	waitFor(t, st, func(c record.Counter) bool { return c == record.Counter{Won: 1, Lost: 1} })

	_, err = s.DeleteAllGames(ctx)
	require.NoError(t, err)
	waitFor(t, st, func(c record.Counter) bool { return c == record.Counter{} })
}

func TestWatchGames_SeesReplayURL(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	id, err := s.InsertGame(ctx, createTestGame(nil, true, "mage"))
	require.NoError(t, err)

	st := s.WatchGames(ctx)
	defer st.Close()
	waitFor(t, st, func(games []record.Game) bool { return len(games) == 1 })

	require.NoError(t, s.SetReplayURL(ctx, id, "https://hsreplay.net/replay/x"))
	waitFor(t, st, func(games []record.Game) bool {
		return len(games) == 1 && games[0].HSReplayURL != nil
	})
}

func TestWatchPackStats(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	st := s.WatchPackStats(ctx)
	defer st.Close()
	waitFor(t, st, func(p record.PackStats) bool { return p.Count == 0 })

	_, err := s.InsertPack(ctx, record.Pack{CardList: "a", Dust: 20})
	require.NoError(t, err)
	waitFor(t, st, func(p record.PackStats) bool { return p == record.PackStats{Count: 1, Dust: 20} })
}

func TestStream_UnrelatedTableDoesNotWake(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	st := s.WatchPackStats(ctx)
	defer st.Close()
	waitFor(t, st, func(p record.PackStats) bool { return true })

	require.NoError(t, s.InsertDeck(ctx, createTestDeck("d1", "Deck")))

	select {
	case u := <-st.Updates():
		t.Fatalf("unexpected redelivery after deck write: %+v", u)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStream_CloseUnsubscribes(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	st := s.WatchCollection(ctx)
	waitFor(t, st, func([]record.Deck) bool { return true })
	assert.Equal(t, 1, s.notify.subscribers())

	st.Close()
	st.Close() // idempotent

	_, ok := <-st.Updates()
	assert.False(t, ok, "updates channel is closed after Close")
	assert.Equal(t, 0, s.notify.subscribers())

	// Writes after unsubscription must not block or panic.
	require.NoError(t, s.InsertDeck(ctx, createTestDeck("d1", "Deck")))
}

func TestStream_EndsOnContextCancel(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(t.Context())

	st := s.WatchCollection(ctx)
	waitFor(t, st, func([]record.Deck) bool { return true })

	cancel()
	select {
	case <-st.Done():
	case <-time.After(streamTimeout):
		t.Fatal("stream did not end after cancel")
	}
}

func TestStream_EndsOnStoreClose(t *testing.T) {
	s := createTestStore(t)

	st := s.WatchCollection(t.Context())
	waitFor(t, st, func([]record.Deck) bool { return true })

	require.NoError(t, s.Close())
	select {
	case <-st.Done():
	case <-time.After(streamTimeout):
		t.Fatal("stream did not end after store close")
	}
}

func TestStream_QueryErrorEndsStream(t *testing.T) {
	s := createTestStore(t)
	boom := assert.AnError

	st := watch(t.Context(), s, func(context.Context) (int, error) { return 0, boom }, TableDeck)

	u, ok := <-st.Updates()
	require.True(t, ok)
	assert.ErrorIs(t, u.Err, boom)

	_, ok = <-st.Updates()
	assert.False(t, ok, "stream ends after an error")
}

func TestStream_CoalescesToLatest(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	st := s.WatchCollection(ctx)
	defer st.Close()
	waitFor(t, st, func([]record.Deck) bool { return true })

	// Burst of writes with no reader; the stream keeps only the newest value.
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, s.InsertDeck(ctx, createTestDeck(id, id)))
	}
	waitFor(t, st, func(decks []record.Deck) bool { return len(decks) == 5 })
}

package store

import (
	"context"
	"fmt"

	"github.com/roach88/decklog/internal/record"
)

// Games returns every game in insertion order.
func (s *Store) Games(ctx context.Context) ([]record.Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+gameColumns+` FROM rgame ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	return collect(rows, scanGame)
}

// GameByID returns one game.
// Returns ErrNotFound if there is none.
func (s *Store) GameByID(ctx context.Context, id int64) (record.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM rgame WHERE id = ?`, id)
	return scanGame(row)
}

// InsertGame stores a played game and returns its id.
//
// A zero ID lets the store generate one. A non-zero ID replaces any game
// already stored under it.
func (s *Store) InsertGame(ctx context.Context, g record.Game) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}

	var id any
	if g.ID != 0 {
		id = g.ID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO rgame (`+gameColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		nullString(g.DeckID),
		g.Victory,
		g.PlayerClass,
		g.OpponentClass,
		g.Coin,
		nullInt(g.Rank),
		g.GameType,
		g.FormatType,
		nullString(g.HSReplayURL),
		nullInt64(g.Date),
		record.NormalizeName(g.DeckName),
	)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}

	newID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert game: last insert id: %w", err)
	}

	s.notify.publish(TableGame)
	return newID, nil
}

// DeleteAllGames clears the game history and returns how many games were removed.
func (s *Store) DeleteAllGames(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rgame`)
	if err != nil {
		return 0, fmt.Errorf("delete games: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete games: rows affected: %w", err)
	}

	s.notify.publish(TableGame)
	return n, nil
}

// SetReplayURL records where a game's replay was uploaded.
// Returns ErrNotFound if no game has the id.
func (s *Store) SetReplayURL(ctx context.Context, id int64, url string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE rgame SET hs_replay_url = ? WHERE id = ?`, url, id)
	if err != nil {
		return fmt.Errorf("set replay url %d: %w", id, err)
	}
	if _, err := requireAffected(res); err != nil {
		return fmt.Errorf("set replay url %d: %w", id, err)
	}

	s.notify.publish(TableGame)
	return nil
}

// TotalPlayedAgainst counts games against opponentClass.
func (s *Store) TotalPlayedAgainst(ctx context.Context, opponentClass string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rgame WHERE opponent_class = ?
	`, opponentClass).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count games against %s: %w", opponentClass, err)
	}
	return n, nil
}

// TotalVictoriesAgainst counts won games against opponentClass.
func (s *Store) TotalVictoriesAgainst(ctx context.Context, opponentClass string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rgame WHERE opponent_class = ? AND victory = 1
	`, opponentClass).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count victories against %s: %w", opponentClass, err)
	}
	return n, nil
}

// OpponentStats returns played and won counts against opponentClass from a
// single read, so Victories never exceeds Played.
func (s *Store) OpponentStats(ctx context.Context, opponentClass string) (record.OpponentStats, error) {
	stats := record.OpponentStats{OpponentClass: opponentClass}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(victory), 0)
		FROM rgame
		WHERE opponent_class = ?
	`, opponentClass).Scan(&stats.Played, &stats.Victories)
	if err != nil {
		return stats, fmt.Errorf("opponent stats %s: %w", opponentClass, err)
	}
	return stats, nil
}

// DeckCounter tallies won and lost games played with deckID.
// Games for other decks, and games with no deck, are excluded.
func (s *Store) DeckCounter(ctx context.Context, deckID string) (record.Counter, error) {
	var c record.Counter
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(victory), 0),
			COALESCE(SUM(CASE victory WHEN 1 THEN 0 ELSE 1 END), 0)
		FROM rgame
		WHERE deck_id = ?
	`, deckID).Scan(&c.Won, &c.Lost)
	if err != nil {
		return c, fmt.Errorf("deck counter %s: %w", deckID, err)
	}
	return c, nil
}

// WatchGames streams Games.
func (s *Store) WatchGames(ctx context.Context) *Stream[[]record.Game] {
	return watch(ctx, s, s.Games, TableGame)
}

// WatchDeckCounter streams DeckCounter for deckID.
func (s *Store) WatchDeckCounter(ctx context.Context, deckID string) *Stream[record.Counter] {
	return watch(ctx, s, func(ctx context.Context) (record.Counter, error) {
		return s.DeckCounter(ctx, deckID)
	}, TableGame)
}

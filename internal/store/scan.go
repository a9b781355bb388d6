package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/decklog/internal/record"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const deckColumns = `id, name, deck_string, wins, losses, arena, accessMillis`

const gameColumns = `id, deck_id, victory, player_class, opponent_class, coin, rank,
	game_type, format_type, hs_replay_url, date, deck_name`

const packColumns = `id, timeMillis, cardList, dust`

func scanDeck(row rowScanner) (record.Deck, error) {
	var d record.Deck
	err := row.Scan(&d.ID, &d.Name, &d.DeckString, &d.Wins, &d.Losses, &d.Arena, &d.AccessMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Deck{}, ErrNotFound
	}
	if err != nil {
		return record.Deck{}, fmt.Errorf("scan deck: %w", err)
	}
	return d, nil
}

func scanGame(row rowScanner) (record.Game, error) {
	var (
		g      record.Game
		deckID sql.NullString
		rank   sql.NullInt64
		replay sql.NullString
		date   sql.NullInt64
	)
	err := row.Scan(&g.ID, &deckID, &g.Victory, &g.PlayerClass, &g.OpponentClass, &g.Coin, &rank,
		&g.GameType, &g.FormatType, &replay, &date, &g.DeckName)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Game{}, ErrNotFound
	}
	if err != nil {
		return record.Game{}, fmt.Errorf("scan game: %w", err)
	}

	if deckID.Valid {
		g.DeckID = &deckID.String
	}
	if rank.Valid {
		r := int(rank.Int64)
		g.Rank = &r
	}
	if replay.Valid {
		g.HSReplayURL = &replay.String
	}
	if date.Valid {
		g.Date = &date.Int64
	}
	return g, nil
}

func scanPack(row rowScanner) (record.Pack, error) {
	var p record.Pack
	err := row.Scan(&p.ID, &p.TimeMillis, &p.CardList, &p.Dust)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Pack{}, ErrNotFound
	}
	if err != nil {
		return record.Pack{}, fmt.Errorf("scan pack: %w", err)
	}
	return p, nil
}

// collect drains rows through scan. Returns an empty slice (not nil) if
// there are no rows.
func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// nullString maps a nil pointer to SQL NULL.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// requireAffected returns ErrNotFound when res changed no rows.
func requireAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return n, nil
}

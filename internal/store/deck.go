package store

import (
	"context"
	"fmt"

	"github.com/roach88/decklog/internal/record"
)

// Collection returns every constructed (non-arena) deck.
// Order is unspecified.
func (s *Store) Collection(ctx context.Context) ([]record.Deck, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+deckColumns+` FROM rdeck WHERE arena = 0`)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	return collect(rows, scanDeck)
}

// LatestArenaDeck returns the most recently accessed arena deck.
// Returns ErrNotFound if there is none.
func (s *Store) LatestArenaDeck(ctx context.Context) (record.Deck, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+deckColumns+`
		FROM rdeck
		WHERE arena = 1
		ORDER BY accessMillis DESC
		LIMIT 1
	`)
	return scanDeck(row)
}

// LatestDeck returns the most recently accessed deck of any kind.
// Returns ErrNotFound if there is none.
func (s *Store) LatestDeck(ctx context.Context) (record.Deck, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+deckColumns+`
		FROM rdeck
		ORDER BY accessMillis DESC
		LIMIT 1
	`)
	return scanDeck(row)
}

// DeckByID returns the deck with the given id.
// Returns ErrNotFound if there is none.
func (s *Store) DeckByID(ctx context.Context, id string) (record.Deck, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deckColumns+` FROM rdeck WHERE id = ? LIMIT 1`, id)
	return scanDeck(row)
}

// InsertDeck inserts a new deck. The name is NFC-normalized and a zero
// AccessMillis is replaced by the current time.
//
// Returns ErrDeckExists if the id is already taken; the existing row is
// never overwritten.
func (s *Store) InsertDeck(ctx context.Context, d record.Deck) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("insert deck: %w", err)
	}
	if d.AccessMillis == 0 {
		d.AccessMillis = s.nowMillis()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rdeck (`+deckColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID,
		record.NormalizeName(d.Name),
		d.DeckString,
		d.Wins,
		d.Losses,
		d.Arena,
		d.AccessMillis,
	)
	if isPrimaryKeyConflict(err) {
		return fmt.Errorf("insert deck %s: %w", d.ID, ErrDeckExists)
	}
	if err != nil {
		return fmt.Errorf("insert deck %s: %w", d.ID, err)
	}

	s.notify.publish(TableDeck)
	return nil
}

// UpdateNameAndContents sets a deck's name, contents and access time.
// Returns ErrNotFound if no deck has the id.
func (s *Store) UpdateNameAndContents(ctx context.Context, id, name, deckString string, accessMillis int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE rdeck
		SET name = ?, deck_string = ?, accessMillis = ?
		WHERE id = ?
	`, record.NormalizeName(name), deckString, accessMillis, id)
	if err != nil {
		return fmt.Errorf("update deck %s: %w", id, err)
	}
	if _, err := requireAffected(res); err != nil {
		return fmt.Errorf("update deck %s: %w", id, err)
	}

	s.notify.publish(TableDeck)
	return nil
}

// SetWinsLosses overwrites a deck's counters.
// Returns ErrNotFound if no deck has the id.
func (s *Store) SetWinsLosses(ctx context.Context, id string, wins, losses int) error {
	if wins < 0 || losses < 0 {
		return fmt.Errorf("set wins/losses %s: %w: counters must be non-negative", id, record.ErrInvalid)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE rdeck SET wins = ?, losses = ? WHERE id = ?
	`, wins, losses, id)
	if err != nil {
		return fmt.Errorf("set wins/losses %s: %w", id, err)
	}
	if _, err := requireAffected(res); err != nil {
		return fmt.Errorf("set wins/losses %s: %w", id, err)
	}

	s.notify.publish(TableDeck)
	return nil
}

// IncrementWinsLosses adds to a deck's counters in a single statement.
// Returns ErrNotFound if no deck has the id.
func (s *Store) IncrementWinsLosses(ctx context.Context, id string, wins, losses int) error {
	if wins < 0 || losses < 0 {
		return fmt.Errorf("increment wins/losses %s: %w: increments must be non-negative", id, record.ErrInvalid)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE rdeck SET wins = wins + ?, losses = losses + ? WHERE id = ?
	`, wins, losses, id)
	if err != nil {
		return fmt.Errorf("increment wins/losses %s: %w", id, err)
	}
	if _, err := requireAffected(res); err != nil {
		return fmt.Errorf("increment wins/losses %s: %w", id, err)
	}

	s.notify.publish(TableDeck)
	return nil
}

// DeleteDeck removes one deck. Games that reference it are kept, along with
// their copy of the deck name.
// Returns ErrNotFound if no deck has the id.
func (s *Store) DeleteDeck(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rdeck WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete deck %s: %w", id, err)
	}
	if _, err := requireAffected(res); err != nil {
		return fmt.Errorf("delete deck %s: %w", id, err)
	}

	s.notify.publish(TableDeck)
	return nil
}

// PruneDecks keeps the keep most recently accessed decks and deletes the
// rest, returning how many were deleted. It only runs when called; nothing
// in the store prunes automatically.
func (s *Store) PruneDecks(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("prune decks: %w: keep must be non-negative", record.ErrInvalid)
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM rdeck
		WHERE id NOT IN (
			SELECT id FROM rdeck ORDER BY accessMillis DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune decks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune decks: rows affected: %w", err)
	}

	if n > 0 {
		s.logger.Info("decks pruned", "deleted", n, "kept", keep)
		s.notify.publish(TableDeck)
	}
	return n, nil
}

// WatchCollection streams Collection.
func (s *Store) WatchCollection(ctx context.Context) *Stream[[]record.Deck] {
	return watch(ctx, s, s.Collection, TableDeck)
}

// WatchLatestArenaDeck streams LatestArenaDeck; the value is nil while
// there is no arena deck.
func (s *Store) WatchLatestArenaDeck(ctx context.Context) *Stream[*record.Deck] {
	return watch(ctx, s, optional(s.LatestArenaDeck), TableDeck)
}

// WatchLatestDeck streams LatestDeck; the value is nil while there are no decks.
func (s *Store) WatchLatestDeck(ctx context.Context) *Stream[*record.Deck] {
	return watch(ctx, s, optional(s.LatestDeck), TableDeck)
}

// WatchDeck streams DeckByID; the value is nil while the deck does not exist.
func (s *Store) WatchDeck(ctx context.Context, id string) *Stream[*record.Deck] {
	return watch(ctx, s, optional(func(ctx context.Context) (record.Deck, error) {
		return s.DeckByID(ctx, id)
	}), TableDeck)
}

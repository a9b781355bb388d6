package store

import (
	"context"
	"fmt"

	"github.com/roach88/decklog/internal/record"
)

// InsertPack stores a pack opening and returns its id.
// A zero TimeMillis is replaced by the current time.
func (s *Store) InsertPack(ctx context.Context, p record.Pack) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("insert pack: %w", err)
	}
	if p.TimeMillis == 0 {
		p.TimeMillis = s.nowMillis()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO rpack (timeMillis, cardList, dust) VALUES (?, ?, ?)
	`, p.TimeMillis, record.FormatCardList(p.Cards()), p.Dust)
	if err != nil {
		return 0, fmt.Errorf("insert pack: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert pack: last insert id: %w", err)
	}

	s.notify.publish(TablePack)
	return id, nil
}

// Packs returns every pack opening, newest first.
func (s *Store) Packs(ctx context.Context) ([]record.Pack, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+packColumns+`
		FROM rpack
		ORDER BY timeMillis DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query packs: %w", err)
	}
	return collect(rows, scanPack)
}

// PackStats returns the number of packs opened and the total dust.
func (s *Store) PackStats(ctx context.Context) (record.PackStats, error) {
	var stats record.PackStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(dust), 0) FROM rpack
	`).Scan(&stats.Count, &stats.Dust)
	if err != nil {
		return stats, fmt.Errorf("pack stats: %w", err)
	}
	return stats, nil
}

// WatchPackStats streams PackStats.
func (s *Store) WatchPackStats(ctx context.Context) *Stream[record.PackStats] {
	return watch(ctx, s, s.PackStats, TablePack)
}

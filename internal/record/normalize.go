package record

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalid is wrapped by all validation failures.
var ErrInvalid = errors.New("invalid record")

// NormalizeName trims surrounding whitespace and NFC-normalizes a display name
// so that visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ParseCardList splits a comma-separated card list.
// Entries are trimmed and empty entries are dropped.
// Returns an empty slice (not nil) for an empty list.
func ParseCardList(s string) []string {
	cards := []string{}
	for _, part := range strings.Split(s, ",") {
		part = norm.NFC.String(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		cards = append(cards, part)
	}
	return cards
}

// FormatCardList joins card ids into the stored comma-separated form.
func FormatCardList(cards []string) string {
	return strings.Join(ParseCardList(strings.Join(cards, ",")), ",")
}

// Validate checks the invariants of a deck before it is written.
func (d Deck) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: deck id is required", ErrInvalid)
	}
	if d.Wins < 0 || d.Losses < 0 {
		return fmt.Errorf("%w: deck %s: wins and losses must be non-negative", ErrInvalid, d.ID)
	}
	return nil
}

// Validate checks the invariants of a game before it is written.
func (g Game) Validate() error {
	if strings.TrimSpace(g.PlayerClass) == "" {
		return fmt.Errorf("%w: game player_class is required", ErrInvalid)
	}
	if strings.TrimSpace(g.OpponentClass) == "" {
		return fmt.Errorf("%w: game opponent_class is required", ErrInvalid)
	}
	return nil
}

// Validate checks the invariants of a pack before it is written.
func (p Pack) Validate() error {
	if p.Dust < 0 {
		return fmt.Errorf("%w: pack dust must be non-negative", ErrInvalid)
	}
	return nil
}

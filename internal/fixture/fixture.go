// Package fixture loads seed files: YAML documents listing decks, games and
// packs to insert into a store.
//
// Seed files are checked against CUE definitions before they are decoded,
// so typos in field names and out-of-range counters are reported with their
// path instead of being silently dropped.
//
// Example:
//
//	decks:
//	  - id: 6f1c...
//	    name: Tempo Mage
//	    deck_string: AAECAf0EAA==
//	    wins: 3
//	games:
//	  - deck_id: 6f1c...
//	    victory: true
//	    player_class: mage
//	    opponent_class: warrior
//	    game_type: GT_RANKED
//	    format_type: FT_STANDARD
//	    deck_name: Tempo Mage
//	packs:
//	  - cards: [EX1_001, CS2_029]
//	    dust: 40
package fixture

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/decklog/internal/record"
)

// ErrInvalidFixture is wrapped by every schema violation.
var ErrInvalidFixture = errors.New("invalid fixture")

const schemaSource = `
#Deck: {
	id:             string & !=""
	name:           string
	deck_string?:   string
	wins?:          int & >=0
	losses?:        int & >=0
	arena?:         bool
	access_millis?: int & >=0
}

#Game: {
	id?:             int & >0
	deck_id?:        string
	victory:         bool
	player_class:    string & !=""
	opponent_class:  string & !=""
	coin?:           bool
	rank?:           int & >=0
	game_type:       string
	format_type:     string
	hs_replay_url?:  string
	date?:           int
	deck_name?:      string
}

#Pack: {
	time_millis?: int & >=0
	cards:        [...string]
	dust?:        int & >=0
}

#Fixture: {
	decks?: [...#Deck]
	games?: [...#Game]
	packs?: [...#Pack]
}
`

// File is a decoded seed file.
type File struct {
	Decks []Deck `yaml:"decks"`
	Games []Game `yaml:"games"`
	Packs []Pack `yaml:"packs"`
}

// Deck is a seed deck.
type Deck struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	DeckString   string `yaml:"deck_string"`
	Wins         int    `yaml:"wins"`
	Losses       int    `yaml:"losses"`
	Arena        bool   `yaml:"arena"`
	AccessMillis int64  `yaml:"access_millis"`
}

// Game is a seed game.
type Game struct {
	ID            int64   `yaml:"id"`
	DeckID        *string `yaml:"deck_id"`
	Victory       bool    `yaml:"victory"`
	PlayerClass   string  `yaml:"player_class"`
	OpponentClass string  `yaml:"opponent_class"`
	Coin          bool    `yaml:"coin"`
	Rank          *int    `yaml:"rank"`
	GameType      string  `yaml:"game_type"`
	FormatType    string  `yaml:"format_type"`
	HSReplayURL   *string `yaml:"hs_replay_url"`
	Date          *int64  `yaml:"date"`
	DeckName      string  `yaml:"deck_name"`
}

// Pack is a seed pack opening.
type Pack struct {
	TimeMillis int64    `yaml:"time_millis"`
	Cards      []string `yaml:"cards"`
	Dust       int      `yaml:"dust"`
}

// Writer is the subset of the store a fixture is applied to.
type Writer interface {
	InsertDeck(ctx context.Context, d record.Deck) error
	InsertGame(ctx context.Context, g record.Game) (int64, error)
	InsertPack(ctx context.Context, p record.Pack) (int64, error)
}

// Result counts what Apply inserted.
type Result struct {
	Decks int `json:"decks"`
	Games int `json:"games"`
	Packs int `json:"packs"`
}

// LoadFile reads and parses a seed file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return f, nil
}

// Parse validates data against the seed schema and decodes it.
func Parse(data []byte) (*File, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if err := validate(raw); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}
	return &f, nil
}

// validate unifies the decoded document with #Fixture.
func validate(raw any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile fixture schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Fixture"))
	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFixture, cueerrors.Details(err, nil))
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFixture, cueerrors.Details(err, nil))
	}
	return nil
}

// Apply inserts every record in f: decks first, then games, then packs.
// It stops at the first error; records inserted before it are kept.
func Apply(ctx context.Context, w Writer, f *File) (Result, error) {
	var res Result

	for _, d := range f.Decks {
		err := w.InsertDeck(ctx, record.Deck{
			ID:           d.ID,
			Name:         d.Name,
			DeckString:   d.DeckString,
			Wins:         d.Wins,
			Losses:       d.Losses,
			Arena:        d.Arena,
			AccessMillis: d.AccessMillis,
		})
		if err != nil {
			return res, fmt.Errorf("seed deck %s: %w", d.ID, err)
		}
		res.Decks++
	}

	for i, g := range f.Games {
		_, err := w.InsertGame(ctx, record.Game{
			ID:            g.ID,
			DeckID:        g.DeckID,
			Victory:       g.Victory,
			PlayerClass:   g.PlayerClass,
			OpponentClass: g.OpponentClass,
			Coin:          g.Coin,
			Rank:          g.Rank,
			GameType:      g.GameType,
			FormatType:    g.FormatType,
			HSReplayURL:   g.HSReplayURL,
			Date:          g.Date,
			DeckName:      g.DeckName,
		})
		if err != nil {
			return res, fmt.Errorf("seed game %d: %w", i, err)
		}
		res.Games++
	}

	for i, p := range f.Packs {
		_, err := w.InsertPack(ctx, record.Pack{
			TimeMillis: p.TimeMillis,
			CardList:   record.FormatCardList(p.Cards),
			Dust:       p.Dust,
		})
		if err != nil {
			return res, fmt.Errorf("seed pack %d: %w", i, err)
		}
		res.Packs++
	}

	return res, nil
}

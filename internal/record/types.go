package record

// Deck is a saved or in-progress card deck (table rdeck).
// ID is caller-supplied and unique.
type Deck struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DeckString   string `json:"deck_string"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Arena        bool   `json:"arena"`
	AccessMillis int64  `json:"access_millis"`
}

// Game is the record of one played match (table rgame).
//
// Games are append-only. HSReplayURL is the only field changed after insert,
// once a replay upload completes.
type Game struct {
	ID            int64   `json:"id"`
	DeckID        *string `json:"deck_id,omitempty"` // weak reference to Deck.ID, no cascade
	Victory       bool    `json:"victory"`
	PlayerClass   string  `json:"player_class"`
	OpponentClass string  `json:"opponent_class"`
	Coin          bool    `json:"coin"`
	Rank          *int    `json:"rank,omitempty"`
	GameType      string  `json:"game_type"`
	FormatType    string  `json:"format_type"`
	HSReplayURL   *string `json:"hs_replay_url,omitempty"`
	Date          *int64  `json:"date,omitempty"`
	DeckName      string  `json:"deck_name"` // copy of the deck name at play time
}

// Pack is the record of one card-pack opening (table rpack).
type Pack struct {
	ID         int64  `json:"id"`
	TimeMillis int64  `json:"time_millis"`
	CardList   string `json:"card_list"` // comma-separated card ids
	Dust       int    `json:"dust"`
}

// Cards returns the parsed card list.
func (p Pack) Cards() []string {
	return ParseCardList(p.CardList)
}

// PackStats aggregates all pack openings.
type PackStats struct {
	Count int `json:"count"`
	Dust  int `json:"dust"`
}

// Counter is the won/lost tally of games played with one deck.
type Counter struct {
	Won  int `json:"won"`
	Lost int `json:"lost"`
}

// OpponentStats is the tally of games against one opponent class.
type OpponentStats struct {
	OpponentClass string `json:"opponent_class"`
	Played        int    `json:"played"`
	Victories     int    `json:"victories"`
}

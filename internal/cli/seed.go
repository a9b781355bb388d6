package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/decklog/internal/config"
	"github.com/roach88/decklog/internal/fixture"
	"github.com/roach88/decklog/internal/store"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load decks, games and packs from a YAML fixture",
		Long: `Validate a YAML fixture and insert its records.

The file is checked against the fixture schema before anything is written.
Decks are inserted first, then games, then packs. Insertion stops at the
first error; records inserted before it are kept.

Example fixture:
  decks:
    - id: d1
      name: Tempo Mage
      deck_string: AAECAf0E
      access_millis: 1704067200000
  games:
    - deck_id: d1
      victory: true
      player_class: MAGE
      opponent_class: WARRIOR
      deck_name: Tempo Mage
  packs:
    - cards: [EX1_001, EX1_002]
      dust: 40`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			// Validate before opening so a bad file never creates a database.
			file, err := fixture.LoadFile(args[0])
			if err != nil {
				if errors.Is(err, fixture.ErrInvalidFixture) {
					err = &ExitError{Code: ExitFailure, ErrCode: ErrCodeInvalid, Message: "invalid fixture", Err: err}
				}
				return commandError(f, "failed to load fixture", err)
			}
			f.VerboseLog("Fixture %s: %d deck(s), %d game(s), %d pack(s)", args[0], len(file.Decks), len(file.Games), len(file.Packs))

			return rootOpts.withStore(cmd, "failed to seed database", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				res, err := fixture.Apply(cmd.Context(), st, file)
				if err != nil {
					return err
				}
				return f.Result(res, fmt.Sprintf("Seeded %d deck(s), %d game(s), %d pack(s)\n", res.Decks, res.Games, res.Packs))
			})
		},
	}

	return cmd
}

package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/decklog/internal/config"
	"github.com/roach88/decklog/internal/record"
	"github.com/roach88/decklog/internal/store"
)

// NewGameCommand creates the game command group.
func NewGameCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Record and query played games",
		Long: `Record played games and query the game history.

Examples:
  decklog game add --deck 3f1c... --player MAGE --opponent WARRIOR --victory
  decklog game against WARRIOR
  decklog game replay-url 12 https://hsreplay.net/replay/abc`,
	}

	cmd.AddCommand(newGameListCommand(rootOpts))
	cmd.AddCommand(newGameAddCommand(rootOpts))
	cmd.AddCommand(newGameClearCommand(rootOpts))
	cmd.AddCommand(newGameReplayURLCommand(rootOpts))
	cmd.AddCommand(newGameAgainstCommand(rootOpts))

	return cmd
}

func newGameListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every recorded game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to list games", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				games, err := st.Games(cmd.Context())
				if err != nil {
					return err
				}
				return f.Result(games, formatGames(games))
			})
		},
	}
}

// gameFlags holds the flag values of game add.
type gameFlags struct {
	deckID   string
	victory  bool
	player   string
	opponent string
	coin     bool
	rank     int
	gameType string
	format   string
	replay   string
	deckName string
}

func newGameAddCommand(rootOpts *RootOptions) *cobra.Command {
	var gf gameFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a played game",
		Long: `Record a played game.

When --deck names a stored deck and --deck-name is not given, the deck's
current name is copied onto the game.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to add game", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				ctx := cmd.Context()
				g := record.Game{
					Victory:       gf.victory,
					PlayerClass:   gf.player,
					OpponentClass: gf.opponent,
					Coin:          gf.coin,
					GameType:      gf.gameType,
					FormatType:    gf.format,
					DeckName:      gf.deckName,
				}
				date := rootOpts.Now().UnixMilli()
				g.Date = &date

				if gf.deckID != "" {
					g.DeckID = &gf.deckID
					if !cmd.Flags().Changed("deck-name") {
						d, err := st.DeckByID(ctx, gf.deckID)
						if err != nil {
							return fmt.Errorf("deck %s: %w", gf.deckID, err)
						}
						g.DeckName = d.Name
					}
				}
				if cmd.Flags().Changed("rank") {
					g.Rank = &gf.rank
				}
				if gf.replay != "" {
					g.HSReplayURL = &gf.replay
				}

				id, err := st.InsertGame(ctx, g)
				if err != nil {
					return err
				}
				saved, err := st.GameByID(ctx, id)
				if err != nil {
					return err
				}
				return f.Result(saved, fmt.Sprintf("Added game %d\n", saved.ID))
			})
		},
	}

	cmd.Flags().StringVar(&gf.deckID, "deck", "", "id of the deck played")
	cmd.Flags().BoolVar(&gf.victory, "victory", false, "the game was won")
	cmd.Flags().StringVar(&gf.player, "player", "", "player class")
	cmd.Flags().StringVar(&gf.opponent, "opponent", "", "opponent class")
	cmd.Flags().BoolVar(&gf.coin, "coin", false, "the player went second")
	cmd.Flags().IntVar(&gf.rank, "rank", 0, "ladder rank")
	cmd.Flags().StringVar(&gf.gameType, "game-type", "", "game type, e.g. GT_RANKED")
	cmd.Flags().StringVar(&gf.format, "format-type", "", "format type, e.g. FT_STANDARD")
	cmd.Flags().StringVar(&gf.replay, "replay-url", "", "replay URL")
	cmd.Flags().StringVar(&gf.deckName, "deck-name", "", "deck name to record (default: the deck's current name)")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("opponent")
	return cmd
}

func newGameClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole game history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to clear games", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				n, err := st.DeleteAllGames(cmd.Context())
				if err != nil {
					return err
				}
				return f.Result(map[string]int64{"deleted": n}, fmt.Sprintf("Deleted %d game(s)\n", n))
			})
		},
	}
}

func newGameReplayURLCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay-url <game-id> <url>",
		Short: "Attach a replay URL to a game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to set replay URL", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				var id int64
				if _, err := fmt.Sscan(args[0], &id); err != nil {
					return fmt.Errorf("%w: game id %q is not a number", record.ErrInvalid, args[0])
				}
				if err := st.SetReplayURL(cmd.Context(), id, args[1]); err != nil {
					return err
				}
				g, err := st.GameByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				return f.Result(g, fmt.Sprintf("Game %d replay: %s\n", g.ID, args[1]))
			})
		},
	}
}

func newGameAgainstCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "against <opponent-class>",
		Short: "Count games played and won against an opponent class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to count games", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				stats, err := st.OpponentStats(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return f.Result(stats, fmt.Sprintf("%s: played %d, won %d\n", stats.OpponentClass, stats.Played, stats.Victories))
			})
		},
	}
}

func formatGames(games []record.Game) string {
	if len(games) == 0 {
		return "No games\n"
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tDECK\tPLAYER\tOPPONENT\tRESULT")
	for _, g := range games {
		date := "-"
		if g.Date != nil {
			date = time.UnixMilli(*g.Date).UTC().Format(time.DateTime)
		}
		result := "loss"
		if g.Victory {
			result = "win"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", g.ID, date, g.DeckName, g.PlayerClass, g.OpponentClass, result)
	}
	tw.Flush()
	return b.String()
}

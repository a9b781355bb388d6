package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/decklog/internal/config"
	"github.com/roach88/decklog/internal/record"
	"github.com/roach88/decklog/internal/store"
)

// NewDeckCommand creates the deck command group.
func NewDeckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage saved decks",
		Long: `List, create, update and delete decks.

Examples:
  decklog deck list
  decklog deck add --name "Tempo Mage" --deck-string AAECAf0E...
  decklog deck record 3f1c... --wins 1
  decklog deck prune --keep 18`,
	}

	cmd.AddCommand(newDeckListCommand(rootOpts))
	cmd.AddCommand(newDeckLatestCommand(rootOpts))
	cmd.AddCommand(newDeckShowCommand(rootOpts))
	cmd.AddCommand(newDeckAddCommand(rootOpts))
	cmd.AddCommand(newDeckUpdateCommand(rootOpts))
	cmd.AddCommand(newDeckRecordCommand(rootOpts))
	cmd.AddCommand(newDeckDeleteCommand(rootOpts))
	cmd.AddCommand(newDeckPruneCommand(rootOpts))
	cmd.AddCommand(newDeckCounterCommand(rootOpts))

	return cmd
}

func newDeckListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List constructed (non-arena) decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to list decks", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				decks, err := st.Collection(cmd.Context())
				if err != nil {
					return err
				}
				return f.Result(decks, formatDecks(decks))
			})
		},
	}
}

func newDeckLatestCommand(rootOpts *RootOptions) *cobra.Command {
	var arena bool

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recently used deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to find latest deck", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				latest := st.LatestDeck
				if arena {
					latest = st.LatestArenaDeck
				}
				d, err := latest(cmd.Context())
				if err != nil {
					return err
				}
				return f.Result(d, formatDeck(d))
			})
		},
	}

	cmd.Flags().BoolVar(&arena, "arena", false, "only consider arena decks")
	return cmd
}

func newDeckShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to show deck", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				d, err := st.DeckByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return f.Result(d, formatDeck(d))
			})
		},
	}
}

func newDeckAddCommand(rootOpts *RootOptions) *cobra.Command {
	var d record.Deck

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a deck",
		Long: `Create a deck. Without --id a time-ordered UUID is generated.

Fails with exit code 1 if a deck with the id already exists; the existing
deck is left unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to add deck", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				if d.ID == "" {
					d.ID = rootOpts.NewID()
				}
				if err := st.InsertDeck(cmd.Context(), d); err != nil {
					return err
				}
				saved, err := st.DeckByID(cmd.Context(), d.ID)
				if err != nil {
					return err
				}
				return f.Result(saved, fmt.Sprintf("Added deck %s\n", saved.ID))
			})
		},
	}

	cmd.Flags().StringVar(&d.ID, "id", "", "deck id (default: generated)")
	cmd.Flags().StringVar(&d.Name, "name", "", "deck name")
	cmd.Flags().StringVar(&d.DeckString, "deck-string", "", "encoded deck contents")
	cmd.Flags().BoolVar(&d.Arena, "arena", false, "mark as an arena deck")
	cmd.Flags().IntVar(&d.Wins, "wins", 0, "initial wins")
	cmd.Flags().IntVar(&d.Losses, "losses", 0, "initial losses")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newDeckUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var name, deckString string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a deck or replace its contents",
		Long: `Set a deck's name and/or contents and mark it as just used.
Flags that are not given keep their current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to update deck", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				ctx := cmd.Context()
				current, err := st.DeckByID(ctx, args[0])
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("name") {
					name = current.Name
				}
				if !cmd.Flags().Changed("deck-string") {
					deckString = current.DeckString
				}

				err = st.UpdateNameAndContents(ctx, args[0], name, deckString, rootOpts.Now().UnixMilli())
				if err != nil {
					return err
				}
				updated, err := st.DeckByID(ctx, args[0])
				if err != nil {
					return err
				}
				return f.Result(updated, fmt.Sprintf("Updated deck %s\n", updated.ID))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new deck name")
	cmd.Flags().StringVar(&deckString, "deck-string", "", "new encoded deck contents")
	return cmd
}

func newDeckRecordCommand(rootOpts *RootOptions) *cobra.Command {
	var wins, losses int
	var set bool

	cmd := &cobra.Command{
		Use:   "record <id>",
		Short: "Record wins and losses for a deck",
		Long: `Add to a deck's win/loss tally, or overwrite it with --set.

Examples:
  decklog deck record 3f1c... --wins 1
  decklog deck record 3f1c... --set --wins 10 --losses 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to record result", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				ctx := cmd.Context()
				var err error
				if set {
					err = st.SetWinsLosses(ctx, args[0], wins, losses)
				} else {
					err = st.IncrementWinsLosses(ctx, args[0], wins, losses)
				}
				if err != nil {
					return err
				}
				d, err := st.DeckByID(ctx, args[0])
				if err != nil {
					return err
				}
				return f.Result(d, fmt.Sprintf("%s: %d-%d\n", d.ID, d.Wins, d.Losses))
			})
		},
	}

	cmd.Flags().IntVar(&wins, "wins", 0, "wins to add (or set)")
	cmd.Flags().IntVar(&losses, "losses", 0, "losses to add (or set)")
	cmd.Flags().BoolVar(&set, "set", false, "overwrite the tally instead of adding to it")
	return cmd
}

func newDeckDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deck",
		Long: `Delete a deck. Games played with it are kept and still show the deck
name they were recorded with.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to delete deck", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				if err := st.DeleteDeck(cmd.Context(), args[0]); err != nil {
					return err
				}
				return f.Result(map[string]string{"deleted": args[0]}, fmt.Sprintf("Deleted deck %s\n", args[0]))
			})
		},
	}
}

// PruneResult is the output of deck prune.
type PruneResult struct {
	Kept    int   `json:"kept"`
	Deleted int64 `json:"deleted"`
}

func newDeckPruneCommand(rootOpts *RootOptions) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recently used decks",
		Long: `Keep the N most recently used decks and delete the rest.

N comes from --keep, or from retain_decks in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to prune decks", func(cmd *cobra.Command, st *store.Store, cfg config.Config, f *OutputFormatter) error {
				if !cmd.Flags().Changed("keep") {
					if cfg.RetainDecks == 0 {
						return NewExitError(ExitCommandError, "no retention configured: pass --keep or set retain_decks")
					}
					keep = cfg.RetainDecks
				}
				n, err := st.PruneDecks(cmd.Context(), keep)
				if err != nil {
					return err
				}
				return f.Result(PruneResult{Kept: keep, Deleted: n}, fmt.Sprintf("Deleted %d deck(s)\n", n))
			})
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, "number of decks to keep")
	return cmd
}

func newDeckCounterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "counter <id>",
		Short: "Count recorded games won and lost with a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to count games", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				c, err := st.DeckCounter(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return f.Result(c, fmt.Sprintf("won %d, lost %d\n", c.Won, c.Lost))
			})
		},
	}
}

func formatDeck(d record.Deck) string {
	kind := "constructed"
	if d.Arena {
		kind = "arena"
	}
	return fmt.Sprintf("%s %q (%s) %d-%d\n", d.ID, d.Name, kind, d.Wins, d.Losses)
}

func formatDecks(decks []record.Deck) string {
	if len(decks) == 0 {
		return "No decks\n"
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tWINS\tLOSSES")
	for _, d := range decks {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", d.ID, d.Name, d.Wins, d.Losses)
	}
	tw.Flush()
	return b.String()
}

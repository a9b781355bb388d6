package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/decklog/internal/config"
	"github.com/roach88/decklog/internal/record"
	"github.com/roach88/decklog/internal/store"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Count int
}

// NewWatchCommand creates the watch command group.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print query results again whenever the data changes",
		Long: `Run a query, print its result, then print a fresh result each time the
underlying table changes. Changes made by other commands against the
same database file are not observed; only writes from this process are.

Stops on interrupt, or after --count results.

Examples:
  decklog watch decks
  decklog watch counter 3f1c... --count 1 --format json`,
	}

	cmd.PersistentFlags().IntVar(&opts.Count, "count", 0, "stop after this many results (0 = until interrupted)")

	cmd.AddCommand(&cobra.Command{
		Use:   "decks",
		Short: "Watch the constructed deck collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, "watch failed", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				return follow(cmd.Context(), opts.Count, f, st.WatchCollection, formatDecks)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "games",
		Short: "Watch the game history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, "watch failed", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				return follow(cmd.Context(), opts.Count, f, st.WatchGames, formatGames)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "packs",
		Short: "Watch pack totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, "watch failed", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				return follow(cmd.Context(), opts.Count, f, st.WatchPackStats, formatPackStats)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "counter <deck-id>",
		Short: "Watch the won/lost count of a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, "watch failed", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				start := func(ctx context.Context) *store.Stream[record.Counter] {
					return st.WatchDeckCounter(ctx, args[0])
				}
				return follow(cmd.Context(), opts.Count, f, start, func(c record.Counter) string {
					return fmt.Sprintf("won %d, lost %d\n", c.Won, c.Lost)
				})
			})
		},
	})

	return cmd
}

// follow prints each update of the stream started by start until count
// updates were printed, the stream ends or the process is interrupted.
func follow[T any](ctx context.Context, count int, f *OutputFormatter, start func(context.Context) *store.Stream[T], render func(T) string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream := start(ctx)
	defer stream.Close()

	printed := 0
	for u := range stream.Updates() {
		if u.Err != nil {
			return u.Err
		}
		if err := f.Result(u.Value, render(u.Value)); err != nil {
			return err
		}
		printed++
		if count > 0 && printed >= count {
			return nil
		}
	}
	return nil
}

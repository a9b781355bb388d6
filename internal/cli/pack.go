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

// NewPackCommand creates the pack command group.
func NewPackCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Record card pack openings",
		Long: `Record card pack openings and show totals.

Examples:
  decklog pack add --cards EX1_001,EX1_002,CS2_029 --dust 40
  decklog pack stats`,
	}

	cmd.AddCommand(newPackAddCommand(rootOpts))
	cmd.AddCommand(newPackListCommand(rootOpts))
	cmd.AddCommand(newPackStatsCommand(rootOpts))

	return cmd
}

func newPackAddCommand(rootOpts *RootOptions) *cobra.Command {
	var cards []string
	var dust int
	var timeMillis int64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a pack opening",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to add pack", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				if timeMillis == 0 {
					timeMillis = rootOpts.Now().UnixMilli()
				}
				p := record.Pack{
					TimeMillis: timeMillis,
					CardList:   record.FormatCardList(cards),
					Dust:       dust,
				}
				id, err := st.InsertPack(cmd.Context(), p)
				if err != nil {
					return err
				}
				p.ID = id
				return f.Result(p, fmt.Sprintf("Added pack %d (%d card(s), %d dust)\n", id, len(p.Cards()), p.Dust))
			})
		},
	}

	cmd.Flags().StringSliceVar(&cards, "cards", nil, "card ids, comma-separated")
	cmd.Flags().IntVar(&dust, "dust", 0, "dust value of the pack")
	cmd.Flags().Int64Var(&timeMillis, "time", 0, "opening time in Unix milliseconds (default: now)")
	return cmd
}

func newPackListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pack openings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to list packs", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				packs, err := st.Packs(cmd.Context())
				if err != nil {
					return err
				}
				return f.Result(packs, formatPacks(packs))
			})
		},
	}
}

func newPackStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number of packs opened and total dust",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to read pack stats", func(cmd *cobra.Command, st *store.Store, _ config.Config, f *OutputFormatter) error {
				stats, err := st.PackStats(cmd.Context())
				if err != nil {
					return err
				}
				return f.Result(stats, formatPackStats(stats))
			})
		},
	}
}

func formatPackStats(stats record.PackStats) string {
	return fmt.Sprintf("%d pack(s), %d dust\n", stats.Count, stats.Dust)
}

func formatPacks(packs []record.Pack) string {
	if len(packs) == 0 {
		return "No packs\n"
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOPENED\tDUST\tCARDS")
	for _, p := range packs {
		opened := time.UnixMilli(p.TimeMillis).UTC().Format(time.DateTime)
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", p.ID, opened, p.Dust, p.CardList)
	}
	tw.Flush()
	return b.String()
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/decklog/internal/config"
	"github.com/roach88/decklog/internal/store"
)

// MigrateResult is the output of the migrate command.
type MigrateResult struct {
	Path   string                `json:"path"`
	Report store.MigrationReport `json:"report"`
	Schema string                `json:"schema,omitempty"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var showSchema bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Long: `Open the database, apply pending schema migrations and report what was done.

Every command migrates on open; this command only makes it explicit.
When the schema cannot be migrated, the command fails unless
--recreate-on-mismatch is given, which drops all tables and their rows.

Examples:
  decklog migrate --db decklog.db
  decklog migrate --db old.db --schema
  decklog migrate --db broken.db --recreate-on-mismatch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, "failed to migrate database", func(cmd *cobra.Command, st *store.Store, cfg config.Config, f *OutputFormatter) error {
				result := MigrateResult{Path: cfg.Database, Report: st.Report()}
				if showSchema {
					schema, err := st.DescribeSchema(cmd.Context())
					if err != nil {
						return err
					}
					result.Schema = schema
				}
				return f.Result(result, formatMigrateResult(result))
			})
		},
	}

	cmd.Flags().BoolVar(&showSchema, "schema", false, "print the resulting table layout")
	return cmd
}

func formatMigrateResult(r MigrateResult) string {
	var b strings.Builder
	rep := r.Report

	switch {
	case rep.Recreated:
		fmt.Fprintf(&b, "%s: recreated at version %d (previous version %d, all rows discarded)\n", r.Path, rep.To, rep.From)
	case rep.From == rep.To:
		fmt.Fprintf(&b, "%s: already at version %d\n", r.Path, rep.To)
	default:
		fmt.Fprintf(&b, "%s: migrated from version %d to %d\n", r.Path, rep.From, rep.To)
	}
	for _, step := range rep.Applied {
		fmt.Fprintf(&b, "  applied: %s\n", step)
	}
	for _, step := range rep.Failed {
		fmt.Fprintf(&b, "  skipped (failed): %s\n", step)
	}
	if r.Schema != "" {
		b.WriteString(r.Schema)
	}
	return b.String()
}

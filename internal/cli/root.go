package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/decklog/internal/config"
	"github.com/roach88/decklog/internal/record"
	"github.com/roach88/decklog/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // overrides config database when set
	ConfigPath string
	Recreate   bool // --recreate-on-mismatch

	// Now and NewID are replaced in tests for deterministic output.
	Now   func() time.Time
	NewID func() string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the decklog CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{
		Now:   time.Now,
		NewID: func() string { return uuid.Must(uuid.NewV7()).String() },
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decklog",
		Short: "decklog - card game deck and match tracker",
		Long: `A local store for card game decks, played games and pack openings.

Data lives in a single SQLite file. Opening an older file upgrades its
schema in place; see 'decklog migrate'.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints errors that commands did not report
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config, then "+store.DefaultFileName+")")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().BoolVar(&opts.Recreate, "recreate-on-mismatch", false, "drop and rebuild tables when the schema cannot be migrated (destroys data)")

	// Add subcommands
	cmd.AddCommand(NewDeckCommand(opts))
	cmd.AddCommand(NewGameCommand(opts))
	cmd.AddCommand(NewPackCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// formatter builds the OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig reads the config file and applies flag overrides.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return cfg, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfigInvalid, Message: "failed to load config", Err: err}
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.Recreate {
		cfg.RecreateOnMismatch = true
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds a slog logger writing to w per cfg.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// openStore loads config and opens the store it names.
// The caller must Close the returned store.
func (o *RootOptions) openStore(cmd *cobra.Command) (*store.Store, config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, cfg, err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	storeOpts := cfg.StoreOptions(logger)
	storeOpts.Now = o.Now

	st, err := store.Open(cfg.Database, storeOpts)
	if err != nil {
		return nil, cfg, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeOpenFailed, Message: "failed to open database", Err: err}
	}
	if st.Report().Recreated {
		logger.Warn("database tables were recreated; previous rows are gone", "path", cfg.Database)
	}
	return st, cfg, nil
}

// commandError maps store and record errors to exit codes and E-codes,
// reports them through f and returns the ExitError.
func commandError(f *OutputFormatter, message string, err error) error {
	exitErr := &ExitError{Code: ExitFailure, ErrCode: ErrCodeGeneric, Message: message, Err: err}

	var existing *ExitError
	switch {
	case errors.As(err, &existing):
		exitErr = existing
	case errors.Is(err, store.ErrNotFound):
		exitErr.ErrCode = ErrCodeNotFound
	case errors.Is(err, store.ErrDeckExists):
		exitErr.ErrCode = ErrCodeDeckExists
	case errors.Is(err, record.ErrInvalid):
		exitErr.ErrCode = ErrCodeInvalid
	}

	_ = f.Error(exitErr.ErrCode, exitErr.Error(), nil)
	exitErr.reported = true
	return exitErr
}

// storeFunc is the body of a command that needs an open store.
type storeFunc func(cmd *cobra.Command, st *store.Store, cfg config.Config, f *OutputFormatter) error

// withStore opens the store, runs fn and closes the store. Errors are
// reported through the formatter before being returned.
func (o *RootOptions) withStore(cmd *cobra.Command, message string, fn storeFunc) error {
	f := o.formatter(cmd)

	st, cfg, err := o.openStore(cmd)
	if err != nil {
		return commandError(f, message, err)
	}
	defer st.Close()

	f.VerboseLog("Using database %s (schema v%d)", cfg.Database, st.Report().To)

	if err := fn(cmd, st, cfg, f); err != nil {
		return commandError(f, message, err)
	}
	return nil
}

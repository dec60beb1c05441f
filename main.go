package main

import (
	"fmt"
	"log/slog"
	"os"

	"library-catalog/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	dbPath   string
	logLevel string
}

// open configures logging and opens the catalog. A failure here is fatal for
// the invoking command.
func (o *rootOptions) open() (*library.LibraryManager, error) {
	lvl, ok := library.ParseLogLevel(o.logLevel)
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", o.logLevel)
	}
	logger := library.NewLogger(lvl)
	slog.SetDefault(logger)

	mgr, err := library.NewLibraryManager(o.dbPath, library.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to open database", "path", o.dbPath, "error", err)
		return nil, err
	}
	return mgr, nil
}

func newRootCmd() *cobra.Command {
	cfg := library.LoadConfig()
	opts := &rootOptions{dbPath: cfg.DBPath, logLevel: cfg.LogLevel.String()}

	root := &cobra.Command{
		Use:           "library-catalog",
		Short:         "Track a small library's books, members and loans",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := opts.open()
			if err != nil {
				return err
			}
			defer mgr.Close()

			interactive := term.IsTerminal(int(os.Stdin.Fd()))
			newMenu(mgr, cmd.InOrStdin(), cmd.OutOrStdout()).run(interactive)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", opts.dbPath, "path to the SQLite database file (env "+library.EnvDBPath+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "debug, info, warn or error (env "+library.EnvLogLevel+")")

	root.AddCommand(newBooksCmd(opts), newMembersCmd(opts), newStatusCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

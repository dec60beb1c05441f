package main

import (
	"fmt"
	"io"

	"library-catalog/library"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// listCmd builds a read-only subcommand that prints its rows as text or JSON.
func listCmd[T any](opts *rootOptions, use, short, empty string, fetch func(*library.LibraryManager) ([]T, error), pretty func(T) string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := opts.open()
			if err != nil {
				return err
			}
			defer mgr.Close()

			rows, err := fetch(mgr)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if rows == nil {
					rows = []T{}
				}
				return writeJSON(out, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, empty)
				return nil
			}
			for _, r := range rows {
				fmt.Fprintln(out, pretty(r))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func newBooksCmd(opts *rootOptions) *cobra.Command {
	return listCmd(opts, "books", "List all books", "Library is empty.",
		(*library.LibraryManager).GetAllBooks, library.PrettyBook)
}

func newMembersCmd(opts *rootOptions) *cobra.Command {
	return listCmd(opts, "members", "List all members", "No registered members.",
		(*library.LibraryManager).GetAllMembers, library.PrettyMember)
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return listCmd(opts, "status", "Show which member holds which book", "Library is empty.",
		(*library.LibraryManager).StatusReport, library.PrettyStatus)
}

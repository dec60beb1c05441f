package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"library-catalog/library"

	"github.com/spf13/cobra"
)

var csvHeader = []string{"title", "author", "publisher", "pages"}

// parseBooksCSV reads title,author,publisher,pages rows after a header line.
// Any malformed row fails the whole file.
func parseBooksCSV(r io.Reader) ([]library.NewBook, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: expected header %s", strings.Join(csvHeader, ","))
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("unexpected header %q, want %s", strings.Join(header, ","), strings.Join(csvHeader, ","))
		}
	}

	var books []library.NewBook
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		pages, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			return nil, fmt.Errorf("line %d: pages %q is not a number", line, rec[3])
		}
		books = append(books, library.NewBook{
			Title:     strings.TrimSpace(rec[0]),
			Author:    strings.TrimSpace(rec[1]),
			Publisher: strings.TrimSpace(rec[2]),
			Pages:     pages,
		})
	}
	return books, nil
}

// removeDatabase deletes the database file and its WAL side files.
func removeDatabase(path string) error {
	for _, file := range []string{path, path + "-shm", path + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", file, err)
		}
	}
	return nil
}

func newImportCmd() *cobra.Command {
	cfg := library.LoadConfig()
	var (
		dbPath   = cfg.DBPath
		logLevel = cfg.LogLevel.String()
		fresh    bool
	)

	cmd := &cobra.Command{
		Use:          "import_books FILE.csv",
		Short:        "Load books from a CSV file (title,author,publisher,pages)",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, ok := library.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("invalid log level %q", logLevel)
			}
			logger := library.NewLogger(lvl)
			slog.SetDefault(logger)
			out := cmd.OutOrStdout()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			books, err := parseBooksCSV(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			if fresh {
				fmt.Fprintln(out, "Cleaning up existing database files...")
				if err := removeDatabase(dbPath); err != nil {
					return err
				}
			}

			manager, err := library.NewLibraryManager(dbPath, library.WithLogger(logger))
			if err != nil {
				logger.Error("Failed to open database", "path", dbPath, "error", err)
				return err
			}
			defer manager.Close()

			added, err := manager.ImportBooks(books)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Import complete: %d book(s) added.\n", len(added))
			if len(added) > 0 {
				fmt.Fprintf(out, "%-5s %-40s %-25s\n", "ID", "Title", "Author")
				fmt.Fprintln(out, strings.Repeat("-", 72))
				for _, b := range added {
					fmt.Fprintf(out, "%-5d %-40s %-25s\n", b.ID, truncateString(b.Title, 40), truncateString(b.Author, 25))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", dbPath, "path to the SQLite database file (env "+library.EnvDBPath+")")
	cmd.Flags().StringVar(&logLevel, "log-level", logLevel, "debug, info, warn or error (env "+library.EnvLogLevel+")")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "delete the existing database before importing")
	return cmd
}

func main() {
	if err := newImportCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

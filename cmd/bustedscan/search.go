package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bustedscan/internal/storage"
)

var (
	searchSource string
	searchOutput string
)

// searchCmd creates the "search" subcommand.
func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [name]",
		Short: "Search previously exported records by name",
		Long: `Scan the CSV files written by earlier scrape runs for arrestee names
containing the given substring (case-insensitive). Restrict the scan to
one source's exports with --source.`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringVar(&searchSource, "source", "", "only search this source's exports")
	cmd.Flags().StringVarP(&searchOutput, "output", "o", "", "output directory to search (default from config)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	outputDir := cfg.Storage.OutputDir
	if searchOutput != "" {
		outputDir = searchOutput
	}

	searcher := storage.NewSearcher(outputDir, logger)
	results, err := searcher.ByName(args[0], searchSource)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Printf("\nNo matches for %q\n", args[0])
		return nil
	}

	fmt.Printf("\nFound %d matches:\n", len(results))
	for _, r := range results {
		fmt.Printf("  - %s (%s) - %s\n", r.Name, r.Source, r.BookingDate)
	}
	return nil
}

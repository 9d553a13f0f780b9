package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bustedscan/internal/config"
	"bustedscan/internal/engine"
	"bustedscan/internal/fetcher"
	"bustedscan/internal/storage"
	"bustedscan/internal/types"
)

var (
	cfgFile  string
	verbose  bool
	pages    int
	dateFrom string
	dateTo   string
	charges  []string
	withDups bool
	allFlag  bool
	delay    string
	cacheDir string
	outDir   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bustedscan",
		Short: "bustedscan — incremental county arrest-record scraper",
		Long: `bustedscan periodically retrieves publicly listed arrest-record pages
for a fixed set of counties, extracts structured fields from loosely
formatted HTML, deduplicates against previously seen records, and
writes new records out for downstream use.

Features:
  • Paginated listing retrieval with a politeness throttle
  • Pattern-rule field extraction tolerant of unstable markup
  • Persistent per-county dedup cache (idempotent re-runs)
  • Date-range and charge-keyword filtering
  • CSV export and name search over past exports
  • One-shot or daily scheduled runs`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [source]",
		Short: "Scrape one source, or all registered sources with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScrape,
	}

	cmd.Flags().BoolVar(&allFlag, "all", false, "scrape every registered source")
	cmd.Flags().IntVarP(&pages, "pages", "p", 0, "max pages per source (0 = config default)")
	cmd.Flags().StringVar(&dateFrom, "date-from", "", "keep records booked on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dateTo, "date-to", "", "keep records booked on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&charges, "charges", nil, "keep records whose charges contain any keyword")
	cmd.Flags().BoolVar(&withDups, "include-duplicates", false, "do not filter previously seen records")
	cmd.Flags().StringVar(&delay, "delay", "", "politeness delay between requests (e.g. 2s)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "dedup cache directory")
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory for CSV export")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	criteria, err := buildCriteria()
	if err != nil {
		return err
	}
	opts := engine.Options{MaxPages: pages, Criteria: criteria}

	if !allFlag && len(args) == 0 {
		return fmt.Errorf("a source name or --all is required (registered: %s)",
			strings.Join(cfg.SourceNames(), ", "))
	}

	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	runner := engine.NewRunner(cfg, httpFetcher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if allFlag {
		results := runner.ScrapeAll(ctx, nil, opts)
		storeResults(logger, store, results)
		fmt.Print(engine.Summary(results, cfg.SourceNames()))
		return nil
	}

	source := args[0]
	records, err := runner.ScrapeSource(ctx, source, opts)
	if len(records) > 0 {
		if storeErr := store.Store(source, records); storeErr != nil {
			logger.Error("store failed", "source", source, "error", storeErr)
		}
		fmt.Printf("\n✅ Scraped %d new records from %s\n", len(records), source)
	} else {
		fmt.Printf("\n❌ No new records found for %s\n", source)
	}
	return err
}

// scheduleCmd creates the "schedule" subcommand.
func scheduleCmd() *cobra.Command {
	var times []string
	var sources []string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run recurring scrapes at fixed daily times",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(times) > 0 {
				cfg.Schedule.Times = times
			}

			httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
			if err != nil {
				return fmt.Errorf("create fetcher: %w", err)
			}
			defer httpFetcher.Close()

			store, err := storage.New(&cfg.Storage, logger)
			if err != nil {
				return fmt.Errorf("create storage: %w", err)
			}
			defer store.Close()

			runner := engine.NewRunner(cfg, httpFetcher, logger)

			sched, err := engine.NewScheduler(cfg.Schedule.Times, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Println("Scheduler started. Press Ctrl+C to stop.")
			sched.Start(ctx, func(ctx context.Context) {
				opts := engine.Options{
					Criteria: types.FilterCriteria{SkipDuplicates: true},
				}
				results := runner.ScrapeAll(ctx, sources, opts)
				storeResults(logger, store, results)
				fmt.Print(engine.Summary(results, cfg.SourceNames()))
			})
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&times, "times", nil, `daily run times, e.g. --times 09:00,18:00 (default from config)`)
	cmd.Flags().StringSliceVar(&sources, "source", nil, "restrict scheduled runs to these sources")

	return cmd
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Scraper:\n")
			fmt.Printf("  Base URL:          %s\n", cfg.Scraper.BaseURL)
			fmt.Printf("  Sources:           %s\n", strings.Join(cfg.SourceNames(), ", "))
			fmt.Printf("  Max Pages:         %d\n", cfg.Scraper.MaxPages)
			fmt.Printf("  Politeness Delay:  %s\n", cfg.Scraper.PolitenessDelay)
			fmt.Printf("  Source Delay:      %s\n", cfg.Scraper.SourceDelay)
			fmt.Printf("  Request Timeout:   %s\n", cfg.Scraper.RequestTimeout)
			fmt.Printf("\nCache:\n")
			fmt.Printf("  Dir:               %s\n", cfg.Cache.Dir)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:              %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Dir:        %s\n", cfg.Storage.OutputDir)
			fmt.Printf("\nSchedule:\n")
			fmt.Printf("  Times:             %s\n", strings.Join(cfg.Schedule.Times, ", "))
			return nil
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bustedscan %s\n", config.Version)
		},
	}
}

// loadConfig loads configuration and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return nil, fmt.Errorf("invalid --delay: %w", err)
		}
		cfg.Scraper.PolitenessDelay = d
	}
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	if outDir != "" {
		cfg.Storage.OutputDir = outDir
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// buildCriteria assembles the run filter from CLI flags.
func buildCriteria() (types.FilterCriteria, error) {
	criteria := types.FilterCriteria{
		ChargeKeywords: charges,
		SkipDuplicates: !withDups,
	}

	if dateFrom != "" {
		t, err := time.Parse("2006-01-02", dateFrom)
		if err != nil {
			return criteria, fmt.Errorf("invalid --date-from: %w", err)
		}
		criteria.DateFrom = &t
	}
	if dateTo != "" {
		t, err := time.Parse("2006-01-02", dateTo)
		if err != nil {
			return criteria, fmt.Errorf("invalid --date-to: %w", err)
		}
		criteria.DateTo = &t
	}
	return criteria, nil
}

func storeResults(logger *slog.Logger, store storage.Storage, results map[string][]types.Record) {
	for source, records := range results {
		if len(records) == 0 {
			continue
		}
		if err := store.Store(source, records); err != nil {
			logger.Error("store failed", "source", source, "error", err)
		}
	}
}

// setupLogger creates a structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

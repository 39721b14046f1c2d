package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/ShelfGoat/internal/browser"
	"github.com/IshaanNene/ShelfGoat/internal/catalogue"
	"github.com/IshaanNene/ShelfGoat/internal/config"
	"github.com/IshaanNene/ShelfGoat/internal/observability"
	"github.com/IshaanNene/ShelfGoat/internal/pipeline"
	"github.com/IshaanNene/ShelfGoat/internal/storage"
	"github.com/IshaanNene/ShelfGoat/internal/types"
)

var (
	cfgFile    string
	verbose    bool
	postcode   string
	entryURL   string
	outputPath string
	outputType string
	categories []string
	maxPages   = -1
	headless   bool
	keepOpen   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shelfgoat",
		Short: "ShelfGoat: supermarket catalogue scraper",
		Long: `ShelfGoat drives a browser through an online supermarket catalogue and
collects every product tile, category by category and page by page.

A run sets the delivery postcode, walks the category menu in order, follows
each category's pagination to the end and writes one record per product.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape every category of the catalogue",
		Args:  cobra.NoArgs,
		RunE:  runScrape,
	}

	addBrowserFlags(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: csv, json, jsonl, mongodb (comma-separated for several)")
	cmd.Flags().StringArrayVar(&categories, "category", nil, "only scrape this category label (repeatable)")
	cmd.Flags().IntVar(&maxPages, "max-pages", -1, "maximum pages per category (0 = unlimited)")

	return cmd
}

func addBrowserFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&postcode, "postcode", "", "delivery postcode")
	cmd.Flags().StringVar(&entryURL, "url", "", "catalogue entry URL")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser without a window")
	cmd.Flags().BoolVar(&keepOpen, "keep-open", false, "leave the browser open after the run")
}

// runScrape executes the scrape command.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger.Info("starting scrape",
		"url", cfg.Catalogue.URL,
		"postcode", cfg.Catalogue.Postcode,
		"mode", cfg.Scrape.Mode,
		"output", cfg.Storage.OutputPath,
		"format", cfg.Storage.Type,
	)

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(logger)
		if err := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metrics.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	pipe, err := pipeline.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.Storage, types.Columns(cfg.FieldNames()), logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := launch(ctx, cfg, logger)
	if err != nil {
		store.Close()
		return err
	}
	defer sess.Close()

	runner := catalogue.NewRunner(sess, cfg, logger, catalogue.WithMetrics(metrics))
	products, runErr := runner.Run(ctx)
	if runErr != nil && !errors.Is(runErr, types.ErrRunStopped) {
		store.Close()
		return fmt.Errorf("scrape: %w", runErr)
	}
	if runErr != nil {
		logger.Warn("run interrupted, saving partial results", "products", len(products))
	}

	products, err = pipe.ProcessAll(products)
	if err != nil {
		store.Close()
		return fmt.Errorf("process products: %w", err)
	}
	if err := store.Store(products); err != nil {
		store.Close()
		return fmt.Errorf("store products: %w", err)
	}
	if err := store.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}

	stats := runner.Stats()
	summary := "scrape complete"
	if runErr != nil {
		summary = "scrape stopped early"
	}
	logger.Info(summary,
		"elapsed", stats.Elapsed,
		"categories", stats.Categories,
		"skipped", len(stats.Skipped),
		"pages", stats.Pages,
		"products", len(products),
	)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Categories", "Skipped", "Pages", "Products", "Elapsed", "Output"})
	t.AppendRow(table.Row{
		stats.Categories,
		len(stats.Skipped),
		stats.Pages,
		len(products),
		stats.Elapsed.Round(time.Millisecond),
		cfg.Storage.OutputPath,
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(stats.Skipped) > 0 {
		fmt.Printf("Skipped: %s\n", strings.Join(stats.Skipped, ", "))
	}
	return runErr
}

// categoriesCmd creates the "categories" subcommand, which lists the menu
// without scraping.
func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the catalogue's categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sess, err := launch(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			labels, err := catalogue.NewRunner(sess, cfg, logger).Categories(ctx)
			if err != nil {
				return fmt.Errorf("list categories: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"#", "Category"})
			for i, l := range labels {
				t.AppendRow(table.Row{i + 1, l})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
	addBrowserFlags(cmd)
	return cmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ShelfGoat %s\n", config.Version)
		},
	}
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

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Setting", "Value"})
			t.AppendRows([]table.Row{
				{"catalogue.url", cfg.Catalogue.URL},
				{"catalogue.postcode", cfg.Catalogue.Postcode},
				{"catalogue.store", cfg.Catalogue.Store},
				{"browser.headless", cfg.Browser.Headless},
				{"browser.stealth", cfg.Browser.Stealth},
				{"scrape.mode", cfg.Scrape.Mode},
				{"scrape.max_pages", cfg.Scrape.MaxPages},
				{"scrape.max_categories", cfg.Scrape.MaxCategories},
				{"timeouts.navigation", cfg.Timeouts.Navigation},
				{"timeouts.products", cfg.Timeouts.Products},
				{"timeouts.pagination", cfg.Timeouts.Pagination},
				{"fields", strings.Join(cfg.FieldNames(), ", ")},
				{"storage.type", cfg.Storage.Type},
				{"storage.output_path", cfg.Storage.OutputPath},
				{"storage.compression", cfg.Storage.Compression},
				{"metrics.enabled", cfg.Metrics.Enabled},
				{"metrics.port", cfg.Metrics.Port},
			})
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}

// loadConfig loads, overrides and validates the config, then builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	applyCLIOverrides(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, setupLogger(cfg.Logging), nil
}

// launch starts the browser, logging a setup hint when the launch fails.
func launch(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*browser.RodSession, error) {
	sess, err := browser.Launch(ctx, cfg.Browser, logger)
	if err != nil {
		if hint := browser.LaunchHint(err); hint != "" {
			logger.Error("browser launch failed", "hint", hint)
		}
		return nil, err
	}
	return sess, nil
}

// setupLogger creates a structured logger.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if postcode != "" {
		cfg.Catalogue.Postcode = postcode
	}
	if entryURL != "" {
		cfg.Catalogue.URL = entryURL
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if flags.Changed("keep-open") {
		cfg.Browser.KeepOpen = keepOpen
	}
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if len(categories) > 0 {
		cfg.Scrape.Categories = categories
	}
	if maxPages >= 0 {
		cfg.Scrape.MaxPages = maxPages
	}
}

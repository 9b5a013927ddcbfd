package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/yokatlas/config"
	"github.com/use-agent/yokatlas/engine"
	"github.com/use-agent/yokatlas/models"
	"github.com/use-agent/yokatlas/output"
	"github.com/use-agent/yokatlas/scraper"
)

var rootCmd = &cobra.Command{
	Use:   "yokatlas [--strategy query|browser] [--categories dil,ea,söz,say] [--out <dir>]",
	Short: "yokatlas collects YÖK Atlas admission listings and writes them as JSON and CSV.",
	Args:  cobra.NoArgs,
	RunE:  run,

	SilenceUsage: true,
}

var (
	flagStrategy   string
	flagCategories []string
	flagOut        string
)

func init() {
	rootCmd.Flags().StringVar(&flagStrategy, "strategy", "", "acquisition strategy: query or browser (overrides YOKATLAS_STRATEGY)")
	rootCmd.Flags().StringSliceVar(&flagCategories, "categories", nil, "categories to collect (overrides YOKATLAS_CATEGORIES)")
	rootCmd.Flags().StringVar(&flagOut, "out", "", "output directory (overrides YOKATLAS_OUTPUT_DIR)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()
	applyFlags(cmd, cfg)

	// ── 2. Initialise structured logging ────────────────────────────
	closeLog := initLogger(cfg.Log)
	defer closeLog()

	categories, err := models.ParseCategories(cfg.Categories)
	if err != nil {
		return err
	}
	slog.Info("yokatlas starting",
		"strategy", cfg.Strategy,
		"categories", categories,
		"pageSize", cfg.Source.PageSize,
		"maxAttempts", cfg.Retry.MaxAttempts,
	)

	// ── 3. Acquire the session and collect ──────────────────────────
	start := time.Now()
	var result *scraper.Result
	err = engine.WithSession(cmd.Context(), cfg, func(s *engine.Session) error {
		result = scraper.New(cfg.Retry).Run(cmd.Context(), s, categories)
		return nil
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	slog.Info("collection finished",
		"records", len(result.Records),
		"failedCategories", len(result.Failed()),
		"duration", formatElapsed(elapsed),
	)

	// ── 4. Write outputs ────────────────────────────────────────────
	if err := output.WriteFiles(cfg.Output.Dir, cfg.Output.JSONFile, cfg.Output.CSVFile, result.Records); err != nil {
		return err
	}
	slog.Info("data written",
		"json", filepath.Join(cfg.Output.Dir, cfg.Output.JSONFile),
		"csv", filepath.Join(cfg.Output.Dir, cfg.Output.CSVFile),
	)

	printSummary(cmd.OutOrStdout(), result, elapsed)
	return nil
}

// applyFlags overrides env-derived values with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Strategy = flagStrategy
	}
	if flags.Changed("categories") {
		cfg.Categories = flagCategories
	}
	if flags.Changed("out") {
		cfg.Output.Dir = flagOut
	}
}

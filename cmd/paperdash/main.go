// Package main provides the paperdash CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/paperdash/internal/config"
	"github.com/matsen/paperdash/internal/loader"
	"github.com/matsen/paperdash/internal/logger"
	"github.com/matsen/paperdash/internal/snapshot"
	"github.com/matsen/paperdash/internal/wordcloud"
	"github.com/matsen/paperdash/internal/wordfreq"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	dataPath    string
	logLevel    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paperdash",
	Short: "Explore CORD-19 paper metadata",
	Long: `paperdash summarizes a CORD-19 style metadata table (metadata.csv.gz).

Views:
  - papers published per month
  - top journals and the long-tail distribution of all journals
  - most frequent title words, as a ranked list or a word cloud

Run 'paperdash serve' for the interactive dashboard or use the view
commands directly. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/paperdash/config.yml)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Metadata file, overrides data_path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Version = Version
}

// mustLoadConfig loads .env, the config file and flag overrides, exits on error.
func mustLoadConfig() *config.Config {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if dataPath != "" {
		cfg.DataPath = config.ExpandPath(dataPath)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// newLogger builds the stderr logger for cfg.
func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(logger.Config{
		Writer: os.Stderr,
		Format: cfg.LogFormat,
		Level:  logger.ParseLevel(cfg.LogLevel),
	})
}

// openSnapshots opens the snapshot store, or returns nil when disabled or
// unavailable. The caller closes a non-nil store.
func openSnapshots(cfg *config.Config, log *slog.Logger) *snapshot.DB {
	if !cfg.SnapshotsEnabled() {
		return nil
	}
	path := cfg.ResolvedSnapshotPath()
	if path == "" {
		return nil
	}
	db, err := snapshot.Open(path)
	if err != nil {
		log.Warn("snapshot store unavailable, parsing source directly", "path", path, "error", err)
		return nil
	}
	return db
}

// newCache creates the table cache, backed by db when it is non-nil.
func newCache(db *snapshot.DB, log *slog.Logger) *loader.Cache {
	opts := loader.CacheOptions{Logger: log}
	if db != nil {
		opts.Store = db
	}
	return loader.NewCache(opts)
}

// mustLoadTable loads the configured metadata file, exits on error.
func mustLoadTable(ctx context.Context, cfg *config.Config, log *slog.Logger) *loader.Table {
	db := openSnapshots(cfg, log)
	if db != nil {
		defer db.Close()
	}

	table, err := newCache(db, log).Get(ctx, cfg.DataPath)
	if err != nil {
		exitWithError(dataExitCode(err), "loading %s: %v", cfg.DataPath, err)
	}
	return table
}

// dataExitCode maps load failures to exit codes.
func dataExitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return ExitError
	default:
		return ExitDataError
	}
}

// stopwords returns the default stopwords plus the configured extras.
func stopwords(cfg *config.Config) wordfreq.Stopwords {
	return wordfreq.DefaultStopwords().Union(wordfreq.NewStopwords(cfg.ExtraStopwords...))
}

// cloudOptions returns the word cloud configuration for a seed.
func cloudOptions(seed uint64) wordcloud.Options {
	opts := wordcloud.DefaultOptions()
	opts.Seed = seed
	return opts
}

// mustParseMode parses a mode flag, exits on error.
func mustParseMode(s string) wordfreq.Mode {
	mode, err := wordfreq.ParseMode(s)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return mode
}

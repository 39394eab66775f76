package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/paperdash/internal/server"
	"github.com/matsen/paperdash/internal/watch"
)

var (
	serveAddr    string
	serveNoWatch bool
	serveOrigins []string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8501)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not reload when the metadata file changes")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allow-origin", nil, "Allowed CORS origins for /api (default: any)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard",
	Long: `Serve the dashboard page and its JSON API.

The metadata file is loaded once before listening and kept in memory. When
watching is enabled the table is reloaded after the file changes.

Endpoints:
  /                        dashboard page (?mode=bar|cloud&n=5..50)
  /wordcloud.png           word cloud image
  /api/timeline            papers per month
  /api/journals            top 10 journals
  /api/journals/longtail   papers per journal, by rank
  /api/journals/similar    near-duplicate journal names (?threshold=)
  /api/words               top words or word cloud layout
  /health                  load status

Examples:
  paperdash serve
  paperdash serve --data metadata.csv.gz --addr :8080`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	log := newLogger(cfg)
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := openSnapshots(cfg, log)
	if db != nil {
		defer db.Close()
	}
	cache := newCache(db, log)

	// Load before listening so the first request does not pay for parsing.
	if _, err := cache.Get(ctx, cfg.DataPath); err != nil {
		exitWithError(dataExitCode(err), "loading %s: %v", cfg.DataPath, err)
	}

	srv := server.New(server.Options{
		DataPath:       cfg.DataPath,
		Mode:           mustParseMode(cfg.Mode),
		TopN:           cfg.TopN,
		Stopwords:      stopwords(cfg),
		Cloud:          cloudOptions(0),
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
		AllowedOrigins: serveOrigins,
	}, cache, log)
	defer srv.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Addr)
	})

	if cfg.Watch && !serveNoWatch {
		w, err := watch.New(cfg.DataPath, cache, watch.Options{
			Logger: log,
			OnChange: func(path string) {
				if _, err := cache.Get(gctx, path); err != nil {
					log.Warn("reload failed", "path", path, "error", err)
				}
			},
		})
		if err != nil {
			log.Warn("file watching disabled", "error", err)
		} else {
			g.Go(func() error {
				return w.Run(gctx)
			})
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}

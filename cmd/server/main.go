package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docview/internal/api"
	"github.com/dgallion1/docview/internal/cache"
	"github.com/dgallion1/docview/internal/config"
	"github.com/dgallion1/docview/internal/render"
	"github.com/dgallion1/docview/internal/scanner"
)

var (
	flagPort     string
	flagCacheTTL time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "docview [directory]",
	Short: "Browse a directory of markdown and markmap documents",
	Long: `Serves a sidebar-navigated web view of every markdown file under a
directory. Documents render as prose, as an interactive mind map, or as
a mix of both when they embed fenced markmap blocks.

Environment variables:
  PORT                 HTTP port (default: 3000)
  DOCS_DIR             Document root (default: ./docs)
  DOCS_EXTENSION       Listed file suffix (default: .md)
  LISTING_TTL          Listing cache lifetime (default: 60s)
  DOCUMENT_CACHE_SIZE  Parsed documents kept in memory (default: 256)
  LOG_FORMAT           json or text (default: json)
  LOG_LEVEL            debug, info, warn or error (default: info)`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&flagPort, "port", "p", "", "HTTP port (overrides PORT)")
	rootCmd.Flags().DurationVar(&flagCacheTTL, "cache-ttl", 0, "listing cache lifetime (overrides LISTING_TTL)")
}

func main() {
	// Load .env if present; a missing file is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if len(args) == 1 {
		cfg.DocsDir = args[0]
	}
	if flagPort != "" {
		cfg.Port = flagPort
	}
	if flagCacheTTL > 0 {
		cfg.ListingTTL = flagCacheTTL
	}
	if err := cfg.ResolveDocsDir(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(os.Stdout, cfg)

	sc := scanner.New(cfg.Extension, log)
	listing := cache.NewListing(func() []string { return sc.Scan(cfg.DocsDir) }, cfg.ListingTTL, log)
	docs, err := cache.NewDocumentCache(cfg.DocsDir, cfg.DocumentCacheSize)
	if err != nil {
		return err
	}
	pages, err := render.New()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	// Warm the listing so the first request does not pay for the walk.
	listing.Get()

	srv := api.NewServer(listing, docs, pages, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docview", "port", cfg.Port, "docs_dir", cfg.DocsDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

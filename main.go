package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Harikaran1729/portfolio/internal/content"
	"github.com/Harikaran1729/portfolio/internal/preview"
	"github.com/Harikaran1729/portfolio/internal/store"
	"github.com/Harikaran1729/portfolio/internal/telemetry"
)

// Set by the release build with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd(os.Getenv).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "portfolio",
		Short:        "Personal portfolio site with a live typing hero",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	load := func() (Config, error) {
		cfg, err := loadConfig(getenv)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if debug {
			cfg.Debug = true
		}
		return cfg, nil
	}

	cmd.AddCommand(serveCmd(load), typeCmd(load), versionCmd())
	return cmd
}

func serveCmd(load func() (Config, error)) *cobra.Command {
	var (
		addr        string
		contentPath string
		dbPath      string
		watch       bool
	)

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("content") {
				cfg.ContentPath = contentPath
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("watch") {
				cfg.WatchContent = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	c.Flags().StringVar(&addr, "addr", ":8080", "listen address (overrides PORT)")
	c.Flags().StringVar(&contentPath, "content", "", "portfolio YAML file (default: built-in content)")
	c.Flags().StringVar(&dbPath, "db", "portfolio.db", "SQLite database path")
	c.Flags().BoolVar(&watch, "watch", false, "reload the content file when it changes")
	return c
}

func serve(ctx context.Context, cfg Config) error {
	log := newLogger(os.Stderr, cfg.Debug)
	slog.SetDefault(log)

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(sctx); err != nil {
			log.Warn("telemetry.shutdown_failed", "error", err)
		}
	}()

	src, err := content.NewSource(cfg.ContentPath)
	if err != nil {
		return err
	}
	if cfg.WatchContent {
		go func() {
			if err := src.Watch(ctx, log); err != nil {
				log.Warn("content.watch_stopped", "error", err)
			}
		}()
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	s := newServer(cfg, serverDeps{
		Content:   src,
		Store:     db,
		Notifier:  newNotifier(cfg),
		Telemetry: tel,
		Logger:    log,
	})
	s.cleanupOldVisitors(ctx)

	r, err := s.routes()
	if err != nil {
		return fmt.Errorf("routes: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.closeStreams)

	errc := make(chan error, 1)
	go func() {
		log.Info("server.start", "addr", cfg.Addr, "mode", gin.Mode(), "contact", cfg.ContactMode, "tracing", tel.Enabled())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("server.shutdown")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Warn("server.shutdown_failed", "error", err)
		}
	}

	s.wait()
	return nil
}

func typeCmd(load func() (Config, error)) *cobra.Command {
	var contentPath string

	c := &cobra.Command{
		Use:   "type",
		Short: "Preview the hero typing animation in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("content") {
				cfg.ContentPath = contentPath
			}

			p, err := content.Load(cfg.ContentPath)
			if err != nil {
				return err
			}
			typing := cfg.Typing
			typing.Phrases = p.Hero.Phrases

			return preview.Run(cmd.Context(), p.Hero.Greeting, typing, preview.Options{
				Input:  cmd.InOrStdin(),
				Output: cmd.OutOrStdout(),
			})
		},
	}

	c.Flags().StringVar(&contentPath, "content", "", "portfolio YAML file (default: built-in content)")
	return c
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "portfolio", version)
		},
	}
}

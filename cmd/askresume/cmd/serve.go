package cmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/askresume/askresume/internal/contact"
	"github.com/askresume/askresume/internal/document"
	"github.com/askresume/askresume/internal/logging"
	"github.com/askresume/askresume/internal/server"
	"github.com/askresume/askresume/internal/watcher"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the askresume HTTP server.

Exposes POST /chat, POST /contact, GET /healthz and, when enabled,
the /debug introspection routes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	if cfg.Logging.FilePath != "" {
		logCfg.FilePath = cfg.Logging.FilePath
	}
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := buildStack(cfg)
	if err != nil {
		return err
	}

	contacts, err := contact.NewStore(cfg.Contact.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = contacts.Close() }()

	// Warm the caches so the first query does not pay for extraction
	// and index fitting. A missing résumé is logged, not fatal.
	if _, err := st.index.Ensure(); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			slog.Warn("resume not found at startup", slog.String("path", cfg.Document.Path))
		} else {
			slog.Error("warming index failed", slog.String("error", err.Error()))
		}
	}

	debounce, err := time.ParseDuration(cfg.Document.WatchDebounce)
	if err != nil || debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	w := watcher.New(cfg.Document.Path, debounce, func() {
		if _, err := st.docs.Load(true); err != nil {
			slog.Warn("warm reload failed", slog.String("error", err.Error()))
			return
		}
		if _, err := st.index.Ensure(); err != nil {
			slog.Warn("warm index refresh failed", slog.String("error", err.Error()))
		}
	})
	go w.Run(ctx)

	srv := server.New(cfg, st.engine, st.docs, contacts)
	return srv.ListenAndServe(ctx)
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/database/mariadb"
	"github.com/kozaktomas/photo-sheet/internal/database/memory"
	"github.com/kozaktomas/photo-sheet/internal/database/postgres"
	"github.com/kozaktomas/photo-sheet/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Photo Sheet web server.
The server hosts the browser editor and its JSON API. Saved sheets go to
the history backend selected by HISTORY_BACKEND (postgres, mariadb or memory).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (default WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().String("session-secret", "", "Secret for signing owner cookies (default WEB_SESSION_SECRET)")
}

// initHistory connects the configured history backend and registers it.
// The returned closer releases the database pool; it is nil for the
// in-memory backend.
func initHistory(ctx context.Context, cfg *config.Config, logger *log.Logger) (io.Closer, error) {
	var (
		closer  io.Closer
		applied []string
		err     error
	)
	switch cfg.History.Backend {
	case config.BackendPostgres:
		logger.Debug("connecting to PostgreSQL")
		var pool *postgres.Pool
		if pool, applied, err = postgres.Initialize(ctx, &cfg.Database); pool != nil {
			closer = pool
		}
	case config.BackendMariaDB:
		logger.Debug("connecting to MariaDB")
		var pool *mariadb.Pool
		if pool, applied, err = mariadb.Initialize(ctx, &cfg.MariaDB); pool != nil {
			closer = pool
		}
	case config.BackendMemory:
		memory.Register(memory.NewStore())
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s history: %w", cfg.History.Backend, err)
	}
	for _, name := range applied {
		logger.Info("applied migration", "name", name)
	}
	logger.Info("history backend ready", "backend", cfg.History.Backend)
	return closer, nil
}

// closeHistory releases the pool returned by initHistory.
func closeHistory(closer io.Closer, logger *log.Logger) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Error("closing history backend", "err", err)
	}
}

// applyServeFlags lets explicit flags override the environment.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	if secret := mustGetString(cmd, "session-secret"); secret != "" {
		cfg.Web.SessionSecret = secret
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	cfg := config.Load()
	applyServeFlags(cmd, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	closer, err := initHistory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeHistory(closer, logger)

	if cfg.Web.SessionSecret == "" {
		logger.Warn("WEB_SESSION_SECRET is not set, owner cookies use a development secret")
	}

	server, err := web.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Closed once in-flight requests have drained, so the pool outlives them.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-sigChan
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during shutdown", "err", err)
		}
	}()

	logger.Infof("Photo Sheet on http://%s:%d (Ctrl+C to stop)", cfg.Web.Host, cfg.Web.Port)
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	<-stopped
	return nil
}

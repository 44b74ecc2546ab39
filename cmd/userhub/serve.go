package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/hongminglow/userhub/internal/config"
	"github.com/hongminglow/userhub/internal/logging"
	"github.com/hongminglow/userhub/internal/server"
	"github.com/hongminglow/userhub/internal/storage"
	"github.com/hongminglow/userhub/internal/storage/memory"
	"github.com/hongminglow/userhub/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

// closableStore is a UserStore that owns resources released on shutdown.
type closableStore interface {
	storage.UserStore
	Close()
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Start the HTTP API. Pending migrations are applied when the postgres store is used.`,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	logger := logging.Setup(cfg.ProjectName, cfg.Version, cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logging.LogError(logger, "init store", err, "database_type", cfg.DatabaseType)
		return err
	}
	defer store.Close()

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr(), "database_type", cfg.DatabaseType)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.LogError(logger, "http server error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(logger, "graceful shutdown error", err)
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (closableStore, error) {
	switch cfg.DatabaseType {
	case config.DatabaseMemory:
		return memory.NewUserStore(), nil
	case config.DatabasePostgres:
		store, err := postgres.NewUserStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "open user store").Wrap(err)
		}
		return store, nil
	default:
		return nil, oops.Code("CONFIG_INVALID").Errorf("unsupported database type %q", cfg.DatabaseType)
	}
}

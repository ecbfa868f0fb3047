// Package bootstrap wires configuration to a logger and a storage backend. Both
// the HTTP server and the ledgerctl command line start through it.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/SscSPs/bizledger/internal/adapters/database/memory"
	"github.com/SscSPs/bizledger/internal/adapters/database/pgsql"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/SscSPs/bizledger/pkg/database"
)

// LogLevel maps the configured level name to a slog level. Unknown names log at info.
func LogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger and installs it as the slog default.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: LogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	return logger
}

// OpenRepositories returns the repositories for the configured backend and a
// function that releases them. For postgres, pending migrations run first
// when RunMigrations is set.
func OpenRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.UsesMemoryStorage() {
		logger.Warn("Using in-memory storage; the ledger is lost on exit")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}

	if cfg.DatabaseURL == "" {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("PGSQL_URL is required for the %s backend", config.StoragePostgres)
	}

	if cfg.RunMigrations {
		logger.Info("Running database migrations...", slog.String("path", cfg.MigrationsPath))
		changed, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, database.MigrateUp)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		if changed {
			logger.Info("Database migrations applied successfully.")
		} else {
			logger.Info("No new migrations to apply.")
		}
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	logger.Info("Database connection pool established.")
	return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil
}

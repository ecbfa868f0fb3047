package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, LogLevel("warning"))
	assert.Equal(t, slog.LevelError, LogLevel("error"))
	assert.Equal(t, slog.LevelInfo, LogLevel("chatty"))
}

func TestNewLogger_HonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&config.Config{LogLevel: "warn"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestOpenRepositories_Memory(t *testing.T) {
	var buf bytes.Buffer
	repos, closeFn, err := OpenRepositories(context.Background(),
		&config.Config{StorageBackend: config.StorageMemory}, slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)
	defer closeFn()

	assert.NotNil(t, repos.TxManager)
	assert.NotNil(t, repos.LedgerRepo)
	assert.Contains(t, buf.String(), "in-memory")
}

func TestOpenRepositories_PostgresNeedsURL(t *testing.T) {
	_, _, err := OpenRepositories(context.Background(),
		&config.Config{StorageBackend: config.StoragePostgres}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	assert.ErrorContains(t, err, "PGSQL_URL")
}

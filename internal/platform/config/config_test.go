package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := load(viper.New())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.False(t, cfg.UsesMemoryStorage())
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, 4, cfg.ReconcileWorkers)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
	assert.Equal(t, "bizledger", cfg.JWTIssuer)
	assert.Equal(t, "300-M", cfg.RateLimit)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", " Memory ")
	t.Setenv("RECONCILE_WORKERS", "8")
	t.Setenv("JWT_EXPIRY_DURATION", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,,")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := load(viper.New())

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.UsesMemoryStorage())
	assert.Equal(t, 8, cfg.ReconcileWorkers)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiryDuration)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "mongo")
	t.Setenv("RECONCILE_WORKERS", "0")
	t.Setenv("JWT_EXPIRY_DURATION", "soon")

	cfg := load(viper.New())

	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.Equal(t, 1, cfg.ReconcileWorkers)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
}

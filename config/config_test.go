package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PG_URL", "postgres://localhost/portfolio")
	t.Setenv("POLYGON_API_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("MIGRATE_ON_START", "")
	t.Setenv("SNAPSHOT_DIR", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.PolygonAPIKey)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PG_URL", "postgres://db/portfolio")
	t.Setenv("POLYGON_API_KEY", "key")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("SNAPSHOT_DIR", "/var/snapshots")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "key", cfg.PolygonAPIKey)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, "/var/snapshots", cfg.SnapshotDir)
}

func TestFromEnv_Errors(t *testing.T) {
	t.Setenv("PG_URL", "")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "PG_URL")

	t.Setenv("PG_URL", "postgres://db/portfolio")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "LOG_LEVEL")

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MIGRATE_ON_START", "sometimes")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "MIGRATE_ON_START")
}

func TestLoad_ReadsDotEnvWithoutOverridingShell(t *testing.T) {
	dir := t.TempDir()
	env := "PG_URL=postgres://from-dotenv/portfolio\nPORT=7000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Chdir(dir)

	t.Setenv("PG_URL", "")
	require.NoError(t, os.Unsetenv("PG_URL"))
	t.Setenv("PORT", "9100")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MIGRATE_ON_START", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-dotenv/portfolio", cfg.PGURL)
	assert.Equal(t, "9100", cfg.Port)
}

func TestLoad_WithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PG_URL", "postgres://shell/portfolio")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MIGRATE_ON_START", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://shell/portfolio", cfg.PGURL)
}

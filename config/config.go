package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const defaultCORSOrigins = "http://localhost:3000,http://127.0.0.1:3000"

// Config holds application configuration loaded from environment variables
type Config struct {
	PGURL          string
	PolygonAPIKey  string
	Port           string
	LogLevel       log.Level
	CORSOrigins    []string
	MigrateOnStart bool
	SnapshotDir    string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first; variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only
func FromEnv() (*Config, error) {
	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		return nil, fmt.Errorf("PG_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	level := log.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
		level = parsed
	}

	migrateOnStart := true
	if raw := os.Getenv("MIGRATE_ON_START"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MIGRATE_ON_START %q: %w", raw, err)
		}
		migrateOnStart = v
	}

	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		origins = defaultCORSOrigins
	}

	return &Config{
		PGURL:          pgURL,
		PolygonAPIKey:  os.Getenv("POLYGON_API_KEY"),
		Port:           port,
		LogLevel:       level,
		CORSOrigins:    splitList(origins),
		MigrateOnStart: migrateOnStart,
		SnapshotDir:    os.Getenv("SNAPSHOT_DIR"),
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Package dbtest starts a throwaway Postgres for integration tests.
package dbtest

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/epeers/portfolio-tracker/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var tables = []string{
	"ranking_rows", "ranking_files", "bars_daily", "performance_metrics_daily",
	"performance_daily", "positions_raw", "prices", "holdings", "accounts", "securities",
}

// Run is called from TestMain. Unless -short is set it connects to PG_URL, or
// starts a Postgres container when PG_URL is empty, migrates the database and
// publishes the pool through *pool. When neither is available *pool stays nil
// and tests using RequirePool are skipped; the package's other tests still run.
func Run(m *testing.M, pool **pgxpool.Pool) int {
	flag.Parse()
	if testing.Short() {
		return m.Run()
	}

	ctx := context.Background()
	connStr := os.Getenv("PG_URL")
	if connStr == "" {
		container, url, err := start(ctx)
		if err != nil {
			log.Warnf("integration database unavailable, skipping DB tests: %v", err)
			return m.Run()
		}
		defer func() {
			if err := testcontainers.TerminateContainer(container); err != nil {
				log.Warnf("failed to terminate postgres container: %v", err)
			}
		}()
		connStr = url
	}

	if err := database.Migrate(connStr); err != nil {
		log.Errorf("failed to migrate test database: %v", err)
		return 1
	}

	db, err := database.New(ctx, connStr)
	if err != nil {
		log.Errorf("failed to connect to test database: %v", err)
		return 1
	}
	defer db.Close()

	*pool = db.Pool
	return m.Run()
}

// start runs a Postgres container. testcontainers panics when no container
// provider is found, so that panic is turned into an error.
func start(ctx context.Context) (container *tcpostgres.PostgresContainer, connStr string, err error) {
	defer panicToError(&err)

	container, err = tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("portfolio_test"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, "", fmt.Errorf("failed to get connection string: %w", err)
	}
	return container, connStr, nil
}

// RequirePool skips the test when no database is available and otherwise
// empties every table so each test starts from a clean schema.
func RequirePool(t *testing.T, pool *pgxpool.Pool) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if pool == nil {
		t.Skip("Skipping integration test: no database available")
	}
	Truncate(t, pool)
	return pool
}

// Truncate removes all rows and resets identity sequences.
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	for _, table := range tables {
		if _, err := pool.Exec(context.Background(), "TRUNCATE TABLE "+table+" RESTART IDENTITY CASCADE"); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}

// panicToError must be deferred directly; it stores a recovered panic in *err.
func panicToError(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("no container provider: %v", r)
	}
}

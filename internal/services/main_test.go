package services

import (
	"os"
	"testing"

	"github.com/epeers/portfolio-tracker/internal/database/dbtest"
	"github.com/jackc/pgx/v5/pgxpool"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(dbtest.Run(m, &testPool))
}

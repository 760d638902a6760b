package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SecurityRepository owns the securities reference table
type SecurityRepository struct {
	pool *pgxpool.Pool
}

// NewSecurityRepository creates a new SecurityRepository
func NewSecurityRepository(pool *pgxpool.Pool) *SecurityRepository {
	return &SecurityRepository{pool: pool}
}

// NormalizeTicker is the canonical spelling of a ticker: trimmed and upper-case.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// GetOrCreate returns the id of the security with the given ticker, inserting it
// on first sighting. Returns (id, wasCreated, error).
func (r *SecurityRepository) GetOrCreate(ctx context.Context, tx pgx.Tx, ticker string) (int64, bool, error) {
	ticker = NormalizeTicker(ticker)
	if ticker == "" {
		return 0, false, fmt.Errorf("empty ticker")
	}

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO securities (ticker) VALUES ($1)
		ON CONFLICT (ticker) DO NOTHING
		RETURNING id
	`, ticker).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to insert security %s: %w", ticker, err)
	}

	if err := tx.QueryRow(ctx, `SELECT id FROM securities WHERE ticker = $1`, ticker).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("failed to look up security %s: %w", ticker, err)
	}
	return id, false, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository owns the accounts reference table
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetOrCreate returns the id of the account with the given display name.
// Returns (id, wasCreated, error).
func (r *AccountRepository) GetOrCreate(ctx context.Context, tx pgx.Tx, name string) (int64, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, fmt.Errorf("empty account name")
	}

	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO accounts (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id
	`, name).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to insert account %q: %w", name, err)
	}

	if err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE name = $1`, name).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("failed to look up account %q: %w", name, err)
	}
	return id, false, nil
}

// List returns all account names ordered alphabetically
func (r *AccountRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

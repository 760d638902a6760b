package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoPerformanceData = errors.New("no performance data")

// PerformanceRepository handles performance_daily
type PerformanceRepository struct {
	pool *pgxpool.Pool
}

// NewPerformanceRepository creates a new PerformanceRepository
func NewPerformanceRepository(pool *pgxpool.Pool) *PerformanceRepository {
	return &PerformanceRepository{pool: pool}
}

const upsertPerformanceSQL = `
	INSERT INTO performance_daily (day, portfolio_value, portfolio_ret, voo_ret, qqq_ret, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (day) DO UPDATE SET
		portfolio_value = EXCLUDED.portfolio_value,
		portfolio_ret   = EXCLUDED.portfolio_ret,
		voo_ret         = EXCLUDED.voo_ret,
		qqq_ret         = EXCLUDED.qqq_ret,
		updated_at      = NOW()
`

var performanceUpserter = NewBatchUpserter(
	upsertPerformanceSQL,
	func(r ingest.PerformanceRow) []any {
		return []any{r.Day, r.PortfolioValue, r.PortfolioRet, r.VOORet, r.QQQRet}
	},
	func(r ingest.PerformanceRow) string { return r.Day.Format(ingest.DateLayout) },
	func(r ingest.PerformanceRow) string {
		return fmt.Sprintf("%s value=%s ret=%s voo=%s qqq=%s",
			r.Day.Format(ingest.DateLayout), fmtOpt(r.PortfolioValue), fmtOpt(r.PortfolioRet), fmtOpt(r.VOORet), fmtOpt(r.QQQRet))
	},
)

// Upsert writes all rows in one transaction. Rows rejected by the database are
// reported in the result; the rest are committed.
func (r *PerformanceRepository) Upsert(ctx context.Context, rows []ingest.PerformanceRow) (*UpsertResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := performanceUpserter.Run(ctx, tx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert performance rows: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit performance rows: %w", err)
	}
	return result, nil
}

// PerformanceRecord is a stored performance_daily row
type PerformanceRecord struct {
	Day            time.Time
	PortfolioValue *float64
	PortfolioRet   *float64
	VOORet         *float64
	QQQRet         *float64
}

func scanPerformance(rows pgx.Rows) ([]PerformanceRecord, error) {
	defer rows.Close()
	var out []PerformanceRecord
	for rows.Next() {
		var p PerformanceRecord
		if err := rows.Scan(&p.Day, &p.PortfolioValue, &p.PortfolioRet, &p.VOORet, &p.QQQRet); err != nil {
			return nil, fmt.Errorf("failed to scan performance row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Series returns the newest days rows in ascending day order
func (r *PerformanceRepository) Series(ctx context.Context, days int) ([]PerformanceRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day, portfolio_value, portfolio_ret, voo_ret, qqq_ret
		FROM (
			SELECT day, portfolio_value, portfolio_ret, voo_ret, qqq_ret
			FROM performance_daily
			ORDER BY day DESC
			LIMIT $1
		) recent
		ORDER BY day ASC
	`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance series: %w", err)
	}
	return scanPerformance(rows)
}

// All returns every stored day in ascending order
func (r *PerformanceRepository) All(ctx context.Context) ([]PerformanceRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day, portfolio_value, portfolio_ret, voo_ret, qqq_ret
		FROM performance_daily
		ORDER BY day ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance: %w", err)
	}
	return scanPerformance(rows)
}

// Until returns every day on or before end in ascending order
func (r *PerformanceRepository) Until(ctx context.Context, end time.Time) ([]PerformanceRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day, portfolio_value, portfolio_ret, voo_ret, qqq_ret
		FROM performance_daily
		WHERE day <= $1
		ORDER BY day ASC
	`, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance: %w", err)
	}
	return scanPerformance(rows)
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%g", *v)
}

func fmtOptInt(v *int64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *v)
}

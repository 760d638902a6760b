package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MetricsRow is one day of rolling betas. Nil means the window was not
// computable for that day.
type MetricsRow struct {
	Day       time.Time
	Beta20VOO *float64
	Beta30VOO *float64
	Beta60VOO *float64
	Beta20QQQ *float64
	Beta30QQQ *float64
	Beta60QQQ *float64
}

// MetricsRepository handles performance_metrics_daily
type MetricsRepository struct {
	pool *pgxpool.Pool
}

// NewMetricsRepository creates a new MetricsRepository
func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{pool: pool}
}

const upsertMetricsSQL = `
	INSERT INTO performance_metrics_daily (
		day, beta_20_voo, beta_30_voo, beta_60_voo, beta_20_qqq, beta_30_qqq, beta_60_qqq, computed_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	ON CONFLICT (day) DO UPDATE SET
		beta_20_voo = EXCLUDED.beta_20_voo,
		beta_30_voo = EXCLUDED.beta_30_voo,
		beta_60_voo = EXCLUDED.beta_60_voo,
		beta_20_qqq = EXCLUDED.beta_20_qqq,
		beta_30_qqq = EXCLUDED.beta_30_qqq,
		beta_60_qqq = EXCLUDED.beta_60_qqq,
		computed_at = NOW()
`

var metricsUpserter = NewBatchUpserter(
	upsertMetricsSQL,
	func(m MetricsRow) []any {
		return []any{m.Day, m.Beta20VOO, m.Beta30VOO, m.Beta60VOO, m.Beta20QQQ, m.Beta30QQQ, m.Beta60QQQ}
	},
	func(m MetricsRow) string { return m.Day.Format("2006-01-02") },
	func(m MetricsRow) string {
		return fmt.Sprintf("%s voo=%s/%s/%s qqq=%s/%s/%s", m.Day.Format("2006-01-02"),
			fmtOpt(m.Beta20VOO), fmtOpt(m.Beta30VOO), fmtOpt(m.Beta60VOO),
			fmtOpt(m.Beta20QQQ), fmtOpt(m.Beta30QQQ), fmtOpt(m.Beta60QQQ))
	},
)

// LatestDayMissingMetrics returns the newest performance day that has no metrics
// row, or nil when every day has one. Days that already hold metrics are never
// returned, so an incremental run does not recompute history.
func (r *MetricsRepository) LatestDayMissingMetrics(ctx context.Context) (*time.Time, error) {
	var day time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT p.day
		FROM performance_daily p
		LEFT JOIN performance_metrics_daily m ON m.day = p.day
		WHERE m.day IS NULL
		ORDER BY p.day DESC
		LIMIT 1
	`).Scan(&day)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find day missing metrics: %w", err)
	}
	return &day, nil
}

// Upsert writes metrics rows in one transaction through the batch engine
func (r *MetricsRepository) Upsert(ctx context.Context, rows []MetricsRow) (*UpsertResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := metricsUpserter.Run(ctx, tx, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert metrics: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit metrics: %w", err)
	}
	return result, nil
}

// List returns the newest days metrics rows in ascending order
func (r *MetricsRepository) List(ctx context.Context, days int) ([]MetricsRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day, beta_20_voo, beta_30_voo, beta_60_voo, beta_20_qqq, beta_30_qqq, beta_60_qqq
		FROM (
			SELECT * FROM performance_metrics_daily ORDER BY day DESC LIMIT $1
		) recent
		ORDER BY day ASC
	`, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var out []MetricsRow
	for rows.Next() {
		var m MetricsRow
		if err := rows.Scan(&m.Day, &m.Beta20VOO, &m.Beta30VOO, &m.Beta60VOO, &m.Beta20QQQ, &m.Beta30QQQ, &m.Beta60QQQ); err != nil {
			return nil, fmt.Errorf("failed to scan metrics row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BarRow is one daily OHLCV bar keyed by (date, ticker)
type BarRow struct {
	Date   time.Time
	Ticker string
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *int64
	VWAP   *float64
	Trades *int64
}

// BarsRepository handles bars_daily
type BarsRepository struct {
	pool *pgxpool.Pool
}

// NewBarsRepository creates a new BarsRepository
func NewBarsRepository(pool *pgxpool.Pool) *BarsRepository {
	return &BarsRepository{pool: pool}
}

const upsertBarSQL = `
	INSERT INTO bars_daily (date, ticker, open, high, low, close, volume, vwap, trades)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (date, ticker) DO UPDATE SET
		open   = EXCLUDED.open,
		high   = EXCLUDED.high,
		low    = EXCLUDED.low,
		close  = EXCLUDED.close,
		volume = EXCLUDED.volume,
		vwap   = EXCLUDED.vwap,
		trades = EXCLUDED.trades
`

var barsUpserter = NewBatchUpserter(
	upsertBarSQL,
	func(b BarRow) []any {
		return []any{b.Date, b.Ticker, b.Open, b.High, b.Low, b.Close, b.Volume, b.VWAP, b.Trades}
	},
	func(b BarRow) string { return b.Ticker },
	BarSummary,
)

// BarSummary renders a bar for bad-row logging
func BarSummary(b BarRow) string {
	return fmt.Sprintf("%s %s o=%s h=%s l=%s c=%s vol=%s vwap=%s trades=%s",
		b.Date.Format("2006-01-02"), b.Ticker,
		fmtOpt(b.Open), fmtOpt(b.High), fmtOpt(b.Low), fmtOpt(b.Close),
		fmtOptInt(b.Volume), fmtOpt(b.VWAP), fmtOptInt(b.Trades))
}

// UpsertDay writes one day's bars in its own transaction. A failed commit loses
// only that day.
func (r *BarsRepository) UpsertDay(ctx context.Context, bars []BarRow) (*UpsertResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := barsUpserter.Run(ctx, tx, bars)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert bars: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit bars: %w", err)
	}
	return result, nil
}

// List returns stored bars for ticker within [start, end] ascending
func (r *BarsRepository) List(ctx context.Context, ticker string, start, end time.Time) ([]BarRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, ticker, open, high, low, close, volume, vwap, trades
		FROM bars_daily
		WHERE ticker = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var out []BarRow
	for rows.Next() {
		var b BarRow
		if err := rows.Scan(&b.Date, &b.Ticker, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.VWAP, &b.Trades); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

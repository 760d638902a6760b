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

var ErrSnapshotNotFound = errors.New("no snapshot found")

// SnapshotRepository persists positions uploads (raw rows, holdings, prices)
// and serves the point-in-time readers built on them.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// BeginTx starts a new transaction
func (r *SnapshotRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// UpsertRawPosition stores the full-fidelity row keyed by (as_of, symbol); the
// last write wins on every column.
func (r *SnapshotRepository) UpsertRawPosition(ctx context.Context, tx pgx.Tx, asOf time.Time, sourceFilename string, row ingest.PositionRow, class ingest.Classification) error {
	query := `
		INSERT INTO positions_raw (
			as_of, symbol, source_filename, account_number, account_name, description,
			security_type, classification, quantity, last_price, last_price_change,
			current_value, todays_gain_dollar, todays_gain_pct, total_gain_dollar,
			total_gain_pct, percent_of_account, cost_basis_total, average_cost, raw_row, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW())
		ON CONFLICT (as_of, symbol) DO UPDATE SET
			source_filename    = EXCLUDED.source_filename,
			account_number     = EXCLUDED.account_number,
			account_name       = EXCLUDED.account_name,
			description        = EXCLUDED.description,
			security_type      = EXCLUDED.security_type,
			classification     = EXCLUDED.classification,
			quantity           = EXCLUDED.quantity,
			last_price         = EXCLUDED.last_price,
			last_price_change  = EXCLUDED.last_price_change,
			current_value      = EXCLUDED.current_value,
			todays_gain_dollar = EXCLUDED.todays_gain_dollar,
			todays_gain_pct    = EXCLUDED.todays_gain_pct,
			total_gain_dollar  = EXCLUDED.total_gain_dollar,
			total_gain_pct     = EXCLUDED.total_gain_pct,
			percent_of_account = EXCLUDED.percent_of_account,
			cost_basis_total   = EXCLUDED.cost_basis_total,
			average_cost       = EXCLUDED.average_cost,
			raw_row            = EXCLUDED.raw_row,
			updated_at         = NOW()
	`
	_, err := tx.Exec(ctx, query,
		asOf, row.Symbol, sourceFilename, row.AccountNumber, row.AccountName, row.Description,
		row.SecurityType, string(class), row.Quantity, row.LastPrice, row.LastPriceChange,
		row.CurrentValue, row.TodaysGainDollar, row.TodaysGainPct, row.TotalGainDollar,
		row.TotalGainPct, row.PercentOfAccount, row.CostBasisTotal, row.AverageCost, row.Raw,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert raw position %q: %w", row.Symbol, err)
	}
	return nil
}

// InsertHolding appends a holding stamped with the snapshot date
func (r *SnapshotRepository) InsertHolding(ctx context.Context, tx pgx.Tx, securityID int64, accountID *int64, quantity float64, costBasis *float64, asOf time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO holdings (security_id, account_id, quantity, cost_basis, as_of)
		VALUES ($1, $2, $3, $4, $5)
	`, securityID, accountID, quantity, costBasis, asOf)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

// InsertPrice appends a closing price stamped with the snapshot date
func (r *SnapshotRepository) InsertPrice(ctx context.Context, tx pgx.Tx, securityID int64, date time.Time, close float64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO prices (security_id, date, close) VALUES ($1, $2, $3)
	`, securityID, date, close)
	if err != nil {
		return fmt.Errorf("failed to insert price: %w", err)
	}
	return nil
}

// DeleteSnapshot removes the holdings and prices of one as-of date so it can be
// rewritten. Raw rows are left alone; they are upserted.
func (r *SnapshotRepository) DeleteSnapshot(ctx context.Context, tx pgx.Tx, asOf time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM holdings WHERE as_of = $1`, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to delete holdings: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM prices WHERE date = $1`, asOf); err != nil {
		return 0, fmt.Errorf("failed to delete prices: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RawSnapshotTotals aggregates the raw rows of the latest upload
type RawSnapshotTotals struct {
	AsOf              time.Time
	TotalValue        float64
	Cash              float64
	PendingAmount     float64
	PendingSells      float64
	PendingBuys       float64
	NonCashValue      float64
	NonCashCost       float64
	NonCashUnrealized float64
	UnrealizedTotal   float64
	TodaysTotal       float64
}

// LatestRawTotals sums the latest raw snapshot by classification.
// Cash and pending rows are identified by their stored classification.
func (r *SnapshotRepository) LatestRawTotals(ctx context.Context) (*RawSnapshotTotals, error) {
	query := `
		WITH latest AS (
			SELECT MAX(as_of) AS as_of FROM positions_raw
		),
		pos AS (
			SELECT p.* FROM positions_raw p JOIN latest l ON p.as_of = l.as_of
		)
		SELECT
			(SELECT as_of FROM latest),
			COALESCE(SUM(current_value), 0),
			COALESCE(SUM(current_value) FILTER (WHERE classification = 'CASH_EQUIVALENT'), 0),
			COALESCE(SUM(current_value) FILTER (WHERE classification = 'PENDING'), 0),
			COALESCE(SUM(current_value) FILTER (WHERE classification = 'PENDING' AND current_value > 0), 0),
			COALESCE(SUM(current_value) FILTER (WHERE classification = 'PENDING' AND current_value < 0), 0),
			COALESCE(SUM(current_value) FILTER (WHERE classification NOT IN ('CASH_EQUIVALENT', 'PENDING')), 0),
			COALESCE(SUM(cost_basis_total) FILTER (WHERE classification NOT IN ('CASH_EQUIVALENT', 'PENDING')), 0),
			COALESCE(SUM(total_gain_dollar) FILTER (WHERE classification NOT IN ('CASH_EQUIVALENT', 'PENDING')), 0),
			COALESCE(SUM(total_gain_dollar), 0),
			COALESCE(SUM(todays_gain_dollar), 0)
		FROM pos
	`
	var t RawSnapshotTotals
	var asOf *time.Time
	err := r.pool.QueryRow(ctx, query).Scan(
		&asOf, &t.TotalValue, &t.Cash, &t.PendingAmount, &t.PendingSells, &t.PendingBuys,
		&t.NonCashValue, &t.NonCashCost, &t.NonCashUnrealized, &t.UnrealizedTotal, &t.TodaysTotal,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate raw snapshot: %w", err)
	}
	if asOf == nil {
		return nil, ErrSnapshotNotFound
	}
	t.AsOf = *asOf
	return &t, nil
}

// LatestHoldingsAsOf returns the newest as-of date present in holdings
func (r *SnapshotRepository) LatestHoldingsAsOf(ctx context.Context) (time.Time, error) {
	var asOf *time.Time
	if err := r.pool.QueryRow(ctx, `SELECT MAX(as_of) FROM holdings`).Scan(&asOf); err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest snapshot date: %w", err)
	}
	if asOf == nil {
		return time.Time{}, ErrSnapshotNotFound
	}
	return *asOf, nil
}

// ListSnapshotDates returns distinct holdings as-of dates, newest first
func (r *SnapshotRepository) ListSnapshotDates(ctx context.Context, limit int) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT as_of FROM holdings ORDER BY as_of DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}

// SnapshotHolding is one security of a holdings snapshot with the prices needed
// to value it. CostValue is quantity times per-share cost, summed over accounts.
type SnapshotHolding struct {
	Ticker    string
	Quantity  float64
	CostValue *float64
	Close     *float64
	PrevClose *float64
}

// snapshotHoldingsCTE deduplicates holdings within one as-of ($1): the highest id
// per (security, account) wins, so an upload replayed for the same date is
// counted once.
const snapshotHoldingsCTE = `
	WITH snap AS (
		SELECT DISTINCT ON (h.security_id, h.account_id)
			h.security_id, h.quantity, h.cost_basis
		FROM holdings h
		WHERE h.as_of = $1
		ORDER BY h.security_id, h.account_id, h.id DESC
	),
	agg AS (
		SELECT security_id,
			SUM(quantity) AS qty,
			SUM(quantity * cost_basis) AS cost_value
		FROM snap
		GROUP BY security_id
	)
`

// SnapshotHoldings returns the holdings of one as-of date. Close is the newest
// price dated on or before the as-of (highest id breaks ties); PrevClose is the
// newest price dated strictly before it.
func (r *SnapshotRepository) SnapshotHoldings(ctx context.Context, asOf time.Time) ([]SnapshotHolding, error) {
	query := snapshotHoldingsCTE + `,
	px AS (
		SELECT DISTINCT ON (p.security_id) p.security_id, p.close
		FROM prices p
		WHERE p.date <= $1
		ORDER BY p.security_id, p.date DESC, p.id DESC
	),
	prev AS (
		SELECT DISTINCT ON (p.security_id) p.security_id, p.close
		FROM prices p
		WHERE p.date < $1
		ORDER BY p.security_id, p.date DESC, p.id DESC
	)
	SELECT s.ticker, a.qty, a.cost_value, px.close, prev.close
	FROM agg a
	JOIN securities s ON s.id = a.security_id
	LEFT JOIN px ON px.security_id = a.security_id
	LEFT JOIN prev ON prev.security_id = a.security_id
	ORDER BY s.ticker
	`
	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot holdings: %w", err)
	}
	defer rows.Close()

	var holdings []SnapshotHolding
	for rows.Next() {
		var h SnapshotHolding
		if err := rows.Scan(&h.Ticker, &h.Quantity, &h.CostValue, &h.Close, &h.PrevClose); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// QuantitiesByTicker returns the deduplicated quantity per ticker for one as-of date
func (r *SnapshotRepository) QuantitiesByTicker(ctx context.Context, asOf time.Time) (map[string]float64, error) {
	query := snapshotHoldingsCTE + `
	SELECT s.ticker, a.qty
	FROM agg a
	JOIN securities s ON s.id = a.security_id
	`
	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query quantities: %w", err)
	}
	defer rows.Close()

	quantities := make(map[string]float64)
	for rows.Next() {
		var ticker string
		var qty float64
		if err := rows.Scan(&ticker, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan quantity: %w", err)
		}
		quantities[ticker] = qty
	}
	return quantities, rows.Err()
}

// RawPosition is a stored raw row, used to inspect what an upload captured
type RawPosition struct {
	Symbol         string
	Classification string
	Quantity       *float64
	CurrentValue   *float64
	SourceFilename *string
	Raw            map[string]string
}

// RawPositions returns the raw rows of one as-of date ordered by symbol
func (r *SnapshotRepository) RawPositions(ctx context.Context, asOf time.Time) ([]RawPosition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT symbol, classification, quantity, current_value, source_filename, raw_row
		FROM positions_raw
		WHERE as_of = $1
		ORDER BY symbol
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw positions: %w", err)
	}
	defer rows.Close()

	var out []RawPosition
	for rows.Next() {
		var p RawPosition
		if err := rows.Scan(&p.Symbol, &p.Classification, &p.Quantity, &p.CurrentValue, &p.SourceFilename, &p.Raw); err != nil {
			return nil, fmt.Errorf("failed to scan raw position: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

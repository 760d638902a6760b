package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RankingRepository handles ranking_files and ranking_rows
type RankingRepository struct {
	pool *pgxpool.Pool
}

// NewRankingRepository creates a new RankingRepository
func NewRankingRepository(pool *pgxpool.Pool) *RankingRepository {
	return &RankingRepository{pool: pool}
}

// BeginTx starts a new transaction
func (r *RankingRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// RankingRecord is a parsed row bound to the file it came from
type RankingRecord struct {
	FileID     uuid.UUID
	ReportType models.RankingReportType
	AsOf       time.Time
	ingest.RankingRow
}

const upsertRankingRowSQL = `
	INSERT INTO ranking_rows (
		file_id, report_type, as_of_date, rank, symbol, company_name, price, change_pct,
		quant_rating, sa_analyst_rating, wall_st_rating, sector, industry, market_cap,
		yield_fwd, raw_json
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (report_type, as_of_date, symbol) DO UPDATE SET
		file_id           = EXCLUDED.file_id,
		rank              = EXCLUDED.rank,
		company_name      = EXCLUDED.company_name,
		price             = EXCLUDED.price,
		change_pct        = EXCLUDED.change_pct,
		quant_rating      = EXCLUDED.quant_rating,
		sa_analyst_rating = EXCLUDED.sa_analyst_rating,
		wall_st_rating    = EXCLUDED.wall_st_rating,
		sector            = EXCLUDED.sector,
		industry          = EXCLUDED.industry,
		market_cap        = EXCLUDED.market_cap,
		yield_fwd         = EXCLUDED.yield_fwd,
		raw_json          = EXCLUDED.raw_json
`

var rankingUpserter = NewBatchUpserter(
	upsertRankingRowSQL,
	func(r RankingRecord) []any {
		return []any{
			r.FileID, string(r.ReportType), r.AsOf, r.Rank, r.Symbol, nullIfEmpty(r.CompanyName),
			r.Price, r.ChangePct, r.QuantRating, r.SAAnalystRating, r.WallStreetRating,
			nullIfEmpty(r.Sector), nullIfEmpty(r.Industry), r.MarketCap, r.YieldFwd, r.Raw,
		}
	},
	func(r RankingRecord) string { return r.Symbol },
	func(r RankingRecord) string {
		return fmt.Sprintf("%s %s rank=%s price=%s quant=%s",
			r.AsOf.Format("2006-01-02"), r.Symbol, fmtOptInt(r.Rank), fmtOpt(r.Price), fmtOpt(r.QuantRating))
	},
)

// CreateFile records an upload. created is false when a file with the same
// content hash already exists; the existing record is returned instead.
func (r *RankingRepository) CreateFile(ctx context.Context, tx pgx.Tx, reportType models.RankingReportType, asOf time.Time, filename, sha string) (*models.RankingFile, bool, error) {
	id := uuid.New()
	var receivedAt time.Time
	err := tx.QueryRow(ctx, `
		INSERT INTO ranking_files (id, report_type, as_of_date, original_filename, sha256)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sha256) DO NOTHING
		RETURNING received_at
	`, id, string(reportType), asOf, filename, sha).Scan(&receivedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := r.fileBySHA(ctx, tx, sha)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create ranking file: %w", err)
	}
	return &models.RankingFile{
		ID:               id.String(),
		ReportType:       reportType,
		AsOfDate:         asOf.Format("2006-01-02"),
		OriginalFilename: filename,
		SHA256:           sha,
		ReceivedAt:       receivedAt,
	}, true, nil
}

func (r *RankingRepository) fileBySHA(ctx context.Context, tx pgx.Tx, sha string) (*models.RankingFile, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, report_type, as_of_date, original_filename, sha256, row_count, received_at
		FROM ranking_files WHERE sha256 = $1
	`, sha)
	f, err := scanRankingFile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ranking file: %w", err)
	}
	return f, nil
}

func scanRankingFile(row pgx.Row) (*models.RankingFile, error) {
	var f models.RankingFile
	var id uuid.UUID
	var reportType string
	var asOf time.Time
	if err := row.Scan(&id, &reportType, &asOf, &f.OriginalFilename, &f.SHA256, &f.RowCount, &f.ReceivedAt); err != nil {
		return nil, err
	}
	f.ID = id.String()
	f.ReportType = models.RankingReportType(reportType)
	f.AsOfDate = asOf.Format("2006-01-02")
	return &f, nil
}

// UpsertRows writes ranking rows through the batch engine inside tx
func (r *RankingRepository) UpsertRows(ctx context.Context, tx pgx.Tx, rows []RankingRecord) (*UpsertResult, error) {
	return rankingUpserter.Run(ctx, tx, rows)
}

// SetRowCount stores how many rows of a file were written
func (r *RankingRepository) SetRowCount(ctx context.Context, tx pgx.Tx, fileID uuid.UUID, count int) error {
	if _, err := tx.Exec(ctx, `UPDATE ranking_files SET row_count = $2 WHERE id = $1`, fileID, count); err != nil {
		return fmt.Errorf("failed to update row count: %w", err)
	}
	return nil
}

// ListFiles returns uploads newest first, optionally filtered by report type
func (r *RankingRepository) ListFiles(ctx context.Context, reportType models.RankingReportType, limit int) ([]models.RankingFile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, report_type, as_of_date, original_filename, sha256, row_count, received_at
		FROM ranking_files
		WHERE $1 = '' OR report_type = $1
		ORDER BY as_of_date DESC, received_at DESC
		LIMIT $2
	`, string(reportType), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking files: %w", err)
	}
	defer rows.Close()

	var files []models.RankingFile
	for rows.Next() {
		f, err := scanRankingFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking file: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// LatestForSymbols returns the newest ranking row of each requested symbol
func (r *RankingRepository) LatestForSymbols(ctx context.Context, reportType models.RankingReportType, symbols []string) ([]models.RankingEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (symbol)
			symbol, as_of_date, report_type, rank, company_name, price, change_pct,
			quant_rating, sa_analyst_rating, wall_st_rating, sector, industry, market_cap, yield_fwd
		FROM ranking_rows
		WHERE ($1 = '' OR report_type = $1) AND symbol = ANY($2)
		ORDER BY symbol, as_of_date DESC, id DESC
	`, string(reportType), symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest rankings: %w", err)
	}
	defer rows.Close()

	var entries []models.RankingEntry
	for rows.Next() {
		var e models.RankingEntry
		var asOf time.Time
		var rt string
		if err := rows.Scan(&e.Symbol, &asOf, &rt, &e.Rank, &e.CompanyName, &e.Price, &e.ChangePct,
			&e.QuantRating, &e.SAAnalystRating, &e.WallStreetRating, &e.Sector, &e.Industry, &e.MarketCap, &e.YieldFwd); err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		e.AsOfDate = asOf.Format("2006-01-02")
		e.ReportType = models.RankingReportType(rt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

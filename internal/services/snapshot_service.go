package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/repository"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// SnapshotService ingests brokerage positions exports
type SnapshotService struct {
	snapshotRepo *repository.SnapshotRepository
	securityRepo *repository.SecurityRepository
	accountRepo  *repository.AccountRepository
	archive      *TransparencyService
	now          func() time.Time
}

// NewSnapshotService creates a new SnapshotService. Accepted uploads are copied
// into archive when it has a directory configured.
func NewSnapshotService(snapshotRepo *repository.SnapshotRepository, securityRepo *repository.SecurityRepository, accountRepo *repository.AccountRepository, archive *TransparencyService) *SnapshotService {
	return &SnapshotService{
		snapshotRepo: snapshotRepo,
		securityRepo: securityRepo,
		accountRepo:  accountRepo,
		archive:      archive,
		now:          time.Now,
	}
}

// UploadPositionsRequest carries a positions export and how to date it
type UploadPositionsRequest struct {
	Filename string
	Body     io.Reader
	AsOf     string // caller-supplied date, empty when not given
	Replace  bool
}

// UploadPositions parses a positions CSV and writes one snapshot in a single
// transaction. Every row lands in positions_raw; only HOLDING rows become
// holdings and prices. Structural problems (missing columns, unreadable file)
// fail before anything is written. Each row is written under its own savepoint,
// so a row the database rejects is counted as write_failed and the rest commit.
func (s *SnapshotService) UploadPositions(ctx context.Context, req UploadPositionsRequest) (*models.PositionsUploadResult, error) {
	defer TrackTime("UploadPositions", time.Now())

	asOf, source := ingest.ResolveAsOf(req.AsOf, req.Filename, s.now())
	if source == ingest.AsOfToday {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnAsOfDefaulted,
			Message: fmt.Sprintf("no date supplied or found in %q; using %s", req.Filename, asOf.Format(ingest.DateLayout)),
		})
	}

	content, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	file, err := ingest.ParsePositionsCSV(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	tx, err := s.snapshotRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result := &models.PositionsUploadResult{
		Status:         "ok",
		SnapshotAsOf:   asOf.Format(ingest.DateLayout),
		SourceFilename: req.Filename,
	}

	if req.Replace {
		replaced, err := s.snapshotRepo.DeleteSnapshot(ctx, tx, asOf)
		if err != nil {
			return nil, err
		}
		result.ReplacedHoldings = replaced
	}

	counts := ingest.ClassCounts{}
	for _, row := range file.Rows {
		class := ingest.Classify(row)

		var written rowWrites
		err := repository.WithSavepoint(ctx, tx, func(sp pgx.Tx) error {
			var err error
			written, err = s.writeRow(ctx, sp, asOf, req.Filename, row, class)
			return err
		})
		if err != nil {
			if repository.IsFatal(ctx, err) {
				return nil, err
			}
			counts.Add(ingest.ClassWriteFailed)
			AddWarning(ctx, models.Warning{
				Code:    models.WarnRowsRejected,
				Message: fmt.Sprintf("row %d (%s) was rejected by the database: %v", row.Line, row.Symbol, err),
			})
			continue
		}

		counts.Add(class)
		result.RawRows++
		if written.security {
			result.CreatedSecurities++
		}
		if written.account {
			result.CreatedAccounts++
		}
		if written.holding {
			result.InsertedHoldings++
		}
		if written.price {
			result.InsertedPrices++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	if s.archive != nil {
		if _, err := s.archive.Archive(result.SnapshotAsOf, req.Filename, content); err != nil {
			log.Warnf("positions snapshot %s committed but not archived: %v", result.SnapshotAsOf, err)
		}
	}

	result.SkippedRows = counts.Skipped()
	result.SkipReasons = counts.SkipReasons()
	log.Infof("positions snapshot %s from %q: %d raw rows, %d holdings, %d skipped",
		result.SnapshotAsOf, req.Filename, result.RawRows, result.InsertedHoldings, result.SkippedRows)
	return result, nil
}

// rowWrites records what one row added, applied to the result only once the
// row's savepoint is released.
type rowWrites struct {
	security, account, holding, price bool
}

// writeRow stores the raw row and, for HOLDING rows, the holding and its price.
func (s *SnapshotService) writeRow(ctx context.Context, tx pgx.Tx, asOf time.Time, filename string, row ingest.PositionRow, class ingest.Classification) (rowWrites, error) {
	var w rowWrites
	if err := s.snapshotRepo.UpsertRawPosition(ctx, tx, asOf, filename, row, class); err != nil {
		return w, err
	}
	if class != ingest.ClassHolding {
		return w, nil
	}

	securityID, created, err := s.securityRepo.GetOrCreate(ctx, tx, row.Symbol)
	if err != nil {
		return w, err
	}
	w.security = created

	var accountID *int64
	if row.AccountName != "" {
		id, created, err := s.accountRepo.GetOrCreate(ctx, tx, row.AccountName)
		if err != nil {
			return w, err
		}
		w.account = created
		accountID = &id
	}

	if err := s.snapshotRepo.InsertHolding(ctx, tx, securityID, accountID, *row.Quantity, row.AverageCost, asOf); err != nil {
		return w, err
	}
	w.holding = true

	if row.LastPrice != nil {
		if err := s.snapshotRepo.InsertPrice(ctx, tx, securityID, asOf, *row.LastPrice); err != nil {
			return w, err
		}
		w.price = true
	}
	return w, nil
}

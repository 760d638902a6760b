package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/repository"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const defaultRankingFilesLimit = 200

// RankingService ingests vendor ranking spreadsheets
type RankingService struct {
	rankingRepo *repository.RankingRepository
}

// NewRankingService creates a new RankingService
func NewRankingService(rankingRepo *repository.RankingRepository) *RankingService {
	return &RankingService{rankingRepo: rankingRepo}
}

// RankingAsOf resolves the report date: an explicit value, else a YYYY-MM-DD
// token in the filename. There is no fallback to today.
func RankingAsOf(explicit, filename string) (time.Time, error) {
	if strings.TrimSpace(explicit) != "" {
		t, err := time.Parse(ingest.DateLayout, strings.TrimSpace(explicit))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: as_of %q is not YYYY-MM-DD", ErrInvalidDate, explicit)
		}
		return t, nil
	}
	if t, ok := ingest.ParseISODateInName(filename); ok {
		return t, nil
	}
	return time.Time{}, ErrMissingAsOf
}

// Upload stores one ranking export. A file whose content was already uploaded
// is not parsed again; the existing record is reported with status "duplicate".
func (s *RankingService) Upload(ctx context.Context, reportType models.RankingReportType, filename, asOfParam string, body io.Reader) (*models.RankingUploadResult, error) {
	defer TrackTime("RankingUpload", time.Now())

	if !reportType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReport, reportType)
	}
	if strings.ToLower(filepath.Ext(filename)) != ".xlsx" {
		return nil, fmt.Errorf("%w: %q (expected .xlsx)", ingest.ErrUnsupportedFile, filename)
	}
	asOf, err := RankingAsOf(asOfParam, filename)
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(content) == 0 {
		return nil, ingest.ErrEmptyFile
	}
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	sheet, err := ingest.ParseRankingXLSX(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	tx, err := s.rankingRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	file, created, err := s.rankingRepo.CreateFile(ctx, tx, reportType, asOf, filename, digest)
	if err != nil {
		return nil, err
	}
	result := &models.RankingUploadResult{
		FileID:     file.ID,
		ReportType: file.ReportType,
		AsOfDate:   file.AsOfDate,
		SHA256:     digest,
	}
	if !created {
		result.Status = "duplicate"
		result.RowsUpserted = file.RowCount
		log.Infof("ranking upload %q is a duplicate of file %s", filename, file.ID)
		return result, nil
	}

	fileID := uuid.MustParse(file.ID)
	records := make([]repository.RankingRecord, len(sheet.Rows))
	for i, row := range sheet.Rows {
		records[i] = repository.RankingRecord{FileID: fileID, ReportType: reportType, AsOf: asOf, RankingRow: row}
	}
	upserted, err := s.rankingRepo.UpsertRows(ctx, tx, records)
	if err != nil {
		return nil, err
	}
	if err := s.rankingRepo.SetRowCount(ctx, tx, fileID, upserted.OK); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit ranking upload: %w", err)
	}

	if len(upserted.Bad) > 0 {
		AddWarning(ctx, models.Warning{
			Code:    models.WarnRowsRejected,
			Message: fmt.Sprintf("%d ranking rows were rejected by the database", len(upserted.Bad)),
		})
	}
	result.Status = "ok"
	result.RowsUpserted = upserted.OK
	result.RowsRejected = len(upserted.Bad)
	log.Infof("ranking upload %q (%s %s): %d rows from sheet %q", filename, reportType, result.AsOfDate, upserted.OK, sheet.SheetName)
	return result, nil
}

// Files lists uploads newest first; an empty reportType lists every type
func (s *RankingService) Files(ctx context.Context, reportType models.RankingReportType) ([]models.RankingFile, error) {
	if reportType != "" && !reportType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReport, reportType)
	}
	files, err := s.rankingRepo.ListFiles(ctx, reportType, defaultRankingFilesLimit)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.RankingFile{}
	}
	return files, nil
}

// Latest returns the newest ranking of each symbol in a comma-separated list
func (s *RankingService) Latest(ctx context.Context, reportType models.RankingReportType, symbolList string) ([]models.RankingEntry, error) {
	if reportType != "" && !reportType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReport, reportType)
	}
	var symbols []string
	for _, sym := range strings.Split(symbolList, ",") {
		if sym = repository.NormalizeTicker(sym); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: symbols is required", ErrInvalidParameter)
	}
	entries, err := s.rankingRepo.LatestForSymbols(ctx, reportType, symbols)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.RankingEntry{}
	}
	return entries, nil
}

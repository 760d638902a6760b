package services

import (
	"context"
	"strings"
	"testing"

	"github.com/epeers/portfolio-tracker/internal/ingest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankingAsOf(t *testing.T) {
	got, err := RankingAsOf("2024-05-01", "Quant 2024-04-30.xlsx")
	require.NoError(t, err)
	assert.Equal(t, utcDate("2024-05-01"), got)

	got, err = RankingAsOf("", "Quant 2024-04-30.xlsx")
	require.NoError(t, err)
	assert.Equal(t, utcDate("2024-04-30"), got)

	_, err = RankingAsOf("05/01/2024", "Quant 2024-04-30.xlsx")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = RankingAsOf("", "Quant Ratings.xlsx")
	assert.ErrorIs(t, err, ErrMissingAsOf)
}

func TestRankingUpload_RejectsBeforeTouchingStorage(t *testing.T) {
	svc := NewRankingService(nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, models.RankingReportType("momentum"), "a 2024-01-02.xlsx", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidReport)

	_, err = svc.Upload(ctx, models.ReportQuant, "a 2024-01-02.csv", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ingest.ErrUnsupportedFile)

	_, err = svc.Upload(ctx, models.ReportQuant, "a.xlsx", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrMissingAsOf)

	_, err = svc.Upload(ctx, models.ReportQuant, "a 2024-01-02.xlsx", "", strings.NewReader(""))
	assert.ErrorIs(t, err, ingest.ErrEmptyFile)
}

func TestRankingLatest_RequiresSymbols(t *testing.T) {
	svc := NewRankingService(nil)
	_, err := svc.Latest(context.Background(), "", " , ")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

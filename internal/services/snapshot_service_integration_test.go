package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/epeers/portfolio-tracker/internal/database/dbtest"
	"github.com/epeers/portfolio-tracker/internal/models"
	"github.com/epeers/portfolio-tracker/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marchFirstExport = `Account Number,Account Name,Symbol,Description,Quantity,Last Price,Current Value,Total Gain/Loss Dollar,Cost Basis Total,Average Cost Basis,Type
Z1,ROTH IRA,SPAXX**,HELD IN MONEY MARKET,,,$1000.00,,,,Cash
Z1,ROTH IRA,AAPL,APPLE INC,10,$110.00,"$1,100.00",+$100.00,"$1,000.00",$100.00,Cash
Z1,ROTH IRA,Pending Activity,,,,-$200.00,,,,
`

const marchFourthExport = `Account Number,Account Name,Symbol,Description,Quantity,Last Price,Current Value,Total Gain/Loss Dollar,Cost Basis Total,Average Cost Basis,Type
Z1,ROTH IRA,AAPL,APPLE INC,12,$120.00,"$1,440.00",+$240.00,"$1,200.00",$100.00,Cash
Z1,ROTH IRA,MSFT,MICROSOFT CORP,2,$400.00,$800.00,$0.00,$800.00,$400.00,Cash
`

type snapshotFixture struct {
	pool      *pgxpool.Pool
	snapshots *SnapshotService
	portfolio *PortfolioService
	history   *HistoryService
	archive   *TransparencyService
}

func newSnapshotFixture(t *testing.T) *snapshotFixture {
	pool := dbtest.RequirePool(t, testPool)
	snapshotRepo := repository.NewSnapshotRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	archive := NewTransparencyService(filepath.Join(t.TempDir(), "snapshots"))
	return &snapshotFixture{
		pool:      pool,
		snapshots: NewSnapshotService(snapshotRepo, repository.NewSecurityRepository(pool), accountRepo, archive),
		portfolio: NewPortfolioService(snapshotRepo, accountRepo),
		history:   NewHistoryService(snapshotRepo),
		archive:   archive,
	}
}

func (f *snapshotFixture) upload(t *testing.T, filename, body string, replace bool) *models.PositionsUploadResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := f.snapshots.UploadPositions(ctx, UploadPositionsRequest{
		Filename: filename,
		Body:     strings.NewReader(body),
		Replace:  replace,
	})
	require.NoError(t, err)
	return result
}

func TestUploadPositions_EndToEnd(t *testing.T) {
	f := newSnapshotFixture(t)
	ctx := context.Background()

	first := f.upload(t, "Portfolio_Positions_2024-03-01.csv", marchFirstExport, false)
	assert.Equal(t, "2024-03-01", first.SnapshotAsOf)
	assert.Equal(t, 3, first.RawRows)
	assert.Equal(t, 1, first.InsertedHoldings)
	assert.Equal(t, 1, first.InsertedPrices)
	assert.Equal(t, 1, first.CreatedSecurities)
	assert.Equal(t, 1, first.CreatedAccounts)
	assert.Equal(t, 2, first.SkippedRows)

	summary, err := f.portfolio.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", summary.AsOf)
	assert.InDelta(t, 1900.0, summary.MarketValue, 1e-9)
	assert.InDelta(t, 800.0, summary.Cash, 1e-9)
	assert.InDelta(t, 1000.0, summary.CostValue, 1e-9)
	assert.InDelta(t, 1100.0, summary.InvestedValue, 1e-9)
	assert.InDelta(t, 100.0, summary.PLAbs, 1e-9)
	require.NotNil(t, summary.PLPct)
	assert.InDelta(t, 0.1, *summary.PLPct, 1e-9)

	second := f.upload(t, "Portfolio_Positions_2024-03-04.csv", marchFourthExport, false)
	assert.Equal(t, 1, second.CreatedSecurities)
	assert.Equal(t, 0, second.CreatedAccounts)

	positions, err := f.portfolio.Positions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", positions.AsOf)
	require.Len(t, positions.Data, 2)
	aapl := positions.Data[0]
	assert.Equal(t, "AAPL", aapl.Ticker)
	assert.InDelta(t, 1440.0, aapl.MarketValue, 1e-9)
	require.NotNil(t, aapl.DayChange)
	assert.InDelta(t, 120.0, *aapl.DayChange, 1e-9)
	assert.Nil(t, positions.Data[1].DayChange, "MSFT has no earlier close")

	activity, err := f.history.Activity(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, activity.Changes, 2)
	assert.Equal(t, models.ActionBuy, activity.Changes[0].Action)
	assert.InDelta(t, 2.0, activity.Changes[0].DeltaQty, 1e-9)

	dates, err := f.history.Snapshots(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-04", "2024-03-01"}, dates)

	archived, err := f.archive.LatestSnapshot()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04_Portfolio_Positions_2024-03-04.csv", archived.Filename)

	accounts, err := f.portfolio.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ROTH IRA"}, accounts)
}

func TestUploadPositions_ReplaceRewritesSnapshot(t *testing.T) {
	f := newSnapshotFixture(t)
	ctx := context.Background()

	f.upload(t, "positions 2024-03-04.csv", marchFourthExport, false)
	f.upload(t, "positions 2024-03-04.csv", marchFourthExport, false)

	// appended twice, the newest row per security wins
	totals, err := f.portfolio.Totals(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2240.0, totals.TotalValue, 1e-9)

	replaced := f.upload(t, "positions 2024-03-04.csv", marchFourthExport, true)
	assert.Equal(t, int64(4), replaced.ReplacedHoldings)

	snap, err := f.history.PositionsAsOf(ctx, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, snap.Positions, 2)
	assert.InDelta(t, 2000.0, snap.Totals.CostValue, 1e-9)
}

func TestUploadPositions_MissingColumnsWritesNothing(t *testing.T) {
	f := newSnapshotFixture(t)
	ctx := context.Background()

	_, err := f.snapshots.UploadPositions(ctx, UploadPositionsRequest{
		Filename: "positions 2024-03-04.csv",
		Body:     strings.NewReader("Ticker,Value\nAAPL,1\n"),
	})
	require.Error(t, err)

	_, err = f.portfolio.Summary(ctx)
	assert.ErrorIs(t, err, repository.ErrSnapshotNotFound)
}

func TestUploadPositions_RejectedRowIsCountedNotFatal(t *testing.T) {
	f := newSnapshotFixture(t)
	ctx := context.Background()

	_, err := f.pool.Exec(ctx, `ALTER TABLE positions_raw ADD CONSTRAINT positions_raw_no_msft CHECK (symbol <> 'MSFT')`)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = f.pool.Exec(context.Background(), `ALTER TABLE positions_raw DROP CONSTRAINT IF EXISTS positions_raw_no_msft`)
	})

	result := f.upload(t, "positions 2024-03-04.csv", marchFourthExport, false)
	assert.Equal(t, 1, result.RawRows)
	assert.Equal(t, 1, result.InsertedHoldings)
	assert.Equal(t, 1, result.CreatedSecurities, "the rejected row's security is rolled back with it")
	assert.Equal(t, 1, result.SkippedRows)
	assert.Equal(t, map[string]int{"write_failed": 1}, result.SkipReasons)

	snap, err := f.history.PositionsAsOf(ctx, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, "AAPL", snap.Positions[0].Ticker)
}

func TestUploadPositions_NulBytesAreStripped(t *testing.T) {
	f := newSnapshotFixture(t)
	ctx := context.Background()

	body := strings.Replace(marchFourthExport, "APPLE INC", "APPLE\x00 INC", 1)
	result := f.upload(t, "positions 2024-03-04.csv", body, false)
	assert.Equal(t, 2, result.RawRows)
	assert.Equal(t, 2, result.InsertedHoldings)
	assert.Empty(t, result.SkipReasons)

	raw, err := repository.NewSnapshotRepository(f.pool).RawPositions(ctx, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, raw, 2)
}

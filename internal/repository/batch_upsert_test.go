package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// savepointTx stands in for a pgx transaction; nested Begin calls return the
// same value so the engine's savepoint bookkeeping can be observed.
type savepointTx struct {
	pgx.Tx
	begins    int
	commits   int
	rollbacks int
	failBegin bool
}

func (s *savepointTx) Begin(ctx context.Context) (pgx.Tx, error) {
	if s.failBegin {
		return nil, errors.New("current transaction is aborted")
	}
	s.begins++
	return s, nil
}

func (s *savepointTx) Commit(ctx context.Context) error {
	s.commits++
	return nil
}

func (s *savepointTx) Rollback(ctx context.Context) error {
	s.rollbacks++
	return nil
}

func rowsUpTo(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func rejecting(bad ...int) (ExecFunc[int], *[]int) {
	var calls []int
	return func(ctx context.Context, tx pgx.Tx, rows []int) error {
		calls = append(calls, len(rows))
		for _, r := range rows {
			if slices.Contains(bad, r) {
				return fmt.Errorf("violates check constraint for row %d", r)
			}
		}
		return nil
	}, &calls
}

func newTestUpserter(exec ExecFunc[int]) *BatchUpserter[int] {
	return &BatchUpserter[int]{
		Exec:      exec,
		Key:       func(r int) string { return fmt.Sprintf("row-%d", r) },
		Summary:   func(r int) string { return fmt.Sprintf("value=%d", r) },
		ChunkSize: DefaultChunkSize,
	}
}

func TestBatchUpserter_IsolatesSingleBadRow(t *testing.T) {
	exec, calls := rejecting(700)
	tx := &savepointTx{}

	result, err := newTestUpserter(exec).Run(context.Background(), tx, rowsUpTo(1200))
	require.NoError(t, err)

	assert.Equal(t, 1200, result.Total)
	assert.Equal(t, 1199, result.OK)
	require.Len(t, result.Bad, 1)
	assert.Equal(t, 700, result.Bad[0].Index)
	assert.Equal(t, "row-700", result.Bad[0].Key)
	assert.Equal(t, "value=700", result.Bad[0].Summary)
	assert.Contains(t, result.Bad[0].Err, "row 700")

	// bulk, three chunks, then 500 single-row retries for the failing chunk
	assert.Len(t, *calls, 1+3+500)
	assert.Equal(t, []int{1200, 500, 500, 200}, (*calls)[:4])
	assert.Equal(t, tx.begins, tx.commits+tx.rollbacks)
	assert.Equal(t, 1+1+1, tx.rollbacks)
}

func TestBatchUpserter_AllGoodIsOneStatement(t *testing.T) {
	exec, calls := rejecting()
	tx := &savepointTx{}

	result, err := newTestUpserter(exec).Run(context.Background(), tx, rowsUpTo(1500))
	require.NoError(t, err)
	assert.Equal(t, 1500, result.OK)
	assert.Empty(t, result.Bad)
	assert.Equal(t, []int{1500}, *calls)
}

func TestBatchUpserter_OkPlusBadEqualsTotal(t *testing.T) {
	bad := []int{0, 499, 500, 501, 999, 1000, 1203}
	exec, _ := rejecting(bad...)

	result, err := newTestUpserter(exec).Run(context.Background(), &savepointTx{}, rowsUpTo(1204))
	require.NoError(t, err)
	assert.Equal(t, 1204, result.OK+len(result.Bad))
	assert.Equal(t, 1204-len(bad), result.OK)

	var got []int
	for _, b := range result.Bad {
		got = append(got, b.Index)
	}
	assert.Equal(t, bad, got)
}

func TestBatchUpserter_Empty(t *testing.T) {
	exec, calls := rejecting()
	result, err := newTestUpserter(exec).Run(context.Background(), &savepointTx{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, *calls)
}

func TestBatchUpserter_BrokenTransactionIsFatal(t *testing.T) {
	exec, _ := rejecting()
	_, err := newTestUpserter(exec).Run(context.Background(), &savepointTx{failBegin: true}, rowsUpTo(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "savepoint")
}

func TestBatchUpserter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exec := func(ctx context.Context, tx pgx.Tx, rows []int) error {
		cancel()
		return ctx.Err()
	}
	_, err := newTestUpserter(exec).Run(ctx, &savepointTx{}, rowsUpTo(10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithSavepoint_RowErrorRollsBackAndIsNotFatal(t *testing.T) {
	ctx := context.Background()
	tx := &savepointTx{}
	rowErr := errors.New("invalid byte sequence for encoding \"UTF8\": 0x00")

	err := WithSavepoint(ctx, tx, func(pgx.Tx) error { return rowErr })
	assert.ErrorIs(t, err, rowErr)
	assert.False(t, IsFatal(ctx, err))
	assert.Equal(t, 1, tx.rollbacks)
	assert.Equal(t, 0, tx.commits)

	require.NoError(t, WithSavepoint(ctx, tx, func(pgx.Tx) error { return nil }))
	assert.Equal(t, 1, tx.commits)
}

func TestWithSavepoint_BrokenTransactionIsFatal(t *testing.T) {
	ctx := context.Background()
	called := false
	err := WithSavepoint(ctx, &savepointTx{failBegin: true}, func(pgx.Tx) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.True(t, IsFatal(ctx, err))
	assert.False(t, called)
}

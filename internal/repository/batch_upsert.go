package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// DefaultChunkSize is the second-tier batch size used after a full batch fails.
const DefaultChunkSize = 500

// ExecFunc writes rows inside the supplied transaction. It is called with the
// whole batch, then with chunks, then with single rows.
type ExecFunc[T any] func(ctx context.Context, tx pgx.Tx, rows []T) error

// BadRow is a row that failed even when written alone.
type BadRow struct {
	Index   int    `json:"index"`
	Key     string `json:"key"`
	Summary string `json:"summary"`
	Err     string `json:"error"`
}

// UpsertResult accounts for every input row: OK + len(Bad) == Total.
type UpsertResult struct {
	Total int      `json:"total"`
	OK    int      `json:"ok"`
	Bad   []BadRow `json:"bad,omitempty"`
}

// BatchUpserter writes rows with escalating granularity: full batch, then
// fixed-size chunks, then individual rows. Each attempt runs in its own
// savepoint so a failed statement does not abort the enclosing transaction.
type BatchUpserter[T any] struct {
	Exec      ExecFunc[T]
	Key       func(T) string
	Summary   func(T) string
	ChunkSize int
}

// NewBatchUpserter builds an engine around a single upsert statement. args maps
// a row onto the statement's placeholders.
func NewBatchUpserter[T any](statement string, args func(T) []any, key, summary func(T) string) *BatchUpserter[T] {
	return &BatchUpserter[T]{
		Exec:      StatementExec(statement, args),
		Key:       key,
		Summary:   summary,
		ChunkSize: DefaultChunkSize,
	}
}

// StatementExec queues one execution of statement per row and sends them as a
// single pgx batch.
func StatementExec[T any](statement string, args func(T) []any) ExecFunc[T] {
	return func(ctx context.Context, tx pgx.Tx, rows []T) error {
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(statement, args(row)...)
		}
		br := tx.SendBatch(ctx, batch)
		for range rows {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return err
			}
		}
		return br.Close()
	}
}

// Run writes rows inside tx. A returned error means the transaction itself is
// unusable; row-level failures are reported in the result instead.
func (b *BatchUpserter[T]) Run(ctx context.Context, tx pgx.Tx, rows []T) (*UpsertResult, error) {
	result := &UpsertResult{Total: len(rows)}
	if len(rows) == 0 {
		return result, nil
	}

	err := b.attempt(ctx, tx, rows)
	if err == nil {
		result.OK = len(rows)
		return result, nil
	}
	if IsFatal(ctx, err) {
		return nil, err
	}
	size := b.chunkSize()
	log.Warnf("bulk upsert of %d rows failed, retrying in chunks of %d: %v", len(rows), size, err)

	for start := 0; start < len(rows); start += size {
		chunk := rows[start:min(start+size, len(rows))]

		err := b.attempt(ctx, tx, chunk)
		if err == nil {
			result.OK += len(chunk)
			continue
		}
		if IsFatal(ctx, err) {
			return nil, err
		}

		for i, row := range chunk {
			err := b.attempt(ctx, tx, chunk[i:i+1])
			if err == nil {
				result.OK++
				continue
			}
			if IsFatal(ctx, err) {
				return nil, err
			}
			bad := BadRow{Index: start + i, Err: err.Error()}
			if b.Key != nil {
				bad.Key = b.Key(row)
			}
			if b.Summary != nil {
				bad.Summary = b.Summary(row)
			}
			log.Warnf("BAD ROW -> %s :: %v", bad.Summary, err)
			result.Bad = append(result.Bad, bad)
		}
	}
	return result, nil
}

// txFailure marks savepoint bookkeeping errors, after which nothing more can be
// written in the transaction.
type txFailure struct {
	err error
}

func (e *txFailure) Error() string { return e.err.Error() }
func (e *txFailure) Unwrap() error { return e.err }

// IsFatal reports whether err from WithSavepoint left nothing more to write:
// the context is done or the outer transaction can no longer be used.
func IsFatal(ctx context.Context, err error) bool {
	var tf *txFailure
	return ctx.Err() != nil || errors.As(err, &tf)
}

// WithSavepoint runs fn inside a savepoint of tx. When fn fails the savepoint
// is rolled back and fn's error returned, leaving tx usable for further writes.
func WithSavepoint(ctx context.Context, tx pgx.Tx, fn func(pgx.Tx) error) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return &txFailure{fmt.Errorf("failed to create savepoint: %w", err)}
	}
	if err := fn(sp); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return &txFailure{fmt.Errorf("failed to roll back savepoint after %v: %w", err, rbErr)}
		}
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return &txFailure{fmt.Errorf("failed to release savepoint: %w", err)}
	}
	return nil
}

// attempt runs exec inside a savepoint, rolling back to it on failure.
func (b *BatchUpserter[T]) attempt(ctx context.Context, tx pgx.Tx, rows []T) error {
	return WithSavepoint(ctx, tx, func(sp pgx.Tx) error {
		return b.Exec(ctx, sp, rows)
	})
}

func (b *BatchUpserter[T]) chunkSize() int {
	if b.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return b.ChunkSize
}

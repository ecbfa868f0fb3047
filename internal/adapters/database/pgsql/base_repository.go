// Package pgsql implements the repository ports on PostgreSQL through pgx.
package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/bizledger/internal/apperrors"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes the adapter translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgReadOnlyTransaction = "25006"
)

// Constraint names from the migrations that carry a ledger meaning.
var uniqueViolationKinds = map[string]error{
	"accounts_code_key":                apperrors.ErrDuplicateAccountCode,
	"ledger_entries_number_line_key":   apperrors.ErrJournalNumberCollision,
	"ledger_entries_reversal_of_key":   apperrors.ErrTransactionAlreadyReversed,
	"financial_periods_single_current": apperrors.ErrConflict,
	"source_documents_pkey":            apperrors.ErrDuplicate,
}

// querier is the subset of pgx shared by the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

type txKey struct{}

func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok && tx != nil
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// db returns the transaction carried by ctx, or the pool when there is none.
func (r *BaseRepository) db(ctx context.Context) querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return r.Pool
}

// TxManager runs units of work inside pgx transactions. The open transaction
// travels in the context, so every repository built on BaseRepository joins it.
type TxManager struct {
	BaseRepository
}

// NewTxManager creates a transaction manager over pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionManager = (*TxManager)(nil)

// WithinTransaction commits when fn returns nil. Nested calls open a savepoint
// so a failing inner unit rolls back alone.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if outer, ok := txFromContext(ctx); ok {
		return runInTx(ctx, outer.Begin, fn)
	}
	return runInTx(ctx, func(ctx context.Context) (pgx.Tx, error) {
		return m.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	}, fn)
}

// WithinReadSnapshot runs fn in a read-only REPEATABLE READ transaction so
// every query of a report sees the same committed state.
func (m *TxManager) WithinReadSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}
	return runInTx(ctx, func(ctx context.Context) (pgx.Tx, error) {
		return m.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	}, fn)
}

func runInTx(ctx context.Context, begin func(context.Context) (pgx.Tx, error), fn func(ctx context.Context) error) error {
	tx, err := begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() {
		// No-op once committed.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", mapError(err))
	}
	return nil
}

// mapError translates driver errors into apperrors kinds. Unknown errors pass
// through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if kind, ok := uniqueViolationKinds[pgErr.ConstraintName]; ok {
			return fmt.Errorf("%w: %s", kind, pgErr.Detail)
		}
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, pgErr.Detail)
	case pgForeignKeyViolation, pgCheckViolation:
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, pgErr.Message)
	case pgReadOnlyTransaction:
		return fmt.Errorf("%w: write attempted inside a read snapshot", apperrors.ErrInternal)
	}
	return err
}

// wrap maps err and adds an operation description, keeping the kind matchable.
func wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), mapError(err))
}

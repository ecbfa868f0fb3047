package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, transaction_number, line_no, transaction_date, account_id, debit, credit,
	description, reference_type, reference_id, reversal_of, created_at, created_by`

// PgxLedgerRepository reads and appends ledger entries. It never updates or
// deletes a posted line.
type PgxLedgerRepository struct {
	BaseRepository
}

// NewLedgerRepository creates a new repository for ledger entries.
func NewLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func scanEntry(row scanner) (domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(
		&e.EntryID,
		&e.TransactionNumber,
		&e.LineNo,
		&e.TransactionDate,
		&e.AccountID,
		&e.Debit,
		&e.Credit,
		&e.Description,
		&e.ReferenceType,
		&e.ReferenceID,
		&e.ReversalOf,
		&e.CreatedAt,
		&e.CreatedBy,
	)
	return e, err
}

func (r *PgxLedgerRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PgxLedgerRepository) FindEntriesByTransactionNumber(ctx context.Context, transactionNumber string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE transaction_number = $1 ORDER BY line_no;`
	entries, err := r.queryEntries(ctx, query, transactionNumber)
	if err != nil {
		return nil, wrap(err, "failed to query entries for %s", transactionNumber)
	}
	return entries, nil
}

func (r *PgxLedgerRepository) FindTransactionNumbersByReference(ctx context.Context, referenceType, referenceID string) ([]string, error) {
	query := `
		SELECT transaction_number
		FROM ledger_entries
		WHERE reference_type = $1 AND reference_id = $2
		GROUP BY transaction_number
		ORDER BY MIN(created_at), transaction_number;
	`
	rows, err := r.db(ctx).Query(ctx, query, referenceType, referenceID)
	if err != nil {
		return nil, wrap(err, "failed to query journals for %s %s", referenceType, referenceID)
	}
	numbers, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrap(err, "failed to read journals for %s %s", referenceType, referenceID)
	}
	return numbers, nil
}

func (r *PgxLedgerRepository) FindReversalOf(ctx context.Context, transactionNumber string) (string, error) {
	var number string
	err := r.db(ctx).QueryRow(ctx,
		`SELECT transaction_number FROM ledger_entries WHERE reversal_of = $1 LIMIT 1;`,
		transactionNumber,
	).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", wrap(err, "failed to look up reversal of %s", transactionNumber)
	}
	return number, nil
}

func (r *PgxLedgerRepository) ListEntries(ctx context.Context, filter domain.GeneralLedgerFilter) ([]domain.LedgerEntry, error) {
	var (
		conds []string
		args  []any
	)
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		conds = append(conds, fmt.Sprintf("account_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("transaction_date >= $%d::date", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("transaction_date <= $%d::date", len(args)))
	}

	query := `SELECT ` + entryColumns + ` FROM ledger_entries`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY transaction_date DESC, transaction_number, line_no;"

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, wrap(err, "failed to list ledger entries")
	}
	return entries, nil
}

func (r *PgxLedgerRepository) HasActivity(ctx context.Context, accountID string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE account_id = $1);`,
		accountID,
	).Scan(&exists)
	return exists, wrap(err, "failed to check activity for account %s", accountID)
}

func (r *PgxLedgerRepository) TransactionNumberExists(ctx context.Context, transactionNumber string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE transaction_number = $1);`,
		transactionNumber,
	).Scan(&exists)
	return exists, wrap(err, "failed to check journal number %s", transactionNumber)
}

// NextJournalSequence bumps the per-prefix counter. The row lock it takes is
// held until the surrounding transaction ends, serialising allocation.
func (r *PgxLedgerRepository) NextJournalSequence(ctx context.Context, prefix domain.JournalPrefix) (int64, error) {
	query := `
		INSERT INTO journal_sequences (prefix, last_value)
		VALUES ($1, 1)
		ON CONFLICT (prefix) DO UPDATE SET last_value = journal_sequences.last_value + 1
		RETURNING last_value;
	`
	var next int64
	if err := r.db(ctx).QueryRow(ctx, query, string(prefix)).Scan(&next); err != nil {
		return 0, wrap(err, "failed to allocate sequence for %s", prefix)
	}
	return next, nil
}

func (r *PgxLedgerRepository) InsertEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	query := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query,
			e.EntryID,
			e.TransactionNumber,
			e.LineNo,
			e.TransactionDate,
			e.AccountID,
			e.Debit,
			e.Credit,
			e.Description,
			e.ReferenceType,
			e.ReferenceID,
			e.ReversalOf,
			e.CreatedAt,
			e.CreatedBy,
		)
	}

	br := r.db(ctx).SendBatch(ctx, batch)
	var batchErr error
	for range entries {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = err
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = err
	}
	if batchErr != nil {
		kind := mapError(batchErr)
		if errors.Is(kind, apperrors.ErrTransactionAlreadyReversed) {
			return fmt.Errorf("%w: %s", apperrors.ErrTransactionAlreadyReversed, entries[0].ReversalOf)
		}
		return fmt.Errorf("failed to insert journal %s: %w", entries[0].TransactionNumber, kind)
	}
	return nil
}

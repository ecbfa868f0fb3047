package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, code, name, description, account_type, sub_type, parent_account_id,
	is_active, is_system, balance, last_transaction_date,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// NewAccountRepository creates a new repository for the chart of accounts.
func NewAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.AccountID,
		&a.Code,
		&a.Name,
		&a.Description,
		&a.AccountType,
		&a.SubType,
		&a.ParentAccountID,
		&a.IsActive,
		&a.IsSystem,
		&a.Balance,
		&a.LastTransactionDate,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	return a, err
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	a, err := scanAccount(r.db(ctx).QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return nil, wrap(err, "failed to find account by ID %s", accountID)
	}
	return &a, nil
}

func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	a, err := scanAccount(r.db(ctx).QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
		}
		return nil, wrap(err, "failed to find account by code %s", code)
	}
	return &a, nil
}

func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	accounts, err := r.queryAccounts(ctx, query, accountIDs)
	if err != nil {
		return nil, wrap(err, "failed to query accounts by IDs")
	}
	for _, a := range accounts {
		out[a.AccountID] = a
	}
	return out, nil
}

func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1);`
	accounts, err := r.queryAccounts(ctx, query, codes)
	if err != nil {
		return nil, wrap(err, "failed to query accounts by codes")
	}
	for _, a := range accounts {
		out[a.Code] = a
	}
	return out, nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if filter.AccountType != "" {
		args = append(args, filter.AccountType)
		conds = append(conds, fmt.Sprintf("account_type = $%d", len(args)))
	}
	if filter.SubType != "" {
		args = append(args, filter.SubType)
		conds = append(conds, fmt.Sprintf("UPPER(sub_type) = UPPER($%d)", len(args)))
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY code;"

	accounts, err := r.queryAccounts(ctx, query, args...)
	if err != nil {
		return nil, wrap(err, "failed to list accounts")
	}
	return accounts, nil
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		account.AccountID,
		account.Code,
		account.Name,
		account.Description,
		account.AccountType,
		account.SubType,
		account.ParentAccountID,
		account.IsActive,
		account.IsSystem,
		account.Balance,
		account.LastTransactionDate,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	return wrap(err, "failed to save account %s", account.Code)
}

// UpdateAccount writes the editable fields. Balance and last transaction date
// are only moved by ApplyBalanceChanges.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET code = $2, name = $3, description = $4, sub_type = $5, parent_account_id = $6,
			is_active = $7, last_updated_at = $8, last_updated_by = $9
		WHERE account_id = $1;
	`
	ct, err := r.db(ctx).Exec(ctx, query,
		account.AccountID,
		account.Code,
		account.Name,
		account.Description,
		account.SubType,
		account.ParentAccountID,
		account.IsActive,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return wrap(err, "failed to update account %s", account.AccountID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}
	return nil
}

// ApplyBalanceChanges locks the affected rows in ID order, then adds each delta
// in one batch. It must run inside TxManager.WithinTransaction.
func (r *PgxAccountRepository) ApplyBalanceChanges(ctx context.Context, changes map[string]decimal.Decimal, transactionDate time.Time, userID string, now time.Time) error {
	if len(changes) == 0 {
		return nil
	}
	tx, ok := txFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: balance changes require an open transaction", apperrors.ErrInternal)
	}

	accountIDs := make([]string, 0, len(changes))
	for id := range changes {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	rows, err := tx.Query(ctx, `SELECT account_id FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`, accountIDs)
	if err != nil {
		return wrap(err, "failed to lock accounts")
	}
	locked, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return wrap(err, "failed to lock accounts")
	}
	if len(locked) != len(accountIDs) {
		return fmt.Errorf("%w: could not lock all accounts for posting", apperrors.ErrNotFound)
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2,
			last_transaction_date = GREATEST(COALESCE(last_transaction_date, $3::date), $3::date),
			last_updated_at = $4,
			last_updated_by = $5
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for _, id := range accountIDs {
		batch.Queue(query, id, changes[id], transactionDate, now, userID)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for _, id := range accountIDs {
		ct, err := br.Exec()
		if batchErr != nil {
			continue
		}
		if err != nil {
			batchErr = wrap(err, "failed to update balance for account %s", id)
		} else if ct.RowsAffected() == 0 {
			batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, id)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = wrap(err, "failed to close balance update batch")
	}
	return batchErr
}

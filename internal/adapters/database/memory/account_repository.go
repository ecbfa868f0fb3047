package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// AccountRepository keeps the chart of accounts.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates an account repository over store.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var out *domain.Account
	err := r.store.read(ctx, func(st *state) error {
		a, ok := st.accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *AccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	var out *domain.Account
	err := r.store.read(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if a.Code == code {
				found := a
				out = &found
				return nil
			}
		}
		return fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	})
	return out, err
}

func (r *AccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range accountIDs {
			if a, ok := st.accounts[id]; ok {
				out[id] = a
			}
		}
		return nil
	})
	return out, err
}

func (r *AccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	out := make(map[string]domain.Account, len(codes))
	err := r.store.read(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if want[a.Code] {
				out[a.Code] = a
			}
		}
		return nil
	})
	return out, err
}

func (r *AccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var out []domain.Account
	err := r.store.read(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if filter.Matches(a) {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func codeTaken(st *state, code, exceptID string) bool {
	for id, a := range st.accounts {
		if a.Code == code && id != exceptID {
			return true
		}
	}
	return false
}

func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.accounts[account.AccountID]; ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
		}
		if codeTaken(st, account.Code, "") {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateAccountCode, account.Code)
		}
		st.accounts[account.AccountID] = account
		return nil
	})
}

// UpdateAccount replaces the editable fields. Balance, last transaction date and
// creation audit fields are owned by the store and kept.
func (r *AccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	return r.store.write(ctx, func(st *state) error {
		current, ok := st.accounts[account.AccountID]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
		}
		if codeTaken(st, account.Code, account.AccountID) {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateAccountCode, account.Code)
		}
		current.Code = account.Code
		current.Name = account.Name
		current.Description = account.Description
		current.SubType = account.SubType
		current.ParentAccountID = account.ParentAccountID
		current.IsActive = account.IsActive
		current.LastUpdatedAt = account.LastUpdatedAt
		current.LastUpdatedBy = account.LastUpdatedBy
		st.accounts[account.AccountID] = current
		return nil
	})
}

func (r *AccountRepository) ApplyBalanceChanges(ctx context.Context, changes map[string]decimal.Decimal, transactionDate time.Time, userID string, now time.Time) error {
	return r.store.write(ctx, func(st *state) error {
		for id := range changes {
			if _, ok := st.accounts[id]; !ok {
				return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
			}
		}
		for id, delta := range changes {
			a := st.accounts[id]
			a.Balance = a.Balance.Add(delta)
			if a.LastTransactionDate == nil || transactionDate.After(*a.LastTransactionDate) {
				d := transactionDate
				a.LastTransactionDate = &d
			}
			a.LastUpdatedAt = now
			a.LastUpdatedBy = userID
			st.accounts[id] = a
		}
		return nil
	})
}

package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
)

// LedgerRepository is the append-only store of posted entries.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a ledger repository over store.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

func (r *LedgerRepository) FindEntriesByTransactionNumber(ctx context.Context, transactionNumber string) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.entries {
			if e.TransactionNumber == transactionNumber {
				out = append(out, e)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, err
}

func (r *LedgerRepository) FindTransactionNumbersByReference(ctx context.Context, referenceType, referenceID string) ([]string, error) {
	var out []string
	err := r.store.read(ctx, func(st *state) error {
		seen := map[string]bool{}
		for _, e := range st.entries {
			if e.ReferenceType == referenceType && e.ReferenceID == referenceID && !seen[e.TransactionNumber] {
				seen[e.TransactionNumber] = true
				out = append(out, e.TransactionNumber)
			}
		}
		return nil
	})
	return out, err
}

func (r *LedgerRepository) FindReversalOf(ctx context.Context, transactionNumber string) (string, error) {
	var out string
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.entries {
			if e.ReversalOf == transactionNumber {
				out = e.TransactionNumber
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *LedgerRepository) ListEntries(ctx context.Context, filter domain.GeneralLedgerFilter) ([]domain.LedgerEntry, error) {
	out := []domain.LedgerEntry{}
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.entries {
			if filter.AccountID != "" && e.AccountID != filter.AccountID {
				continue
			}
			if filter.From != nil && e.TransactionDate.Before(*filter.From) {
				continue
			}
			if filter.To != nil && e.TransactionDate.After(*filter.To) {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.TransactionDate.Equal(b.TransactionDate) {
			return a.TransactionDate.After(b.TransactionDate)
		}
		if a.TransactionNumber != b.TransactionNumber {
			return a.TransactionNumber < b.TransactionNumber
		}
		return a.LineNo < b.LineNo
	})
	return out, err
}

func (r *LedgerRepository) HasActivity(ctx context.Context, accountID string) (bool, error) {
	var found bool
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.entries {
			if e.AccountID == accountID {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *LedgerRepository) TransactionNumberExists(ctx context.Context, transactionNumber string) (bool, error) {
	var found bool
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.entries {
			if e.TransactionNumber == transactionNumber {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *LedgerRepository) NextJournalSequence(ctx context.Context, prefix domain.JournalPrefix) (int64, error) {
	var next int64
	err := r.store.write(ctx, func(st *state) error {
		st.sequences[prefix]++
		next = st.sequences[prefix]
		return nil
	})
	return next, err
}

// InsertEntries enforces the same uniqueness the SQL schema does: one line number
// per journal, and one reversal per original.
func (r *LedgerRepository) InsertEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	return r.store.write(ctx, func(st *state) error {
		for _, n := range entries {
			for _, e := range st.entries {
				if e.TransactionNumber == n.TransactionNumber && e.LineNo == n.LineNo {
					return fmt.Errorf("%w: %s line %d", apperrors.ErrJournalNumberCollision, n.TransactionNumber, n.LineNo)
				}
				if n.ReversalOf != "" && e.ReversalOf == n.ReversalOf && e.TransactionNumber != n.TransactionNumber {
					return fmt.Errorf("%w: %s", apperrors.ErrTransactionAlreadyReversed, n.ReversalOf)
				}
			}
		}
		st.entries = append(st.entries, entries...)
		return nil
	})
}

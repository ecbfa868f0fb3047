package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// ReportingRepository aggregates ledger activity per account.
type ReportingRepository struct {
	store *Store
}

// NewReportingRepository creates a reporting repository over store.
func NewReportingRepository(store *Store) *ReportingRepository {
	return &ReportingRepository{store: store}
}

var _ portsrepo.ReportingRepository = (*ReportingRepository)(nil)

func toSet[T comparable](items []T) map[T]bool {
	if len(items) == 0 {
		return nil
	}
	out := make(map[T]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}

func (r *ReportingRepository) AggregateBalances(ctx context.Context, q domain.AggregateQuery) ([]domain.AccountAggregate, error) {
	types := toSet(q.AccountTypes)
	excluded := toSet(q.ExcludeReferenceTypes)
	touching := toSet(q.TouchingAccountIDs)

	var out []domain.AccountAggregate
	err := r.store.read(ctx, func(st *state) error {
		var txns map[string]bool
		if touching != nil {
			txns = map[string]bool{}
			for _, e := range st.entries {
				if touching[e.AccountID] {
					txns[e.TransactionNumber] = true
				}
			}
		}

		totals := make(map[string]*domain.AccountAggregate, len(st.accounts))
		for id, a := range st.accounts {
			if types != nil && !types[a.AccountType] {
				continue
			}
			totals[id] = &domain.AccountAggregate{
				AccountID:       a.AccountID,
				Code:            a.Code,
				Name:            a.Name,
				AccountType:     a.AccountType,
				SubType:         a.SubType,
				ParentAccountID: a.ParentAccountID,
				TotalDebit:      decimal.Zero,
				TotalCredit:     decimal.Zero,
			}
		}

		for _, e := range st.entries {
			agg, ok := totals[e.AccountID]
			if !ok {
				continue
			}
			if q.From != nil && e.TransactionDate.Before(*q.From) {
				continue
			}
			if q.To != nil && e.TransactionDate.After(*q.To) {
				continue
			}
			if excluded[e.ReferenceType] {
				continue
			}
			if txns != nil && !txns[e.TransactionNumber] {
				continue
			}
			agg.TotalDebit = agg.TotalDebit.Add(e.Debit)
			agg.TotalCredit = agg.TotalCredit.Add(e.Credit)
		}

		out = make([]domain.AccountAggregate, 0, len(totals))
		for _, agg := range totals {
			out = append(out, *agg)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

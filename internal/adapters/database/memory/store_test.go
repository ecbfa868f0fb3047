package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/adapters/database/memory"
	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(id, code string, t domain.AccountType) domain.Account {
	return domain.Account{AccountID: id, Code: code, Name: code, AccountType: t, IsActive: true}
}

func entry(number string, line int, accountID string, debit, credit int64, date time.Time) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:           number + "-" + accountID,
		TransactionNumber: number,
		LineNo:            line,
		TransactionDate:   date,
		AccountID:         accountID,
		Debit:             decimal.NewFromInt(debit),
		Credit:            decimal.NewFromInt(credit),
	}
}

func TestStore_TransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := memory.NewAccountRepository(store)

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.SaveAccount(ctx, account("a1", "1000", domain.Asset)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.FindAccountByID(ctx, "a1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_NestedTransactionIsSavepoint(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := memory.NewAccountRepository(store)

	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.SaveAccount(ctx, account("a1", "1000", domain.Asset)))
		inner := store.WithinTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, repo.SaveAccount(ctx, account("a2", "1100", domain.Asset)))
			return errors.New("inner failure")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	_, err = repo.FindAccountByID(ctx, "a1")
	assert.NoError(t, err)
	_, err = repo.FindAccountByID(ctx, "a2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_WriteInsideReadSnapshotFails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := memory.NewAccountRepository(store)

	err := store.WithinReadSnapshot(ctx, func(ctx context.Context) error {
		return repo.SaveAccount(ctx, account("a1", "1000", domain.Asset))
	})
	assert.ErrorIs(t, err, memory.ErrWriteInReadSnapshot)
}

func TestAccountRepository_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAccountRepository(memory.NewStore())

	require.NoError(t, repo.SaveAccount(ctx, account("a1", "1000", domain.Asset)))
	err := repo.SaveAccount(ctx, account("a2", "1000", domain.Asset))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateAccountCode)
}

func TestAccountRepository_ApplyBalanceChanges(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAccountRepository(memory.NewStore())
	require.NoError(t, repo.SaveAccount(ctx, account("a1", "1000", domain.Asset)))

	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d0 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.ApplyBalanceChanges(ctx, map[string]decimal.Decimal{"a1": decimal.NewFromInt(100)}, d1, "u1", d1))
	require.NoError(t, repo.ApplyBalanceChanges(ctx, map[string]decimal.Decimal{"a1": decimal.NewFromInt(-30)}, d0, "u1", d1))

	a, err := repo.FindAccountByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(decimal.NewFromInt(70)))
	require.NotNil(t, a.LastTransactionDate)
	assert.Equal(t, d1, *a.LastTransactionDate)

	err = repo.ApplyBalanceChanges(ctx, map[string]decimal.Decimal{"missing": decimal.NewFromInt(1)}, d1, "u1", d1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLedgerRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLedgerRepository(memory.NewStore())
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.InsertEntries(ctx, []domain.LedgerEntry{
		entry("JE-MAN-1", 1, "a1", 10, 0, day),
		entry("JE-MAN-1", 2, "a2", 0, 10, day),
	}))

	err := repo.InsertEntries(ctx, []domain.LedgerEntry{entry("JE-MAN-1", 1, "a1", 5, 0, day)})
	assert.ErrorIs(t, err, apperrors.ErrJournalNumberCollision)

	rev := []domain.LedgerEntry{entry("JE-REV-1", 1, "a2", 10, 0, day), entry("JE-REV-1", 2, "a1", 0, 10, day)}
	for i := range rev {
		rev[i].ReversalOf = "JE-MAN-1"
	}
	require.NoError(t, repo.InsertEntries(ctx, rev))

	again := []domain.LedgerEntry{entry("JE-REV-2", 1, "a2", 10, 0, day)}
	again[0].ReversalOf = "JE-MAN-1"
	err = repo.InsertEntries(ctx, again)
	assert.ErrorIs(t, err, apperrors.ErrTransactionAlreadyReversed)

	by, err := repo.FindReversalOf(ctx, "JE-MAN-1")
	require.NoError(t, err)
	assert.Equal(t, "JE-REV-1", by)
}

func TestLedgerRepository_SequencesPerPrefix(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLedgerRepository(memory.NewStore())

	for want := int64(1); want <= 3; want++ {
		got, err := repo.NextJournalSequence(ctx, domain.PrefixManual)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := repo.NextJournalSequence(ctx, domain.PrefixSale)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestLedgerRepository_ListEntriesOrder(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLedgerRepository(memory.NewStore())
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.InsertEntries(ctx, []domain.LedgerEntry{
		entry("JE-MAN-1", 1, "a1", 10, 0, jan), entry("JE-MAN-1", 2, "a2", 0, 10, jan),
	}))
	require.NoError(t, repo.InsertEntries(ctx, []domain.LedgerEntry{
		entry("JE-MAN-2", 1, "a1", 5, 0, feb), entry("JE-MAN-2", 2, "a2", 0, 5, feb),
	}))

	all, err := repo.ListEntries(ctx, domain.GeneralLedgerFilter{AccountID: "a1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "JE-MAN-2", all[0].TransactionNumber)
	assert.Equal(t, "JE-MAN-1", all[1].TransactionNumber)

	from := feb
	some, err := repo.ListEntries(ctx, domain.GeneralLedgerFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, some, 2)
}

func TestPeriodRepository_SingleCurrent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPeriodRepository(memory.NewStore())
	p1 := domain.FinancialPeriod{
		PeriodID:  "p1",
		Name:      "FY 2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		IsCurrent: true,
	}
	p2 := p1
	p2.PeriodID = "p2"
	p2.StartDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p2.EndDate = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SavePeriod(ctx, p1))
	assert.ErrorIs(t, repo.SavePeriod(ctx, p2), apperrors.ErrConflict)

	require.NoError(t, repo.ClearCurrentPeriod(ctx))
	require.NoError(t, repo.SavePeriod(ctx, p2))

	cur, err := repo.FindCurrentPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p2", cur.PeriodID)

	found, err := repo.FindPeriodForDate(ctx, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "p1", found.PeriodID)

	latest, err := repo.FindLatestPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p2", latest.PeriodID)
}

func TestSourceDocumentRepository_MarkGeneratedOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSourceDocumentRepository(memory.NewStore())
	doc := domain.SourceDocument{SourceType: domain.SourceSale, SourceID: "s1", CreatedAt: time.Now()}

	require.NoError(t, repo.SaveSource(ctx, doc))
	assert.ErrorIs(t, repo.SaveSource(ctx, doc), apperrors.ErrDuplicate)

	at := time.Now()
	require.NoError(t, repo.MarkGenerated(ctx, domain.SourceSale, "s1", "JE-SAL-1", at))
	assert.ErrorIs(t, repo.MarkGenerated(ctx, domain.SourceSale, "s1", "JE-SAL-2", at), apperrors.ErrConflict)

	pending, err := repo.ListUngenerated(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAccountMappingRepository_NormalizesKeys(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAccountMappingRepository(memory.NewStore())

	require.NoError(t, repo.SaveMapping(ctx, domain.AccountMapping{
		MappingType: domain.MappingExpenseCategory, Key: "Office supplies", AccountCode: "6100",
	}))
	m, err := repo.FindMapping(ctx, domain.MappingExpenseCategory, "office-supplies")
	require.NoError(t, err)
	assert.Equal(t, "6100", m.AccountCode)
}

func TestReportingRepository_AggregateBalances(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	accounts := memory.NewAccountRepository(store)
	ledger := memory.NewLedgerRepository(store)
	reporting := memory.NewReportingRepository(store)

	require.NoError(t, accounts.SaveAccount(ctx, account("cash", "1000", domain.Asset)))
	require.NoError(t, accounts.SaveAccount(ctx, account("rev", "4000", domain.Revenue)))
	require.NoError(t, accounts.SaveAccount(ctx, account("exp", "6000", domain.Expense)))

	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.InsertEntries(ctx, []domain.LedgerEntry{
		entry("JE-SAL-1", 1, "cash", 100, 0, day), entry("JE-SAL-1", 2, "rev", 0, 100, day),
	}))
	closing := []domain.LedgerEntry{entry("JE-CLS-1", 1, "rev", 100, 0, day), entry("JE-CLS-1", 2, "exp", 0, 100, day)}
	for i := range closing {
		closing[i].ReferenceType = domain.RefPeriodClose
	}
	require.NoError(t, ledger.InsertEntries(ctx, closing))

	rows, err := reporting.AggregateBalances(ctx, domain.AggregateQuery{
		AccountTypes:          []domain.AccountType{domain.Revenue, domain.Expense},
		ExcludeReferenceTypes: []string{domain.RefPeriodClose},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "4000", rows[0].Code)
	assert.True(t, rows[0].NormalBalance().Equal(decimal.NewFromInt(100)))
	assert.True(t, rows[1].TotalDebit.IsZero())

	touching, err := reporting.AggregateBalances(ctx, domain.AggregateQuery{TouchingAccountIDs: []string{"cash"}})
	require.NoError(t, err)
	require.Len(t, touching, 3)
	assert.True(t, touching[2].TotalCredit.IsZero(), "expense untouched by cash transactions")
}

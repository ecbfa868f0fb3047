package pgsql_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/bizledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/SscSPs/bizledger/pkg/database"
)

const testUser = "integration"

// PostgresTestSuite runs the ledger services against a real database. It is
// skipped unless TEST_DATABASE_URL points at a disposable PostgreSQL instance.
type PostgresTestSuite struct {
	suite.Suite
	ctx   context.Context
	pool  *pgxpool.Pool
	repos portsrepo.RepositoryProvider
	svc   *portssvc.ServiceContainer
}

func TestPostgresTestSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()
	url := os.Getenv("TEST_DATABASE_URL")

	_, err := database.RunMigrations(url, "file://../../../../migrations", database.MigrateUp)
	s.Require().NoError(err)

	s.pool, err = database.NewPgxPool(s.ctx, url, true)
	s.Require().NoError(err)
}

func (s *PostgresTestSuite) TearDownSuite() {
	database.ClosePgxPool(s.pool)
}

func (s *PostgresTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE ledger_entries, journal_sequences, financial_periods,
		company_settings, account_mappings, source_documents, accounts;`)
	s.Require().NoError(err)

	s.repos = pgsql.NewRepositoryProvider(s.pool)
	s.svc = services.NewServiceContainer(&config.Config{ReconcileWorkers: 2}, s.repos)

	_, err = s.svc.Account.SeedDefaultChart(s.ctx, testUser)
	s.Require().NoError(err)
}

func (s *PostgresTestSuite) line(code string, debit, credit string) domain.JournalLine {
	return domain.JournalLine{AccountCode: code, Debit: decimal.RequireFromString(debit), Credit: decimal.RequireFromString(credit)}
}

func (s *PostgresTestSuite) post(date time.Time, lines ...domain.JournalLine) string {
	number, err := s.svc.Journal.Post(s.ctx, domain.PostingRequest{
		Prefix:        domain.PrefixManual,
		Date:          date,
		Description:   "integration entry",
		ReferenceType: domain.RefManual,
		Lines:         lines,
	}, testUser)
	s.Require().NoError(err)
	return number
}

func (s *PostgresTestSuite) TestPostAndReverse() {
	today := domain.DateOnly(time.Now())
	first := s.post(today, s.line("1000", "150.00", "0"), s.line("4000", "0", "150.00"))
	second := s.post(today, s.line("1000", "50.00", "0"), s.line("4000", "0", "50.00"))
	s.Equal("JE-MAN-0001", first)
	s.Equal("JE-MAN-0002", second)

	cash, err := s.svc.Account.GetAccountByCode(s.ctx, "1000")
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("200").Equal(cash.Balance))
	s.Require().NotNil(cash.LastTransactionDate)

	reversal, err := s.svc.Journal.Reverse(s.ctx, first, "duplicate", testUser)
	s.Require().NoError(err)
	s.Equal("JE-REV-0001", reversal)

	_, err = s.svc.Journal.Reverse(s.ctx, first, "again", testUser)
	s.ErrorIs(err, apperrors.ErrTransactionAlreadyReversed)

	tb, err := s.svc.Reporting.TrialBalance(s.ctx, today)
	s.Require().NoError(err)
	s.True(tb.IsBalanced)
	s.True(decimal.RequireFromString("50").Equal(tb.Row("1000").NetDebit))
}

func (s *PostgresTestSuite) TestRejectedPostingLeavesNoTrace() {
	_, err := s.svc.Journal.Post(s.ctx, domain.PostingRequest{
		Prefix: domain.PrefixManual,
		Date:   domain.DateOnly(time.Now()),
		Lines:  []domain.JournalLine{s.line("1000", "10.00", "0"), s.line("4000", "0", "9.00")},
	}, testUser)
	s.ErrorIs(err, apperrors.ErrUnbalancedJournalEntry)

	exists, err := s.repos.LedgerRepo.TransactionNumberExists(s.ctx, "JE-MAN-0001")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *PostgresTestSuite) TestDuplicateAccountCode() {
	err := s.repos.AccountRepo.SaveAccount(s.ctx, domain.Account{
		AccountID: "dup", Code: "1000", Name: "Again", AccountType: domain.Asset, IsActive: true,
		AuditFields: domain.AuditFields{CreatedAt: time.Now(), CreatedBy: testUser, LastUpdatedAt: time.Now(), LastUpdatedBy: testUser},
	})
	s.ErrorIs(err, apperrors.ErrDuplicateAccountCode)
}

func (s *PostgresTestSuite) TestSingleCurrentPeriodEnforced() {
	now := time.Now()
	mk := func(id, start, end string) domain.FinancialPeriod {
		st, _ := domain.ParseDate(start)
		en, _ := domain.ParseDate(end)
		return domain.FinancialPeriod{
			PeriodID: id, Name: id, StartDate: st, EndDate: en, PeriodType: domain.PeriodFiscalYear, IsCurrent: true,
			AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: testUser, LastUpdatedAt: now, LastUpdatedBy: testUser},
		}
	}
	s.Require().NoError(s.repos.PeriodRepo.SavePeriod(s.ctx, mk("p1", "2024-01-01", "2024-12-31")))
	s.ErrorIs(s.repos.PeriodRepo.SavePeriod(s.ctx, mk("p2", "2025-01-01", "2025-12-31")), apperrors.ErrConflict)

	found, err := s.repos.PeriodRepo.FindPeriodForDate(s.ctx, time.Date(2024, 2, 29, 15, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal("p1", found.PeriodID)
}

func (s *PostgresTestSuite) TestReportSnapshotRejectsWrites() {
	err := s.repos.TxManager.WithinReadSnapshot(s.ctx, func(ctx context.Context) error {
		_, err := s.repos.LedgerRepo.NextJournalSequence(ctx, domain.PrefixManual)
		return err
	})
	s.ErrorIs(err, apperrors.ErrInternal)
}

func (s *PostgresTestSuite) TestReconciliationMarksOnce() {
	raw := []byte(`{"saleID":"s1","invoiceNumber":"INV-1","date":"2024-06-01T00:00:00Z","paymentMethod":"CASH","subtotal":"40","total":"40"}`)
	_, err := s.svc.Reconciliation.RegisterSource(s.ctx, domain.SourceDocument{SourceType: domain.SourceSale, SourceID: "s1", Payload: raw})
	s.Require().NoError(err)

	report, err := s.svc.Reconciliation.GenerateForAllUngenerated(s.ctx, testUser)
	s.Require().NoError(err)
	s.Require().Len(report.Succeeded, 1)
	s.Equal("JE-SAL-0001", report.Succeeded[0].TransactionNumber)

	err = s.repos.SourceRepo.MarkGenerated(s.ctx, domain.SourceSale, "s1", "JE-SAL-0099", time.Now())
	s.ErrorIs(err, apperrors.ErrConflict)

	pending, err := s.repos.SourceRepo.ListUngenerated(s.ctx)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *PostgresTestSuite) TestAggregateBalancesIncludesIdleAccounts() {
	s.post(domain.DateOnly(time.Now()), s.line("6100", "30.00", "0"), s.line("1000", "0", "30.00"))

	aggs, err := s.repos.ReportingRepo.AggregateBalances(s.ctx, domain.AggregateQuery{
		AccountTypes: []domain.AccountType{domain.Expense},
	})
	s.Require().NoError(err)
	s.NotEmpty(aggs)
	for _, a := range aggs {
		s.Equal(domain.Expense, a.AccountType)
		if a.Code == "6100" {
			s.True(decimal.RequireFromString("30").Equal(a.TotalDebit))
		} else {
			s.True(a.TotalDebit.IsZero())
		}
	}
}

func (s *PostgresTestSuite) createFY2023() *domain.FinancialPeriod {
	p, err := s.svc.Period.CreateFinancialPeriod(s.ctx, dto.CreatePeriodRequest{
		Name: "FY2023", StartDate: "2023-01-01", EndDate: "2023-12-31", PeriodType: string(domain.PeriodFiscalYear),
	}, testUser)
	s.Require().NoError(err)
	return p
}

// concurrently runs fn from n goroutines released together and returns their errors.
func concurrently(n int, fn func() error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}()
	}
	close(start)
	wg.Wait()
	return errs
}

func (s *PostgresTestSuite) TestConcurrentCloseClosesOnce() {
	p := s.createFY2023()
	s.post(day2023(6, 1), s.line("1000", "800.00", "0"), s.line("4000", "0", "800.00"))

	errs := concurrently(2, func() error {
		_, err := s.svc.Period.CloseFinancialYear(s.ctx, p.PeriodID, dto.ClosePeriodRequest{}, testUser)
		return err
	})

	var ok, alreadyClosed int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrPeriodAlreadyClosed):
			alreadyClosed++
		default:
			s.Failf("unexpected close error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(1, alreadyClosed)

	first, err := s.repos.LedgerRepo.TransactionNumberExists(s.ctx, "JE-CLS-0001")
	s.Require().NoError(err)
	s.True(first)
	second, err := s.repos.LedgerRepo.TransactionNumberExists(s.ctx, "JE-CLS-0002")
	s.Require().NoError(err)
	s.False(second)

	retained, err := s.svc.Account.GetAccountByCode(s.ctx, "3200")
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("800").Equal(retained.Balance))
}

func (s *PostgresTestSuite) TestCloseWaitsForInFlightPosting() {
	p := s.createFY2023()

	posted := make(chan struct{})
	release := make(chan struct{})
	postErr := make(chan error, 1)
	go func() {
		postErr <- s.repos.TxManager.WithinTransaction(s.ctx, func(ctx context.Context) error {
			_, err := s.svc.Journal.Post(ctx, domain.PostingRequest{
				Prefix: domain.PrefixManual,
				Date:   day2023(11, 30),
				Lines:  []domain.JournalLine{s.line("1000", "120.00", "0"), s.line("4000", "0", "120.00")},
			}, testUser)
			if err != nil {
				return err
			}
			close(posted)
			<-release
			return nil
		})
	}()
	select {
	case <-posted:
	case err := <-postErr:
		s.FailNow("posting failed", "%v", err)
	}

	closeErr := make(chan error, 1)
	go func() {
		_, err := s.svc.Period.CloseFinancialYear(s.ctx, p.PeriodID, dto.ClosePeriodRequest{}, testUser)
		closeErr <- err
	}()
	select {
	case err := <-closeErr:
		s.FailNow("close finished while a posting into the period was uncommitted", "%v", err)
	case <-time.After(300 * time.Millisecond):
	}

	close(release)
	s.Require().NoError(<-postErr)
	s.Require().NoError(<-closeErr)

	revenue, err := s.svc.Account.GetAccountByCode(s.ctx, "4000")
	s.Require().NoError(err)
	s.True(revenue.Balance.IsZero(), "closing entry must include the posting it waited for")
}

func (s *PostgresTestSuite) TestConcurrentPeriodsDoNotOverlap() {
	errs := concurrently(2, func() error {
		_, err := s.svc.Period.CreateFinancialPeriod(s.ctx, dto.CreatePeriodRequest{
			Name: "FY2030", StartDate: "2030-01-01", EndDate: "2030-12-31",
		}, testUser)
		return err
	})

	var ok, overlap int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrPeriodOverlap):
			overlap++
		default:
			s.Failf("unexpected create error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(1, overlap)

	periods, err := s.svc.Period.ListPeriods(s.ctx)
	s.Require().NoError(err)
	s.Len(periods, 1)
}

func day2023(month time.Month, d int) time.Time {
	return time.Date(2023, month, d, 0, 0, 0, 0, time.UTC)
}

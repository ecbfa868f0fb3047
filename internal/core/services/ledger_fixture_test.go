package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/bizledger/internal/adapters/database/memory"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/config"
)

const testUser = "user-1"

// fixedToday is the "today" every suite runs on.
var fixedToday = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

// LedgerSuite wires every service over a fresh memory store.
type LedgerSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	repos portsrepo.RepositoryProvider
	svc   *portssvc.ServiceContainer
	// workers is the reconciliation fan-out; zero keeps the sweep sequential.
	workers int
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.repos = memory.NewRepositoryProvider(s.store)
	s.svc = services.NewServiceContainer(
		&config.Config{ReconcileWorkers: s.workers},
		s.repos,
		services.WithClock(func() time.Time { return fixedToday }),
	)
}

func (s *LedgerSuite) seedChart() {
	_, err := s.svc.Account.SeedDefaultChart(s.ctx, testUser)
	s.Require().NoError(err)
}

func (s *LedgerSuite) createAccount(code, name string, t domain.AccountType) *domain.Account {
	acc, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Code: code, Name: name, AccountType: t}, testUser)
	s.Require().NoError(err)
	return acc
}

func (s *LedgerSuite) account(code string) *domain.Account {
	acc, err := s.svc.Account.GetAccountByCode(s.ctx, code)
	s.Require().NoError(err)
	return acc
}

func (s *LedgerSuite) post(date time.Time, lines ...domain.JournalLine) string {
	number, err := s.svc.Journal.Post(s.ctx, domain.PostingRequest{
		Prefix:        domain.PrefixManual,
		Date:          date,
		Description:   "test entry",
		Lines:         lines,
		ReferenceType: domain.RefManual,
	}, testUser)
	s.Require().NoError(err)
	return number
}

func (s *LedgerSuite) createPeriod(name, start, end string, current bool) *domain.FinancialPeriod {
	p, err := s.svc.Period.CreateFinancialPeriod(s.ctx, dto.CreatePeriodRequest{
		Name:        name,
		StartDate:   start,
		EndDate:     end,
		PeriodType:  string(domain.PeriodFiscalYear),
		MakeCurrent: current,
	}, testUser)
	s.Require().NoError(err)
	return p
}

func (s *LedgerSuite) assertAmount(expected string, actual decimal.Decimal, msgAndArgs ...any) {
	s.T().Helper()
	s.Truef(money(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debit(code, amount string) domain.JournalLine {
	return domain.JournalLine{AccountCode: code, Debit: money(amount)}
}

func credit(code, amount string) domain.JournalLine {
	return domain.JournalLine{AccountCode: code, Credit: money(amount)}
}

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

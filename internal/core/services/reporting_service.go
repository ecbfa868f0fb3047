package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingSvcFacade interface. Every statement is
// derived from ReportingRepository.AggregateBalances inside a read snapshot.
type reportingService struct {
	BaseService
	txManager     portsrepo.TransactionManager
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountReader
	ledgerRepo    portsrepo.LedgerReader
	describer     ReferenceDescriber
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	txManager portsrepo.TransactionManager,
	reportingRepo portsrepo.ReportingRepository,
	accountRepo portsrepo.AccountReader,
	ledgerRepo portsrepo.LedgerReader,
	describer ReferenceDescriber,
	opts ...Option,
) portssvc.ReportingSvcFacade {
	svc := &reportingService{
		txManager:     txManager,
		reportingRepo: reportingRepo,
		accountRepo:   accountRepo,
		ledgerRepo:    ledgerRepo,
		describer:     describer,
	}
	svc.apply(opts)
	return svc
}

// Ensure reportingService implements the ReportingSvcFacade interface
var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TrialBalance lists every account's debit and credit totals as of a date. An
// imbalance is reported and logged, never corrected.
// asOfOrToday truncates asOf to a date; a zero asOf means today on the service clock.
func (s *reportingService) asOfOrToday(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return s.Today()
	}
	return domain.DateOnly(asOf)
}

func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	asOf = s.asOfOrToday(asOf)
	var aggregates []domain.AccountAggregate
	err := s.txManager.WithinReadSnapshot(ctx, func(ctx context.Context) error {
		var err error
		aggregates, err = s.reportingRepo.AggregateBalances(ctx, domain.AggregateQuery{To: &asOf})
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data",
			slog.String("asOf", asOf.Format(domain.DateLayout)))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	report := &domain.TrialBalanceReport{
		AsOf:           asOf,
		Rows:           make([]domain.TrialBalanceRow, 0, len(aggregates)),
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
		TotalNetDebit:  decimal.Zero,
		TotalNetCredit: decimal.Zero,
	}
	for _, a := range aggregates {
		netDebit, netCredit := accounting.NetColumns(a.TotalDebit, a.TotalCredit)
		report.Rows = append(report.Rows, domain.TrialBalanceRow{
			AccountID:   a.AccountID,
			AccountCode: a.Code,
			AccountName: a.Name,
			AccountType: a.AccountType,
			TotalDebit:  a.TotalDebit,
			TotalCredit: a.TotalCredit,
			NetDebit:    netDebit,
			NetCredit:   netCredit,
		})
		report.TotalDebit = report.TotalDebit.Add(a.TotalDebit)
		report.TotalCredit = report.TotalCredit.Add(a.TotalCredit)
		report.TotalNetDebit = report.TotalNetDebit.Add(netDebit)
		report.TotalNetCredit = report.TotalNetCredit.Add(netCredit)
	}
	report.Discrepancy = report.TotalDebit.Sub(report.TotalCredit)
	report.IsBalanced = domain.WithinTolerance(report.TotalDebit, report.TotalCredit)

	// Postings may each be off by up to the tolerance, so several of them can
	// add up to a discrepancy here without any storage defect.
	if !report.IsBalanced {
		s.LogError(ctx, apperrors.ErrInternal, "Trial balance does not balance, ledger integrity defect",
			slog.String("asOf", asOf.Format(domain.DateLayout)),
			slog.String("posting_tolerance", domain.BalanceTolerance.String()),
			slog.String("total_debit", report.TotalDebit.String()),
			slog.String("total_credit", report.TotalCredit.String()),
			slog.String("discrepancy", report.Discrepancy.String()))
	}
	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("asOf", asOf.Format(domain.DateLayout)),
		slog.Int("row_count", len(report.Rows)))
	return report, nil
}

// BalanceSheet builds the statement of financial position as of a date.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	asOf = s.asOfOrToday(asOf)
	var aggregates []domain.AccountAggregate
	err := s.txManager.WithinReadSnapshot(ctx, func(ctx context.Context) error {
		var err error
		aggregates, err = s.reportingRepo.AggregateBalances(ctx, domain.AggregateQuery{To: &asOf})
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve balance sheet data",
			slog.String("asOf", asOf.Format(domain.DateLayout)))
		return nil, fmt.Errorf("failed to retrieve balance sheet data: %w", err)
	}

	report := &domain.BalanceSheetReport{
		AsOf:        asOf,
		Assets:      buildSection(domain.Asset, aggregates),
		Liabilities: buildSection(domain.Liability, aggregates),
		Equity:      buildSection(domain.Equity, aggregates),
	}
	earnings := decimal.Zero
	for _, a := range aggregates {
		switch a.AccountType {
		case domain.Revenue:
			earnings = earnings.Add(a.NormalBalance())
		case domain.Expense:
			earnings = earnings.Sub(a.NormalBalance())
		}
	}
	report.CurrentEarnings = earnings
	report.TotalAssets = report.Assets.Total
	report.TotalLiabilities = report.Liabilities.Total
	report.TotalEquity = report.Equity.Total.Add(earnings)
	report.TotalLiabilitiesAndEquity = report.TotalLiabilities.Add(report.TotalEquity)
	report.Difference = report.TotalAssets.Sub(report.TotalLiabilitiesAndEquity)
	report.IsBalanced = domain.WithinTolerance(report.TotalAssets, report.TotalLiabilitiesAndEquity)

	if !report.IsBalanced {
		s.LogError(ctx, apperrors.ErrInternal, "Balance sheet does not balance, ledger integrity defect",
			slog.String("asOf", asOf.Format(domain.DateLayout)),
			slog.String("difference", report.Difference.String()))
	}
	return report, nil
}

// buildSection lays the accounts of one type out as a tree: parents before
// children, siblings by code. Total rolls each account's descendants into it.
func buildSection(accountType domain.AccountType, aggregates []domain.AccountAggregate) domain.BalanceSheetSection {
	section := domain.BalanceSheetSection{AccountType: accountType, Lines: []domain.BalanceSheetLine{}, Total: decimal.Zero}

	members := make(map[string]domain.AccountAggregate)
	for _, a := range aggregates {
		if a.AccountType == accountType {
			members[a.AccountID] = a
		}
	}
	children := make(map[string][]domain.AccountAggregate)
	var roots []domain.AccountAggregate
	for _, a := range members {
		if a.ParentAccountID != nil {
			if _, ok := members[*a.ParentAccountID]; ok {
				children[*a.ParentAccountID] = append(children[*a.ParentAccountID], a)
				continue
			}
		}
		roots = append(roots, a)
	}
	byCode := func(list []domain.AccountAggregate) {
		sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	}
	byCode(roots)
	for id := range children {
		byCode(children[id])
	}

	visited := make(map[string]bool)
	var walk func(a domain.AccountAggregate, depth int) decimal.Decimal
	walk = func(a domain.AccountAggregate, depth int) decimal.Decimal {
		visited[a.AccountID] = true
		idx := len(section.Lines)
		section.Lines = append(section.Lines, domain.BalanceSheetLine{
			AccountID:       a.AccountID,
			Code:            a.Code,
			Name:            a.Name,
			SubType:         a.SubType,
			ParentAccountID: a.ParentAccountID,
			Depth:           depth,
			Balance:         a.NormalBalance(),
		})
		total := a.NormalBalance()
		for _, child := range children[a.AccountID] {
			if visited[child.AccountID] {
				continue
			}
			total = total.Add(walk(child, depth+1))
		}
		section.Lines[idx].Total = total
		return total
	}
	for _, root := range roots {
		section.Total = section.Total.Add(walk(root, 0))
	}
	return section
}

// IncomeStatement reports revenue and expense activity within a range, leaving
// out closing entries so a closed year still shows its result.
func (s *reportingService) IncomeStatement(ctx context.Context, r domain.DateRange) (*domain.IncomeStatementReport, error) {
	q, from, to := s.rangeQuery(r)
	q.AccountTypes = []domain.AccountType{domain.Revenue, domain.Expense}
	q.ExcludeReferenceTypes = []string{domain.RefPeriodClose}

	var aggregates []domain.AccountAggregate
	err := s.txManager.WithinReadSnapshot(ctx, func(ctx context.Context) error {
		var err error
		aggregates, err = s.reportingRepo.AggregateBalances(ctx, q)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve income statement data")
		return nil, fmt.Errorf("failed to retrieve income statement data: %w", err)
	}

	report := &domain.IncomeStatementReport{
		From:          from,
		To:            to,
		Revenue:       []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, a := range aggregates {
		amount := a.NormalBalance()
		if amount.IsZero() {
			continue
		}
		line := domain.AccountAmount{AccountID: a.AccountID, Code: a.Code, Name: a.Name, Amount: amount}
		if a.AccountType == domain.Revenue {
			report.Revenue = append(report.Revenue, line)
			report.TotalRevenue = report.TotalRevenue.Add(amount)
		} else {
			report.Expenses = append(report.Expenses, line)
			report.TotalExpenses = report.TotalExpenses.Add(amount)
		}
	}
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)
	return report, nil
}

// CashFlowStatement is the direct-method statement: every line of a transaction
// touching cash whose account is not cash is a counterpart, bucketed by code.
func (s *reportingService) CashFlowStatement(ctx context.Context, r domain.DateRange) (*domain.CashFlowReport, error) {
	q, from, to := s.rangeQuery(r)
	report := &domain.CashFlowReport{
		From:        from,
		To:          to,
		Operating:   domain.CashFlowSection{Category: domain.CashFlowOperating, Lines: []domain.AccountAmount{}, Total: decimal.Zero},
		Investing:   domain.CashFlowSection{Category: domain.CashFlowInvesting, Lines: []domain.AccountAmount{}, Total: decimal.Zero},
		Financing:   domain.CashFlowSection{Category: domain.CashFlowFinancing, Lines: []domain.AccountAmount{}, Total: decimal.Zero},
		NetChange:   decimal.Zero,
		OpeningCash: decimal.Zero,
		ClosingCash: decimal.Zero,
	}

	err := s.txManager.WithinReadSnapshot(ctx, func(ctx context.Context) error {
		assets, err := s.accountRepo.ListAccounts(ctx, domain.AccountFilter{AccountType: domain.Asset})
		if err != nil {
			return err
		}
		cash := make(map[string]bool)
		var cashIDs []string
		for _, a := range assets {
			if domain.IsCashAccount(a.Code, a.SubType) {
				cash[a.AccountID] = true
				cashIDs = append(cashIDs, a.AccountID)
			}
		}
		if len(cashIDs) == 0 {
			return nil
		}

		if from != nil {
			dayBefore := from.AddDate(0, 0, -1)
			opening, err := s.reportingRepo.AggregateBalances(ctx, domain.AggregateQuery{
				To:           &dayBefore,
				AccountTypes: []domain.AccountType{domain.Asset},
			})
			if err != nil {
				return err
			}
			for _, a := range opening {
				if cash[a.AccountID] {
					report.OpeningCash = report.OpeningCash.Add(a.TotalDebit.Sub(a.TotalCredit))
				}
			}
		}

		q.TouchingAccountIDs = cashIDs
		movements, err := s.reportingRepo.AggregateBalances(ctx, q)
		if err != nil {
			return err
		}
		for _, a := range movements {
			if cash[a.AccountID] {
				report.NetChange = report.NetChange.Add(a.TotalDebit.Sub(a.TotalCredit))
				continue
			}
			amount := a.TotalCredit.Sub(a.TotalDebit)
			if amount.IsZero() {
				continue
			}
			var section *domain.CashFlowSection
			switch domain.ClassifyCashFlow(a.Code) {
			case domain.CashFlowInvesting:
				section = &report.Investing
			case domain.CashFlowFinancing:
				section = &report.Financing
			default:
				section = &report.Operating
			}
			section.Lines = append(section.Lines, domain.AccountAmount{AccountID: a.AccountID, Code: a.Code, Name: a.Name, Amount: amount})
			section.Total = section.Total.Add(amount)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve cash flow data")
		return nil, fmt.Errorf("failed to retrieve cash flow data: %w", err)
	}
	report.ClosingCash = report.OpeningCash.Add(report.NetChange)
	return report, nil
}

// rangeQuery turns a DateRange into an aggregate query. A zero start is
// unbounded and a zero end means today.
func (s *reportingService) rangeQuery(r domain.DateRange) (domain.AggregateQuery, *time.Time, time.Time) {
	to := domain.DateOnly(r.End)
	if r.End.IsZero() {
		to = s.Today()
	}
	q := domain.AggregateQuery{To: &to}
	var from *time.Time
	if !r.Start.IsZero() {
		start := domain.DateOnly(r.Start)
		from = &start
		q.From = from
	}
	return q, from, to
}

// GeneralLedger lists posted entries newest first with their origin described.
// A reference that cannot be described is left blank.
func (s *reportingService) GeneralLedger(ctx context.Context, filter domain.GeneralLedgerFilter) (*domain.GeneralLedgerReport, error) {
	report := &domain.GeneralLedgerReport{
		AccountCode: filter.AccountCode,
		From:        filter.From,
		To:          filter.To,
		Lines:       []domain.GeneralLedgerLine{},
	}
	var entries []domain.LedgerEntry
	accounts := make(map[string]domain.Account)
	err := s.txManager.WithinReadSnapshot(ctx, func(ctx context.Context) error {
		if filter.AccountCode != "" && filter.AccountID == "" {
			acc, err := s.accountRepo.FindAccountByCode(ctx, filter.AccountCode)
			if err != nil {
				return err
			}
			filter.AccountID = acc.AccountID
		}
		list, err := s.accountRepo.ListAccounts(ctx, domain.AccountFilter{})
		if err != nil {
			return err
		}
		for _, a := range list {
			accounts[a.AccountID] = a
		}
		entries, err = s.ledgerRepo.ListEntries(ctx, filter)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to retrieve general ledger")
		}
		return nil, err
	}

	type refKey struct{ refType, refID string }
	described := make(map[refKey]string)
	for _, e := range entries {
		line := domain.GeneralLedgerLine{LedgerEntry: e}
		if acc, ok := accounts[e.AccountID]; ok {
			line.AccountCode, line.AccountName = acc.Code, acc.Name
		}
		key := refKey{e.ReferenceType, e.ReferenceID}
		desc, seen := described[key]
		if !seen && s.describer != nil {
			d, err := s.describer.Describe(ctx, e.ReferenceType, e.ReferenceID)
			if err != nil {
				s.LogDebug(ctx, "Could not describe ledger reference",
					slog.String("reference_type", e.ReferenceType),
					slog.String("reference_id", e.ReferenceID),
					slog.String("error", err.Error()))
			}
			desc = d
			described[key] = desc
		}
		line.SourceDescription = desc
		report.Lines = append(report.Lines, line)
	}
	return report, nil
}

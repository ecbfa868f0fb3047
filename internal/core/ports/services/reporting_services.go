package services

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// ReportingSvcFacade derives read-only financial statements from the ledger
type ReportingSvcFacade interface {
	// TrialBalance and BalanceSheet treat a zero asOf as today.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error)
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)
	IncomeStatement(ctx context.Context, r domain.DateRange) (*domain.IncomeStatementReport, error)
	CashFlowStatement(ctx context.Context, r domain.DateRange) (*domain.CashFlowReport, error)
	GeneralLedger(ctx context.Context, filter domain.GeneralLedgerFilter) (*domain.GeneralLedgerReport, error)
}

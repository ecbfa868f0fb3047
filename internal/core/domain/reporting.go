package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AggregateQuery parameterises the single aggregation every statement is built on.
// Nil dates are unbounded; empty slices mean "no filter".
type AggregateQuery struct {
	From                  *time.Time
	To                    *time.Time
	AccountTypes          []AccountType
	ExcludeReferenceTypes []string
	// TouchingAccountIDs restricts aggregation to lines of transactions that have
	// at least one line on one of these accounts.
	TouchingAccountIDs []string
}

// AccountAggregate is the debit and credit activity of one account over a query.
type AccountAggregate struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	SubType         string          `json:"subType"`
	ParentAccountID *string         `json:"parentAccountID,omitempty"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
}

// NormalBalance returns the activity signed so that the account's normal side is positive.
func (a AccountAggregate) NormalBalance() decimal.Decimal {
	if a.AccountType.IsDebitNormal() {
		return a.TotalDebit.Sub(a.TotalCredit)
	}
	return a.TotalCredit.Sub(a.TotalDebit)
}

// TrialBalanceRow is one account of a trial balance.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	NetDebit    decimal.Decimal `json:"netDebit"`
	NetCredit   decimal.Decimal `json:"netCredit"`
}

// TrialBalanceReport lists every account's totals as of a date.
type TrialBalanceReport struct {
	AsOf           time.Time         `json:"asOf"`
	Rows           []TrialBalanceRow `json:"rows"`
	TotalDebit     decimal.Decimal   `json:"totalDebit"`
	TotalCredit    decimal.Decimal   `json:"totalCredit"`
	TotalNetDebit  decimal.Decimal   `json:"totalNetDebit"`
	TotalNetCredit decimal.Decimal   `json:"totalNetCredit"`
	IsBalanced     bool              `json:"isBalanced"`
	Discrepancy    decimal.Decimal   `json:"discrepancy"`
}

// Row returns the row for an account code, or nil.
func (r *TrialBalanceReport) Row(code string) *TrialBalanceRow {
	for i := range r.Rows {
		if r.Rows[i].AccountCode == code {
			return &r.Rows[i]
		}
	}
	return nil
}

// BalanceSheetLine is one account of a balance sheet section. Total rolls up
// the balances of every descendant in the same section.
type BalanceSheetLine struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	SubType         string          `json:"subType,omitempty"`
	ParentAccountID *string         `json:"parentAccountID,omitempty"`
	Depth           int             `json:"depth"`
	Balance         decimal.Decimal `json:"balance"`
	Total           decimal.Decimal `json:"total"`
}

// BalanceSheetSection groups the lines of one account type.
type BalanceSheetSection struct {
	AccountType AccountType        `json:"accountType"`
	Lines       []BalanceSheetLine `json:"lines"`
	Total       decimal.Decimal    `json:"total"`
}

// Line returns the line for an account code, or nil.
func (s BalanceSheetSection) Line(code string) *BalanceSheetLine {
	for i := range s.Lines {
		if s.Lines[i].Code == code {
			return &s.Lines[i]
		}
	}
	return nil
}

// BalanceSheetReport is the statement of financial position as of a date.
// CurrentEarnings is revenue less expense not yet closed into retained earnings.
type BalanceSheetReport struct {
	AsOf                      time.Time           `json:"asOf"`
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	CurrentEarnings           decimal.Decimal     `json:"currentEarnings"`
	TotalAssets               decimal.Decimal     `json:"totalAssets"`
	TotalLiabilities          decimal.Decimal     `json:"totalLiabilities"`
	TotalEquity               decimal.Decimal     `json:"totalEquity"`
	TotalLiabilitiesAndEquity decimal.Decimal     `json:"totalLiabilitiesAndEquity"`
	Difference                decimal.Decimal     `json:"difference"`
	IsBalanced                bool                `json:"isBalanced"`
}

// AccountAmount is an account with a signed amount for a statement.
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// IncomeStatementReport is revenue and expense activity over a range.
type IncomeStatementReport struct {
	From          *time.Time      `json:"from,omitempty"`
	To            time.Time       `json:"to"`
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// CashFlowCategory is the activity bucket of a cash movement.
type CashFlowCategory string

const (
	CashFlowOperating CashFlowCategory = "OPERATING"
	CashFlowInvesting CashFlowCategory = "INVESTING"
	CashFlowFinancing CashFlowCategory = "FINANCING"
)

// CashFlowSection lists the counterpart accounts of one activity bucket.
// Positive amounts are cash inflows.
type CashFlowSection struct {
	Category CashFlowCategory `json:"category"`
	Lines    []AccountAmount  `json:"lines"`
	Total    decimal.Decimal  `json:"total"`
}

// CashFlowReport is the direct-method cash flow statement over a range.
type CashFlowReport struct {
	From        *time.Time      `json:"from,omitempty"`
	To          time.Time       `json:"to"`
	Operating   CashFlowSection `json:"operating"`
	Investing   CashFlowSection `json:"investing"`
	Financing   CashFlowSection `json:"financing"`
	NetChange   decimal.Decimal `json:"netChange"`
	OpeningCash decimal.Decimal `json:"openingCash"`
	ClosingCash decimal.Decimal `json:"closingCash"`
}

// GeneralLedgerFilter narrows a general ledger listing.
type GeneralLedgerFilter struct {
	AccountCode string
	AccountID   string
	From        *time.Time
	To          *time.Time
}

// GeneralLedgerLine is a posted entry with account and origin details attached.
type GeneralLedgerLine struct {
	LedgerEntry
	AccountCode       string `json:"accountCode"`
	AccountName       string `json:"accountName"`
	SourceDescription string `json:"sourceDescription,omitempty"`
}

// GeneralLedgerReport lists entries newest first.
type GeneralLedgerReport struct {
	AccountCode string              `json:"accountCode,omitempty"`
	From        *time.Time          `json:"from,omitempty"`
	To          *time.Time          `json:"to,omitempty"`
	Lines       []GeneralLedgerLine `json:"lines"`
}

// IsCashAccount reports whether an account holds cash: codes 1000 to 1099, or a
// cash, bank or cash-equivalent sub-type.
func IsCashAccount(code, subType string) bool {
	switch strings.ToUpper(subType) {
	case SubTypeCash, SubTypeBank, SubTypeCashEquivalent:
		return true
	}
	n, ok := codeNumber(code)
	return ok && n >= 1000 && n <= 1099
}

// ClassifyCashFlow buckets the counterpart of a cash movement by its account code:
// 1500-1999 investing, 2500-3999 financing, anything else operating.
func ClassifyCashFlow(code string) CashFlowCategory {
	n, ok := codeNumber(code)
	switch {
	case !ok:
		return CashFlowOperating
	case n >= 1500 && n <= 1999:
		return CashFlowInvesting
	case n >= 2500 && n <= 3999:
		return CashFlowFinancing
	default:
		return CashFlowOperating
	}
}

func codeNumber(code string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	return n, err == nil
}

package dto

import (
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportQueryParams are the query parameters accepted by every report endpoint.
// An explicit date wins over a named period.
type ReportQueryParams struct {
	AsOf        string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Period      string `form:"period" binding:"omitempty,oneof=current-fy previous-fy calendar-year all-time"`
	AccountCode string `form:"accountCode"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=1000"`
	NextToken   string `form:"nextToken"`
}

// GeneralLedgerResponse is one page of the general ledger.
type GeneralLedgerResponse struct {
	*domain.GeneralLedgerReport
	NextToken *string `json:"nextToken,omitempty"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	NetDebit    decimal.Decimal `json:"netDebit"`
	NetCredit   decimal.Decimal `json:"netCredit"`
}

// TrialBalanceTotals are the grand totals of a trial balance.
type TrialBalanceTotals struct {
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	NetDebit  decimal.Decimal `json:"netDebit"`
	NetCredit decimal.Decimal `json:"netCredit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf        string                    `json:"asOf"`
	Rows        []TrialBalanceRowResponse `json:"rows"`
	Totals      TrialBalanceTotals        `json:"totals"`
	IsBalanced  bool                      `json:"isBalanced"`
	Discrepancy decimal.Decimal           `json:"discrepancy"`
}

// ToTrialBalanceResponse converts a trial balance report.
func ToTrialBalanceResponse(r *domain.TrialBalanceReport) TrialBalanceResponse {
	rows := make([]TrialBalanceRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = TrialBalanceRowResponse{
			AccountID:   row.AccountID,
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
			AccountType: string(row.AccountType),
			Debit:       row.TotalDebit,
			Credit:      row.TotalCredit,
			NetDebit:    row.NetDebit,
			NetCredit:   row.NetCredit,
		}
	}
	return TrialBalanceResponse{
		AsOf: r.AsOf.Format(domain.DateLayout),
		Rows: rows,
		Totals: TrialBalanceTotals{
			Debit:     r.TotalDebit,
			Credit:    r.TotalCredit,
			NetDebit:  r.TotalNetDebit,
			NetCredit: r.TotalNetCredit,
		},
		IsBalanced:  r.IsBalanced,
		Discrepancy: r.Discrepancy,
	}
}

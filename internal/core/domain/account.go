package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in statement order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, Expense}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether the account type grows with debits.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// ParseAccountType accepts the canonical names case-insensitively. INCOME is
// accepted as an alias for REVENUE.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if t == "INCOME" {
		t = Revenue
	}
	if !t.Valid() {
		return "", fmt.Errorf("unknown account type %q", s)
	}
	return t, nil
}

// Common account sub-types. Sub-types are free text; these are the ones the
// ledger itself interprets.
const (
	SubTypeCash           = "CASH"
	SubTypeBank           = "BANK"
	SubTypeCashEquivalent = "CASH_EQUIVALENT"
	SubTypeReceivable     = "RECEIVABLE"
	SubTypeInventory      = "INVENTORY"
	SubTypeFixedAsset     = "FIXED_ASSET"
	SubTypePayable        = "PAYABLE"
	SubTypeTax            = "TAX"
	SubTypeRetained       = "RETAINED_EARNINGS"
	SubTypeCostOfSales    = "COST_OF_SALES"
	SubTypeOperating      = "OPERATING"
)

// Account represents a node of the chart of accounts.
type Account struct {
	AccountID           string          `json:"accountID"`
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	AccountType         AccountType     `json:"accountType"`
	SubType             string          `json:"subType"`
	ParentAccountID     *string         `json:"parentAccountID,omitempty"`
	IsActive            bool            `json:"isActive"`
	IsSystem            bool            `json:"isSystem"`
	Balance             decimal.Decimal `json:"balance"`
	LastTransactionDate *time.Time      `json:"lastTransactionDate,omitempty"`
	AuditFields
}

// AccountFilter narrows account listings. Zero values mean "no filter".
type AccountFilter struct {
	ActiveOnly  bool
	AccountType AccountType
	SubType     string
}

// Matches reports whether a satisfies the filter.
func (f AccountFilter) Matches(a Account) bool {
	if f.ActiveOnly && !a.IsActive {
		return false
	}
	if f.AccountType != "" && a.AccountType != f.AccountType {
		return false
	}
	if f.SubType != "" && !strings.EqualFold(a.SubType, f.SubType) {
		return false
	}
	return true
}

// AccountUpdateResult is the outcome of a patch; Warnings lists fields that were
// ignored because the account is protected.
type AccountUpdateResult struct {
	Account  *Account `json:"account"`
	Warnings []string `json:"warnings,omitempty"`
}

// Descendants returns the IDs of every account below rootID in the hierarchy
// described by accounts. rootID itself is not included.
func Descendants(accounts []Account, rootID string) map[string]bool {
	children := make(map[string][]string, len(accounts))
	for _, a := range accounts {
		if a.ParentAccountID != nil {
			children[*a.ParentAccountID] = append(children[*a.ParentAccountID], a.AccountID)
		}
	}
	out := make(map[string]bool)
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			if out[child] || child == rootID {
				continue
			}
			out[child] = true
			queue = append(queue, child)
		}
	}
	return out
}

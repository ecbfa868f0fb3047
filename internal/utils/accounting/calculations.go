package accounting

import (
	"fmt"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount returns the change a line makes to its account's cached
// balance, where the balance is kept positive on the account's normal side.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func CalculateSignedAmount(debit, credit decimal.Decimal, accountType domain.AccountType) (decimal.Decimal, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return debit.Sub(credit), nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return credit.Sub(debit), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
}

// BalanceChanges folds posted lines into a per-account balance delta.
func BalanceChanges(entries []domain.LedgerEntry, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		accountType, ok := accountTypes[e.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account ID %s", e.AccountID)
		}
		signed, err := CalculateSignedAmount(e.Debit, e.Credit, accountType)
		if err != nil {
			return nil, fmt.Errorf("line %d of %s: %w", e.LineNo, e.TransactionNumber, err)
		}
		changes[e.AccountID] = changes[e.AccountID].Add(signed)
	}
	return changes, nil
}

// NetColumns splits a net debit-minus-credit figure into the debit or credit
// column of a trial balance.
func NetColumns(totalDebit, totalCredit decimal.Decimal) (netDebit, netCredit decimal.Decimal) {
	net := totalDebit.Sub(totalCredit)
	if net.IsNegative() {
		return decimal.Zero, net.Neg()
	}
	return net, decimal.Zero
}

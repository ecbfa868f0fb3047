package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// JournalPrefix namespaces journal numbers by the origin of the entry.
type JournalPrefix string

const (
	PrefixManual     JournalPrefix = "JE-MAN"
	PrefixAdjustment JournalPrefix = "JE-ADJ"
	PrefixSale       JournalPrefix = "JE-SAL"
	PrefixPurchase   JournalPrefix = "JE-PUR"
	PrefixProduction JournalPrefix = "JE-PRD"
	PrefixPayment    JournalPrefix = "JE-PAY"
	PrefixReversal   JournalPrefix = "JE-REV"
	PrefixClosing    JournalPrefix = "JE-CLS"
)

// Valid reports whether p is a known prefix.
func (p JournalPrefix) Valid() bool {
	switch p {
	case PrefixManual, PrefixAdjustment, PrefixSale, PrefixPurchase,
		PrefixProduction, PrefixPayment, PrefixReversal, PrefixClosing:
		return true
	}
	return false
}

// FormatJournalNumber renders a journal number such as JE-MAN-0001.
func FormatJournalNumber(prefix JournalPrefix, seq int64) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}

// PrefixOf extracts the prefix part of a journal number.
func PrefixOf(number string) JournalPrefix {
	idx := strings.LastIndex(number, "-")
	if idx <= 0 {
		return ""
	}
	return JournalPrefix(number[:idx])
}

// Reference types recorded on ledger entries pointing back to their origin.
const (
	RefManual              = "MANUAL"
	RefSale                = "SALE"
	RefPurchase            = "PURCHASE"
	RefProduction          = "PRODUCTION"
	RefExpensePayment      = "EXPENSE_PAYMENT"
	RefInventoryAdjustment = "INVENTORY_ADJUSTMENT"
	RefPeriodClose         = "PERIOD_CLOSE"
)

// LedgerEntry is a single posted debit-or-credit line. Entries are immutable
// once written.
type LedgerEntry struct {
	EntryID           string          `json:"entryID"`
	TransactionNumber string          `json:"transactionNumber"`
	LineNo            int             `json:"lineNo"`
	TransactionDate   time.Time       `json:"transactionDate"`
	AccountID         string          `json:"accountID"`
	Debit             decimal.Decimal `json:"debit"`
	Credit            decimal.Decimal `json:"credit"`
	Description       string          `json:"description"`
	ReferenceType     string          `json:"referenceType,omitempty"`
	ReferenceID       string          `json:"referenceID,omitempty"`
	ReversalOf        string          `json:"reversalOf,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	CreatedBy         string          `json:"createdBy"`
}

// IsDebit reports whether the line carries its amount on the debit side.
func (e LedgerEntry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// Amount returns the non-zero side of the line.
func (e LedgerEntry) Amount() decimal.Decimal {
	if e.IsDebit() {
		return e.Debit
	}
	return e.Credit
}

// JournalLine is a line submitted for posting. Either AccountID or AccountCode
// identifies the account; generators address accounts by code.
type JournalLine struct {
	AccountID   string          `json:"accountID,omitempty"`
	AccountCode string          `json:"accountCode,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// ValidateSides checks that exactly one side is non-zero, neither is negative
// and the amount fits MoneyPlaces.
func (l JournalLine) ValidateSides() error {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return fmt.Errorf("amounts cannot be negative")
	}
	hasDebit, hasCredit := l.Debit.IsPositive(), l.Credit.IsPositive()
	if hasDebit == hasCredit {
		return fmt.Errorf("exactly one of debit or credit must be non-zero")
	}
	amount := l.Debit
	if hasCredit {
		amount = l.Credit
	}
	if !amount.Equal(amount.Round(MoneyPlaces)) {
		return fmt.Errorf("amount %s has more than %d decimal places", amount.String(), MoneyPlaces)
	}
	return nil
}

// Swapped returns the line with debit and credit exchanged.
func (l JournalLine) Swapped() JournalLine {
	l.Debit, l.Credit = l.Credit, l.Debit
	return l
}

// PostingRequest is the input to the journal engine.
type PostingRequest struct {
	Prefix        JournalPrefix
	Date          time.Time
	Description   string
	Lines         []JournalLine
	ReferenceType string
	ReferenceID   string
	ReversalOf    string
	// AllowInactive lets system postings (reversals, year-end closing) touch
	// accounts deactivated after they were used. Never set from request input.
	AllowInactive bool
}

// JournalTotals sums the debit and credit sides of a line set.
func JournalTotals(lines []JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// JournalTransaction is the read view of all lines sharing one journal number.
type JournalTransaction struct {
	TransactionNumber string          `json:"transactionNumber"`
	TransactionDate   time.Time       `json:"transactionDate"`
	Description       string          `json:"description"`
	ReferenceType     string          `json:"referenceType,omitempty"`
	ReferenceID       string          `json:"referenceID,omitempty"`
	ReversalOf        string          `json:"reversalOf,omitempty"`
	ReversedBy        string          `json:"reversedBy,omitempty"`
	TotalDebit        decimal.Decimal `json:"totalDebit"`
	TotalCredit       decimal.Decimal `json:"totalCredit"`
	Lines             []LedgerEntry   `json:"lines"`
}

// NewJournalTransaction groups the entries of one journal number.
func NewJournalTransaction(entries []LedgerEntry) *JournalTransaction {
	if len(entries) == 0 {
		return nil
	}
	first := entries[0]
	jt := &JournalTransaction{
		TransactionNumber: first.TransactionNumber,
		TransactionDate:   first.TransactionDate,
		Description:       first.Description,
		ReferenceType:     first.ReferenceType,
		ReferenceID:       first.ReferenceID,
		ReversalOf:        first.ReversalOf,
		TotalDebit:        decimal.Zero,
		TotalCredit:       decimal.Zero,
		Lines:             entries,
	}
	for _, e := range entries {
		jt.TotalDebit = jt.TotalDebit.Add(e.Debit)
		jt.TotalCredit = jt.TotalCredit.Add(e.Credit)
	}
	return jt
}

// PreviewLine echoes a submitted line with its resolved account.
type PreviewLine struct {
	JournalLine
	AccountID   string `json:"accountID"`
	AccountCode string `json:"accountCode"`
	AccountName string `json:"accountName"`
}

// JournalPreview is the pre-commit view of a manual entry. Nothing is persisted
// to produce it.
type JournalPreview struct {
	Lines       []PreviewLine   `json:"lines"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Difference  decimal.Decimal `json:"difference"`
	IsBalanced  bool            `json:"isBalanced"`
	CanPost     bool            `json:"canPost"`
	Problems    []string        `json:"problems,omitempty"`
}

// ReversalFailure records a transaction that could not be reversed.
type ReversalFailure struct {
	TransactionNumber string `json:"transactionNumber"`
	Reason            string `json:"reason"`
}

// ReversalOutcome reports what a cascading reversal by reference achieved.
// Failures leave the ledger out of step with the originating domain record and
// need manual reconciliation.
type ReversalOutcome struct {
	ReferenceType string            `json:"referenceType"`
	ReferenceID   string            `json:"referenceID"`
	Reversed      map[string]string `json:"reversed"`
	Failed        []ReversalFailure `json:"failed,omitempty"`
}

// NeedsAttention reports whether any reversal failed.
func (o *ReversalOutcome) NeedsAttention() bool {
	return o != nil && len(o.Failed) > 0
}

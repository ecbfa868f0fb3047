package dto

import (
	"fmt"
	"strings"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one line of a manual journal entry. Exactly one of
// Debit or Credit is expected to be non-zero; the engine enforces it.
type JournalLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required_without=AccountCode"`
	AccountCode string          `json:"accountCode" binding:"required_without=AccountID"`
	Debit       decimal.Decimal `json:"debit" binding:"money"`
	Credit      decimal.Decimal `json:"credit" binding:"money"`
	Description string          `json:"description"`
}

// CreateJournalRequest defines a manual or adjustment journal entry.
type CreateJournalRequest struct {
	Date          string               `json:"date" binding:"required,datetime=2006-01-02"`
	Prefix        string               `json:"prefix" binding:"omitempty,oneof=JE-MAN JE-ADJ"`
	Description   string               `json:"description"`
	ReferenceType string               `json:"referenceType"`
	ReferenceID   string               `json:"referenceID"`
	Lines         []JournalLineRequest `json:"lines" binding:"required,dive"`
}

// PreviewJournalRequest carries the lines of an entry being drafted.
type PreviewJournalRequest struct {
	Lines []JournalLineRequest `json:"lines" binding:"required,dive"`
}

// ReverseJournalRequest carries the reason recorded on a reversal.
type ReverseJournalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PostJournalResponse returns the number allocated to a posted journal.
type PostJournalResponse struct {
	TransactionNumber string `json:"transactionNumber"`
}

// ReverseJournalResponse links a reversal to its original.
type ReverseJournalResponse struct {
	OriginalTransactionNumber string `json:"originalTransactionNumber"`
	ReversalTransactionNumber string `json:"reversalTransactionNumber"`
}

// ToJournalLines converts request lines into domain lines.
func ToJournalLines(lines []JournalLineRequest) []domain.JournalLine {
	out := make([]domain.JournalLine, len(lines))
	for i, l := range lines {
		out[i] = domain.JournalLine{
			AccountID:   strings.TrimSpace(l.AccountID),
			AccountCode: strings.TrimSpace(l.AccountCode),
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return out
}

// ToPostingRequest converts the DTO into the engine's posting request.
func (r CreateJournalRequest) ToPostingRequest() (domain.PostingRequest, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return domain.PostingRequest{}, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	prefix := domain.PrefixManual
	if r.Prefix != "" {
		prefix = domain.JournalPrefix(r.Prefix)
	}
	refType := r.ReferenceType
	if refType == "" {
		refType = domain.RefManual
	}
	return domain.PostingRequest{
		Prefix:        prefix,
		Date:          date,
		Description:   r.Description,
		Lines:         ToJournalLines(r.Lines),
		ReferenceType: refType,
		ReferenceID:   r.ReferenceID,
	}, nil
}

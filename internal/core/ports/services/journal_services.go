package services

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// JournalPostingSvc validates and posts journal entries
type JournalPostingSvc interface {
	// Post validates and atomically persists a balanced journal, returning its number.
	Post(ctx context.Context, req domain.PostingRequest, userID string) (string, error)

	// Preview validates lines without persisting anything.
	Preview(ctx context.Context, lines []domain.JournalLine) (*domain.JournalPreview, error)

	// GetTransaction returns all lines of a posted journal.
	GetTransaction(ctx context.Context, transactionNumber string) (*domain.JournalTransaction, error)
}

// JournalReversalSvc creates reversing entries
type JournalReversalSvc interface {
	// Reverse posts the mirror image of a journal and returns the new number.
	Reverse(ctx context.Context, transactionNumber, reason, userID string) (string, error)

	// ReverseByReference reverses every unreversed journal posted for a domain
	// event. Individual failures are reported in the outcome, not returned.
	ReverseByReference(ctx context.Context, referenceType, referenceID, reason, userID string) (*domain.ReversalOutcome, error)
}

// JournalGeneratorSvc maps domain event snapshots onto journals. The caller owns
// the "journal generated" marker; generators never deduplicate.
type JournalGeneratorSvc interface {
	GenerateForSale(ctx context.Context, sale domain.SaleSnapshot, userID string) (string, error)
	GenerateForPurchase(ctx context.Context, purchase domain.PurchaseSnapshot, userID string) (string, error)
	GenerateForProduction(ctx context.Context, production domain.ProductionSnapshot, userID string) (string, error)
	GenerateForExpensePayment(ctx context.Context, payment domain.ExpensePaymentSnapshot, userID string) (string, error)
	GenerateForInventoryAdjustment(ctx context.Context, adjustment domain.InventoryAdjustmentSnapshot, userID string) (string, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalPostingSvc
	JournalReversalSvc
	JournalGeneratorSvc
}

// ReconciliationSvcFacade drives journal generation for registered source documents
type ReconciliationSvcFacade interface {
	// RegisterSource stores a snapshot for later generation.
	RegisterSource(ctx context.Context, doc domain.SourceDocument) (*domain.SourceDocument, error)

	// GenerateForSource posts the journal of one document and sets its marker.
	GenerateForSource(ctx context.Context, sourceType domain.SourceType, sourceID, userID string) (string, error)

	// GenerateForAllUngenerated sweeps every document lacking the marker. One
	// document's failure never stops the sweep.
	GenerateForAllUngenerated(ctx context.Context, userID string) (*domain.ReconciliationReport, error)
}

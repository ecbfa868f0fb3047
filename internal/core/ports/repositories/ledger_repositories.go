package repositories

import (
	"context"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// LedgerReader defines read operations over posted ledger entries
type LedgerReader interface {
	// FindEntriesByTransactionNumber returns the lines of one journal ordered by line number.
	FindEntriesByTransactionNumber(ctx context.Context, transactionNumber string) ([]domain.LedgerEntry, error)

	// FindTransactionNumbersByReference returns the journals posted for a domain event, oldest first.
	FindTransactionNumbersByReference(ctx context.Context, referenceType, referenceID string) ([]string, error)

	// FindReversalOf returns the number of the journal reversing transactionNumber, or "".
	FindReversalOf(ctx context.Context, transactionNumber string) (string, error)

	// ListEntries returns entries ordered by date descending, then transaction number and line.
	ListEntries(ctx context.Context, filter domain.GeneralLedgerFilter) ([]domain.LedgerEntry, error)

	// HasActivity reports whether any entry references the account.
	HasActivity(ctx context.Context, accountID string) (bool, error)

	// TransactionNumberExists reports whether any entry already uses the number.
	TransactionNumberExists(ctx context.Context, transactionNumber string) (bool, error)
}

// LedgerWriter defines the append-only write side. There is deliberately no
// update or delete.
type LedgerWriter interface {
	// NextJournalSequence allocates the next suffix for a journal prefix.
	NextJournalSequence(ctx context.Context, prefix domain.JournalPrefix) (int64, error)

	// InsertEntries appends the lines of one journal.
	InsertEntries(ctx context.Context, entries []domain.LedgerEntry) error
}

// LedgerRepositoryFacade combines ledger read and write operations
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}

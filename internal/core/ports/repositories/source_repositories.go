package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// AccountMappingRepository stores the category to account code lookup table
type AccountMappingRepository interface {
	// FindMapping returns the mapping for a key or apperrors.ErrNotFound.
	FindMapping(ctx context.Context, mappingType domain.MappingType, key string) (*domain.AccountMapping, error)
	ListMappings(ctx context.Context) ([]domain.AccountMapping, error)

	// SaveMapping inserts or replaces a mapping.
	SaveMapping(ctx context.Context, mapping domain.AccountMapping) error
}

// SourceDocumentRepository stores collaborator snapshots and their generated markers
type SourceDocumentRepository interface {
	// SaveSource registers a snapshot; re-registering the same type and ID yields apperrors.ErrDuplicate.
	SaveSource(ctx context.Context, doc domain.SourceDocument) error
	FindSource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.SourceDocument, error)

	// ListUngenerated returns documents lacking the generated marker, oldest first.
	ListUngenerated(ctx context.Context) ([]domain.SourceDocument, error)

	// MarkGenerated sets the marker. It fails with apperrors.ErrConflict when the
	// marker is already set so two sweeps cannot post the same event.
	MarkGenerated(ctx context.Context, sourceType domain.SourceType, sourceID, transactionNumber string, at time.Time) error
}

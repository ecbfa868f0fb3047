package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
)

// AccountMappingRepository holds the category to account code table.
type AccountMappingRepository struct {
	store *Store
}

// NewAccountMappingRepository creates a mapping repository over store.
func NewAccountMappingRepository(store *Store) *AccountMappingRepository {
	return &AccountMappingRepository{store: store}
}

var _ portsrepo.AccountMappingRepository = (*AccountMappingRepository)(nil)

func (r *AccountMappingRepository) FindMapping(ctx context.Context, mappingType domain.MappingType, key string) (*domain.AccountMapping, error) {
	var out *domain.AccountMapping
	err := r.store.read(ctx, func(st *state) error {
		m, ok := st.mappings[mappingKey{mappingType, domain.NormalizeMappingKey(key)}]
		if !ok {
			return fmt.Errorf("%w: mapping %s/%s", apperrors.ErrNotFound, mappingType, key)
		}
		out = &m
		return nil
	})
	return out, err
}

func (r *AccountMappingRepository) ListMappings(ctx context.Context) ([]domain.AccountMapping, error) {
	var out []domain.AccountMapping
	err := r.store.read(ctx, func(st *state) error {
		for _, m := range st.mappings {
			out = append(out, m)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].MappingType != out[j].MappingType {
			return out[i].MappingType < out[j].MappingType
		}
		return out[i].Key < out[j].Key
	})
	return out, err
}

func (r *AccountMappingRepository) SaveMapping(ctx context.Context, mapping domain.AccountMapping) error {
	return r.store.write(ctx, func(st *state) error {
		mapping.Key = domain.NormalizeMappingKey(mapping.Key)
		st.mappings[mappingKey{mapping.MappingType, mapping.Key}] = mapping
		return nil
	})
}

// SourceDocumentRepository holds registered domain event snapshots.
type SourceDocumentRepository struct {
	store *Store
}

// NewSourceDocumentRepository creates a source document repository over store.
func NewSourceDocumentRepository(store *Store) *SourceDocumentRepository {
	return &SourceDocumentRepository{store: store}
}

var _ portsrepo.SourceDocumentRepository = (*SourceDocumentRepository)(nil)

func (r *SourceDocumentRepository) SaveSource(ctx context.Context, doc domain.SourceDocument) error {
	return r.store.write(ctx, func(st *state) error {
		k := sourceKey{doc.SourceType, doc.SourceID}
		if _, ok := st.sources[k]; ok {
			return fmt.Errorf("%w: source %s %s", apperrors.ErrDuplicate, doc.SourceType, doc.SourceID)
		}
		st.sources[k] = doc
		return nil
	})
}

func (r *SourceDocumentRepository) FindSource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.SourceDocument, error) {
	var out *domain.SourceDocument
	err := r.store.read(ctx, func(st *state) error {
		doc, ok := st.sources[sourceKey{sourceType, sourceID}]
		if !ok {
			return fmt.Errorf("%w: source %s %s", apperrors.ErrNotFound, sourceType, sourceID)
		}
		out = &doc
		return nil
	})
	return out, err
}

func (r *SourceDocumentRepository) ListUngenerated(ctx context.Context) ([]domain.SourceDocument, error) {
	var out []domain.SourceDocument
	err := r.store.read(ctx, func(st *state) error {
		for _, doc := range st.sources {
			if !doc.JournalGenerated {
				out = append(out, doc)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if out[i].SourceType != out[j].SourceType {
			return out[i].SourceType < out[j].SourceType
		}
		return out[i].SourceID < out[j].SourceID
	})
	return out, err
}

func (r *SourceDocumentRepository) MarkGenerated(ctx context.Context, sourceType domain.SourceType, sourceID, transactionNumber string, at time.Time) error {
	return r.store.write(ctx, func(st *state) error {
		k := sourceKey{sourceType, sourceID}
		doc, ok := st.sources[k]
		if !ok {
			return fmt.Errorf("%w: source %s %s", apperrors.ErrNotFound, sourceType, sourceID)
		}
		if doc.JournalGenerated {
			return fmt.Errorf("%w: source %s %s already generated as %s", apperrors.ErrConflict, sourceType, sourceID, doc.TransactionNumber)
		}
		doc.JournalGenerated = true
		doc.TransactionNumber = transactionNumber
		doc.GeneratedAt = &at
		st.sources[k] = doc
		return nil
	})
}

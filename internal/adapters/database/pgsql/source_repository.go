package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountMappingRepository struct {
	BaseRepository
}

// NewAccountMappingRepository creates a new repository for category to account mappings.
func NewAccountMappingRepository(pool *pgxpool.Pool) *PgxAccountMappingRepository {
	return &PgxAccountMappingRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountMappingRepository = (*PgxAccountMappingRepository)(nil)

func (r *PgxAccountMappingRepository) FindMapping(ctx context.Context, mappingType domain.MappingType, key string) (*domain.AccountMapping, error) {
	m := domain.AccountMapping{}
	err := r.db(ctx).QueryRow(ctx,
		`SELECT mapping_type, mapping_key, account_code FROM account_mappings WHERE mapping_type = $1 AND mapping_key = $2;`,
		mappingType, domain.NormalizeMappingKey(key),
	).Scan(&m.MappingType, &m.Key, &m.AccountCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: mapping %s/%s", apperrors.ErrNotFound, mappingType, key)
		}
		return nil, wrap(err, "failed to find mapping %s/%s", mappingType, key)
	}
	return &m, nil
}

func (r *PgxAccountMappingRepository) ListMappings(ctx context.Context) ([]domain.AccountMapping, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT mapping_type, mapping_key, account_code FROM account_mappings ORDER BY mapping_type, mapping_key;`)
	if err != nil {
		return nil, wrap(err, "failed to list mappings")
	}
	mappings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AccountMapping, error) {
		var m domain.AccountMapping
		err := row.Scan(&m.MappingType, &m.Key, &m.AccountCode)
		return m, err
	})
	return mappings, wrap(err, "failed to read mappings")
}

func (r *PgxAccountMappingRepository) SaveMapping(ctx context.Context, m domain.AccountMapping) error {
	query := `
		INSERT INTO account_mappings (mapping_type, mapping_key, account_code)
		VALUES ($1, $2, $3)
		ON CONFLICT (mapping_type, mapping_key) DO UPDATE SET account_code = EXCLUDED.account_code;
	`
	_, err := r.db(ctx).Exec(ctx, query, m.MappingType, domain.NormalizeMappingKey(m.Key), m.AccountCode)
	return wrap(err, "failed to save mapping %s/%s", m.MappingType, m.Key)
}

const sourceColumns = `source_type, source_id, reference, payload, journal_generated, transaction_number, created_at, generated_at`

type PgxSourceDocumentRepository struct {
	BaseRepository
}

// NewSourceDocumentRepository creates a new repository for collaborator snapshots.
func NewSourceDocumentRepository(pool *pgxpool.Pool) *PgxSourceDocumentRepository {
	return &PgxSourceDocumentRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.SourceDocumentRepository = (*PgxSourceDocumentRepository)(nil)

func scanSource(row scanner) (domain.SourceDocument, error) {
	var d domain.SourceDocument
	var payload []byte
	err := row.Scan(
		&d.SourceType,
		&d.SourceID,
		&d.Reference,
		&payload,
		&d.JournalGenerated,
		&d.TransactionNumber,
		&d.CreatedAt,
		&d.GeneratedAt,
	)
	d.Payload = payload
	return d, err
}

func (r *PgxSourceDocumentRepository) SaveSource(ctx context.Context, d domain.SourceDocument) error {
	query := `INSERT INTO source_documents (` + sourceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	_, err := r.db(ctx).Exec(ctx, query,
		d.SourceType,
		d.SourceID,
		d.Reference,
		[]byte(d.Payload),
		d.JournalGenerated,
		d.TransactionNumber,
		d.CreatedAt,
		d.GeneratedAt,
	)
	return wrap(err, "failed to save source %s %s", d.SourceType, d.SourceID)
}

func (r *PgxSourceDocumentRepository) FindSource(ctx context.Context, sourceType domain.SourceType, sourceID string) (*domain.SourceDocument, error) {
	query := `SELECT ` + sourceColumns + ` FROM source_documents WHERE source_type = $1 AND source_id = $2;`
	d, err := scanSource(r.db(ctx).QueryRow(ctx, query, sourceType, sourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: source %s %s", apperrors.ErrNotFound, sourceType, sourceID)
		}
		return nil, wrap(err, "failed to find source %s %s", sourceType, sourceID)
	}
	return &d, nil
}

func (r *PgxSourceDocumentRepository) ListUngenerated(ctx context.Context) ([]domain.SourceDocument, error) {
	query := `
		SELECT ` + sourceColumns + `
		FROM source_documents
		WHERE NOT journal_generated
		ORDER BY created_at, source_type, source_id;
	`
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, wrap(err, "failed to list ungenerated sources")
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SourceDocument, error) {
		return scanSource(row)
	})
	return docs, wrap(err, "failed to read ungenerated sources")
}

// MarkGenerated flips the marker only when it is unset, so of two racing sweeps
// exactly one succeeds.
func (r *PgxSourceDocumentRepository) MarkGenerated(ctx context.Context, sourceType domain.SourceType, sourceID, transactionNumber string, at time.Time) error {
	query := `
		UPDATE source_documents
		SET journal_generated = TRUE, transaction_number = $3, generated_at = $4
		WHERE source_type = $1 AND source_id = $2 AND NOT journal_generated;
	`
	ct, err := r.db(ctx).Exec(ctx, query, sourceType, sourceID, transactionNumber, at)
	if err != nil {
		return wrap(err, "failed to mark source %s %s", sourceType, sourceID)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	existing, err := r.FindSource(ctx, sourceType, sourceID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: source %s %s already generated as %s", apperrors.ErrConflict, sourceType, sourceID, existing.TransactionNumber)
}

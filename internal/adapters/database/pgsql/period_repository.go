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

// periodScheduleLockKey is the advisory lock taken by every period write.
const periodScheduleLockKey int64 = 0x6c6564676572 // "ledger"

const periodColumns = `period_id, name, start_date, end_date, period_type, is_current, is_closed,
	closed_date, closed_by, notes, created_at, created_by, last_updated_at, last_updated_by`

type PgxPeriodRepository struct {
	BaseRepository
}

// NewPeriodRepository creates a new repository for financial periods.
func NewPeriodRepository(pool *pgxpool.Pool) *PgxPeriodRepository {
	return &PgxPeriodRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

func scanPeriod(row scanner) (domain.FinancialPeriod, error) {
	var p domain.FinancialPeriod
	err := row.Scan(
		&p.PeriodID,
		&p.Name,
		&p.StartDate,
		&p.EndDate,
		&p.PeriodType,
		&p.IsCurrent,
		&p.IsClosed,
		&p.ClosedDate,
		&p.ClosedBy,
		&p.Notes,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	return p, err
}

func (r *PgxPeriodRepository) queryOne(ctx context.Context, what, query string, args ...any) (*domain.FinancialPeriod, error) {
	p, err := scanPeriod(r.db(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
		}
		return nil, wrap(err, "failed to find %s", what)
	}
	return &p, nil
}

func (r *PgxPeriodRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.FinancialPeriod, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(err, "failed to query financial periods")
	}
	defer rows.Close()

	periods := []domain.FinancialPeriod{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan financial period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, wrap(rows.Err(), "failed to iterate financial periods")
}

func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	return r.queryOne(ctx, "period "+periodID,
		`SELECT `+periodColumns+` FROM financial_periods WHERE period_id = $1;`, periodID)
}

func (r *PgxPeriodRepository) FindPeriodByIDForUpdate(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	return r.queryOne(ctx, "period "+periodID,
		`SELECT `+periodColumns+` FROM financial_periods WHERE period_id = $1 FOR UPDATE;`, periodID)
}

func (r *PgxPeriodRepository) LockPeriodForDate(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error) {
	return r.queryOne(ctx, "period for "+date.Format(domain.DateLayout),
		`SELECT `+periodColumns+` FROM financial_periods
		WHERE start_date <= $1::date AND end_date >= $1::date
		ORDER BY start_date LIMIT 1
		FOR SHARE;`, domain.DateOnly(date))
}

// LockPeriodSchedule takes a transaction-scoped advisory lock. Overlap checks
// read before they insert, so row locks alone cannot keep ranges disjoint.
func (r *PgxPeriodRepository) LockPeriodSchedule(ctx context.Context) error {
	_, err := r.db(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, periodScheduleLockKey)
	return wrap(err, "failed to lock financial period schedule")
}

func (r *PgxPeriodRepository) ListPeriods(ctx context.Context) ([]domain.FinancialPeriod, error) {
	return r.queryMany(ctx, `SELECT `+periodColumns+` FROM financial_periods ORDER BY start_date;`)
}

func (r *PgxPeriodRepository) FindCurrentPeriod(ctx context.Context) (*domain.FinancialPeriod, error) {
	return r.queryOne(ctx, "current period",
		`SELECT `+periodColumns+` FROM financial_periods WHERE is_current;`)
}

func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error) {
	return r.queryOne(ctx, "period for "+date.Format(domain.DateLayout),
		`SELECT `+periodColumns+` FROM financial_periods
		WHERE start_date <= $1::date AND end_date >= $1::date
		ORDER BY start_date LIMIT 1;`, domain.DateOnly(date))
}

func (r *PgxPeriodRepository) FindOverlappingPeriods(ctx context.Context, dr domain.DateRange, excludeID string) ([]domain.FinancialPeriod, error) {
	return r.queryMany(ctx,
		`SELECT `+periodColumns+` FROM financial_periods
		WHERE start_date <= $2::date AND end_date >= $1::date AND period_id <> $3
		ORDER BY start_date;`,
		domain.DateOnly(dr.Start), domain.DateOnly(dr.End), excludeID)
}

func (r *PgxPeriodRepository) FindLatestPeriod(ctx context.Context) (*domain.FinancialPeriod, error) {
	return r.queryOne(ctx, "latest period",
		`SELECT `+periodColumns+` FROM financial_periods ORDER BY end_date DESC LIMIT 1;`)
}

func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, p domain.FinancialPeriod) error {
	query := `
		INSERT INTO financial_periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		p.PeriodID, p.Name, p.StartDate, p.EndDate, p.PeriodType, p.IsCurrent, p.IsClosed,
		p.ClosedDate, p.ClosedBy, p.Notes, p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy,
	)
	return wrap(err, "failed to save period %s", p.Name)
}

func (r *PgxPeriodRepository) UpdatePeriod(ctx context.Context, p domain.FinancialPeriod) error {
	query := `
		UPDATE financial_periods
		SET name = $2, start_date = $3, end_date = $4, period_type = $5, is_current = $6, is_closed = $7,
			closed_date = $8, closed_by = $9, notes = $10, last_updated_at = $11, last_updated_by = $12
		WHERE period_id = $1;
	`
	ct, err := r.db(ctx).Exec(ctx, query,
		p.PeriodID, p.Name, p.StartDate, p.EndDate, p.PeriodType, p.IsCurrent, p.IsClosed,
		p.ClosedDate, p.ClosedBy, p.Notes, p.LastUpdatedAt, p.LastUpdatedBy,
	)
	if err != nil {
		return wrap(err, "failed to update period %s", p.PeriodID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %s", apperrors.ErrNotFound, p.PeriodID)
	}
	return nil
}

func (r *PgxPeriodRepository) DeletePeriod(ctx context.Context, periodID string) error {
	ct, err := r.db(ctx).Exec(ctx, `DELETE FROM financial_periods WHERE period_id = $1;`, periodID)
	if err != nil {
		return wrap(err, "failed to delete period %s", periodID)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: period %s", apperrors.ErrNotFound, periodID)
	}
	return nil
}

func (r *PgxPeriodRepository) ClearCurrentPeriod(ctx context.Context) error {
	_, err := r.db(ctx).Exec(ctx, `UPDATE financial_periods SET is_current = FALSE WHERE is_current;`)
	return wrap(err, "failed to clear current period")
}

// PgxSettingsRepository stores the single company_settings row.
type PgxSettingsRepository struct {
	BaseRepository
}

// NewSettingsRepository creates a new repository for company settings.
func NewSettingsRepository(pool *pgxpool.Pool) *PgxSettingsRepository {
	return &PgxSettingsRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.SettingsRepository = (*PgxSettingsRepository)(nil)

func (r *PgxSettingsRepository) GetSettings(ctx context.Context) (*domain.CompanySettings, error) {
	query := `
		SELECT fiscal_year_start_month, fiscal_year_start_day, default_reporting_period,
			retained_earnings_account_code, updated_at, updated_by
		FROM company_settings WHERE id = 1;
	`
	var s domain.CompanySettings
	err := r.db(ctx).QueryRow(ctx, query).Scan(
		&s.FiscalYearStartMonth,
		&s.FiscalYearStartDay,
		&s.DefaultReportingPeriod,
		&s.RetainedEarningsAccountCode,
		&s.UpdatedAt,
		&s.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: company settings", apperrors.ErrNotFound)
		}
		return nil, wrap(err, "failed to load company settings")
	}
	return &s, nil
}

func (r *PgxSettingsRepository) SaveSettings(ctx context.Context, s domain.CompanySettings) error {
	query := `
		INSERT INTO company_settings (id, fiscal_year_start_month, fiscal_year_start_day, default_reporting_period,
			retained_earnings_account_code, updated_at, updated_by)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			fiscal_year_start_month = EXCLUDED.fiscal_year_start_month,
			fiscal_year_start_day = EXCLUDED.fiscal_year_start_day,
			default_reporting_period = EXCLUDED.default_reporting_period,
			retained_earnings_account_code = EXCLUDED.retained_earnings_account_code,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by;
	`
	_, err := r.db(ctx).Exec(ctx, query,
		s.FiscalYearStartMonth,
		s.FiscalYearStartDay,
		s.DefaultReportingPeriod,
		s.RetainedEarningsAccountCode,
		s.UpdatedAt,
		s.UpdatedBy,
	)
	return wrap(err, "failed to save company settings")
}

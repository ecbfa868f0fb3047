package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// PeriodReader defines read operations for financial periods
type PeriodReader interface {
	FindPeriodByID(ctx context.Context, periodID string) (*domain.FinancialPeriod, error)

	// ListPeriods returns all periods ordered by start date.
	ListPeriods(ctx context.Context) ([]domain.FinancialPeriod, error)

	// FindCurrentPeriod returns the current period or apperrors.ErrNotFound.
	FindCurrentPeriod(ctx context.Context) (*domain.FinancialPeriod, error)

	// FindPeriodForDate returns the period containing date or apperrors.ErrNotFound.
	FindPeriodForDate(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error)

	// FindOverlappingPeriods returns periods sharing a day with r, ignoring excludeID.
	FindOverlappingPeriods(ctx context.Context, r domain.DateRange, excludeID string) ([]domain.FinancialPeriod, error)

	// FindLatestPeriod returns the period with the latest end date or apperrors.ErrNotFound.
	FindLatestPeriod(ctx context.Context) (*domain.FinancialPeriod, error)
}

// PeriodWriter defines write operations for financial periods
type PeriodWriter interface {
	SavePeriod(ctx context.Context, period domain.FinancialPeriod) error
	UpdatePeriod(ctx context.Context, period domain.FinancialPeriod) error
	DeletePeriod(ctx context.Context, periodID string) error

	// ClearCurrentPeriod unsets the current flag wherever it is set.
	ClearCurrentPeriod(ctx context.Context) error
}

// PeriodLocker takes locks held until the surrounding transaction ends.
// Outside a transaction they are released as soon as the call returns.
type PeriodLocker interface {
	// FindPeriodByIDForUpdate reads a period and locks it against concurrent
	// changes and postings into it.
	FindPeriodByIDForUpdate(ctx context.Context, periodID string) (*domain.FinancialPeriod, error)

	// LockPeriodForDate reads the period containing date under a shared lock so
	// it cannot be closed while a posting into it is in flight. Returns
	// apperrors.ErrNotFound when no period covers date.
	LockPeriodForDate(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error)

	// LockPeriodSchedule serialises every change to the set of periods.
	LockPeriodSchedule(ctx context.Context) error
}

// PeriodRepositoryFacade combines period read and write operations
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
	PeriodLocker
}

// SettingsRepository stores the CompanySettings singleton
type SettingsRepository interface {
	// GetSettings returns the saved settings or apperrors.ErrNotFound.
	GetSettings(ctx context.Context) (*domain.CompanySettings, error)
	SaveSettings(ctx context.Context, settings domain.CompanySettings) error
}

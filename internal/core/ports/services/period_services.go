package services

import (
	"context"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/dto"
)

// FiscalRangeSvc computes default reporting ranges from the company settings
type FiscalRangeSvc interface {
	GetCurrentFiscalYearRange(ctx context.Context) (domain.DateRange, error)
	GetPreviousFiscalYearRange(ctx context.Context) (domain.DateRange, error)
	GetCalendarYearRange(ctx context.Context) (domain.DateRange, error)

	// ResolveNamedRange resolves a named period; "" resolves the settings default.
	ResolveNamedRange(ctx context.Context, name domain.NamedPeriod) (domain.DateRange, error)
}

// PeriodLifecycleSvc manages financial periods through open, current and closed
type PeriodLifecycleSvc interface {
	CreateFinancialPeriod(ctx context.Context, req dto.CreatePeriodRequest, userID string) (*domain.FinancialPeriod, error)
	UpdatePeriod(ctx context.Context, periodID string, req dto.UpdatePeriodRequest, userID string) (*domain.FinancialPeriod, error)
	DeletePeriod(ctx context.Context, periodID string) error
	SetCurrentPeriod(ctx context.Context, periodID, userID string) (*domain.FinancialPeriod, error)
	CloseFinancialYear(ctx context.Context, periodID string, req dto.ClosePeriodRequest, userID string) (*domain.FinancialPeriod, error)
	CreateNextFinancialYear(ctx context.Context, userID string) (*domain.FinancialPeriod, error)
}

// PeriodReaderSvc defines read operations for financial periods
type PeriodReaderSvc interface {
	GetPeriod(ctx context.Context, periodID string) (*domain.FinancialPeriod, error)
	ListPeriods(ctx context.Context) ([]domain.FinancialPeriod, error)

	// GetFinancialPeriodForDate returns the period containing date, or nil when none does.
	GetFinancialPeriodForDate(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error)
}

// PostingGuard decides whether a date may receive postings
type PostingGuard interface {
	// EnsureDateOpen fails with apperrors.ErrPostingPeriodClosed for dates inside a closed period.
	EnsureDateOpen(ctx context.Context, date time.Time) error
}

// PeriodSvcFacade combines all period-related service interfaces
type PeriodSvcFacade interface {
	FiscalRangeSvc
	PeriodLifecycleSvc
	PeriodReaderSvc
	PostingGuard
}

// SettingsSvcFacade reads and updates the company settings
type SettingsSvcFacade interface {
	GetSettings(ctx context.Context) (*domain.CompanySettings, error)
	UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest, userID string) (*domain.CompanySettings, error)
}

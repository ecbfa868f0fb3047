package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
)

type settingsService struct {
	BaseService
	settingsRepo portsrepo.SettingsRepository
	accountRepo  portsrepo.AccountReader
}

// NewSettingsService creates the company settings service.
func NewSettingsService(settingsRepo portsrepo.SettingsRepository, accountRepo portsrepo.AccountReader, opts ...Option) portssvc.SettingsSvcFacade {
	svc := &settingsService{settingsRepo: settingsRepo, accountRepo: accountRepo}
	svc.apply(opts)
	return svc
}

var _ portssvc.SettingsSvcFacade = (*settingsService)(nil)

// loadSettings returns the saved settings, or the defaults when none were saved yet.
func loadSettings(ctx context.Context, repo portsrepo.SettingsRepository) (domain.CompanySettings, error) {
	s, err := repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.DefaultCompanySettings(), nil
		}
		return domain.CompanySettings{}, err
	}
	return *s, nil
}

func (s *settingsService) GetSettings(ctx context.Context) (*domain.CompanySettings, error) {
	settings, err := loadSettings(ctx, s.settingsRepo)
	if err != nil {
		s.LogError(ctx, err, "Failed to load company settings")
		return nil, err
	}
	return &settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest, userID string) (*domain.CompanySettings, error) {
	current, err := loadSettings(ctx, s.settingsRepo)
	if err != nil {
		return nil, err
	}

	updated := domain.CompanySettings{
		FiscalYearStartMonth:        req.FiscalYearStartMonth,
		FiscalYearStartDay:          req.FiscalYearStartDay,
		DefaultReportingPeriod:      domain.NamedPeriod(req.DefaultReportingPeriod),
		RetainedEarningsAccountCode: strings.TrimSpace(req.RetainedEarningsAccountCode),
		UpdatedAt:                   s.Now(),
		UpdatedBy:                   userID,
	}
	if updated.DefaultReportingPeriod == "" {
		updated.DefaultReportingPeriod = current.DefaultReportingPeriod
	}
	if updated.RetainedEarningsAccountCode == "" {
		updated.RetainedEarningsAccountCode = current.RetainedEarningsAccountCode
	}
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, updated.RetainedEarningsAccountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: retained earnings account %s does not exist", apperrors.ErrValidation, updated.RetainedEarningsAccountCode)
		}
		return nil, err
	}
	if account.AccountType != domain.Equity {
		return nil, fmt.Errorf("%w: retained earnings account %s is %s, not EQUITY", apperrors.ErrValidation, account.Code, account.AccountType)
	}

	if err := s.settingsRepo.SaveSettings(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to save company settings")
		return nil, err
	}
	s.LogInfo(ctx, "Company settings updated",
		slog.Int("fiscal_year_start_month", updated.FiscalYearStartMonth),
		slog.Int("fiscal_year_start_day", updated.FiscalYearStartDay))
	return &updated, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
)

// periodService manages financial periods: Open → Current → Closed.
type periodService struct {
	BaseService
	portssvc.PostingGuard
	txManager     portsrepo.TransactionManager
	periodRepo    portsrepo.PeriodRepositoryFacade
	settingsRepo  portsrepo.SettingsRepository
	accountRepo   portsrepo.AccountReader
	reportingRepo portsrepo.ReportingRepository
	journal       portssvc.JournalPostingSvc
}

// NewPeriodService creates the financial period service. journal posts the
// closing entries of CloseFinancialYear.
func NewPeriodService(
	txManager portsrepo.TransactionManager,
	periodRepo portsrepo.PeriodRepositoryFacade,
	settingsRepo portsrepo.SettingsRepository,
	accountRepo portsrepo.AccountReader,
	reportingRepo portsrepo.ReportingRepository,
	guard portssvc.PostingGuard,
	journal portssvc.JournalPostingSvc,
	opts ...Option,
) portssvc.PeriodSvcFacade {
	svc := &periodService{
		PostingGuard:  guard,
		txManager:     txManager,
		periodRepo:    periodRepo,
		settingsRepo:  settingsRepo,
		accountRepo:   accountRepo,
		reportingRepo: reportingRepo,
		journal:       journal,
	}
	svc.apply(opts)
	return svc
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

func (s *periodService) GetCurrentFiscalYearRange(ctx context.Context) (domain.DateRange, error) {
	settings, err := loadSettings(ctx, s.settingsRepo)
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.CurrentFiscalYear(settings, s.Today()), nil
}

func (s *periodService) GetPreviousFiscalYearRange(ctx context.Context) (domain.DateRange, error) {
	settings, err := loadSettings(ctx, s.settingsRepo)
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.PreviousFiscalYear(settings, s.Today()), nil
}

func (s *periodService) GetCalendarYearRange(ctx context.Context) (domain.DateRange, error) {
	return domain.CalendarYear(s.Today()), nil
}

func (s *periodService) ResolveNamedRange(ctx context.Context, name domain.NamedPeriod) (domain.DateRange, error) {
	settings, err := loadSettings(ctx, s.settingsRepo)
	if err != nil {
		return domain.DateRange{}, err
	}
	if name == "" {
		name = settings.DefaultReportingPeriod
	}
	if name == "" {
		name = domain.NamedCurrentFiscalYear
	}
	r, err := domain.ResolveNamedPeriod(name, settings, s.Today())
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return r, nil
}

func (s *periodService) GetPeriod(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	return s.periodRepo.FindPeriodByID(ctx, periodID)
}

func (s *periodService) ListPeriods(ctx context.Context) ([]domain.FinancialPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list financial periods")
		return nil, err
	}
	if periods == nil {
		return []domain.FinancialPeriod{}, nil
	}
	return periods, nil
}

func (s *periodService) GetFinancialPeriodForDate(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error) {
	p, err := s.periodRepo.FindPeriodForDate(ctx, domain.DateOnly(date))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func parsePeriodRange(start, end string) (domain.DateRange, error) {
	from, err := domain.ParseDate(start)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("%w: invalid start date %q", apperrors.ErrValidation, start)
	}
	to, err := domain.ParseDate(end)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("%w: invalid end date %q", apperrors.ErrValidation, end)
	}
	return domain.DateRange{Start: from, End: to}, nil
}

func (s *periodService) CreateFinancialPeriod(ctx context.Context, req dto.CreatePeriodRequest, userID string) (*domain.FinancialPeriod, error) {
	r, err := parsePeriodRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	periodType := domain.PeriodType(req.PeriodType)
	if periodType == "" {
		periodType = domain.PeriodCustom
	}
	var created *domain.FinancialPeriod
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.createPeriod(ctx, req.Name, r, periodType, req.MakeCurrent, req.Notes, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *periodService) createPeriod(ctx context.Context, name string, r domain.DateRange, periodType domain.PeriodType, makeCurrent bool, notes, userID string) (*domain.FinancialPeriod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: period name is required", apperrors.ErrValidation)
	}
	if !periodType.Valid() {
		return nil, fmt.Errorf("%w: unknown period type %q", apperrors.ErrValidation, periodType)
	}
	if r.End.Before(r.Start) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s", apperrors.ErrValidation,
			r.End.Format(domain.DateLayout), r.Start.Format(domain.DateLayout))
	}
	if err := s.periodRepo.LockPeriodSchedule(ctx); err != nil {
		return nil, err
	}
	if err := s.ensureNoOverlap(ctx, r, ""); err != nil {
		return nil, err
	}
	if makeCurrent {
		if err := s.periodRepo.ClearCurrentPeriod(ctx); err != nil {
			return nil, err
		}
	}

	now := s.Now()
	period := domain.FinancialPeriod{
		PeriodID:   uuid.NewString(),
		Name:       name,
		StartDate:  domain.DateOnly(r.Start),
		EndDate:    domain.DateOnly(r.End),
		PeriodType: periodType,
		IsCurrent:  makeCurrent,
		Notes:      notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		s.LogError(ctx, err, "Failed to save financial period", slog.String("name", name))
		return nil, err
	}
	s.LogInfo(ctx, "Financial period created",
		slog.String("period_id", period.PeriodID),
		slog.String("name", period.Name),
		slog.Bool("current", period.IsCurrent))
	return &period, nil
}

func (s *periodService) ensureNoOverlap(ctx context.Context, r domain.DateRange, excludeID string) error {
	overlapping, err := s.periodRepo.FindOverlappingPeriods(ctx, r, excludeID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return fmt.Errorf("%w: %s to %s overlaps %s", apperrors.ErrPeriodOverlap,
			r.Start.Format(domain.DateLayout), r.End.Format(domain.DateLayout), overlapping[0].Name)
	}
	return nil
}

// lockPeriod serialises period writers, then locks the period row itself so
// postings into it wait for the change to commit.
func (s *periodService) lockPeriod(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	if err := s.periodRepo.LockPeriodSchedule(ctx); err != nil {
		return nil, err
	}
	return s.periodRepo.FindPeriodByIDForUpdate(ctx, periodID)
}

func (s *periodService) UpdatePeriod(ctx context.Context, periodID string, req dto.UpdatePeriodRequest, userID string) (*domain.FinancialPeriod, error) {
	var updated *domain.FinancialPeriod
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.lockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if p.IsClosed {
			return fmt.Errorf("%w: %s", apperrors.ErrPeriodAlreadyClosed, p.Name)
		}
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return fmt.Errorf("%w: period name is required", apperrors.ErrValidation)
			}
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Notes != nil {
			p.Notes = *req.Notes
		}
		if req.StartDate != nil || req.EndDate != nil {
			start, end := p.StartDate.Format(domain.DateLayout), p.EndDate.Format(domain.DateLayout)
			if req.StartDate != nil {
				start = *req.StartDate
			}
			if req.EndDate != nil {
				end = *req.EndDate
			}
			r, err := parsePeriodRange(start, end)
			if err != nil {
				return err
			}
			if r.End.Before(r.Start) {
				return fmt.Errorf("%w: end date is before start date", apperrors.ErrValidation)
			}
			if err := s.ensureNoOverlap(ctx, r, p.PeriodID); err != nil {
				return err
			}
			p.StartDate, p.EndDate = r.Start, r.End
		}
		p.LastUpdatedAt = s.Now()
		p.LastUpdatedBy = userID
		if err := s.periodRepo.UpdatePeriod(ctx, *p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *periodService) DeletePeriod(ctx context.Context, periodID string) error {
	return s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.lockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if p.IsClosed {
			return fmt.Errorf("%w: %s", apperrors.ErrPeriodAlreadyClosed, p.Name)
		}
		if p.IsCurrent {
			return fmt.Errorf("%w: %s is the current period", apperrors.ErrValidation, p.Name)
		}
		if err := s.periodRepo.DeletePeriod(ctx, periodID); err != nil {
			return err
		}
		s.LogInfo(ctx, "Financial period deleted", slog.String("period_id", periodID))
		return nil
	})
}

func (s *periodService) SetCurrentPeriod(ctx context.Context, periodID, userID string) (*domain.FinancialPeriod, error) {
	var current *domain.FinancialPeriod
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.lockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if p.IsClosed {
			return fmt.Errorf("%w: %s", apperrors.ErrPeriodNotCurrentEligible, p.Name)
		}
		if !p.IsCurrent {
			if err := s.periodRepo.ClearCurrentPeriod(ctx); err != nil {
				return err
			}
			p.IsCurrent = true
			p.LastUpdatedAt = s.Now()
			p.LastUpdatedBy = userID
			if err := s.periodRepo.UpdatePeriod(ctx, *p); err != nil {
				return err
			}
		}
		current = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Current financial period set", slog.String("period_id", periodID))
	return current, nil
}

func (s *periodService) CloseFinancialYear(ctx context.Context, periodID string, req dto.ClosePeriodRequest, userID string) (*domain.FinancialPeriod, error) {
	var closed *domain.FinancialPeriod
	var closingNumber string
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.lockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if p.IsClosed {
			return fmt.Errorf("%w: %s", apperrors.ErrPeriodAlreadyClosed, p.Name)
		}

		if req.ShouldPostClosingEntries() {
			lines, err := s.closingLines(ctx, p)
			if err != nil {
				return err
			}
			if len(lines) > 0 {
				closingNumber, err = s.journal.Post(ctx, domain.PostingRequest{
					Prefix:        domain.PrefixClosing,
					Date:          p.EndDate,
					Description:   "Year-end closing " + p.Name,
					Lines:         lines,
					ReferenceType: domain.RefPeriodClose,
					ReferenceID:   p.PeriodID,
					AllowInactive: true,
				}, userID)
				if err != nil {
					return fmt.Errorf("posting closing entries: %w", err)
				}
			}
		}

		now := s.Now()
		p.IsClosed = true
		p.IsCurrent = false
		p.ClosedDate = &now
		p.ClosedBy = userID
		if req.Notes != "" {
			if p.Notes != "" {
				p.Notes += "\n"
			}
			p.Notes += req.Notes
		}
		p.LastUpdatedAt = now
		p.LastUpdatedBy = userID
		if err := s.periodRepo.UpdatePeriod(ctx, *p); err != nil {
			return err
		}
		closed = p
		return nil
	})
	if err != nil {
		if !isRejection(err) {
			s.LogError(ctx, err, "Failed to close financial year", slog.String("period_id", periodID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Financial year closed",
		slog.String("period_id", periodID),
		slog.String("closing_entry", closingNumber))
	return closed, nil
}

// closingLines zeroes every revenue and expense account's activity within the
// period into retained earnings. Earlier closing entries are left out so a
// re-opened and re-closed range is not closed twice.
func (s *periodService) closingLines(ctx context.Context, p *domain.FinancialPeriod) ([]domain.JournalLine, error) {
	from, to := p.StartDate, p.EndDate
	aggregates, err := s.reportingRepo.AggregateBalances(ctx, domain.AggregateQuery{
		From:                  &from,
		To:                    &to,
		AccountTypes:          []domain.AccountType{domain.Revenue, domain.Expense},
		ExcludeReferenceTypes: []string{domain.RefPeriodClose},
	})
	if err != nil {
		return nil, err
	}

	desc := "Close " + p.Name + " to retained earnings"
	var lines []domain.JournalLine
	netIncome := decimal.Zero
	for _, a := range aggregates {
		n := a.NormalBalance()
		if n.IsZero() {
			continue
		}
		// Revenue is credit-normal, so closing it takes a debit; expense the reverse.
		line := domain.JournalLine{AccountID: a.AccountID, Description: desc}
		if a.AccountType == domain.Revenue {
			netIncome = netIncome.Add(n)
			line.Debit = n
		} else {
			netIncome = netIncome.Sub(n)
			line.Credit = n
		}
		if n.IsNegative() {
			line = domain.JournalLine{AccountID: a.AccountID, Debit: line.Credit.Neg(), Credit: line.Debit.Neg(), Description: desc}
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 || netIncome.IsZero() {
		return lines, nil
	}

	settings, err := loadSettings(ctx, s.settingsRepo)
	if err != nil {
		return nil, err
	}
	retained, err := s.accountRepo.FindAccountByCode(ctx, settings.RetainedEarningsAccountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: retained earnings account %s", apperrors.ErrInactiveOrMissingAccount, settings.RetainedEarningsAccountCode)
		}
		return nil, err
	}
	re := domain.JournalLine{AccountID: retained.AccountID, Description: desc}
	if netIncome.IsPositive() {
		re.Credit = netIncome
	} else {
		re.Debit = netIncome.Neg()
	}
	return append(lines, re), nil
}

func (s *periodService) CreateNextFinancialYear(ctx context.Context, userID string) (*domain.FinancialPeriod, error) {
	var created *domain.FinancialPeriod
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.periodRepo.LockPeriodSchedule(ctx); err != nil {
			return err
		}
		var r domain.DateRange
		latest, err := s.periodRepo.FindLatestPeriod(ctx)
		switch {
		case err == nil:
			r = domain.YearAfter(latest.EndDate)
		case errors.Is(err, apperrors.ErrNotFound):
			settings, err := loadSettings(ctx, s.settingsRepo)
			if err != nil {
				return err
			}
			r = domain.CurrentFiscalYear(settings, s.Today())
		default:
			return err
		}

		makeCurrent := false
		if _, err := s.periodRepo.FindCurrentPeriod(ctx); err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			makeCurrent = true
		}
		created, err = s.createPeriod(ctx, domain.FiscalYearName(r), r, domain.PeriodFiscalYear, makeCurrent, "", userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

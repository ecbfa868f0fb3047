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

// PeriodRepository keeps financial periods and the company settings singleton.
type PeriodRepository struct {
	store *Store
}

// NewPeriodRepository creates a period repository over store.
func NewPeriodRepository(store *Store) *PeriodRepository {
	return &PeriodRepository{store: store}
}

var _ portsrepo.PeriodRepositoryFacade = (*PeriodRepository)(nil)

func sortedPeriods(st *state) []domain.FinancialPeriod {
	out := make([]domain.FinancialPeriod, 0, len(st.periods))
	for _, p := range st.periods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (r *PeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	var out *domain.FinancialPeriod
	err := r.store.read(ctx, func(st *state) error {
		p, ok := st.periods[periodID]
		if !ok {
			return fmt.Errorf("%w: financial period %s", apperrors.ErrNotFound, periodID)
		}
		out = &p
		return nil
	})
	return out, err
}

// WithinTransaction holds the store's write lock for the whole scope, so the
// locking reads below need nothing beyond their plain counterparts.

func (r *PeriodRepository) FindPeriodByIDForUpdate(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	return r.FindPeriodByID(ctx, periodID)
}

func (r *PeriodRepository) LockPeriodForDate(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error) {
	return r.FindPeriodForDate(ctx, date)
}

func (r *PeriodRepository) LockPeriodSchedule(ctx context.Context) error {
	return nil
}

func (r *PeriodRepository) ListPeriods(ctx context.Context) ([]domain.FinancialPeriod, error) {
	var out []domain.FinancialPeriod
	err := r.store.read(ctx, func(st *state) error {
		out = sortedPeriods(st)
		return nil
	})
	return out, err
}

func (r *PeriodRepository) FindCurrentPeriod(ctx context.Context) (*domain.FinancialPeriod, error) {
	var out *domain.FinancialPeriod
	err := r.store.read(ctx, func(st *state) error {
		for _, p := range st.periods {
			if p.IsCurrent {
				found := p
				out = &found
				return nil
			}
		}
		return fmt.Errorf("%w: no current financial period", apperrors.ErrNotFound)
	})
	return out, err
}

func (r *PeriodRepository) FindPeriodForDate(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error) {
	var out *domain.FinancialPeriod
	err := r.store.read(ctx, func(st *state) error {
		for _, p := range sortedPeriods(st) {
			if p.Contains(date) {
				found := p
				out = &found
				return nil
			}
		}
		return fmt.Errorf("%w: no financial period covers %s", apperrors.ErrNotFound, date.Format(domain.DateLayout))
	})
	return out, err
}

func (r *PeriodRepository) FindOverlappingPeriods(ctx context.Context, dr domain.DateRange, excludeID string) ([]domain.FinancialPeriod, error) {
	var out []domain.FinancialPeriod
	err := r.store.read(ctx, func(st *state) error {
		for _, p := range sortedPeriods(st) {
			if p.PeriodID != excludeID && p.Range().Overlaps(dr) {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func (r *PeriodRepository) FindLatestPeriod(ctx context.Context) (*domain.FinancialPeriod, error) {
	var out *domain.FinancialPeriod
	err := r.store.read(ctx, func(st *state) error {
		for _, p := range st.periods {
			if out == nil || p.EndDate.After(out.EndDate) {
				found := p
				out = &found
			}
		}
		if out == nil {
			return fmt.Errorf("%w: no financial periods", apperrors.ErrNotFound)
		}
		return nil
	})
	return out, err
}

func anotherCurrent(st *state, p domain.FinancialPeriod) bool {
	if !p.IsCurrent {
		return false
	}
	for id, other := range st.periods {
		if id != p.PeriodID && other.IsCurrent {
			return true
		}
	}
	return false
}

func (r *PeriodRepository) SavePeriod(ctx context.Context, period domain.FinancialPeriod) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.periods[period.PeriodID]; ok {
			return fmt.Errorf("%w: financial period %s", apperrors.ErrDuplicate, period.PeriodID)
		}
		if anotherCurrent(st, period) {
			return fmt.Errorf("%w: another period is already current", apperrors.ErrConflict)
		}
		st.periods[period.PeriodID] = period
		return nil
	})
}

func (r *PeriodRepository) UpdatePeriod(ctx context.Context, period domain.FinancialPeriod) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.periods[period.PeriodID]; !ok {
			return fmt.Errorf("%w: financial period %s", apperrors.ErrNotFound, period.PeriodID)
		}
		if anotherCurrent(st, period) {
			return fmt.Errorf("%w: another period is already current", apperrors.ErrConflict)
		}
		st.periods[period.PeriodID] = period
		return nil
	})
}

func (r *PeriodRepository) DeletePeriod(ctx context.Context, periodID string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.periods[periodID]; !ok {
			return fmt.Errorf("%w: financial period %s", apperrors.ErrNotFound, periodID)
		}
		delete(st.periods, periodID)
		return nil
	})
}

func (r *PeriodRepository) ClearCurrentPeriod(ctx context.Context) error {
	return r.store.write(ctx, func(st *state) error {
		for id, p := range st.periods {
			if p.IsCurrent {
				p.IsCurrent = false
				st.periods[id] = p
			}
		}
		return nil
	})
}

// SettingsRepository stores the company settings singleton.
type SettingsRepository struct {
	store *Store
}

// NewSettingsRepository creates a settings repository over store.
func NewSettingsRepository(store *Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

var _ portsrepo.SettingsRepository = (*SettingsRepository)(nil)

func (r *SettingsRepository) GetSettings(ctx context.Context) (*domain.CompanySettings, error) {
	var out *domain.CompanySettings
	err := r.store.read(ctx, func(st *state) error {
		if st.settings == nil {
			return fmt.Errorf("%w: company settings", apperrors.ErrNotFound)
		}
		s := *st.settings
		out = &s
		return nil
	})
	return out, err
}

func (r *SettingsRepository) SaveSettings(ctx context.Context, settings domain.CompanySettings) error {
	return r.store.write(ctx, func(st *state) error {
		st.settings = &settings
		return nil
	})
}

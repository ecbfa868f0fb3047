package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentFiscalYear(t *testing.T) {
	tests := []struct {
		name      string
		month     int
		day       int
		today     time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"calendar fiscal year", 1, 1, date(2024, 6, 1), date(2024, 1, 1), date(2024, 12, 31)},
		{"april start after start", 4, 1, date(2024, 6, 1), date(2024, 4, 1), date(2025, 3, 31)},
		{"april start before start", 4, 1, date(2024, 2, 10), date(2023, 4, 1), date(2024, 3, 31)},
		{"on the start day", 7, 1, date(2024, 7, 1), date(2024, 7, 1), date(2025, 6, 30)},
		{"day before the start", 7, 1, date(2024, 6, 30), date(2023, 7, 1), date(2024, 6, 30)},
		{"mid month start", 10, 15, date(2025, 1, 3), date(2024, 10, 15), date(2025, 10, 14)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultCompanySettings()
			s.FiscalYearStartMonth = tt.month
			s.FiscalYearStartDay = tt.day

			got := domain.CurrentFiscalYear(s, tt.today)
			assert.Equal(t, tt.wantStart, got.Start)
			assert.Equal(t, tt.wantEnd, got.End)
		})
	}
}

func TestPreviousFiscalYear(t *testing.T) {
	s := domain.DefaultCompanySettings()
	s.FiscalYearStartMonth = 4

	got := domain.PreviousFiscalYear(s, date(2024, 6, 1))
	assert.Equal(t, date(2023, 4, 1), got.Start)
	assert.Equal(t, date(2024, 3, 31), got.End)
}

func TestCalendarYear_IgnoresFiscalSettings(t *testing.T) {
	got := domain.CalendarYear(date(2024, 2, 29))
	assert.Equal(t, date(2024, 1, 1), got.Start)
	assert.Equal(t, date(2024, 12, 31), got.End)
}

func TestResolveNamedPeriod(t *testing.T) {
	s := domain.DefaultCompanySettings()
	today := date(2025, 3, 15)

	allTime, err := domain.ResolveNamedPeriod(domain.NamedAllTime, s, today)
	require.NoError(t, err)
	assert.True(t, allTime.Start.IsZero())
	assert.Equal(t, today, allTime.End)

	prev, err := domain.ResolveNamedPeriod(domain.NamedPreviousFiscalYear, s, today)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 1), prev.Start)

	_, err = domain.ResolveNamedPeriod("last-week", s, today)
	assert.Error(t, err)
}

func TestYearAfterAndName(t *testing.T) {
	next := domain.YearAfter(date(2024, 12, 31))
	assert.Equal(t, date(2025, 1, 1), next.Start)
	assert.Equal(t, date(2025, 12, 31), next.End)
	assert.Equal(t, "FY2025", domain.FiscalYearName(next))

	straddling := domain.YearAfter(date(2025, 3, 31))
	assert.Equal(t, date(2026, 3, 31), straddling.End)
	assert.Equal(t, "FY2025-26", domain.FiscalYearName(straddling))
}

func TestCompanySettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.CompanySettings)
		wantErr bool
	}{
		{"defaults", func(*domain.CompanySettings) {}, false},
		{"month zero", func(s *domain.CompanySettings) { s.FiscalYearStartMonth = 0 }, true},
		{"month thirteen", func(s *domain.CompanySettings) { s.FiscalYearStartMonth = 13 }, true},
		{"april 31", func(s *domain.CompanySettings) { s.FiscalYearStartMonth = 4; s.FiscalYearStartDay = 31 }, true},
		{"february 29", func(s *domain.CompanySettings) { s.FiscalYearStartMonth = 2; s.FiscalYearStartDay = 29 }, true},
		{"unknown period", func(s *domain.CompanySettings) { s.DefaultReportingPeriod = "fortnight" }, true},
		{"missing retained earnings", func(s *domain.CompanySettings) { s.RetainedEarningsAccountCode = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultCompanySettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

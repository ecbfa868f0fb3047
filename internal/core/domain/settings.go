package domain

import (
	"fmt"
	"time"
)

// NamedPeriod is a report range expressed relative to today and the fiscal settings.
type NamedPeriod string

const (
	NamedCurrentFiscalYear  NamedPeriod = "current-fy"
	NamedPreviousFiscalYear NamedPeriod = "previous-fy"
	NamedCalendarYear       NamedPeriod = "calendar-year"
	NamedAllTime            NamedPeriod = "all-time"
)

// Valid reports whether n is a known named period.
func (n NamedPeriod) Valid() bool {
	switch n {
	case NamedCurrentFiscalYear, NamedPreviousFiscalYear, NamedCalendarYear, NamedAllTime:
		return true
	}
	return false
}

// DefaultRetainedEarningsCode is the equity account closing entries post into
// unless settings say otherwise.
const DefaultRetainedEarningsCode = "3200"

// CompanySettings is the singleton record of fiscal preferences.
type CompanySettings struct {
	FiscalYearStartMonth        int         `json:"fiscalYearStartMonth"`
	FiscalYearStartDay          int         `json:"fiscalYearStartDay"`
	DefaultReportingPeriod      NamedPeriod `json:"defaultReportingPeriod"`
	RetainedEarningsAccountCode string      `json:"retainedEarningsAccountCode"`
	UpdatedAt                   time.Time   `json:"updatedAt"`
	UpdatedBy                   string      `json:"updatedBy"`
}

// DefaultCompanySettings is used until settings are first saved.
func DefaultCompanySettings() CompanySettings {
	return CompanySettings{
		FiscalYearStartMonth:        1,
		FiscalYearStartDay:          1,
		DefaultReportingPeriod:      NamedCurrentFiscalYear,
		RetainedEarningsAccountCode: DefaultRetainedEarningsCode,
	}
}

// Validate checks the fiscal start is a real calendar day. February 29 is
// rejected since it does not exist every year.
func (s CompanySettings) Validate() error {
	if s.FiscalYearStartMonth < 1 || s.FiscalYearStartMonth > 12 {
		return fmt.Errorf("fiscal year start month must be between 1 and 12, got %d", s.FiscalYearStartMonth)
	}
	maxDay := daysIn(time.Month(s.FiscalYearStartMonth), 2001)
	if s.FiscalYearStartDay < 1 || s.FiscalYearStartDay > maxDay {
		return fmt.Errorf("fiscal year start day must be between 1 and %d for month %d, got %d", maxDay, s.FiscalYearStartMonth, s.FiscalYearStartDay)
	}
	if s.DefaultReportingPeriod != "" && !s.DefaultReportingPeriod.Valid() {
		return fmt.Errorf("unknown default reporting period %q", s.DefaultReportingPeriod)
	}
	if s.RetainedEarningsAccountCode == "" {
		return fmt.Errorf("retained earnings account code is required")
	}
	return nil
}

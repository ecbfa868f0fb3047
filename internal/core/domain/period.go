package domain

import (
	"time"
)

// PeriodType classifies a financial period.
type PeriodType string

const (
	PeriodFiscalYear PeriodType = "FISCAL_YEAR"
	PeriodQuarter    PeriodType = "QUARTER"
	PeriodMonth      PeriodType = "MONTH"
	PeriodCustom     PeriodType = "CUSTOM"
)

// Valid reports whether t is a known period type.
func (t PeriodType) Valid() bool {
	switch t {
	case PeriodFiscalYear, PeriodQuarter, PeriodMonth, PeriodCustom:
		return true
	}
	return false
}

// PeriodStatus is the derived lifecycle state of a period.
type PeriodStatus string

const (
	PeriodOpen    PeriodStatus = "OPEN"
	PeriodCurrent PeriodStatus = "CURRENT"
	PeriodClosed  PeriodStatus = "CLOSED"
)

// FinancialPeriod is a bounded date range with an open, current, closed lifecycle.
type FinancialPeriod struct {
	PeriodID   string     `json:"periodID"`
	Name       string     `json:"name"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"`
	PeriodType PeriodType `json:"periodType"`
	IsCurrent  bool       `json:"isCurrent"`
	IsClosed   bool       `json:"isClosed"`
	ClosedDate *time.Time `json:"closedDate,omitempty"`
	ClosedBy   string     `json:"closedBy,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	AuditFields
}

// Status derives the state machine position of the period.
func (p FinancialPeriod) Status() PeriodStatus {
	switch {
	case p.IsClosed:
		return PeriodClosed
	case p.IsCurrent:
		return PeriodCurrent
	default:
		return PeriodOpen
	}
}

// Contains reports whether date falls within [StartDate, EndDate].
func (p FinancialPeriod) Contains(date time.Time) bool {
	return p.Range().Contains(date)
}

// Range returns the period's dates as a DateRange.
func (p FinancialPeriod) Range() DateRange {
	return DateRange{Start: p.StartDate, End: p.EndDate}
}

// DateRange is an inclusive calendar date range. A zero Start means unbounded.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether date falls within the range, comparing calendar dates only.
func (r DateRange) Contains(date time.Time) bool {
	d := DateOnly(date)
	if !r.Start.IsZero() && d.Before(DateOnly(r.Start)) {
		return false
	}
	return !d.After(DateOnly(r.End))
}

// Overlaps reports whether two ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return !DateOnly(r.Start).After(DateOnly(other.End)) && !DateOnly(other.Start).After(DateOnly(r.End))
}

package domain

import (
	"fmt"
	"time"
)

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// fiscalStartIn returns the fiscal year start date that falls in the given calendar year.
func fiscalStartIn(s CompanySettings, year int) time.Time {
	m := time.Month(s.FiscalYearStartMonth)
	d := s.FiscalYearStartDay
	if maxDay := daysIn(m, year); d > maxDay {
		d = maxDay
	}
	return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
}

// CurrentFiscalYear returns the fiscal year containing today.
func CurrentFiscalYear(s CompanySettings, today time.Time) DateRange {
	today = DateOnly(today)
	start := fiscalStartIn(s, today.Year())
	if today.Before(start) {
		start = fiscalStartIn(s, today.Year()-1)
	}
	next := fiscalStartIn(s, start.Year()+1)
	return DateRange{Start: start, End: next.AddDate(0, 0, -1)}
}

// PreviousFiscalYear returns the fiscal year before the one containing today.
func PreviousFiscalYear(s CompanySettings, today time.Time) DateRange {
	current := CurrentFiscalYear(s, today)
	return DateRange{
		Start: fiscalStartIn(s, current.Start.Year()-1),
		End:   current.Start.AddDate(0, 0, -1),
	}
}

// CalendarYear returns January 1 to December 31 of today's year.
func CalendarYear(today time.Time) DateRange {
	y := today.Year()
	return DateRange{
		Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// ResolveNamedPeriod turns a named period into concrete dates. all-time has a
// zero start and ends today.
func ResolveNamedPeriod(name NamedPeriod, s CompanySettings, today time.Time) (DateRange, error) {
	switch name {
	case NamedCurrentFiscalYear:
		return CurrentFiscalYear(s, today), nil
	case NamedPreviousFiscalYear:
		return PreviousFiscalYear(s, today), nil
	case NamedCalendarYear:
		return CalendarYear(today), nil
	case NamedAllTime:
		return DateRange{End: DateOnly(today)}, nil
	}
	return DateRange{}, fmt.Errorf("unknown named period %q", name)
}

// YearAfter returns the one-year range starting the day after end.
func YearAfter(end time.Time) DateRange {
	start := DateOnly(end).AddDate(0, 0, 1)
	return DateRange{Start: start, End: start.AddDate(1, 0, -1)}
}

// FiscalYearName names a fiscal year range: FY2025 when it sits in one calendar
// year, FY2025-26 when it straddles two.
func FiscalYearName(r DateRange) string {
	if r.Start.Year() == r.End.Year() {
		return fmt.Sprintf("FY%d", r.Start.Year())
	}
	return fmt.Sprintf("FY%d-%02d", r.Start.Year(), r.End.Year()%100)
}

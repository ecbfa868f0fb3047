package dto

import (
	"time"

	"github.com/SscSPs/bizledger/internal/core/domain"
)

// CreatePeriodRequest defines the data needed to create a financial period.
type CreatePeriodRequest struct {
	Name        string `json:"name" binding:"required"`
	StartDate   string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" binding:"required,datetime=2006-01-02"`
	PeriodType  string `json:"periodType" binding:"omitempty,oneof=FISCAL_YEAR QUARTER MONTH CUSTOM"`
	MakeCurrent bool   `json:"makeCurrent"`
	Notes       string `json:"notes"`
}

// UpdatePeriodRequest changes an open period. Closed periods are immutable.
type UpdatePeriodRequest struct {
	Name      *string `json:"name"`
	StartDate *string `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Notes     *string `json:"notes"`
}

// ClosePeriodRequest controls year-end closing.
type ClosePeriodRequest struct {
	Notes string `json:"notes"`
	// PostClosingEntries defaults to true when omitted.
	PostClosingEntries *bool `json:"postClosingEntries"`
}

// ShouldPostClosingEntries resolves the default for PostClosingEntries.
func (r ClosePeriodRequest) ShouldPostClosingEntries() bool {
	return r.PostClosingEntries == nil || *r.PostClosingEntries
}

// PeriodResponse defines the data returned for a financial period.
type PeriodResponse struct {
	PeriodID   string              `json:"periodID"`
	Name       string              `json:"name"`
	StartDate  string              `json:"startDate"`
	EndDate    string              `json:"endDate"`
	PeriodType domain.PeriodType   `json:"periodType"`
	Status     domain.PeriodStatus `json:"status"`
	IsCurrent  bool                `json:"isCurrent"`
	IsClosed   bool                `json:"isClosed"`
	ClosedDate *time.Time          `json:"closedDate,omitempty"`
	ClosedBy   string              `json:"closedBy,omitempty"`
	Notes      string              `json:"notes,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	CreatedBy  string              `json:"createdBy"`
}

// DateRangeResponse is a resolved date range.
type DateRangeResponse struct {
	Name  string `json:"name"`
	Start string `json:"start,omitempty"`
	End   string `json:"end"`
}

// ToPeriodResponse converts a domain.FinancialPeriod to PeriodResponse DTO
func ToPeriodResponse(p *domain.FinancialPeriod) PeriodResponse {
	return PeriodResponse{
		PeriodID:   p.PeriodID,
		Name:       p.Name,
		StartDate:  p.StartDate.Format(domain.DateLayout),
		EndDate:    p.EndDate.Format(domain.DateLayout),
		PeriodType: p.PeriodType,
		Status:     p.Status(),
		IsCurrent:  p.IsCurrent,
		IsClosed:   p.IsClosed,
		ClosedDate: p.ClosedDate,
		ClosedBy:   p.ClosedBy,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
		CreatedBy:  p.CreatedBy,
	}
}

// ToListPeriodResponse converts a slice of periods.
func ToListPeriodResponse(periods []domain.FinancialPeriod) []PeriodResponse {
	res := make([]PeriodResponse, len(periods))
	for i := range periods {
		res[i] = ToPeriodResponse(&periods[i])
	}
	return res
}

// ToDateRangeResponse formats a resolved range.
func ToDateRangeResponse(name string, r domain.DateRange) DateRangeResponse {
	res := DateRangeResponse{Name: name, End: r.End.Format(domain.DateLayout)}
	if !r.Start.IsZero() {
		res.Start = r.Start.Format(domain.DateLayout)
	}
	return res
}

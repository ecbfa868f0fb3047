package dto

// UpdateSettingsRequest replaces the company fiscal settings.
type UpdateSettingsRequest struct {
	FiscalYearStartMonth        int    `json:"fiscalYearStartMonth" binding:"required,min=1,max=12"`
	FiscalYearStartDay          int    `json:"fiscalYearStartDay" binding:"required,min=1,max=31"`
	DefaultReportingPeriod      string `json:"defaultReportingPeriod" binding:"omitempty,oneof=current-fy previous-fy calendar-year all-time"`
	RetainedEarningsAccountCode string `json:"retainedEarningsAccountCode"`
}

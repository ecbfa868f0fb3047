package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// reportingHandler serves the financial statements.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
	periodService    portssvc.PeriodSvcFacade
}

func newReportingHandler(rs portssvc.ReportingSvcFacade, ps portssvc.PeriodSvcFacade) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		periodService:    ps,
	}
}

// registerReportingRoutes registers the report routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade, periodService portssvc.PeriodSvcFacade) {
	h := newReportingHandler(reportingService, periodService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.GET("/income-statement", h.getIncomeStatement)
		reports.GET("/cash-flow", h.getCashFlow)
		reports.GET("/general-ledger", h.getGeneralLedger)
	}
}

// bindReportParams binds and parses the shared report query parameters.
func bindReportParams(c *gin.Context) (dto.ReportQueryParams, bool) {
	var params dto.ReportQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return params, false
	}
	return params, true
}

// parseOptionalDate parses a YYYY-MM-DD value that binding already validated.
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusBadRequest, "dates must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	return &d, nil
}

// resolveAsOf picks the explicit asOf date, then the end of the named period.
// A zero result leaves the default of today to the reporting service.
func (h *reportingHandler) resolveAsOf(c *gin.Context, params dto.ReportQueryParams) (time.Time, error) {
	asOf, err := parseOptionalDate(params.AsOf)
	if err != nil {
		return time.Time{}, err
	}
	if asOf != nil {
		return *asOf, nil
	}
	if params.Period != "" {
		r, err := h.periodService.ResolveNamedRange(c.Request.Context(), domain.NamedPeriod(params.Period))
		if err != nil {
			return time.Time{}, err
		}
		return r.End, nil
	}
	return time.Time{}, nil
}

// resolveRange starts from the named (or default) period and lets from/to override either end.
func (h *reportingHandler) resolveRange(c *gin.Context, params dto.ReportQueryParams) (domain.DateRange, error) {
	from, err := parseOptionalDate(params.From)
	if err != nil {
		return domain.DateRange{}, err
	}
	to, err := parseOptionalDate(params.To)
	if err != nil {
		return domain.DateRange{}, err
	}
	if from != nil && to != nil {
		return domain.DateRange{Start: *from, End: *to}, nil
	}

	r, err := h.periodService.ResolveNamedRange(c.Request.Context(), domain.NamedPeriod(params.Period))
	if err != nil {
		return domain.DateRange{}, err
	}
	if from != nil {
		r.Start = *from
	}
	if to != nil {
		r.End = *to
	}
	return r, nil
}

// getTrialBalance godoc
// @Summary Get trial balance
// @Description Per-account debit and credit totals up to a date, with the balance check
// @Tags reports
// @Produce  json
// @Param   asOf query string false "As-of date (YYYY-MM-DD)"
// @Param   period query string false "Named period whose end is used when asOf is absent" Enums(current-fy, previous-fy, calendar-year, all-time)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} errorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	params, ok := bindReportParams(c)
	if !ok {
		return
	}
	asOf, err := h.resolveAsOf(c, params)
	if err != nil {
		respondError(c, err, "Invalid report date")
		return
	}
	report, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to generate trial balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(report))
}

// getBalanceSheet godoc
// @Summary Get balance sheet
// @Description Assets, liabilities and equity as of a date, with unclosed earnings folded into equity
// @Tags reports
// @Produce  json
// @Param   asOf query string false "As-of date (YYYY-MM-DD)"
// @Param   period query string false "Named period whose end is used when asOf is absent"
// @Success 200 {object} domain.BalanceSheetReport
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	params, ok := bindReportParams(c)
	if !ok {
		return
	}
	asOf, err := h.resolveAsOf(c, params)
	if err != nil {
		respondError(c, err, "Invalid report date")
		return
	}
	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getIncomeStatement godoc
// @Summary Get income statement
// @Tags reports
// @Produce  json
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Param   period query string false "Named period, defaults to the company setting"
// @Success 200 {object} domain.IncomeStatementReport
// @Security BearerAuth
// @Router /reports/income-statement [get]
func (h *reportingHandler) getIncomeStatement(c *gin.Context) {
	params, ok := bindReportParams(c)
	if !ok {
		return
	}
	r, err := h.resolveRange(c, params)
	if err != nil {
		respondError(c, err, "Invalid report range")
		return
	}
	report, err := h.reportingService.IncomeStatement(c.Request.Context(), r)
	if err != nil {
		respondError(c, err, "Failed to generate income statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getCashFlow godoc
// @Summary Get cash flow statement
// @Tags reports
// @Produce  json
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Param   period query string false "Named period, defaults to the company setting"
// @Success 200 {object} domain.CashFlowReport
// @Security BearerAuth
// @Router /reports/cash-flow [get]
func (h *reportingHandler) getCashFlow(c *gin.Context) {
	params, ok := bindReportParams(c)
	if !ok {
		return
	}
	r, err := h.resolveRange(c, params)
	if err != nil {
		respondError(c, err, "Invalid report range")
		return
	}
	report, err := h.reportingService.CashFlowStatement(c.Request.Context(), r)
	if err != nil {
		respondError(c, err, "Failed to generate cash flow statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getGeneralLedger godoc
// @Summary Get general ledger
// @Description Entries newest first with their origin described, optionally for one account and date range
// @Tags reports
// @Produce  json
// @Param   accountCode query string false "Account code"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Param   limit query int false "Page size (1-1000)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.GeneralLedgerResponse
// @Failure 404 {object} errorResponse "Account not found"
// @Security BearerAuth
// @Router /reports/general-ledger [get]
func (h *reportingHandler) getGeneralLedger(c *gin.Context) {
	params, ok := bindReportParams(c)
	if !ok {
		return
	}
	from, err := parseOptionalDate(params.From)
	if err != nil {
		respondError(c, err, "Invalid report range")
		return
	}
	to, err := parseOptionalDate(params.To)
	if err != nil {
		respondError(c, err, "Invalid report range")
		return
	}
	report, err := h.reportingService.GeneralLedger(c.Request.Context(), domain.GeneralLedgerFilter{
		AccountCode: params.AccountCode,
		From:        from,
		To:          to,
	})
	if err != nil {
		respondError(c, err, "Failed to generate general ledger")
		return
	}

	lines, next, err := pagination.Page(report.Lines, params.Limit, params.NextToken, func(l domain.GeneralLedgerLine) string {
		return pagination.EntryToken(l.TransactionNumber, l.LineNo)
	})
	if err != nil {
		respondError(c, apperrors.NewAppError(http.StatusBadRequest, err.Error(), apperrors.ErrValidation), "Invalid pagination token")
		return
	}
	report.Lines = lines
	c.JSON(http.StatusOK, dto.GeneralLedgerResponse{GeneralLedgerReport: report, NextToken: next})
}

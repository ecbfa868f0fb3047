package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// periodHandler handles financial periods and the company fiscal settings.
type periodHandler struct {
	periodService   portssvc.PeriodSvcFacade
	settingsService portssvc.SettingsSvcFacade
}

func newPeriodHandler(ps portssvc.PeriodSvcFacade, ss portssvc.SettingsSvcFacade) *periodHandler {
	return &periodHandler{
		periodService:   ps,
		settingsService: ss,
	}
}

// registerPeriodRoutes registers the period, named range and settings routes.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade, settingsService portssvc.SettingsSvcFacade) {
	h := newPeriodHandler(periodService, settingsService)

	periods := rg.Group("/periods")
	{
		periods.GET("", h.listPeriods)
		periods.POST("", h.createPeriod)
		periods.GET("/for-date", h.periodForDate)
		periods.POST("/next-year", h.createNextYear)
		periods.GET("/:periodID", h.getPeriod)
		periods.PUT("/:periodID", h.updatePeriod)
		periods.DELETE("/:periodID", h.deletePeriod)
		periods.POST("/:periodID/current", h.setCurrentPeriod)
		periods.POST("/:periodID/close", h.closePeriod)
	}

	rg.GET("/ranges/:name", h.resolveRange)

	settings := rg.Group("/settings")
	{
		settings.GET("", h.getSettings)
		settings.PUT("", h.updateSettings)
	}
}

// listPeriods godoc
// @Summary List financial periods
// @Tags periods
// @Produce  json
// @Success 200 {array} dto.PeriodResponse
// @Security BearerAuth
// @Router /periods [get]
func (h *periodHandler) listPeriods(c *gin.Context) {
	periods, err := h.periodService.ListPeriods(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list periods")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPeriodResponse(periods))
}

// createPeriod godoc
// @Summary Create a financial period
// @Description Periods may not overlap and must end after they start
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   period body dto.CreatePeriodRequest true "Period details"
// @Success 201 {object} dto.PeriodResponse
// @Failure 400 {object} errorResponse "Invalid dates"
// @Failure 409 {object} errorResponse "Overlaps an existing period"
// @Security BearerAuth
// @Router /periods [post]
func (h *periodHandler) createPeriod(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	period, err := h.periodService.CreateFinancialPeriod(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create period")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Financial period created",
		slog.String("period_id", period.PeriodID),
		slog.String("name", period.Name))
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

// getPeriod godoc
// @Summary Get a financial period
// @Tags periods
// @Produce  json
// @Param   periodID path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Failure 404 {object} errorResponse "Period not found"
// @Security BearerAuth
// @Router /periods/{periodID} [get]
func (h *periodHandler) getPeriod(c *gin.Context) {
	period, err := h.periodService.GetPeriod(c.Request.Context(), c.Param("periodID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// periodForDate godoc
// @Summary Find the period containing a date
// @Tags periods
// @Produce  json
// @Param   date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.PeriodResponse
// @Success 204 "No period covers the date"
// @Failure 400 {object} errorResponse "Invalid date"
// @Security BearerAuth
// @Router /periods/for-date [get]
func (h *periodHandler) periodForDate(c *gin.Context) {
	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		respondError(c, apperrors.NewAppError(http.StatusBadRequest, "date must be YYYY-MM-DD", apperrors.ErrValidation), "Invalid date")
		return
	}
	period, err := h.periodService.GetFinancialPeriodForDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, err, "Failed to look up period")
		return
	}
	if period == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// updatePeriod godoc
// @Summary Update an open financial period
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   periodID path string true "Period ID"
// @Param   period body dto.UpdatePeriodRequest true "Fields to update"
// @Success 200 {object} dto.PeriodResponse
// @Failure 409 {object} errorResponse "Period closed or overlapping"
// @Security BearerAuth
// @Router /periods/{periodID} [put]
func (h *periodHandler) updatePeriod(c *gin.Context) {
	var req dto.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	period, err := h.periodService.UpdatePeriod(c.Request.Context(), c.Param("periodID"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// deletePeriod godoc
// @Summary Delete an open financial period
// @Tags periods
// @Param   periodID path string true "Period ID"
// @Success 204 "No Content"
// @Failure 409 {object} errorResponse "Period closed"
// @Security BearerAuth
// @Router /periods/{periodID} [delete]
func (h *periodHandler) deletePeriod(c *gin.Context) {
	if err := h.periodService.DeletePeriod(c.Request.Context(), c.Param("periodID")); err != nil {
		respondError(c, err, "Failed to delete period")
		return
	}
	c.Status(http.StatusNoContent)
}

// setCurrentPeriod godoc
// @Summary Mark a period as current
// @Description Clears the flag on every other period
// @Tags periods
// @Produce  json
// @Param   periodID path string true "Period ID"
// @Success 200 {object} dto.PeriodResponse
// @Security BearerAuth
// @Router /periods/{periodID}/current [post]
func (h *periodHandler) setCurrentPeriod(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	period, err := h.periodService.SetCurrentPeriod(c.Request.Context(), c.Param("periodID"), userID)
	if err != nil {
		respondError(c, err, "Failed to set current period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// closePeriod godoc
// @Summary Close a financial year
// @Description Optionally posts closing entries into retained earnings, then locks the period against postings
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   periodID path string true "Period ID"
// @Param   body body dto.ClosePeriodRequest false "Closing options"
// @Success 200 {object} dto.PeriodResponse
// @Failure 409 {object} errorResponse "Already closed"
// @Security BearerAuth
// @Router /periods/{periodID}/close [post]
func (h *periodHandler) closePeriod(c *gin.Context) {
	var req dto.ClosePeriodRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err, "request format")
			return
		}
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	period, err := h.periodService.CloseFinancialYear(c.Request.Context(), c.Param("periodID"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to close period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// createNextYear godoc
// @Summary Create the financial year after the latest one
// @Tags periods
// @Produce  json
// @Success 201 {object} dto.PeriodResponse
// @Security BearerAuth
// @Router /periods/next-year [post]
func (h *periodHandler) createNextYear(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	period, err := h.periodService.CreateNextFinancialYear(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to create next financial year")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

// resolveRange godoc
// @Summary Resolve a named reporting range
// @Tags periods
// @Produce  json
// @Param   name path string true "Range name" Enums(current-fy, previous-fy, calendar-year, all-time)
// @Success 200 {object} dto.DateRangeResponse
// @Failure 400 {object} errorResponse "Unknown range"
// @Security BearerAuth
// @Router /ranges/{name} [get]
func (h *periodHandler) resolveRange(c *gin.Context) {
	name := domain.NamedPeriod(c.Param("name"))
	if !name.Valid() {
		respondError(c, apperrors.NewAppError(http.StatusBadRequest, "unknown range "+string(name), apperrors.ErrValidation), "Invalid range")
		return
	}
	r, err := h.periodService.ResolveNamedRange(c.Request.Context(), name)
	if err != nil {
		respondError(c, err, "Failed to resolve range")
		return
	}
	c.JSON(http.StatusOK, dto.ToDateRangeResponse(string(name), r))
}

// getSettings godoc
// @Summary Get company fiscal settings
// @Tags settings
// @Produce  json
// @Success 200 {object} domain.CompanySettings
// @Security BearerAuth
// @Router /settings [get]
func (h *periodHandler) getSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// updateSettings godoc
// @Summary Update company fiscal settings
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   settings body dto.UpdateSettingsRequest true "Settings"
// @Success 200 {object} domain.CompanySettings
// @Failure 400 {object} errorResponse "Invalid fiscal start or unknown retained earnings account"
// @Security BearerAuth
// @Router /settings [put]
func (h *periodHandler) updateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

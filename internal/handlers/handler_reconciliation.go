package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{
		reconciliationService: rs,
	}
}

// registerReconciliationRoutes registers the source document routes.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	sources := rg.Group("/sources")
	{
		sources.POST("", h.registerSource)
		sources.POST("/generate-all", h.generateAll)
		sources.POST("/:sourceType/:sourceID/generate", h.generateForSource)
	}
}

// registerSource godoc
// @Summary Register a source document
// @Description Stores a sale, purchase, production run, expense payment or inventory adjustment snapshot. With generateNow the journal is posted immediately.
// @Tags sources
// @Accept  json
// @Produce  json
// @Param   source body dto.RegisterSourceRequest true "Source document"
// @Success 201 {object} dto.RegisterSourceResponse
// @Failure 400 {object} errorResponse "Invalid payload"
// @Failure 409 {object} errorResponse "Source already registered"
// @Security BearerAuth
// @Router /sources [post]
func (h *reconciliationHandler) registerSource(c *gin.Context) {
	var req dto.RegisterSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	doc, err := h.reconciliationService.RegisterSource(c.Request.Context(), domain.SourceDocument{
		SourceType: domain.SourceType(req.SourceType),
		SourceID:   req.SourceID,
		Reference:  req.Reference,
		Payload:    req.Payload,
	})
	if err != nil {
		respondError(c, err, "Failed to register source document")
		return
	}

	res := dto.RegisterSourceResponse{SourceType: string(doc.SourceType), SourceID: doc.SourceID}
	if req.GenerateNow {
		number, err := h.reconciliationService.GenerateForSource(c.Request.Context(), doc.SourceType, doc.SourceID, userID)
		if err != nil {
			// The document stays registered; the sweep picks it up later.
			respondError(c, err, "Source registered but journal generation failed")
			return
		}
		res.TransactionNumber = number
	}
	c.JSON(http.StatusCreated, res)
}

// generateForSource godoc
// @Summary Generate the journal for one source document
// @Tags sources
// @Produce  json
// @Param   sourceType path string true "Source type" Enums(SALE, PURCHASE, PRODUCTION, EXPENSE_PAYMENT, INVENTORY_ADJUSTMENT)
// @Param   sourceID path string true "Source ID"
// @Success 201 {object} dto.RegisterSourceResponse
// @Failure 404 {object} errorResponse "Source not found"
// @Failure 409 {object} errorResponse "Journal already generated"
// @Security BearerAuth
// @Router /sources/{sourceType}/{sourceID}/generate [post]
func (h *reconciliationHandler) generateForSource(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	sourceType := domain.SourceType(c.Param("sourceType"))
	sourceID := c.Param("sourceID")

	number, err := h.reconciliationService.GenerateForSource(c.Request.Context(), sourceType, sourceID, userID)
	if err != nil {
		respondError(c, err, "Failed to generate journal")
		return
	}
	c.JSON(http.StatusCreated, dto.RegisterSourceResponse{
		SourceType:        string(sourceType),
		SourceID:          sourceID,
		TransactionNumber: number,
	})
}

// generateAll godoc
// @Summary Generate journals for every pending source document
// @Description Failures are collected per document; one failure never stops the sweep
// @Tags sources
// @Produce  json
// @Success 200 {object} domain.ReconciliationReport
// @Security BearerAuth
// @Router /sources/generate-all [post]
func (h *reconciliationHandler) generateAll(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	report, err := h.reconciliationService.GenerateForAllUngenerated(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to run reconciliation")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Reconciliation sweep finished",
		slog.Int("succeeded", len(report.Succeeded)),
		slog.Int("failed", len(report.Failed)))
	c.JSON(http.StatusOK, report)
}

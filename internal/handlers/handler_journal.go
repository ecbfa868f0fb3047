package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/bizledger/internal/apperrors"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: js,
	}
}

// registerJournalRoutes registers routes related to journals.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.postJournal)
		journals.POST("/preview", h.previewJournal)
		journals.POST("/reverse-by-reference", h.reverseByReference)
		journals.GET("/:transactionNumber", h.getJournal)
		journals.POST("/:transactionNumber/reverse", h.reverseJournal)
	}
}

// postJournal godoc
// @Summary Post a journal entry
// @Description Validates and posts a balanced manual or adjustment entry atomically
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.CreateJournalRequest true "Journal entry"
// @Success 201 {object} dto.PostJournalResponse
// @Failure 400 {object} errorResponse "Unbalanced, invalid line, or inactive account"
// @Failure 409 {object} errorResponse "Posting date in a closed period"
// @Security BearerAuth
// @Router /journals [post]
func (h *journalHandler) postJournal(c *gin.Context) {
	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	posting, err := req.ToPostingRequest()
	if err != nil {
		respondError(c, apperrors.NewAppError(http.StatusBadRequest, err.Error(), apperrors.ErrValidation), "Invalid journal entry")
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to post journal", slog.String("prefix", string(posting.Prefix)), slog.Int("lines", len(posting.Lines)))

	number, err := h.journalService.Post(c.Request.Context(), posting, userID)
	if err != nil {
		respondError(c, err, "Failed to post journal")
		return
	}

	logger.Info("Journal posted successfully", slog.String("transaction_number", number))
	c.JSON(http.StatusCreated, dto.PostJournalResponse{TransactionNumber: number})
}

// previewJournal godoc
// @Summary Preview a journal entry
// @Description Reports totals and every problem that would block posting, without writing anything
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.PreviewJournalRequest true "Draft lines"
// @Success 200 {object} domain.JournalPreview
// @Failure 400 {object} errorResponse "Invalid request format"
// @Security BearerAuth
// @Router /journals/preview [post]
func (h *journalHandler) previewJournal(c *gin.Context) {
	var req dto.PreviewJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	preview, err := h.journalService.Preview(c.Request.Context(), dto.ToJournalLines(req.Lines))
	if err != nil {
		respondError(c, err, "Failed to preview journal")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// getJournal godoc
// @Summary Get a journal by number
// @Tags journals
// @Produce  json
// @Param   transactionNumber path string true "Transaction number, e.g. JE-MAN-0001"
// @Success 200 {object} domain.JournalTransaction
// @Failure 404 {object} errorResponse "Transaction not found"
// @Security BearerAuth
// @Router /journals/{transactionNumber} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	txn, err := h.journalService.GetTransaction(c.Request.Context(), c.Param("transactionNumber"))
	if err != nil {
		respondError(c, err, "Failed to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, txn)
}

// reverseJournal godoc
// @Summary Reverse a journal
// @Description Posts the mirror image of a journal dated today. A journal can be reversed once.
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   transactionNumber path string true "Transaction number"
// @Param   body body dto.ReverseJournalRequest true "Reason"
// @Success 201 {object} dto.ReverseJournalResponse
// @Failure 404 {object} errorResponse "Transaction not found"
// @Failure 409 {object} errorResponse "Already reversed"
// @Security BearerAuth
// @Router /journals/{transactionNumber}/reverse [post]
func (h *journalHandler) reverseJournal(c *gin.Context) {
	var req dto.ReverseJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	original := c.Param("transactionNumber")
	reversal, err := h.journalService.Reverse(c.Request.Context(), original, req.Reason, userID)
	if err != nil {
		respondError(c, err, "Failed to reverse journal")
		return
	}
	c.JSON(http.StatusCreated, dto.ReverseJournalResponse{
		OriginalTransactionNumber: original,
		ReversalTransactionNumber: reversal,
	})
}

// reverseByReferenceRequest names the domain event whose journals are reversed.
type reverseByReferenceRequest struct {
	ReferenceType string `json:"referenceType" binding:"required"`
	ReferenceID   string `json:"referenceID" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
}

// reverseByReference godoc
// @Summary Reverse every journal of a domain event
// @Description Each journal is reversed independently; failures are reported, not rolled back
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   body body reverseByReferenceRequest true "Reference and reason"
// @Success 200 {object} domain.ReversalOutcome
// @Success 207 {object} domain.ReversalOutcome "Some reversals failed"
// @Security BearerAuth
// @Router /journals/reverse-by-reference [post]
func (h *journalHandler) reverseByReference(c *gin.Context) {
	var req reverseByReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	userID, ok := actingUser(c)
	if !ok {
		return
	}

	outcome, err := h.journalService.ReverseByReference(c.Request.Context(), req.ReferenceType, req.ReferenceID, req.Reason, userID)
	if err != nil {
		respondError(c, err, "Failed to reverse journals")
		return
	}
	status := http.StatusOK
	if outcome.NeedsAttention() {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Some reversals failed",
			slog.String("reference_type", req.ReferenceType),
			slog.String("reference_id", req.ReferenceID),
			slog.Int("failed", len(outcome.Failed)))
		status = http.StatusMultiStatus
	}
	c.JSON(status, outcome)
}

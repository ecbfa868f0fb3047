package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock JournalService ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) Post(ctx context.Context, req domain.PostingRequest, userID string) (string, error) {
	args := m.Called(ctx, req, userID)
	return args.String(0), args.Error(1)
}
func (m *MockJournalService) Preview(ctx context.Context, lines []domain.JournalLine) (*domain.JournalPreview, error) {
	args := m.Called(ctx, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalPreview), args.Error(1)
}
func (m *MockJournalService) GetTransaction(ctx context.Context, transactionNumber string) (*domain.JournalTransaction, error) {
	args := m.Called(ctx, transactionNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalTransaction), args.Error(1)
}
func (m *MockJournalService) Reverse(ctx context.Context, transactionNumber, reason, userID string) (string, error) {
	args := m.Called(ctx, transactionNumber, reason, userID)
	return args.String(0), args.Error(1)
}
func (m *MockJournalService) ReverseByReference(ctx context.Context, referenceType, referenceID, reason, userID string) (*domain.ReversalOutcome, error) {
	args := m.Called(ctx, referenceType, referenceID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReversalOutcome), args.Error(1)
}
func (m *MockJournalService) GenerateForSale(ctx context.Context, sale domain.SaleSnapshot, userID string) (string, error) {
	args := m.Called(ctx, sale, userID)
	return args.String(0), args.Error(1)
}
func (m *MockJournalService) GenerateForPurchase(ctx context.Context, purchase domain.PurchaseSnapshot, userID string) (string, error) {
	args := m.Called(ctx, purchase, userID)
	return args.String(0), args.Error(1)
}
func (m *MockJournalService) GenerateForProduction(ctx context.Context, production domain.ProductionSnapshot, userID string) (string, error) {
	args := m.Called(ctx, production, userID)
	return args.String(0), args.Error(1)
}
func (m *MockJournalService) GenerateForExpensePayment(ctx context.Context, payment domain.ExpensePaymentSnapshot, userID string) (string, error) {
	args := m.Called(ctx, payment, userID)
	return args.String(0), args.Error(1)
}
func (m *MockJournalService) GenerateForInventoryAdjustment(ctx context.Context, adjustment domain.InventoryAdjustmentSnapshot, userID string) (string, error) {
	args := m.Called(ctx, adjustment, userID)
	return args.String(0), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

type JournalHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockJournalService *MockJournalService
	userID             string
	token              string
}

func (suite *JournalHandlerTestSuite) SetupTest() {
	suite.mockJournalService = new(MockJournalService)
	suite.router = newTestRouter(&portssvc.ServiceContainer{Journal: suite.mockJournalService})
	suite.userID = uuid.NewString()
	suite.token = issueTestToken(suite.T(), suite.userID)
}

func journalBody(debit, credit string) map[string]any {
	return map[string]any{
		"date":        "2024-03-15",
		"description": "Owner contribution",
		"lines": []map[string]any{
			{"accountCode": "1000", "debit": debit, "credit": "0"},
			{"accountCode": "3000", "debit": "0", "credit": credit},
		},
	}
}

func (suite *JournalHandlerTestSuite) TestPostJournal_Success() {
	suite.mockJournalService.On("Post", mock.Anything, mock.MatchedBy(func(req domain.PostingRequest) bool {
		return req.Prefix == domain.PrefixManual &&
			req.ReferenceType == domain.RefManual &&
			req.Date.Format(domain.DateLayout) == "2024-03-15" &&
			len(req.Lines) == 2 &&
			req.Lines[0].Debit.Equal(decimal.RequireFromString("500.25"))
	}), suite.userID).Return("JE-MAN-0001", nil).Once()

	w := doJSON(suite.router, suite.token, http.MethodPost, "/api/v1/journals", journalBody("500.25", "500.25"))

	suite.Equal(http.StatusCreated, w.Code)
	var body dto.PostJournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("JE-MAN-0001", body.TransactionNumber)
	suite.mockJournalService.AssertExpectations(suite.T())
}

func (suite *JournalHandlerTestSuite) TestPostJournal_RejectsBadAmounts() {
	cases := map[string]map[string]any{
		"three decimal places": journalBody("10.005", "10.005"),
		"negative amount":      journalBody("-10", "-10"),
		"bad date": {
			"date":  "15/03/2024",
			"lines": journalBody("1", "1")["lines"],
		},
	}
	for name, body := range cases {
		suite.Run(name, func() {
			w := doJSON(suite.router, suite.token, http.MethodPost, "/api/v1/journals", body)
			suite.Equal(http.StatusBadRequest, w.Code)
		})
	}
	suite.mockJournalService.AssertNotCalled(suite.T(), "Post")
}

func (suite *JournalHandlerTestSuite) TestPostJournal_EngineRejection() {
	suite.mockJournalService.On("Post", mock.Anything, mock.Anything, suite.userID).
		Return("", apperrors.ErrUnbalancedJournalEntry).Once()

	w := doJSON(suite.router, suite.token, http.MethodPost, "/api/v1/journals", journalBody("10", "9"))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), `"code":"UnbalancedJournalEntry"`)
}

func (suite *JournalHandlerTestSuite) TestPostJournal_ClosedPeriod() {
	suite.mockJournalService.On("Post", mock.Anything, mock.Anything, suite.userID).
		Return("", apperrors.ErrPostingPeriodClosed).Once()

	w := doJSON(suite.router, suite.token, http.MethodPost, "/api/v1/journals", journalBody("10", "10"))

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "PostingPeriodClosed")
}

func (suite *JournalHandlerTestSuite) TestReverse() {
	suite.mockJournalService.On("Reverse", mock.Anything, "JE-MAN-0001", "entered twice", suite.userID).
		Return("JE-REV-0001", nil).Once()
	suite.mockJournalService.On("Reverse", mock.Anything, "JE-MAN-0001", "again", suite.userID).
		Return("", apperrors.ErrTransactionAlreadyReversed).Once()

	w := doJSON(suite.router, suite.token, http.MethodPost, "/api/v1/journals/JE-MAN-0001/reverse", dto.ReverseJournalRequest{Reason: "entered twice"})
	suite.Equal(http.StatusCreated, w.Code)
	var body dto.ReverseJournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("JE-MAN-0001", body.OriginalTransactionNumber)
	suite.Equal("JE-REV-0001", body.ReversalTransactionNumber)

	w = doJSON(suite.router, suite.token, http.MethodPost, "/api/v1/journals/JE-MAN-0001/reverse", dto.ReverseJournalRequest{Reason: "again"})
	suite.Equal(http.StatusConflict, w.Code)

	w = doJSON(suite.router, suite.token, http.MethodPost, "/api/v1/journals/JE-MAN-0001/reverse", map[string]string{})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *JournalHandlerTestSuite) TestReverseByReference_PartialFailure() {
	suite.mockJournalService.On("ReverseByReference", mock.Anything, domain.RefSale, "sale-9", "cancelled", suite.userID).
		Return(&domain.ReversalOutcome{
			ReferenceType: domain.RefSale,
			ReferenceID:   "sale-9",
			Reversed:      map[string]string{"JE-SAL-0001": "JE-REV-0004"},
			Failed:        []domain.ReversalFailure{{TransactionNumber: "JE-SAL-0002", Reason: "storage unavailable"}},
		}, nil).Once()

	w := doJSON(suite.router, suite.token, http.MethodPost, "/api/v1/journals/reverse-by-reference", map[string]string{
		"referenceType": domain.RefSale,
		"referenceID":   "sale-9",
		"reason":        "cancelled",
	})

	suite.Equal(http.StatusMultiStatus, w.Code)
	suite.Contains(w.Body.String(), "JE-SAL-0002")
}

func (suite *JournalHandlerTestSuite) TestGetJournal_NotFound() {
	suite.mockJournalService.On("GetTransaction", mock.Anything, "JE-MAN-9999").
		Return(nil, apperrors.ErrTransactionNotFound).Once()

	w := doJSON(suite.router, suite.token, http.MethodGet, "/api/v1/journals/JE-MAN-9999", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func TestJournalHandler(t *testing.T) {
	suite.Run(t, new(JournalHandlerTestSuite))
}

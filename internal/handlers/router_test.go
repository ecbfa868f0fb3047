package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/adapters/database/memory"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/core/services"
	"github.com/SscSPs/bizledger/internal/dto"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLedgerOverHTTP drives the real services on the in-memory store through the router.
func TestLedgerOverHTTP(t *testing.T) {
	repos := memory.NewRepositoryProvider(memory.NewStore())
	router := newTestRouter(services.NewServiceContainer(&config.Config{ReconcileWorkers: 1}, repos))
	token := issueTestToken(t, "http-user")
	today := domain.DateOnly(time.Now()).Format(domain.DateLayout)

	w := doJSON(router, "", http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, token, http.MethodPost, "/api/v1/accounts/seed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var seeded dto.SeedChartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &seeded))
	assert.Positive(t, seeded.Created)

	w = doJSON(router, token, http.MethodPost, "/api/v1/journals", map[string]any{
		"date": today,
		"lines": []map[string]any{
			{"accountCode": "1000", "debit": "1200.00", "credit": "0"},
			{"accountCode": "4000", "debit": "0", "credit": "1200.00"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var posted dto.PostJournalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posted))
	assert.Equal(t, "JE-MAN-0001", posted.TransactionNumber)

	w = doJSON(router, token, http.MethodGet, "/api/v1/reports/trial-balance?asOf="+today, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tb dto.TrialBalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tb))
	assert.True(t, tb.IsBalanced)
	assert.Equal(t, "1200", tb.Totals.Debit.String())

	w = doJSON(router, token, http.MethodGet, "/api/v1/reports/income-statement?from="+today+"&to="+today, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1200")

	w = doJSON(router, token, http.MethodGet, "/api/v1/reports/general-ledger?accountCode=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "JE-MAN-0001")

	w = doJSON(router, token, http.MethodPost, "/api/v1/journals/JE-MAN-0001/reverse", map[string]string{"reason": "test"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "JE-REV-0001")

	w = doJSON(router, token, http.MethodGet, "/api/v1/reports/general-ledger?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page dto.GeneralLedgerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Lines, 3)
	require.NotNil(t, page.NextToken)

	w = doJSON(router, token, http.MethodGet, "/api/v1/reports/general-ledger?limit=3&nextToken="+*page.NextToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = dto.GeneralLedgerResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Lines, 1)
	assert.Nil(t, page.NextToken)

	w = doJSON(router, token, http.MethodGet, "/api/v1/reports/general-ledger?nextToken=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, token, http.MethodGet, "/api/v1/periods/for-date?date="+today, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, token, http.MethodGet, "/api/v1/ranges/not-a-range", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, token, http.MethodGet, "/api/v1/reports/trial-balance?asOf=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSourceRegistrationOverHTTP(t *testing.T) {
	repos := memory.NewRepositoryProvider(memory.NewStore())
	svc := services.NewServiceContainer(&config.Config{ReconcileWorkers: 2}, repos)
	router := newTestRouter(svc)
	token := issueTestToken(t, "http-user")

	require.Equal(t, http.StatusOK, doJSON(router, token, http.MethodPost, "/api/v1/accounts/seed", nil).Code)

	payload := json.RawMessage(`{"saleID":"s-1","invoiceNumber":"INV-77","date":"2024-05-02T00:00:00Z","paymentMethod":"CASH","subtotal":"80","total":"80"}`)
	w := doJSON(router, token, http.MethodPost, "/api/v1/sources", dto.RegisterSourceRequest{
		SourceType: string(domain.SourceSale),
		SourceID:   "s-1",
		Payload:    payload,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, token, http.MethodPost, "/api/v1/sources/generate-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report domain.ReconciliationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Succeeded, 1)
	assert.Equal(t, "JE-SAL-0001", report.Succeeded[0].TransactionNumber)

	w = doJSON(router, token, http.MethodPost, "/api/v1/sources/SALE/s-1/generate", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
